package auth

import "context"

type ctxKey string

const identityKey ctxKey = "identity"

// WithIdentity stores the caller identity in the context (set by middleware).
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom retrieves the caller identity safely.
func IdentityFrom(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey).(*Identity)
	return id, ok
}

// UserIDFrom is a shortcut for the common case.
func UserIDFrom(ctx context.Context) (uint, bool) {
	id, ok := IdentityFrom(ctx)
	if !ok {
		return 0, false
	}
	return id.UserID, true
}
