package order

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("order not found")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrUnknownStatus        = errors.New("unknown status")
	ErrInvalidPaymentMethod = errors.New("unknown payment method")

	// ErrTotalMismatch means the persisted amounts stopped agreeing with
	// each other mid-checkout. It is an internal inconsistency, never a
	// user mistake.
	ErrTotalMismatch = errors.New("order total mismatch")

	ErrInvalidTransition = errors.New("invalid status transition")
)

// InvalidTransitionError reports a move the status graph forbids,
// including the lost race where the order changed under a concurrent
// request.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %s to %s", e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
