package address

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cuymarket-be/internal/db"
)

var ErrNotFound = errors.New("address not found")

type Repository interface {
	GetByIDForUser(ctx context.Context, id, userID uint) (*Address, error)
	WithTx(tx *sql.Tx) Repository
}

type repository struct {
	db db.DBTX
}

func NewRepository(dbtx db.DBTX) Repository {
	return &repository{db: dbtx}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: tx}
}

func (r *repository) GetByIDForUser(ctx context.Context, id, userID uint) (*Address, error) {
	query := `
		SELECT id, user_id, recipient, phone, line1, line2, city, province, postal, country
		FROM addresses
		WHERE id = $1 AND user_id = $2
	`

	var a Address
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&a.ID,
		&a.UserID,
		&a.Recipient,
		&a.Phone,
		&a.Line1,
		&a.Line2,
		&a.City,
		&a.Province,
		&a.Postal,
		&a.Country,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get address %d: %w", id, err)
	}

	return &a, nil
}
