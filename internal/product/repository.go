package product

import (
	"context"
	"database/sql"
	"fmt"

	"cuymarket-be/internal/db"
)

type Repository interface {
	GetByID(ctx context.Context, id uint) (*Product, error)
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

func (r *repository) GetByID(ctx context.Context, id uint) (*Product, error) {
	query := `
		SELECT id, name, price, available_quantity, active, reorder_threshold, updated_at
		FROM products
		WHERE id = $1
	`

	var p Product
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&p.Price,
		&p.AvailableQuantity,
		&p.Active,
		&p.ReorderThreshold,
		&p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}

	return &p, nil
}
