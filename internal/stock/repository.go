package stock

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cuymarket-be/internal/db"
	"cuymarket-be/internal/product"
)

// Repository performs single-row stock mutations. Every mutation runs as a
// guarded UPDATE with the availability predicate in the WHERE clause, so two
// concurrent checkouts for the last unit cannot both succeed, and appends
// exactly one movement row. Bind it to the caller's transaction with WithTx
// when the adjustment must compose with other writes.
type Repository interface {
	Decrement(ctx context.Context, productID uint, qty int, reason, actor string) (*product.Product, error)
	Increment(ctx context.Context, productID uint, qty int, reason, actor string) (*product.Product, error)
	SetAbsolute(ctx context.Context, productID uint, newQty int, actor string) (*product.Product, error)
	Movements(ctx context.Context, productID uint, from, to *time.Time) ([]*Movement, error)
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

const productReturning = `id, name, price, available_quantity, active, reorder_threshold, updated_at`

func scanProduct(row *sql.Row) (*product.Product, error) {
	var p product.Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Price,
		&p.AvailableQuantity,
		&p.Active,
		&p.ReorderThreshold,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) Decrement(ctx context.Context, productID uint, qty int, reason, actor string) (*product.Product, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}

	row := r.db.QueryRowContext(ctx, `
		UPDATE products
		SET available_quantity = available_quantity - $1, updated_at = NOW()
		WHERE id = $2 AND available_quantity >= $1
		RETURNING `+productReturning,
		qty, productID,
	)

	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		// Either the product is missing or the guard rejected the update.
		var available int
		checkErr := r.db.QueryRowContext(ctx,
			`SELECT available_quantity FROM products WHERE id = $1`, productID,
		).Scan(&available)
		if checkErr == sql.ErrNoRows {
			return nil, product.ErrNotFound
		}
		if checkErr != nil {
			return nil, fmt.Errorf("check stock for product %d: %w", productID, checkErr)
		}
		return nil, &InsufficientStockError{ProductID: productID, Available: available, Requested: qty}
	}
	if err != nil {
		return nil, fmt.Errorf("decrement stock for product %d: %w", productID, err)
	}

	if err := r.insertMovement(ctx, p.ID, MovementDecrease, qty, p.AvailableQuantity+qty, p.AvailableQuantity, reason, actor); err != nil {
		return nil, err
	}

	return p, nil
}

func (r *repository) Increment(ctx context.Context, productID uint, qty int, reason, actor string) (*product.Product, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}

	row := r.db.QueryRowContext(ctx, `
		UPDATE products
		SET available_quantity = available_quantity + $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+productReturning,
		qty, productID,
	)

	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, product.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("increment stock for product %d: %w", productID, err)
	}

	if err := r.insertMovement(ctx, p.ID, MovementIncrease, qty, p.AvailableQuantity-qty, p.AvailableQuantity, reason, actor); err != nil {
		return nil, err
	}

	return p, nil
}

func (r *repository) SetAbsolute(ctx context.Context, productID uint, newQty int, actor string) (*product.Product, error) {
	if newQty < 0 {
		return nil, ErrInvalidQuantity
	}

	// The locked sub-select captures the previous quantity for the movement
	// record.
	row := r.db.QueryRowContext(ctx, `
		UPDATE products p
		SET available_quantity = $1, updated_at = NOW()
		FROM (SELECT id, available_quantity AS previous FROM products WHERE id = $2 FOR UPDATE) old
		WHERE p.id = old.id
		RETURNING p.id, p.name, p.price, p.available_quantity, p.active, p.reorder_threshold, p.updated_at, old.previous
	`, newQty, productID)

	var p product.Product
	var previous int
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Price,
		&p.AvailableQuantity,
		&p.Active,
		&p.ReorderThreshold,
		&p.UpdatedAt,
		&previous,
	)
	if err == sql.ErrNoRows {
		return nil, product.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("set stock for product %d: %w", productID, err)
	}

	if previous == newQty {
		return &p, nil
	}

	kind := MovementIncrease
	delta := newQty - previous
	if delta < 0 {
		kind = MovementDecrease
		delta = -delta
	}

	if err := r.insertMovement(ctx, p.ID, kind, delta, previous, newQty, "stock correction", actor); err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *repository) insertMovement(ctx context.Context, productID uint, kind MovementKind, qty, before, after int, reason, actor string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO stock_movements (product_id, kind, quantity, quantity_before, quantity_after, reason, actor)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, productID, kind, qty, before, after, reason, actor)
	if err != nil {
		return fmt.Errorf("record stock movement for product %d: %w", productID, err)
	}
	return nil
}

func (r *repository) Movements(ctx context.Context, productID uint, from, to *time.Time) ([]*Movement, error) {
	query := `
		SELECT id, product_id, kind, quantity, quantity_before, quantity_after, reason, actor, created_at
		FROM stock_movements
		WHERE product_id = $1
	`
	args := []any{productID}

	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}
	query += " ORDER BY created_at ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock movements for product %d: %w", productID, err)
	}
	defer rows.Close()

	var movements []*Movement
	for rows.Next() {
		var m Movement
		if err := rows.Scan(
			&m.ID,
			&m.ProductID,
			&m.Kind,
			&m.Quantity,
			&m.QuantityBefore,
			&m.QuantityAfter,
			&m.Reason,
			&m.Actor,
			&m.CreatedAt,
		); err != nil {
			return nil, err
		}
		movements = append(movements, &m)
	}

	return movements, rows.Err()
}
