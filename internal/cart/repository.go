package cart

import (
	"context"
	"database/sql"
	"fmt"

	"cuymarket-be/internal/db"
)

type Repository interface {
	// GetOrCreate returns the user's cart, inserting the row on first
	// access. Lines are not loaded; use Lines for that.
	GetOrCreate(ctx context.Context, userID uint) (*Cart, error)

	// Lines returns the cart's entries joined with the current catalog
	// row, ordered by when they were added.
	Lines(ctx context.Context, cartID uint) ([]*Line, error)

	// LineByProduct returns the line for a product in the cart, or
	// ErrLineNotFound when the product is not in it.
	LineByProduct(ctx context.Context, cartID, productID uint) (*Line, error)

	// LineByID scopes the lookup to the cart so one user cannot address
	// another user's line.
	LineByID(ctx context.Context, cartID, lineID uint) (*Line, error)

	InsertLine(ctx context.Context, cartID, productID uint, quantity int) (*Line, error)
	UpdateLineQuantity(ctx context.Context, cartID, lineID uint, quantity int) error
	DeleteLine(ctx context.Context, cartID, lineID uint) error

	// Clear removes every line. Clearing an already-empty cart is fine.
	Clear(ctx context.Context, cartID uint) error

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

func (r *repository) GetOrCreate(ctx context.Context, userID uint) (*Cart, error) {
	// The no-op DO UPDATE makes RETURNING yield the row in both the
	// insert and the already-exists case.
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO carts (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id, user_id, created_at
	`, userID)

	var c Cart
	if err := row.Scan(&c.ID, &c.UserID, &c.CreatedAt); err != nil {
		return nil, fmt.Errorf("get or create cart for user %d: %w", userID, err)
	}
	return &c, nil
}

const lineColumns = `
	cl.id, cl.cart_id, cl.product_id, cl.quantity, cl.added_at,
	p.name, p.price, p.available_quantity, p.active`

func scanLine(row interface{ Scan(...any) error }) (*Line, error) {
	var l Line
	err := row.Scan(
		&l.ID,
		&l.CartID,
		&l.ProductID,
		&l.Quantity,
		&l.AddedAt,
		&l.ProductName,
		&l.UnitPrice,
		&l.AvailableQuantity,
		&l.ProductActive,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repository) Lines(ctx context.Context, cartID uint) ([]*Line, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+lineColumns+`
		FROM cart_lines cl
		JOIN products p ON p.id = cl.product_id
		WHERE cl.cart_id = $1
		ORDER BY cl.added_at, cl.id
	`, cartID)
	if err != nil {
		return nil, fmt.Errorf("list cart %d lines: %w", cartID, err)
	}
	defer rows.Close()

	var lines []*Line
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *repository) LineByProduct(ctx context.Context, cartID, productID uint) (*Line, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+lineColumns+`
		FROM cart_lines cl
		JOIN products p ON p.id = cl.product_id
		WHERE cl.cart_id = $1 AND cl.product_id = $2
	`, cartID, productID)

	l, err := scanLine(row)
	if err == sql.ErrNoRows {
		return nil, ErrLineNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get cart %d line for product %d: %w", cartID, productID, err)
	}
	return l, nil
}

func (r *repository) LineByID(ctx context.Context, cartID, lineID uint) (*Line, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+lineColumns+`
		FROM cart_lines cl
		JOIN products p ON p.id = cl.product_id
		WHERE cl.cart_id = $1 AND cl.id = $2
	`, cartID, lineID)

	l, err := scanLine(row)
	if err == sql.ErrNoRows {
		return nil, ErrLineNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get cart %d line %d: %w", cartID, lineID, err)
	}
	return l, nil
}

func (r *repository) InsertLine(ctx context.Context, cartID, productID uint, quantity int) (*Line, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO cart_lines (cart_id, product_id, quantity)
		VALUES ($1, $2, $3)
		RETURNING id, cart_id, product_id, quantity, added_at
	`, cartID, productID, quantity)

	var l Line
	err := row.Scan(&l.ID, &l.CartID, &l.ProductID, &l.Quantity, &l.AddedAt)
	if err != nil {
		return nil, fmt.Errorf("insert cart %d line: %w", cartID, err)
	}
	return &l, nil
}

func (r *repository) UpdateLineQuantity(ctx context.Context, cartID, lineID uint, quantity int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE cart_lines SET quantity = $1 WHERE cart_id = $2 AND id = $3
	`, quantity, cartID, lineID)
	if err != nil {
		return fmt.Errorf("update cart %d line %d: %w", cartID, lineID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrLineNotFound
	}
	return nil
}

func (r *repository) DeleteLine(ctx context.Context, cartID, lineID uint) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_lines WHERE cart_id = $1 AND id = $2`, cartID, lineID)
	if err != nil {
		return fmt.Errorf("delete cart %d line %d: %w", cartID, lineID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrLineNotFound
	}
	return nil
}

func (r *repository) Clear(ctx context.Context, cartID uint) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_lines WHERE cart_id = $1`, cartID)
	if err != nil {
		return fmt.Errorf("clear cart %d: %w", cartID, err)
	}
	return nil
}
