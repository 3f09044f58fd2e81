package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"cuymarket-be/internal/db"
)

type Repository interface {
	// Create persists the order, its lines and the optional payment-info
	// record. Call it on the checkout transaction via WithTx.
	Create(ctx context.Context, o *Order) (*Order, error)

	// GetByID loads the order with its lines and payment info.
	GetByID(ctx context.Context, id uint) (*Order, error)

	ListByUser(ctx context.Context, userID uint, f ListFilter) ([]*Order, error)
	List(ctx context.Context, f ListFilter) ([]*Order, error)

	// UpdateStatus moves the fulfillment status with the expected current
	// status in the WHERE clause, so a concurrent transition loses cleanly
	// instead of overwriting.
	UpdateStatus(ctx context.Context, id uint, from, to Status) error
	UpdatePaymentStatus(ctx context.Context, id uint, from, to PaymentStatus) error

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

const orderColumns = `id, number, user_id, status, payment_status, payment_method,
	subtotal, discount, shipping_fee, total, coupon_id, shipping_address, created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }) (*Order, error) {
	var o Order
	var snapshot []byte
	err := row.Scan(
		&o.ID,
		&o.Number,
		&o.UserID,
		&o.Status,
		&o.PaymentStatus,
		&o.PaymentMethod,
		&o.Subtotal,
		&o.Discount,
		&o.ShippingFee,
		&o.Total,
		&o.CouponID,
		&snapshot,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(snapshot, &o.ShippingAddress); err != nil {
		return nil, fmt.Errorf("decode address snapshot for order %d: %w", o.ID, err)
	}
	return &o, nil
}

func (r *repository) Create(ctx context.Context, o *Order) (*Order, error) {
	snapshot, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return nil, fmt.Errorf("encode address snapshot: %w", err)
	}

	err = r.db.QueryRowContext(ctx, `
		INSERT INTO orders (number, user_id, status, payment_status, payment_method,
			subtotal, discount, shipping_fee, total, coupon_id, shipping_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`,
		o.Number, o.UserID, o.Status, o.PaymentStatus, o.PaymentMethod,
		o.Subtotal, o.Discount, o.ShippingFee, o.Total, o.CouponID, snapshot,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert order %s: %w", o.Number, err)
	}

	for _, l := range o.Lines {
		err := r.db.QueryRowContext(ctx, `
			INSERT INTO order_lines (order_id, product_id, product_name, unit_price, quantity)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, o.ID, l.ProductID, l.ProductName, l.UnitPrice, l.Quantity).Scan(&l.ID)
		if err != nil {
			return nil, fmt.Errorf("insert line for order %s: %w", o.Number, err)
		}
		l.OrderID = o.ID
	}

	if o.Payment != nil {
		p := o.Payment
		err := r.db.QueryRowContext(ctx, `
			INSERT INTO payment_info (order_id, phone, bank, card_holder, card_last4, receipt, transaction_status)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, created_at
		`, o.ID, p.Phone, p.Bank, p.CardHolder, p.CardLast4, p.Receipt, p.TransactionStatus).
			Scan(&p.ID, &p.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("insert payment info for order %s: %w", o.Number, err)
		}
		p.OrderID = o.ID
	}

	return o, nil
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Order, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)

	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}

	if o.Lines, err = r.lines(ctx, o.ID); err != nil {
		return nil, err
	}
	if o.Payment, err = r.paymentInfo(ctx, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repository) lines(ctx context.Context, orderID uint) ([]*Line, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, product_name, unit_price, quantity
		FROM order_lines
		WHERE order_id = $1
		ORDER BY id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list lines for order %d: %w", orderID, err)
	}
	defer rows.Close()

	var lines []*Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.ProductName, &l.UnitPrice, &l.Quantity); err != nil {
			return nil, err
		}
		lines = append(lines, &l)
	}
	return lines, rows.Err()
}

func (r *repository) paymentInfo(ctx context.Context, orderID uint) (*PaymentInfo, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, order_id, phone, bank, card_holder, card_last4, receipt, transaction_status, created_at
		FROM payment_info
		WHERE order_id = $1
	`, orderID)

	var p PaymentInfo
	err := row.Scan(&p.ID, &p.OrderID, &p.Phone, &p.Bank, &p.CardHolder, &p.CardLast4, &p.Receipt, &p.TransactionStatus, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get payment info for order %d: %w", orderID, err)
	}
	return &p, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uint, f ListFilter) ([]*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1`
	args := []any{userID}
	query, args = applyFilter(query, args, f)

	return r.list(ctx, query, args)
}

func (r *repository) List(ctx context.Context, f ListFilter) ([]*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE true`
	query, args := applyFilter(query, nil, f)

	return r.list(ctx, query, args)
}

func applyFilter(query string, args []any, f ListFilter) (string, []any) {
	if f.Status != nil {
		args = append(args, *f.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if f.From != nil {
		args = append(args, *f.From)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if f.To != nil {
		args = append(args, *f.To)
		query += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}
	return query + " ORDER BY created_at DESC", args
}

func (r *repository) list(ctx context.Context, query string, args []any) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *repository) UpdateStatus(ctx context.Context, id uint, from, to Status) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3
	`, to, id, from)
	if err != nil {
		return fmt.Errorf("update order %d status: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// The order moved under us since it was loaded.
		return &InvalidTransitionError{From: string(from), To: string(to)}
	}
	return nil
}

func (r *repository) UpdatePaymentStatus(ctx context.Context, id uint, from, to PaymentStatus) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET payment_status = $1, updated_at = NOW() WHERE id = $2 AND payment_status = $3
	`, to, id, from)
	if err != nil {
		return fmt.Errorf("update order %d payment status: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return &InvalidTransitionError{From: string(from), To: string(to)}
	}
	return nil
}
