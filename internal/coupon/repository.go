package coupon

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cuymarket-be/internal/db"

	"github.com/lib/pq"
)

const pgUniqueViolation = "23505"

type Repository interface {
	GetByCode(ctx context.Context, code string) (*Coupon, error)
	GetByID(ctx context.Context, id uint) (*Coupon, error)
	Create(ctx context.Context, c *Coupon) (*Coupon, error)
	Update(ctx context.Context, c *Coupon) (*Coupon, error)
	SetActive(ctx context.Context, id uint, active bool) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, onlyActive bool) ([]*Coupon, error)

	// IncrementUses bumps current_uses by one, guarded against the usage
	// cap so concurrent checkouts cannot jointly exceed max_uses. Run it
	// on the checkout transaction via WithTx.
	IncrementUses(ctx context.Context, id uint) error

	DeactivateExpired(ctx context.Context, asOf time.Time) (int64, error)
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

const couponColumns = `id, code, kind, value, minimum_purchase, starts_at, ends_at, max_uses, current_uses, active, created_at`

func scanCoupon(row interface{ Scan(...any) error }) (*Coupon, error) {
	var c Coupon
	err := row.Scan(
		&c.ID,
		&c.Code,
		&c.Kind,
		&c.Value,
		&c.MinimumPurchase,
		&c.StartsAt,
		&c.EndsAt,
		&c.MaxUses,
		&c.CurrentUses,
		&c.Active,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) GetByCode(ctx context.Context, code string) (*Coupon, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+couponColumns+` FROM coupons WHERE code = $1`, code)

	c, err := scanCoupon(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get coupon by code: %w", err)
	}
	return c, nil
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Coupon, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+couponColumns+` FROM coupons WHERE id = $1`, id)

	c, err := scanCoupon(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get coupon %d: %w", id, err)
	}
	return c, nil
}

func (r *repository) Create(ctx context.Context, c *Coupon) (*Coupon, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO coupons (code, kind, value, minimum_purchase, starts_at, ends_at, max_uses, current_uses, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, true)
		RETURNING `+couponColumns,
		c.Code, c.Kind, c.Value, c.MinimumPurchase, c.StartsAt, c.EndsAt, c.MaxUses,
	)

	created, err := scanCoupon(row)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == pgUniqueViolation {
			return nil, ErrCodeTaken
		}
		return nil, fmt.Errorf("create coupon: %w", err)
	}
	return created, nil
}

func (r *repository) Update(ctx context.Context, c *Coupon) (*Coupon, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE coupons
		SET code = $1, kind = $2, value = $3, minimum_purchase = $4,
		    starts_at = $5, ends_at = $6, max_uses = $7
		WHERE id = $8
		RETURNING `+couponColumns,
		c.Code, c.Kind, c.Value, c.MinimumPurchase, c.StartsAt, c.EndsAt, c.MaxUses, c.ID,
	)

	updated, err := scanCoupon(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == pgUniqueViolation {
			return nil, ErrCodeTaken
		}
		return nil, fmt.Errorf("update coupon %d: %w", c.ID, err)
	}
	return updated, nil
}

func (r *repository) SetActive(ctx context.Context, id uint, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE coupons SET active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("set coupon %d active: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete coupon %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) List(ctx context.Context, onlyActive bool) ([]*Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons`
	if onlyActive {
		query += ` WHERE active = true`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}
	defer rows.Close()

	var coupons []*Coupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		coupons = append(coupons, c)
	}
	return coupons, rows.Err()
}

func (r *repository) IncrementUses(ctx context.Context, id uint) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE coupons
		SET current_uses = current_uses + 1
		WHERE id = $1 AND (max_uses IS NULL OR current_uses < max_uses)
	`, id)
	if err != nil {
		return fmt.Errorf("increment coupon %d uses: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// The guard lost a race against a concurrent checkout, or the
		// coupon disappeared. Either way this use is not allowed.
		return ErrExhausted
	}
	return nil
}

func (r *repository) DeactivateExpired(ctx context.Context, asOf time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE coupons
		SET active = false
		WHERE active = true AND ends_at < $1
	`, asOf)
	if err != nil {
		return 0, fmt.Errorf("deactivate expired coupons: %w", err)
	}
	return res.RowsAffected()
}
