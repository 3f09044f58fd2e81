package coupon

import (
	"context"
	"time"

	"cuymarket-be/internal/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Service validates coupon eligibility and owns the admin surface. Usage
// recording goes through Repository.IncrementUses on the checkout
// transaction, not through this service.
type Service interface {
	Validate(ctx context.Context, code string, purchaseAmount decimal.Decimal, asOf time.Time) (*Coupon, error)

	Create(ctx context.Context, c *Coupon) (*Coupon, error)
	Update(ctx context.Context, c *Coupon) (*Coupon, error)
	SetActive(ctx context.Context, id uint, active bool) (*Coupon, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, onlyActive bool) ([]*Coupon, error)
	GetByCode(ctx context.Context, code string) (*Coupon, error)
	DeactivateExpired(ctx context.Context) (int64, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Validate checks every eligibility rule and returns the coupon when all
// pass. Each failure is a distinct sentinel so callers can tell the user
// exactly why the code was rejected.
func (s *service) Validate(ctx context.Context, code string, purchaseAmount decimal.Decimal, asOf time.Time) (*Coupon, error) {
	c, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := CheckEligibility(c, purchaseAmount, asOf); err != nil {
		return nil, err
	}
	return c, nil
}

// CheckEligibility applies every redemption rule to an already-loaded
// coupon. Checkout calls it directly so lookup, validation and usage
// recording can share one transaction.
func CheckEligibility(c *Coupon, purchaseAmount decimal.Decimal, asOf time.Time) error {
	if !c.Active {
		return ErrInactive
	}
	if !c.InWindow(asOf) {
		return ErrExpired
	}
	if c.Exhausted() {
		return ErrExhausted
	}
	if c.MinimumPurchase != nil && purchaseAmount.LessThan(*c.MinimumPurchase) {
		return ErrMinimumPurchase
	}
	return nil
}

func (s *service) Create(ctx context.Context, c *Coupon) (*Coupon, error) {
	if err := validateDefinition(c); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, c)
	if err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("coupon created",
		zap.Uint("coupon_id", created.ID),
		zap.String("code", created.Code),
		zap.String("kind", string(created.Kind)),
	)
	return created, nil
}

func (s *service) Update(ctx context.Context, c *Coupon) (*Coupon, error) {
	if err := validateDefinition(c); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, c)
}

func (s *service) SetActive(ctx context.Context, id uint, active bool) (*Coupon, error) {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) List(ctx context.Context, onlyActive bool) ([]*Coupon, error) {
	return s.repo.List(ctx, onlyActive)
}

func (s *service) GetByCode(ctx context.Context, code string) (*Coupon, error) {
	return s.repo.GetByCode(ctx, code)
}

func (s *service) DeactivateExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.DeactivateExpired(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.FromCtx(ctx).Info("expired coupons deactivated", zap.Int64("count", n))
	}
	return n, nil
}

func validateDefinition(c *Coupon) error {
	if c.StartsAt.After(c.EndsAt) {
		return ErrInvalidWindow
	}

	switch c.Kind {
	case KindPercentage:
		if c.Value.LessThanOrEqual(decimal.Zero) || c.Value.GreaterThan(decimal.NewFromInt(100)) {
			return ErrInvalidValue
		}
	case KindFixedAmount:
		if c.Value.LessThanOrEqual(decimal.Zero) {
			return ErrInvalidValue
		}
	default:
		return ErrInvalidValue
	}

	if c.MinimumPurchase != nil && c.MinimumPurchase.IsNegative() {
		return ErrInvalidValue
	}
	return nil
}
