package coupon

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetByCode(ctx context.Context, code string) (*Coupon, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Coupon), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id uint) (*Coupon, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Coupon), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, c *Coupon) (*Coupon, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Coupon), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, c *Coupon) (*Coupon, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Coupon), args.Error(1)
}

func (m *MockRepository) SetActive(ctx context.Context, id uint, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) List(ctx context.Context, onlyActive bool) ([]*Coupon, error) {
	args := m.Called(ctx, onlyActive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Coupon), args.Error(1)
}

func (m *MockRepository) IncrementUses(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) DeactivateExpired(ctx context.Context, asOf time.Time) (int64, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) WithTx(tx *sql.Tx) Repository {
	return m
}

// --- Helpers ---

func validCoupon() *Coupon {
	min := decimal.NewFromInt(50)
	maxUses := 10
	return &Coupon{
		ID:              1,
		Code:            "SAVE10",
		Kind:            KindPercentage,
		Value:           decimal.NewFromInt(10),
		MinimumPurchase: &min,
		StartsAt:        time.Now().AddDate(0, 0, -7),
		EndsAt:          time.Now().AddDate(0, 0, 7),
		MaxUses:         &maxUses,
		CurrentUses:     3,
		Active:          true,
	}
}

func TestService_Validate(t *testing.T) {
	ctx := context.Background()
	amount := decimal.NewFromInt(80)
	now := time.Now()

	t.Run("Valid coupon passes", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByCode", ctx, "SAVE10").Return(validCoupon(), nil)

		svc := NewService(repo)
		c, err := svc.Validate(ctx, "SAVE10", amount, now)

		require.NoError(t, err)
		assert.Equal(t, "SAVE10", c.Code)
	})

	t.Run("Unknown code", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByCode", ctx, "NOPE").Return(nil, ErrNotFound)

		svc := NewService(repo)
		_, err := svc.Validate(ctx, "NOPE", amount, now)

		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Inactive", func(t *testing.T) {
		c := validCoupon()
		c.Active = false

		repo := new(MockRepository)
		repo.On("GetByCode", ctx, c.Code).Return(c, nil)

		svc := NewService(repo)
		_, err := svc.Validate(ctx, c.Code, amount, now)

		assert.ErrorIs(t, err, ErrInactive)
	})

	t.Run("Not started yet", func(t *testing.T) {
		c := validCoupon()
		c.StartsAt = now.AddDate(0, 0, 2)

		repo := new(MockRepository)
		repo.On("GetByCode", ctx, c.Code).Return(c, nil)

		svc := NewService(repo)
		_, err := svc.Validate(ctx, c.Code, amount, now)

		assert.ErrorIs(t, err, ErrExpired)
	})

	t.Run("Past end date", func(t *testing.T) {
		c := validCoupon()
		c.StartsAt = now.AddDate(0, 0, -14)
		c.EndsAt = now.AddDate(0, 0, -2)

		repo := new(MockRepository)
		repo.On("GetByCode", ctx, c.Code).Return(c, nil)

		svc := NewService(repo)
		_, err := svc.Validate(ctx, c.Code, amount, now)

		assert.ErrorIs(t, err, ErrExpired)
	})

	t.Run("End date itself is still valid", func(t *testing.T) {
		c := validCoupon()
		c.EndsAt = now

		repo := new(MockRepository)
		repo.On("GetByCode", ctx, c.Code).Return(c, nil)

		svc := NewService(repo)
		_, err := svc.Validate(ctx, c.Code, amount, now)

		assert.NoError(t, err)
	})

	t.Run("Exhausted", func(t *testing.T) {
		c := validCoupon()
		c.CurrentUses = *c.MaxUses

		repo := new(MockRepository)
		repo.On("GetByCode", ctx, c.Code).Return(c, nil)

		svc := NewService(repo)
		_, err := svc.Validate(ctx, c.Code, amount, now)

		assert.ErrorIs(t, err, ErrExhausted)
	})

	t.Run("No usage cap never exhausts", func(t *testing.T) {
		c := validCoupon()
		c.MaxUses = nil
		c.CurrentUses = 100000

		repo := new(MockRepository)
		repo.On("GetByCode", ctx, c.Code).Return(c, nil)

		svc := NewService(repo)
		_, err := svc.Validate(ctx, c.Code, amount, now)

		assert.NoError(t, err)
	})

	t.Run("Minimum purchase not met", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByCode", ctx, "SAVE10").Return(validCoupon(), nil)

		svc := NewService(repo)
		_, err := svc.Validate(ctx, "SAVE10", decimal.NewFromInt(49), now)

		assert.ErrorIs(t, err, ErrMinimumPurchase)
	})
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Rejects inverted window", func(t *testing.T) {
		c := validCoupon()
		c.StartsAt = c.EndsAt.AddDate(0, 0, 1)

		svc := NewService(new(MockRepository))
		_, err := svc.Create(ctx, c)

		assert.ErrorIs(t, err, ErrInvalidWindow)
	})

	t.Run("Rejects percentage above 100", func(t *testing.T) {
		c := validCoupon()
		c.Value = decimal.NewFromInt(150)

		svc := NewService(new(MockRepository))
		_, err := svc.Create(ctx, c)

		assert.ErrorIs(t, err, ErrInvalidValue)
	})

	t.Run("Rejects non positive fixed amount", func(t *testing.T) {
		c := validCoupon()
		c.Kind = KindFixedAmount
		c.Value = decimal.Zero

		svc := NewService(new(MockRepository))
		_, err := svc.Create(ctx, c)

		assert.ErrorIs(t, err, ErrInvalidValue)
	})

	t.Run("Rejects negative minimum purchase", func(t *testing.T) {
		c := validCoupon()
		neg := decimal.NewFromInt(-5)
		c.MinimumPurchase = &neg

		svc := NewService(new(MockRepository))
		_, err := svc.Create(ctx, c)

		assert.ErrorIs(t, err, ErrInvalidValue)
	})

	t.Run("Passes valid definition to repository", func(t *testing.T) {
		c := validCoupon()

		repo := new(MockRepository)
		repo.On("Create", ctx, c).Return(c, nil)

		svc := NewService(repo)
		created, err := svc.Create(ctx, c)

		require.NoError(t, err)
		assert.Equal(t, c.Code, created.Code)
		repo.AssertExpectations(t)
	})
}

func TestService_DeactivateExpired(t *testing.T) {
	ctx := context.Background()

	repo := new(MockRepository)
	repo.On("DeactivateExpired", ctx, mock.AnythingOfType("time.Time")).Return(int64(3), nil)

	svc := NewService(repo)
	n, err := svc.DeactivateExpired(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
