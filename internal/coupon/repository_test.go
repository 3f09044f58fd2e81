package coupon

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var couponCols = []string{
	"id", "code", "kind", "value", "minimum_purchase",
	"starts_at", "ends_at", "max_uses", "current_uses", "active", "created_at",
}

func TestRepository_GetByCode(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows(couponCols).
			AddRow(1, "SAVE10", "PERCENTAGE", "10", "50", time.Now(), time.Now().AddDate(0, 1, 0), 10, 3, true, time.Now())

		mock.ExpectQuery("SELECT (.+) FROM coupons WHERE code").
			WithArgs("SAVE10").
			WillReturnRows(rows)

		c, err := repo.GetByCode(context.Background(), "SAVE10")
		require.NoError(t, err)
		assert.Equal(t, KindPercentage, c.Kind)
		assert.Equal(t, 3, c.CurrentUses)
		require.NotNil(t, c.MaxUses)
		assert.Equal(t, 10, *c.MaxUses)
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM coupons WHERE code").
			WithArgs("NOPE").
			WillReturnRows(sqlmock.NewRows(nil))

		_, err := repo.GetByCode(context.Background(), "NOPE")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Null optional fields", func(t *testing.T) {
		rows := sqlmock.NewRows(couponCols).
			AddRow(2, "FLAT20", "FIXED_AMOUNT", "20", nil, time.Now(), time.Now().AddDate(0, 1, 0), nil, 0, true, time.Now())

		mock.ExpectQuery("SELECT (.+) FROM coupons WHERE code").
			WithArgs("FLAT20").
			WillReturnRows(rows)

		c, err := repo.GetByCode(context.Background(), "FLAT20")
		require.NoError(t, err)
		assert.Nil(t, c.MinimumPurchase)
		assert.Nil(t, c.MaxUses)
	})
}

func TestRepository_IncrementUses(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE coupons SET current_uses = current_uses \\+ 1").
			WithArgs(uint(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.IncrementUses(context.Background(), 1))
	})

	t.Run("Cap reached means zero rows and ErrExhausted", func(t *testing.T) {
		mock.ExpectExec("UPDATE coupons SET current_uses = current_uses \\+ 1").
			WithArgs(uint(1)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.IncrementUses(context.Background(), 1), ErrExhausted)
	})
}

func TestRepository_SetActiveAndDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("SetActive not found", func(t *testing.T) {
		mock.ExpectExec("UPDATE coupons SET active").
			WithArgs(false, uint(9)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.SetActive(context.Background(), 9, false), ErrNotFound)
	})

	t.Run("Delete success", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM coupons").
			WithArgs(uint(2)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(context.Background(), 2))
	})
}

func TestRepository_DeactivateExpired(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	mock.ExpectExec("UPDATE coupons").
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.DeactivateExpired(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}
