package stock

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Decrement(t *testing.T) {
	t.Run("Commits adjustment and movement together", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		svc := NewService(db, NewRepository(db))

		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE products").
			WithArgs(2, 1).
			WillReturnRows(productRows(8))
		mock.ExpectExec("INSERT INTO stock_movements").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		p, err := svc.Decrement(context.Background(), 1, 2, "manual adjustment", "staff:1")
		require.NoError(t, err)
		assert.Equal(t, 8, p.AvailableQuantity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rolls back when the guard rejects", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		svc := NewService(db, NewRepository(db))

		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE products").
			WillReturnRows(sqlmock.NewRows(nil))
		mock.ExpectQuery("SELECT available_quantity FROM products").
			WillReturnRows(sqlmock.NewRows([]string{"available_quantity"}).AddRow(0))
		mock.ExpectRollback()

		_, err = svc.Decrement(context.Background(), 1, 2, "manual adjustment", "staff:1")
		assert.ErrorIs(t, err, ErrInsufficientStock)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestService_Increment(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	svc := NewService(db, NewRepository(db))

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE products").
		WithArgs(5, 1).
		WillReturnRows(productRows(15))
	mock.ExpectExec("INSERT INTO stock_movements").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	p, err := svc.Increment(context.Background(), 1, 5, "restock", "staff:1")
	require.NoError(t, err)
	assert.Equal(t, 15, p.AvailableQuantity)
}

func TestService_Movements(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	svc := NewService(db, NewRepository(db))

	mock.ExpectQuery("SELECT (.+) FROM stock_movements").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "product_id", "kind", "quantity", "quantity_before", "quantity_after", "reason", "actor", "created_at",
		}).AddRow(1, 1, "INCREASE", 5, 10, 15, "restock", "staff:1", time.Now()))

	movements, err := svc.Movements(context.Background(), 1, nil, nil)
	require.NoError(t, err)
	assert.Len(t, movements, 1)
}
