package order

import (
	"context"
	"testing"
	"time"

	"cuymarket-be/internal/address"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderCols = []string{
	"id", "number", "user_id", "status", "payment_status", "payment_method",
	"subtotal", "discount", "shipping_fee", "total", "coupon_id", "shipping_address",
	"created_at", "updated_at",
}

const snapshotJSON = `{"recipient":"Maria Quispe","phone":"987654321","line1":"Av. Siempre Viva 742","city":"Lima","province":"Lima","postal":"15001","country":"PE"}`

func TestRepository_Create(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	repo := NewRepository(conn)

	o := &Order{
		Number: "ORD-20260828120000-aabbccdd",
		UserID: 1, Status: StatusPending, PaymentStatus: PaymentPending,
		PaymentMethod: MethodBankTransfer,
		Subtotal:      decimal.NewFromInt(80),
		Discount:      decimal.NewFromInt(8),
		ShippingFee:   decimal.NewFromInt(15),
		Total:         decimal.NewFromInt(87),
		ShippingAddress: address.Snapshot{
			Recipient: "Maria Quispe", Line1: "Av. Siempre Viva 742",
		},
		Lines: []*Line{
			{ProductID: 2, ProductName: "Guinea Pig Pellets", UnitPrice: decimal.NewFromInt(40), Quantity: 2},
		},
		Payment: &PaymentInfo{Bank: "BCP", TransactionStatus: "PENDING"},
	}

	mock.ExpectQuery("INSERT INTO orders").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(50, time.Now(), time.Now()))
	mock.ExpectQuery("INSERT INTO order_lines").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(71))
	mock.ExpectQuery("INSERT INTO payment_info").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(5, time.Now()))

	created, err := repo.Create(context.Background(), o)

	require.NoError(t, err)
	assert.Equal(t, uint(50), created.ID)
	assert.Equal(t, uint(50), created.Lines[0].OrderID)
	assert.Equal(t, uint(71), created.Lines[0].ID)
	assert.Equal(t, uint(50), created.Payment.OrderID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByID(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	repo := NewRepository(conn)

	t.Run("Found with lines and no payment info", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM orders WHERE id").
			WithArgs(uint(50)).
			WillReturnRows(sqlmock.NewRows(orderCols).AddRow(
				50, "ORD-20260828120000-aabbccdd", 1, "PENDING", "PENDING", "CASH_ON_DELIVERY",
				"80", "0", "15", "95", nil, []byte(snapshotJSON), time.Now(), time.Now(),
			))
		mock.ExpectQuery("SELECT (.+) FROM order_lines").
			WithArgs(uint(50)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "product_id", "product_name", "unit_price", "quantity"}).
				AddRow(71, 50, 2, "Guinea Pig Pellets", "40", 2))
		mock.ExpectQuery("SELECT (.+) FROM payment_info").
			WithArgs(uint(50)).
			WillReturnRows(sqlmock.NewRows(nil))

		o, err := repo.GetByID(context.Background(), 50)

		require.NoError(t, err)
		assert.Equal(t, StatusPending, o.Status)
		assert.Equal(t, "Maria Quispe", o.ShippingAddress.Recipient)
		require.Len(t, o.Lines, 1)
		assert.True(t, o.Lines[0].Subtotal().Equal(decimal.NewFromInt(80)))
		assert.Nil(t, o.Payment)
	})

	t.Run("Missing order", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM orders WHERE id").
			WithArgs(uint(99)).
			WillReturnRows(sqlmock.NewRows(nil))

		_, err := repo.GetByID(context.Background(), 99)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestRepository_UpdateStatus(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	repo := NewRepository(conn)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE orders SET status").
			WithArgs(StatusProcessing, uint(50), StatusPending).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.UpdateStatus(context.Background(), 50, StatusPending, StatusProcessing))
	})

	t.Run("Lost race means zero rows", func(t *testing.T) {
		mock.ExpectExec("UPDATE orders SET status").
			WithArgs(StatusProcessing, uint(50), StatusPending).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateStatus(context.Background(), 50, StatusPending, StatusProcessing)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestRepository_List(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	repo := NewRepository(conn)

	status := StatusPending
	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT (.+) FROM orders WHERE user_id = \\$1 AND status = \\$2 AND created_at >= \\$3").
		WithArgs(uint(1), status, from).
		WillReturnRows(sqlmock.NewRows(orderCols).AddRow(
			50, "ORD-20260828120000-aabbccdd", 1, "PENDING", "PENDING", "CARD",
			"80", "0", "15", "95", nil, []byte(snapshotJSON), time.Now(), time.Now(),
		))

	orders, err := repo.ListByUser(context.Background(), 1, ListFilter{Status: &status, From: &from})

	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "ORD-20260828120000-aabbccdd", orders[0].Number)
}
