package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cuymarket-be/internal/address"
	"cuymarket-be/internal/cart"
	"cuymarket-be/internal/coupon"
	"cuymarket-be/internal/db"
	"cuymarket-be/internal/logger"
	"cuymarket-be/internal/metrics"
	"cuymarket-be/internal/notify"
	"cuymarket-be/internal/stock"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Service interface {
	// Checkout converts the user's cart into an order in a single
	// transaction: price at current values, apply the optional coupon,
	// reserve stock, clear the cart. Any failure leaves everything
	// untouched.
	Checkout(ctx context.Context, userID uint, in CheckoutInput) (*Order, error)

	Transition(ctx context.Context, orderID uint, next Status, actor string) (*Order, error)
	TransitionPayment(ctx context.Context, orderID uint, next PaymentStatus) (*Order, error)

	Get(ctx context.Context, orderID, requesterID uint, staff bool) (*Order, error)
	ListByUser(ctx context.Context, userID uint, f ListFilter) ([]*Order, error)
	List(ctx context.Context, f ListFilter) ([]*Order, error)
}

// Pricing carries the checkout shipping knobs from config.
type Pricing struct {
	FreeShippingThreshold decimal.Decimal
	ShippingFlatFee       decimal.Decimal
}

// Deps are the repositories checkout composes. Each is rebound to the
// checkout transaction with WithTx.
type Deps struct {
	Orders    Repository
	Carts     cart.Repository
	Addresses address.Repository
	Coupons   coupon.Repository
	Stock     stock.Repository
}

type service struct {
	conn     *sql.DB
	deps     Deps
	pricing  Pricing
	notifier notify.Notifier
	metrics  *metrics.Metrics
}

func NewService(conn *sql.DB, deps Deps, pricing Pricing, notifier notify.Notifier, m *metrics.Metrics) Service {
	return &service{conn: conn, deps: deps, pricing: pricing, notifier: notifier, metrics: m}
}

func (s *service) Checkout(ctx context.Context, userID uint, in CheckoutInput) (*Order, error) {
	if !in.PaymentMethod.Valid() {
		return nil, ErrInvalidPaymentMethod
	}

	log := logger.FromCtx(ctx)

	var created *Order
	err := db.RunInTx(ctx, s.conn, func(tx *sql.Tx) error {
		carts := s.deps.Carts.WithTx(tx)

		c, err := carts.GetOrCreate(ctx, userID)
		if err != nil {
			return err
		}
		lines, err := carts.Lines(ctx, c.ID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		addr, err := s.deps.Addresses.WithTx(tx).GetByIDForUser(ctx, in.AddressID, userID)
		if err != nil {
			return err
		}

		subtotal := decimal.Zero
		for _, l := range lines {
			if !l.ProductActive {
				return cart.ErrProductInactive
			}
			if l.Quantity > l.AvailableQuantity {
				return &stock.InsufficientStockError{
					ProductID:   l.ProductID,
					ProductName: l.ProductName,
					Available:   l.AvailableQuantity,
					Requested:   l.Quantity,
				}
			}
			subtotal = subtotal.Add(l.Subtotal())
		}

		discount := decimal.Zero
		var couponID *uint
		if in.CouponCode != nil {
			coupons := s.deps.Coupons.WithTx(tx)

			cp, err := coupons.GetByCode(ctx, *in.CouponCode)
			if err != nil {
				return err
			}
			if err := coupon.CheckEligibility(cp, subtotal, time.Now()); err != nil {
				return err
			}
			if err := coupons.IncrementUses(ctx, cp.ID); err != nil {
				return err
			}
			discount = cp.Discount(subtotal)
			couponID = &cp.ID
		}

		shipping := s.pricing.ShippingFlatFee
		if subtotal.GreaterThanOrEqual(s.pricing.FreeShippingThreshold) {
			shipping = decimal.Zero
		}

		o := &Order{
			Number:          NewNumber(time.Now()),
			UserID:          userID,
			Status:          StatusPending,
			PaymentStatus:   PaymentPending,
			PaymentMethod:   in.PaymentMethod,
			Subtotal:        subtotal,
			Discount:        discount,
			ShippingFee:     shipping,
			Total:           subtotal.Sub(discount).Add(shipping),
			CouponID:        couponID,
			ShippingAddress: addr.Snapshot(),
		}
		for _, l := range lines {
			o.Lines = append(o.Lines, &Line{
				ProductID:   l.ProductID,
				ProductName: l.ProductName,
				UnitPrice:   l.UnitPrice,
				Quantity:    l.Quantity,
			})
		}

		if err := checkAmounts(o); err != nil {
			log.Error("order amounts failed verification",
				zap.String("number", o.Number),
				zap.String("subtotal", o.Subtotal.String()),
				zap.String("discount", o.Discount.String()),
				zap.String("shipping", o.ShippingFee.String()),
				zap.String("total", o.Total.String()),
			)
			return err
		}

		if in.PaymentMethod.RequiresConfirmation() {
			o.Payment = &PaymentInfo{
				Phone:             in.Payment.Phone,
				Bank:              in.Payment.Bank,
				CardHolder:        in.Payment.CardHolder,
				CardLast4:         in.Payment.CardLast4,
				Receipt:           in.Payment.Receipt,
				TransactionStatus: "PENDING",
			}
		}

		created, err = s.deps.Orders.WithTx(tx).Create(ctx, o)
		if err != nil {
			return err
		}

		stocks := s.deps.Stock.WithTx(tx)
		actor := fmt.Sprintf("user:%d", userID)
		for _, l := range lines {
			if _, err := stocks.Decrement(ctx, l.ProductID, l.Quantity, "order "+created.Number, actor); err != nil {
				if errors.Is(err, stock.ErrInsufficientStock) {
					s.metrics.StockConflicts.Inc()
				}
				return err
			}
		}

		return carts.Clear(ctx, c.ID)
	})
	if err != nil {
		s.metrics.CheckoutsTotal.WithLabelValues(checkoutOutcome(err)).Inc()
		return nil, err
	}

	s.metrics.CheckoutsTotal.WithLabelValues("success").Inc()
	s.notifier.OrderCreated(ctx, created.ID)

	log.Info("order created",
		zap.Uint("order_id", created.ID),
		zap.String("number", created.Number),
		zap.Uint("user_id", userID),
		zap.String("total", created.Total.String()),
	)
	return created, nil
}

// checkAmounts re-derives the total from the parts about to be persisted.
// A disagreement means a bug upstream, not bad input.
func checkAmounts(o *Order) error {
	lineSum := decimal.Zero
	for _, l := range o.Lines {
		lineSum = lineSum.Add(l.Subtotal())
	}

	switch {
	case !lineSum.Equal(o.Subtotal):
		return ErrTotalMismatch
	case !o.Total.Equal(o.Subtotal.Sub(o.Discount).Add(o.ShippingFee)):
		return ErrTotalMismatch
	case o.Total.IsNegative():
		return ErrTotalMismatch
	}
	return nil
}

func checkoutOutcome(err error) string {
	switch {
	case errors.Is(err, ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, stock.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, coupon.ErrNotFound),
		errors.Is(err, coupon.ErrInactive),
		errors.Is(err, coupon.ErrExpired),
		errors.Is(err, coupon.ErrExhausted),
		errors.Is(err, coupon.ErrMinimumPurchase):
		return "coupon_rejected"
	default:
		return "error"
	}
}

func (s *service) Transition(ctx context.Context, orderID uint, next Status, actor string) (*Order, error) {
	if !next.Valid() {
		return nil, ErrUnknownStatus
	}

	var updated *Order
	err := db.RunInTx(ctx, s.conn, func(tx *sql.Tx) error {
		orders := s.deps.Orders.WithTx(tx)

		o, err := orders.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if !o.Status.CanTransitionTo(next) {
			return &InvalidTransitionError{From: string(o.Status), To: string(next)}
		}
		if err := orders.UpdateStatus(ctx, orderID, o.Status, next); err != nil {
			return err
		}

		// Cancelling puts the reserved units back on the shelf, with the
		// restoration on the ledger.
		if next == StatusCancelled {
			stocks := s.deps.Stock.WithTx(tx)
			for _, l := range o.Lines {
				if _, err := stocks.Increment(ctx, l.ProductID, l.Quantity, "order cancellation "+o.Number, actor); err != nil {
					return err
				}
			}
		}

		o.Status = next
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.OrderTransitions.WithLabelValues(string(next)).Inc()
	s.notifier.OrderStatusChanged(ctx, orderID, string(next))

	logger.FromCtx(ctx).Info("order status changed",
		zap.Uint("order_id", orderID),
		zap.String("status", string(next)),
		zap.String("actor", actor),
	)
	return updated, nil
}

func (s *service) TransitionPayment(ctx context.Context, orderID uint, next PaymentStatus) (*Order, error) {
	if !next.Valid() {
		return nil, ErrUnknownStatus
	}

	var updated *Order
	err := db.RunInTx(ctx, s.conn, func(tx *sql.Tx) error {
		orders := s.deps.Orders.WithTx(tx)

		o, err := orders.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if !o.PaymentStatus.CanTransitionTo(next) {
			return &InvalidTransitionError{From: string(o.PaymentStatus), To: string(next)}
		}
		if err := orders.UpdatePaymentStatus(ctx, orderID, o.PaymentStatus, next); err != nil {
			return err
		}

		o.PaymentStatus = next
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("order payment status changed",
		zap.Uint("order_id", orderID),
		zap.String("payment_status", string(next)),
	)
	return updated, nil
}

func (s *service) Get(ctx context.Context, orderID, requesterID uint, staff bool) (*Order, error) {
	o, err := s.deps.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	// Another user's order looks exactly like a missing one.
	if !staff && o.UserID != requesterID {
		return nil, ErrNotFound
	}
	return o, nil
}

func (s *service) ListByUser(ctx context.Context, userID uint, f ListFilter) ([]*Order, error) {
	return s.deps.Orders.ListByUser(ctx, userID, f)
}

func (s *service) List(ctx context.Context, f ListFilter) ([]*Order, error) {
	return s.deps.Orders.List(ctx, f)
}
