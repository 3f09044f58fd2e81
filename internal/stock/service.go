package stock

import (
	"context"
	"database/sql"
	"time"

	"cuymarket-be/internal/db"
	"cuymarket-be/internal/logger"
	"cuymarket-be/internal/product"

	"go.uber.org/zap"
)

// Service wraps the ledger repository for standalone adjustments coming in
// through the API. Each adjustment (guarded update + movement row) commits
// as its own transaction; checkout and cancellation bind the repository to
// their own transactions instead.
type Service interface {
	Decrement(ctx context.Context, productID uint, qty int, reason, actor string) (*product.Product, error)
	Increment(ctx context.Context, productID uint, qty int, reason, actor string) (*product.Product, error)
	SetAbsolute(ctx context.Context, productID uint, newQty int, actor string) (*product.Product, error)
	Movements(ctx context.Context, productID uint, from, to *time.Time) ([]*Movement, error)
}

type service struct {
	db   *sql.DB
	repo Repository
}

func NewService(database *sql.DB, repo Repository) Service {
	return &service{db: database, repo: repo}
}

func (s *service) Decrement(ctx context.Context, productID uint, qty int, reason, actor string) (*product.Product, error) {
	var p *product.Product
	err := db.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		p, err = s.repo.WithTx(tx).Decrement(ctx, productID, qty, reason, actor)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logAdjustment(ctx, p, MovementDecrease, qty, reason)
	return p, nil
}

func (s *service) Increment(ctx context.Context, productID uint, qty int, reason, actor string) (*product.Product, error) {
	var p *product.Product
	err := db.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		p, err = s.repo.WithTx(tx).Increment(ctx, productID, qty, reason, actor)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logAdjustment(ctx, p, MovementIncrease, qty, reason)
	return p, nil
}

func (s *service) SetAbsolute(ctx context.Context, productID uint, newQty int, actor string) (*product.Product, error) {
	var p *product.Product
	err := db.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		p, err = s.repo.WithTx(tx).SetAbsolute(ctx, productID, newQty, actor)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("stock set",
		zap.Uint("product_id", p.ID),
		zap.Int("quantity", p.AvailableQuantity),
		zap.String("actor", actor),
	)
	return p, nil
}

func (s *service) Movements(ctx context.Context, productID uint, from, to *time.Time) ([]*Movement, error) {
	return s.repo.Movements(ctx, productID, from, to)
}

func (s *service) logAdjustment(ctx context.Context, p *product.Product, kind MovementKind, qty int, reason string) {
	log := logger.FromCtx(ctx).With(
		zap.Uint("product_id", p.ID),
		zap.String("kind", string(kind)),
		zap.Int("quantity", qty),
		zap.String("reason", reason),
		zap.Int("available", p.AvailableQuantity),
	)

	log.Info("stock adjusted")

	if p.BelowReorderThreshold() {
		log.Warn("product below reorder threshold",
			zap.Int("reorder_threshold", p.ReorderThreshold),
		)
	}
}
