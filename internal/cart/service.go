package cart

import (
	"context"
	"errors"

	"cuymarket-be/internal/logger"
	"cuymarket-be/internal/product"
	"cuymarket-be/internal/stock"

	"go.uber.org/zap"
)

// Service owns the cart surface. All availability checks here are
// advisory, a courtesy to the shopper; the checkout transaction is the
// only place stock is actually reserved.
type Service interface {
	Get(ctx context.Context, userID uint) (*Cart, error)
	AddLine(ctx context.Context, userID, productID uint, quantity int) (*Cart, error)
	UpdateLineQuantity(ctx context.Context, userID, lineID uint, quantity int) (*Cart, error)
	RemoveLine(ctx context.Context, userID, lineID uint) (*Cart, error)
	Clear(ctx context.Context, userID uint) error
}

type service struct {
	repo     Repository
	products product.Repository
}

func NewService(repo Repository, products product.Repository) Service {
	return &service{repo: repo, products: products}
}

func (s *service) Get(ctx context.Context, userID uint) (*Cart, error) {
	c, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	c.Lines, err = s.repo.Lines(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) AddLine(ctx context.Context, userID, productID uint, quantity int) (*Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	c, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, ErrProductInactive
	}

	// Adding a product already in the cart merges into the existing
	// line, so the availability check covers the combined quantity.
	existing, err := s.repo.LineByProduct(ctx, c.ID, productID)
	if err != nil && !errors.Is(err, ErrLineNotFound) {
		return nil, err
	}

	wanted := quantity
	if existing != nil {
		wanted += existing.Quantity
	}
	if wanted > p.AvailableQuantity {
		return nil, &stock.InsufficientStockError{
			ProductID:   p.ID,
			ProductName: p.Name,
			Available:   p.AvailableQuantity,
			Requested:   wanted,
		}
	}

	if existing != nil {
		err = s.repo.UpdateLineQuantity(ctx, c.ID, existing.ID, wanted)
	} else {
		_, err = s.repo.InsertLine(ctx, c.ID, productID, quantity)
	}
	if err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Debug("cart line added",
		zap.Uint("user_id", userID),
		zap.Uint("product_id", productID),
		zap.Int("quantity", wanted),
	)

	c.Lines, err = s.repo.Lines(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) UpdateLineQuantity(ctx context.Context, userID, lineID uint, quantity int) (*Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	c, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	line, err := s.repo.LineByID(ctx, c.ID, lineID)
	if err != nil {
		return nil, err
	}

	p, err := s.products.GetByID(ctx, line.ProductID)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, ErrProductInactive
	}
	if quantity > p.AvailableQuantity {
		return nil, &stock.InsufficientStockError{
			ProductID:   p.ID,
			ProductName: p.Name,
			Available:   p.AvailableQuantity,
			Requested:   quantity,
		}
	}

	if err := s.repo.UpdateLineQuantity(ctx, c.ID, lineID, quantity); err != nil {
		return nil, err
	}

	c.Lines, err = s.repo.Lines(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) RemoveLine(ctx context.Context, userID, lineID uint) (*Cart, error) {
	c, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.DeleteLine(ctx, c.ID, lineID); err != nil {
		return nil, err
	}

	c.Lines, err = s.repo.Lines(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) Clear(ctx context.Context, userID uint) error {
	c, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return err
	}
	return s.repo.Clear(ctx, c.ID)
}
