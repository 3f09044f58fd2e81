package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is the per-user staging area for a future order. One row per user,
// created lazily on first access.
type Cart struct {
	ID        uint
	UserID    uint
	CreatedAt time.Time
	Lines     []*Line
}

// Line is a cart entry joined with the live catalog row. Name, price and
// availability reflect the product NOW, not when the line was added; nothing
// is snapshotted until checkout.
type Line struct {
	ID        uint
	CartID    uint
	ProductID uint
	Quantity  int
	AddedAt   time.Time

	ProductName       string
	UnitPrice         decimal.Decimal
	AvailableQuantity int
	ProductActive     bool
}

// Subtotal is quantity times the current unit price.
func (l *Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Totals summarizes a cart at current prices.
type Totals struct {
	Subtotal  decimal.Decimal
	LineCount int
	UnitCount int
}

func (c *Cart) Totals() Totals {
	t := Totals{Subtotal: decimal.Zero, LineCount: len(c.Lines)}
	for _, l := range c.Lines {
		t.Subtotal = t.Subtotal.Add(l.Subtotal())
		t.UnitCount += l.Quantity
	}
	return t
}
