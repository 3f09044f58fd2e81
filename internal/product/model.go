// Package product is the read side of the external catalog: the
// fulfillment core only consumes current price, availability and the
// active flag, and never caches them beyond a single transaction.
package product

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID                uint
	Name              string
	Price             decimal.Decimal
	AvailableQuantity int
	Active            bool
	ReorderThreshold  int
	UpdatedAt         time.Time
}

// BelowReorderThreshold reports whether available stock has dropped under
// the catalog's restock point.
func (p *Product) BelowReorderThreshold() bool {
	return p.AvailableQuantity < p.ReorderThreshold
}
