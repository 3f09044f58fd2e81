package stock

import "time"

type MovementKind string

const (
	MovementIncrease MovementKind = "INCREASE"
	MovementDecrease MovementKind = "DECREASE"
)

// Movement is one append-only audit entry for a stock adjustment.
// Rows are never updated or deleted.
type Movement struct {
	ID             uint
	ProductID      uint
	Kind           MovementKind
	Quantity       int
	QuantityBefore int
	QuantityAfter  int
	Reason         string
	Actor          string
	CreatedAt      time.Time
}
