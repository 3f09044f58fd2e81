package cart

import "errors"

var (
	ErrLineNotFound    = errors.New("cart line not found")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrProductInactive = errors.New("product is not available for purchase")
)
