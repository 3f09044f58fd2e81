package api

import (
	"time"

	"cuymarket-be/internal/cart"
	"cuymarket-be/internal/coupon"
	"cuymarket-be/internal/order"
	"cuymarket-be/internal/stock"

	"github.com/shopspring/decimal"
)

type cartLineResponse struct {
	ID          uint            `json:"id"`
	ProductID   uint            `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Available   int             `json:"available"`
	Active      bool            `json:"active"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type cartResponse struct {
	ID        uint               `json:"id"`
	Lines     []cartLineResponse `json:"lines"`
	Subtotal  decimal.Decimal    `json:"subtotal"`
	LineCount int                `json:"line_count"`
	UnitCount int                `json:"unit_count"`
}

func toCartResponse(c *cart.Cart) cartResponse {
	totals := c.Totals()
	resp := cartResponse{
		ID:        c.ID,
		Lines:     make([]cartLineResponse, 0, len(c.Lines)),
		Subtotal:  totals.Subtotal,
		LineCount: totals.LineCount,
		UnitCount: totals.UnitCount,
	}
	for _, l := range c.Lines {
		resp.Lines = append(resp.Lines, cartLineResponse{
			ID:          l.ID,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			UnitPrice:   l.UnitPrice,
			Quantity:    l.Quantity,
			Available:   l.AvailableQuantity,
			Active:      l.ProductActive,
			Subtotal:    l.Subtotal(),
		})
	}
	return resp
}

type orderLineResponse struct {
	ProductID   uint            `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type orderResponse struct {
	ID            uint                `json:"id"`
	Number        string              `json:"number"`
	Status        string              `json:"status"`
	PaymentStatus string              `json:"payment_status"`
	PaymentMethod string              `json:"payment_method"`
	Subtotal      decimal.Decimal     `json:"subtotal"`
	Discount      decimal.Decimal     `json:"discount"`
	ShippingFee   decimal.Decimal     `json:"shipping_fee"`
	Total         decimal.Decimal     `json:"total"`
	Address       any                 `json:"shipping_address"`
	Lines         []orderLineResponse `json:"lines,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

func toOrderResponse(o *order.Order) orderResponse {
	resp := orderResponse{
		ID:            o.ID,
		Number:        o.Number,
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		PaymentMethod: string(o.PaymentMethod),
		Subtotal:      o.Subtotal,
		Discount:      o.Discount,
		ShippingFee:   o.ShippingFee,
		Total:         o.Total,
		Address:       o.ShippingAddress,
		CreatedAt:     o.CreatedAt,
	}
	for _, l := range o.Lines {
		resp.Lines = append(resp.Lines, orderLineResponse{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			UnitPrice:   l.UnitPrice,
			Quantity:    l.Quantity,
			Subtotal:    l.Subtotal(),
		})
	}
	return resp
}

func toOrderListResponse(orders []*order.Order) []orderResponse {
	resp := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, toOrderResponse(o))
	}
	return resp
}

type couponResponse struct {
	ID              uint             `json:"id"`
	Code            string           `json:"code"`
	Kind            string           `json:"kind"`
	Value           decimal.Decimal  `json:"value"`
	MinimumPurchase *decimal.Decimal `json:"minimum_purchase,omitempty"`
	StartsAt        time.Time        `json:"starts_at"`
	EndsAt          time.Time        `json:"ends_at"`
	MaxUses         *int             `json:"max_uses,omitempty"`
	CurrentUses     int              `json:"current_uses"`
	Active          bool             `json:"active"`
}

func toCouponResponse(c *coupon.Coupon) couponResponse {
	return couponResponse{
		ID:              c.ID,
		Code:            c.Code,
		Kind:            string(c.Kind),
		Value:           c.Value,
		MinimumPurchase: c.MinimumPurchase,
		StartsAt:        c.StartsAt,
		EndsAt:          c.EndsAt,
		MaxUses:         c.MaxUses,
		CurrentUses:     c.CurrentUses,
		Active:          c.Active,
	}
}

type movementResponse struct {
	ID             uint      `json:"id"`
	Kind           string    `json:"kind"`
	Quantity       int       `json:"quantity"`
	QuantityBefore int       `json:"quantity_before"`
	QuantityAfter  int       `json:"quantity_after"`
	Reason         string    `json:"reason"`
	Actor          string    `json:"actor"`
	CreatedAt      time.Time `json:"created_at"`
}

func toMovementListResponse(movements []*stock.Movement) []movementResponse {
	resp := make([]movementResponse, 0, len(movements))
	for _, m := range movements {
		resp = append(resp, movementResponse{
			ID:             m.ID,
			Kind:           string(m.Kind),
			Quantity:       m.Quantity,
			QuantityBefore: m.QuantityBefore,
			QuantityAfter:  m.QuantityAfter,
			Reason:         m.Reason,
			Actor:          m.Actor,
			CreatedAt:      m.CreatedAt,
		})
	}
	return resp
}
