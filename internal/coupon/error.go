package coupon

import "errors"

var (
	// -- Eligibility, each a distinct user-facing reason --
	ErrNotFound        = errors.New("coupon not found")
	ErrInactive        = errors.New("coupon is not active")
	ErrExpired         = errors.New("coupon is outside its validity window")
	ErrExhausted       = errors.New("coupon has reached its usage limit")
	ErrMinimumPurchase = errors.New("purchase amount below coupon minimum")

	// -- Admin input --
	ErrCodeTaken     = errors.New("coupon code already exists")
	ErrInvalidWindow = errors.New("coupon start date is after end date")
	ErrInvalidValue  = errors.New("invalid coupon discount value")
)
