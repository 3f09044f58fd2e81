package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"cuymarket-be/internal/address"
	"cuymarket-be/internal/cart"
	"cuymarket-be/internal/coupon"
	"cuymarket-be/internal/logger"
	"cuymarket-be/internal/order"
	"cuymarket-be/internal/product"
	"cuymarket-be/internal/stock"

	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// respondError maps domain sentinels onto HTTP statuses. Anything
// unrecognized is an internal error: logged in full, reported opaquely.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	if status == http.StatusInternalServerError {
		logger.FromCtx(r.Context()).Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		respondJSON(w, status, errorResponse{Error: "internal server error"})
		return
	}

	respondJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, order.ErrNotFound),
		errors.Is(err, product.ErrNotFound),
		errors.Is(err, address.ErrNotFound),
		errors.Is(err, coupon.ErrNotFound),
		errors.Is(err, cart.ErrLineNotFound):
		return http.StatusNotFound

	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, stock.ErrInvalidQuantity),
		errors.Is(err, coupon.ErrInvalidWindow),
		errors.Is(err, coupon.ErrInvalidValue),
		errors.Is(err, order.ErrUnknownStatus),
		errors.Is(err, order.ErrInvalidPaymentMethod):
		return http.StatusBadRequest

	case errors.Is(err, stock.ErrInsufficientStock),
		errors.Is(err, cart.ErrProductInactive),
		errors.Is(err, coupon.ErrInactive),
		errors.Is(err, coupon.ErrExpired),
		errors.Is(err, coupon.ErrExhausted),
		errors.Is(err, coupon.ErrMinimumPurchase),
		errors.Is(err, coupon.ErrCodeTaken),
		errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, order.ErrEmptyCart):
		return http.StatusConflict

	default:
		return http.StatusInternalServerError
	}
}

// respondBadRequest is for malformed payloads that never reach a service.
func respondBadRequest(w http.ResponseWriter, msg string) {
	respondJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}
