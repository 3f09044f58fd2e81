package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"cuymarket-be/internal/auth"
	"cuymarket-be/internal/order"
)

type checkoutRequest struct {
	AddressID     uint    `json:"address_id"`
	PaymentMethod string  `json:"payment_method"`
	CouponCode    *string `json:"coupon_code,omitempty"`

	Payment struct {
		Phone      string `json:"phone"`
		Bank       string `json:"bank"`
		CardHolder string `json:"card_holder"`
		CardLast4  string `json:"card_last4"`
		Receipt    []byte `json:"receipt,omitempty"`
	} `json:"payment"`
}

func (a *App) checkout(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFrom(r.Context())

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	o, err := a.Orders.Checkout(r.Context(), userID, order.CheckoutInput{
		AddressID:     req.AddressID,
		PaymentMethod: order.PaymentMethod(req.PaymentMethod),
		CouponCode:    req.CouponCode,
		Payment: order.PaymentExtras{
			Phone:      req.Payment.Phone,
			Bank:       req.Payment.Bank,
			CardHolder: req.Payment.CardHolder,
			CardLast4:  req.Payment.CardLast4,
			Receipt:    req.Payment.Receipt,
		},
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toOrderResponse(o))
}

func (a *App) getOrder(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFrom(r.Context())

	id, ok := pathID(r, "id")
	if !ok {
		respondBadRequest(w, "invalid order id")
		return
	}

	o, err := a.Orders.Get(r.Context(), id, identity.UserID, identity.Staff)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toOrderResponse(o))
}

func (a *App) listOrders(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFrom(r.Context())

	filter, err := parseListFilter(r)
	if err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	var orders []*order.Order
	if identity.Staff && r.URL.Query().Get("all") == "true" {
		orders, err = a.Orders.List(r.Context(), filter)
	} else {
		orders, err = a.Orders.ListByUser(r.Context(), identity.UserID, filter)
	}
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toOrderListResponse(orders))
}

func parseListFilter(r *http.Request) (order.ListFilter, error) {
	var f order.ListFilter
	q := r.URL.Query()

	if v := q.Get("status"); v != "" {
		status := order.Status(v)
		if !status.Valid() {
			return f, fmt.Errorf("unknown status %q", v)
		}
		f.Status = &status
	}
	if v := q.Get("from"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, fmt.Errorf("invalid from timestamp %q", v)
		}
		f.From = &ts
	}
	if v := q.Get("to"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, fmt.Errorf("invalid to timestamp %q", v)
		}
		f.To = &ts
	}
	return f, nil
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (a *App) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFrom(r.Context())

	id, ok := pathID(r, "id")
	if !ok {
		respondBadRequest(w, "invalid order id")
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	actor := fmt.Sprintf("staff:%d", identity.UserID)
	o, err := a.Orders.Transition(r.Context(), id, order.Status(req.Status), actor)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toOrderResponse(o))
}

type updatePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status"`
}

func (a *App) updateOrderPaymentStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondBadRequest(w, "invalid order id")
		return
	}

	var req updatePaymentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	o, err := a.Orders.TransitionPayment(r.Context(), id, order.PaymentStatus(req.PaymentStatus))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toOrderResponse(o))
}
