package api

import (
	"encoding/json"
	"net/http"
	"time"

	"cuymarket-be/internal/coupon"

	"github.com/shopspring/decimal"
)

type couponRequest struct {
	Code            string           `json:"code"`
	Kind            string           `json:"kind"`
	Value           decimal.Decimal  `json:"value"`
	MinimumPurchase *decimal.Decimal `json:"minimum_purchase,omitempty"`
	StartsAt        time.Time        `json:"starts_at"`
	EndsAt          time.Time        `json:"ends_at"`
	MaxUses         *int             `json:"max_uses,omitempty"`
}

func (req *couponRequest) toModel() *coupon.Coupon {
	return &coupon.Coupon{
		Code:            req.Code,
		Kind:            coupon.Kind(req.Kind),
		Value:           req.Value,
		MinimumPurchase: req.MinimumPurchase,
		StartsAt:        req.StartsAt,
		EndsAt:          req.EndsAt,
		MaxUses:         req.MaxUses,
	}
}

func (a *App) createCoupon(w http.ResponseWriter, r *http.Request) {
	var req couponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	created, err := a.Coupons.Create(r.Context(), req.toModel())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toCouponResponse(created))
}

func (a *App) updateCoupon(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondBadRequest(w, "invalid coupon id")
		return
	}

	var req couponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	c := req.toModel()
	c.ID = id

	updated, err := a.Coupons.Update(r.Context(), c)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCouponResponse(updated))
}

type setCouponActiveRequest struct {
	Active bool `json:"active"`
}

func (a *App) setCouponActive(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondBadRequest(w, "invalid coupon id")
		return
	}

	var req setCouponActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	c, err := a.Coupons.SetActive(r.Context(), id, req.Active)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCouponResponse(c))
}

func (a *App) deleteCoupon(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondBadRequest(w, "invalid coupon id")
		return
	}

	if err := a.Coupons.Delete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) listCoupons(w http.ResponseWriter, r *http.Request) {
	onlyActive := r.URL.Query().Get("active") == "true"

	coupons, err := a.Coupons.List(r.Context(), onlyActive)
	if err != nil {
		respondError(w, r, err)
		return
	}

	resp := make([]couponResponse, 0, len(coupons))
	for _, c := range coupons {
		resp = append(resp, toCouponResponse(c))
	}
	respondJSON(w, http.StatusOK, resp)
}

type validateCouponRequest struct {
	Code   string          `json:"code"`
	Amount decimal.Decimal `json:"amount"`
}

type validateCouponResponse struct {
	Coupon   couponResponse  `json:"coupon"`
	Discount decimal.Decimal `json:"discount"`
}

// validateCoupon is the pre-checkout dry run: it reports eligibility and
// the discount the code would earn, without recording a use.
func (a *App) validateCoupon(w http.ResponseWriter, r *http.Request) {
	var req validateCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	c, err := a.Coupons.Validate(r.Context(), req.Code, req.Amount, time.Now())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, validateCouponResponse{
		Coupon:   toCouponResponse(c),
		Discount: c.Discount(req.Amount),
	})
}
