package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"cuymarket-be/internal/auth"
	"cuymarket-be/internal/product"
)

type adjustStockRequest struct {
	Op       string `json:"op"` // increment | decrement | set
	Quantity int    `json:"quantity"`
	Reason   string `json:"reason"`
}

type stockResponse struct {
	ProductID uint   `json:"product_id"`
	Name      string `json:"name"`
	Available int    `json:"available"`
	Active    bool   `json:"active"`
}

func toStockResponse(p *product.Product) stockResponse {
	return stockResponse{
		ProductID: p.ID,
		Name:      p.Name,
		Available: p.AvailableQuantity,
		Active:    p.Active,
	}
}

func (a *App) adjustStock(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFrom(r.Context())

	productID, ok := pathID(r, "productID")
	if !ok {
		respondBadRequest(w, "invalid product id")
		return
	}

	var req adjustStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	reason := req.Reason
	if reason == "" {
		reason = "manual adjustment"
	}
	actor := fmt.Sprintf("staff:%d", identity.UserID)

	var (
		p   *product.Product
		err error
	)
	switch req.Op {
	case "increment":
		p, err = a.Stock.Increment(r.Context(), productID, req.Quantity, reason, actor)
	case "decrement":
		p, err = a.Stock.Decrement(r.Context(), productID, req.Quantity, reason, actor)
	case "set":
		p, err = a.Stock.SetAbsolute(r.Context(), productID, req.Quantity, actor)
	default:
		respondBadRequest(w, fmt.Sprintf("unknown op %q", req.Op))
		return
	}
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toStockResponse(p))
}

func (a *App) listStockMovements(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(r, "productID")
	if !ok {
		respondBadRequest(w, "invalid product id")
		return
	}

	var from, to *time.Time
	q := r.URL.Query()
	if v := q.Get("from"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondBadRequest(w, "invalid from timestamp")
			return
		}
		from = &ts
	}
	if v := q.Get("to"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondBadRequest(w, "invalid to timestamp")
			return
		}
		to = &ts
	}

	movements, err := a.Stock.Movements(r.Context(), productID, from, to)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toMovementListResponse(movements))
}
