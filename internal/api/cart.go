package api

import (
	"encoding/json"
	"net/http"

	"cuymarket-be/internal/auth"
)

type addCartLineRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type updateCartLineRequest struct {
	Quantity int `json:"quantity"`
}

func (a *App) getCart(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFrom(r.Context())

	c, err := a.Carts.Get(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartResponse(c))
}

func (a *App) addCartLine(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFrom(r.Context())

	var req addCartLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	c, err := a.Carts.AddLine(r.Context(), userID, req.ProductID, req.Quantity)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toCartResponse(c))
}

func (a *App) updateCartLine(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFrom(r.Context())

	lineID, ok := pathID(r, "lineID")
	if !ok {
		respondBadRequest(w, "invalid line id")
		return
	}

	var req updateCartLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	c, err := a.Carts.UpdateLineQuantity(r.Context(), userID, lineID, req.Quantity)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartResponse(c))
}

func (a *App) removeCartLine(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFrom(r.Context())

	lineID, ok := pathID(r, "lineID")
	if !ok {
		respondBadRequest(w, "invalid line id")
		return
	}

	c, err := a.Carts.RemoveLine(r.Context(), userID, lineID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartResponse(c))
}

func (a *App) clearCart(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFrom(r.Context())

	if err := a.Carts.Clear(r.Context(), userID); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
