// Package api is the REST surface of the fulfillment core. Handlers stay
// thin: decode, delegate to a service, map the error, encode.
package api

import (
	"net/http"
	"strconv"

	"cuymarket-be/internal/cart"
	"cuymarket-be/internal/config"
	"cuymarket-be/internal/coupon"
	"cuymarket-be/internal/logger"
	"cuymarket-be/internal/metrics"
	"cuymarket-be/internal/middleware"
	"cuymarket-be/internal/order"
	"cuymarket-be/internal/stock"

	"github.com/gorilla/mux"
)

type App struct {
	Cfg     *config.Config
	Carts   cart.Service
	Orders  order.Service
	Stock   stock.Service
	Coupons coupon.Service
	Metrics *metrics.Metrics
}

func (a *App) Routes() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", a.health).Methods(http.MethodGet)
	r.Handle("/metrics", a.Metrics.Handler()).Methods(http.MethodGet)

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.Use(
		logger.RequestIDMiddleware,
		logger.LoggingMiddleware,
		a.Metrics.HTTPMiddleware,
		middleware.RequireAuth([]byte(a.Cfg.JWTSecret)),
		middleware.RateLimit,
	)

	v1.HandleFunc("/cart", a.getCart).Methods(http.MethodGet)
	v1.HandleFunc("/cart", a.clearCart).Methods(http.MethodDelete)
	v1.HandleFunc("/cart/lines", a.addCartLine).Methods(http.MethodPost)
	v1.HandleFunc("/cart/lines/{lineID}", a.updateCartLine).Methods(http.MethodPut)
	v1.HandleFunc("/cart/lines/{lineID}", a.removeCartLine).Methods(http.MethodDelete)

	v1.HandleFunc("/checkout", a.checkout).Methods(http.MethodPost)

	v1.HandleFunc("/orders", a.listOrders).Methods(http.MethodGet)
	v1.HandleFunc("/orders/{id}", a.getOrder).Methods(http.MethodGet)

	v1.HandleFunc("/coupons/validate", a.validateCoupon).Methods(http.MethodPost)

	staff := v1.NewRoute().Subrouter()
	staff.Use(middleware.RequireStaff)
	staff.HandleFunc("/orders/{id}/status", a.updateOrderStatus).Methods(http.MethodPut)
	staff.HandleFunc("/orders/{id}/payment-status", a.updateOrderPaymentStatus).Methods(http.MethodPut)
	staff.HandleFunc("/stock/{productID}/adjust", a.adjustStock).Methods(http.MethodPost)
	staff.HandleFunc("/stock/{productID}/movements", a.listStockMovements).Methods(http.MethodGet)
	staff.HandleFunc("/coupons", a.createCoupon).Methods(http.MethodPost)
	staff.HandleFunc("/coupons", a.listCoupons).Methods(http.MethodGet)
	staff.HandleFunc("/coupons/{id}", a.updateCoupon).Methods(http.MethodPut)
	staff.HandleFunc("/coupons/{id}", a.setCouponActive).Methods(http.MethodPatch)
	staff.HandleFunc("/coupons/{id}", a.deleteCoupon).Methods(http.MethodDelete)

	return r
}

func (a *App) health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// pathID parses a numeric path variable.
func pathID(r *http.Request, name string) (uint, bool) {
	n, err := strconv.ParseUint(mux.Vars(r)[name], 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(n), true
}
