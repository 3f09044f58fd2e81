package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCheckoutCounter(t *testing.T) {
	m := New()

	m.CheckoutsTotal.WithLabelValues("success").Inc()
	m.CheckoutsTotal.WithLabelValues("success").Inc()
	m.CheckoutsTotal.WithLabelValues("insufficient_stock").Inc()

	assert.Equal(t, float64(2), testutil.ToFloat64(m.CheckoutsTotal.WithLabelValues("success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CheckoutsTotal.WithLabelValues("insufficient_stock")))
}

func TestHTTPMiddlewareAndHandler(t *testing.T) {
	m := New()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	handler := m.HTTPMiddleware(next)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	// The histogram must show up on the scrape endpoint.
	scrape := httptest.NewRecorder()
	m.Handler().ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, scrape.Code)
	assert.Contains(t, scrape.Body.String(), "http_request_duration_seconds")
}
