package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/iho/assetvault/internal/infrastructure/metrics"
)

func TestMetricsMiddlewareLabelsByRoutePattern(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(Metrics(m))
	r.Get("/api/v1/assets/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, id := range []string{"0xaaa", "0xbbb"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/assets/"+id, nil))
		if rr.Code != http.StatusTeapot {
			t.Fatalf("unexpected status %d", rr.Code)
		}
	}

	var metric dto.Metric
	if err := m.HTTPRequests.WithLabelValues(http.MethodGet, "/api/v1/assets/{id}", "418").Write(&metric); err != nil {
		t.Fatalf("failed to read counter: %v", err)
	}
	if got := metric.GetCounter().GetValue(); got != 2 {
		t.Fatalf("expected both requests under one series, got %v", got)
	}
}

func TestMetricsMiddlewareUnmatchedRoute(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	h := Metrics(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	var metric dto.Metric
	if err := m.HTTPRequests.WithLabelValues(http.MethodGet, "unmatched", "404").Write(&metric); err != nil {
		t.Fatalf("failed to read counter: %v", err)
	}
	if got := metric.GetCounter().GetValue(); got != 1 {
		t.Fatalf("expected unmatched request to be counted, got %v", got)
	}
}
