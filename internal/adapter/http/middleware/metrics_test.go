package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/iho/custodyledger/internal/infrastructure/metrics"
)

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	testCases := []struct {
		name       string
		method     string
		path       string
		statusCode int
		label      string
	}{
		{
			name:       "labels account path by pattern",
			method:     http.MethodGet,
			path:       "/accounts/01ABC123",
			statusCode: http.StatusTeapot,
			label:      "/accounts/{id}",
		},
		{
			name:       "static route",
			method:     http.MethodPost,
			path:       "/health",
			statusCode: http.StatusCreated,
			label:      "/health",
		},
		{
			name:       "unknown route collapses",
			method:     http.MethodGet,
			path:       "/nope/123",
			statusCode: http.StatusNotFound,
			label:      unmatchedRoute,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := metrics.New(prometheus.NewRegistry())

			r := chi.NewRouter()
			r.Use(Metrics(m))
			handler := func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.statusCode)
			}
			r.Get("/accounts/{id}", handler)
			r.Post("/health", handler)
			r.NotFound(handler)

			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(tc.method, tc.path, nil))

			if rr.Code != tc.statusCode {
				t.Fatalf("expected status %d, got %d", tc.statusCode, rr.Code)
			}
			if got := testutil.ToFloat64(m.HTTPInFlight); got != 0 {
				t.Fatalf("expected in-flight gauge to return to 0, got %v", got)
			}

			counter := m.HTTPRequests.WithLabelValues(tc.method, tc.label, strconv.Itoa(tc.statusCode))
			if got := testutil.ToFloat64(counter); got != 1 {
				t.Fatalf("expected counter to be 1, got %v", got)
			}
		})
	}
}

func TestRoutePatternWithoutRouter(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/accounts/1", nil)
	if got := routePattern(req); got != unmatchedRoute {
		t.Fatalf("expected %q, got %q", unmatchedRoute, got)
	}
}
