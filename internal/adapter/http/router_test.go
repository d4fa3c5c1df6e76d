package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/iho/custodyledger/internal/adapter/http/handler"
	apimiddleware "github.com/iho/custodyledger/internal/adapter/http/middleware"
	"github.com/iho/custodyledger/internal/domain"
	"github.com/iho/custodyledger/internal/infrastructure/metrics"
	"github.com/iho/custodyledger/internal/usecase/mocks"
)

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_CreditRoutesRequireCaller(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/credits/cr-1", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected anonymous credit lookup to return 401, got %d", rec.Code)
	}
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.RateLimiter = apimiddleware.NewRateLimiter(1, 1)
	}))

	send := func() int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/model", nil)
		req.RemoteAddr = "1.2.3.4:1234"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send(); code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", code)
	}
	if code := send(); code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", code)
	}
}

func TestNewRouter_IdempotencyMiddlewareInvokesStore(t *testing.T) {
	store := mocks.NewMockIdempotencyStore()
	var checked bool
	store.CheckAndSetFunc = func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
		checked = key == "key-123" && ttl == time.Minute
		return false, nil, nil
	}

	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.IdempotencyStore = store
		cfg.IdempotencyTTL = time.Minute
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/model/train", strings.NewReader(`{}`))
	req.Header.Set(apimiddleware.IdempotencyKeyHeader, "key-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if !checked {
		t.Fatalf("expected idempotency store to be used")
	}
}

func TestNewRouter_ServesMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.Metrics = metrics.New(registry)
		cfg.Gatherer = registry
	}))

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/model", nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `custodyledger_http_requests_total{method="GET",path="/api/v1/model",status="200"} 1`) {
		t.Fatalf("expected request counter in exposition, got:\n%s", rec.Body.String())
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig())

	chiRoutes, ok := router.(chi.Routes)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"POST /api/v1/accounts/",
		"GET /api/v1/accounts/",
		"GET /api/v1/accounts/{id}",
		"GET /api/v1/accounts/{id}/transactions",
		"GET /api/v1/accounts/{id}/payments",
		"GET /api/v1/accounts/{id}/reconciliation",
		"POST /api/v1/transactions/transfer",
		"POST /api/v1/transactions/pay",
		"POST /api/v1/transactions/refund",
		"POST /api/v1/transactions/{id}/cancel",
		"GET /api/v1/transactions/{id}",
		"GET /api/v1/transactions/",
		"POST /api/v1/credits/decide",
		"GET /api/v1/credits/",
		"GET /api/v1/credits/{id}",
		"PATCH /api/v1/credits/{id}",
		"GET /api/v1/reports/transactions",
		"GET /api/v1/reports/summary",
		"GET /api/v1/reports/external-refs",
		"GET /api/v1/reports/reconciliation",
		"GET /api/v1/model",
		"POST /api/v1/model/train",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

type stubModel struct{}

func (stubModel) Status() domain.ModelStatus { return domain.ModelStatus{State: domain.ModelStateUntrained} }

func (stubModel) Train(ctx context.Context) error { return nil }

func newRouterConfig(opts ...func(*RouterConfig)) RouterConfig {
	cfg := RouterConfig{
		AccountHandler:     handler.NewAccountHandler(nil, nil, nil),
		TransactionHandler: handler.NewTransactionHandler(nil, nil),
		CreditHandler:      handler.NewCreditHandler(nil),
		ReportHandler:      handler.NewReportHandler(nil, nil),
		ModelHandler:       handler.NewModelHandler(stubModel{}),
		HealthHandler:      &handler.HealthHandler{},
		Logger:             zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}
