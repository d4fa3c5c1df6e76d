package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/custodyledger/internal/adapter/http/handler"
	"github.com/iho/custodyledger/internal/adapter/http/middleware"
	"github.com/iho/custodyledger/internal/infrastructure/metrics"
	"github.com/iho/custodyledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler     *handler.AccountHandler
	TransactionHandler *handler.TransactionHandler
	CreditHandler      *handler.CreditHandler
	ReportHandler      *handler.ReportHandler
	ModelHandler       *handler.ModelHandler
	HealthHandler      *handler.HealthHandler

	Logger           zerolog.Logger
	Metrics          *metrics.Metrics
	Gatherer         prometheus.Gatherer
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	r.Use(middleware.User)

	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Limit)
		}
		if cfg.IdempotencyStore != nil {
			r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger).Wrap)
		}

		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Open)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Get("/{id}/transactions", cfg.AccountHandler.Transactions)
			r.Get("/{id}/payments", cfg.AccountHandler.Payments)
			r.Get("/{id}/reconciliation", cfg.AccountHandler.Reconcile)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Post("/transfer", cfg.TransactionHandler.Transfer)
			r.Post("/pay", cfg.TransactionHandler.Pay)
			r.Post("/refund", cfg.TransactionHandler.Refund)
			r.Post("/{id}/cancel", cfg.TransactionHandler.Cancel)
			r.Get("/{id}", cfg.TransactionHandler.Get)
			r.Get("/", cfg.TransactionHandler.List)
		})

		r.Route("/credits", func(r chi.Router) {
			r.Use(middleware.RequireUser)
			r.Post("/decide", cfg.CreditHandler.Decide)
			r.Get("/", cfg.CreditHandler.List)
			r.Get("/{id}", cfg.CreditHandler.Get)
			r.Patch("/{id}", cfg.CreditHandler.Update)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/transactions", cfg.ReportHandler.Transactions)
			r.Get("/summary", cfg.ReportHandler.Summary)
			r.Get("/external-refs", cfg.ReportHandler.ExternalRefs)
			r.Get("/reconciliation", cfg.ReportHandler.Reconciliation)
		})

		r.Get("/model", cfg.ModelHandler.Status)
		r.Post("/model/train", cfg.ModelHandler.Train)
	})

	return r
}
