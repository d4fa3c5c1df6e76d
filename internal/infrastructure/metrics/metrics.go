package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"

	"github.com/iho/custodyledger/internal/domain"
)

const namespace = "custodyledger"

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	LedgerOperations *prometheus.CounterVec
	LedgerDuration   *prometheus.HistogramVec
	LedgerAmount     *prometheus.HistogramVec

	// Credit metrics
	CreditDecisions *prometheus.CounterVec

	// Scoring model metrics
	ModelTrainings    prometheus.Counter
	ModelExamples     prometheus.Gauge
	ModelAccuracy     prometheus.Gauge
	ModelTrainingTime prometheus.Histogram

	// Outbox metrics
	OutboxPublished *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		LedgerOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_operations_total",
				Help:      "Ledger operations by type and outcome",
			},
			[]string{"operation", "result"},
		),
		LedgerDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ledger_operation_duration_seconds",
				Help:      "Duration of ledger operations including retries",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		LedgerAmount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ledger_operation_amount",
				Help:      "Amounts moved by successful ledger operations",
				Buckets:   []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
			},
			[]string{"operation"},
		),

		CreditDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "credit_decisions_total",
				Help:      "Credit decisions by pipeline path and verdict",
			},
			[]string{"path", "status"},
		),

		ModelTrainings: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_trainings_total",
			Help:      "Completed scoring model fits",
		}),
		ModelExamples: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "model_training_examples",
			Help:      "Labelled examples used by the current model",
		}),
		ModelAccuracy: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "model_training_accuracy",
			Help:      "In-sample accuracy of the current model",
		}),
		ModelTrainingTime: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_training_duration_seconds",
			Help:      "Duration of scoring model fits",
			Buckets:   prometheus.DefBuckets,
		}),

		OutboxPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "outbox_events_published_total",
				Help:      "Outbox events handed to the publisher by outcome",
			},
			[]string{"event_type", "result"},
		),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_duration_seconds",
				Help:      "HTTP request duration",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Requests currently being served",
			},
		),
	}
}

// ObserveLedgerOperation implements usecase.MetricsRecorder.
func (m *Metrics) ObserveLedgerOperation(operation string, amount decimal.Decimal, elapsed time.Duration, err error) {
	m.LedgerOperations.WithLabelValues(operation, Result(err)).Inc()
	m.LedgerDuration.WithLabelValues(operation).Observe(elapsed.Seconds())

	if err == nil && amount.IsPositive() {
		m.LedgerAmount.WithLabelValues(operation).Observe(amount.InexactFloat64())
	}
}

// ObserveCreditDecision implements usecase.MetricsRecorder.
func (m *Metrics) ObserveCreditDecision(path domain.DecisionPath, status domain.CreditStatus) {
	m.CreditDecisions.WithLabelValues(string(path), string(status)).Inc()
}

// ObserveModelTraining implements usecase.MetricsRecorder.
func (m *Metrics) ObserveModelTraining(examples int, accuracy float64, elapsed time.Duration) {
	m.ModelTrainings.Inc()
	m.ModelExamples.Set(float64(examples))
	m.ModelAccuracy.Set(accuracy)
	m.ModelTrainingTime.Observe(elapsed.Seconds())
}

// ObservePublished records one outbox publish attempt.
func (m *Metrics) ObservePublished(eventType string, err error) {
	m.OutboxPublished.WithLabelValues(eventType, Result(err)).Inc()
}

// Result maps an operation error to a low-cardinality label value.
func Result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}
