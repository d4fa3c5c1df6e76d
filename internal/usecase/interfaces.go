package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/custodyledger/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, tx Transaction, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	// GetByNumber matches either the account number or the card number.
	GetByNumber(ctx context.Context, number string) (*domain.Account, error)
	ListByOwner(ctx context.Context, userID string) ([]*domain.Account, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Account, error)
	// UpdateBalance writes the balance only if the stored version still equals
	// expectedVersion, and returns domain.ErrConflict otherwise.
	UpdateBalance(ctx context.Context, tx Transaction, id string, expectedVersion int64, balance decimal.Decimal, updatedAt time.Time) error
}

// TransactionRepository defines data access for the transaction log.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, t *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Transaction, error)
	Find(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, error)
	// UpdateStatus moves a record from one status to another; it returns
	// domain.ErrInvalidState when the stored status is no longer from.
	UpdateStatus(ctx context.Context, tx Transaction, id string, from, to domain.TransactionStatus, updatedAt time.Time) error
}

// CreditRepository defines data access for issued credits.
type CreditRepository interface {
	Create(ctx context.Context, tx Transaction, credit *domain.Credit) error
	GetByID(ctx context.Context, id string) (*domain.Credit, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Credit, error)
	Update(ctx context.Context, credit *domain.Credit) error
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient storage failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a claimed key so a failed request can be retried.
	Release(ctx context.Context, key string) error
}

// ModelSnapshotStore persists fitted model parameters between processes.
// Load returns (nil, nil) when no snapshot exists.
type ModelSnapshotStore interface {
	Save(ctx context.Context, snapshot *domain.ModelSnapshot, ttl time.Duration) error
	Load(ctx context.Context) (*domain.ModelSnapshot, error)
}

// Classifier maps a feature vector to 1 (approve) or 0 (deny).
type Classifier interface {
	Classify(features domain.FeatureVector) (int, error)
}

// Trainer is a classifier that can be fitted and exported.
type Trainer interface {
	Classifier
	Name() string
	Fit(examples []domain.TrainingExample) error
	Accuracy() float64
	Snapshot(trainedAt time.Time) (*domain.ModelSnapshot, error)
	Restore(snapshot *domain.ModelSnapshot) error
}

// MetricsRecorder receives business outcomes for instrumentation.
type MetricsRecorder interface {
	ObserveLedgerOperation(operation string, amount decimal.Decimal, elapsed time.Duration, err error)
	ObserveCreditDecision(path domain.DecisionPath, status domain.CreditStatus)
	ObserveModelTraining(examples int, accuracy float64, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveLedgerOperation(string, decimal.Decimal, time.Duration, error) {}
func (nopRecorder) ObserveCreditDecision(domain.DecisionPath, domain.CreditStatus)     {}
func (nopRecorder) ObserveModelTraining(int, float64, time.Duration)                   {}
