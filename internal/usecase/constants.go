package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// DefaultModelSnapshotTTL bounds how long a saved model can warm-start a process.
	DefaultModelSnapshotTTL = 24 * time.Hour

	// DefaultSummaryCacheTTL bounds how stale a cached financial summary may be.
	DefaultSummaryCacheTTL = 30 * time.Second

	// External reference prefixes attached to settled movements.
	externalRefPrefix       = "blockchain-id-"
	refundExternalRefPrefix = "blockchain-refund-id-"

	// featurePageSize is the page size used when scanning the account store.
	featurePageSize = 500
)
