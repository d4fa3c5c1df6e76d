package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/custodyledger/internal/domain"
)

// Ledger operation names used in logs and metrics.
const (
	OperationTransfer = "transfer"
	OperationPay      = "pay"
	OperationRefund   = "refund"
	OperationCancel   = "cancel"
	OperationDeposit  = "deposit"
)

// AccountRef identifies an account either by ID or by account/card number.
type AccountRef struct {
	ID     string
	Number string
}

// IsZero reports whether the reference names nothing.
func (r AccountRef) IsZero() bool {
	return r.ID == "" && r.Number == ""
}

func (r AccountRef) String() string {
	if r.ID != "" {
		return r.ID
	}
	return r.Number
}

// LedgerUseCase moves money between custodial accounts.
type LedgerUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	txRepo      TransactionRepository
	outboxRepo  OutboxRepository
	retrier     Retrier
	idGen       IDGenerator
	metrics     MetricsRecorder
	logger      zerolog.Logger
}

// NewLedgerUseCase creates a new LedgerUseCase. A nil retrier runs every
// operation exactly once.
func NewLedgerUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	txRepo TransactionRepository,
	outboxRepo OutboxRepository,
	retrier Retrier,
	idGen IDGenerator,
	logger zerolog.Logger,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		txRepo:      txRepo,
		outboxRepo:  outboxRepo,
		retrier:     retrier,
		idGen:       idGen,
		metrics:     nopRecorder{},
		logger:      logger.With().Str("component", "ledger").Logger(),
	}
}

// WithMetrics attaches a metrics recorder.
func (uc *LedgerUseCase) WithMetrics(m MetricsRecorder) *LedgerUseCase {
	if m != nil {
		uc.metrics = m
	}
	return uc
}

// TransferInput represents input for a transfer between two accounts.
type TransferInput struct {
	Sender   AccountRef
	Receiver AccountRef
	Amount   decimal.Decimal
}

// PayInput represents input for a payment leaving the ledger.
type PayInput struct {
	Sender AccountRef
	Amount decimal.Decimal
}

// RefundInput represents input for funds returned into an account.
type RefundInput struct {
	Receiver AccountRef
	Amount   decimal.Decimal
}

// movement is one balance-changing operation. An empty senderID means the
// funds enter from outside the ledger; an empty receiverID means they leave it.
type movement struct {
	operation  string
	senderID   string
	receiverID string
	amount     decimal.Decimal
	refPrefix  string
}

func (m movement) lockIDs() []string {
	ids := make([]string, 0, 2)
	if m.senderID != "" {
		ids = append(ids, m.senderID)
	}
	if m.receiverID != "" {
		ids = append(ids, m.receiverID)
	}
	// DEADLOCK PREVENTION
	sort.Strings(ids)
	return ids
}

// Transfer debits the sender and credits the receiver in one atomic unit.
func (uc *LedgerUseCase) Transfer(ctx context.Context, input TransferInput) (*domain.Transaction, error) {
	start := time.Now()
	record, err := uc.transfer(ctx, input)
	uc.metrics.ObserveLedgerOperation(OperationTransfer, input.Amount, time.Since(start), err)
	return record, err
}

func (uc *LedgerUseCase) transfer(ctx context.Context, input TransferInput) (*domain.Transaction, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	sender, err := uc.resolve(ctx, input.Sender)
	if err != nil {
		return nil, err
	}

	receiver, err := uc.resolve(ctx, input.Receiver)
	if err != nil {
		return nil, err
	}

	if sender.ID == receiver.ID {
		return nil, domain.ErrSameAccount
	}

	return uc.execute(ctx, movement{
		operation:  OperationTransfer,
		senderID:   sender.ID,
		receiverID: receiver.ID,
		amount:     input.Amount,
		refPrefix:  externalRefPrefix,
	})
}

// Pay debits the sender for a payment to a party outside the ledger.
func (uc *LedgerUseCase) Pay(ctx context.Context, input PayInput) (*domain.Transaction, error) {
	start := time.Now()
	record, err := uc.pay(ctx, input)
	uc.metrics.ObserveLedgerOperation(OperationPay, input.Amount, time.Since(start), err)
	return record, err
}

func (uc *LedgerUseCase) pay(ctx context.Context, input PayInput) (*domain.Transaction, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	sender, err := uc.resolve(ctx, input.Sender)
	if err != nil {
		return nil, err
	}

	return uc.execute(ctx, movement{
		operation: OperationPay,
		senderID:  sender.ID,
		amount:    input.Amount,
		refPrefix: externalRefPrefix,
	})
}

// Refund credits the receiver with funds coming back from outside the ledger.
func (uc *LedgerUseCase) Refund(ctx context.Context, input RefundInput) (*domain.Transaction, error) {
	start := time.Now()
	record, err := uc.refund(ctx, input)
	uc.metrics.ObserveLedgerOperation(OperationRefund, input.Amount, time.Since(start), err)
	return record, err
}

func (uc *LedgerUseCase) refund(ctx context.Context, input RefundInput) (*domain.Transaction, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	receiver, err := uc.resolve(ctx, input.Receiver)
	if err != nil {
		return nil, err
	}

	return uc.execute(ctx, movement{
		operation:  OperationRefund,
		receiverID: receiver.ID,
		amount:     input.Amount,
		refPrefix:  refundExternalRefPrefix,
	})
}

// Cancel moves a pending transaction to failed. Balances are never touched;
// reversing a settled charge is a separate Refund.
func (uc *LedgerUseCase) Cancel(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	start := time.Now()
	record, err := uc.cancel(ctx, transactionID)
	uc.metrics.ObserveLedgerOperation(OperationCancel, decimal.Zero, time.Since(start), err)
	return record, err
}

func (uc *LedgerUseCase) cancel(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	record, err := uc.txRepo.GetByIDForUpdate(txCtx, tx, transactionID)
	if err != nil {
		return nil, err
	}

	previous := record.Status
	now := time.Now().UTC()
	if err := record.TransitionTo(domain.TransactionStatusFailed, now); err != nil {
		return nil, err
	}

	if err := uc.txRepo.UpdateStatus(txCtx, tx, record.ID, previous, record.Status, now); err != nil {
		return nil, err
	}

	if err := uc.emit(txCtx, tx, domain.EventTypeTransactionCancelled, record, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	uc.logger.Info().
		Str("transaction_id", record.ID).
		Str("previous_status", string(previous)).
		Msg("transaction cancelled")

	return record, nil
}

// GetTransaction retrieves a transaction by ID.
func (uc *LedgerUseCase) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return uc.txRepo.GetByID(ctx, id)
}

func (uc *LedgerUseCase) resolve(ctx context.Context, ref AccountRef) (*domain.Account, error) {
	switch {
	case ref.ID != "":
		return uc.accountRepo.GetByID(ctx, ref.ID)
	case ref.Number != "":
		return uc.accountRepo.GetByNumber(ctx, ref.Number)
	}
	return nil, domain.ErrAccountNotFound
}

// execute runs a movement under the retrier. Every attempt is a fresh
// database transaction that re-reads and re-locks the accounts.
func (uc *LedgerUseCase) execute(ctx context.Context, m movement) (*domain.Transaction, error) {
	var record *domain.Transaction
	attempt := func() error {
		r, err := uc.apply(ctx, m)
		if err != nil {
			return err
		}
		record = r
		return nil
	}

	var err error
	if uc.retrier != nil {
		err = uc.retrier.Retry(ctx, attempt)
	} else {
		err = attempt()
	}
	if err != nil {
		uc.logger.Warn().
			Err(err).
			Str("operation", m.operation).
			Str("amount", m.amount.String()).
			Msg("ledger operation failed")
		return nil, err
	}

	uc.logger.Info().
		Str("operation", m.operation).
		Str("transaction_id", record.ID).
		Str("external_ref", record.ExternalRef).
		Str("amount", record.Amount.String()).
		Msg("ledger operation completed")

	return record, nil
}

func (uc *LedgerUseCase) apply(ctx context.Context, m movement) (*domain.Transaction, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	ids := m.lockIDs()
	accounts, err := uc.accountRepo.GetByIDsForUpdate(txCtx, tx, ids)
	if err != nil {
		return nil, err
	}

	locked := make(map[string]*domain.Account, len(accounts))
	for _, a := range accounts {
		locked[a.ID] = a
	}

	var sender, receiver *domain.Account
	if m.senderID != "" {
		if sender = locked[m.senderID]; sender == nil {
			return nil, domain.ErrAccountNotFound
		}
	}
	if m.receiverID != "" {
		if receiver = locked[m.receiverID]; receiver == nil {
			return nil, domain.ErrAccountNotFound
		}
	}

	if sender != nil && receiver != nil && sender.Currency != receiver.Currency {
		return nil, domain.ErrCurrencyMismatch
	}

	if sender != nil {
		if err := sender.ValidateDebit(m.amount); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	record := &domain.Transaction{
		ID:          uc.idGen.Generate(),
		Amount:      m.amount,
		Status:      domain.TransactionStatusCompleted,
		ExternalRef: m.refPrefix + uc.idGen.Generate(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if sender != nil {
		record.SenderAccountID = stringPtr(sender.ID)
	}
	if receiver != nil {
		record.ReceiverAccountID = stringPtr(receiver.ID)
	}

	// The record goes in first: if it cannot be written, no balance moves.
	if err := uc.txRepo.Create(txCtx, tx, record); err != nil {
		return nil, fmt.Errorf("record transaction: %w", err)
	}

	if sender != nil {
		if err := uc.accountRepo.UpdateBalance(txCtx, tx, sender.ID, sender.Version, sender.ApplyDebit(m.amount), now); err != nil {
			return nil, err
		}
	}

	if receiver != nil {
		if err := uc.accountRepo.UpdateBalance(txCtx, tx, receiver.ID, receiver.Version, receiver.ApplyCredit(m.amount), now); err != nil {
			return nil, err
		}
	}

	if err := uc.emit(txCtx, tx, domain.EventTypeTransactionCompleted, record, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return record, nil
}

func (uc *LedgerUseCase) emit(ctx context.Context, tx Transaction, eventType string, record *domain.Transaction, now time.Time) error {
	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   record.ID,
		AggregateType: domain.AggregateTypeTransaction,
		EventType:     eventType,
		Payload:       domain.TransactionPayload(record),
		CreatedAt:     now,
		Published:     false,
	}
	return uc.outboxRepo.Create(ctx, tx, event)
}

func stringPtr(s string) *string {
	return &s
}
