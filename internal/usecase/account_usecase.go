package usecase

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/custodyledger/internal/domain"
)

// Card lifetime for newly issued cards.
const cardValidity = 4 * 365 * 24 * time.Hour

// NumberGenerator issues account and card identifiers.
type NumberGenerator interface {
	AccountNumber() string
	CardNumber() string
	CVV() string
}

// RandomNumbers draws identifiers from math/rand/v2. Uniqueness is enforced
// by the account store.
type RandomNumbers struct{}

func (RandomNumbers) AccountNumber() string { return "AC" + digits(12) }
func (RandomNumbers) CardNumber() string    { return "4" + digits(15) }
func (RandomNumbers) CVV() string           { return digits(3) }

func digits(n int) string {
	var b strings.Builder
	b.Grow(n)
	for range n {
		b.WriteByte(byte('0' + rand.IntN(10)))
	}
	return b.String()
}

// AccountUseCase handles account business logic.
type AccountUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	txRepo      TransactionRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	numbers     NumberGenerator
	metrics     MetricsRecorder
	logger      zerolog.Logger
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	txRepo TransactionRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	logger zerolog.Logger,
) *AccountUseCase {
	return &AccountUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		txRepo:      txRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		numbers:     RandomNumbers{},
		metrics:     nopRecorder{},
		logger:      logger.With().Str("component", "accounts").Logger(),
	}
}

// WithNumberGenerator overrides how account and card numbers are issued.
func (uc *AccountUseCase) WithNumberGenerator(g NumberGenerator) *AccountUseCase {
	if g != nil {
		uc.numbers = g
	}
	return uc
}

// WithMetrics attaches a metrics recorder.
func (uc *AccountUseCase) WithMetrics(m MetricsRecorder) *AccountUseCase {
	if m != nil {
		uc.metrics = m
	}
	return uc
}

// OpenAccountInput represents input for opening an account.
type OpenAccountInput struct {
	UserID         string
	Currency       string
	CardType       domain.CardType
	InitialDeposit decimal.Decimal
}

// OpenAccount issues a new account with a card. A positive initial deposit is
// recorded as a completed inbound transaction in the same database transaction.
func (uc *AccountUseCase) OpenAccount(ctx context.Context, input OpenAccountInput) (*domain.Account, error) {
	start := time.Now()
	account, err := uc.openAccount(ctx, input)
	uc.metrics.ObserveLedgerOperation(OperationDeposit, input.InitialDeposit, time.Since(start), err)
	return account, err
}

func (uc *AccountUseCase) openAccount(ctx context.Context, input OpenAccountInput) (*domain.Account, error) {
	if input.UserID == "" {
		return nil, domain.ErrOwnerRequired
	}

	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, err
	}

	cardType := domain.CardType(strings.ToLower(string(input.CardType)))
	if cardType == "" {
		cardType = domain.CardTypeDebit
	}
	if err := domain.ValidateCardType(cardType); err != nil {
		return nil, err
	}

	if input.InitialDeposit.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}
	if input.InitialDeposit.IsPositive() {
		if err := domain.ValidateAmount(input.InitialDeposit); err != nil {
			return nil, err
		}
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	now := time.Now().UTC()
	account := &domain.Account{
		ID:            uc.idGen.Generate(),
		UserID:        input.UserID,
		AccountNumber: uc.numbers.AccountNumber(),
		Currency:      domain.NormalizeCurrency(input.Currency),
		Balance:       input.InitialDeposit,
		Card: domain.Card{
			Number:     uc.numbers.CardNumber(),
			ExpiryDate: now.Add(cardValidity),
			CVV:        uc.numbers.CVV(),
			Type:       cardType,
		},
		CreditStatus: domain.CreditStatusDenied,
		Version:      0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := uc.accountRepo.Create(txCtx, tx, account); err != nil {
		return nil, err
	}

	if account.Balance.IsPositive() {
		deposit := &domain.Transaction{
			ID:                uc.idGen.Generate(),
			ReceiverAccountID: stringPtr(account.ID),
			Amount:            account.Balance,
			Status:            domain.TransactionStatusCompleted,
			ExternalRef:       externalRefPrefix + uc.idGen.Generate(),
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := uc.txRepo.Create(txCtx, tx, deposit); err != nil {
			return nil, fmt.Errorf("record initial deposit: %w", err)
		}
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   account.ID,
		AggregateType: domain.AggregateTypeAccount,
		EventType:     domain.EventTypeAccountOpened,
		Payload: map[string]any{
			"account_id":      account.ID,
			"user_id":         account.UserID,
			"currency":        account.Currency,
			"initial_deposit": account.Balance.String(),
		},
		CreatedAt: now,
		Published: false,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	uc.logger.Info().
		Str("account_id", account.ID).
		Str("user_id", account.UserID).
		Str("currency", account.Currency).
		Msg("account opened")

	return account, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// GetAccountByNumber retrieves an account by account or card number.
func (uc *AccountUseCase) GetAccountByNumber(ctx context.Context, number string) (*domain.Account, error) {
	return uc.accountRepo.GetByNumber(ctx, number)
}

// ListUserAccounts lists every account owned by a user.
func (uc *AccountUseCase) ListUserAccounts(ctx context.Context, userID string) ([]*domain.Account, error) {
	return uc.accountRepo.ListByOwner(ctx, userID)
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	Limit  int
	Offset int
}

// ListAccounts lists accounts with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.accountRepo.List(ctx, limit, offset)
}
