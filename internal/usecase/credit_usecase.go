package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/custodyledger/internal/domain"
)

// Decision messages returned with a verdict.
const (
	MessageApprovedByIncome = "credit approved: income threshold met"
	MessageApprovedByModel  = "credit approved"
	MessageDenied           = "credit denied"
)

// BorrowerProfiler reads the ledger view of a borrower.
type BorrowerProfiler interface {
	BorrowerProfile(ctx context.Context, userID string) (*BorrowerProfile, error)
}

// CreditModel is the part of the scoring model the pipeline depends on.
type CreditModel interface {
	EnsureTrained(ctx context.Context) error
	Predict(features domain.FeatureVector) (int, error)
}

// CreditUseCase decides on and services credits.
type CreditUseCase struct {
	txManager  TransactionManager
	creditRepo CreditRepository
	outboxRepo OutboxRepository
	profiles   BorrowerProfiler
	model      CreditModel
	idGen      IDGenerator
	metrics    MetricsRecorder
	logger     zerolog.Logger
}

// NewCreditUseCase creates a new CreditUseCase.
func NewCreditUseCase(
	txManager TransactionManager,
	creditRepo CreditRepository,
	outboxRepo OutboxRepository,
	profiles BorrowerProfiler,
	model CreditModel,
	idGen IDGenerator,
	logger zerolog.Logger,
) *CreditUseCase {
	return &CreditUseCase{
		txManager:  txManager,
		creditRepo: creditRepo,
		outboxRepo: outboxRepo,
		profiles:   profiles,
		model:      model,
		idGen:      idGen,
		metrics:    nopRecorder{},
		logger:     logger.With().Str("component", "credit").Logger(),
	}
}

// WithMetrics attaches a metrics recorder.
func (uc *CreditUseCase) WithMetrics(m MetricsRecorder) *CreditUseCase {
	if m != nil {
		uc.metrics = m
	}
	return uc
}

// DecideInput represents a credit request.
type DecideInput struct {
	UserID       string
	Amount       decimal.Decimal
	InterestRate *decimal.Decimal
}

// Decide approves or denies a credit request. Borrowers whose income proxy
// reaches domain.IncomeBypassThreshold are approved without the model. Any
// failure while scoring is reported as domain.ErrDecisionUnavailable and
// never turns into an approval.
func (uc *CreditUseCase) Decide(ctx context.Context, input DecideInput) (*domain.CreditDecision, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	rate := domain.DefaultInterestRate
	if input.InterestRate != nil {
		if input.InterestRate.IsNegative() {
			return nil, fmt.Errorf("%w: negative interest rate", domain.ErrInvalidAmount)
		}
		rate = *input.InterestRate
	}

	profile, err := uc.profiles.BorrowerProfile(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, unavailable(err)
	}

	decision := &domain.CreditDecision{Income: profile.Income}

	if domain.ShouldBypassScoring(profile.Income) {
		decision.Status = domain.CreditStatusApproved
		decision.Message = MessageApprovedByIncome
		decision.Path = domain.DecisionPathIncomeBypass
	} else {
		if err := uc.model.EnsureTrained(ctx); err != nil {
			return nil, unavailable(err)
		}

		label, err := uc.model.Predict(profile.Features)
		if err != nil {
			return nil, unavailable(err)
		}

		decision.Path = domain.DecisionPathModel
		if label == 1 {
			decision.Status = domain.CreditStatusApproved
			decision.Message = MessageApprovedByModel
		} else {
			decision.Status = domain.CreditStatusDenied
			decision.Message = MessageDenied
		}
	}

	if decision.Approved() {
		credit, err := uc.issue(ctx, input.UserID, input.Amount, rate, decision.Path)
		if err != nil {
			return nil, unavailable(err)
		}
		decision.Credit = credit
	}

	uc.metrics.ObserveCreditDecision(decision.Path, decision.Status)

	uc.logger.Info().
		Str("user_id", input.UserID).
		Str("amount", input.Amount.String()).
		Str("income", profile.Income.String()).
		Str("path", string(decision.Path)).
		Str("status", string(decision.Status)).
		Msg("credit decided")

	return decision, nil
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrDecisionUnavailable, err)
}

func (uc *CreditUseCase) issue(ctx context.Context, userID string, amount, rate decimal.Decimal, path domain.DecisionPath) (*domain.Credit, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	now := time.Now().UTC()
	credit := &domain.Credit{
		ID:           uc.idGen.Generate(),
		UserID:       userID,
		Amount:       amount,
		InterestRate: rate,
		Status:       domain.CreditStatusApproved,
		ApprovalDate: &now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := uc.creditRepo.Create(txCtx, tx, credit); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   credit.ID,
		AggregateType: domain.AggregateTypeCredit,
		EventType:     domain.EventTypeCreditApproved,
		Payload: map[string]any{
			"credit_id":     credit.ID,
			"user_id":       credit.UserID,
			"amount":        credit.Amount.String(),
			"interest_rate": credit.InterestRate.String(),
			"path":          string(path),
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

	return credit, nil
}

// GetCredit retrieves a credit by ID.
func (uc *CreditUseCase) GetCredit(ctx context.Context, id string) (*domain.Credit, error) {
	return uc.creditRepo.GetByID(ctx, id)
}

// ListCredits lists every credit of a user.
func (uc *CreditUseCase) ListCredits(ctx context.Context, userID string) ([]*domain.Credit, error) {
	return uc.creditRepo.ListByUser(ctx, userID)
}

// UpdateCreditInput carries optional servicing changes; nil fields are kept.
type UpdateCreditInput struct {
	ID            string
	Status        *domain.CreditStatus
	RepaymentDate *time.Time
	IsPaid        *bool
}

// UpdateCredit applies servicing changes to an issued credit.
func (uc *CreditUseCase) UpdateCredit(ctx context.Context, input UpdateCreditInput) (*domain.Credit, error) {
	credit, err := uc.creditRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Status != nil {
		switch *input.Status {
		case domain.CreditStatusApproved, domain.CreditStatusDenied, domain.CreditStatusPending:
			credit.Status = *input.Status
		default:
			return nil, fmt.Errorf("%w: unknown credit status %q", domain.ErrInvalidState, *input.Status)
		}
	}
	if input.RepaymentDate != nil {
		credit.RepaymentDate = input.RepaymentDate
	}
	if input.IsPaid != nil {
		credit.IsPaid = *input.IsPaid
	}
	credit.UpdatedAt = time.Now().UTC()

	if err := uc.creditRepo.Update(ctx, credit); err != nil {
		return nil, err
	}

	return credit, nil
}
