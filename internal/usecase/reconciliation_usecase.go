package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/custodyledger/internal/domain"
)

// ReconciliationUseCase checks stored balances against the transaction log.
type ReconciliationUseCase struct {
	accountRepo AccountRepository
	txRepo      TransactionRepository
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(accountRepo AccountRepository, txRepo TransactionRepository) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		accountRepo: accountRepo,
		txRepo:      txRepo,
	}
}

// AccountReconciliation compares one account's stored balance with the
// balance replayed from its completed transactions.
type AccountReconciliation struct {
	AccountID     string
	StoredBalance decimal.Decimal
	LedgerBalance decimal.Decimal
	Difference    decimal.Decimal
	Balanced      bool
	CheckedAt     time.Time
}

// ReconcileAccount recomputes a balance as completed inflows minus completed
// outflows and compares it with the stored value.
func (uc *ReconciliationUseCase) ReconcileAccount(ctx context.Context, accountID string) (*AccountReconciliation, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	completed, err := uc.txRepo.Find(ctx, domain.TransactionFilter{
		AccountIDs: []string{accountID},
		Status:     domain.StatusPtr(domain.TransactionStatusCompleted),
	})
	if err != nil {
		return nil, fmt.Errorf("load completed transactions: %w", err)
	}

	replayed := decimal.Zero
	for _, t := range completed {
		if t.ReceivedBy(accountID) {
			replayed = replayed.Add(t.Amount)
		}
		if t.SentBy(accountID) {
			replayed = replayed.Sub(t.Amount)
		}
	}

	diff := account.Balance.Sub(replayed)
	return &AccountReconciliation{
		AccountID:     account.ID,
		StoredBalance: account.Balance,
		LedgerBalance: replayed,
		Difference:    diff,
		Balanced:      diff.IsZero(),
		CheckedAt:     time.Now().UTC(),
	}, nil
}

// ReconcileAll walks every account page by page.
func (uc *ReconciliationUseCase) ReconcileAll(ctx context.Context) ([]*AccountReconciliation, error) {
	var checks []*AccountReconciliation

	for offset := 0; ; offset += featurePageSize {
		page, err := uc.accountRepo.List(ctx, featurePageSize, offset)
		if err != nil {
			return nil, err
		}

		for _, account := range page {
			check, err := uc.ReconcileAccount(ctx, account.ID)
			if err != nil {
				return nil, fmt.Errorf("reconcile account %s: %w", account.ID, err)
			}
			checks = append(checks, check)
		}

		if len(page) < featurePageSize {
			return checks, nil
		}
	}
}

// ReconciliationReport summarises a full pass and keeps only the mismatches.
type ReconciliationReport struct {
	AccountsChecked  int
	BalancedAccounts int
	Mismatches       []*AccountReconciliation
	CheckedAt        time.Time
}

// GenerateReconciliationReport reconciles all accounts.
func (uc *ReconciliationUseCase) GenerateReconciliationReport(ctx context.Context) (*ReconciliationReport, error) {
	checks, err := uc.ReconcileAll(ctx)
	if err != nil {
		return nil, err
	}

	report := &ReconciliationReport{
		AccountsChecked: len(checks),
		Mismatches:      []*AccountReconciliation{},
		CheckedAt:       time.Now().UTC(),
	}
	for _, check := range checks {
		if !check.Balanced {
			report.Mismatches = append(report.Mismatches, check)
			continue
		}
		report.BalancedAccounts++
	}

	return report, nil
}
