package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/iho/custodyledger/internal/domain"
)

// BorrowerProfile is everything the credit pipeline reads about a borrower.
type BorrowerProfile struct {
	UserID   string
	Accounts int
	// Income is the completed outgoing volume across all borrower accounts.
	Income   decimal.Decimal
	Features domain.FeatureVector
}

// FeatureExtractor turns ledger state into model inputs. It reads without a
// database transaction; a slightly stale view is acceptable for scoring.
type FeatureExtractor struct {
	accountRepo AccountRepository
	txRepo      TransactionRepository
}

// NewFeatureExtractor creates a new FeatureExtractor.
func NewFeatureExtractor(accountRepo AccountRepository, txRepo TransactionRepository) *FeatureExtractor {
	return &FeatureExtractor{
		accountRepo: accountRepo,
		txRepo:      txRepo,
	}
}

// TrainingSet returns one example per owned account with a known credit
// label. An empty result is valid.
func (fe *FeatureExtractor) TrainingSet(ctx context.Context) ([]domain.TrainingExample, error) {
	accounts, err := fe.allAccounts(ctx)
	if err != nil {
		return nil, err
	}

	completed, err := fe.txRepo.Find(ctx, domain.TransactionFilter{
		Status: domain.StatusPtr(domain.TransactionStatusCompleted),
	})
	if err != nil {
		return nil, err
	}

	sent := make(map[string]int)
	for _, t := range completed {
		if t.SenderAccountID != nil {
			sent[*t.SenderAccountID]++
		}
	}

	examples := make([]domain.TrainingExample, 0, len(accounts))
	for _, a := range accounts {
		if !a.HasOwner() || !a.CreditStatus.IsKnown() {
			continue
		}
		examples = append(examples, domain.TrainingExample{
			Features: domain.FeatureVector{
				SuccessfulTransactions: sent[a.ID],
				Balance:                a.Balance,
			},
			Label: domain.LabelFor(a.CreditStatus),
		})
	}

	return examples, nil
}

// BorrowerProfile aggregates features and the income proxy over every
// account the borrower owns.
func (fe *FeatureExtractor) BorrowerProfile(ctx context.Context, userID string) (*BorrowerProfile, error) {
	accounts, err := fe.accountRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	if len(accounts) == 0 {
		return nil, domain.ErrAccountNotFound
	}

	ids := make([]string, len(accounts))
	balance := decimal.Zero
	for i, a := range accounts {
		ids[i] = a.ID
		balance = balance.Add(a.Balance)
	}

	outgoing, err := fe.txRepo.Find(ctx, domain.TransactionFilter{
		AccountIDs: ids,
		Direction:  domain.DirectionOutgoing,
		Status:     domain.StatusPtr(domain.TransactionStatusCompleted),
	})
	if err != nil {
		return nil, err
	}

	income := decimal.Zero
	for _, t := range outgoing {
		income = income.Add(t.Amount)
	}

	return &BorrowerProfile{
		UserID:   userID,
		Accounts: len(accounts),
		Income:   income,
		Features: domain.FeatureVector{
			SuccessfulTransactions: len(outgoing),
			Balance:                balance,
		},
	}, nil
}

func (fe *FeatureExtractor) allAccounts(ctx context.Context) ([]*domain.Account, error) {
	var all []*domain.Account
	for offset := 0; ; offset += featurePageSize {
		page, err := fe.accountRepo.List(ctx, featurePageSize, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < featurePageSize {
			return all, nil
		}
	}
}
