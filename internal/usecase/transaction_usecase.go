package usecase

import (
	"context"

	"github.com/iho/custodyledger/internal/domain"
)

// TransactionUseCase answers history queries over the transaction log.
type TransactionUseCase struct {
	accountRepo AccountRepository
	txRepo      TransactionRepository
}

// NewTransactionUseCase creates a new TransactionUseCase.
func NewTransactionUseCase(accountRepo AccountRepository, txRepo TransactionRepository) *TransactionUseCase {
	return &TransactionUseCase{
		accountRepo: accountRepo,
		txRepo:      txRepo,
	}
}

// ListTransactionsInput represents paging for history queries.
type ListTransactionsInput struct {
	Limit  int
	Offset int
}

// ListUserTransactions returns transactions touching any account of the user.
func (uc *TransactionUseCase) ListUserTransactions(ctx context.Context, userID string, input ListTransactionsInput) ([]*domain.Transaction, error) {
	accounts, err := uc.accountRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	if len(accounts) == 0 {
		return []*domain.Transaction{}, nil
	}

	ids := make([]string, len(accounts))
	for i, a := range accounts {
		ids[i] = a.ID
	}

	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.txRepo.Find(ctx, domain.TransactionFilter{
		AccountIDs: ids,
		Limit:      limit,
		Offset:     offset,
	})
}

// ListByStatus returns transactions in the given status.
func (uc *TransactionUseCase) ListByStatus(ctx context.Context, status domain.TransactionStatus, input ListTransactionsInput) ([]*domain.Transaction, error) {
	if !status.IsValid() {
		return nil, domain.ErrInvalidState
	}

	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.txRepo.Find(ctx, domain.TransactionFilter{
		Status: domain.StatusPtr(status),
		Limit:  limit,
		Offset: offset,
	})
}

// ListAccountTransactions returns transactions on either side of one account.
func (uc *TransactionUseCase) ListAccountTransactions(ctx context.Context, accountID string, input ListTransactionsInput) ([]*domain.Transaction, error) {
	if _, err := uc.accountRepo.GetByID(ctx, accountID); err != nil {
		return nil, err
	}

	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.txRepo.Find(ctx, domain.TransactionFilter{
		AccountIDs: []string{accountID},
		Limit:      limit,
		Offset:     offset,
	})
}

// ListPayments returns payments made from an account to outside the ledger.
func (uc *TransactionUseCase) ListPayments(ctx context.Context, accountID string, input ListTransactionsInput) ([]*domain.Transaction, error) {
	if _, err := uc.accountRepo.GetByID(ctx, accountID); err != nil {
		return nil, err
	}

	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.txRepo.Find(ctx, domain.TransactionFilter{
		AccountIDs:      []string{accountID},
		Direction:       domain.DirectionOutgoing,
		WithoutReceiver: true,
		Limit:           limit,
		Offset:          offset,
	})
}
