package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/custodyledger/internal/adapter/http/dto"
	"github.com/iho/custodyledger/internal/adapter/http/middleware"
	"github.com/iho/custodyledger/internal/domain"
	"github.com/iho/custodyledger/internal/usecase"
)

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	OpenAccount(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error)
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	ListUserAccounts(ctx context.Context, userID string) ([]*domain.Account, error)
	ListAccounts(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error)
}

// AccountHistory answers per-account history queries.
type AccountHistory interface {
	ListAccountTransactions(ctx context.Context, accountID string, input usecase.ListTransactionsInput) ([]*domain.Transaction, error)
	ListPayments(ctx context.Context, accountID string, input usecase.ListTransactionsInput) ([]*domain.Transaction, error)
}

// AccountReconciler recomputes one account's balance from its history.
type AccountReconciler interface {
	ReconcileAccount(ctx context.Context, accountID string) (*usecase.AccountReconciliation, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	accountUC    AccountService
	historyUC    AccountHistory
	reconcilerUC AccountReconciler
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService, historyUC AccountHistory, reconcilerUC AccountReconciler) *AccountHandler {
	return &AccountHandler{
		accountUC:    accountUC,
		historyUC:    historyUC,
		reconcilerUC: reconcilerUC,
	}
}

// Open opens an account for the caller.
func (h *AccountHandler) Open(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req dto.OpenAccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := h.accountUC.OpenAccount(r.Context(), req.ToUseCaseInput(userID))
	if err != nil {
		writeDomainError(w, "failed to open account", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// Get retrieves an account by ID.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	account, err := h.accountUC.GetAccount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to get account", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// List returns the caller's accounts, or a page of all accounts for
// anonymous operator requests.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		accounts []*domain.Account
		err      error
	)

	if userID := middleware.UserID(r.Context()); userID != "" {
		accounts, err = h.accountUC.ListUserAccounts(r.Context(), userID)
	} else {
		accounts, err = h.accountUC.ListAccounts(r.Context(), usecase.ListAccountsInput{
			Limit:  parseIntQuery(r, "limit", defaultPageSize),
			Offset: parseIntQuery(r, "offset", 0),
		})
	}
	if err != nil {
		writeDomainError(w, "failed to list accounts", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountsFromDomain(accounts))
}

// Transactions lists transactions on either side of the account.
func (h *AccountHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.historyUC.ListAccountTransactions(r.Context(), chi.URLParam(r, "id"), pageQuery(r))
	if err != nil {
		writeDomainError(w, "failed to list transactions", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(txs))
}

// Payments lists payments made from the account.
func (h *AccountHandler) Payments(w http.ResponseWriter, r *http.Request) {
	txs, err := h.historyUC.ListPayments(r.Context(), chi.URLParam(r, "id"), pageQuery(r))
	if err != nil {
		writeDomainError(w, "failed to list payments", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(txs))
}

// Reconcile compares the stored balance with the transaction log.
func (h *AccountHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	result, err := h.reconcilerUC.ReconcileAccount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to reconcile account", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromUseCase(result))
}
