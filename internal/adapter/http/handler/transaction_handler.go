package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/custodyledger/internal/adapter/http/dto"
	"github.com/iho/custodyledger/internal/domain"
	"github.com/iho/custodyledger/internal/usecase"
)

// LedgerService executes money movements.
type LedgerService interface {
	Transfer(ctx context.Context, input usecase.TransferInput) (*domain.Transaction, error)
	Pay(ctx context.Context, input usecase.PayInput) (*domain.Transaction, error)
	Refund(ctx context.Context, input usecase.RefundInput) (*domain.Transaction, error)
	Cancel(ctx context.Context, transactionID string) (*domain.Transaction, error)
	GetTransaction(ctx context.Context, id string) (*domain.Transaction, error)
}

// TransactionHistory answers caller and status history queries.
type TransactionHistory interface {
	ListUserTransactions(ctx context.Context, userID string, input usecase.ListTransactionsInput) ([]*domain.Transaction, error)
	ListByStatus(ctx context.Context, status domain.TransactionStatus, input usecase.ListTransactionsInput) ([]*domain.Transaction, error)
}

// TransactionHandler handles ledger HTTP requests.
type TransactionHandler struct {
	ledgerUC  LedgerService
	historyUC TransactionHistory
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(ledgerUC LedgerService, historyUC TransactionHistory) *TransactionHandler {
	return &TransactionHandler{ledgerUC: ledgerUC, historyUC: historyUC}
}

// Transfer moves funds between two accounts.
func (h *TransactionHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req dto.TransferRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tx, err := h.ledgerUC.Transfer(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "transfer failed", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(tx))
}

// Pay debits an account toward an external payee.
func (h *TransactionHandler) Pay(w http.ResponseWriter, r *http.Request) {
	var req dto.PayRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tx, err := h.ledgerUC.Pay(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "payment failed", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(tx))
}

// Refund credits an account from outside the ledger.
func (h *TransactionHandler) Refund(w http.ResponseWriter, r *http.Request) {
	var req dto.RefundRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tx, err := h.ledgerUC.Refund(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "refund failed", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(tx))
}

// Cancel fails a pending transaction.
func (h *TransactionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	tx, err := h.ledgerUC.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "cancel failed", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(tx))
}

// Get retrieves a transaction by ID.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	tx, err := h.ledgerUC.GetTransaction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to get transaction", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(tx))
}

// List returns transactions in ?status= when given, otherwise the caller's.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	page := pageQuery(r)

	var (
		txs []*domain.Transaction
		err error
	)

	if status := r.URL.Query().Get("status"); status != "" {
		txs, err = h.historyUC.ListByStatus(r.Context(), domain.TransactionStatus(status), page)
	} else {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		txs, err = h.historyUC.ListUserTransactions(r.Context(), userID, page)
	}
	if err != nil {
		writeDomainError(w, "failed to list transactions", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(txs))
}
