package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/custodyledger/internal/adapter/http/dto"
	"github.com/iho/custodyledger/internal/domain"
	"github.com/iho/custodyledger/internal/usecase"
)

type accountServiceStub struct {
	openFn     func(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error)
	getFn      func(ctx context.Context, id string) (*domain.Account, error)
	listUserFn func(ctx context.Context, userID string) ([]*domain.Account, error)
	listFn     func(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error)
}

func (s *accountServiceStub) OpenAccount(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error) {
	return s.openFn(ctx, input)
}

func (s *accountServiceStub) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return s.getFn(ctx, id)
}

func (s *accountServiceStub) ListUserAccounts(ctx context.Context, userID string) ([]*domain.Account, error) {
	return s.listUserFn(ctx, userID)
}

func (s *accountServiceStub) ListAccounts(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error) {
	return s.listFn(ctx, input)
}

type accountHistoryStub struct {
	txFn       func(ctx context.Context, accountID string, input usecase.ListTransactionsInput) ([]*domain.Transaction, error)
	paymentsFn func(ctx context.Context, accountID string, input usecase.ListTransactionsInput) ([]*domain.Transaction, error)
}

func (s *accountHistoryStub) ListAccountTransactions(ctx context.Context, accountID string, input usecase.ListTransactionsInput) ([]*domain.Transaction, error) {
	return s.txFn(ctx, accountID, input)
}

func (s *accountHistoryStub) ListPayments(ctx context.Context, accountID string, input usecase.ListTransactionsInput) ([]*domain.Transaction, error) {
	return s.paymentsFn(ctx, accountID, input)
}

type reconcilerStub struct {
	fn func(ctx context.Context, accountID string) (*usecase.AccountReconciliation, error)
}

func (s *reconcilerStub) ReconcileAccount(ctx context.Context, accountID string) (*usecase.AccountReconciliation, error) {
	return s.fn(ctx, accountID)
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestAccountHandler_Open_Success(t *testing.T) {
	var captured usecase.OpenAccountInput
	handler := NewAccountHandler(&accountServiceStub{
		openFn: func(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error) {
			captured = input
			return &domain.Account{ID: "acc-1", UserID: input.UserID, Currency: "USD"}, nil
		},
	}, nil, nil)

	body, _ := json.Marshal(map[string]any{"currency": "USD", "card_type": "debit", "initial_deposit": "25.00"})
	req := withUser(httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewReader(body)), "user-1")
	rec := httptest.NewRecorder()

	handler.Open(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.UserID != "user-1" || captured.CardType != domain.CardTypeDebit {
		t.Fatalf("expected input to match request, got %+v", captured)
	}
	if !captured.InitialDeposit.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("expected deposit 25, got %s", captured.InitialDeposit)
	}

	var resp dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "acc-1" {
		t.Fatalf("expected account ID acc-1, got %s", resp.ID)
	}
}

func TestAccountHandler_Open_RequiresUser(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{}, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	handler.Open(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAccountHandler_Open_ValidationError(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		openFn: func(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error) {
			return nil, domain.ErrInvalidCurrency
		},
	}, nil, nil)

	req := withUser(httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewBufferString(`{"currency":"XYZ"}`)), "u1")
	rec := httptest.NewRecorder()
	handler.Open(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAccountHandler_Open_InvalidBody(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{}, nil, nil)

	req := withUser(httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewBufferString(`{`)), "u1")
	rec := httptest.NewRecorder()
	handler.Open(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAccountHandler_Get_NotFound(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.Account, error) {
			return nil, domain.ErrAccountNotFound
		},
	}, nil, nil)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/accounts/missing", nil), "id", "missing")
	rec := httptest.NewRecorder()
	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAccountHandler_List_CallerOrAll(t *testing.T) {
	var listedUser string
	var page usecase.ListAccountsInput
	handler := NewAccountHandler(&accountServiceStub{
		listUserFn: func(ctx context.Context, userID string) ([]*domain.Account, error) {
			listedUser = userID
			return []*domain.Account{{ID: "a1"}}, nil
		},
		listFn: func(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error) {
			page = input
			return []*domain.Account{{ID: "a1"}, {ID: "a2"}}, nil
		},
	}, nil, nil)

	rec := httptest.NewRecorder()
	handler.List(rec, withUser(httptest.NewRequest(http.MethodGet, "/accounts", nil), "u9"))

	var own []dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &own); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if listedUser != "u9" || len(own) != 1 {
		t.Fatalf("expected caller's accounts, got user=%q n=%d", listedUser, len(own))
	}

	rec = httptest.NewRecorder()
	handler.List(rec, httptest.NewRequest(http.MethodGet, "/accounts?limit=5&offset=10", nil))

	if page.Limit != 5 || page.Offset != 10 {
		t.Fatalf("expected paging to be passed through, got %+v", page)
	}
}

func TestAccountHandler_PaymentsAndTransactions(t *testing.T) {
	var paymentsFor, txFor string
	handler := NewAccountHandler(nil, &accountHistoryStub{
		txFn: func(ctx context.Context, accountID string, input usecase.ListTransactionsInput) ([]*domain.Transaction, error) {
			txFor = accountID
			return []*domain.Transaction{}, nil
		},
		paymentsFn: func(ctx context.Context, accountID string, input usecase.ListTransactionsInput) ([]*domain.Transaction, error) {
			paymentsFor = accountID
			return []*domain.Transaction{{ID: "p1"}}, nil
		},
	}, nil)

	rec := httptest.NewRecorder()
	handler.Payments(rec, withURLParam(httptest.NewRequest(http.MethodGet, "/accounts/acc-1/payments", nil), "id", "acc-1"))
	if rec.Code != http.StatusOK || paymentsFor != "acc-1" {
		t.Fatalf("expected payments for acc-1, got %d %q", rec.Code, paymentsFor)
	}

	rec = httptest.NewRecorder()
	handler.Transactions(rec, withURLParam(httptest.NewRequest(http.MethodGet, "/accounts/acc-2/transactions", nil), "id", "acc-2"))
	if rec.Code != http.StatusOK || txFor != "acc-2" {
		t.Fatalf("expected transactions for acc-2, got %d %q", rec.Code, txFor)
	}
	if rec.Body.String() != "[]\n" {
		t.Fatalf("expected empty JSON array, got %q", rec.Body.String())
	}
}

func TestAccountHandler_Reconcile(t *testing.T) {
	handler := NewAccountHandler(nil, nil, &reconcilerStub{
		fn: func(ctx context.Context, accountID string) (*usecase.AccountReconciliation, error) {
			return &usecase.AccountReconciliation{
				AccountID:     accountID,
				StoredBalance: decimal.NewFromInt(10),
				LedgerBalance: decimal.NewFromInt(10),
				Balanced:      true,
			}, nil
		},
	})

	rec := httptest.NewRecorder()
	handler.Reconcile(rec, withURLParam(httptest.NewRequest(http.MethodGet, "/accounts/acc-1/reconciliation", nil), "id", "acc-1"))

	var resp dto.ReconciliationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if !resp.Balanced || resp.AccountID != "acc-1" {
		t.Fatalf("unexpected response %+v", resp)
	}
}
