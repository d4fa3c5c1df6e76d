package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/custodyledger/internal/domain"
	"github.com/iho/custodyledger/internal/usecase"
	"github.com/iho/custodyledger/internal/usecase/mocks"
)

func seededLog() *mocks.MockTransactionRepository {
	a, b := "a", "b"
	day := func(d int) time.Time { return time.Date(2024, 2, d, 12, 0, 0, 0, time.UTC) }

	txs := mocks.NewMockTransactionRepository()
	txs.Seed(
		&domain.Transaction{ID: "deposit", ReceiverAccountID: &a, Amount: decimal.NewFromInt(500), Status: domain.TransactionStatusCompleted, ExternalRef: "blockchain-id-1", CreatedAt: day(1)},
		&domain.Transaction{ID: "transfer", SenderAccountID: &a, ReceiverAccountID: &b, Amount: decimal.NewFromInt(200), Status: domain.TransactionStatusCompleted, ExternalRef: "blockchain-id-2", CreatedAt: day(2)},
		&domain.Transaction{ID: "payment", SenderAccountID: &b, Amount: decimal.NewFromInt(50), Status: domain.TransactionStatusCompleted, ExternalRef: "blockchain-id-3", CreatedAt: day(3)},
		&domain.Transaction{ID: "refund", ReceiverAccountID: &b, Amount: decimal.NewFromInt(20), Status: domain.TransactionStatusCompleted, ExternalRef: "blockchain-refund-id-4", CreatedAt: day(4)},
		&domain.Transaction{ID: "held", SenderAccountID: &a, Amount: decimal.NewFromInt(10), Status: domain.TransactionStatusPending, CreatedAt: day(5)},
		&domain.Transaction{ID: "cancelled", SenderAccountID: &a, Amount: decimal.NewFromInt(10), Status: domain.TransactionStatusFailed, CreatedAt: day(6)},
	)
	return txs
}

func TestReportUseCase_Summary(t *testing.T) {
	uc := usecase.NewReportUseCase(seededLog())

	s, err := uc.Summary(context.Background(), usecase.DateRange{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.CompletedCount != 4 || s.PendingCount != 1 || s.FailedCount != 1 {
		t.Errorf("unexpected counts: %+v", s)
	}
	checks := map[string][2]decimal.Decimal{
		"completed": {s.CompletedVolume, decimal.NewFromInt(770)},
		"transfer":  {s.TransferVolume, decimal.NewFromInt(200)},
		"payment":   {s.PaymentVolume, decimal.NewFromInt(50)},
		"inbound":   {s.InboundVolume, decimal.NewFromInt(520)},
	}
	for name, c := range checks {
		if !c[0].Equal(c[1]) {
			t.Errorf("%s volume: expected %s, got %s", name, c[1], c[0])
		}
	}
}

func TestReportUseCase_SummaryServedFromCache(t *testing.T) {
	log := seededLog()
	cache := mocks.NewMockCache()
	uc := usecase.NewReportUseCase(log).WithCache(cache, usecase.DefaultSummaryCacheTTL)

	first, err := uc.Summary(context.Background(), usecase.DateRange{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	log.FindFunc = func(context.Context, domain.TransactionFilter) ([]*domain.Transaction, error) {
		return nil, errors.New("log unavailable")
	}

	second, err := uc.Summary(context.Background(), usecase.DateRange{})
	if err != nil {
		t.Fatalf("expected cached summary, got %v", err)
	}
	if cache.Hits() != 1 {
		t.Errorf("expected one cache hit, got %d", cache.Hits())
	}
	if second.CompletedCount != first.CompletedCount || !second.CompletedVolume.Equal(first.CompletedVolume) {
		t.Errorf("cached summary differs: %+v vs %+v", second, first)
	}

	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	if _, err := uc.Summary(context.Background(), usecase.DateRange{Start: &start}); err == nil {
		t.Errorf("expected a different range to miss the cache")
	}
}

func TestReportUseCase_Range(t *testing.T) {
	uc := usecase.NewReportUseCase(seededLog())

	start := time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 3, 23, 59, 59, 0, time.UTC)

	records, err := uc.TransactionsInRange(context.Background(), usecase.DateRange{Start: &start, End: &end})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 || records[0].ID != "payment" || records[1].ID != "transfer" {
		t.Fatalf("unexpected records: %+v", records)
	}

	if _, err := uc.TransactionsInRange(context.Background(), usecase.DateRange{Start: &end, End: &start}); !errors.Is(err, domain.ErrInvalidDateRange) {
		t.Errorf("expected ErrInvalidDateRange, got %v", err)
	}
}

func TestReportUseCase_ExternalRefs(t *testing.T) {
	uc := usecase.NewReportUseCase(seededLog())

	refs, err := uc.ExternalRefs(context.Background(), usecase.DateRange{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(refs) != 4 {
		t.Fatalf("expected 4 referenced transactions, got %d", len(refs))
	}
	if refs[0].ExternalRef != "blockchain-refund-id-4" || refs[3].ExternalRef != "blockchain-id-1" {
		t.Errorf("expected newest first, got %+v", refs)
	}
}

func TestTransactionUseCase_History(t *testing.T) {
	accounts := mocks.NewMockAccountRepository()
	accounts.Seed(
		&domain.Account{ID: "a", UserID: "u1"},
		&domain.Account{ID: "b", UserID: "u2"},
	)
	uc := usecase.NewTransactionUseCase(accounts, seededLog())
	ctx := context.Background()

	mine, err := uc.ListUserTransactions(ctx, "u1", usecase.ListTransactionsInput{})
	if err != nil || len(mine) != 4 {
		t.Fatalf("ListUserTransactions: %v, %d", err, len(mine))
	}

	none, err := uc.ListUserTransactions(ctx, "nobody", usecase.ListTransactionsInput{})
	if err != nil || len(none) != 0 {
		t.Fatalf("expected empty history, got %v, %d", err, len(none))
	}

	payments, err := uc.ListPayments(ctx, "b", usecase.ListTransactionsInput{})
	if err != nil || len(payments) != 1 || payments[0].ID != "payment" {
		t.Fatalf("ListPayments: %v, %+v", err, payments)
	}

	pending, err := uc.ListByStatus(ctx, domain.TransactionStatusPending, usecase.ListTransactionsInput{})
	if err != nil || len(pending) != 1 || pending[0].ID != "held" {
		t.Fatalf("ListByStatus: %v, %+v", err, pending)
	}

	if _, err := uc.ListByStatus(ctx, "weird", usecase.ListTransactionsInput{}); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState for unknown status, got %v", err)
	}

	page, err := uc.ListAccountTransactions(ctx, "b", usecase.ListTransactionsInput{Limit: 1, Offset: 1})
	if err != nil || len(page) != 1 || page[0].ID != "payment" {
		t.Fatalf("ListAccountTransactions paging: %v, %+v", err, page)
	}

	if _, err := uc.ListAccountTransactions(ctx, "zzz", usecase.ListTransactionsInput{}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
