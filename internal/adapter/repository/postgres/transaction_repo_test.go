package postgres

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"

	"github.com/iho/custodyledger/internal/domain"
)

var transactionRowColumns = []string{
	"id", "sender_account_id", "receiver_account_id", "amount",
	"status", "external_ref", "created_at", "updated_at",
}

func transactionRows(txs ...*domain.Transaction) *pgxmock.Rows {
	rows := pgxmock.NewRows(transactionRowColumns)
	for _, t := range txs {
		rows.AddRow(t.ID, t.SenderAccountID, t.ReceiverAccountID, decimalToNumeric(t.Amount),
			string(t.Status), t.ExternalRef, timeToPgTimestamptz(t.CreatedAt), timeToPgTimestamptz(t.UpdatedAt))
	}
	return rows
}

func ref(s string) *string { return &s }

func TestTransactionRepositoryCreatePayment(t *testing.T) {
	pool := newMockPool(t)
	tx := beginTx(t, pool)
	now := time.Now()

	payment := &domain.Transaction{
		ID:              "tx-1",
		SenderAccountID: ref("acc-1"),
		Amount:          decimal.NewFromInt(40),
		Status:          domain.TransactionStatusCompleted,
		ExternalRef:     "blockchain-id-01",
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	pool.ExpectExec("INSERT INTO transactions").
		WithArgs("tx-1", payment.SenderAccountID, payment.ReceiverAccountID, pgxmock.AnyArg(),
			"completed", "blockchain-id-01", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := NewTransactionRepository(pool).Create(context.Background(), tx, payment); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	assertExpectations(t, pool)
}

func TestTransactionRepositoryGetByID(t *testing.T) {
	pool := newMockPool(t)
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	want := &domain.Transaction{
		ID:                "tx-1",
		ReceiverAccountID: ref("acc-2"),
		Amount:            decimal.RequireFromString("12.34"),
		Status:            domain.TransactionStatusPending,
		ExternalRef:       "blockchain-refund-id-01",
		CreatedAt:         created,
		UpdatedAt:         created,
	}

	pool.ExpectQuery("FROM transactions WHERE id").
		WithArgs("tx-1").
		WillReturnRows(transactionRows(want))

	got, err := NewTransactionRepository(pool).GetByID(context.Background(), "tx-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if got.SenderAccountID != nil {
		t.Fatalf("expected external sender, got %q", *got.SenderAccountID)
	}
	if got.ReceiverAccountID == nil || *got.ReceiverAccountID != "acc-2" {
		t.Fatalf("unexpected receiver: %v", got.ReceiverAccountID)
	}
	if !got.Amount.Equal(want.Amount) || got.Status != domain.TransactionStatusPending {
		t.Fatalf("unexpected record: %+v", got)
	}

	assertExpectations(t, pool)
}

func TestTransactionRepositoryGetByIDNotFound(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery("FROM transactions WHERE id").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := NewTransactionRepository(pool).GetByID(context.Background(), "missing")
	if !errors.Is(err, domain.ErrTransactionNotFound) {
		t.Fatalf("expected transaction not found, got %v", err)
	}
}

func TestTransactionRepositoryUpdateStatus(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{"pending record", 1, nil},
		{"already settled", 0, domain.ErrInvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := newMockPool(t)
			tx := beginTx(t, pool)

			pool.ExpectExec("UPDATE transactions").
				WithArgs("tx-1", "pending", "failed", pgxmock.AnyArg()).
				WillReturnResult(pgxmock.NewResult("UPDATE", tt.affected))

			err := NewTransactionRepository(pool).UpdateStatus(context.Background(), tx, "tx-1",
				domain.TransactionStatusPending, domain.TransactionStatusFailed, time.Now())

			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}

			assertExpectations(t, pool)
		})
	}
}

func TestTransactionRepositoryFind(t *testing.T) {
	pool := newMockPool(t)
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	rec := &domain.Transaction{
		ID: "tx-9", SenderAccountID: ref("acc-1"), Amount: decimal.NewFromInt(7),
		Status: domain.TransactionStatusCompleted, ExternalRef: "blockchain-id-09",
		CreatedAt: created, UpdatedAt: created,
	}

	pool.ExpectQuery("sender_account_id = ANY").
		WithArgs([]string{"acc-1"}, "completed", int32(10)).
		WillReturnRows(transactionRows(rec))

	got, err := NewTransactionRepository(pool).Find(context.Background(), domain.TransactionFilter{
		AccountIDs: []string{"acc-1"},
		Direction:  domain.DirectionOutgoing,
		Status:     domain.StatusPtr(domain.TransactionStatusCompleted),
		Limit:      10,
	})
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "tx-9" {
		t.Fatalf("unexpected result: %+v", got)
	}

	assertExpectations(t, pool)
}

func TestBuildFindQuery(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	tests := []struct {
		name     string
		filter   domain.TransactionFilter
		contains []string
		absent   []string
		args     int
	}{
		{
			name:     "unfiltered",
			filter:   domain.TransactionFilter{},
			contains: []string{"ORDER BY created_at DESC, id DESC"},
			absent:   []string{"WHERE", "LIMIT", "OFFSET"},
		},
		{
			name:     "either side",
			filter:   domain.TransactionFilter{AccountIDs: []string{"a", "b"}},
			contains: []string{"(sender_account_id = ANY($1) OR receiver_account_id = ANY($1))"},
			args:     1,
		},
		{
			name:     "incoming in range",
			filter:   domain.TransactionFilter{AccountIDs: []string{"a"}, Direction: domain.DirectionIncoming, StartDate: &start, EndDate: &end},
			contains: []string{"receiver_account_id = ANY($1)", "created_at >= $2", "created_at <= $3"},
			absent:   []string{"sender_account_id = ANY"},
			args:     3,
		},
		{
			name:     "payments page",
			filter:   domain.TransactionFilter{AccountIDs: []string{"a"}, Direction: domain.DirectionOutgoing, WithoutReceiver: true, Limit: 20, Offset: 40},
			contains: []string{"sender_account_id = ANY($1)", "receiver_account_id IS NULL", "LIMIT $2", "OFFSET $3"},
			args:     3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := buildFindQuery(tt.filter)
			for _, s := range tt.contains {
				if !strings.Contains(query, s) {
					t.Errorf("query %q does not contain %q", query, s)
				}
			}
			for _, s := range tt.absent {
				if strings.Contains(query, s) {
					t.Errorf("query %q unexpectedly contains %q", query, s)
				}
			}
			if len(args) != tt.args {
				t.Errorf("got %d args, want %d", len(args), tt.args)
			}
		})
	}
}
