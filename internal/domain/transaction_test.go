package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestTransactionStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to TransactionStatus
		want     bool
	}{
		{TransactionStatusPending, TransactionStatusCompleted, true},
		{TransactionStatusPending, TransactionStatusFailed, true},
		{TransactionStatusPending, TransactionStatusPending, false},
		{TransactionStatusCompleted, TransactionStatusFailed, false},
		{TransactionStatusCompleted, TransactionStatusPending, false},
		{TransactionStatusFailed, TransactionStatusCompleted, false},
		{TransactionStatusFailed, TransactionStatusFailed, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTransaction_TransitionTo(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("pending to failed", func(t *testing.T) {
		tx := &Transaction{Status: TransactionStatusPending}
		if err := tx.TransitionTo(TransactionStatusFailed, now); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tx.Status != TransactionStatusFailed || !tx.UpdatedAt.Equal(now) {
			t.Fatalf("unexpected state %+v", tx)
		}
	})

	t.Run("terminal rejects", func(t *testing.T) {
		tx := &Transaction{Status: TransactionStatusCompleted}
		err := tx.TransitionTo(TransactionStatusFailed, now)
		if !errors.Is(err, ErrInvalidState) {
			t.Fatalf("expected ErrInvalidState, got %v", err)
		}
		if tx.Status != TransactionStatusCompleted {
			t.Fatalf("status changed on rejected transition: %s", tx.Status)
		}
	})
}

func TestTransactionFilter_Matches(t *testing.T) {
	a, b := "acc-a", "acc-b"
	base := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	transfer := &Transaction{SenderAccountID: &a, ReceiverAccountID: &b, Amount: decimal.NewFromInt(10), Status: TransactionStatusCompleted, CreatedAt: base}
	payment := &Transaction{SenderAccountID: &a, Amount: decimal.NewFromInt(5), Status: TransactionStatusCompleted, CreatedAt: base}
	refund := &Transaction{ReceiverAccountID: &a, Amount: decimal.NewFromInt(5), Status: TransactionStatusPending, CreatedAt: base}

	start := base.Add(-time.Hour)
	end := base.Add(-time.Minute)

	tests := []struct {
		name   string
		filter TransactionFilter
		tx     *Transaction
		want   bool
	}{
		{"empty filter matches", TransactionFilter{}, transfer, true},
		{"either side", TransactionFilter{AccountIDs: []string{b}}, transfer, true},
		{"outgoing for receiver", TransactionFilter{AccountIDs: []string{b}, Direction: DirectionOutgoing}, transfer, false},
		{"incoming for receiver", TransactionFilter{AccountIDs: []string{b}, Direction: DirectionIncoming}, transfer, true},
		{"refund has no sender", TransactionFilter{AccountIDs: []string{a}, Direction: DirectionOutgoing}, refund, false},
		{"status mismatch", TransactionFilter{Status: StatusPtr(TransactionStatusCompleted)}, refund, false},
		{"payments only", TransactionFilter{WithoutReceiver: true}, payment, true},
		{"payments only excludes transfer", TransactionFilter{WithoutReceiver: true}, transfer, false},
		{"outside date range", TransactionFilter{StartDate: &start, EndDate: &end}, transfer, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(tt.tx); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTransactionPayload(t *testing.T) {
	a := "acc-a"
	payload := TransactionPayload(&Transaction{ID: "tx-1", SenderAccountID: &a, Amount: decimal.NewFromInt(50), Status: TransactionStatusCompleted})

	if payload["sender_account_id"] != a {
		t.Errorf("expected sender in payload, got %v", payload)
	}
	if _, ok := payload["receiver_account_id"]; ok {
		t.Errorf("payment payload must not carry a receiver")
	}
	if payload["amount"] != "50" {
		t.Errorf("expected amount 50, got %v", payload["amount"])
	}
}
