package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"

	"github.com/iho/custodyledger/internal/domain"
)

var accountRowColumns = []string{
	"id", "user_id", "account_number", "currency", "balance",
	"card_number", "card_expiry", "card_cvv", "card_type", "credit_status",
	"version", "created_at", "updated_at",
}

func accountRows(accounts ...*domain.Account) *pgxmock.Rows {
	rows := pgxmock.NewRows(accountRowColumns)
	for _, a := range accounts {
		rows.AddRow(
			a.ID, a.UserID, a.AccountNumber, a.Currency, decimalToNumeric(a.Balance),
			a.Card.Number, timeToPgTimestamptz(a.Card.ExpiryDate), a.Card.CVV,
			string(a.Card.Type), string(a.CreditStatus),
			a.Version, timeToPgTimestamptz(a.CreatedAt), timeToPgTimestamptz(a.UpdatedAt),
		)
	}
	return rows
}

func sampleAccount(id string, balance string) *domain.Account {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return &domain.Account{
		ID:            id,
		UserID:        "user-1",
		AccountNumber: "AC000000000001",
		Currency:      "USD",
		Balance:       decimal.RequireFromString(balance),
		Card: domain.Card{
			Number:     "4000000000000001",
			ExpiryDate: now.AddDate(4, 0, 0),
			CVV:        "123",
			Type:       domain.CardTypeDebit,
		},
		CreditStatus: domain.CreditStatusDenied,
		Version:      3,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestAccountRepositoryCreate(t *testing.T) {
	pool := newMockPool(t)
	tx := beginTx(t, pool)
	acc := sampleAccount("acc-1", "100.50")

	pool.ExpectExec("INSERT INTO accounts").
		WithArgs(acc.ID, acc.UserID, acc.AccountNumber, acc.Currency, pgxmock.AnyArg(),
			acc.Card.Number, pgxmock.AnyArg(), acc.Card.CVV, "debit", "denied",
			acc.Version, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := NewAccountRepository(pool).Create(context.Background(), tx, acc); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	assertExpectations(t, pool)
}

func TestAccountRepositoryGetByID(t *testing.T) {
	pool := newMockPool(t)
	want := sampleAccount("acc-1", "100.50")

	pool.ExpectQuery("FROM accounts WHERE id").
		WithArgs("acc-1").
		WillReturnRows(accountRows(want))

	got, err := NewAccountRepository(pool).GetByID(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if !got.Balance.Equal(want.Balance) {
		t.Fatalf("balance = %s, want %s", got.Balance, want.Balance)
	}
	if got.Card.Type != domain.CardTypeDebit || got.CreditStatus != domain.CreditStatusDenied {
		t.Fatalf("unexpected card/credit fields: %+v", got)
	}
	if got.Version != 3 || !got.CreatedAt.Equal(want.CreatedAt) {
		t.Fatalf("unexpected version/timestamps: %+v", got)
	}

	assertExpectations(t, pool)
}

func TestAccountRepositoryGetByIDNotFound(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery("FROM accounts WHERE id").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := NewAccountRepository(pool).GetByID(context.Background(), "missing")
	if !errors.Is(err, domain.ErrAccountNotFound) || !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected account not found, got %v", err)
	}

	assertExpectations(t, pool)
}

func TestAccountRepositoryGetByNumberMatchesCard(t *testing.T) {
	pool := newMockPool(t)
	want := sampleAccount("acc-1", "5")

	pool.ExpectQuery("account_number = \\$1 OR card_number = \\$1").
		WithArgs(want.Card.Number).
		WillReturnRows(accountRows(want))

	got, err := NewAccountRepository(pool).GetByNumber(context.Background(), want.Card.Number)
	if err != nil {
		t.Fatalf("get by number failed: %v", err)
	}
	if got.ID != "acc-1" {
		t.Fatalf("got account %s, want acc-1", got.ID)
	}

	assertExpectations(t, pool)
}

func TestAccountRepositoryGetByIDsForUpdate(t *testing.T) {
	pool := newMockPool(t)
	tx := beginTx(t, pool)
	a, b := sampleAccount("a", "10"), sampleAccount("b", "20")

	pool.ExpectQuery("FOR UPDATE").
		WithArgs([]string{"a", "b"}).
		WillReturnRows(accountRows(a, b))

	got, err := NewAccountRepository(pool).GetByIDsForUpdate(context.Background(), tx, []string{"a", "b"})
	if err != nil {
		t.Fatalf("lock failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("unexpected accounts: %+v", got)
	}

	assertExpectations(t, pool)
}

func TestAccountRepositoryUpdateBalance(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{"version matches", 1, nil},
		{"version moved", 0, domain.ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := newMockPool(t)
			tx := beginTx(t, pool)

			pool.ExpectExec("UPDATE accounts").
				WithArgs("acc-1", int64(3), pgxmock.AnyArg(), pgxmock.AnyArg()).
				WillReturnResult(pgxmock.NewResult("UPDATE", tt.affected))

			err := NewAccountRepository(pool).UpdateBalance(context.Background(), tx, "acc-1", 3,
				decimal.NewFromInt(90), time.Now())

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

func TestAccountRepositoryListByOwnerEmpty(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery("WHERE user_id").
		WithArgs("nobody").
		WillReturnRows(accountRows())

	got, err := NewAccountRepository(pool).ListByOwner(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no accounts, got %d", len(got))
	}

	assertExpectations(t, pool)
}

func TestNumericRoundTrip(t *testing.T) {
	for _, s := range []string{"0", "0.01", "100.50", "1000000000000", "-3.75"} {
		d := decimal.RequireFromString(s)
		if got := numericToDecimal(decimalToNumeric(d)); !got.Equal(d) {
			t.Fatalf("round trip of %s gave %s", s, got)
		}
	}
}
