package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/custodyledger/internal/domain"
	"github.com/iho/custodyledger/internal/usecase"
)

func TestOpenAccountRequest_ToUseCaseInput(t *testing.T) {
	var req OpenAccountRequest
	require.NoError(t, json.Unmarshal([]byte(`{"currency":"eur","card_type":"credit","initial_deposit":"10.50"}`), &req))

	got := req.ToUseCaseInput("user-1")

	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, "eur", got.Currency)
	assert.Equal(t, domain.CardTypeCredit, got.CardType)
	assert.True(t, got.InitialDeposit.Equal(decimal.RequireFromString("10.50")))
}

func TestOpenAccountRequest_NoDepositIsZero(t *testing.T) {
	req := OpenAccountRequest{Currency: "USD"}
	assert.True(t, req.ToUseCaseInput("u").InitialDeposit.IsZero())
}

func TestTransferRequest_ToUseCaseInput(t *testing.T) {
	var req TransferRequest
	body := `{"sender":{"id":"acc-1"},"receiver":{"number":"4000000000000001"},"amount":"12.34"}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	got := req.ToUseCaseInput()

	assert.Equal(t, usecase.AccountRef{ID: "acc-1"}, got.Sender)
	assert.Equal(t, usecase.AccountRef{Number: "4000000000000001"}, got.Receiver)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("12.34")))
}

func TestPayAndRefundRequests(t *testing.T) {
	pay := PayRequest{Sender: AccountRef{ID: "a"}, Amount: decimal.NewFromInt(5)}
	assert.Equal(t, "a", pay.ToUseCaseInput().Sender.ID)

	refund := RefundRequest{Receiver: AccountRef{Number: "AC1"}, Amount: decimal.NewFromInt(5)}
	assert.Equal(t, "AC1", refund.ToUseCaseInput().Receiver.Number)
}

func TestUpdateCreditRequest_ToUseCaseInput(t *testing.T) {
	var req UpdateCreditRequest
	require.NoError(t, json.Unmarshal([]byte(`{"status":"denied","is_paid":true}`), &req))

	got := req.ToUseCaseInput("cr-1")

	assert.Equal(t, "cr-1", got.ID)
	require.NotNil(t, got.Status)
	assert.Equal(t, domain.CreditStatusDenied, *got.Status)
	require.NotNil(t, got.IsPaid)
	assert.True(t, *got.IsPaid)
	assert.Nil(t, got.RepaymentDate)
}

func TestParseDateRange(t *testing.T) {
	tests := []struct {
		name      string
		start     string
		end       string
		wantStart *time.Time
		wantEnd   *time.Time
		wantErr   bool
	}{
		{name: "empty"},
		{
			name:      "rfc3339",
			start:     "2024-01-01T00:00:00Z",
			end:       "2024-01-31T12:00:00Z",
			wantStart: ptr(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
			wantEnd:   ptr(time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC)),
		},
		{
			name:      "date only end covers the day",
			start:     "2024-01-01",
			end:       "2024-01-01",
			wantStart: ptr(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
			wantEnd:   ptr(time.Date(2024, 1, 1, 23, 59, 59, 999999999, time.UTC)),
		},
		{name: "garbage start", start: "yesterday", wantErr: true},
		{name: "garbage end", end: "31/01/2024", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDateRange(tt.start, tt.end)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assertTimePtr(t, tt.wantStart, got.Start)
			assertTimePtr(t, tt.wantEnd, got.End)
		})
	}
}

func ptr(t time.Time) *time.Time { return &t }

func assertTimePtr(t *testing.T, want, got *time.Time) {
	t.Helper()
	if want == nil {
		assert.Nil(t, got)
		return
	}
	require.NotNil(t, got)
	assert.True(t, want.Equal(*got), "want %s, got %s", want, got)
}
