package dto

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/custodyledger/internal/domain"
	"github.com/iho/custodyledger/internal/usecase"
)

// OpenAccountRequest represents a request to open an account.
type OpenAccountRequest struct {
	Currency       string           `json:"currency"`
	CardType       string           `json:"card_type"`
	InitialDeposit *decimal.Decimal `json:"initial_deposit,omitempty"`
}

// ToUseCaseInput converts to use case input for the given owner.
func (r *OpenAccountRequest) ToUseCaseInput(userID string) usecase.OpenAccountInput {
	input := usecase.OpenAccountInput{
		UserID:   userID,
		Currency: r.Currency,
		CardType: domain.CardType(r.CardType),
	}
	if r.InitialDeposit != nil {
		input.InitialDeposit = *r.InitialDeposit
	}
	return input
}

// AccountRef addresses an account by ID or by account/card number.
type AccountRef struct {
	ID     string `json:"id,omitempty"`
	Number string `json:"number,omitempty"`
}

func (r AccountRef) toUseCase() usecase.AccountRef {
	return usecase.AccountRef{ID: r.ID, Number: r.Number}
}

// TransferRequest moves funds between two ledger accounts.
type TransferRequest struct {
	Sender   AccountRef      `json:"sender"`
	Receiver AccountRef      `json:"receiver"`
	Amount   decimal.Decimal `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *TransferRequest) ToUseCaseInput() usecase.TransferInput {
	return usecase.TransferInput{
		Sender:   r.Sender.toUseCase(),
		Receiver: r.Receiver.toUseCase(),
		Amount:   r.Amount,
	}
}

// PayRequest moves funds out of the ledger.
type PayRequest struct {
	Sender AccountRef      `json:"sender"`
	Amount decimal.Decimal `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *PayRequest) ToUseCaseInput() usecase.PayInput {
	return usecase.PayInput{Sender: r.Sender.toUseCase(), Amount: r.Amount}
}

// RefundRequest moves funds into the ledger from outside.
type RefundRequest struct {
	Receiver AccountRef      `json:"receiver"`
	Amount   decimal.Decimal `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *RefundRequest) ToUseCaseInput() usecase.RefundInput {
	return usecase.RefundInput{Receiver: r.Receiver.toUseCase(), Amount: r.Amount}
}

// DecideCreditRequest asks for a credit decision for the caller.
type DecideCreditRequest struct {
	Amount       decimal.Decimal  `json:"amount"`
	InterestRate *decimal.Decimal `json:"interest_rate,omitempty"`
}

// ToUseCaseInput converts to use case input for the given borrower.
func (r *DecideCreditRequest) ToUseCaseInput(userID string) usecase.DecideInput {
	return usecase.DecideInput{
		UserID:       userID,
		Amount:       r.Amount,
		InterestRate: r.InterestRate,
	}
}

// UpdateCreditRequest carries optional servicing changes.
type UpdateCreditRequest struct {
	Status        *string    `json:"status,omitempty"`
	RepaymentDate *time.Time `json:"repayment_date,omitempty"`
	IsPaid        *bool      `json:"is_paid,omitempty"`
}

// ToUseCaseInput converts to use case input for credit id.
func (r *UpdateCreditRequest) ToUseCaseInput(id string) usecase.UpdateCreditInput {
	input := usecase.UpdateCreditInput{
		ID:            id,
		RepaymentDate: r.RepaymentDate,
		IsPaid:        r.IsPaid,
	}
	if r.Status != nil {
		status := domain.CreditStatus(*r.Status)
		input.Status = &status
	}
	return input
}

// ParseDateRange reads optional RFC 3339 or YYYY-MM-DD bounds. A bare end
// date covers the whole day.
func ParseDateRange(start, end string) (usecase.DateRange, error) {
	var r usecase.DateRange

	if start != "" {
		t, _, err := parseDate(start)
		if err != nil {
			return r, fmt.Errorf("invalid start: %w", err)
		}
		r.Start = &t
	}
	if end != "" {
		t, dateOnly, err := parseDate(end)
		if err != nil {
			return r, fmt.Errorf("invalid end: %w", err)
		}
		if dateOnly {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		r.End = &t
	}

	return r, nil
}

func parseDate(s string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, false, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}
