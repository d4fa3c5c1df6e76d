package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreditStatus is the historical credit label of an account.
type CreditStatus string

const (
	CreditStatusApproved CreditStatus = "approved"
	CreditStatusDenied   CreditStatus = "denied"
)

// IsKnown reports whether the status is a usable training label.
func (s CreditStatus) IsKnown() bool {
	return s == CreditStatusApproved || s == CreditStatusDenied
}

// CardType is the kind of card issued with an account.
type CardType string

const (
	CardTypeDebit  CardType = "debit"
	CardTypeCredit CardType = "credit"
)

// Card holds the card metadata attached to an account.
type Card struct {
	Number     string
	ExpiryDate time.Time
	CVV        string
	Type       CardType
}

// Account represents a custodial account that holds a balance.
type Account struct {
	ID            string
	UserID        string
	AccountNumber string
	Currency      string
	Balance       decimal.Decimal
	Card          Card
	CreditStatus  CreditStatus
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ValidateDebit checks if account can be debited by amount.
func (a *Account) ValidateDebit(amount decimal.Decimal) error {
	if a.Balance.LessThan(amount) {
		return ErrInsufficientFunds
	}
	return nil
}

// ApplyDebit returns new balance after debit.
func (a *Account) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Sub(amount)
}

// ApplyCredit returns new balance after credit.
func (a *Account) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Add(amount)
}

// HasOwner reports whether the account is attached to a user.
func (a *Account) HasOwner() bool {
	return a.UserID != ""
}
