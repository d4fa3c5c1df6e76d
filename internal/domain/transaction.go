package domain

import (
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus is the settlement state of a transaction.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// IsValid checks if the status is one of the known states.
func (s TransactionStatus) IsValid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusCompleted, TransactionStatusFailed:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed.
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusFailed
}

// CanTransitionTo reports whether moving from s to next is legal.
// Only pending records may change state.
func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	if s != TransactionStatusPending {
		return false
	}
	return next == TransactionStatusCompleted || next == TransactionStatusFailed
}

// Transaction is an immutable record of a single money movement.
// A nil SenderAccountID means funds came from outside the ledger (refund, deposit);
// a nil ReceiverAccountID means funds left the ledger (payment).
type Transaction struct {
	ID                string
	SenderAccountID   *string
	ReceiverAccountID *string
	Amount            decimal.Decimal
	Status            TransactionStatus
	ExternalRef       string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TransitionTo moves the transaction to next, enforcing the state machine.
func (t *Transaction) TransitionTo(next TransactionStatus, at time.Time) error {
	if !t.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidState, t.Status, next)
	}
	t.Status = next
	t.UpdatedAt = at
	return nil
}

// Involves reports whether the account is on either side of the transaction.
func (t *Transaction) Involves(accountID string) bool {
	return t.SentBy(accountID) || t.ReceivedBy(accountID)
}

// SentBy reports whether accountID is the sender.
func (t *Transaction) SentBy(accountID string) bool {
	return t.SenderAccountID != nil && *t.SenderAccountID == accountID
}

// ReceivedBy reports whether accountID is the receiver.
func (t *Transaction) ReceivedBy(accountID string) bool {
	return t.ReceiverAccountID != nil && *t.ReceiverAccountID == accountID
}

// Direction restricts which side of a transaction an account filter matches.
type Direction string

const (
	DirectionAny      Direction = ""
	DirectionOutgoing Direction = "outgoing"
	DirectionIncoming Direction = "incoming"
)

// TransactionFilter selects transactions from the log.
// Zero values mean "no restriction"; Limit 0 means unbounded.
type TransactionFilter struct {
	AccountIDs      []string
	Direction       Direction
	Status          *TransactionStatus
	StartDate       *time.Time
	EndDate         *time.Time
	WithoutReceiver bool
	Limit           int
	Offset          int
}

// Matches evaluates the filter against a single record, ignoring paging.
func (f TransactionFilter) Matches(t *Transaction) bool {
	if len(f.AccountIDs) > 0 && !f.matchesAccount(t) {
		return false
	}
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.StartDate != nil && t.CreatedAt.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && t.CreatedAt.After(*f.EndDate) {
		return false
	}
	if f.WithoutReceiver && t.ReceiverAccountID != nil {
		return false
	}
	return true
}

func (f TransactionFilter) matchesAccount(t *Transaction) bool {
	sender := t.SenderAccountID != nil && slices.Contains(f.AccountIDs, *t.SenderAccountID)
	receiver := t.ReceiverAccountID != nil && slices.Contains(f.AccountIDs, *t.ReceiverAccountID)

	switch f.Direction {
	case DirectionOutgoing:
		return sender
	case DirectionIncoming:
		return receiver
	default:
		return sender || receiver
	}
}

// StatusPtr is a small helper for building filters.
func StatusPtr(s TransactionStatus) *TransactionStatus {
	return &s
}
