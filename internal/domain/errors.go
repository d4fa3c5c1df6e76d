package domain

import (
	"errors"
	"fmt"
)

var (
	// Error kinds
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrNotFound            = errors.New("not found")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrInvalidState        = errors.New("invalid state transition")
	ErrModelNotTrained     = errors.New("scoring model is not trained")
	ErrDecisionUnavailable = errors.New("credit decision unavailable")
	ErrConflict            = errors.New("concurrent modification conflict")

	// Account errors
	ErrAccountNotFound = fmt.Errorf("account %w", ErrNotFound)
	ErrOwnerRequired   = errors.New("account owner is required")

	// Transaction errors
	ErrSameAccount         = errors.New("cannot transfer to same account")
	ErrCurrencyMismatch    = errors.New("cannot transfer between different currencies")
	ErrTransactionNotFound = fmt.Errorf("transaction %w", ErrNotFound)

	// Report errors
	ErrInvalidDateRange = errors.New("start date is after end date")

	// Credit errors
	ErrCreditNotFound = fmt.Errorf("credit %w", ErrNotFound)
)
