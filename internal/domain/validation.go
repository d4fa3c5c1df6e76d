package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidCurrency = errors.New("invalid currency code")
	ErrInvalidCardType = errors.New("invalid card type")
	ErrAmountTooLarge  = fmt.Errorf("%w: exceeds maximum allowed", ErrInvalidAmount)
	ErrAmountPrecision = fmt.Errorf("%w: more than %d decimal places", ErrInvalidAmount, AmountScale)
)

// Validation constants
const (
	AmountScale       = 2
	MaxTransferAmount = "1000000000000" // 1 trillion
	DefaultCurrency   = "USD"
)

// Supported account currencies.
var validCurrencies = map[string]bool{
	"USD": true, "EUR": true, "KZT": true,
	"GBP": true, "JPY": true, "RUB": true,
}

// NormalizeCurrency upper-cases and defaults an empty currency.
func NormalizeCurrency(currency string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return DefaultCurrency
	}
	return currency
}

// ValidateCurrency validates currency code
func ValidateCurrency(currency string) error {
	currency = NormalizeCurrency(currency)

	if !validCurrencies[currency] {
		return fmt.Errorf("%w: %s is not supported", ErrInvalidCurrency, currency)
	}

	return nil
}

// ValidateCardType validates the requested card type.
func ValidateCardType(cardType CardType) error {
	switch CardType(strings.ToLower(string(cardType))) {
	case CardTypeDebit, CardTypeCredit:
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidCardType, cardType)
}

// ValidateAmount checks that a monetary amount is positive, bounded and
// expressed in whole minor units.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if !amount.Equal(amount.Round(AmountScale)) {
		return ErrAmountPrecision
	}

	maxAmount := decimal.RequireFromString(MaxTransferAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxTransferAmount)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
