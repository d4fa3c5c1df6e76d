package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateCurrency(t *testing.T) {
	t.Parallel()

	if err := ValidateCurrency("kzt"); err != nil {
		t.Fatalf("expected lowercase to be normalised, got %v", err)
	}

	if err := ValidateCurrency(""); err != nil {
		t.Fatalf("expected empty currency to default, got %v", err)
	}

	if err := ValidateCurrency("XYZ"); !errors.Is(err, ErrInvalidCurrency) {
		t.Fatalf("expected ErrInvalidCurrency, got %v", err)
	}
}

func TestValidateCardType(t *testing.T) {
	t.Parallel()

	if err := ValidateCardType("Credit"); err != nil {
		t.Fatalf("expected credit card type to pass, got %v", err)
	}
	if err := ValidateCardType("gold"); !errors.Is(err, ErrInvalidCardType) {
		t.Fatalf("expected ErrInvalidCardType, got %v", err)
	}
}

func TestValidateAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		amount  string
		wantErr bool
	}{
		{"positive whole", "200", false},
		{"two decimals", "0.01", false},
		{"zero", "0", true},
		{"negative", "-5", true},
		{"sub-cent", "1.001", true},
		{"too large", "1000000000000.01", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAmount(decimal.RequireFromString(tt.amount))
			if tt.wantErr && !errors.Is(err, ErrInvalidAmount) {
				t.Fatalf("expected ErrInvalidAmount, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}

func TestValidatePagination(t *testing.T) {
	t.Parallel()

	limit, offset := ValidatePagination(0, -10)
	if limit != 50 || offset != 0 {
		t.Fatalf("expected defaults, got %d/%d", limit, offset)
	}

	limit, _ = ValidatePagination(5000, 0)
	if limit != 1000 {
		t.Fatalf("expected limit to cap at 1000, got %d", limit)
	}
}
