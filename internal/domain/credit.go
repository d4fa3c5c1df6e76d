package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// IncomeBypassThreshold is the completed outgoing volume at or above which
// a borrower is approved without consulting the scoring model.
var IncomeBypassThreshold = decimal.NewFromInt(125000)

// DefaultInterestRate is applied when a credit request omits a rate.
var DefaultInterestRate = decimal.NewFromInt(5)

// ShouldBypassScoring reports whether the income proxy alone approves a credit.
func ShouldBypassScoring(incomeTotal decimal.Decimal) bool {
	return incomeTotal.GreaterThanOrEqual(IncomeBypassThreshold)
}

// CreditStatusPending exists only on credit records; account labels use
// the approved/denied pair.
const CreditStatusPending CreditStatus = "pending"

// Credit is an issued (or requested) loan.
type Credit struct {
	ID            string
	UserID        string
	Amount        decimal.Decimal
	InterestRate  decimal.Decimal
	Status        CreditStatus
	ApprovalDate  *time.Time
	RepaymentDate *time.Time
	IsPaid        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DecisionPath records which branch of the pipeline produced a verdict.
type DecisionPath string

const (
	DecisionPathIncomeBypass DecisionPath = "income_bypass"
	DecisionPathModel        DecisionPath = "model"
)

// CreditDecision is the verdict returned to the caller.
type CreditDecision struct {
	Status  CreditStatus
	Message string
	Path    DecisionPath
	Income  decimal.Decimal
	Credit  *Credit
}

// Approved reports whether the decision approved the credit.
func (d *CreditDecision) Approved() bool {
	return d.Status == CreditStatusApproved
}
