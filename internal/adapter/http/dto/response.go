package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/custodyledger/internal/domain"
	"github.com/iho/custodyledger/internal/usecase"
)

// AccountResponse represents an account in API responses. The CVV is never
// returned.
type AccountResponse struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	AccountNumber string          `json:"account_number"`
	Currency      string          `json:"currency"`
	Balance       decimal.Decimal `json:"balance"`
	CardNumber    string          `json:"card_number"`
	CardExpiry    string          `json:"card_expiry"`
	CardType      string          `json:"card_type"`
	CreditStatus  string          `json:"credit_status"`
	Version       int64           `json:"version"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:            a.ID,
		UserID:        a.UserID,
		AccountNumber: a.AccountNumber,
		Currency:      a.Currency,
		Balance:       a.Balance,
		CardNumber:    a.Card.Number,
		CardExpiry:    a.Card.ExpiryDate.Format("01/06"),
		CardType:      string(a.Card.Type),
		CreditStatus:  string(a.CreditStatus),
		Version:       a.Version,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID                string          `json:"id"`
	SenderAccountID   *string         `json:"sender_account_id"`
	ReceiverAccountID *string         `json:"receiver_account_id"`
	Amount            decimal.Decimal `json:"amount"`
	Status            string          `json:"status"`
	ExternalRef       string          `json:"external_ref"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// TransactionFromDomain converts domain transaction to response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:                t.ID,
		SenderAccountID:   t.SenderAccountID,
		ReceiverAccountID: t.ReceiverAccountID,
		Amount:            t.Amount,
		Status:            string(t.Status),
		ExternalRef:       t.ExternalRef,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(txs []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(txs))
	for i, t := range txs {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// CreditResponse represents a credit in API responses.
type CreditResponse struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	Amount        decimal.Decimal `json:"amount"`
	InterestRate  decimal.Decimal `json:"interest_rate"`
	Status        string          `json:"status"`
	ApprovalDate  *time.Time      `json:"approval_date,omitempty"`
	RepaymentDate *time.Time      `json:"repayment_date,omitempty"`
	IsPaid        bool            `json:"is_paid"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// CreditFromDomain converts domain credit to response.
func CreditFromDomain(c *domain.Credit) *CreditResponse {
	return &CreditResponse{
		ID:            c.ID,
		UserID:        c.UserID,
		Amount:        c.Amount,
		InterestRate:  c.InterestRate,
		Status:        string(c.Status),
		ApprovalDate:  c.ApprovalDate,
		RepaymentDate: c.RepaymentDate,
		IsPaid:        c.IsPaid,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

// CreditsFromDomain converts domain credits to responses.
func CreditsFromDomain(credits []*domain.Credit) []*CreditResponse {
	result := make([]*CreditResponse, len(credits))
	for i, c := range credits {
		result[i] = CreditFromDomain(c)
	}
	return result
}

// CreditDecisionResponse is the verdict of a credit request.
type CreditDecisionResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Path    string          `json:"path"`
	Credit  *CreditResponse `json:"credit,omitempty"`
}

// CreditDecisionFromDomain converts a decision to response.
func CreditDecisionFromDomain(d *domain.CreditDecision) *CreditDecisionResponse {
	resp := &CreditDecisionResponse{
		Status:  string(d.Status),
		Message: d.Message,
		Path:    string(d.Path),
	}
	if d.Credit != nil {
		resp.Credit = CreditFromDomain(d.Credit)
	}
	return resp
}

// SummaryResponse is the financial summary report.
type SummaryResponse struct {
	CompletedCount  int             `json:"completed_count"`
	PendingCount    int             `json:"pending_count"`
	FailedCount     int             `json:"failed_count"`
	CompletedVolume decimal.Decimal `json:"completed_volume"`
	TransferVolume  decimal.Decimal `json:"transfer_volume"`
	PaymentVolume   decimal.Decimal `json:"payment_volume"`
	InboundVolume   decimal.Decimal `json:"inbound_volume"`
	GeneratedAt     time.Time       `json:"generated_at"`
}

// SummaryFromUseCase converts a summary to response.
func SummaryFromUseCase(s *usecase.FinancialSummary) *SummaryResponse {
	return &SummaryResponse{
		CompletedCount:  s.CompletedCount,
		PendingCount:    s.PendingCount,
		FailedCount:     s.FailedCount,
		CompletedVolume: s.CompletedVolume,
		TransferVolume:  s.TransferVolume,
		PaymentVolume:   s.PaymentVolume,
		InboundVolume:   s.InboundVolume,
		GeneratedAt:     s.GeneratedAt,
	}
}

// ExternalRefResponse is one row of the external reference report.
type ExternalRefResponse struct {
	TransactionID string          `json:"transaction_id"`
	ExternalRef   string          `json:"external_ref"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ExternalRefsFromUseCase converts report rows to responses.
func ExternalRefsFromUseCase(entries []usecase.ExternalRefEntry) []ExternalRefResponse {
	result := make([]ExternalRefResponse, len(entries))
	for i, e := range entries {
		result[i] = ExternalRefResponse{
			TransactionID: e.TransactionID,
			ExternalRef:   e.ExternalRef,
			Amount:        e.Amount,
			Status:        string(e.Status),
			CreatedAt:     e.CreatedAt,
		}
	}
	return result
}

// ReconciliationResponse compares stored and recomputed balances.
type ReconciliationResponse struct {
	AccountID     string          `json:"account_id"`
	StoredBalance decimal.Decimal `json:"stored_balance"`
	LedgerBalance decimal.Decimal `json:"ledger_balance"`
	Difference    decimal.Decimal `json:"difference"`
	Balanced      bool            `json:"balanced"`
	CheckedAt     time.Time       `json:"checked_at"`
}

// ReconciliationFromUseCase converts a result to response.
func ReconciliationFromUseCase(r *usecase.AccountReconciliation) *ReconciliationResponse {
	return &ReconciliationResponse{
		AccountID:     r.AccountID,
		StoredBalance: r.StoredBalance,
		LedgerBalance: r.LedgerBalance,
		Difference:    r.Difference,
		Balanced:      r.Balanced,
		CheckedAt:     r.CheckedAt,
	}
}

// ReconciliationReportResponse lists accounts whose balances disagree.
type ReconciliationReportResponse struct {
	AccountsChecked  int                       `json:"accounts_checked"`
	BalancedAccounts int                       `json:"balanced_accounts"`
	Mismatches       []*ReconciliationResponse `json:"mismatches"`
	CheckedAt        time.Time                 `json:"checked_at"`
}

// ReconciliationReportFromUseCase converts a report to response.
func ReconciliationReportFromUseCase(r *usecase.ReconciliationReport) *ReconciliationReportResponse {
	mismatches := make([]*ReconciliationResponse, len(r.Mismatches))
	for i, m := range r.Mismatches {
		mismatches[i] = ReconciliationFromUseCase(m)
	}
	return &ReconciliationReportResponse{
		AccountsChecked:  r.AccountsChecked,
		BalancedAccounts: r.BalancedAccounts,
		Mismatches:       mismatches,
		CheckedAt:        r.CheckedAt,
	}
}

// ModelStatusResponse describes the scoring model.
type ModelStatusResponse struct {
	State      string     `json:"state"`
	Usable     bool       `json:"usable"`
	Examples   int        `json:"examples"`
	Accuracy   float64    `json:"accuracy"`
	TrainedAt  *time.Time `json:"trained_at,omitempty"`
	WarmStart  bool       `json:"warm_start"`
	Classifier string     `json:"classifier,omitempty"`
}

// ModelStatusFromDomain converts model status to response.
func ModelStatusFromDomain(s domain.ModelStatus) *ModelStatusResponse {
	return &ModelStatusResponse{
		State:      string(s.State),
		Usable:     s.Usable,
		Examples:   s.Examples,
		Accuracy:   s.Accuracy,
		TrainedAt:  s.TrainedAt,
		WarmStart:  s.WarmStart,
		Classifier: s.Classifier,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
