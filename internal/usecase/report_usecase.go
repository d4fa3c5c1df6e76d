package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/custodyledger/internal/domain"
)

// ReportUseCase builds read-only reports from the transaction log.
type ReportUseCase struct {
	txRepo   TransactionRepository
	cache    Cache
	cacheTTL time.Duration
}

// NewReportUseCase creates a new ReportUseCase.
func NewReportUseCase(txRepo TransactionRepository) *ReportUseCase {
	return &ReportUseCase{txRepo: txRepo}
}

// WithCache memoizes financial summaries for ttl. Cache failures fall
// back to computing the summary.
func (uc *ReportUseCase) WithCache(cache Cache, ttl time.Duration) *ReportUseCase {
	uc.cache = cache
	uc.cacheTTL = ttl
	return uc
}

// DateRange bounds a report. Nil ends are open.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

func (r DateRange) cacheKey() string {
	bound := func(t *time.Time) string {
		if t == nil {
			return "-"
		}
		return t.UTC().Format(time.RFC3339Nano)
	}
	return fmt.Sprintf("report:summary:%s:%s", bound(r.Start), bound(r.End))
}

func (r DateRange) validate() error {
	if r.Start != nil && r.End != nil && r.Start.After(*r.End) {
		return domain.ErrInvalidDateRange
	}
	return nil
}

// FinancialSummary aggregates transaction volumes.
type FinancialSummary struct {
	CompletedCount  int
	PendingCount    int
	FailedCount     int
	CompletedVolume decimal.Decimal
	TransferVolume  decimal.Decimal
	PaymentVolume   decimal.Decimal
	InboundVolume   decimal.Decimal
	GeneratedAt     time.Time
}

// ExternalRefEntry links a transaction to its external settlement reference.
type ExternalRefEntry struct {
	TransactionID string
	ExternalRef   string
	Amount        decimal.Decimal
	Status        domain.TransactionStatus
	CreatedAt     time.Time
}

// TransactionsInRange returns every transaction created within the range.
func (uc *ReportUseCase) TransactionsInRange(ctx context.Context, r DateRange) ([]*domain.Transaction, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}

	return uc.txRepo.Find(ctx, domain.TransactionFilter{StartDate: r.Start, EndDate: r.End})
}

// Summary computes counts and volumes by status and flow.
func (uc *ReportUseCase) Summary(ctx context.Context, r DateRange) (*FinancialSummary, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}

	if cached := uc.cachedSummary(ctx, r); cached != nil {
		return cached, nil
	}

	records, err := uc.TransactionsInRange(ctx, r)
	if err != nil {
		return nil, err
	}

	s := &FinancialSummary{
		CompletedVolume: decimal.Zero,
		TransferVolume:  decimal.Zero,
		PaymentVolume:   decimal.Zero,
		InboundVolume:   decimal.Zero,
		GeneratedAt:     time.Now().UTC(),
	}

	for _, t := range records {
		switch t.Status {
		case domain.TransactionStatusPending:
			s.PendingCount++
			continue
		case domain.TransactionStatusFailed:
			s.FailedCount++
			continue
		}

		s.CompletedCount++
		s.CompletedVolume = s.CompletedVolume.Add(t.Amount)

		switch {
		case t.SenderAccountID != nil && t.ReceiverAccountID != nil:
			s.TransferVolume = s.TransferVolume.Add(t.Amount)
		case t.SenderAccountID != nil:
			s.PaymentVolume = s.PaymentVolume.Add(t.Amount)
		case t.ReceiverAccountID != nil:
			s.InboundVolume = s.InboundVolume.Add(t.Amount)
		}
	}

	if uc.cache != nil {
		if data, err := json.Marshal(s); err == nil {
			_ = uc.cache.Set(ctx, r.cacheKey(), data, uc.cacheTTL)
		}
	}

	return s, nil
}

func (uc *ReportUseCase) cachedSummary(ctx context.Context, r DateRange) *FinancialSummary {
	if uc.cache == nil {
		return nil
	}

	data, err := uc.cache.Get(ctx, r.cacheKey())
	if err != nil || len(data) == 0 {
		return nil
	}

	var s FinancialSummary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	return &s
}

// ExternalRefs lists external references, newest first.
func (uc *ReportUseCase) ExternalRefs(ctx context.Context, r DateRange) ([]ExternalRefEntry, error) {
	records, err := uc.TransactionsInRange(ctx, r)
	if err != nil {
		return nil, err
	}

	entries := make([]ExternalRefEntry, 0, len(records))
	for _, t := range records {
		if t.ExternalRef == "" {
			continue
		}
		entries = append(entries, ExternalRefEntry{
			TransactionID: t.ID,
			ExternalRef:   t.ExternalRef,
			Amount:        t.Amount,
			Status:        t.Status,
			CreatedAt:     t.CreatedAt,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})

	return entries, nil
}
