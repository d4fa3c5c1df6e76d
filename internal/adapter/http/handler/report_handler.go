package handler

import (
	"context"
	"net/http"

	"github.com/iho/custodyledger/internal/adapter/http/dto"
	"github.com/iho/custodyledger/internal/domain"
	"github.com/iho/custodyledger/internal/usecase"
)

// ReportService builds read-only reports over the transaction log.
type ReportService interface {
	TransactionsInRange(ctx context.Context, r usecase.DateRange) ([]*domain.Transaction, error)
	Summary(ctx context.Context, r usecase.DateRange) (*usecase.FinancialSummary, error)
	ExternalRefs(ctx context.Context, r usecase.DateRange) ([]usecase.ExternalRefEntry, error)
}

// ReconciliationService checks every account against the log.
type ReconciliationService interface {
	GenerateReconciliationReport(ctx context.Context) (*usecase.ReconciliationReport, error)
}

// ReportHandler handles report HTTP requests.
type ReportHandler struct {
	reportUC    ReportService
	reconcileUC ReconciliationService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportUC ReportService, reconcileUC ReconciliationService) *ReportHandler {
	return &ReportHandler{reportUC: reportUC, reconcileUC: reconcileUC}
}

func dateRange(w http.ResponseWriter, r *http.Request) (usecase.DateRange, bool) {
	q := r.URL.Query()
	dr, err := dto.ParseDateRange(q.Get("start"), q.Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date range", err.Error())
		return dr, false
	}
	return dr, true
}

// Transactions lists transactions created within ?start= and ?end=.
func (h *ReportHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	dr, ok := dateRange(w, r)
	if !ok {
		return
	}

	txs, err := h.reportUC.TransactionsInRange(r.Context(), dr)
	if err != nil {
		writeDomainError(w, "failed to build report", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(txs))
}

// Summary returns aggregated volumes.
func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	dr, ok := dateRange(w, r)
	if !ok {
		return
	}

	summary, err := h.reportUC.Summary(r.Context(), dr)
	if err != nil {
		writeDomainError(w, "failed to build summary", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SummaryFromUseCase(summary))
}

// ExternalRefs lists external references, newest first.
func (h *ReportHandler) ExternalRefs(w http.ResponseWriter, r *http.Request) {
	dr, ok := dateRange(w, r)
	if !ok {
		return
	}

	entries, err := h.reportUC.ExternalRefs(r.Context(), dr)
	if err != nil {
		writeDomainError(w, "failed to build report", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ExternalRefsFromUseCase(entries))
}

// Reconciliation lists accounts whose stored balance disagrees with the log.
func (h *ReportHandler) Reconciliation(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconcileUC.GenerateReconciliationReport(r.Context())
	if err != nil {
		writeDomainError(w, "reconciliation failed", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationReportFromUseCase(report))
}
