package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/custodyledger/internal/adapter/http/dto"
	"github.com/iho/custodyledger/internal/domain"
	"github.com/iho/custodyledger/internal/usecase"
)

// CreditService decides and services credits.
type CreditService interface {
	Decide(ctx context.Context, input usecase.DecideInput) (*domain.CreditDecision, error)
	GetCredit(ctx context.Context, id string) (*domain.Credit, error)
	ListCredits(ctx context.Context, userID string) ([]*domain.Credit, error)
	UpdateCredit(ctx context.Context, input usecase.UpdateCreditInput) (*domain.Credit, error)
}

// CreditHandler handles credit HTTP requests.
type CreditHandler struct {
	creditUC CreditService
}

// NewCreditHandler creates a new CreditHandler.
func NewCreditHandler(creditUC CreditService) *CreditHandler {
	return &CreditHandler{creditUC: creditUC}
}

// Decide runs the decision pipeline for the caller. A denial is a normal
// outcome and returns 200; an approval returns 201 with the issued credit.
func (h *CreditHandler) Decide(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req dto.DecideCreditRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	decision, err := h.creditUC.Decide(r.Context(), req.ToUseCaseInput(userID))
	if err != nil {
		writeDomainError(w, "credit decision failed", err)
		return
	}

	status := http.StatusOK
	if decision.Approved() {
		status = http.StatusCreated
	}
	writeJSON(w, status, dto.CreditDecisionFromDomain(decision))
}

// Get retrieves a credit by ID.
func (h *CreditHandler) Get(w http.ResponseWriter, r *http.Request) {
	credit, err := h.creditUC.GetCredit(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to get credit", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CreditFromDomain(credit))
}

// List returns the caller's credits.
func (h *CreditHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	credits, err := h.creditUC.ListCredits(r.Context(), userID)
	if err != nil {
		writeDomainError(w, "failed to list credits", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CreditsFromDomain(credits))
}

// Update applies servicing changes to a credit.
func (h *CreditHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateCreditRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	credit, err := h.creditUC.UpdateCredit(r.Context(), req.ToUseCaseInput(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, "failed to update credit", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CreditFromDomain(credit))
}
