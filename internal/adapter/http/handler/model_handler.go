package handler

import (
	"context"
	"net/http"

	"github.com/iho/custodyledger/internal/adapter/http/dto"
	"github.com/iho/custodyledger/internal/domain"
)

// ModelService exposes the scoring model lifecycle.
type ModelService interface {
	Status() domain.ModelStatus
	Train(ctx context.Context) error
}

// ModelHandler handles scoring model HTTP requests.
type ModelHandler struct {
	model ModelService
}

// NewModelHandler creates a new ModelHandler.
func NewModelHandler(model ModelService) *ModelHandler {
	return &ModelHandler{model: model}
}

// Status reports the model state.
func (h *ModelHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.ModelStatusFromDomain(h.model.Status()))
}

// Train refits the model on the current account labels.
func (h *ModelHandler) Train(w http.ResponseWriter, r *http.Request) {
	if err := h.model.Train(r.Context()); err != nil {
		writeDomainError(w, "training failed", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ModelStatusFromDomain(h.model.Status()))
}
