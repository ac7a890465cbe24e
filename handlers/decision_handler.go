package handlers

import (
	"context"
	"net/http"

	"github.com/upb/agri-advisory-gateway/models"
	"github.com/upb/agri-advisory-gateway/services"
	"github.com/upb/agri-advisory-gateway/utils"
	"go.uber.org/zap"
)

// DecisionLister reads back the routing decision trail
type DecisionLister interface {
	Recent(ctx context.Context, limit int) ([]*models.AdvisoryEvent, error)
}

// DecisionHandler serves the recent routing decisions
type DecisionHandler struct {
	decisions DecisionLister
	logger    *zap.Logger
}

// NewDecisionHandler creates a new DecisionHandler. decisions may be nil
// when persistence is disabled.
func NewDecisionHandler(decisions DecisionLister, logger *zap.Logger) *DecisionHandler {
	return &DecisionHandler{
		decisions: decisions,
		logger:    logger,
	}
}

// HandleListDecisions handles GET /api/v1/decisions?limit=
func (h *DecisionHandler) HandleListDecisions(w http.ResponseWriter, r *http.Request) {
	if h.decisions == nil {
		HandleServiceError(w, services.ErrPersistenceDisabled, h.logger)
		return
	}

	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}

	events, err := h.decisions.Recent(r.Context(), limit)
	if err != nil {
		HandleServiceError(w, services.WrapInternal("failed to list decisions", err), h.logger)
		return
	}

	_ = utils.WriteOK(w, map[string]interface{}{
		"decisions": events,
		"count":     len(events),
	})
}
