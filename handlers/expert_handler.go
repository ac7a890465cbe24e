package handlers

import (
	"context"
	"net/http"

	"github.com/upb/agri-advisory-gateway/services/advisory"
	"github.com/upb/agri-advisory-gateway/utils"
	"go.uber.org/zap"
)

// ExpertService defines the chat and expert-advice operations
type ExpertService interface {
	Chat(ctx context.Context, req *advisory.ChatRequest) (*advisory.GroundedResult, error)
	PesticideAdvice(ctx context.Context, req *advisory.ExpertQueryRequest) (*advisory.GroundedResult, error)
	SoilAudit(ctx context.Context, req *advisory.SoilAuditRequest) (*advisory.GroundedResult, error)
	Encyclopedia(ctx context.Context, req *advisory.ExpertQueryRequest) (*advisory.GroundedResult, error)
}

// ExpertHandler serves chat, pesticide, soil and encyclopedia requests
type ExpertHandler struct {
	service ExpertService
	logger  *zap.Logger
}

// NewExpertHandler creates a new ExpertHandler
func NewExpertHandler(service ExpertService, logger *zap.Logger) *ExpertHandler {
	return &ExpertHandler{
		service: service,
		logger:  logger,
	}
}

// HandleChat handles POST /api/v1/chat
func (h *ExpertHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req advisory.ChatRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	result, err := h.service.Chat(r.Context(), &req)
	h.write(w, result, err)
}

// HandlePesticideAdvice handles POST /api/v1/advice/pesticide
func (h *ExpertHandler) HandlePesticideAdvice(w http.ResponseWriter, r *http.Request) {
	var req advisory.ExpertQueryRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	result, err := h.service.PesticideAdvice(r.Context(), &req)
	h.write(w, result, err)
}

// HandleSoilAudit handles POST /api/v1/advice/soil
func (h *ExpertHandler) HandleSoilAudit(w http.ResponseWriter, r *http.Request) {
	var req advisory.SoilAuditRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	result, err := h.service.SoilAudit(r.Context(), &req)
	h.write(w, result, err)
}

// HandleEncyclopedia handles POST /api/v1/encyclopedia/search
func (h *ExpertHandler) HandleEncyclopedia(w http.ResponseWriter, r *http.Request) {
	var req advisory.ExpertQueryRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	result, err := h.service.Encyclopedia(r.Context(), &req)
	h.write(w, result, err)
}

func (h *ExpertHandler) write(w http.ResponseWriter, result *advisory.GroundedResult, err error) {
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, result)
}
