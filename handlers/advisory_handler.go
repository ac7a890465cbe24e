package handlers

import (
	"context"
	"net/http"

	"github.com/upb/agri-advisory-gateway/middleware"
	"github.com/upb/agri-advisory-gateway/services/advisory"
	"github.com/upb/agri-advisory-gateway/utils"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// AdvisoryService defines the advisory operations the HTTP layer needs
type AdvisoryService interface {
	Advise(ctx context.Context, req *advisory.AdviceRequest) (*advisory.AdviceResult, error)
	Classify(ctx context.Context, req *advisory.ClassifyRequest) (*advisory.ClassifyResult, error)
	CropRisk(ctx context.Context, req *advisory.CropRiskRequest) (*advisory.CropRiskResult, error)
}

// AdvisoryHandler handles advisory, diagnosis and insight requests
type AdvisoryHandler struct {
	service AdvisoryService
	logger  *zap.Logger
}

// NewAdvisoryHandler creates a new AdvisoryHandler
func NewAdvisoryHandler(service AdvisoryService, logger *zap.Logger) *AdvisoryHandler {
	return &AdvisoryHandler{
		service: service,
		logger:  logger,
	}
}

// HandleAdvise handles POST /api/v1/advisory.
// Backend failures are answered with 200 and a failure-marked source.
func (h *AdvisoryHandler) HandleAdvise(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	var req advisory.AdviceRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Lang == "" {
		req.Lang = negotiatedLanguage(ctx)
	}

	result, err := h.service.Advise(ctx, &req)
	if err != nil {
		h.logger.Warn("advisory request rejected",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, result)
}

// HandleClassify handles POST /api/v1/diagnosis/classify
func (h *AdvisoryHandler) HandleClassify(w http.ResponseWriter, r *http.Request) {
	var req advisory.ClassifyRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.service.Classify(r.Context(), &req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, result)
}

// HandleCropRisk handles POST /api/v1/insights/crop-risk
func (h *AdvisoryHandler) HandleCropRisk(w http.ResponseWriter, r *http.Request) {
	var req advisory.CropRiskRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Lang == "" {
		req.Lang = negotiatedLanguage(r.Context())
	}

	result, err := h.service.CropRisk(r.Context(), &req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, result)
}

func (h *AdvisoryHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	return decodeBody(w, r, dst, h.logger)
}

// decodeBody parses and validates a request body, writing the error response itself
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}, logger *zap.Logger) bool {
	requestID := middleware.GetRequestIDFromContext(r.Context())

	if err := utils.DecodeJSON(w, r, dst); err != nil {
		logger.Warn("failed to parse request body",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleValidationError(w, err, logger)
		return false
	}

	if err := utils.ValidateStruct(dst); err != nil {
		logger.Warn("request validation failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleValidationError(w, err, logger)
		return false
	}
	return true
}

// negotiatedLanguage returns the Accept-Language choice, or "" to leave the default
func negotiatedLanguage(ctx context.Context) string {
	tag := middleware.GetLanguageFromContext(ctx)
	if tag == language.Und {
		return ""
	}
	return tag.String()
}
