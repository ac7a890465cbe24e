package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/upb/agri-advisory-gateway/middleware"
	"github.com/upb/agri-advisory-gateway/models"
	"github.com/upb/agri-advisory-gateway/utils"
	"go.uber.org/zap"
)

// ReportService defines the profile and report operations the HTTP layer needs
type ReportService interface {
	SyncProfile(ctx context.Context, profile *models.Profile) error
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	SaveReport(ctx context.Context, userID string, report *models.Report, profile *models.Profile) (*models.Report, error)
	ListReports(ctx context.Context, userID string, limit, offset int) ([]*models.Report, error)
}

// SaveReportRequest is the body of POST /api/v1/profiles/{id}/reports
type SaveReportRequest struct {
	Report  models.Report   `json:"report"`
	Profile *models.Profile `json:"profile,omitempty" validate:"omitempty"`
}

// ProfileHandler handles farmer profile and saved report requests
type ProfileHandler struct {
	service ReportService
	logger  *zap.Logger
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(service ReportService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		service: service,
		logger:  logger,
	}
}

// HandleUpsertProfile handles PUT /api/v1/profiles/{id}
func (h *ProfileHandler) HandleUpsertProfile(w http.ResponseWriter, r *http.Request) {
	var profile models.Profile
	if !h.decode(w, r, &profile) {
		return
	}
	profile.ID = chi.URLParam(r, "id")

	if err := h.service.SyncProfile(r.Context(), &profile); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, &profile)
}

// HandleGetProfile handles GET /api/v1/profiles/{id}
func (h *ProfileHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.GetProfile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, profile)
}

// HandleSaveReport handles POST /api/v1/profiles/{id}/reports
func (h *ProfileHandler) HandleSaveReport(w http.ResponseWriter, r *http.Request) {
	var req SaveReportRequest
	if !h.decode(w, r, &req) {
		return
	}

	saved, err := h.service.SaveReport(r.Context(), chi.URLParam(r, "id"), &req.Report, req.Profile)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteCreated(w, saved)
}

// HandleListReports handles GET /api/v1/profiles/{id}/reports?limit=&offset=
func (h *ProfileHandler) HandleListReports(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}
	offset, ok := queryInt(w, r, "offset")
	if !ok {
		return
	}

	reports, err := h.service.ListReports(r.Context(), chi.URLParam(r, "id"), limit, offset)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, map[string]interface{}{
		"reports": reports,
		"limit":   limit,
		"offset":  offset,
	})
}

func (h *ProfileHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := utils.DecodeJSON(w, r, dst); err != nil {
		h.logger.Warn("failed to parse request body",
			zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
			zap.Error(err))
		HandleValidationError(w, err, h.logger)
		return false
	}
	if err := utils.ValidateStruct(dst); err != nil {
		HandleValidationError(w, err, h.logger)
		return false
	}
	return true
}

// queryInt reads an optional non-negative integer query parameter
func queryInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		_ = utils.WriteBadRequest(w, "Invalid query parameter", map[string]interface{}{
			name: "must be a non-negative integer",
		})
		return 0, false
	}
	return v, true
}
