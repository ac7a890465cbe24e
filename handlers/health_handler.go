package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/upb/agri-advisory-gateway/services/audit"
	"github.com/upb/agri-advisory-gateway/utils"
	"go.uber.org/zap"
)

// DatabaseChecker reports whether the database can serve queries
type DatabaseChecker interface {
	HealthCheck(ctx context.Context) error
}

// BackendLister exposes the registered inference backends
type BackendLister interface {
	List() []string
	Availability(ctx context.Context) map[string]bool
}

// AuditStats exposes decision-trail queue statistics
type AuditStats interface {
	GetStats() audit.Stats
}

// HealthResponse represents the readiness check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// StatusResponse describes the running gateway
type StatusResponse struct {
	Version     string          `json:"version"`
	Environment string          `json:"environment"`
	Backends    map[string]bool `json:"backends"`
	Persistence bool            `json:"persistence"`
	Audit       *audit.Stats    `json:"audit,omitempty"`
}

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	db          DatabaseChecker
	backends    BackendLister
	audit       AuditStats
	version     string
	environment string
	logger      *zap.Logger
}

// NewHealthHandler creates a new HealthHandler. db and audit may be nil when
// persistence is not configured.
func NewHealthHandler(db DatabaseChecker, backends BackendLister, audit AuditStats, version, environment string, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:          db,
		backends:    backends,
		audit:       audit,
		version:     version,
		environment: environment,
		logger:      logger,
	}
}

// HandleHealth handles GET /healthz.
// Liveness only: returns 200 while the process is serving.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleReadiness handles GET /readyz
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	ready := true

	if h.db == nil {
		checks["database"] = "disabled"
	} else if err := h.db.HealthCheck(ctx); err != nil {
		h.logger.Warn("database health check failed", zap.Error(err))
		checks["database"] = "unhealthy"
		ready = false
	} else {
		checks["database"] = "healthy"
	}

	// Backends are reached per request with caller keys, so they never fail readiness
	if h.backends == nil || len(h.backends.List()) == 0 {
		checks["backends"] = "none_configured"
	} else {
		checks["backends"] = "configured"
	}

	status := "ready"
	httpStatus := http.StatusOK
	if !ready {
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}

	if err := utils.WriteJSON(w, httpStatus, utils.SuccessResponse{Data: response}); err != nil {
		h.logger.Error("failed to write readiness response", zap.Error(err))
	}
}

// HandleStatus handles GET /api/v1/status
func (h *HealthHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	response := StatusResponse{
		Version:     h.version,
		Environment: h.environment,
		Backends:    map[string]bool{},
		Persistence: h.db != nil,
	}
	if h.backends != nil {
		response.Backends = h.backends.Availability(ctx)
	}
	if h.audit != nil {
		stats := h.audit.GetStats()
		response.Audit = &stats
	}

	_ = utils.WriteOK(w, response)
}
