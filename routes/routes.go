package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/upb/agri-advisory-gateway/app"
	"github.com/upb/agri-advisory-gateway/handlers"
	"github.com/upb/agri-advisory-gateway/middleware"
	"github.com/upb/agri-advisory-gateway/utils"
)

// RequestTimeout bounds a whole request, including the slowest backend call
const RequestTimeout = 120 * time.Second

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(RequestTimeout))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Language", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Language", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(middleware.Language)

	health := handlers.NewHealthHandler(deps.HealthChecker(), deps.Backends, deps.AuditStats(),
		deps.Version, deps.Config.Environment, deps.Logger)
	advisory := handlers.NewAdvisoryHandler(deps.Advisory, deps.Logger)
	expert := handlers.NewExpertHandler(deps.Advisory, deps.Logger)
	profiles := handlers.NewProfileHandler(deps.Reports, deps.Logger)
	decisions := handlers.NewDecisionHandler(deps.Decisions(), deps.Logger)

	// Health check endpoints
	r.Get("/healthz", health.HandleHealth)
	r.Get("/readyz", health.HandleReadiness)

	if deps.Config.Observability.MetricsEnabled {
		r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", health.HandleStatus)
		r.Get("/decisions", decisions.HandleListDecisions)

		r.Post("/advisory", advisory.HandleAdvise)
		r.Post("/diagnosis/classify", advisory.HandleClassify)
		r.Post("/insights/crop-risk", advisory.HandleCropRisk)

		r.Post("/chat", expert.HandleChat)
		r.Post("/advice/pesticide", expert.HandlePesticideAdvice)
		r.Post("/advice/soil", expert.HandleSoilAudit)
		r.Post("/encyclopedia/search", expert.HandleEncyclopedia)

		r.Route("/profiles/{id}", func(r chi.Router) {
			r.Put("/", profiles.HandleUpsertProfile)
			r.Get("/", profiles.HandleGetProfile)
			r.Post("/reports", profiles.HandleSaveReport)
			r.Get("/reports", profiles.HandleListReports)
		})
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, "endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
	})

	return r
}
