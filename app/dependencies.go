package app

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/upb/agri-advisory-gateway/config"
	"github.com/upb/agri-advisory-gateway/internal/observability"
	"github.com/upb/agri-advisory-gateway/models"
	"github.com/upb/agri-advisory-gateway/repositories"
	"github.com/upb/agri-advisory-gateway/repositories/postgres"
	"github.com/upb/agri-advisory-gateway/services/advisory"
	"github.com/upb/agri-advisory-gateway/services/audit"
	"github.com/upb/agri-advisory-gateway/services/providers"
	"github.com/upb/agri-advisory-gateway/services/providers/gemini"
	"github.com/upb/agri-advisory-gateway/services/providers/huggingface"
	"github.com/upb/agri-advisory-gateway/services/providers/ollama"
	"github.com/upb/agri-advisory-gateway/services/providers/openai"
	"github.com/upb/agri-advisory-gateway/services/reports"
	"github.com/upb/agri-advisory-gateway/services/routing"
	"go.uber.org/zap"
)

// Version is stamped at build time with -ldflags "-X .../app.Version=..."
var Version = "dev"

// auditStopTimeout bounds how long Close waits for queued decision events
const auditStopTimeout = 5 * time.Second

// DatabaseHealth reports whether the database can serve queries
type DatabaseHealth interface {
	HealthCheck(ctx context.Context) error
}

// DecisionLog reads back recent routing decisions
type DecisionLog interface {
	Recent(ctx context.Context, limit int) ([]*models.AdvisoryEvent, error)
}

// AuditStats exposes decision-trail queue statistics
type AuditStats interface {
	GetStats() audit.Stats
}

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config  *config.Config
	DB      *postgres.DB
	Logger  *zap.Logger
	Version string

	// Repository Factory; nil when persistence is disabled
	RepoFactory *postgres.RepositoryFactory
	Repos       *repositories.Repositories
	TxManager   repositories.TransactionManager

	// Backends
	Backends *providers.Registry
	Router   *routing.Router
	Metrics  observability.Metrics

	// Services
	Audit    *audit.AuditService
	Advisory *advisory.Service
	Reports  *reports.Service

	vision   *huggingface.Client
	grounded *gemini.Client
}

// Options tune NewDependencies. The zero value uses the process-wide Prometheus registry.
type Options struct {
	Registerer prometheus.Registerer
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	return NewDependenciesWithOptions(ctx, cfg, logger, Options{})
}

// NewDependenciesWithOptions is NewDependencies with explicit options
func NewDependenciesWithOptions(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts Options) (*Dependencies, error) {
	deps := &Dependencies{
		Config:  cfg,
		Logger:  logger,
		Version: Version,
	}

	// Initialize PostgreSQL
	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize backend registry and router
	if err := deps.initBackends(cfg); err != nil {
		deps.closeDatabase()
		return nil, fmt.Errorf("failed to initialize backends: %w", err)
	}

	if err := deps.initMetrics(cfg, opts.Registerer); err != nil {
		deps.closeDatabase()
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	if err := deps.initServices(); err != nil {
		deps.closeDatabase()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	logger.Info("all dependencies initialized successfully",
		zap.Bool("persistence", deps.RepoFactory != nil),
		zap.Strings("backends", deps.Backends.List()))
	return deps, nil
}

// initDatabase opens the hosted Postgres when one is configured
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	if !cfg.Database.Enabled() {
		d.Logger.Warn("database not configured, profile and report storage disabled")
		return nil
	}

	factory, err := postgres.NewRepositoryFactory(cfg, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to create repository factory: %w", err)
	}

	if cfg.Database.InitSchema {
		if err := factory.InitSchema(ctx); err != nil {
			_ = factory.Close()
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}

	d.RepoFactory = factory
	d.DB = factory.GetDB()
	d.Repos = factory.NewRepositories()
	d.TxManager = factory.GetTransactionManager()

	d.Logger.Info("repositories initialized")
	return nil
}

// initBackends builds one client per inference backend. Clients without
// server-side keys are still registered; they report themselves unavailable.
func (d *Dependencies) initBackends(cfg *config.Config) error {
	pc := cfg.Providers
	registry := providers.NewRegistry()

	chatConfig := providers.ProviderConfig{Timeout: pc.RequestTimeout}
	openAI := openai.NewAdapter(openai.OpenAIEndpoint(pc.OpenAIBaseURL), chatConfig)
	deepSeek := openai.NewAdapter(openai.DeepSeekEndpoint(pc.DeepSeekBaseURL), chatConfig)
	glm := openai.NewAdapter(openai.GLMEndpoint(pc.GLMBaseURL), chatConfig)

	local := ollama.NewClient(providers.ProviderConfig{
		BaseURL: pc.OllamaEndpoint,
		Timeout: pc.RequestTimeout,
	}, pc.OllamaModel)

	hf := huggingface.NewClient(providers.ProviderConfig{
		APIKey:  pc.HFToken,
		BaseURL: pc.HFBaseURL,
		Timeout: pc.RequestTimeout,
	})

	grounded := gemini.NewClient(providers.ProviderConfig{
		APIKey:  pc.GeminiAPIKey,
		BaseURL: pc.GeminiBaseURL,
		Timeout: pc.RequestTimeout,
	}, pc.GeminiModel)

	for _, b := range []providers.Backend{openAI, deepSeek, glm, local, hf, grounded} {
		if err := registry.Register(b); err != nil {
			return err
		}
	}

	if pc.HFToken == "" {
		d.Logger.Warn("HF_TOKEN not set, vision and disease classification disabled")
	}
	if pc.GeminiAPIKey == "" {
		d.Logger.Warn("GEMINI_API_KEY not set, default route will answer with an error message and expert endpoints return 503")
	}

	d.Backends = registry
	d.Router = routing.NewRouter(routing.Backends{
		Vision: hf,
		Chat: map[routing.Provider]routing.ChatBackend{
			routing.ProviderOpenAI:   openAI,
			routing.ProviderDeepSeek: deepSeek,
			routing.ProviderGLM:      glm,
		},
		Local:    local,
		Grounded: grounded,
	}, d.Logger)

	d.vision = hf
	d.grounded = grounded
	return nil
}

func (d *Dependencies) initMetrics(cfg *config.Config, reg prometheus.Registerer) error {
	if !cfg.Observability.MetricsEnabled {
		d.Metrics = observability.NopMetrics{}
		return nil
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	collector := observability.NewCollector()
	if err := collector.Register(reg); err != nil {
		return err
	}
	d.Metrics = collector
	return nil
}

func (d *Dependencies) initServices() error {
	d.Advisory = advisory.NewService(
		d.Router,
		d.vision,
		d.vision,
		d.Metrics,
		observability.NewLogger(d.Logger),
	).WithExpert(d.grounded)

	d.Reports = reports.NewService(d.Repos, d.TxManager, d.Logger)

	if d.Repos == nil {
		return nil
	}

	d.Audit = audit.NewAuditService(d.Repos.Events, d.Logger, audit.DefaultConfig())
	if err := d.Audit.Start(); err != nil {
		return err
	}
	d.Advisory.WithRecorder(d.Audit)
	return nil
}

// HealthChecker returns the database health check, or nil without persistence
func (d *Dependencies) HealthChecker() DatabaseHealth {
	if d.DB == nil {
		return nil
	}
	return d.DB
}

// AuditStats returns the decision-trail statistics, or nil without persistence
func (d *Dependencies) AuditStats() AuditStats {
	if d.Audit == nil {
		return nil
	}
	return d.Audit
}

// Decisions returns the decision-trail reader, or nil without persistence
func (d *Dependencies) Decisions() DecisionLog {
	if d.Audit == nil {
		return nil
	}
	return d.Audit
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	// Drain the decision trail before the pool goes away
	if d.Audit != nil {
		timeout := auditStopTimeout
		if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
			timeout = time.Until(deadline)
		}
		if err := d.Audit.Stop(timeout); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop audit service: %w", err))
		}
		d.Audit = nil
	}

	if err := d.closeDatabase(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close database: %w", err))
	}

	// Sync logger
	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}

func (d *Dependencies) closeDatabase() error {
	if d.RepoFactory == nil {
		return nil
	}
	err := d.RepoFactory.Close()
	if err == nil {
		d.Logger.Info("database connection closed")
	}
	d.RepoFactory = nil
	d.DB = nil
	return err
}
