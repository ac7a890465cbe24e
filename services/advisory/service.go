package advisory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/upb/agri-advisory-gateway/internal/observability"
	"github.com/upb/agri-advisory-gateway/models"
	"github.com/upb/agri-advisory-gateway/services"
	"github.com/upb/agri-advisory-gateway/services/imaging"
	"github.com/upb/agri-advisory-gateway/services/providers"
	"github.com/upb/agri-advisory-gateway/services/providers/huggingface"
	"github.com/upb/agri-advisory-gateway/services/routing"
	"go.uber.org/zap"
)

// Router decides which backend answers a request
type Router interface {
	Decide(ctx context.Context, req routing.Request, creds routing.Credentials) routing.Decision
}

// Classifier labels crop images
type Classifier interface {
	ClassifyDisease(ctx context.Context, image []byte) ([]huggingface.Classification, error)
}

// InsightBackend predicts surge risk from weather
type InsightBackend interface {
	CropRiskInsight(ctx context.Context, w huggingface.Weather, lang string) (string, error)
}

// Recorder keeps the decision trail
type Recorder interface {
	Record(event *models.AdvisoryEvent) error
}

// Service orchestrates advisory requests: validation, routing, metrics and logging
type Service struct {
	router     Router
	classifier Classifier
	insights   InsightBackend
	expert     Expert
	metrics    observability.Metrics
	logger     observability.Logger
	recorder   Recorder
}

// NewService creates a new advisory service
func NewService(
	router Router,
	classifier Classifier,
	insights InsightBackend,
	metrics observability.Metrics,
	logger observability.Logger,
) *Service {
	if metrics == nil {
		metrics = observability.NopMetrics{}
	}
	if logger == nil {
		logger = observability.NewLogger(nil)
	}
	return &Service{
		router:     router,
		classifier: classifier,
		insights:   insights,
		metrics:    metrics,
		logger:     logger,
	}
}

// WithRecorder attaches a decision trail. A nil recorder disables it.
func (s *Service) WithRecorder(r Recorder) *Service {
	s.recorder = r
	return s
}

// Advise routes one advisory question. Backend failures come back inside the
// result; only invalid input is an error.
func (s *Service) Advise(ctx context.Context, req *AdviceRequest) (*AdviceResult, error) {
	startTime := time.Now()
	requestID := uuid.New()

	prompt := strings.TrimSpace(req.Prompt)
	image := strings.TrimSpace(req.Image)
	if prompt == "" && image == "" {
		return nil, services.ErrEmptyPrompt
	}
	if image != "" {
		if _, err := imaging.Decode(image); err != nil {
			return nil, services.ErrInvalidImage.WithDetail("reason", err.Error())
		}
	}

	strategy := routing.StrategyDefault
	if strings.EqualFold(strings.TrimSpace(req.Strategy), string(routing.StrategyStrategic)) {
		strategy = routing.StrategyStrategic
	}

	routeReq := routing.Request{
		Prompt:   prompt,
		Image:    image,
		Language: routing.ParseLanguage(req.Lang),
		Provider: routing.ParseProvider(req.Provider),
		Strategy: strategy,
		Crop:     strings.TrimSpace(req.Crop),
		Hint:     strings.TrimSpace(req.Hint),
		Weather:  req.Weather,
	}

	s.logger.Debug(ctx, "routing advisory request",
		zap.String("advisory_id", requestID.String()),
		zap.String("provider", string(routeReq.Provider)),
		zap.String("strategy", string(strategy)),
		zap.Bool("has_image", image != ""))

	decision := s.router.Decide(ctx, routeReq, routing.Credentials{
		OpenAI:         req.Credentials.OpenAI,
		DeepSeek:       req.Credentials.DeepSeek,
		GLM:            req.Credentials.GLM,
		OllamaEndpoint: req.Credentials.OllamaEndpoint,
	})

	latency := time.Since(startTime)
	labels := observability.RequestLabels{
		Operation: "advise",
		Provider:  providerLabel(routeReq.Provider),
		Backend:   decision.Backend,
		Outcome:   string(decision.Outcome),
	}
	s.metrics.RecordRequest(ctx, labels)
	s.metrics.RecordLatency(ctx, latency.Seconds(), labels)
	if decision.VisionFallback {
		s.metrics.RecordVisionFallback(ctx, labels.Provider)
	}

	fields := []observability.Field{
		zap.String("advisory_id", requestID.String()),
		zap.String("backend", decision.Backend),
		zap.String("source", decision.Result.Source),
		zap.String("outcome", string(decision.Outcome)),
		zap.Bool("vision_fallback", decision.VisionFallback),
		zap.Duration("latency", latency),
	}
	event := models.NewAdvisoryEvent(requestID, labels.Operation, labels.Provider, labels.Outcome).
		WithBackend(decision.Backend, decision.Result.Source).
		WithLatency(latency)
	event.Language = routing.LanguageCode(routeReq.Language)
	event.VisionFallback = decision.VisionFallback
	event.HasImage = routeReq.HasImage()
	s.trail(ctx, event)

	switch decision.Outcome {
	case routing.OutcomeFailed:
		s.logger.Warn(ctx, "advisory backend failed", append(fields, zap.Error(decision.Err))...)
	case routing.OutcomeEmpty:
		s.logger.Warn(ctx, "advisory backend returned empty text", fields...)
	default:
		s.logger.Info(ctx, "advisory request completed", fields...)
	}

	return &AdviceResult{
		RequestID:      requestID,
		Text:           decision.Result.Text,
		Source:         decision.Result.Source,
		Provider:       providerLabel(routeReq.Provider),
		Outcome:        string(decision.Outcome),
		VisionFallback: decision.VisionFallback,
		LatencyMs:      int(latency.Milliseconds()),
		CreatedAt:      startTime.UTC(),
	}, nil
}

// Classify returns the top disease labels for an image
func (s *Service) Classify(ctx context.Context, req *ClassifyRequest) (*ClassifyResult, error) {
	startTime := time.Now()
	requestID := uuid.New()

	data, err := imaging.Decode(req.Image)
	if err != nil {
		return nil, services.ErrInvalidImage.WithDetail("reason", err.Error())
	}

	labels, err := s.classifier.ClassifyDisease(ctx, data)
	s.record(ctx, requestID, "classify", "huggingface", "huggingface_classifier", startTime, err)
	if err != nil {
		return nil, s.backendError(ctx, "disease classification failed", err)
	}

	return &ClassifyResult{
		RequestID: requestID,
		Labels:    labels,
		LatencyMs: int(time.Since(startTime).Milliseconds()),
	}, nil
}

// CropRisk predicts pest and disease surge risk from field weather
func (s *Service) CropRisk(ctx context.Context, req *CropRiskRequest) (*CropRiskResult, error) {
	startTime := time.Now()
	requestID := uuid.New()

	lang := routing.LanguageCode(routing.ParseLanguage(req.Lang))
	text, err := s.insights.CropRiskInsight(ctx, huggingface.Weather{Temp: req.Temp, Humidity: req.Humidity}, lang)
	s.record(ctx, requestID, "crop_risk", "huggingface", "huggingface_insight", startTime, err)
	if err != nil {
		return nil, s.backendError(ctx, "crop risk insight failed", err)
	}

	return &CropRiskResult{
		RequestID: requestID,
		Text:      text,
		LatencyMs: int(time.Since(startTime).Milliseconds()),
	}, nil
}

func (s *Service) record(ctx context.Context, requestID uuid.UUID, operation, provider, backend string, startTime time.Time, err error) {
	latency := time.Since(startTime)
	outcome := string(routing.OutcomeSuccess)
	if err != nil {
		outcome = string(routing.OutcomeFailed)
	}
	labels := observability.RequestLabels{Operation: operation, Provider: provider, Backend: backend, Outcome: outcome}
	s.metrics.RecordRequest(ctx, labels)
	s.metrics.RecordLatency(ctx, latency.Seconds(), labels)

	s.trail(ctx, models.NewAdvisoryEvent(requestID, operation, labels.Provider, outcome).
		WithBackend(backend, "").
		WithLatency(latency))
}

// trail hands the event to the recorder; a dropped event is only logged
func (s *Service) trail(ctx context.Context, event *models.AdvisoryEvent) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(event); err != nil {
		s.logger.Debug(ctx, "advisory event not recorded",
			zap.String("request_id", event.RequestID.String()),
			zap.Error(err))
	}
}

// backendError maps a backend failure onto the domain error taxonomy
func (s *Service) backendError(ctx context.Context, message string, err error) error {
	if errors.Is(err, providers.ErrNotConfigured) {
		return services.ErrProviderNotConfigured
	}
	s.logger.Error(ctx, message, zap.Error(err))
	return services.WrapExternal(message, err)
}

// providerLabel bounds metric cardinality: unknown names count as the default route
func providerLabel(p routing.Provider) string {
	switch p {
	case routing.ProviderOpenAI, routing.ProviderDeepSeek, routing.ProviderGLM,
		routing.ProviderOllama, routing.ProviderQwenHF, routing.ProviderGemini:
		return string(p)
	}
	return "default"
}
