package routing

import (
	"context"
	"fmt"
	"strings"

	"github.com/upb/agri-advisory-gateway/services/imaging"
	"github.com/upb/agri-advisory-gateway/services/providers"
	"github.com/upb/agri-advisory-gateway/services/providers/gemini"
	"go.uber.org/zap"
)

// VisionBackend answers prompts with an optional image
type VisionBackend interface {
	QueryVision(ctx context.Context, prompt, image, lang string) (string, error)
}

// ChatBackend is an OpenAI-compatible chat completion endpoint
type ChatBackend interface {
	Model() string
	ChatCompletion(ctx context.Context, req *providers.ChatRequest) (*providers.ChatResponse, error)
}

// LocalBackend is a locally hosted model server
type LocalBackend interface {
	Generate(ctx context.Context, endpoint, prompt string) (string, error)
}

// GroundedBackend answers with search grounding
type GroundedBackend interface {
	AnalyzeCropImage(ctx context.Context, image, mimeType string, opts gemini.AuditOptions) (*gemini.Analysis, error)
	SearchAgriculturalInfo(ctx context.Context, query string) (*gemini.SearchResult, error)
}

// Backends groups the collaborators a Router dispatches to.
// A nil backend behaves as one that always fails.
type Backends struct {
	Vision   VisionBackend
	Chat     map[Provider]ChatBackend
	Local    LocalBackend
	Grounded GroundedBackend
}

// Router picks a backend for each request and shapes every outcome into a Result.
// It holds no per-request state and is safe for concurrent use.
type Router struct {
	backends Backends
	logger   *zap.Logger
}

// NewRouter creates a new router
func NewRouter(backends Backends, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	if backends.Chat == nil {
		backends.Chat = map[Provider]ChatBackend{}
	}
	return &Router{backends: backends, logger: logger}
}

// Route answers a request. It never fails: backend errors come back as a
// localized message with a failure-marked source.
func (r *Router) Route(ctx context.Context, req Request, creds Credentials) Result {
	return r.Decide(ctx, req, creds).Result
}

// Decide is Route with the routing bookkeeping attached
func (r *Router) Decide(ctx context.Context, req Request, creds Credentials) Decision {
	r.logger.Debug("routing request",
		zap.String("provider", string(req.Provider)),
		zap.String("strategy", string(req.Strategy)),
		zap.Bool("has_image", req.HasImage()),
		zap.String("lang", LanguageCode(req.Language)))

	visionTried := false
	if req.HasImage() && req.Strategy != StrategyStrategic && r.backends.Vision != nil {
		if d, ok := r.tryVision(ctx, req); ok {
			return d
		}
		visionTried = true
	}

	d := r.dispatch(ctx, req, creds)
	d.VisionFallback = visionTried
	return d
}

// tryVision tries the vision backend first. An empty or failed answer is not
// surfaced; the request falls through to provider dispatch.
func (r *Router) tryVision(ctx context.Context, req Request) (Decision, bool) {
	text, err := r.backends.Vision.QueryVision(ctx, req.Prompt, req.Image, LanguageCode(req.Language))
	if err != nil {
		r.logger.Warn("vision backend failed, falling through", zap.Error(err))
		return Decision{}, false
	}
	if strings.TrimSpace(text) == "" {
		r.logger.Debug("vision backend returned nothing, falling through")
		return Decision{}, false
	}

	return Decision{
		Result:  Result{Text: text, Source: SourceVision},
		Outcome: OutcomeSuccess,
		Backend: BackendVision,
	}, true
}

func (r *Router) dispatch(ctx context.Context, req Request, creds Credentials) Decision {
	switch req.Provider {
	case ProviderOpenAI, ProviderDeepSeek, ProviderGLM:
		return r.routeChat(ctx, req, creds.Key(req.Provider))
	case ProviderOllama:
		return r.routeLocal(ctx, req, strings.TrimSpace(creds.OllamaEndpoint))
	case ProviderQwenHF:
		return r.routeQwenText(ctx, req)
	default:
		return r.routeGrounded(ctx, req)
	}
}

// routeChat labels results by model, not vendor: "gpt-4o-mini (Key Required)",
// "GPT-4O-MINI (Cloud API)".
func (r *Router) routeChat(ctx context.Context, req Request, key string) Decision {
	backend := r.backends.Chat[req.Provider]
	model := chatModels[req.Provider]
	if backend != nil && backend.Model() != "" {
		model = backend.Model()
	}
	d := Decision{Backend: string(req.Provider)}

	if key == "" {
		d.Result = Result{
			Text:   localize(req.Language, msgKeyRequired, strings.ToUpper(model)),
			Source: model + suffixKeyMissing,
		}
		d.Outcome = OutcomeMissingKey
		return d
	}

	if backend == nil {
		return r.chatFailed(d, req, model, fmt.Errorf("%s: %w", d.Backend, providers.ErrProviderNotFound))
	}

	resp, err := backend.ChatCompletion(ctx, &providers.ChatRequest{
		Model: model,
		Messages: []providers.Message{
			{Role: "system", Content: SystemInstruction},
			{Role: "user", Content: req.Prompt},
		},
		Temperature: chatTemperature,
		APIKey:      key,
	})
	if err != nil {
		return r.chatFailed(d, req, model, err)
	}

	d.Result = Result{Text: resp.Content(), Source: strings.ToUpper(model) + suffixCloud}
	d.Outcome = outcomeOf(d.Result.Text)
	return d
}

func (r *Router) chatFailed(d Decision, req Request, model string, err error) Decision {
	r.logger.Warn("chat provider failed",
		zap.String("provider", d.Backend),
		zap.String("model", model),
		zap.Error(err))
	d.Result = Result{
		Text:   localize(req.Language, msgCloudFailed),
		Source: model + suffixFailed,
	}
	d.Outcome = OutcomeFailed
	d.Err = err
	return d
}

func (r *Router) routeLocal(ctx context.Context, req Request, endpoint string) Decision {
	d := Decision{Backend: BackendOllama}

	var (
		text string
		err  error
	)
	if r.backends.Local == nil {
		err = fmt.Errorf("%s: %w", BackendOllama, providers.ErrProviderNotFound)
	} else {
		text, err = r.backends.Local.Generate(ctx, endpoint, SystemInstruction+"\n\nUser: "+req.Prompt)
	}
	if err != nil {
		r.logger.Warn("local model server failed", zap.Bool("caller_endpoint", endpoint != ""), zap.Error(err))
		d.Result = Result{Text: localize(req.Language, msgOllamaFailed), Source: SourceOllamaError}
		d.Outcome = OutcomeFailed
		d.Err = err
		return d
	}

	d.Result = Result{Text: text, Source: SourceOllama}
	d.Outcome = outcomeOf(text)
	return d
}

func (r *Router) routeQwenText(ctx context.Context, req Request) Decision {
	d := Decision{Backend: BackendQwenText, Outcome: OutcomeSuccess}

	var text string
	if r.backends.Vision == nil {
		d.Err = fmt.Errorf("%s: %w", BackendQwenText, providers.ErrProviderNotFound)
	} else {
		text, d.Err = r.backends.Vision.QueryVision(ctx, req.Prompt, "", LanguageCode(req.Language))
	}

	if d.Err != nil {
		r.logger.Warn("text model failed", zap.Error(d.Err))
		d.Outcome = OutcomeFailed
		text = ""
	}
	if strings.TrimSpace(text) == "" {
		text = localize(req.Language, msgNoAnswer)
		if d.Outcome == OutcomeSuccess {
			d.Outcome = OutcomeEmpty
		}
	}

	d.Result = Result{Text: text, Source: SourceQwenText}
	return d
}

func (r *Router) routeGrounded(ctx context.Context, req Request) Decision {
	if req.HasImage() {
		return r.routeAudit(ctx, req)
	}

	d := Decision{Backend: BackendGroundedSearch}
	if r.backends.Grounded == nil {
		return r.groundedFailed(d, req, SourceGroundedSearch, fmt.Errorf("%s: %w", d.Backend, providers.ErrProviderNotFound))
	}

	res, err := r.backends.Grounded.SearchAgriculturalInfo(ctx, req.Prompt)
	if err != nil {
		return r.groundedFailed(d, req, SourceGroundedSearch, err)
	}

	d.Result = Result{Text: res.Text, Source: SourceGroundedSearch}
	d.Outcome = outcomeOf(res.Text)
	return d
}

func (r *Router) routeAudit(ctx context.Context, req Request) Decision {
	d := Decision{Backend: BackendGroundedImage}
	if r.backends.Grounded == nil {
		return r.groundedFailed(d, req, SourceGroundedImage, fmt.Errorf("%s: %w", d.Backend, providers.ErrProviderNotFound))
	}

	analysis, err := r.backends.Grounded.AnalyzeCropImage(ctx, req.Image, imaging.DetectMIME(req.Image), gemini.AuditOptions{
		Crop:    req.Crop,
		Query:   req.Prompt,
		Lang:    LanguageCode(req.Language),
		HFHint:  req.Hint,
		Weather: req.Weather,
	})
	if err != nil {
		return r.groundedFailed(d, req, SourceGroundedImage, err)
	}

	d.Result = Result{Text: analysis.FullText, Source: SourceGroundedImage}
	d.Outcome = outcomeOf(analysis.FullText)
	return d
}

func (r *Router) groundedFailed(d Decision, req Request, source string, err error) Decision {
	r.logger.Warn("grounded backend failed", zap.String("backend", d.Backend), zap.Error(err))
	d.Result = Result{Text: localize(req.Language, msgGroundedFailed), Source: source + suffixFailed}
	d.Outcome = OutcomeFailed
	d.Err = err
	return d
}

func outcomeOf(text string) Outcome {
	if strings.TrimSpace(text) == "" {
		return OutcomeEmpty
	}
	return OutcomeSuccess
}
