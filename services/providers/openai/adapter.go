package openai

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	sdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/upb/agri-advisory-gateway/services/providers"
)

const (
	DefaultOpenAIBaseURL   = "https://api.openai.com/v1/"
	DefaultDeepSeekBaseURL = "https://api.deepseek.com/"
	DefaultGLMBaseURL      = "https://open.bigmodel.cn/api/paas/v4/"
)

// Endpoint describes one OpenAI-compatible vendor.
// Requests go to BaseURL + "chat/completions".
type Endpoint struct {
	Name    string
	BaseURL string
	Model   string
}

// OpenAIEndpoint returns the OpenAI vendor preset
func OpenAIEndpoint(baseURL string) Endpoint {
	return Endpoint{Name: "openai", BaseURL: orDefault(baseURL, DefaultOpenAIBaseURL), Model: "gpt-4o-mini"}
}

// DeepSeekEndpoint returns the DeepSeek vendor preset
func DeepSeekEndpoint(baseURL string) Endpoint {
	return Endpoint{Name: "deepseek", BaseURL: orDefault(baseURL, DefaultDeepSeekBaseURL), Model: "deepseek-chat"}
}

// GLMEndpoint returns the Zhipu GLM vendor preset
func GLMEndpoint(baseURL string) Endpoint {
	return Endpoint{Name: "glm", BaseURL: orDefault(baseURL, DefaultGLMBaseURL), Model: "glm-4"}
}

func orDefault(v, def string) string {
	if v == "" {
		v = def
	}
	if !strings.HasSuffix(v, "/") {
		v += "/"
	}
	return v
}

// Adapter implements providers.ChatProvider for one OpenAI-compatible vendor.
// The API key travels with each request; the adapter holds no credential.
type Adapter struct {
	endpoint   Endpoint
	httpClient *http.Client
	headers    map[string]string
}

// NewAdapter creates a new adapter for the given vendor endpoint
func NewAdapter(endpoint Endpoint, config providers.ProviderConfig) *Adapter {
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}
	endpoint.BaseURL = orDefault(endpoint.BaseURL, DefaultOpenAIBaseURL)

	return &Adapter{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		headers: config.Headers,
	}
}

// Name returns the provider name
func (a *Adapter) Name() string {
	return a.endpoint.Name
}

// Model returns the vendor's default model
func (a *Adapter) Model() string {
	return a.endpoint.Model
}

// IsAvailable reports whether the adapter has an endpoint to call.
// Keys are caller-supplied, so there is nothing else to check.
func (a *Adapter) IsAvailable(ctx context.Context) bool {
	return a.endpoint.BaseURL != ""
}

// ChatCompletion performs a chat completion request. No retries are made.
func (a *Adapter) ChatCompletion(ctx context.Context, req *providers.ChatRequest) (*providers.ChatResponse, error) {
	startTime := time.Now()

	if req.APIKey == "" {
		return nil, providers.NewProviderError(a.Name(), "MISSING_KEY", "API key required", 0, false, providers.ErrNotConfigured)
	}

	model := req.Model
	if model == "" {
		model = a.endpoint.Model
	}

	opts := []option.RequestOption{
		option.WithAPIKey(req.APIKey),
		option.WithBaseURL(a.endpoint.BaseURL),
		option.WithHTTPClient(a.httpClient),
		option.WithMaxRetries(0),
	}
	for k, v := range a.headers {
		opts = append(opts, option.WithHeader(k, v))
	}
	client := sdk.NewClient(opts...)

	params := sdk.ChatCompletionNewParams{
		Model:    sdk.ChatModel(model),
		Messages: buildMessages(req.Messages),
	}
	if req.Temperature > 0 {
		params.Temperature = sdk.Float(req.Temperature)
	}

	completion, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, a.handleError(ctx, err)
	}

	if len(completion.Choices) == 0 {
		return nil, providers.NewProviderError(a.Name(), "EMPTY_CHOICES", "response contained no choices", http.StatusOK, false, nil)
	}

	return a.convertToUnifiedResponse(completion, time.Since(startTime)), nil
}

// buildMessages converts unified messages to SDK message params
func buildMessages(messages []providers.Message) []sdk.ChatCompletionMessageParamUnion {
	out := make([]sdk.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case "system":
			out = append(out, sdk.SystemMessage(msg.Content))
		case "assistant":
			out = append(out, sdk.AssistantMessage(msg.Content))
		default:
			out = append(out, sdk.UserMessage(msg.Content))
		}
	}
	return out
}

// convertToUnifiedResponse converts the SDK response to the unified format
func (a *Adapter) convertToUnifiedResponse(completion *sdk.ChatCompletion, latency time.Duration) *providers.ChatResponse {
	resp := &providers.ChatResponse{
		ID:       completion.ID,
		Model:    completion.Model,
		Provider: a.Name(),
		Choices:  make([]providers.Choice, len(completion.Choices)),
		Usage: providers.Usage{
			PromptTokens:     int(completion.Usage.PromptTokens),
			CompletionTokens: int(completion.Usage.CompletionTokens),
			TotalTokens:      int(completion.Usage.TotalTokens),
		},
		Latency: latency,
		Created: time.Unix(completion.Created, 0),
	}

	for i, choice := range completion.Choices {
		resp.Choices[i] = providers.Choice{
			Index: int(choice.Index),
			Message: providers.Message{
				Role:    "assistant",
				Content: choice.Message.Content,
			},
			FinishReason: string(choice.FinishReason),
		}
	}

	return resp
}

// handleError maps SDK and transport errors to ProviderError
func (a *Adapter) handleError(ctx context.Context, err error) error {
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		perr := providers.StatusError(a.Name(), apiErr.StatusCode, "")
		perr.Message = "api error"
		perr.Cause = providers.RedactError(err)
		return perr
	}

	if ctx.Err() != nil {
		return providers.NewProviderError(a.Name(), "TIMEOUT", "request cancelled or timed out", 0, true, providers.RedactError(err))
	}

	return providers.NewProviderError(a.Name(), "HTTP_ERROR", "request failed", 0, true, providers.RedactError(err))
}
