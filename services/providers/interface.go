package providers

import (
	"context"
	"errors"
	"time"
)

// ErrNotConfigured is returned by a backend whose credential or endpoint has not been configured.
// No request is sent in that case.
var ErrNotConfigured = errors.New("provider not configured")

// Backend is an inference backend the gateway can reach
type Backend interface {
	// Name returns the backend name (e.g., "openai", "huggingface", "gemini")
	Name() string

	// IsAvailable checks if the backend is currently usable
	IsAvailable(ctx context.Context) bool
}

// ChatProvider is a backend speaking the chat-completions protocol
type ChatProvider interface {
	Backend

	// ChatCompletion performs a chat completion request
	ChatCompletion(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
}

// ChatRequest represents a unified chat completion request
type ChatRequest struct {
	// Model identifier (e.g., "gpt-4o-mini", "deepseek-chat")
	Model string `json:"model"`

	// Messages in the conversation
	Messages []Message `json:"messages"`

	// Temperature controls randomness (0.0 to 2.0)
	Temperature float64 `json:"temperature,omitempty"`

	// APIKey is the caller-supplied credential for this single request
	APIKey string `json:"-"`
}

// Message represents a single message in a conversation
type Message struct {
	// Role can be "system", "user", or "assistant"
	Role string `json:"role"`

	// Content is the message text
	Content string `json:"content"`
}

// ChatResponse represents a unified chat completion response
type ChatResponse struct {
	ID       string        `json:"id"`
	Model    string        `json:"model"`
	Choices  []Choice      `json:"choices"`
	Usage    Usage         `json:"usage"`
	Provider string        `json:"provider"`
	Latency  time.Duration `json:"latency"`
	Created  time.Time     `json:"created"`
}

// Content returns the first choice's message content, or "" when there are no choices
func (r *ChatResponse) Content() string {
	if r == nil || len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}

// Choice represents a completion choice
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// Usage represents token usage statistics
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ProviderConfig holds common configuration for backends
type ProviderConfig struct {
	// APIKey for server-side authentication; empty means not configured
	APIKey string

	// BaseURL for the API
	BaseURL string

	// Timeout for requests
	Timeout time.Duration

	// Additional headers
	Headers map[string]string
}

// DefaultProviderConfig returns a sensible default configuration
func DefaultProviderConfig() ProviderConfig {
	return ProviderConfig{
		Timeout: 60 * time.Second,
		Headers: make(map[string]string),
	}
}

// ProviderError represents an error from a backend
type ProviderError struct {
	// Provider that generated the error
	Provider string

	// Code is the error code
	Code string

	// Message is the error message
	Message string

	// StatusCode is the HTTP status code (if applicable)
	StatusCode int

	// Retryable indicates if the request could succeed when repeated.
	// The gateway itself never retries.
	Retryable bool

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	msg := e.Provider + ": " + e.Message
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap implements error unwrapping
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// NewProviderError creates a new provider error
func NewProviderError(provider, code, message string, statusCode int, retryable bool, cause error) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Retryable:  retryable,
		Cause:      cause,
	}
}

// StatusError builds the ProviderError for a non-2xx HTTP response
func StatusError(provider string, statusCode int, body string) *ProviderError {
	code := "HTTP_ERROR"
	switch {
	case statusCode == 401 || statusCode == 403:
		code = "UNAUTHORIZED"
	case statusCode == 404:
		code = "NOT_FOUND"
	case statusCode == 429:
		code = "RATE_LIMITED"
	case statusCode >= 500:
		code = "SERVER_ERROR"
	}
	body = RedactSecrets(body)
	if len(body) > 256 {
		body = body[:256]
	}
	return NewProviderError(provider, code, "unexpected status: "+body, statusCode, statusCode == 429 || statusCode >= 500, nil)
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr.Retryable
	}
	return false
}
