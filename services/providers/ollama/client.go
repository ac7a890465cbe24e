package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/upb/agri-advisory-gateway/services/providers"
)

const (
	DefaultEndpoint = "http://localhost:11434"
	DefaultModel    = "llama3"
)

// Client talks to a locally hosted Ollama server
type Client struct {
	endpoint   string
	model      string
	httpClient *http.Client
}

// NewClient creates an Ollama client. config.BaseURL is the default endpoint,
// used when a call does not name its own.
func NewClient(config providers.ProviderConfig, model string) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultEndpoint
	}
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}
	if model == "" {
		model = DefaultModel
	}

	return &Client{
		endpoint: strings.TrimRight(config.BaseURL, "/"),
		model:    model,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Name returns the provider name
func (c *Client) Name() string {
	return "ollama"
}

// Endpoint returns the default endpoint
func (c *Client) Endpoint() string {
	return c.endpoint
}

// IsAvailable checks whether the default Ollama server answers its tag listing
func (c *Client) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/api/tags", nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// Generate sends a non-streaming generate call and returns the response text.
// An empty endpoint falls back to the client's default.
func (c *Client) Generate(ctx context.Context, endpoint, prompt string) (string, error) {
	endpoint = strings.TrimRight(endpoint, "/")
	if endpoint == "" {
		endpoint = c.endpoint
	}

	reqBody, err := json.Marshal(GenerateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", providers.NewProviderError(c.Name(), "MARSHAL_ERROR", "failed to marshal request", 0, false, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"/api/generate", bytes.NewReader(reqBody))
	if err != nil {
		return "", providers.NewProviderError(c.Name(), "REQUEST_ERROR", "failed to create request", 0, false, transportCause(err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", providers.NewProviderError(c.Name(), "HTTP_ERROR", "request to model server failed", 0, true, transportCause(err))
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", providers.NewProviderError(c.Name(), "READ_ERROR", "failed to read response", httpResp.StatusCode, false, err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return "", providers.StatusError(c.Name(), httpResp.StatusCode, string(respBody))
	}

	var genResp GenerateResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return "", providers.NewProviderError(c.Name(), "UNMARSHAL_ERROR", "failed to unmarshal response", httpResp.StatusCode, false, err)
	}

	return genResp.Response, nil
}

// transportCause strips the URL and addresses from a transport error.
// Endpoints are caller-supplied and must not reach logs.
func transportCause(err error) error {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return fmt.Errorf("lookup failed: %s", dnsErr.Err)
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Err
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}

// GenerateRequest is the /api/generate request body
type GenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// GenerateResponse is the non-streaming /api/generate response body
type GenerateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}
