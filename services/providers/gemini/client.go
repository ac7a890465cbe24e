package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/upb/agri-advisory-gateway/services/imaging"
	"github.com/upb/agri-advisory-gateway/services/providers"
	"google.golang.org/genai"
)

const (
	DefaultModel = "gemini-3-flash-preview"

	// OfficialSource attributes image audits produced by this backend
	OfficialSource = "BARI/BRRI/DAE Grounded (Fallback Engine)"

	defaultDiagnosis  = "সায়েন্টিফিক অডিট সম্পন্ন"
	defaultCategory   = "Other"
	defaultConfidence = 98
)

// GroundingInstruction is sent as the system instruction for audits and expert advice
const GroundingInstruction = `Role: Senior Scientific Officer, Ministry of Agriculture, Bangladesh.
Instructions: Reference official BARI/BRRI/BARC/DAE 2024-2025 standards.
Task: Audit for Pests, Diseases, and Nutrient Deficiencies.
Language: Strictly Bangla (বাংলা).
Format: NO GREETINGS. Use square brackets for sections: [শনাক্তকরণ], [প্রতিকার], [পরামর্শ].
Always provide integrated pest management (IPM) and chemical rotation guidelines.`

var diagnosisPattern = regexp.MustCompile(`(?i)\[শনাক্তকরণ.*?\]:\s*(.*)`)

// AuditOptions describes the field context of an image audit
type AuditOptions struct {
	Crop    string
	Query   string
	Lang    string
	HFHint  string
	Weather interface{}
}

// Analysis is the result of a grounded image audit
type Analysis struct {
	Diagnosis       string           `json:"diagnosis"`
	Category        string           `json:"category"`
	Confidence      int              `json:"confidence"`
	Advisory        string           `json:"advisory"`
	FullText        string           `json:"full_text"`
	OfficialSource  string           `json:"official_source"`
	GroundingChunks []GroundingChunk `json:"grounding_chunks"`
}

// SearchResult is a grounded answer with the citations behind it
type SearchResult struct {
	Text            string           `json:"text"`
	GroundingChunks []GroundingChunk `json:"grounding_chunks"`
}

// GroundingChunk is one search citation attached to a grounded answer
type GroundingChunk struct {
	Web *WebSource `json:"web,omitempty"`
}

// WebSource is the web page behind a grounding chunk
type WebSource struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// Client calls Gemini generateContent with Google Search grounding
type Client struct {
	apiKey  string
	model   string
	sdk     *genai.Client
	initErr error
}

// NewClient creates a Gemini client. Without an API key no SDK client is
// built and every call fails with providers.ErrNotConfigured.
func NewClient(config providers.ProviderConfig, model string) *Client {
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}
	if model == "" {
		model = DefaultModel
	}

	c := &Client{
		apiKey: strings.TrimSpace(config.APIKey),
		model:  model,
	}
	if c.apiKey == "" {
		return c
	}

	c.sdk, c.initErr = genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:     c.apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: config.Timeout},
		HTTPOptions: genai.HTTPOptions{
			BaseURL: strings.TrimRight(config.BaseURL, "/"),
		},
	})
	return c
}

// Name returns the provider name
func (c *Client) Name() string {
	return "gemini"
}

// IsAvailable reports whether an API key is configured
func (c *Client) IsAvailable(ctx context.Context) bool {
	return c.apiKey != ""
}

// AnalyzeCropImage audits a crop image against the national advisory standards
func (c *Client) AnalyzeCropImage(ctx context.Context, image, mimeType string, opts AuditOptions) (*Analysis, error) {
	weather, err := json.Marshal(opts.Weather)
	if err != nil {
		return nil, providers.NewProviderError(c.Name(), "MARSHAL_ERROR", "failed to marshal weather context", 0, false, err)
	}
	data, err := imaging.Decode(image)
	if err != nil {
		return nil, providers.NewProviderError(c.Name(), "INVALID_IMAGE", "failed to decode image", 0, false, err)
	}
	if mimeType == "" {
		mimeType = imaging.DefaultMIME
	}

	contents := []*genai.Content{genai.NewContentFromParts([]*genai.Part{
		genai.NewPartFromBytes(data, mimeType),
		genai.NewPartFromText(fmt.Sprintf(
			"Scientific Audit Request: Crop %s. Symptoms identified by pixel scan: %s. User Query: %s. Environmental Context: %s",
			opts.Crop, opts.HFHint, opts.Query, weather,
		)),
	}, genai.RoleUser)}

	resp, err := c.generate(ctx, contents, groundedConfig(GroundingInstruction))
	if err != nil {
		return nil, err
	}

	return &Analysis{
		Diagnosis:       extractDiagnosis(resp.Text),
		Category:        defaultCategory,
		Confidence:      defaultConfidence,
		Advisory:        resp.Text,
		FullText:        resp.Text,
		OfficialSource:  OfficialSource,
		GroundingChunks: resp.GroundingChunks,
	}, nil
}

// SearchAgriculturalInfo answers a free-text question with search grounding
func (c *Client) SearchAgriculturalInfo(ctx context.Context, query string) (*SearchResult, error) {
	return c.generate(ctx, userText(query+". Language: Bangla."), groundedConfig(""))
}

func (c *Client) generate(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*SearchResult, error) {
	if c.apiKey == "" {
		return nil, providers.ErrNotConfigured
	}
	if c.initErr != nil {
		return nil, providers.NewProviderError(c.Name(), "CLIENT_ERROR", "failed to create client", 0, false, redact(c.initErr, c.apiKey))
	}

	resp, err := c.sdk.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return nil, c.apiError(err)
	}
	if len(resp.Candidates) == 0 {
		return nil, providers.NewProviderError(c.Name(), "EMPTY_CANDIDATES", "no candidates returned", http.StatusOK, false, nil)
	}

	return &SearchResult{Text: resp.Text(), GroundingChunks: groundingChunks(resp.Candidates[0])}, nil
}

// apiError maps SDK failures onto ProviderError. Status errors keep the API message.
func (c *Client) apiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return providers.StatusError(c.Name(), apiErr.Code, apiErr.Message)
	}
	return providers.NewProviderError(c.Name(), "HTTP_ERROR", "request failed", 0, true, redact(err, c.apiKey))
}

func groundingChunks(candidate *genai.Candidate) []GroundingChunk {
	chunks := []GroundingChunk{}
	if candidate == nil || candidate.GroundingMetadata == nil {
		return chunks
	}
	for _, gc := range candidate.GroundingMetadata.GroundingChunks {
		var chunk GroundingChunk
		if gc != nil && gc.Web != nil {
			chunk.Web = &WebSource{URI: gc.Web.URI, Title: gc.Web.Title}
		}
		chunks = append(chunks, chunk)
	}
	return chunks
}

// groundedConfig enables Google Search; an empty instruction sends none
func groundedConfig(instruction string) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	}
	if instruction != "" {
		config.SystemInstruction = genai.NewContentFromText(instruction, genai.RoleUser)
	}
	return config
}

func userText(text string) []*genai.Content {
	return []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}
}

func extractDiagnosis(text string) string {
	m := diagnosisPattern.FindStringSubmatch(text)
	if len(m) < 2 {
		return defaultDiagnosis
	}
	if line := strings.TrimSpace(strings.SplitN(m[1], "\n", 2)[0]); line != "" {
		return line
	}
	return defaultDiagnosis
}

func redact(err error, secret string) error {
	if secret == "" || !strings.Contains(err.Error(), secret) {
		return providers.RedactError(err)
	}
	return fmt.Errorf("%s", providers.RedactSecrets(strings.ReplaceAll(err.Error(), secret, "REDACTED")))
}
