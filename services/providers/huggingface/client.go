package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/upb/agri-advisory-gateway/services/imaging"
	"github.com/upb/agri-advisory-gateway/services/providers"
)

const (
	DefaultBaseURL = "https://api-inference.huggingface.co/models"

	VisionModel     = "Qwen/Qwen2.5-VL-7B-Instruct"
	ClassifierModel = "linkv/plant-disease-classification"
	InsightModel    = "mistralai/Mistral-7B-Instruct-v0.3"

	maxClassifications = 5
)

var specialTokens = regexp.MustCompile(`<\|.*?\|>`)

var errInvalidJSON = errors.New("response is not valid JSON")

// visionPromptTemplate grounds the vision model in the national crop-audit handbooks.
// Arguments: caller context, output language.
const visionPromptTemplate = `[Role: Senior Scientific Officer, Ministry of Agriculture, Bangladesh]
Task: Comprehensive Crop Audit (Pest, Disease, & Nutrient Deficiency Identification).
Source Material: BARI, BRRI, BARC, and DAE Official Handbooks 2024-2025.

Context: %s

Audit Requirements:
1. Identify specific Pests, Diseases, or Nutrient Deficiencies seen in the image.
2. Provide integrated management (IPM) advice.
3. Specify official chemical group and dosage per decimal/bigha if applicable.
4. Language: %s.
5. Formatting: NO GREETINGS. Use square brackets for headers like [শনাক্তকরণ], [প্রতিকার], [বৈজ্ঞানিক নোট].`

// Classification is one label from the plant-disease classifier
type Classification struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Weather is the field weather used for surge-risk insight
type Weather struct {
	Temp     float64 `json:"temp"`
	Humidity float64 `json:"humidity"`
}

// Client calls models on the Hugging Face inference API.
// Without a token every call returns providers.ErrNotConfigured and sends nothing.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Hugging Face inference client
func NewClient(config providers.ProviderConfig) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}

	return &Client{
		token:   config.APIKey,
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Name returns the provider name
func (c *Client) Name() string {
	return "huggingface"
}

// IsAvailable reports whether a token is configured
func (c *Client) IsAvailable(ctx context.Context) bool {
	return c.token != ""
}

// QueryVision asks the vision-language model for a crop audit.
// image may be empty (text-only) or raw/data-URL base64. lang "bn" selects Bangla output.
func (c *Client) QueryVision(ctx context.Context, prompt, image, lang string) (string, error) {
	grounded := fmt.Sprintf(visionPromptTemplate, prompt, languageLine(lang, "Bangla (বাংলা)"))

	var inputs interface{} = grounded
	if image != "" {
		inputs = visionInputs{Image: imaging.DataURL(image), Prompt: grounded}
	}

	body, err := json.Marshal(inferenceRequest{
		Inputs:     inputs,
		Parameters: &parameters{MaxNewTokens: 1024, Temperature: 0.1},
	})
	if err != nil {
		return "", providers.NewProviderError(c.Name(), "MARSHAL_ERROR", "failed to marshal request", 0, false, err)
	}

	respBody, err := c.post(ctx, VisionModel, "application/json", body, true)
	if err != nil {
		return "", err
	}

	text, err := parseGeneration(respBody)
	if err != nil {
		return "", providers.NewProviderError(c.Name(), "UNMARSHAL_ERROR", "failed to unmarshal response", http.StatusOK, false, err)
	}

	return strings.TrimSpace(specialTokens.ReplaceAllString(text, "")), nil
}

// ClassifyDisease sends raw image bytes to the plant-disease classifier and
// returns the top labels by descending score.
func (c *Client) ClassifyDisease(ctx context.Context, image []byte) ([]Classification, error) {
	if len(image) == 0 {
		return nil, providers.NewProviderError(c.Name(), "EMPTY_INPUT", "image is empty", 0, false, nil)
	}

	respBody, err := c.post(ctx, ClassifierModel, "application/octet-stream", image, true)
	if err != nil {
		return nil, err
	}

	var results []Classification
	if err := json.Unmarshal(respBody, &results); err != nil {
		return nil, providers.NewProviderError(c.Name(), "UNMARSHAL_ERROR", "classifier did not return a label list", http.StatusOK, false, err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > maxClassifications {
		results = results[:maxClassifications]
	}
	return results, nil
}

// CropRiskInsight predicts pest and disease surge risk from field weather
func (c *Client) CropRiskInsight(ctx context.Context, w Weather, lang string) (string, error) {
	prompt := fmt.Sprintf(
		"[INST] Agri-Analysis for Bangladesh. Weather: Temp %gC, Humidity %g%%. Predict pest/disease surge risk. Language: %s. [/INST]",
		w.Temp, w.Humidity, languageLine(lang, "Bangla"),
	)

	body, err := json.Marshal(inferenceRequest{Inputs: prompt})
	if err != nil {
		return "", providers.NewProviderError(c.Name(), "MARSHAL_ERROR", "failed to marshal request", 0, false, err)
	}

	respBody, err := c.post(ctx, InsightModel, "application/json", body, false)
	if err != nil {
		return "", err
	}

	text, err := parseGeneration(respBody)
	if err != nil {
		return "", providers.NewProviderError(c.Name(), "UNMARSHAL_ERROR", "failed to unmarshal response", http.StatusOK, false, err)
	}

	// Some deployments echo the prompt; keep what follows the instruction block
	if i := strings.LastIndex(text, "[/INST]"); i >= 0 {
		text = text[i+len("[/INST]"):]
	}
	return strings.TrimSpace(text), nil
}

// post sends one request to a model endpoint and returns the body of a 2xx response
func (c *Client) post(ctx context.Context, model, contentType string, body []byte, waitForModel bool) ([]byte, error) {
	if c.token == "" {
		return nil, providers.ErrNotConfigured
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+model, bytes.NewReader(body))
	if err != nil {
		return nil, providers.NewProviderError(c.Name(), "REQUEST_ERROR", "failed to create request", 0, false, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.token)
	httpReq.Header.Set("Content-Type", contentType)
	if waitForModel {
		httpReq.Header.Set("x-wait-for-model", "true")
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, providers.NewProviderError(c.Name(), "HTTP_ERROR", "request failed", 0, true, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, providers.NewProviderError(c.Name(), "READ_ERROR", "failed to read response", httpResp.StatusCode, false, err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, providers.StatusError(c.Name(), httpResp.StatusCode, errorMessage(respBody))
	}
	return respBody, nil
}

func languageLine(lang, bangla string) string {
	if lang == "" || lang == "bn" {
		return bangla
	}
	return "English"
}

// parseGeneration reads generated_text (or text) from an array or object response
func parseGeneration(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", errInvalidJSON
	}

	result := gjson.ParseBytes(body)
	if result.IsArray() {
		result = result.Get("0")
	}
	if text := result.Get("generated_text").String(); text != "" {
		return text, nil
	}
	return result.Get("text").String(), nil
}

// errorMessage pulls the inference API's {"error": "..."} text, or the raw body
func errorMessage(body []byte) string {
	if msg := gjson.GetBytes(body, "error").String(); msg != "" {
		return msg
	}
	return string(body)
}
