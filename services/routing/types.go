package routing

import (
	"strings"

	"golang.org/x/text/language"
)

// Provider identifies the backend a caller asked for
type Provider string

const (
	ProviderOpenAI   Provider = "openai"
	ProviderDeepSeek Provider = "deepseek"
	ProviderGLM      Provider = "glm"
	ProviderOllama   Provider = "ollama"
	ProviderQwenHF   Provider = "qwen_hf"
	ProviderGemini   Provider = "gemini"
)

// ParseProvider normalizes a client-supplied provider name.
// Unknown names are kept; the router sends them to the grounded backend.
func ParseProvider(s string) Provider {
	return Provider(strings.ToLower(strings.TrimSpace(s)))
}

// chatModels are the vendor models used in labels when no chat backend is wired
var chatModels = map[Provider]string{
	ProviderOpenAI:   "gpt-4o-mini",
	ProviderDeepSeek: "deepseek-chat",
	ProviderGLM:      "glm-4",
}

// Strategy selects how image requests are routed
type Strategy string

const (
	// StrategyDefault tries the vision backend first for image requests
	StrategyDefault Strategy = "default"
	// StrategyStrategic skips the vision attempt and goes straight to dispatch
	StrategyStrategic Strategy = "strategic"
)

// Source labels attached to results
const (
	SourceVision         = "Qwen-VL 2.5 (HF Inference)"
	SourceQwenText       = "Qwen-7B (HuggingFace)"
	SourceOllama         = "Ollama (Local Host)"
	SourceOllamaError    = "Ollama (Error)"
	SourceGroundedImage  = "Google Gemini 3 Pro (Grounded)"
	SourceGroundedSearch = "Google Gemini 3 Flash"

	suffixCloud      = " (Cloud API)"
	suffixKeyMissing = " (Key Required)"
	suffixFailed     = " (Failed)"
)

// SystemInstruction is prepended to every chat and local-model prompt
const SystemInstruction = `Role: Senior Scientific Officer, Ministry of Agriculture, Bangladesh.
Standard: BARI/BRRI/BARC 2024-2025.
Output: Strictly Bangla (বাংলা).
Format: [শনাক্তকরণ], [প্রতিকার], [পরামর্শ].
NO GREETINGS.`

const chatTemperature = 0.2

// Request is one advisory question. Image is raw or data-URL base64.
type Request struct {
	Prompt   string
	Image    string
	Language language.Tag
	Provider Provider
	Strategy Strategy
	Crop     string
	// Hint is a symptom label from an earlier classifier pass
	Hint    string
	Weather map[string]interface{}
}

// HasImage reports whether the request carries an image
func (r Request) HasImage() bool {
	return strings.TrimSpace(r.Image) != ""
}

// Credentials are caller-supplied keys. Any of them may be empty.
type Credentials struct {
	OpenAI         string
	DeepSeek       string
	GLM            string
	OllamaEndpoint string
}

// Key returns the API key for a keyed provider
func (c Credentials) Key(p Provider) string {
	switch p {
	case ProviderOpenAI:
		return strings.TrimSpace(c.OpenAI)
	case ProviderDeepSeek:
		return strings.TrimSpace(c.DeepSeek)
	case ProviderGLM:
		return strings.TrimSpace(c.GLM)
	}
	return ""
}

// Result is what the caller sees
type Result struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

// Outcome classifies how a route ended
type Outcome string

const (
	OutcomeSuccess    Outcome = "success"
	OutcomeMissingKey Outcome = "missing_key"
	OutcomeFailed     Outcome = "failed"
	OutcomeEmpty      Outcome = "empty"
)

// Decision is a Result plus the bookkeeping the router used to reach it
type Decision struct {
	Result  Result
	Outcome Outcome
	// Backend is the backend that produced Result
	Backend string
	// VisionFallback is set when the vision backend ran and returned nothing usable
	VisionFallback bool
	// Err is the backend error, if any. It never reaches the caller's Result.
	Err error
}

// Backend names used in decisions, logs and metrics
const (
	BackendVision         = "huggingface_vision"
	BackendQwenText       = "huggingface_text"
	BackendOllama         = "ollama"
	BackendGroundedImage  = "gemini_audit"
	BackendGroundedSearch = "gemini_search"
)
