package advisory

import (
	"time"

	"github.com/google/uuid"
	"github.com/upb/agri-advisory-gateway/services/providers/gemini"
	"github.com/upb/agri-advisory-gateway/services/providers/huggingface"
)

// AdviceRequest represents an advisory question from a client
type AdviceRequest struct {
	Prompt   string `json:"prompt" validate:"max=8000"`
	Image    string `json:"image,omitempty"`
	Lang     string `json:"lang,omitempty" validate:"omitempty,max=16"`
	Provider string `json:"provider,omitempty" validate:"omitempty,max=32"`
	Strategy string `json:"strategy,omitempty" validate:"omitempty,max=32"`

	// Field context forwarded to the grounded image audit
	Crop    string                 `json:"crop,omitempty" validate:"omitempty,max=100"`
	Hint    string                 `json:"hint,omitempty" validate:"omitempty,max=200"`
	Weather map[string]interface{} `json:"weather,omitempty"`

	// Caller-supplied keys. Never logged or persisted.
	Credentials Credentials `json:"credentials"`
}

// Credentials carries the caller's own provider keys
type Credentials struct {
	OpenAI         string `json:"openai,omitempty"`
	DeepSeek       string `json:"deepseek,omitempty"`
	GLM            string `json:"glm,omitempty"`
	OllamaEndpoint string `json:"ollama_endpoint,omitempty" validate:"omitempty,url"`
}

// AdviceResult is the normalized answer returned to the client
type AdviceResult struct {
	RequestID      uuid.UUID `json:"request_id"`
	Text           string    `json:"text"`
	Source         string    `json:"source"`
	Provider       string    `json:"provider"`
	Outcome        string    `json:"outcome"`
	VisionFallback bool      `json:"vision_fallback"`
	LatencyMs      int       `json:"latency_ms"`
	CreatedAt      time.Time `json:"created_at"`
}

// ClassifyRequest asks for disease labels for one image
type ClassifyRequest struct {
	Image string `json:"image" validate:"required"`
}

// ClassifyResult holds the top classifier labels
type ClassifyResult struct {
	RequestID uuid.UUID                    `json:"request_id"`
	Labels    []huggingface.Classification `json:"labels"`
	LatencyMs int                          `json:"latency_ms"`
}

// CropRiskRequest carries the field weather for a surge-risk insight
type CropRiskRequest struct {
	Temp     float64 `json:"temp" validate:"gte=-50,lte=70"`
	Humidity float64 `json:"humidity" validate:"gte=0,lte=100"`
	Lang     string  `json:"lang,omitempty" validate:"omitempty,max=16"`
}

// CropRiskResult is the surge-risk insight text
type CropRiskResult struct {
	RequestID uuid.UUID `json:"request_id"`
	Text      string    `json:"text"`
	LatencyMs int       `json:"latency_ms"`
}

// ChatRequest is one message of a persona conversation
type ChatRequest struct {
	Message string                   `json:"message" validate:"max=8000"`
	History []ChatTurn               `json:"history,omitempty" validate:"max=50,dive"`
	Persona string                   `json:"persona,omitempty" validate:"omitempty,max=200"`
	Role    string                   `json:"role,omitempty" validate:"omitempty,max=64"`
	Weather map[string]interface{}   `json:"weather,omitempty"`
	Crops   []map[string]interface{} `json:"crops,omitempty" validate:"max=50"`
}

// ChatTurn is an earlier message; role "model" marks the assistant's turns
type ChatTurn struct {
	Role string `json:"role" validate:"omitempty,oneof=user model assistant"`
	Text string `json:"text" validate:"max=8000"`
}

// ExpertQueryRequest is a free-text question for pesticide or encyclopedia lookup
type ExpertQueryRequest struct {
	Query string `json:"query" validate:"max=2000"`
}

// SoilAuditRequest carries soil test parameters and the agro-ecological zone
type SoilAuditRequest struct {
	Inputs map[string]interface{} `json:"inputs"`
	AEZ    string                 `json:"aez,omitempty" validate:"omitempty,max=200"`
}

// GroundedResult is an expert answer with the web sources it cites
type GroundedResult struct {
	RequestID       uuid.UUID               `json:"request_id"`
	Text            string                  `json:"text"`
	GroundingChunks []gemini.GroundingChunk `json:"grounding_chunks"`
	LatencyMs       int                     `json:"latency_ms"`
}
