package advisory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/upb/agri-advisory-gateway/services"
	"github.com/upb/agri-advisory-gateway/services/providers/gemini"
	"go.uber.org/zap"
)

const (
	// DefaultPersona answers chat messages when the client names none
	DefaultPersona = "Krishi AI, agricultural extension officer"
	DefaultRole    = "farmer"

	expertProvider = "gemini"
)

// Expert answers chat and expert-advice questions with the grounded model
type Expert interface {
	SendChatMessage(ctx context.Context, message string, opts gemini.ChatOptions) (*gemini.SearchResult, error)
	PesticideExpertAdvice(ctx context.Context, query string) (*gemini.SearchResult, error)
	SoilHealthAudit(ctx context.Context, inputs map[string]interface{}, aez string) (string, error)
	SearchEncyclopedia(ctx context.Context, query string) (*gemini.SearchResult, error)
}

// WithExpert attaches the chat and expert-advice backend
func (s *Service) WithExpert(e Expert) *Service {
	s.expert = e
	return s
}

// Chat answers one message of a persona conversation
func (s *Service) Chat(ctx context.Context, req *ChatRequest) (*GroundedResult, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, services.ErrEmptyPrompt
	}

	history := make([]gemini.ChatTurn, 0, len(req.History))
	for _, turn := range req.History {
		history = append(history, gemini.ChatTurn{Role: turn.Role, Text: turn.Text})
	}
	opts := gemini.ChatOptions{
		History: history,
		Persona: orDefault(req.Persona, DefaultPersona),
		Role:    orDefault(req.Role, DefaultRole),
	}
	if req.Weather != nil {
		opts.Weather = req.Weather
	}
	if req.Crops != nil {
		opts.Crops = req.Crops
	}

	return s.grounded(ctx, "chat", func(e Expert) (*gemini.SearchResult, error) {
		return e.SendChatMessage(ctx, message, opts)
	})
}

// PesticideAdvice returns official dosage and safety guidance for a product or pest
func (s *Service) PesticideAdvice(ctx context.Context, req *ExpertQueryRequest) (*GroundedResult, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, services.ErrEmptyPrompt
	}
	return s.grounded(ctx, "pesticide_advice", func(e Expert) (*gemini.SearchResult, error) {
		return e.PesticideExpertAdvice(ctx, query)
	})
}

// Encyclopedia defines an agricultural term
func (s *Service) Encyclopedia(ctx context.Context, req *ExpertQueryRequest) (*GroundedResult, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, services.ErrEmptyPrompt
	}
	return s.grounded(ctx, "encyclopedia", func(e Expert) (*gemini.SearchResult, error) {
		return e.SearchEncyclopedia(ctx, query)
	})
}

// SoilAudit interprets soil test inputs for an agro-ecological zone
func (s *Service) SoilAudit(ctx context.Context, req *SoilAuditRequest) (*GroundedResult, error) {
	if len(req.Inputs) == 0 {
		return nil, services.ErrInvalidInput.WithDetail("inputs", "at least one soil parameter is required")
	}
	aez := strings.TrimSpace(req.AEZ)
	return s.grounded(ctx, "soil_audit", func(e Expert) (*gemini.SearchResult, error) {
		text, err := e.SoilHealthAudit(ctx, req.Inputs, aez)
		if err != nil {
			return nil, err
		}
		return &gemini.SearchResult{Text: text, GroundingChunks: []gemini.GroundingChunk{}}, nil
	})
}

// grounded runs one expert call with the same metrics and trail as the other operations
func (s *Service) grounded(ctx context.Context, operation string, call func(Expert) (*gemini.SearchResult, error)) (*GroundedResult, error) {
	startTime := time.Now()
	requestID := uuid.New()

	if s.expert == nil {
		return nil, services.ErrProviderNotConfigured
	}

	res, err := call(s.expert)
	s.record(ctx, requestID, operation, expertProvider, expertProvider, startTime, err)
	if err != nil {
		return nil, s.backendError(ctx, operation+" failed", err)
	}

	chunks := res.GroundingChunks
	if chunks == nil {
		chunks = []gemini.GroundingChunk{}
	}
	s.logger.Info(ctx, "expert request completed",
		zap.String("request_id", requestID.String()),
		zap.String("operation", operation),
		zap.Int("citations", len(chunks)))

	return &GroundedResult{
		RequestID:       requestID,
		Text:            res.Text,
		GroundingChunks: chunks,
		LatencyMs:       int(time.Since(startTime).Milliseconds()),
	}, nil
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

var _ Expert = (*gemini.Client)(nil)
