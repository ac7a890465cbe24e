package models

import (
	"time"

	"github.com/google/uuid"
)

// AdvisoryEvent records which backend answered one advisory request.
// It never carries prompts, images or caller credentials.
type AdvisoryEvent struct {
	ID             uuid.UUID `json:"id" db:"id"`
	RequestID      uuid.UUID `json:"request_id" db:"request_id"`
	Operation      string    `json:"operation" db:"operation"` // advise, classify, crop_risk
	Provider       string    `json:"provider" db:"provider"`
	Backend        string    `json:"backend,omitempty" db:"backend"`
	Outcome        string    `json:"outcome" db:"outcome"`
	Source         string    `json:"source,omitempty" db:"source"`
	Language       string    `json:"language,omitempty" db:"language"`
	VisionFallback bool      `json:"vision_fallback" db:"vision_fallback"`
	HasImage       bool      `json:"has_image" db:"has_image"`
	LatencyMs      int64     `json:"latency_ms" db:"latency_ms"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the AdvisoryEvent model
func (AdvisoryEvent) TableName() string {
	return "advisory_events"
}

// NewAdvisoryEvent creates a new AdvisoryEvent instance
func NewAdvisoryEvent(requestID uuid.UUID, operation, provider, outcome string) *AdvisoryEvent {
	return &AdvisoryEvent{
		ID:        uuid.New(),
		RequestID: requestID,
		Operation: operation,
		Provider:  provider,
		Outcome:   outcome,
		CreatedAt: time.Now().UTC(),
	}
}

// WithBackend sets the backend and its source label
func (e *AdvisoryEvent) WithBackend(backend, source string) *AdvisoryEvent {
	e.Backend = backend
	e.Source = source
	return e
}

// WithLatency sets the request latency
func (e *AdvisoryEvent) WithLatency(d time.Duration) *AdvisoryEvent {
	e.LatencyMs = d.Milliseconds()
	return e
}
