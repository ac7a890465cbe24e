package models

import (
	"time"

	"github.com/google/uuid"
)

// ReportType names the kind of saved advisory
type ReportType string

const (
	ReportTypeDiagnosis ReportType = "diagnosis"
	ReportTypeAdvisory  ReportType = "advisory"
	ReportTypeSoil      ReportType = "soil"
	ReportTypeWeather   ReportType = "weather"
)

// Report is a saved advisory result belonging to a profile.
// Reports are append-only.
type Report struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	UserID      string     `json:"user_id" db:"user_id"`
	Timestamp   time.Time  `json:"timestamp" db:"timestamp"`
	Type        ReportType `json:"type" db:"type" validate:"required,max=50"`
	Title       string     `json:"title" db:"title" validate:"required,max=300"`
	Content     string     `json:"content" db:"content" validate:"required"`
	AudioBase64 string     `json:"audio_base64,omitempty" db:"audio_base64"`
	ImageURL    string     `json:"image_url,omitempty" db:"image_url" validate:"omitempty,max=2048"`
	Icon        string     `json:"icon,omitempty" db:"icon" validate:"omitempty,max=50"`
}

// TableName returns the table name for the Report model
func (Report) TableName() string {
	return "reports"
}

// NewReport creates a new Report instance
func NewReport(userID string, reportType ReportType, title, content string) *Report {
	return &Report{
		ID:        uuid.New(),
		UserID:    userID,
		Timestamp: time.Now().UTC(),
		Type:      reportType,
		Title:     title,
		Content:   content,
	}
}

// EnsureDefaults assigns an ID and timestamp when the caller did not
func (r *Report) EnsureDefaults(now time.Time) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = now.UTC()
	}
}
