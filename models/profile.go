package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Profile is a farmer's profile, keyed by the identity provider's uid
type Profile struct {
	ID                  string          `json:"id" db:"id"`
	DisplayName         string          `json:"display_name" db:"display_name" validate:"omitempty,max=200"`
	Mobile              string          `json:"mobile,omitempty" db:"mobile" validate:"omitempty,max=20"`
	Role                string          `json:"role,omitempty" db:"role" validate:"omitempty,max=50"`
	FarmLocation        json.RawMessage `json:"farm_location,omitempty" db:"farm_location"` // JSONB
	Progress            json.RawMessage `json:"progress,omitempty" db:"progress"`           // JSONB
	PreferredCategories []string        `json:"preferred_categories,omitempty" db:"preferred_categories" validate:"omitempty,max=50,dive,max=100"`
	UpdatedAt           time.Time       `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Profile model
func (Profile) TableName() string {
	return "profiles"
}

// NewProfile creates a new Profile instance
func NewProfile(id, displayName string) *Profile {
	return &Profile{
		ID:          strings.TrimSpace(id),
		DisplayName: displayName,
		UpdatedAt:   time.Now(),
	}
}

// Touch stamps the profile as updated now
func (p *Profile) Touch() {
	p.UpdatedAt = time.Now().UTC()
}

// JSONOrNull returns raw as a driver value, with empty input stored as SQL NULL
func JSONOrNull(raw json.RawMessage) interface{} {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return []byte(raw)
}
