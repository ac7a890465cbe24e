package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Profile tests
func TestNewProfile(t *testing.T) {
	p := NewProfile("  uid-123 ", "রহিম মিয়া")

	assert.Equal(t, "uid-123", p.ID)
	assert.Equal(t, "রহিম মিয়া", p.DisplayName)
	assert.False(t, p.UpdatedAt.IsZero())
}

func TestProfile_TableName(t *testing.T) {
	assert.Equal(t, "profiles", Profile{}.TableName())
}

func TestProfile_Touch(t *testing.T) {
	p := &Profile{}
	p.Touch()
	assert.False(t, p.UpdatedAt.IsZero())
	assert.Equal(t, time.UTC, p.UpdatedAt.Location())
}

func TestProfile_JSONMarshaling(t *testing.T) {
	p := Profile{
		ID:                  "uid-1",
		DisplayName:         "Karim",
		FarmLocation:        json.RawMessage(`{"district":"Bogura","lat":24.85}`),
		PreferredCategories: []string{"rice", "jute"},
	}

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "Bogura", decoded["farm_location"].(map[string]interface{})["district"])
	_, hasProgress := decoded["progress"]
	assert.False(t, hasProgress)
	_, hasMobile := decoded["mobile"]
	assert.False(t, hasMobile)
}

func TestJSONOrNull(t *testing.T) {
	assert.Nil(t, JSONOrNull(nil))
	assert.Nil(t, JSONOrNull(json.RawMessage("null")))
	assert.Equal(t, []byte(`{"a":1}`), JSONOrNull(json.RawMessage(`{"a":1}`)))
}

// Report tests
func TestNewReport(t *testing.T) {
	r := NewReport("uid-1", ReportTypeDiagnosis, "ধানের ব্লাস্ট", "[শনাক্তকরণ]: ব্লাস্ট")

	assert.NotEqual(t, uuid.Nil, r.ID)
	assert.Equal(t, "uid-1", r.UserID)
	assert.Equal(t, ReportTypeDiagnosis, r.Type)
	assert.False(t, r.Timestamp.IsZero())
}

func TestReport_TableName(t *testing.T) {
	assert.Equal(t, "reports", Report{}.TableName())
}

func TestReport_EnsureDefaults(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.FixedZone("BDT", 6*3600))

	t.Run("fills missing fields", func(t *testing.T) {
		r := &Report{}
		r.EnsureDefaults(now)
		assert.NotEqual(t, uuid.Nil, r.ID)
		assert.True(t, r.Timestamp.Equal(now))
		assert.Equal(t, time.UTC, r.Timestamp.Location())
	})

	t.Run("keeps caller values", func(t *testing.T) {
		id := uuid.New()
		ts := now.Add(-time.Hour)
		r := &Report{ID: id, Timestamp: ts}
		r.EnsureDefaults(now)
		assert.Equal(t, id, r.ID)
		assert.Equal(t, ts, r.Timestamp)
	})
}

func TestReport_JSONMarshaling(t *testing.T) {
	r := Report{ID: uuid.New(), UserID: "u", Type: ReportTypeAdvisory, Title: "t", Content: "c"}

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, r.ID, decoded.ID)

	assert.NotContains(t, string(data), "audio_base64")
}
