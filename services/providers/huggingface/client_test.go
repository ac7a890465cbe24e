package huggingface

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/agri-advisory-gateway/services/providers"
)

func newTestClient(url string) *Client {
	return NewClient(providers.ProviderConfig{APIKey: "hf_test", BaseURL: url})
}

func TestClient_QueryVision(t *testing.T) {
	t.Run("image request body and headers", func(t *testing.T) {
		var body map[string]interface{}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/"+VisionModel, r.URL.Path)
			assert.Equal(t, "Bearer hf_test", r.Header.Get("Authorization"))
			assert.Equal(t, "true", r.Header.Get("x-wait-for-model"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			_, _ = w.Write([]byte(`[{"generated_text":"<|im_start|>[শনাক্তকরণ]: ব্লাস্ট<|im_end|>  "}]`))
		}))
		defer server.Close()

		text, err := newTestClient(server.URL).QueryVision(context.Background(), "ধানের পাতায় দাগ", "aGVsbG8=", "bn")
		require.NoError(t, err)
		assert.Equal(t, "[শনাক্তকরণ]: ব্লাস্ট", text)

		inputs, ok := body["inputs"].(map[string]interface{})
		require.True(t, ok, "image requests send an inputs object")
		assert.Equal(t, "data:image/jpeg;base64,aGVsbG8=", inputs["image"])
		assert.Contains(t, inputs["prompt"], "Context: ধানের পাতায় দাগ")
		assert.Contains(t, inputs["prompt"], "Language: Bangla (বাংলা).")

		params := body["parameters"].(map[string]interface{})
		assert.Equal(t, float64(1024), params["max_new_tokens"])
		assert.Equal(t, 0.1, params["temperature"])
	})

	t.Run("text only sends prompt string in english", func(t *testing.T) {
		var body map[string]interface{}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			_, _ = w.Write([]byte(`{"text":"answer"}`))
		}))
		defer server.Close()

		text, err := newTestClient(server.URL).QueryVision(context.Background(), "rice blast control", "", "en")
		require.NoError(t, err)
		assert.Equal(t, "answer", text)

		prompt, ok := body["inputs"].(string)
		require.True(t, ok)
		assert.Contains(t, prompt, "Language: English.")
	})

	t.Run("non-2xx is a provider error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":"Model is currently loading"}`))
		}))
		defer server.Close()

		text, err := newTestClient(server.URL).QueryVision(context.Background(), "q", "", "bn")
		assert.Empty(t, text)

		var perr *providers.ProviderError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, "SERVER_ERROR", perr.Code)
		assert.Equal(t, "unexpected status: Model is currently loading", perr.Message)
	})

	t.Run("empty array", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[]`))
		}))
		defer server.Close()

		text, err := newTestClient(server.URL).QueryVision(context.Background(), "q", "", "bn")
		require.NoError(t, err)
		assert.Empty(t, text)
	})

	t.Run("no token sends nothing", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
		}))
		defer server.Close()

		client := NewClient(providers.ProviderConfig{BaseURL: server.URL})
		assert.False(t, client.IsAvailable(context.Background()))

		_, err := client.QueryVision(context.Background(), "q", "aGVsbG8=", "bn")
		assert.ErrorIs(t, err, providers.ErrNotConfigured)
		assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
	})
}

func TestClient_ClassifyDisease(t *testing.T) {
	t.Run("sorted top five", func(t *testing.T) {
		var received []byte
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/"+ClassifierModel, r.URL.Path)
			assert.Equal(t, "application/octet-stream", r.Header.Get("Content-Type"))
			received, _ = io.ReadAll(r.Body)
			_, _ = w.Write([]byte(`[
				{"label":"a","score":0.01},
				{"label":"b","score":0.50},
				{"label":"c","score":0.10},
				{"label":"d","score":0.30},
				{"label":"e","score":0.05},
				{"label":"f","score":0.04}
			]`))
		}))
		defer server.Close()

		results, err := newTestClient(server.URL).ClassifyDisease(context.Background(), []byte{0xff, 0xd8, 0xff})
		require.NoError(t, err)

		assert.Equal(t, []byte{0xff, 0xd8, 0xff}, received)
		require.Len(t, results, 5)
		labels := make([]string, 0, len(results))
		for _, r := range results {
			labels = append(labels, r.Label)
		}
		assert.Equal(t, []string{"b", "d", "c", "e", "f"}, labels)
	})

	t.Run("error object", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"error":"loading"}`))
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).ClassifyDisease(context.Background(), []byte{1})
		var perr *providers.ProviderError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, "UNMARSHAL_ERROR", perr.Code)
	})

	t.Run("empty image", func(t *testing.T) {
		_, err := newTestClient("http://unused").ClassifyDisease(context.Background(), nil)
		assert.Error(t, err)
	})
}

func TestClient_CropRiskInsight(t *testing.T) {
	var body map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/"+InsightModel, r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`[{"generated_text":"[INST] echo [/INST]  High risk of brown planthopper. "}]`))
	}))
	defer server.Close()

	text, err := newTestClient(server.URL).CropRiskInsight(context.Background(), Weather{Temp: 32, Humidity: 85.5}, "en")
	require.NoError(t, err)

	assert.Equal(t, "High risk of brown planthopper.", text)
	assert.Equal(t,
		"[INST] Agri-Analysis for Bangladesh. Weather: Temp 32C, Humidity 85.5%. Predict pest/disease surge risk. Language: English. [/INST]",
		body["inputs"])
	_, hasParams := body["parameters"]
	assert.False(t, hasParams)
}

func TestParseGeneration(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{"array generated_text", `[{"generated_text":"a"}]`, "a", false},
		{"array text", `[{"text":"b"}]`, "b", false},
		{"object generated_text", `{"generated_text":"c"}`, "c", false},
		{"object neither", `{"foo":"d"}`, "", false},
		{"empty array", `[]`, "", false},
		{"generated_text wins", `[{"generated_text":"e","text":"f"}]`, "e", false},
		{"invalid", `<html>`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseGeneration([]byte(tt.body))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
