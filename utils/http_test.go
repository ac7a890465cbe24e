package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	t.Run("successful write", func(t *testing.T) {
		w := httptest.NewRecorder()

		err := WriteJSON(w, http.StatusOK, map[string]string{"text": "ধান"})
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

		var response map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "ধান", response["text"])
	})

	t.Run("nil data", func(t *testing.T) {
		w := httptest.NewRecorder()

		require.NoError(t, WriteJSON(w, http.StatusNoContent, nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

func TestWriteOK(t *testing.T) {
	w := httptest.NewRecorder()

	require.NoError(t, WriteOK(w, map[string]string{"source": "Google Gemini 3 Flash"}))
	assert.Equal(t, http.StatusOK, w.Code)

	var response SuccessResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "Google Gemini 3 Flash", response.Data.(map[string]interface{})["source"])
}

func TestWriteCreated(t *testing.T) {
	w := httptest.NewRecorder()

	require.NoError(t, WriteCreated(w, map[string]string{"id": "123"}))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"data":{"id":"123"}}`, w.Body.String())
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		status int
		code   string
	}{
		{http.StatusBadRequest, "bad_request"},
		{http.StatusNotFound, "not_found"},
		{http.StatusConflict, "conflict"},
		{http.StatusRequestEntityTooLarge, "payload_too_large"},
		{http.StatusBadGateway, "bad_gateway"},
		{http.StatusServiceUnavailable, "service_unavailable"},
		{http.StatusInternalServerError, "internal_error"},
		{http.StatusTeapot, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			w := httptest.NewRecorder()
			require.NoError(t, WriteError(w, tt.status, "msg", map[string]interface{}{"field": "x"}))

			assert.Equal(t, tt.status, w.Code)
			var response ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
			assert.Equal(t, tt.code, response.Error)
			assert.Equal(t, "msg", response.Message)
			assert.Equal(t, "x", response.Details["field"])
		})
	}
}

func TestWriteDefaults(t *testing.T) {
	w := httptest.NewRecorder()
	require.NoError(t, WriteNotFound(w, ""))
	assert.Contains(t, w.Body.String(), "Resource not found")

	w = httptest.NewRecorder()
	require.NoError(t, WriteInternalServerError(w, ""))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error")

	w = httptest.NewRecorder()
	require.NoError(t, WriteBadRequest(w, "bad", nil))
	assert.JSONEq(t, `{"error":"bad_request","message":"bad"}`, w.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Prompt string `json:"prompt"`
		Temp   int    `json:"temp"`
	}

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantMsg    string
	}{
		{"valid", `{"prompt":"hi","temp":3}`, 0, ""},
		{"empty", ``, http.StatusBadRequest, "request body is empty"},
		{"syntax", `{"prompt":}`, http.StatusBadRequest, "malformed JSON"},
		{"truncated", `{"prompt":"hi"`, http.StatusBadRequest, "malformed JSON"},
		{"wrong type", `{"temp":"hot"}`, http.StatusBadRequest, `field "temp" has the wrong type`},
		{"unknown field", `{"prompt":"hi","api_key":"x"}`, http.StatusBadRequest, "unknown field"},
		{"two objects", `{"prompt":"a"}{"prompt":"b"}`, http.StatusBadRequest, "single JSON object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			var dst payload
			err := DecodeJSON(w, r, &dst)
			if tt.wantStatus == 0 {
				require.NoError(t, err)
				assert.Equal(t, "hi", dst.Prompt)
				return
			}

			var bodyErr *BodyError
			require.True(t, errors.As(err, &bodyErr))
			assert.Equal(t, tt.wantStatus, bodyErr.Status)
			assert.Contains(t, bodyErr.Error(), tt.wantMsg)
		})
	}

	t.Run("too large", func(t *testing.T) {
		big := `{"prompt":"` + strings.Repeat("a", MaxBodyBytes) + `"}`
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big))

		var dst payload
		err := DecodeJSON(httptest.NewRecorder(), r, &dst)

		var bodyErr *BodyError
		require.True(t, errors.As(err, &bodyErr))
		assert.Equal(t, http.StatusRequestEntityTooLarge, bodyErr.Status)
	})
}
