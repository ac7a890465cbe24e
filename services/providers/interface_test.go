package providers

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockBackend is a test implementation of the Backend interface
type MockBackend struct {
	name      string
	available bool
}

func (m *MockBackend) Name() string                         { return m.name }
func (m *MockBackend) IsAvailable(ctx context.Context) bool { return m.available }

func TestRegistry(t *testing.T) {
	t.Run("register and get", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(&MockBackend{name: "ollama", available: true}))

		b, err := r.Get("ollama")
		require.NoError(t, err)
		assert.Equal(t, "ollama", b.Name())
		assert.Equal(t, 1, r.Count())
	})

	t.Run("duplicate registration", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(&MockBackend{name: "gemini"}))
		assert.ErrorIs(t, r.Register(&MockBackend{name: "gemini"}), ErrProviderAlreadyRegistered)
	})

	t.Run("invalid backends", func(t *testing.T) {
		r := NewRegistry()
		assert.Error(t, r.Register(nil))
		assert.Error(t, r.Register(&MockBackend{name: ""}))
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := NewRegistry().Get("missing")
		assert.ErrorIs(t, err, ErrProviderNotFound)
	})

	t.Run("list is sorted", func(t *testing.T) {
		r := NewRegistry()
		for _, n := range []string{"openai", "gemini", "huggingface"} {
			require.NoError(t, r.Register(&MockBackend{name: n}))
		}
		assert.Equal(t, []string{"gemini", "huggingface", "openai"}, r.List())
	})

	t.Run("availability", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(&MockBackend{name: "up", available: true}))
		require.NoError(t, r.Register(&MockBackend{name: "down", available: false}))

		assert.Equal(t, map[string]bool{"up": true, "down": false}, r.Availability(context.Background()))
	})
}

func TestChatResponse_Content(t *testing.T) {
	var nilResp *ChatResponse
	assert.Equal(t, "", nilResp.Content())
	assert.Equal(t, "", (&ChatResponse{}).Content())

	resp := &ChatResponse{Choices: []Choice{{Message: Message{Role: "assistant", Content: "[শনাক্তকরণ]: ব্লাস্ট"}}}}
	assert.Equal(t, "[শনাক্তকরণ]: ব্লাস্ট", resp.Content())
}

func TestProviderError(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := NewProviderError("ollama", "HTTP_ERROR", "request failed", 0, true, cause)

	assert.Equal(t, "ollama: request failed: dial tcp: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsRetryable(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, IsRetryable(cause))
}

func TestStatusError(t *testing.T) {
	tests := []struct {
		status    int
		code      string
		retryable bool
	}{
		{401, "UNAUTHORIZED", false},
		{403, "UNAUTHORIZED", false},
		{404, "NOT_FOUND", false},
		{429, "RATE_LIMITED", true},
		{503, "SERVER_ERROR", true},
		{400, "HTTP_ERROR", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := StatusError("huggingface", tt.status, "body")
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.status, err.StatusCode)
			assert.Equal(t, tt.retryable, err.Retryable)
		})
	}
}
