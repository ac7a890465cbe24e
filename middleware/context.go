package middleware

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/text/language"
)

// Context key type to avoid collisions
type contextKey string

const (
	// LanguageKey is the context key for the negotiated response language
	LanguageKey contextKey = "language"
)

// GetRequestIDFromContext retrieves the request ID set by chi's RequestID middleware
func GetRequestIDFromContext(ctx context.Context) string {
	return chimw.GetReqID(ctx)
}

// WithRequestID adds a request ID to the context under chi's key
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, chimw.RequestIDKey, requestID)
}

// GetLanguageFromContext returns the negotiated language, or language.Und
// when no Accept-Language negotiation happened.
func GetLanguageFromContext(ctx context.Context) language.Tag {
	if tag, ok := ctx.Value(LanguageKey).(language.Tag); ok {
		return tag
	}
	return language.Und
}

// WithLanguage adds the negotiated language to the context
func WithLanguage(ctx context.Context, tag language.Tag) context.Context {
	return context.WithValue(ctx, LanguageKey, tag)
}
