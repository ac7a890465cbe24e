package providers

import (
	"regexp"
)

// SecretType names a credential shape the scrubber recognizes
type SecretType string

const (
	SecretTypeHFToken     SecretType = "hf_token"
	SecretTypeGoogleKey   SecretType = "google_key"
	SecretTypeOpenAIKey   SecretType = "openai_key"
	SecretTypeGLMKey      SecretType = "glm_key"
	SecretTypeJWT         SecretType = "jwt"
	SecretTypeBearer      SecretType = "token"
	SecretTypeDatabaseURL SecretType = "database_url"
)

type secretPattern struct {
	secretType SecretType
	pattern    *regexp.Regexp
}

// Order matters: specific vendor shapes run before the generic bearer match.
var secretPatterns = []secretPattern{
	{SecretTypeHFToken, regexp.MustCompile(`\bhf_[A-Za-z0-9]{20,}\b`)},
	{SecretTypeGoogleKey, regexp.MustCompile(`\bAIza[0-9A-Za-z\-_]{35}\b`)},
	// OpenAI and DeepSeek both issue sk- keys; error bodies echo them partly starred
	{SecretTypeOpenAIKey, regexp.MustCompile(`\bsk-[A-Za-z0-9_\-*]{16,}`)},
	{SecretTypeGLMKey, regexp.MustCompile(`\b[0-9a-f]{32}\.[A-Za-z0-9]{16}\b`)},
	{SecretTypeJWT, regexp.MustCompile(`\beyJ[A-Za-z0-9_\-]+\.eyJ[A-Za-z0-9_\-]+\.[A-Za-z0-9_\-]+`)},
	{SecretTypeBearer, regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9_\-.]{20,}`)},
	{SecretTypeDatabaseURL, regexp.MustCompile(`(?i)\bpostgres(?:ql)?://[^\s'"]+:[^\s'"]+@[^\s'"]+`)},
}

// RedactSecrets masks every credential-shaped substring in text
func RedactSecrets(text string) string {
	for _, sp := range secretPatterns {
		text = sp.pattern.ReplaceAllString(text, redactionString(sp.secretType))
	}
	return text
}

// HasSecrets reports whether text contains anything RedactSecrets would mask
func HasSecrets(text string) bool {
	for _, sp := range secretPatterns {
		if sp.pattern.MatchString(text) {
			return true
		}
	}
	return false
}

func redactionString(secretType SecretType) string {
	switch secretType {
	case SecretTypeHFToken:
		return "[HF_TOKEN_REDACTED]"
	case SecretTypeGoogleKey:
		return "[GOOGLE_KEY_REDACTED]"
	case SecretTypeOpenAIKey:
		return "[API_KEY_REDACTED]"
	case SecretTypeGLMKey:
		return "[GLM_KEY_REDACTED]"
	case SecretTypeJWT:
		return "[JWT_REDACTED]"
	case SecretTypeBearer:
		return "[TOKEN_REDACTED]"
	case SecretTypeDatabaseURL:
		return "[DATABASE_URL_REDACTED]"
	default:
		return "[SECRET_REDACTED]"
	}
}

// redactedError masks the message but keeps the chain for errors.Is and errors.As
type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }

// RedactError returns err with credential-shaped text masked in its message.
// err is returned unchanged when there is nothing to mask.
func RedactError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	clean := RedactSecrets(msg)
	if clean == msg {
		return err
	}
	return &redactedError{msg: clean, err: err}
}
