// Package llm provides the completion API client used by the synthesis
// engine. Provider-specific error payloads are classified here, at the
// client boundary, into a small fixed set of error kinds; callers never
// see provider error shapes.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for completion calls.
var (
	// ErrRateLimited indicates the provider rejected the call for rate
	// limiting. Eligible for retry with backoff.
	ErrRateLimited = errors.New("rate limited by completion API")

	// ErrTokenLimit indicates the combined prompt and content exceed the
	// model's context budget. Never retried.
	ErrTokenLimit = errors.New("context length exceeded")

	// ErrMissingAPIKey indicates no API key is configured.
	ErrMissingAPIKey = errors.New("no API key configured")

	// ErrInvalidModel indicates an unknown model identifier.
	ErrInvalidModel = errors.New("invalid model")
)

// APIError is any completion failure that is neither a rate limit nor a
// token limit: transport errors, 5xx responses, malformed payloads.
type APIError struct {
	StatusCode int // 0 when the request never produced a response
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("completion API error (status %d): %s", e.StatusCode, e.Message)
	}
	return "completion API error: " + e.Message
}

// validModels contains the allowed model identifiers (unexported).
var validModels = map[string]bool{
	"gpt-4":               true,
	"gpt-4-turbo-preview": true,
	"gpt-3.5-turbo":       true,
}

// IsValidModel returns true if the model identifier is one of the
// supported set.
func IsValidModel(name string) bool {
	return validModels[name]
}

// ValidModelNames returns the list of supported model identifiers.
func ValidModelNames() []string {
	return []string{"gpt-4", "gpt-4-turbo-preview", "gpt-3.5-turbo"}
}

// Request is a single completion request. Instructions carries the
// pattern prompt (system role); Content carries the input file body
// (user role).
type Request struct {
	Model        string
	Instructions string
	Content      string
	Temperature  float64
}

// Client submits completion requests.
//
//go:generate go run github.com/matryer/moq@latest -pkg mocks -out mocks/client.go . Client
type Client interface {
	// Complete submits a request and returns the raw completion text.
	// Failures are one of ErrRateLimited, ErrTokenLimit, or *APIError.
	Complete(ctx context.Context, req Request) (string, error)
}
