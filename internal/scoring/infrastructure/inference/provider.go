// Package inference wraps the external AI text-generation capability used
// for impact and effort judgments. The capability is fallible and
// rate-limited; callers must be prepared to fall back to deterministic
// heuristics on any error.
package inference

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Provider is the interface to an AI completion backend.
type Provider interface {
	// Name returns the provider name (e.g. "anthropic").
	Name() string

	// Complete sends a prompt and returns the complete response.
	Complete(ctx context.Context, req *Request) (*Response, error)
}

// Request represents an AI completion request.
type Request struct {
	// Prompt is the input text.
	Prompt string

	// System is an optional system message to set context.
	System string

	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64
}

// Response represents an AI completion response.
type Response struct {
	// Content is the generated text.
	Content string

	// Model is the actual model that was used.
	Model string
}

// ProviderError is a typed error carrying the HTTP status of a failed call,
// so callers can distinguish rate limits from permanent failures.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Provider, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsRateLimited reports whether err represents a provider rate limit: either
// a 429 status or a "Too Many Requests" marker in the message.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	var pe *ProviderError
	if errors.As(err, &pe) && pe.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return strings.Contains(err.Error(), "Too Many Requests")
}
