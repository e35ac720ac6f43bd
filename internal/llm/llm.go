// Package llm defines the single-shot completion contract shared by the
// hosted and local model backends.
package llm

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrMissingAPIKey is returned before any request is built when a hosted
	// backend has no credential.
	ErrMissingAPIKey = errors.New("missing API key")
	// ErrNoChoices is returned when a response carries no text to return.
	ErrNoChoices = errors.New("model returned no choices")
)

// Model completes one request and returns the first choice's text verbatim.
type Model interface {
	Complete(ctx context.Context, req *Request) (string, error)
}

// Request is one user turn with an optional system message and image.
type Request struct {
	Model  string
	System string
	Prompt string
	// ImageDataURI is a data:<mime>;base64,<payload> URI, or empty.
	ImageDataURI string
	// Temperature is left to the backend default when nil.
	Temperature *float64
	MaxTokens   int
}

// Temperature is a convenience for filling Request.Temperature.
func Temperature(t float64) *float64 {
	return &t
}

// APIError is a non-200 answer from a model endpoint.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}
