package summarizer

import (
	"context"
	"errors"
)

var (
	// ErrMissingAPIKey means no credential was found in the configured
	// environment variable.
	ErrMissingAPIKey = errors.New("summarization API key missing")
	// ErrContextTooLarge means the backend rejected the prompt for
	// exceeding the model's context window.
	ErrContextTooLarge = errors.New("prompt exceeds model context window")

	// errModelNotFound marks a model identifier the backend does not
	// serve; the caller advances to the next model in preference order.
	errModelNotFound = errors.New("model not found")
)

// Backend is a text-generation capability. Implementations handle
// model selection and fallback internally; Generate returns the
// generated text for a single user-role prompt.
type Backend interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
