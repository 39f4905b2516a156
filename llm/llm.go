package llm

import (
	"context"
	"errors"
)

// ErrEmptyResponse means the provider returned no completion content.
var ErrEmptyResponse = errors.New("empty response from model")

// Client abstracts the multimodal model provider used for provenance
// generation and component expansion. Implementations must be
// concurrency-safe if used across goroutines.
type Client interface {
	// GenerateProvenance sends the provenance system prompt together with a
	// base64 JPEG data URI and returns the raw completion text.
	GenerateProvenance(ctx context.Context, imageDataURI string) (string, error)
	// ExpandComponent requests an extended history for a single component of
	// a previously identified object and returns the raw completion text.
	ExpandComponent(ctx context.Context, componentName, objectTitle string) (string, error)
	// SourceName returns a short provider label for logging (e.g. "OpenRouter").
	SourceName() string
}
