package llm

import (
	"context"
	"errors"
)

// Prompt is a single chat exchange sent to a completion provider.
type Prompt struct {
	System string
	User   string
}

// CompletionClient abstracts chat-completion providers.
type CompletionClient interface {
	// Complete sends the prompt and returns the assistant message content.
	Complete(ctx context.Context, prompt Prompt) (string, error)
	// TestKey performs a minimal round-trip to verify credentials.
	TestKey(ctx context.Context) error
}

// ErrMissingAPIKey is returned when no API key is configured.
var ErrMissingAPIKey = errors.New("API key is not configured")

// ErrMalformedEnvelope is returned when the provider response lacks content.
var ErrMalformedEnvelope = errors.New("invalid response from completion API")
