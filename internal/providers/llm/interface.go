package llm

import (
	"context"
)

// Client is the minimal surface the pipeline needs from a text backend.
// Any provider implementation should satisfy this.
type Client interface {
	// GenerateText issues a single non-streaming completion.
	GenerateText(ctx context.Context, system, prompt string, temperature float64) (string, error)
	// GenerateStream issues exactly one upstream call and invokes onDelta
	// for each text fragment in arrival order. A non-nil onDelta error
	// aborts consumption and is returned unchanged.
	GenerateStream(ctx context.Context, system, prompt string, temperature float64, onDelta func(chunk string) error) error
}
