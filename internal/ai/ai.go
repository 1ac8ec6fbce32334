// Package ai talks to the hosted language model and recovers structured
// fragments from its free-text replies.
package ai

import (
	"context"
	"errors"
)

// Model generates a reply for a fully formed prompt.
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ErrNoModel is returned by Noop, the model used when no API key is configured.
var ErrNoModel = errors.New("no model configured: set GOOGLE_API_KEY")

type Noop struct{}

func (Noop) Generate(ctx context.Context, prompt string) (string, error) { return "", ErrNoModel }

// ModelFunc adapts a function to Model.
type ModelFunc func(ctx context.Context, prompt string) (string, error)

func (f ModelFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
