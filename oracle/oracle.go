package oracle

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when no oracle is configured.
var ErrUnavailable = errors.New("oracle unavailable")

// ErrEmptyResponse is returned when the oracle answers with no text.
var ErrEmptyResponse = errors.New("oracle returned an empty response")

// Oracle is a black-box text completion service.
type Oracle interface {
	Complete(ctx context.Context, prompt string, opts ...Option) (string, error)
}

type CallOptions struct {
	Temperature float64
	MaxTokens   int
}

type Option func(*CallOptions)

func WithTemperature(t float64) Option {
	return func(o *CallOptions) { o.Temperature = t }
}

func WithMaxTokens(n int) Option {
	return func(o *CallOptions) { o.MaxTokens = n }
}

// Apply resolves opts over the defaults used for itinerary generation.
func Apply(opts ...Option) CallOptions {
	o := CallOptions{Temperature: 0.7, MaxTokens: 8192}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Func adapts a plain function to Oracle.
type Func func(ctx context.Context, prompt string) (string, error)

func (f Func) Complete(ctx context.Context, prompt string, _ ...Option) (string, error) {
	return f(ctx, prompt)
}

// Disabled always fails with ErrUnavailable.
type Disabled struct{}

func (Disabled) Complete(context.Context, string, ...Option) (string, error) {
	return "", ErrUnavailable
}
