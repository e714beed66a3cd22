package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"tripsynth/itinerary"
	"tripsynth/oracle"
	"tripsynth/parser"
)

// MaxAttempts is the number of oracle calls made before giving up. The second
// call repeats the first unchanged.
const MaxAttempts = 2

var (
	ErrDestinationMissing = errors.New("document does not mention the destination")
	ErrTooFewDays         = errors.New("document has too few day headers")
)

type State int

const (
	Success State = iota
	RetryExhausted
	Fallback
)

func (s State) String() string {
	switch s {
	case Success:
		return "success"
	case RetryExhausted:
		return "retry_exhausted"
	case Fallback:
		return "fallback"
	}
	return "unknown"
}

// Outcome is the result of one generation run. Document is only set on
// Success; Reason explains the other states.
type Outcome struct {
	State    State
	Document string
	Reason   string
	Attempts int
}

func (o Outcome) OK() bool {
	return o.State == Success
}

type Generator struct {
	oracle  oracle.Oracle
	timeout time.Duration
	logger  *slog.Logger
}

// New builds a generator. A nil oracle makes every run a Fallback.
func New(o oracle.Oracle, timeout time.Duration, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{oracle: o, timeout: timeout, logger: logger}
}

// Generate asks the oracle for an itinerary document and validates it.
func (g *Generator) Generate(ctx context.Context, req itinerary.TripRequest) Outcome {
	if g.oracle == nil {
		return Outcome{State: Fallback, Reason: oracle.ErrUnavailable.Error()}
	}

	prompt, err := Prompt(req)
	if err != nil {
		return Outcome{State: Fallback, Reason: fmt.Sprintf("failed to render prompt: %v", err)}
	}

	var lastErr error
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		doc, err := g.complete(ctx, prompt)
		if err != nil {
			g.logger.Warn("oracle call failed", "destination", req.Destination, "attempt", attempt, "err", err)
			return Outcome{State: Fallback, Reason: fmt.Sprintf("oracle call failed: %v", err), Attempts: attempt}
		}
		if lastErr = Validate(doc, req); lastErr == nil {
			return Outcome{State: Success, Document: doc, Attempts: attempt}
		}
		g.logger.Warn("oracle document rejected", "destination", req.Destination, "attempt", attempt, "err", lastErr)
	}
	return Outcome{
		State:    RetryExhausted,
		Reason:   fmt.Sprintf("no valid itinerary for %s after %d attempts: %v", req.Destination, MaxAttempts, lastErr),
		Attempts: MaxAttempts,
	}
}

func (g *Generator) complete(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	doc, err := g.oracle.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(doc), nil
}

// Validate checks that doc names the destination and carries a header for
// every expected day.
func Validate(doc string, req itinerary.TripRequest) error {
	if !strings.Contains(strings.ToLower(doc), strings.ToLower(strings.TrimSpace(req.Destination))) {
		return fmt.Errorf("%w: %q", ErrDestinationMissing, req.Destination)
	}
	if got, want := parser.CountDayHeaders(doc), req.ExpectedDays(); got < want {
		return fmt.Errorf("%w: got %d, want %d", ErrTooFewDays, got, want)
	}
	return nil
}
