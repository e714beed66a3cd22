package strategy

import (
	"context"
	"log/slog"

	"tripsynth/generator"
	"tripsynth/itinerary"
	"tripsynth/libs/diff"
	"tripsynth/parser"
	"tripsynth/reconcile"
)

// Oracle drives the generator, parses its document and reconciles the costs.
// A rejected or failed generation yields the synthetic fallback, not an error.
type Oracle struct {
	generator *generator.Generator
	parser    *parser.Parser
	engine    *reconcile.Engine
	logger    *slog.Logger
}

func NewOracle(gen *generator.Generator, engine *reconcile.Engine, logger *slog.Logger) *Oracle {
	if logger == nil {
		logger = slog.Default()
	}
	return &Oracle{generator: gen, parser: parser.New(), engine: engine, logger: logger}
}

func (o *Oracle) Name() string {
	return NameOracle
}

func (o *Oracle) Generate(ctx context.Context, req itinerary.TripRequest) (*Result, error) {
	out := o.generator.Generate(ctx, req)
	if !out.OK() {
		o.logger.Warn("oracle generation fell back", "state", out.State, "reason", out.Reason, "attempts", out.Attempts)
		return FallbackResult(o.engine, req, out.Reason), nil
	}

	days := o.parser.Parse(out.Document)
	if len(days) == 0 {
		return FallbackResult(o.engine, req, "oracle document contained no parsable days"), nil
	}
	trip := o.engine.Reconcile(ctx, days, req)
	o.audit(days, trip.Days)

	res := &Result{Trip: trip, Vibe: parser.ExtractVibe(out.Document)}
	if estimate, ok := parser.ExtractTripTotal(out.Document); ok {
		res.OracleEstimate = &estimate
	}
	return res, nil
}

// audit logs what reconciliation changed in the parsed days.
func (o *Oracle) audit(parsed, reconciled itinerary.Days) {
	if !o.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	changes, err := diff.Changes(parsed, reconciled)
	if err != nil {
		o.logger.Debug("reconciliation diff failed", "err", err)
		return
	}
	o.logger.Debug("reconciled oracle document", "changes", len(changes))
	for _, c := range changes {
		o.logger.Debug("reconciliation change", "type", c.Type, "path", c.Path, "from", c.From, "to", c.To)
	}
}
