// Package assembler turns a trip request into the final itinerary response by
// walking the configured strategies in order.
package assembler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"tripsynth/itinerary"
	"tripsynth/mq/mq"
	"tripsynth/reconcile"
	"tripsynth/strategy"
	"tripsynth/vibe"
)

const allFailedReason = "all itinerary strategies failed"

type Assembler struct {
	strategies []strategy.Strategy
	engine     *reconcile.Engine
	analyzer   *vibe.Analyzer
	events     mq.ItineraryMessageQueueWrapper
	logger     *slog.Logger
	now        func() time.Time
}

// New builds an assembler. analyzer and events may be nil.
func New(engine *reconcile.Engine, analyzer *vibe.Analyzer, events mq.ItineraryMessageQueueWrapper, logger *slog.Logger, strategies ...strategy.Strategy) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	if analyzer == nil {
		analyzer = vibe.New(nil, logger)
	}
	return &Assembler{
		strategies: strategies,
		engine:     engine,
		analyzer:   analyzer,
		events:     events,
		logger:     logger,
		now:        time.Now,
	}
}

// Assemble always returns a well-formed itinerary.
func (a *Assembler) Assemble(ctx context.Context, req itinerary.TripRequest) *itinerary.Itinerary {
	id := uuid.New()
	logger := a.logger.With("request_id", id, "destination", req.Destination)

	name, res := a.run(ctx, logger, req)
	it := a.build(ctx, id, name, req, res)

	logger.Info("itinerary assembled",
		"strategy", name,
		"fallback", res.Fallback,
		"days", len(it.Days),
		"grand_total", res.Trip.Costs.GrandTotal.StringFixed(2))
	a.publish(logger, it)
	return it
}

// run returns the first strategy result that did not error.
func (a *Assembler) run(ctx context.Context, logger *slog.Logger, req itinerary.TripRequest) (string, *strategy.Result) {
	for _, s := range a.strategies {
		res, err := a.try(ctx, s, req)
		if err == nil && res != nil {
			return s.Name(), res
		}
		logger.Warn("strategy failed, trying next", "strategy", s.Name(), "err", err)
		if ctx.Err() != nil {
			break
		}
	}
	return "fallback", strategy.FallbackResult(a.engine, req, allFailedReason)
}

func (a *Assembler) try(ctx context.Context, s strategy.Strategy, req itinerary.TripRequest) (res *strategy.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("strategy %s panicked: %v", s.Name(), r)
		}
	}()
	res, err = s.Generate(ctx, req)
	if err == nil && res == nil {
		err = fmt.Errorf("strategy %s returned no result", s.Name())
	}
	return res, err
}

func (a *Assembler) build(ctx context.Context, id uuid.UUID, name string, req itinerary.TripRequest, res *strategy.Result) *itinerary.Itinerary {
	trip := res.Trip
	vibeText := strings.TrimSpace(res.Vibe)
	if vibeText == "" {
		vibeText = strings.TrimSpace(strings.TrimPrefix(a.analyzer.Vibe(ctx, req.TripType, req.Destination), "Vibe:"))
	}
	mood, intent := a.analyzer.MoodIntent(ctx, req.TripType)

	return &itinerary.Itinerary{
		Days:        trip.Days,
		Vibe:        vibeText,
		TotalBudget: trip.Costs.GrandTotal,
		Costs:       trip.Costs,
		Metadata: itinerary.Metadata{
			RequestID:      id,
			Vibe:           vibeText,
			Destination:    req.Destination,
			Tier:           req.Tier(),
			PartySize:      req.PartySize,
			Summary:        Summary(req, trip),
			Mood:           mood,
			Intent:         intent,
			Strategy:       name,
			Fallback:       res.Fallback,
			FallbackReason: res.Reason,
			Hotel:          trip.Hotel,
			Flights:        trip.Flights,
			Transfers:      trip.Transfers,
			OracleEstimate: res.OracleEstimate,
			GeneratedAt:    a.now().UTC(),
		},
	}
}

// Summary is the one line description shown with the itinerary.
func Summary(req itinerary.TripRequest, trip reconcile.Trip) string {
	tripType := strings.ToLower(strings.TrimSpace(req.TripType))
	if tripType == "" {
		tripType = "leisure"
	}
	people := "1 traveller"
	if req.PartySize > 1 {
		people = fmt.Sprintf("%d travellers", req.PartySize)
	}
	s := fmt.Sprintf("%d-day %s trip to %s for %s (%s), starting %s. Estimated total ₹%s",
		req.Duration, tripType, req.Destination, people, req.Tier(), req.StartDate,
		reconcile.FormatINR(trip.Costs.GrandTotal))
	if req.FlightIncluded {
		s += " including return flights from " + req.Origin()
	}
	return s + "."
}

// publish is best effort.
func (a *Assembler) publish(logger *slog.Logger, it *itinerary.Itinerary) {
	if a.events == nil {
		return
	}
	msg := mq.ItineraryMessage{
		RequestID:   it.Metadata.RequestID,
		Destination: it.Metadata.Destination,
		Tier:        string(it.Metadata.Tier),
		Strategy:    it.Metadata.Strategy,
		GrandTotal:  it.Costs.GrandTotal.StringFixed(2),
		Fallback:    it.Metadata.Fallback,
		Reason:      it.Metadata.FallbackReason,
		GeneratedAt: it.Metadata.GeneratedAt,
	}
	if err := mq.Publish(a.events, msg); err != nil {
		logger.Warn("failed to publish itinerary event", "err", err)
	}
}
