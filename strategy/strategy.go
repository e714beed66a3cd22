// Package strategy holds the interchangeable ways of producing a reconciled
// itinerary for a trip request.
package strategy

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"tripsynth/itinerary"
	"tripsynth/reconcile"
)

const (
	NameHeuristic  = "heuristic"
	NameOracle     = "oracle"
	NameDatasource = "datasource"
)

// Strategy produces a reconciled itinerary. An error means the assembler
// should try the next strategy.
type Strategy interface {
	Name() string
	Generate(ctx context.Context, req itinerary.TripRequest) (*Result, error)
}

type Result struct {
	Trip     reconcile.Trip
	Vibe     string
	Fallback bool
	Reason   string
	// OracleEstimate is the trip total the document stated for itself.
	OracleEstimate *decimal.Decimal
}

// FallbackResult wraps the synthetic single-day itinerary.
func FallbackResult(engine *reconcile.Engine, req itinerary.TripRequest, reason string) *Result {
	return &Result{
		Trip:     engine.Fallback(req, reason),
		Vibe:     fmt.Sprintf("A %s trip in %s", tripTypeOrDefault(req.TripType), req.Destination),
		Fallback: true,
		Reason:   reason,
	}
}
