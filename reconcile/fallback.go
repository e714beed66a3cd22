package reconcile

import (
	"github.com/shopspring/decimal"

	"tripsynth/itinerary"
	"tripsynth/pricing"
)

// Fallback builds the deterministic single-day itinerary used when no
// strategy produced a usable document. Its totals extrapolate the tier
// defaults over the whole trip so callers always get a number.
func (e *Engine) Fallback(req itinerary.TripRequest, reason string) Trip {
	_, tier := e.tiers.Lookup(req.Budget)
	c := ConstraintsFor(req)

	date := req.Date(1)
	day := itinerary.NewDay(1, date)
	day.Plan = []string{"Fallback itinerary built from " + string(req.Tier()) + " tier defaults."}
	day.Activities = placeholders(activitySlots, tier.ActivitySlotDefaults(), c.Destination)
	day.Meals = placeholders(mealSlots, tier.MealSlotDefaults(), c.Destination)
	day.Lodging = []string{"Standard " + string(req.Tier()) + " hotel (₹" + FormatINR(tier.LodgingPerNightBase) + " per night)"}
	day.DayTotal = DefaultDayTotal(tier)
	day.DailyCost = "₹" + FormatINR(day.DayTotal)
	day.FailureReason = reason

	duration := c.Duration
	if duration < 1 {
		duration = 1
	}
	perPerson := day.DayTotal.Mul(decimal.NewFromInt(int64(duration)))
	lodgingCost := tier.LodgingPerNightBase.Mul(decimal.NewFromInt(int64(duration))).Mul(decimal.NewFromInt(c.rooms()))

	flightCost := decimal.Zero
	var legs []itinerary.FlightSummary
	if c.FlightIncluded {
		leg := tier.FlightBase.Mul(c.party())
		flightCost = leg.Mul(decimal.NewFromInt(2))
		legs = []itinerary.FlightSummary{
			{Departure: c.Origin, Arrival: c.Destination, Date: date, Cost: leg},
			{Departure: c.Destination, Arrival: c.Origin, Date: req.Date(req.ExpectedDays()), Cost: leg},
		}
	}

	return Trip{
		Days: itinerary.Days{}.Put(itinerary.Label(1, date), day),
		Costs: itinerary.CostSummary{
			FlightCost:          flightCost,
			LodgingCost:         lodgingCost,
			PerPersonDailyTotal: perPerson,
			TransferCost:        decimal.Zero,
			GrandTotal:          flightCost.Add(lodgingCost).Add(perPerson.Mul(c.party())),
		},
		Hotel: &itinerary.HotelSummary{
			Name:          "Standard " + string(req.Tier()) + " hotel",
			PricePerNight: tier.LodgingPerNightBase,
			Nights:        duration,
			Rooms:         int(c.rooms()),
		},
		Flights: legs,
	}
}

func placeholders(slots []slot, defaults []decimal.Decimal, destination string) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = placeholder(s, destination, defaults[i], false)
	}
	return out
}

// DefaultDayTotal is the per-person cost of a day priced purely from tier defaults.
func DefaultDayTotal(p pricing.TierPricing) decimal.Decimal {
	return p.DailyActivityBase.Add(p.MealBase)
}
