package strategy

import (
	"context"
	"fmt"

	"tripsynth/itinerary"
	"tripsynth/parser"
	"tripsynth/reconcile"
)

var (
	activityIdeas = map[string][]string{
		"Morning": {
			"Guided walking tour through the old quarter of %s, stopping at its best known landmarks.",
			"Visit the main museum of %s to get a feel for the local history and culture.",
			"Early start to a scenic viewpoint near %s, then a slow walk back through the neighbourhood.",
		},
		"Afternoon": {
			"Browse the central market of %s and pick up local crafts, spices and snacks.",
			"Relax at a park or waterfront in %s with time to rest after lunch.",
			"Join a short hands-on workshop run by local artisans in %s.",
		},
		"Evening": {
			"Catch the sunset from a popular spot in %s and stroll the busy streets afterwards.",
			"Attend a cultural performance or live music show in %s.",
			"Take an easy evening cruise or promenade walk along the best known stretch of %s.",
		},
		"Night": {
			"Explore the night market of %s for street food and people watching.",
			"Unwind at a rooftop lounge in %s with views over the lit up city.",
			"Head back early and enjoy a quiet night in, ready for the next day in %s.",
		},
	}
	mealIdeas = map[string][]string{
		"Breakfast": {
			"Hotel breakfast with local specialities and fresh fruit before heading out in %s.",
			"Popular neighbourhood cafe in %s known for its morning snacks and strong coffee.",
		},
		"Lunch": {
			"Well reviewed local restaurant in %s serving a traditional thali or set meal.",
			"Casual eatery near the sights of %s with quick regional dishes.",
		},
		"Dinner": {
			"Sit-down dinner at a favourite restaurant in %s featuring regional cuisine.",
			"Dinner at a lively spot in %s known for its grills and seafood.",
		},
	}
)

// Heuristic synthesises a complete itinerary from tier defaults. It never
// fails, which makes it the usual last entry in a strategy list.
type Heuristic struct {
	engine *reconcile.Engine
}

func NewHeuristic(engine *reconcile.Engine) *Heuristic {
	return &Heuristic{engine: engine}
}

func (h *Heuristic) Name() string {
	return NameHeuristic
}

func (h *Heuristic) Generate(ctx context.Context, req itinerary.TripRequest) (*Result, error) {
	doc := h.Document(req)
	days := parser.Parse(doc)
	trip := h.engine.Reconcile(ctx, days, req)
	return &Result{Trip: trip, Vibe: parser.ExtractVibe(doc)}, nil
}

// Document renders the synthetic plan in the plain dialect.
func (h *Heuristic) Document(req itinerary.TripRequest) string {
	tier, prices := h.engine.Tiers().Lookup(req.Budget)
	activityCosts := prices.ActivitySlotDefaults()
	mealCosts := prices.MealSlotDefaults()

	var d document
	d.vibe(fmt.Sprintf("A %s trip in %s", tripTypeOrDefault(req.TripType), req.Destination))

	for n := 1; n <= req.ExpectedDays(); n++ {
		if req.IsTravelDay(n) {
			d.day(n, req.Date(n), "Departure")
			d.section("Plan", fmt.Sprintf("Check out and travel home from %s", req.Destination))
			d.section("Transport", transportFor(req, prices, n)...)
			continue
		}

		d.day(n, req.Date(n), fmt.Sprintf("Exploring %s", req.Destination))
		d.section("Transport", transportFor(req, prices, n)...)
		d.section("Lodging", fmt.Sprintf("Standard %s hotel in %s (₹%s per night)",
			tier, req.Destination, reconcile.FormatINR(prices.LodgingPerNightBase)))

		var activities []string
		for i, slot := range activitySlotNames {
			ideas := activityIdeas[slot]
			activities = append(activities, costLine(slot, fmt.Sprintf(ideas[(n-1)%len(ideas)], req.Destination), activityCosts[i]))
		}
		d.section("Activities", activities...)

		var meals []string
		for i, slot := range mealSlotNames {
			ideas := mealIdeas[slot]
			meals = append(meals, costLine(slot, fmt.Sprintf(ideas[(n-1)%len(ideas)], req.Destination), mealCosts[i]))
		}
		d.section("Meals", meals...)
		d.dayTotal(reconcile.DefaultDayTotal(prices))
	}
	return d.String()
}
