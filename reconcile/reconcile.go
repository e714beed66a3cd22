package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"tripsynth/itinerary"
	"tripsynth/oracle"
	"tripsynth/pricing"
)

// LodgingBand is how far an extracted nightly price may stray from the tier
// default before it is discarded.
var LodgingBand = decimal.NewFromInt(5000)

// Constraints carries the trip facts a single day needs.
type Constraints struct {
	Destination    string
	Origin         string
	Duration       int
	PartySize      int
	FlightIncluded bool
}

func ConstraintsFor(req itinerary.TripRequest) Constraints {
	return Constraints{
		Destination:    req.Destination,
		Origin:         req.Origin(),
		Duration:       req.Duration,
		PartySize:      req.PartySize,
		FlightIncluded: req.FlightIncluded,
	}
}

// TravelDay reports whether dayIndex is the trailing departure day, whose
// uncosted slots are free.
func (c Constraints) TravelDay(dayIndex int) bool {
	return c.FlightIncluded && dayIndex == c.Duration+1
}

func (c Constraints) rooms() int64 {
	if c.PartySize <= 0 {
		return 1
	}
	return int64((c.PartySize + 1) / 2)
}

func (c Constraints) party() decimal.Decimal {
	if c.PartySize <= 0 {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(int64(c.PartySize))
}

// Trip is a reconciled itinerary with its trip-level figures.
type Trip struct {
	Days      itinerary.Days
	Costs     itinerary.CostSummary
	Hotel     *itinerary.HotelSummary
	Flights   []itinerary.FlightSummary
	Transfers []string
}

type Engine struct {
	tiers    pricing.Table
	rewriter oracle.Oracle
	logger   *slog.Logger
}

// New builds an engine. A nil rewriter disables narrative rewrites.
func New(tiers pricing.Table, rewriter oracle.Oracle, logger *slog.Logger) *Engine {
	if tiers == nil {
		tiers = pricing.DefaultTable()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{tiers: tiers, rewriter: rewriter, logger: logger}
}

func (e *Engine) Tiers() pricing.Table {
	return e.tiers
}

// ReconcileDay fills the activity and meal slots of day and prices them. The
// input day is not modified.
func (e *Engine) ReconcileDay(ctx context.Context, day *itinerary.Day, tier pricing.TierPricing, dayIndex int, c Constraints) (*itinerary.Day, decimal.Decimal) {
	out := day.Clone()
	travel := c.TravelDay(dayIndex)
	out.TravelDay = out.TravelDay || travel

	var total decimal.Decimal
	out.Activities, total = e.fillSlots(ctx, activitySlots, day.Activities, tier.ActivitySlotDefaults(), travel, c)
	var meals decimal.Decimal
	out.Meals, meals = e.fillSlots(ctx, mealSlots, day.Meals, tier.MealSlotDefaults(), travel, c)
	total = total.Add(meals)

	out.DayTotal = total
	out.DailyCost = "₹" + FormatINR(total)
	return out, total
}

func (e *Engine) fillSlots(ctx context.Context, slots []slot, lines []string, defaults []decimal.Decimal, travel bool, c Constraints) ([]string, decimal.Decimal) {
	picked := pick(slots, lines)
	filled := make([]string, len(slots))
	total := decimal.Zero

	for i, s := range slots {
		fallback := defaults[i]
		if travel {
			fallback = decimal.Zero
		}

		line := picked[i]
		if line == "" {
			line = placeholder(s, c.Destination, fallback, travel)
		}

		cost, token, ok := costToken(line)
		if !ok {
			cost = fallback
			token = costSuffix(cost)
			line = strings.TrimRight(line, " .") + ". " + token
		}

		if narrativeWords(line) < minNarrativeWords {
			line = e.rewrite(ctx, s, line, token, c)
		}

		filled[i] = line
		total = total.Add(cost)
	}
	return filled, total
}

// rewrite asks the oracle for a richer version of a terse slot line. Failures
// keep the original line. A cost the rewrite quotes is replaced by token, so
// the line always shows the amount the slot is counted at.
func (e *Engine) rewrite(ctx context.Context, s slot, line, token string, c Constraints) string {
	if e.rewriter == nil {
		return line
	}
	prompt := fmt.Sprintf(
		"Rewrite this %s plan item for a trip to %s as a richer 2-3 sentence description. "+
			"Answer with the rewritten item only, on one line, ending with the cost exactly as written: %s\n\n%s",
		strings.ToLower(s.Name), c.Destination, token, line)

	text, err := e.rewriter.Complete(ctx, prompt, oracle.WithMaxTokens(256))
	if err != nil {
		e.logger.Warn("slot rewrite failed", "slot", s.Name, "err", err)
		return line
	}
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return line
	}
	if !strings.HasPrefix(strings.ToLower(text), strings.ToLower(s.Name)) {
		text = s.Name + ": " + text
	}
	if loc := costTokenRe.FindStringIndex(text); loc != nil {
		text = text[:loc[0]] + token + text[loc[1]:]
	} else {
		text = strings.TrimRight(text, " ") + " " + token
	}
	return text
}

// Reconcile prices every day of days and derives the trip-level totals.
func (e *Engine) Reconcile(ctx context.Context, days itinerary.Days, req itinerary.TripRequest) Trip {
	_, tier := e.tiers.Lookup(req.Budget)
	c := ConstraintsFor(req)

	trip := Trip{Days: make(itinerary.Days, 0, len(days))}
	dailyTotal := decimal.Zero
	for _, entry := range days {
		index := entry.Day.Index
		if index <= 0 {
			index = len(trip.Days) + 1
		}
		filled, total := e.ReconcileDay(ctx, entry.Day, tier, index, c)
		trip.Days = append(trip.Days, itinerary.DayEntry{Label: entry.Label, Day: filled})
		dailyTotal = dailyTotal.Add(total)
	}

	trip.Hotel = lodging(days, tier, c)
	lodgingCost := trip.Hotel.PricePerNight.
		Mul(decimal.NewFromInt(int64(trip.Hotel.Nights))).
		Mul(decimal.NewFromInt(int64(trip.Hotel.Rooms)))

	flightCost := decimal.Zero
	if c.FlightIncluded {
		trip.Flights, flightCost = flights(days, tier, c, req)
	}

	var transferCost decimal.Decimal
	trip.Transfers, transferCost = transfers(days)

	trip.Costs = itinerary.CostSummary{
		FlightCost:          flightCost,
		LodgingCost:         lodgingCost,
		PerPersonDailyTotal: dailyTotal,
		TransferCost:        transferCost,
		GrandTotal:          flightCost.Add(lodgingCost).Add(dailyTotal.Mul(c.party())).Add(transferCost),
	}
	return trip
}

// lodging takes the nightly price from the first lodging line with a rupee
// amount, falling back to the tier default when it is out of band.
func lodging(days itinerary.Days, tier pricing.TierPricing, c Constraints) *itinerary.HotelSummary {
	hotel := &itinerary.HotelSummary{
		PricePerNight: tier.LodgingPerNightBase,
		Nights:        c.Duration,
		Rooms:         int(c.rooms()),
	}
	for _, entry := range days {
		for _, line := range entry.Day.Lodging {
			price, ok := rupeeAmount(line)
			if !ok {
				continue
			}
			hotel.Name = hotelName(line)
			if price.Sub(tier.LodgingPerNightBase).Abs().LessThanOrEqual(LodgingBand) {
				hotel.PricePerNight = price
			}
			return hotel
		}
	}
	return hotel
}

func hotelName(line string) string {
	name := line
	for _, sep := range []string{"(", ",", " - ", " – ", "₹"} {
		if i := strings.Index(name, sep); i > 0 {
			name = name[:i]
		}
	}
	return strings.TrimSpace(name)
}

func flights(days itinerary.Days, tier pricing.TierPricing, c Constraints, req itinerary.TripRequest) ([]itinerary.FlightSummary, decimal.Decimal) {
	var first, last *itinerary.Day
	if len(days) > 0 {
		first = days[0].Day
		last = days[len(days)-1].Day
	}

	outLine, outCost := flightLeg(first, tier, false)
	var retLine string
	var retCost decimal.Decimal
	if last == first {
		retLine, retCost = flightLeg(last, tier, true)
	} else {
		retLine, retCost = flightLeg(last, tier, false)
	}

	outDate, retDate := req.Date(1), req.Date(req.ExpectedDays())
	if first != nil && first.Date != "" {
		outDate = first.Date
	}
	if last != nil && last.Date != "" {
		retDate = last.Date
	}

	party := c.party()
	legs := []itinerary.FlightSummary{
		{Departure: c.Origin, Arrival: c.Destination, Date: outDate, Detail: outLine, Cost: outCost.Mul(party)},
		{Departure: c.Destination, Arrival: c.Origin, Date: retDate, Detail: retLine, Cost: retCost.Mul(party)},
	}
	return legs, outCost.Add(retCost).Mul(party)
}

// flightLeg prices one leg from a day's transport lines. With second set it
// uses the second flight line, for single-day documents that list both legs.
func flightLeg(day *itinerary.Day, tier pricing.TierPricing, second bool) (string, decimal.Decimal) {
	if day == nil {
		return "", tier.FlightBase
	}
	seen := 0
	for _, line := range day.Transport {
		if !flightRe.MatchString(line) {
			continue
		}
		seen++
		if second && seen < 2 {
			continue
		}
		if amount, ok := rupeeAmount(line); ok {
			return line, amount
		}
		return line, tier.FlightBase
	}
	return "", tier.FlightBase
}

func transfers(days itinerary.Days) ([]string, decimal.Decimal) {
	var lines []string
	total := decimal.Zero
	for _, entry := range days {
		for _, line := range entry.Day.Transport {
			if flightRe.MatchString(line) {
				continue
			}
			lines = append(lines, line)
			if amount, _, ok := costToken(line); ok {
				total = total.Add(amount)
			}
		}
	}
	return lines, total
}
