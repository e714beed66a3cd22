package strategy

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"tripsynth/itinerary"
	"tripsynth/pricing"
	"tripsynth/reconcile"
)

var (
	activitySlotNames = []string{"Morning", "Afternoon", "Evening", "Night"}
	mealSlotNames     = []string{"Breakfast", "Lunch", "Dinner"}
)

func tripTypeOrDefault(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	if t == "" {
		return "leisure"
	}
	return t
}

// document writes the plain dialect understood by the parser.
type document struct {
	b strings.Builder
}

func (d *document) vibe(text string) {
	fmt.Fprintf(&d.b, "Vibe: %s\n\n", text)
}

func (d *document) day(n int, date, title string) {
	fmt.Fprintf(&d.b, "Day %d – %s: %s\n", n, date, title)
}

func (d *document) section(name string, items ...string) {
	if len(items) == 0 {
		return
	}
	d.b.WriteString(name + ":\n")
	for _, it := range items {
		d.b.WriteString("- " + it + "\n")
	}
}

func (d *document) dayTotal(total decimal.Decimal) {
	fmt.Fprintf(&d.b, "Total Estimated Cost for the Day: ₹%s\n\n", reconcile.FormatINR(total))
}

func (d *document) String() string {
	return d.b.String()
}

func costLine(slot, text string, cost decimal.Decimal) string {
	return fmt.Sprintf("%s: %s Cost: ~₹%s", slot, text, reconcile.FormatINR(cost))
}

// transportFor lists the transport lines of day n, including flights on the
// first and last day when they are part of the trip.
func transportFor(req itinerary.TripRequest, tier pricing.TierPricing, n int) []string {
	var lines []string
	fare := reconcile.FormatINR(tier.FlightBase)
	if req.FlightIncluded && n == 1 {
		lines = append(lines, fmt.Sprintf("Flight from %s to %s (₹%s per person)", req.Origin(), req.Destination, fare))
	}
	if req.FlightIncluded && n == req.ExpectedDays() {
		lines = append(lines, fmt.Sprintf("Return flight from %s to %s (₹%s per person)", req.Destination, req.Origin(), fare))
	}
	if !req.IsTravelDay(n) {
		lines = append(lines, fmt.Sprintf("Local taxis and autos around %s as needed", req.Destination))
	}
	return lines
}
