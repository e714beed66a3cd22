package pricing

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

type Tier string

const (
	BudgetFriendly Tier = "budget-friendly"
	MidRange       Tier = "mid-range"
	Premium        Tier = "premium"
)

// Tiers lists the supported tiers from cheapest to most expensive.
var Tiers = []Tier{BudgetFriendly, MidRange, Premium}

// aliases accepted from older clients that sent low/medium/high.
var aliases = map[string]Tier{
	"low":    BudgetFriendly,
	"budget": BudgetFriendly,
	"medium": MidRange,
	"high":   Premium,
	"luxury": Premium,
}

const (
	ActivitySlots = 4
	MealSlots     = 3
)

// TierPricing holds the baseline cost of each category for one tier, in INR.
type TierPricing struct {
	FlightBase          decimal.Decimal `json:"flight_base"`
	LodgingPerNightBase decimal.Decimal `json:"lodging_per_night_base"`
	DailyActivityBase   decimal.Decimal `json:"daily_activity_base"`
	MealBase            decimal.Decimal `json:"meal_base"`
}

// ActivitySlotDefaults splits the daily activity base over the four activity slots.
func (p TierPricing) ActivitySlotDefaults() []decimal.Decimal {
	return Split(p.DailyActivityBase, ActivitySlots)
}

// MealSlotDefaults splits the meal base over breakfast, lunch and dinner.
func (p TierPricing) MealSlotDefaults() []decimal.Decimal {
	return Split(p.MealBase, MealSlots)
}

func (p TierPricing) validate() error {
	fields := []struct {
		name  string
		value decimal.Decimal
	}{
		{"flight base", p.FlightBase},
		{"lodging per night base", p.LodgingPerNightBase},
		{"daily activity base", p.DailyActivityBase},
		{"meal base", p.MealBase},
	}
	for _, f := range fields {
		if !f.value.IsPositive() {
			return fmt.Errorf("%s must be positive, got %s", f.name, f.value)
		}
	}
	return nil
}

type Table map[Tier]TierPricing

func DefaultTable() Table {
	return Table{
		BudgetFriendly: {
			FlightBase:          decimal.NewFromInt(6000),
			LodgingPerNightBase: decimal.NewFromInt(4000),
			DailyActivityBase:   decimal.NewFromInt(1500),
			MealBase:            decimal.NewFromInt(1000),
		},
		MidRange: {
			FlightBase:          decimal.NewFromInt(12000),
			LodgingPerNightBase: decimal.NewFromInt(12000),
			DailyActivityBase:   decimal.NewFromInt(3000),
			MealBase:            decimal.NewFromInt(2000),
		},
		Premium: {
			FlightBase:          decimal.NewFromInt(25000),
			LodgingPerNightBase: decimal.NewFromInt(30000),
			DailyActivityBase:   decimal.NewFromInt(8000),
			MealBase:            decimal.NewFromInt(5000),
		},
	}
}

// Normalize maps a tier name to a supported tier. Unknown names become MidRange.
func Normalize(name string) Tier {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, t := range Tiers {
		if string(t) == n {
			return t
		}
	}
	if t, ok := aliases[n]; ok {
		return t
	}
	return MidRange
}

// Lookup resolves name through Normalize and returns its pricing.
func (t Table) Lookup(name string) (Tier, TierPricing) {
	tier := Normalize(name)
	if p, ok := t[tier]; ok {
		return tier, p
	}
	return MidRange, t[MidRange]
}

// Validate checks that every supported tier is present and fully priced.
func (t Table) Validate() error {
	var errs []error
	for _, tier := range Tiers {
		p, ok := t[tier]
		if !ok {
			errs = append(errs, fmt.Errorf("tier %s is not defined", tier))
			continue
		}
		if err := p.validate(); err != nil {
			errs = append(errs, fmt.Errorf("tier %s: %w", tier, err))
		}
	}
	return errors.Join(errs...)
}

// Names returns the defined tier names in sorted order.
func (t Table) Names() []string {
	names := make([]string, 0, len(t))
	for tier := range t {
		names = append(names, string(tier))
	}
	sort.Strings(names)
	return names
}

var cent = decimal.New(1, -2)

// Split divides total into n parts rounded to cents whose sum is exactly total.
// The leftover cents go to the leading parts.
func Split(total decimal.Decimal, n int) []decimal.Decimal {
	if n <= 0 {
		return nil
	}
	count := decimal.NewFromInt(int64(n))
	part := total.Div(count).Truncate(2)
	parts := make([]decimal.Decimal, n)
	for i := range parts {
		parts[i] = part
	}
	extra := total.Sub(part.Mul(count)).Div(cent).IntPart()
	for i := 0; i < int(extra) && i < n; i++ {
		parts[i] = parts[i].Add(cent)
	}
	return parts
}

// Sum adds up a list of amounts.
func Sum(values []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
