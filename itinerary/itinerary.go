package itinerary

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tripsynth/pricing"
)

// Label formats the canonical day key, e.g. "Day 2 – 2025-06-12".
func Label(n int, date string) string {
	return fmt.Sprintf("Day %d – %s", n, date)
}

// Day is one parsed, and later reconciled, itinerary day.
type Day struct {
	Index      int      `json:"-"`
	Date       string   `json:"-"`
	Plan       []string `json:"Plan"`
	Transport  []string `json:"Transport"`
	Lodging    []string `json:"Lodging"`
	Activities []string `json:"Activities"`
	Meals      []string `json:"Meals"`
	DailyCost  string   `json:"DailyCost,omitempty"`

	DayTotal      decimal.Decimal `json:"day_total"`
	TravelDay     bool            `json:"travel_day,omitempty"`
	FailureReason string          `json:"failure_reason,omitempty"`
}

// NewDay returns a day with empty section lists.
func NewDay(index int, date string) *Day {
	return &Day{
		Index:      index,
		Date:       date,
		Plan:       []string{},
		Transport:  []string{},
		Lodging:    []string{},
		Activities: []string{},
		Meals:      []string{},
	}
}

// Clone returns a deep copy.
func (d *Day) Clone() *Day {
	c := *d
	c.Plan = append([]string{}, d.Plan...)
	c.Transport = append([]string{}, d.Transport...)
	c.Lodging = append([]string{}, d.Lodging...)
	c.Activities = append([]string{}, d.Activities...)
	c.Meals = append([]string{}, d.Meals...)
	return &c
}

type DayEntry struct {
	Label string
	Day   *Day
}

// Days is an ordered label → day mapping.
type Days []DayEntry

// Get returns the day stored under label.
func (ds Days) Get(label string) (*Day, bool) {
	for _, e := range ds {
		if e.Label == label {
			return e.Day, true
		}
	}
	return nil, false
}

// Put replaces the day under label in place, or appends it.
func (ds Days) Put(label string, d *Day) Days {
	for i, e := range ds {
		if e.Label == label {
			ds[i].Day = d
			return ds
		}
	}
	return append(ds, DayEntry{Label: label, Day: d})
}

func (ds Days) Labels() []string {
	out := make([]string, len(ds))
	for i, e := range ds {
		out[i] = e.Label
	}
	return out
}

// MarshalJSON writes the days as one JSON object keeping document order.
func (ds Days) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range ds {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Label)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e.Day)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s: %w", e.Label, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type CostSummary struct {
	FlightCost          decimal.Decimal `json:"flight_cost"`
	LodgingCost         decimal.Decimal `json:"lodging_cost"`
	PerPersonDailyTotal decimal.Decimal `json:"per_person_daily_total"`
	TransferCost        decimal.Decimal `json:"transfer_cost"`
	GrandTotal          decimal.Decimal `json:"grand_total"`
}

type HotelSummary struct {
	Name          string          `json:"name"`
	Rating        string          `json:"rating,omitempty"`
	PricePerNight decimal.Decimal `json:"price_per_night"`
	Nights        int             `json:"nights"`
	Rooms         int             `json:"rooms"`
}

type FlightSummary struct {
	Departure string          `json:"departure"`
	Arrival   string          `json:"arrival"`
	Date      string          `json:"date"`
	Detail    string          `json:"detail,omitempty"`
	Cost      decimal.Decimal `json:"cost"`
}

type Metadata struct {
	RequestID      uuid.UUID        `json:"request_id"`
	Vibe           string           `json:"vibe"`
	Destination    string           `json:"destination"`
	Tier           pricing.Tier     `json:"budget_tier"`
	PartySize      int              `json:"num_members"`
	Summary        string           `json:"summary"`
	Mood           string           `json:"mood,omitempty"`
	Intent         string           `json:"intent,omitempty"`
	Strategy       string           `json:"strategy"`
	Fallback       bool             `json:"fallback"`
	FallbackReason string           `json:"fallback_reason,omitempty"`
	Hotel          *HotelSummary    `json:"hotel,omitempty"`
	Flights        []FlightSummary  `json:"flights,omitempty"`
	Transfers      []string         `json:"transfers,omitempty"`
	OracleEstimate *decimal.Decimal `json:"oracle_estimate,omitempty"`
	GeneratedAt    time.Time        `json:"generated_at"`
}

// Itinerary is the response object handed back to callers.
type Itinerary struct {
	Days        Days            `json:"itinerary"`
	Vibe        string          `json:"vibe"`
	TotalBudget decimal.Decimal `json:"total_budget"`
	Costs       CostSummary     `json:"cost_summary"`
	Metadata    Metadata        `json:"metadata"`
}

// Record is a provider result normalised to the fields the pipeline uses.
type Record struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price,omitempty"`
	Rating      string  `json:"rating,omitempty"`
	Description string  `json:"description,omitempty"`
}
