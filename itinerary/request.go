package itinerary

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"tripsynth/pricing"
)

const DateLayout = "2006-01-02"

// TripRequest is one inbound planning request. The binding tags are shared by
// gin's JSON binding and Validate.
type TripRequest struct {
	Destination    string   `json:"destination" binding:"required"`
	StartDate      string   `json:"start_date" binding:"required,datetime=2006-01-02"`
	Duration       int      `json:"duration" binding:"required,min=1"`
	TripType       string   `json:"trip_type"`
	FoodPreference string   `json:"food_preference"`
	PartySize      int      `json:"num_members" binding:"required,min=1"`
	Budget         string   `json:"budget" binding:"required,oneof=budget-friendly mid-range premium"`
	FlightIncluded bool     `json:"flight_included"`
	HotelStars     []string `json:"hotel_stars" binding:"omitempty,dive,oneof=3 4 5"`
	FromLocation   string   `json:"from_location"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func requestValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.SetTagName("binding")
	})
	return validate
}

// Validate applies the same rules gin applies when binding a request body.
func (r TripRequest) Validate() error {
	if err := requestValidator().Struct(r); err != nil {
		return fmt.Errorf("invalid trip request: %w", err)
	}
	return nil
}

// Start returns the parsed start date, or the zero time if it does not parse.
func (r TripRequest) Start() time.Time {
	t, err := time.Parse(DateLayout, strings.TrimSpace(r.StartDate))
	if err != nil {
		return time.Time{}
	}
	return t
}

// Date returns the calendar date of the 1-based day n.
func (r TripRequest) Date(n int) string {
	start := r.Start()
	if start.IsZero() {
		return r.StartDate
	}
	return start.AddDate(0, 0, n-1).Format(DateLayout)
}

// ExpectedDays is the number of day headers a complete document carries. A trip
// with flights gets an extra departure day.
func (r TripRequest) ExpectedDays() int {
	if r.FlightIncluded {
		return r.Duration + 1
	}
	return r.Duration
}

// IsTravelDay reports whether day n is the trailing departure day.
func (r TripRequest) IsTravelDay(n int) bool {
	return r.FlightIncluded && n == r.Duration+1
}

// Rooms assumes two travellers share a room.
func (r TripRequest) Rooms() int {
	if r.PartySize <= 0 {
		return 1
	}
	return (r.PartySize + 1) / 2
}

func (r TripRequest) Tier() pricing.Tier {
	return pricing.Normalize(r.Budget)
}

func (r TripRequest) Origin() string {
	if r.FromLocation == "" {
		return "Hyderabad, India"
	}
	return r.FromLocation
}
