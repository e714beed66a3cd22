package itinerary

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() TripRequest {
	return TripRequest{
		Destination: "Goa",
		StartDate:   "2025-06-11",
		Duration:    3,
		TripType:    "relaxation",
		PartySize:   3,
		Budget:      "mid-range",
		HotelStars:  []string{"4", "5"},
	}
}

func TestTripRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *TripRequest)
		wantErr bool
	}{
		{"valid", func(r *TripRequest) {}, false},
		{"missing destination", func(r *TripRequest) { r.Destination = "" }, true},
		{"bad date", func(r *TripRequest) { r.StartDate = "11/06/2025" }, true},
		{"zero duration", func(r *TripRequest) { r.Duration = 0 }, true},
		{"long trip", func(r *TripRequest) { r.Duration = 45 }, false},
		{"zero party", func(r *TripRequest) { r.PartySize = 0 }, true},
		{"unknown tier", func(r *TripRequest) { r.Budget = "platinum" }, true},
		{"bad star", func(r *TripRequest) { r.HotelStars = []string{"2"} }, true},
		{"no stars", func(r *TripRequest) { r.HotelStars = nil }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRequest()
			tt.mutate(&r)
			err := r.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTripRequest_Derived(t *testing.T) {
	r := validRequest()
	assert.Equal(t, "2025-06-13", r.Date(3))
	assert.Equal(t, 3, r.ExpectedDays())
	assert.Equal(t, 2, r.Rooms())
	assert.False(t, r.IsTravelDay(4))

	r.FlightIncluded = true
	assert.Equal(t, 4, r.ExpectedDays())
	assert.True(t, r.IsTravelDay(4))
	assert.False(t, r.IsTravelDay(3))

	r.PartySize = 2
	assert.Equal(t, 1, r.Rooms())
}

func TestDays_OrderedJSON(t *testing.T) {
	var days Days
	for i := 1; i <= 11; i++ {
		d := NewDay(i, "2025-06-01")
		days = days.Put(Label(i, "2025-06-01"), d)
	}
	days = days.Put(Label(2, "2025-06-01"), NewDay(2, "2025-06-01"))
	require.Len(t, days, 11)

	raw, err := json.Marshal(days)
	require.NoError(t, err)

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	require.NoError(t, err)
	assert.Equal(t, json.Delim('{'), tok)
	var keys []string
	for dec.More() {
		k, err := dec.Token()
		require.NoError(t, err)
		keys = append(keys, k.(string))
		var skip json.RawMessage
		require.NoError(t, dec.Decode(&skip))
	}
	assert.Equal(t, days.Labels(), keys)
	assert.Equal(t, "Day 10 – 2025-06-01", keys[9])
}

func TestDay_Clone(t *testing.T) {
	d := NewDay(1, "2025-06-01")
	d.Meals = append(d.Meals, "Breakfast")
	c := d.Clone()
	c.Meals[0] = "Lunch"
	assert.Equal(t, "Breakfast", d.Meals[0])
}
