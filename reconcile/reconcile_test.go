package reconcile

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tripsynth/itinerary"
	"tripsynth/oracle"
	"tripsynth/parser"
	"tripsynth/pricing"
)

type mockOracle struct {
	mock.Mock
}

func (m *mockOracle) Complete(ctx context.Context, prompt string, _ ...oracle.Option) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func midRangeRequest(duration, party int) itinerary.TripRequest {
	return itinerary.TripRequest{
		Destination: "Goa",
		StartDate:   "2025-06-11",
		Duration:    duration,
		PartySize:   party,
		Budget:      "mid-range",
	}
}

func TestReconcile_AllDefaultsEndToEnd(t *testing.T) {
	days := parser.Parse("Day 1 – 2025-06-11\nDay 2 – 2025-06-12\n")
	require.Len(t, days, 2)

	e := New(nil, nil, nil)
	trip := e.Reconcile(context.Background(), days, midRangeRequest(2, 2))

	require.Len(t, trip.Days, 2)
	for _, entry := range trip.Days {
		assert.True(t, dec("5000").Equal(entry.Day.DayTotal), entry.Label)
		assert.Equal(t, "₹5,000", entry.Day.DailyCost)
		assert.Len(t, entry.Day.Activities, 4)
		assert.Len(t, entry.Day.Meals, 3)
	}
	assert.True(t, dec("24000").Equal(trip.Costs.LodgingCost))
	assert.True(t, dec("10000").Equal(trip.Costs.PerPersonDailyTotal))
	assert.True(t, trip.Costs.FlightCost.IsZero())
	assert.True(t, trip.Costs.TransferCost.IsZero())
	assert.True(t, dec("44000").Equal(trip.Costs.GrandTotal), trip.Costs.GrandTotal.String())

	// the parsed input stays untouched
	assert.Empty(t, days[0].Day.Activities)
}

func TestReconcileDay_FirstMatchWins(t *testing.T) {
	day := itinerary.NewDay(1, "2025-06-11")
	day.Activities = []string{
		"Morning: Walk the Fontainhas quarter and stop at the old chapel for photographs (Cost: ₹100)",
		"Morning: Second morning mention that should be ignored completely by the engine (Cost: ₹900)",
	}

	e := New(nil, nil, nil)
	_, tier := pricing.DefaultTable().Lookup("mid-range")
	out, total := e.ReconcileDay(context.Background(), day, tier, 1, ConstraintsFor(midRangeRequest(2, 1)))

	assert.Contains(t, out.Activities[0], "Fontainhas")
	for _, line := range out.Activities {
		assert.NotContains(t, line, "Second morning")
	}
	// 100 + 750*3 + 2000
	assert.True(t, dec("4350").Equal(total), total.String())
}

func TestPick_PrefersLeadingSlotName(t *testing.T) {
	lines := []string{
		"Afternoon: Siesta by the pool after a lazy morning (Cost: ₹300)",
		"Evening: Sunset cruise on the Mandovi (Cost: ₹900)",
		"Late dinner cruise in the night air (Cost: ₹1,100)",
	}
	got := pick(activitySlots, lines)
	assert.Equal(t, []string{"", lines[0], lines[1], lines[2]}, got)
}

func TestReconcileDay_MentionDoesNotStealSlot(t *testing.T) {
	day := itinerary.NewDay(1, "2025-06-11")
	day.Activities = []string{
		"Afternoon: Siesta by the pool and a slow walk to the beach after a lazy morning (Cost: ₹300)",
	}

	e := New(nil, nil, nil)
	_, tier := pricing.DefaultTable().Lookup("mid-range")
	out, total := e.ReconcileDay(context.Background(), day, tier, 1, ConstraintsFor(midRangeRequest(2, 1)))

	assert.NotContains(t, out.Activities[0], "Siesta")
	assert.Contains(t, out.Activities[1], "Siesta")
	// 750 + 300 + 750 + 750 + 2000
	assert.True(t, dec("4550").Equal(total), total.String())
}

func TestReconcileDay_DailyCostExcludesTripLevelLines(t *testing.T) {
	day := itinerary.NewDay(1, "2025-06-11")
	day.Transport = []string{"Taxi to the hotel (Cost: ~₹1,500)"}
	day.Lodging = []string{"Sea view resort (₹11,000 per night)"}
	day.Activities = []string{
		"Morning: Spice plantation tour with a guided lunch and an elephant sanctuary visit (Cost: ₹1,200)",
		"Afternoon: Dudhsagar falls jeep safari through the forest reserve and a swim (Cost: ~₹2,000)",
	}
	day.Meals = []string{
		"Dinner: Beach shack seafood platter with kingfish, prawns and a local feni cocktail (Cost: ₹1,800)",
	}

	e := New(nil, nil, nil)
	_, tier := pricing.DefaultTable().Lookup("mid-range")
	out, total := e.ReconcileDay(context.Background(), day, tier, 1, ConstraintsFor(midRangeRequest(2, 2)))

	// 1200 + 2000 + 750 + 750 + 666.67 + 666.67 + 1800
	assert.True(t, dec("7833.34").Equal(total), total.String())
	assert.True(t, out.DayTotal.Equal(total))

	var sum decimal.Decimal
	for _, line := range append(append([]string{}, out.Activities...), out.Meals...) {
		amount, _, ok := costToken(line)
		require.True(t, ok, line)
		sum = sum.Add(amount)
	}
	assert.True(t, sum.Equal(total))
	assert.Equal(t, day.Transport, out.Transport)
}

func TestReconcile_LodgingBand(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		price string
	}{
		{"in band", "Hotel Mandovi (₹15,000 per night)", "15000"},
		{"at band edge", "Hotel Mandovi (₹7,000 per night)", "7000"},
		{"below band", "Hostel bunk (₹6,999 per night)", "12000"},
		{"above band", "Palace suite (₹45,000 per night)", "12000"},
		{"no price", "A comfortable hotel near the beach", "12000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			day := itinerary.NewDay(1, "2025-06-11")
			day.Lodging = []string{tt.line}
			days := itinerary.Days{}.Put(itinerary.Label(1, "2025-06-11"), day)

			trip := New(nil, nil, nil).Reconcile(context.Background(), days, midRangeRequest(2, 3))
			require.NotNil(t, trip.Hotel)
			assert.True(t, dec(tt.price).Equal(trip.Hotel.PricePerNight), trip.Hotel.PricePerNight.String())
			assert.Equal(t, 2, trip.Hotel.Rooms)
			want := dec(tt.price).Mul(decimal.NewFromInt(4))
			assert.True(t, want.Equal(trip.Costs.LodgingCost), trip.Costs.LodgingCost.String())
		})
	}
}

func TestReconcile_FlightsAndTransfers(t *testing.T) {
	req := midRangeRequest(1, 2)
	req.FlightIncluded = true

	d1 := itinerary.NewDay(1, "2025-06-11")
	d1.Transport = []string{
		"Flight from Hyderabad to Goa (₹5,500 per person)",
		"Airport taxi to hotel (Cost: ₹1,000)",
	}
	d2 := itinerary.NewDay(2, "2025-06-12")
	d2.Transport = []string{"Taxi to airport (Cost: ₹800)"}
	d2.Meals = []string{"Breakfast: Hotel buffet with fresh fruit, dosa and filter coffee before checkout (Cost: ₹500)"}
	days := itinerary.Days{}.
		Put(itinerary.Label(1, d1.Date), d1).
		Put(itinerary.Label(2, d2.Date), d2)

	trip := New(nil, nil, nil).Reconcile(context.Background(), days, req)

	// (5500 outbound + 12000 default return) * 2
	assert.True(t, dec("35000").Equal(trip.Costs.FlightCost), trip.Costs.FlightCost.String())
	require.Len(t, trip.Flights, 2)
	assert.Equal(t, "Goa", trip.Flights[0].Arrival)
	assert.Equal(t, "2025-06-12", trip.Flights[1].Date)

	assert.True(t, dec("1800").Equal(trip.Costs.TransferCost))
	assert.Len(t, trip.Transfers, 2)

	// departure day: only the explicit breakfast token counts
	last := trip.Days[1].Day
	assert.True(t, last.TravelDay)
	assert.True(t, dec("500").Equal(last.DayTotal), last.DayTotal.String())
	assert.Equal(t, 1, trip.Hotel.Nights)

	// 35000 + 12000 + (5000 + 500) * 2 + 1800
	assert.True(t, dec("59800").Equal(trip.Costs.GrandTotal), trip.Costs.GrandTotal.String())
}

func TestReconcile_FlightsDefaultWhenAbsent(t *testing.T) {
	req := midRangeRequest(2, 3)
	req.FlightIncluded = true
	days := parser.Parse("Day 1 – 2025-06-11\nDay 2 – 2025-06-12\nDay 3 – 2025-06-13\n")

	trip := New(nil, nil, nil).Reconcile(context.Background(), days, req)
	assert.True(t, dec("72000").Equal(trip.Costs.FlightCost), trip.Costs.FlightCost.String())
}

func TestReconcileDay_RewritesShortNarratives(t *testing.T) {
	m := &mockOracle{}
	m.On("Complete", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "morning plan item")
	})).Return("Wander through the Saturday night market at Arpora and taste street food\nfrom the stalls.", nil).Once()
	m.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("quota")).Maybe()

	day := itinerary.NewDay(1, "2025-06-11")
	day.Activities = []string{"Morning: Market (Cost: ~₹400)"}

	e := New(nil, m, nil)
	_, tier := pricing.DefaultTable().Lookup("mid-range")
	out, total := e.ReconcileDay(context.Background(), day, tier, 1, ConstraintsFor(midRangeRequest(2, 1)))

	assert.Equal(t, "Morning: Wander through the Saturday night market at Arpora and taste street food from the stalls. Cost: ~₹400", out.Activities[0])
	// 400 + 750*3 + 2000
	assert.True(t, dec("4650").Equal(total), total.String())
	m.AssertExpectations(t)
}

func TestReconcileDay_RewriteKeepsCountedCost(t *testing.T) {
	m := &mockOracle{}
	m.On("Complete", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "morning plan item")
	})).Return("A long and lovely guided walk along Calangute beach at sunrise with a local naturalist. Cost: ~₹2,500", nil).Once()

	day := itinerary.NewDay(1, "2025-06-11")
	day.Activities = []string{"Morning: beach walk. Cost: ~₹100"}

	e := New(nil, m, nil)
	_, tier := pricing.DefaultTable().Lookup("mid-range")
	out, total := e.ReconcileDay(context.Background(), day, tier, 1, ConstraintsFor(midRangeRequest(2, 1)))

	assert.Equal(t, "Morning: A long and lovely guided walk along Calangute beach at sunrise with a local naturalist. Cost: ~₹100", out.Activities[0])
	// 100 + 750*3 + 2000
	assert.True(t, dec("4350").Equal(total), total.String())

	var sum decimal.Decimal
	for _, line := range append(append([]string{}, out.Activities...), out.Meals...) {
		amount, _, ok := costToken(line)
		require.True(t, ok, line)
		sum = sum.Add(amount)
	}
	assert.True(t, sum.Equal(total), sum.String())
	m.AssertExpectations(t)
}

func TestReconcileDay_RewriteErrorKeepsLine(t *testing.T) {
	m := &mockOracle{}
	m.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("quota"))

	day := itinerary.NewDay(1, "2025-06-11")
	day.Meals = []string{"Lunch: Thali (Cost: ₹350)"}

	e := New(nil, m, nil)
	_, tier := pricing.DefaultTable().Lookup("budget-friendly")
	out, _ := e.ReconcileDay(context.Background(), day, tier, 1, ConstraintsFor(midRangeRequest(2, 1)))
	assert.Equal(t, "Lunch: Thali (Cost: ₹350)", out.Meals[1])
}

func TestFallback_Nowhereland(t *testing.T) {
	req := midRangeRequest(3, 2)
	req.Destination = "Nowhereland"

	trip := New(nil, nil, nil).Fallback(req, "destination missing after 2 attempts")
	require.Len(t, trip.Days, 1)
	assert.Equal(t, "Day 1 – 2025-06-11", trip.Days[0].Label)

	d := trip.Days[0].Day
	assert.Equal(t, "destination missing after 2 attempts", d.FailureReason)
	assert.Len(t, d.Activities, 4)
	assert.Len(t, d.Meals, 3)
	assert.True(t, dec("5000").Equal(d.DayTotal))

	// lodging 12000*3*1 + 5000*3*2
	assert.True(t, dec("66000").Equal(trip.Costs.GrandTotal), trip.Costs.GrandTotal.String())
	assert.Empty(t, trip.Flights)
}

func TestFormatINR(t *testing.T) {
	tests := map[string]string{
		"0":       "0",
		"750":     "750",
		"666.67":  "666.67",
		"12000":   "12,000",
		"125000":  "1,25,000",
		"1234567": "12,34,567",
		"5000.50": "5,000.50",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatINR(dec(in)), in)
	}
}
