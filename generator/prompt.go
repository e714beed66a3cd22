package generator

import (
	"bytes"
	"strings"
	"text/template"

	"tripsynth/itinerary"
	"tripsynth/pricing"
)

type tierGuide struct {
	Stars     string
	Lodging   string
	Activity  string
	Meals     string
	DailyCeil string
}

var tierGuides = map[pricing.Tier]tierGuide{
	pricing.BudgetFriendly: {
		Stars:     "3",
		Lodging:   "clean 3-star hotels or well reviewed guesthouses",
		Activity:  "free or low-cost sights, walking tours and public beaches",
		Meals:     "local eateries and street food",
		DailyCeil: "₹10,000",
	},
	pricing.MidRange: {
		Stars:     "4",
		Lodging:   "comfortable 4-star hotels",
		Activity:  "a mix of paid attractions, guided tours and free time",
		Meals:     "popular sit-down restaurants with one standout meal a day",
		DailyCeil: "₹25,000",
	},
	pricing.Premium: {
		Stars:     "5",
		Lodging:   "5-star resorts and luxury hotels",
		Activity:  "private tours, premium experiences and spa time",
		Meals:     "fine dining and celebrated restaurants",
		DailyCeil: "₹60,000",
	},
}

const maldivesExample = `**Example for Maldives (Relaxation Trip):**
Vibe: A relaxation trip in Maldives

**Day 1 – 2025-06-23: Arrival and Beach Relaxation**
**Transportation:** Arrival at Velana International Airport, ferry to Hulhumalé (Cost: ~₹200)
**Accommodation:** Hulhumalé beach guesthouse, clean rooms (₹3,000 per night)
**Planned Activities:**
- Morning – Airport Transfer & Check-in: Ferry across to Hulhumalé, check in and freshen up after the flight. Cost: ~₹200
- Afternoon – Hulhumalé Beach: Relax on the white sand beach and swim in the calm turquoise lagoon. Cost: ~₹0
- Evening – Sunset Stroll: Walk the beachfront promenade as the sun sets over the Indian Ocean. Cost: ~₹0
- Night – Stargazing: Lie back on the quiet northern beach and watch the sky away from city lights. Cost: ~₹0
**Meals for the Day:**
- Breakfast – Guesthouse: Simple breakfast of eggs, toast, fruit and fresh juice on the terrace. Cost: ~₹400
- Lunch – Beach Cafe: Vegetarian snacks and fresh coconut water under the palms by the shore. Cost: ~₹300
- Dinner – Local Restaurant: Maldivian vegetable curry with rice and roshi at a family run place. Cost: ~₹500
**Total Estimated Cost for the Day:** ₹1,600`

var promptTemplate = template.Must(template.New("itinerary").Funcs(template.FuncMap{
	"lower": strings.ToLower,
}).Parse(`You are a professional travel assistant. Generate a rich, engaging, clearly structured itinerary for **{{.Req.Destination}}**. The itinerary must focus on {{.Req.Destination}} only and match the trip type and preferences below.

Use exactly this layout for every day:
---
Vibe: A {{lower .TripType}} trip in {{.Req.Destination}}

**Day N – YYYY-MM-DD: <title>**
**Transportation:** <movement for the day>{{if .Req.FlightIncluded}} (flights as "Flight from <city> to <city> (₹<fare> per person)"){{end}}
**Accommodation:** <hotel name>, <stars> stars (₹<price> per night)
**Planned Activities:**
- Morning – <Activity>: <2-3 sentences specific to {{.Req.Destination}}>. Cost: ~₹<amount>
- Afternoon – <Activity>: <2-3 sentences>. Cost: ~₹<amount>
- Evening – <Activity>: <2-3 sentences>. Cost: ~₹<amount>
- Night – <Activity>: <2-3 sentences>. Cost: ~₹<amount>
**Meals for the Day:**
- Breakfast – <Where>: <description>. Cost: ~₹<amount>
- Lunch – <Where>: <description>. Cost: ~₹<amount>
- Dinner – <Where>: <description>. Cost: ~₹<amount>
**Total Estimated Cost for the Day:** ₹<sum of activities and meals per person>
---
End with one line: **Total Estimated Cost for the Trip:** ₹<low> - ₹<high>
{{if .Example}}
{{.Example}}
{{end}}
**Instructions:**
- This itinerary MUST be for "{{.Req.Destination}}" only. Do not mention any other destination.
- Write exactly {{.Days}} day sections, Day 1 to Day {{.Days}}, starting {{.Req.StartDate}} with consecutive dates.
{{- if .Req.FlightIncluded}}
- Day 1 begins with the flight from {{.Origin}}. Day {{.Days}} is the departure day with the return flight to {{.Origin}}.
{{- end}}
- Match the trip type: {{lower .TripType}}.
- Food preference: {{if .Req.FoodPreference}}{{lower .Req.FoodPreference}}{{else}}no restriction{{end}}.
- Budget tier: {{.Tier}}. Stay in {{.Guide.Lodging}}{{if .Stars}} rated {{.Stars}} stars{{else}} rated {{.Guide.Stars}} stars{{end}}. Plan {{.Guide.Activity}}. Eat at {{.Guide.Meals}}. Keep daily per person costs under {{.Guide.DailyCeil}}.
- Plan for exactly {{.Req.PartySize}} traveller(s) sharing {{.Rooms}} room(s).
- Every activity and meal line must end with its per person cost written as "Cost: ~₹<amount>" in INR.

Destination: {{.Req.Destination}}
Trip Type: {{.TripType}}
Food Preference: {{.Req.FoodPreference}}
Duration: {{.Req.Duration}} days
Start Date: {{.Req.StartDate}}
Budget: {{.Tier}}
Travelers: {{.Req.PartySize}}
`))

type promptData struct {
	Req      itinerary.TripRequest
	TripType string
	Tier     pricing.Tier
	Guide    tierGuide
	Stars    string
	Days     int
	Rooms    int
	Origin   string
	Example  string
}

// Prompt renders the generation request for req.
func Prompt(req itinerary.TripRequest) (string, error) {
	tier := req.Tier()
	data := promptData{
		Req:      req,
		TripType: req.TripType,
		Tier:     tier,
		Guide:    tierGuides[tier],
		Stars:    strings.Join(req.HotelStars, " or "),
		Days:     req.ExpectedDays(),
		Rooms:    req.Rooms(),
		Origin:   req.Origin(),
	}
	if data.TripType == "" {
		data.TripType = "Leisure"
	}
	if strings.EqualFold(strings.TrimSpace(req.Destination), "maldives") && strings.EqualFold(req.TripType, "relaxation") {
		data.Example = maldivesExample
	}

	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
