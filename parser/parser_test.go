package parser

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripsynth/libs/diff"
)

const boldDoc = `Vibe: Sun-soaked and slow
Here is your plan.

**Day 1 – 2025-06-11: Arrival**
**Transportation:**
- Taxi from airport to hotel (Cost: ~₹1,200)
**Accommodation:** Taj Holiday Village, 4 stars (₹9,500/night)
**Planned Activities:**
- Morning: Check in and rest (Cost: ₹0)
- Afternoon: Calangute beach walk (Cost: ₹500)
**Meals for the Day:**
- Breakfast: On the flight (Cost: ₹600)
- Lunch: Fish thali (Cost: ₹800)
**Total Estimated Cost for the Day:** ₹12,600

**Day 2 – 2025-06-12: Old Goa**
**Planned Activities:**
1. **Basilica of Bom Jesus** tour (Cost: ₹300)
**Meals for the Day:**
* Dinner: Prawn curry (Cost: ₹1,100)
**Total Estimated Cost for the Trip:** ₹40,000 - ₹50,000
`

const plainDoc = "Day 1 – 2025-06-11\r\n" +
	"Plan:\r\n" +
	"- Settle in\r\n" +
	"Transport: Airport cab (Cost: ₹900)\r\n" +
	"Lodging:\r\n" +
	"- Mid-range hotel (₹6,000 per night)\r\n" +
	"Activities:\r\n" +
	"- Morning: Beach (Cost: ₹750)\r\n" +
	"Meals:\r\n" +
	"- Breakfast: Cafe (Cost: ₹400)\r\n" +
	"Daily Cost: ₹8,050\r\n" +
	"Day 2 – 2025-06-12\r\n" +
	"Activities:\r\n" +
	"- Evening: Market (Cost: ₹300)\r\n"

func TestParse_BoldDialect(t *testing.T) {
	days := Parse(boldDoc)
	require.Len(t, days, 2)
	assert.Equal(t, []string{"Day 1 – 2025-06-11", "Day 2 – 2025-06-12"}, days.Labels())

	d1, ok := days.Get("Day 1 – 2025-06-11")
	require.True(t, ok)
	assert.Equal(t, 1, d1.Index)
	assert.Equal(t, "2025-06-11", d1.Date)
	assert.Equal(t, []string{"Taxi from airport to hotel (Cost: ~₹1,200)"}, d1.Transport)
	assert.Equal(t, []string{"Taj Holiday Village, 4 stars (₹9,500/night)"}, d1.Lodging)
	assert.Equal(t, []string{
		"Morning: Check in and rest (Cost: ₹0)",
		"Afternoon: Calangute beach walk (Cost: ₹500)",
	}, d1.Activities)
	assert.Len(t, d1.Meals, 2)
	assert.Equal(t, "₹12,600", d1.DailyCost)

	d2, _ := days.Get("Day 2 – 2025-06-12")
	assert.Equal(t, []string{"Basilica of Bom Jesus tour (Cost: ₹300)"}, d2.Activities)
	assert.Equal(t, []string{"Dinner: Prawn curry (Cost: ₹1,100)"}, d2.Meals)
	assert.Empty(t, d2.Lodging)
}

func TestParse_PlainDialectCRLF(t *testing.T) {
	days := Parse(plainDoc)
	require.Len(t, days, 2)

	d1 := days[0].Day
	assert.Equal(t, []string{"Settle in"}, d1.Plan)
	assert.Equal(t, []string{"Airport cab (Cost: ₹900)"}, d1.Transport)
	assert.Equal(t, []string{"Mid-range hotel (₹6,000 per night)"}, d1.Lodging)
	assert.Equal(t, []string{"Morning: Beach (Cost: ₹750)"}, d1.Activities)
	assert.Equal(t, []string{"Breakfast: Cafe (Cost: ₹400)"}, d1.Meals)
	assert.Equal(t, "₹8,050", d1.DailyCost)

	assert.Equal(t, []string{"Evening: Market (Cost: ₹300)"}, days[1].Day.Activities)
}

func TestParse_HeadingDialect(t *testing.T) {
	doc := "## Day 1 – 2025-01-01: Arrival\n### Activities:\n- Walk (Cost: ₹100)\n"
	days := Parse(doc)
	require.Len(t, days, 1)
	assert.Equal(t, "Day 1 – 2025-01-01", days[0].Label)
	assert.Equal(t, []string{"Walk (Cost: ₹100)"}, days[0].Day.Activities)
}

func TestParse_DayHeaderVariants(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"bold whole line", "**Day 1 – 2025-06-11: Arrival**"},
		{"bold closes after colon", "**Day 1 – 2025-06-11:** Arrival in Goa"},
		{"bold closes before colon", "**Day 1 – 2025-06-11**: Arrival"},
		{"bold date only", "**Day 1 - 2025-06-11**"},
		{"heading and bold", "## **Day 1 – 2025-06-11: Arrival**"},
		{"bullet and bold", "* **Day 1 – 2025-06-11: Arrival**"},
		{"heading", "### Day 1 — 2025-06-11: Arrival"},
		{"plain with colon", "Day 1 – 2025-06-11: Arrival"},
		{"plain without colon", "Day 1 – 2025-06-11 Arrival"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := tt.header + "\nActivities:\n- Morning: Beach (Cost: ₹100)\n"
			days := Parse(doc)
			require.Len(t, days, 1)
			assert.Equal(t, "Day 1 – 2025-06-11", days[0].Label)
			assert.Equal(t, []string{"Morning: Beach (Cost: ₹100)"}, days[0].Day.Activities)
			assert.Equal(t, 1, CountDayHeaders(doc))
		})
	}
}

func TestParse_DayMentionInProseIsNotAHeader(t *testing.T) {
	doc := "Day 1 – 2025-06-11\nActivities:\n- On Day 2 – 2025-06-12 we leave early (Cost: ₹100)\n"
	days := Parse(doc)
	require.Len(t, days, 1)
	assert.Len(t, days[0].Day.Activities, 1)
}

func TestCountDayHeaders_RepeatedLabelCountsOnce(t *testing.T) {
	doc := "Day 1 – 2025-06-11\nDay 1 – 2025-06-11\nDay 2 – 2025-06-12\n"
	assert.Equal(t, 2, CountDayHeaders(doc))
	assert.Len(t, Parse(doc), CountDayHeaders(doc))
}

func TestParse_HeaderCountMatchesEntries(t *testing.T) {
	var b strings.Builder
	for i := 1; i <= 12; i++ {
		fmt.Fprintf(&b, "**Day %d – 2025-03-%02d**\nActivities:\n- Something (Cost: ₹100)\n", i, i)
	}
	doc := b.String()

	assert.Equal(t, 12, CountDayHeaders(doc))
	days := Parse(doc)
	require.Len(t, days, 12)
	assert.Equal(t, "Day 12 – 2025-03-12", days[11].Label)
	assert.Equal(t, "Day 10 – 2025-03-10", days[9].Label)
}

func TestParse_Idempotent(t *testing.T) {
	first := Parse(boldDoc)
	second := Parse(boldDoc)

	cl, err := diff.Changes(first, second)
	require.NoError(t, err)
	assert.Empty(t, cl)
}

func TestParse_DropsStrayLines(t *testing.T) {
	doc := `Intro text that is not a day
- stray bullet
Day 1 – 2025-06-11
Just some prose before any section.
Meals:
- Lunch (Cost: ₹500)
Total Estimated Cost for the Day: ₹500
- after the total, no active section
`
	days := Parse(doc)
	require.Len(t, days, 1)
	d := days[0].Day
	assert.Empty(t, d.Plan)
	assert.Equal(t, []string{"Lunch (Cost: ₹500)"}, d.Meals)
	assert.Equal(t, "₹500", d.DailyCost)
}

func TestParse_RepeatedHeaderReplaces(t *testing.T) {
	doc := "Day 1 – 2025-06-11\nMeals:\n- A\nDay 1 – 2025-06-11\nMeals:\n- B\n"
	days := Parse(doc)
	require.Len(t, days, 1)
	assert.Equal(t, []string{"B"}, days[0].Day.Meals)
}

func TestParse_Empty(t *testing.T) {
	assert.Empty(t, Parse(""))
	assert.Equal(t, 0, CountDayHeaders("no days here"))
}

func TestParser_ExtraPatternTakesPrecedence(t *testing.T) {
	p := New(Pattern{Tag: TagMeals, Re: regexp.MustCompile(`(?i)^Food\s*:\s*(.*)$`)})
	doc := "Day 1 – 2025-06-11\nFood: Street snacks\n- Vada pav\n"
	days := p.Parse(doc)
	require.Len(t, days, 1)
	assert.Equal(t, []string{"Street snacks", "Vada pav"}, days[0].Day.Meals)
	assert.Empty(t, Parse(doc)[0].Day.Meals)
}

func TestCleanItem(t *testing.T) {
	tests := map[string]string{
		"- **Lunch:** thali":  "Lunch: thali",
		"* • nested bullet":   "nested bullet",
		"2. Fort   visit":     "Fort visit",
		"plain":               "plain",
		"   ":                 "",
		"__underlined__ text": "underlined text",
	}
	for in, want := range tests {
		assert.Equal(t, want, cleanItem(in), in)
	}
}

func TestExtractVibe(t *testing.T) {
	assert.Equal(t, "Sun-soaked and slow", ExtractVibe(boldDoc))
	assert.Equal(t, "Misty", ExtractVibe("**Vibe:** Misty\nDay 1 – 2025-01-01"))
	assert.Equal(t, "", ExtractVibe("Vibes are good"))
}

func TestExtractTripTotal(t *testing.T) {
	tests := []struct {
		doc  string
		want string
		ok   bool
	}{
		{boldDoc, "45000", true},
		{"Total Estimated Budget: ₹44,000", "44000", true},
		{"Total Estimated Trip Cost: ₹1,000.50", "1000.5", true},
		{"Total Estimated Cost for the Day: ₹500", "0", false},
		{"nothing", "0", false},
	}
	for _, tt := range tests {
		got, ok := ExtractTripTotal(tt.doc)
		assert.Equal(t, tt.ok, ok, tt.doc)
		assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "%s: got %s", tt.doc, got)
	}
}
