package parser

import (
	"regexp"
	"strings"
)

type Tag int

const (
	TagDayHeader Tag = iota
	TagPlan
	TagTransport
	TagLodging
	TagActivities
	TagMeals
	TagDayTotal
	TagTripTotal
)

func (t Tag) String() string {
	switch t {
	case TagDayHeader:
		return "day"
	case TagPlan:
		return "plan"
	case TagTransport:
		return "transport"
	case TagLodging:
		return "lodging"
	case TagActivities:
		return "activities"
	case TagMeals:
		return "meals"
	case TagDayTotal:
		return "day-total"
	case TagTripTotal:
		return "trip-total"
	}
	return "unknown"
}

// Pattern is one row of the dialect table.
//
// Day header patterns capture (day number, date) as their first two groups. Section header patterns
// capture the trailing content of the header line as their last group.
type Pattern struct {
	Tag Tag
	Re  *regexp.Regexp
}

const dash = `\s*[–—-]\s*`

// dayHeader matches from the start of the line only. After the date it takes
// an optional closing "**", an optional colon and any title, so
// "**Day 1 – 2025-06-11:** Arrival" and "Day 1 – 2025-06-11 Arrival" both count.
func dayHeader(prefix string) *regexp.Regexp {
	return regexp.MustCompile(`^` + prefix + `Day\s+(\d+)` + dash + `(\d{4}-\d{2}-\d{2})(?:\s*\*\*)?(?:\s*:)?(?:\s*\*\*)?(?:\s+.*)?$`)
}

// sectionHeader accepts "Name: rest", "**Name:** rest", "**Name**: rest", with
// an optional markdown heading or bullet in front.
func sectionHeader(names ...string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)^(?:#{1,6}\s*)?(?:[*\-•+]\s+)?(?:\*\*)?\s*(?:` + strings.Join(names, "|") + `)\s*(?:\*\*)?\s*:\s*(?:\*\*)?\s*(.*)$`)
}

// DefaultPatterns is the built-in dialect table. Order matters: the first
// matching row wins.
func DefaultPatterns() []Pattern {
	return []Pattern{
		// **Day 1 – 2025-06-11: Arrival** and **Day 1 – 2025-06-11:** Arrival
		{TagDayHeader, dayHeader(`\*\*\s*`)},
		// ## **Day 1 – 2025-06-11: Arrival**
		{TagDayHeader, dayHeader(`#{1,6}\s*\*\*\s*`)},
		// * **Day 1 – 2025-06-11: Arrival**
		{TagDayHeader, dayHeader(`[*\-•+]\s+\*\*\s*`)},
		// ## Day 1 – 2025-06-11: Arrival
		{TagDayHeader, dayHeader(`#{1,6}\s*`)},
		// Day 1 – 2025-06-11: Arrival, or with no colon at all
		{TagDayHeader, dayHeader(``)},

		{TagDayTotal, sectionHeader(`Total Estimated Cost for the Day`, `Total Cost for the Day`, `Total Daily Cost`, `Daily Budget`, `Daily Cost`, `Daily Total`)},
		{TagTripTotal, sectionHeader(`Total Estimated (?:Cost|Budget) for the Trip`, `Total Estimated Budget`, `Total Trip Cost`)},
		{TagTransport, sectionHeader(`Transportation`, `Transport`)},
		{TagLodging, sectionHeader(`Accommodation`, `Lodging`, `Hotel`)},
		{TagActivities, sectionHeader(`Planned Activities`, `Activities`)},
		{TagMeals, sectionHeader(`Meals for the Day`, `Meals`)},
		{TagPlan, sectionHeader(`Day Plan`, `Plan`, `Overview`)},
	}
}

var (
	bulletRe   = regexp.MustCompile(`^(?:[*\-•+]|\d+[.)])\s+`)
	boldRe     = regexp.MustCompile(`\*\*|__`)
	spaceRunRe = regexp.MustCompile(`[ \t]+`)
)

// cleanItem strips bullet markers and bold decoration from a member line.
func cleanItem(line string) string {
	s := strings.TrimSpace(line)
	for {
		stripped := bulletRe.ReplaceAllString(s, "")
		if stripped == s {
			break
		}
		s = strings.TrimSpace(stripped)
	}
	s = boldRe.ReplaceAllString(s, "")
	s = spaceRunRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
