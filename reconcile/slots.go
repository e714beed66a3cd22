package reconcile

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"tripsynth/parser"
)

type slotKind int

const (
	activitySlot slotKind = iota
	mealSlot
)

type slot struct {
	Name string
	Kind slotKind
	lead *regexp.Regexp
	re   *regexp.Regexp
}

func newSlot(name string, kind slotKind) slot {
	return slot{
		Name: name,
		Kind: kind,
		lead: regexp.MustCompile(`(?i)^[\s*\-•+#(]*` + name + `\b`),
		re:   regexp.MustCompile(`(?i)\b` + name + `\b`),
	}
}

var (
	activitySlots = []slot{
		newSlot("Morning", activitySlot),
		newSlot("Afternoon", activitySlot),
		newSlot("Evening", activitySlot),
		newSlot("Night", activitySlot),
	}
	mealSlots = []slot{
		newSlot("Breakfast", mealSlot),
		newSlot("Lunch", mealSlot),
		newSlot("Dinner", mealSlot),
	}
)

var (
	// Cost: ~₹1,200.50
	costTokenRe = regexp.MustCompile(`(?i)Cost:\s*~?\s*₹\s*(\d+(?:,\d+)*(?:\.\d+)?)`)
	// any rupee amount, used for lodging and flight lines that rarely say "Cost:"
	rupeeRe  = regexp.MustCompile(`₹\s*(\d+(?:,\d+)*(?:\.\d+)?)`)
	flightRe = regexp.MustCompile(`(?i)\b(?:flights?|airline|fly)\b`)
)

// minNarrativeWords is the word count below which a slot line is rewritten.
const minNarrativeWords = 10

// pick returns, for every slot, the first unused line for it. Lines that open
// with the slot name are claimed before lines that only mention it, so
// "Afternoon: ... after a lazy morning" stays with Afternoon.
func pick(slots []slot, lines []string) []string {
	used := make([]bool, len(lines))
	found := make([]bool, len(slots))
	out := make([]string, len(slots))
	passes := []func(slot) *regexp.Regexp{
		func(s slot) *regexp.Regexp { return s.lead },
		func(s slot) *regexp.Regexp { return s.re },
	}
	for _, re := range passes {
		for i, s := range slots {
			if found[i] {
				continue
			}
			for j, line := range lines {
				if used[j] || !re(s).MatchString(line) {
					continue
				}
				used[j] = true
				found[i] = true
				out[i] = line
				break
			}
		}
	}
	return out
}

// costToken finds the first cost token in line. It returns the amount and the
// token text exactly as written.
func costToken(line string) (decimal.Decimal, string, bool) {
	loc := costTokenRe.FindStringSubmatchIndex(line)
	if loc == nil {
		return decimal.Zero, "", false
	}
	amount, err := parser.ParseAmount(line[loc[2]:loc[3]])
	if err != nil {
		return decimal.Zero, "", false
	}
	return amount, line[loc[0]:loc[1]], true
}

func rupeeAmount(line string) (decimal.Decimal, bool) {
	if amount, _, ok := costToken(line); ok {
		return amount, true
	}
	m := rupeeRe.FindStringSubmatch(line)
	if m == nil {
		return decimal.Zero, false
	}
	amount, err := parser.ParseAmount(m[1])
	if err != nil {
		return decimal.Zero, false
	}
	return amount, true
}

// narrativeWords counts the words ahead of the cost token.
func narrativeWords(line string) int {
	if loc := costTokenRe.FindStringIndex(line); loc != nil {
		line = line[:loc[0]]
	}
	return len(strings.Fields(strings.Trim(line, " (")))
}

// FormatINR renders an amount with Indian digit grouping, e.g. 1,25,000.
func FormatINR(d decimal.Decimal) string {
	s := d.StringFixed(2)
	s = strings.TrimSuffix(s, ".00")
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	if len(intPart) > 3 {
		head, tail := intPart[:len(intPart)-3], intPart[len(intPart)-3:]
		var groups []string
		for len(head) > 2 {
			groups = append([]string{head[len(head)-2:]}, groups...)
			head = head[:len(head)-2]
		}
		if head != "" {
			groups = append([]string{head}, groups...)
		}
		intPart = strings.Join(groups, ",") + "," + tail
	}
	if neg {
		intPart = "-" + intPart
	}
	return intPart + frac
}

func costSuffix(d decimal.Decimal) string {
	return fmt.Sprintf("Cost: ~₹%s", FormatINR(d))
}

func placeholder(s slot, destination string, amount decimal.Decimal, travelDay bool) string {
	if travelDay {
		return fmt.Sprintf("%s: Departure day, keep this time free for packing, checkout and the transfer to the airport. %s",
			s.Name, costSuffix(amount))
	}
	if s.Kind == mealSlot {
		return fmt.Sprintf("%s: Try a well reviewed local restaurant in %s and order a regional speciality of the house. %s",
			s.Name, destination, costSuffix(amount))
	}
	return fmt.Sprintf("%s: Explore a popular local sight or neighbourhood in %s at an easy pace with time for photos. %s",
		s.Name, destination, costSuffix(amount))
}
