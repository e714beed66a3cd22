package parser

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	vibeRe      = regexp.MustCompile(`(?m)^\s*(?:\*\*)?Vibe(?:\*\*)?:(?:\*\*)?\s*(.+?)\s*$`)
	tripTotalRe = regexp.MustCompile(`(?i)Total Estimated (?:(?:Cost|Budget) for the Trip|Budget|Trip Cost)[^₹\n]*₹\s*([\d,]+(?:\.\d+)?)(?:\s*[-–]\s*₹?\s*([\d,]+(?:\.\d+)?))?`)
)

// ExtractVibe returns the text after the first "Vibe:" line, or "".
func ExtractVibe(doc string) string {
	m := vibeRe.FindStringSubmatch(doc)
	if m == nil {
		return ""
	}
	return strings.Trim(m[1], "*' \"")
}

// ExtractTripTotal reads the document's own trip estimate. A range such as
// "₹40,000 - ₹50,000" yields its midpoint.
func ExtractTripTotal(doc string) (decimal.Decimal, bool) {
	m := tripTotalRe.FindStringSubmatch(doc)
	if m == nil {
		return decimal.Zero, false
	}
	low, err := ParseAmount(m[1])
	if err != nil {
		return decimal.Zero, false
	}
	high := low
	if m[2] != "" {
		if h, err := ParseAmount(m[2]); err == nil {
			high = h
		}
	}
	return low.Add(high).Div(decimal.NewFromInt(2)), true
}

// ParseAmount parses digits with optional thousands separators.
func ParseAmount(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", ""))
}
