package parser

import (
	"strconv"
	"strings"

	"tripsynth/itinerary"
)

type section int

const (
	sectionNone section = iota
	sectionPlan
	sectionTransport
	sectionLodging
	sectionActivities
	sectionMeals
)

func sectionFor(tag Tag) section {
	switch tag {
	case TagPlan:
		return sectionPlan
	case TagTransport:
		return sectionTransport
	case TagLodging:
		return sectionLodging
	case TagActivities:
		return sectionActivities
	case TagMeals:
		return sectionMeals
	}
	return sectionNone
}

// Parser turns an itinerary document into ordered days. It keeps no state
// between calls and is safe for concurrent use.
type Parser struct {
	patterns []Pattern
}

// New builds a parser whose table is extra followed by the default rows, so
// extra dialects take precedence.
func New(extra ...Pattern) *Parser {
	return &Parser{patterns: append(append([]Pattern{}, extra...), DefaultPatterns()...)}
}

var defaultParser = New()

// Parse runs the default parser.
func Parse(doc string) itinerary.Days {
	return defaultParser.Parse(doc)
}

// CountDayHeaders counts the distinct days the default parser finds. A
// repeated header counts once.
func CountDayHeaders(doc string) int {
	return defaultParser.CountDayHeaders(doc)
}

func (p *Parser) match(line string) (Tag, []string, bool) {
	for _, pat := range p.patterns {
		if m := pat.Re.FindStringSubmatch(line); m != nil {
			return pat.Tag, m, true
		}
	}
	return 0, nil, false
}

func splitLines(doc string) []string {
	return strings.Split(strings.ReplaceAll(doc, "\r\n", "\n"), "\n")
}

func (p *Parser) CountDayHeaders(doc string) int {
	return len(p.Parse(doc))
}

func (p *Parser) Parse(doc string) itinerary.Days {
	var (
		days    itinerary.Days
		current *itinerary.Day
		active  = sectionNone
	)

	for _, raw := range splitLines(doc) {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		tag, m, matched := p.match(line)
		if matched && tag == TagDayHeader {
			n, _ := strconv.Atoi(m[1])
			current = itinerary.NewDay(n, m[2])
			days = days.Put(itinerary.Label(n, m[2]), current)
			active = sectionNone
			continue
		}
		if current == nil {
			continue
		}

		if matched {
			rest := cleanItem(m[len(m)-1])
			switch tag {
			case TagDayTotal:
				current.DailyCost = rest
				active = sectionNone
			case TagTripTotal:
				active = sectionNone
			default:
				active = sectionFor(tag)
				if rest != "" {
					appendItem(current, active, rest)
				}
			}
			continue
		}

		if active == sectionNone {
			continue
		}
		if item := cleanItem(line); item != "" {
			appendItem(current, active, item)
		}
	}
	return days
}

func appendItem(d *itinerary.Day, s section, item string) {
	switch s {
	case sectionPlan:
		d.Plan = append(d.Plan, item)
	case sectionTransport:
		d.Transport = append(d.Transport, item)
	case sectionLodging:
		d.Lodging = append(d.Lodging, item)
	case sectionActivities:
		d.Activities = append(d.Activities, item)
	case sectionMeals:
		d.Meals = append(d.Meals, item)
	}
}
