// Package vibe labels a trip with a one-word vibe and a mood/intent pair.
package vibe

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"tripsynth/oracle"
)

const (
	DefaultMood   = "relaxing"
	DefaultIntent = "beach trip"
)

var (
	Moods   = []string{"romantic", "lively", "adventurous", "relaxing", "cultural"}
	Intents = []string{"romantic trip", "beach trip", "adventure trip", "cultural exploration", "city exploration"}
)

type Analyzer struct {
	oracle oracle.Oracle
	logger *slog.Logger
}

// New builds an analyzer. With a nil oracle every answer is the fallback.
func New(o oracle.Oracle, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{oracle: o, logger: logger}
}

func normalizeTripType(tripType string) string {
	t := strings.ToLower(strings.TrimSpace(tripType))
	if t == "" {
		return DefaultMood
	}
	return t
}

// Vibe returns a "Vibe: <word>" line for the trip.
func (a *Analyzer) Vibe(ctx context.Context, tripType, destination string) string {
	t := normalizeTripType(tripType)
	fallback := "Vibe: " + t
	if a.oracle == nil {
		return fallback
	}

	prompt := fmt.Sprintf(`You are a travel expert who crafts concise vibe labels.
Create a short vibe sentence in the format: Vibe: [vibe_word]
It should match the mood of a %s trip to %s.
The vibe must be a single word like 'romantic', 'adventurous', 'relaxing'.
Example: Vibe: romantic
Only return the sentence starting with 'Vibe:'.`, t, strings.TrimSpace(destination))

	resp, err := a.oracle.Complete(ctx, prompt, oracle.WithMaxTokens(20), oracle.WithTemperature(0.7))
	if err != nil {
		a.logger.Warn("vibe generation failed", "err", err)
		return fallback
	}
	resp = strings.TrimSpace(resp)
	if !strings.HasPrefix(strings.ToLower(resp), "vibe:") {
		return fallback
	}
	line, _, _ := strings.Cut(resp, "\n")
	return strings.TrimSpace(line)
}

type moodIntent struct {
	Mood   string `json:"mood"`
	Intent string `json:"intent"`
}

// MoodIntent classifies the trip type. Unknown or malformed answers fall
// back to DefaultMood and DefaultIntent.
func (a *Analyzer) MoodIntent(ctx context.Context, tripType string) (string, string) {
	if a.oracle == nil {
		return DefaultMood, DefaultIntent
	}

	prompt := fmt.Sprintf(`You are a travel expert helping match a user's trip type to their mood and intent.

Trip Type: %s

Respond with a valid JSON object with the following keys:
- mood: One of %s
- intent: One of %s

Only respond with JSON. No explanations.`, strings.TrimSpace(tripType), quoteList(Moods), quoteList(Intents))

	resp, err := a.oracle.Complete(ctx, prompt, oracle.WithTemperature(0.2), oracle.WithMaxTokens(150))
	if err != nil {
		a.logger.Warn("mood detection failed", "err", err)
		return DefaultMood, DefaultIntent
	}

	var mi moodIntent
	if err := json.Unmarshal([]byte(stripFence(resp)), &mi); err != nil {
		a.logger.Warn("mood detection returned invalid json", "err", err)
		return DefaultMood, DefaultIntent
	}
	mood, intent := strings.ToLower(strings.TrimSpace(mi.Mood)), strings.ToLower(strings.TrimSpace(mi.Intent))
	if !slices.Contains(Moods, mood) {
		mood = DefaultMood
	}
	if !slices.Contains(Intents, intent) {
		intent = DefaultIntent
	}
	return mood, intent
}

// stripFence removes a ```json fence around the answer, which Gemini adds often.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func quoteList(items []string) string {
	q := make([]string, len(items))
	for i, it := range items {
		q[i] = "'" + it + "'"
	}
	return "[" + strings.Join(q, ", ") + "]"
}
