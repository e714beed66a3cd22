package mq

import (
	"time"

	"github.com/google/uuid"
)

type Action int

const (
	ActionGenerated Action = iota
	ActionFallback
	ActionCnt
)

func (a Action) String() string {
	switch a {
	case ActionGenerated:
		return "generated"
	case ActionFallback:
		return "fallback"
	}
	return "unknown"
}

// ItineraryMessage announces one assembled itinerary.
type ItineraryMessage struct {
	RequestID   uuid.UUID `json:"request_id"`
	Destination string    `json:"destination"`
	Tier        string    `json:"budget_tier"`
	Strategy    string    `json:"strategy"`
	GrandTotal  string    `json:"grand_total"`
	Fallback    bool      `json:"fallback"`
	Reason      string    `json:"reason,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

func (m ItineraryMessage) GetTopic() uuid.UUID {
	return m.RequestID
}

// Action is the queue a message belongs on.
func (m ItineraryMessage) Action() Action {
	if m.Fallback {
		return ActionFallback
	}
	return ActionGenerated
}

// Matches reports whether a subscription on topic receives msg. uuid.Nil
// subscribes to every topic.
func Matches(topic uuid.UUID, msg TopicProvider) bool {
	return topic == uuid.Nil || topic == msg.GetTopic()
}
