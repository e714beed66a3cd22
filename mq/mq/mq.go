package mq

import "github.com/google/uuid"

// TopicProvider is implemented by messages routed by topic id.
type TopicProvider interface {
	GetTopic() uuid.UUID
}

type ItineraryMessageQueueWrapper interface {
	GetItineraryMessageQueue(action Action) ItineraryMessageQueue
}

type ItineraryMessageQueue interface {
	GetAction() Action
	Publish(msg ItineraryMessage) error
	Subscribe(topic uuid.UUID) (uuid.UUID, <-chan ItineraryMessage, error)
	DeSubscribe(id uuid.UUID) error
}

// Publish routes msg to the queue for its action.
func Publish(w ItineraryMessageQueueWrapper, msg ItineraryMessage) error {
	q := w.GetItineraryMessageQueue(msg.Action())
	if q == nil {
		return ErrNoQueue
	}
	return q.Publish(msg)
}

type QueueError string

func (e QueueError) Error() string {
	return string(e)
}

const (
	ErrQueueFull   QueueError = "message queue is full"
	ErrQueueClosed QueueError = "message queue is closed"
	ErrNoQueue     QueueError = "no queue for action"
)
