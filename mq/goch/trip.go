package goch

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"tripsynth/mq/mq"
)

type subscriber[M any] struct {
	topic uuid.UUID
	ch    chan M
}

// fanOutQueueCore copies every published message to each subscriber whose
// topic matches. Slow subscribers miss messages rather than block publishers.
type fanOutQueueCore[M mq.TopicProvider] struct {
	publishChan chan M
	bufferSize  int

	mu          sync.RWMutex
	subscribers map[uuid.UUID]subscriber[M]

	quit     chan struct{}
	stopOnce sync.Once
}

func newFanOutQueueCore[M mq.TopicProvider](bufferSize int) *fanOutQueueCore[M] {
	c := &fanOutQueueCore[M]{
		publishChan: make(chan M, bufferSize),
		bufferSize:  bufferSize,
		subscribers: make(map[uuid.UUID]subscriber[M]),
		quit:        make(chan struct{}),
	}
	go c.run()
	return c
}

func (c *fanOutQueueCore[M]) run() {
	for {
		select {
		case msg := <-c.publishChan:
			c.dispatch(msg)
		case <-c.quit:
			c.mu.Lock()
			for id, s := range c.subscribers {
				close(s.ch)
				delete(c.subscribers, id)
			}
			c.mu.Unlock()
			return
		}
	}
}

func (c *fanOutQueueCore[M]) dispatch(msg M) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.subscribers {
		if !mq.Matches(s.topic, msg) {
			continue
		}
		select {
		case s.ch <- msg:
		default:
		}
	}
}

// Publish never blocks.
func (c *fanOutQueueCore[M]) Publish(msg M) error {
	select {
	case <-c.quit:
		return mq.ErrQueueClosed
	default:
	}
	select {
	case c.publishChan <- msg:
		return nil
	default:
		return mq.ErrQueueFull
	}
}

func (c *fanOutQueueCore[M]) Subscribe(topic uuid.UUID) (uuid.UUID, <-chan M, error) {
	select {
	case <-c.quit:
		return uuid.Nil, nil, mq.ErrQueueClosed
	default:
	}
	id := uuid.New()
	ch := make(chan M, c.bufferSize)
	c.mu.Lock()
	c.subscribers[id] = subscriber[M]{topic: topic, ch: ch}
	c.mu.Unlock()
	return id, ch, nil
}

func (c *fanOutQueueCore[M]) DeSubscribe(id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.subscribers[id]
	if !ok {
		return fmt.Errorf("subscriber %s not found", id)
	}
	delete(c.subscribers, id)
	close(s.ch)
	return nil
}

// Stop closes every subscriber channel. Later calls are no-ops.
func (c *fanOutQueueCore[M]) Stop() {
	c.stopOnce.Do(func() { close(c.quit) })
}

// ChannelItineraryMessageQueue is an in-process ItineraryMessageQueue.
type ChannelItineraryMessageQueue struct {
	action mq.Action
	*fanOutQueueCore[mq.ItineraryMessage]
}

func NewChannelItineraryMessageQueue(action mq.Action, bufferSize int) *ChannelItineraryMessageQueue {
	return &ChannelItineraryMessageQueue{
		action:          action,
		fanOutQueueCore: newFanOutQueueCore[mq.ItineraryMessage](bufferSize),
	}
}

func (q *ChannelItineraryMessageQueue) GetAction() mq.Action {
	return q.action
}

type GoChanItineraryMessageQueueWrapper struct {
	MQArray [mq.ActionCnt]*ChannelItineraryMessageQueue
}

// NewGoChanItineraryMessageQueueWrapper builds one queue per action.
func NewGoChanItineraryMessageQueueWrapper(bufferSize int) *GoChanItineraryMessageQueueWrapper {
	w := &GoChanItineraryMessageQueueWrapper{}
	for a := mq.Action(0); a < mq.ActionCnt; a++ {
		w.MQArray[a] = NewChannelItineraryMessageQueue(a, bufferSize)
	}
	return w
}

func (w *GoChanItineraryMessageQueueWrapper) GetItineraryMessageQueue(action mq.Action) mq.ItineraryMessageQueue {
	if action < 0 || action >= mq.ActionCnt {
		return nil
	}
	return w.MQArray[action]
}

func (w *GoChanItineraryMessageQueueWrapper) Close() {
	for _, q := range w.MQArray {
		q.Stop()
	}
}
