package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"

	"tripsynth/mq/mq"
)

const exchangeName = "itinerary_events_exchange"

func routingKey(action mq.Action) string {
	return "itinerary." + action.String()
}

type consumer struct {
	topic  uuid.UUID
	ch     chan mq.ItineraryMessage
	cancel func()
}

// rabbitItineraryMessageQueue publishes to a topic exchange. Each subscriber
// gets its own exclusive queue so every subscriber sees every message.
type rabbitItineraryMessageQueue struct {
	action     mq.Action
	channel    *amqp091.Channel
	routingKey string
	logger     *slog.Logger

	mu        sync.Mutex
	consumers map[uuid.UUID]*consumer
}

func NewRabbitItineraryMessageQueue(action mq.Action, conn *amqp091.Connection, logger *slog.Logger) (mq.ItineraryMessageQueue, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	key := routingKey(action)
	queueName := fmt.Sprintf("itinerary_%s_queue", action)
	if err := DeclareQueueAndExchange(ch, queueName, exchangeName, key); err != nil {
		ch.Close()
		return nil, err
	}

	return &rabbitItineraryMessageQueue{
		action:     action,
		channel:    ch,
		routingKey: key,
		logger:     logger,
		consumers:  make(map[uuid.UUID]*consumer),
	}, nil
}

func (q *rabbitItineraryMessageQueue) GetAction() mq.Action {
	return q.action
}

func (q *rabbitItineraryMessageQueue) Publish(msg mq.ItineraryMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = q.channel.PublishWithContext(ctx,
		exchangeName,
		q.routingKey,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType: "application/json",
			MessageId:   msg.RequestID.String(),
			Timestamp:   msg.GeneratedAt,
			Body:        body,
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

func (q *rabbitItineraryMessageQueue) Subscribe(topic uuid.UUID) (uuid.UUID, <-chan mq.ItineraryMessage, error) {
	queue, err := q.channel.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("failed to declare subscriber queue: %w", err)
	}
	if err := q.channel.QueueBind(queue.Name, q.routingKey, exchangeName, false, nil); err != nil {
		return uuid.Nil, nil, fmt.Errorf("failed to bind subscriber queue: %w", err)
	}

	id := uuid.New()
	tag := "sub-" + id.String()
	deliveries, err := q.channel.Consume(queue.Name, tag, true, true, false, false, nil)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("failed to register a consumer: %w", err)
	}

	c := &consumer{
		topic:  topic,
		ch:     make(chan mq.ItineraryMessage),
		cancel: func() { _ = q.channel.Cancel(tag, false) },
	}
	q.mu.Lock()
	q.consumers[id] = c
	q.mu.Unlock()

	go q.forward(id, c, deliveries)
	return id, c.ch, nil
}

func (q *rabbitItineraryMessageQueue) forward(id uuid.UUID, c *consumer, deliveries <-chan amqp091.Delivery) {
	defer func() {
		q.mu.Lock()
		if _, ok := q.consumers[id]; ok {
			delete(q.consumers, id)
			close(c.ch)
		}
		q.mu.Unlock()
	}()

	for d := range deliveries {
		var msg mq.ItineraryMessage
		if err := json.Unmarshal(d.Body, &msg); err != nil {
			q.logger.Warn("failed to unmarshal itinerary message", "err", err)
			continue
		}
		if !mq.Matches(c.topic, msg) {
			continue
		}

		q.mu.Lock()
		_, active := q.consumers[id]
		if active {
			select {
			case c.ch <- msg:
			case <-time.After(time.Second):
				q.logger.Warn("timeout delivering itinerary message", "consumer", id)
			}
		}
		q.mu.Unlock()
		if !active {
			return
		}
	}
}

func (q *rabbitItineraryMessageQueue) DeSubscribe(id uuid.UUID) error {
	q.mu.Lock()
	c, ok := q.consumers[id]
	if ok {
		delete(q.consumers, id)
		close(c.ch)
	}
	q.mu.Unlock()

	if !ok {
		return fmt.Errorf("consumer with ID %s not found for %s", id, q.routingKey)
	}
	c.cancel()
	return nil
}

type RabbitItineraryMessageQueueWrapper struct {
	MQArray [mq.ActionCnt]mq.ItineraryMessageQueue
	conn    *amqp091.Connection
}

func NewRabbitItineraryMessageQueueWrapper(conn *amqp091.Connection, logger *slog.Logger) (*RabbitItineraryMessageQueueWrapper, error) {
	w := &RabbitItineraryMessageQueueWrapper{conn: conn}
	for a := mq.Action(0); a < mq.ActionCnt; a++ {
		q, err := NewRabbitItineraryMessageQueue(a, conn, logger)
		if err != nil {
			w.Close()
			return nil, fmt.Errorf("failed to create %s mq: %w", a, err)
		}
		w.MQArray[a] = q
	}
	return w, nil
}

func (w *RabbitItineraryMessageQueueWrapper) GetItineraryMessageQueue(action mq.Action) mq.ItineraryMessageQueue {
	if action < 0 || action >= mq.ActionCnt {
		return nil
	}
	return w.MQArray[action]
}

// Close closes every channel and the connection.
func (w *RabbitItineraryMessageQueueWrapper) Close() {
	for _, q := range w.MQArray {
		if rq, ok := q.(*rabbitItineraryMessageQueue); ok && rq.channel != nil {
			rq.channel.Close()
		}
	}
	if w.conn != nil {
		w.conn.Close()
	}
}
