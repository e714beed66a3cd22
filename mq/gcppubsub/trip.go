package gcppubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/google/uuid"

	"tripsynth/mq/mq"
)

const topicAttribute = "requestId"

type subscriptionInfo struct {
	gcpSubscription *pubsub.Subscription
	cancel          context.CancelFunc
}

// GenericPubSubService publishes and subscribes one message type on one topic.
type GenericPubSubService[M mq.TopicProvider] struct {
	client              *pubsub.Client
	topic               *pubsub.Topic
	activeSubscriptions map[uuid.UUID]*subscriptionInfo
	subscriptionsMutex  sync.Mutex
	ctx                 context.Context
	logger              *slog.Logger
}

// NewGenericPubSubService creates the Pub/Sub topic when it does not exist yet.
func NewGenericPubSubService[M mq.TopicProvider](ctx context.Context, client *pubsub.Client, topicID string, logger *slog.Logger) (*GenericPubSubService[M], error) {
	if client == nil {
		return nil, errors.New("GCP Pub/Sub client is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	topic := client.Topic(topicID)
	exists, err := topic.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existence of topic %s: %w", topicID, err)
	}
	if !exists {
		topic, err = client.CreateTopic(ctx, topicID)
		if err != nil {
			return nil, fmt.Errorf("failed to create topic %s: %w", topicID, err)
		}
		logger.Info("created Pub/Sub topic", "topic", topicID)
	}

	return &GenericPubSubService[M]{
		client:              client,
		topic:               topic,
		activeSubscriptions: make(map[uuid.UUID]*subscriptionInfo),
		ctx:                 ctx,
		logger:              logger,
	}, nil
}

func (s *GenericPubSubService[M]) Publish(msg M) error {
	typeName := reflect.TypeOf(msg).Name()
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", typeName, err)
	}

	result := s.topic.Publish(s.ctx, &pubsub.Message{
		Data:       body,
		Attributes: map[string]string{topicAttribute: msg.GetTopic().String()},
	})
	if _, err = result.Get(s.ctx); err != nil {
		return fmt.Errorf("failed to publish %s to topic %s: %w", typeName, s.topic.ID(), err)
	}
	return nil
}

// Subscribe creates a GCP subscription filtered on topic. uuid.Nil receives
// every message.
func (s *GenericPubSubService[M]) Subscribe(topic uuid.UUID) (uuid.UUID, <-chan M, error) {
	subscriptionID := uuid.New()
	typeName := reflect.TypeOf(*new(M)).Name()

	config := pubsub.SubscriptionConfig{
		Topic:            s.topic,
		ExpirationPolicy: 24 * time.Hour,
		AckDeadline:      10 * time.Second,
	}
	if topic != uuid.Nil {
		config.Filter = fmt.Sprintf("attributes.%s = \"%s\"", topicAttribute, topic)
	}

	gcpSubName := fmt.Sprintf("sub-%s-%s", s.topic.ID(), subscriptionID)
	gcpSub, err := s.client.CreateSubscription(s.ctx, gcpSubName, config)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("failed to create GCP subscription %s for %s: %w", gcpSubName, typeName, err)
	}

	msgChan := make(chan M, 5)
	receiveCtx, cancel := context.WithCancel(s.ctx)

	s.subscriptionsMutex.Lock()
	s.activeSubscriptions[subscriptionID] = &subscriptionInfo{gcpSubscription: gcpSub, cancel: cancel}
	s.subscriptionsMutex.Unlock()

	go func() {
		defer func() {
			s.subscriptionsMutex.Lock()
			delete(s.activeSubscriptions, subscriptionID)
			s.subscriptionsMutex.Unlock()

			if err := gcpSub.Delete(context.Background()); err != nil {
				s.logger.Warn("failed to delete GCP subscription", "subscription", gcpSub.ID(), "err", err)
			}
			close(msgChan)
		}()

		err := gcpSub.Receive(receiveCtx, func(ctx context.Context, pubsubMsg *pubsub.Message) {
			pubsubMsg.Ack()

			var msg M
			if err := json.Unmarshal(pubsubMsg.Data, &msg); err != nil {
				s.logger.Warn("failed to unmarshal message", "type", typeName, "err", err)
				return
			}

			select {
			case msgChan <- msg:
			case <-time.After(2 * time.Second):
				s.logger.Warn("timeout delivering message", "type", typeName, "subscription", subscriptionID)
			case <-receiveCtx.Done():
			}
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("Pub/Sub receive loop stopped", "subscription", subscriptionID, "err", err)
		}
	}()

	return subscriptionID, msgChan, nil
}

// DeSubscribe stops the receiver. The GCP subscription is deleted once the
// receiver exits.
func (s *GenericPubSubService[M]) DeSubscribe(id uuid.UUID) error {
	s.subscriptionsMutex.Lock()
	info, ok := s.activeSubscriptions[id]
	if ok {
		info.cancel()
	}
	s.subscriptionsMutex.Unlock()

	if !ok {
		return fmt.Errorf("subscription ID %s not found for %s service", id, reflect.TypeOf(*new(M)).Name())
	}
	return nil
}

func (s *GenericPubSubService[M]) Close() {
	s.subscriptionsMutex.Lock()
	defer s.subscriptionsMutex.Unlock()
	for _, info := range s.activeSubscriptions {
		info.cancel()
	}
}

type itineraryMQ struct {
	*GenericPubSubService[mq.ItineraryMessage]
	action mq.Action
}

func NewItineraryMessageQueue(ctx context.Context, client *pubsub.Client, action mq.Action, logger *slog.Logger) (*itineraryMQ, error) {
	gs, err := NewGenericPubSubService[mq.ItineraryMessage](ctx, client, "itinerary-"+action.String(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create Pub/Sub service for %s itineraries: %w", action, err)
	}
	return &itineraryMQ{GenericPubSubService: gs, action: action}, nil
}

func (q *itineraryMQ) GetAction() mq.Action { return q.action }

type GCPItineraryMessageQueueWrapper struct {
	MQArray [mq.ActionCnt]*itineraryMQ
	client  *pubsub.Client
}

// NewGCPItineraryMessageQueueWrapper creates one topic per action.
func NewGCPItineraryMessageQueueWrapper(ctx context.Context, projectID string, logger *slog.Logger) (*GCPItineraryMessageQueueWrapper, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCP Pub/Sub client for project %s: %w", projectID, err)
	}

	w := &GCPItineraryMessageQueueWrapper{client: client}
	for a := mq.Action(0); a < mq.ActionCnt; a++ {
		if w.MQArray[a], err = NewItineraryMessageQueue(ctx, client, a, logger); err != nil {
			client.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *GCPItineraryMessageQueueWrapper) GetItineraryMessageQueue(action mq.Action) mq.ItineraryMessageQueue {
	if action < 0 || action >= mq.ActionCnt || w.MQArray[action] == nil {
		return nil
	}
	return w.MQArray[action]
}

func (w *GCPItineraryMessageQueueWrapper) Close() {
	for _, q := range w.MQArray {
		if q != nil {
			q.GenericPubSubService.Close()
		}
	}
	w.client.Close()
}
