package mq

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Subscriber is any queue that can be subscribed to by topic.
type Subscriber[M any] interface {
	Subscribe(uuid.UUID) (uuid.UUID, <-chan M, error)
	DeSubscribe(id uuid.UUID) error
}

// SubscribeProcessor subscribes to topic and forwards transformed messages to
// outputStream until ctx is done or the queue closes. outputStream is closed
// on exit. Messages whose transform errors or asks to skip are dropped.
func SubscribeProcessor[S Subscriber[M], M any, O any](
	topicId uuid.UUID,
	ctx context.Context,
	service S,
	transformFunc func(msg M) (O, bool, error),
	outputStream chan<- O,
) {
	go func() {
		uid, inputCh, err := service.Subscribe(topicId)
		if err != nil {
			slog.Warn("subscribe failed", "topic", topicId, "err", err)
			close(outputStream)
			return
		}

		defer func() {
			if err := service.DeSubscribe(uid); err != nil {
				slog.Debug("de-subscribe", "id", uid, "err", err)
			}
			close(outputStream)
		}()

		for {
			select {
			case msg, ok := <-inputCh:
				if !ok {
					return
				}

				output, skip, err := transformFunc(msg)
				if err != nil || skip {
					continue
				}

				select {
				case outputStream <- output:
				case <-ctx.Done():
					return
				}

			case <-ctx.Done():
				return
			}
		}
	}()
}

// Merge fans several subscriptions into one channel. It closes when ctx is
// done or every source has closed.
func Merge[S Subscriber[M], M any](ctx context.Context, topic uuid.UUID, services ...S) <-chan M {
	out := make(chan M)
	remaining := len(services)
	if remaining == 0 {
		close(out)
		return out
	}
	done := make(chan struct{}, remaining)
	for _, s := range services {
		part := make(chan M)
		SubscribeProcessor(topic, ctx, s, func(m M) (M, bool, error) { return m, false, nil }, part)
		go func() {
			defer func() { done <- struct{}{} }()
			for m := range part {
				select {
				case out <- m:
				case <-ctx.Done():
				}
			}
		}()
	}
	go func() {
		for range services {
			<-done
		}
		close(out)
	}()
	return out
}
