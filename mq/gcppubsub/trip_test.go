package gcppubsub_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripsynth/mq/gcppubsub"
	"tripsynth/mq/mq"
)

// Requires the Pub/Sub emulator:
//
//	gcloud beta emulators pubsub start --project=test-project
const testProjectID = "test-project"

func getTestWrapper(t *testing.T) *gcppubsub.GCPItineraryMessageQueueWrapper {
	t.Helper()
	if os.Getenv("PUBSUB_EMULATOR_HOST") == "" {
		t.Skip("PUBSUB_EMULATOR_HOST not set")
	}
	w, err := gcppubsub.NewGCPItineraryMessageQueueWrapper(context.Background(), testProjectID, nil)
	require.NoError(t, err)
	t.Cleanup(w.Close)
	return w
}

func TestPubSub_FilteredSubscription(t *testing.T) {
	w := getTestWrapper(t)
	q := w.GetItineraryMessageQueue(mq.ActionGenerated)
	require.NotNil(t, q)

	id := uuid.New()
	subID, ch, err := q.Subscribe(id)
	require.NoError(t, err)
	defer q.DeSubscribe(subID)

	require.NoError(t, q.Publish(mq.ItineraryMessage{RequestID: uuid.New(), Destination: "Elsewhere"}))
	require.NoError(t, q.Publish(mq.ItineraryMessage{RequestID: id, Destination: "Goa"}))

	select {
	case got := <-ch:
		assert.Equal(t, id, got.RequestID)
	case <-time.After(10 * time.Second):
		t.Fatal("no message received")
	}
}

func TestPubSub_DeSubscribeUnknown(t *testing.T) {
	w := getTestWrapper(t)
	assert.Error(t, w.GetItineraryMessageQueue(mq.ActionFallback).DeSubscribe(uuid.New()))
}
