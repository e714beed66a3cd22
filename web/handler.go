package web

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tripsynth/itinerary"
	"tripsynth/mq/mq"
)

type handler struct {
	planner Planner
	events  mq.ItineraryMessageQueueWrapper
	logger  *slog.Logger
}

func (h *handler) planTrip(c *gin.Context) {
	var req itinerary.TripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.planner.Assemble(c.Request.Context(), req))
}

// streamEvents sends itinerary events as server-sent events. The optional
// request_id query parameter narrows the stream to one itinerary.
func (h *handler) streamEvents(c *gin.Context) {
	if h.events == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event stream is not enabled"})
		return
	}
	topic := uuid.Nil
	if raw := c.Query("request_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request_id"})
			return
		}
		topic = id
	}

	var queues []mq.ItineraryMessageQueue
	for a := mq.Action(0); a < mq.ActionCnt; a++ {
		if q := h.events.GetItineraryMessageQueue(a); q != nil {
			queues = append(queues, q)
		}
	}

	ctx := c.Request.Context()
	msgs := mq.Merge[mq.ItineraryMessageQueue, mq.ItineraryMessage](ctx, topic, queues...)

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(w io.Writer) bool {
		select {
		case msg, ok := <-msgs:
			if !ok {
				return false
			}
			c.SSEvent(msg.Action().String(), msg)
			return true
		case <-ctx.Done():
			return false
		}
	})
	h.logger.Debug("event stream closed", "topic", topic)
}
