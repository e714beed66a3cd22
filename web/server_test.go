package web

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulule/limiter/v3"

	"tripsynth/assembler"
	"tripsynth/mq/goch"
	"tripsynth/mq/mq"
	"tripsynth/reconcile"
	"tripsynth/strategy"
)

func newPlanner(events mq.ItineraryMessageQueueWrapper) *assembler.Assembler {
	engine := reconcile.New(nil, nil, nil)
	return assembler.New(engine, nil, events, nil, strategy.NewHeuristic(engine))
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r := NewRouter(newPlanner(nil), Options{})
	w := do(t, r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestPlanTrip(t *testing.T) {
	r := NewRouter(newPlanner(nil), Options{})
	body := `{"destination":"Goa","start_date":"2025-06-11","duration":2,"trip_type":"Relaxation",
		"num_members":2,"budget":"mid-range"}`

	w := do(t, r, http.MethodPost, "/api/trip", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Itinerary   map[string]json.RawMessage `json:"itinerary"`
		Vibe        string                     `json:"vibe"`
		TotalBudget decimal.Decimal            `json:"total_budget"`
		CostSummary map[string]json.RawMessage `json:"cost_summary"`
		Metadata    map[string]json.RawMessage `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Itinerary, 2)
	assert.Contains(t, resp.Itinerary, "Day 2 – 2025-06-12")
	assert.True(t, decimal.NewFromInt(44000).Equal(resp.TotalBudget), resp.TotalBudget.String())
	assert.Contains(t, resp.CostSummary, "grand_total")
	assert.JSONEq(t, `"heuristic"`, string(resp.Metadata["strategy"]))
	assert.JSONEq(t, `false`, string(resp.Metadata["fallback"]))
}

func TestPlanTrip_InvalidBody(t *testing.T) {
	r := NewRouter(newPlanner(nil), Options{})
	cases := map[string]string{
		"missing destination": `{"start_date":"2025-06-11","duration":2,"num_members":2,"budget":"mid-range"}`,
		"bad date":            `{"destination":"Goa","start_date":"11/06/2025","duration":2,"num_members":2,"budget":"mid-range"}`,
		"zero party":          `{"destination":"Goa","start_date":"2025-06-11","duration":2,"num_members":0,"budget":"mid-range"}`,
		"unknown tier":        `{"destination":"Goa","start_date":"2025-06-11","duration":2,"num_members":2,"budget":"lavish"}`,
		"not json":            `destination=Goa`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := do(t, r, http.MethodPost, "/api/trip", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestRateLimit(t *testing.T) {
	r := NewRouter(newPlanner(nil), Options{Rate: limiter.Rate{Period: time.Minute, Limit: 2}})
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, r, http.MethodGet, "/health", "").Code)
}

func TestEvents_Disabled(t *testing.T) {
	r := NewRouter(newPlanner(nil), Options{})
	assert.Equal(t, http.StatusServiceUnavailable, do(t, r, http.MethodGet, "/api/events", "").Code)
}

func TestEvents_InvalidRequestID(t *testing.T) {
	events := goch.NewGoChanItineraryMessageQueueWrapper(4)
	defer events.Close()
	r := NewRouter(newPlanner(events), Options{Events: events})
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodGet, "/api/events?request_id=nope", "").Code)
}

func TestEvents_Stream(t *testing.T) {
	events := goch.NewGoChanItineraryMessageQueueWrapper(8)
	defer events.Close()
	srv := httptest.NewServer(NewRouter(newPlanner(events), Options{Events: events}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	// headers only arrive with the first event, so publish until the handler's
	// subscription picks one up
	id := uuid.New()
	go func() {
		ticker := time.NewTicker(20 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = mq.Publish(events, mq.ItineraryMessage{RequestID: id, Destination: "Goa", Fallback: true})
			}
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	scanner := bufio.NewScanner(resp.Body)
	var event, data string
	for scanner.Scan() {
		line := scanner.Text()
		if v, ok := strings.CutPrefix(line, "event:"); ok {
			event = v
		}
		if v, ok := strings.CutPrefix(line, "data:"); ok {
			data = v
			break
		}
	}
	require.NotEmpty(t, data)
	assert.Equal(t, "fallback", event)

	var msg mq.ItineraryMessage
	require.NoError(t, json.Unmarshal([]byte(data), &msg))
	assert.Equal(t, id, msg.RequestID)
	assert.Equal(t, "Goa", msg.Destination)
}
