package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"

	"tripsynth/itinerary"
	"tripsynth/mq/mq"
)

const (
	tripPath   = "/api/trip"
	eventsPath = "/api/events"
)

// Planner is satisfied by *assembler.Assembler.
type Planner interface {
	Assemble(ctx context.Context, req itinerary.TripRequest) *itinerary.Itinerary
}

type Options struct {
	IsDev bool
	Rate  limiter.Rate
	// Events backs GET /api/events. Nil disables the stream.
	Events mq.ItineraryMessageQueueWrapper
	Logger *slog.Logger
}

// NewRouter wires the middlewares and routes around planner.
func NewRouter(planner Planner, opts Options) *gin.Engine {
	if opts.Rate.Limit == 0 {
		opts.Rate = DefaultRate
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.IsDev {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	setupMiddlewares(r, opts)

	h := &handler{planner: planner, events: opts.Events, logger: opts.Logger}
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST(tripPath, h.planTrip)
	r.GET(eventsPath, h.streamEvents)
	return r
}

// Serve runs the router on addr until ctx is done, then drains in-flight
// requests for up to ten seconds.
func Serve(ctx context.Context, addr string, router http.Handler, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen on %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
