package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"

	"tripsynth/cache"
	"tripsynth/itinerary"
)

// ErrRateLimited marks a producer failure that is worth retrying after a pause.
var ErrRateLimited = errors.New("rate limited")

const (
	DefaultMaxRetries  = 3
	DefaultBackoffBase = 5 * time.Second
)

// Producer performs the outbound call on a cache miss.
type Producer[T any] func(ctx context.Context) (T, error)

// Fetcher reads through the cache and retries rate-limited producers with
// exponential backoff. Any other producer error is returned at once.
type Fetcher struct {
	cache       *cache.Store
	maxRetries  int
	backoffBase time.Duration
	logger      *slog.Logger
}

func New(store *cache.Store, maxRetries int, backoffBase time.Duration, logger *slog.Logger) *Fetcher {
	if maxRetries < 1 {
		maxRetries = DefaultMaxRetries
	}
	if backoffBase <= 0 {
		backoffBase = DefaultBackoffBase
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		cache:       store,
		maxRetries:  maxRetries,
		backoffBase: backoffBase,
		logger:      logger,
	}
}

// Fetch returns provider records for (subject, category).
func (f *Fetcher) Fetch(ctx context.Context, subject, category string, producer Producer[[]itinerary.Record]) ([]itinerary.Record, error) {
	return FetchAs(ctx, f, subject, category, producer)
}

// FetchAs is Fetch for any JSON encodable result type.
func FetchAs[T any](ctx context.Context, f *Fetcher, subject, category string, producer Producer[T]) (T, error) {
	var cached T
	if f.cache != nil && f.cache.Get(ctx, subject, category, &cached) {
		f.logger.Info("using cached data", "subject", subject, "category", category)
		return cached, nil
	}

	var result T
	attempt := 0
	backoff := retry.WithMaxRetries(uint64(f.maxRetries-1), retry.NewExponential(f.backoffBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		v, err := producer(ctx)
		if err == nil {
			result = v
			return nil
		}
		if errors.Is(err, ErrRateLimited) {
			if attempt < f.maxRetries {
				f.logger.Warn("rate limit hit, backing off",
					"subject", subject, "category", category, "attempt", attempt,
					"wait", f.backoffBase*time.Duration(1<<(attempt-1)))
			}
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		var zero T
		return zero, fmt.Errorf("fetch %s for %s failed after %d attempt(s): %w", category, subject, attempt, err)
	}

	if f.cache != nil {
		if err := f.cache.Put(ctx, subject, category, result); err != nil {
			f.logger.Error("cache write failed", "subject", subject, "category", category, "error", err)
		}
	}
	return result, nil
}
