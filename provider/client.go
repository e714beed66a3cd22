// Package provider holds the travel data clients used by the datasource
// strategy. Every client normalises its response into itinerary.Record.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tripsynth/fetch"
)

const (
	DefaultTimeout = 10 * time.Second
	// remainingWarnAt is the X-RateLimit-Remaining value below which a warning is logged.
	remainingWarnAt = 5
	maxResults      = 5
)

// HTTPError is a non-2xx provider response. A 429 unwraps to fetch.ErrRateLimited.
type HTTPError struct {
	Source string
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s: http %d: %s", e.Source, e.Status, e.Body)
}

func (e *HTTPError) Unwrap() error {
	if e.Status == http.StatusTooManyRequests {
		return fetch.ErrRateLimited
	}
	return nil
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Status
	}
	return 0
}

// Resolver looks up a slow-changing provider identifier, usually through the
// cache. The default calls produce directly.
type Resolver func(ctx context.Context, subject, category string, produce fetch.Producer[string]) (string, error)

func directResolver(ctx context.Context, _, _ string, produce fetch.Producer[string]) (string, error) {
	return produce(ctx)
}

// CachedResolver resolves identifiers through f so they share its cache and
// retry policy.
func CachedResolver(f *fetch.Fetcher) Resolver {
	return func(ctx context.Context, subject, category string, produce fetch.Producer[string]) (string, error) {
		return fetch.FetchAs(ctx, f, subject, category, produce)
	}
}

type base struct {
	source   string
	baseURL  string
	apiKey   string
	host     string
	http     *http.Client
	logger   *slog.Logger
	resolver Resolver
}

type Option func(*base)

// WithBaseURL points a client at another endpoint, e.g. an httptest server.
func WithBaseURL(u string) Option {
	return func(b *base) { b.baseURL = strings.TrimRight(u, "/") }
}

func WithHTTPClient(c *http.Client) Option {
	return func(b *base) {
		if c != nil {
			b.http = c
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(b *base) {
		if l != nil {
			b.logger = l
		}
	}
}

func WithResolver(r Resolver) Option {
	return func(b *base) {
		if r != nil {
			b.resolver = r
		}
	}
}

func newBase(source, baseURL, host, apiKey string, opts []Option) base {
	b := base{
		source:   source,
		baseURL:  baseURL,
		apiKey:   apiKey,
		host:     host,
		http:     &http.Client{Timeout: DefaultTimeout},
		logger:   slog.Default(),
		resolver: directResolver,
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// getJSON issues a GET against path and decodes the JSON body into out.
func (b *base) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	u := b.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	if b.host != "" {
		req.Header.Set("X-RapidAPI-Key", b.apiKey)
		req.Header.Set("X-RapidAPI-Host", b.host)
	}

	resp, err := b.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", b.source, err)
	}
	defer resp.Body.Close()

	b.checkRemaining(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &HTTPError{Source: b.source, Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", b.source, err)
	}
	return nil
}

func (b *base) checkRemaining(resp *http.Response) {
	raw := resp.Header.Get("X-RateLimit-Remaining")
	if raw == "" {
		return
	}
	remaining, err := strconv.Atoi(raw)
	if err != nil {
		return
	}
	if remaining < remainingWarnAt {
		b.logger.Warn("provider rate limit almost exhausted", "source", b.source, "remaining", remaining)
	}
}

func formatRating(r float64) string {
	if r <= 0 {
		return ""
	}
	return strconv.FormatFloat(r, 'f', 1, 64)
}
