// Package fetch retrieves raw daily snapshots from the publishing source.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultTimeout bounds every snapshot request. A request must never block
// indefinitely: on timeout the day is treated as missing and retried on the
// next run.
const DefaultTimeout = 15 * time.Second

// DefaultWorkers is the fan-out for batch fetches.
const DefaultWorkers = 8

// Client fetches day documents. A failed fetch (timeout, non-2xx, transport
// error) is not an error to the caller: it is the missing-day signal.
type Client struct {
	baseURL string
	suffix  string
	workers int
	http    *http.Client
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithDetailedFeed points the client at the per-show detailed documents
// ("<date>_Detailed.json") instead of the summary feed.
func WithDetailedFeed() Option {
	return func(c *Client) { c.suffix = "_Detailed" }
}

// WithWorkers sets the default fan-out for batch fetches. Values below one
// fall back to DefaultWorkers.
func WithWorkers(n int) Option {
	return func(c *Client) { c.workers = n }
}

// WithLogger sets the logger used for fetch outcomes.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient builds a fetcher for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the document URL for a date.
func (c *Client) URL(date string) string {
	return c.baseURL + "/" + url.PathEscape(date+c.suffix+".json")
}

// FetchDay retrieves one date's document. It returns (nil, nil) when the day
// has no data; the only error it surfaces is context cancellation, so a run
// can be stopped but never fails on a bad day.
func (c *Client) FetchDay(ctx context.Context, date string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(date), nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", date, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Warn("fetch failed, treating day as missing", "date", date, "error", err)
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("no data for day", "date", date, "status", resp.StatusCode)
		return nil, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Warn("read failed, treating day as missing", "date", date, "error", err)
		return nil, nil
	}

	c.logger.Debug("day fetched", "date", date, "bytes", len(body))
	return body, nil
}

// FetchBatch retrieves several dates concurrently with a bounded worker pool.
// It returns only after every worker has finished, so the caller's merge step
// never interleaves with in-flight fetches. Missing days are absent from the
// result map.
func (c *Client) FetchBatch(ctx context.Context, dates []string, workers int) (map[string][]byte, error) {
	if workers <= 0 {
		workers = c.workers
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}

	var mu sync.Mutex
	out := make(map[string][]byte)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, date := range dates {
		g.Go(func() error {
			body, err := c.FetchDay(gctx, date)
			if err != nil {
				return err
			}
			if body == nil {
				return nil
			}
			mu.Lock()
			out[date] = body
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
