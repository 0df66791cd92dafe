// Package mediacache warms remote media into a bounded in-memory cache so
// players can start from local bytes.
package mediacache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	DefaultEntries       = 24
	DefaultTTL           = 10 * time.Minute
	DefaultMaxEntryBytes = 8 << 20
)

// ErrTooLarge indicates a media body above the per-entry cap.
var ErrTooLarge = errors.New("media exceeds cache entry limit")

// Cache is a size and TTL bounded LRU of media bodies keyed by URL.
// It is safe for use from multiple goroutines.
type Cache struct {
	lru      *expirable.LRU[string, []byte]
	http     *http.Client
	maxBytes int64
	logger   *slog.Logger

	mu       sync.Mutex
	inflight map[string]*call
}

type call struct {
	done chan struct{}
	err  error
}

// Option configures the Cache.
type Option func(*Cache)

// WithHTTPClient sets the client used to fetch media.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Cache) { c.http = hc }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) { c.logger = l }
}

// WithMaxEntryBytes caps the size of a single cached body.
func WithMaxEntryBytes(n int64) Option {
	return func(c *Cache) { c.maxBytes = n }
}

// New creates a cache holding at most entries bodies for ttl each.
// Non-positive arguments fall back to the defaults.
func New(entries int, ttl time.Duration, opts ...Option) *Cache {
	if entries <= 0 {
		entries = DefaultEntries
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{
		http:     &http.Client{Timeout: 30 * time.Second},
		maxBytes: DefaultMaxEntryBytes,
		logger:   slog.Default(),
		inflight: make(map[string]*call),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.lru = expirable.NewLRU[string, []byte](entries, func(url string, _ []byte) {
		c.logger.Debug("mediacache: evicted", "url", url)
	}, ttl)
	return c
}

// Get returns the cached body for url.
func (c *Cache) Get(url string) ([]byte, bool) {
	return c.lru.Get(url)
}

// Contains reports whether url is cached without touching recency.
func (c *Cache) Contains(url string) bool {
	return c.lru.Contains(url)
}

// Len returns the number of cached bodies.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Put stores data for url, replacing any previous body.
func (c *Cache) Put(url string, data []byte) {
	c.lru.Add(url, data)
}

// Warm fetches url into the cache unless it is already present.
// Concurrent warms of the same url share one request.
func (c *Cache) Warm(ctx context.Context, url string) error {
	if url == "" {
		return nil
	}
	if c.lru.Contains(url) {
		return nil
	}

	c.mu.Lock()
	if cl, ok := c.inflight[url]; ok {
		c.mu.Unlock()
		select {
		case <-cl.done:
			return cl.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	cl := &call{done: make(chan struct{})}
	c.inflight[url] = cl
	c.mu.Unlock()

	cl.err = c.fetch(ctx, url)

	c.mu.Lock()
	delete(c.inflight, url)
	c.mu.Unlock()
	close(cl.done)
	return cl.err
}

// Fetch returns the body for url, warming the cache first when needed.
func (c *Cache) Fetch(ctx context.Context, url string) ([]byte, error) {
	if data, ok := c.lru.Get(url); ok {
		return data, nil
	}
	if err := c.Warm(ctx, url); err != nil {
		return nil, err
	}
	data, ok := c.lru.Get(url)
	if !ok {
		return nil, fmt.Errorf("media %s evicted before use", url)
	}
	return data, nil
}

func (c *Cache) fetch(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating media request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetching media: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("fetching media: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return fmt.Errorf("reading media: %w", err)
	}
	if int64(len(data)) > c.maxBytes {
		return fmt.Errorf("%s: %w", url, ErrTooLarge)
	}
	c.lru.Add(url, data)
	c.logger.Debug("mediacache: warmed", "url", url, "bytes", len(data))
	return nil
}
