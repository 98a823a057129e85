package jsonstore

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"
)

// DefaultTTL is how long a cached document is trusted before the file is
// consulted again.
const DefaultTTL = 60 * time.Second

// Cached wraps one JSON document with an in-memory cache. A read serves from
// memory while the entry is fresh; it reloads when the TTL has passed or the
// file's modification time no longer matches the one recorded at load. Writes
// go through to disk and update the cache in the same step.
//
// Coherence is per process: external file edits are picked up through the
// mtime check, concurrent writers in other processes are not coordinated.
type Cached[T any] struct {
	path string
	ttl  time.Duration
	now  func() time.Time

	mu            sync.Mutex
	value         T
	loaded        bool
	lastRefreshed time.Time
	fileMTime     time.Time
}

// CachedOption configures a Cached instance.
type CachedOption func(*cachedConfig)

type cachedConfig struct {
	ttl time.Duration
	now func() time.Time
}

// WithTTL overrides the cache lifetime.
func WithTTL(ttl time.Duration) CachedOption {
	return func(c *cachedConfig) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock overrides the time source. Used in tests.
func WithClock(now func() time.Time) CachedOption {
	return func(c *cachedConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCached creates a cache over the document at path. The file is not read
// until the first Get.
func NewCached[T any](path string, opts ...CachedOption) *Cached[T] {
	cfg := cachedConfig{ttl: DefaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Cached[T]{path: path, ttl: cfg.ttl, now: cfg.now}
}

// Path returns the backing file path.
func (c *Cached[T]) Path() string {
	return c.path
}

// Get returns the current document, reloading from disk when the cached copy
// is stale.
func (c *Cached[T]) Get() (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.fresh() {
		if err := c.reload(); err != nil {
			var zero T
			return zero, err
		}
	}
	return c.value, nil
}

// Set persists the document and replaces the cached copy.
func (c *Cached[T]) Set(doc T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store(doc)
}

// Update applies fn to the latest document and persists the result. The whole
// read-modify-write runs under the document mutex, so concurrent updates to
// the same document serialize instead of racing.
func (c *Cached[T]) Update(fn func(T) (T, error)) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	if !c.fresh() {
		if err := c.reload(); err != nil {
			return zero, err
		}
	}

	next, err := fn(c.value)
	if err != nil {
		return zero, err
	}
	if err := c.store(next); err != nil {
		return zero, err
	}
	return next, nil
}

// fresh reports whether the cached copy can be served without touching disk.
// Callers hold c.mu.
func (c *Cached[T]) fresh() bool {
	if !c.loaded {
		return false
	}
	if c.now().Sub(c.lastRefreshed) > c.ttl {
		return false
	}

	info, err := os.Stat(c.path)
	if err != nil {
		// Let reload surface the real error.
		return false
	}
	return info.ModTime().Equal(c.fileMTime)
}

func (c *Cached[T]) reload() error {
	doc, err := Read[T](c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("jsonstore: %s: file missing, was Ensure called: %w", c.path, err)
		}
		return err
	}

	c.value = doc
	c.loaded = true
	c.lastRefreshed = c.now()
	if info, err := os.Stat(c.path); err == nil {
		c.fileMTime = info.ModTime()
	}
	return nil
}

func (c *Cached[T]) store(doc T) error {
	if err := Write(c.path, doc); err != nil {
		return err
	}
	c.value = doc
	c.loaded = true
	c.lastRefreshed = c.now()
	if info, err := os.Stat(c.path); err == nil {
		c.fileMTime = info.ModTime()
	}
	return nil
}
