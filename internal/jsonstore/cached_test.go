package jsonstore_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/backstage/internal/jsonstore"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Now()}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestCachedGet(t *testing.T) {
	t.Parallel()

	t.Run("loads on first access", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "docs.json")
		require.NoError(t, jsonstore.Write(path, doc{Name: "a"}))

		c := jsonstore.NewCached[doc](path)
		got, err := c.Get()
		require.NoError(t, err)
		assert.Equal(t, "a", got.Name)
	})

	t.Run("serves from memory within ttl", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "docs.json")
		clock := newFakeClock()
		c := jsonstore.NewCached[doc](path, jsonstore.WithClock(clock.Now))

		require.NoError(t, c.Set(doc{Name: "cached"}))

		// Rewrite the file bypassing the cache but keep the mtime, so only
		// the TTL decides freshness.
		info := mustStat(t, path)
		require.NoError(t, jsonstore.Write(path, doc{Name: "external"}))
		mustChtimes(t, path, info.ModTime())

		got, err := c.Get()
		require.NoError(t, err)
		assert.Equal(t, "cached", got.Name, "fresh entry must not touch disk")
	})

	t.Run("reloads after ttl expiry", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "docs.json")
		clock := newFakeClock()
		c := jsonstore.NewCached[doc](path, jsonstore.WithClock(clock.Now))

		require.NoError(t, c.Set(doc{Name: "cached"}))
		info := mustStat(t, path)
		require.NoError(t, jsonstore.Write(path, doc{Name: "external"}))
		mustChtimes(t, path, info.ModTime())

		clock.Advance(jsonstore.DefaultTTL + time.Second)

		got, err := c.Get()
		require.NoError(t, err)
		assert.Equal(t, "external", got.Name)
	})

	t.Run("reloads when file mtime changes", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "docs.json")
		c := jsonstore.NewCached[doc](path)

		require.NoError(t, c.Set(doc{Name: "cached"}))
		require.NoError(t, jsonstore.Write(path, doc{Name: "external"}))
		// Force an observable mtime difference regardless of fs resolution.
		mustChtimes(t, path, time.Now().Add(2*time.Second))

		got, err := c.Get()
		require.NoError(t, err)
		assert.Equal(t, "external", got.Name)
	})
}

func TestCachedSet(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "docs.json")
	c := jsonstore.NewCached[doc](path)

	require.NoError(t, c.Set(doc{Name: "written"}))

	onDisk, err := jsonstore.Read[doc](path)
	require.NoError(t, err)
	assert.Equal(t, "written", onDisk.Name, "write-through must persist immediately")

	cached, err := c.Get()
	require.NoError(t, err)
	assert.Equal(t, "written", cached.Name)
}

func TestCachedUpdate(t *testing.T) {
	t.Parallel()

	t.Run("applies and persists", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "docs.json")
		c := jsonstore.NewCached[doc](path)
		require.NoError(t, c.Set(doc{Count: 1}))

		got, err := c.Update(func(d doc) (doc, error) {
			d.Count++
			return d, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 2, got.Count)

		onDisk, err := jsonstore.Read[doc](path)
		require.NoError(t, err)
		assert.Equal(t, 2, onDisk.Count)
	})

	t.Run("concurrent updates serialize", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "docs.json")
		c := jsonstore.NewCached[doc](path)
		require.NoError(t, c.Set(doc{}))

		const workers = 20
		var wg sync.WaitGroup
		wg.Add(workers)
		for range workers {
			go func() {
				defer wg.Done()
				_, err := c.Update(func(d doc) (doc, error) {
					d.Count++
					return d, nil
				})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		got, err := c.Get()
		require.NoError(t, err)
		assert.Equal(t, workers, got.Count, "no increment may be lost")
	})

	t.Run("error aborts without writing", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "docs.json")
		c := jsonstore.NewCached[doc](path)
		require.NoError(t, c.Set(doc{Count: 7}))

		wantErr := assert.AnError
		_, err := c.Update(func(d doc) (doc, error) { return doc{}, wantErr })
		require.ErrorIs(t, err, wantErr)

		got, err := c.Get()
		require.NoError(t, err)
		assert.Equal(t, 7, got.Count)
	})
}

func mustStat(t *testing.T, path string) os.FileInfo {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	return info
}

func mustChtimes(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}
