// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/grounding-engine/pkg/types"
)

// memStore is an in-memory Store with switchable failure modes.
type memStore struct {
	mu       sync.Mutex
	entries  map[string]Entry
	getErr   error
	setErr   error
	setGate  chan struct{}
	setCalls int
	closed   bool
}

func newMemStore() *memStore {
	return &memStore{entries: make(map[string]Entry)}
}

func (m *memStore) Get(_ context.Context, ns Namespace, key string) (Entry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return Entry{}, false, m.getErr
	}
	e, ok := m.entries[fastKey(ns, key)]
	return e, ok, nil
}

func (m *memStore) Set(ctx context.Context, e Entry) error {
	if m.setGate != nil {
		select {
		case <-m.setGate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalls++
	if m.setErr != nil {
		return m.setErr
	}
	m.entries[fastKey(e.Namespace, e.Key)] = e
	return nil
}

func (m *memStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *memStore) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func TestCacheFastTierOnly(t *testing.T) {
	c, err := New(types.CacheConfig{}, nil, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer c.Close()
	ctx := context.Background()

	_, ok := c.CanonicalURL(ctx, "https://g.co/x")
	assert.False(t, ok)

	c.SetCanonicalURL(ctx, "https://g.co/x", "https://example.com/x")
	got, ok := c.CanonicalURL(ctx, "https://g.co/x")
	assert.True(t, ok)
	assert.Equal(t, "https://example.com/x", got)
	assert.Equal(t, "memory", c.Backend())
}

func TestCacheNamespacesAreSeparate(t *testing.T) {
	c, err := New(types.CacheConfig{}, nil, nil)
	require.NoError(t, err)
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, NamespaceCanonicalURL, "k", "canonical")
	_, ok := c.Get(ctx, NamespacePageMeta, "k")
	assert.False(t, ok)
}

func TestCacheDurableHitPromotedToFastTier(t *testing.T) {
	store := newMemStore()
	store.entries[fastKey(NamespaceCanonicalURL, "raw")] = Entry{Namespace: NamespaceCanonicalURL, Key: "raw", Value: "https://example.com/"}

	c, err := New(types.CacheConfig{Backend: "mem"}, store, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer c.Close()
	ctx := context.Background()

	got, ok := c.CanonicalURL(ctx, "raw")
	require.True(t, ok)
	assert.Equal(t, "https://example.com/", got)

	// Remove from the durable tier; the fast tier still answers.
	store.mu.Lock()
	delete(store.entries, fastKey(NamespaceCanonicalURL, "raw"))
	store.mu.Unlock()

	got, ok = c.CanonicalURL(ctx, "raw")
	assert.True(t, ok)
	assert.Equal(t, "https://example.com/", got)
}

func TestCacheWriteThrough(t *testing.T) {
	store := newMemStore()
	c, err := New(types.CacheConfig{Backend: "mem"}, store, zaptest.NewLogger(t))
	require.NoError(t, err)

	c.SetCanonicalURL(context.Background(), "raw", "https://example.com/")
	require.NoError(t, c.Close())

	assert.Equal(t, 1, store.len())
	assert.True(t, store.closed)
}

func TestCacheDurableErrorsAreMisses(t *testing.T) {
	store := newMemStore()
	store.getErr = errors.New("connection refused")
	store.setErr = errors.New("connection refused")

	c, err := New(types.CacheConfig{Backend: "flaky"}, store, zaptest.NewLogger(t))
	require.NoError(t, err)
	ctx := context.Background()

	before := testutil.ToFloat64(cacheWriteFailures.WithLabelValues("flaky"))

	_, ok := c.CanonicalURL(ctx, "raw")
	assert.False(t, ok)

	c.SetCanonicalURL(ctx, "raw", "https://example.com/")
	got, ok := c.CanonicalURL(ctx, "raw")
	assert.True(t, ok, "fast tier is written even when the durable write fails")
	assert.Equal(t, "https://example.com/", got)

	require.NoError(t, c.Close())
	assert.Equal(t, before+1, testutil.ToFloat64(cacheWriteFailures.WithLabelValues("flaky")))
}

func TestCacheSetDoesNotBlockOnDurableTier(t *testing.T) {
	store := newMemStore()
	store.setGate = make(chan struct{})
	c, err := New(types.CacheConfig{Backend: "mem", WriteTimeout: time.Minute}, store, zaptest.NewLogger(t))
	require.NoError(t, err)

	returned := make(chan struct{})
	go func() {
		c.SetCanonicalURL(context.Background(), "raw", "https://example.com/")
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(5 * time.Second):
		t.Fatal("Set blocked on the durable tier")
	}

	closed := make(chan struct{})
	go func() {
		c.Close()
		close(closed)
	}()
	select {
	case <-closed:
		t.Fatal("Close returned before the pending write finished")
	case <-time.After(50 * time.Millisecond):
	}

	close(store.setGate)
	<-closed
	assert.Equal(t, 1, store.len())
}

func TestCacheSetAfterClose(t *testing.T) {
	store := newMemStore()
	c, err := New(types.CacheConfig{Backend: "mem"}, store, nil)
	require.NoError(t, err)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close(), "Close is idempotent")

	c.SetCanonicalURL(context.Background(), "raw", "https://example.com/")
	assert.Zero(t, store.setCalls)
}

func TestCacheWriteCanceledContextStillPersists(t *testing.T) {
	store := newMemStore()
	c, err := New(types.CacheConfig{Backend: "mem"}, store, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	c.SetCanonicalURL(ctx, "raw", "https://example.com/")
	cancel()

	require.NoError(t, c.Close())
	assert.Equal(t, 1, store.len())
}

func TestCachePageMetadata(t *testing.T) {
	c, err := New(types.CacheConfig{}, nil, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer c.Close()
	ctx := context.Background()

	meta := types.PageMetadata{Title: "Example", Description: "An example page", Image: "https://example.com/og.png"}
	c.SetPageMetadata(ctx, "https://example.com/", meta)

	got, ok := c.PageMetadata(ctx, "https://example.com/")
	assert.True(t, ok)
	assert.Equal(t, meta, got)

	c.Set(ctx, NamespacePageMeta, "https://bad.example.com/", "{not json")
	_, ok = c.PageMetadata(ctx, "https://bad.example.com/")
	assert.False(t, ok)
}

func TestCacheFastTierBounded(t *testing.T) {
	c, err := New(types.CacheConfig{FastTierSize: 2}, nil, nil)
	require.NoError(t, err)
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, NamespaceCanonicalURL, "a", "1")
	c.Set(ctx, NamespaceCanonicalURL, "b", "2")
	c.Set(ctx, NamespaceCanonicalURL, "c", "3")

	_, ok := c.Get(ctx, NamespaceCanonicalURL, "a")
	assert.False(t, ok, "least recently used entry is evicted")
	_, ok = c.Get(ctx, NamespaceCanonicalURL, "c")
	assert.True(t, ok)
}

func TestCacheConcurrentUse(t *testing.T) {
	store := newMemStore()
	c, err := New(types.CacheConfig{Backend: "mem", FastTierSize: 8}, store, nil)
	require.NoError(t, err)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.SetCanonicalURL(ctx, "same", "https://example.com/")
			c.CanonicalURL(ctx, "same")
		}()
	}
	wg.Wait()
	require.NoError(t, c.Close())

	assert.Equal(t, 1, store.len(), "concurrent writes to one key are idempotent")
}

func TestOpenSQLiteRoundTrip(t *testing.T) {
	cfg := types.CacheConfig{
		Backend:    types.CacheSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "nested", "cache.db"),
	}
	ctx := context.Background()

	c, err := Open(ctx, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	c.SetCanonicalURL(ctx, "raw", "https://example.com/")
	require.NoError(t, c.Close())

	reopened, err := Open(ctx, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer reopened.Close()

	got, ok := reopened.CanonicalURL(ctx, "raw")
	assert.True(t, ok, "durable tier survives a restart")
	assert.Equal(t, "https://example.com/", got)
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), types.CacheConfig{Backend: "etcd"}, nil)
	assert.ErrorContains(t, err, "unknown cache backend")
}
