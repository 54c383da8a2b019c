// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache memoizes redirect resolution and page metadata in two
// tiers: a bounded in-process LRU checked first, and an optional durable
// Store (SQLite or Redis) checked on a fast-tier miss. Durable errors are
// treated as misses and durable writes never block or fail the caller.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/pdiddy/grounding-engine/pkg/types"
)

const (
	defaultFastTierSize = 4096
	defaultWriteTimeout = 2 * time.Second
)

// Cache is the two-tier cache. It is safe for concurrent use.
type Cache struct {
	fast         *lru.Cache[string, Entry]
	store        Store
	backend      string
	writeTimeout time.Duration
	logger       *zap.Logger
	now          func() time.Time

	mu      sync.Mutex
	closed  bool
	pending sync.WaitGroup
}

// New returns a Cache fronting store, which may be nil for a fast tier
// only. The Cache owns store and closes it in Close.
func New(cfg types.CacheConfig, store Store, logger *zap.Logger) (*Cache, error) {
	size := cfg.FastTierSize
	if size <= 0 {
		size = defaultFastTierSize
	}
	fast, err := lru.New[string, Entry](size)
	if err != nil {
		return nil, fmt.Errorf("creating fast tier: %w", err)
	}

	writeTimeout := cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	backend := string(cfg.Backend)
	if backend == "" {
		backend = string(types.CacheMemory)
	}

	return &Cache{
		fast:         fast,
		store:        store,
		backend:      backend,
		writeTimeout: writeTimeout,
		logger:       logger,
		now:          time.Now,
	}, nil
}

// Open opens the configured durable tier and wraps it in a Cache.
func Open(ctx context.Context, cfg types.CacheConfig, logger *zap.Logger) (*Cache, error) {
	store, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	c, err := New(cfg, store, logger)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, err
	}
	return c, nil
}

func fastKey(ns Namespace, key string) string {
	return string(ns) + "\x00" + key
}

// Get reads the fast tier, then the durable tier. A durable hit is copied
// into the fast tier.
func (c *Cache) Get(ctx context.Context, ns Namespace, key string) (Entry, bool) {
	if e, ok := c.fast.Get(fastKey(ns, key)); ok {
		cacheLookups.WithLabelValues(tierFast, resultHit).Inc()
		return e, true
	}
	cacheLookups.WithLabelValues(tierFast, resultMiss).Inc()

	if c.store == nil {
		return Entry{}, false
	}
	e, found, err := c.store.Get(ctx, ns, key)
	switch {
	case err != nil:
		cacheLookups.WithLabelValues(tierDurable, resultError).Inc()
		c.logger.Warn("durable cache read failed",
			zap.String("backend", c.backend),
			zap.String("namespace", string(ns)),
			zap.Error(err),
		)
		return Entry{}, false
	case !found:
		cacheLookups.WithLabelValues(tierDurable, resultMiss).Inc()
		return Entry{}, false
	}
	cacheLookups.WithLabelValues(tierDurable, resultHit).Inc()
	c.fast.Add(fastKey(ns, key), e)
	return e, true
}

// Set writes the fast tier synchronously and the durable tier in the
// background. Durable failures are logged and counted only. Set after
// Close updates the fast tier alone.
func (c *Cache) Set(ctx context.Context, ns Namespace, key, value string) {
	e := Entry{Namespace: ns, Key: key, Value: value, Timestamp: c.now().UTC()}
	c.fast.Add(fastKey(ns, key), e)

	if c.store == nil {
		return
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.pending.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.pending.Done()
		wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.writeTimeout)
		defer cancel()
		if err := c.store.Set(wctx, e); err != nil {
			cacheWriteFailures.WithLabelValues(c.backend).Inc()
			c.logger.Warn("durable cache write failed",
				zap.String("backend", c.backend),
				zap.String("namespace", string(ns)),
				zap.Error(err),
			)
		}
	}()
}

// CanonicalURL returns the cached resolution of rawURL.
func (c *Cache) CanonicalURL(ctx context.Context, rawURL string) (string, bool) {
	e, ok := c.Get(ctx, NamespaceCanonicalURL, rawURL)
	return e.Value, ok
}

// SetCanonicalURL records that rawURL resolves to canonical.
func (c *Cache) SetCanonicalURL(ctx context.Context, rawURL, canonical string) {
	c.Set(ctx, NamespaceCanonicalURL, rawURL, canonical)
}

// PageMetadata returns the cached metadata of pageURL. Entries that fail
// to decode count as misses.
func (c *Cache) PageMetadata(ctx context.Context, pageURL string) (types.PageMetadata, bool) {
	e, ok := c.Get(ctx, NamespacePageMeta, pageURL)
	if !ok {
		return types.PageMetadata{}, false
	}
	var meta types.PageMetadata
	if err := json.Unmarshal([]byte(e.Value), &meta); err != nil {
		c.logger.Warn("discarding undecodable page metadata", zap.String("url", pageURL), zap.Error(err))
		return types.PageMetadata{}, false
	}
	return meta, true
}

// SetPageMetadata records the metadata of pageURL.
func (c *Cache) SetPageMetadata(ctx context.Context, pageURL string, meta types.PageMetadata) {
	data, err := json.Marshal(meta)
	if err != nil {
		return
	}
	c.Set(ctx, NamespacePageMeta, pageURL, string(data))
}

// Backend names the durable tier ("memory" when there is none).
func (c *Cache) Backend() string {
	return c.backend
}

// Close waits for in-flight durable writes, then closes the store.
func (c *Cache) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.pending.Wait()
	if c.store == nil {
		return nil
	}
	return c.store.Close()
}
