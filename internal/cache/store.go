// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/grounding-engine/pkg/types"
)

// Namespace separates the logical maps that share one cache.
type Namespace string

const (
	// NamespaceCanonicalURL maps raw source URLs to canonical URLs.
	NamespaceCanonicalURL Namespace = "canonical_url"

	// NamespacePageMeta maps canonical URLs to JSON-encoded PageMetadata.
	NamespacePageMeta Namespace = "page_meta"
)

// Namespaces lists every namespace in a stable order.
var Namespaces = []Namespace{NamespaceCanonicalURL, NamespacePageMeta}

// Entry is one cached value.
type Entry struct {
	Namespace Namespace `json:"namespace" yaml:"namespace"`
	Key       string    `json:"key" yaml:"key"`
	Value     string    `json:"value" yaml:"value"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// Store is a durable cache tier. Entries never expire. Set on an existing
// key overwrites it. Implementations must be safe for concurrent use.
type Store interface {
	// Get returns found=false with a nil error on a miss.
	Get(ctx context.Context, ns Namespace, key string) (e Entry, found bool, err error)
	Set(ctx context.Context, e Entry) error
	Close() error
}

// OpenStore opens the durable tier selected by cfg.Backend. The memory
// backend has no durable tier and returns a nil Store.
func OpenStore(ctx context.Context, cfg types.CacheConfig, logger *zap.Logger) (Store, error) {
	switch cfg.Backend {
	case "", types.CacheMemory:
		return nil, nil
	case types.CacheSQLite:
		s, err := NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case types.CacheRedis:
		s, err := NewRedisStore(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
