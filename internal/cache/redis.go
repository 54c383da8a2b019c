// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pdiddy/grounding-engine/pkg/types"
)

const defaultKeyPrefix = "grounding"

// RedisStore is a durable tier shared between processes through Redis.
// Each entry is a hash at "<prefix>:<namespace>:<key>" with no expiry.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to cfg.RedisAddr and pings it once.
func NewRedisStore(ctx context.Context, cfg types.CacheConfig, logger *zap.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.RedisAddr, err)
	}
	if logger != nil {
		logger.Info("redis cache connected", zap.String("addr", cfg.RedisAddr), zap.Int("db", cfg.RedisDB))
	}
	return NewRedisStoreFromClient(client, cfg.KeyPrefix), nil
}

// NewRedisStoreFromClient wraps an existing client. Close closes it.
func NewRedisStoreFromClient(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(ns Namespace, key string) string {
	return s.prefix + ":" + string(ns) + ":" + key
}

// Get looks up one entry.
func (s *RedisStore) Get(ctx context.Context, ns Namespace, key string) (Entry, bool, error) {
	fields, err := s.client.HGetAll(ctx, s.key(ns, key)).Result()
	if err != nil {
		return Entry{}, false, fmt.Errorf("reading %s entry: %w", ns, err)
	}
	value, ok := fields["value"]
	if !ok {
		return Entry{}, false, nil
	}

	e := Entry{Namespace: ns, Key: key, Value: value}
	if ms, err := strconv.ParseInt(fields["ts"], 10, 64); err == nil {
		e.Timestamp = time.UnixMilli(ms).UTC()
	}
	return e, true, nil
}

// Set writes e; the last write wins.
func (s *RedisStore) Set(ctx context.Context, e Entry) error {
	err := s.client.HSet(ctx, s.key(e.Namespace, e.Key),
		"value", e.Value,
		"ts", strconv.FormatInt(e.Timestamp.UnixMilli(), 10),
	).Err()
	if err != nil {
		return fmt.Errorf("writing %s entry: %w", e.Namespace, err)
	}
	return nil
}

// Close closes the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
