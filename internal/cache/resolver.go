// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"strings"

	"github.com/pdiddy/grounding-engine/internal/redirect"
)

// CachedResolver memoizes a redirect.Resolver in the canonical_url
// namespace. A nil cache resolves without memoization.
type CachedResolver struct {
	resolver *redirect.Resolver
	cache    *Cache
}

// NewCachedResolver returns a CachedResolver.
func NewCachedResolver(resolver *redirect.Resolver, cache *Cache) *CachedResolver {
	return &CachedResolver{resolver: resolver, cache: cache}
}

// Resolve returns the canonical destination of rawURL, computing and
// recording it on a cache miss. Empty input is never cached.
func (r *CachedResolver) Resolve(ctx context.Context, rawURL string) string {
	key := strings.TrimSpace(rawURL)
	if key == "" || r.cache == nil {
		return r.resolver.Resolve(rawURL)
	}
	if canonical, ok := r.cache.CanonicalURL(ctx, key); ok {
		return canonical
	}
	canonical := r.resolver.Resolve(key)
	r.cache.SetCanonicalURL(ctx, key, canonical)
	return canonical
}

// IsRedirectHost delegates to the wrapped resolver.
func (r *CachedResolver) IsRedirectHost(host string) bool {
	return r.resolver.IsRedirectHost(host)
}

// Unresolved delegates to the wrapped resolver.
func (r *CachedResolver) Unresolved(resolved string) bool {
	return r.resolver.Unresolved(resolved)
}
