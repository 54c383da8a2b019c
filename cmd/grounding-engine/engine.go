// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/pdiddy/grounding-engine/internal/cache"
	"github.com/pdiddy/grounding-engine/internal/citation"
	"github.com/pdiddy/grounding-engine/internal/grounding"
	"github.com/pdiddy/grounding-engine/internal/normalize"
	"github.com/pdiddy/grounding-engine/internal/pagemeta"
	"github.com/pdiddy/grounding-engine/internal/redirect"
	"github.com/pdiddy/grounding-engine/pkg/types"
)

// engine holds the components shared by the annotate, resolve and serve
// commands.
type engine struct {
	cache      *cache.Cache
	resolver   *cache.CachedResolver
	normalizer *normalize.Normalizer
	annotator  *grounding.Annotator
}

func newEngine(ctx context.Context, c types.Config, logger *zap.Logger) (*engine, error) {
	store, err := cache.Open(ctx, c.Cache, logger)
	if err != nil {
		return nil, err
	}

	resolver := cache.NewCachedResolver(redirect.New(c.Resolver.ExtraRedirectHosts), store)
	normalizer := normalize.New(resolver, c.Normalizer, c.Resolver.Concurrency, logger)

	opts := grounding.Options{
		Citation: citation.Options{AnnotateListItems: c.Citation.AnnotateListItems},
		Logger:   logger,
	}
	if c.PageMetadata.Enabled {
		opts.Enricher = pagemeta.New(c.PageMetadata, store, logger)
	}

	logger.Debug("engine ready",
		zap.String("cache_backend", store.Backend()),
		zap.Bool("page_metadata", c.PageMetadata.Enabled),
	)
	return &engine{
		cache:      store,
		resolver:   resolver,
		normalizer: normalizer,
		annotator:  grounding.NewAnnotator(normalizer, opts),
	}, nil
}

// Close waits for pending cache writes and releases the durable tier.
func (e *engine) Close() error {
	return e.cache.Close()
}
