// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package grounding turns a grounded model answer into a presentable one.
// The Annotator resolves and deduplicates the answer's sources, places
// inline citation markers, and orders the source list so that position i
// is citation number i+1. Adapters flatten provider grounding shapes into
// the (text, sources, segments) triple.
package grounding

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/grounding-engine/internal/citation"
	"github.com/pdiddy/grounding-engine/internal/normalize"
	"github.com/pdiddy/grounding-engine/pkg/types"
)

const defaultEnrichConcurrency = 4

// Enricher fetches page metadata for a canonical URL.
// *pagemeta.Fetcher satisfies it.
type Enricher interface {
	Fetch(ctx context.Context, pageURL string) (types.PageMetadata, error)
}

// Options configures an Annotator.
type Options struct {
	Citation citation.Options

	// Enricher, when set, attaches page metadata to resolved sources.
	Enricher          Enricher
	EnrichConcurrency int

	Logger *zap.Logger
}

// Annotator composes normalization and citation placement. It is safe for
// concurrent use.
type Annotator struct {
	normalizer *normalize.Normalizer
	opts       Options
	logger     *zap.Logger
}

// NewAnnotator returns an Annotator.
func NewAnnotator(normalizer *normalize.Normalizer, opts Options) *Annotator {
	if opts.EnrichConcurrency <= 0 {
		opts.EnrichConcurrency = defaultEnrichConcurrency
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Annotator{normalizer: normalizer, opts: opts, logger: logger}
}

// Annotate resolves, deduplicates and cites answer. It never fails: bad
// segments and unresolvable URLs only reduce the quality of the result.
func (a *Annotator) Annotate(ctx context.Context, answer types.Answer) types.AnnotatedAnswer {
	resolved := a.normalizer.Normalize(ctx, answer.Sources)
	p := citation.Place(answer.Text, answer.Segments, normalize.IndexRemap(resolved), a.opts.Citation)
	sources := orderByCitation(resolved, p.Order)

	if a.opts.Enricher != nil {
		a.enrich(ctx, sources)
	}

	a.logger.Debug("answer annotated",
		zap.Int("sources", len(answer.Sources)),
		zap.Int("resolved", len(resolved)),
		zap.Int("segments", len(answer.Segments)),
		zap.Int("cited", p.CitedCount),
	)
	return types.AnnotatedAnswer{
		Text:       p.Text,
		Sources:    sources,
		Groups:     p.Groups,
		CitedCount: p.CitedCount,
	}
}

// orderByCitation returns resolved reordered so that the source printed as
// k sits at index k-1. order holds 1-based positions into resolved.
// Uncited sources follow in their original order.
func orderByCitation(resolved []types.ResolvedSource, order []int) []types.ResolvedSource {
	out := make([]types.ResolvedSource, 0, len(resolved))
	used := make([]bool, len(resolved))
	for _, n := range order {
		if n < 1 || n > len(resolved) || used[n-1] {
			continue
		}
		used[n-1] = true
		out = append(out, resolved[n-1])
	}
	for i, rs := range resolved {
		if !used[i] {
			out = append(out, rs)
		}
	}
	return out
}

// enrich fills Page on each source in place. Fetch failures are logged and
// leave Page nil.
func (a *Annotator) enrich(ctx context.Context, sources []types.ResolvedSource) {
	var g errgroup.Group
	g.SetLimit(a.opts.EnrichConcurrency)
	for i := range sources {
		if sources[i].CanonicalURL == "" {
			continue
		}
		i := i
		g.Go(func() error {
			meta, err := a.opts.Enricher.Fetch(ctx, sources[i].CanonicalURL)
			if err != nil {
				a.logger.Debug("page metadata unavailable",
					zap.String("url", sources[i].CanonicalURL),
					zap.Error(err),
				)
				return nil
			}
			if !meta.IsEmpty() {
				sources[i].Page = &meta
			}
			return nil
		})
	}
	_ = g.Wait()
}
