// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize turns the raw sources of a grounded answer into an
// ordered, deduplicated list of resolved sources with a domain and display
// name each, plus the mapping from raw indices to list positions.
package normalize

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/grounding-engine/pkg/types"
)

const defaultConcurrency = 8

// Resolver resolves raw source URLs and classifies redirect hosts.
// *cache.CachedResolver satisfies it.
type Resolver interface {
	Resolve(ctx context.Context, rawURL string) string
	IsRedirectHost(host string) bool
}

// Normalizer builds ResolvedSource lists. It is safe for concurrent use.
type Normalizer struct {
	resolver    Resolver
	names       map[string]string
	concurrency int
	logger      *zap.Logger
}

// New returns a Normalizer. concurrency bounds parallel URL resolution
// (default 8). A nil logger disables logging.
func New(resolver Resolver, cfg types.NormalizerConfig, concurrency int, logger *zap.Logger) *Normalizer {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{
		resolver:    resolver,
		names:       siteNames(cfg.DisplayNames),
		concurrency: concurrency,
		logger:      logger,
	}
}

// Normalize resolves every source, derives its domain and display name,
// and merges sources whose canonical URLs are equal. The result is ordered
// by first appearance; each raw index appears in exactly one entry's
// OriginalIndices. A merged entry keeps the first non-empty title, snippet
// and domain among its members.
func (n *Normalizer) Normalize(ctx context.Context, sources []types.RawSource) []types.ResolvedSource {
	canon := n.resolveAll(ctx, sources)

	out := make([]types.ResolvedSource, 0, len(sources))
	pos := make(map[string]int, len(sources))
	for i, src := range sources {
		key := canon[i]
		if key == "" {
			// Sources without a URL never merge.
			key = "\x00" + strconv.Itoa(i)
		}

		if p, ok := pos[key]; ok {
			rs := &out[p]
			rs.OriginalIndices = append(rs.OriginalIndices, i)
			if rs.Title == "" {
				rs.Title = strings.TrimSpace(src.Title)
			}
			if rs.Snippet == "" {
				rs.Snippet = strings.TrimSpace(src.Snippet)
			}
			if rs.Domain == "" {
				if d := n.DeriveDomain(src, canon[i]); d != "" {
					rs.Domain = d
					rs.DisplayName = n.DisplayName(d)
				}
			}
			continue
		}

		domain := n.DeriveDomain(src, canon[i])
		pos[key] = len(out)
		out = append(out, types.ResolvedSource{
			CanonicalURL:    canon[i],
			Domain:          domain,
			DisplayName:     n.DisplayName(domain),
			Title:           strings.TrimSpace(src.Title),
			Snippet:         strings.TrimSpace(src.Snippet),
			OriginalIndices: []int{i},
		})
	}

	n.logger.Debug("sources normalized",
		zap.Int("raw", len(sources)),
		zap.Int("resolved", len(out)),
	)
	return out
}

// resolveAll resolves the source URLs with bounded parallelism. Results are
// positional, so the output does not depend on completion order.
func (n *Normalizer) resolveAll(ctx context.Context, sources []types.RawSource) []string {
	out := make([]string, len(sources))
	var g errgroup.Group
	g.SetLimit(n.concurrency)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			out[i] = n.resolver.Resolve(ctx, src.URL)
			if n.unresolvedHost(out[i]) {
				n.logger.Debug("redirect left unresolved",
					zap.Int("index", i),
					zap.String("url", src.URL),
				)
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (n *Normalizer) unresolvedHost(u string) bool {
	h := urlHost(u)
	return h != "" && n.resolver.IsRedirectHost(h)
}

// IndexRemap maps each raw source index to the 1-based position of the
// resolved source that absorbed it.
func IndexRemap(resolved []types.ResolvedSource) map[int]int {
	remap := make(map[int]int)
	for p, rs := range resolved {
		for _, i := range rs.OriginalIndices {
			remap[i] = p + 1
		}
	}
	return remap
}
