// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package grounding

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/grounding-engine/internal/cache"
	"github.com/pdiddy/grounding-engine/internal/citation"
	"github.com/pdiddy/grounding-engine/internal/normalize"
	"github.com/pdiddy/grounding-engine/internal/redirect"
	"github.com/pdiddy/grounding-engine/pkg/types"
)

func vertexURL(dest string) string {
	return "https://vertexaisearch.cloud.google.com/grounding-api-redirect/" +
		base64.RawURLEncoding.EncodeToString([]byte("\x0a\x20"+dest+"\x12\x00"))
}

func newTestAnnotator(t *testing.T, opts Options) *Annotator {
	t.Helper()
	c, err := cache.New(types.CacheConfig{}, nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	resolver := cache.NewCachedResolver(redirect.New(nil), c)
	opts.Logger = zaptest.NewLogger(t)
	return NewAnnotator(normalize.New(resolver, types.NormalizerConfig{}, 4, opts.Logger), opts)
}

const goText = "Go is a language designed at Google. It is statically typed.\n\nGo 1.0 shipped in 2012."

func goAnswer() types.Answer {
	return types.Answer{
		Text: goText,
		Sources: []types.RawSource{
			{Title: "go.dev", URL: vertexURL("https://go.dev/doc")},
			{Title: "wikipedia.org", URL: "https://en.wikipedia.org/wiki/Go_(programming_language)"},
			{Title: "go.dev", URL: vertexURL("https://go.dev/doc")},
			{Title: "unused.example.com", URL: "https://unused.example.com/"},
		},
		Segments: []types.GroundingSegment{
			{TextStart: 0, TextEnd: 36, SourceIndices: []int{1}},
			{TextStart: 37, TextEnd: 60, SourceIndices: []int{2}},
			{TextStart: 62, TextEnd: 85, SourceIndices: []int{0}},
		},
	}
}

func TestAnnotate(t *testing.T) {
	a := newTestAnnotator(t, Options{})

	got := a.Annotate(context.Background(), goAnswer())

	assert.Equal(t, "Go is a language designed at Google. It is statically typed. [1][2]\n\nGo 1.0 shipped in 2012. [2]", got.Text)
	assert.Equal(t, 2, got.CitedCount)
	require.Len(t, got.Sources, 3)

	assert.Equal(t, "https://en.wikipedia.org/wiki/Go_(programming_language)", got.Sources[0].CanonicalURL)
	assert.Equal(t, "Wikipedia", got.Sources[0].DisplayName)
	assert.Equal(t, "https://go.dev/doc", got.Sources[1].CanonicalURL)
	assert.Equal(t, "Go", got.Sources[1].DisplayName)
	assert.Equal(t, []int{0, 2}, got.Sources[1].OriginalIndices)
	assert.Equal(t, "unused.example.com", got.Sources[2].Domain, "uncited sources follow the cited ones")

	assert.Equal(t, []types.CitationGroup{
		{ParagraphEndOffset: 60, CitationNumbers: []int{1, 2}},
		{ParagraphEndOffset: 85, CitationNumbers: []int{2}},
	}, got.Groups)
}

func TestAnnotateMarkersMatchSourcePositions(t *testing.T) {
	a := newTestAnnotator(t, Options{})
	got := a.Annotate(context.Background(), goAnswer())

	nums := citation.ParseMarkers(got.Text)
	require.NotEmpty(t, nums)
	for _, n := range nums {
		require.LessOrEqual(t, n, got.CitedCount)
		require.LessOrEqual(t, n, len(got.Sources))
	}
	assert.Equal(t, goText, citation.StripMarkers(got.Text))
}

func TestAnnotateNoGrounding(t *testing.T) {
	a := newTestAnnotator(t, Options{})
	got := a.Annotate(context.Background(), types.Answer{Text: "Nothing to cite."})
	assert.Equal(t, "Nothing to cite.", got.Text)
	assert.Zero(t, got.CitedCount)
	assert.Empty(t, got.Sources)
}

type stubEnricher struct{}

func (stubEnricher) Fetch(_ context.Context, pageURL string) (types.PageMetadata, error) {
	if strings.HasPrefix(pageURL, "https://go.dev/") {
		return types.PageMetadata{Title: "Documentation - The Go Programming Language"}, nil
	}
	if strings.Contains(pageURL, "unused") {
		return types.PageMetadata{}, nil
	}
	return types.PageMetadata{}, errors.New("fetch failed")
}

func TestAnnotateEnrichment(t *testing.T) {
	a := newTestAnnotator(t, Options{Enricher: stubEnricher{}, EnrichConcurrency: 2})

	got := a.Annotate(context.Background(), goAnswer())

	require.Len(t, got.Sources, 3)
	assert.Nil(t, got.Sources[0].Page, "fetch errors leave Page unset")
	require.NotNil(t, got.Sources[1].Page)
	assert.Equal(t, "Documentation - The Go Programming Language", got.Sources[1].Page.Title)
	assert.Nil(t, got.Sources[2].Page, "empty metadata is not attached")
}

func TestOrderByCitation(t *testing.T) {
	resolved := []types.ResolvedSource{{Domain: "a"}, {Domain: "b"}, {Domain: "c"}, {Domain: "d"}}

	got := orderByCitation(resolved, []int{3, 1, 9, 3})

	var domains []string
	for _, s := range got {
		domains = append(domains, s.Domain)
	}
	assert.Equal(t, []string{"c", "a", "b", "d"}, domains)
}
