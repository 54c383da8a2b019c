// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httpapi

import (
	"fmt"
	"mime"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/grounding-engine/internal/cache"
	"github.com/pdiddy/grounding-engine/internal/grounding"
	"github.com/pdiddy/grounding-engine/internal/normalize"
	"github.com/pdiddy/grounding-engine/pkg/types"
)

const (
	defaultMaxBodyBytes = 4 << 20
	maxResolveURLs      = 100
)

// Handler serves the API endpoints.
type Handler struct {
	annotator  *grounding.Annotator
	resolver   *cache.CachedResolver
	normalizer *normalize.Normalizer
	maxBody    int64
	logger     *zap.Logger
}

// NewHandler returns a Handler.
func NewHandler(annotator *grounding.Annotator, resolver *cache.CachedResolver, normalizer *normalize.Normalizer, cfg types.ServerConfig, logger *zap.Logger) *Handler {
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		annotator:  annotator,
		resolver:   resolver,
		normalizer: normalizer,
		maxBody:    maxBody,
		logger:     logger,
	}
}

// Healthz reports that the process is serving.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Annotate accepts an answer document as JSON, or as YAML when the
// Content-Type says so, and returns the annotated answer.
func (h *Handler) Annotate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)

	format := grounding.FormatJSON
	if mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err == nil && strings.Contains(mt, "yaml") {
		format = grounding.FormatYAML
	}
	doc, err := grounding.DecodeDocument(r.Body, format)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, h.annotator.Annotate(r.Context(), grounding.ToAnswer(doc)))
}

type resolveRequest struct {
	URLs []string `json:"urls"`
}

type resolveResult struct {
	Raw          string `json:"raw"`
	Resolved     string `json:"resolved"`
	Domain       string `json:"domain,omitempty"`
	RedirectHost bool   `json:"redirect_host"`
}

// Resolve resolves a batch of raw URLs.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)

	var req resolveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if len(req.URLs) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "urls must not be empty")
		return
	}
	if len(req.URLs) > maxResolveURLs {
		writeError(w, http.StatusBadRequest, "too_many_urls", fmt.Sprintf("at most %d urls per request", maxResolveURLs))
		return
	}

	results := make([]resolveResult, 0, len(req.URLs))
	for _, raw := range req.URLs {
		resolved := h.resolver.Resolve(r.Context(), raw)
		results = append(results, resolveResult{
			Raw:          raw,
			Resolved:     resolved,
			Domain:       h.normalizer.DeriveDomain(types.RawSource{URL: raw}, resolved),
			RedirectHost: h.resolver.Unresolved(resolved),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}
