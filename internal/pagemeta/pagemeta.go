// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pagemeta fetches the card-preview metadata of a page (og:title,
// og:description, og:image) with a bounded body size, 429 backoff and a
// cache in front.
package pagemeta

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/pdiddy/grounding-engine/internal/cache"
	"github.com/pdiddy/grounding-engine/internal/httputil"
	"github.com/pdiddy/grounding-engine/pkg/types"
)

const (
	defaultTimeout      = 10 * time.Second
	defaultUserAgent    = "grounding-engine/0.1"
	defaultMaxBodyBytes = 1 << 20
)

// ErrNotHTML is returned when the page is not served as HTML.
var ErrNotHTML = errors.New("page is not HTML")

// Fetcher fetches page metadata. It is safe for concurrent use.
type Fetcher struct {
	client    *http.Client
	guard     bool
	cache     *cache.Cache
	policy    httputil.Policy
	userAgent string
	maxBody   int64
	logger    *zap.Logger
}

// New returns a Fetcher. c may be nil to disable caching.
func New(cfg types.PageMetadataConfig, c *cache.Cache, logger *zap.Logger) *Fetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		client:    newClient(timeout, cfg.AllowPrivateNetworks),
		guard:     !cfg.AllowPrivateNetworks,
		cache:     c,
		policy:    httputil.Policy{MaxRetries: cfg.MaxRetries, Logger: logger},
		userAgent: ua,
		maxBody:   maxBody,
		logger:    logger,
	}
}

// newClient returns an HTTP client that, unless allowPrivate is set, refuses
// to connect to non-public addresses and re-validates redirect targets.
func newClient(timeout time.Duration, allowPrivate bool) *http.Client {
	if allowPrivate {
		return &http.Client{Timeout: timeout}
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = (&net.Dialer{Timeout: timeout, Control: dialControl}).DialContext
	return &http.Client{
		Timeout:       timeout,
		Transport:     transport,
		CheckRedirect: checkRedirect,
	}
}

// WithClient replaces the HTTP client, for tests and custom transports.
func (f *Fetcher) WithClient(client *http.Client) *Fetcher {
	f.client = client
	return f
}

// WithPolicy replaces the retry policy.
func (f *Fetcher) WithPolicy(p httputil.Policy) *Fetcher {
	if p.Logger == nil {
		p.Logger = f.logger
	}
	f.policy = p
	return f
}

// Fetch returns the metadata of pageURL, from cache when possible. Parsed
// results are cached even when empty; failures are not.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (types.PageMetadata, error) {
	if f.cache != nil {
		if meta, ok := f.cache.PageMetadata(ctx, pageURL); ok {
			return meta, nil
		}
	}

	meta, err := f.fetch(ctx, pageURL)
	if err != nil {
		return types.PageMetadata{}, err
	}
	if f.cache != nil {
		f.cache.SetPageMetadata(ctx, pageURL, meta)
	}
	return meta, nil
}

func (f *Fetcher) fetch(ctx context.Context, pageURL string) (types.PageMetadata, error) {
	base, err := url.Parse(pageURL)
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") {
		return types.PageMetadata{}, fmt.Errorf("invalid page URL %q", pageURL)
	}
	if f.guard {
		if _, err := validateURL(pageURL); err != nil {
			return types.PageMetadata{}, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return types.PageMetadata{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.1")

	resp, err := httputil.DoWithRetry(ctx, f.client, req, f.policy)
	if err != nil {
		return types.PageMetadata{}, fmt.Errorf("fetching %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return types.PageMetadata{}, fmt.Errorf("fetching %s: HTTP %d", pageURL, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil || (mt != "text/html" && mt != "application/xhtml+xml") {
			return types.PageMetadata{}, fmt.Errorf("%w: %s", ErrNotHTML, ct)
		}
	}

	// Redirects change the base for relative image URLs.
	if resp.Request != nil && resp.Request.URL != nil {
		base = resp.Request.URL
	}
	meta := Parse(io.LimitReader(resp.Body, f.maxBody), base)
	f.logger.Debug("page metadata fetched",
		zap.String("url", pageURL),
		zap.Bool("empty", meta.IsEmpty()),
	)
	return meta, nil
}

// Parse extracts metadata from an HTML document. Titles prefer og:title,
// then twitter:title, then <title>; descriptions prefer og:description,
// then description, then twitter:description. Relative image URLs are
// resolved against base, which may be nil.
func Parse(r io.Reader, base *url.URL) types.PageMetadata {
	var (
		props   = make(map[string]string)
		title   string
		inTitle bool
	)

	z := html.NewTokenizer(r)
scan:
	for {
		switch z.Next() {
		case html.ErrorToken:
			break scan
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			switch tok.DataAtom {
			case atom.Title:
				inTitle = title == ""
			case atom.Meta:
				key, content := metaAttrs(tok)
				if key != "" && content != "" {
					if _, seen := props[key]; !seen {
						props[key] = content
					}
				}
			case atom.Body:
				break scan
			}
		case html.EndTagToken:
			tok := z.Token()
			switch tok.DataAtom {
			case atom.Title:
				inTitle = false
			case atom.Head:
				break scan
			}
		case html.TextToken:
			if inTitle {
				title += string(z.Text())
			}
		}
	}

	meta := types.PageMetadata{
		Title:       first(props["og:title"], props["twitter:title"], title),
		Description: first(props["og:description"], props["description"], props["twitter:description"]),
		Image:       first(props["og:image"], props["og:image:url"], props["twitter:image"]),
	}
	if meta.Image != "" && base != nil {
		if ref, err := url.Parse(meta.Image); err == nil {
			meta.Image = base.ResolveReference(ref).String()
		}
	}
	return meta
}

// metaAttrs returns the lowercased property or name of a <meta> tag and its
// content.
func metaAttrs(tok html.Token) (key, content string) {
	for _, a := range tok.Attr {
		switch strings.ToLower(a.Key) {
		case "property":
			key = strings.ToLower(strings.TrimSpace(a.Val))
		case "name":
			if key == "" {
				key = strings.ToLower(strings.TrimSpace(a.Val))
			}
		case "content":
			content = a.Val
		}
	}
	return key, content
}

// first returns the first non-blank value with whitespace collapsed.
func first(values ...string) string {
	for _, v := range values {
		if v = strings.Join(strings.Fields(v), " "); v != "" {
			return v
		}
	}
	return ""
}
