// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package redirect turns raw source URLs, which are often indirection links
// issued by grounding providers and search engines, into the destination
// they point at. Resolution is total: every input yields a URL, falling
// back to the input itself when nothing better can be decoded.
package redirect

import (
	"net/url"
	"strings"
)

// maxDepth bounds how many nested indirections are unwrapped.
const maxDepth = 3

// Resolver resolves raw URLs. The zero value is not usable; use New.
// A Resolver is immutable after construction and safe for concurrent use.
type Resolver struct {
	extraHosts map[string]bool
}

// New returns a Resolver whose redirect host denylist is extended by
// extraRedirectHosts.
func New(extraRedirectHosts []string) *Resolver {
	extra := make(map[string]bool, len(extraRedirectHosts))
	for _, h := range extraRedirectHosts {
		if h = CleanHost(h); h != "" {
			extra[h] = true
		}
	}
	return &Resolver{extraHosts: extra}
}

var defaultResolver = New(nil)

// Resolve resolves rawURL with the built-in denylist.
func Resolve(rawURL string) string {
	return defaultResolver.Resolve(rawURL)
}

// Resolve returns the best-effort canonical destination of rawURL. The
// strategies are tried in order and the first success wins:
//
//  1. parse (retrying with an https:// prefix), else return rawURL as is;
//  2. decode the base64url token of a known aggregator path;
//  3. read the destination from a redirect query parameter;
//  4. return the parsed URL re-serialized.
//
// Destinations found in steps 2 and 3 are resolved again, so the result of
// Resolve is a fixed point: Resolve(Resolve(u)) == Resolve(u).
func (r *Resolver) Resolve(rawURL string) string {
	return r.resolve(rawURL, 0)
}

func (r *Resolver) resolve(rawURL string, depth int) string {
	u, ok := parseLenient(rawURL)
	if !ok {
		return rawURL
	}

	dest, ok := r.unwrap(u)
	if !ok {
		return canonical(u)
	}
	if depth < maxDepth {
		return r.resolve(dest, depth+1)
	}
	if du, ok := parseLenient(dest); ok {
		return canonical(du)
	}
	return dest
}

// unwrap returns the destination embedded in u, if any.
func (r *Resolver) unwrap(u *url.URL) (string, bool) {
	if token, ok := aggregatorToken(u); ok {
		if dest, ok := DecodeToken(token); ok {
			return dest, true
		}
	}
	if isRedirectStyle(u) {
		if dest, ok := destinationFromQuery(u); ok {
			return dest, true
		}
	}
	return "", false
}

// Unresolved reports whether resolved still points at a redirect host,
// meaning resolution only normalized an indirection link it could not
// decode.
func (r *Resolver) Unresolved(resolved string) bool {
	u, ok := parseLenient(resolved)
	if !ok {
		return true
	}
	return r.IsRedirectHost(u.Host)
}

// parseLenient parses raw as an absolute URL. A parse error or a result
// without scheme and host counts as failure, after which the input is
// retried with an https:// prefix.
func parseLenient(raw string) (*url.URL, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, false
	}
	u, err := url.Parse(s)
	if err == nil && u.Scheme != "" && u.Host != "" {
		return u, true
	}
	// "http:///x" is a URL with an empty host, not a bare host name.
	if err == nil && u.Scheme != "" && u.Opaque == "" {
		return nil, false
	}
	// "mailto:a@b.com" is an opaque URL; only "host:port" reads as a host.
	if err == nil && u.Opaque != "" && !startsWithDigit(u.Opaque) {
		return nil, false
	}
	u, err = url.Parse("https://" + s)
	if err != nil || u.Host == "" || strings.ContainsAny(u.Host, " \t") {
		return nil, false
	}
	return u, true
}

func startsWithDigit(s string) bool {
	return s != "" && s[0] >= '0' && s[0] <= '9'
}

// canonical re-serializes u with a lowercase host. Parsing its output and
// calling canonical again yields the same string.
func canonical(u *url.URL) string {
	c := *u
	c.Scheme = strings.ToLower(c.Scheme)
	c.Host = strings.ToLower(c.Host)
	return c.String()
}

// isAbsoluteHTTP reports whether s parses as an http(s) URL with a host.
func isAbsoluteHTTP(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
