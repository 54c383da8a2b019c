// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package redirect

import (
	"net"
	"net/url"
	"regexp"
	"strings"
)

// redirectHosts are hosts that issue indirection links rather than host
// original content. Compared after CleanHost.
var redirectHosts = map[string]bool{
	"vertexaisearch.cloud.google.com": true,
	"news.google.com":                 true,
	"google.com":                      true,
	"l.facebook.com":                  true,
	"lm.facebook.com":                 true,
	"out.reddit.com":                  true,
	"r.search.yahoo.com":              true,
	"search.yahoo.com":                true,
	"bing.com":                        true,
	"duckduckgo.com":                  true,
	"t.co":                            true,
	"lnkd.in":                         true,
	"t.umblr.com":                     true,
	"href.li":                         true,
}

// redirectHostSuffixes cover user-content and regional subdomains of the
// hosts above.
var redirectHostSuffixes = []string{
	".googleusercontent.com",
	".vertexaisearch.cloud.google.com",
}

// googleHostRe matches Google's country search domains (google.co.uk,
// google.de, ...).
var googleHostRe = regexp.MustCompile(`^google\.(?:[a-z]{2,3}|com?\.[a-z]{2})$`)

// aggregatorPatterns are hosts whose path carries an encoded destination in
// the segment that follows a marker segment.
var aggregatorPatterns = []struct {
	host   string
	marker string
}{
	{"vertexaisearch.cloud.google.com", "grounding-api-redirect"},
	{"news.google.com", "articles"},
	{"news.google.com", "read"},
}

// searchRedirects are search-engine and social redirect endpoints that
// carry the destination in a query parameter.
var searchRedirects = []struct {
	host       string
	pathPrefix string
}{
	{"google.com", "/url"},
	{"youtube.com", "/redirect"},
	{"l.facebook.com", "/l.php"},
	{"lm.facebook.com", "/l.php"},
	{"duckduckgo.com", "/l/"},
	{"out.reddit.com", "/"},
	{"linkedin.com", "/redir/redirect"},
	{"bing.com", "/ck/a"},
	{"t.umblr.com", "/redirect"},
	{"steamcommunity.com", "/linkfilter/"},
}

// redirectSchemes are custom schemes used purely for indirection.
var redirectSchemes = map[string]bool{
	"intent":    true,
	"googleapp": true,
	"redirect":  true,
}

// destinationParams is the priority order of query parameters that may
// carry a redirect destination.
var destinationParams = []string{
	"url", "q", "u", "uddg", "target", "dest", "destination",
	"redirect", "redirect_uri", "redirect_url",
}

// CleanHost lowercases host and strips any port, trailing dot and leading
// "www.".
func CleanHost(host string) string {
	h := strings.ToLower(strings.TrimSpace(host))
	if strings.Contains(h, ":") {
		if hh, _, err := net.SplitHostPort(h); err == nil {
			h = hh
		}
	}
	h = strings.TrimSuffix(h, ".")
	return strings.TrimPrefix(h, "www.")
}

// IsRedirectHost reports whether host is on the built-in denylist.
func IsRedirectHost(host string) bool {
	return defaultResolver.IsRedirectHost(host)
}

// IsRedirectHost reports whether host is a known redirect or aggregator
// host, including any hosts configured on r.
func (r *Resolver) IsRedirectHost(host string) bool {
	h := CleanHost(host)
	if h == "" {
		return false
	}
	if redirectHosts[h] || r.extraHosts[h] || googleHostRe.MatchString(h) {
		return true
	}
	for _, suffix := range redirectHostSuffixes {
		if strings.HasSuffix(h, suffix) {
			return true
		}
	}
	return false
}

// hostMatches reports whether host equals pattern or is a subdomain of it.
func hostMatches(host, pattern string) bool {
	h := CleanHost(host)
	return h == pattern || strings.HasSuffix(h, "."+pattern)
}

// aggregatorToken returns the encoded path token of an aggregator link.
func aggregatorToken(u *url.URL) (string, bool) {
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for _, p := range aggregatorPatterns {
		if !hostMatches(u.Host, p.host) {
			continue
		}
		for i, seg := range segments {
			if seg == p.marker && i+1 < len(segments) && segments[i+1] != "" {
				return segments[i+1], true
			}
		}
	}
	return "", false
}

// isRedirectStyle reports whether u uses a redirect scheme or a known
// search-engine redirect path.
func isRedirectStyle(u *url.URL) bool {
	if redirectSchemes[strings.ToLower(u.Scheme)] {
		return true
	}
	host := CleanHost(u.Host)
	for _, sr := range searchRedirects {
		matched := hostMatches(host, sr.host)
		if sr.host == "google.com" {
			matched = matched || googleHostRe.MatchString(host)
		}
		if matched && strings.HasPrefix(u.Path, sr.pathPrefix) {
			return true
		}
	}
	return false
}

// destinationFromQuery returns the first destination parameter that holds
// an absolute http(s) URL.
func destinationFromQuery(u *url.URL) (string, bool) {
	q := u.Query()
	for _, name := range destinationParams {
		v := strings.TrimSpace(q.Get(name))
		if v == "" {
			continue
		}
		// Bing wraps the destination as "a1" + base64url.
		if name == "u" && strings.HasPrefix(v, "a1") {
			if data, err := decodeBase64URL(v[2:]); err == nil && isAbsoluteHTTP(string(data)) {
				return string(data), true
			}
		}
		v = unescapeNested(v)
		if isAbsoluteHTTP(v) {
			return v, true
		}
	}
	return "", false
}

// unescapeNested percent-decodes v once more when it still holds an
// encoded scheme separator.
func unescapeNested(v string) string {
	if !strings.Contains(strings.ToLower(v), "%3a%2f%2f") {
		return v
	}
	if d, err := url.QueryUnescape(v); err == nil {
		return d
	}
	return v
}
