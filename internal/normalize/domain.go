// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"

	"github.com/pdiddy/grounding-engine/internal/redirect"
	"github.com/pdiddy/grounding-engine/pkg/types"
)

var (
	// domainRe matches a whole string shaped like label.label...tld.
	domainRe = regexp.MustCompile(`^(?:[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z]{2,63}$`)

	// domainInTextRe finds domain-shaped substrings inside a title.
	domainInTextRe = regexp.MustCompile(`(?i)\b(?:[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z]{2,63}\b`)
)

// LooksLikeDomain reports whether s is syntactically a domain name whose
// suffix is on the public suffix list. The suffix check rejects titles that
// merely contain a dot, such as "Node.js", and bare suffixes like "co.uk".
func LooksLikeDomain(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if !domainRe.MatchString(s) {
		return false
	}
	suffix, icann := publicsuffix.PublicSuffix(s)
	if s == suffix {
		return false
	}
	// Private suffixes (blogspot.com, github.io) contain a dot; unknown
	// TLDs come back as a single non-ICANN label.
	return icann || strings.Contains(suffix, ".")
}

// ExtractDomain returns the first domain-shaped substring of text that
// passes LooksLikeDomain, cleaned with redirect.CleanHost.
func ExtractDomain(text string) (string, bool) {
	for _, m := range domainInTextRe.FindAllString(text, -1) {
		d := redirect.CleanHost(m)
		if LooksLikeDomain(d) {
			return d, true
		}
	}
	return "", false
}

// hintDomain extracts the host from a display-URL hint, which providers
// send either as a bare domain or as a full URL.
func hintDomain(hint string) string {
	hint = strings.TrimSpace(hint)
	if hint == "" {
		return ""
	}
	if strings.Contains(hint, "://") {
		u, err := url.Parse(hint)
		if err != nil {
			return ""
		}
		return redirect.CleanHost(u.Host)
	}
	if i := strings.IndexAny(hint, "/?#"); i >= 0 {
		hint = hint[:i]
	}
	return redirect.CleanHost(hint)
}

// urlHost returns the cleaned host of rawURL, or "" when it has none.
func urlHost(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return redirect.CleanHost(u.Host)
}

// DeriveDomain picks the domain to display for src, whose URL resolved to
// canonicalURL. Candidates in priority order:
//
//  1. the display-URL hint;
//  2. the title, when the whole title is a domain;
//  3. a domain-shaped substring of the title;
//  4. the host of canonicalURL.
//
// Redirect hosts are never returned. The result is "" when no candidate
// survives.
func (n *Normalizer) DeriveDomain(src types.RawSource, canonicalURL string) string {
	if d := hintDomain(src.DisplayURLHint); d != "" && LooksLikeDomain(d) && !n.resolver.IsRedirectHost(d) {
		return d
	}

	title := strings.TrimSpace(src.Title)
	if LooksLikeDomain(title) {
		if d := redirect.CleanHost(title); !n.resolver.IsRedirectHost(d) {
			return d
		}
	}

	for _, m := range domainInTextRe.FindAllString(title, -1) {
		d := redirect.CleanHost(m)
		if LooksLikeDomain(d) && !n.resolver.IsRedirectHost(d) {
			return d
		}
	}

	if h := urlHost(canonicalURL); h != "" && !n.resolver.IsRedirectHost(h) {
		return h
	}
	return ""
}
