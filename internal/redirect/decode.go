// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package redirect

import (
	"encoding/base64"
	"encoding/json"
	"net/url"
	"regexp"
	"sort"
	"strings"
)

var (
	// embeddedURLRe matches an http(s) URL made of RFC 3986 characters.
	embeddedURLRe = regexp.MustCompile(`https?://[A-Za-z0-9\-._~:/?#\[\]@!$&'()*+,;=%]+`)

	// encodedURLRe matches a percent-encoded http(s) URL such as
	// "https%3A%2F%2Fexample.com%2Fa".
	encodedURLRe = regexp.MustCompile(`(?i)https?%3A%2F%2F[A-Za-z0-9\-._~%+!*'()]+`)

	base64URLReplacer = strings.NewReplacer("-", "+", "_", "/")
)

// DecodeToken decodes an aggregator path token as base64url and searches
// the decoded payload for an embedded destination URL.
func DecodeToken(token string) (string, bool) {
	data, err := decodeBase64URL(token)
	if err != nil {
		return "", false
	}
	// Payloads are often protobuf; keep valid text and split on the rest.
	return FindEmbeddedURL(strings.ToValidUTF8(string(data), " "))
}

// decodeBase64URL decodes s after mapping the URL-safe alphabet onto the
// standard one and normalizing padding.
func decodeBase64URL(s string) ([]byte, error) {
	s = base64URLReplacer.Replace(strings.TrimSpace(s))
	s = strings.TrimRight(s, "=")
	if m := len(s) % 4; m != 0 {
		s += strings.Repeat("=", 4-m)
	}
	return base64.StdEncoding.DecodeString(s)
}

// FindEmbeddedURL searches text for an http(s) URL, trying in order: a
// direct match, a percent-encoded match, a match after URL-decoding the
// whole text, and a scan of every string value when text is JSON.
func FindEmbeddedURL(text string) (string, bool) {
	if u, ok := firstURL(text); ok {
		return u, true
	}

	for _, m := range encodedURLRe.FindAllString(text, -1) {
		if decoded, err := url.PathUnescape(m); err == nil {
			if u, ok := firstURL(decoded); ok {
				return u, true
			}
		}
	}

	if decoded, err := url.PathUnescape(text); err == nil && decoded != text {
		if u, ok := firstURL(decoded); ok {
			return u, true
		}
	}

	var v any
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &v); err == nil {
		return findInJSON(v)
	}
	return "", false
}

// findInJSON walks v depth-first. Object keys are visited in sorted order
// so the result does not depend on map iteration.
func findInJSON(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		if u, ok := firstURL(t); ok {
			return u, true
		}
		if decoded, err := url.PathUnescape(t); err == nil && decoded != t {
			return firstURL(decoded)
		}
	case []any:
		for _, item := range t {
			if u, ok := findInJSON(item); ok {
				return u, true
			}
		}
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if u, ok := findInJSON(t[k]); ok {
				return u, true
			}
		}
	}
	return "", false
}

// firstURL returns the first regex match in s that, once trailing
// punctuation is trimmed, is an absolute http(s) URL.
func firstURL(s string) (string, bool) {
	for _, m := range embeddedURLRe.FindAllString(s, -1) {
		m = trimURL(m)
		if isAbsoluteHTTP(m) {
			return m, true
		}
	}
	return "", false
}

// trimURL drops sentence punctuation that the regex swallowed, keeping a
// closing bracket only when it is balanced inside the URL.
func trimURL(s string) string {
	for len(s) > 0 {
		last := s[len(s)-1]
		switch {
		case strings.IndexByte(".,;:!?'\"", last) >= 0:
			s = s[:len(s)-1]
		case last == ')' && strings.Count(s, "(") < strings.Count(s, ")"):
			s = s[:len(s)-1]
		case last == ']' && strings.Count(s, "[") < strings.Count(s, "]"):
			s = s[:len(s)-1]
		default:
			return s
		}
	}
	return s
}
