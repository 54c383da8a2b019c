// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package redirect

import (
	"encoding/base64"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func vertexURL(payload string) string {
	return "https://vertexaisearch.cloud.google.com/grounding-api-redirect/" +
		base64.RawURLEncoding.EncodeToString([]byte(payload))
}

func TestResolve(t *testing.T) {
	bingToken := "a1" + base64.RawURLEncoding.EncodeToString([]byte("https://example.com/b"))

	tests := []struct {
		name  string
		input string
		want  string
	}{
		// Aggregator path tokens.
		{"vertex direct", vertexURL("\x12\x1bhttps://example.com/article\x1a\x02"), "https://example.com/article"},
		{"vertex padded token", "https://vertexaisearch.cloud.google.com/grounding-api-redirect/" +
			base64.URLEncoding.EncodeToString([]byte("https://example.com/padded")), "https://example.com/padded"},
		{"vertex percent encoded", vertexURL("dest=https%3A%2F%2Fexample.com%2Fp%3Fa%3D1"), "https://example.com/p?a=1"},
		{"vertex json escaped", vertexURL(`{"meta":1,"target":"https:\/\/example.org\/x"}`), "https://example.org/x"},
		{"vertex trailing punctuation", vertexURL("see https://example.com/a."), "https://example.com/a"},
		{"vertex undecodable", "https://vertexaisearch.cloud.google.com/grounding-api-redirect/!!!",
			"https://vertexaisearch.cloud.google.com/grounding-api-redirect/!!!"},
		{"google news article", "https://news.google.com/rss/articles/" +
			base64.RawURLEncoding.EncodeToString([]byte("\x08\x13\x22\x2bhttps://example.com/news/story-123\xd2\x01\x00")) + "?oc=5",
			"https://example.com/news/story-123"},

		// Query-parameter redirects.
		{"google url q", "https://www.google.com/url?q=https%3A%2F%2Fexample.com%2Fpage&sa=D", "https://example.com/page"},
		{"google regional", "https://www.google.co.uk/url?url=https://example.co.uk/", "https://example.co.uk/"},
		{"double encoded", "https://www.google.com/url?url=https%253A%252F%252Fexample.com%252Fa", "https://example.com/a"},
		{"duckduckgo", "https://duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.net%2F&rut=abc", "https://example.net/"},
		{"facebook", "https://l.facebook.com/l.php?u=https%3A%2F%2Fexample.com%2Ffb&h=AT0", "https://example.com/fb"},
		{"bing a1", "https://www.bing.com/ck/a?!&&p=abc&u=" + bingToken + "&ntb=1", "https://example.com/b"},
		{"custom scheme", "redirect://go?target=https://example.com/c", "https://example.com/c"},
		{"nested redirects", "https://www.google.com/url?q=" + url.QueryEscape(vertexURL("https://example.com/deep")), "https://example.com/deep"},
		{"redirect path without destination", "https://www.google.com/url?sa=D", "https://www.google.com/url?sa=D"},

		// Plain URLs and fallbacks.
		{"plain", "https://example.com/a?b=1#frag", "https://example.com/a?b=1#frag"},
		{"host lowercased", "HTTPS://Example.COM/Path", "https://example.com/Path"},
		{"bare host", "example.com/path", "https://example.com/path"},
		{"host with port", "localhost:8080/x", "https://localhost:8080/x"},
		{"unparseable", "%%%", "%%%"},
		{"mailto left alone", "mailto:a@b.com", "mailto:a@b.com"},
		{"javascript left alone", "javascript:alert(1)", "javascript:alert(1)"},
		{"empty", "", ""},
		{"query param on normal site ignored", "https://example.com/search?q=https://other.com", "https://example.com/search?q=https://other.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.input))
		})
	}
}

func TestResolveIdempotent(t *testing.T) {
	inputs := []string{
		vertexURL("https://example.com/article"),
		"https://www.google.com/url?q=https%3A%2F%2FExample.com%2Fpage",
		"example.com/path",
		"HTTPS://Example.COM/Path?x=1",
		"https://duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.net%2F",
	}
	for _, in := range inputs {
		once := Resolve(in)
		assert.False(t, IsRedirectHost(mustHost(t, once)), "resolution of %q should leave the redirect host", in)
		assert.Equal(t, once, Resolve(once), "Resolve not idempotent for %q", in)
	}
}

func TestResolveDeterministic(t *testing.T) {
	in := vertexURL(`{"b":"https://b.example.com","a":"https://a.example.com"}`)
	first := Resolve(in)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Resolve(in))
	}
	assert.Equal(t, "https://b.example.com", first, "direct match precedes the JSON scan")
}

func TestResolverUnresolved(t *testing.T) {
	r := New(nil)
	assert.True(t, r.Unresolved("https://vertexaisearch.cloud.google.com/grounding-api-redirect/xyz"))
	assert.False(t, r.Unresolved("https://example.com/a"))
	assert.True(t, r.Unresolved("%%%"))
}

func mustHost(t *testing.T, raw string) string {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parsing %q: %v", raw, err)
	}
	return u.Host
}
