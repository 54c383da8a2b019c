// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package redirect

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRedirectHost(t *testing.T) {
	tests := []struct {
		host string
		want bool
	}{
		{"vertexaisearch.cloud.google.com", true},
		{"VertexAISearch.cloud.google.com", true},
		{"www.google.com", true},
		{"google.co.uk", true},
		{"google.de", true},
		{"news.google.com:443", true},
		{"lh3.googleusercontent.com", true},
		{"t.co", true},
		{"example.com", false},
		{"maps.google.com", false},
		{"youtube.com", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRedirectHost(tt.host))
		})
	}
}

func TestResolverExtraRedirectHosts(t *testing.T) {
	r := New([]string{"WWW.Go.Example.net", "  "})
	assert.True(t, r.IsRedirectHost("go.example.net"))
	assert.True(t, r.IsRedirectHost("www.go.example.net:8443"))
	assert.False(t, IsRedirectHost("go.example.net"), "extra hosts must not leak into the default resolver")
}

func TestCleanHost(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"WWW.Example.COM", "example.com"},
		{"example.com:8080", "example.com"},
		{"example.com.", "example.com"},
		{" www.blog.example.com ", "blog.example.com"},
		{"[::1]:443", "::1"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanHost(tt.in), "CleanHost(%q)", tt.in)
	}
}

func TestDecodeBase64URL(t *testing.T) {
	want := []byte("https://example.com/?a=~~~&b=???")
	for name, enc := range map[string]*base64.Encoding{
		"url padded":   base64.URLEncoding,
		"url raw":      base64.RawURLEncoding,
		"std padded":   base64.StdEncoding,
		"std unpadded": base64.RawStdEncoding,
	} {
		t.Run(name, func(t *testing.T) {
			got, err := decodeBase64URL(enc.EncodeToString(want))
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}

	_, err := decodeBase64URL("a")
	assert.Error(t, err, "a single dangling character is not valid base64")
}

func TestFindEmbeddedURL(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   string
		wantOK bool
	}{
		{"direct", "xx https://example.com/a yy", "https://example.com/a", true},
		{"balanced parens kept", "(https://en.wikipedia.org/wiki/Go_(language))", "https://en.wikipedia.org/wiki/Go_(language)", true},
		{"trailing comma", "https://example.com/a, and more", "https://example.com/a", true},
		{"percent encoded", "x=http%3a%2f%2fexample.com%2fq", "http://example.com/q", true},
		{"json array", `["nope", {"k": "https:\/\/example.com\/j"}]`, "https://example.com/j", true},
		{"scheme only", "https://", "", false},
		{"nothing", "no links here", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FindEmbeddedURL(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
