// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "grounding-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// CacheBackend selects the durable cache tier.
type CacheBackend string

const (
	CacheMemory CacheBackend = "memory"
	CacheSQLite CacheBackend = "sqlite"
	CacheRedis  CacheBackend = "redis"
)

// CacheConfig holds settings for the two-tier resolution cache.
type CacheConfig struct {
	// Backend selects the durable tier: memory (none), sqlite, or redis.
	Backend CacheBackend `json:"backend" yaml:"backend"`

	// FastTierSize bounds the in-process LRU tier (default 4096).
	FastTierSize int `json:"fast_tier_size" yaml:"fast_tier_size"`

	// SQLitePath is the database file for the sqlite backend.
	SQLitePath string `json:"sqlite_path" yaml:"sqlite_path"`

	// RedisAddr, RedisPassword and RedisDB configure the redis backend.
	RedisAddr     string `json:"redis_addr" yaml:"redis_addr"`
	RedisPassword string `json:"redis_password,omitempty" yaml:"redis_password,omitempty"`
	RedisDB       int    `json:"redis_db" yaml:"redis_db"`

	// KeyPrefix namespaces redis keys (default "grounding").
	KeyPrefix string `json:"key_prefix" yaml:"key_prefix"`

	// WriteTimeout bounds each fire-and-forget durable write (default 2s).
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`
}

// ResolverConfig holds settings for redirect resolution.
type ResolverConfig struct {
	// ExtraRedirectHosts extends the built-in redirect host denylist.
	ExtraRedirectHosts []string `json:"extra_redirect_hosts" yaml:"extra_redirect_hosts"`

	// Concurrency bounds parallel source resolution per answer (default 8).
	Concurrency int `json:"concurrency" yaml:"concurrency"`
}

// DisplayNameOverride names the site served from Domain.
type DisplayNameOverride struct {
	Domain string `json:"domain" yaml:"domain"`
	Name   string `json:"name" yaml:"name"`
}

// NormalizerConfig holds settings for domain and display-name derivation.
type NormalizerConfig struct {
	// DisplayNames adds to or overrides the built-in domain → name table.
	// A list rather than a map because config keys may not contain dots.
	DisplayNames []DisplayNameOverride `json:"display_names" yaml:"display_names"`
}

// CitationConfig holds settings for citation placement.
type CitationConfig struct {
	// AnnotateListItems allows markers on enumerated list lines
	// ("1. ..."). Headings are never annotated.
	AnnotateListItems bool `json:"annotate_list_items" yaml:"annotate_list_items"`
}

// PageMetadataConfig holds settings for the optional og: metadata fetch.
type PageMetadataConfig struct {
	HTTPConfig `yaml:",inline"`

	// Enabled turns on metadata enrichment of resolved sources.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// MaxRetries is the number of 429 retries (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// MaxBodyBytes caps how much of each page is read (default 1 MiB).
	MaxBodyBytes int64 `json:"max_body_bytes" yaml:"max_body_bytes"`

	// AllowPrivateNetworks lifts the block on loopback, private and
	// link-local addresses and on ports other than 80 and 443.
	AllowPrivateNetworks bool `json:"allow_private_networks" yaml:"allow_private_networks"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is a zap level name: debug, info, warn, error.
	Level string `json:"level" yaml:"level"`

	// Format is "console" or "json".
	Format string `json:"format" yaml:"format"`

	// File, when set, receives logs through a rotating writer.
	File       string `json:"file,omitempty" yaml:"file,omitempty"`
	MaxSizeMB  int    `json:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `json:"max_backups" yaml:"max_backups"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr           string        `json:"addr" yaml:"addr"`
	AllowedOrigins []string      `json:"allowed_origins" yaml:"allowed_origins"`
	ReadTimeout    time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout   time.Duration `json:"write_timeout" yaml:"write_timeout"`

	// MaxBodyBytes caps request bodies (default 4 MiB).
	MaxBodyBytes int64 `json:"max_body_bytes" yaml:"max_body_bytes"`
}

// Config groups all component configurations.
type Config struct {
	Cache        CacheConfig        `json:"cache" yaml:"cache"`
	Resolver     ResolverConfig     `json:"resolver" yaml:"resolver"`
	Normalizer   NormalizerConfig   `json:"normalizer" yaml:"normalizer"`
	Citation     CitationConfig     `json:"citation" yaml:"citation"`
	PageMetadata PageMetadataConfig `json:"page_metadata" yaml:"page_metadata"`
	Log          LogConfig          `json:"log" yaml:"log"`
	Server       ServerConfig       `json:"server" yaml:"server"`
}
