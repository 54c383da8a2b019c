// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/grounding-engine/pkg/types"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  map[string]string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "redis-password", "  s3cret  \n")
				writeFile(t, dir, "redis-addr", "cache.internal:6379")
				return dir
			},
			want: map[string]string{
				"redis-password": "s3cret",
				"redis-addr":     "cache.internal:6379",
			},
		},
		{
			name: "returns empty map for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: map[string]string{},
		},
		{
			name: "skips empty files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "redis-password", "valid")
				writeFile(t, dir, "empty-key", "")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				return dir
			},
			want: map[string]string{"redis-password": "valid"},
		},
		{
			name: "skips dotfiles and directories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "x")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
				writeFile(t, dir, "redis-addr", "localhost:6380")
				return dir
			},
			want: map[string]string{"redis-addr": "localhost:6380"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.setup(t), zaptest.NewLogger(t))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadNotADirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "file", "x")

	_, err := Load(filepath.Join(dir, "file"), nil)
	assert.ErrorContains(t, err, "reading secrets directory")
}

func TestApply(t *testing.T) {
	secrets := map[string]string{
		RedisPassword: "from-file",
		RedisAddr:     "secret-host:6379",
		"unrelated":   "ignored",
	}

	var cfg types.Config
	cfg.Cache.RedisAddr = "configured:6379"

	used := Apply(&cfg, secrets)
	assert.Equal(t, []string{RedisPassword}, used)
	assert.Equal(t, "from-file", cfg.Cache.RedisPassword)
	assert.Equal(t, "configured:6379", cfg.Cache.RedisAddr, "configured values win")
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}
