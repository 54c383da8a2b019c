// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// Each file is one secret: the filename is the key and the trimmed
// contents are the value. Secrets fill configuration fields that are
// left empty, so values from the config file or environment win.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/grounding-engine/pkg/types"
)

// Key files understood by Apply.
const (
	RedisPassword = "redis-password"
	RedisAddr     = "redis-addr"
)

// Load reads all files in dir and returns a map of filename to trimmed
// contents. A missing directory is not an error. Unreadable files are
// logged and skipped.
func Load(dir string, logger *zap.Logger) (map[string]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("could not read secret", zap.String("name", name), zap.Error(err))
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[name] = value
		}
	}
	return secrets, nil
}

// Apply copies known secrets into empty fields of cfg and returns the
// names of the secrets it used, sorted.
func Apply(cfg *types.Config, secrets map[string]string) []string {
	var used []string
	fill := func(field *string, key string) {
		if v, ok := secrets[key]; ok && *field == "" {
			*field = v
			used = append(used, key)
		}
	}
	fill(&cfg.Cache.RedisPassword, RedisPassword)
	fill(&cfg.Cache.RedisAddr, RedisAddr)
	sort.Strings(used)
	return used
}
