// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pdiddy/grounding-engine/pkg/types"
)

func TestNewConsoleRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn, err := New(types.LogConfig{Level: "WARN"}, &buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", zap.String("k", "v"))
	require.NoError(t, closeFn())

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "shown")
}

func TestNewJSONWithFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "engine.log")
	logger, closeFn, err := New(types.LogConfig{Level: "debug", Format: "json", File: path}, &buf)
	require.NoError(t, err)

	logger.Debug("resolved", zap.String("url", "https://example.com/"))
	require.NoError(t, closeFn())

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "resolved", line["msg"])

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"url":"https://example.com/"`))
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, _, err := New(types.LogConfig{Level: "loud"}, nil)
	assert.ErrorContains(t, err, "parsing log level")

	_, _, err = New(types.LogConfig{Format: "xml"}, nil)
	assert.ErrorContains(t, err, "unknown log format")
}
