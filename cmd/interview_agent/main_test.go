package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/interview-agent/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveConfigPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"rounds": 5, "model": "file-model", "addr": ":7070"}`), 0o644))

	// Flags win over the file; the file wins over engine defaults.
	cfg, err := resolveConfig(config.Config{Rounds: 2}, path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Rounds)
	assert.Equal(t, "file-model", cfg.Model)
	assert.Equal(t, ":7070", cfg.Addr)
	assert.Equal(t, config.DefaultTimeoutSec, cfg.TimeoutSeconds)
}

func TestResolveConfigDefaultsOnly(t *testing.T) {
	cfg, err := resolveConfig(config.Config{}, "")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultRounds, cfg.Rounds)
	assert.Equal(t, config.DefaultOutfile, cfg.Outfile)
}

func TestResolveConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"band_l2": 0.9, "band_l3": 0.5, "band_l4": 0.8}`), 0o644))

	_, err := resolveConfig(config.Config{}, path)
	assert.Error(t, err)
}

func TestBuildChainManagerRequiresAPIKey(t *testing.T) {
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	_, _, err := buildChainManager(context.Background(), config.Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LLM_API_KEY")
}
