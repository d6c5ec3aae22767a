package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "/voice", cfg.CallbackPath)
	assert.Equal(t, "alice", cfg.DefaultVoice)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.AuthToken)
	assert.False(t, cfg.ValidateSignatures)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "callflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen_addr: ":9090"
public_url: "https://voice.example.com"
default_voice: "brian"
auth_token: "tok"
validate_signatures: true
flows_dir: "./flows"
log_level: "debug"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "https://voice.example.com", cfg.PublicURL)
	assert.Equal(t, "/voice", cfg.CallbackPath, "unset keys keep their defaults")
	assert.Equal(t, "brian", cfg.DefaultVoice)
	assert.Equal(t, "tok", cfg.AuthToken)
	assert.True(t, cfg.ValidateSignatures)
	assert.Equal(t, "./flows", cfg.FlowsDir)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("NUMSPHERE_LISTEN_ADDR", ":7070")
	t.Setenv("NUMSPHERE_LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.ListenAddr)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
