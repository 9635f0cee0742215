package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TODOCTL_API_URL", "")
	t.Setenv("TODOCTL_BACKEND", "")
	t.Setenv("TODOCTL_TIMEOUT_MS", "")
}

func TestNew_Defaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := New(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.Dir)
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, BackendAPI, cfg.Backend)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, filepath.Join(dir, "state.db"), cfg.StatePath())
}

func TestNew_FileThenEnvPrecedence(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	data := `{"api_url":"https://file.example/api/","backend":"api","timeout_ms":2500}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(data), 0600))

	cfg, err := New(dir)
	require.NoError(t, err)
	assert.Equal(t, "https://file.example/api", cfg.APIURL)
	assert.Equal(t, 2500*time.Millisecond, cfg.Timeout)

	t.Setenv("TODOCTL_API_URL", "https://env.example/api")
	cfg, err = New(dir)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example/api", cfg.APIURL)
	assert.Equal(t, 2500*time.Millisecond, cfg.Timeout)

	cfg.SetAPIURL("https://flag.example/api/")
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "https://flag.example/api", cfg.APIURL)
}

func TestNew_MalformedFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("{nope"), 0600))

	_, err := New(dir)
	assert.ErrorContains(t, err, "parse config.json")
}

func TestNew_InvalidEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("TODOCTL_TIMEOUT_MS", "-5")
	_, err := New(t.TempDir())
	assert.ErrorContains(t, err, "TODOCTL_TIMEOUT_MS")

	clearEnv(t)
	t.Setenv("TODOCTL_BACKEND", "carrier-pigeon")
	_, err = New(t.TempDir())
	assert.ErrorContains(t, err, "unknown backend")
}

func TestDefaultConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, filepath.Join("/tmp/xdg", AppName), DefaultConfigDir())
}
