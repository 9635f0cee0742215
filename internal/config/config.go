// Package config handles the configuration directory, config.json and
// environment overrides.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	// AppName is the application directory name.
	AppName = "todoctl"

	// FileName is the optional JSON config file inside the config directory.
	FileName = "config.json"

	// StateFile is the local storage database holding session and theme.
	StateFile = "state.db"

	// OAuthClientFile is the OAuth client credentials filename (google backend).
	OAuthClientFile = "oauth_client.json"

	// DefaultAPIURL is the todo API base path used when nothing overrides it.
	DefaultAPIURL = "http://localhost:5000/api"

	// DefaultTimeout bounds a single API request.
	DefaultTimeout = 10 * time.Second
)

// Backend names.
const (
	BackendAPI    = "api"
	BackendGoogle = "google"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// APIURL is the base URL of the todo API, without trailing slash.
	APIURL string

	// Backend selects the task backend: "api" or "google".
	Backend string

	// Timeout bounds each backend request.
	Timeout time.Duration

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool
}

// fileConfig is the on-disk shape of config.json.
type fileConfig struct {
	APIURL    string `json:"api_url"`
	Backend   string `json:"backend"`
	TimeoutMs int    `json:"timeout_ms"`
}

// Default returns a Config for dir with built-in defaults applied.
func Default(dir string) *Config {
	return &Config{
		Dir:     dir,
		APIURL:  DefaultAPIURL,
		Backend: BackendAPI,
		Timeout: DefaultTimeout,
	}
}

// New creates a Config with the default or specified config directory,
// then layers config.json and TODOCTL_* environment variables on top.
// If configDir is empty, uses XDG_CONFIG_HOME/todoctl or $HOME/.config/todoctl.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := Default(dir)
	if err := cfg.loadFile(); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

func (c *Config) loadFile() error {
	data, err := os.ReadFile(c.FilePath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", FileName, err)
	}

	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse %s: %w", FileName, err)
	}
	if fc.APIURL != "" {
		c.APIURL = fc.APIURL
	}
	if fc.Backend != "" {
		c.Backend = fc.Backend
	}
	if fc.TimeoutMs > 0 {
		c.Timeout = time.Duration(fc.TimeoutMs) * time.Millisecond
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("TODOCTL_API_URL"); v != "" {
		c.APIURL = v
	}
	if v := os.Getenv("TODOCTL_BACKEND"); v != "" {
		c.Backend = v
	}
	if v := os.Getenv("TODOCTL_TIMEOUT_MS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid TODOCTL_TIMEOUT_MS: %s", v)
		}
		c.Timeout = time.Duration(n) * time.Millisecond
	}
	return nil
}

// SetAPIURL overrides the API base URL (from the --api flag).
func (c *Config) SetAPIURL(url string) {
	if url != "" {
		c.APIURL = url
	}
}

// Validate normalizes the API URL and checks the backend name.
func (c *Config) Validate() error {
	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	if c.APIURL == "" {
		return errors.New("api url must not be empty")
	}
	switch c.Backend {
	case BackendAPI, BackendGoogle:
	default:
		return fmt.Errorf("unknown backend: %s", c.Backend)
	}
	return nil
}

// FilePath returns the path to config.json.
func (c *Config) FilePath() string {
	return filepath.Join(c.Dir, FileName)
}

// StatePath returns the path to the local storage database.
func (c *Config) StatePath() string {
	return filepath.Join(c.Dir, StateFile)
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}
