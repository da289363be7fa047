// ABOUTME: Configuration management for seam with YAML config loading.
// ABOUTME: Handles X API endpoints, consumer credentials, state store location, and ~ expansion.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Default endpoint values for the X platform.
const (
	DefaultAPIURL          = "https://api.twitter.com/2"
	DefaultRequestTokenURL = "https://api.twitter.com/oauth/request_token"
	DefaultAuthorizeURL    = "https://api.twitter.com/oauth/authorize"
	DefaultAccessTokenURL  = "https://api.twitter.com/oauth/access_token"
	DefaultCallbackURL     = "http://127.0.0.1:8735/callback/"
	DefaultWebURL          = "https://x.com"
)

// State store drivers.
const (
	DriverSQLite = "sqlite"
	DriverYAML   = "yaml"
)

// Config stores seam configuration loaded from ~/.config/seam/config.yaml.
type Config struct {
	X     XConfig     `yaml:"x"`
	State StateConfig `yaml:"state"`
	Log   LogConfig   `yaml:"log"`
}

// XConfig holds the consumer credentials and platform endpoints.
type XConfig struct {
	ConsumerKey     string `yaml:"consumer_key"`
	ConsumerSecret  string `yaml:"consumer_secret"`
	APIURL          string `yaml:"api_url,omitempty" validate:"omitempty,url"`
	RequestTokenURL string `yaml:"request_token_url,omitempty" validate:"omitempty,url"`
	AuthorizeURL    string `yaml:"authorize_url,omitempty" validate:"omitempty,url"`
	AccessTokenURL  string `yaml:"access_token_url,omitempty" validate:"omitempty,url"`
	CallbackURL     string `yaml:"callback_url,omitempty" validate:"omitempty,url"`
	WebURL          string `yaml:"web_url,omitempty" validate:"omitempty,url"`
}

// StateConfig selects where session state is persisted.
type StateConfig struct {
	Driver string `yaml:"driver,omitempty" validate:"omitempty,oneof=sqlite yaml"`
	Path   string `yaml:"path,omitempty"`
}

// LogConfig controls the root logger.
type LogConfig struct {
	Level  string `yaml:"level,omitempty" validate:"omitempty,oneof=trace debug info warn warning error off disabled"`
	Format string `yaml:"format,omitempty" validate:"omitempty,oneof=console json"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks URL and enum fields.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// HasConsumer returns true if consumer credentials are configured.
func (c *Config) HasConsumer() bool {
	return c.X.ConsumerKey != "" && c.X.ConsumerSecret != ""
}

// Endpoints returns the configured X endpoints with defaults applied.
func (c *Config) Endpoints() XConfig {
	x := c.X
	if x.APIURL == "" {
		x.APIURL = DefaultAPIURL
	}
	if x.RequestTokenURL == "" {
		x.RequestTokenURL = DefaultRequestTokenURL
	}
	if x.AuthorizeURL == "" {
		x.AuthorizeURL = DefaultAuthorizeURL
	}
	if x.AccessTokenURL == "" {
		x.AccessTokenURL = DefaultAccessTokenURL
	}
	if x.CallbackURL == "" {
		x.CallbackURL = DefaultCallbackURL
	}
	if x.WebURL == "" {
		x.WebURL = DefaultWebURL
	}
	x.APIURL = strings.TrimRight(x.APIURL, "/")
	x.WebURL = strings.TrimRight(x.WebURL, "/")
	x.CallbackURL = NormalizeCallbackURL(x.CallbackURL)
	return x
}

// NormalizeCallbackURL makes sure the callback URL ends with a slash.
func NormalizeCallbackURL(u string) string {
	if u == "" || strings.HasSuffix(u, "/") {
		return u
	}
	return u + "/"
}

// StateDriver returns the configured state store driver, defaulting to sqlite.
func (c *Config) StateDriver() string {
	if c.State.Driver == "" {
		return DriverSQLite
	}
	return c.State.Driver
}

// GetStatePath returns the state store file path for the configured driver.
func (c *Config) GetStatePath() (string, error) {
	if c.State.Path != "" {
		return ExpandPath(c.State.Path)
	}
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	if c.StateDriver() == DriverYAML {
		return filepath.Join(dir, "state.yaml"), nil
	}
	return filepath.Join(dir, "state.db"), nil
}

// DataDir returns the default seam data directory.
func DataDir() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "seam"), nil
}

// GetConfigPath returns the config file path.
func GetConfigPath() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "seam", "config.yaml"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return home, nil
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}

// Load reads config from disk, applies env overrides, and validates it.
// Returns default config if the file doesn't exist.
func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	case os.IsNotExist(err):
	default:
		return nil, err
	}

	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv overrides consumer credentials from the environment.
func applyEnv(cfg *Config) {
	if v := os.Getenv("SEAM_CONSUMER_KEY"); v != "" {
		cfg.X.ConsumerKey = v
	}
	if v := os.Getenv("SEAM_CONSUMER_SECRET"); v != "" {
		cfg.X.ConsumerSecret = v
	}
}

// Save writes config to disk.
func (c *Config) Save() error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
