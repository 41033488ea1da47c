package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultBackendURL is where the journaling backend listens in development
const DefaultBackendURL = "http://localhost:5000"

const (
	fileName  = "config.yaml"
	envPrefix = "MOODLOG"
)

// Config is the on-disk client configuration
type Config struct {
	BackendURL string         `yaml:"backend_url" mapstructure:"backend_url"`
	Identity   IdentityConfig `yaml:"identity" mapstructure:"identity"`
	Auth       AuthConfig     `yaml:"auth,omitempty" mapstructure:"auth"`
	LogLevel   string         `yaml:"log_level" mapstructure:"log_level"`
	LogFile    string         `yaml:"log_file,omitempty" mapstructure:"log_file"`
	DBPath     string         `yaml:"db_path,omitempty" mapstructure:"db_path"`

	// Client-side throttle for backend calls, requests per second
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	RateBurst int     `yaml:"rate_burst" mapstructure:"rate_burst"`

	dir string
}

// IdentityConfig points at the identity provider
type IdentityConfig struct {
	APIKey      string `yaml:"api_key" mapstructure:"api_key"`
	AccountsURL string `yaml:"accounts_url,omitempty" mapstructure:"accounts_url"`
	TokenURL    string `yaml:"token_url,omitempty" mapstructure:"token_url"`
}

// AuthConfig holds the persisted session of the signed-in user
type AuthConfig struct {
	IDToken      string `yaml:"id_token,omitempty" mapstructure:"id_token"`
	RefreshToken string `yaml:"refresh_token,omitempty" mapstructure:"refresh_token"`
	TokenExpiry  int64  `yaml:"token_expiry,omitempty" mapstructure:"token_expiry"` // Unix timestamp
	UserID       string `yaml:"user_id,omitempty" mapstructure:"user_id"`
	Email        string `yaml:"email,omitempty" mapstructure:"email"`
	DisplayName  string `yaml:"display_name,omitempty" mapstructure:"display_name"`
}

// SignedIn reports whether a session is stored
func (a AuthConfig) SignedIn() bool {
	return a.IDToken != "" || a.RefreshToken != ""
}

// DefaultDir returns ~/.moodlog
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	return filepath.Join(home, ".moodlog"), nil
}

// Dir is the directory the config was loaded from
func (c *Config) Dir() string {
	return c.dir
}

// Path is the config file location
func (c *Config) Path() string {
	return filepath.Join(c.dir, fileName)
}

// LogPath resolves the log file, defaulting under the config directory
func (c *Config) LogPath() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return filepath.Join(c.dir, "logs", "moodlog.log")
}

// DatabasePath resolves the entry cache location
func (c *Config) DatabasePath() string {
	if c.DBPath != "" {
		return c.DBPath
	}
	return filepath.Join(c.dir, "entries.db")
}

// Load reads dir/config.yaml, creating it with defaults when missing.
// A .env file in the working directory and MOODLOG_* variables override file values.
func Load(dir string) (*Config, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	// Missing .env is the normal case
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := filepath.Join(dir, fileName)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.dir = dir

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := Save(&cfg); err != nil {
			return nil, fmt.Errorf("create default config: %w", err)
		}
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend_url", DefaultBackendURL)
	v.SetDefault("log_level", "info")
	v.SetDefault("rate_limit", 5.0)
	v.SetDefault("rate_burst", 10)
	v.SetDefault("identity.api_key", "")
	v.SetDefault("identity.accounts_url", "https://identitytoolkit.googleapis.com/v1")
	v.SetDefault("identity.token_url", "https://securetoken.googleapis.com/v1/token")
	// Registered so AutomaticEnv can see them
	v.SetDefault("log_file", "")
	v.SetDefault("db_path", "")
}

// Validate checks values that would otherwise fail on first use
func (c *Config) Validate() error {
	u, err := url.Parse(c.BackendURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("backend_url must be an http(s) URL, got %q", c.BackendURL)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error, got %q", c.LogLevel)
	}
	if c.RateLimit <= 0 {
		return errors.New("rate_limit must be positive")
	}
	if c.RateBurst < 1 {
		return errors.New("rate_burst must be at least 1")
	}
	return nil
}

// Save writes the config back to its file with owner-only permissions
func Save(cfg *Config) error {
	if err := os.MkdirAll(cfg.dir, 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(cfg.Path(), data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// ClearAuth forgets the stored session and saves
func ClearAuth(cfg *Config) error {
	cfg.Auth = AuthConfig{}
	return Save(cfg)
}
