package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/comigor/notesai/internal/aiclient"
)

const (
	// EnvPrefix prefixes every environment override, e.g. NOTESAI_BASE_URL.
	EnvPrefix = "NOTESAI"

	DefaultBaseURL  = "http://localhost:8080"
	DefaultTimeout  = 60 * time.Second
	DefaultReadSize = 4096
)

// Config holds the application configuration
type Config struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	LogLevel  string        `mapstructure:"log_level"`
	LogFormat string        `mapstructure:"log_format"`
	HistoryDB string        `mapstructure:"history_db"`
	Stream    StreamConfig  `mapstructure:"stream"`
}

// StreamConfig tunes the streamed answer reader
type StreamConfig struct {
	ReadSize int `mapstructure:"read_size"`
}

// SetDefaults registers every known key so that env overrides are picked up by Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("base_url", DefaultBaseURL)
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("history_db", "")
	v.SetDefault("stream.read_size", DefaultReadSize)
}

// Load loads the configuration from defaults, an optional notesai.yaml (or the
// file named by CONFIG_PATH) and NOTESAI_* environment variables.
func Load() (*Config, error) {
	return LoadFrom(viper.New(), "")
}

// LoadFrom is Load on a caller-provided viper instance, so CLI flags bound to v
// take precedence. An explicit path must exist; the implicit notesai.yaml may not.
func LoadFrom(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("notesai")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values that would otherwise fail late, on the first request.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid base_url %q", c.BaseURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.Stream.ReadSize <= 0 {
		return fmt.Errorf("stream.read_size must be positive, got %d", c.Stream.ReadSize)
	}
	return nil
}

// Client returns the API client configuration.
func (c *Config) Client() aiclient.Config {
	return aiclient.Config{
		BaseURL:        c.BaseURL,
		Timeout:        c.Timeout,
		StreamReadSize: c.Stream.ReadSize,
	}
}
