package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

var ErrUnsupportedFormat = errors.New("unsupported config file format")

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server" toml:"server"`
	Connection ConnectionConfig `yaml:"connection" toml:"connection"`
	Model      ModelConfig      `yaml:"model" toml:"model"`
	API        APIConfig        `yaml:"api" toml:"api"`
	Logging    LogConfig        `yaml:"logging" toml:"logging"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit" toml:"rate_limit"`
}

// ServerConfig locates the UI server.
type ServerConfig struct {
	Origin       string `envconfig:"UI_ORIGIN" default:"http://localhost:8001" yaml:"origin" toml:"origin"`
	SocketPath   string `envconfig:"UI_SOCKET_PATH" default:"/websocket" yaml:"socket_path" toml:"socket_path"`
	ResourcePath string `envconfig:"UI_RESOURCE_PATH" default:"/resources" yaml:"resource_path" toml:"resource_path"`
	FormFactor   string `envconfig:"UI_FORM_FACTOR" default:"desktop" yaml:"form_factor" toml:"form_factor"`
}

// ConnectionConfig holds the session tunables.
type ConnectionConfig struct {
	PingIntervalMs       int   `envconfig:"PING_INTERVAL_MS" default:"2000" yaml:"ping_interval_ms" toml:"ping_interval_ms"`
	IdleTimeoutMs        int   `envconfig:"IDLE_TIMEOUT_MS" default:"5000" yaml:"idle_timeout_ms" toml:"idle_timeout_ms"`
	BaseReconnectDelayMs int   `envconfig:"BASE_RECONNECT_DELAY_MS" default:"1000" yaml:"base_reconnect_delay_ms" toml:"base_reconnect_delay_ms"`
	MaxReconnectDelayMs  int   `envconfig:"MAX_RECONNECT_DELAY_MS" default:"10000" yaml:"max_reconnect_delay_ms" toml:"max_reconnect_delay_ms"`
	HandshakeTimeoutMs   int   `envconfig:"HANDSHAKE_TIMEOUT_MS" default:"5000" yaml:"handshake_timeout_ms" toml:"handshake_timeout_ms"`
	WriteTimeoutMs       int   `envconfig:"WRITE_TIMEOUT_MS" default:"5000" yaml:"write_timeout_ms" toml:"write_timeout_ms"`
	MaxFrameBytes        int   `envconfig:"MAX_FRAME_BYTES" default:"1048576" yaml:"max_frame_bytes" toml:"max_frame_bytes"`
	ReadLimitBytes       int64 `envconfig:"READ_LIMIT_BYTES" default:"8388608" yaml:"read_limit_bytes" toml:"read_limit_bytes"`
}

// ModelConfig holds model download settings.
type ModelConfig struct {
	FetchTimeoutMs    int     `envconfig:"MODEL_FETCH_TIMEOUT_MS" default:"10000" yaml:"fetch_timeout_ms" toml:"fetch_timeout_ms"`
	RetryMax          int     `envconfig:"MODEL_RETRY_MAX" default:"3" yaml:"retry_max" toml:"retry_max"`
	VerifyHash        bool    `envconfig:"MODEL_VERIFY_HASH" default:"true" yaml:"verify_hash" toml:"verify_hash"`
	CacheDir          string  `envconfig:"MODEL_CACHE_DIR" yaml:"cache_dir" toml:"cache_dir"`
	MemoryEntries     int     `envconfig:"MODEL_MEMORY_ENTRIES" default:"8" yaml:"memory_entries" toml:"memory_entries"`
	RequestsPerSecond float64 `envconfig:"MODEL_RPS" default:"5" yaml:"requests_per_second" toml:"requests_per_second"`
}

// APIConfig holds the local view adapter settings.
type APIConfig struct {
	Enabled bool   `envconfig:"API_ENABLED" default:"true" yaml:"enabled" toml:"enabled"`
	Host    string `envconfig:"API_HOST" default:"127.0.0.1" yaml:"host" toml:"host"`
	Port    string `envconfig:"API_PORT" default:"8090" yaml:"port" toml:"port"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info" yaml:"level" toml:"level"`
	Development bool   `envconfig:"LOG_DEV" default:"false" yaml:"development" toml:"development"`
}

// RateLimitConfig holds view adapter rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"50" yaml:"requests_per_second" toml:"requests_per_second"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"100" yaml:"burst" toml:"burst"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true" yaml:"enabled" toml:"enabled"`
}

// PingInterval returns the heartbeat period.
func (c ConnectionConfig) PingInterval() time.Duration { return ms(c.PingIntervalMs) }

// IdleTimeout returns the silence after which the socket is recycled.
func (c ConnectionConfig) IdleTimeout() time.Duration { return ms(c.IdleTimeoutMs) }

// BaseReconnectDelay returns the first reconnect delay.
func (c ConnectionConfig) BaseReconnectDelay() time.Duration { return ms(c.BaseReconnectDelayMs) }

// MaxReconnectDelay returns the reconnect delay ceiling.
func (c ConnectionConfig) MaxReconnectDelay() time.Duration { return ms(c.MaxReconnectDelayMs) }

// HandshakeTimeout returns the websocket handshake timeout.
func (c ConnectionConfig) HandshakeTimeout() time.Duration { return ms(c.HandshakeTimeoutMs) }

// WriteTimeout returns the per-frame write deadline.
func (c ConnectionConfig) WriteTimeout() time.Duration { return ms(c.WriteTimeoutMs) }

// FetchTimeout returns the model download timeout.
func (c ModelConfig) FetchTimeout() time.Duration { return ms(c.FetchTimeoutMs) }

// Address returns host:port of the view adapter.
func (c APIConfig) Address() string { return c.Host + ":" + c.Port }

func ms(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.Origin)
	if err != nil || u.Host == "" {
		return fmt.Errorf("invalid origin %q", c.Server.Origin)
	}
	switch u.Scheme {
	case "http", "https":
	default:
		return fmt.Errorf("origin %q must be http or https", c.Server.Origin)
	}

	switch c.Server.FormFactor {
	case "mobile", "desktop":
	default:
		return fmt.Errorf("form factor must be mobile or desktop, got %q", c.Server.FormFactor)
	}

	conn := c.Connection
	if conn.PingIntervalMs <= 0 || conn.IdleTimeoutMs <= 0 {
		return fmt.Errorf("ping interval and idle timeout must be positive")
	}
	if conn.IdleTimeoutMs <= conn.PingIntervalMs {
		return fmt.Errorf("idle timeout (%dms) must exceed ping interval (%dms)", conn.IdleTimeoutMs, conn.PingIntervalMs)
	}
	if conn.BaseReconnectDelayMs <= 0 || conn.MaxReconnectDelayMs < conn.BaseReconnectDelayMs {
		return fmt.Errorf("reconnect delays must satisfy 0 < base (%dms) <= max (%dms)", conn.BaseReconnectDelayMs, conn.MaxReconnectDelayMs)
	}
	if conn.MaxFrameBytes <= 0 {
		return fmt.Errorf("max frame bytes must be positive")
	}
	return nil
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadFile loads the environment, then applies a YAML or TOML file on top.
// Keys absent from the file keep their environment or default values.
func LoadFile(path string) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	return cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Origin:       "http://localhost:8001",
			SocketPath:   "/websocket",
			ResourcePath: "/resources",
			FormFactor:   "desktop",
		},
		Connection: ConnectionConfig{
			PingIntervalMs:       2000,
			IdleTimeoutMs:        5000,
			BaseReconnectDelayMs: 1000,
			MaxReconnectDelayMs:  10000,
			HandshakeTimeoutMs:   5000,
			WriteTimeoutMs:       5000,
			MaxFrameBytes:        1048576,
			ReadLimitBytes:       8388608,
		},
		Model: ModelConfig{
			FetchTimeoutMs:    10000,
			RetryMax:          3,
			VerifyHash:        true,
			MemoryEntries:     8,
			RequestsPerSecond: 5,
		},
		API: APIConfig{
			Enabled: true,
			Host:    "127.0.0.1",
			Port:    "8090",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 50,
			Burst:             100,
			Enabled:           true,
		},
	}
}
