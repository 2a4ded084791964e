package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the immutable configuration record: the per-endpoint cap
// and buffer/timeout settings handed to every new Connection, plus the
// logging settings for the sample CLI tools.
type Config struct {
	Pool    PoolConfig    `yaml:"pool"`
	Logging LoggingConfig `yaml:"logging"`
}

// PoolConfig carries the options recognized by the connection pool.
type PoolConfig struct {
	// MaxConnectionsPerHost caps the number of live Connections an
	// EndpointPool may own, and is also the capacity of its available
	// and active queues.
	MaxConnectionsPerHost int `yaml:"max_connections_per_host"`
	// ReadBufferSizeBytes is passed to each new Connection for receive
	// buffering.
	ReadBufferSizeBytes int `yaml:"read_buffer_size_bytes"`
	// WriteBufferSizeBytes is passed to each new Connection for send
	// buffering.
	WriteBufferSizeBytes int `yaml:"write_buffer_size_bytes"`
	// ReadTimeoutMs is the per-Connection socket read timeout.
	ReadTimeoutMs int `yaml:"read_timeout_ms"`
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns default configuration.
func DefaultConfig() *Config {
	return &Config{
		Pool: PoolConfig{
			MaxConnectionsPerHost: 5,
			ReadBufferSizeBytes:   64 * 1024,
			WriteBufferSizeBytes:  64 * 1024,
			ReadTimeoutMs:         5000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig loads configuration from file and environment variables.
// An empty configPath skips the file load and returns defaults overlaid
// with any environment overrides.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if err := loadFromFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides applies environment variable overrides.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("POOL_MAX_CONNECTIONS_PER_HOST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Pool.MaxConnectionsPerHost = n
		}
	}

	if v := os.Getenv("POOL_READ_BUFFER_SIZE_BYTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Pool.ReadBufferSizeBytes = n
		}
	}

	if v := os.Getenv("POOL_WRITE_BUFFER_SIZE_BYTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Pool.WriteBufferSizeBytes = n
		}
	}

	if v := os.Getenv("POOL_READ_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Pool.ReadTimeoutMs = n
		}
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Pool.MaxConnectionsPerHost < 1 {
		return fmt.Errorf("pool.max_connections_per_host must be at least 1")
	}
	if c.Pool.ReadBufferSizeBytes <= 0 {
		return fmt.Errorf("pool.read_buffer_size_bytes must be positive")
	}
	if c.Pool.WriteBufferSizeBytes <= 0 {
		return fmt.Errorf("pool.write_buffer_size_bytes must be positive")
	}
	if c.Pool.ReadTimeoutMs < 0 {
		return fmt.Errorf("pool.read_timeout_ms must not be negative")
	}
	if !isValidLogLevel(c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	return nil
}

// isValidLogLevel checks if the log level is valid.
func isValidLogLevel(level string) bool {
	valid := []string{"debug", "info", "warn", "error"}
	level = strings.ToLower(level)
	for _, v := range valid {
		if level == v {
			return true
		}
	}
	return false
}

// String returns a string representation of the configuration (for logging).
func (c *Config) String() string {
	return fmt.Sprintf("Config{MaxConnectionsPerHost: %d, ReadTimeoutMs: %d, LogLevel: %s}",
		c.Pool.MaxConnectionsPerHost, c.Pool.ReadTimeoutMs, c.Logging.Level)
}
