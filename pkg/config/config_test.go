package config

import (
	"os"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	os.Unsetenv("POOL_MAX_CONNECTIONS_PER_HOST")
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("Failed to load default config: %v", err)
	}
	if cfg.Pool.MaxConnectionsPerHost != 5 {
		t.Errorf("expected default max connections 5, got %d", cfg.Pool.MaxConnectionsPerHost)
	}
	if cfg.Pool.ReadBufferSizeBytes <= 0 {
		t.Error("ReadBufferSizeBytes should be positive")
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/pool.yaml"
	yamlContent := "pool:\n  max_connections_per_host: 12\n  read_buffer_size_bytes: 2048\n  write_buffer_size_bytes: 4096\n  read_timeout_ms: 250\nlogging:\n  level: debug\n  format: json\n"
	if err := os.WriteFile(path, []byte(yamlContent), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Pool.MaxConnectionsPerHost != 12 {
		t.Errorf("expected 12, got %d", cfg.Pool.MaxConnectionsPerHost)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected json, got %s", cfg.Logging.Format)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	os.Setenv("POOL_MAX_CONNECTIONS_PER_HOST", "7")
	defer os.Unsetenv("POOL_MAX_CONNECTIONS_PER_HOST")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Pool.MaxConnectionsPerHost != 7 {
		t.Errorf("expected env override 7, got %d", cfg.Pool.MaxConnectionsPerHost)
	}
}

func TestValidateRejectsZeroCap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Pool.MaxConnectionsPerHost = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Validate should reject MaxConnectionsPerHost < 1")
	}
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Error("Validate should reject unknown log level")
	}
}

func TestConfigString(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.String() == "" {
		t.Error("String() should not return empty string")
	}
}
