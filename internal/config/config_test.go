package config

import (
	"os"
	"testing"
	"time"
)

const testConfig = `# relaisblick test configuration
[Data]
URL=https://relais.example.at/data/relais.json
ConfigURL=https://relais.example.at/config.json
Timeout=10
UserAgent=relaisblick-test/0.1
Watch=0

[Server]
Address=127.0.0.1:9090
StaticDir=/srv/relaisblick/public

[Database]
Path=/var/lib/relaisblick/prefs.db
Debug=yes

[Log]
Level=DEBUG
Environment=production

[Unknown]
Foo=bar`

func TestConfig_LoadFromFile(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.ini")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpfile.Name())

	if _, err := tmpfile.Write([]byte(testConfig)); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatalf("Failed to close temp file: %v", err)
	}

	cfg := NewConfig(tmpfile.Name())
	if err := cfg.Load(); err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.GetDataURL() != "https://relais.example.at/data/relais.json" {
		t.Errorf("Expected data URL from file, got %s", cfg.GetDataURL())
	}
	if cfg.GetConfigURL() != "https://relais.example.at/config.json" {
		t.Errorf("Expected config URL from file, got %s", cfg.GetConfigURL())
	}
	if cfg.GetDataTimeout() != 10*time.Second {
		t.Errorf("Expected timeout 10s, got %v", cfg.GetDataTimeout())
	}
	if cfg.GetDataUserAgent() != "relaisblick-test/0.1" {
		t.Errorf("Expected user agent, got %s", cfg.GetDataUserAgent())
	}
	if cfg.GetDataWatch() {
		t.Error("Expected Watch=0 to disable watching")
	}
	if cfg.GetServerAddress() != "127.0.0.1:9090" {
		t.Errorf("Expected server address 127.0.0.1:9090, got %s", cfg.GetServerAddress())
	}
	if cfg.GetServerStaticDir() != "/srv/relaisblick/public" {
		t.Errorf("Expected static dir, got %s", cfg.GetServerStaticDir())
	}
	if cfg.GetDatabasePath() != "/var/lib/relaisblick/prefs.db" {
		t.Errorf("Expected database path, got %s", cfg.GetDatabasePath())
	}
	if !cfg.GetDatabaseDebug() {
		t.Error("Expected Debug=yes to enable database debug")
	}
	if cfg.GetLogLevel() != "debug" {
		t.Errorf("Expected log level debug, got %s", cfg.GetLogLevel())
	}
	if cfg.GetLogEnvironment() != "production" {
		t.Errorf("Expected production environment, got %s", cfg.GetLogEnvironment())
	}
}

func TestConfig_Defaults(t *testing.T) {
	cfg := NewConfig("")
	if err := cfg.Load(); err != nil {
		t.Fatalf("Load with empty filename should keep defaults: %v", err)
	}

	if cfg.GetDataURL() != "http://localhost:8080/data/relais.json" {
		t.Errorf("Unexpected default data URL %s", cfg.GetDataURL())
	}
	if cfg.GetDataTimeout() != 30*time.Second {
		t.Errorf("Expected default timeout 30s, got %v", cfg.GetDataTimeout())
	}
	if !cfg.GetDataWatch() {
		t.Error("Watch should be enabled by default")
	}
	if cfg.GetServerAddress() != ":8080" {
		t.Errorf("Expected default address :8080, got %s", cfg.GetServerAddress())
	}
	if cfg.GetDatabasePath() != "data/relaisblick.db" {
		t.Errorf("Unexpected default database path %s", cfg.GetDatabasePath())
	}
	if cfg.GetLogLevel() != "info" {
		t.Errorf("Expected default log level info, got %s", cfg.GetLogLevel())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Defaults should validate: %v", err)
	}
}

func TestConfig_LoadMissingFile(t *testing.T) {
	cfg := NewConfig("/nonexistent/relaisblick.ini")
	if err := cfg.Load(); err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestConfig_InvalidValuesKeepDefaults(t *testing.T) {
	cfg := NewConfig("")
	err := cfg.LoadFromString(`[Data]
Timeout=soon
no equals sign here
`)
	if err != nil {
		t.Fatalf("LoadFromString failed: %v", err)
	}
	if cfg.GetDataTimeout() != 30*time.Second {
		t.Errorf("Invalid timeout should keep default, got %v", cfg.GetDataTimeout())
	}
}

func TestConfig_ApplyEnv(t *testing.T) {
	cfg := NewConfig("")
	if err := cfg.LoadFromString(testConfig); err != nil {
		t.Fatalf("LoadFromString failed: %v", err)
	}

	t.Setenv("RELAISBLICK_DATA_URL", "file:///srv/data/relais.json")
	t.Setenv("RELAISBLICK_DATA_TIMEOUT", "45s")
	t.Setenv("RELAISBLICK_DATA_WATCH", "true")
	t.Setenv("RELAISBLICK_LOG_LEVEL", "WARN")

	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}

	if cfg.GetDataURL() != "file:///srv/data/relais.json" {
		t.Errorf("Expected env data URL, got %s", cfg.GetDataURL())
	}
	if cfg.GetDataTimeout() != 45*time.Second {
		t.Errorf("Expected env timeout 45s, got %v", cfg.GetDataTimeout())
	}
	if !cfg.GetDataWatch() {
		t.Error("Expected env to enable watching")
	}
	if cfg.GetLogLevel() != "warn" {
		t.Errorf("Expected env log level warn, got %s", cfg.GetLogLevel())
	}

	// untouched values survive
	if cfg.GetServerAddress() != "127.0.0.1:9090" {
		t.Errorf("Server address should come from file, got %s", cfg.GetServerAddress())
	}
	if cfg.GetDatabasePath() != "/var/lib/relaisblick/prefs.db" {
		t.Errorf("Database path should come from file, got %s", cfg.GetDatabasePath())
	}
}

func TestConfig_ApplyEnvIgnoresUnprefixed(t *testing.T) {
	cfg := NewConfig("")
	if err := cfg.LoadFromString(testConfig); err != nil {
		t.Fatalf("LoadFromString failed: %v", err)
	}

	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("DATABASE_PATH", "/tmp/other.db")
	t.Setenv("RELAISBLICK_LOG_ENV", "Development")

	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}

	if cfg.GetLogLevel() != "debug" {
		t.Errorf("Unprefixed LOG_LEVEL must not override the file, got %s", cfg.GetLogLevel())
	}
	if cfg.GetDatabasePath() != "/var/lib/relaisblick/prefs.db" {
		t.Errorf("Unprefixed DATABASE_PATH must not override the file, got %s", cfg.GetDatabasePath())
	}
	if cfg.GetLogEnvironment() != "development" {
		t.Errorf("Expected env log environment development, got %s", cfg.GetLogEnvironment())
	}
}

func TestConfig_ApplyEnvInvalid(t *testing.T) {
	cfg := NewConfig("")
	t.Setenv("RELAISBLICK_DATA_TIMEOUT", "forever")

	if err := cfg.ApplyEnv(); err == nil {
		t.Error("Expected error for unparsable duration")
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := NewConfig("")
	if err := cfg.LoadFromString("[Data]\nURL=\n"); err != nil {
		t.Fatalf("LoadFromString failed: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("Expected validation error for empty data URL")
	}

	cfg = NewConfig("")
	if err := cfg.LoadFromString("[Data]\nTimeout=0\n"); err != nil {
		t.Fatalf("LoadFromString failed: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("Expected validation error for zero timeout")
	}

	cfg = NewConfig("")
	t.Setenv("RELAISBLICK_DATA_TIMEOUT", "500ms")
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("Expected validation error for sub-second timeout")
	}
}
