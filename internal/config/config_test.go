package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/vango-dev/navrouter/internal/errors"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Server.Port != DefaultPort {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, DefaultPort)
	}
	if cfg.Server.Host != DefaultHost {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, DefaultHost)
	}
	if cfg.Server.WSPath != DefaultWSPath || cfg.Server.MetricsPath != DefaultMetricsPath {
		t.Errorf("Server paths = %q, %q", cfg.Server.WSPath, cfg.Server.MetricsPath)
	}
	if cfg.Routes.Manifest != DefaultManifest {
		t.Errorf("Routes.Manifest = %q, want %q", cfg.Routes.Manifest, DefaultManifest)
	}
	if !cfg.Telemetry.Metrics || cfg.Telemetry.Tracing {
		t.Errorf("Telemetry = %+v, want metrics only", cfg.Telemetry)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	// Missing config
	_, err := Load(tmpDir)
	if !errors.HasCode(err, "C001") {
		t.Fatalf("missing config error = %v, want C001", err)
	}

	writeConfig(t, tmpDir, `{
  "origin": "https://example.com",
  "server": {"host": "0.0.0.0", "port": 8080},
  "routes": {"manifest": "site.json", "allowPartial": true},
  "content": {"s3": {"bucket": "views", "region": "eu-west-1"}},
  "log": {"level": "debug", "format": "json"},
  "telemetry": {"tracing": true}
}
`)

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Server.Port != 8080 || cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Server.WSPath != DefaultWSPath {
		t.Errorf("Server.WSPath = %q, want default", cfg.Server.WSPath)
	}
	if cfg.Routes.Manifest != "site.json" || !cfg.Routes.AllowPartial {
		t.Errorf("Routes = %+v", cfg.Routes)
	}
	if !cfg.UsesS3() || cfg.Content.S3.Region != "eu-west-1" {
		t.Errorf("Content = %+v", cfg.Content)
	}
	if !cfg.Telemetry.Metrics || !cfg.Telemetry.Tracing {
		t.Errorf("Telemetry = %+v", cfg.Telemetry)
	}
	if level, _ := cfg.LogLevel(); level != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want debug", level)
	}
	if cfg.Dir() != tmpDir {
		t.Errorf("Dir = %q, want %q", cfg.Dir(), tmpDir)
	}
	if cfg.ContentPath() != filepath.Join(tmpDir, DefaultContentDir) {
		t.Errorf("ContentPath = %q", cfg.ContentPath())
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `{"server": `)
	if _, err := LoadFile(path); !errors.HasCode(err, "C002") {
		t.Errorf("error = %v, want C002", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"port too large", func(c *Config) { c.Server.Port = 70000 }},
		{"negative port", func(c *Config) { c.Server.Port = -1 }},
		{"origin without scheme", func(c *Config) { c.Origin = "example.com" }},
		{"origin with path", func(c *Config) { c.Origin = "https://example.com/app" }},
		{"relative ws path", func(c *Config) { c.Server.WSPath = "ws" }},
		{"bad log level", func(c *Config) { c.Log.Level = "chatty" }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.HasCode(err, "C003") {
				t.Errorf("Validate() = %v, want C003", err)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvPort, "9090")
	t.Setenv(EnvOrigin, "https://nav.example")
	t.Setenv(EnvLogLevel, "warn")

	path := writeConfig(t, t.TempDir(), `{"server": {"port": 8080}}`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Origin != "https://nav.example" {
		t.Errorf("Origin = %q", cfg.Origin)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
}

func TestApplyEnvBadPort(t *testing.T) {
	t.Setenv(EnvPort, "http")
	if err := New().ApplyEnv(); !errors.HasCode(err, "C003") {
		t.Errorf("ApplyEnv() = %v, want C003", err)
	}
}

func TestAddressAndOrigin(t *testing.T) {
	cfg := New()
	if cfg.Address() != "localhost:3000" {
		t.Errorf("Address = %q", cfg.Address())
	}
	if cfg.OriginOrDefault() != "http://localhost:3000" {
		t.Errorf("OriginOrDefault = %q", cfg.OriginOrDefault())
	}
	cfg.Origin = "https://example.com/"
	if cfg.OriginOrDefault() != "https://example.com" {
		t.Errorf("OriginOrDefault = %q", cfg.OriginOrDefault())
	}
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	if Exists(dir) {
		t.Error("Exists on empty dir")
	}
	writeConfig(t, dir, `{}`)
	if !Exists(dir) {
		t.Error("Exists after write")
	}
}
