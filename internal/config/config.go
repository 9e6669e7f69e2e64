package config

import (
	"encoding/json"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vango-dev/navrouter/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "navrouter.json"

	// DefaultPort is the default server port.
	DefaultPort = 3000

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultWSPath is the default websocket endpoint.
	DefaultWSPath = "/_nav/ws"

	// DefaultMetricsPath is the default Prometheus endpoint.
	DefaultMetricsPath = "/metrics"

	// DefaultManifest is the default route manifest key.
	DefaultManifest = "routes.json"

	// DefaultContentDir is the default content directory.
	DefaultContentDir = "content"

	// DefaultNamespace is the default metrics namespace.
	DefaultNamespace = "navrouter"

	// DefaultTracerName is the default OpenTelemetry tracer name.
	DefaultTracerName = "github.com/vango-dev/navrouter"
)

// Environment variables read by ApplyEnv.
const (
	EnvPort     = "NAVROUTER_PORT"
	EnvOrigin   = "NAVROUTER_ORIGIN"
	EnvLogLevel = "NAVROUTER_LOG_LEVEL"
)

// Config represents the complete navrouter.json configuration.
type Config struct {
	// Origin is the scheme and host clicks are compared against
	// (e.g., "https://example.com"). Empty means derive it from each request.
	Origin string `json:"origin,omitempty"`

	// Server contains HTTP server configuration.
	Server ServerConfig `json:"server,omitempty"`

	// Routes contains route table configuration.
	Routes RoutesConfig `json:"routes,omitempty"`

	// Content contains view content configuration.
	Content ContentConfig `json:"content,omitempty"`

	// Log contains logging configuration.
	Log LogConfig `json:"log,omitempty"`

	// Telemetry contains metrics and tracing configuration.
	Telemetry TelemetryConfig `json:"telemetry,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty"`

	// WSPath is the websocket endpoint of the thin-client bridge.
	WSPath string `json:"wsPath,omitempty"`

	// MetricsPath is the Prometheus endpoint.
	MetricsPath string `json:"metricsPath,omitempty"`
}

// RoutesConfig contains route table settings.
type RoutesConfig struct {
	// Manifest is the content key of the route manifest.
	Manifest string `json:"manifest,omitempty"`

	// AllowPartial lets routes match URLs with extra trailing segments.
	AllowPartial bool `json:"allowPartial,omitempty"`
}

// ContentConfig selects where the manifest and view templates live.
// When S3.Bucket is set, content is read from S3 instead of Dir.
type ContentConfig struct {
	Dir string   `json:"dir,omitempty"`
	S3  S3Config `json:"s3,omitempty"`
}

// S3Config contains S3 content store settings.
type S3Config struct {
	Bucket   string `json:"bucket,omitempty"`
	Prefix   string `json:"prefix,omitempty"`
	Region   string `json:"region,omitempty"`
	Endpoint string `json:"endpoint,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty"`
}

// TelemetryConfig contains metrics and tracing settings.
type TelemetryConfig struct {
	Namespace  string `json:"namespace,omitempty"`
	TracerName string `json:"tracerName,omitempty"`

	// Metrics enables the Prometheus endpoint.
	Metrics bool `json:"metrics,omitempty"`

	// Tracing enables transition spans.
	Tracing bool `json:"tracing,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	cfg := &Config{
		Log: LogConfig{Level: "info", Format: "text"},
		Telemetry: TelemetryConfig{
			Metrics: true,
		},
	}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from the specified directory.
// It looks for navrouter.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path, applies
// defaults and environment overrides, and validates the result.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("C001").
				WithSubject(path).
				WithDetail("No " + ConfigFileName + " found in " + filepath.Dir(path))
		}
		return nil, errors.New("C002").WithSubject(path).Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("C002").
			WithSubject(path).
			WithDetail("Failed to parse " + ConfigFileName + ": " + err.Error()).
			WithSuggestion("Check that " + ConfigFileName + " is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.WSPath == "" {
		c.Server.WSPath = DefaultWSPath
	}
	if c.Server.MetricsPath == "" {
		c.Server.MetricsPath = DefaultMetricsPath
	}

	if c.Routes.Manifest == "" {
		c.Routes.Manifest = DefaultManifest
	}
	if c.Content.Dir == "" {
		c.Content.Dir = DefaultContentDir
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	if c.Telemetry.Namespace == "" {
		c.Telemetry.Namespace = DefaultNamespace
	}
	if c.Telemetry.TracerName == "" {
		c.Telemetry.TracerName = DefaultTracerName
	}
}

// ApplyEnv overrides fields from NAVROUTER_* environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return errors.New("C003").
				WithSubject(EnvPort + "=" + v).
				WithDetail("Port must be a number")
		}
		c.Server.Port = port
	}
	if v := os.Getenv(EnvOrigin); v != "" {
		c.Origin = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("C003").
			WithSubject("server.port").
			WithDetail("Port must be between 0 and 65535")
	}
	if c.Origin != "" {
		u, err := url.Parse(c.Origin)
		if err != nil || u.Scheme == "" || u.Host == "" || (u.Path != "" && u.Path != "/") {
			return errors.New("C003").
				WithSubject("origin").
				WithDetail("Origin must be a scheme and host such as https://example.com")
		}
	}
	for field, p := range map[string]string{"server.wsPath": c.Server.WSPath, "server.metricsPath": c.Server.MetricsPath} {
		if !strings.HasPrefix(p, "/") {
			return errors.New("C003").
				WithSubject(field).
				WithDetail("Endpoint paths must start with /")
		}
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New("C003").
			WithSubject("log.format").
			WithDetail("Log format must be text or json")
	}
	return nil
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, errors.New("C003").
			WithSubject("log.level").
			WithDetail("Log level must be debug, info, warn or error")
	}
	return level, nil
}

// Address returns the address string for the server.
func (c *Config) Address() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// OriginOrDefault returns Origin, or the server's own http origin when none
// is configured.
func (c *Config) OriginOrDefault() string {
	if c.Origin != "" {
		return strings.TrimSuffix(c.Origin, "/")
	}
	return "http://" + c.Address()
}

// ContentPath returns the absolute path to the content directory.
func (c *Config) ContentPath() string {
	if filepath.IsAbs(c.Content.Dir) {
		return c.Content.Dir
	}
	return filepath.Join(c.Dir(), c.Content.Dir)
}

// UsesS3 reports whether content is read from S3.
func (c *Config) UsesS3() bool {
	return c.Content.S3.Bucket != ""
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}
