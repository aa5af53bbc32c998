package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the sitetrends service configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	SharePoint SharePointConfig `yaml:"sharepoint"`
	Cache      CacheConfig      `yaml:"cache"`
	Display    DisplayConfig    `yaml:"display"`
	Auth       AuthConfig       `yaml:"auth"`
	Tracing    TracingConfig    `yaml:"tracing"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port              int `yaml:"port"`
	ReadTimeoutSec    int `yaml:"read_timeout_sec"`
	WriteTimeoutSec   int `yaml:"write_timeout_sec"`
	ShutdownSec       int `yaml:"shutdown_timeout_sec"`
	RequestTimeoutSec int `yaml:"request_timeout_sec"`
}

// SharePointConfig holds search backend settings.
type SharePointConfig struct {
	// AppToken authorizes membership listing. Searches use the caller's token.
	AppToken string `yaml:"app_token"`
	// AllowedHosts are the tenant hosts a site URL may point at, e.g.
	// "contoso.sharepoint.com". Requests for any other host are refused.
	AllowedHosts   []string             `yaml:"allowed_hosts"`
	TimeoutSec     int                  `yaml:"timeout_sec"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`
	RateLimitRPS   float64              `yaml:"rate_limit_rps"` // 0 = unlimited
	RateLimitBurst int                  `yaml:"rate_limit_burst"`
}

// CircuitBreakerConfig tunes the backend circuit breaker.
type CircuitBreakerConfig struct {
	MaxRequests uint32  `yaml:"max_requests"` // trial requests allowed while half-open
	IntervalSec int     `yaml:"interval_sec"` // closed-state counter reset
	TimeoutSec  int     `yaml:"timeout_sec"`  // open -> half-open
	TripRatio   float64 `yaml:"trip_ratio"`   // failure ratio that opens the breaker
}

// CacheConfig holds the optional actor cache settings.
type CacheConfig struct {
	Enabled          bool     `yaml:"enabled"`
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	TTLSec           int      `yaml:"ttl_sec"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// DisplayConfig holds presentation settings.
type DisplayConfig struct {
	Timezone string `yaml:"timezone"` // IANA name, default UTC
}

// TracingConfig holds OpenTelemetry export settings.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"sampling_rate"`
	Insecure     bool    `yaml:"insecure"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.RequestTimeoutSec <= 0 {
		c.HTTP.RequestTimeoutSec = 15
	}
	if c.SharePoint.TimeoutSec <= 0 {
		c.SharePoint.TimeoutSec = 10
	}
	cb := &c.SharePoint.CircuitBreaker
	if cb.MaxRequests == 0 {
		cb.MaxRequests = 1
	}
	if cb.IntervalSec <= 0 {
		cb.IntervalSec = 60
	}
	if cb.TimeoutSec <= 0 {
		cb.TimeoutSec = 30
	}
	if cb.TripRatio <= 0 {
		cb.TripRatio = 0.6
	}
	if c.SharePoint.RateLimitRPS > 0 && c.SharePoint.RateLimitBurst <= 0 {
		c.SharePoint.RateLimitBurst = 1
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 300
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.Display.Timezone == "" {
		c.Display.Timezone = "UTC"
	}
	if c.Tracing.SamplingRate <= 0 {
		c.Tracing.SamplingRate = 1.0
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.SharePoint.AppToken == "" {
		return fmt.Errorf("sharepoint.app_token is required")
	}
	if len(c.SharePoint.AllowedHosts) == 0 {
		return fmt.Errorf("sharepoint.allowed_hosts must list at least one tenant host")
	}
	for _, h := range c.SharePoint.AllowedHosts {
		if strings.TrimSpace(h) == "" || strings.Contains(h, "/") {
			return fmt.Errorf("sharepoint.allowed_hosts: %q is not a host name", h)
		}
	}
	if r := c.SharePoint.CircuitBreaker.TripRatio; r > 1 {
		return fmt.Errorf("sharepoint.circuit_breaker.trip_ratio must be in (0, 1], got %g", r)
	}
	if c.SharePoint.RateLimitRPS < 0 {
		return fmt.Errorf("sharepoint.rate_limit_rps must not be negative, got %g", c.SharePoint.RateLimitRPS)
	}
	if c.Cache.Enabled && len(c.Cache.Addrs) == 0 {
		return fmt.Errorf("cache.addrs is required when cache is enabled")
	}
	if _, err := time.LoadLocation(c.Display.Timezone); err != nil {
		return fmt.Errorf("display.timezone: %w", err)
	}
	if c.Tracing.Enabled && c.Tracing.Endpoint == "" {
		return fmt.Errorf("tracing.endpoint is required when tracing is enabled")
	}
	if c.Tracing.SamplingRate > 1 {
		return fmt.Errorf("tracing.sampling_rate must be in (0, 1], got %g", c.Tracing.SamplingRate)
	}
	return nil
}

// Location returns the display timezone. Call after Validate.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Display.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
