package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the ctsrange API configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	CTS      CTSConfig      `yaml:"cts"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Corpora  []CorpusConfig `yaml:"corpora"`
	Logging  LoggingConfig  `yaml:"logging"`
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
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// CTSConfig holds the remote valid-references service settings.
type CTSConfig struct {
	Endpoint   string        `yaml:"endpoint"`
	TimeoutSec int           `yaml:"timeout_sec"`
	Breaker    BreakerConfig `yaml:"breaker"`
}

// BreakerConfig holds circuit breaker settings for the reference service.
type BreakerConfig struct {
	MaxRequests      uint32  `yaml:"max_requests"`
	IntervalSec      int     `yaml:"interval_sec"`
	OpenTimeoutSec   int     `yaml:"open_timeout_sec"`
	FailureThreshold float64 `yaml:"failure_threshold"`
	MinRequests      uint32  `yaml:"min_requests"`
}

// DatabaseConfig holds the optional shared reference cache settings.
// The cache is disabled when Addrs is empty.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // valkey, redis (default: valkey)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	TTLSec           int      `yaml:"ttl_sec"` // 0 = keep forever
	KeyPrefix        string   `yaml:"key_prefix"`
}

// Enabled reports whether a shared cache store is configured.
func (d DatabaseConfig) Enabled() bool { return len(d.Addrs) > 0 }

// CorpusConfig describes one citable text.
type CorpusConfig struct {
	ID             string   `yaml:"id"`
	URN            string   `yaml:"urn"`
	Title          string   `yaml:"title"`
	Author         string   `yaml:"author"`
	CitationLevels []string `yaml:"citation_levels"` // outermost first, at most 3
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse expands environment variables in data, decodes it, applies defaults and validates.
func Parse(data []byte) (Config, error) {
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
	if c.CTS.TimeoutSec <= 0 {
		c.CTS.TimeoutSec = 10
	}
	if c.CTS.Breaker.MaxRequests == 0 {
		c.CTS.Breaker.MaxRequests = 3
	}
	if c.CTS.Breaker.IntervalSec <= 0 {
		c.CTS.Breaker.IntervalSec = 30
	}
	if c.CTS.Breaker.OpenTimeoutSec <= 0 {
		c.CTS.Breaker.OpenTimeoutSec = 30
	}
	if c.CTS.Breaker.FailureThreshold <= 0 {
		c.CTS.Breaker.FailureThreshold = 0.8
	}
	if c.CTS.Breaker.MinRequests == 0 {
		c.CTS.Breaker.MinRequests = 5
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "valkey"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Database.KeyPrefix == "" {
		c.Database.KeyPrefix = "ctsrange:reff:"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.CTS.Endpoint == "" {
		return fmt.Errorf("cts.endpoint is required")
	}
	u, err := url.Parse(c.CTS.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("cts.endpoint must be an absolute http(s) URL, got %q", c.CTS.Endpoint)
	}
	if c.CTS.Breaker.FailureThreshold > 1 {
		return fmt.Errorf("cts.breaker.failure_threshold must be in (0, 1], got %v", c.CTS.Breaker.FailureThreshold)
	}
	switch c.Database.Driver {
	case "valkey", "redis":
		// ok
	default:
		return fmt.Errorf("database.driver must be \"valkey\" or \"redis\", got %q", c.Database.Driver)
	}
	if c.Database.TTLSec < 0 {
		return fmt.Errorf("database.ttl_sec must not be negative, got %d", c.Database.TTLSec)
	}
	if len(c.Corpora) == 0 {
		return fmt.Errorf("at least one corpus is required")
	}
	seen := make(map[string]struct{}, len(c.Corpora))
	for i, cc := range c.Corpora {
		if cc.ID == "" {
			return fmt.Errorf("corpora[%d].id is required", i)
		}
		if _, dup := seen[cc.ID]; dup {
			return fmt.Errorf("corpora[%d].id %q is duplicated", i, cc.ID)
		}
		seen[cc.ID] = struct{}{}
		if !strings.HasPrefix(cc.URN, "urn:cts:") {
			return fmt.Errorf("corpora.%s.urn must start with \"urn:cts:\", got %q", cc.ID, cc.URN)
		}
		if len(cc.CitationLevels) == 0 || len(cc.CitationLevels) > 3 {
			return fmt.Errorf("corpora.%s.citation_levels must have 1 to 3 entries, got %d", cc.ID, len(cc.CitationLevels))
		}
	}
	return nil
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
