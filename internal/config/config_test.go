package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		CTS:  CTSConfig{Endpoint: "http://localhost:5000/mc/api/v1.0/validReff"},
		Corpora: []CorpusConfig{{
			ID:             "caesar-bg",
			URN:            "urn:cts:latinLit:phi0448.phi001.perseus-lat2",
			CitationLevels: []string{"book", "chapter", "section"},
		}},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Enabled() {
		t.Error("database must be disabled without addrs")
	}
}

func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"port", func(c *Config) { c.HTTP.Port = 0 }, "http.port"},
		{"missing endpoint", func(c *Config) { c.CTS.Endpoint = "" }, "cts.endpoint is required"},
		{"relative endpoint", func(c *Config) { c.CTS.Endpoint = "/validReff" }, "absolute http(s) URL"},
		{"threshold", func(c *Config) { c.CTS.Breaker.FailureThreshold = 1.5 }, "failure_threshold"},
		{"driver", func(c *Config) { c.Database.Driver = "memcached" }, "database.driver"},
		{"ttl", func(c *Config) { c.Database.TTLSec = -1 }, "ttl_sec"},
		{"no corpora", func(c *Config) { c.Corpora = nil }, "at least one corpus"},
		{"corpus id", func(c *Config) { c.Corpora[0].ID = "" }, "corpora[0].id is required"},
		{"duplicate corpus", func(c *Config) { c.Corpora = append(c.Corpora, c.Corpora[0]) }, "duplicated"},
		{"corpus urn", func(c *Config) { c.Corpora[0].URN = "phi0448" }, "urn:cts:"},
		{"too many levels", func(c *Config) {
			c.Corpora[0].CitationLevels = []string{"a", "b", "c", "d"}
		}, "citation_levels"},
		{"no levels", func(c *Config) { c.Corpora[0].CitationLevels = nil }, "citation_levels"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err.Error(), tc.want)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.CTS.TimeoutSec != 10 {
		t.Errorf("expected CTS.TimeoutSec=10, got %d", cfg.CTS.TimeoutSec)
	}
	if cfg.CTS.Breaker.FailureThreshold != 0.8 {
		t.Errorf("expected FailureThreshold=0.8, got %v", cfg.CTS.Breaker.FailureThreshold)
	}
	if cfg.CTS.Breaker.MinRequests != 5 {
		t.Errorf("expected MinRequests=5, got %d", cfg.CTS.Breaker.MinRequests)
	}
	if cfg.Database.Driver != "valkey" {
		t.Errorf("expected Driver=valkey, got %q", cfg.Database.Driver)
	}
	if cfg.Database.KeyPrefix != "ctsrange:reff:" {
		t.Errorf("expected KeyPrefix='ctsrange:reff:', got %q", cfg.Database.KeyPrefix)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		CTS:      CTSConfig{TimeoutSec: 3, Breaker: BreakerConfig{FailureThreshold: 0.5}},
		Database: DatabaseConfig{ReadinessTimeout: 15, KeyPrefix: "custom:"},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.CTS.TimeoutSec != 3 {
		t.Errorf("expected CTS.TimeoutSec=3, got %d", cfg.CTS.TimeoutSec)
	}
	if cfg.CTS.Breaker.FailureThreshold != 0.5 {
		t.Errorf("expected FailureThreshold=0.5, got %v", cfg.CTS.Breaker.FailureThreshold)
	}
	if cfg.Database.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Database.KeyPrefix)
	}
}

func TestParse_ExpandsEnvVars(t *testing.T) {
	t.Setenv("CTSRANGE_TEST_ENDPOINT", "https://cts.example.org/validReff")
	data := []byte(`
http:
  port: ${CTSRANGE_TEST_PORT:-9090}
cts:
  endpoint: ${CTSRANGE_TEST_ENDPOINT}
database:
  addrs: ["localhost:6379"]
  ttl_sec: 3600
corpora:
  - id: catullus
    urn: urn:cts:latinLit:phi0472.phi001.perseus-lat2
    citation_levels: [poem, line]
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("expected default port 9090, got %d", cfg.HTTP.Port)
	}
	if cfg.CTS.Endpoint != "https://cts.example.org/validReff" {
		t.Errorf("unexpected endpoint %q", cfg.CTS.Endpoint)
	}
	if !cfg.Database.Enabled() || cfg.Database.TTLSec != 3600 {
		t.Errorf("unexpected database config: %+v", cfg.Database)
	}
	if len(cfg.Corpora) != 1 || cfg.Corpora[0].CitationLevels[1] != "line" {
		t.Errorf("unexpected corpora: %+v", cfg.Corpora)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	if _, err := Parse([]byte("http: [")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoad_Local(t *testing.T) {
	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("Load(local): %v", err)
	}
	if len(cfg.Corpora) == 0 {
		t.Error("local config must declare corpora")
	}
}
