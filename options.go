package ctsrange

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver    string // "valkey" or "redis"; empty disables the shared cache
	addrs     []string
	password  string
	cacheTTL  time.Duration
	keyPrefix string

	timeout    time.Duration
	httpClient *http.Client
	breaker    *BreakerSettings

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// BreakerSettings tune the circuit breaker in front of the reference endpoint.
type BreakerSettings struct {
	MaxRequests      uint32        // probes allowed while half-open
	Interval         time.Duration // failure counter reset period while closed
	OpenTimeout      time.Duration // time spent open before probing again
	FailureThreshold float64       // failure ratio that opens the breaker
	MinRequests      uint32        // requests before the ratio is evaluated
}

// WithValkey shares fetched reference lists through a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis shares fetched reference lists through a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithCacheTTL expires shared cache entries after ttl. Default: no expiry.
func WithCacheTTL(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheTTL = ttl
	})
}

// WithKeyPrefix sets the shared cache key namespace. Default: "ctsrange:reff:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithTimeout bounds each request to the reference endpoint. Default: 10s.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithHTTPClient replaces the HTTP client used for the reference endpoint.
// WithTimeout is ignored when set.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// WithBreaker overrides the circuit breaker settings.
func WithBreaker(s BreakerSettings) Option {
	return optionFunc(func(c *clientConfig) {
		c.breaker = &s
	})
}

// WithLogger enables structured logging. Default: no logging.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
