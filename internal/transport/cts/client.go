// Package cts is the HTTP client of the remote valid-references service.
package cts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ctsrange/internal/domain"
	"github.com/kailas-cloud/ctsrange/internal/metrics"
	"github.com/kailas-cloud/ctsrange/internal/version"
)

const maxResponseBytes = 8 << 20

// BreakerConfig holds circuit breaker settings for the reference service.
type BreakerConfig struct {
	MaxRequests      uint32        // requests allowed in half-open state
	Interval         time.Duration // closed-state counter reset period
	Timeout          time.Duration // open-state duration before half-open
	FailureThreshold float64       // failure ratio that trips the breaker
	MinRequests      uint32        // requests needed before the ratio is evaluated
}

// DefaultBreakerConfig returns conservative breaker settings.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// Config holds the reference service client settings.
type Config struct {
	Endpoint   string
	Timeout    time.Duration
	Breaker    BreakerConfig
	HTTPClient *http.Client // optional; Timeout is ignored when set
	Logger     *zap.Logger
}

// StatusError is a non-2xx answer from the reference service.
type StatusError struct {
	URN        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("reference service returned %d for %s", e.StatusCode, e.URN)
}

// Unwrap classifies every status failure as a remote fetch failure.
func (e *StatusError) Unwrap() error { return domain.ErrRemoteFetch }

// Client fetches the valid child references of a CTS URN.
type Client struct {
	endpoint *url.URL
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker
	logger   *zap.Logger
}

// NewClient creates a reference service client.
func NewClient(cfg *Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	endpoint, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	if endpoint.Scheme != "http" && endpoint.Scheme != "https" {
		return nil, fmt.Errorf("endpoint must be http or https, got %q", cfg.Endpoint)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	bc := cfg.Breaker
	if bc.MinRequests == 0 {
		bc = DefaultBreakerConfig()
	}

	c := &Client{endpoint: endpoint, http: httpClient, logger: logger}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "cts-valid-reff",
		MaxRequests: bc.MaxRequests,
		Interval:    bc.Interval,
		Timeout:     bc.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < bc.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= bc.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: isBreakerSuccess,
	})
	return c, nil
}

// ValidReff returns the full URNs one level below urn, in service order.
// Every failure wraps domain.ErrRemoteFetch; there are no retries.
func (c *Client) ValidReff(ctx context.Context, urn string) ([]string, error) {
	start := time.Now()

	out, err := c.breaker.Execute(func() (any, error) {
		return c.get(ctx, urn)
	})

	metrics.ReffRequestDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.ReffRequestsTotal.WithLabelValues("breaker_open").Inc()
			return nil, fmt.Errorf("valid reff %s: %w: %w", urn, domain.ErrRemoteFetch, err)
		}
		metrics.ReffRequestsTotal.WithLabelValues("error").Inc()
		c.logger.Debug("Reference request failed", zap.String("urn", urn), zap.Error(err))
		return nil, err
	}

	metrics.ReffRequestsTotal.WithLabelValues("success").Inc()
	reff, _ := out.([]string)
	return reff, nil
}

// HealthCheck reports an error while the circuit breaker is open.
func (c *Client) HealthCheck(_ context.Context) error {
	if c.breaker.State() == gobreaker.StateOpen {
		return fmt.Errorf("reference service breaker open: %w", domain.ErrRemoteFetch)
	}
	return nil
}

func (c *Client) get(ctx context.Context, urn string) ([]string, error) {
	u := *c.endpoint
	q := u.Query()
	q.Set("urn", urn)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("valid reff %s: %w: %w", urn, domain.ErrRemoteFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, &StatusError{URN: urn, StatusCode: resp.StatusCode}
	}

	var reff []string
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&reff); err != nil {
		return nil, fmt.Errorf("decode valid reff %s: %w: %w", urn, domain.ErrRemoteFetch, err)
	}
	return reff, nil
}

// isBreakerSuccess counts client errors (4xx) as successes so that unknown
// URNs do not trip the breaker.
func isBreakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode < 500
	}
	return errors.Is(err, context.Canceled)
}
