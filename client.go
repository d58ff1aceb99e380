package ctsrange

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/ctsrange/internal/db"
	dbRedis "github.com/kailas-cloud/ctsrange/internal/db/redis"
	"github.com/kailas-cloud/ctsrange/internal/domain/citation"
	"github.com/kailas-cloud/ctsrange/internal/domain/textrange"
	"github.com/kailas-cloud/ctsrange/internal/metrics"
	"github.com/kailas-cloud/ctsrange/internal/repository/reffcache"
	"github.com/kailas-cloud/ctsrange/internal/transport/cts"
	healthuc "github.com/kailas-cloud/ctsrange/internal/usecase/health"
	"github.com/kailas-cloud/ctsrange/internal/usecase/rangecheck"
	"github.com/kailas-cloud/ctsrange/internal/usecase/resolver"
)

const (
	defaultTimeout          = 10 * time.Second
	defaultReadinessTimeout = 10 * time.Second
)

// Client resolves citations and validates ranges against one reference endpoint.
// It is safe for concurrent use.
type Client struct {
	store     db.Store // nil without a shared cache
	resolver  *resolver.Service
	validator *rangecheck.Service
	health    *healthuc.Service
	obs       *observer
}

// New creates a Client for the valid-references endpoint, e.g.
// "https://example.org/mc/api/v1.0/validReff". With WithValkey or WithRedis
// it also connects to the shared cache and waits for it to be ready.
func New(endpoint string, opts ...Option) (*Client, error) {
	cfg := &clientConfig{timeout: defaultTimeout}
	for _, o := range opts {
		o.apply(cfg)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}
	if cfg.metricsReg != nil {
		if err := registerCitationMetrics(cfg.metricsReg); err != nil {
			return nil, err
		}
	}

	refs, err := cts.NewClient(&cts.Config{
		Endpoint:   endpoint,
		Timeout:    cfg.timeout,
		Breaker:    breakerConfig(cfg.breaker),
		HTTPClient: cfg.httpClient,
		Logger:     obs.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("ctsrange: %w", err)
	}

	var store db.Store
	if cfg.driver != "" {
		store, err = createStore(cfg)
		if err != nil {
			return nil, err
		}
		if err := store.WaitForReady(context.Background(), defaultReadinessTimeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("ctsrange: database not ready: %w", err)
		}
	}

	return wireClient(refs, store, cfg, obs), nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "valkey", "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("ctsrange: create %s store: %w", cfg.driver, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("ctsrange: unknown driver %q", cfg.driver)
	}
}

// wireClient assembles the services. store may be nil.
func wireClient(refs *cts.Client, store db.Store, cfg *clientConfig, obs *observer) *Client {
	var fetcher resolver.Fetcher = refs
	var pinger healthuc.DBPinger
	if store != nil {
		fetcher = reffcache.New(refs, store, cfg.cacheTTL, metrics.ReffCacheTotal, obs.logger).
			WithKeyPrefix(cfg.keyPrefix)
		pinger = store
	}

	res := resolver.New(fetcher, citation.NewCaches(), obs.logger)
	return &Client{
		store:     store,
		resolver:  res,
		validator: rangecheck.New(res, obs.logger),
		health:    healthuc.New(pinger, refs),
		obs:       obs,
	}
}

func breakerConfig(s *BreakerSettings) cts.BreakerConfig {
	if s == nil {
		return cts.DefaultBreakerConfig()
	}
	return cts.BreakerConfig{
		MaxRequests:      s.MaxRequests,
		Interval:         s.Interval,
		Timeout:          s.OpenTimeout,
		FailureThreshold: s.FailureThreshold,
		MinRequests:      s.MinRequests,
	}
}

// registerCitationMetrics exposes the reference service and validation metrics on reg.
func registerCitationMetrics(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		metrics.ReffRequestsTotal,
		metrics.ReffRequestDuration,
		metrics.ReffCacheTotal,
		metrics.CitationFetchesTotal,
		metrics.RangeValidationsTotal,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return fmt.Errorf("ctsrange: register metric: %w", err)
		}
	}
	return nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping reports an error when the shared cache is unreachable or the
// reference endpoint's circuit breaker is open.
func (c *Client) Ping(ctx context.Context) error {
	report := c.health.Check(ctx)
	if report.Status == healthuc.Healthy {
		return nil
	}

	failed := make([]string, 0, len(report.Checks))
	for name, res := range report.Checks {
		if res != healthuc.CheckOK {
			failed = append(failed, name)
		}
	}
	sort.Strings(failed)
	return fmt.Errorf("ping: %s unavailable", strings.Join(failed, ", "))
}

// Open loads the outermost citation level of a corpus unless it is cached.
func (c *Client) Open(ctx context.Context, corpus Corpus) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("open", start, err) }()

	dc, err := corpus.toDomain()
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	if err := c.resolver.OpenCorpus(ctx, dc); err != nil {
		return fmt.Errorf("open %s: %w", corpus.ID, err)
	}
	return nil
}

// Children lists the citations directly below path in service order.
// An empty path lists the outermost level.
func (c *Client) Children(ctx context.Context, corpus Corpus, path ...string) (_ []Citation, err error) {
	start := time.Now()
	defer func() { c.obs.observe("children", start, err) }()

	dc, err := corpus.toDomain()
	if err != nil {
		return nil, fmt.Errorf("children: %w", err)
	}
	entries, err := c.resolver.Children(ctx, dc, path)
	if err != nil {
		return nil, fmt.Errorf("children of %s %s: %w", corpus.ID, strings.Join(path, "."), err)
	}

	out := make([]Citation, len(entries))
	for i, e := range entries {
		out[i] = Citation{Label: e.Label, Ordinal: e.Value, Level: e.Level, Numeric: e.IsNumeric}
	}
	return out, nil
}

// ValueOf returns the ordinal of label at depthIndex (0-based) below
// preceding[:depthIndex], fetching the parent's children if needed.
func (c *Client) ValueOf(
	ctx context.Context, corpus Corpus, label string, depthIndex int, preceding []string,
) (_ int, err error) {
	start := time.Now()
	defer func() { c.obs.observe("value_of", start, err) }()

	dc, err := corpus.toDomain()
	if err != nil {
		return 0, fmt.Errorf("value of: %w", err)
	}
	v, err := c.resolver.MapLabelToValue(ctx, dc, label, depthIndex, preceding)
	if err != nil {
		return 0, fmt.Errorf("value of: %w", err)
	}
	return v, nil
}

// Validate checks that start does not come after end. Only an invalid corpus
// definition returns an error; resolution failures yield an unverified valid verdict.
func (c *Client) Validate(ctx context.Context, corpus Corpus, start, end []string) (_ Verdict, err error) {
	began := time.Now()
	defer func() { c.obs.observe("validate", began, err) }()

	dc, err := corpus.toDomain()
	if err != nil {
		return Verdict{}, fmt.Errorf("validate: %w", err)
	}
	return verdictFromDomain(c.validator.Validate(ctx, start, end, dc)), nil
}

// ValidateRange reports whether start does not come after end.
// It returns false for an invalid corpus definition.
func (c *Client) ValidateRange(ctx context.Context, corpus Corpus, start, end []string) bool {
	v, err := c.Validate(ctx, corpus, start, end)
	return err == nil && v.Valid
}

// ParsePassage splits a passage identifier such as
// "urn:cts:latinLit:phi0448.phi001.perseus-lat2:1.1-1.7" into its work URN and labels.
func ParsePassage(urn string) (Passage, error) {
	p, err := textrange.ParseURN(urn)
	if err != nil {
		return Passage{}, err
	}
	start, err := p.Range.StartLabels()
	if err != nil {
		return Passage{}, err
	}
	end, err := p.Range.EndLabels()
	if err != nil {
		return Passage{}, err
	}
	return Passage{WorkURN: p.Base, Start: start, End: end}, nil
}
