// Package resolver maps citation labels to ordinals, discovering the
// citation hierarchy of a corpus on demand.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ctsrange/internal/domain"
	"github.com/kailas-cloud/ctsrange/internal/domain/citation"
	domcorpus "github.com/kailas-cloud/ctsrange/internal/domain/corpus"
	"github.com/kailas-cloud/ctsrange/internal/metrics"
)

// Service resolves citation labels against per-corpus caches.
type Service struct {
	fetcher Fetcher
	caches  *citation.Caches
	logger  *zap.Logger
}

// New creates a resolver. caches is shared by every caller of the service.
func New(fetcher Fetcher, caches *citation.Caches, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{fetcher: fetcher, caches: caches, logger: logger}
}

// OpenCorpus loads the depth-1 citations of a corpus unless they are already cached.
func (s *Service) OpenCorpus(ctx context.Context, c domcorpus.Corpus) error {
	return s.ensureChildren(ctx, c, s.caches.For(c.ID()), nil)
}

// MapLabelToValue returns the ordinal of label at depthIndex (0-based) below
// the path given by preceding[:depthIndex]. Missing child sets below depth 0
// are fetched and cached first. When the parent itself is unknown, an integer
// label is returned as a best-effort ordinal without caching.
func (s *Service) MapLabelToValue(
	ctx context.Context, c domcorpus.Corpus, label string, depthIndex int, preceding []string,
) (int, error) {
	if depthIndex < 0 {
		return 0, fmt.Errorf("negative depth %d", depthIndex)
	}
	if depthIndex >= domcorpus.MaxDepth {
		return bestEffort(label, depthIndex, domain.ErrLabelNotFound)
	}
	if len(preceding) < depthIndex {
		return bestEffort(label, depthIndex, domain.ErrParentNotFound)
	}

	cache := s.caches.For(c.ID())
	path := preceding[:depthIndex]

	parent, ok := cache.Parent(path)
	if !ok {
		return bestEffort(label, depthIndex, domain.ErrParentNotFound)
	}

	if parent.State != citation.Fetched {
		if depthIndex == 0 {
			// Depth 0 is loaded by OpenCorpus, never here.
			return bestEffort(label, depthIndex, domain.ErrLabelNotFound)
		}
		if err := s.ensureChildren(ctx, c, cache, path); err != nil {
			return 0, &domain.LabelError{Label: label, Depth: depthIndex, Err: err}
		}
	}

	entry, ok := cache.Child(path, label)
	if !ok {
		return 0, &domain.LabelError{Label: label, Depth: depthIndex, Err: domain.ErrLabelNotFound}
	}
	return entry.Value, nil
}

// Children lists the citations directly below path, fetching every level on
// the way that is not cached yet. An empty path lists the depth-1 citations.
func (s *Service) Children(ctx context.Context, c domcorpus.Corpus, path []string) ([]citation.Entry, error) {
	if len(path) >= c.Depth() {
		return []citation.Entry{}, nil
	}

	cache := s.caches.For(c.ID())
	for i := 0; i <= len(path); i++ {
		if err := s.ensureChildren(ctx, c, cache, path[:i]); err != nil {
			return nil, err
		}
		if i == len(path) {
			break
		}
		if _, ok := cache.Child(path[:i], path[i]); !ok {
			return nil, &domain.LabelError{Label: path[i], Depth: i, Err: domain.ErrLabelNotFound}
		}
	}

	children, _, ok := cache.Children(path)
	if !ok {
		return nil, fmt.Errorf("path %s: %w", strings.Join(path, "."), domain.ErrParentNotFound)
	}
	return children, nil
}

// ensureChildren fetches and caches the children of the node at path if needed.
// A failed fetch leaves the node unfetched.
func (s *Service) ensureChildren(
	ctx context.Context, c domcorpus.Corpus, cache *citation.Cache, path []string,
) error {
	parent, ok := cache.Parent(path)
	if !ok {
		return fmt.Errorf("path %s: %w", strings.Join(path, "."), domain.ErrParentNotFound)
	}
	if parent.State == citation.Fetched || !cache.BeginFetch(path) {
		return nil
	}

	urn := RequestURN(c.URN(), parent.Segments)
	depth := strconv.Itoa(len(path) + 1)
	start := time.Now()

	reff, err := s.fetcher.ValidReff(ctx, urn)
	if err != nil {
		cache.AbortFetch(path)
		metrics.CitationFetchesTotal.WithLabelValues(depth, "error").Inc()
		if !errors.Is(err, domain.ErrRemoteFetch) {
			err = fmt.Errorf("%w: %w", domain.ErrRemoteFetch, err)
		}
		return fmt.Errorf("fetch children of %s: %w", urn, err)
	}

	labels := ChildLabels(urn, len(path) == 0, reff)
	cache.Insert(path, c.Level(len(path)), labels)
	metrics.CitationFetchesTotal.WithLabelValues(depth, "success").Inc()

	s.logger.Debug("Citations fetched",
		zap.String("corpus", c.ID()),
		zap.String("urn", urn),
		zap.Int("children", len(labels)),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

// RequestURN joins a corpus URN with the URN segments of a citation path.
func RequestURN(base string, segments []string) string {
	if len(segments) == 0 {
		return base
	}
	return base + ":" + strings.Join(segments, ".")
}

// ChildLabels strips the request URN from every returned child URN.
// Children of the corpus root are separated by ':', deeper ones by '.'.
// A child that does not carry the expected prefix keeps its last segment.
func ChildLabels(requestURN string, atRoot bool, reff []string) []string {
	sep := "."
	if atRoot {
		sep = ":"
	}
	prefix := requestURN + sep

	labels := make([]string, 0, len(reff))
	for _, urn := range reff {
		label, ok := strings.CutPrefix(urn, prefix)
		if !ok {
			label = urn[strings.LastIndex(urn, sep)+1:]
		}
		if label == "" {
			continue
		}
		labels = append(labels, label)
	}
	return labels
}

func bestEffort(label string, depthIndex int, cause error) (int, error) {
	if n, ok := citation.ParseNumber(label); ok {
		return n, nil
	}
	return 0, &domain.LabelError{Label: label, Depth: depthIndex, Err: cause}
}
