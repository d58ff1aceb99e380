// Package rangecheck decides whether a start/end citation pair is correctly ordered.
package rangecheck

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	domcorpus "github.com/kailas-cloud/ctsrange/internal/domain/corpus"
	"github.com/kailas-cloud/ctsrange/internal/domain/textrange"
	"github.com/kailas-cloud/ctsrange/internal/metrics"
)

// Validation outcomes, also used as metric labels.
const (
	OutcomeValid      = "valid"
	OutcomeInvalid    = "invalid"
	OutcomeShapeError = "shape_error"
	OutcomeFailOpen   = "fail_open"
)

// Ordinal is a resolved label position. Known is false when the label could not be resolved.
type Ordinal struct {
	Value int
	Known bool
}

// Verdict is the result of one range validation.
type Verdict struct {
	Valid bool
	// Verified is false when the range was accepted without resolving every label.
	Verified bool
	Outcome  string
	Reason   string
	URN      string
	Start    []Ordinal
	End      []Ordinal
}

// Service validates text ranges against a corpus's citation hierarchy.
type Service struct {
	resolver Resolver
	logger   *zap.Logger
}

// New creates a range validator.
func New(resolver Resolver, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{resolver: resolver, logger: logger}
}

// ValidateRange reports whether start does not come after end.
func (s *Service) ValidateRange(ctx context.Context, start, end []string, c domcorpus.Corpus) bool {
	return s.Validate(ctx, start, end, c).Valid
}

// Validate checks the shape of the range, resolves every label level by level
// (start before end at each level) and compares the ordinal vectors.
// A label that cannot be resolved makes the range valid but unverified.
func (s *Service) Validate(ctx context.Context, start, end []string, c domcorpus.Corpus) Verdict {
	start, err := textrange.Trim(start)
	if err != nil {
		return s.finish(Verdict{Outcome: OutcomeShapeError, Reason: "start: " + err.Error()})
	}
	end, err = textrange.Trim(end)
	if err != nil {
		return s.finish(Verdict{Outcome: OutcomeShapeError, Reason: "end: " + err.Error()})
	}

	depth := c.Depth()
	if len(start) != depth || len(end) != depth {
		return s.finish(Verdict{
			Outcome: OutcomeShapeError,
			Reason:  fmt.Sprintf("corpus %s cites %d levels, got %d start and %d end labels", c.ID(), depth, len(start), len(end)),
		})
	}

	v := Verdict{
		URN:   textrange.FormatURN(c.URN(), start, end),
		Start: make([]Ordinal, 0, depth),
		End:   make([]Ordinal, 0, depth),
	}
	for i := 0; i < depth; i++ {
		sv, err := s.resolver.MapLabelToValue(ctx, c, start[i], i, start)
		if err != nil {
			return s.failOpen(c, v, start, end, err)
		}
		v.Start = append(v.Start, Ordinal{Value: sv, Known: true})

		ev, err := s.resolver.MapLabelToValue(ctx, c, end[i], i, end)
		if err != nil {
			return s.failOpen(c, v, start, end, err)
		}
		v.End = append(v.End, Ordinal{Value: ev, Known: true})
	}

	v.Verified = true
	v.Valid = Compare(v.Start, v.End)
	if v.Valid {
		v.Outcome = OutcomeValid
	} else {
		v.Outcome = OutcomeInvalid
		v.Reason = "start comes after end"
	}
	return s.finish(v)
}

func (s *Service) failOpen(c domcorpus.Corpus, v Verdict, start, end []string, cause error) Verdict {
	s.logger.Warn("Range accepted without verification",
		zap.String("corpus", c.ID()),
		zap.Strings("start", start),
		zap.Strings("end", end),
		zap.Error(cause),
	)
	v.Valid = true
	v.Verified = false
	v.Outcome = OutcomeFailOpen
	v.Reason = cause.Error()
	return s.finish(v)
}

func (s *Service) finish(v Verdict) Verdict {
	metrics.RangeValidationsTotal.WithLabelValues(v.Outcome).Inc()
	return v
}

// Compare reports whether start does not come after end. The first differing
// position decides; an unknown ordinal there is inconclusive and counts as valid.
// Vectors of different length are compared over their common prefix.
func Compare(start, end []Ordinal) bool {
	n := min(len(start), len(end))
	for i := 0; i < n; i++ {
		a, b := start[i], end[i]
		if !a.Known || !b.Known {
			return true
		}
		if a.Value != b.Value {
			return a.Value < b.Value
		}
	}
	return true
}
