package ctsrange

import (
	domcorpus "github.com/kailas-cloud/ctsrange/internal/domain/corpus"
	"github.com/kailas-cloud/ctsrange/internal/usecase/rangecheck"
)

// Corpus describes a citable text and its citation scheme.
type Corpus struct {
	ID     string
	URN    string // CTS work URN, e.g. "urn:cts:latinLit:phi0448.phi001.perseus-lat2"
	Title  string
	Author string
	// CitationLevels names each citation depth, outermost first (1 to 3 entries).
	CitationLevels []string
}

func (c Corpus) toDomain() (domcorpus.Corpus, error) {
	return domcorpus.New(c.ID, c.URN, c.Title, c.Author, c.CitationLevels...)
}

// Citation is one child reference below a citation path.
type Citation struct {
	Label   string
	Ordinal int
	Level   string
	Numeric bool
}

// Verdict is the result of a range validation.
type Verdict struct {
	Valid bool
	// Verified is false when the range was accepted without resolving every label.
	Verified bool
	Reason   string
	// URN is the passage identifier of the range, empty when its shape is invalid.
	URN string
	// StartOrdinals and EndOrdinals hold the resolved ordinals per level.
	StartOrdinals []int
	EndOrdinals   []int
}

// Passage is a parsed passage identifier.
type Passage struct {
	WorkURN string
	Start   []string
	End     []string
}

func verdictFromDomain(v rangecheck.Verdict) Verdict {
	return Verdict{
		Valid:         v.Valid,
		Verified:      v.Verified,
		Reason:        v.Reason,
		URN:           v.URN,
		StartOrdinals: knownOrdinals(v.Start),
		EndOrdinals:   knownOrdinals(v.End),
	}
}

func knownOrdinals(ords []rangecheck.Ordinal) []int {
	out := make([]int, 0, len(ords))
	for _, o := range ords {
		if !o.Known {
			break
		}
		out = append(out, o.Value)
	}
	return out
}
