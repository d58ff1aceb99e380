// Package textrange holds the start/end citation pair a caller selects.
package textrange

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/ctsrange/internal/domain"
	"github.com/kailas-cloud/ctsrange/internal/domain/corpus"
)

// TextRange is a hierarchical start/end pair; unused depths are empty strings.
type TextRange struct {
	Start [corpus.MaxDepth]string
	End   [corpus.MaxDepth]string
}

// New builds a TextRange from label slices of at most corpus.MaxDepth entries.
func New(start, end []string) (TextRange, error) {
	if len(start) > corpus.MaxDepth || len(end) > corpus.MaxDepth {
		return TextRange{}, fmt.Errorf("%w: at most %d labels per side", domain.ErrInvalidRange, corpus.MaxDepth)
	}
	var r TextRange
	copy(r.Start[:], start)
	copy(r.End[:], end)
	return r, nil
}

// Trim strips whitespace from every label and drops leading and trailing
// empty labels. An empty label between two non-empty ones is an error.
func Trim(labels []string) ([]string, error) {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = strings.TrimSpace(l)
	}
	for len(out) > 0 && out[0] == "" {
		out = out[1:]
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	for i, l := range out {
		if l == "" {
			return nil, fmt.Errorf("%w: empty label at position %d", domain.ErrInvalidRange, i+1)
		}
	}
	return out, nil
}

// StartLabels returns the trimmed start labels.
func (r TextRange) StartLabels() ([]string, error) { return Trim(r.Start[:]) }

// EndLabels returns the trimmed end labels.
func (r TextRange) EndLabels() ([]string, error) { return Trim(r.End[:]) }

// FormatURN builds the passage identifier <base>:<start>-<end>.
func FormatURN(base string, start, end []string) string {
	return base + ":" + strings.Join(start, ".") + "-" + strings.Join(end, ".")
}

// URN formats the passage identifier of the range for a corpus base URN.
func (r TextRange) URN(base string) (string, error) {
	start, err := r.StartLabels()
	if err != nil {
		return "", err
	}
	end, err := r.EndLabels()
	if err != nil {
		return "", err
	}
	if len(start) == 0 || len(end) == 0 {
		return "", fmt.Errorf("%w: start and end are required", domain.ErrInvalidRange)
	}
	return FormatURN(base, start, end), nil
}
