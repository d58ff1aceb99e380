package corpus

import (
	"fmt"
	"strings"
)

// LevelAbsent is the scheme name marking a citation depth the corpus does not use.
const LevelAbsent = "default"

// MaxDepth is the deepest citation level modeled.
const MaxDepth = 3

// Corpus describes one citable text and its citation scheme (immutable value object).
type Corpus struct {
	id     string
	urn    string
	title  string
	author string
	levels [MaxDepth]string
}

// New validates and creates a Corpus.
// levels holds the scheme names for depth 1..3; missing or empty entries mean LevelAbsent.
func New(id, urn, title, author string, levels ...string) (Corpus, error) {
	if id == "" {
		return Corpus{}, fmt.Errorf("corpus id is required")
	}
	urn = strings.TrimSpace(urn)
	if urn == "" {
		return Corpus{}, fmt.Errorf("corpus %s: urn is required", id)
	}
	if strings.HasSuffix(urn, ":") {
		return Corpus{}, fmt.Errorf("corpus %s: urn must not end with ':'", id)
	}
	if len(levels) > MaxDepth {
		return Corpus{}, fmt.Errorf("corpus %s: at most %d citation levels, got %d", id, MaxDepth, len(levels))
	}

	c := Corpus{id: id, urn: urn, title: title, author: author}
	for i := range c.levels {
		c.levels[i] = LevelAbsent
		if i < len(levels) && levels[i] != "" {
			c.levels[i] = levels[i]
		}
	}
	if c.levels[0] == LevelAbsent {
		return Corpus{}, fmt.Errorf("corpus %s: citation level 1 is required", id)
	}
	if c.levels[1] == LevelAbsent && c.levels[2] != LevelAbsent {
		return Corpus{}, fmt.Errorf("corpus %s: citation level 3 requires level 2", id)
	}
	return c, nil
}

// ID returns the registry key.
func (c Corpus) ID() string { return c.id }

// URN returns the CTS base identifier.
func (c Corpus) URN() string { return c.urn }

// Title returns the work title.
func (c Corpus) Title() string { return c.title }

// Author returns the author name.
func (c Corpus) Author() string { return c.author }

// Level returns the scheme name for a 0-based depth index, or LevelAbsent.
func (c Corpus) Level(depthIndex int) string {
	if depthIndex < 0 || depthIndex >= MaxDepth {
		return LevelAbsent
	}
	return c.levels[depthIndex]
}

// Levels returns the scheme names of all used depths.
func (c Corpus) Levels() []string {
	out := make([]string, 0, MaxDepth)
	for _, l := range c.levels {
		if l == LevelAbsent {
			break
		}
		out = append(out, l)
	}
	return out
}

// Depth returns how many citation levels the corpus uses (1, 2 or 3).
func (c Corpus) Depth() int {
	switch {
	case c.levels[1] == LevelAbsent:
		return 1
	case c.levels[2] == LevelAbsent:
		return 2
	default:
		return 3
	}
}
