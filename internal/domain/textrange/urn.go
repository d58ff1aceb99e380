package textrange

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/kailas-cloud/ctsrange/internal/domain"
)

// Passage is a parsed passage identifier.
type Passage struct {
	// Base is the work URN without the passage part.
	Base  string
	Range TextRange
}

// urnGrammar is the participle grammar for CTS passage identifiers.
// Examples: "urn:cts:latinLit:phi0448.phi001.perseus-lat2:1.1-1.7", "urn:cts:greekLit:tlg0012.tlg001:1"
//
//nolint:govet // participle grammar tags are not standard struct tags
type urnGrammar struct {
	Namespace string      `"urn" ":" "cts" ":" @Segment ":"`
	Work      []string    `@Segment ( @( "." | "-" ) @Segment )* ":"`
	Start     *refGrammar `@@`
	End       *refGrammar `( "-" @@ )?`
}

//nolint:govet // participle grammar tags are not standard struct tags
type refGrammar struct {
	Parts []string `@Segment ( "." @Segment )*`
}

var urnLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Segment", Pattern: `[^:.\-\s]+`},
	{Name: "Punct", Pattern: `[:.\-]`},
})

var urnParser = participle.MustBuild[urnGrammar](
	participle.Lexer(urnLexer),
)

// ParseURN parses a passage identifier into its work URN and text range.
// A passage without "-<end>" is a single-reference range (start == end).
func ParseURN(s string) (Passage, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Passage{}, fmt.Errorf("%w: empty string", domain.ErrInvalidURN)
	}

	parsed, err := urnParser.ParseString("", s)
	if err != nil {
		return Passage{}, fmt.Errorf("%w: %q: %w", domain.ErrInvalidURN, s, err)
	}

	end := parsed.Start
	if parsed.End != nil {
		end = parsed.End
	}
	r, err := New(parsed.Start.Parts, end.Parts)
	if err != nil {
		return Passage{}, fmt.Errorf("%w: %q: %w", domain.ErrInvalidURN, s, err)
	}

	return Passage{
		Base:  "urn:cts:" + parsed.Namespace + ":" + strings.Join(parsed.Work, ""),
		Range: r,
	}, nil
}
