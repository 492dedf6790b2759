package query

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// ErrBadInfo indicates an info string that does not name a canto.
var ErrBadInfo = errors.New("bad info")

// Info is the parsed form of a query's info string.
//
//	Inferno Canto 1
//	Inferno Canto 1 4/136
//	Inferno Canto 1 4/136+2
type Info struct {
	// Cantica is the cantica name as written, e.g. "Inferno".
	Cantica string

	// Canto is the canto number.
	Canto int

	// Line is the first source line covered by the query; 0 when absent.
	Line int

	// Total is the number of lines in the canto; 0 when absent.
	Total int

	// Part numbers split queries, starting at 1; 0 when the query is whole.
	Part int
}

//nolint:govet // participle grammar tags are not standard struct tags
type infoGrammar struct {
	Cantica string    `parser:"@Ident"`
	Canto   int       `parser:"\"Canto\" @Int"`
	Span    *spanPart `parser:"@@?"`
	Part    *int      `parser:"( \"+\" @Int )?"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type spanPart struct {
	Line  int `parser:"@Int"`
	Total int `parser:"\"/\" @Int"`
}

//nolint:gochecknoglobals // Built once.
var (
	infoLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Int", Pattern: `[0-9]+`},
		{Name: "Ident", Pattern: `\p{L}+`},
		{Name: "Punct", Pattern: `[/+]`},
		{Name: "Whitespace", Pattern: `\s+`},
	})

	infoParser = participle.MustBuild[infoGrammar](
		participle.Lexer(infoLexer),
		participle.Elide("Whitespace"),
	)

	partSuffix = regexp.MustCompile(`\+\d+$`)
)

// ParseInfo parses an info string.
func ParseInfo(s string) (Info, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Info{}, fmt.Errorf("%w: empty", ErrBadInfo)
	}

	parsed, err := infoParser.ParseString("", s)
	if err != nil {
		return Info{}, fmt.Errorf("%w: %q: %w", ErrBadInfo, s, err)
	}

	info := Info{
		Cantica: parsed.Cantica,
		Canto:   parsed.Canto,
	}
	if parsed.Span != nil {
		info.Line = parsed.Span.Line
		info.Total = parsed.Span.Total
	}
	if parsed.Part != nil {
		info.Part = *parsed.Part
	}
	return info, nil
}

// Dir returns the directory name of the cantica, e.g. "inferno".
func (i Info) Dir() string {
	return strings.ToLower(i.Cantica)
}

// Key returns "<cantica>/<nn>", e.g. "inferno/01".
func (i Info) Key() string {
	return fmt.Sprintf("%s/%02d", i.Dir(), i.Canto)
}

// LineNumbers returns the source lines covered by a query spanning span
// lines, clipped to the canto length. It returns nil when the info has no
// line range.
func (i Info) LineNumbers(span int) []int {
	if i.Line <= 0 || span <= 0 {
		return nil
	}

	last := i.Line + span - 1
	if i.Total > 0 && last > i.Total {
		last = i.Total
	}

	var out []int
	for ln := i.Line; ln <= last; ln++ {
		out = append(out, ln)
	}
	return out
}

// String renders the info in its canonical form.
func (i Info) String() string {
	s := fmt.Sprintf("%s Canto %d", i.Cantica, i.Canto)
	if i.Line > 0 {
		s += fmt.Sprintf(" %d/%d", i.Line, i.Total)
	}
	if i.Part > 0 {
		s += fmt.Sprintf("+%d", i.Part)
	}
	return s
}

// BaseInfo strips a "+N" split suffix from an info string.
func BaseInfo(info string) string {
	return partSuffix.ReplaceAllString(info, "")
}

// IsPart reports whether an info string carries a "+N" split suffix.
func IsPart(info string) bool {
	return partSuffix.MatchString(info)
}
