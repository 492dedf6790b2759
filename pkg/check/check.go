// Package check validates word tables against the tokenized reference.
//
// Every result is first normalized: the table is parsed and fixed, search
// words are normalized and rows without letters are removed. The Word
// column must then list exactly the reference tokens of the prompt's lines.
// Queries that fail are marked as errors so that they can be picked up and
// asked again.
package check

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/yaklabco/dantetool/pkg/diff"
	"github.com/yaklabco/dantetool/pkg/query"
	"github.com/yaklabco/dantetool/pkg/source"
	"github.com/yaklabco/dantetool/pkg/table"
)

// ErrNoReference indicates a query file without tokenized reference data.
var ErrNoReference = errors.New("no tokenized reference")

// MismatchKind distinguishes token validation failures.
type MismatchKind string

const (
	// LenMismatch reports a different number of table rows and tokens.
	LenMismatch MismatchKind = "len_mismatch"

	// TokenMismatch reports the first row whose word differs from the token.
	TokenMismatch MismatchKind = "mismatch"
)

// Mismatch describes why a table does not match the reference tokens.
type Mismatch struct {
	Kind MismatchKind

	// Index is the 1-based row of a TokenMismatch.
	Index int

	// Got and Want are the table word and reference token of a
	// TokenMismatch.
	Got  string
	Want string

	// GotLen and WantLen are the row and token counts of a LenMismatch.
	GotLen  int
	WantLen int
}

func (m *Mismatch) String() string {
	if m.Kind == LenMismatch {
		return fmt.Sprintf("%s: %d rows, %d tokens", m.Kind, m.GotLen, m.WantLen)
	}
	return fmt.Sprintf("%s: row %d %q, want %q", m.Kind, m.Index, m.Got, m.Want)
}

// ValidateTokens compares the Word column of t with the reference tokens of
// the numbered lines. It returns nil when they are identical.
func ValidateTokens(lines []query.NumberedLine, t table.Table, canto source.Canto) *Mismatch {
	words := t.Column(0)

	nos := make([]int, len(lines))
	for i, l := range lines {
		nos[i] = l.No
	}
	tokens := canto.Tokens(nos...)

	if len(words) != len(tokens) {
		return &Mismatch{Kind: LenMismatch, GotLen: len(words), WantLen: len(tokens)}
	}
	for i := range words {
		if words[i] != tokens[i] {
			return &Mismatch{Kind: TokenMismatch, Index: i + 1, Got: words[i], Want: tokens[i]}
		}
	}
	return nil
}

// Failure is a query rejected by Queries.
type Failure struct {
	Info     string
	Reason   string
	Mismatch *Mismatch
}

func (f Failure) String() string {
	if f.Mismatch != nil {
		return f.Info + ": " + f.Mismatch.String()
	}
	return f.Info + ": " + f.Reason
}

// Queries normalizes and validates every query with a result, in place. It
// returns the failures and whether any query changed.
func Queries(qs []query.Query, canto source.Canto) ([]Failure, bool) {
	var failures []Failure
	changed := false

	fail := func(q *query.Query, f Failure) {
		q.Fail()
		changed = true
		failures = append(failures, f)
	}

	for i := range qs {
		q := &qs[i]
		if !q.OK() {
			continue
		}

		prompt, lines := canonicalPrompt(q.Prompt, canto)
		if len(lines) == 0 {
			fail(q, Failure{Info: q.Info, Reason: "no numbered lines in prompt"})
			continue
		}
		if prompt != q.Prompt {
			q.Prompt = prompt
			changed = true
		}

		parsed, err := table.Parse(q.Result)
		if err != nil {
			fail(q, Failure{Info: q.Info, Reason: err.Error()})
			continue
		}
		fixed := table.Fix(parsed).Filter()

		if result := fixed.String(); result != q.Result || q.Error != "" {
			q.Result = result
			q.Error = ""
			changed = true
		}

		if m := ValidateTokens(lines, fixed, canto); m != nil {
			fail(q, Failure{Info: q.Info, Mismatch: m})
		}
	}

	return failures, changed
}

// canonicalPrompt rewrites the numbered lines of prompt to the reference
// text and returns them.
func canonicalPrompt(prompt string, canto source.Canto) (string, []query.NumberedLine) {
	numbered := query.NumberedLines(prompt)
	if len(numbered) == 0 {
		return prompt, nil
	}

	byRaw := make(map[string]int, len(numbered))
	for _, l := range numbered {
		byRaw[l.Raw] = l.No
	}

	out := strings.Split(prompt, "\n")
	for i, raw := range out {
		no, ok := byRaw[raw]
		if !ok {
			continue
		}
		if ref, ok := canto.Line(no); ok {
			out[i] = strconv.Itoa(no) + " " + ref.Text
		}
	}
	return strings.Join(out, "\n"), numbered
}

// Options controls File.
type Options struct {
	// TokenizeDir holds the tokenized reference, <dir>/<cantica>/<nn>.txt.
	TokenizeDir string

	// Backup keeps a sidecar copy of the file before it is rewritten.
	Backup bool

	// DryRun computes the rewrite as a diff instead of saving it.
	DryRun bool
}

// Result is the outcome of checking one file.
type Result struct {
	Path     string
	Failures []Failure
	Changed  bool

	// Diff is the unsaved rewrite of a dry run.
	Diff *diff.Diff
}

// File checks the query file at path, e.g. word/inferno/01.xml, and
// rewrites it when anything changed. The cantica and canto are taken from
// the parent directory and the file name.
func File(ctx context.Context, path string, opts Options) (*Result, error) {
	cantica := filepath.Base(filepath.Dir(path))
	canto, err := strconv.Atoi(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	if err != nil {
		return nil, fmt.Errorf("%s: canto number: %w", path, err)
	}

	ref, err := source.ReadTokenized(ctx, source.TokenizedPath(opts.TokenizeDir, cantica, canto))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNoReference, path, err)
	}

	f, err := query.Load(ctx, path)
	if err != nil {
		return nil, err
	}

	res := &Result{Path: path}
	res.Failures, res.Changed = Queries(f.Queries, ref)
	switch {
	case !res.Changed:
	case opts.DryRun:
		if res.Diff, err = f.Diff(); err != nil {
			return nil, err
		}
	default:
		if err := f.Save(ctx, opts.Backup); err != nil {
			return nil, err
		}
	}
	return res, nil
}
