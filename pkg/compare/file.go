package compare

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/yaklabco/dantetool/pkg/align"
	"github.com/yaklabco/dantetool/pkg/query"
	"github.com/yaklabco/dantetool/pkg/source"
	"github.com/yaklabco/dantetool/pkg/table"
)

// Aligned is one query split across the verses it covers.
type Aligned struct {
	Alignment

	// Verses are the verse numbers of the buckets.
	Verses []int

	// Header is the result table header, without a prepended token column.
	Header []string

	// Buckets are the rows per verse, without a prepended token column.
	Buckets [][][]string
}

// AlignQuery aligns the result table of q against the reference verses its
// info covers. Every error is a Problem.
func AlignQuery(model string, q query.Query, ref source.Canto, opts Options) (*Aligned, error) {
	id := strings.TrimSpace(model + " " + q.Info)
	problem := func(format string, args ...any) error {
		return Problem{Source: id, Message: fmt.Sprintf(format, args...)}
	}

	info, err := query.ParseInfo(q.Info)
	if err != nil {
		return nil, problem("could not parse info")
	}
	nos := info.LineNumbers(opts.span())
	if len(nos) == 0 {
		return nil, problem("no line range in info")
	}

	lines := make([]string, len(nos))
	for i, n := range nos {
		l, ok := ref.Line(n)
		if !ok {
			return nil, problem("line %d out of range (canto has %d lines)", n, len(ref))
		}
		lines[i] = l.Text
	}

	t, err := table.Parse(q.Result)
	if err != nil {
		return nil, problem("could not parse table in result")
	}

	if opts.UseTokens {
		tokens := ref.Tokens(nos...)
		if len(tokens) != len(t)-2 {
			return nil, problem("row count mismatch (tokens=%d, table=%d)", len(tokens)+2, len(t))
		}
		t = prependColumn(t, tokens)
	}

	res := align.Align(lines, table.AlignableRows(t), id, align.Options{KeepSearch: true, FirstLine: nos[0]})

	a := &Aligned{
		Alignment: Alignment{
			Model:     model,
			Query:     q,
			Result:    res,
			Lines:     lines,
			FirstLine: nos[0],
			UseTokens: opts.UseTokens,
		},
		Verses:    nos,
		Header:    t.Header(),
		Buckets:   res.Buckets,
	}
	if opts.UseTokens {
		a.Header = a.Header[1:]
		a.Buckets = make([][][]string, len(res.Buckets))
		for i, bucket := range res.Buckets {
			rows := make([][]string, len(bucket))
			for j, row := range bucket {
				rows[j] = row[1:]
			}
			a.Buckets[i] = rows
		}
	}
	return a, nil
}

// FileResult is the alignment of every answered query of one file.
type FileResult struct {
	Path  string
	Model string

	// Key is the canto, e.g. "inferno/01".
	Key string

	Aligned  []*Aligned
	Problems []Problem
}

// AlignFile aligns the query file at path, laid out as
// <model>/<cantica>/<nn>.xml, against the tokenized reference.
func AlignFile(ctx context.Context, path string, opts Options) (*FileResult, error) {
	dir := filepath.Dir(path)
	key := filepath.Base(dir) + "/" + filepath.Base(path)
	cantica, canto, err := ParseKey(key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	ref, err := source.ReadTokenized(ctx, source.TokenizedPath(opts.TokenizeDir, cantica, canto))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	qs, err := query.Read(ctx, path)
	if err != nil {
		return nil, err
	}

	fr := &FileResult{
		Path:  path,
		Model: filepath.Base(filepath.Dir(dir)),
		Key:   fmt.Sprintf("%s/%02d", cantica, canto),
	}
	for _, q := range qs {
		if !q.OK() {
			continue
		}
		a, err := AlignQuery(fr.Model, q, ref, opts)
		if err != nil {
			var p Problem
			if !errors.As(err, &p) {
				return nil, err
			}
			fr.Problems = append(fr.Problems, p)
			continue
		}
		fr.Aligned = append(fr.Aligned, a)
	}
	return fr, nil
}
