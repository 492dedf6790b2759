// Package compare lines up the word tables of several models verse by verse.
//
// Every model lives in its own directory holding <cantica>/<nn>.xml query
// files. Each table is split across the verses its query covers, and the
// pieces are collected per verse so that the models can be read side by
// side.
package compare

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/yaklabco/dantetool/pkg/align"
	"github.com/yaklabco/dantetool/pkg/query"
	"github.com/yaklabco/dantetool/pkg/runner"
	"github.com/yaklabco/dantetool/pkg/source"
	"github.com/yaklabco/dantetool/pkg/table"
)

var (
	// ErrBadKey indicates a canto key that is not "<cantica>/<nn>".
	ErrBadKey = errors.New("invalid canto key")

	// ErrNoModels indicates that no model directory holds the canto.
	ErrNoModels = errors.New("no word table files found")
)

// DefaultOutputDir is the directory comparisons are written to. It is never
// treated as a model.
const DefaultOutputDir = "comparison"

// DefaultSpan is the number of verses covered by one query.
const DefaultSpan = 3

// Options controls Compare and Write.
type Options struct {
	// Root holds one directory per model. Defaults to ".".
	Root string

	// TokenizeDir holds the tokenized reference.
	TokenizeDir string

	// OutputDir receives <cantica>/<nn>.md. Relative paths are resolved
	// against Root. Defaults to DefaultOutputDir.
	OutputDir string

	// Exclude lists directory names under Root that are not models.
	Exclude []string

	// Canticas restricts Keys to these cantica directories. Defaults to
	// all three.
	Canticas []string

	// Span is the number of verses covered by one query.
	Span int

	// UseTokens matches the reference tokens instead of the model's own
	// Word column.
	UseTokens bool

	// HTML also writes <cantica>/<nn>.html.
	HTML bool

	// Jobs bounds the number of query files read concurrently.
	Jobs int
}

func (o Options) root() string {
	if o.Root == "" {
		return "."
	}
	return o.Root
}

func (o Options) outputDir() string {
	dir := o.OutputDir
	if dir == "" {
		dir = DefaultOutputDir
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(o.root(), dir)
}

func (o Options) canticas() []string {
	if len(o.Canticas) == 0 {
		return source.Canticas
	}
	return o.Canticas
}

func (o Options) span() int {
	if o.Span <= 0 {
		return DefaultSpan
	}
	return o.Span
}

// Problem is a query that could not be used.
type Problem struct {
	// Source is "<model> <info>", or the canto key for missing verses.
	Source  string
	Message string
}

func (p Problem) Error() string {
	return fmt.Sprintf("[%s]: %s", p.Source, p.Message)
}

// Alignment is one aligned query.
type Alignment struct {
	Model  string
	Query  query.Query
	Result *align.Result

	// Lines are the reference verses the result was aligned against,
	// starting at verse FirstLine.
	Lines     []string
	FirstLine int

	// UseTokens is set when the reference tokens replaced the Word column.
	UseTokens bool
}

// Entry is one model's rows for one verse.
type Entry struct {
	Model  string
	Header []string
	Rows   [][]string
}

// Table returns the entry as a Markdown table.
func (e Entry) Table() table.Table {
	return table.New(e.Header, e.Rows)
}

// Comparison is the per-verse view of a canto.
type Comparison struct {
	Key     string
	Cantica string
	Canto   int

	// Lines are the normalized reference verses.
	Lines []string

	// Models are the model directories read, sorted.
	Models []string

	// Alignments are the aligned queries in model order.
	Alignments []Alignment

	// Problems are the queries that were skipped.
	Problems []Problem

	// Missing lists the verses without any entry.
	Missing []int

	entries map[int][]Entry
}

// Title returns e.g. "Inferno - Canto 1".
func (c *Comparison) Title() string {
	return fmt.Sprintf("%s - Canto %d", titleCase(c.Cantica), c.Canto)
}

// Entries returns the entries of verse n in model order.
func (c *Comparison) Entries(n int) []Entry {
	return c.entries[n]
}

// set records e for verse n. A later query of the same model replaces the
// earlier entry.
func (c *Comparison) set(n int, e Entry) {
	for i, old := range c.entries[n] {
		if old.Model == e.Model {
			c.entries[n][i] = e
			return
		}
	}
	c.entries[n] = append(c.entries[n], e)
}

// ParseKey splits "inferno/01" into its cantica and canto number.
func ParseKey(key string) (string, int, error) {
	cantica, nn, ok := strings.Cut(filepath.ToSlash(key), "/")
	if !ok || nn == "" {
		return "", 0, fmt.Errorf("%w: %q, want e.g. inferno/01", ErrBadKey, key)
	}
	if !slices.Contains(source.Canticas, cantica) {
		return "", 0, fmt.Errorf("%w: unknown cantica %q, must be one of %s",
			ErrBadKey, cantica, strings.Join(source.Canticas, ", "))
	}
	canto, err := strconv.Atoi(strings.TrimSuffix(nn, ".xml"))
	if err != nil || canto < 1 {
		return "", 0, fmt.Errorf("%w: canto %q", ErrBadKey, nn)
	}
	return cantica, canto, nil
}

// Models returns the sorted directories under root that hold
// <cantica>/<nn>.xml, skipping hidden directories, the output directory and
// the excluded names.
func Models(root, cantica string, canto int, exclude []string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read models: %w", err)
	}

	name := fmt.Sprintf("%02d.xml", canto)
	var models []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") || slices.Contains(exclude, e.Name()) {
			continue
		}
		if query.Exists(filepath.Join(root, e.Name(), cantica, name)) {
			models = append(models, e.Name())
		}
	}
	sort.Strings(models)
	return models, nil
}

// Keys returns the sorted canto keys, e.g. "inferno/01", of every query
// file under Root outside the output and excluded directories.
func Keys(ctx context.Context, opts Options) ([]string, error) {
	exclude := []string{DefaultOutputDir + "/**", filepath.Base(opts.outputDir()) + "/**"}
	for _, dir := range opts.Exclude {
		exclude = append(exclude, filepath.ToSlash(dir)+"/**")
	}

	files, err := runner.Discover(ctx, runner.Options{
		WorkingDir:   opts.root(),
		Canticas:     opts.canticas(),
		ExcludeGlobs: exclude,
	})
	if err != nil {
		return nil, err
	}
	return runner.Keys(files), nil
}

// Compare builds the comparison of the canto named by key, e.g. "inferno/01".
func Compare(ctx context.Context, key string, opts Options) (*Comparison, error) {
	cantica, canto, err := ParseKey(key)
	if err != nil {
		return nil, err
	}

	ref, err := source.ReadTokenized(ctx, source.TokenizedPath(opts.TokenizeDir, cantica, canto))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}

	exclude := append([]string{DefaultOutputDir, filepath.Base(opts.outputDir())}, opts.Exclude...)
	models, err := Models(opts.root(), cantica, canto, exclude)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, fmt.Errorf("%s: %w", key, ErrNoModels)
	}

	name := fmt.Sprintf("%02d.xml", canto)
	loaded, err := runner.Run(ctx, models, opts.Jobs, func(ctx context.Context, model string) ([]query.Query, error) {
		return query.Read(ctx, filepath.Join(opts.root(), model, cantica, name))
	})
	if err != nil {
		return nil, err
	}
	if err := loaded.Err(); err != nil {
		return nil, err
	}

	c := &Comparison{
		Key:     fmt.Sprintf("%s/%02d", cantica, canto),
		Cantica: cantica,
		Canto:   canto,
		Lines:   ref.Lines(),
		Models:  models,
		entries: make(map[int][]Entry),
	}

	for _, o := range loaded.Outcomes {
		for _, q := range o.Value {
			if q.OK() {
				c.add(o.Item, q, ref, opts)
			}
		}
	}

	for n := 1; n <= len(c.Lines); n++ {
		if len(c.entries[n]) == 0 {
			c.Missing = append(c.Missing, n)
		}
	}

	return c, nil
}

// add aligns one query and records its rows.
func (c *Comparison) add(model string, q query.Query, ref source.Canto, opts Options) {
	a, err := AlignQuery(model, q, ref, opts)
	if err != nil {
		var p Problem
		if errors.As(err, &p) {
			c.Problems = append(c.Problems, p)
		}
		return
	}

	c.Alignments = append(c.Alignments, a.Alignment)
	for i, rows := range a.Buckets {
		c.set(a.Verses[i], Entry{Model: model, Header: a.Header, Rows: rows})
	}
}

// prependColumn returns a copy of t with the header's first cell and the
// tokens in front of every row.
func prependColumn(t table.Table, tokens []string) table.Table {
	out := make(table.Table, len(t))
	for i, row := range t {
		var first string
		switch i {
		case 0:
			first = row[0]
		case 1:
			first = table.Separator
		default:
			first = tokens[i-2]
		}
		out[i] = append([]string{first}, row...)
	}
	return out
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
