// Package gallery joins the word, word translation and etymology tables of
// a canto and renders them verse by verse as HTML tables.
package gallery

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/yaklabco/dantetool/pkg/query"
	"github.com/yaklabco/dantetool/pkg/table"
)

// Kinds are the table directories joined by the gallery, in column order.
//
//nolint:gochecknoglobals // Read-only list.
var Kinds = []string{"word", "word-tr", "etymology"}

//nolint:gochecknoglobals // Compiled once.
var columnsCount = regexp.MustCompile(`columns (\d+)`)

// Sources are the query files of one canto.
type Sources struct {
	Word      string
	WordTr    string
	Etymology string
}

// Paths returns <topdir>/<kind>/<langcode>/<file> for every kind.
func Paths(topdir, langcode, file string) Sources {
	p := func(kind string) string {
		return filepath.Join(topdir, kind, langcode, filepath.FromSlash(file))
	}
	return Sources{Word: p(Kinds[0]), WordTr: p(Kinds[1]), Etymology: p(Kinds[2])}
}

// SearchColumn returns the word table column that holds the word asked for
// translation. Esperanto tables carry the Italian word in column 1.
func SearchColumn(langcode string) int {
	if langcode == "eo" {
		return 1
	}
	return 0
}

// Group is one joined table with the verses it covers.
type Group struct {
	Info  string
	Lines []string
	Table table.Table
}

// Problem is a query that could not be joined.
type Problem struct {
	Info    string
	Message string
}

func (p Problem) Error() string {
	return p.Info + " | " + p.Message
}

// ReadTables reads the sources and joins them. The etymology file is
// optional.
func ReadTables(ctx context.Context, src Sources, index int) ([]Group, []Problem, error) {
	word, err := query.Read(ctx, src.Word)
	if err != nil {
		return nil, nil, err
	}
	wordTr, err := query.Read(ctx, src.WordTr)
	if err != nil {
		return nil, nil, err
	}

	var etymology []query.Query
	if query.Exists(src.Etymology) {
		if etymology, err = query.Read(ctx, src.Etymology); err != nil {
			return nil, nil, err
		}
	}

	groups, problems := Join(word, wordTr, etymology, index)
	return groups, problems, nil
}

func byInfo(qs []query.Query) map[string]query.Query {
	m := make(map[string]query.Query, len(qs))
	for _, q := range qs {
		m[q.Info] = q
	}
	return m
}

// Join combines the three tables of every query answered in all sources.
//
// The word translation prompt lists the words that were asked; word rows
// whose search word (column index) does not match the next asked word are
// skipped. The translation contributes its columns from the count named in
// its prompt ("columns N") onwards, the etymology its last two columns.
// Without etymology queries only two tables are joined.
func Join(word, wordTr, etymology []query.Query, index int) ([]Group, []Problem) {
	trs := byInfo(wordTr)
	var etys map[string]query.Query
	if len(etymology) > 0 {
		etys = byInfo(etymology)
	}

	var groups []Group
	var problems []Problem

	for _, q0 := range word {
		if !q0.OK() {
			continue
		}
		q1, ok := trs[q0.Info]
		if !ok || !q1.OK() {
			continue
		}
		var q2 query.Query
		if etys != nil {
			if q2, ok = etys[q0.Info]; !ok || !q2.OK() {
				continue
			}
		}

		g, msg := join(q0, q1, q2, etys != nil, index)
		if msg != "" {
			problems = append(problems, Problem{Info: q0.Info, Message: msg})
			continue
		}
		groups = append(groups, g)
	}

	return groups, problems
}

func join(q0, q1, q2 query.Query, withEtymology bool, index int) (Group, string) {
	m := columnsCount.FindStringSubmatch(q1.Prompt)
	if m == nil {
		return Group{}, "no columns count"
	}
	col, _ := strconv.Atoi(m[1])
	col--

	words, err0 := table.Parse(q0.Result)
	asked, errp := table.Parse(q1.Prompt)
	trs, err1 := table.Parse(q1.Result)
	if err0 != nil || errp != nil || err1 != nil {
		return Group{}, fmt.Sprintf("empty table (error): word %d, word-tr prompt %d, word-tr %d",
			len(words), len(asked), len(trs))
	}

	var etys table.Table
	if withEtymology {
		var err error
		if etys, err = table.Parse(q2.Result); err != nil {
			return Group{}, "empty table (error): etymology"
		}
	}

	length := len(trs)
	if withEtymology && len(etys) != length {
		return Group{}, fmt.Sprintf("(etymology) length mismatch (error): %d != %d", length, len(etys))
	}
	if col < 0 || col > trs.Width() {
		return Group{}, fmt.Sprintf("columns %d out of range", col+1)
	}

	var out table.Table
	for i, r0 := range words {
		r := len(out)
		if r >= length {
			break
		}
		if i > 1 && (r >= len(asked) || index >= len(r0) || r0[index] != asked[r][0]) {
			continue
		}

		row := append([]string(nil), r0...)
		row = append(row, trs[r][col:]...)
		if withEtymology {
			row = append(row, lastTwo(etys[r])...)
		}
		out = append(out, row)
	}

	if len(out) != length {
		var unused []string
		for _, r := range asked[min(len(out), len(asked)):] {
			unused = append(unused, r[0])
		}
		return Group{}, "unused words (error): " + strings.Join(unused, " ")
	}

	var lines []string
	if prompt := strings.Split(q0.Prompt, "\n"); len(prompt) > 1 {
		for _, l := range prompt[1:] {
			if l != "" {
				lines = append(lines, l)
			}
		}
	}

	return Group{Info: q0.Info, Lines: lines, Table: out}, ""
}

func lastTwo(row []string) []string {
	if len(row) <= 2 {
		return row
	}
	return row[len(row)-2:]
}
