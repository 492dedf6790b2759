// Package table parses and rewrites the Markdown pipe tables returned by
// language models.
//
// A table is kept as a plain slice of rows: row 0 is the header, row 1 the
// separator and the remaining rows are data. Column 0 of a word table is the
// search word used to anchor the row in the source text.
package table

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/yaklabco/dantetool/pkg/token"
)

// Sentinel errors for errors.Is.
var (
	// ErrNoTable indicates the text holds fewer than three table rows.
	ErrNoTable = errors.New("no table")

	// ErrColumnMismatch indicates a row with extra non-empty cells.
	ErrColumnMismatch = errors.New("column count mismatch")

	// ErrBadSeparator indicates a second row that is not a separator.
	ErrBadSeparator = errors.New("bad separator row")
)

// Separator is the canonical separator cell.
const Separator = "---"

// Table is a parsed pipe table. Row 0 is the header and row 1 the separator.
type Table [][]string

//nolint:gochecknoglobals // Compiled once.
var dashRun = regexp.MustCompile(`-+`)

// Parse extracts the first pipe table from src.
//
// Lines starting with "|" form the table and the first other line after it
// ends the table. Rows shorter than the header are padded with empty cells.
// Longer rows are truncated when the extra cells are empty.
func Parse(src string) (Table, error) {
	var rows Table
	width := 0

	for _, line := range strings.Split(src, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if !strings.HasPrefix(line, "|") {
			if len(rows) > 0 {
				break
			}
			continue
		}

		row := splitRow(line)
		switch {
		case len(rows) == 0:
			width = len(row)
		case len(row) < width:
			row = append(row, make([]string, width-len(row))...)
		case len(row) > width:
			if !allEmpty(row[width:]) {
				return nil, fmt.Errorf("%w: row %d has %d cells, header has %d",
					ErrColumnMismatch, len(rows), len(row), width)
			}
			row = row[:width]
		}
		rows = append(rows, row)
	}

	if len(rows) < 3 {
		return nil, fmt.Errorf("%w: %d rows", ErrNoTable, len(rows))
	}

	for i, cell := range rows[1] {
		if !strings.Contains(cell, Separator) {
			return nil, fmt.Errorf("%w: cell %d is %q", ErrBadSeparator, i, cell)
		}
		rows[1][i] = dashRun.ReplaceAllString(cell, Separator)
	}

	return rows, nil
}

// splitRow returns the trimmed cells between the first and the last pipe.
func splitRow(line string) []string {
	parts := strings.Split(line, "|")
	if len(parts) < 2 {
		return nil
	}
	parts = parts[1 : len(parts)-1]

	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}

func allEmpty(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}

// Header returns the header row.
func (t Table) Header() []string {
	if len(t) == 0 {
		return nil
	}
	return t[0]
}

// Data returns the data rows, excluding header and separator.
func (t Table) Data() [][]string {
	if len(t) < 2 {
		return nil
	}
	return t[2:]
}

// Width returns the number of columns.
func (t Table) Width() int {
	return len(t.Header())
}

// Clone returns a deep copy of t.
func (t Table) Clone() Table {
	if t == nil {
		return nil
	}
	out := make(Table, len(t))
	for i, row := range t {
		out[i] = append([]string(nil), row...)
	}
	return out
}

// String renders the table as Markdown, one row per line without a trailing
// newline.
func (t Table) String() string {
	lines := make([]string, len(t))
	for i, row := range t {
		if i == 1 {
			lines[i] = "|" + strings.Join(row, "|") + "|"
			continue
		}
		lines[i] = FormatRow(row)
	}
	return strings.Join(lines, "\n")
}

// FormatRow renders a header or data row. Empty cells collapse to a single
// space.
func FormatRow(row []string) string {
	s := "| " + strings.Join(row, " | ") + " |"
	return strings.ReplaceAll(s, "|  ", "| ")
}

// New builds a table from a header and data rows, with a canonical
// separator.
func New(header []string, rows [][]string) Table {
	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = Separator
	}

	t := make(Table, 0, len(rows)+2)
	t = append(t, append([]string(nil), header...), sep)
	for _, row := range rows {
		t = append(t, append([]string(nil), row...))
	}
	return t
}

// Filter returns a copy of t whose search words are normalized and whose
// data rows without a letter in the search word are removed.
func (t Table) Filter() Table {
	if len(t) < 2 {
		return t.Clone()
	}

	out := Table{
		append([]string(nil), t[0]...),
		append([]string(nil), t[1]...),
	}
	for _, row := range t.Data() {
		if len(row) == 0 {
			continue
		}
		row = append([]string(nil), row...)
		row[0] = token.Normalize(row[0])
		if token.HasAlpha(row[0]) {
			out = append(out, row)
		}
	}
	return out
}

// AlignableRows returns the data rows of t ready to be aligned: search words
// normalized, rows without a letter in the search word removed.
func AlignableRows(t Table) [][]string {
	return t.Filter().Data()
}

// Column returns the cells of column col in the data rows. Short rows yield
// empty cells.
func (t Table) Column(col int) []string {
	data := t.Data()
	out := make([]string, len(data))
	for i, row := range data {
		if col < len(row) {
			out[i] = row[col]
		}
	}
	return out
}
