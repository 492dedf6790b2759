package table

import (
	"fmt"
	"regexp"
	"strings"
)

//nolint:gochecknoglobals // Read-only lookup table.
var abbreviations = map[string]string{
	"singular":  "sg.",
	"plural":    "pl.",
	"masculine": "m.",
	"feminine":  "f.",
	"neuter":    "n.",
	"first":     "1",
	"second":    "2",
	"third":     "3",
	"1st":       "1",
	"2nd":       "2",
	"3rd":       "3",
}

//nolint:gochecknoglobals // Compiled once.
var (
	trailingStar = regexp.MustCompile(`^([^*]+)\*$`)
	boldCell     = regexp.MustCompile(`^\*\*([^*]+)\*\*$`)
)

// FixCell cleans one cell: placeholders become empty, grammatical terms are
// abbreviated and Markdown emphasis is removed.
func FixCell(cell string) string {
	cell = strings.TrimSpace(cell)

	switch cell {
	case "-", "n/a", "N/A":
		return ""
	}
	if ab, ok := abbreviations[strings.ToLower(cell)]; ok {
		return ab
	}
	if m := trailingStar.FindStringSubmatch(cell); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := boldCell.FindStringSubmatch(cell); m != nil {
		return strings.TrimSpace(m[1])
	}
	return cell
}

// Fix returns a copy of t with FixCell applied to every cell except the
// separator row.
func Fix(t Table) Table {
	out := t.Clone()
	for i, row := range out {
		if i == 1 {
			continue
		}
		for j, cell := range row {
			row[j] = FixCell(cell)
		}
	}
	return out
}

// FixText parses the table in src, fixes it and renders it back.
func FixText(src string) (string, error) {
	t, err := Parse(src)
	if err != nil {
		return "", err
	}
	return Fix(t).String(), nil
}

// ReplaceColumns rebuilds the table in prompt from the data rows of source.
// Destination column i receives source column columns[i]. The header and
// separator of the prompt table and the text around it are kept.
func ReplaceColumns(prompt string, source Table, columns []int) (string, error) {
	pt, err := Parse(prompt)
	if err != nil {
		return "", fmt.Errorf("prompt table: %w", err)
	}

	width := pt.Width()
	rows := make([][]string, 0, len(source.Data()))
	for _, src := range source.Data() {
		row := make([]string, width)
		for dst, col := range columns {
			if dst < width && col >= 0 && col < len(src) {
				row[dst] = src[col]
			}
		}
		rows = append(rows, row)
	}
	rebuilt := append(Table{pt[0], pt[1]}, rows...)

	lines := strings.Split(prompt, "\n")
	start, end := -1, -1
	for i, line := range lines {
		if strings.HasPrefix(line, "|") {
			if start < 0 {
				start = i
			}
			end = i + 1
		}
	}
	if start < 0 {
		return "", ErrNoTable
	}

	parts := make([]string, 0, 3)
	if before := strings.Join(lines[:start], "\n"); before != "" {
		parts = append(parts, before)
	}
	parts = append(parts, rebuilt.String())
	if after := strings.Join(lines[end:], "\n"); after != "" {
		parts = append(parts, after)
	}
	return strings.Join(parts, "\n"), nil
}
