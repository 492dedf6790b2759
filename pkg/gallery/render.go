package gallery

import (
	"html"
	"strings"

	"github.com/yaklabco/dantetool/pkg/align"
	"github.com/yaklabco/dantetool/pkg/table"
)

// EtymologyHeader names the column whose leading "*" marks a reconstructed
// form.
const EtymologyHeader = "Etymology"

// Render splits every group across its verses and renders one block per
// verse, separated by blank lines. It also returns the alignments.
func Render(groups []Group) (string, []*align.Result) {
	var blocks []string
	results := make([]*align.Result, 0, len(groups))

	for _, g := range groups {
		if len(g.Lines) == 0 {
			continue
		}
		res := align.Align(g.Lines, table.AlignableRows(g.Table), g.Info, align.Options{KeepSearch: true})
		results = append(results, res)

		for i, line := range g.Lines {
			blocks = append(blocks, Block(line, g.Table.Header(), res.Buckets[i]))
		}
	}

	return strings.Join(blocks, "\n"), results
}

// Block renders one verse followed by a transposed table: one row per
// column, one cell per word. Columns that are empty for every word are
// omitted.
func Block(line string, header []string, rows [][]string) string {
	var b strings.Builder
	b.WriteString(line + "\n\n<table>\n")

	for i, h := range header {
		cells := make([]string, len(rows))
		empty := true
		for j, row := range rows {
			if i < len(row) {
				cells[j] = row[i]
			}
			if cells[j] != "" {
				empty = false
			}
		}
		if empty {
			continue
		}

		b.WriteString("<tr><th>" + html.EscapeString(h) + "</th>")
		for _, c := range cells {
			b.WriteString("<td>" + cell(h, c) + "</td>")
		}
		b.WriteString("</tr>\n")
	}

	b.WriteString("</table>\n")
	return b.String()
}

func cell(header, c string) string {
	if header == EtymologyHeader {
		if rest, ok := strings.CutPrefix(c, "*"); ok {
			return "<sup>*</sup>" + html.EscapeString(strings.TrimSuffix(rest, "*"))
		}
		c = strings.TrimSuffix(c, "*")
	}
	return html.EscapeString(c)
}
