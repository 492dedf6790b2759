package pretty

import (
	"strconv"
	"strings"

	"github.com/yaklabco/dantetool/pkg/align"
)

const (
	heavySeparator = "="
	lightSeparator = "-"
	numColWidth    = 7
	minNameWidth   = 12
	columnGap      = 2
)

// TallyRow is one line of the tally table.
type TallyRow struct {
	Name   string
	Totals Totals
}

// kindHeaders are the short column titles of the event kinds.
//
//nolint:gochecknoglobals // Read-only lookup table.
var kindHeaders = map[align.Kind]string{
	align.Skip:          "SKIP",
	align.SkipLineEnd:   "EOL",
	align.NotFound:      "NOTFND",
	align.Drop:          "DROP",
	align.SalvageInline: "S-IN",
	align.SalvagePrev:   "S-PREV",
	align.SalvageNext:   "S-NEXT",
}

// FormatTally renders rows as a table of counts followed by a total row.
// The name column shrinks so that the table fits in width.
func (s *Styles) FormatTally(rows []TallyRow, total TallyRow, width int) string {
	if width <= 0 {
		width = DefaultTermWidth
	}

	numCols := 3 + len(align.Kinds())
	nameWidth := len(total.Name)
	for _, r := range rows {
		nameWidth = max(nameWidth, len(r.Name))
	}
	nameWidth = max(min(nameWidth, width-numCols*(numColWidth+columnGap)), minNameWidth)
	tableWidth := nameWidth + numCols*(numColWidth+columnGap)

	var b strings.Builder

	header := []string{"QUERIES", "PLACED", "DROPPED"}
	for _, k := range align.Kinds() {
		header = append(header, kindHeaders[k])
	}
	b.WriteString(s.TableHeader.Render(s.formatTallyLine("SOURCE", header, nameWidth)) + "\n")
	b.WriteString(s.TableSeparator.Render(strings.Repeat(heavySeparator, tableWidth)) + "\n")

	for _, r := range rows {
		b.WriteString(s.formatTallyLine(r.Name, counts(r.Totals), nameWidth) + "\n")
	}

	b.WriteString(s.TableSeparator.Render(strings.Repeat(lightSeparator, tableWidth)) + "\n")
	b.WriteString(s.Bold.Render(s.formatTallyLine(total.Name, counts(total.Totals), nameWidth)) + "\n")

	return b.String()
}

func counts(t Totals) []string {
	out := []string{strconv.Itoa(t.Queries), strconv.Itoa(t.Placed), strconv.Itoa(t.Dropped)}
	for _, k := range align.Kinds() {
		out = append(out, strconv.Itoa(t.ByKind[k]))
	}
	return out
}

// formatTallyLine pads before styling so that ANSI codes do not count.
func (s *Styles) formatTallyLine(name string, cells []string, nameWidth int) string {
	var b strings.Builder
	b.WriteString(padRight(truncate(name, nameWidth), nameWidth))
	for _, c := range cells {
		b.WriteString(strings.Repeat(" ", columnGap))
		b.WriteString(padLeft(c, numColWidth))
	}
	return strings.TrimRight(b.String(), " ")
}

func truncate(s string, width int) string {
	if len(s) <= width {
		return s
	}
	if width <= 3 {
		return s[:width]
	}
	return s[:width-3] + "..."
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}
