package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yaklabco/dantetool/pkg/align"
)

// FormatEvent formats a single alignment event for terminal output:
//
//	gpt Inferno Canto 1 1/3:2  not_found  'selva'
//	    evidence: 'mi ritrovai'
func (s *Styles) FormatEvent(id string, ev align.Event) string {
	var b strings.Builder

	b.WriteString("  " + s.Source.Render(id) + s.Location.Render(":"+strconv.Itoa(ev.Line)))
	b.WriteString("  " + s.Kind(ev.Kind).Render(ev.Kind.String()))
	b.WriteString("  " + s.Word.Render(quote(ev.Word)) + "\n")

	if ev.Kind.HasEvidence() && ev.Evidence != "" {
		b.WriteString("    " + s.Dim.Render("evidence:") + " " + s.Evidence.Render(quote(ev.Evidence)) + "\n")
	}
	return b.String()
}

// FormatCount renders "n kind" in the style of the kind, e.g. "3 drop".
func (s *Styles) FormatCount(k align.Kind, n int) string {
	return s.Kind(k).Render(fmt.Sprintf("%d %s", n, k))
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "\n", `\n`) + "'"
}
