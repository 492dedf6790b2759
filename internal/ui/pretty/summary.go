package pretty

import (
	"fmt"
	"strings"

	"github.com/yaklabco/dantetool/pkg/align"
)

const (
	wordQuery   = "query"
	wordQueries = "queries"
)

// Totals are the aggregate counts of an alignment run.
type Totals struct {
	Queries int
	Placed  int
	Dropped int
	ByKind  map[align.Kind]int
}

// Anomalies returns the number of events that are neither skips nor
// salvages.
func (t Totals) Anomalies() int {
	return t.ByKind[align.NotFound] + t.ByKind[align.Drop]
}

// FormatSummaryOneLine formats totals as a single line.
// Example: "412 rows placed in 12 queries, 2 dropped (3 not_found, 2 drop, 1 salvage_prev)".
func (s *Styles) FormatSummaryOneLine(t Totals) string {
	qWord := wordQueries
	if t.Queries == 1 {
		qWord = wordQuery
	}

	msg := fmt.Sprintf("%d rows placed in %d %s", t.Placed, t.Queries, qWord)
	if t.Dropped == 0 && t.Anomalies() == 0 {
		msg = s.Success.Render(msg)
	} else {
		msg += ", " + s.Failure.Render(fmt.Sprintf("%d dropped", t.Dropped))
	}

	var parts []string
	for _, k := range align.Kinds() {
		if n := t.ByKind[k]; n > 0 {
			parts = append(parts, s.FormatCount(k, n))
		}
	}
	if len(parts) > 0 {
		msg += " (" + strings.Join(parts, ", ") + ")"
	}
	return msg + "\n"
}
