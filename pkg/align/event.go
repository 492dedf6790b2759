package align

import (
	"strconv"
	"strings"
)

// Kind identifies an alignment anomaly.
type Kind int

const (
	// Skip reports letters between the last commit point and a new match.
	Skip Kind = iota + 1

	// SkipLineEnd reports letters left at the end of a line when the cursor
	// moved on to the next line.
	SkipLineEnd

	// NotFound reports a search word found neither on the current line nor
	// on the next one. The row becomes pending.
	NotFound

	// Drop reports a pending row discarded at a line transition or at the
	// end of the input.
	Drop

	// SalvageInline reports a pending row placed before a later anchor on
	// the same line.
	SalvageInline

	// SalvagePrev reports a pending row placed on the line the cursor is
	// leaving.
	SalvagePrev

	// SalvageNext reports a pending row placed on the line the cursor is
	// entering.
	SalvageNext
)

//nolint:gochecknoglobals // Read-only lookup table.
var kindNames = map[Kind]string{
	Skip:          "skip",
	SkipLineEnd:   "skip_line_end",
	NotFound:      "not_found",
	Drop:          "drop",
	SalvageInline: "salvage_inline",
	SalvagePrev:   "salvage_prev",
	SalvageNext:   "salvage_next",
}

// Kinds lists every event kind in declaration order.
func Kinds() []Kind {
	return []Kind{Skip, SkipLineEnd, NotFound, Drop, SalvageInline, SalvagePrev, SalvageNext}
}

// String returns the log name of the kind, e.g. "not_found".
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// ParseKind returns the kind with the given log name.
func ParseKind(name string) (Kind, bool) {
	for kind, n := range kindNames {
		if n == name {
			return kind, true
		}
	}
	return 0, false
}

// HasEvidence reports whether events of this kind carry source text.
func (k Kind) HasEvidence() bool {
	switch k {
	case Skip, SkipLineEnd, NotFound:
		return true
	default:
		return false
	}
}

// Salvaged reports whether the kind places a pending row in a bucket.
func (k Kind) Salvaged() bool {
	return k == SalvageInline || k == SalvagePrev || k == SalvageNext
}

// Event is a single observation made during alignment.
type Event struct {
	Kind Kind

	// Line is the 1-based source line number the event refers to.
	Line int

	// Row is the 0-based index of the row in the aligned input.
	Row int

	// Word is the search word of the row.
	Word string

	// Evidence is the source text that triggered the event. Only set for
	// kinds where HasEvidence is true.
	Evidence string
}

// Format renders the event as a single log line:
//
//	id | kind | ln=N | word='...' | evidence='...'
//
// The identifier is omitted when empty.
func (e Event) Format(id string) string {
	parts := make([]string, 0, 5)
	if id != "" {
		parts = append(parts, id)
	}
	parts = append(parts,
		e.Kind.String(),
		"ln="+strconv.Itoa(e.Line),
		"word="+quote(e.Word),
	)
	if e.Kind.HasEvidence() {
		parts = append(parts, "evidence="+quote(e.Evidence))
	}
	return strings.Join(parts, " | ")
}

// String implements fmt.Stringer.
func (e Event) String() string {
	return e.Format("")
}

//nolint:gochecknoglobals // Stateless replacer.
var quoteReplacer = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	"\n", `\n`,
	"\t", `\t`,
)

func quote(s string) string {
	return "'" + quoteReplacer.Replace(s) + "'"
}
