// Package align assigns the rows of a word table to the source lines they
// were generated from.
//
// A language model is asked for a word table covering one to three verse
// lines. The table comes back in reading order, but with the usual noise:
// hallucinated rows, words repeated or reordered, slightly transformed
// spellings. Align walks the table once, anchoring each row's search word to
// the source text and deciding, when a word cannot be anchored, whether the
// row belongs to the line being left, the line being entered, or nowhere.
// Every decision that is not a clean anchor is reported as an Event.
package align

import (
	"strings"

	"github.com/yaklabco/dantetool/pkg/token"
)

// Options controls the shape of the output.
type Options struct {
	// KeepSearch keeps the search word (column 0) in bucketed rows.
	// By default only the payload columns are kept.
	KeepSearch bool

	// FirstLine is the source line number of lines[0], used in events.
	// Zero means 1.
	FirstLine int
}

// Result is the outcome of one alignment call.
type Result struct {
	// ID identifies the aligned table in log output.
	ID string

	// Buckets holds, for each source line, the rows assigned to it in input
	// order.
	Buckets [][][]string

	// Dropped holds the rows that were not assigned to any line, in input
	// order.
	Dropped [][]string

	// Events lists the anomalies observed, in the order they were made.
	Events []Event
}

// Placed returns the number of rows assigned to a bucket.
func (r *Result) Placed() int {
	n := 0
	for _, bucket := range r.Buckets {
		n += len(bucket)
	}
	return n
}

// Count returns the number of events of the given kind.
func (r *Result) Count(kind Kind) int {
	n := 0
	for _, ev := range r.Events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

// Log renders every event as a log line prefixed with the result ID.
func (r *Result) Log() []string {
	lines := make([]string, len(r.Events))
	for i, ev := range r.Events {
		lines[i] = ev.Format(r.ID)
	}
	return lines
}

// Align distributes rows over lines. Column 0 of each row is the search
// word; rows are expected to be data rows only, with header, separator and
// rows without letters in the search word already removed.
//
// Align panics when lines is empty; callers must reject such input first.
// It never fails otherwise: every row ends up in exactly one bucket or in
// Result.Dropped. Inputs are not modified.
func Align(lines []string, rows [][]string, id string, opts Options) *Result {
	if len(lines) == 0 {
		panic("align: no source lines for " + id)
	}
	if opts.FirstLine <= 0 {
		opts.FirstLine = 1
	}

	a := &aligner{
		lines: lines,
		rows:  rows,
		opts:  opts,
		res: &Result{
			ID:      id,
			Buckets: make([][][]string, len(lines)),
		},
	}

	if len(lines) == 1 {
		for idx := range rows {
			a.place(0, idx)
		}
		return a.res
	}

	a.run()
	return a.res
}

// aligner holds the cursor state of a single Align call.
type aligner struct {
	lines []string
	rows  [][]string
	opts  Options
	res   *Result

	// line is the index of the current line; it never decreases.
	line int
	// offset is the byte offset in the current line where the next search
	// starts; it never decreases within a line.
	offset int
	// consumed is true when the current line has no letters left after
	// offset, i.e. the line looks complete.
	consumed bool
	// pending holds rows that have not been anchored yet.
	pending queue
}

func (a *aligner) run() {
	last := len(a.lines) - 1

	for idx := 0; idx < len(a.rows); idx++ {
		word := searchWord(a.rows[idx])

		if i := indexFrom(a.lines[a.line], word, a.offset); i >= 0 {
			a.reportGap(Skip, a.line, idx, word, a.lines[a.line][a.offset:i])
			a.commit(idx, i, word)
			continue
		}

		if a.line < last {
			if i := strings.Index(a.lines[a.line+1], word); i >= 0 {
				a.advance(idx, i, word)
				if a.line == last {
					for ; idx < len(a.rows); idx++ {
						a.place(a.line, idx)
					}
					return
				}
				a.commit(idx, i, word)
				continue
			}
		}

		a.pending.push(idx)
		a.emit(NotFound, a.line, idx, word, a.lines[a.line][a.offset:])
	}

	for _, idx := range a.pending.drain() {
		a.drop(a.line, idx)
	}
}

// commit anchors row idx at byte i of the current line. Pending rows are
// salvaged in front of it.
func (a *aligner) commit(idx, i int, word string) {
	for _, p := range a.pending.drain() {
		a.place(a.line, p)
		a.emit(SalvageInline, a.line, p, searchWord(a.rows[p]), "")
	}
	a.place(a.line, idx)

	a.offset = i + len(word)
	a.consumed = !token.HasAlpha(a.lines[a.line][a.offset:])
}

// advance moves the cursor to the next line because row idx was found there
// at byte i, settling the pending rows on the way.
func (a *aligner) advance(idx, i int, word string) {
	prev, next := a.line, a.line+1
	prefix := a.lines[next][:i]

	a.reportGap(SkipLineEnd, prev, idx, word, a.lines[prev][a.offset:])

	pending := a.pending.drain()
	switch {
	case len(pending) == 0:
	case !a.consumed:
		// The previous line still had words left, so the unmatched rows are
		// most likely its transformed tail.
		for _, p := range pending {
			a.place(prev, p)
			a.emit(SalvagePrev, prev, p, searchWord(a.rows[p]), "")
		}
	case token.HasAlpha(prefix):
		// The previous line was complete but the next one starts with
		// unmatched words: keep only the latest row for it.
		lastIdx := len(pending) - 1
		for _, p := range pending[:lastIdx] {
			a.drop(prev, p)
		}
		p := pending[lastIdx]
		a.place(next, p)
		a.emit(SalvageNext, next, p, searchWord(a.rows[p]), "")
	default:
		for _, p := range pending {
			a.drop(prev, p)
		}
	}

	a.line, a.offset, a.consumed = next, 0, false
	a.reportGap(Skip, next, idx, word, prefix)
}

func (a *aligner) reportGap(kind Kind, line, idx int, word, gap string) {
	if token.HasAlpha(gap) {
		a.emit(kind, line, idx, word, gap)
	}
}

func (a *aligner) place(line, idx int) {
	a.res.Buckets[line] = append(a.res.Buckets[line], a.payload(a.rows[idx]))
}

func (a *aligner) drop(line, idx int) {
	a.res.Dropped = append(a.res.Dropped, cloneRow(a.rows[idx]))
	a.emit(Drop, line, idx, searchWord(a.rows[idx]), "")
}

func (a *aligner) emit(kind Kind, line, idx int, word, evidence string) {
	ev := Event{
		Kind: kind,
		Line: a.opts.FirstLine + line,
		Row:  idx,
		Word: word,
	}
	if kind.HasEvidence() {
		ev.Evidence = evidence
	}
	a.res.Events = append(a.res.Events, ev)
}

func (a *aligner) payload(row []string) []string {
	if a.opts.KeepSearch || len(row) == 0 {
		return cloneRow(row)
	}
	return cloneRow(row[1:])
}

func searchWord(row []string) string {
	if len(row) == 0 {
		return ""
	}
	return row[0]
}

// indexFrom returns the byte index of the first occurrence of word in s at
// or after from, or -1.
func indexFrom(s, word string, from int) int {
	i := strings.Index(s[from:], word)
	if i < 0 {
		return -1
	}
	return from + i
}

func cloneRow(row []string) []string {
	out := make([]string, len(row))
	copy(out, row)
	return out
}
