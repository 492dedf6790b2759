package query

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/yaklabco/dantetool/pkg/table"
)

// NumberedLine is a "<n> <text>" line of a prompt or result.
type NumberedLine struct {
	No   int
	Text string
	Raw  string
}

//nolint:gochecknoglobals // Compiled once.
var (
	numberedLine = regexp.MustCompile(`^(\d+)\s+(.*)$`)
	resultLine   = regexp.MustCompile(`^\d+\s`)
)

// NumberedLines returns the numbered lines of text in order.
func NumberedLines(text string) []NumberedLine {
	var out []NumberedLine
	for _, raw := range strings.Split(text, "\n") {
		m := numberedLine.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		no, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		out = append(out, NumberedLine{No: no, Text: m[2], Raw: raw})
	}
	return out
}

// ResultLines returns the numbered lines of every result, e.g. the lines of
// a translation.
func ResultLines(qs []Query) []string {
	var out []string
	for _, q := range qs {
		for _, line := range strings.Split(q.Result, "\n") {
			if resultLine.MatchString(line) {
				out = append(out, line)
			}
		}
	}
	return out
}

// Pickup returns the queries that need another attempt: those without a
// result or, when checkTable is set, those whose result holds no valid
// table.
func Pickup(qs []Query, checkTable bool) []Query {
	var out []Query
	for _, q := range qs {
		if checkTable {
			if q.OK() && !hasValidTable(q.Result) {
				out = append(out, q)
			}
			continue
		}
		if !q.OK() {
			out = append(out, q)
		}
	}
	return out
}

func hasValidTable(result string) bool {
	if strings.Contains(result, "||---") {
		return false
	}
	_, err := table.Parse(result)
	return err == nil
}

// Fixes holds replacement queries grouped by base info.
type Fixes struct {
	byInfo map[string][]Query
	order  []string
}

// IndexFixes groups the queries of one or more fix files by info, with the
// "+N" split suffix removed so that all parts of a split query form one
// group.
func IndexFixes(files ...[]Query) *Fixes {
	f := &Fixes{byInfo: make(map[string][]Query)}
	for _, qs := range files {
		for _, q := range qs {
			key := BaseInfo(q.Info)
			if _, ok := f.byInfo[key]; !ok {
				f.order = append(f.order, key)
			}
			f.byInfo[key] = append(f.byInfo[key], q)
		}
	}
	return f
}

// Len returns the number of groups not yet used.
func (f *Fixes) Len() int {
	return len(f.byInfo)
}

// Remaining returns the infos of unused groups, in first-seen order.
func (f *Fixes) Remaining() []string {
	var out []string
	for _, key := range f.order {
		if _, ok := f.byInfo[key]; ok {
			out = append(out, key)
		}
	}
	return out
}

func (f *Fixes) take(info string) ([]Query, bool) {
	qs, ok := f.byInfo[info]
	if ok {
		delete(f.byInfo, info)
	}
	return qs, ok
}

// Replace substitutes the queries of qs that have a fix group. A split
// target query ("+N") is replaced as a whole: its following parts are
// skipped. Used groups are removed from fixes. It returns the new list and
// the number of replaced groups.
func Replace(qs []Query, fixes *Fixes) ([]Query, int) {
	var out []Query
	replaced := 0
	skipping := ""

	for _, q := range qs {
		if skipping != "" {
			if strings.HasPrefix(q.Info, skipping) {
				continue
			}
			skipping = ""
		}

		base := BaseInfo(q.Info)
		group, ok := fixes.take(base)
		if !ok {
			out = append(out, q)
			continue
		}

		replaced++
		out = append(out, group...)
		if base != q.Info {
			skipping = base
		}
	}

	return out, replaced
}

// Strip normalizes the result table of every query. Queries whose result
// holds no table are failed. It returns the infos of the failed queries.
func Strip(qs []Query) []string {
	var failed []string
	for i := range qs {
		q := &qs[i]
		if !q.OK() {
			continue
		}

		fixed, err := table.FixText(q.Result)
		if err != nil {
			q.Fail()
			failed = append(failed, q.Info)
			continue
		}
		q.Result = fixed
		q.Error = ""
	}
	return failed
}
