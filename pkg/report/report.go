// Package report tallies alignment events and writes them as text or JSON.
package report

import (
	"context"
	"fmt"
	"sort"

	"github.com/yaklabco/dantetool/internal/ui/pretty"
	"github.com/yaklabco/dantetool/pkg/align"
)

// Tally counts the outcome of the alignments of one source.
type Tally struct {
	Source  string
	Queries int
	Placed  int
	Dropped int

	// Salvaged counts the placed rows that were pending first.
	Salvaged int

	ByKind map[align.Kind]int
}

func newTally(source string) *Tally {
	return &Tally{Source: source, ByKind: make(map[align.Kind]int)}
}

func (t *Tally) add(res *align.Result) {
	t.Queries++
	t.Placed += res.Placed()
	t.Dropped += len(res.Dropped)
	for _, ev := range res.Events {
		t.ByKind[ev.Kind]++
		if ev.Kind.Salvaged() {
			t.Salvaged++
		}
	}
}

// Totals converts the tally for rendering.
func (t *Tally) Totals() pretty.Totals {
	return pretty.Totals{Queries: t.Queries, Placed: t.Placed, Dropped: t.Dropped, ByKind: t.ByKind}
}

// Record is one event with the alignment it came from.
type Record struct {
	Source string
	ID     string
	Event  align.Event
}

// Report collects alignment results grouped by source, typically the model
// name.
type Report struct {
	Total   *Tally
	sources map[string]*Tally
	records []Record
}

// New returns an empty report.
func New() *Report {
	return &Report{Total: newTally("total"), sources: make(map[string]*Tally)}
}

// Add records an alignment result for source.
func (r *Report) Add(source string, res *align.Result) {
	if res == nil {
		return
	}
	t, ok := r.sources[source]
	if !ok {
		t = newTally(source)
		r.sources[source] = t
	}
	t.add(res)
	r.Total.add(res)

	for _, ev := range res.Events {
		r.records = append(r.records, Record{Source: source, ID: res.ID, Event: ev})
	}
}

// Sources returns the per-source tallies sorted by source.
func (r *Report) Sources() []*Tally {
	out := make([]*Tally, 0, len(r.sources))
	for _, t := range r.sources {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out
}

// Records returns the events in the order they were added.
func (r *Report) Records() []Record {
	return r.records
}

// Clean reports whether no row was dropped and no search word went
// missing. Skips and salvages do not count.
func (r *Report) Clean() bool {
	return r.Total.Dropped == 0 && r.Total.Totals().Anomalies() == 0
}

// Reporter writes a report.
type Reporter interface {
	Report(ctx context.Context, r *Report) error
}

// NewReporter creates a Reporter for the specified options.
//
//nolint:ireturn // Returns one of several implementations.
func NewReporter(opts Options) (Reporter, error) {
	if opts.Writer == nil {
		opts.Writer = DefaultOptions().Writer
	}

	format := opts.Format
	if format == "" {
		format = FormatText
	}

	switch format {
	case FormatJSON:
		return NewJSONReporter(opts), nil
	case FormatText:
		return NewTextReporter(opts, true), nil
	case FormatSummary:
		return NewTextReporter(opts, false), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}
