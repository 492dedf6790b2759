package report

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/yaklabco/dantetool/pkg/align"
)

// JSONOutput is the top-level JSON structure.
type JSONOutput struct {
	Version string      `json:"version"`
	Sources []JSONTally `json:"sources"`
	Total   JSONTally   `json:"total"`
	Events  []JSONEvent `json:"events,omitempty"`
}

// JSONTally is the JSON form of a Tally.
type JSONTally struct {
	Source   string         `json:"source"`
	Queries  int            `json:"queries"`
	Placed   int            `json:"placed"`
	Dropped  int            `json:"dropped"`
	Salvaged int            `json:"salvaged"`
	ByKind   map[string]int `json:"byKind"`
}

// JSONEvent is the JSON form of a Record.
type JSONEvent struct {
	Source   string `json:"source"`
	ID       string `json:"id"`
	Kind     string `json:"kind"`
	Line     int    `json:"line"`
	Row      int    `json:"row"`
	Word     string `json:"word"`
	Evidence string `json:"evidence,omitempty"`
}

// JSONReporter formats reports as JSON.
type JSONReporter struct {
	opts Options
	bw   *bufio.Writer
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(opts Options) *JSONReporter {
	return &JSONReporter{
		opts: opts,
		bw:   bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *JSONReporter) Report(_ context.Context, rep *Report) (err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	encoder := json.NewEncoder(r.bw)
	if !r.opts.Compact {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(r.buildOutput(rep)); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

func (r *JSONReporter) buildOutput(rep *Report) *JSONOutput {
	if rep == nil {
		rep = New()
	}

	output := &JSONOutput{
		Version: "1.0.0",
		Sources: make([]JSONTally, 0),
		Total:   jsonTally(rep.Total),
	}
	for _, t := range rep.Sources() {
		output.Sources = append(output.Sources, jsonTally(t))
	}

	if r.opts.ShowEvents {
		for _, rec := range rep.Records() {
			ev := JSONEvent{
				Source: rec.Source,
				ID:     rec.ID,
				Kind:   rec.Event.Kind.String(),
				Line:   rec.Event.Line,
				Row:    rec.Event.Row,
				Word:   rec.Event.Word,
			}
			if rec.Event.Kind.HasEvidence() {
				ev.Evidence = rec.Event.Evidence
			}
			output.Events = append(output.Events, ev)
		}
	}

	return output
}

func jsonTally(t *Tally) JSONTally {
	byKind := make(map[string]int, len(t.ByKind))
	for _, k := range align.Kinds() {
		if n := t.ByKind[k]; n > 0 {
			byKind[k.String()] = n
		}
	}
	return JSONTally{
		Source:   t.Source,
		Queries:  t.Queries,
		Placed:   t.Placed,
		Dropped:  t.Dropped,
		Salvaged: t.Salvaged,
		ByKind:   byKind,
	}
}
