package report

import (
	"bufio"
	"context"
	"fmt"

	"github.com/yaklabco/dantetool/internal/ui/pretty"
)

// TextReporter formats reports as styled terminal output.
type TextReporter struct {
	opts   Options
	styles *pretty.Styles
	tables bool
	bw     *bufio.Writer
}

// NewTextReporter creates a new text reporter. Without tables only the
// summary line is written.
func NewTextReporter(opts Options, tables bool) *TextReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &TextReporter{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		tables: tables,
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *TextReporter) Report(_ context.Context, rep *Report) (err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if rep == nil || rep.Total.Queries == 0 {
		fmt.Fprintln(r.bw, r.styles.Success.Render("Nothing aligned."))
		return nil
	}

	if r.tables {
		if r.opts.ShowEvents && len(rep.Records()) > 0 {
			for _, rec := range rep.Records() {
				fmt.Fprint(r.bw, r.styles.FormatEvent(rec.ID, rec.Event))
			}
			fmt.Fprintln(r.bw)
		}

		width := r.opts.Width
		if width <= 0 {
			width = pretty.TerminalWidth(r.opts.Writer)
		}

		sources := rep.Sources()
		rows := make([]pretty.TallyRow, len(sources))
		for i, t := range sources {
			rows[i] = pretty.TallyRow{Name: t.Source, Totals: t.Totals()}
		}
		fmt.Fprint(r.bw, r.styles.FormatTally(rows, pretty.TallyRow{Name: rep.Total.Source, Totals: rep.Total.Totals()}, width))
		fmt.Fprintln(r.bw)
	}

	fmt.Fprint(r.bw, r.styles.FormatSummaryOneLine(rep.Total.Totals()))
	return nil
}
