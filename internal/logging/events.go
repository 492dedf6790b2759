package logging

import (
	"github.com/charmbracelet/log"

	"github.com/yaklabco/dantetool/pkg/align"
)

// LogEvents writes one warning per alignment event in the stable
// "id | kind | ln=N | word='..'" form, with the kind and line repeated as
// fields for filtering.
func LogEvents(logger *log.Logger, res *align.Result) {
	if logger == nil || res == nil {
		return
	}
	for _, ev := range res.Events {
		logger.Warn(ev.Format(res.ID), FieldKind, ev.Kind.String(), FieldLine, ev.Line)
	}
}
