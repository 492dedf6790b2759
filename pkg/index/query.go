package index

import (
	"context"
	"fmt"
	"strings"

	"github.com/yaklabco/dantetool/pkg/align"
)

// Filter selects events. Zero fields match everything.
type Filter struct {
	Kind  align.Kind
	Model string
}

// EventRow is a stored event with its record key.
type EventRow struct {
	Model string
	Info  string
	Event align.Event
}

// ID returns the alignment ID the event was logged under.
func (r EventRow) ID() string {
	return r.Model + " " + r.Info
}

// Events returns the stored events matching f, ordered by model, info and
// emission order.
func (x *Index) Events(ctx context.Context, f Filter) ([]EventRow, error) {
	var where []string
	var args []any
	if f.Kind != 0 {
		where = append(where, "kind = ?")
		args = append(args, f.Kind.String())
	}
	if f.Model != "" {
		where = append(where, "model = ?")
		args = append(args, f.Model)
	}

	q := `SELECT model, info, kind, line, row_no, word, evidence FROM events`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY model, info, seq"

	rows, err := x.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []EventRow
	for rows.Next() {
		var r EventRow
		var kind string
		if err := rows.Scan(&r.Model, &r.Info, &kind, &r.Event.Line, &r.Event.Row, &r.Event.Word, &r.Event.Evidence); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		k, ok := align.ParseKind(kind)
		if !ok {
			return nil, fmt.Errorf("unknown event kind %q", kind)
		}
		r.Event.Kind = k
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	return out, nil
}

// Counts returns the number of stored records and events.
func (x *Index) Counts(ctx context.Context) (records, events int, err error) {
	if err := x.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&records); err != nil {
		return 0, 0, fmt.Errorf("count records: %w", err)
	}
	if err := x.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&events); err != nil {
		return 0, 0, fmt.Errorf("count events: %w", err)
	}
	return records, events, nil
}
