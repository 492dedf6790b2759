// Package index stores alignment events in SQLite so that they can be
// queried across cantos and models.
//
// Records are keyed by model and query info. Each record carries a digest of
// the query result and the reference it was aligned against; ingesting an
// unchanged record is a no-op, so repeated builds only rewrite what changed.
package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/yaklabco/dantetool/pkg/align"
	"github.com/yaklabco/dantetool/pkg/fsutil"
)

// DefaultPath is the index location relative to the working directory.
const DefaultPath = ".dantetool/index.db"

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	started_at TEXT NOT NULL,
	ingested INTEGER NOT NULL DEFAULT 0,
	unchanged INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS records (
	model TEXT NOT NULL,
	info TEXT NOT NULL,
	digest TEXT NOT NULL,
	run_id TEXT NOT NULL,
	placed INTEGER NOT NULL,
	dropped INTEGER NOT NULL,
	PRIMARY KEY (model, info)
);

CREATE TABLE IF NOT EXISTS events (
	model TEXT NOT NULL,
	info TEXT NOT NULL,
	seq INTEGER NOT NULL,
	kind TEXT NOT NULL,
	line INTEGER NOT NULL,
	row_no INTEGER NOT NULL,
	word TEXT NOT NULL,
	evidence TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (model, info, seq)
);
CREATE INDEX IF NOT EXISTS idx_events_kind ON events(kind);
`

// Index is an open alignment index.
type Index struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// Open opens or creates the index at path. ":memory:" opens a private
// in-memory index.
func Open(ctx context.Context, path string) (*Index, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create index directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	// A single connection keeps ":memory:" databases alive and serializes
	// writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize index: %w", err)
	}

	return &Index{db: db, path: path}, nil
}

// Close closes the database.
func (x *Index) Close() error {
	return x.db.Close()
}

// Path returns the database path.
func (x *Index) Path() string {
	return x.path
}

// Record is one aligned query.
type Record struct {
	Model string
	Info  string

	// Result is the query result the alignment was made from.
	Result string

	// Lines, FirstLine and UseTokens are the other alignment inputs: the
	// reference verses, the number of the first one and whether the
	// reference tokens were matched.
	Lines     []string
	FirstLine int
	UseTokens bool

	Alignment *align.Result
}

// Digest returns the digest stored for a record. It covers every input of
// the alignment, so a changed reference or option re-ingests the record.
func (r Record) Digest() string {
	var b strings.Builder
	b.WriteString(r.Result)
	fmt.Fprintf(&b, "\x00%d\x00%t", r.FirstLine, r.UseTokens)
	for _, line := range r.Lines {
		b.WriteByte(0)
		b.WriteString(line)
	}
	return fsutil.Hash([]byte(b.String())).String()
}

// Run summarizes one Ingest call.
type Run struct {
	ID        string
	Started   time.Time
	Ingested  int
	Unchanged int
}

// Ingest stores records within a new run. Records whose digest is already
// stored are left untouched.
func (x *Index) Ingest(ctx context.Context, records []Record) (_ *Run, err error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	run := &Run{ID: uuid.NewString(), Started: time.Now().UTC()}

	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, tx.Rollback())
		}
	}()

	for _, rec := range records {
		if rec.Alignment == nil {
			continue
		}

		digest := rec.Digest()
		var stored string
		switch err := tx.QueryRowContext(ctx,
			`SELECT digest FROM records WHERE model = ? AND info = ?`, rec.Model, rec.Info).Scan(&stored); {
		case err == nil && stored == digest:
			run.Unchanged++
			continue
		case err != nil && !errors.Is(err, sql.ErrNoRows):
			return nil, fmt.Errorf("lookup %s %s: %w", rec.Model, rec.Info, err)
		}

		if err := x.store(ctx, tx, run.ID, digest, rec); err != nil {
			return nil, fmt.Errorf("store %s %s: %w", rec.Model, rec.Info, err)
		}
		run.Ingested++
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, ingested, unchanged) VALUES (?, ?, ?, ?)`,
		run.ID, run.Started.Format(time.RFC3339Nano), run.Ingested, run.Unchanged); err != nil {
		return nil, fmt.Errorf("record run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return run, nil
}

func (x *Index) store(ctx context.Context, tx *sql.Tx, runID, digest string, rec Record) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM events WHERE model = ? AND info = ?`, rec.Model, rec.Info); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO records (model, info, digest, run_id, placed, dropped) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Model, rec.Info, digest, runID, rec.Alignment.Placed(), len(rec.Alignment.Dropped)); err != nil {
		return err
	}

	for seq, ev := range rec.Alignment.Events {
		evidence := ""
		if ev.Kind.HasEvidence() {
			evidence = ev.Evidence
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO events (model, info, seq, kind, line, row_no, word, evidence) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.Model, rec.Info, seq, ev.Kind.String(), ev.Line, ev.Row, ev.Word, evidence); err != nil {
			return err
		}
	}
	return nil
}
