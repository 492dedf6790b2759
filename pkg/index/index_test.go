package index_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/dantetool/pkg/align"
	"github.com/yaklabco/dantetool/pkg/compare"
	"github.com/yaklabco/dantetool/pkg/index"
	"github.com/yaklabco/dantetool/pkg/query"
	"github.com/yaklabco/dantetool/pkg/source"
)

func open(t *testing.T) *index.Index {
	t.Helper()

	x, err := index.Open(context.Background(), filepath.Join(t.TempDir(), "idx", "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = x.Close() })
	return x
}

func records() []index.Record {
	return []index.Record{
		{
			Model:  "gpt",
			Info:   "Inferno Canto 1 1/3",
			Result: "| Word |\n|---|\n| Nel |\n| vitta |",
			Alignment: &align.Result{
				ID:      "gpt Inferno Canto 1 1/3",
				Buckets: [][][]string{{{"Nel"}}},
				Dropped: [][]string{{"vitta"}},
				Events: []align.Event{
					{Kind: align.NotFound, Line: 1, Row: 1, Word: "vitta", Evidence: "mezzo del"},
					{Kind: align.Drop, Line: 1, Row: 1, Word: "vitta", Evidence: "not stored"},
				},
			},
		},
		{
			Model:     "claude",
			Info:      "Inferno Canto 1 1/3",
			Result:    "| Word |\n|---|\n| Nel |",
			Alignment: &align.Result{ID: "claude Inferno Canto 1 1/3", Buckets: [][][]string{{{"Nel"}}}},
		},
	}
}

func TestIngest(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	x := open(t)

	run, err := x.Ingest(ctx, records())
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, 2, run.Ingested)
	assert.Equal(t, 0, run.Unchanged)

	nrec, nev, err := x.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, nrec)
	assert.Equal(t, 2, nev)

	all, err := x.Events(ctx, index.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "gpt Inferno Canto 1 1/3", all[0].ID())
	assert.Equal(t, align.Event{Kind: align.NotFound, Line: 1, Row: 1, Word: "vitta", Evidence: "mezzo del"}, all[0].Event)
	assert.Empty(t, all[1].Event.Evidence, "drop events carry no evidence")

	drops, err := x.Events(ctx, index.Filter{Kind: align.Drop, Model: "gpt"})
	require.NoError(t, err)
	require.Len(t, drops, 1)
	assert.Equal(t, align.Drop, drops[0].Event.Kind)

	none, err := x.Events(ctx, index.Filter{Model: "claude"})
	require.NoError(t, err)
	assert.Empty(t, none)

	again, err := x.Ingest(ctx, records())
	require.NoError(t, err)
	assert.NotEqual(t, run.ID, again.ID)
	assert.Equal(t, 0, again.Ingested)
	assert.Equal(t, 2, again.Unchanged)

	changed := records()
	changed[0].Result = "| Word |\n|---|\n| Nel |"
	changed[0].Alignment = &align.Result{ID: "gpt Inferno Canto 1 1/3", Buckets: [][][]string{{{"Nel"}}}}
	third, err := x.Ingest(ctx, changed)
	require.NoError(t, err)
	assert.Equal(t, 1, third.Ingested)
	assert.Equal(t, 1, third.Unchanged)

	_, nev, err = x.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, nev, "events of a changed record are replaced")
}

func TestReopen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "index.db")

	x, err := index.Open(ctx, path)
	require.NoError(t, err)
	_, err = x.Ingest(ctx, records())
	require.NoError(t, err)
	require.NoError(t, x.Close())

	x, err = index.Open(ctx, path)
	require.NoError(t, err)
	defer x.Close()

	assert.Equal(t, path, x.Path())
	run, err := x.Ingest(ctx, records())
	require.NoError(t, err)
	assert.Equal(t, 2, run.Unchanged)
}

func TestBuild(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	base := t.TempDir()
	root := filepath.Join(base, "word")
	tokenize := filepath.Join(base, "tokenize")

	lines := []string{"Nel mezzo del cammin di nostra vita", "mi ritrovai per una selva oscura,"}
	require.NoError(t, source.WriteTokenized(ctx, source.TokenizedPath(tokenize, "inferno", 1), source.TokenizeLines(lines)))

	write := func(model string, qs ...query.Query) {
		path := filepath.Join(root, model, "inferno", "01.xml")
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, query.Write(ctx, path, qs))
	}
	write("gpt", query.Query{
		Info:   "Inferno Canto 1 1/2",
		Result: "| Word |\n|---|\n| Nel |\n| mezzo |\n| vitta |\n| mi |\n| selva |",
	})
	write("claude", query.Query{
		Info:   "Inferno Canto 1 1/2",
		Result: "| Word |\n|---|\n| Nel |\n| mezzo |\n| mi |",
	})

	x := open(t)
	res, err := index.Build(ctx, x, index.BuildOptions{
		Compare: compare.Options{Root: root, TokenizeDir: tokenize},
		Jobs:    2,
	})
	require.NoError(t, err)
	require.Len(t, res.Comparisons, 1)
	assert.Equal(t, "inferno/01", res.Comparisons[0].Key)
	assert.Equal(t, 2, res.Run.Ingested)

	notFound, err := x.Events(ctx, index.Filter{Kind: align.NotFound})
	require.NoError(t, err)
	require.NotEmpty(t, notFound)
	assert.Equal(t, "gpt", notFound[0].Model)
	assert.Equal(t, "vitta", notFound[0].Event.Word)

	again, err := index.Build(ctx, x, index.BuildOptions{
		Compare: compare.Options{Root: root, TokenizeDir: tokenize},
		Keys:    []string{"inferno/01"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, again.Run.Unchanged)

	// A corrected reference re-aligns unchanged results.
	lines[0] = "Nel mezzo del cammin di nostra vitta"
	require.NoError(t, source.WriteTokenized(ctx, source.TokenizedPath(tokenize, "inferno", 1), source.TokenizeLines(lines)))
	fixed, err := index.Build(ctx, x, index.BuildOptions{
		Compare: compare.Options{Root: root, TokenizeDir: tokenize},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, fixed.Run.Ingested)
	assert.Equal(t, 0, fixed.Run.Unchanged)

	notFound, err = x.Events(ctx, index.Filter{Kind: align.NotFound, Model: "gpt"})
	require.NoError(t, err)
	assert.Empty(t, notFound)
}

func TestIngestAlignmentInputs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	x := open(t)

	rec := func(line string, useTokens bool, events ...align.Event) index.Record {
		return index.Record{
			Model:     "gpt",
			Info:      "Inferno Canto 1 1/2",
			Result:    "| Word |\n|---|\n| vita |",
			Lines:     []string{"Nel mezzo del cammin di nostra vita", line},
			FirstLine: 1,
			UseTokens: useTokens,
			Alignment: &align.Result{ID: "gpt Inferno Canto 1 1/2", Events: events},
		}
	}

	_, err := x.Ingest(ctx, []index.Record{rec("mi ritrovai per una selva oscura,", false)})
	require.NoError(t, err)

	run, err := x.Ingest(ctx, []index.Record{rec("mi ritrovai per una selva oscura,", false)})
	require.NoError(t, err)
	assert.Equal(t, 1, run.Unchanged)

	drop := align.Event{Kind: align.Drop, Line: 1, Row: 0, Word: "vita"}
	run, err = x.Ingest(ctx, []index.Record{rec("mi ritrovai per una selva oscura", false, drop)})
	require.NoError(t, err)
	assert.Equal(t, 1, run.Ingested, "a corrected reference line is a new input")

	drops, err := x.Events(ctx, index.Filter{Kind: align.Drop})
	require.NoError(t, err)
	require.Len(t, drops, 1)
	assert.Equal(t, "vita", drops[0].Event.Word)

	run, err = x.Ingest(ctx, []index.Record{rec("mi ritrovai per una selva oscura", true)})
	require.NoError(t, err)
	assert.Equal(t, 1, run.Ingested, "matching the reference tokens is a new input")

	drops, err = x.Events(ctx, index.Filter{Kind: align.Drop})
	require.NoError(t, err)
	assert.Empty(t, drops)
}
