package align_test

import (
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yaklabco/dantetool/pkg/align"
)

//nolint:gochecknoglobals // Shared fixture.
var inferno1 = []string{
	"Nel mezzo del cammin di nostra vita",
	"mi ritrovai per una selva oscura,",
	"ché la diritta via era smarrita.",
}

func TestAlign(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		lines       []string
		rows        [][]string
		wantBuckets [][][]string
		wantDropped [][]string
		wantEvents  []align.Event
	}{
		{
			name:  "exact matches across two lines",
			lines: inferno1[:2],
			rows: [][]string{
				{"cammin", "walk"},
				{"vita", "life"},
				{"selva", "forest"},
			},
			wantBuckets: [][][]string{
				{{"walk"}, {"life"}},
				{{"forest"}},
			},
			wantEvents: []align.Event{
				{Kind: align.Skip, Line: 1, Row: 0, Word: "cammin", Evidence: "Nel mezzo del "},
				{Kind: align.Skip, Line: 1, Row: 1, Word: "vita", Evidence: " di nostra "},
				{Kind: align.Skip, Line: 2, Row: 2, Word: "selva", Evidence: "mi ritrovai per una "},
			},
		},
		{
			name: "pending row salvaged before a later anchor",
			lines: []string{
				"per me si va ne l'etterno dolore,",
				"per me si va tra la perduta gente.",
			},
			rows: [][]string{
				{"va", "goes"},
				{"eterno", "eternal"},
				{"etterno", "eternal2"},
				{"dolore", "pain"},
				{"gente", "people"},
			},
			wantBuckets: [][][]string{
				{{"goes"}, {"eternal"}, {"eternal2"}, {"pain"}},
				{{"people"}},
			},
			wantEvents: []align.Event{
				{Kind: align.Skip, Line: 1, Row: 0, Word: "va", Evidence: "per me si "},
				{Kind: align.NotFound, Line: 1, Row: 1, Word: "eterno", Evidence: " ne l'etterno dolore,"},
				{Kind: align.Skip, Line: 1, Row: 2, Word: "etterno", Evidence: " ne l'"},
				{Kind: align.SalvageInline, Line: 1, Row: 1, Word: "eterno"},
				{Kind: align.Skip, Line: 2, Row: 4, Word: "gente", Evidence: "per me si va tra la perduta "},
			},
		},
		{
			name:  "pending row salvaged onto an unfinished line",
			lines: inferno1,
			rows: [][]string{
				{"cammin", "walk"},
				{"nostra", "our"},
				{"vitae", "life"},
				{"ritrovai", "found"},
				{"selva", "forest"},
			},
			wantBuckets: [][][]string{
				{{"walk"}, {"our"}, {"life"}},
				{{"found"}, {"forest"}},
				nil,
			},
			wantEvents: []align.Event{
				{Kind: align.Skip, Line: 1, Row: 0, Word: "cammin", Evidence: "Nel mezzo del "},
				{Kind: align.Skip, Line: 1, Row: 1, Word: "nostra", Evidence: " di "},
				{Kind: align.NotFound, Line: 1, Row: 2, Word: "vitae", Evidence: " vita"},
				{Kind: align.SkipLineEnd, Line: 1, Row: 3, Word: "ritrovai", Evidence: " vita"},
				{Kind: align.SalvagePrev, Line: 1, Row: 2, Word: "vitae"},
				{Kind: align.Skip, Line: 2, Row: 3, Word: "ritrovai", Evidence: "mi "},
				{Kind: align.Skip, Line: 2, Row: 4, Word: "selva", Evidence: " per una "},
			},
		},
		{
			name:  "pending row dropped between complete lines",
			lines: inferno1,
			rows: [][]string{
				{"cammin", "walk"},
				{"vita", "life"},
				{"vitta", "life2"},
				{"mi", "me"},
			},
			wantBuckets: [][][]string{
				{{"walk"}, {"life"}},
				{{"me"}},
				nil,
			},
			wantDropped: [][]string{
				{"vitta", "life2"},
			},
			wantEvents: []align.Event{
				{Kind: align.Skip, Line: 1, Row: 0, Word: "cammin", Evidence: "Nel mezzo del "},
				{Kind: align.Skip, Line: 1, Row: 1, Word: "vita", Evidence: " di nostra "},
				{Kind: align.NotFound, Line: 1, Row: 2, Word: "vitta", Evidence: ""},
				{Kind: align.Drop, Line: 1, Row: 2, Word: "vitta"},
			},
		},
		{
			name:  "latest pending row salvaged onto the next line",
			lines: inferno1,
			rows: [][]string{
				{"cammin", "walk"},
				{"vita", "life"},
				{"foo", "x"},
				{"ritrovaii", "found"},
				{"per", "for"},
			},
			wantBuckets: [][][]string{
				{{"walk"}, {"life"}},
				{{"found"}, {"for"}},
				nil,
			},
			wantDropped: [][]string{
				{"foo", "x"},
			},
			wantEvents: []align.Event{
				{Kind: align.Skip, Line: 1, Row: 0, Word: "cammin", Evidence: "Nel mezzo del "},
				{Kind: align.Skip, Line: 1, Row: 1, Word: "vita", Evidence: " di nostra "},
				{Kind: align.NotFound, Line: 1, Row: 2, Word: "foo", Evidence: ""},
				{Kind: align.NotFound, Line: 1, Row: 3, Word: "ritrovaii", Evidence: ""},
				{Kind: align.Drop, Line: 1, Row: 2, Word: "foo"},
				{Kind: align.SalvageNext, Line: 2, Row: 3, Word: "ritrovaii"},
				{Kind: align.Skip, Line: 2, Row: 4, Word: "per", Evidence: "mi ritrovai "},
			},
		},
		{
			name:  "remaining rows go to the last line",
			lines: inferno1[:2],
			rows: [][]string{
				{"vita", "life"},
				{"selva", "forest"},
				{"zzz", "?"},
				{"oscura", "dark"},
			},
			wantBuckets: [][][]string{
				{{"life"}},
				{{"forest"}, {"?"}, {"dark"}},
			},
			wantEvents: []align.Event{
				{Kind: align.Skip, Line: 1, Row: 0, Word: "vita", Evidence: "Nel mezzo del cammin di nostra "},
				{Kind: align.Skip, Line: 2, Row: 1, Word: "selva", Evidence: "mi ritrovai per una "},
			},
		},
		{
			name:  "pending rows dropped at end of input",
			lines: inferno1[:2],
			rows: [][]string{
				{"cammin", "walk"},
				{"zzz", "q"},
			},
			wantBuckets: [][][]string{
				{{"walk"}},
				nil,
			},
			wantDropped: [][]string{
				{"zzz", "q"},
			},
			wantEvents: []align.Event{
				{Kind: align.Skip, Line: 1, Row: 0, Word: "cammin", Evidence: "Nel mezzo del "},
				{Kind: align.NotFound, Line: 1, Row: 1, Word: "zzz", Evidence: " di nostra vita"},
				{Kind: align.Drop, Line: 1, Row: 1, Word: "zzz"},
			},
		},
		{
			name:        "no rows",
			lines:       inferno1[:2],
			wantBuckets: [][][]string{nil, nil},
		},
		{
			name:  "single line takes every row",
			lines: inferno1[:1],
			rows: [][]string{
				{"vita", "life"},
				{"zzz", "?"},
				{"cammin", "walk"},
			},
			wantBuckets: [][][]string{
				{{"life"}, {"?"}, {"walk"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := align.Align(tt.lines, tt.rows, "inf-1-1", align.Options{})

			if diff := cmp.Diff(tt.wantBuckets, got.Buckets); diff != "" {
				t.Errorf("Buckets mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantDropped, got.Dropped); diff != "" {
				t.Errorf("Dropped mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantEvents, got.Events); diff != "" {
				t.Errorf("Events mismatch (-want +got):\n%s", diff)
			}
			if got.Placed()+len(got.Dropped) != len(tt.rows) {
				t.Errorf("placed %d + dropped %d != rows %d", got.Placed(), len(got.Dropped), len(tt.rows))
			}
		})
	}
}

func TestAlignOptions(t *testing.T) {
	t.Parallel()

	rows := [][]string{
		{"cammin", "walk", "verb"},
		{"selva", "forest", "noun"},
	}

	t.Run("keep search word", func(t *testing.T) {
		t.Parallel()

		got := align.Align(inferno1[:2], rows, "", align.Options{KeepSearch: true})

		want := [][][]string{
			{{"cammin", "walk", "verb"}},
			{{"selva", "forest", "noun"}},
		}
		if diff := cmp.Diff(want, got.Buckets); diff != "" {
			t.Errorf("Buckets mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("first line offsets event numbers", func(t *testing.T) {
		t.Parallel()

		got := align.Align(inferno1[:2], rows, "", align.Options{FirstLine: 4})

		want := []align.Event{
			{Kind: align.Skip, Line: 4, Row: 0, Word: "cammin", Evidence: "Nel mezzo del "},
			{Kind: align.SkipLineEnd, Line: 4, Row: 1, Word: "selva", Evidence: " di nostra vita"},
			{Kind: align.Skip, Line: 5, Row: 1, Word: "selva", Evidence: "mi ritrovai per una "},
		}
		if diff := cmp.Diff(want, got.Events); diff != "" {
			t.Errorf("Events mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestAlignDoesNotModifyInput(t *testing.T) {
	t.Parallel()

	rows := [][]string{
		{"cammin", "walk"},
		{"vitae", "life"},
		{"ritrovai", "found"},
	}
	before := cloneRows(rows)

	got := align.Align(inferno1, rows, "", align.Options{})
	got.Buckets[0][0][0] = "changed"

	if diff := cmp.Diff(before, rows); diff != "" {
		t.Errorf("rows modified (-want +got):\n%s", diff)
	}
}

func TestAlignIsDeterministic(t *testing.T) {
	t.Parallel()

	rows := [][]string{
		{"cammin", "walk"},
		{"foo", "x"},
		{"ritrovaii", "found"},
		{"per", "for"},
		{"smarrita", "lost"},
	}

	first := align.Align(inferno1, rows, "inf-1-1", align.Options{})
	second := align.Align(inferno1, rows, "inf-1-1", align.Options{})

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("results differ (-first +second):\n%s", diff)
	}
}

func TestAlignConservesRows(t *testing.T) {
	t.Parallel()

	vocabulary := []string{
		"Nel", "mezzo", "cammin", "nostra", "vita", "mi", "ritrovai", "per",
		"selva", "oscura", "diritta", "via", "smarrita", "vitae", "foo", "zzz",
	}
	rng := rand.New(rand.NewSource(1)) //nolint:gosec // Deterministic fixture.

	for iter := range 200 {
		n := rng.Intn(12)
		rows := make([][]string, n)
		for i := range rows {
			rows[i] = []string{vocabulary[rng.Intn(len(vocabulary))], strconv.Itoa(i)}
		}
		lines := inferno1[:1+rng.Intn(len(inferno1))]

		got := align.Align(lines, rows, "", align.Options{KeepSearch: true})

		if len(got.Buckets) != len(lines) {
			t.Fatalf("iter %d: got %d buckets, want %d", iter, len(got.Buckets), len(lines))
		}
		if got.Placed()+len(got.Dropped) != n {
			t.Fatalf("iter %d: placed %d + dropped %d != %d", iter, got.Placed(), len(got.Dropped), n)
		}

		for b, bucket := range got.Buckets {
			prev := -1
			for _, row := range bucket {
				idx, err := strconv.Atoi(row[1])
				if err != nil {
					t.Fatalf("iter %d: bad row id %q", iter, row[1])
				}
				if idx <= prev {
					t.Errorf("iter %d: bucket %d out of order: %d after %d", iter, b, idx, prev)
				}
				prev = idx
			}
		}
	}
}

func TestAlignPanicsWithoutLines(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("expected panic for empty lines")
		}
	}()

	align.Align(nil, [][]string{{"vita", "life"}}, "inf-1-1", align.Options{})
}

func TestResultLog(t *testing.T) {
	t.Parallel()

	got := align.Align(inferno1[:2], [][]string{{"cammin", "walk"}, {"zzz", "q"}}, "inf-1-1", align.Options{})

	want := []string{
		"inf-1-1 | skip | ln=1 | word='cammin' | evidence='Nel mezzo del '",
		"inf-1-1 | not_found | ln=1 | word='zzz' | evidence=' di nostra vita'",
		"inf-1-1 | drop | ln=1 | word='zzz'",
	}
	if diff := cmp.Diff(want, got.Log()); diff != "" {
		t.Errorf("Log() mismatch (-want +got):\n%s", diff)
	}

	if got.Count(align.Drop) != 1 {
		t.Errorf("Count(Drop) = %d, want 1", got.Count(align.Drop))
	}
	if got.Count(align.SalvagePrev) != 0 {
		t.Errorf("Count(SalvagePrev) = %d, want 0", got.Count(align.SalvagePrev))
	}
}

func cloneRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = append([]string(nil), row...)
	}
	return out
}

func BenchmarkAlign(b *testing.B) {
	lines := make([]string, 0, 3*len(inferno1))
	for range 3 {
		lines = append(lines, inferno1...)
	}

	var rows [][]string
	for _, line := range lines {
		for _, word := range strings.Fields(line) {
			rows = append(rows, []string{strings.Trim(word, ",."), "x"})
		}
	}

	b.ReportAllocs()
	for b.Loop() {
		align.Align(lines, rows, "bench", align.Options{})
	}
}
