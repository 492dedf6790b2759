package table_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yaklabco/dantetool/pkg/table"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		src     string
		want    table.Table
		wantErr error
	}{
		{
			name: "simple table with surrounding text",
			src: "Here is the table:\n\n" +
				"| Word | Lemma |\n" +
				"|------|-------|\n" +
				"| Nel | in |\n" +
				"| mezzo | mezzo |\n" +
				"\nDone.\n| ignored | row |",
			want: table.Table{
				{"Word", "Lemma"},
				{"---", "---"},
				{"Nel", "in"},
				{"mezzo", "mezzo"},
			},
		},
		{
			name: "short rows are padded",
			src:  "| a | b | c |\n|---|---|---|\n| x |",
			want: table.Table{
				{"a", "b", "c"},
				{"---", "---", "---"},
				{"x", "", ""},
			},
		},
		{
			name: "empty extra cells are truncated",
			src:  "| a | b |\n|:---|---:|\n| x | y | |",
			want: table.Table{
				{"a", "b"},
				{":---", "---:"},
				{"x", "y"},
			},
		},
		{
			name:    "extra cells with content",
			src:     "| a | b |\n|---|---|\n| x | y | z |",
			wantErr: table.ErrColumnMismatch,
		},
		{
			name:    "too few rows",
			src:     "| a | b |\n|---|---|",
			wantErr: table.ErrNoTable,
		},
		{
			name:    "no table",
			src:     "just text",
			wantErr: table.ErrNoTable,
		},
		{
			name:    "second row is not a separator",
			src:     "| a | b |\n| x | y |\n| z | w |",
			wantErr: table.ErrBadSeparator,
		},
		{
			name: "windows line endings",
			src:  "| a |\r\n|---|\r\n| x |\r\n",
			want: table.Table{{"a"}, {"---"}, {"x"}},
		},
		{
			name:    "separator without three dashes",
			src:     "| a |\n|-|\n| x |",
			wantErr: table.ErrBadSeparator,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := table.Parse(tt.src)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Parse() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTableString(t *testing.T) {
	t.Parallel()

	tab := table.Table{
		{"Word", "Note"},
		{"---", "---"},
		{"Nel", ""},
		{"", "x"},
	}

	want := "| Word | Note |\n|---|---|\n| Nel | |\n| | x |"
	if got := tab.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	parsed, err := table.Parse(tab.String())
	if err != nil {
		t.Fatalf("Parse(String()) error = %v", err)
	}
	if diff := cmp.Diff(tab, parsed); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestAccessors(t *testing.T) {
	t.Parallel()

	tab := table.New([]string{"Word", "Lemma"}, [][]string{{"Nel", "in"}, {"vita"}})

	if got := tab.Width(); got != 2 {
		t.Errorf("Width() = %d, want 2", got)
	}
	if diff := cmp.Diff([]string{"---", "---"}, tab[1]); diff != "" {
		t.Errorf("separator mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"in", ""}, tab.Column(1)); diff != "" {
		t.Errorf("Column(1) mismatch (-want +got):\n%s", diff)
	}
	if got := len(tab.Data()); got != 2 {
		t.Errorf("len(Data()) = %d, want 2", got)
	}

	var empty table.Table
	if empty.Header() != nil || empty.Data() != nil {
		t.Error("empty table should have no header and no data")
	}
}

func TestAlignableRows(t *testing.T) {
	t.Parallel()

	tab := table.Table{
		{"Word", "Lemma"},
		{"---", "---"},
		{"ch’", "che"},
		{",", ""},
		{"«", ""},
		{"vita", "vita"},
	}
	before := tab.Clone()

	want := [][]string{
		{"ch'", "che"},
		{"vita", "vita"},
	}
	if diff := cmp.Diff(want, table.AlignableRows(tab)); diff != "" {
		t.Errorf("AlignableRows() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(before, tab); diff != "" {
		t.Errorf("input modified (-want +got):\n%s", diff)
	}
}
