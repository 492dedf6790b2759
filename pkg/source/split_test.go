package source_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yaklabco/dantetool/pkg/source"
)

const edition = `The Project Gutenberg eBook
LA DIVINA COMMEDIA

Inferno
Canto I

  Nel mezzo del cammin di nostra vita
  mi ritrovai per una selva oscura,

Inferno
Canto II

  Lo giorno se n'andava, e l'aere bruno

Purgatorio
Canto XXXIII

  'Deus, venerunt gentes', alternando
*** END OF THE PROJECT GUTENBERG EBOOK
Inferno
Canto IV
ignored
`

func TestSplit(t *testing.T) {
	t.Parallel()

	got, err := source.Split(strings.NewReader(edition))
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}

	want := []source.Text{
		{Cantica: "inferno", Canto: 1, Body: "Nel mezzo del cammin di nostra vita\nmi ritrovai per una selva oscura,\n"},
		{Cantica: "inferno", Canto: 2, Body: "Lo giorno se n'andava, e l'aere bruno\n"},
		{Cantica: "purgatorio", Canto: 33, Body: "'Deus, venerunt gentes', alternando\n"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Split() mismatch (-want +got):\n%s", diff)
	}

	dir := t.TempDir()
	if err := source.WriteSplit(context.Background(), dir, got); err != nil {
		t.Fatalf("WriteSplit() error = %v", err)
	}
	body, err := os.ReadFile(filepath.Join(dir, "purgatorio", "33.txt"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(body) != want[2].Body {
		t.Errorf("file = %q", body)
	}
}

func TestSplitBadHeading(t *testing.T) {
	t.Parallel()

	_, err := source.Split(strings.NewReader("Inferno\nChapter 1\n"))
	if !errors.Is(err, source.ErrBadHeading) {
		t.Errorf("Split() error = %v, want ErrBadHeading", err)
	}
}

func TestParseRoman(t *testing.T) {
	t.Parallel()

	valid := map[string]int{
		"I": 1, "iv": 4, "IX": 9, "XIV": 14, "XIX": 19, "XXIV": 24, "XXXIII": 33, "XXXIV": 34, "XXXIX": 39,
	}
	for in, want := range valid {
		got, err := source.ParseRoman(in)
		if err != nil || got != want {
			t.Errorf("ParseRoman(%q) = %d, %v; want %d", in, got, err, want)
		}
	}

	for _, in := range []string{"", "IIII", "VX", "XL", "IC", "XXXX", "IIX", "abc"} {
		if _, err := source.ParseRoman(in); !errors.Is(err, source.ErrBadRoman) {
			t.Errorf("ParseRoman(%q) error = %v, want ErrBadRoman", in, err)
		}
	}

	for n := 1; n <= source.MaxCanto; n++ {
		got, err := source.ParseRoman(source.Roman(n))
		if err != nil || got != n {
			t.Errorf("ParseRoman(Roman(%d)) = %d, %v", n, got, err)
		}
	}
}
