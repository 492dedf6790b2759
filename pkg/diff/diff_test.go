package diff_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yaklabco/dantetool/pkg/diff"
)

func TestComputeNoChanges(t *testing.T) {
	t.Parallel()

	if d := diff.Compute("f.xml", []byte("a\nb\n"), []byte("a\nb\n")); d != nil {
		t.Errorf("Compute() = %v, want nil", d)
	}
	if d := diff.Compute("f.xml", nil, nil); d.HasChanges() {
		t.Error("HasChanges() = true for empty input")
	}
}

func TestComputeString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		before, after string
		want          string
	}{
		{
			name:   "substitution",
			before: "a\nb\nc\n",
			after:  "a\nB\nc\n",
			want:   "--- a/f.xml\n+++ b/f.xml\n@@ -1,3 +1,3 @@\n a\n-b\n+B\n c\n",
		},
		{
			name:   "new file",
			before: "",
			after:  "x\n",
			want:   "--- a/f.xml\n+++ b/f.xml\n@@ -0,0 +1,1 @@\n+x\n",
		},
		{
			name:   "deleted tail",
			before: "a\nb\n",
			after:  "a\n",
			want:   "--- a/f.xml\n+++ b/f.xml\n@@ -1,2 +1,1 @@\n a\n-b\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := diff.Compute("f.xml", []byte(tt.before), []byte(tt.after))
			if diff := cmp.Diff(tt.want, d.String()); diff != "" {
				t.Errorf("String() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestComputeSeparateHunks(t *testing.T) {
	t.Parallel()

	var before, after []string
	for n := 1; n <= 20; n++ {
		line := fmt.Sprint(n)
		before = append(before, line)
		if n == 2 || n == 18 {
			line += "'"
		}
		after = append(after, line)
	}

	d := diff.Compute("f.xml", []byte(strings.Join(before, "\n")), []byte(strings.Join(after, "\n")))
	if d.Additions != 2 || d.Deletions != 2 {
		t.Errorf("Additions = %d, Deletions = %d, want 2, 2", d.Additions, d.Deletions)
	}

	var got [][4]int
	for _, h := range d.Hunks {
		got = append(got, [4]int{h.OldStart, h.OldLines, h.NewStart, h.NewLines})
	}
	want := [][4]int{{1, 5, 1, 5}, {15, 6, 15, 6}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("hunks mismatch (-want +got):\n%s", diff)
	}
}
