package query_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yaklabco/dantetool/pkg/query"
)

func TestParseInfo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    query.Info
		wantErr bool
	}{
		{in: "Inferno Canto 1", want: query.Info{Cantica: "Inferno", Canto: 1}},
		{in: "Inferno Canto 1 4/136", want: query.Info{Cantica: "Inferno", Canto: 1, Line: 4, Total: 136}},
		{in: "Purgatorio Canto 33 142/145+2", want: query.Info{Cantica: "Purgatorio", Canto: 33, Line: 142, Total: 145, Part: 2}},
		{in: "  Paradiso Canto 3 1/130 ", want: query.Info{Cantica: "Paradiso", Canto: 3, Line: 1, Total: 130}},
		{in: "", wantErr: true},
		{in: "Inferno 1", wantErr: true},
		{in: "Inferno Canto", wantErr: true},
		{in: "Inferno Canto 1 4", wantErr: true},
		{in: "Inferno Canto 1 4/136 extra", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := query.ParseInfo(tt.in)
			if tt.wantErr {
				if !errors.Is(err, query.ErrBadInfo) {
					t.Errorf("ParseInfo(%q) error = %v, want ErrBadInfo", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseInfo(%q) error = %v", tt.in, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseInfo() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestInfoLineNumbers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		info query.Info
		span int
		want []int
	}{
		{"full span", query.Info{Line: 4, Total: 136}, 3, []int{4, 5, 6}},
		{"clipped at the end", query.Info{Line: 133, Total: 134}, 3, []int{133, 134}},
		{"single line", query.Info{Line: 136, Total: 136}, 3, []int{136}},
		{"no range", query.Info{Cantica: "Inferno", Canto: 1}, 3, nil},
	}

	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, tt.info.LineNumbers(tt.span)); diff != "" {
			t.Errorf("%s: LineNumbers() mismatch (-want +got):\n%s", tt.name, diff)
		}
	}
}

func TestInfoString(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"Inferno Canto 1", "Inferno Canto 1 4/136", "Paradiso Canto 12 7/145+1"} {
		info, err := query.ParseInfo(s)
		if err != nil {
			t.Fatalf("ParseInfo(%q) error = %v", s, err)
		}
		if got := info.String(); got != s {
			t.Errorf("String() = %q, want %q", got, s)
		}
	}

	info := query.Info{Cantica: "Inferno", Canto: 3}
	if got := info.Key(); got != "inferno/03" {
		t.Errorf("Key() = %q, want inferno/03", got)
	}
}

func TestBaseInfo(t *testing.T) {
	t.Parallel()

	if got := query.BaseInfo("Inferno Canto 1 4/136+2"); got != "Inferno Canto 1 4/136" {
		t.Errorf("BaseInfo() = %q", got)
	}
	if got := query.BaseInfo("Inferno Canto 1 4/136"); got != "Inferno Canto 1 4/136" {
		t.Errorf("BaseInfo() = %q", got)
	}
	if !query.IsPart("Inferno Canto 1 4/136+1") || query.IsPart("Inferno Canto 1") {
		t.Error("IsPart() mismatch")
	}
}
