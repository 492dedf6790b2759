// Package diff renders line-based unified diffs of rewritten query files.
package diff

import (
	"fmt"
	"strings"
)

// Context is the number of unchanged lines shown around a change.
const Context = 3

// Op is the kind of a diff line.
type Op int

// Diff line kinds.
const (
	Equal Op = iota
	Insert
	Delete
)

func (o Op) prefix() byte {
	switch o {
	case Insert:
		return '+'
	case Delete:
		return '-'
	default:
		return ' '
	}
}

// Line is one line of a hunk.
type Line struct {
	Op   Op
	Text string
}

// Hunk is a run of changes with surrounding context. Start positions are
// 1-based.
type Hunk struct {
	OldStart, OldLines int
	NewStart, NewLines int
	Lines              []Line
}

// Diff is the difference between two versions of a file.
type Diff struct {
	Path      string
	Hunks     []Hunk
	Additions int
	Deletions int
}

// Compute returns the diff from before to after, or nil when they have the same
// lines.
func Compute(path string, before, after []byte) *Diff {
	a, b := split(before), split(after)
	ops := script(a, b)

	d := &Diff{Path: path}
	for _, l := range ops {
		switch l.Op {
		case Insert:
			d.Additions++
		case Delete:
			d.Deletions++
		}
	}
	if d.Additions+d.Deletions == 0 {
		return nil
	}
	d.Hunks = hunks(ops)
	return d
}

// HasChanges reports whether d holds any change.
func (d *Diff) HasChanges() bool {
	return d != nil && len(d.Hunks) > 0
}

// String renders d in unified format with a/ and b/ headers.
func (d *Diff) String() string {
	if !d.HasChanges() {
		return ""
	}

	path := strings.TrimPrefix(d.Path, "/")
	var b strings.Builder
	fmt.Fprintf(&b, "--- a/%s\n+++ b/%s\n", path, path)
	for _, h := range d.Hunks {
		fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@\n", h.OldStart, h.OldLines, h.NewStart, h.NewLines)
		for _, l := range h.Lines {
			b.WriteByte(l.Op.prefix())
			b.WriteString(l.Text)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func split(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	return strings.Split(strings.TrimSuffix(string(content), "\n"), "\n")
}

// script walks a longest-common-subsequence table to produce the edit
// script. Deletions come before insertions within a change.
func script(a, b []string) []Line {
	// lcs[i][j] is the LCS length of a[i:] and b[j:].
	lcs := make([][]int, len(a)+1)
	for i := range lcs {
		lcs[i] = make([]int, len(b)+1)
	}
	for i := len(a) - 1; i >= 0; i-- {
		for j := len(b) - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else {
				lcs[i][j] = max(lcs[i+1][j], lcs[i][j+1])
			}
		}
	}

	ops := make([]Line, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		switch {
		case i < len(a) && j < len(b) && a[i] == b[j]:
			ops = append(ops, Line{Equal, a[i]})
			i++
			j++
		case j == len(b) || (i < len(a) && lcs[i+1][j] >= lcs[i][j+1]):
			ops = append(ops, Line{Delete, a[i]})
			i++
		default:
			ops = append(ops, Line{Insert, b[j]})
			j++
		}
	}
	return ops
}

// hunks groups the changes of ops, merging changes separated by at most
// twice Context unchanged lines.
func hunks(ops []Line) []Hunk {
	// oldAt[i] and newAt[i] are the line numbers of ops[i] on each side.
	oldAt := make([]int, len(ops)+1)
	newAt := make([]int, len(ops)+1)
	oldAt[0], newAt[0] = 1, 1
	for i, op := range ops {
		oldAt[i+1], newAt[i+1] = oldAt[i], newAt[i]
		if op.Op != Insert {
			oldAt[i+1]++
		}
		if op.Op != Delete {
			newAt[i+1]++
		}
	}

	var out []Hunk
	for i := 0; i < len(ops); {
		if ops[i].Op == Equal {
			i++
			continue
		}

		end := i
		for j := i; j < len(ops); j++ {
			if ops[j].Op != Equal {
				end = j + 1
				continue
			}
			if j-end >= 2*Context {
				break
			}
		}

		start := max(0, i-Context)
		stop := min(len(ops), end+Context)
		h := Hunk{OldStart: oldAt[start], NewStart: newAt[start], Lines: ops[start:stop]}
		for _, l := range h.Lines {
			if l.Op != Insert {
				h.OldLines++
			}
			if l.Op != Delete {
				h.NewLines++
			}
		}
		// An empty side is addressed by the line before it.
		if h.OldLines == 0 {
			h.OldStart--
		}
		if h.NewLines == 0 {
			h.NewStart--
		}
		out = append(out, h)
		i = stop
	}
	return out
}
