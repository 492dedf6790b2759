package compare

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/yaklabco/dantetool/pkg/fsutil"
)

// Markdown renders the comparison: a title, then for every verse with data
// a heading with the verse and one table per model.
func (c *Comparison) Markdown() string {
	var b strings.Builder
	b.WriteString("# " + c.Title() + "\n")

	for n := 1; n <= len(c.Lines); n++ {
		entries := c.entries[n]
		if len(entries) == 0 {
			continue
		}

		fmt.Fprintf(&b, "\n### %d %s\n", n, c.Lines[n-1])
		for _, e := range entries {
			b.WriteString("\n**" + e.Model + "**\n\n")
			b.WriteString(e.Table().String())
			b.WriteString("\n")
		}
	}
	return b.String()
}

// HTML converts the Markdown rendering with GitHub-flavored tables.
func (c *Comparison) HTML() ([]byte, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))

	var buf bytes.Buffer
	if err := md.Convert([]byte(c.Markdown()), &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", c.Key, err)
	}
	return buf.Bytes(), nil
}

// Path returns the output path of the comparison with the given extension.
func (c *Comparison) Path(opts Options, ext string) string {
	return filepath.Join(opts.outputDir(), c.Cantica, fmt.Sprintf("%02d", c.Canto)+ext)
}

// Write stores the Markdown (and, if requested, HTML) rendering under the
// output directory. Unchanged files are left alone. It returns the paths
// that were written.
func Write(ctx context.Context, c *Comparison, opts Options) ([]string, error) {
	outputs := map[string][]byte{".md": []byte(c.Markdown())}
	if opts.HTML {
		html, err := c.HTML()
		if err != nil {
			return nil, err
		}
		outputs[".html"] = html
	}

	var written []string
	for _, ext := range []string{".md", ".html"} {
		content, ok := outputs[ext]
		if !ok {
			continue
		}
		path := c.Path(opts, ext)
		changed, err := fsutil.WriteAtomicIfChanged(ctx, path, content, 0o644)
		if err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		if changed {
			written = append(written, path)
		}
	}
	return written, nil
}

// MissingProblems reports the verses without data as problems.
func (c *Comparison) MissingProblems() []Problem {
	out := make([]Problem, len(c.Missing))
	for i, n := range c.Missing {
		out[i] = Problem{Source: c.Key, Message: "No data for line " + strconv.Itoa(n)}
	}
	return out
}
