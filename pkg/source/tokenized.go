package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/yaklabco/dantetool/pkg/fsutil"
	"github.com/yaklabco/dantetool/pkg/token"
)

// TokenizedLine is one verse of the tokenized reference: the normalized
// text and its word tokens.
type TokenizedLine struct {
	Text   string
	Tokens []string
}

// Canto is the tokenized reference of one canto, indexed by line number
// minus one.
type Canto []TokenizedLine

// TokenizedPath returns the path of the tokenized reference of a canto,
// e.g. tokenize/inferno/01.txt.
func TokenizedPath(dir, cantica string, canto int) string {
	return filepath.Join(dir, cantica, fmt.Sprintf("%02d.txt", canto))
}

// TokenizeLines builds the reference for plain verse lines.
func TokenizeLines(lines []string) Canto {
	c := make(Canto, len(lines))
	for i, line := range lines {
		words := token.Words(line)
		for j, w := range words {
			words[j] = token.Normalize(w)
		}
		c[i] = TokenizedLine{Text: token.Normalize(line), Tokens: words}
	}
	return c
}

// Line returns line n (1-based).
func (c Canto) Line(n int) (TokenizedLine, bool) {
	if n < 1 || n > len(c) {
		return TokenizedLine{}, false
	}
	return c[n-1], true
}

// Lines returns the normalized text of every line.
func (c Canto) Lines() []string {
	out := make([]string, len(c))
	for i, l := range c {
		out[i] = l.Text
	}
	return out
}

// Tokens returns the tokens of the given lines in order. Line numbers out
// of range are skipped.
func (c Canto) Tokens(lines ...int) []string {
	var out []string
	for _, n := range lines {
		if l, ok := c.Line(n); ok {
			out = append(out, l.Tokens...)
		}
	}
	return out
}

// ParseTokenized reads the "text|tok|tok..." format, one line per verse.
func ParseTokenized(r io.Reader) (Canto, error) {
	var c Canto
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r\n")
		if line == "" {
			continue
		}
		parts := strings.Split(line, "|")
		c = append(c, TokenizedLine{Text: parts[0], Tokens: parts[1:]})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read tokenized: %w", err)
	}
	return c, nil
}

// ReadTokenized loads the tokenized reference at path.
func ReadTokenized(ctx context.Context, path string) (Canto, error) {
	content, _, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	c, err := ParseTokenized(strings.NewReader(string(content)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Format renders the canto in the tokenized reference format.
func (c Canto) Format() string {
	var b strings.Builder
	for _, l := range c {
		b.WriteString(l.Text)
		for _, tok := range l.Tokens {
			b.WriteByte('|')
			b.WriteString(tok)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// WriteTokenized writes c to path, creating parent directories.
func WriteTokenized(ctx context.Context, path string, c Canto) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return fsutil.WriteAtomic(ctx, path, []byte(c.Format()), 0)
}
