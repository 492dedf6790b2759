package source

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/yaklabco/dantetool/pkg/fsutil"
)

// ErrBadHeading indicates a cantica heading not followed by a canto heading.
var ErrBadHeading = errors.New("bad canto heading")

// Canticas lists the cantica directory names in reading order.
//
//nolint:gochecknoglobals // Read-only list.
var Canticas = []string{"inferno", "purgatorio", "paradiso"}

// Text is one canto of a split edition.
type Text struct {
	Cantica string
	Canto   int
	Body    string
}

// Path returns <dir>/<cantica>/<nn>.txt.
func (t Text) Path(dir string) string {
	return filepath.Join(dir, t.Cantica, fmt.Sprintf("%02d.txt", t.Canto))
}

//nolint:gochecknoglobals // Compiled once.
var (
	allCaps      = regexp.MustCompile(`^[A-Z]+$`)
	cantoHeading = regexp.MustCompile(`^Canto (\w+)`)
)

// Split cuts a plain-text edition of the poem into cantos. Each canto
// starts with a cantica name line followed by a "Canto <roman>" line.
// Lines in capitals are skipped and a line starting with "*** END" stops
// the scan.
func Split(r io.Reader) ([]Text, error) {
	sc := bufio.NewScanner(r)
	var (
		out     []Text
		current *Text
		body    strings.Builder
	)

	flush := func() {
		if current != nil {
			current.Body = body.String()
			out = append(out, *current)
		}
		current = nil
		body.Reset()
	}

	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), " \t\r")

		switch {
		case allCaps.MatchString(line):
		case isCantica(line):
			flush()
			if !sc.Scan() {
				return nil, fmt.Errorf("%w: %s at end of input", ErrBadHeading, line)
			}
			heading := strings.TrimSpace(sc.Text())
			m := cantoHeading.FindStringSubmatch(heading)
			if m == nil {
				return nil, fmt.Errorf("%w: %q", ErrBadHeading, heading)
			}
			n, err := ParseRoman(m[1])
			if err != nil {
				return nil, err
			}
			current = &Text{Cantica: strings.ToLower(line), Canto: n}
		case strings.HasPrefix(strings.TrimLeft(line, " \t"), "*** END"):
			flush()
			return out, nil
		case line != "" && current != nil:
			body.WriteString(strings.TrimLeft(line, " \t"))
			body.WriteByte('\n')
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read edition: %w", err)
	}

	flush()
	return out, nil
}

func isCantica(line string) bool {
	for _, c := range Canticas {
		if line == strings.ToUpper(c[:1])+c[1:] {
			return true
		}
	}
	return false
}

// WriteSplit writes every canto below dir.
func WriteSplit(ctx context.Context, dir string, texts []Text) error {
	for _, t := range texts {
		path := t.Path(dir)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
		if err := fsutil.WriteAtomic(ctx, path, []byte(t.Body), 0); err != nil {
			return err
		}
	}
	return nil
}
