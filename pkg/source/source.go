// Package source reads the numbered source text of a canto and the
// tokenized reference used to validate word tables.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/yaklabco/dantetool/pkg/fsutil"
	"github.com/yaklabco/dantetool/pkg/query"
)

// ErrNoSource indicates that no source file exists for a path.
var ErrNoSource = errors.New("no source file")

// DefaultGroupSize is the number of lines sent to a model in one query.
const DefaultGroupSize = 3

// Source is the numbered text of one canto. Lines are kept in the
// "<n> <text>" form used in prompts.
type Source struct {
	Path  string
	Last  int
	lines map[int]string
}

// Line returns the numbered line n. Missing lines are rendered as "<n> ".
func (s *Source) Line(n int) string {
	if line, ok := s.lines[n]; ok {
		return line
	}
	return strconv.Itoa(n) + " "
}

// Has reports whether line n is present in the source file.
func (s *Source) Has(n int) bool {
	_, ok := s.lines[n]
	return ok
}

// Lines returns lines 1..Last in order.
func (s *Source) Lines() []string {
	out := make([]string, 0, s.Last)
	for n := 1; n <= s.Last; n++ {
		out = append(out, s.Line(n))
	}
	return out
}

// Groups splits lines 1..Last into consecutive groups of size lines. The
// last group may be shorter.
func (s *Source) Groups(size int) [][]string {
	if size <= 0 {
		size = DefaultGroupSize
	}

	var groups [][]string
	var group []string
	for _, line := range s.Lines() {
		group = append(group, line)
		if len(group) == size {
			groups = append(groups, group)
			group = nil
		}
	}
	if len(group) > 0 {
		groups = append(groups, group)
	}
	return groups
}

// Read loads the source at path. Path may name a .txt or .xml file, or omit
// the extension, in which case path.txt and then path.xml are tried. Other
// files are sniffed. For query files, language selects the section of each
// result that follows the language name.
func Read(ctx context.Context, path, language string) (*Source, error) {
	candidates := []string{path}
	switch filepath.Ext(path) {
	case ".txt", ".xml":
	default:
		candidates = []string{path + ".txt", path + ".xml", path}
	}

	for _, candidate := range candidates {
		content, _, err := fsutil.ReadFile(ctx, candidate)
		if errors.Is(err, fsutil.ErrNotFound) || errors.Is(err, fsutil.ErrIsDirectory) {
			continue
		}
		if err != nil {
			return nil, err
		}

		switch DetectFormat(candidate, content) {
		case FormatText:
			return parseText(candidate, content), nil
		case FormatQueries:
			return parseQueries(candidate, content, language)
		default:
			return nil, fmt.Errorf("%w: %s: unrecognized format", ErrNoSource, candidate)
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrNoSource, path)
}

func parseText(path string, content []byte) *Source {
	s := &Source{Path: path, lines: make(map[int]string)}
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		s.Last++
		s.lines[s.Last] = strconv.Itoa(s.Last) + " " + line
	}
	return s
}

//nolint:gochecknoglobals // Compiled once.
var (
	leadingNumber = regexp.MustCompile(`^(\d+)`)
	infoTotal     = regexp.MustCompile(`/(\d+)`)
)

func parseQueries(path string, content []byte, language string) (*Source, error) {
	qs, err := query.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	s := &Source{Path: path, lines: make(map[int]string)}
	for _, q := range qs {
		if !q.OK() {
			continue
		}

		for _, line := range strings.Split(strings.TrimSpace(section(q.Result, language)), "\n") {
			m := leadingNumber.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			if line == m[1] {
				line += " "
			}
			s.lines[n] = line
			s.Last = max(s.Last, n)
		}
	}

	if len(qs) > 0 {
		if m := infoTotal.FindStringSubmatch(qs[0].Info); m != nil {
			if total, err := strconv.Atoi(m[1]); err == nil {
				s.Last = total
			}
		}
	}

	return s, nil
}

// section returns the part of result after the line naming language, or the
// whole result when language is empty or absent.
func section(result, language string) string {
	if language == "" {
		return result
	}
	i := strings.Index(result, language)
	if i < 0 {
		return result
	}
	nl := strings.Index(result[i:], "\n")
	if nl < 0 {
		return ""
	}
	return result[i+nl:]
}
