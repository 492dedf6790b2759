package source

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Format is the on-disk format of a source file.
type Format int

const (
	// FormatUnknown is returned for binary or unrecognized content.
	FormatUnknown Format = iota

	// FormatText is a plain text file with one verse per non-empty line.
	FormatText

	// FormatQueries is a query file whose results hold numbered lines.
	FormatQueries
)

// DetectFormat decides how to read a source file. The extension wins when
// it is .txt or .xml; otherwise the content is sniffed.
func DetectFormat(path string, content []byte) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		return FormatText
	case ".xml":
		return FormatQueries
	}

	if len(content) == 0 || enry.IsBinary(content) {
		return FormatUnknown
	}

	trimmed := bytes.TrimSpace(content)
	if bytes.HasPrefix(trimmed, []byte("<?xml")) || bytes.HasPrefix(trimmed, []byte("<queries")) {
		return FormatQueries
	}

	if lang, safe := enry.GetLanguageByClassifier(content, []string{"XML", "Text"}); safe && lang == "XML" {
		return FormatQueries
	}
	return FormatText
}
