// Package token normalizes and tokenizes verse text.
//
// Search words produced by language models and the canonical source text are
// compared byte for byte, so both sides are passed through Normalize first.
package token

import (
	"strings"
	"unicode"
)

// RightSingleQuote is U+2019, used in the source both as an elision mark and
// as a closing quotation mark.
const RightSingleQuote = '’'

//nolint:gochecknoglobals // Stateless replacer.
var normalizer = strings.NewReplacer(string(RightSingleQuote), "'")

// Normalize folds punctuation variants to their ASCII equivalents.
func Normalize(s string) string {
	return normalizer.Replace(s)
}

// HasAlpha reports whether s contains a letter.
func HasAlpha(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
