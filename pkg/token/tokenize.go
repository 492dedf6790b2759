package token

import (
	"unicode"
	"unicode/utf8"
)

// Tokenize splits an Italian verse line into word, whitespace and
// punctuation tokens. Joining the tokens yields the input unchanged.
//
// An ASCII apostrophe binds to the letters around it: it closes a word when
// it follows letters ("ch'", "Tant'") and opens one when it follows a
// non-letter and precedes letters ("'l", "'mpediva"). Any other rune that is
// neither a letter nor whitespace is a token of its own, so guillemets and
// curly quotes never stick to words.
func Tokenize(text string) []string {
	var tokens []string

	pos := 0
	for pos < len(text) {
		start := pos
		r, size := utf8.DecodeRuneInString(text[pos:])
		switch {
		case isSpace(r):
			pos = skip(text, pos, isSpace)
		case isWordRune(r):
			pos = scanWord(text, pos)
		case r == '\'' && startsWord(text[pos+size:]):
			pos = scanWord(text, pos+size)
		default:
			// Punctuation, or a single byte of invalid UTF-8.
			pos += size
		}
		tokens = append(tokens, text[start:pos])
	}

	return tokens
}

// skip returns the offset of the first rune at or after pos not matching f.
func skip(text string, pos int, f func(rune) bool) int {
	for pos < len(text) {
		r, size := utf8.DecodeRuneInString(text[pos:])
		if !f(r) {
			break
		}
		pos += size
	}
	return pos
}

func startsWord(text string) bool {
	r, _ := utf8.DecodeRuneInString(text)
	return text != "" && isWordRune(r)
}

// scanWord consumes word runes from pos and one trailing apostrophe.
func scanWord(text string, pos int) int {
	pos = skip(text, pos, isWordRune)
	if pos < len(text) && text[pos] == '\'' {
		pos++
	}
	return pos
}

// Words returns the tokens of text that contain a letter.
func Words(text string) []string {
	var words []string
	for _, tok := range Tokenize(text) {
		if HasAlpha(tok) {
			words = append(words, tok)
		}
	}
	return words
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}
