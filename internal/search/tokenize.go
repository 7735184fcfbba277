package search

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// minTokenLen drops single-character tokens.
const minTokenLen = 2

// Tokenize lowercases text and splits it into runs of word characters
// (letters, numbers and underscore), keeping runs of two or more runes.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}

	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !isWordRune(r)
	})

	tokens := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= minTokenLen {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// isWordRune excludes combining marks, so a decomposed accent splits a word.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}
