// Package analysis provides the text tokenizer shared by the lexical index
// and the search engine.
package analysis

import (
	"strings"
	"unicode"
)

// Tokenize lower-cases text and splits it on any rune that is not a letter
// or a digit. The same function must be used at index-build time and at
// query time; a mismatch silently degrades recall.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
