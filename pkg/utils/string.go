// Package utils provides small string helpers shared by the normalizer.
package utils

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// StringHelper provides string utility functions.
type StringHelper struct{}

// NewStringHelper creates a new string helper.
func NewStringHelper() *StringHelper {
	return &StringHelper{}
}

// TrimWhitespace removes leading and trailing whitespace.
func (s *StringHelper) TrimWhitespace(str string) string {
	return strings.TrimSpace(str)
}

// Words splits str on runs of whitespace, dropping empty tokens.
func (s *StringHelper) Words(str string) []string {
	return strings.Fields(str)
}

// Capitalize title-cases the first rune of word and lower-cases the rest.
func (s *StringHelper) Capitalize(word string) string {
	first, size := utf8.DecodeRuneInString(word)
	if size == 0 {
		return word
	}

	return string(unicode.ToTitle(first)) + strings.ToLower(word[size:])
}

// StartsWithDigit reports whether the first rune of word is a decimal digit.
func (s *StringHelper) StartsWithDigit(word string) bool {
	first, size := utf8.DecodeRuneInString(word)
	if size == 0 {
		return false
	}

	return unicode.IsDigit(first)
}

// FirstRune returns the first rune of str as a string, or "" when str is empty.
func (s *StringHelper) FirstRune(str string) string {
	_, size := utf8.DecodeRuneInString(str)

	return str[:size]
}
