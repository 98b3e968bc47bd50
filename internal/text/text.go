// Package text turns raw document text into a sequence of normalized tokens.
package text

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Punctuation is the set of characters removed by StripPunctuation.
// It is the ASCII punctuation range, nothing else.
const Punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

var punctuationRemover = strings.NewReplacer(punctuationPairs()...)

func punctuationPairs() []string {
	pairs := make([]string, 0, len(Punctuation)*2)
	for _, r := range Punctuation {
		pairs = append(pairs, string(r), "")
	}
	return pairs
}

// StripPunctuation removes every ASCII punctuation character from s.
// Non-ASCII symbols are left untouched.
func StripPunctuation(s string) string {
	return punctuationRemover.Replace(s)
}

// Lower lowercases s using language-independent Unicode case mapping.
func Lower(s string) string {
	// A Caser keeps state between calls and must not be shared.
	return cases.Lower(language.Und).String(s)
}

// Normalize strips punctuation and lowercases s.
func Normalize(s string) string {
	return Lower(StripPunctuation(s))
}

// Tokenize normalizes s and splits it on whitespace.
// The result is never nil; text without any words yields an empty slice.
// Invalid UTF-8 sequences become utf8.RuneError so every token is valid UTF-8.
func Tokenize(s string) []string {
	fields := strings.Fields(Normalize(strings.ToValidUTF8(s, string(utf8.RuneError))))
	if fields == nil {
		return []string{}
	}
	return fields
}
