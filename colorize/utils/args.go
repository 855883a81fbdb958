// Copyright (c) 2016-2017 Daniel Oaks <daniel@danieloaks.net>
// Copyright (c) 2025 hlcolor contributors
// released under the MIT license

package utils

import (
	"strings"
	"unicode"
)

// SplitList splits a comma-separated option value, dropping empty items.
func SplitList(list string) (result []string) {
	for _, item := range strings.Split(list, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return
}

// IsHorizontalSpace reports whether r separates words on a single line.
// Vertical whitespace is excluded: a newline terminates the line instead.
func IsHorizontalSpace(r rune) bool {
	// U+180E MONGOLIAN VOWEL SEPARATOR is no longer in Zs, but clients still
	// treat it as a space
	return r == '\t' || r == '\u180e' || unicode.Is(unicode.Zs, r)
}

// WordRange is the byte range [Start, End) of a word in a line.
type WordRange struct {
	Start int
	End   int
}

// SplitWords returns the ranges of the words of line, split on horizontal
// whitespace.
func SplitWords(line string) (result []WordRange) {
	start := -1
	for i, r := range line {
		if IsHorizontalSpace(r) {
			if start != -1 {
				result = append(result, WordRange{start, i})
				start = -1
			}
		} else if start == -1 {
			start = i
		}
	}
	if start != -1 {
		result = append(result, WordRange{start, len(line)})
	}
	return
}
