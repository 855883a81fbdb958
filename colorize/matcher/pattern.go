// Copyright (c) 2025 hlcolor contributors
// released under the MIT license

// Package matcher evaluates highlight patterns the way the host does:
// case-insensitive unless the pattern opens with a directive, leftmost-longest
// alternation, and word boundaries taken from the host's word-character list.
package matcher

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	ErrEmptyPattern       = errors.New("empty highlight pattern")
	ErrMisplacedDirective = errors.New("case directive is only valid at the start of a pattern")
)

const (
	caseSensitiveDirective   = "(?-i)"
	caseInsensitiveDirective = "(?i)"
)

// Span is a half-open byte range [Start, End) of the matched text.
type Span struct {
	Start int
	End   int
}

// Pattern is a compiled highlight pattern.
type Pattern struct {
	Source        string
	CaseSensitive bool
	re            *regexp.Regexp
}

// Compile compiles a highlight pattern.
func Compile(source string) (*Pattern, error) {
	expr := source
	caseSensitive := false
	if strings.HasPrefix(expr, caseSensitiveDirective) {
		caseSensitive = true
		expr = expr[len(caseSensitiveDirective):]
	} else if strings.HasPrefix(expr, caseInsensitiveDirective) {
		expr = expr[len(caseInsensitiveDirective):]
	}
	if expr == "" {
		return nil, ErrEmptyPattern
	}
	if strings.Contains(expr, caseSensitiveDirective) || strings.Contains(expr, caseInsensitiveDirective) {
		return nil, ErrMisplacedDirective
	}
	if !caseSensitive {
		expr = caseInsensitiveDirective + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	// POSIX engines prefer the longest alternative; so do we
	re.Longest()
	return &Pattern{
		Source:        source,
		CaseSensitive: caseSensitive,
		re:            re,
	}, nil
}

// FindSpans returns the highlight matches in text. A candidate counts only
// if it starts where the scan started or after a non-word character, and
// ends at the end of text or before a non-word character. The scan resumes
// at the end of each candidate, so a rejected candidate can make the next
// one count (the host behaves the same way).
func (p *Pattern) FindSpans(text string, wc WordChars) (spans []Span) {
	offset := 0
	for offset < len(text) {
		loc := p.re.FindStringIndex(text[offset:])
		if loc == nil {
			break
		}
		start, end := offset+loc[0], offset+loc[1]
		if start == end {
			// empty matches never highlight anything
			_, size := utf8.DecodeRuneInString(text[end:])
			offset = end + size
			continue
		}
		startOK := start == offset
		if !startOK {
			prev, _ := utf8.DecodeLastRuneInString(text[:start])
			startOK = !wc.IsWordChar(prev)
		}
		endOK := end == len(text)
		if !endOK {
			next, _ := utf8.DecodeRuneInString(text[end:])
			endOK = !wc.IsWordChar(next)
		}
		if startOK && endOK {
			spans = append(spans, Span{Start: start, End: end})
		}
		offset = end
	}
	return
}

// Match reports whether text contains at least one highlight match.
func (p *Pattern) Match(text string, wc WordChars) bool {
	return len(p.FindSpans(text, wc)) != 0
}

// FindAll returns every non-empty match of the pattern in text, with no
// regard for word boundaries. These are the ranges that get recolored once
// FindSpans has decided that the line highlights.
func (p *Pattern) FindAll(text string) (spans []Span) {
	for _, loc := range p.re.FindAllStringIndex(text, -1) {
		if loc[0] != loc[1] {
			spans = append(spans, Span{Start: loc[0], End: loc[1]})
		}
	}
	return
}

// Selection is the outcome of Select.
type Selection struct {
	Pattern  *Pattern
	Spans    []Span
	Override bool
}

// Select decides which pattern governs text. A per-buffer override takes
// priority whenever it matches; otherwise the global pattern is tried.
// Either pattern may be nil. ok is false when neither matches. The spans of
// the selection are all the matches of the governing pattern.
func Select(text string, global, override *Pattern, wc WordChars) (sel Selection, ok bool) {
	if override != nil && override.Match(text, wc) {
		return Selection{Pattern: override, Spans: override.FindAll(text), Override: true}, true
	}
	if global != nil && global.Match(text, wc) {
		return Selection{Pattern: global, Spans: global.FindAll(text)}, true
	}
	return
}
