// Copyright (c) 2020 Shivaram Lingamneni <slingamn@cs.stanford.edu>
// Copyright (c) 2025 hlcolor contributors
// released under the MIT license

package utils

import (
	"bytes"
	"regexp"
	"regexp/syntax"
	"strings"
)

// yet another glob implementation in Go

// CompileGlob compiles a mask where * matches any run of characters and
// ? matches a single character. Masks are case-insensitive when folded is
// set, as buffer and channel names are.
func CompileGlob(glob string, folded bool) (result *regexp.Regexp, err error) {
	var buf bytes.Buffer
	if folded {
		buf.WriteString("(?i)")
	}
	buf.WriteByte('^')
	for _, r := range glob {
		switch r {
		case '*':
			buf.WriteString("(.*)")
		case '?':
			buf.WriteString("(.)")
		case 0xFFFD:
			return nil, &syntax.Error{Code: syntax.ErrInvalidUTF8, Expr: glob}
		default:
			buf.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	buf.WriteByte('$')
	return regexp.Compile(buf.String())
}

// GlobSet is a list of compiled masks.
type GlobSet []*regexp.Regexp

// CompileGlobList compiles a comma-separated list of masks, skipping empty
// entries.
func CompileGlobList(list string, folded bool) (result GlobSet, err error) {
	for _, glob := range strings.Split(list, ",") {
		glob = strings.TrimSpace(glob)
		if glob == "" {
			continue
		}
		re, err := CompileGlob(glob, folded)
		if err != nil {
			return nil, err
		}
		result = append(result, re)
	}
	return
}

// Match returns whether any mask of the set matches str.
func (set GlobSet) Match(str string) bool {
	for _, re := range set {
		if re.MatchString(str) {
			return true
		}
	}
	return false
}
