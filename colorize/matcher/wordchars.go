// Copyright (c) 2025 hlcolor contributors
// released under the MIT license

package matcher

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

var (
	ErrBadWordChars = errors.New("invalid word characters item")
)

// DefaultWordChars is the host's default highlight word-character list.
const DefaultWordChars = `!\u00A0,-,_,|,alnum`

var wordClasses = map[string]func(rune) bool{
	"alnum": func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) },
	"alpha": unicode.IsLetter,
	"blank": func(r rune) bool { return r == ' ' || r == '\t' },
	"cntrl": unicode.IsControl,
	"digit": unicode.IsDigit,
	"graph": func(r rune) bool { return unicode.IsGraphic(r) && !unicode.IsSpace(r) },
	"lower": unicode.IsLower,
	"print": unicode.IsPrint,
	"punct": unicode.IsPunct,
	"space": unicode.IsSpace,
	"upper": unicode.IsUpper,
	"xdigit": func(r rune) bool {
		return ('0' <= r && r <= '9') || ('a' <= r && r <= 'f') || ('A' <= r && r <= 'F')
	},
}

type wordCharItem struct {
	negated bool
	any     bool
	class   func(rune) bool
	low     rune
	high    rune
}

func (item *wordCharItem) matches(r rune) bool {
	switch {
	case item.any:
		return true
	case item.class != nil:
		return item.class(r)
	default:
		return item.low <= r && r <= item.high
	}
}

// WordChars is a parsed word-character list. The first item matching a
// character decides whether it is a word character; a character matching
// no item is not. The zero value has no word characters at all.
type WordChars struct {
	items []wordCharItem
}

// ParseWordChars parses a comma-separated list of items, each optionally
// prefixed with "!" to negate it:
//
//	*        any character
//	alnum    a character class (alnum alpha blank cntrl digit graph
//	         lower print punct space upper xdigit)
//	a-z      a range
//	_        a single character
//
// Characters may be written with Go escapes such as \u00A0.
func ParseWordChars(list string) (result WordChars, err error) {
	for _, raw := range strings.Split(list, ",") {
		if raw == "" {
			continue
		}
		var item wordCharItem
		if 1 < len(raw) && raw[0] == '!' {
			item.negated = true
			raw = raw[1:]
		}
		if raw == "*" {
			item.any = true
		} else if class, ok := wordClasses[raw]; ok {
			item.class = class
		} else {
			item.low, item.high, err = parseCharRange(raw)
			if err != nil {
				return WordChars{}, err
			}
		}
		result.items = append(result.items, item)
	}
	return
}

func parseCharRange(raw string) (low, high rune, err error) {
	low, rest, err := unquoteChar(raw)
	if err != nil {
		return
	}
	high = low
	if rest == "" {
		return
	}
	if len(rest) < 2 || rest[0] != '-' {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadWordChars, raw)
	}
	high, rest, err = unquoteChar(rest[1:])
	if err != nil {
		return
	}
	if rest != "" || high < low {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadWordChars, raw)
	}
	return
}

func unquoteChar(str string) (r rune, rest string, err error) {
	r, _, rest, err = strconv.UnquoteChar(str, 0)
	if err != nil {
		err = fmt.Errorf("%w: %q", ErrBadWordChars, str)
	}
	return
}

// IsWordChar reports whether r is a word character.
func (wc WordChars) IsWordChar(r rune) bool {
	for i := range wc.items {
		if wc.items[i].matches(r) {
			return !wc.items[i].negated
		}
	}
	return false
}
