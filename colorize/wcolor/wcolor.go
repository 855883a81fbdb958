// Copyright (c) 2025 hlcolor contributors
// released under the MIT license

// Package wcolor tokenizes text carrying WeeChat's inline color protocol.
package wcolor

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// raw bytes of the protocol
	ColorChar      = '\x19'
	SetAttrChar    = '\x1a'
	RemoveAttrChar = '\x1b'
	ResetChar      = '\x1c'

	// Reset resets colors and attributes.
	Reset = "\x1c"
	// ResetKeepAttrs resets the color but keeps the active attributes.
	ResetKeepAttrs = "\x19\x1c"
	// SpellMissEnd is emitted by the spell checker after a misspelled word.
	SpellMissEnd = "\x19bF"
)

// attribute ids that may follow SetAttrChar or RemoveAttrChar
const (
	AttrBold      = '\x01'
	AttrReverse   = '\x02'
	AttrItalic    = '\x03'
	AttrUnderline = '\x04'
	AttrKeep      = '\x05'
	AttrBlink     = '\x06'
)

// Kind is the variant of a Token.
type Kind uint8

const (
	// Content is a single Unicode scalar value (or a single invalid byte).
	Content Kind = iota
	// ColorCode sets a foreground and/or background color.
	ColorCode
	// AttributeCode sets or unsets an attribute, or resets the color only.
	AttributeCode
	// ResetCode resets all colors and attributes.
	ResetCode
)

var kindNames = map[Kind]string{
	Content:       "content",
	ColorCode:     "color",
	AttributeCode: "attr",
	ResetCode:     "reset",
}

func (k Kind) String() string {
	return kindNames[k]
}

// Token is one unit of a tokenized message. Text holds the exact source bytes.
type Token struct {
	Kind Kind
	Text string
}

// IsFormatting returns whether the token is a color or attribute code.
func (t Token) IsFormatting() bool {
	return t.Kind == ColorCode || t.Kind == AttributeCode
}

var (
	// everything after ColorChar. digit classes are spelled [0-9] so that
	// non-ASCII numerals never parse as color digits; every alternative
	// consumes an exact number of digits.
	colorBodyRe = regexp.MustCompile(
		`^(?:` +
			`[0-9]{2}` +
			`|B(?:[0-9]{2}|@[0-9]{5})` +
			`|(?:[F*][*!/_%.|]?[0-9]{2}|[F*]@[*!/_%.|]?[0-9]{5})(?:~(?:[0-9]{2}|@[0-9]{5}))?` +
			`)`)
)

// Tokenize splits text into tokens. Joining the tokens reproduces text exactly.
func Tokenize(text string) (result []Token) {
	result = make([]Token, 0, len(text))
	for len(text) != 0 {
		size, kind := scan(text)
		result = append(result, Token{Kind: kind, Text: text[:size]})
		text = text[size:]
	}
	return
}

// scan measures the token at the start of text.
func scan(text string) (size int, kind Kind) {
	switch text[0] {
	case ResetChar:
		return 1, ResetCode
	case SetAttrChar, RemoveAttrChar:
		if 1 < len(text) && AttrBold <= text[1] && text[1] <= AttrBlink {
			return 2, AttributeCode
		}
	case ColorChar:
		rest := text[1:]
		if strings.HasPrefix(rest, Reset) {
			return 2, AttributeCode
		}
		if strings.HasPrefix(rest, SpellMissEnd[1:]) {
			return len(SpellMissEnd), AttributeCode
		}
		if loc := colorBodyRe.FindStringIndex(rest); loc != nil {
			return 1 + loc[1], ColorCode
		}
	}
	_, size = utf8.DecodeRuneInString(text)
	return size, Content
}

// Join concatenates the text of the tokens.
func Join(tokens []Token) string {
	var buf strings.Builder
	for _, tok := range tokens {
		buf.WriteString(tok.Text)
	}
	return buf.String()
}

// Strip removes all color, attribute and reset codes from text.
func Strip(text string) string {
	if !strings.ContainsAny(text, "\x19\x1a\x1b\x1c") {
		return text
	}
	var buf strings.Builder
	buf.Grow(len(text))
	for len(text) != 0 {
		size, kind := scan(text)
		if kind == Content {
			buf.WriteString(text[:size])
		}
		text = text[size:]
	}
	return buf.String()
}

// HasColors returns whether text contains any color or attribute code.
// A lone reset does not count.
func HasColors(text string) bool {
	for len(text) != 0 {
		size, kind := scan(text)
		if kind == ColorCode || kind == AttributeCode {
			return true
		}
		text = text[size:]
	}
	return false
}

// CountContent returns the number of content tokens in the stream.
func CountContent(tokens []Token) (count int) {
	for _, tok := range tokens {
		if tok.Kind == Content {
			count++
		}
	}
	return
}
