// Copyright (c) 2025 hlcolor contributors
// released under the MIT license

package wcolor

import (
	"fmt"
	"strconv"
	"strings"
)

// Clause is one foreground or background selector of a color code.
type Clause struct {
	// Extended is set for 5-digit (`@`-flagged) codes.
	Extended bool
	Code     int
}

func (c Clause) String() string {
	if c.Extended {
		return fmt.Sprintf("@%05d", c.Code)
	}
	return fmt.Sprintf("%02d", c.Code)
}

// ColorSpec is the decoded form of a ColorCode token.
type ColorSpec struct {
	// Fixed is the option color index for `\x19NN` codes, or -1.
	Fixed int
	// Selector is 'F', '*' or 'B'; zero for fixed codes.
	Selector byte
	// Attr is the optional attribute modifier ('*', '!', '/', '_', '%', '.', '|').
	Attr       byte
	Foreground Clause
	// Background is nil unless the code carries a `~` clause or uses the B selector.
	Background *Clause
}

// ParseColor decodes the text of a ColorCode token.
func ParseColor(text string) (spec ColorSpec, ok bool) {
	spec.Fixed = -1
	if len(text) < 2 || text[0] != ColorChar {
		return
	}
	if size, kind := scan(text); kind != ColorCode || size != len(text) {
		return
	}
	body := text[1:]
	switch body[0] {
	case 'F', '*', 'B':
		spec.Selector = body[0]
		body = body[1:]
	default:
		spec.Fixed, _ = strconv.Atoi(body)
		return spec, true
	}
	if spec.Selector == 'B' {
		clause, _ := parseClause(body)
		spec.Background = &clause
		return spec, true
	}
	extended := strings.HasPrefix(body, "@")
	if extended {
		body = body[1:]
	}
	if body[0] < '0' || '9' < body[0] {
		spec.Attr = body[0]
		body = body[1:]
	}
	fg, bg, hasBackground := strings.Cut(body, "~")
	spec.Foreground.Extended = extended
	spec.Foreground.Code, _ = strconv.Atoi(fg)
	if hasBackground {
		clause, _ := parseClause(bg)
		spec.Background = &clause
	}
	return spec, true
}

func parseClause(str string) (clause Clause, err error) {
	if strings.HasPrefix(str, "@") {
		clause.Extended = true
		str = str[1:]
	}
	clause.Code, err = strconv.Atoi(str)
	return
}

// String re-encodes the spec as a ColorCode token text.
func (spec ColorSpec) String() string {
	var buf strings.Builder
	buf.WriteByte(ColorChar)
	if spec.Selector == 0 {
		fmt.Fprintf(&buf, "%02d", spec.Fixed)
		return buf.String()
	}
	buf.WriteByte(spec.Selector)
	if spec.Selector == 'B' {
		if spec.Background != nil {
			buf.WriteString(spec.Background.String())
		}
		return buf.String()
	}
	if spec.Foreground.Extended {
		buf.WriteByte('@')
	}
	if spec.Attr != 0 {
		buf.WriteByte(spec.Attr)
	}
	if spec.Foreground.Extended {
		fmt.Fprintf(&buf, "%05d", spec.Foreground.Code)
	} else {
		fmt.Fprintf(&buf, "%02d", spec.Foreground.Code)
	}
	if spec.Background != nil {
		buf.WriteByte('~')
		buf.WriteString(spec.Background.String())
	}
	return buf.String()
}

var attrNames = map[byte]string{
	AttrBold:      "bold",
	AttrReverse:   "reverse",
	AttrItalic:    "italic",
	AttrUnderline: "underline",
	AttrKeep:      "keepattrs",
	AttrBlink:     "blink",
}

// Escape renders text with every protocol code replaced by a readable
// bracketed form, e.g. "<F*05>bold<reset>". It is meant for terminals,
// where the raw control bytes would be garbage.
//
// IE, it turns this: "hi \x19F*05you\x1c"
// into: "hi <F*05>you<reset>"
func Escape(text string) string {
	var buf strings.Builder
	for _, tok := range Tokenize(text) {
		switch tok.Kind {
		case Content:
			if tok.Text == "<" {
				buf.WriteString("<<")
			} else {
				buf.WriteString(tok.Text)
			}
		case ColorCode:
			buf.WriteByte('<')
			buf.WriteString(tok.Text[1:])
			buf.WriteByte('>')
		case ResetCode:
			buf.WriteString("<reset>")
		case AttributeCode:
			switch {
			case tok.Text == ResetKeepAttrs:
				buf.WriteString("<resetcolor>")
			case tok.Text == SpellMissEnd:
				buf.WriteString("<spellend>")
			case tok.Text[0] == SetAttrChar:
				fmt.Fprintf(&buf, "<%s>", attrNames[tok.Text[1]])
			default:
				fmt.Fprintf(&buf, "<-%s>", attrNames[tok.Text[1]])
			}
		}
	}
	return buf.String()
}
