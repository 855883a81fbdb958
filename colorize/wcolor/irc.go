// Copyright (c) 2025 hlcolor contributors
// released under the MIT license

package wcolor

import (
	"strings"

	"github.com/ergochat/irc-go/ircfmt"
)

// mIRC colors 0-15, as basic palette indexes
var mircBasic = [16]int{
	16, // white
	1,  // black
	9,  // blue
	5,  // green
	4,  // lightred
	3,  // red
	11, // magenta
	7,  // brown
	8,  // yellow
	6,  // lightgreen
	13, // cyan
	14, // lightcyan
	10, // lightblue
	12, // lightmagenta
	2,  // darkgray
	15, // gray
}

// mIRC colors 16-98, as 256-color terminal indexes
var mircExtended = [83]int{
	52, 94, 100, 58, 22, 29, 23, 24, 17, 54, 53, 89,
	88, 130, 142, 64, 28, 35, 30, 25, 18, 91, 90, 125,
	124, 166, 184, 106, 34, 49, 37, 33, 19, 129, 127, 161,
	196, 208, 226, 154, 46, 86, 51, 75, 21, 171, 201, 198,
	203, 215, 227, 191, 83, 122, 87, 111, 63, 177, 207, 205,
	217, 223, 229, 193, 157, 158, 159, 153, 147, 183, 219, 212,
	16, 233, 235, 237, 239, 241, 244, 247, 250, 254, 231,
}

func mircClause(color ircfmt.ColorCode) Clause {
	if color.Value < 16 {
		return Clause{Code: mircBasic[color.Value]}
	}
	return Clause{Extended: true, Code: mircExtended[color.Value-16]}
}

// FromIRC converts mIRC formatting codes (as sent on the wire) into the
// equivalent WeeChat codes. Monospace and strikethrough have no WeeChat
// equivalent and are dropped.
func FromIRC(raw string) string {
	chunks := ircfmt.Split(raw)
	var buf strings.Builder
	buf.Grow(len(raw))
	var prev ircfmt.FormattedSubstring
	for _, chunk := range chunks {
		format := chunk
		format.Content = ""
		format.Monospace = false
		format.Strikethrough = false
		if format != prev {
			if prev.IsFormatted() {
				buf.WriteString(Reset)
			}
			writeIRCFormat(&buf, format)
			prev = format
		}
		buf.WriteString(chunk.Content)
	}
	return buf.String()
}

func writeIRCFormat(buf *strings.Builder, format ircfmt.FormattedSubstring) {
	for _, attr := range []struct {
		on bool
		id byte
	}{
		{format.Bold, AttrBold},
		{format.ReverseColor, AttrReverse},
		{format.Italic, AttrItalic},
		{format.Underline, AttrUnderline},
	} {
		if attr.on {
			buf.WriteByte(SetAttrChar)
			buf.WriteByte(attr.id)
		}
	}

	fg, bg := format.ForegroundColor, format.BackgroundColor
	spec := ColorSpec{Fixed: -1}
	switch {
	case fg.IsSet && bg.IsSet:
		spec.Selector = '*'
		spec.Foreground = mircClause(fg)
		background := mircClause(bg)
		spec.Background = &background
	case fg.IsSet:
		spec.Selector = 'F'
		spec.Foreground = mircClause(fg)
	case bg.IsSet:
		spec.Selector = 'B'
		background := mircClause(bg)
		spec.Background = &background
	default:
		return
	}
	buf.WriteString(spec.String())
}
