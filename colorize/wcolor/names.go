// Copyright (c) 2025 hlcolor contributors
// released under the MIT license

package wcolor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrUnknownColor = errors.New("unknown color name")
	ErrColorEmpty   = errors.New("empty color name")
)

// basic color names, in palette order
var basicColors = []string{
	"default",
	"black",
	"darkgray",
	"red",
	"lightred",
	"green",
	"lightgreen",
	"brown",
	"yellow",
	"blue",
	"lightblue",
	"magenta",
	"lightmagenta",
	"cyan",
	"lightcyan",
	"gray",
	"white",
}

// option colors, addressed by a fixed `\x19NN` code
var optionColors = []string{
	"separator",
	"chat",
	"chat_time",
	"chat_time_delimiters",
	"chat_prefix_error",
	"chat_prefix_network",
	"chat_prefix_action",
	"chat_prefix_join",
	"chat_prefix_quit",
	"chat_prefix_more",
	"chat_prefix_suffix",
	"chat_buffer",
	"chat_server",
	"chat_channel",
	"chat_nick",
	"chat_nick_self",
	"chat_nick_other",
	"chat_host",
	"chat_delimiters",
	"chat_highlight",
	"chat_read_marker",
	"chat_text_found",
	"chat_value",
	"chat_prefix_buffer",
	"chat_tags",
	"chat_inactive_window",
	"chat_inactive_buffer",
	"chat_prefix_buffer_inactive_buffer",
	"chat_nick_offline",
	"chat_nick_offline_highlight",
	"chat_nick_prefix",
	"chat_nick_suffix",
	"emphasis",
	"chat_day_change",
	"chat_value_null",
	"chat_status_disabled",
	"chat_status_enabled",
}

// attribute prefixes of a color name, with the attribute id they set when
// they can't be folded into the color code itself
var attrPrefixes = map[byte]byte{
	'*': AttrBold,
	'!': AttrReverse,
	'/': AttrItalic,
	'_': AttrUnderline,
	'|': AttrKeep,
	'%': AttrBlink,
	'.': 0,
}

var namedAttrs = map[string]byte{
	"bold":      AttrBold,
	"reverse":   AttrReverse,
	"italic":    AttrItalic,
	"underline": AttrUnderline,
	"blink":     AttrBlink,
}

func paletteIndex(name string) (clause Clause, err error) {
	for i, basic := range basicColors {
		if basic == name {
			return Clause{Code: i}, nil
		}
	}
	code, convErr := strconv.Atoi(name)
	if convErr != nil || code < 0 || 255 < code || !isASCIIDigits(name) {
		return clause, fmt.Errorf("%w: %q", ErrUnknownColor, name)
	}
	return Clause{Extended: true, Code: code}, nil
}

func isASCIIDigits(str string) bool {
	for i := 0; i < len(str); i++ {
		if str[i] < '0' || '9' < str[i] {
			return false
		}
	}
	return str != ""
}

// Resolve converts a symbolic color, as written in options, into the token
// text that selects it. Accepted forms:
//
//	reset, resetcolor
//	bold, -bold (and reverse, italic, underline, blink)
//	chat_highlight (option colors)
//	[attrs]fg  or  [attrs]fg,bg  with fg/bg a basic name or 0-255
//
// where attrs is any of "*!/_|%.".
func Resolve(name string) (string, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		return "", ErrColorEmpty
	}
	switch name {
	case "reset":
		return Reset, nil
	case "resetcolor":
		return ResetKeepAttrs, nil
	}
	if attr, ok := namedAttrs[strings.TrimPrefix(name, "-")]; ok {
		if name[0] == '-' {
			return string([]byte{RemoveAttrChar, attr}), nil
		}
		return string([]byte{SetAttrChar, attr}), nil
	}
	for i, option := range optionColors {
		if option == name {
			return fmt.Sprintf("%c%02d", ColorChar, i), nil
		}
	}

	var prefix strings.Builder
	var spec ColorSpec
	spec.Fixed = -1
	spec.Selector = 'F'
	for len(name) != 0 {
		attr, ok := attrPrefixes[name[0]]
		if !ok {
			break
		}
		if spec.Attr == 0 {
			spec.Attr = name[0]
		} else if attr == 0 {
			return "", fmt.Errorf("%w: attribute %q can't be combined", ErrUnknownColor, name[0])
		} else {
			prefix.WriteByte(SetAttrChar)
			prefix.WriteByte(attr)
		}
		name = name[1:]
	}

	fg, bg, hasBackground := strings.Cut(name, ",")
	clause, err := paletteIndex(fg)
	if err != nil {
		return "", err
	}
	spec.Foreground = clause
	if hasBackground {
		background, err := paletteIndex(bg)
		if err != nil {
			return "", err
		}
		spec.Selector = '*'
		spec.Background = &background
	}
	prefix.WriteString(spec.String())
	return prefix.String(), nil
}
