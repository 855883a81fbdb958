// Copyright (c) 2025 hlcolor contributors
// released under the MIT license

package colorize

// host options read by the colorizer
const (
	OptionHighlightRegex = "weechat.look.highlight_regex"
	OptionWordChars      = "weechat.look.word_chars_highlight"
	OptionNickColors     = "weechat.color.chat_nick_colors"
	OptionNickSelf       = "weechat.color.chat_nick_self"
	OptionNickColorHash  = "weechat.look.nick_color_hash"
	OptionNickPrefixes   = "irc.color.nick_prefixes"
)

// buffer properties read by the colorizer
const (
	PropertyPlugin         = "plugin"
	PropertyType           = "type"
	PropertyName           = "name"
	PropertyFullName       = "full_name"
	PropertyChannel        = "localvar_channel"
	PropertyNick           = "localvar_nick"
	PropertyHighlightRegex = "highlight_regex"
)

// signals and modifiers the colorizer hooks
const (
	SignalNickAdded      = "nicklist_nick_added"
	SignalNickRemoved    = "nicklist_nick_removed"
	SignalNickChanged    = "nicklist_nick_changed"
	SignalBufferClosing  = "buffer_closing"
	ModifierInputDisplay = "input_text_display"
)

// Line is a line as printed into a buffer.
type Line struct {
	Buffer  string
	Tags    []string
	Prefix  string
	Message string
	// set by the host when the line matched a highlight pattern
	Highlight bool
	// false when the line is hidden by a filter
	Displayed bool
}

// Host is what the colorizer needs from the chat client.
type Host interface {
	// StripColors removes every color and attribute code from text.
	StripColors(text string) string
	// Color resolves a color name to the code that selects it.
	Color(name string) (string, error)
	// ConfigString returns the value of a host option, or "".
	ConfigString(option string) string
	// BufferString returns a buffer property, or "".
	BufferString(buffer, property string) string
	// Buffers lists the open buffers.
	Buffers() []string
	// Nicklist lists the nicks present in a buffer.
	Nicklist(buffer string) []string
	// NickColor returns the color code the host gives nick.
	NickColor(buffer, nick string) string
	// NickPrefix returns the mode prefix nick carries in the nicklist of
	// buffer ("@", "+", ...) and its color code. The prefix is empty when
	// the nick has none.
	NickPrefix(buffer, nick string) (prefix, color string)
	// UpdateLastLine replaces the message of the newest line of buffer.
	UpdateLastLine(buffer, message string) error
}

// Hooker registers callbacks with the host. Callbacks run on the host's
// dispatch thread, one at a time.
type Hooker interface {
	HookLine(callback func(line Line))
	HookModifier(modifier string, callback func(modifierData, text string) string)
	HookSignal(signal string, callback func(signalData string))
	// mask may end in * to match a family of options
	HookConfig(mask string, callback func(option, value string))
}
