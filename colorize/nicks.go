// Copyright (c) 2025 hlcolor contributors
// released under the MIT license

package colorize

import (
	"strings"
	"unicode/utf8"

	"github.com/weechat-tools/hlcolor/colorize/splice"
	"github.com/weechat-tools/hlcolor/colorize/utils"
)

type nickEntry struct {
	Name  string
	Color string
	// mode prefix from the nicklist, painted when a message repeats it
	Prefix      string
	PrefixColor string
}

// nickTable maps casefolded nicks to their colors.
type nickTable map[string]nickEntry

const (
	bufferTypeChannel = "channel"
	bufferTypePrivate = "private"
	pluginIRC         = "irc"
)

// nickColor returns the color of nick in buffer; our own nick gets the
// self color.
func (c *Colorizer) nickColor(buffer, nick, self string) string {
	if self != "" && foldNick(nick) == foldNick(self) {
		color, err := c.host.Color(c.host.ConfigString(OptionNickSelf))
		if err == nil {
			return color
		}
	}
	return c.host.NickColor(buffer, nick)
}

// newNickEntry builds the table entry of nick in buffer.
func (c *Colorizer) newNickEntry(buffer, nick, self string) nickEntry {
	entry := nickEntry{Name: nick, Color: c.nickColor(buffer, nick, self)}
	prefix, color := c.host.NickPrefix(buffer, nick)
	// the nicklist shows a space for nicks without a mode
	if prefix = strings.TrimSpace(c.host.StripColors(prefix)); prefix != "" && color != "" {
		entry.Prefix, entry.PrefixColor = prefix, color
	}
	return entry
}

// wantsNicklist reports whether the nicks of buffer are tracked.
func (c *Colorizer) wantsNicklist(buffer string) bool {
	if c.config.Look.IRCOnly && c.host.BufferString(buffer, PropertyPlugin) != pluginIRC {
		return false
	}
	return c.host.BufferString(buffer, PropertyType) == bufferTypeChannel
}

// populateNicks rebuilds the nick tables of every channel buffer.
func (c *Colorizer) populateNicks(state *State) {
	state.nicks = make(map[string]nickTable)
	for _, buffer := range c.host.Buffers() {
		if !c.wantsNicklist(buffer) {
			continue
		}
		self := c.host.BufferString(buffer, PropertyNick)
		table := make(nickTable)
		for _, nick := range c.host.Nicklist(buffer) {
			table[foldNick(nick)] = c.newNickEntry(buffer, nick, self)
		}
		state.nicks[buffer] = table
	}
}

// privateNicks rebuilds the table of a private buffer, which has no
// nicklist: it holds just us and the other party.
func (c *Colorizer) privateNicks(state *State, buffer string) {
	self := c.host.BufferString(buffer, PropertyNick)
	other := c.host.BufferString(buffer, PropertyChannel)
	table := make(nickTable)
	for _, nick := range []string{self, other} {
		if nick != "" {
			table[foldNick(nick)] = nickEntry{Name: nick, Color: c.nickColor(buffer, nick, self)}
		}
	}
	state.nicks[buffer] = table
}

// splitBufferNick splits nicklist signal data. Nicks may contain commas on
// some networks, buffer names may not.
func splitBufferNick(data string) (buffer, nick string, ok bool) {
	buffer, nick, ok = strings.Cut(data, ",")
	return buffer, nick, ok && buffer != "" && nick != ""
}

func (c *Colorizer) nickAdded(data string) {
	buffer, nick, ok := splitBufferNick(data)
	if !ok {
		c.logger.Debug("colorize", "Malformed nicklist signal", data)
		return
	}
	if !c.wantsNicklist(buffer) {
		return
	}
	table := c.state.nicks[buffer]
	if table == nil {
		table = make(nickTable)
		c.state.nicks[buffer] = table
	}
	self := c.host.BufferString(buffer, PropertyNick)
	table[foldNick(nick)] = c.newNickEntry(buffer, nick, self)
}

func (c *Colorizer) nickRemoved(data string) {
	buffer, nick, ok := splitBufferNick(data)
	if !ok {
		c.logger.Debug("colorize", "Malformed nicklist signal", data)
		return
	}
	if table := c.state.nicks[buffer]; table != nil {
		delete(table, foldNick(nick))
	}
}

func (c *Colorizer) bufferClosing(buffer string) {
	delete(c.state.nicks, buffer)
}

// lookupNick finds the nick named by word, allowing one leading prefix char
// and one trailing suffix char. It returns the byte range of the nick
// inside word.
func (c *Colorizer) lookupNick(table nickTable, word string) (entry nickEntry, start, end int, found bool) {
	look := &c.config.Look
	candidates := make([][2]int, 0, 4)
	start, end = 0, len(word)
	if r, size := utf8.DecodeRuneInString(word); size < len(word) && strings.ContainsRune(look.NickPrefixes, r) {
		start = size
	}
	candidates = append(candidates, [2]int{start, end})
	// 'foo:' is a valid nick, which could be addressed as 'foo::'
	if r, size := utf8.DecodeLastRuneInString(word); start < end-size && strings.ContainsRune(look.NickSuffixes, r) {
		candidates = append(candidates, [2]int{start, end - size})
	}
	if start != 0 {
		// the prefix char may belong to the nick itself
		candidates = append(candidates, [2]int{0, end})
	}
	for _, candidate := range candidates {
		if entry, found = table[foldNick(word[candidate[0]:candidate[1]])]; found {
			return entry, candidate[0], candidate[1], true
		}
	}
	return
}

// nickSpans finds the nicks of buffer mentioned in stripped text.
func (c *Colorizer) nickSpans(state *State, buffer, stripped string) (spans []splice.Span) {
	table := state.nicks[buffer]
	if len(table) == 0 {
		return nil
	}
	look := &c.config.Look
	for _, word := range utils.SplitWords(stripped) {
		entry, start, end, found := c.lookupNick(table, stripped[word.Start:word.End])
		if !found {
			continue
		}
		nick := stripped[word.Start+start : word.Start+end]
		if look.ignoreNicks[foldNick(nick)] || utf8.RuneCountInString(nick) < look.MinNickLength {
			continue
		}
		// '@alice' where alice is an op: the mode char keeps its own color
		if start > 0 && entry.Prefix == stripped[word.Start:word.Start+start] {
			spans = append(spans, splice.Span{Start: word.Start, End: word.Start + start, Color: entry.PrefixColor})
		}
		spans = append(spans, splice.Span{Start: word.Start + start, End: word.Start + end, Color: entry.Color})
	}
	return
}
