// Copyright (c) 2025 hlcolor contributors
// released under the MIT license

package host

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/weechat-tools/hlcolor/colorize"
	"github.com/weechat-tools/hlcolor/colorize/kv"
	"github.com/weechat-tools/hlcolor/colorize/matcher"
	"github.com/weechat-tools/hlcolor/colorize/wcolor"
)

// Buffer is a buffer: its properties, nicklist and printed lines.
type Buffer struct {
	properties map[string]string
	nicks      []member
	lines      []colorize.Line
}

// member is a nicklist entry with its channel modes, from "qaohv".
type member struct {
	nick  string
	modes string
}

// find returns the index of nick in the nicklist, or -1.
func (b *Buffer) find(nick string) int {
	for i, m := range b.nicks {
		if sameNick(m.nick, nick) {
			return i
		}
	}
	return -1
}

// properties kept in the datastore
var persistentProperties = map[string]bool{
	colorize.PropertyHighlightRegex: true,
}

func propertyKey(buffer, property string) string {
	return fmt.Sprintf("buffer.%s.%s", buffer, property)
}

// OpenBuffer opens the buffer plugin.name, unless it is open already, and
// returns its full name.
func (h *Host) OpenBuffer(plugin, name, bufferType string, localvars map[string]string) string {
	fullName := plugin + "." + name
	if h.buffers[fullName] != nil {
		return fullName
	}
	buf := &Buffer{
		properties: map[string]string{
			colorize.PropertyPlugin:   plugin,
			colorize.PropertyName:     name,
			colorize.PropertyFullName: fullName,
			colorize.PropertyType:     bufferType,
		},
	}
	for key, value := range localvars {
		buf.properties["localvar_"+key] = value
	}
	h.buffers[fullName] = buf
	h.order = append(h.order, fullName)
	h.logger.Debug("host", "Opened buffer", fullName)
	return fullName
}

// OpenChannel opens the IRC buffer of channel.
func (h *Host) OpenChannel(channel string) string {
	return h.OpenBuffer("irc", h.server+"."+channel, "channel", map[string]string{
		"channel": channel,
		"nick":    h.nick,
		"server":  h.server,
	})
}

// OpenQuery opens the IRC buffer of a private conversation with nick.
func (h *Host) OpenQuery(nick string) string {
	return h.OpenBuffer("irc", h.server+"."+nick, "private", map[string]string{
		"channel": nick,
		"nick":    h.nick,
		"server":  h.server,
	})
}

// CloseBuffer closes buffer, after notifying buffer_closing hooks.
func (h *Host) CloseBuffer(buffer string) error {
	if h.buffers[buffer] == nil || buffer == CoreBuffer {
		return errNoSuchBuffer
	}
	h.sendSignal(colorize.SignalBufferClosing, buffer)
	delete(h.buffers, buffer)
	for i, name := range h.order {
		if name == buffer {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
	h.logger.Debug("host", "Closed buffer", buffer)
	return nil
}

// BufferString returns a property of buffer. Persistent properties are
// readable even when the buffer isn't open.
func (h *Host) BufferString(buffer, property string) string {
	if persistentProperties[property] {
		var value string
		err := h.store.View(func(tx kv.Tx) (err error) {
			value, err = tx.Get(propertyKey(buffer, property))
			return
		})
		if err != nil && !errors.Is(err, kv.ErrNotFound) {
			h.logger.Error("datastore", "Could not read buffer property", buffer, property, err.Error())
		}
		return value
	}
	if buf := h.buffers[buffer]; buf != nil {
		return buf.properties[property]
	}
	return ""
}

// SetBufferProperty sets a property of buffer. An empty value deletes a
// persistent property.
func (h *Host) SetBufferProperty(buffer, property, value string) error {
	if persistentProperties[property] {
		key := propertyKey(buffer, property)
		err := h.store.Update(func(tx kv.Tx) (err error) {
			if value == "" {
				_, err = tx.Delete(key)
				if errors.Is(err, kv.ErrNotFound) {
					err = nil
				}
			} else {
				_, _, err = tx.Set(key, value)
			}
			return
		})
		if err != nil {
			return fmt.Errorf("could not store %s: %w", key, err)
		}
		h.logger.Debug("datastore", "Stored buffer property", buffer, property, value)
		return nil
	}
	buf := h.buffers[buffer]
	if buf == nil {
		return errNoSuchBuffer
	}
	switch property {
	case colorize.PropertyPlugin, colorize.PropertyName, colorize.PropertyFullName:
		return errReadOnly
	}
	buf.properties[property] = value
	return nil
}

// StoredProperties lists the persistent properties of every buffer, open
// or not, as buffer -> property -> value.
func (h *Host) StoredProperties() (result map[string]map[string]string, err error) {
	result = make(map[string]map[string]string)
	keyRe := regexp.MustCompile(`^buffer\.(.+)\.([a-z_]+)$`)
	err = h.store.View(func(tx kv.Tx) error {
		return tx.AscendKeys("buffer.*", func(key, value string) bool {
			if match := keyRe.FindStringSubmatch(key); match != nil {
				if result[match[1]] == nil {
					result[match[1]] = make(map[string]string)
				}
				result[match[1]][match[2]] = value
			}
			return true
		})
	})
	return
}

// AddNick adds nick to the nicklist of buffer.
func (h *Host) AddNick(buffer, nick string) error {
	return h.AddMember(buffer, nick, "")
}

// AddMember adds nick to the nicklist of buffer with channel modes, given
// as mode letters ("o", "v", ...). A nick already present keeps its entry;
// non-empty modes replace the ones it had, as a fresh NAMES reply does.
func (h *Host) AddMember(buffer, nick, modes string) error {
	buf := h.buffers[buffer]
	if buf == nil {
		return errNoSuchBuffer
	}
	if i := buf.find(nick); i >= 0 {
		if modes != "" && modes != buf.nicks[i].modes {
			buf.nicks[i].modes = modes
			h.sendSignal(colorize.SignalNickChanged, buffer+","+buf.nicks[i].nick)
		}
		return nil
	}
	buf.nicks = append(buf.nicks, member{nick: nick, modes: modes})
	h.sendSignal(colorize.SignalNickAdded, buffer+","+nick)
	return nil
}

// AddName adds a nick written the way RPL_NAMREPLY lists it, with the
// prefixes of its channel modes in front: "@+alice".
func (h *Host) AddName(buffer, name string) error {
	var modes strings.Builder
	for len(name) > 0 {
		rank := strings.IndexByte(memberPrefixes, name[0])
		if rank < 0 {
			break
		}
		modes.WriteByte(memberModes[rank])
		name = name[1:]
	}
	if name == "" {
		return nil
	}
	return h.AddMember(buffer, name, modes.String())
}

// SetMemberMode gives or takes a channel mode of nick in buffer.
func (h *Host) SetMemberMode(buffer, nick string, mode rune, set bool) error {
	buf := h.buffers[buffer]
	if buf == nil {
		return errNoSuchBuffer
	}
	i := buf.find(nick)
	if i < 0 {
		return errNoSuchNick
	}
	modes := strings.ReplaceAll(buf.nicks[i].modes, string(mode), "")
	if set {
		modes += string(mode)
	}
	if modes == buf.nicks[i].modes {
		return nil
	}
	buf.nicks[i].modes = modes
	h.sendSignal(colorize.SignalNickChanged, buffer+","+buf.nicks[i].nick)
	return nil
}

// RemoveNick removes nick from the nicklist of buffer. It reports whether
// the nick was present.
func (h *Host) RemoveNick(buffer, nick string) bool {
	_, ok := h.removeMember(buffer, nick)
	return ok
}

func (h *Host) removeMember(buffer, nick string) (removed member, ok bool) {
	buf := h.buffers[buffer]
	if buf == nil {
		return
	}
	i := buf.find(nick)
	if i < 0 {
		return
	}
	removed = buf.nicks[i]
	buf.nicks = append(buf.nicks[:i], buf.nicks[i+1:]...)
	h.sendSignal(colorize.SignalNickRemoved, buffer+","+removed.nick)
	return removed, true
}

// PrintLine prints a line into buffer, runs the line hooks, and returns the
// line as stored afterwards.
func (h *Host) PrintLine(buffer string, tags []string, prefix, message string) (colorize.Line, error) {
	buf := h.buffers[buffer]
	if buf == nil {
		return colorize.Line{}, errNoSuchBuffer
	}
	stripped := wcolor.Strip(message)
	line := colorize.Line{
		Buffer:    buffer,
		Tags:      tags,
		Prefix:    prefix,
		Message:   message,
		Highlight: h.highlights(buffer, tags, stripped),
		Displayed: !h.filters.Match(stripped),
	}
	buf.lines = append(buf.lines, line)
	for _, hook := range h.lineHooks {
		hook(line)
	}
	return buf.lines[len(buf.lines)-1], nil
}

// Lines returns the lines of buffer.
func (h *Host) Lines(buffer string) []colorize.Line {
	buf := h.buffers[buffer]
	if buf == nil {
		return nil
	}
	result := make([]colorize.Line, len(buf.lines))
	copy(result, buf.lines)
	return result
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// highlights decides whether a line highlights us: our nick, the buffer's
// highlight pattern or the global one. Our own messages never do.
func (h *Host) highlights(buffer string, tags []string, stripped string) bool {
	if hasTag(tags, "self_msg") || hasTag(tags, "notify_none") {
		return false
	}
	wordChars, err := matcher.ParseWordChars(h.options[colorize.OptionWordChars])
	if err != nil {
		wordChars, _ = matcher.ParseWordChars(matcher.DefaultWordChars)
	}
	sources := []string{
		h.BufferString(buffer, colorize.PropertyHighlightRegex),
		h.options[colorize.OptionHighlightRegex],
	}
	nick := h.BufferString(buffer, colorize.PropertyNick)
	if nick == "" {
		nick = h.nick
	}
	sources = append(sources, regexp.QuoteMeta(nick))
	for _, source := range sources {
		if source == "" {
			continue
		}
		pattern, err := matcher.Compile(source)
		if err != nil {
			continue
		}
		if pattern.Match(stripped, wordChars) {
			return true
		}
	}
	return false
}
