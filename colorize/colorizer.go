// Copyright (c) 2025 hlcolor contributors
// released under the MIT license

// Package colorize recolors highlight matches and nick mentions in chat
// lines while keeping the colors the lines already carry.
package colorize

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/weechat-tools/hlcolor/colorize/logger"
	"github.com/weechat-tools/hlcolor/colorize/matcher"
	"github.com/weechat-tools/hlcolor/colorize/splice"
	"github.com/weechat-tools/hlcolor/colorize/wcolor"
)

var (
	// the first tag of lines that carry a user's message
	messageTags = map[string]bool{
		"irc_privmsg": true,
		"irc_notice":  true,
	}
)

// Colorizer is the colorizer instance. It must only be used from the host's
// dispatch thread.
type Colorizer struct {
	config *Config
	host   Host
	logger *logger.Manager
	state  *State
}

// NewColorizer returns a colorizer reading from host, with its caches
// loaded.
func NewColorizer(config *Config, host Host, logger *logger.Manager) *Colorizer {
	c := &Colorizer{
		config: config,
		host:   host,
		logger: logger,
	}
	c.reload()
	return c
}

// Config returns the active configuration.
func (c *Colorizer) Config() *Config {
	return c.config
}

// ApplyConfig switches to a new configuration and rebuilds every cache.
func (c *Colorizer) ApplyConfig(config *Config) {
	c.config = config
	c.reload()
	c.logger.Info("config", "Configuration applied")
}

// Register hooks the colorizer into the host.
func (c *Colorizer) Register(hooker Hooker) {
	hooker.HookLine(c.linePrinted)
	hooker.HookModifier(ModifierInputDisplay, c.inputDisplay)
	hooker.HookSignal(SignalNickAdded, c.nickAdded)
	hooker.HookSignal(SignalNickRemoved, c.nickRemoved)
	hooker.HookSignal(SignalNickChanged, c.nickAdded)
	hooker.HookSignal(SignalBufferClosing, c.bufferClosing)
	hooker.HookConfig("weechat.look.*", c.optionChanged)
	hooker.HookConfig("weechat.color.*", c.optionChanged)
	hooker.HookConfig(OptionNickPrefixes, c.optionChanged)
}

// optionChanged refreshes whatever depends on option.
func (c *Colorizer) optionChanged(option, value string) {
	state := c.state
	state.warned = make(map[string]bool)
	state.overrides = make(map[string]*matcher.Pattern)
	switch option {
	case OptionHighlightRegex:
		c.refreshPattern(state)
	case OptionWordChars:
		c.refreshWordChars(state)
	case OptionNickColors, OptionNickSelf, OptionNickColorHash, OptionNickPrefixes:
		c.populateNicks(state)
	default:
		if strings.HasPrefix(option, "weechat.color.") {
			// the highlight color may be an alias of this one
			c.refreshColor(state)
		}
		return
	}
	c.logger.Debug("config", "Refreshed", option, value)
}

func (c *Colorizer) linePrinted(line Line) {
	message, changed := c.ColorizeLine(line)
	if !changed {
		return
	}
	if err := c.host.UpdateLastLine(line.Buffer, message); err != nil {
		c.logger.Warning("colorize", "Could not update line", line.Buffer, err.Error())
	}
}

func (c *Colorizer) inputDisplay(modifierData, text string) string {
	return c.ColorizeInput(modifierData, text)
}

// isPrivateIRC reports whether buffer is an IRC query.
func (c *Colorizer) isPrivateIRC(buffer string) bool {
	return c.host.BufferString(buffer, PropertyPlugin) == pluginIRC &&
		c.host.BufferString(buffer, PropertyType) == bufferTypePrivate
}

// restricted reports whether buffer only accepts user messages.
func (c *Colorizer) restricted(buffer string) bool {
	return c.config.Look.IRCOnly || c.host.BufferString(buffer, PropertyPlugin) == pluginIRC
}

// skipReason returns why line must be left alone, or "".
func (c *Colorizer) skipReason(line Line) string {
	look := &c.config.Look
	if !(line.Highlight && look.colorizeHighlights()) && !look.ColorizeNicks {
		return "nothing to colorize"
	}
	if !line.Displayed && !look.ColorizeFilter {
		return "filtered"
	}
	if c.restricted(line.Buffer) {
		bufferType := c.host.BufferString(line.Buffer, PropertyType)
		if bufferType != bufferTypeChannel && bufferType != bufferTypePrivate {
			return "buffer type " + bufferType
		}
		if len(line.Tags) == 0 || !messageTags[line.Tags[0]] {
			return "not a user message"
		}
	}
	channel := c.host.BufferString(line.Buffer, PropertyChannel)
	if channel != "" && look.ignoreChannels.Match(channel) {
		return "ignored channel"
	}
	for _, tag := range line.Tags {
		if look.ignoreTags[tag] {
			return "ignored tag " + tag
		}
	}
	return ""
}

// ColorizeLine returns the message of line with its highlight matches and
// nick mentions recolored. changed is false when the message is returned
// as it was.
func (c *Colorizer) ColorizeLine(line Line) (message string, changed bool) {
	trace := c.newTrace(line.Buffer, line.Tags, line.Message)
	defer c.logTrace(trace)

	if reason := c.skipReason(line); reason != "" {
		trace.finish(pathSkip, reason, "")
		return line.Message, false
	}

	look := &c.config.Look
	if look.ColorizeNicks && c.isPrivateIRC(line.Buffer) {
		// queries have no nicklist to keep the table current
		c.privateNicks(c.state, line.Buffer)
	}
	highlight := line.Highlight && look.colorizeHighlights()
	return c.colorizeMessage(c.state, line.Buffer, line.Message, highlight, look.ColorizeNicks, trace)
}

// ColorizeInput colorizes the nicks of the input line of buffer.
func (c *Colorizer) ColorizeInput(buffer, text string) string {
	look := &c.config.Look
	if !look.ColorizeInput || text == "" {
		return text
	}
	if c.restricted(buffer) {
		bufferType := c.host.BufferString(buffer, PropertyType)
		if bufferType != bufferTypeChannel && bufferType != bufferTypePrivate {
			return text
		}
	}
	if c.isPrivateIRC(buffer) {
		c.privateNicks(c.state, buffer)
	}
	if len(c.state.nicks[buffer]) == 0 {
		return text
	}
	channel := c.host.BufferString(buffer, PropertyChannel)
	if channel != "" && look.ignoreChannels.Match(channel) {
		return text
	}

	if look.IRCDecodeInput && c.host.BufferString(buffer, PropertyPlugin) == pluginIRC {
		text = wcolor.FromIRC(text)
	}
	// the spell checker's end code would otherwise color the rest of the input
	tokens := wcolor.Tokenize(text)
	for i, tok := range tokens {
		if tok.Text == wcolor.SpellMissEnd {
			tokens[i] = wcolor.Token{Kind: wcolor.AttributeCode, Text: wcolor.ResetKeepAttrs}
		}
	}
	text = wcolor.Join(tokens)

	trace := c.newTrace(buffer, nil, text)
	defer c.logTrace(trace)
	result, _ := c.colorizeMessage(c.state, buffer, text, false, true, trace)
	return result
}

// colorizeMessage runs the pipeline on one message: strip, match, inject,
// splice. Every failure returns message unchanged.
func (c *Colorizer) colorizeMessage(state *State, buffer, message string, highlight, nicks bool, trace *Trace) (string, bool) {
	if c.config.Limits.MaxMessageLength < len(message) {
		trace.finish(pathSkip, "message too long", "")
		return message, false
	}

	stripped := c.host.StripColors(message)
	if trace != nil {
		trace.Stripped = stripped
	}
	if !utf8.ValidString(stripped) || strings.Contains(stripped, splice.Sentinel) {
		c.logger.Debug("colorize", "Passing message through", buffer, errDecode.Error())
		trace.finish(pathPassthrough, errDecode.Error(), "")
		return message, false
	}

	var spans []splice.Span
	if highlight {
		spans = c.highlightSpans(state, buffer, stripped, trace)
	}
	if nicks {
		nickSpans := c.nickSpans(state, buffer, stripped)
		trace.addSpans("nick", nickSpans)
		spans = mergeSpans(spans, nickSpans)
	}
	if len(spans) == 0 {
		trace.finish(pathNoMatch, "", "")
		return message, false
	}

	if !wcolor.HasColors(message) {
		// nothing to preserve
		result := splice.Highlight(stripped, spans)
		trace.finish(pathFast, "", result)
		return result, true
	}

	marked := splice.Inject(stripped, spans)
	if trace != nil {
		trace.Marked = marked.Text
	}
	result, err := splice.Splice(wcolor.Tokenize(message), marked)
	if err != nil {
		c.logger.Debug("colorize", "Passing message through", buffer, err.Error())
		trace.finish(pathPassthrough, err.Error(), "")
		return message, false
	}
	trace.finish(pathSplice, "", result)
	return result, result != message
}

// highlightSpans returns the highlight matches of stripped, colored with
// the highlight color. The buffer's own pattern wins over the global one.
func (c *Colorizer) highlightSpans(state *State, buffer, stripped string, trace *Trace) []splice.Span {
	var override *matcher.Pattern
	if source := c.host.BufferString(buffer, PropertyHighlightRegex); source != "" {
		override = c.overridePattern(state, buffer, source)
	}
	sel, ok := matcher.Select(stripped, state.pattern, override, state.wordChars)
	if !ok {
		return nil
	}
	spans := make([]splice.Span, len(sel.Spans))
	for i, span := range sel.Spans {
		spans[i] = splice.Span{Start: span.Start, End: span.End, Color: state.color}
	}
	if trace != nil {
		trace.Pattern = sel.Pattern.Source
		trace.Override = sel.Override
		trace.addSpans("highlight", spans)
	}
	return spans
}

// mergeSpans adds the nick spans that don't touch a highlight span.
func mergeSpans(highlights, nicks []splice.Span) []splice.Span {
	if len(nicks) == 0 {
		return highlights
	}
	result := make([]splice.Span, 0, len(highlights)+len(nicks))
	result = append(result, highlights...)
	for _, nick := range nicks {
		overlaps := false
		for _, hl := range highlights {
			if nick.Start < hl.End && hl.Start < nick.End {
				overlaps = true
				break
			}
		}
		if !overlaps {
			result = append(result, nick)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Start < result[j].Start
	})
	return result
}
