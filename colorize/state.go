// Copyright (c) 2025 hlcolor contributors
// released under the MIT license

package colorize

import (
	"fmt"

	"github.com/weechat-tools/hlcolor/colorize/matcher"
	"github.com/weechat-tools/hlcolor/colorize/wcolor"
)

// State is everything the colorizer caches between lines. It changes only
// when the host reports a configuration or nicklist change.
type State struct {
	// global highlight pattern; nil when unset or invalid
	pattern   *matcher.Pattern
	color     string
	wordChars matcher.WordChars
	// per-buffer highlight patterns by source; nil marks an invalid one
	overrides map[string]*matcher.Pattern
	// buffer -> folded nick -> entry
	nicks map[string]nickTable
	// problems already reported since the last configuration change
	warned map[string]bool
}

func newState() *State {
	return &State{
		overrides: make(map[string]*matcher.Pattern),
		nicks:     make(map[string]nickTable),
		warned:    make(map[string]bool),
	}
}

// warnOnce logs a configuration problem unless it was already reported.
func (c *Colorizer) warnOnce(state *State, key string, messageParts ...string) {
	if state.warned[key] {
		return
	}
	state.warned[key] = true
	c.logger.Warning("config", messageParts...)
}

// refreshPattern recompiles the global highlight pattern.
func (c *Colorizer) refreshPattern(state *State) {
	source := c.host.ConfigString(OptionHighlightRegex)
	if source == "" {
		state.pattern = nil
		return
	}
	pattern, err := matcher.Compile(source)
	if err != nil {
		c.warnOnce(state, "pattern:"+source, "Invalid highlight pattern", OptionHighlightRegex, source, err.Error())
		state.pattern = nil
		return
	}
	state.pattern = pattern
}

// refreshWordChars reparses the word characters used for match boundaries.
func (c *Colorizer) refreshWordChars(state *State) {
	list := c.host.ConfigString(OptionWordChars)
	if list == "" {
		list = matcher.DefaultWordChars
	}
	wordChars, err := matcher.ParseWordChars(list)
	if err != nil {
		c.warnOnce(state, "wordchars:"+list, "Invalid word characters", OptionWordChars, list, err.Error())
		wordChars, _ = matcher.ParseWordChars(matcher.DefaultWordChars)
	}
	state.wordChars = wordChars
}

// refreshColor resolves the highlight color, falling back to the host's own
// highlight color.
func (c *Colorizer) refreshColor(state *State) {
	name := c.config.Look.HighlightColor
	color, err := c.host.Color(name)
	if err == nil && color != "" {
		state.color = color
		return
	}
	if err == nil {
		err = errUnknownColor
	}
	c.warnOnce(state, "color:"+name, "Unknown highlight color", name, fmt.Sprintf("using %s: %s", defaultHighlightColor, err.Error()))
	state.color, err = c.host.Color(defaultHighlightColor)
	if err != nil || state.color == "" {
		state.color, _ = wcolor.Resolve(defaultHighlightColor)
	}
}

// overridePattern compiles a per-buffer highlight pattern, once per source.
func (c *Colorizer) overridePattern(state *State, buffer, source string) *matcher.Pattern {
	if pattern, ok := state.overrides[source]; ok {
		return pattern
	}
	pattern, err := matcher.Compile(source)
	if err != nil {
		c.warnOnce(state, "override:"+source, "Invalid buffer highlight pattern", buffer, source, err.Error())
		pattern = nil
	}
	state.overrides[source] = pattern
	return pattern
}

// reload rebuilds every cached value.
func (c *Colorizer) reload() {
	state := newState()
	c.refreshPattern(state)
	c.refreshWordChars(state)
	c.refreshColor(state)
	c.populateNicks(state)
	c.state = state
}
