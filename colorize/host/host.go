// Copyright (c) 2025 hlcolor contributors
// released under the MIT license

// Package host is a small in-memory chat client: buffers with their lines
// and nicklists, options, and hook dispatch. It implements colorize.Host
// and colorize.Hooker so the colorizer can run outside of a real client.
//
// A Host is not safe for concurrent use; hooks run synchronously, in
// registration order, on the goroutine that triggered them.
package host

import (
	"errors"
	"regexp"
	"sort"
	"strings"

	"github.com/weechat-tools/hlcolor/colorize"
	"github.com/weechat-tools/hlcolor/colorize/kv"
	"github.com/weechat-tools/hlcolor/colorize/logger"
	"github.com/weechat-tools/hlcolor/colorize/matcher"
	"github.com/weechat-tools/hlcolor/colorize/utils"
	"github.com/weechat-tools/hlcolor/colorize/wcolor"
)

var (
	errNoSuchBuffer    = errors.New("No such buffer")
	errNoSuchNick      = errors.New("No such nick")
	errNoLines         = errors.New("Buffer has no lines")
	errBadMask         = errors.New("Invalid option mask")
	errReadOnly        = errors.New("Property is read-only")
	errNotEnoughParams = errors.New("Not enough parameters")
)

const (
	// CoreBuffer is always open.
	CoreBuffer = "core.weechat"

	defaultServer = "server"
	defaultNick   = "me"
)

var defaultOptions = map[string]string{
	colorize.OptionHighlightRegex: "",
	colorize.OptionWordChars:      matcher.DefaultWordChars,
	colorize.OptionNickColors:     "cyan,magenta,green,brown,lightblue,default,lightcyan,lightmagenta,lightgreen,blue",
	colorize.OptionNickSelf:       "white",
	colorize.OptionNickColorHash:  "djb2",
	colorize.OptionNickPrefixes:   "y:lightred;q:lightred;a:lightcyan;o:lightgreen;h:lightmagenta;v:yellow;*:lightblue",
}

// channel modes by rank, and the prefix each one shows in the nicklist
const (
	memberModes    = "qaohv"
	memberPrefixes = "~&@%+"
)

type configHook struct {
	mask     *regexp.Regexp
	callback func(option, value string)
}

// Host is the in-memory client.
type Host struct {
	server  string
	nick    string
	store   kv.Store
	logger  *logger.Manager
	options map[string]string
	buffers map[string]*Buffer
	order   []string
	filters utils.GlobSet

	lineHooks     []func(line colorize.Line)
	modifierHooks map[string][]func(modifierData, text string) string
	signalHooks   map[string][]func(signalData string)
	configHooks   []configHook
}

// New returns a host seeded from config.Host. Buffer properties that
// outlive a run are kept in store.
func New(config *colorize.Config, store kv.Store, logger *logger.Manager) *Host {
	h := &Host{
		server:        config.Host.Server,
		nick:          config.Host.Nick,
		store:         store,
		logger:        logger,
		options:       make(map[string]string),
		buffers:       make(map[string]*Buffer),
		modifierHooks: make(map[string][]func(string, string) string),
		signalHooks:   make(map[string][]func(string)),
	}
	if h.server == "" {
		h.server = defaultServer
	}
	if h.nick == "" {
		h.nick = defaultNick
	}
	for option, value := range defaultOptions {
		h.options[option] = value
	}
	for option, value := range config.Host.Options {
		h.options[option] = value
	}
	h.OpenBuffer("core", "weechat", "formatted", nil)
	return h
}

// Nick returns our own nick.
func (h *Host) Nick() string {
	return h.nick
}

// SetOption sets a host option and notifies the config hooks watching it.
func (h *Host) SetOption(option, value string) {
	h.options[option] = value
	h.logger.Debug("host", "Option changed", option, value)
	for _, hook := range h.configHooks {
		if hook.mask.MatchString(option) {
			hook.callback(option, value)
		}
	}
}

// AddFilter hides lines whose stripped message matches mask.
func (h *Host) AddFilter(mask string) error {
	re, err := utils.CompileGlob(mask, true)
	if err != nil {
		return err
	}
	h.filters = append(h.filters, re)
	return nil
}

// Modify runs text through the hooks of modifier.
func (h *Host) Modify(modifier, modifierData, text string) string {
	for _, hook := range h.modifierHooks[modifier] {
		text = hook(modifierData, text)
	}
	return text
}

// InputDisplay returns how the input line of buffer is displayed.
func (h *Host) InputDisplay(buffer, text string) string {
	return h.Modify(colorize.ModifierInputDisplay, buffer, text)
}

func (h *Host) sendSignal(signal, signalData string) {
	for _, hook := range h.signalHooks[signal] {
		hook(signalData)
	}
}

// colorize.Hooker

func (h *Host) HookLine(callback func(line colorize.Line)) {
	h.lineHooks = append(h.lineHooks, callback)
}

func (h *Host) HookModifier(modifier string, callback func(modifierData, text string) string) {
	h.modifierHooks[modifier] = append(h.modifierHooks[modifier], callback)
}

func (h *Host) HookSignal(signal string, callback func(signalData string)) {
	h.signalHooks[signal] = append(h.signalHooks[signal], callback)
}

func (h *Host) HookConfig(mask string, callback func(option, value string)) {
	re, err := utils.CompileGlob(mask, false)
	if err != nil {
		h.logger.Error("host", errBadMask.Error(), mask, err.Error())
		return
	}
	h.configHooks = append(h.configHooks, configHook{mask: re, callback: callback})
}

// colorize.Host

func (h *Host) StripColors(text string) string {
	return wcolor.Strip(text)
}

// Color resolves a color name. Option colors (chat_highlight, ...) follow
// their weechat.color option when it is set.
func (h *Host) Color(name string) (string, error) {
	if value, ok := h.options["weechat.color."+name]; ok && value != "" && value != name {
		return wcolor.Resolve(value)
	}
	return wcolor.Resolve(name)
}

func (h *Host) ConfigString(option string) string {
	return h.options[option]
}

// NickColor picks the color of nick from weechat.color.chat_nick_colors by
// hashing the nick with weechat.look.nick_color_hash.
func (h *Host) NickColor(buffer, nick string) string {
	colors := utils.SplitList(h.options[colorize.OptionNickColors])
	if len(colors) == 0 {
		return wcolor.ResetKeepAttrs
	}
	var hash uint64
	switch h.options[colorize.OptionNickColorHash] {
	case "sum":
		hash = sum(nick)
	default:
		hash = djb2(nick)
	}
	color, err := wcolor.Resolve(colors[hash%uint64(len(colors))])
	if err != nil {
		h.logger.Debug("host", "Bad nick color", err.Error())
		return wcolor.ResetKeepAttrs
	}
	return color
}

func djb2(str string) (hash uint64) {
	hash = 5381
	for _, r := range str {
		hash = hash*33 + uint64(r)
	}
	return
}

func sum(str string) (hash uint64) {
	for _, r := range str {
		hash += uint64(r)
	}
	return
}

// NickPrefix returns the prefix of the highest channel mode of nick and
// its color from irc.color.nick_prefixes, "mode:color" pairs where "*"
// covers the modes not listed.
func (h *Host) NickPrefix(buffer, nick string) (prefix, color string) {
	buf := h.buffers[buffer]
	if buf == nil {
		return
	}
	i := buf.find(nick)
	if i < 0 {
		return
	}
	rank := strings.IndexAny(memberModes, buf.nicks[i].modes)
	if rank < 0 {
		return
	}
	mode := memberModes[rank : rank+1]
	var name, fallback string
	for _, pair := range strings.Split(h.options[colorize.OptionNickPrefixes], ";") {
		key, value, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}
		switch key {
		case mode:
			name = value
		case "*":
			fallback = value
		}
	}
	if name == "" {
		name = fallback
	}
	if name == "" {
		return
	}
	color, err := h.Color(name)
	if err != nil {
		h.logger.Debug("host", "Bad nick prefix color", name, err.Error())
		return "", ""
	}
	return memberPrefixes[rank : rank+1], color
}

func (h *Host) Buffers() []string {
	result := make([]string, len(h.order))
	copy(result, h.order)
	return result
}

func (h *Host) Nicklist(buffer string) []string {
	buf := h.buffers[buffer]
	if buf == nil {
		return nil
	}
	result := make([]string, len(buf.nicks))
	for i, m := range buf.nicks {
		result[i] = m.nick
	}
	sort.Strings(result)
	return result
}

func (h *Host) UpdateLastLine(buffer, message string) error {
	buf := h.buffers[buffer]
	if buf == nil {
		return errNoSuchBuffer
	}
	if len(buf.lines) == 0 {
		return errNoLines
	}
	buf.lines[len(buf.lines)-1].Message = message
	return nil
}

// sameNick compares nicks the way the colorizer's nick table does.
func sameNick(a, b string) bool {
	foldedA, errA := colorize.Casefold(a)
	foldedB, errB := colorize.Casefold(b)
	if errA != nil || errB != nil {
		return strings.EqualFold(a, b)
	}
	return foldedA == foldedB
}
