// Copyright (c) 2025 hlcolor contributors
// released under the MIT license

package host

import (
	"bytes"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/weechat-tools/hlcolor/colorize"
	"github.com/weechat-tools/hlcolor/colorize/kv"
	"github.com/weechat-tools/hlcolor/colorize/logger"
	"github.com/weechat-tools/hlcolor/colorize/wcolor"
)

const testConfig = `
datastore:
    path: ":memory:"

host:
    server: libera
    nick: me
    options:
        weechat.look.highlight_regex: "weechat"

look:
    highlight-color: yellow
    colorize-nicks: true
    colorize-input: true
    irc-decode-input: true
`

const testChannel = "irc.libera.#test"

func assertEqual(supplied, expected interface{}, t *testing.T) {
	t.Helper()
	if !reflect.DeepEqual(supplied, expected) {
		t.Errorf("expected %q but got %q", expected, supplied)
	}
}

func mustResolve(name string) string {
	color, err := wcolor.Resolve(name)
	if err != nil {
		panic(err)
	}
	return color
}

var hl = mustResolve("yellow")

type testEnv struct {
	host      *Host
	colorizer *colorize.Colorizer
	log       *bytes.Buffer
}

// newTestEnvWithStore builds a host with a registered colorizer. configure
// may only touch options without derived state.
func newTestEnvWithStore(t *testing.T, store kv.Store, configure func(*colorize.Config)) *testEnv {
	t.Helper()
	config, err := colorize.ParseConfig([]byte(testConfig))
	if err != nil {
		t.Fatal(err)
	}
	if configure != nil {
		configure(config)
	}
	var buf bytes.Buffer
	log := logger.NewWriterManager(&buf, logger.LogDebug)
	h := New(config, store, log)
	c := colorize.NewColorizer(config, h, log)
	c.Register(h)
	return &testEnv{host: h, colorizer: c, log: &buf}
}

func newTestEnv(t *testing.T, configure func(*colorize.Config)) *testEnv {
	t.Helper()
	store, err := kv.BuntdbOpen(kv.InMemory)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return newTestEnvWithStore(t, store, configure)
}

// joinTest opens #test with alice, bob and ourselves in it.
func (env *testEnv) joinTest(t *testing.T) string {
	t.Helper()
	buffer := env.host.OpenChannel("#test")
	for _, nick := range []string{"alice", "bob", "me"} {
		if err := env.host.AddNick(buffer, nick); err != nil {
			t.Fatal(err)
		}
	}
	return buffer
}

func privmsg(nick string) []string {
	return []string{"irc_privmsg", "notify_message", "nick_" + nick, "log1"}
}

func TestPrintLineHighlight(t *testing.T) {
	env := newTestEnv(t, nil)
	buffer := env.host.OpenChannel("#test")
	assertEqual(buffer, testChannel, t)

	line, err := env.host.PrintLine(buffer, privmsg("carol"), "carol", "hey weechat fans")
	if err != nil {
		t.Fatal(err)
	}
	assertEqual(line.Highlight, true, t)
	assertEqual(line.Message, "hey "+hl+"weechat"+wcolor.Reset+" fans", t)

	lines := env.host.Lines(buffer)
	assertEqual(len(lines), 1, t)
	assertEqual(lines[0].Message, line.Message, t)

	// no match, no highlight, nothing changes
	line, _ = env.host.PrintLine(buffer, privmsg("carol"), "carol", "hello there")
	assertEqual(line.Highlight, false, t)
	assertEqual(line.Message, "hello there", t)
}

func TestOwnNickHighlights(t *testing.T) {
	env := newTestEnv(t, nil)
	buffer := env.host.OpenChannel("#test")

	line, _ := env.host.PrintLine(buffer, privmsg("carol"), "carol", "ME: ping")
	assertEqual(line.Highlight, true, t)
	// our nick isn't in the nicklist and the pattern doesn't match it
	assertEqual(line.Message, "ME: ping", t)

	// our own messages never highlight
	tags := append(privmsg("me"), "self_msg", "notify_none")
	line, _ = env.host.PrintLine(buffer, tags, "me", "weechat")
	assertEqual(line.Highlight, false, t)
	assertEqual(line.Message, "weechat", t)
}

func TestBufferPatternOverride(t *testing.T) {
	env := newTestEnv(t, nil)
	buffer := env.host.OpenChannel("#test")

	if err := env.host.SetBufferProperty(buffer, colorize.PropertyHighlightRegex, "fans"); err != nil {
		t.Fatal(err)
	}
	assertEqual(env.host.BufferString(buffer, colorize.PropertyHighlightRegex), "fans", t)

	line, _ := env.host.PrintLine(buffer, privmsg("carol"), "carol", "weechat fans")
	assertEqual(line.Message, "weechat "+hl+"fans"+wcolor.Reset, t)

	stored, err := env.host.StoredProperties()
	if err != nil {
		t.Fatal(err)
	}
	assertEqual(stored, map[string]map[string]string{testChannel: {"highlight_regex": "fans"}}, t)

	// clearing the override brings back the global pattern
	if err := env.host.SetBufferProperty(buffer, colorize.PropertyHighlightRegex, ""); err != nil {
		t.Fatal(err)
	}
	assertEqual(env.host.BufferString(buffer, colorize.PropertyHighlightRegex), "", t)
	line, _ = env.host.PrintLine(buffer, privmsg("carol"), "carol", "weechat fans")
	assertEqual(line.Message, hl+"weechat"+wcolor.Reset+" fans", t)
}

func TestBufferPatternPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hlcolor.db")
	store, err := kv.BuntdbOpen(path)
	if err != nil {
		t.Fatal(err)
	}
	env := newTestEnvWithStore(t, store, nil)
	if err := env.host.SetBufferProperty(testChannel, colorize.PropertyHighlightRegex, "fans"); err != nil {
		t.Fatal(err)
	}
	store.Close()

	store, err = kv.BuntdbOpen(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	env = newTestEnvWithStore(t, store, nil)
	// readable before the buffer is even open
	assertEqual(env.host.BufferString(testChannel, colorize.PropertyHighlightRegex), "fans", t)
	buffer := env.host.OpenChannel("#test")
	line, _ := env.host.PrintLine(buffer, privmsg("carol"), "carol", "weechat fans")
	assertEqual(line.Message, "weechat "+hl+"fans"+wcolor.Reset, t)
}

func TestBufferProperties(t *testing.T) {
	env := newTestEnv(t, nil)
	buffer := env.host.OpenChannel("#test")
	assertEqual(env.host.BufferString(buffer, colorize.PropertyPlugin), "irc", t)
	assertEqual(env.host.BufferString(buffer, colorize.PropertyName), "libera.#test", t)
	assertEqual(env.host.BufferString(buffer, colorize.PropertyType), "channel", t)
	assertEqual(env.host.BufferString(buffer, colorize.PropertyChannel), "#test", t)
	assertEqual(env.host.BufferString(buffer, colorize.PropertyNick), "me", t)
	assertEqual(env.host.BufferString("irc.libera.#nowhere", colorize.PropertyType), "", t)

	assertEqual(env.host.SetBufferProperty(buffer, colorize.PropertyFullName, "x"), errReadOnly, t)
	assertEqual(env.host.SetBufferProperty("irc.libera.#nowhere", colorize.PropertyType, "x"), errNoSuchBuffer, t)
	assertEqual(env.host.SetBufferProperty(buffer, "localvar_away", "lunch"), nil, t)
	assertEqual(env.host.BufferString(buffer, "localvar_away"), "lunch", t)

	// opening twice is a no-op
	assertEqual(env.host.OpenChannel("#test"), buffer, t)
	assertEqual(env.host.Buffers(), []string{CoreBuffer, buffer}, t)
}

func TestNickColors(t *testing.T) {
	env := newTestEnv(t, nil)
	buffer := env.joinTest(t)
	assertEqual(env.host.Nicklist(buffer), []string{"alice", "bob", "me"}, t)

	alice := env.host.NickColor(buffer, "alice")
	self := mustResolve("white")
	line, _ := env.host.PrintLine(buffer, privmsg("bob"), "bob", "alice: ask me")
	assertEqual(line.Message, alice+"alice"+wcolor.Reset+": ask "+self+"me"+wcolor.Reset, t)

	// the highlight wins where both apply
	env.host.SetOption(colorize.OptionHighlightRegex, "alice")
	line, _ = env.host.PrintLine(buffer, privmsg("bob"), "bob", "alice: hi")
	assertEqual(line.Highlight, true, t)
	assertEqual(line.Message, hl+"alice"+wcolor.Reset+": hi", t)
}

func TestNicklistSignals(t *testing.T) {
	env := newTestEnv(t, nil)
	buffer := env.joinTest(t)

	assertEqual(env.host.RemoveNick(buffer, "ALICE"), true, t)
	assertEqual(env.host.RemoveNick(buffer, "alice"), false, t)
	line, _ := env.host.PrintLine(buffer, privmsg("bob"), "bob", "alice left")
	assertEqual(line.Message, "alice left", t)

	env.host.AddNick(buffer, "carol")
	carol := env.host.NickColor(buffer, "carol")
	line, _ = env.host.PrintLine(buffer, privmsg("bob"), "bob", "hi carol")
	assertEqual(line.Message, "hi "+carol+"carol"+wcolor.Reset, t)

	assertEqual(env.host.AddNick("irc.libera.#nowhere", "carol"), errNoSuchBuffer, t)
}

func TestAddNickCasefolded(t *testing.T) {
	env := newTestEnv(t, nil)
	buffer := env.host.OpenChannel("#test")
	var added []string
	env.host.HookSignal(colorize.SignalNickAdded, func(data string) {
		added = append(added, data)
	})

	assertEqual(env.host.AddNick(buffer, "Alice"), nil, t)
	assertEqual(env.host.AddNick(buffer, "alice"), nil, t)
	assertEqual(env.host.Nicklist(buffer), []string{"Alice"}, t)
	assertEqual(added, []string{buffer + ",Alice"}, t)

	// a single removal empties the nicklist
	assertEqual(env.host.RemoveNick(buffer, "ALICE"), true, t)
	assertEqual(env.host.RemoveNick(buffer, "alice"), false, t)
	assertEqual(env.host.Nicklist(buffer), []string{}, t)
}

func TestNickPrefixes(t *testing.T) {
	env := newTestEnv(t, nil)
	buffer := env.host.OpenChannel("#test")
	if err := env.host.AddMember(buffer, "alice", "vo"); err != nil {
		t.Fatal(err)
	}
	if err := env.host.AddNick(buffer, "bob"); err != nil {
		t.Fatal(err)
	}
	op := mustResolve("lightgreen")
	prefix, color := env.host.NickPrefix(buffer, "ALICE")
	assertEqual(prefix, "@", t)
	assertEqual(color, op, t)
	prefix, color = env.host.NickPrefix(buffer, "bob")
	assertEqual(prefix+color, "", t)

	alice := env.host.NickColor(buffer, "alice")
	line, _ := env.host.PrintLine(buffer, privmsg("bob"), "bob", "@alice: +alice")
	assertEqual(line.Message, op+"@"+wcolor.Reset+alice+"alice"+wcolor.Reset+": +"+alice+"alice"+wcolor.Reset, t)

	// a deop reaches the nick table through nicklist_nick_changed
	assertEqual(env.host.SetMemberMode(buffer, "alice", 'o', false), nil, t)
	voice := mustResolve("yellow")
	line, _ = env.host.PrintLine(buffer, privmsg("bob"), "bob", "+alice @alice")
	assertEqual(line.Message, voice+"+"+wcolor.Reset+alice+"alice"+wcolor.Reset+" @"+alice+"alice"+wcolor.Reset, t)

	env.host.SetOption(colorize.OptionNickPrefixes, "v:red")
	line, _ = env.host.PrintLine(buffer, privmsg("bob"), "bob", "+alice")
	assertEqual(line.Message, mustResolve("red")+"+"+wcolor.Reset+alice+"alice"+wcolor.Reset, t)

	// no color for the mode and no "*": the prefix stays as it is
	env.host.SetOption(colorize.OptionNickPrefixes, "o:red")
	line, _ = env.host.PrintLine(buffer, privmsg("bob"), "bob", "+alice")
	assertEqual(line.Message, "+"+alice+"alice"+wcolor.Reset, t)

	assertEqual(env.host.SetMemberMode(buffer, "nobody", 'o', true), errNoSuchNick, t)
}

func TestCloseBuffer(t *testing.T) {
	env := newTestEnv(t, nil)
	buffer := env.joinTest(t)

	assertEqual(env.host.CloseBuffer(buffer), nil, t)
	assertEqual(env.host.Buffers(), []string{CoreBuffer}, t)
	assertEqual(env.host.CloseBuffer(buffer), errNoSuchBuffer, t)
	assertEqual(env.host.CloseBuffer(CoreBuffer), errNoSuchBuffer, t)

	// reopened, it starts without a nicklist
	buffer = env.host.OpenChannel("#test")
	line, _ := env.host.PrintLine(buffer, privmsg("bob"), "bob", "alice?")
	assertEqual(line.Message, "alice?", t)
}

func TestOptionChanges(t *testing.T) {
	env := newTestEnv(t, nil)
	buffer := env.host.OpenChannel("#test")

	env.host.SetOption(colorize.OptionHighlightRegex, "fans")
	line, _ := env.host.PrintLine(buffer, privmsg("carol"), "carol", "weechat fans")
	assertEqual(line.Message, "weechat "+hl+"fans"+wcolor.Reset, t)

	// an invalid pattern disables highlight coloring, with one warning
	env.host.SetOption(colorize.OptionHighlightRegex, "(fans")
	line, _ = env.host.PrintLine(buffer, privmsg("carol"), "carol", "(fans")
	assertEqual(line.Message, "(fans", t)
}

func TestColorAlias(t *testing.T) {
	env := newTestEnv(t, func(config *colorize.Config) {
		config.Look.HighlightColor = "chat_highlight"
	})
	buffer := env.host.OpenChannel("#test")

	color, err := env.host.Color("chat_highlight")
	assertEqual(err, nil, t)
	assertEqual(color, mustResolve("chat_highlight"), t)

	env.host.SetOption("weechat.color.chat_highlight", "lightred")
	color, _ = env.host.Color("chat_highlight")
	assertEqual(color, mustResolve("lightred"), t)

	line, _ := env.host.PrintLine(buffer, privmsg("carol"), "carol", "weechat")
	assertEqual(line.Message, mustResolve("lightred")+"weechat"+wcolor.Reset, t)
}

func TestFilters(t *testing.T) {
	env := newTestEnv(t, nil)
	buffer := env.host.OpenChannel("#test")
	if err := env.host.AddFilter("*spam*"); err != nil {
		t.Fatal(err)
	}

	line, _ := env.host.PrintLine(buffer, privmsg("carol"), "carol", "weechat SPAM")
	assertEqual(line.Displayed, false, t)
	assertEqual(line.Highlight, true, t)
	assertEqual(line.Message, "weechat SPAM", t)

	line, _ = env.host.PrintLine(buffer, privmsg("carol"), "carol", "weechat ham")
	assertEqual(line.Displayed, true, t)
}

func TestInputDisplay(t *testing.T) {
	env := newTestEnv(t, nil)
	buffer := env.joinTest(t)
	alice := env.host.NickColor(buffer, "alice")

	assertEqual(env.host.InputDisplay(buffer, "alice: weechat"), alice+"alice"+wcolor.Reset+": weechat", t)
	// mIRC bold typed into the input bar
	display := env.host.InputDisplay(buffer, "\x02alice")
	assertEqual(wcolor.Strip(display), "alice", t)
	assertEqual(strings.Contains(display, alice+"alice"), true, t)
	assertEqual(strings.Contains(display, "\x02"), false, t)
	assertEqual(env.host.InputDisplay(CoreBuffer, "alice"), "alice", t)
}

func TestNickColorHash(t *testing.T) {
	env := newTestEnv(t, nil)
	palette := make(map[string]bool)
	for _, name := range strings.Split(defaultOptions[colorize.OptionNickColors], ",") {
		palette[mustResolve(name)] = true
	}
	for _, nick := range []string{"alice", "bob", "carol", "dave", "ünïcode"} {
		color := env.host.NickColor("", nick)
		assertEqual(color, env.host.NickColor(testChannel, nick), t)
		assertEqual(palette[color], true, t)
	}

	// the nick table follows the hash option
	buffer := env.joinTest(t)
	colors := strings.Split(defaultOptions[colorize.OptionNickColors], ",")
	env.host.SetOption(colorize.OptionNickColorHash, "sum")
	assertEqual(env.host.NickColor(buffer, "alice"), mustResolve(colors[510%len(colors)]), t)
	line, _ := env.host.PrintLine(buffer, privmsg("bob"), "bob", "alice")
	assertEqual(line.Message, mustResolve(colors[510%len(colors)])+"alice"+wcolor.Reset, t)

	env.host.SetOption(colorize.OptionNickColors, "")
	assertEqual(env.host.NickColor("", "alice"), wcolor.ResetKeepAttrs, t)
	env.host.SetOption(colorize.OptionNickColors, "nosuchcolor")
	assertEqual(env.host.NickColor("", "alice"), wcolor.ResetKeepAttrs, t)
}

func TestUpdateLastLine(t *testing.T) {
	env := newTestEnv(t, nil)
	buffer := env.host.OpenChannel("#test")
	assertEqual(env.host.UpdateLastLine(buffer, "x"), errNoLines, t)
	assertEqual(env.host.UpdateLastLine("irc.libera.#nowhere", "x"), errNoSuchBuffer, t)
	assertEqual(env.host.Lines("irc.libera.#nowhere") == nil, true, t)
}
