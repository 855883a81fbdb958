// Copyright (c) 2025 hlcolor contributors
// released under the MIT license

package host

import (
	"strings"
	"testing"

	"github.com/weechat-tools/hlcolor/colorize"
	"github.com/weechat-tools/hlcolor/colorize/wcolor"
)

const testSession = `
:me!u@h JOIN #test
:server 353 me = #test :me @alice +bob
:alice!a@h PRIVMSG #test :bob: weechat is great
:bob!b@h PRIVMSG #test :` + "\x0304red\x03 weechat" + `
@account=carol :carol!c@h JOIN #test
:carol!c@h NOTICE #test :hi alice
:alice!a@h PRIVMSG #test :` + "\x01ACTION waves at bob\x01" + `
:me!u@h PRIVMSG #test :weechat rocks
`

func lastLine(t *testing.T, env *testEnv, buffer string) colorize.Line {
	t.Helper()
	lines := env.host.Lines(buffer)
	if len(lines) == 0 {
		t.Fatalf("no lines in %s", buffer)
	}
	return lines[len(lines)-1]
}

func TestReplaySession(t *testing.T) {
	env := newTestEnv(t, nil)
	count, err := env.host.ReplayIRC(strings.NewReader(testSession))
	if err != nil {
		t.Fatal(err)
	}
	assertEqual(count, 8, t)

	assertEqual(env.host.Buffers(), []string{CoreBuffer, testChannel}, t)
	assertEqual(env.host.Nicklist(testChannel), []string{"alice", "bob", "carol", "me"}, t)

	lines := env.host.Lines(testChannel)
	assertEqual(len(lines), 7, t)
	alice := env.host.NickColor(testChannel, "alice")
	bob := env.host.NickColor(testChannel, "bob")

	// join lines aren't user messages
	assertEqual(lines[0].Tags[0], "irc_join", t)
	assertEqual(lines[0].Message, "me has joined #test", t)

	assertEqual(lines[1].Prefix, "alice", t)
	assertEqual(lines[1].Highlight, true, t)
	assertEqual(lines[1].Message, bob+"bob"+wcolor.Reset+": "+hl+"weechat"+wcolor.Reset+" is great", t)

	// mIRC colors survive around the highlight
	colored := lines[2].Message
	assertEqual(wcolor.Strip(colored), "red weechat", t)
	assertEqual(strings.Contains(colored, hl+"weechat"+wcolor.Reset), true, t)
	assertEqual(strings.HasPrefix(colored, wcolor.FromIRC("\x0304red")), true, t)

	assertEqual(lines[3].Tags, []string{"irc_join", "nick_carol", "log4"}, t)

	assertEqual(lines[4].Tags, []string{"irc_notice", "notify_message", "nick_carol", "log1"}, t)
	assertEqual(lines[4].Message, "hi "+alice+"alice"+wcolor.Reset, t)

	assertEqual(lines[5].Prefix, " *", t)
	assertEqual(lines[5].Tags[len(lines[5].Tags)-1], "irc_action", t)
	assertEqual(lines[5].Message, alice+"alice"+wcolor.Reset+" waves at "+bob+"bob"+wcolor.Reset, t)

	// our own message: no highlight, our nick isn't mentioned
	assertEqual(lines[6].Highlight, false, t)
	assertEqual(lines[6].Message, "weechat rocks", t)
}

func TestReplayAccountTag(t *testing.T) {
	env := newTestEnv(t, nil)
	_, err := env.host.ReplayIRC(strings.NewReader("@account=alice :alice!a@h PRIVMSG #test :hi\n"))
	if err != nil {
		t.Fatal(err)
	}
	line := lastLine(t, env, testChannel)
	assertEqual(line.Tags, []string{"irc_privmsg", "notify_message", "nick_alice", "log1", "account_alice"}, t)
}

func TestReplayQueries(t *testing.T) {
	env := newTestEnv(t, nil)
	_, err := env.host.ReplayIRC(strings.NewReader(
		":alice!a@h PRIVMSG me :me, weechat?\n" +
			":me!u@h PRIVMSG alice :alice: yes\n"))
	if err != nil {
		t.Fatal(err)
	}
	query := "irc.libera.alice"
	assertEqual(env.host.BufferString(query, colorize.PropertyType), "private", t)
	assertEqual(env.host.BufferString(query, colorize.PropertyChannel), "alice", t)

	lines := env.host.Lines(query)
	assertEqual(len(lines), 2, t)
	self := mustResolve("white")
	alice := env.host.NickColor(query, "alice")
	assertEqual(lines[0].Highlight, true, t)
	assertEqual(lines[0].Message, self+"me"+wcolor.Reset+", "+hl+"weechat"+wcolor.Reset+"?", t)
	assertEqual(lines[1].Message, alice+"alice"+wcolor.Reset+": yes", t)
}

func TestReplayMembership(t *testing.T) {
	env := newTestEnv(t, nil)
	_, err := env.host.ReplayIRC(strings.NewReader(
		":me!u@h JOIN #test\n" +
			":me!u@h JOIN #other\n" +
			":server 353 me = #test :me alice bob\n" +
			":alice!a@h QUIT :bye\n" +
			":bob!b@h NICK robert\n"))
	if err != nil {
		t.Fatal(err)
	}
	assertEqual(env.host.Nicklist(testChannel), []string{"me", "robert"}, t)
	assertEqual(env.host.Nicklist("irc.libera.#other"), []string{"me"}, t)

	lines := env.host.Lines(testChannel)
	assertEqual(lastLine(t, env, testChannel).Message, "bob is now known as robert", t)
	assertEqual(lines[len(lines)-2].Message, "alice has quit", t)

	// the table follows the rename
	robert := env.host.NickColor(testChannel, "robert")
	line, _ := env.host.PrintLine(testChannel, privmsg("carol"), "carol", "bob or robert")
	assertEqual(line.Message, "bob or "+robert+"robert"+wcolor.Reset, t)

	// our own rename moves our nick everywhere
	_, err = env.host.ReplayIRC(strings.NewReader(":me!u@h NICK myself\n"))
	if err != nil {
		t.Fatal(err)
	}
	assertEqual(env.host.Nick(), "myself", t)
	assertEqual(env.host.BufferString(testChannel, colorize.PropertyNick), "myself", t)
	line, _ = env.host.PrintLine(testChannel, privmsg("carol"), "carol", "myself")
	assertEqual(line.Highlight, true, t)
	assertEqual(line.Message, mustResolve("white")+"myself"+wcolor.Reset, t)

	// parting closes the buffer
	_, err = env.host.ReplayIRC(strings.NewReader(":myself!u@h PART #other\n"))
	if err != nil {
		t.Fatal(err)
	}
	assertEqual(env.host.Buffers(), []string{CoreBuffer, testChannel}, t)
}

func TestReplayModes(t *testing.T) {
	env := newTestEnv(t, nil)
	_, err := env.host.ReplayIRC(strings.NewReader(
		":me!u@h JOIN #test\n" +
			":server 353 me = #test :@me @+alice bob carol\n" +
			":alice!a@h MODE #test +bov-v *!*@spam bob alice carol\n" +
			":alice!a@h NICK alicia\n" +
			":me!u@h MODE me +i\n"))
	if err != nil {
		t.Fatal(err)
	}
	op := mustResolve("lightgreen")
	prefix, color := env.host.NickPrefix(testChannel, "alicia")
	assertEqual(prefix, "@", t)
	assertEqual(color, op, t)
	prefix, _ = env.host.NickPrefix(testChannel, "bob")
	assertEqual(prefix, "@", t)
	prefix, _ = env.host.NickPrefix(testChannel, "carol")
	assertEqual(prefix, "", t)
	// we joined before the NAMES reply gave us op
	prefix, _ = env.host.NickPrefix(testChannel, "me")
	assertEqual(prefix, "@", t)

	alicia := env.host.NickColor(testChannel, "alicia")
	line, _ := env.host.PrintLine(testChannel, privmsg("carol"), "carol", "thanks @alicia")
	assertEqual(line.Message, "thanks "+op+"@"+wcolor.Reset+alicia+"alicia"+wcolor.Reset, t)

	// losing op falls back to the voice the NAMES reply showed
	_, err = env.host.ReplayIRC(strings.NewReader(":bob!b@h MODE #test -o alicia\n"))
	if err != nil {
		t.Fatal(err)
	}
	prefix, _ = env.host.NickPrefix(testChannel, "alicia")
	assertEqual(prefix, "+", t)
}

func TestReplaySkipsBadLines(t *testing.T) {
	env := newTestEnv(t, nil)
	count, err := env.host.ReplayIRC(strings.NewReader(
		"@badline\n" +
			"\n" +
			":alice!a@h PRIVMSG #test\n" +
			":alice!a@h PING :x\n" +
			":alice!a@h PRIVMSG #test :ok\n"))
	if err != nil {
		t.Fatal(err)
	}
	// the PING is replayed as a no-op
	assertEqual(count, 2, t)
	assertEqual(len(env.host.Lines(testChannel)), 1, t)
	assertEqual(strings.Contains(env.log.String(), "Could not parse IRC line"), true, t)
	assertEqual(strings.Contains(env.log.String(), errNotEnoughParams.Error()), true, t)
}
