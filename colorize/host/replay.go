// Copyright (c) 2025 hlcolor contributors
// released under the MIT license

package host

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/ergochat/irc-go/ircmsg"
	"github.com/ergochat/irc-go/ircutils"

	"github.com/weechat-tools/hlcolor/colorize"
	"github.com/weechat-tools/hlcolor/colorize/wcolor"
)

const (
	// longest raw line accepted by ReplayIRC (tags included)
	maxReplayLine = 1 << 16
	// longest message text kept from one line
	maxReplayText = 4096

	// RPL_NAMREPLY
	rplNamReply = "353"
	// list and key modes, whose argument isn't a nick
	modesWithArgument = "beIk"
)

func isChannel(target string) bool {
	return strings.HasPrefix(target, "#") || strings.HasPrefix(target, "&")
}

// ReplayIRC reads raw IRC protocol lines, as received by our client, and
// prints them into the matching buffers: channels are opened on JOIN,
// nicklists follow NAMES/JOIN/PART/QUIT/NICK/MODE, and PRIVMSG/NOTICE text is
// decoded from mIRC formatting. Lines that fail to parse are logged and
// skipped. It returns the number of lines replayed.
func (h *Host) ReplayIRC(reader io.Reader) (count int, err error) {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 4096), maxReplayLine)
	for scanner.Scan() {
		raw := scanner.Text()
		if strings.TrimSpace(raw) == "" {
			continue
		}
		msg, err := ircmsg.ParseLine(raw)
		if err != nil {
			h.logger.Warning("host", "Could not parse IRC line", raw, err.Error())
			continue
		}
		if err := h.replayMessage(msg); err != nil {
			h.logger.Warning("host", "Could not replay IRC line", raw, err.Error())
			continue
		}
		count++
	}
	return count, scanner.Err()
}

func (h *Host) replayMessage(msg ircmsg.Message) error {
	nick := msg.Nick()
	switch msg.Command {
	case "PRIVMSG", "NOTICE":
		if len(msg.Params) < 2 {
			return errNotEnoughParams
		}
		return h.replayText(msg, nick, msg.Params[0], msg.Params[1])

	case "JOIN":
		if len(msg.Params) < 1 {
			return errNotEnoughParams
		}
		channel := msg.Params[0]
		buffer := h.OpenChannel(channel)
		h.AddNick(buffer, nick)
		_, err := h.PrintLine(buffer, []string{"irc_join", "nick_" + nick, "log4"}, "-->",
			fmt.Sprintf("%s has joined %s", nick, channel))
		return err

	case "PART":
		if len(msg.Params) < 1 {
			return errNotEnoughParams
		}
		channel := msg.Params[0]
		buffer := h.OpenChannel(channel)
		h.RemoveNick(buffer, nick)
		_, err := h.PrintLine(buffer, []string{"irc_part", "nick_" + nick, "log4"}, "<--",
			fmt.Sprintf("%s has left %s", nick, channel))
		if err == nil && sameNick(nick, h.nick) {
			err = h.CloseBuffer(buffer)
		}
		return err

	case "QUIT":
		for _, buffer := range h.Buffers() {
			if h.RemoveNick(buffer, nick) {
				if _, err := h.PrintLine(buffer, []string{"irc_quit", "nick_" + nick, "log4"}, "<--",
					fmt.Sprintf("%s has quit", nick)); err != nil {
					return err
				}
			}
		}
		return nil

	case "NICK":
		if len(msg.Params) < 1 {
			return errNotEnoughParams
		}
		newNick := msg.Params[0]
		if sameNick(nick, h.nick) {
			h.nick = newNick
			for _, buf := range h.buffers {
				if buf.properties[colorize.PropertyNick] != "" {
					buf.properties[colorize.PropertyNick] = newNick
				}
			}
		}
		for _, buffer := range h.Buffers() {
			if old, ok := h.removeMember(buffer, nick); ok {
				if err := h.AddMember(buffer, newNick, old.modes); err != nil {
					return err
				}
				if _, err := h.PrintLine(buffer, []string{"irc_nick", "nick_" + nick, "log2"}, "--",
					fmt.Sprintf("%s is now known as %s", nick, newNick)); err != nil {
					return err
				}
			}
		}
		return nil

	case rplNamReply:
		if len(msg.Params) < 4 {
			return errNotEnoughParams
		}
		buffer := h.OpenChannel(msg.Params[2])
		for _, name := range strings.Fields(msg.Params[3]) {
			if err := h.AddName(buffer, name); err != nil {
				return err
			}
		}
		return nil

	case "MODE":
		if len(msg.Params) < 2 {
			return errNotEnoughParams
		}
		buffer := "irc." + h.server + "." + msg.Params[0]
		if h.buffers[buffer] == nil {
			// user modes, or a channel we aren't in
			return nil
		}
		return h.replayModes(buffer, msg.Params[1], msg.Params[2:])

	default:
		h.logger.Debug("host", "Ignoring IRC command", msg.Command)
		return nil
	}
}

// replayModes applies the membership changes of a channel mode line, like
// "+ov-v alice bob carol".
func (h *Host) replayModes(buffer, changes string, args []string) error {
	set := true
	for _, mode := range changes {
		switch {
		case mode == '+' || mode == '-':
			set = mode == '+'
		case strings.ContainsRune(memberModes, mode):
			if len(args) == 0 {
				return errNotEnoughParams
			}
			if err := h.SetMemberMode(buffer, args[0], mode, set); err != nil && err != errNoSuchNick {
				return err
			}
			args = args[1:]
		case strings.ContainsRune(modesWithArgument, mode) || (set && mode == 'l'):
			if len(args) > 0 {
				args = args[1:]
			}
		}
	}
	return nil
}

// replayText prints a PRIVMSG or NOTICE.
func (h *Host) replayText(msg ircmsg.Message, nick, target, text string) error {
	var buffer string
	self := sameNick(nick, h.nick)
	switch {
	case isChannel(target):
		buffer = h.OpenChannel(target)
	case self:
		buffer = h.OpenQuery(target)
	default:
		buffer = h.OpenQuery(nick)
	}

	tags := []string{"irc_" + strings.ToLower(msg.Command), "notify_message", "nick_" + nick, "log1"}
	if self {
		tags = append(tags, "self_msg", "notify_none")
	}
	if present, account := msg.GetTag("account"); present {
		tags = append(tags, "account_"+account)
	}
	prefix := nick
	if action, ok := strings.CutPrefix(text, "\x01ACTION "); ok {
		tags = append(tags, "irc_action")
		prefix = " *"
		text = nick + " " + strings.TrimSuffix(action, "\x01")
	}

	message := wcolor.FromIRC(ircutils.SanitizeText(text, maxReplayText))
	_, err := h.PrintLine(buffer, tags, prefix, message)
	return err
}
