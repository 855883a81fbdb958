// Copyright (c) 2012-2014 Jeremy Latt
// Copyright (c) 2014-2015 Edmund Huber
// Copyright (c) 2016-2017 Daniel Oaks <daniel@danieloaks.net>
// Copyright (c) 2025 hlcolor contributors
// released under the MIT license

package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/docopt/docopt-go"
	"github.com/ergochat/irc-go/ircfmt"

	"github.com/weechat-tools/hlcolor/colorize"
	"github.com/weechat-tools/hlcolor/colorize/flock"
	"github.com/weechat-tools/hlcolor/colorize/host"
	"github.com/weechat-tools/hlcolor/colorize/kv"
	"github.com/weechat-tools/hlcolor/colorize/logger"
	"github.com/weechat-tools/hlcolor/colorize/matcher"
	"github.com/weechat-tools/hlcolor/colorize/utils"
	"github.com/weechat-tools/hlcolor/colorize/wcolor"
)

// set via linker flags, either by make or by goreleaser:
var commit = ""  // git hash
var version = "" // tagged version

// set in main when stdout is a terminal
var escapeCodes bool

// display renders a message for stdout: terminals get the codes spelled
// out, pipes get the raw bytes.
func display(text string) string {
	if escapeCodes {
		return wcolor.Escape(text)
	}
	return text
}

// decodeArg turns a command-line message, written with ircfmt escapes like
// "$c[red]text$r", into a message carrying the equivalent codes.
func decodeArg(arg string) string {
	return wcolor.FromIRC(ircfmt.Unescape(arg))
}

// instance is everything a command needs: the config, a host with the
// colorizer registered, and the datastore behind it.
type instance struct {
	config    *colorize.Config
	logman    *logger.Manager
	store     kv.Store
	flock     flock.Flocker
	host      *host.Host
	colorizer *colorize.Colorizer
}

func loadInstance(configfile string) (inst *instance, err error) {
	var config *colorize.Config
	if configfile == "" {
		config = colorize.DefaultConfig()
	} else {
		config, err = colorize.LoadConfig(configfile)
		if err != nil {
			return nil, fmt.Errorf("Config file did not load successfully: %w", err)
		}
	}

	logman, err := logger.NewManager(config.Logging)
	if err != nil {
		return nil, fmt.Errorf("Logger did not load successfully: %w", err)
	}

	inst = &instance{config: config, logman: logman}
	if config.Datastore.Path != kv.InMemory {
		inst.flock, err = flock.TryAcquireFlock(config.Datastore.Path)
		if err != nil {
			logman.Close()
			return nil, fmt.Errorf("Could not lock datastore: %w", err)
		}
	}
	inst.store, err = kv.BuntdbOpen(config.Datastore.Path)
	if err != nil {
		if inst.flock != nil {
			inst.flock.Unlock()
		}
		logman.Close()
		return nil, fmt.Errorf("Could not open datastore: %w", err)
	}

	inst.host = host.New(config, inst.store, logman)
	inst.colorizer = colorize.NewColorizer(config, inst.host, logman)
	inst.colorizer.Register(inst.host)
	logman.Debug("host", fmt.Sprintf("%s started", colorize.Ver))
	return inst, nil
}

func (inst *instance) close() {
	if err := inst.store.Close(); err != nil {
		inst.logman.Error("datastore", "Could not close datastore", err.Error())
	}
	if inst.flock != nil {
		inst.flock.Unlock()
	}
	inst.logman.Close()
}

// implements the `hlcolor replay` command
func doReplay(inst *instance, filename string, out io.Writer) error {
	var reader io.Reader = os.Stdin
	if filename != "" && filename != "-" {
		file, err := os.Open(filename)
		if err != nil {
			return fmt.Errorf("Could not open log: %w", err)
		}
		defer file.Close()
		reader = file
	}
	count, err := inst.host.ReplayIRC(reader)
	if err != nil {
		return fmt.Errorf("Error while replaying: %w", err)
	}
	for _, buffer := range inst.host.Buffers() {
		for _, line := range inst.host.Lines(buffer) {
			if !line.Displayed {
				continue
			}
			marker := " "
			if line.Highlight {
				marker = "!"
			}
			fmt.Fprintf(out, "%s %s %s\t%s\n", marker, buffer, display(line.Prefix), display(line.Message))
		}
	}
	inst.logman.Info("host", fmt.Sprintf("replayed %d lines", count))
	return nil
}

// implements the `hlcolor colorize` command
func doColorize(inst *instance, arguments docopt.Opts, out io.Writer) (err error) {
	channel := arguments["<channel>"].(string)
	message := decodeArg(arguments["<message>"].(string))
	sender, _ := arguments["--from"].(string)
	if sender == "" {
		sender = "someone"
	}
	nicks, _ := arguments["--nicks"].(string)
	pattern, _ := arguments["--regex"].(string)

	buffer := inst.host.OpenChannel(channel)
	// names may carry mode prefixes, like "@alice"
	for _, name := range append(utils.SplitList(nicks), inst.host.Nick()) {
		if err := inst.host.AddName(buffer, name); err != nil {
			return err
		}
	}
	if pattern != "" {
		if _, err := matcher.Compile(pattern); err != nil {
			return fmt.Errorf("Invalid pattern: %w", err)
		}
		if err := inst.host.SetBufferProperty(buffer, colorize.PropertyHighlightRegex, pattern); err != nil {
			return err
		}
		// the override is only meant for this run
		defer func() {
			clearErr := inst.host.SetBufferProperty(buffer, colorize.PropertyHighlightRegex, "")
			if err == nil {
				err = clearErr
			}
		}()
	}

	tags := []string{"irc_privmsg", "notify_message", "nick_" + sender, "log1"}
	line, err := inst.host.PrintLine(buffer, tags, sender, message)
	if err != nil {
		return err
	}
	if arguments["--input"].(bool) {
		fmt.Fprintln(out, display(inst.host.InputDisplay(buffer, message)))
		return nil
	}
	fmt.Fprintln(out, display(line.Message))
	return nil
}

// implements the `hlcolor setregex` command
func doSetRegex(inst *instance, arguments docopt.Opts, out io.Writer) error {
	if arguments["--list"].(bool) {
		stored, err := inst.host.StoredProperties()
		if err != nil {
			return fmt.Errorf("Could not read datastore: %w", err)
		}
		for buffer, properties := range stored {
			if pattern := properties[colorize.PropertyHighlightRegex]; pattern != "" {
				fmt.Fprintf(out, "%s\t%s\n", buffer, pattern)
			}
		}
		return nil
	}

	buffer := arguments["<buffer>"].(string)
	pattern, _ := arguments["<pattern>"].(string)
	if pattern != "" {
		if _, err := matcher.Compile(pattern); err != nil {
			return fmt.Errorf("Invalid pattern: %w", err)
		}
	}
	if err := inst.host.SetBufferProperty(buffer, colorize.PropertyHighlightRegex, pattern); err != nil {
		return err
	}
	if !arguments["--quiet"].(bool) {
		if pattern == "" {
			log.Println("highlight pattern cleared for", buffer)
		} else {
			log.Println("highlight pattern set for", buffer)
		}
	}
	return nil
}

// implements the `hlcolor tokens` command
func doTokens(message string, out io.Writer) {
	for _, tok := range wcolor.Tokenize(decodeArg(message)) {
		fmt.Fprintf(out, "%-10s %q\n", tok.Kind, tok.Text)
	}
}

func main() {
	colorize.SetVersionString(version, commit)
	escapeCodes = term.IsTerminal(int(os.Stdout.Fd()))
	usage := `hlcolor.
Usage:
	hlcolor replay [<irclog>] [--conf <filename>]
	hlcolor colorize <channel> <message> [--from <nick>] [--nicks <nicks>] [--regex <pattern>] [--input] [--conf <filename>]
	hlcolor setregex <buffer> [<pattern>] [--conf <filename>] [--quiet]
	hlcolor setregex --list [--conf <filename>]
	hlcolor tokens <message>
	hlcolor -h | --help
	hlcolor --version
Options:
	--conf <filename>  Configuration file to use; built-in defaults otherwise.
	--from <nick>      Sender of the message.
	--nicks <nicks>    Comma-separated nicks present in the channel, with
	                   mode prefixes as in NAMES (@alice).
	--regex <pattern>  Highlight pattern of the channel, for this run only.
	--input            Show the message as it would appear in the input bar.
	--list             List the stored highlight patterns.
	--quiet            Don't confirm changes.
	-h --help          Show this screen.
	--version          Show version.`

	arguments, _ := docopt.ParseArgs(usage, nil, colorize.Ver)

	// tokens needs neither config nor datastore
	if arguments["tokens"].(bool) {
		doTokens(arguments["<message>"].(string), os.Stdout)
		return
	}

	configfile, _ := arguments["--conf"].(string)
	if err := run(configfile, arguments); err != nil {
		// run has released the datastore by now
		log.Fatal(err)
	}
}

// run executes a command that needs an instance, and closes the instance
// before returning.
func run(configfile string, arguments docopt.Opts) error {
	inst, err := loadInstance(configfile)
	if err != nil {
		return err
	}
	defer inst.close()

	// warning if running a non-final version
	if strings.Contains(colorize.Ver, "unreleased") {
		inst.logman.Debug("host", "You are running an unreleased version of hlcolor.")
	}

	switch {
	case arguments["replay"].(bool):
		irclog, _ := arguments["<irclog>"].(string)
		return doReplay(inst, irclog, os.Stdout)
	case arguments["colorize"].(bool):
		return doColorize(inst, arguments, os.Stdout)
	case arguments["setregex"].(bool):
		return doSetRegex(inst, arguments, os.Stdout)
	}
	return nil
}
