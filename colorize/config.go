// Copyright (c) 2012-2014 Jeremy Latt
// Copyright (c) 2014-2015 Edmund Huber
// Copyright (c) 2016-2017 Daniel Oaks <daniel@danieloaks.net>
// Copyright (c) 2025 hlcolor contributors
// released under the MIT license

package colorize

import (
	"fmt"
	"math"
	"os"
	"strings"

	"code.cloudfoundry.org/bytefmt"
	"gopkg.in/yaml.v2"

	"github.com/weechat-tools/hlcolor/colorize/kv"
	"github.com/weechat-tools/hlcolor/colorize/logger"
	"github.com/weechat-tools/hlcolor/colorize/utils"
)

const (
	defaultHighlightColor   = "chat_highlight"
	defaultNickPrefixes     = "~&@%+"
	defaultNickSuffixes     = ":,"
	defaultMaxMessageLength = "8k"
	maxNickLength           = 20
)

// LookConfig controls what gets colorized.
type LookConfig struct {
	HighlightColor     string `yaml:"highlight-color"`
	ColorizeHighlights *bool  `yaml:"colorize-highlights"`
	ColorizeNicks      bool   `yaml:"colorize-nicks"`
	ColorizeInput      bool   `yaml:"colorize-input"`
	IRCDecodeInput     bool   `yaml:"irc-decode-input"`
	// colorize lines hidden by /filter
	ColorizeFilter bool     `yaml:"colorize-filter"`
	IRCOnly        bool     `yaml:"irc-only"`
	IgnoreChannels []string `yaml:"ignore-channels"`
	IgnoreNicks    []string `yaml:"ignore-nicks"`
	IgnoreTags     []string `yaml:"ignore-tags"`
	MinNickLength  int      `yaml:"min-nick-length"`
	NickPrefixes   string   `yaml:"nick-prefixes"`
	NickSuffixes   string   `yaml:"nick-suffixes"`
	Trace          bool

	ignoreChannels utils.GlobSet
	ignoreNicks    map[string]bool
	ignoreTags     map[string]bool
}

// Config defines the overall configuration.
type Config struct {
	Logging []logger.LoggingConfig

	Datastore struct {
		Path string
	}

	// seeds the in-memory host used by the CLI
	Host struct {
		Server  string
		Nick    string
		Options map[string]string
	}

	Look LookConfig

	Limits struct {
		MaxMessageLengthString string `yaml:"max-message-length"`
		MaxMessageLength       int    `yaml:"-"`
	}

	Filename string
}

// LoadConfig loads the given YAML configuration file.
func LoadConfig(filename string) (config *Config, err error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	config, err = ParseConfig(data)
	if err != nil {
		return nil, err
	}
	config.Filename = filename
	return config, nil
}

// ParseConfig parses and validates a YAML configuration.
func ParseConfig(data []byte) (config *Config, err error) {
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, err
	}
	if config == nil {
		config = new(Config)
	}

	if config.Datastore.Path == "" {
		return nil, ErrDatastorePathMissing
	}

	err = config.prepare()
	if err != nil {
		return nil, err
	}
	return config, nil
}

// DefaultConfig returns the configuration used when no file is given:
// warnings to stderr, an in-memory datastore, default look options.
func DefaultConfig() *Config {
	config := new(Config)
	config.Logging = []logger.LoggingConfig{{
		Method:      "stderr",
		TypeString:  "* -trace",
		LevelString: "warn",
	}}
	config.Datastore.Path = kv.InMemory
	if err := config.prepare(); err != nil {
		// the defaults are always valid
		panic(err)
	}
	return config
}

// prepare validates the loaded values and computes the derived ones.
func (config *Config) prepare() (err error) {
	var newLogConfigs []logger.LoggingConfig
	for _, logConfig := range config.Logging {
		// methods
		methods := make(map[string]bool)
		for _, method := range strings.Split(logConfig.Method, " ") {
			if len(method) > 0 {
				methods[strings.ToLower(method)] = true
			}
		}
		if methods["file"] && logConfig.Filename == "" {
			return ErrLoggerFilenameMissing
		}
		logConfig.MethodFile = methods["file"]
		logConfig.MethodStdout = methods["stdout"]
		logConfig.MethodStderr = methods["stderr"]

		// levels
		level, exists := logger.LogLevelNames[strings.ToLower(logConfig.LevelString)]
		if !exists {
			return fmt.Errorf("Could not translate log level [%s]", logConfig.LevelString)
		}
		logConfig.Level = level

		// types
		for _, typeStr := range strings.Split(logConfig.TypeString, " ") {
			if len(typeStr) == 0 {
				continue
			}
			if typeStr == "-" {
				return ErrLoggerExcludeEmpty
			}
			if typeStr[0] == '-' {
				typeStr = typeStr[1:]
				logConfig.ExcludedTypes = append(logConfig.ExcludedTypes, typeStr)
			} else {
				logConfig.Types = append(logConfig.Types, typeStr)
			}
		}
		if len(logConfig.Types) < 1 {
			return ErrLoggerHasNoTypes
		}

		newLogConfigs = append(newLogConfigs, logConfig)
	}
	config.Logging = newLogConfigs

	if err = config.Look.prepare(); err != nil {
		return err
	}

	if config.Limits.MaxMessageLengthString == "" {
		config.Limits.MaxMessageLengthString = defaultMaxMessageLength
	}
	maxLength, err := bytefmt.ToBytes(config.Limits.MaxMessageLengthString)
	if err != nil {
		return fmt.Errorf("Could not parse max-message-length (make sure it only contains whole numbers): %s", err.Error())
	}
	if maxLength == 0 || maxLength > math.MaxInt32 {
		return ErrMaxMessageLengthInvalid
	}
	config.Limits.MaxMessageLength = int(maxLength)
	return nil
}

func (look *LookConfig) prepare() (err error) {
	if look.HighlightColor == "" {
		look.HighlightColor = defaultHighlightColor
	}
	// ColorizeHighlights defaults to true
	if look.ColorizeHighlights == nil {
		look.ColorizeHighlights = new(bool)
		*look.ColorizeHighlights = true
	}

	if look.MinNickLength == 0 {
		look.MinNickLength = 1
	}
	if look.MinNickLength < 1 || maxNickLength < look.MinNickLength {
		return ErrMinNickLengthInvalid
	}
	// spaces never appear inside a word, so they can't be affixes
	if look.NickPrefixes == "" {
		look.NickPrefixes = defaultNickPrefixes
	}
	if look.NickSuffixes == "" {
		look.NickSuffixes = defaultNickSuffixes
	}
	look.NickPrefixes = strings.ReplaceAll(look.NickPrefixes, " ", "")
	look.NickSuffixes = strings.ReplaceAll(look.NickSuffixes, " ", "")
	if look.NickPrefixes == "" || look.NickSuffixes == "" {
		return ErrAffixesEmpty
	}

	look.ignoreChannels, err = utils.CompileGlobList(strings.Join(look.IgnoreChannels, ","), true)
	if err != nil {
		return fmt.Errorf("Could not compile ignore-channels: %w", err)
	}
	look.ignoreNicks = make(map[string]bool)
	for _, nick := range look.IgnoreNicks {
		if nick = strings.TrimSpace(nick); nick != "" {
			look.ignoreNicks[foldNick(nick)] = true
		}
	}
	look.ignoreTags = make(map[string]bool)
	for _, tag := range look.IgnoreTags {
		if tag = strings.TrimSpace(tag); tag != "" {
			look.ignoreTags[tag] = true
		}
	}
	return nil
}

// colorizeHighlights reports whether highlight matches get recolored.
func (look *LookConfig) colorizeHighlights() bool {
	return look.ColorizeHighlights == nil || *look.ColorizeHighlights
}
