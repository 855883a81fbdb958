// Copyright (c) 2025 hlcolor contributors
// released under the MIT license

package colorize

import (
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/weechat-tools/hlcolor/colorize/logger"
	"github.com/weechat-tools/hlcolor/colorize/splice"
	"github.com/weechat-tools/hlcolor/colorize/wcolor"
)

// traced paths
const (
	pathSkip        = "skip"
	pathNoMatch     = "nomatch"
	pathFast        = "fast"
	pathSplice      = "splice"
	pathPassthrough = "passthrough"
)

// TraceSpan is a span as it appears in a trace.
type TraceSpan struct {
	Start int
	End   int
	Color string
	Kind  string
}

// Trace records the intermediate values of colorizing one message. Codes
// are rendered readably (see wcolor.Escape).
type Trace struct {
	Buffer   string
	Sender   string   `yaml:",omitempty"`
	Tags     []string `yaml:",omitempty"`
	Message  string
	Stripped string      `yaml:",omitempty"`
	Pattern  string      `yaml:",omitempty"`
	Override bool        `yaml:",omitempty"`
	Spans    []TraceSpan `yaml:",omitempty"`
	Marked   string      `yaml:",omitempty"`
	Path     string
	Reason   string `yaml:",omitempty"`
	Result   string `yaml:",omitempty"`
}

// senderFromTags extracts the sender nick from a nick_* tag.
func senderFromTags(tags []string) string {
	for _, tag := range tags {
		if strings.HasPrefix(tag, "nick_") {
			return tag[len("nick_"):]
		}
	}
	return ""
}

func (trace *Trace) addSpans(kind string, spans []splice.Span) {
	if trace == nil {
		return
	}
	for _, span := range spans {
		trace.Spans = append(trace.Spans, TraceSpan{
			Start: span.Start,
			End:   span.End,
			Color: wcolor.Escape(span.Color),
			Kind:  kind,
		})
	}
}

// finish records how the message left the pipeline.
func (trace *Trace) finish(path, reason, result string) {
	if trace == nil {
		return
	}
	trace.Path = path
	trace.Reason = reason
	if result != "" {
		trace.Result = wcolor.Escape(result)
	}
}

// newTrace starts a trace for a line, if tracing is enabled.
func (c *Colorizer) newTrace(buffer string, tags []string, message string) *Trace {
	if !c.config.Look.Trace || !c.logger.IsTracing() {
		return nil
	}
	return &Trace{
		Buffer:  buffer,
		Sender:  senderFromTags(tags),
		Tags:    tags,
		Message: wcolor.Escape(message),
	}
}

func (c *Colorizer) logTrace(trace *Trace) {
	if trace == nil {
		return
	}
	data, err := yaml.Marshal(trace)
	if err != nil {
		c.logger.Debug(logger.TraceType, "could not marshal trace", err.Error())
		return
	}
	c.logger.Debug(logger.TraceType, strings.TrimRight(string(data), "\n"))
}
