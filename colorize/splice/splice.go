// Copyright (c) 2025 hlcolor contributors
// released under the MIT license

// Package splice recolors spans of a message while keeping the message's
// own colors intact outside of them.
//
// The original message is tokenized (stream A). The stripped text, with
// sentinels injected around the spans, is tokenized too (stream B). Both
// streams carry the same content in the same order, so a single pass over A
// with a cursor into B finds every span boundary: formatting from A is
// replayed outside spans, suspended inside them, and restored after each
// span closes.
package splice

import (
	"errors"
	"strings"

	"github.com/weechat-tools/hlcolor/colorize/wcolor"
)

var (
	// ErrAlignment means the two streams disagree on content, so the spans
	// can't be placed.
	ErrAlignment = errors.New("token streams are misaligned")
)

// Splice rebuilds original with the spans of marked recolored. original
// must strip to the text marked was built from.
func Splice(original []wcolor.Token, marked Marked) (string, error) {
	streamB := wcolor.Tokenize(marked.Text)
	var out strings.Builder
	var saved strings.Builder
	idx, boundary := 0, 0
	inMatch := false

	nextBoundary := func() (Boundary, bool) {
		if boundary == len(marked.Boundaries) {
			return Boundary{}, false
		}
		boundary++
		return marked.Boundaries[boundary-1], true
	}

	for _, tok := range original {
		switch tok.Kind {
		case wcolor.ColorCode, wcolor.AttributeCode:
			saved.WriteString(tok.Text)
			if !inMatch {
				out.WriteString(tok.Text)
			}
			continue
		case wcolor.ResetCode:
			if !inMatch {
				out.WriteString(tok.Text)
			}
			saved.Reset()
			continue
		}

		if len(streamB) <= idx {
			return "", ErrAlignment
		}
		current := streamB[idx].Text
		switch {
		case current != Sentinel:
			if current != tok.Text {
				return "", ErrAlignment
			}
			out.WriteString(tok.Text)
			idx++
		case inMatch:
			// closing boundary; the content after it must be ours
			bound, ok := nextBoundary()
			if !ok || !bound.Close || len(streamB) <= idx+1 || streamB[idx+1].Text != tok.Text {
				return "", ErrAlignment
			}
			out.WriteString(wcolor.Reset)
			if bound.Open {
				// the next span starts right here
				out.WriteString(bound.Color)
			} else {
				out.WriteString(saved.String())
				inMatch = false
			}
			out.WriteString(tok.Text)
			idx += 2
		default:
			// opening boundary
			bound, ok := nextBoundary()
			idx++
			if !ok || !bound.Open || bound.Close || len(streamB) <= idx || streamB[idx].Text != tok.Text {
				return "", ErrAlignment
			}
			out.WriteString(wcolor.Reset)
			out.WriteString(bound.Color)
			out.WriteString(streamB[idx].Text)
			inMatch = true
			idx++
		}
	}

	if inMatch {
		// the message ended inside a span
		out.WriteString(wcolor.Reset)
		out.WriteString(saved.String())
	}
	return out.String(), nil
}

// Highlight recolors the spans of uncolored text directly; there is no
// existing formatting to preserve.
func Highlight(text string, spans []Span) string {
	var buf strings.Builder
	buf.Grow(len(text) + len(spans)*8)
	last := 0
	for _, span := range spans {
		if span.Start == span.End {
			continue
		}
		buf.WriteString(text[last:span.Start])
		buf.WriteString(span.Color)
		buf.WriteString(text[span.Start:span.End])
		buf.WriteString(wcolor.Reset)
		last = span.End
	}
	buf.WriteString(text[last:])
	return buf.String()
}
