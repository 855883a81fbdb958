// Copyright (c) 2025 hlcolor contributors
// released under the MIT license

package splice

import (
	"strings"
)

// Sentinel marks span boundaries in stripped text. It is never emitted.
const Sentinel = "\x1e"

// Span is a colored range [Start, End) of stripped text.
type Span struct {
	Start int
	End   int
	Color string
}

// Boundary describes one sentinel of a marked text. A sentinel shared by
// two adjacent spans both closes the first and opens the second.
type Boundary struct {
	Close bool
	Open  bool
	// Color of the span being opened
	Color string
}

// Marked is stripped text with sentinels around every span.
type Marked struct {
	Text       string
	Boundaries []Boundary
}

// Inject wraps every span of text in sentinels. Spans must be ascending and
// non-overlapping; empty spans are ignored. Where two spans touch, the
// doubled sentinel collapses into one.
func Inject(text string, spans []Span) (result Marked) {
	var buf strings.Builder
	buf.Grow(len(text) + 2*len(spans))
	last := 0
	for _, span := range spans {
		if span.Start == span.End {
			continue
		}
		if span.Start == last && len(result.Boundaries) != 0 {
			// adjacent to the previous span: reuse its closing sentinel
			prev := &result.Boundaries[len(result.Boundaries)-1]
			prev.Open = true
			prev.Color = span.Color
		} else {
			buf.WriteString(text[last:span.Start])
			buf.WriteString(Sentinel)
			result.Boundaries = append(result.Boundaries, Boundary{Open: true, Color: span.Color})
		}
		buf.WriteString(text[span.Start:span.End])
		buf.WriteString(Sentinel)
		result.Boundaries = append(result.Boundaries, Boundary{Close: true})
		last = span.End
	}
	buf.WriteString(text[last:])
	result.Text = buf.String()
	return
}
