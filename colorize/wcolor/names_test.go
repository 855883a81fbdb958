// Copyright (c) 2025 hlcolor contributors
// released under the MIT license

package wcolor

import (
	"errors"
	"testing"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		name     string
		expected string
	}{
		{"reset", Reset},
		{"resetcolor", ResetKeepAttrs},
		{"bold", "\x1a\x01"},
		{"-underline", "\x1b\x04"},
		{"yellow", "\x19F08"},
		{"Yellow", "\x19F08"},
		{"*yellow", "\x19F*08"},
		{"*_yellow", "\x1a\x04\x19F*08"},
		{"214", "\x19F@00214"},
		{"_214", "\x19F@_00214"},
		{"red,blue", "\x19*03~09"},
		{"lightred,200", "\x19*04~@00200"},
		{"chat_highlight", "\x1919"},
		{"chat", "\x1901"},
	}
	for _, tc := range cases {
		result, err := Resolve(tc.name)
		if err != nil {
			t.Errorf("Resolve(%q): unexpected error %v", tc.name, err)
			continue
		}
		assertEqual(result, tc.expected, t)
		// every resolved color must tokenize as formatting only
		for _, tok := range Tokenize(result) {
			if !tok.IsFormatting() && tok.Kind != ResetCode {
				t.Errorf("Resolve(%q) produced content token %q", tc.name, tok.Text)
			}
		}
	}
}

func TestResolveErrors(t *testing.T) {
	for _, name := range []string{"nosuchcolor", "256", "-1", "red,nosuch", "*.red", "٣"} {
		if _, err := Resolve(name); !errors.Is(err, ErrUnknownColor) {
			t.Errorf("Resolve(%q): expected ErrUnknownColor, got %v", name, err)
		}
	}
	if _, err := Resolve("  "); err != ErrColorEmpty {
		t.Errorf("expected ErrColorEmpty, got %v", err)
	}
}
