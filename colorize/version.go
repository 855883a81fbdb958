// Copyright (c) 2020 Shivaram Lingamneni
// Copyright (c) 2025 hlcolor contributors
// Released under the MIT license

package colorize

import "fmt"

const (
	// SemVer is the semantic version of hlcolor.
	SemVer = "1.0.0-unreleased"
)

var (
	// Ver is the full version of hlcolor, as printed by --version.
	Ver = fmt.Sprintf("hlcolor-%s", SemVer)
	// Commit is the full git hash, if available
	Commit string
)

// initialize version strings (these are set in package main via linker flags)
func SetVersionString(version, commit string) {
	Commit = commit
	if version != "" {
		Ver = fmt.Sprintf("hlcolor-%s", version)
	} else if len(Commit) == 40 {
		Ver = fmt.Sprintf("hlcolor-%s-%s", SemVer, Commit[:16])
	}
}
