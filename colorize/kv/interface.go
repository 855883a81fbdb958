// Copyright (c) 2022 Valentin Lorentz
// Copyright (c) 2025 hlcolor contributors
// released under the MIT license

// Package kv is a small key/value abstraction over buntdb, used to keep
// per-buffer properties (such as highlight_regex) across runs.
package kv

import (
	"errors"

	"github.com/tidwall/buntdb"
)

var (
	// ErrNotFound is returned by Get for a missing key.
	ErrNotFound = buntdb.ErrNotFound
	// ErrClosed is returned when the store was already closed.
	ErrClosed = errors.New("store is closed")
)

// InMemory is the path that opens a store with no backing file.
const InMemory = ":memory:"

type Tx interface {
	AscendKeys(pattern string, iterator func(key, value string) bool) error
	Delete(key string) (val string, err error)
	Get(key string) (val string, err error)
	Set(key string, value string) (previousValue string, replaced bool, err error)
}

type Store interface {
	Close() error
	Update(fn func(tx Tx) error) error
	View(fn func(tx Tx) error) error
}
