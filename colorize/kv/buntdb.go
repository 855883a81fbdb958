// Copyright (c) 2022 Valentin Lorentz
// Copyright (c) 2025 hlcolor contributors
// released under the MIT license

// This file implements the Store abstraction using buntdb.

package kv

import (
	"github.com/tidwall/buntdb"
)

/**********************
 * Transactions
 */
type BuntdbTx struct {
	tx *buntdb.Tx
}

func (tx BuntdbTx) AscendKeys(pattern string, iterator func(key, value string) bool) error {
	return tx.tx.AscendKeys(pattern, iterator)
}

func (tx BuntdbTx) Delete(key string) (val string, err error) {
	return tx.tx.Delete(key)
}

func (tx BuntdbTx) Get(key string) (val string, err error) {
	return tx.tx.Get(key)
}

func (tx BuntdbTx) Set(key string, value string) (previousValue string, replaced bool, err error) {
	return tx.tx.Set(key, value, nil)
}

/**********************
 * Database
 */

type BuntdbStore struct {
	db *buntdb.DB
}

// BuntdbOpen opens (creating if necessary) a buntdb file, or an in-memory
// store for InMemory.
func BuntdbOpen(path string) (Store, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, err
	}
	return BuntdbStore{db}, nil
}

func (store BuntdbStore) Close() error {
	return translateErr(store.db.Close())
}

func (store BuntdbStore) Update(fn func(tx Tx) error) error {
	return translateErr(store.db.Update(func(tx *buntdb.Tx) error {
		return fn(BuntdbTx{tx})
	}))
}

func (store BuntdbStore) View(fn func(tx Tx) error) error {
	return translateErr(store.db.View(func(tx *buntdb.Tx) error {
		return fn(BuntdbTx{tx})
	}))
}

func translateErr(err error) error {
	if err == buntdb.ErrDatabaseClosed {
		return ErrClosed
	}
	return err
}
