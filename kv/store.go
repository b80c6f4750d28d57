// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package kv defines the key value interfaces the state and index layers are built on.
package kv

import "github.com/syndtr/goleveldb/leveldb/util"

// Getter defines methods to read kv.
type Getter interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	IsNotFound(err error) bool
}

// Putter defines methods to write kv.
type Putter interface {
	Put(key, val []byte) error
	Delete(key []byte) error
}

// GetPutter is both Getter and Putter.
type GetPutter interface {
	Getter
	Putter
}

// Snapshot is a frozen read only view.
type Snapshot interface {
	Getter
	Release()
}

// Bulk collects writes and applies them on Write.
type Bulk interface {
	Putter
	EnableAutoFlush() // if set, the bulk will be non-atomic
	Write() error
}

// Iterator iterates over a key range in ascending key order.
type Iterator interface {
	First() bool
	Last() bool
	Next() bool
	Prev() bool
	Key() []byte
	Value() []byte
	Release()
	Error() error
}

// Range is a key range.
type Range struct {
	Start []byte // start of key range (included)
	Limit []byte // limit of key range (excluded)
}

// PrefixRange returns the range covering all keys with the given prefix.
func PrefixRange(prefix []byte) Range {
	r := util.BytesPrefix(prefix)
	return Range{Start: r.Start, Limit: r.Limit}
}

// Store defines the full functional kv store.
type Store interface {
	Getter
	Putter

	Snapshot() Snapshot
	Bulk() Bulk
	Iterate(r Range) Iterator
}
