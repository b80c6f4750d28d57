// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"sync"
)

// Bucket is the key prefix of a logical table. Each module of the chain
// (state, block summaries, meta) lives in its own bucket of one store.
type Bucket string

type keyBuf struct {
	k []byte
}

var keyBufPool = sync.Pool{
	New: func() any {
		return &keyBuf{}
	},
}

// with calls fn with the bucket prefixed key. The slice must not be retained.
func (b Bucket) with(key []byte, fn func(k []byte)) {
	buf := keyBufPool.Get().(*keyBuf)
	buf.k = append(append(buf.k[:0], b...), key...)
	fn(buf.k)
	keyBufPool.Put(buf)
}

// NewGetter wraps src so that keys are read from the bucket.
func (b Bucket) NewGetter(src Getter) Getter {
	return &struct {
		GetFunc
		HasFunc
		IsNotFoundFunc
	}{
		func(key []byte) (val []byte, err error) {
			b.with(key, func(k []byte) { val, err = src.Get(k) })
			return
		},
		func(key []byte) (has bool, err error) {
			b.with(key, func(k []byte) { has, err = src.Has(k) })
			return
		},
		src.IsNotFound,
	}
}

// NewPutter wraps src so that keys are written into the bucket.
func (b Bucket) NewPutter(src Putter) Putter {
	return &struct {
		PutFunc
		DeleteFunc
	}{
		func(key, val []byte) (err error) {
			b.with(key, func(k []byte) { err = src.Put(k, val) })
			return
		},
		func(key []byte) (err error) {
			b.with(key, func(k []byte) { err = src.Delete(k) })
			return
		},
	}
}

// NewStore wraps src as a full store confined to the bucket.
func (b Bucket) NewStore(src Store) Store {
	return &struct {
		Getter
		Putter
		SnapshotFunc
		BulkFunc
		IterateFunc
	}{
		b.NewGetter(src),
		b.NewPutter(src),
		func() Snapshot {
			snapshot := src.Snapshot()
			return &struct {
				Getter
				ReleaseFunc
			}{
				b.NewGetter(snapshot),
				snapshot.Release,
			}
		},
		func() Bulk {
			bulk := src.Bulk()
			return &struct {
				Putter
				EnableAutoFlushFunc
				WriteFunc
			}{
				b.NewPutter(bulk),
				bulk.EnableAutoFlush,
				bulk.Write,
			}
		},
		func(r Range) Iterator {
			prefixed := Range{
				Start: append([]byte(b), r.Start...),
			}
			if len(r.Limit) == 0 {
				prefixed.Limit = PrefixRange([]byte(b)).Limit
			} else {
				prefixed.Limit = append([]byte(b), r.Limit...)
			}
			iter := src.Iterate(prefixed)
			return &struct {
				FirstFunc
				LastFunc
				NextFunc
				PrevFunc
				KeyFunc
				ValueFunc
				ReleaseFunc
				ErrorFunc
			}{
				iter.First,
				iter.Last,
				iter.Next,
				iter.Prev,
				// strip the bucket
				func() []byte { return iter.Key()[len(b):] },
				iter.Value,
				iter.Release,
				iter.Error,
			}
		},
	}
}
