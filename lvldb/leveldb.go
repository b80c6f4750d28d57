// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package lvldb implements kv.Store on goleveldb, fronted by a value cache.
package lvldb

import (
	"slices"
	"sync"

	"github.com/pkg/errors"
	"github.com/qianbin/directcache"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/vechain/parastaking/cache"
	"github.com/vechain/parastaking/kv"
)

var _ kv.Store = (*LevelDB)(nil)

var (
	writeOpt = opt.WriteOptions{}
	readOpt  = opt.ReadOptions{}
	scanOpt  = opt.ReadOptions{DontFillCache: true}
)

const idealBatchSize = 128 * 1024

// Options options for creating level db instance.
type Options struct {
	CacheSize              int // in MiB, shared by the leveldb block cache and write buffers
	OpenFilesCacheCapacity int
	ValueCacheSize         int // in MiB, 0 disables the value cache
}

// LevelDB wraps level db impls.
type LevelDB struct {
	stg       storage.Storage
	db        *leveldb.DB
	values    *directcache.Cache
	stats     cache.Stats
	batchPool sync.Pool
}

// New create a persistent level db instance.
// Create an empty one if not exists, or open if already there.
func New(path string, opts Options) (*LevelDB, error) {
	stg, err := storage.OpenFile(path, false)
	if err != nil {
		return nil, errors.Wrap(err, "open storage")
	}
	ldb, err := open(stg, opts)
	if err != nil {
		stg.Close()
		return nil, err
	}
	return ldb, nil
}

// NewMem create a level db in memory.
func NewMem() (*LevelDB, error) {
	return open(storage.NewMemStorage(), Options{})
}

func open(stg storage.Storage, opts Options) (*LevelDB, error) {
	cacheSize := max(opts.CacheSize, 16)
	openFiles := max(opts.OpenFilesCacheCapacity, 16)

	db, err := leveldb.Open(stg, &opt.Options{
		OpenFilesCacheCapacity: openFiles,
		BlockCacheCapacity:     cacheSize / 2 * opt.MiB,
		WriteBuffer:            cacheSize / 4 * opt.MiB, // Two of these are used internally
		Filter:                 filter.NewBloomFilter(10),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open level db")
	}
	ldb := &LevelDB{
		stg: stg,
		db:  db,
		batchPool: sync.Pool{
			New: func() any { return &leveldb.Batch{} },
		},
	}
	if opts.ValueCacheSize > 0 {
		ldb.values = directcache.New(opts.ValueCacheSize * opt.MiB)
	}
	return ldb, nil
}

// IsNotFound to check if the error returned by Get indicates key not found.
func (ldb *LevelDB) IsNotFound(err error) bool {
	return errors.Is(err, leveldb.ErrNotFound)
}

// Get retrieve value for given key.
// It returns an error if key not found. The error can be checked via IsNotFound.
func (ldb *LevelDB) Get(key []byte) ([]byte, error) {
	if ldb.values != nil {
		var (
			val     []byte
			deleted bool
		)
		if ldb.values.AdvGet(key, func(entry []byte) {
			deleted = entry[0] == tombstone
			val = slices.Clone(entry[1:])
		}, false) {
			ldb.stats.Hit()
			if deleted {
				return nil, leveldb.ErrNotFound
			}
			return val, nil
		}
		ldb.stats.Miss()
	}
	val, err := ldb.db.Get(key, &readOpt)
	if err != nil {
		return nil, err
	}
	ldb.cachePut(key, val)
	return val, nil
}

// Has returns whether a key exists.
func (ldb *LevelDB) Has(key []byte) (bool, error) {
	return ldb.db.Has(key, &readOpt)
}

// Put save value for given key.
func (ldb *LevelDB) Put(key, val []byte) error {
	if err := ldb.db.Put(key, val, &writeOpt); err != nil {
		return err
	}
	ldb.cachePut(key, val)
	return nil
}

// Delete deletes the given key and its value.
func (ldb *LevelDB) Delete(key []byte) error {
	if err := ldb.db.Delete(key, &writeOpt); err != nil {
		return err
	}
	ldb.cacheDel(key)
	return nil
}

// value cache entries carry a leading flag byte so that deletions are cached as well.
const (
	tombstone byte = iota
	present
)

func (ldb *LevelDB) cachePut(key, val []byte) {
	if ldb.values != nil {
		_ = ldb.values.AdvSet(key, len(val)+1, func(entry []byte) {
			entry[0] = present
			copy(entry[1:], val)
		})
	}
}

func (ldb *LevelDB) cacheDel(key []byte) {
	if ldb.values != nil {
		_ = ldb.values.Set(key, []byte{tombstone})
	}
}

// CacheStats returns the hit/miss counters of the value cache.
func (ldb *LevelDB) CacheStats() *cache.Stats {
	return &ldb.stats
}

// Close close the level db and releases its storage lock.
// Later operations will all fail.
func (ldb *LevelDB) Close() error {
	if err := ldb.db.Close(); err != nil {
		ldb.stg.Close()
		return err
	}
	return ldb.stg.Close()
}

// Snapshot returns a consistent read only view. Reads bypass the value cache.
func (ldb *LevelDB) Snapshot() kv.Snapshot {
	s, err := ldb.db.GetSnapshot()
	return &struct {
		kv.GetFunc
		kv.HasFunc
		kv.IsNotFoundFunc
		kv.ReleaseFunc
	}{
		func(key []byte) ([]byte, error) {
			if err != nil {
				return nil, err
			}
			return s.Get(key, &readOpt)
		},
		func(key []byte) (bool, error) {
			if err != nil {
				return false, err
			}
			return s.Has(key, &readOpt)
		},
		ldb.IsNotFound,
		func() {
			if s != nil {
				s.Release()
			}
		},
	}
}

// cacheReplay applies a written batch to the value cache.
type cacheReplay struct{ ldb *LevelDB }

func (r cacheReplay) Put(key, val []byte) { r.ldb.cachePut(key, val) }
func (r cacheReplay) Delete(key []byte)   { r.ldb.cacheDel(key) }

// Bulk returns a batch writer. Writes become visible on Write, or earlier
// in chunks when auto flush is enabled.
func (ldb *LevelDB) Bulk() kv.Bulk {
	var (
		batch     *leveldb.Batch
		autoFlush bool
	)
	getBatch := func() *leveldb.Batch {
		if batch == nil {
			batch = ldb.batchPool.Get().(*leveldb.Batch)
			batch.Reset()
		}
		return batch
	}
	flush := func(minSize int) error {
		if batch == nil || len(batch.Dump()) < minSize {
			return nil
		}
		if batch.Len() > 0 {
			if err := ldb.db.Write(batch, &writeOpt); err != nil {
				return errors.Wrap(err, "write batch")
			}
			if ldb.values != nil {
				if err := batch.Replay(cacheReplay{ldb}); err != nil {
					return errors.Wrap(err, "replay batch")
				}
			}
		}
		ldb.batchPool.Put(batch)
		batch = nil
		return nil
	}

	return &struct {
		kv.PutFunc
		kv.DeleteFunc
		kv.EnableAutoFlushFunc
		kv.WriteFunc
	}{
		func(key, val []byte) error {
			getBatch().Put(key, val)
			if autoFlush {
				return flush(idealBatchSize)
			}
			return nil
		},
		func(key []byte) error {
			getBatch().Delete(key)
			if autoFlush {
				return flush(idealBatchSize)
			}
			return nil
		},
		func() { autoFlush = true },
		func() error { return flush(0) },
	}
}

// Iterate creates an iterator over the range, without filling the block cache.
func (ldb *LevelDB) Iterate(r kv.Range) kv.Iterator {
	return ldb.db.NewIterator(&util.Range{Start: r.Start, Limit: r.Limit}, &scanOpt)
}
