// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package chain stores block summaries and the committed state.
package chain

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/parastaking/cache"
	"github.com/vechain/parastaking/co"
	"github.com/vechain/parastaking/kv"
	"github.com/vechain/parastaking/state"
)

const (
	stateBucket   kv.Bucket = "s." // module storage
	summaryBucket kv.Bucket = "b." // block summaries keyed by number
	propBucket    kv.Bucket = "p." // named properties such as the best block
)

var (
	errNotFound = errors.New("not found")
	bestKey     = []byte("best-block")
)

// Repository stores block summaries and commits block states.
//
// It's thread-safe.
type Repository struct {
	db        kv.Store
	summaries kv.Store
	props     kv.Store

	best      atomic.Pointer[Summary]
	tick      co.Signal
	summaryCh *cache.LRU[uint32, *Summary]
}

// NewRepository opens the repository over db. An empty db has no best block until
// the genesis is added.
func NewRepository(db kv.Store) (*Repository, error) {
	lru, err := cache.NewLRU[uint32, *Summary](512)
	if err != nil {
		return nil, err
	}
	repo := &Repository{
		db:        db,
		summaries: summaryBucket.NewStore(db),
		props:     propBucket.NewStore(db),
		summaryCh: lru,
	}

	val, err := repo.props.Get(bestKey)
	if err != nil {
		if !repo.props.IsNotFound(err) {
			return nil, err
		}
		return repo, nil
	}
	best, err := repo.GetSummary(binary.BigEndian.Uint32(val))
	if err != nil {
		return nil, errors.Wrap(err, "get best block")
	}
	repo.best.Store(best)
	return repo, nil
}

// IsNotFound reports whether err is a missing block.
func (r *Repository) IsNotFound(err error) bool {
	return errors.Is(err, errNotFound) || r.db.IsNotFound(err)
}

// BestSummary returns the summary of the latest block, nil before genesis.
func (r *Repository) BestSummary() *Summary {
	return r.best.Load()
}

// NewTicker returns a waiter firing on every new block.
func (r *Repository) NewTicker() *co.Waiter {
	return r.tick.NewWaiter()
}

// NewState returns a state over the latest committed values.
func (r *Repository) NewState() *state.State {
	return state.New(stateBucket.NewGetter(r.db))
}

// NewStateSnapshot returns a state over a frozen view of the committed values.
// It stays consistent while blocks are added. Call release when done.
func (r *Repository) NewStateSnapshot() (st *state.State, release func()) {
	snap := r.db.Snapshot()
	return state.New(stateBucket.NewGetter(snap)), snap.Release
}

// AddBlock commits the state changes of the block together with its summary and
// makes it the best block.
func (r *Repository) AddBlock(summary *Summary, stage *state.Stage) error {
	if best := r.best.Load(); best != nil {
		if summary.ParentID != best.ID || summary.Number != best.Number+1 {
			return errors.Errorf("block %d does not extend best block %d", summary.Number, best.Number)
		}
	} else if summary.Number != 0 {
		return errors.New("first block must be the genesis")
	}

	data, err := rlp.EncodeToBytes(summary)
	if err != nil {
		return err
	}
	key := numberKey(summary.Number)

	bulk := r.db.Bulk()
	if err := stage.Commit(stateBucket.NewPutter(bulk)); err != nil {
		return err
	}
	if err := summaryBucket.NewPutter(bulk).Put(key, data); err != nil {
		return err
	}
	if err := propBucket.NewPutter(bulk).Put(bestKey, key); err != nil {
		return err
	}
	if err := bulk.Write(); err != nil {
		return errors.Wrap(err, "write block")
	}

	r.summaryCh.Add(summary.Number, summary)
	r.best.Store(summary)
	r.tick.Broadcast()
	metricBlocks().Add(1)
	metricBest().Set(int64(summary.Number))
	return nil
}

// GetSummary returns the summary of block number.
func (r *Repository) GetSummary(number uint32) (*Summary, error) {
	s, err := r.summaryCh.GetOrLoad(number, func(n uint32) (*Summary, error) {
		data, err := r.summaries.Get(numberKey(n))
		if err != nil {
			if r.summaries.IsNotFound(err) {
				return nil, errNotFound
			}
			return nil, err
		}
		var s Summary
		if err := rlp.DecodeBytes(data, &s); err != nil {
			return nil, errors.Wrap(err, "decode summary")
		}
		return &s, nil
	})
	metricCacheHitMiss().SetWithLabel(int64(r.summaryCh.Stats().Rate()*1000), map[string]string{"type": "summaries"})
	return s, err
}

// Summaries returns the summaries of blocks in [from, to], clipped to the best block.
func (r *Repository) Summaries(from, to uint32) ([]*Summary, error) {
	best := r.best.Load()
	if best == nil || from > best.Number {
		return nil, nil
	}
	to = min(to, best.Number)
	out := make([]*Summary, 0, to-from+1)
	for n := from; n <= to; n++ {
		s, err := r.GetSummary(n)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func numberKey(n uint32) []byte {
	return binary.BigEndian.AppendUint32(nil, n)
}
