// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import "sync/atomic"

// Stats counts cache hits and misses. Safe for concurrent use.
type Stats struct {
	hit, miss atomic.Int64
	lastRate  atomic.Int32 // hit rate in permille at the last Stats call
}

// Hit records a hit.
func (cs *Stats) Hit() int64 { return cs.hit.Add(1) }

// Miss records a miss.
func (cs *Stats) Miss() int64 { return cs.miss.Add(1) }

// Rate returns the hit rate in [0, 1].
func (cs *Stats) Rate() float64 {
	hit, miss := cs.hit.Load(), cs.miss.Load()
	if hit+miss == 0 {
		return 0
	}
	return float64(hit) / float64(hit+miss)
}

// Stats returns hits and misses, and whether the hit rate (in permille)
// moved since the previous call. Used to avoid logging unchanged figures.
func (cs *Stats) Stats() (changed bool, hit, miss int64) {
	hit, miss = cs.hit.Load(), cs.miss.Load()
	rate := int32(cs.Rate() * 1000)
	return cs.lastRate.Swap(rate) != rate, hit, miss
}
