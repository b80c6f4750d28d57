// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	lru "github.com/hashicorp/golang-lru"
)

// LRU is a typed LRU cache over golang-lru which also tracks hit/miss stats.
type LRU[K comparable, V any] struct {
	c     *lru.Cache
	stats Stats
}

// NewLRU create a LRU cache instance.
// maxSize should be > 0, or an error returned.
func NewLRU[K comparable, V any](maxSize int) (*LRU[K, V], error) {
	c, err := lru.New(maxSize)
	if err != nil {
		return nil, err
	}
	return &LRU[K, V]{c: c}, nil
}

func (l *LRU[K, V]) Get(key K) (V, bool) {
	if v, ok := l.c.Get(key); ok {
		l.stats.Hit()
		return v.(V), true
	}
	l.stats.Miss()
	var zero V
	return zero, false
}

func (l *LRU[K, V]) Add(key K, val V) {
	l.c.Add(key, val)
}

func (l *LRU[K, V]) Remove(key K) {
	l.c.Remove(key)
}

func (l *LRU[K, V]) Len() int {
	return l.c.Len()
}

func (l *LRU[K, V]) Purge() {
	l.c.Purge()
}

// Stats returns the hit/miss collector of the cache.
func (l *LRU[K, V]) Stats() *Stats {
	return &l.stats
}

// GetOrLoad first try to get from cache, do load if missed.
func (l *LRU[K, V]) GetOrLoad(key K, load func(K) (V, error)) (V, error) {
	if v, ok := l.Get(key); ok {
		return v, nil
	}
	v, err := load(key)
	if err != nil {
		var zero V
		return zero, err
	}
	l.c.Add(key, v)
	return v, nil
}
