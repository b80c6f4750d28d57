// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package stackedmap implements a journaled map with nested checkpoints.
package stackedmap

// Getter loads a value missing from every level.
type Getter[K comparable, V any] func(key K) (value V, exist bool, err error)

type entry[K comparable, V any] struct {
	key   K
	value V
}

type level[K comparable, V any] struct {
	kvs     map[K]V
	journal []entry[K, V]
}

// StackedMap maintains maps in a stack.
// Each map inherits key/value of map that is at lower level.
// It acts as a map with save-restore/snapshot-revert manner.
type StackedMap[K comparable, V any] struct {
	src    Getter[K, V]
	levels []*level[K, V]
	// for each key, the indices of levels holding it, ascending
	revisions map[K][]int
}

// New create an instance of StackedMap.
// src acts as source of data.
func New[K comparable, V any](src Getter[K, V]) *StackedMap[K, V] {
	return &StackedMap[K, V]{
		src:       src,
		revisions: make(map[K][]int),
	}
}

// Depth returns depth of stack.
func (sm *StackedMap[K, V]) Depth() int {
	return len(sm.levels)
}

// Push pushes a new map on stack.
// It returns stack depth before push.
func (sm *StackedMap[K, V]) Push() int {
	sm.levels = append(sm.levels, &level[K, V]{kvs: make(map[K]V)})
	return len(sm.levels) - 1
}

// Pop pops the map at top of stack, reverting all Put operations since last Push.
func (sm *StackedMap[K, V]) Pop() {
	top := sm.levels[len(sm.levels)-1]
	for key := range top.kvs {
		revs := sm.revisions[key]
		if len(revs) == 1 {
			delete(sm.revisions, key)
		} else {
			sm.revisions[key] = revs[:len(revs)-1]
		}
	}
	sm.levels = sm.levels[:len(sm.levels)-1]
}

// PopTo pops maps until stack depth reaches depth.
func (sm *StackedMap[K, V]) PopTo(depth int) {
	for len(sm.levels) > depth {
		sm.Pop()
	}
}

// Get gets value for given key.
// The second return value indicates whether the given key is found.
func (sm *StackedMap[K, V]) Get(key K) (V, bool, error) {
	if revs, ok := sm.revisions[key]; ok {
		return sm.levels[revs[len(revs)-1]].kvs[key], true, nil
	}
	return sm.src(key)
}

// Put puts key value into map at stack top.
// It will panic if stack is empty.
func (sm *StackedMap[K, V]) Put(key K, value V) {
	rev := len(sm.levels) - 1
	top := sm.levels[rev]
	if _, ok := top.kvs[key]; !ok {
		sm.revisions[key] = append(sm.revisions[key], rev)
	}
	top.kvs[key] = value
	top.journal = append(top.journal, entry[K, V]{key, value})
}

// Journal traverses journal entries of all Put operations, in order.
// The traversal aborts if the callback returns false.
func (sm *StackedMap[K, V]) Journal(cb func(key K, value V) bool) {
	for _, lvl := range sm.levels {
		for _, e := range lvl.journal {
			if !cb(e.key, e.value) {
				return
			}
		}
	}
}
