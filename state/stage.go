// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"slices"

	"github.com/pkg/errors"

	"github.com/vechain/parastaking/kv"
	"github.com/vechain/parastaking/thor"
)

type change struct {
	key []byte
	val []byte
}

// Stage is the ordered change set of a state, ready to be committed.
type Stage struct {
	changes []change
}

func newStage(m map[storageKey][]byte) *Stage {
	changes := make([]change, 0, len(m))
	for k, v := range m {
		changes = append(changes, change{k.bytes(), v})
	}
	slices.SortFunc(changes, func(a, b change) int {
		return bytes.Compare(a.key, b.key)
	})
	return &Stage{changes}
}

// Len returns the number of changed slots.
func (s *Stage) Len() int {
	return len(s.changes)
}

// Hash computes the digest of the change set, chained to the parent digest.
func (s *Stage) Hash(parent thor.Bytes32) thor.Bytes32 {
	parts := make([][]byte, 0, 1+len(s.changes)*2)
	parts = append(parts, parent[:])
	for _, c := range s.changes {
		parts = append(parts, c.key, c.val)
	}
	return thor.Blake2b(parts...)
}

// Commit writes the change set into the putter. Empty values are deleted.
func (s *Stage) Commit(putter kv.Putter) error {
	for _, c := range s.changes {
		var err error
		if len(c.val) == 0 {
			err = putter.Delete(c.key)
		} else {
			err = putter.Put(c.key, c.val)
		}
		if err != nil {
			return errors.Wrap(err, "commit state")
		}
	}
	return nil
}
