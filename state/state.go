// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/parastaking/kv"
	"github.com/vechain/parastaking/stackedmap"
	"github.com/vechain/parastaking/thor"
)

// storageKey addresses one storage slot of one module account.
type storageKey struct {
	addr thor.Address
	pos  thor.Bytes32
}

func (k storageKey) bytes() []byte {
	b := make([]byte, 0, thor.AddressLength+32)
	return append(append(b, k.addr[:]...), k.pos[:]...)
}

// State manages the storage of module accounts on top of a committed kv snapshot.
// Writes are journaled in a stacked map, so that they can be reverted to a checkpoint
// and finally staged into a change set.
type State struct {
	src   kv.Getter
	cache map[storageKey][]byte // committed values loaded from src
	sm    *stackedmap.StackedMap[storageKey, []byte]
}

// New creates a state reading committed values from src.
func New(src kv.Getter) *State {
	s := &State{
		src:   src,
		cache: make(map[storageKey][]byte),
	}
	s.sm = stackedmap.New(s.load)
	// the base level
	s.sm.Push()
	return s
}

func (s *State) load(key storageKey) ([]byte, bool, error) {
	if v, ok := s.cache[key]; ok {
		return v, true, nil
	}
	v, err := s.src.Get(key.bytes())
	if err != nil {
		if !s.src.IsNotFound(err) {
			return nil, false, errors.Wrap(err, "load storage")
		}
		v = nil
	}
	s.cache[key] = v
	return v, true, nil
}

// GetRawStorage returns the raw value of the slot, nil if absent.
func (s *State) GetRawStorage(addr thor.Address, pos thor.Bytes32) ([]byte, error) {
	v, _, err := s.sm.Get(storageKey{addr, pos})
	return v, err
}

// SetRawStorage sets the raw value of the slot. An empty value deletes the slot.
func (s *State) SetRawStorage(addr thor.Address, pos thor.Bytes32, val []byte) {
	s.sm.Put(storageKey{addr, pos}, val)
}

// DecodeStorage decodes the RLP value of the slot into val.
// It returns false and leaves val untouched when the slot is absent.
func (s *State) DecodeStorage(addr thor.Address, pos thor.Bytes32, val any) (bool, error) {
	raw, err := s.GetRawStorage(addr, pos)
	if err != nil {
		return false, err
	}
	if len(raw) == 0 {
		return false, nil
	}
	if err := rlp.DecodeBytes(raw, val); err != nil {
		return false, errors.Wrapf(err, "decode storage %v", pos)
	}
	return true, nil
}

// EncodeStorage stores the RLP encoding of val in the slot.
func (s *State) EncodeStorage(addr thor.Address, pos thor.Bytes32, val any) error {
	raw, err := rlp.EncodeToBytes(val)
	if err != nil {
		return errors.Wrapf(err, "encode storage %v", pos)
	}
	s.SetRawStorage(addr, pos, raw)
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo reverts to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	if revision < 1 {
		panic("state: invalid revision")
	}
	s.sm.PopTo(revision)
}

// Stage collects the latest value of every slot written since the state was created.
func (s *State) Stage() *Stage {
	changes := make(map[storageKey][]byte)
	s.sm.Journal(func(k storageKey, v []byte) bool {
		changes[k] = v
		return true
	})
	return newStage(changes)
}
