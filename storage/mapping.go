// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"encoding/binary"

	"github.com/vechain/parastaking/thor"
)

type Key interface {
	Bytes() []byte
}

// Uint32Key adapts block numbers and rounds to Key.
type Uint32Key uint32

func (k Uint32Key) Bytes() []byte {
	return binary.BigEndian.AppendUint32(nil, uint32(k))
}

// Mapping is a keyed collection of RLP encoded values. The slot of each entry is
// blake2b(key, base position).
type Mapping[K Key, V any] struct {
	context *Context
	basePos thor.Bytes32
}

func NewMapping[K Key, V any](context *Context, pos thor.Bytes32) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, basePos: pos}
}

func (m *Mapping[K, V]) position(key K) thor.Bytes32 {
	return thor.Blake2b(key.Bytes(), m.basePos.Bytes())
}

// Get returns the value and whether it exists. A missing entry yields the zero V.
func (m *Mapping[K, V]) Get(key K) (value V, found bool, err error) {
	found, err = m.context.state.DecodeStorage(m.context.address, m.position(key), &value)
	return
}

func (m *Mapping[K, V]) Set(key K, value V) error {
	return m.context.state.EncodeStorage(m.context.address, m.position(key), value)
}

func (m *Mapping[K, V]) Delete(key K) {
	m.context.state.SetRawStorage(m.context.address, m.position(key), nil)
}
