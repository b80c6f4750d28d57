// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"github.com/vechain/parastaking/thor"
)

// Raw is a singleton cell holding an RLP encoded V.
type Raw[V any] struct {
	context *Context
	pos     thor.Bytes32
}

func NewRaw[V any](context *Context, pos thor.Bytes32) *Raw[V] {
	return &Raw[V]{context: context, pos: pos}
}

// Get returns the stored value, or the zero V if the cell is empty.
func (r *Raw[V]) Get() (value V, err error) {
	_, err = r.context.state.DecodeStorage(r.context.address, r.pos, &value)
	return
}

// Exists reports whether the cell holds a value.
func (r *Raw[V]) Exists() (bool, error) {
	raw, err := r.context.state.GetRawStorage(r.context.address, r.pos)
	return len(raw) > 0, err
}

func (r *Raw[V]) Set(value V) error {
	return r.context.state.EncodeStorage(r.context.address, r.pos, value)
}

func (r *Raw[V]) Delete() {
	r.context.state.SetRawStorage(r.context.address, r.pos, nil)
}
