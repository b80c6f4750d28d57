// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"hash"
	"sync"

	"golang.org/x/crypto/blake2b"
)

type blake2bState struct {
	hash.Hash
	b32 Bytes32
}

var blake2bPool = sync.Pool{
	New: func() any {
		h, _ := blake2b.New256(nil)
		return &blake2bState{Hash: h}
	},
}

// Blake2b computes blake2b-256 checksum of the concatenated data.
func Blake2b(data ...[]byte) Bytes32 {
	if len(data) == 1 {
		return blake2b.Sum256(data[0])
	}
	st := blake2bPool.Get().(*blake2bState)
	for _, b := range data {
		st.Write(b)
	}
	st.Sum(st.b32[:0])
	h := st.b32
	st.Reset()
	blake2bPool.Put(st)
	return h
}
