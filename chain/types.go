// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chain

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/parastaking/thor"
)

// Summary presents an executed block.
type Summary struct {
	Number    uint32
	ID        thor.Bytes32
	ParentID  thor.Bytes32
	Timestamp uint64
	Author    thor.Address
	// StateRoot is the digest of the state changes, chained to the parent's.
	StateRoot thor.Bytes32
	Calls     uint32
	Reverted  uint32
	Events    uint32
}

type summaryBody struct {
	Number    uint32
	ParentID  thor.Bytes32
	Timestamp uint64
	Author    thor.Address
	StateRoot thor.Bytes32
	Calls     uint32
	Reverted  uint32
	Events    uint32
}

// Seal computes the block id from every other field.
func (s *Summary) Seal() *Summary {
	data, err := rlp.EncodeToBytes(&summaryBody{
		s.Number, s.ParentID, s.Timestamp, s.Author, s.StateRoot, s.Calls, s.Reverted, s.Events,
	})
	if err != nil {
		panic(err)
	}
	id := thor.Blake2b(data)
	// block number in the first 4 bytes, as ids are ordered by number
	binary.BigEndian.PutUint32(id[:], s.Number)
	s.ID = id
	return s
}

// Number extracts the block number from an id.
func Number(id thor.Bytes32) uint32 {
	return binary.BigEndian.Uint32(id[:])
}
