// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package round

// Info describes the current round.
type Info struct {
	Current uint32 // round index
	First   uint32 // first block of the round
	Length  uint32 // blocks per round
}

// ShouldUpdate reports whether block starts a new round.
func (r Info) ShouldUpdate(block uint32) bool {
	return block >= r.First && block-r.First >= r.Length
}

// Next returns the round starting at block.
func (r Info) Next(block uint32) Info {
	return Info{Current: r.Current + 1, First: block, Length: r.Length}
}

// End returns the block at which the round is expected to end.
func (r Info) End() uint32 {
	return r.First + r.Length
}
