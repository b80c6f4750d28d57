// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package packer

import "errors"

var (
	errBlockFull  = errors.New("block is full")
	errNotBest    = errors.New("parent is not the best block")
	errPackedFlow = errors.New("flow already packed")
)

// IsBlockFull reports whether the block can take no more calls.
func IsBlockFull(err error) bool {
	return errors.Is(err, errBlockFull)
}
