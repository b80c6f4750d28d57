// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import "github.com/vechain/parastaking/metrics"

var (
	metricPackedBlocks = metrics.LazyLoadCounterVec("node_packed_blocks_count", []string{"status"})
	metricClockOffset  = metrics.LazyLoadGauge("node_clock_offset_ms")
)
