// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chain

import "github.com/vechain/parastaking/metrics"

var (
	metricBlocks       = metrics.LazyLoadCounter("chain_blocks_count")
	metricBest         = metrics.LazyLoadGauge("chain_best_block")
	metricCacheHitMiss = metrics.LazyLoadGaugeVec("repo_cache_hit_rate_permille", []string{"type"})
)
