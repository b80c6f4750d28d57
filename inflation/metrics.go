// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package inflation

import (
	"math/big"

	"github.com/vechain/parastaking/metrics"
	"github.com/vechain/parastaking/thor"
)

var (
	metricYear         = metrics.LazyLoadGauge("inflation_year")
	metricBlockRewards = metrics.LazyLoadGauge("inflation_block_rewards_units")
	metricMinted       = metrics.LazyLoadCounter("inflation_minted_units")
)

func units(v *big.Int) int64 {
	return new(big.Int).Quo(v, thor.Decimals).Int64()
}
