// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/vechain/parastaking/metrics"
	"github.com/vechain/parastaking/thor"
)

var (
	metricCalls      = metrics.LazyLoadCounterVec("staking_calls_count", []string{"op", "status"})
	metricRound      = metrics.LazyLoadGauge("staking_round")
	metricSelected   = metrics.LazyLoadGauge("staking_selected_candidates")
	metricTotalStake = metrics.LazyLoadGaugeVec("staking_total_stake", []string{"kind"})
	metricRewarded   = metrics.LazyLoadCounter("staking_rewarded_units")
)

// units truncates an amount to whole tokens for reporting.
func units(v *big.Int) int64 {
	return new(big.Int).Quo(v, thor.Decimals).Int64()
}

func (s *Staking) reportSelection(selected int) error {
	total, err := s.globalStatsService.Get()
	if err != nil {
		return err
	}
	metricSelected().Set(int64(selected))
	metricTotalStake().SetWithLabel(units(total.Collators), map[string]string{"kind": "collators"})
	metricTotalStake().SetWithLabel(units(total.Delegators), map[string]string{"kind": "delegators"})
	return nil
}
