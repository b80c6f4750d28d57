// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package callpool

import "github.com/vechain/parastaking/metrics"

var (
	metricPending = metrics.LazyLoadGauge("callpool_pending_count")
	metricResults = metrics.LazyLoadCounterVec("callpool_results_count", []string{"status"})
)
