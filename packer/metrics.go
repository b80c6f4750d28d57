// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package packer

import "github.com/vechain/parastaking/metrics"

var (
	metricPackedCalls = metrics.LazyLoadCounterVec("packer_calls_count", []string{"status"})
	metricPackTime    = metrics.LazyLoadHistogram("packer_duration_ms", metrics.BucketHTTPReqs)
)
