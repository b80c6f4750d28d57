// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/vechain/parastaking/thor"
)

// Config holds the protocol constants of the staking engine. Values that governance
// can change at runtime (blocks per round, max selected candidates, max candidate
// stake) are only initial values here.
type Config struct {
	DefaultBlocksPerRound uint32
	MinBlocksPerRound     uint32
	// StakeDuration is the number of blocks unstaked funds stay locked.
	StakeDuration uint32
	// ExitQueueDelay is the number of rounds a leaving candidate waits.
	ExitQueueDelay           uint32
	MinCollators             uint32
	MaxTopCandidates         uint32
	MaxDelegatorsPerCollator uint32
	MaxCollatorsPerDelegator uint32
	MaxDelegationsPerRound   uint32
	MaxUnstakeRequests       uint32

	MinCollatorCandidateStake *big.Int
	MinDelegatorStake         *big.Int
	MinDelegation             *big.Int
	DefaultMaxCandidateStake  *big.Int
}

// DefaultConfig returns the mainnet like constants, for blocks of 6 seconds.
func DefaultConfig() Config {
	return Config{
		DefaultBlocksPerRound:     600,
		MinBlocksPerRound:         10,
		StakeDuration:             7 * 24 * 600,
		ExitQueueDelay:            2,
		MinCollators:              4,
		MaxTopCandidates:          16,
		MaxDelegatorsPerCollator:  32,
		MaxCollatorsPerDelegator:  1,
		MaxDelegationsPerRound:    1,
		MaxUnstakeRequests:        10,
		MinCollatorCandidateStake: thor.Units(32_000),
		MinDelegatorStake:         thor.Units(100),
		MinDelegation:             thor.Units(100),
		DefaultMaxCandidateStake:  thor.Units(160_000_000),
	}
}

// DevConfig returns small constants, handy for local networks and tests.
func DevConfig() Config {
	return Config{
		DefaultBlocksPerRound:     5,
		MinBlocksPerRound:         3,
		StakeDuration:             2,
		ExitQueueDelay:            2,
		MinCollators:              2,
		MaxTopCandidates:          10,
		MaxDelegatorsPerCollator:  4,
		MaxCollatorsPerDelegator:  4,
		MaxDelegationsPerRound:    4,
		MaxUnstakeRequests:        6,
		MinCollatorCandidateStake: big.NewInt(10),
		MinDelegatorStake:         big.NewInt(5),
		MinDelegation:             big.NewInt(3),
		DefaultMaxCandidateStake:  thor.Units(160_000_000),
	}
}
