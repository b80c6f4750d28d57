// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package inflation

import (
	"fmt"
	"math/big"

	"github.com/vechain/parastaking/per"
	"github.com/vechain/parastaking/thor"
)

// Parameters are the rates of the current year.
type Parameters struct {
	InflationRate    per.Perbill
	DisinflationRate per.Perbill
}

func (p Parameters) String() string {
	return fmt.Sprintf("inflation %v disinflation %v", p.InflationRate, p.DisinflationRate)
}

// Configuration is the monetary policy installed at genesis or by migration.
// Parameters holds the base rates of the first year.
type Configuration struct {
	Parameters     Parameters
	StagnationRate per.Perbill
	StagnationYear uint32
}

// DefaultConfiguration is 3.5% inflation decreasing by 10% a year, down to 1% from year 13.
func DefaultConfiguration() Configuration {
	return Configuration{
		Parameters: Parameters{
			InflationRate:    per.PerbillFromPerthousand(35),
			DisinflationRate: per.PerbillFromPercent(10),
		},
		StagnationRate: per.PerbillFromPercent(1),
		StagnationYear: 13,
	}
}

// Config holds the constants of the controller.
type Config struct {
	BlocksPerYear uint32
	// DoInitializeAt is the block at which the first year starts.
	DoInitializeAt uint32
	// BlockRewardBeforeInitialize is minted each block until DoInitializeAt.
	BlockRewardBeforeInitialize *big.Int
	// DefaultTotalIssuance is the issuance the pot is topped up to when the first year starts.
	DefaultTotalIssuance *big.Int
	Default              Configuration
}

// DefaultConfig returns the mainnet like constants, for blocks of 6 seconds.
func DefaultConfig() Config {
	return Config{
		BlocksPerYear:               365 * 24 * 600,
		DoInitializeAt:              1,
		BlockRewardBeforeInitialize: thor.Units(80),
		DefaultTotalIssuance:        thor.Units(4_200_000_000),
		Default:                     DefaultConfiguration(),
	}
}

// DevConfig returns short years, handy for local networks and tests.
func DevConfig() Config {
	return Config{
		BlocksPerYear:               100,
		DoInitializeAt:              10,
		BlockRewardBeforeInitialize: big.NewInt(1000),
		DefaultTotalIssuance:        thor.Units(10_000_000),
		Default:                     DefaultConfiguration(),
	}
}
