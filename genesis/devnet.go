// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"fmt"
	"sync"

	"github.com/vechain/parastaking/runtime"
	"github.com/vechain/parastaking/thor"
)

// DevAccounts returns the pre-alloced accounts of the dev network.
var DevAccounts = sync.OnceValue(func() []thor.Address {
	accs := make([]thor.Address, 10)
	for i := range accs {
		accs[i] = thor.AccountFromID(fmt.Sprintf("dev-%d", i))
	}
	return accs
})

// NewDevnet creates the genesis of the dev network: ten funded accounts, the first
// four of them collators, and short rounds and years.
func NewDevnet() *Genesis {
	launchTime := uint64(1735689600) // 2025-01-01 00:00:00 UTC

	builder := new(Builder).
		Timestamp(launchTime).
		Config(runtime.DevConfig())
	for _, acc := range DevAccounts() {
		builder.Balance(acc, thor.Units(1_000_000))
	}
	for i, acc := range DevAccounts()[:4] {
		builder.Collator(acc, thor.Units(uint64(10_000-i*1000)))
	}
	builder.Delegator(DevAccounts()[4], DevAccounts()[0], thor.Units(500))

	g, err := newGenesis("devnet", builder)
	if err != nil {
		panic(err)
	}
	return g
}
