// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegator

import (
	"math/big"

	"github.com/vechain/parastaking/staking/orderedset"
	"github.com/vechain/parastaking/thor"
)

// Delegator holds the delegations of an account, one per collator candidate.
type Delegator struct {
	Delegations *orderedset.Set
	Total       *big.Int
}

// New returns a delegator with a single delegation.
func New(collator thor.Address, amount *big.Int) *Delegator {
	d := &Delegator{Delegations: orderedset.New()}
	d.Put(collator, amount)
	return d
}

// Put inserts or updates the delegation to collator.
func (d *Delegator) Put(collator thor.Address, amount *big.Int) {
	d.Delegations.Insert(orderedset.Stake{Owner: collator, Amount: new(big.Int).Set(amount)})
	d.Total = d.Delegations.Sum()
}

// Remove drops the delegation to collator.
func (d *Delegator) Remove(collator thor.Address) (*big.Int, bool) {
	st, ok := d.Delegations.Remove(collator)
	if !ok {
		return nil, false
	}
	d.Total = d.Delegations.Sum()
	return st.Amount, true
}

// Amount returns the amount delegated to collator.
func (d *Delegator) Amount(collator thor.Address) (*big.Int, bool) {
	st, ok := d.Delegations.Get(collator)
	if !ok {
		return nil, false
	}
	return st.Amount, true
}

func (d *Delegator) Empty() bool { return d.Delegations.Len() == 0 }

// Counter limits how many delegations an account makes per round. Revoking a
// delegation does not decrement it.
type Counter struct {
	Round uint32
	Count uint32
}

// In returns the count valid for round, restarting it on a new round.
func (c Counter) In(round uint32) Counter {
	if c.Round != round {
		return Counter{Round: round}
	}
	return c
}
