// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package candidate

import (
	"math/big"

	"github.com/vechain/parastaking/per"
	"github.com/vechain/parastaking/staking/orderedset"
	"github.com/vechain/parastaking/thor"
)

type Status uint8

const (
	StatusActive Status = iota
	StatusLeaving
	StatusIdle
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusLeaving:
		return "leaving"
	case StatusIdle:
		return "idle"
	}
	return "unknown"
}

// Candidate is a collator candidate with its own stake and the delegations it received.
type Candidate struct {
	ID         thor.Address
	Stake      *big.Int
	Delegators *orderedset.Set
	Total      *big.Int
	Status     Status
	LeavingAt  uint32 // round from which the exit can be executed, set while leaving
	Commission per.Permill
}

// New returns an active candidate without delegators.
func New(id thor.Address, stake *big.Int) *Candidate {
	return &Candidate{
		ID:         id,
		Stake:      new(big.Int).Set(stake),
		Delegators: orderedset.New(),
		Total:      new(big.Int).Set(stake),
		Status:     StatusActive,
	}
}

func (c *Candidate) IsActive() bool  { return c.Status == StatusActive }
func (c *Candidate) IsLeaving() bool { return c.Status == StatusLeaving }

// CanExit reports whether the scheduled exit can be executed in round.
func (c *Candidate) CanExit(round uint32) bool {
	return c.IsLeaving() && round >= c.LeavingAt
}

// Leave schedules the exit for round when.
func (c *Candidate) Leave(when uint32) {
	c.Status = StatusLeaving
	c.LeavingAt = when
}

// Revive cancels a scheduled exit.
func (c *Candidate) Revive() {
	c.Status = StatusActive
	c.LeavingAt = 0
}

// SetStake replaces the self stake and refreshes the total.
func (c *Candidate) SetStake(stake *big.Int) {
	c.Stake = new(big.Int).Set(stake)
	c.refresh()
}

// PutDelegator inserts or updates a delegation without bound checks.
func (c *Candidate) PutDelegator(st orderedset.Stake) {
	c.Delegators.Insert(st)
	c.refresh()
}

// AddDelegator inserts a delegation into a full or partially filled delegator set.
// When the set is full the lowest delegation is evicted and returned.
func (c *Candidate) AddDelegator(st orderedset.Stake, capacity int) (*orderedset.Stake, error) {
	evicted, err := c.Delegators.TryInsertBounded(st, capacity)
	if err != nil {
		return nil, err
	}
	c.refresh()
	return evicted, nil
}

// RemoveDelegator drops the delegation of owner.
func (c *Candidate) RemoveDelegator(owner thor.Address) (orderedset.Stake, bool) {
	st, ok := c.Delegators.Remove(owner)
	if ok {
		c.refresh()
	}
	return st, ok
}

// DelegatorsTotal is the sum of all delegations.
func (c *Candidate) DelegatorsTotal() *big.Int {
	return c.Delegators.Sum()
}

func (c *Candidate) refresh() {
	c.Total = new(big.Int).Add(c.Stake, c.Delegators.Sum())
}

// Entry returns the candidate as a top candidates entry.
func (c *Candidate) Entry() orderedset.Stake {
	return orderedset.Stake{Owner: c.ID, Amount: new(big.Int).Set(c.Total)}
}
