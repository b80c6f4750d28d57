// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reward splits the session reward pot between the authors of the session
// and their delegators.
//
// Every staker of an author gets floor(blocks * amount / W * pot), where W is the sum
// of blocks * total over all rewarded authors. The author then takes its commission
// out of every delegator share.
package reward

import (
	"math/big"

	"github.com/vechain/parastaking/per"
	"github.com/vechain/parastaking/staking/candidate"
	"github.com/vechain/parastaking/thor"
)

// Reward is an amount paid to Owner.
type Reward struct {
	Owner  thor.Address
	Amount *big.Int
}

// Author is a collator with the number of blocks it authored during the session.
type Author struct {
	Candidate *candidate.Candidate
	Blocks    uint64
}

// Weight returns blocks * total of the author.
func (a Author) Weight() *big.Int {
	return new(big.Int).Mul(new(big.Int).SetUint64(a.Blocks), a.Candidate.Total)
}

// TotalWeight sums the weight of all authors.
func TotalWeight(authors []Author) *big.Int {
	sum := new(big.Int)
	for _, a := range authors {
		sum.Add(sum, a.Weight())
	}
	return sum
}

// Share returns floor(blocks * amount / weight * pot).
func Share(blocks uint64, amount, weight, pot *big.Int) *big.Int {
	if weight.Sign() == 0 || blocks == 0 {
		return new(big.Int)
	}
	n := new(big.Int).Mul(new(big.Int).SetUint64(blocks), amount)
	return per.PerquintillFromRational(n, weight).Mul(pot)
}

// Collator returns the reward of the author itself, commissions included.
func Collator(a Author, weight, pot *big.Int) Reward {
	c := a.Candidate
	amount := Share(a.Blocks, c.Stake, weight, pot)
	for _, d := range c.Delegators.Items() {
		amount.Add(amount, c.Commission.Mul(Share(a.Blocks, d.Amount, weight, pot)))
	}
	return Reward{Owner: c.ID, Amount: amount}
}

// Delegators returns the rewards of the delegators of the author, in delegator order,
// commission deducted.
func Delegators(a Author, weight, pot *big.Int) []Reward {
	c := a.Candidate
	items := c.Delegators.Items()
	out := make([]Reward, 0, len(items))
	for _, d := range items {
		share := Share(a.Blocks, d.Amount, weight, pot)
		share.Sub(share, c.Commission.Mul(share))
		out = append(out, Reward{Owner: d.Owner, Amount: share})
	}
	return out
}

// Compute returns the rewards of all authors and their delegators, each author
// followed by its delegators. The sum never exceeds pot.
func Compute(authors []Author, pot *big.Int) []Reward {
	weight := TotalWeight(authors)
	var out []Reward
	for _, a := range authors {
		out = append(out, Collator(a, weight, pot))
		out = append(out, Delegators(a, weight, pot)...)
	}
	return out
}

// Sum adds up the amounts.
func Sum(rewards []Reward) *big.Int {
	sum := new(big.Int)
	for _, r := range rewards {
		sum.Add(sum, r.Amount)
	}
	return sum
}
