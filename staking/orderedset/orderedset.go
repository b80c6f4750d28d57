// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package orderedset implements the amount descending set of stakes backing the
// top candidate list and the delegator list of every candidate.
package orderedset

import (
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/parastaking/thor"
)

// ErrRejected is returned by TryInsertBounded when the set is full and the new
// amount does not exceed the lowest one.
var ErrRejected = errors.New("rejected: set is full")

// Stake is an amount staked by an owner.
type Stake struct {
	Owner  thor.Address `json:"owner"`
	Amount *big.Int     `json:"amount"`
}

func (s Stake) clone() Stake {
	return Stake{Owner: s.Owner, Amount: new(big.Int).Set(s.Amount)}
}

// Set keeps stakes sorted by amount, descending, with unique owners.
// Among equal amounts the order is stable: a new entry, or one whose amount grew,
// is placed after the entries it ties with; one whose amount shrank is placed
// before them.
type Set struct {
	stakes []Stake
}

// New builds a set from stakes, inserting them in the given order.
func New(stakes ...Stake) *Set {
	s := &Set{}
	for _, st := range stakes {
		s.Insert(st)
	}
	return s
}

func (s *Set) Len() int {
	return len(s.stakes)
}

func (s *Set) indexOf(owner thor.Address) int {
	for i, st := range s.stakes {
		if st.Owner == owner {
			return i
		}
	}
	return -1
}

func (s *Set) Contains(owner thor.Address) bool {
	return s.indexOf(owner) >= 0
}

// Get returns a copy of the stake of owner.
func (s *Set) Get(owner thor.Address) (Stake, bool) {
	if i := s.indexOf(owner); i >= 0 {
		return s.stakes[i].clone(), true
	}
	return Stake{}, false
}

// Position returns the rank of owner, or -1.
func (s *Set) Position(owner thor.Address) int {
	return s.indexOf(owner)
}

// place inserts st at i.
func (s *Set) place(i int, st Stake) {
	s.stakes = append(s.stakes, Stake{})
	copy(s.stakes[i+1:], s.stakes[i:])
	s.stakes[i] = st
}

// after returns the index following every entry with amount >= a.
func (s *Set) after(a *big.Int) int {
	for i, st := range s.stakes {
		if st.Amount.Cmp(a) < 0 {
			return i
		}
	}
	return len(s.stakes)
}

// before returns the index of the first entry with amount <= a.
func (s *Set) before(a *big.Int) int {
	for i, st := range s.stakes {
		if st.Amount.Cmp(a) <= 0 {
			return i
		}
	}
	return len(s.stakes)
}

// Insert adds the stake, or updates the amount of an existing owner and moves it to
// keep the order. It returns true if the owner was newly added.
func (s *Set) Insert(stake Stake) bool {
	stake = stake.clone()
	i := s.indexOf(stake.Owner)
	if i < 0 {
		s.place(s.after(stake.Amount), stake)
		return true
	}

	old := s.stakes[i].Amount
	switch stake.Amount.Cmp(old) {
	case 0:
		s.stakes[i] = stake
	case 1:
		s.stakes = append(s.stakes[:i], s.stakes[i+1:]...)
		s.place(s.after(stake.Amount), stake)
	default:
		s.stakes = append(s.stakes[:i], s.stakes[i+1:]...)
		s.place(s.before(stake.Amount), stake)
	}
	return false
}

// TryInsertBounded inserts a stake of a new owner into a set bounded by capacity.
// When the set is full the stake must be strictly greater than the lowest entry,
// which is then evicted and returned. Otherwise ErrRejected is returned.
// An existing owner is updated in place.
func (s *Set) TryInsertBounded(stake Stake, capacity int) (*Stake, error) {
	if s.Contains(stake.Owner) || len(s.stakes) < capacity {
		s.Insert(stake)
		return nil, nil
	}
	if len(s.stakes) == 0 {
		return nil, ErrRejected
	}
	last := s.stakes[len(s.stakes)-1]
	if stake.Amount.Cmp(last.Amount) <= 0 {
		return nil, ErrRejected
	}
	s.stakes = s.stakes[:len(s.stakes)-1]
	s.Insert(stake)
	return &last, nil
}

// Remove removes the stake of owner.
func (s *Set) Remove(owner thor.Address) (Stake, bool) {
	i := s.indexOf(owner)
	if i < 0 {
		return Stake{}, false
	}
	st := s.stakes[i]
	s.stakes = append(s.stakes[:i], s.stakes[i+1:]...)
	return st, true
}

// Items returns a copy of the stakes in order.
func (s *Set) Items() []Stake {
	out := make([]Stake, len(s.stakes))
	for i, st := range s.stakes {
		out[i] = st.clone()
	}
	return out
}

// Top returns the owners of the first n stakes.
func (s *Set) Top(n int) []thor.Address {
	n = min(n, len(s.stakes))
	out := make([]thor.Address, 0, n)
	for _, st := range s.stakes[:n] {
		out = append(out, st.Owner)
	}
	return out
}

// Last returns the lowest stake.
func (s *Set) Last() (Stake, bool) {
	if len(s.stakes) == 0 {
		return Stake{}, false
	}
	return s.stakes[len(s.stakes)-1].clone(), true
}

// Sum returns the sum of all amounts.
func (s *Set) Sum() *big.Int {
	sum := new(big.Int)
	for _, st := range s.stakes {
		sum.Add(sum, st.Amount)
	}
	return sum
}

// EncodeRLP implements rlp.Encoder.
func (s *Set) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, s.stakes)
}

// DecodeRLP implements rlp.Decoder.
func (s *Set) DecodeRLP(st *rlp.Stream) error {
	return st.Decode(&s.stakes)
}
