// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package unstaking keeps, per account, the funds that left the stake but stay locked
// until their maturity block.
package unstaking

import (
	"math/big"

	"github.com/vechain/parastaking/staking/reverts"
	"github.com/vechain/parastaking/storage"
	"github.com/vechain/parastaking/thor"
)

var (
	slotLedgers = storage.Slot("unstaking")

	ErrNoMoreUnstaking  = reverts.New("NoMoreUnstaking", "unstaking requests limit reached")
	ErrUnstakingIsEmpty = reverts.New("UnstakingIsEmpty", "nothing is unstaking")
)

// Entry is an amount maturing at Block.
type Entry struct {
	Block  uint32
	Amount *big.Int
}

// Ledger is the list of entries of an account, ascending by maturity, one entry per block.
type Ledger []Entry

// Total returns the sum of all entries.
func (l Ledger) Total() *big.Int {
	sum := new(big.Int)
	for _, e := range l {
		sum.Add(sum, e.Amount)
	}
	return sum
}

// Service manages the unstaking ledgers.
type Service struct {
	ledgers     *storage.Mapping[thor.Address, Ledger]
	maxRequests int
}

func New(sctx *storage.Context, maxRequests int) *Service {
	return &Service{
		ledgers:     storage.NewMapping[thor.Address, Ledger](sctx, slotLedgers),
		maxRequests: maxRequests,
	}
}

// Get returns the ledger of the account.
func (s *Service) Get(acc thor.Address) (Ledger, error) {
	l, _, err := s.ledgers.Get(acc)
	return l, err
}

func (s *Service) set(acc thor.Address, l Ledger) error {
	if len(l) == 0 {
		s.ledgers.Delete(acc)
		return nil
	}
	return s.ledgers.Set(acc, l)
}

// Total returns the sum of the unstaking entries of the account.
func (s *Service) Total(acc thor.Address) (*big.Int, error) {
	l, err := s.Get(acc)
	if err != nil {
		return nil, err
	}
	return l.Total(), nil
}

// IsFull reports whether the ledger has no slot left, the last one reserved
// for forced removals included.
func (s *Service) IsFull(acc thor.Address) (bool, error) {
	l, err := s.Get(acc)
	if err != nil {
		return false, err
	}
	return len(l) >= s.maxRequests, nil
}

// Increase adds amount maturing at block. Equal maturities coalesce. Voluntary requests
// leave the last slot free, so that a forced removal can always be recorded.
func (s *Service) Increase(acc thor.Address, amount *big.Int, block uint32, forced bool) error {
	if amount.Sign() <= 0 {
		return nil
	}
	l, err := s.Get(acc)
	if err != nil {
		return err
	}
	for i := range l {
		if l[i].Block == block {
			l[i].Amount = new(big.Int).Add(l[i].Amount, amount)
			return s.set(acc, l)
		}
	}

	allowed := s.maxRequests
	if !forced {
		allowed--
	}
	if len(l) >= allowed {
		return ErrNoMoreUnstaking
	}

	i := 0
	for i < len(l) && l[i].Block < block {
		i++
	}
	l = append(l, Entry{})
	copy(l[i+1:], l[i:])
	l[i] = Entry{Block: block, Amount: new(big.Int).Set(amount)}
	return s.set(acc, l)
}

// Consume takes up to amount from the earliest entries, used when an account stakes again
// before its unstaking matured. It returns the consumed amount.
func (s *Service) Consume(acc thor.Address, amount *big.Int) (*big.Int, error) {
	l, err := s.Get(acc)
	if err != nil {
		return nil, err
	}
	left := new(big.Int).Set(amount)
	consumed := new(big.Int)
	for len(l) > 0 && left.Sign() > 0 {
		head := l[0]
		if head.Amount.Cmp(left) > 0 {
			l[0].Amount = new(big.Int).Sub(head.Amount, left)
			consumed.Add(consumed, left)
			left.SetInt64(0)
			break
		}
		left.Sub(left, head.Amount)
		consumed.Add(consumed, head.Amount)
		l = l[1:]
	}
	if consumed.Sign() == 0 {
		return consumed, nil
	}
	return consumed, s.set(acc, l)
}

// Unlock removes the entries matured at now and returns their sum. Nothing matured
// is a successful no-op.
func (s *Service) Unlock(acc thor.Address, now uint32) (*big.Int, error) {
	l, err := s.Get(acc)
	if err != nil {
		return nil, err
	}
	if len(l) == 0 {
		return nil, ErrUnstakingIsEmpty
	}
	released := new(big.Int)
	kept := l[:0]
	for _, e := range l {
		if e.Block <= now {
			released.Add(released, e.Amount)
		} else {
			kept = append(kept, e)
		}
	}
	if released.Sign() == 0 {
		return released, nil
	}
	return released, s.set(acc, kept)
}
