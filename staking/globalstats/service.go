// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package globalstats

import (
	"math/big"

	"github.com/vechain/parastaking/storage"
)

var (
	slotCollators  = storage.Slot("total-collators-stake")
	slotDelegators = storage.Slot("total-delegators-stake")
)

// TotalStake is the stake of the selected candidates, split by origin.
type TotalStake struct {
	Collators  *big.Int
	Delegators *big.Int
}

// Sum returns collators plus delegators.
func (t TotalStake) Sum() *big.Int {
	return new(big.Int).Add(t.Collators, t.Delegators)
}

// Service keeps the TotalStake of the selected candidates. It is updated by deltas
// when a selected candidate changes, and rebuilt when the selection size changes.
type Service struct {
	collators  *storage.BigInt
	delegators *storage.BigInt
}

func New(sctx *storage.Context) *Service {
	return &Service{
		collators:  storage.NewBigInt(sctx, slotCollators),
		delegators: storage.NewBigInt(sctx, slotDelegators),
	}
}

func (s *Service) Get() (TotalStake, error) {
	c, err := s.collators.Get()
	if err != nil {
		return TotalStake{}, err
	}
	d, err := s.delegators.Get()
	if err != nil {
		return TotalStake{}, err
	}
	return TotalStake{Collators: c, Delegators: d}, nil
}

func (s *Service) Set(t TotalStake) error {
	if err := s.collators.Set(t.Collators); err != nil {
		return err
	}
	return s.delegators.Set(t.Delegators)
}

// Add accounts a candidate entering the selection.
func (s *Service) Add(self, delegated *big.Int) error {
	if err := s.collators.Add(self); err != nil {
		return err
	}
	return s.delegators.Add(delegated)
}

// Sub accounts a candidate leaving the selection.
func (s *Service) Sub(self, delegated *big.Int) error {
	if err := s.collators.Sub(self); err != nil {
		return err
	}
	return s.delegators.Sub(delegated)
}
