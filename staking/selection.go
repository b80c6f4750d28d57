// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"
	"slices"

	"github.com/pkg/errors"

	"github.com/vechain/parastaking/events"
	"github.com/vechain/parastaking/staking/candidate"
	"github.com/vechain/parastaking/staking/globalstats"
	"github.com/vechain/parastaking/staking/orderedset"
	"github.com/vechain/parastaking/thor"
)

// parts splits the total of a candidate by origin.
type parts struct {
	self      *big.Int
	delegated *big.Int
}

func partsOf(c *candidate.Candidate) parts {
	return parts{self: new(big.Int).Set(c.Stake), delegated: c.DelegatorsTotal()}
}

func noParts() parts {
	return parts{self: new(big.Int), delegated: new(big.Int)}
}

func (s *Staking) topAndMax() (*orderedset.Set, int, error) {
	top, err := s.candidateService.Top()
	if err != nil {
		return nil, 0, err
	}
	size, err := s.roundService.MaxSelected()
	if err != nil {
		return nil, 0, err
	}
	return top, int(size), nil
}

// updateTop repositions c in the top candidates after its stake changed from old.
// An active candidate outside the list tries to enter it, possibly evicting the
// lowest one; a candidate that is not active is taken out.
func (s *Staking) updateTop(c *candidate.Candidate, old parts) error {
	top, size, err := s.topAndMax()
	if err != nil {
		return err
	}
	before := top.Top(size)

	switch {
	case !c.IsActive():
		top.Remove(c.ID)
	case top.Contains(c.ID):
		top.Insert(c.Entry())
	default:
		evicted, err := top.TryInsertBounded(c.Entry(), int(s.cfg.MaxTopCandidates))
		if errors.Is(err, orderedset.ErrRejected) {
			// stays in the pool, outside the ranking
			return nil
		}
		if err != nil {
			return err
		}
		s.emit(events.New(module, "EnteredTopCandidates", c.ID))
		if evicted != nil {
			s.emit(events.New(module, "LeftTopCandidates", evicted.Owner))
		}
	}
	return s.storeTop(top, before, size, c.ID, old, partsOf(c))
}

// dropFromTop takes a removed candidate out of the top candidates.
func (s *Staking) dropFromTop(id thor.Address, old parts) error {
	top, size, err := s.topAndMax()
	if err != nil {
		return err
	}
	before := top.Top(size)
	if _, ok := top.Remove(id); !ok {
		return nil
	}
	return s.storeTop(top, before, size, id, old, noParts())
}

// storeTop saves the top candidates and moves TotalStake by the difference between
// the selection before and after the change of candidate id. Candidates other
// than id are unchanged and read from the pool.
func (s *Staking) storeTop(top *orderedset.Set, before []thor.Address, size int, id thor.Address, old, cur parts) error {
	if err := s.candidateService.SetTop(top); err != nil {
		return err
	}
	after := top.Top(size)

	partsFor := func(addr thor.Address, p parts) (parts, error) {
		if addr == id {
			return p, nil
		}
		c, err := s.candidateService.Get(addr)
		if err != nil {
			return parts{}, err
		}
		if c == nil {
			return parts{}, errors.Errorf("selected candidate %v missing", addr)
		}
		return partsOf(c), nil
	}

	// additions first, so that subtractions never underflow
	for _, addr := range after {
		if addr != id && slices.Contains(before, addr) {
			continue
		}
		p, err := partsFor(addr, cur)
		if err != nil {
			return err
		}
		if err := s.globalStatsService.Add(p.self, p.delegated); err != nil {
			return errors.Wrap(err, "failed to add total stake")
		}
	}
	for _, addr := range before {
		if addr != id && slices.Contains(after, addr) {
			continue
		}
		p, err := partsFor(addr, old)
		if err != nil {
			return err
		}
		if err := s.globalStatsService.Sub(p.self, p.delegated); err != nil {
			return errors.Wrap(err, "failed to subtract total stake")
		}
	}
	return s.reportSelection(len(after))
}

// rescanTotalStake rebuilds TotalStake from the selected candidates.
func (s *Staking) rescanTotalStake() error {
	selected, err := s.SelectedCandidates()
	if err != nil {
		return err
	}
	total := globalstats.TotalStake{Collators: new(big.Int), Delegators: new(big.Int)}
	for _, id := range selected {
		c, err := s.getCandidate(id)
		if err != nil {
			return err
		}
		total.Collators.Add(total.Collators, c.Stake)
		total.Delegators.Add(total.Delegators, c.DelegatorsTotal())
	}
	if err := s.globalStatsService.Set(total); err != nil {
		return err
	}
	return s.reportSelection(len(selected))
}
