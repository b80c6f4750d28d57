// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegator

import (
	"github.com/pkg/errors"

	"github.com/vechain/parastaking/staking/orderedset"
	"github.com/vechain/parastaking/storage"
	"github.com/vechain/parastaking/thor"
)

var (
	slotDelegators = storage.Slot("delegator-state")
	slotCounters   = storage.Slot("last-delegation")
)

type Service struct {
	delegators *storage.Mapping[thor.Address, *Delegator]
	counters   *storage.Mapping[thor.Address, Counter]
}

func NewService(sctx *storage.Context) *Service {
	return &Service{
		delegators: storage.NewMapping[thor.Address, *Delegator](sctx, slotDelegators),
		counters:   storage.NewMapping[thor.Address, Counter](sctx, slotCounters),
	}
}

// Get returns the delegator, nil if the account does not delegate.
func (s *Service) Get(id thor.Address) (*Delegator, error) {
	d, found, err := s.delegators.Get(id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get delegator")
	}
	if !found {
		return nil, nil
	}
	if d.Delegations == nil {
		d.Delegations = orderedset.New()
	}
	return d, nil
}

// Set stores the delegator, deleting it once it has no delegation left.
func (s *Service) Set(id thor.Address, d *Delegator) error {
	if d.Empty() {
		s.delegators.Delete(id)
		return nil
	}
	if err := s.delegators.Set(id, d); err != nil {
		return errors.Wrap(err, "failed to set delegator")
	}
	return nil
}

// Counter returns the delegation counter of the account for round.
func (s *Service) Counter(id thor.Address, round uint32) (Counter, error) {
	c, _, err := s.counters.Get(id)
	if err != nil {
		return Counter{}, errors.Wrap(err, "failed to get delegation counter")
	}
	return c.In(round), nil
}

// LastDelegation returns the stored counter as is.
func (s *Service) LastDelegation(id thor.Address) (Counter, error) {
	c, _, err := s.counters.Get(id)
	if err != nil {
		return Counter{}, errors.Wrap(err, "failed to get delegation counter")
	}
	return c, nil
}

// Bump increments the counter of round.
func (s *Service) Bump(id thor.Address, round uint32) error {
	c, err := s.Counter(id, round)
	if err != nil {
		return err
	}
	c.Count++
	if err := s.counters.Set(id, c); err != nil {
		return errors.Wrap(err, "failed to set delegation counter")
	}
	return nil
}
