// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package candidate

import (
	"slices"

	"github.com/pkg/errors"

	"github.com/vechain/parastaking/staking/orderedset"
	"github.com/vechain/parastaking/storage"
	"github.com/vechain/parastaking/thor"
)

var (
	slotPool  = storage.Slot("candidate-pool")
	slotIndex = storage.Slot("candidate-index")
	slotTop   = storage.Slot("top-candidates")
)

// Service stores the candidate pool, an index of its ids in join order and the
// list of top candidates sorted by total stake.
type Service struct {
	pool  *storage.Mapping[thor.Address, *Candidate]
	index *storage.Raw[[]thor.Address]
	top   *storage.Raw[*orderedset.Set]
}

func NewService(sctx *storage.Context) *Service {
	return &Service{
		pool:  storage.NewMapping[thor.Address, *Candidate](sctx, slotPool),
		index: storage.NewRaw[[]thor.Address](sctx, slotIndex),
		top:   storage.NewRaw[*orderedset.Set](sctx, slotTop),
	}
}

// Get returns the candidate, nil if it is not in the pool.
func (s *Service) Get(id thor.Address) (*Candidate, error) {
	c, found, err := s.pool.Get(id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get candidate")
	}
	if !found {
		return nil, nil
	}
	if c.Delegators == nil {
		c.Delegators = orderedset.New()
	}
	return c, nil
}

// Exists reports whether id is in the pool.
func (s *Service) Exists(id thor.Address) (bool, error) {
	c, err := s.Get(id)
	return c != nil, err
}

// Add stores a new candidate and appends it to the index.
func (s *Service) Add(c *Candidate) error {
	ids, err := s.IDs()
	if err != nil {
		return err
	}
	if slices.Contains(ids, c.ID) {
		return errors.Errorf("candidate %v already indexed", c.ID)
	}
	if err := s.index.Set(append(ids, c.ID)); err != nil {
		return errors.Wrap(err, "failed to set candidate index")
	}
	return s.Update(c)
}

// Update stores an existing candidate.
func (s *Service) Update(c *Candidate) error {
	if err := s.pool.Set(c.ID, c); err != nil {
		return errors.Wrap(err, "failed to set candidate")
	}
	return nil
}

// Remove deletes the candidate from the pool and the index. The top list is left untouched.
func (s *Service) Remove(id thor.Address) error {
	ids, err := s.IDs()
	if err != nil {
		return err
	}
	ids = slices.DeleteFunc(ids, func(a thor.Address) bool { return a == id })
	if len(ids) == 0 {
		s.index.Delete()
	} else if err := s.index.Set(ids); err != nil {
		return errors.Wrap(err, "failed to set candidate index")
	}
	s.pool.Delete(id)
	return nil
}

// IDs returns the ids of the pool in join order.
func (s *Service) IDs() ([]thor.Address, error) {
	ids, err := s.index.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get candidate index")
	}
	return ids, nil
}

// Count returns the number of candidates in the pool.
func (s *Service) Count() (int, error) {
	ids, err := s.IDs()
	return len(ids), err
}

// Iterate calls fn for every candidate in join order until fn returns false.
func (s *Service) Iterate(fn func(*Candidate) (bool, error)) error {
	ids, err := s.IDs()
	if err != nil {
		return err
	}
	for _, id := range ids {
		c, err := s.Get(id)
		if err != nil {
			return err
		}
		if c == nil {
			return errors.Errorf("indexed candidate %v missing", id)
		}
		more, err := fn(c)
		if err != nil || !more {
			return err
		}
	}
	return nil
}

// Top returns the top candidates list.
func (s *Service) Top() (*orderedset.Set, error) {
	top, err := s.top.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get top candidates")
	}
	if top == nil {
		top = orderedset.New()
	}
	return top, nil
}

func (s *Service) SetTop(top *orderedset.Set) error {
	if top.Len() == 0 {
		s.top.Delete()
		return nil
	}
	if err := s.top.Set(top); err != nil {
		return errors.Wrap(err, "failed to set top candidates")
	}
	return nil
}
