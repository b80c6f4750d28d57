// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package round

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/parastaking/storage"
	"github.com/vechain/parastaking/thor"
)

var (
	slotRound             = storage.Slot("round")
	slotForceNewRound     = storage.Slot("force-new-round")
	slotMaxSelected       = storage.Slot("max-selected-candidates")
	slotMaxCandidateStake = storage.Slot("max-candidate-stake")
	slotCollatorBlocks    = storage.Slot("collator-blocks")
)

// Authored counts the blocks a collator authored in the current session.
type Authored struct {
	Collator thor.Address
	Blocks   uint64
}

// Service keeps the round singletons and the per session block counters.
type Service struct {
	round             *storage.Raw[Info]
	forced            *storage.Raw[bool]
	maxSelected       *storage.Raw[uint32]
	maxCandidateStake *storage.BigInt
	blocks            *storage.Raw[[]Authored]
}

func New(sctx *storage.Context) *Service {
	return &Service{
		round:             storage.NewRaw[Info](sctx, slotRound),
		forced:            storage.NewRaw[bool](sctx, slotForceNewRound),
		maxSelected:       storage.NewRaw[uint32](sctx, slotMaxSelected),
		maxCandidateStake: storage.NewBigInt(sctx, slotMaxCandidateStake),
		blocks:            storage.NewRaw[[]Authored](sctx, slotCollatorBlocks),
	}
}

func (s *Service) Get() (Info, error) {
	r, err := s.round.Get()
	if err != nil {
		return Info{}, errors.Wrap(err, "failed to get round")
	}
	return r, nil
}

func (s *Service) Set(r Info) error {
	if err := s.round.Set(r); err != nil {
		return errors.Wrap(err, "failed to set round")
	}
	return nil
}

// Forced reports whether the next block starts a new round regardless of its length.
func (s *Service) Forced() (bool, error) {
	f, err := s.forced.Get()
	if err != nil {
		return false, errors.Wrap(err, "failed to get forced round flag")
	}
	return f, nil
}

func (s *Service) SetForced(forced bool) error {
	if !forced {
		s.forced.Delete()
		return nil
	}
	return s.forced.Set(true)
}

func (s *Service) MaxSelected() (uint32, error) {
	n, err := s.maxSelected.Get()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get max selected candidates")
	}
	return n, nil
}

func (s *Service) SetMaxSelected(n uint32) error {
	return s.maxSelected.Set(n)
}

func (s *Service) MaxCandidateStake() (*big.Int, error) {
	return s.maxCandidateStake.Get()
}

func (s *Service) SetMaxCandidateStake(v *big.Int) error {
	return s.maxCandidateStake.Set(v)
}

// Authors returns the block counters of the session, in first authored order.
func (s *Service) Authors() ([]Authored, error) {
	a, err := s.blocks.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get collator blocks")
	}
	return a, nil
}

// Blocks returns the number of blocks collator authored in the session.
func (s *Service) Blocks(collator thor.Address) (uint64, error) {
	authors, err := s.Authors()
	if err != nil {
		return 0, err
	}
	for _, a := range authors {
		if a.Collator == collator {
			return a.Blocks, nil
		}
	}
	return 0, nil
}

// NoteBlock counts one block for collator.
func (s *Service) NoteBlock(collator thor.Address) error {
	authors, err := s.Authors()
	if err != nil {
		return err
	}
	found := false
	for i := range authors {
		if authors[i].Collator == collator {
			authors[i].Blocks++
			found = true
			break
		}
	}
	if !found {
		authors = append(authors, Authored{Collator: collator, Blocks: 1})
	}
	return s.blocks.Set(authors)
}

// ClearBlocks resets the session counters.
func (s *Service) ClearBlocks() {
	s.blocks.Delete()
}
