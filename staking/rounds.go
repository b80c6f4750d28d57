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
	"github.com/vechain/parastaking/per"
	"github.com/vechain/parastaking/staking/reward"
	"github.com/vechain/parastaking/thor"
)

//
// Block hooks
//

// OnInitialize starts a new round when the current one is over or a new round was forced.
// It runs before any call of the block.
func (s *Staking) OnInitialize() error {
	r, err := s.roundService.Get()
	if err != nil {
		return err
	}
	forced, err := s.roundService.Forced()
	if err != nil {
		return err
	}
	if !forced && !r.ShouldUpdate(s.block) {
		return nil
	}

	r = r.Next(s.block)
	if err := s.roundService.Set(r); err != nil {
		return err
	}
	if err := s.roundService.SetForced(false); err != nil {
		return err
	}
	s.emit(events.New(module, "NewRound").With("first", r.First).With("round", r.Current))
	metricRound().Set(int64(r.Current))

	logger.Info("new round", "round", r.Current, "first", r.First, "length", r.Length, "forced", forced)
	return nil
}

// NoteAuthor counts the block as authored by author.
func (s *Staking) NoteAuthor(author thor.Address) error {
	return s.roundService.NoteBlock(author)
}

// ShouldEndSession reports whether the validator set rotates at this block.
func (s *Staking) ShouldEndSession() (bool, error) {
	r, err := s.roundService.Get()
	if err != nil {
		return false, err
	}
	if r.ShouldUpdate(s.block) {
		return true, nil
	}
	return s.roundService.Forced()
}

// EstimateNextSessionRotation returns the block at which the current round ends.
func (s *Staking) EstimateNextSessionRotation() (uint32, error) {
	r, err := s.roundService.Get()
	if err != nil {
		return 0, err
	}
	return r.End(), nil
}

// EstimateCurrentSessionProgress returns how much of the current round has passed.
func (s *Staking) EstimateCurrentSessionProgress() (per.Permill, error) {
	r, err := s.roundService.Get()
	if err != nil {
		return 0, err
	}
	if r.Length == 0 || s.block < r.First {
		return 0, nil
	}
	elapsed := big.NewInt(int64(s.block - r.First))
	return per.PermillFromRational(elapsed, big.NewInt(int64(r.Length))), nil
}

// NewSession returns the validators of the next session, nil if there is no candidate
// to select, in which case the rotation keeps the current set.
func (s *Staking) NewSession(index uint32) ([]thor.Address, error) {
	selected, err := s.SelectedCandidates()
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		logger.Warn("no candidate selected, keeping validators", "session", index)
		return nil, nil
	}
	logger.Debug("new session", "session", index, "validators", len(selected))
	return selected, nil
}

// EndSession pays the reward pot out to the authors of the session and their
// delegators, then clears the block counters. Only authors still selected are
// rewarded. Rounding dust stays in the pot.
func (s *Staking) EndSession(index uint32) error {
	authors, err := s.roundService.Authors()
	if err != nil {
		return err
	}
	selected, err := s.SelectedCandidates()
	if err != nil {
		return err
	}
	var rewarded []reward.Author
	for _, a := range authors {
		if !slices.Contains(selected, a.Collator) {
			logger.Debug("author not rewarded", "session", index, "collator", a.Collator)
			continue
		}
		c, err := s.candidateService.Get(a.Collator)
		if err != nil {
			return err
		}
		if c == nil || !c.IsActive() {
			logger.Debug("author not rewarded", "session", index, "collator", a.Collator)
			continue
		}
		rewarded = append(rewarded, reward.Author{Candidate: c, Blocks: a.Blocks})
	}
	s.roundService.ClearBlocks()
	if len(rewarded) == 0 {
		return nil
	}

	pot, err := s.currency.UsableBalance(PotAccount)
	if err != nil {
		return err
	}
	if pot.Sign() == 0 {
		return nil
	}
	rewards := reward.Compute(rewarded, pot)
	for _, r := range rewards {
		if r.Amount.Sign() == 0 {
			continue
		}
		if err := s.currency.Transfer(PotAccount, r.Owner, r.Amount); err != nil {
			return errors.Wrap(err, "failed to pay reward")
		}
		s.emit(events.New(module, "Rewarded", r.Owner).With("amount", r.Amount))
	}
	paid := reward.Sum(rewards)
	metricRewarded().Add(units(paid))

	logger.Info("session rewards paid", "session", index, "authors", len(rewarded), "paid", paid, "pot", pot)
	return nil
}

//
// Governance - privileged
//

// SetMaxSelectedCandidates changes how many top candidates are selected as validators.
func (s *Staking) SetMaxSelectedCandidates(n uint32) error {
	logger.Debug("setting max selected candidates", "new", n)

	err := s.atomic("set_max_selected_candidates", func() error {
		if n < s.cfg.MinCollators {
			return ErrCannotSetBelowMin
		}
		if n > s.cfg.MaxTopCandidates {
			return ErrCannotSetAboveMax
		}
		old, err := s.roundService.MaxSelected()
		if err != nil {
			return err
		}
		if err := s.roundService.SetMaxSelected(n); err != nil {
			return err
		}
		if err := s.rescanTotalStake(); err != nil {
			return err
		}
		s.emit(events.New(module, "MaxSelectedCandidatesSet").With("old", old).With("new", n))
		return nil
	})
	if err != nil {
		logger.Info("set max selected candidates failed", "error", err)
		return err
	}

	logger.Info("set max selected candidates", "new", n)
	return nil
}

// SetBlocksPerRound changes the length of the current and following rounds.
func (s *Staking) SetBlocksPerRound(n uint32) error {
	logger.Debug("setting blocks per round", "new", n)

	err := s.atomic("set_blocks_per_round", func() error {
		if n < s.cfg.MinBlocksPerRound {
			return ErrCannotSetBelowMin
		}
		r, err := s.roundService.Get()
		if err != nil {
			return err
		}
		old := r.Length
		r.Length = n
		if err := s.roundService.Set(r); err != nil {
			return err
		}
		s.emit(events.New(module, "BlocksPerRoundSet").
			With("round", r.Current).
			With("first", r.First).
			With("old", old).
			With("new", n))
		return nil
	})
	if err != nil {
		logger.Info("set blocks per round failed", "error", err)
		return err
	}

	logger.Info("set blocks per round", "new", n)
	return nil
}

// SetMaxCandidateStake changes the maximum self stake of a candidate. It fails if a
// candidate already stakes more.
func (s *Staking) SetMaxCandidateStake(v *big.Int) error {
	logger.Debug("setting max candidate stake", "new", v)

	err := s.atomic("set_max_candidate_stake", func() error {
		if v.Cmp(s.cfg.MinCollatorCandidateStake) < 0 {
			return ErrCannotSetBelowMin
		}
		candidates, err := s.Candidates()
		if err != nil {
			return err
		}
		for _, c := range candidates {
			if c.Stake.Cmp(v) > 0 {
				return ErrValStakeAboveMax
			}
		}
		if err := s.roundService.SetMaxCandidateStake(v); err != nil {
			return err
		}
		s.emit(events.New(module, "MaxCandidateStakeChanged").With("new", v))
		return nil
	})
	if err != nil {
		logger.Info("set max candidate stake failed", "error", err)
		return err
	}

	logger.Info("set max candidate stake", "new", v)
	return nil
}

// ForceNewRound makes the next block start a new round and rotate the validators.
func (s *Staking) ForceNewRound() error {
	logger.Debug("forcing new round")

	err := s.atomic("force_new_round", func() error {
		if err := s.roundService.SetForced(true); err != nil {
			return err
		}
		s.emit(events.New(module, "NewRoundForced"))
		return nil
	})
	if err != nil {
		logger.Info("force new round failed", "error", err)
		return err
	}

	logger.Info("forced new round")
	return nil
}
