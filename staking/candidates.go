// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/vechain/parastaking/events"
	"github.com/vechain/parastaking/per"
	"github.com/vechain/parastaking/staking/candidate"
	"github.com/vechain/parastaking/thor"
)

// JoinCandidates registers id as a collator candidate staking stake.
func (s *Staking) JoinCandidates(id thor.Address, stake *big.Int) error {
	logger.Debug("joining candidates", "id", id, "stake", stake)

	err := s.atomic("join_candidates", func() error {
		if c, err := s.candidateService.Get(id); err != nil {
			return err
		} else if c != nil {
			return ErrCandidateExists
		}
		if d, err := s.delegatorService.Get(id); err != nil {
			return err
		} else if d != nil {
			return ErrDelegatorExists
		}
		if stake.Cmp(s.cfg.MinCollatorCandidateStake) < 0 {
			return ErrValStakeBelowMin
		}
		maxStake, err := s.roundService.MaxCandidateStake()
		if err != nil {
			return err
		}
		if stake.Cmp(maxStake) > 0 {
			return ErrValStakeAboveMax
		}
		if full, err := s.unstakingService.IsFull(id); err != nil {
			return err
		} else if full {
			return ErrCannotJoinBeforeUnlock
		}
		if err := s.restake(id, stake, stake); err != nil {
			return err
		}

		c := candidate.New(id, stake)
		if err := s.candidateService.Add(c); err != nil {
			return err
		}
		s.emit(events.New(module, "JoinedCollatorCandidates", id).With("stake", stake))
		if err := s.updateTop(c, noParts()); err != nil {
			return err
		}
		return s.syncLock(id)
	})
	if err != nil {
		logger.Info("join candidates failed", "id", id, "error", err)
		return err
	}

	logger.Info("joined candidates", "id", id)
	return nil
}

// InitLeaveCandidates schedules the exit of a candidate ExitQueueDelay rounds from now.
// The candidate leaves the top candidates immediately.
func (s *Staking) InitLeaveCandidates(id thor.Address) error {
	logger.Debug("scheduling candidate exit", "id", id)

	err := s.atomic("init_leave_candidates", func() error {
		c, err := s.getCandidate(id)
		if err != nil {
			return err
		}
		if c.IsLeaving() {
			return ErrAlreadyLeaving
		}
		top, err := s.candidateService.Top()
		if err != nil {
			return err
		}
		ranked := top.Contains(id)
		if ranked && top.Len() <= int(s.cfg.MinCollators) {
			return ErrTooFewCandidates
		}
		r, err := s.roundService.Get()
		if err != nil {
			return err
		}

		when := r.Current + s.cfg.ExitQueueDelay
		old := partsOf(c)
		c.Leave(when)
		if err := s.candidateService.Update(c); err != nil {
			return err
		}
		if err := s.updateTop(c, old); err != nil {
			return err
		}
		if ranked {
			s.emit(events.New(module, "LeftTopCandidates", id))
		}
		s.emit(events.New(module, "CollatorScheduledExit", id).
			With("round", r.Current).
			With("exitRound", when))
		return nil
	})
	if err != nil {
		logger.Info("schedule candidate exit failed", "id", id, "error", err)
		return err
	}

	logger.Info("scheduled candidate exit", "id", id)
	return nil
}

// ExecuteLeaveCandidates removes a leaving candidate once its exit round is reached.
// Its own stake and the stakes of its delegators start unstaking.
func (s *Staking) ExecuteLeaveCandidates(id thor.Address) error {
	logger.Debug("executing candidate exit", "id", id)

	err := s.atomic("execute_leave_candidates", func() error {
		c, err := s.getCandidate(id)
		if err != nil {
			return err
		}
		if !c.IsLeaving() {
			return ErrNotLeaving
		}
		r, err := s.roundService.Get()
		if err != nil {
			return err
		}
		if !c.CanExit(r.Current) {
			return ErrCannotLeaveYet
		}
		if err := s.removeCandidate(c); err != nil {
			return err
		}
		s.emit(events.New(module, "CandidateLeft", id).With("total", c.Total))
		return nil
	})
	if err != nil {
		logger.Info("execute candidate exit failed", "id", id, "error", err)
		return err
	}

	logger.Info("executed candidate exit", "id", id)
	return nil
}

// CancelLeaveCandidates brings a leaving candidate back and ranks it again.
func (s *Staking) CancelLeaveCandidates(id thor.Address) error {
	logger.Debug("canceling candidate exit", "id", id)

	err := s.atomic("cancel_leave_candidates", func() error {
		c, err := s.getCandidate(id)
		if err != nil {
			return err
		}
		if !c.IsLeaving() {
			return ErrNotLeaving
		}
		c.Revive()
		if err := s.candidateService.Update(c); err != nil {
			return err
		}
		if err := s.updateTop(c, partsOf(c)); err != nil {
			return err
		}
		s.emit(events.New(module, "CollatorCanceledExit", id))
		return nil
	})
	if err != nil {
		logger.Info("cancel candidate exit failed", "id", id, "error", err)
		return err
	}

	logger.Info("canceled candidate exit", "id", id)
	return nil
}

// CandidateStakeMore adds more to the self stake of a candidate.
func (s *Staking) CandidateStakeMore(id thor.Address, more *big.Int) error {
	logger.Debug("increasing candidate stake", "id", id, "more", more)

	err := s.atomic("candidate_stake_more", func() error {
		if more.Sign() <= 0 {
			return ErrValStakeZero
		}
		c, err := s.getCandidate(id)
		if err != nil {
			return err
		}
		if c.IsLeaving() {
			return ErrCannotStakeIfLeaving
		}
		maxStake, err := s.roundService.MaxCandidateStake()
		if err != nil {
			return err
		}
		before := new(big.Int).Set(c.Stake)
		after := new(big.Int).Add(before, more)
		if after.Cmp(maxStake) > 0 {
			return ErrValStakeAboveMax
		}
		if err := s.restake(id, after, more); err != nil {
			return err
		}

		old := partsOf(c)
		c.SetStake(after)
		if err := s.candidateService.Update(c); err != nil {
			return err
		}
		if err := s.updateTop(c, old); err != nil {
			return err
		}
		if err := s.syncLock(id); err != nil {
			return err
		}
		s.emit(events.New(module, "CollatorStakedMore", id).With("oldStake", before).With("newStake", after))
		return nil
	})
	if err != nil {
		logger.Info("increase candidate stake failed", "id", id, "error", err)
		return err
	}

	logger.Info("increased candidate stake", "id", id)
	return nil
}

// CandidateStakeLess moves less of the self stake of a candidate to unstaking.
func (s *Staking) CandidateStakeLess(id thor.Address, less *big.Int) error {
	logger.Debug("decreasing candidate stake", "id", id, "less", less)

	err := s.atomic("candidate_stake_less", func() error {
		if less.Sign() <= 0 {
			return ErrValStakeZero
		}
		c, err := s.getCandidate(id)
		if err != nil {
			return err
		}
		if c.IsLeaving() {
			return ErrCannotStakeIfLeaving
		}
		if less.Cmp(c.Stake) > 0 {
			return ErrUnderflow
		}
		before := new(big.Int).Set(c.Stake)
		after := new(big.Int).Sub(before, less)
		if after.Cmp(s.cfg.MinCollatorCandidateStake) < 0 {
			return ErrValStakeBelowMin
		}
		if err := s.unstake(id, less, false); err != nil {
			return err
		}

		old := partsOf(c)
		c.SetStake(after)
		if err := s.candidateService.Update(c); err != nil {
			return err
		}
		if err := s.updateTop(c, old); err != nil {
			return err
		}
		if err := s.syncLock(id); err != nil {
			return err
		}
		s.emit(events.New(module, "CollatorStakedLess", id).With("oldStake", before).With("newStake", after))
		return nil
	})
	if err != nil {
		logger.Info("decrease candidate stake failed", "id", id, "error", err)
		return err
	}

	logger.Info("decreased candidate stake", "id", id)
	return nil
}

// SetCommission sets the share of its delegators' rewards a candidate keeps.
func (s *Staking) SetCommission(id thor.Address, commission per.Permill) error {
	logger.Debug("setting commission", "id", id, "commission", commission)

	err := s.atomic("set_commission", func() error {
		if commission > per.OneMill {
			return ErrCannotSetAboveMax
		}
		c, err := s.getCandidate(id)
		if err != nil {
			return err
		}
		c.Commission = commission
		if err := s.candidateService.Update(c); err != nil {
			return err
		}
		s.emit(events.New(module, "CommissionSet", id).With("commission", commission))
		return nil
	})
	if err != nil {
		logger.Info("set commission failed", "id", id, "error", err)
		return err
	}

	logger.Info("set commission", "id", id, "commission", commission)
	return nil
}

// ForceRemoveCandidate removes a candidate without exit delay. Privileged.
func (s *Staking) ForceRemoveCandidate(id thor.Address) error {
	logger.Debug("force removing candidate", "id", id)

	err := s.atomic("force_remove_candidate", func() error {
		c, err := s.getCandidate(id)
		if err != nil {
			return err
		}
		top, err := s.candidateService.Top()
		if err != nil {
			return err
		}
		if top.Contains(id) && top.Len() <= int(s.cfg.MinCollators) {
			return ErrTooFewCandidates
		}
		old := partsOf(c)
		if err := s.removeCandidate(c); err != nil {
			return err
		}
		if err := s.dropFromTop(id, old); err != nil {
			return err
		}
		s.emit(events.New(module, "CollatorRemoved", id).With("total", c.Total))
		return nil
	})
	if err != nil {
		logger.Info("force remove candidate failed", "id", id, "error", err)
		return err
	}

	logger.Info("force removed candidate", "id", id)
	return nil
}

// removeCandidate moves all stakes of c to unstaking and deletes it from the pool.
// The top candidates are left to the caller.
func (s *Staking) removeCandidate(c *candidate.Candidate) error {
	for _, st := range c.Delegators.Items() {
		if err := s.unstake(st.Owner, st.Amount, true); err != nil {
			return err
		}
		d, err := s.delegatorService.Get(st.Owner)
		if err != nil {
			return err
		}
		if d != nil {
			d.Remove(c.ID)
			if err := s.delegatorService.Set(st.Owner, d); err != nil {
				return err
			}
		}
		if err := s.syncLock(st.Owner); err != nil {
			return err
		}
	}
	if err := s.unstake(c.ID, c.Stake, true); err != nil {
		return err
	}
	if err := s.candidateService.Remove(c.ID); err != nil {
		return err
	}
	if err := s.syncLock(c.ID); err != nil {
		return err
	}
	if s.session != nil {
		if _, err := s.session.Disable(c.ID); err != nil {
			return err
		}
	}
	return nil
}
