// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/parastaking/events"
	"github.com/vechain/parastaking/staking/candidate"
	"github.com/vechain/parastaking/staking/delegator"
	"github.com/vechain/parastaking/staking/orderedset"
	"github.com/vechain/parastaking/thor"
)

// JoinDelegators makes acc a delegator with a first delegation of amount to collator.
func (s *Staking) JoinDelegators(acc, collator thor.Address, amount *big.Int) error {
	logger.Debug("joining delegators", "delegator", acc, "collator", collator, "amount", amount)

	err := s.atomic("join_delegators", func() error {
		if d, err := s.delegatorService.Get(acc); err != nil {
			return err
		} else if d != nil {
			return ErrDelegatorExists
		}
		if c, err := s.candidateService.Get(acc); err != nil {
			return err
		} else if c != nil {
			return ErrCandidateExists
		}
		if amount.Cmp(s.cfg.MinDelegatorStake) < 0 {
			return ErrNomStakeBelowMin
		}
		if full, err := s.unstakingService.IsFull(acc); err != nil {
			return err
		} else if full {
			return ErrCannotJoinBeforeUnlock
		}
		return s.delegate(acc, collator, amount, delegator.New(collator, amount))
	})
	if err != nil {
		logger.Info("join delegators failed", "delegator", acc, "error", err)
		return err
	}

	logger.Info("joined delegators", "delegator", acc, "collator", collator)
	return nil
}

// DelegateAnotherCandidate adds a delegation of amount to collator for an existing delegator.
func (s *Staking) DelegateAnotherCandidate(acc, collator thor.Address, amount *big.Int) error {
	logger.Debug("delegating another candidate", "delegator", acc, "collator", collator, "amount", amount)

	err := s.atomic("delegate_another_candidate", func() error {
		d, err := s.delegatorService.Get(acc)
		if err != nil {
			return err
		}
		if d == nil {
			return ErrNotYetDelegating
		}
		if amount.Cmp(s.cfg.MinDelegation) < 0 {
			return ErrDelegationBelowMin
		}
		if d.Delegations.Len() >= int(s.cfg.MaxCollatorsPerDelegator) {
			return ErrMaxCollatorsExceeded
		}
		if d.Delegations.Contains(collator) {
			return ErrAlreadyDelegated
		}
		d.Put(collator, amount)
		if d.Total.Cmp(s.cfg.MinDelegatorStake) < 0 {
			return ErrNomStakeBelowMin
		}
		return s.delegate(acc, collator, amount, d)
	})
	if err != nil {
		logger.Info("delegate another candidate failed", "delegator", acc, "error", err)
		return err
	}

	logger.Info("delegated another candidate", "delegator", acc, "collator", collator)
	return nil
}

// delegate adds the delegation of acc to collator, d being the delegator state
// with the delegation already in.
func (s *Staking) delegate(acc, collator thor.Address, amount *big.Int, d *delegator.Delegator) error {
	r, err := s.roundService.Get()
	if err != nil {
		return err
	}
	counter, err := s.delegatorService.Counter(acc, r.Current)
	if err != nil {
		return err
	}
	if counter.Count >= s.cfg.MaxDelegationsPerRound {
		return ErrDelegationsPerRound
	}
	c, err := s.getCandidate(collator)
	if err != nil {
		return err
	}
	if c.IsLeaving() {
		return ErrCannotDelegateIfLeaving
	}
	if err := s.restake(acc, d.Total, amount); err != nil {
		return err
	}

	old := partsOf(c)
	replaced, err := c.AddDelegator(orderedset.Stake{Owner: acc, Amount: amount}, int(s.cfg.MaxDelegatorsPerCollator))
	if errors.Is(err, orderedset.ErrRejected) {
		return ErrTooManyDelegators
	}
	if err != nil {
		return err
	}
	if err := s.candidateService.Update(c); err != nil {
		return err
	}
	if err := s.delegatorService.Set(acc, d); err != nil {
		return err
	}
	if replaced != nil {
		if err := s.kickDelegator(collator, *replaced); err != nil {
			return err
		}
	}
	if err := s.updateTop(c, old); err != nil {
		return err
	}
	if err := s.delegatorService.Bump(acc, r.Current); err != nil {
		return err
	}
	if err := s.syncLock(acc); err != nil {
		return err
	}

	if replaced != nil {
		s.emit(events.New(module, "DelegationReplaced", acc, replaced.Owner, collator).
			With("amount", amount).
			With("replacedAmount", replaced.Amount).
			With("total", c.Total))
	}
	s.emit(events.New(module, "Delegation", acc, collator).
		With("amount", amount).
		With("total", c.Total))
	return nil
}

// kickDelegator drops the delegation st to collator, its amount starting to unstake.
func (s *Staking) kickDelegator(collator thor.Address, st orderedset.Stake) error {
	if err := s.unstake(st.Owner, st.Amount, true); err != nil {
		return err
	}
	d, err := s.delegatorService.Get(st.Owner)
	if err != nil {
		return err
	}
	if d != nil {
		d.Remove(collator)
		if err := s.delegatorService.Set(st.Owner, d); err != nil {
			return err
		}
	}
	return s.syncLock(st.Owner)
}

// delegationOf loads the delegator, the collator and the amount delegated to it.
func (s *Staking) delegationOf(acc, collator thor.Address) (*delegator.Delegator, *candidate.Candidate, *big.Int, error) {
	d, err := s.delegatorService.Get(acc)
	if err != nil {
		return nil, nil, nil, err
	}
	if d == nil {
		return nil, nil, nil, ErrDelegatorNotFound
	}
	c, err := s.getCandidate(collator)
	if err != nil {
		return nil, nil, nil, err
	}
	if c.IsLeaving() {
		return nil, nil, nil, ErrCannotDelegateIfLeaving
	}
	amount, ok := d.Amount(collator)
	if !ok {
		return nil, nil, nil, ErrDelegationNotFound
	}
	return d, c, new(big.Int).Set(amount), nil
}

// storeDelegation writes the new amount of the delegation of acc to both sides.
func (s *Staking) storeDelegation(acc thor.Address, d *delegator.Delegator, c *candidate.Candidate, amount *big.Int) error {
	old := partsOf(c)
	c.PutDelegator(orderedset.Stake{Owner: acc, Amount: amount})
	if err := s.candidateService.Update(c); err != nil {
		return err
	}
	if err := s.delegatorService.Set(acc, d); err != nil {
		return err
	}
	if err := s.updateTop(c, old); err != nil {
		return err
	}
	return s.syncLock(acc)
}

// DelegatorStakeMore increases the delegation of acc to collator by more.
func (s *Staking) DelegatorStakeMore(acc, collator thor.Address, more *big.Int) error {
	logger.Debug("increasing delegation", "delegator", acc, "collator", collator, "more", more)

	err := s.atomic("delegator_stake_more", func() error {
		if more.Sign() <= 0 {
			return ErrValStakeZero
		}
		d, c, before, err := s.delegationOf(acc, collator)
		if err != nil {
			return err
		}
		after := new(big.Int).Add(before, more)
		d.Put(collator, after)
		if err := s.restake(acc, d.Total, more); err != nil {
			return err
		}
		if err := s.storeDelegation(acc, d, c, after); err != nil {
			return err
		}
		s.emit(events.New(module, "DelegatorStakedMore", acc, collator).
			With("oldAmount", before).
			With("newAmount", after))
		return nil
	})
	if err != nil {
		logger.Info("increase delegation failed", "delegator", acc, "error", err)
		return err
	}

	logger.Info("increased delegation", "delegator", acc, "collator", collator)
	return nil
}

// DelegatorStakeLess moves less of the delegation of acc to collator to unstaking.
func (s *Staking) DelegatorStakeLess(acc, collator thor.Address, less *big.Int) error {
	logger.Debug("decreasing delegation", "delegator", acc, "collator", collator, "less", less)

	err := s.atomic("delegator_stake_less", func() error {
		if less.Sign() <= 0 {
			return ErrValStakeZero
		}
		d, c, before, err := s.delegationOf(acc, collator)
		if err != nil {
			return err
		}
		if less.Cmp(before) > 0 {
			return ErrUnderflow
		}
		after := new(big.Int).Sub(before, less)
		if after.Cmp(s.cfg.MinDelegation) < 0 {
			return ErrDelegationBelowMin
		}
		d.Put(collator, after)
		if d.Total.Cmp(s.cfg.MinDelegatorStake) < 0 {
			return ErrNomStakeBelowMin
		}
		if err := s.unstake(acc, less, false); err != nil {
			return err
		}
		if err := s.storeDelegation(acc, d, c, after); err != nil {
			return err
		}
		s.emit(events.New(module, "DelegatorStakedLess", acc, collator).
			With("oldAmount", before).
			With("newAmount", after))
		return nil
	})
	if err != nil {
		logger.Info("decrease delegation failed", "delegator", acc, "error", err)
		return err
	}

	logger.Info("decreased delegation", "delegator", acc, "collator", collator)
	return nil
}

// RevokeDelegation removes the delegation of acc to collator. Revoking the last
// delegation removes the delegator.
func (s *Staking) RevokeDelegation(acc, collator thor.Address) error {
	logger.Debug("revoking delegation", "delegator", acc, "collator", collator)

	err := s.atomic("revoke_delegation", func() error {
		d, err := s.delegatorService.Get(acc)
		if err != nil {
			return err
		}
		if d == nil {
			return ErrDelegatorNotFound
		}
		amount, ok := d.Remove(collator)
		if !ok {
			return ErrDelegationNotFound
		}
		if !d.Empty() && d.Total.Cmp(s.cfg.MinDelegatorStake) < 0 {
			return ErrNomStakeBelowMin
		}
		if err := s.delegatorService.Set(acc, d); err != nil {
			return err
		}
		if err := s.leaveCollator(acc, collator, amount); err != nil {
			return err
		}
		if d.Empty() {
			s.emit(events.New(module, "DelegatorLeft", acc).With("total", amount))
		}
		return s.syncLock(acc)
	})
	if err != nil {
		logger.Info("revoke delegation failed", "delegator", acc, "error", err)
		return err
	}

	logger.Info("revoked delegation", "delegator", acc, "collator", collator)
	return nil
}

// LeaveDelegators revokes every delegation of acc.
func (s *Staking) LeaveDelegators(acc thor.Address) error {
	logger.Debug("leaving delegators", "delegator", acc)

	err := s.atomic("leave_delegators", func() error {
		d, err := s.delegatorService.Get(acc)
		if err != nil {
			return err
		}
		if d == nil {
			return ErrDelegatorNotFound
		}
		total := new(big.Int).Set(d.Total)
		for _, st := range d.Delegations.Items() {
			d.Remove(st.Owner)
			if err := s.leaveCollator(acc, st.Owner, st.Amount); err != nil {
				return err
			}
		}
		if err := s.delegatorService.Set(acc, d); err != nil {
			return err
		}
		if err := s.syncLock(acc); err != nil {
			return err
		}
		s.emit(events.New(module, "DelegatorLeft", acc).With("total", total))
		return nil
	})
	if err != nil {
		logger.Info("leave delegators failed", "delegator", acc, "error", err)
		return err
	}

	logger.Info("left delegators", "delegator", acc)
	return nil
}

// leaveCollator removes acc from the delegators of collator, amount starting to unstake.
func (s *Staking) leaveCollator(acc, collator thor.Address, amount *big.Int) error {
	c, err := s.getCandidate(collator)
	if err != nil {
		return err
	}
	old := partsOf(c)
	if _, ok := c.RemoveDelegator(acc); !ok {
		return ErrDelegatorNotFound
	}
	if err := s.candidateService.Update(c); err != nil {
		return err
	}
	if err := s.updateTop(c, old); err != nil {
		return err
	}
	if err := s.unstake(acc, amount, false); err != nil {
		return err
	}
	s.emit(events.New(module, "DelegatorLeftCollator", acc, collator).
		With("amount", amount).
		With("total", c.Total))
	return nil
}

// UnlockUnstaked releases the matured unstaking funds of target. Anyone may call it.
func (s *Staking) UnlockUnstaked(target thor.Address) error {
	logger.Debug("unlocking unstaked", "target", target)

	err := s.atomic("unlock_unstaked", func() error {
		released, err := s.unstakingService.Unlock(target, s.block)
		if err != nil {
			return err
		}
		if released.Sign() == 0 {
			return nil
		}
		if err := s.syncLock(target); err != nil {
			return err
		}
		s.emit(events.New(module, "Unlocked", target).With("amount", released))
		return nil
	})
	if err != nil {
		logger.Info("unlock unstaked failed", "target", target, "error", err)
		return err
	}

	logger.Info("unlocked unstaked", "target", target)
	return nil
}
