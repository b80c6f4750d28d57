// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/vechain/parastaking/currency"
	"github.com/vechain/parastaking/staking/reverts"
	"github.com/vechain/parastaking/staking/unstaking"
)

var (
	ErrCandidateExists         = reverts.New("CandidateExists", "account is already a collator candidate")
	ErrCandidateNotFound       = reverts.New("CandidateNotFound", "collator candidate not found")
	ErrDelegatorExists         = reverts.New("DelegatorExists", "account is already a delegator")
	ErrDelegatorNotFound       = reverts.New("DelegatorNotFound", "delegator not found")
	ErrNotYetDelegating        = reverts.New("NotYetDelegating", "account is not delegating yet")
	ErrDelegationNotFound      = reverts.New("DelegationNotFound", "delegation not found")
	ErrAlreadyDelegated        = reverts.New("AlreadyDelegatedCollator", "collator is already delegated to")
	ErrAlreadyLeaving          = reverts.New("AlreadyLeaving", "candidate is already leaving")
	ErrNotLeaving              = reverts.New("NotLeaving", "candidate is not leaving")
	ErrCannotLeaveYet          = reverts.New("CannotLeaveYet", "exit queue delay has not passed")
	ErrCannotStakeIfLeaving    = reverts.New("CannotStakeIfLeaving", "candidate is leaving")
	ErrCannotDelegateIfLeaving = reverts.New("CannotDelegateIfLeaving", "collator is leaving")
	ErrTooFewCandidates        = reverts.New("TooFewCollatorCandidates", "too few collator candidates")
	ErrValStakeZero            = reverts.New("ValStakeZero", "amount must be positive")
	ErrValStakeBelowMin        = reverts.New("ValStakeBelowMin", "stake below the candidate minimum")
	ErrValStakeAboveMax        = reverts.New("ValStakeAboveMax", "stake above the candidate maximum")
	ErrNomStakeBelowMin        = reverts.New("NomStakeBelowMin", "delegator stake below minimum")
	ErrDelegationBelowMin      = reverts.New("DelegationBelowMin", "delegation below minimum")
	ErrUnderflow               = reverts.New("Underflow", "amount exceeds the stake")
	ErrTooManyDelegators       = reverts.New("TooManyDelegators", "collator has too many delegators")
	ErrMaxCollatorsExceeded    = reverts.New("MaxCollatorsPerDelegatorExceeded", "too many delegations")
	ErrDelegationsPerRound     = reverts.New("DelegationsPerRoundExceeded", "too many delegations in this round")
	ErrCannotJoinBeforeUnlock  = reverts.New("CannotJoinBeforeUnlocking", "unlock unstaked funds first")
	ErrCannotSetBelowMin       = reverts.New("CannotSetBelowMin", "value below the minimum")
	ErrCannotSetAboveMax       = reverts.New("CannotSetAboveMax", "value above the maximum")

	ErrInsufficientBalance = currency.ErrInsufficientBalance
	ErrNoMoreUnstaking     = unstaking.ErrNoMoreUnstaking
	ErrUnstakingIsEmpty    = unstaking.ErrUnstakingIsEmpty
)
