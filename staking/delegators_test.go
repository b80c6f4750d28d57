// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/parastaking/staking/delegator"
	"github.com/vechain/parastaking/staking/unstaking"
	"github.com/vechain/parastaking/thor"
)

func TestJoinDelegators(t *testing.T) {
	f := newTestStaker().
		withBalances(genesisStake{1, 1000}, genesisStake{2, 1000}, genesisStake{10, 100}, genesisStake{11, 100}).
		withCollators(genesisStake{1, 100}, genesisStake{2, 90}).
		withDelegators(genesisDelegation{10, 1, 20}).
		build(t)
	s := f.staking()

	assert.ErrorIs(t, s.JoinDelegators(acc(10), acc(2), amt(10)), ErrDelegatorExists)
	assert.ErrorIs(t, s.JoinDelegators(acc(1), acc(2), amt(10)), ErrCandidateExists)
	assert.ErrorIs(t, s.JoinDelegators(acc(11), acc(1), amt(4)), ErrNomStakeBelowMin)
	assert.ErrorIs(t, s.JoinDelegators(acc(11), acc(3), amt(10)), ErrCandidateNotFound)
	assert.ErrorIs(t, s.JoinDelegators(acc(11), acc(1), amt(101)), ErrInsufficientBalance)
	assert.Empty(t, f.rec.Events())

	require.NoError(t, s.JoinDelegators(acc(11), acc(1), amt(30)))
	evs := f.events("Delegation")
	require.Len(t, evs, 1)
	assert.Equal(t, []thor.Address{acc(11), acc(1)}, evs[0].Accounts)
	assert.Equal(t, "30", evs[0].Attr("amount"))
	assert.Equal(t, "150", evs[0].Attr("total"))
	assert.Equal(t, int64(30), f.locked(11).Int64())

	_, delegators := f.totalStake()
	assert.Equal(t, int64(50), delegators)
	f.checkInvariants()
}

func TestDelegateAnotherCandidate(t *testing.T) {
	f := newTestStaker().
		withBalances(genesisStake{1, 1000}, genesisStake{2, 1000}, genesisStake{10, 100}, genesisStake{12, 100}).
		withCollators(genesisStake{1, 100}, genesisStake{2, 90}).
		withDelegators(genesisDelegation{10, 1, 20}).
		build(t)
	s := f.staking()

	assert.ErrorIs(t, s.DelegateAnotherCandidate(acc(12), acc(1), amt(10)), ErrNotYetDelegating)
	assert.ErrorIs(t, s.DelegateAnotherCandidate(acc(10), acc(2), amt(2)), ErrDelegationBelowMin)
	assert.ErrorIs(t, s.DelegateAnotherCandidate(acc(10), acc(1), amt(10)), ErrAlreadyDelegated)
	assert.ErrorIs(t, s.DelegateAnotherCandidate(acc(10), acc(2), amt(81)), ErrInsufficientBalance)

	require.NoError(t, s.DelegateAnotherCandidate(acc(10), acc(2), amt(10)))
	d, err := s.DelegatorState(acc(10))
	require.NoError(t, err)
	assert.Equal(t, int64(30), d.Total.Int64())
	assert.Equal(t, 2, d.Delegations.Len())
	assert.Equal(t, int64(30), f.locked(10).Int64())
	assert.Equal(t, int64(100), f.candidateTotal(2).Int64())
	f.checkInvariants()
}

func TestMaxCollatorsPerDelegator(t *testing.T) {
	f := newTestStaker().
		withBalances(genesisStake{1, 1000}, genesisStake{2, 1000}, genesisStake{3, 1000}, genesisStake{4, 1000}, genesisStake{5, 1000}, genesisStake{10, 100}).
		withCollators(genesisStake{1, 100}, genesisStake{2, 90}, genesisStake{3, 80}, genesisStake{4, 70}, genesisStake{5, 60}).
		withDelegators(genesisDelegation{10, 1, 10}, genesisDelegation{10, 2, 10}, genesisDelegation{10, 3, 10}, genesisDelegation{10, 4, 10}).
		build(t)

	assert.ErrorIs(t, f.staking().DelegateAnotherCandidate(acc(10), acc(5), amt(10)), ErrMaxCollatorsExceeded)
	f.checkInvariants()
}

func TestDelegationsPerRound(t *testing.T) {
	f := newTestStaker().
		withConfig(func(c *Config) { c.MaxDelegationsPerRound = 2 }).
		withBalances(genesisStake{1, 1000}, genesisStake{2, 1000}, genesisStake{3, 1000}, genesisStake{10, 100}).
		withCollators(genesisStake{1, 100}, genesisStake{2, 90}, genesisStake{3, 80}).
		build(t)
	s := f.staking()

	require.NoError(t, s.JoinDelegators(acc(10), acc(1), amt(10)))
	require.NoError(t, s.DelegateAnotherCandidate(acc(10), acc(2), amt(10)))
	assert.ErrorIs(t, s.DelegateAnotherCandidate(acc(10), acc(3), amt(10)), ErrDelegationsPerRound)

	// revoking does not give the slot back
	require.NoError(t, s.RevokeDelegation(acc(10), acc(2)))
	assert.ErrorIs(t, s.DelegateAnotherCandidate(acc(10), acc(2), amt(10)), ErrDelegationsPerRound)
	last, err := s.LastDelegation(acc(10))
	require.NoError(t, err)
	assert.Equal(t, delegator.Counter{Round: 0, Count: 2}, last)

	f.roll(5)
	s = f.staking()
	require.NoError(t, s.DelegateAnotherCandidate(acc(10), acc(3), amt(10)))
	last, err = s.LastDelegation(acc(10))
	require.NoError(t, err)
	assert.Equal(t, delegator.Counter{Round: 1, Count: 1}, last)
	f.checkInvariants()
}

func TestDelegationReplaced(t *testing.T) {
	f := newTestStaker().
		withBalances(genesisStake{1, 1000}, genesisStake{2, 1000}, genesisStake{11, 100}, genesisStake{12, 100}, genesisStake{13, 100}, genesisStake{14, 100}, genesisStake{15, 100}).
		withCollators(genesisStake{1, 100}, genesisStake{2, 90}).
		withDelegators(genesisDelegation{11, 1, 10}, genesisDelegation{12, 1, 10}, genesisDelegation{13, 1, 10}, genesisDelegation{14, 1, 10}).
		build(t)
	s := f.staking()

	// an equal amount does not replace anybody
	assert.ErrorIs(t, s.JoinDelegators(acc(15), acc(1), amt(10)), ErrTooManyDelegators)

	require.NoError(t, s.JoinDelegators(acc(15), acc(1), amt(11)))
	replaced := f.events("DelegationReplaced")
	require.Len(t, replaced, 1)
	assert.Equal(t, []thor.Address{acc(15), acc(14), acc(1)}, replaced[0].Accounts)
	assert.Equal(t, "11", replaced[0].Attr("amount"))
	assert.Equal(t, "10", replaced[0].Attr("replacedAmount"))
	assert.Equal(t, "141", replaced[0].Attr("total"))
	assert.Len(t, f.events("Delegation"), 1)

	d, err := s.DelegatorState(acc(14))
	require.NoError(t, err)
	assert.Nil(t, d)
	l, err := s.Unstaking(acc(14))
	require.NoError(t, err)
	assert.Equal(t, unstaking.Ledger{{Block: 3, Amount: amt(10)}}, l)
	assert.Equal(t, int64(10), f.locked(14).Int64())

	c, err := s.CandidatePool(acc(1))
	require.NoError(t, err)
	assert.Equal(t, int64(141), c.Total.Int64())
	assert.Equal(t, 4, c.Delegators.Len())
	assert.False(t, c.Delegators.Contains(acc(14)))

	collators, delegators := f.totalStake()
	assert.Equal(t, int64(190), collators)
	assert.Equal(t, int64(41), delegators)
	f.checkInvariants()
}

func TestDelegatorStakeMoreLess(t *testing.T) {
	f := newTestStaker().
		withBalances(genesisStake{1, 1000}, genesisStake{2, 1000}, genesisStake{10, 100}).
		withCollators(genesisStake{1, 100}, genesisStake{2, 90}).
		withDelegators(genesisDelegation{10, 1, 20}).
		build(t)
	s := f.staking()

	assert.ErrorIs(t, s.DelegatorStakeMore(acc(10), acc(1), amt(0)), ErrValStakeZero)
	assert.ErrorIs(t, s.DelegatorStakeMore(acc(11), acc(1), amt(5)), ErrDelegatorNotFound)
	assert.ErrorIs(t, s.DelegatorStakeMore(acc(10), acc(2), amt(5)), ErrDelegationNotFound)
	assert.ErrorIs(t, s.DelegatorStakeMore(acc(10), acc(1), amt(81)), ErrInsufficientBalance)

	require.NoError(t, s.DelegatorStakeMore(acc(10), acc(1), amt(30)))
	more := f.events("DelegatorStakedMore")
	require.Len(t, more, 1)
	assert.Equal(t, "20", more[0].Attr("oldAmount"))
	assert.Equal(t, "50", more[0].Attr("newAmount"))
	assert.Equal(t, int64(150), f.candidateTotal(1).Int64())

	assert.ErrorIs(t, s.DelegatorStakeLess(acc(10), acc(1), amt(51)), ErrUnderflow)
	assert.ErrorIs(t, s.DelegatorStakeLess(acc(10), acc(1), amt(48)), ErrDelegationBelowMin)
	assert.ErrorIs(t, s.DelegatorStakeLess(acc(10), acc(1), amt(46)), ErrNomStakeBelowMin)

	require.NoError(t, s.DelegatorStakeLess(acc(10), acc(1), amt(20)))
	l, err := s.Unstaking(acc(10))
	require.NoError(t, err)
	assert.Equal(t, unstaking.Ledger{{Block: 3, Amount: amt(20)}}, l)
	assert.Equal(t, int64(50), f.locked(10).Int64())
	assert.Equal(t, int64(130), f.candidateTotal(1).Int64())

	_, delegators := f.totalStake()
	assert.Equal(t, int64(30), delegators)
	f.checkInvariants()
}

func TestDelegationEntersSelection(t *testing.T) {
	f := newTestStaker().
		withBalances(genesisStake{1, 1000}, genesisStake{2, 1000}, genesisStake{3, 1000}, genesisStake{10, 100}).
		withCollators(genesisStake{1, 100}, genesisStake{2, 90}, genesisStake{3, 80}).
		build(t)

	require.NoError(t, f.staking().JoinDelegators(acc(10), acc(3), amt(30)))
	assert.Equal(t, []thor.Address{acc(3), acc(1)}, f.selected())
	collators, delegators := f.totalStake()
	assert.Equal(t, int64(180), collators)
	assert.Equal(t, int64(30), delegators)
	f.checkInvariants()
}

func TestRevokeDelegation(t *testing.T) {
	f := newTestStaker().
		withBalances(genesisStake{1, 1000}, genesisStake{2, 1000}, genesisStake{10, 100}, genesisStake{11, 100}).
		withCollators(genesisStake{1, 100}, genesisStake{2, 90}).
		withDelegators(genesisDelegation{10, 1, 20}, genesisDelegation{10, 2, 3}, genesisDelegation{11, 1, 10}).
		build(t)
	s := f.staking()

	assert.ErrorIs(t, s.RevokeDelegation(acc(12), acc(1)), ErrDelegatorNotFound)
	assert.ErrorIs(t, s.RevokeDelegation(acc(11), acc(2)), ErrDelegationNotFound)
	assert.ErrorIs(t, s.RevokeDelegation(acc(10), acc(1)), ErrNomStakeBelowMin)

	require.NoError(t, s.RevokeDelegation(acc(10), acc(2)))
	leftCollator := f.events("DelegatorLeftCollator")
	require.Len(t, leftCollator, 1)
	assert.Equal(t, "3", leftCollator[0].Attr("amount"))
	assert.Equal(t, "90", leftCollator[0].Attr("total"))
	assert.Empty(t, f.events("DelegatorLeft"))

	require.NoError(t, s.RevokeDelegation(acc(10), acc(1)))
	left := f.events("DelegatorLeft")
	require.Len(t, left, 1)
	assert.Equal(t, "20", left[0].Attr("total"))

	d, err := s.DelegatorState(acc(10))
	require.NoError(t, err)
	assert.Nil(t, d)
	l, err := s.Unstaking(acc(10))
	require.NoError(t, err)
	assert.Equal(t, unstaking.Ledger{{Block: 3, Amount: amt(23)}}, l)
	assert.Equal(t, int64(23), f.locked(10).Int64())
	assert.ErrorIs(t, s.RevokeDelegation(acc(10), acc(1)), ErrDelegatorNotFound)
	f.checkInvariants()
}

func TestLeaveDelegators(t *testing.T) {
	f := newTestStaker().
		withBalances(genesisStake{1, 1000}, genesisStake{2, 1000}, genesisStake{10, 100}).
		withCollators(genesisStake{1, 100}, genesisStake{2, 90}).
		withDelegators(genesisDelegation{10, 1, 20}, genesisDelegation{10, 2, 30}).
		build(t)
	s := f.staking()

	require.NoError(t, s.LeaveDelegators(acc(10)))
	assert.Len(t, f.events("DelegatorLeftCollator"), 2)
	left := f.events("DelegatorLeft")
	require.Len(t, left, 1)
	assert.Equal(t, "50", left[0].Attr("total"))

	d, err := s.DelegatorState(acc(10))
	require.NoError(t, err)
	assert.Nil(t, d)
	l, err := s.Unstaking(acc(10))
	require.NoError(t, err)
	assert.Equal(t, unstaking.Ledger{{Block: 3, Amount: amt(50)}}, l)
	assert.Equal(t, int64(100), f.candidateTotal(1).Int64())
	assert.Equal(t, int64(90), f.candidateTotal(2).Int64())

	_, delegators := f.totalStake()
	assert.Equal(t, int64(0), delegators)
	assert.ErrorIs(t, s.LeaveDelegators(acc(10)), ErrDelegatorNotFound)
	f.checkInvariants()
}

func TestUnstakingRequestsLimit(t *testing.T) {
	f := newTestStaker().
		withBalances(genesisStake{1, 1000}, genesisStake{2, 1000}, genesisStake{3, 1000}).
		withCollators(genesisStake{1, 100}, genesisStake{2, 90}, genesisStake{3, 80}).
		build(t)

	for b := uint32(1); b <= 5; b++ {
		require.NoError(t, f.at(b).CandidateStakeLess(acc(1), amt(1)))
	}
	assert.ErrorIs(t, f.at(6).CandidateStakeLess(acc(1), amt(1)), ErrNoMoreUnstaking)

	// a forced removal always finds a free slot
	require.NoError(t, f.at(6).ForceRemoveCandidate(acc(1)))
	l, err := f.at(6).Unstaking(acc(1))
	require.NoError(t, err)
	assert.Len(t, l, 6)
	assert.Equal(t, int64(100), l.Total().Int64())
	assert.Equal(t, int64(100), f.locked(1).Int64())

	assert.ErrorIs(t, f.at(6).JoinCandidates(acc(1), amt(10)), ErrCannotJoinBeforeUnlock)
	assert.ErrorIs(t, f.at(6).JoinDelegators(acc(1), acc(2), amt(10)), ErrCannotJoinBeforeUnlock)

	// the first entry matured at block 3
	require.NoError(t, f.at(7).UnlockUnstaked(acc(1)))
	l, err = f.at(7).Unstaking(acc(1))
	require.NoError(t, err)
	assert.Len(t, l, 1)
	assert.Equal(t, int64(95), f.locked(1).Int64())
}
