// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/parastaking/inflation"
	"github.com/vechain/parastaking/lvldb"
	"github.com/vechain/parastaking/staking"
	"github.com/vechain/parastaking/state"
	"github.com/vechain/parastaking/thor"
)

func acc(i byte) thor.Address {
	return thor.BytesToAddress([]byte{i})
}

func newGenesis(t *testing.T) *state.State {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := state.New(db)
	rt := New(DevConfig(), st, 0, thor.Address{})
	for i := byte(1); i <= 4; i++ {
		require.NoError(t, rt.Currency().Deposit(acc(i), big.NewInt(1000)))
	}
	require.NoError(t, rt.Genesis())
	require.NoError(t, rt.Staking().JoinCandidates(acc(1), big.NewInt(100)))
	require.NoError(t, rt.Staking().JoinCandidates(acc(2), big.NewInt(90)))
	require.NoError(t, rt.GenesisSession())
	return st
}

func TestExecuteCalls(t *testing.T) {
	st := newGenesis(t)
	rt := New(DevConfig(), st, 1, acc(1))

	out, err := rt.Execute([]*Call{
		{Origin: Signed(acc(3)), Method: "joinCandidates", Amount: big.NewInt(50)},
		{Origin: Signed(acc(3)), Method: "joinCandidates", Amount: big.NewInt(50)},
		{Origin: Signed(acc(3)), Method: "setBlocksPerRound", Value: 10},
		{Origin: Root(), Method: "joinCandidates", Amount: big.NewInt(50)},
		{Origin: Root(), Method: "forceNewRound"},
		{Origin: Signed(acc(4)), Method: "mint"},
		{Origin: Signed(acc(4)), Method: "joinDelegators", Target: acc(3), Amount: big.NewInt(20)},
	})
	require.NoError(t, err)
	require.Len(t, out.Receipts, 7)

	for i, tt := range []struct {
		reverted bool
		reason   string
	}{
		{false, ""},
		{true, "CandidateExists"},
		{true, "BadOrigin"},
		{true, "BadOrigin"},
		{false, ""},
		{true, "UnknownMethod"},
		{false, ""},
	} {
		assert.Equal(t, tt.reverted, out.Receipts[i].Reverted, "call %d", i)
		assert.Equal(t, tt.reason, out.Receipts[i].Reason, "call %d", i)
	}
	require.NotEmpty(t, out.Receipts[0].Events)
	assert.Equal(t, "JoinedCollatorCandidates", out.Receipts[0].Events[0].Name)
	assert.Empty(t, out.Receipts[1].Events)

	c, err := rt.Staking().CandidatePool(acc(3))
	require.NoError(t, err)
	assert.Equal(t, int64(70), c.Total.Int64())

	pot, err := rt.Currency().FreeBalance(staking.PotAccount)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), pot.Int64())
	assert.NotEmpty(t, out.Events)
}

func TestExecuteRotatesSession(t *testing.T) {
	st := newGenesis(t)

	_, err := New(DevConfig(), st, 1, acc(1)).Execute([]*Call{{Origin: Root(), Method: "forceNewRound"}})
	require.NoError(t, err)

	rt := New(DevConfig(), st, 2, acc(2))
	out, err := rt.Execute(nil)
	require.NoError(t, err)

	index, err := rt.Session().Index()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), index)

	// the pot of block 1 went to its only author
	bal, err := rt.Currency().FreeBalance(acc(1))
	require.NoError(t, err)
	assert.Equal(t, int64(2000), bal.Int64())

	var names []string
	for _, ev := range out.Events {
		names = append(names, ev.Name)
	}
	assert.Contains(t, names, "Rewarded")
	assert.Contains(t, names, "NewSession")
	assert.Contains(t, names, "NewRound")
}

func TestForceRemoveDisablesValidator(t *testing.T) {
	st := newGenesis(t)
	rt := New(DevConfig(), st, 1, acc(1))
	require.NoError(t, rt.Apply(&Call{Origin: Signed(acc(3)), Method: "joinCandidates", Amount: big.NewInt(80)}))
	require.NoError(t, rt.Apply(&Call{Origin: Root(), Method: "forceRemoveCandidate", Target: acc(2)}))

	disabled, err := rt.Session().IsDisabled(acc(2))
	require.NoError(t, err)
	assert.True(t, disabled)
}

func TestInflationKickoff(t *testing.T) {
	st := newGenesis(t)
	cfg := DevConfig()
	for n := uint32(1); n <= cfg.Inflation.DoInitializeAt; n++ {
		_, err := New(cfg, st, n, acc(1)).Execute(nil)
		require.NoError(t, err)
	}

	rt := New(cfg, st, cfg.Inflation.DoInitializeAt, acc(1))
	year, err := rt.Inflation().CurrentYear()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), year)

	pot, err := rt.Currency().UsableBalance(inflation.PotAccount)
	require.NoError(t, err)
	assert.Positive(t, pot.Sign())
}

func TestPrivileged(t *testing.T) {
	assert.True(t, IsPrivileged("forceRemoveCandidate"))
	assert.True(t, IsPrivileged("transferAllPot"))
	assert.False(t, IsPrivileged("joinCandidates"))
	assert.Contains(t, Methods(), "delegatorStakeLess")
}
