// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/parastaking/callpool"
	"github.com/vechain/parastaking/eventdb"
	"github.com/vechain/parastaking/genesis"
	"github.com/vechain/parastaking/test/testchain"
	"github.com/vechain/parastaking/thor"
)

func newNode(t *testing.T, opts Options) (*Node, *testchain.Chain, *callpool.CallPool) {
	c, err := testchain.NewDefault()
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	pool := callpool.New(callpool.Options{Limit: 100, LimitPerAccount: 10, Results: 100})
	t.Cleanup(pool.Close)

	return New(c.Repo(), c.EventDB(), pool, c.Config(), opts), c, pool
}

func TestPackBlock(t *testing.T) {
	n, c, pool := newNode(t, Options{BlockInterval: 1})
	accs := genesis.DevAccounts()

	join := testchain.Signed(accs[5], "joinCandidates")
	join.Amount = thor.Units(100)
	ok, err := pool.Add(join)
	require.NoError(t, err)
	bad := testchain.Signed(accs[6], "candidateStakeMore")
	bad.Amount = thor.Units(1)
	reverted, err := pool.Add(bad)
	require.NoError(t, err)

	b, err := n.PackBlock(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), b.Summary.Number)
	assert.Equal(t, c.Genesis().LaunchTime()+1, b.Summary.Timestamp)
	assert.Len(t, b.Receipts, 2)
	assert.Equal(t, uint32(1), b.Summary.Reverted)
	assert.Equal(t, b.Summary.ID, c.Repo().BestSummary().ID)
	assert.Equal(t, 0, pool.Len())

	r, found := pool.Status(ok)
	require.True(t, found)
	assert.Equal(t, callpool.StatusIncluded, r.Status)
	assert.Equal(t, uint32(1), *r.Block)

	r, found = pool.Status(reverted)
	require.True(t, found)
	assert.Equal(t, callpool.StatusReverted, r.Status)
	assert.NotEmpty(t, r.Reason)

	one := uint32(1)
	evs, err := c.EventDB().Filter(&eventdb.Filter{From: one, To: &one, Account: &accs[5]})
	require.NoError(t, err)
	assert.NotEmpty(t, evs)
}

func TestPackBlockMaxCalls(t *testing.T) {
	n, _, pool := newNode(t, Options{BlockInterval: 1, MaxCalls: 2})
	accs := genesis.DevAccounts()

	for _, acc := range accs[5:8] {
		call := testchain.Signed(acc, "joinCandidates")
		call.Amount = thor.Units(100)
		_, err := pool.Add(call)
		require.NoError(t, err)
	}

	b, err := n.PackBlock(0)
	require.NoError(t, err)
	assert.Len(t, b.Receipts, 2)
	assert.Equal(t, 1, pool.Len())

	b, err = n.PackBlock(0)
	require.NoError(t, err)
	assert.Len(t, b.Receipts, 1)
	assert.Equal(t, 0, pool.Len())
}

func TestRun(t *testing.T) {
	n, c, _ := newNode(t, Options{BlockInterval: 1})
	assert.NotEmpty(t, n.ID())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- n.Run(ctx) }()

	assert.Eventually(t, func() bool {
		return c.Repo().BestSummary().Number >= 2
	}, 10*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("node did not stop")
	}
}

func TestClockDrifted(t *testing.T) {
	assert.False(t, clockDrifted(time.Second, 6))
	assert.False(t, clockDrifted(-3*time.Second, 6))
	assert.True(t, clockDrifted(4*time.Second, 6))
	assert.True(t, clockDrifted(-4*time.Second, 6))
}
