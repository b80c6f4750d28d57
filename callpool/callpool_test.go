// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package callpool

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/parastaking/runtime"
	"github.com/vechain/parastaking/thor"
)

func signed(i byte, method string) *runtime.Call {
	return &runtime.Call{
		Origin: runtime.Signed(thor.BytesToAddress([]byte{i})),
		Method: method,
		Amount: big.NewInt(10),
	}
}

func newPool(t *testing.T, opts Options) *CallPool {
	p := New(opts)
	t.Cleanup(p.Close)
	return p
}

func TestAddRejects(t *testing.T) {
	p := newPool(t, Options{Limit: 10, LimitPerAccount: 10})

	_, err := p.Add(signed(1, "noSuchMethod"))
	assert.Equal(t, errUnknownMethod, err)
	assert.True(t, IsBadCall(err))

	_, err = p.Add(&runtime.Call{Origin: runtime.Signed(thor.BytesToAddress([]byte{1})), Method: "forceNewRound"})
	assert.Equal(t, errBadOrigin, err)

	_, err = p.Add(&runtime.Call{Origin: runtime.Root(), Method: "joinCandidates"})
	assert.Equal(t, errBadOrigin, err)

	c := signed(1, "joinCandidates")
	c.Amount = big.NewInt(-1)
	_, err = p.Add(c)
	assert.Equal(t, errNegativeValue, err)

	assert.Equal(t, 0, p.Len())
}

func TestLimits(t *testing.T) {
	p := newPool(t, Options{Limit: 3, LimitPerAccount: 2})

	for range 2 {
		_, err := p.Add(signed(1, "joinCandidates"))
		require.NoError(t, err)
	}
	_, err := p.Add(signed(1, "joinCandidates"))
	assert.Equal(t, errAccountLimit, err)
	assert.True(t, IsErrPoolFull(err))

	_, err = p.Add(signed(2, "joinCandidates"))
	require.NoError(t, err)
	_, err = p.Add(signed(3, "joinCandidates"))
	assert.Equal(t, errPoolFull, err)
}

func TestOnBlock(t *testing.T) {
	p := newPool(t, Options{})
	ch := make(chan *CallEvent, 10)
	sub := p.SubscribeCallEvent(ch)
	defer sub.Unsubscribe()

	ids := make([]string, 3)
	for i := range ids {
		id, err := p.Add(signed(byte(i+1), "joinCandidates"))
		require.NoError(t, err)
		ids[i] = id
	}
	assert.Len(t, ch, 3)

	r, ok := p.Status(ids[0])
	require.True(t, ok)
	assert.Equal(t, StatusPending, r.Status)

	entries := p.Executables()
	require.Len(t, entries, 3)
	assert.Equal(t, ids[0], entries[0].ID)

	p.OnBlock(7, entries[:2], []*runtime.Receipt{
		{Call: entries[0].Call},
		{Call: entries[1].Call, Reverted: true, Reason: "CandidateExists"},
	})
	assert.Equal(t, 1, p.Len())
	assert.Equal(t, ids[2], p.Executables()[0].ID)

	r, _ = p.Status(ids[0])
	assert.Equal(t, StatusIncluded, r.Status)
	assert.Equal(t, uint32(7), *r.Block)
	r, _ = p.Status(ids[1])
	assert.Equal(t, StatusReverted, r.Status)
	assert.Equal(t, "CandidateExists", r.Reason)

	_, ok = p.Status("unknown")
	assert.False(t, ok)
	assert.Len(t, ch, 5)
}

func TestExpire(t *testing.T) {
	p := newPool(t, Options{MaxLifetime: time.Minute})
	id, err := p.Add(signed(1, "joinCandidates"))
	require.NoError(t, err)

	assert.Equal(t, 0, p.expire(time.Now()))
	assert.Equal(t, 1, p.expire(time.Now().Add(2*time.Minute)))
	assert.Equal(t, 0, p.Len())

	r, ok := p.Status(id)
	require.True(t, ok)
	assert.Equal(t, StatusExpired, r.Status)

	// the account slot is released
	_, err = p.Add(signed(1, "joinCandidates"))
	assert.NoError(t, err)
}
