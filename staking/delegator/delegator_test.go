// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegator

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/parastaking/lvldb"
	"github.com/vechain/parastaking/state"
	"github.com/vechain/parastaking/storage"
	"github.com/vechain/parastaking/thor"
)

func addr(i byte) thor.Address { return thor.BytesToAddress([]byte{i}) }

func TestDelegator(t *testing.T) {
	d := New(addr(1), big.NewInt(10))
	d.Put(addr(2), big.NewInt(5))
	assert.Equal(t, int64(15), d.Total.Int64())

	d.Put(addr(1), big.NewInt(3))
	assert.Equal(t, int64(8), d.Total.Int64())
	amount, ok := d.Amount(addr(1))
	assert.True(t, ok)
	assert.Equal(t, int64(3), amount.Int64())

	removed, ok := d.Remove(addr(2))
	assert.True(t, ok)
	assert.Equal(t, int64(5), removed.Int64())
	_, ok = d.Remove(addr(2))
	assert.False(t, ok)
	assert.False(t, d.Empty())
	d.Remove(addr(1))
	assert.True(t, d.Empty())
}

func TestService(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()
	s := NewService(storage.NewContext(thor.BytesToAddress([]byte("stk")), state.New(db)))

	d, err := s.Get(addr(7))
	require.NoError(t, err)
	assert.Nil(t, d)

	require.NoError(t, s.Set(addr(7), New(addr(1), big.NewInt(10))))
	d, err = s.Get(addr(7))
	require.NoError(t, err)
	assert.Equal(t, int64(10), d.Total.Int64())

	d.Remove(addr(1))
	require.NoError(t, s.Set(addr(7), d))
	d, err = s.Get(addr(7))
	require.NoError(t, err)
	assert.Nil(t, d, "empty delegators are deleted")
}

func TestCounter(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()
	s := NewService(storage.NewContext(thor.BytesToAddress([]byte("stk")), state.New(db)))

	require.NoError(t, s.Bump(addr(1), 3))
	require.NoError(t, s.Bump(addr(1), 3))
	c, err := s.Counter(addr(1), 3)
	require.NoError(t, err)
	assert.Equal(t, Counter{Round: 3, Count: 2}, c)

	c, err = s.Counter(addr(1), 4)
	require.NoError(t, err)
	assert.Equal(t, Counter{Round: 4}, c, "a new round restarts the count")

	require.NoError(t, s.Bump(addr(1), 4))
	last, err := s.LastDelegation(addr(1))
	require.NoError(t, err)
	assert.Equal(t, Counter{Round: 4, Count: 1}, last)
}
