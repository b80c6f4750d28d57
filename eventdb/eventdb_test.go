// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/parastaking/eventdb"
	"github.com/vechain/parastaking/events"
	"github.com/vechain/parastaking/thor"
)

func TestEventDB(t *testing.T) {
	db, err := eventdb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	alice := thor.BytesToAddress([]byte("alice"))
	bob := thor.BytesToAddress([]byte("bob"))

	for n := uint32(1); n <= 10; n++ {
		evs := []*events.Event{
			events.New("staking", "Delegation", alice, bob).With("amount", big.NewInt(int64(n))),
			events.New("currency", "Deposit", bob),
		}
		require.NoError(t, db.Insert(eventdb.NewEvents(n, uint64(n)*10, evs)))
	}

	all, err := db.Filter(nil)
	require.NoError(t, err)
	assert.Len(t, all, 20)

	to := uint32(5)
	got, err := db.Filter(&eventdb.Filter{From: 3, To: &to, Module: "staking"})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "3", got[0].Attrs["amount"])
	assert.Equal(t, []thor.Address{alice, bob}, got[0].Accounts)
	assert.Equal(t, uint64(30), got[0].BlockTime)

	got, err = db.Filter(&eventdb.Filter{Account: &bob, Order: eventdb.DESC, Limit: 4})
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, uint32(10), got[0].BlockNumber)
	assert.Equal(t, "Deposit", got[0].Name)

	got, err = db.Filter(&eventdb.Filter{Account: &alice, Name: "Deposit"})
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, db.Truncate(4))
	all, err = db.Filter(nil)
	require.NoError(t, err)
	assert.Len(t, all, 8)
}
