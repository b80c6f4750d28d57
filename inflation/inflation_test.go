// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package inflation

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/parastaking/currency"
	"github.com/vechain/parastaking/events"
	"github.com/vechain/parastaking/lvldb"
	"github.com/vechain/parastaking/per"
	"github.com/vechain/parastaking/state"
	"github.com/vechain/parastaking/thor"
)

type testChain struct {
	t     *testing.T
	cfg   Config
	state *state.State
	rec   *events.Recorder
}

func newTestChain(t *testing.T, genesis bool, balances ...*big.Int) *testChain {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	c := &testChain{t: t, cfg: DevConfig(), state: state.New(db), rec: events.NewRecorder()}
	cur := c.currency()
	for i, b := range balances {
		require.NoError(t, cur.Deposit(thor.BytesToAddress([]byte{byte(i + 1)}), b))
	}
	if genesis {
		require.NoError(t, c.at(0).Genesis())
	}
	return c
}

func (c *testChain) currency() *currency.Currency {
	return currency.New(c.state, c.rec)
}

func (c *testChain) at(block uint32) *Inflation {
	return New(c.cfg, c.state, c.rec, block)
}

func (c *testChain) issuance() *big.Int {
	v, err := c.currency().TotalIssuance()
	require.NoError(c.t, err)
	return v
}

func (c *testChain) usable(acc thor.Address) *big.Int {
	v, err := c.currency().UsableBalance(acc)
	require.NoError(c.t, err)
	return v
}

// snapshotAt finalizes block and returns the resulting state.
func (c *testChain) snapshotAt(block uint32) *Snapshot {
	in := c.at(block)
	require.NoError(c.t, in.OnFinalize())
	s, err := in.Snapshot()
	require.NoError(c.t, err)
	return s
}

func whale() *big.Int {
	return thor.Units(1_000_000)
}

func TestGenesisDelayedStart(t *testing.T) {
	c := newTestChain(t, true, whale(), whale(), whale())
	s := c.snapshotAt(0)

	assert.Equal(t, DefaultConfiguration(), s.Configuration)
	assert.Equal(t, DefaultConfiguration().Parameters, s.Parameters)
	assert.Equal(t, uint32(10), s.DoRecalculationAt)
	assert.Equal(t, uint64(0), s.CurrentYear)
	assert.Equal(t, int64(1000), s.BlockRewards.Int64())

	v, err := c.at(0).Version()
	require.NoError(t, err)
	assert.Equal(t, StorageVersion, v)
}

func TestKickoffFundsPot(t *testing.T) {
	c := newTestChain(t, true, big.NewInt(20))
	require.NoError(t, c.at(10).OnFinalize())

	assert.Equal(t, c.cfg.DefaultTotalIssuance.String(), c.issuance().String())
	expected := new(big.Int).Sub(c.cfg.DefaultTotalIssuance, big.NewInt(20))
	assert.Equal(t, expected.String(), c.usable(PotAccount).String())
	assert.Len(t, c.rec.Filter(module, "PotFunded"), 1)

	dest := thor.BytesToAddress([]byte{2})
	require.NoError(t, c.at(11).TransferAllPot(dest))
	assert.Equal(t, int64(0), c.usable(PotAccount).Int64())
	assert.Equal(t, expected.String(), c.usable(dest).String())

	// an empty pot is a no-op
	require.NoError(t, c.at(11).TransferAllPot(dest))
	assert.Len(t, c.rec.Filter(module, "PotTransferred"), 1)
}

func TestKickoffKeepsHigherIssuance(t *testing.T) {
	above := new(big.Int).Add(DevConfig().DefaultTotalIssuance, big.NewInt(50))
	c := newTestChain(t, true, above)
	require.NoError(t, c.at(10).OnFinalize())

	assert.Equal(t, above.String(), c.issuance().String())
	assert.Empty(t, c.rec.Filter(module, "PotFunded"))
}

func TestMigrateAfterGenesisIsNoop(t *testing.T) {
	c := newTestChain(t, true, whale(), whale(), whale())
	before := c.issuance()
	require.NoError(t, c.at(1).Migrate())
	require.NoError(t, c.at(1).Migrate())

	s := c.snapshotAt(1)
	assert.Equal(t, before.String(), c.issuance().String())
	assert.Equal(t, uint64(0), s.CurrentYear)
	assert.Equal(t, uint32(10), s.DoRecalculationAt)
	assert.Equal(t, DefaultConfiguration().Parameters, s.Parameters)
	assert.Equal(t, int64(1000), s.BlockRewards.Int64())
}

func TestMigrateStartsFirstYear(t *testing.T) {
	c := newTestChain(t, false, big.NewInt(20))
	require.NoError(t, c.at(5).Migrate())

	s, err := c.at(5).Snapshot()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), s.CurrentYear)
	assert.Equal(t, uint32(105), s.DoRecalculationAt)
	assert.Equal(t, Parameters{InflationRate: per.PerbillFromPerthousand(35), DisinflationRate: per.OneBill}, s.Parameters)
	assert.Equal(t, c.cfg.DefaultTotalIssuance.String(), c.issuance().String())
	// 3.5% of 10M over 100 blocks
	assert.Equal(t, thor.Units(3500).String(), s.BlockRewards.String())

	v, err := c.at(5).Version()
	require.NoError(t, err)
	assert.Equal(t, StorageVersion, v)

	issuance := c.issuance()
	require.NoError(t, c.at(6).Migrate())
	assert.Equal(t, issuance.String(), c.issuance().String())
}

func TestParametersUpdateAtKickoff(t *testing.T) {
	c := newTestChain(t, true, whale(), whale(), whale())
	at := c.cfg.DoInitializeAt

	before := []*Snapshot{c.snapshotAt(at - 2), c.snapshotAt(at - 1)}
	after := []*Snapshot{c.snapshotAt(at), c.snapshotAt(at + 1)}

	assert.Equal(t, before[0], before[1])
	assert.Equal(t, after[0], after[1])
	assert.NotEqual(t, before[1], after[0])

	assert.Equal(t, uint64(1), after[0].CurrentYear)
	assert.Equal(t, before[0].DoRecalculationAt+c.cfg.BlocksPerYear, after[0].DoRecalculationAt)
	assert.NotEqual(t, before[0].BlockRewards.String(), after[0].BlockRewards.String())
	assert.Len(t, c.rec.Filter(module, "InflationParametersUpdated"), 1)
	assert.Len(t, c.rec.Filter(module, "BlockRewardsUpdated"), 1)
}

func TestYearlyParameters(t *testing.T) {
	c := newTestChain(t, true, whale(), whale(), whale())
	conf := DefaultConfiguration()
	disinflation := conf.Parameters.DisinflationRate.Complement()
	first := c.cfg.DoInitializeAt

	for i := uint32(0); i < conf.StagnationYear-1; i++ {
		s := c.snapshotAt(first + c.cfg.BlocksPerYear*i)
		rate := disinflation.Pow(i)
		assert.Equal(t, uint64(i+1), s.CurrentYear)
		assert.Equal(t, Parameters{
			InflationRate:    conf.Parameters.InflationRate.MulFrac(rate),
			DisinflationRate: rate,
		}, s.Parameters, "year %d", i+1)
	}

	p, err := c.at(0).Parameters()
	require.NoError(t, err)
	assert.True(t, p.InflationRate < conf.Parameters.InflationRate)
}

func TestSecondYearRates(t *testing.T) {
	conf := DefaultConfiguration()
	p := yearParameters(conf, 2, conf.Parameters)
	assert.Equal(t, per.Perbill(900_000_000), p.DisinflationRate)
	assert.Equal(t, per.Perbill(31_500_000), p.InflationRate)
}

func TestStagnation(t *testing.T) {
	c := newTestChain(t, true, whale(), whale(), whale())
	conf := DefaultConfiguration()
	first := c.cfg.DoInitializeAt

	var snapshots []*Snapshot
	for i := uint32(0); i <= conf.StagnationYear; i++ {
		snapshots = append(snapshots, c.snapshotAt(first+c.cfg.BlocksPerYear*i))
	}

	stagnation := snapshots[conf.StagnationYear-1]
	assert.Equal(t, uint64(conf.StagnationYear), stagnation.CurrentYear)
	assert.Equal(t, conf.StagnationRate, stagnation.Parameters.InflationRate)
	assert.Equal(t, snapshots[conf.StagnationYear-2].Parameters.DisinflationRate, stagnation.Parameters.DisinflationRate)
	assert.Equal(t, stagnation.Parameters, snapshots[conf.StagnationYear].Parameters)
}

func TestPayBlockReward(t *testing.T) {
	c := newTestChain(t, true, whale())
	beneficiary := thor.BytesToAddress([]byte("pot"))
	before := c.issuance()

	require.NoError(t, c.at(1).PayBlockReward(beneficiary))
	assert.Equal(t, int64(1000), c.usable(beneficiary).Int64())
	assert.Equal(t, new(big.Int).Add(before, big.NewInt(1000)).String(), c.issuance().String())
}

func TestBlockRewardsOf(t *testing.T) {
	params := Parameters{InflationRate: per.PerbillFromPercent(10)}
	assert.Equal(t, int64(10), BlockRewardsOf(params, big.NewInt(1000), 10).Int64())
	assert.Equal(t, int64(3), BlockRewardsOf(params, big.NewInt(1000), 30).Int64())
	assert.Equal(t, int64(100), BlockRewardsOf(params, big.NewInt(1000), 0).Int64())
}
