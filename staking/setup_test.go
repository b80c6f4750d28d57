// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/parastaking/currency"
	"github.com/vechain/parastaking/events"
	"github.com/vechain/parastaking/lvldb"
	"github.com/vechain/parastaking/state"
	"github.com/vechain/parastaking/thor"
)

func acc(i int) thor.Address {
	return thor.BytesToAddress(big.NewInt(int64(i)).Bytes())
}

func amt(v int64) *big.Int {
	return big.NewInt(v)
}

type genesisStake struct {
	id    int
	stake int64
}

type genesisDelegation struct {
	id, collator int
	amount       int64
}

// testBuilder sets up a staking state the way a genesis document would.
type testBuilder struct {
	cfg        Config
	balances   []genesisStake
	collators  []genesisStake
	delegators []genesisDelegation
}

func newTestStaker() *testBuilder {
	return &testBuilder{cfg: DevConfig()}
}

func (b *testBuilder) withConfig(fn func(*Config)) *testBuilder {
	fn(&b.cfg)
	return b
}

func (b *testBuilder) withBalances(v ...genesisStake) *testBuilder {
	b.balances = append(b.balances, v...)
	return b
}

func (b *testBuilder) withCollators(v ...genesisStake) *testBuilder {
	b.collators = append(b.collators, v...)
	return b
}

func (b *testBuilder) withDelegators(v ...genesisDelegation) *testBuilder {
	b.delegators = append(b.delegators, v...)
	return b
}

// testSession is a minimal validator rotation.
type testSession struct {
	index      uint32
	validators []thor.Address
	queued     []thor.Address
	disabled   []int
}

func (ts *testSession) Disable(id thor.Address) (bool, error) {
	i := slices.Index(ts.validators, id)
	if i < 0 || slices.Contains(ts.disabled, i) {
		return false, nil
	}
	ts.disabled = append(ts.disabled, i)
	return true, nil
}

type fixture struct {
	t       *testing.T
	cfg     Config
	state   *state.State
	rec     *events.Recorder
	block   uint32
	session *testSession
}

func (b *testBuilder) build(t *testing.T) *fixture {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &fixture{
		t:       t,
		cfg:     b.cfg,
		state:   state.New(db),
		rec:     events.NewRecorder(),
		session: &testSession{},
	}
	cur := f.currency()
	for _, bal := range b.balances {
		require.NoError(t, cur.Deposit(acc(bal.id), amt(bal.stake)))
	}

	s := f.staking()
	require.NoError(t, s.Initialize())
	for _, c := range b.collators {
		require.NoError(t, s.JoinCandidates(acc(c.id), amt(c.stake)))
	}
	for _, d := range b.delegators {
		state, err := s.DelegatorState(acc(d.id))
		require.NoError(t, err)
		if state == nil {
			require.NoError(t, s.JoinDelegators(acc(d.id), acc(d.collator), amt(d.amount)))
		} else {
			require.NoError(t, s.DelegateAnotherCandidate(acc(d.id), acc(d.collator), amt(d.amount)))
		}
	}
	validators, err := s.NewSession(0)
	require.NoError(t, err)
	f.session.validators = validators
	f.session.queued = validators

	f.rec.Take()
	f.block = 1
	return f
}

func (f *fixture) currency() *currency.Currency {
	return currency.New(f.state, f.rec)
}

// staking returns the engine bound to the current block.
func (f *fixture) staking() *Staking {
	return f.at(f.block)
}

func (f *fixture) at(block uint32) *Staking {
	return New(f.cfg, f.state, f.rec, block).WithSession(f.session)
}

// roll drives blocks until block n starts. authors[b] authors block b.
func (f *fixture) roll(n uint32, authors ...int) {
	for f.block < n {
		if int(f.block) < len(authors) && authors[f.block] != 0 {
			require.NoError(f.t, f.staking().NoteAuthor(acc(authors[f.block])))
		}
		f.block++
		s := f.staking()
		end, err := s.ShouldEndSession()
		require.NoError(f.t, err)
		if end {
			f.rotate(s)
		}
		require.NoError(f.t, s.OnInitialize())
	}
}

func (f *fixture) rotate(s *Staking) {
	require.NoError(f.t, s.EndSession(f.session.index))
	f.session.index++
	f.session.validators = f.session.queued
	f.session.disabled = nil
	next, err := s.NewSession(f.session.index + 1)
	require.NoError(f.t, err)
	if next != nil {
		f.session.queued = next
	}
}

func (f *fixture) balance(id int) *big.Int {
	bal, err := f.currency().FreeBalance(acc(id))
	require.NoError(f.t, err)
	return bal
}

func (f *fixture) locked(id int) *big.Int {
	l, err := f.currency().LockedBy(LockID, acc(id))
	require.NoError(f.t, err)
	return l
}

func (f *fixture) candidateTotal(id int) *big.Int {
	c, err := f.staking().CandidatePool(acc(id))
	require.NoError(f.t, err)
	require.NotNil(f.t, c)
	return c.Total
}

func (f *fixture) totalStake() (int64, int64) {
	ts, err := f.staking().TotalCollatorStake()
	require.NoError(f.t, err)
	return ts.Collators.Int64(), ts.Delegators.Int64()
}

func (f *fixture) selected() []thor.Address {
	sel, err := f.staking().SelectedCandidates()
	require.NoError(f.t, err)
	return sel
}

func (f *fixture) events(name string) []*events.Event {
	return f.rec.Filter(module, name)
}

// checkInvariants verifies the properties every operation must keep.
func (f *fixture) checkInvariants() {
	t := f.t
	s := f.staking()

	candidates, err := s.Candidates()
	require.NoError(t, err)
	for _, c := range candidates {
		assert.Equal(t, new(big.Int).Add(c.Stake, c.Delegators.Sum()).String(), c.Total.String(), "total of %v", c.ID)
		assert.Equal(t, c.Stake.String(), f.activeLock(c.ID).String(), "lock of %v", c.ID)
		for _, d := range c.Delegators.Items() {
			state, err := s.DelegatorState(d.Owner)
			require.NoError(t, err)
			require.NotNil(t, state, "delegator %v", d.Owner)
			amount, ok := state.Amount(c.ID)
			assert.True(t, ok)
			assert.Equal(t, d.Amount.String(), amount.String())
		}
	}

	top, err := s.TopCandidates()
	require.NoError(t, err)
	assert.LessOrEqual(t, len(top), int(f.cfg.MaxTopCandidates))
	seen := make(map[thor.Address]bool)
	for i, st := range top {
		assert.False(t, seen[st.Owner], "duplicate %v", st.Owner)
		seen[st.Owner] = true
		if i > 0 {
			assert.True(t, top[i-1].Amount.Cmp(st.Amount) >= 0, "top candidates out of order")
		}
		c, err := s.CandidatePool(st.Owner)
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.Equal(t, c.Total.String(), st.Amount.String())
	}

	sum := new(big.Int)
	for _, id := range f.selected() {
		c, err := s.CandidatePool(id)
		require.NoError(t, err)
		sum.Add(sum, c.Total)
	}
	ts, err := s.TotalCollatorStake()
	require.NoError(t, err)
	assert.Equal(t, sum.String(), ts.Sum().String(), "total stake")
}

// activeLock returns the staking lock of id minus its unstaking funds.
func (f *fixture) activeLock(id thor.Address) *big.Int {
	lock, err := f.currency().LockedBy(LockID, id)
	require.NoError(f.t, err)
	pending, err := f.staking().Unstaking(id)
	require.NoError(f.t, err)
	return lock.Sub(lock, pending.Total())
}
