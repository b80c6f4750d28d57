// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/parastaking/chain"
	"github.com/vechain/parastaking/events"
	"github.com/vechain/parastaking/lvldb"
	"github.com/vechain/parastaking/runtime"
	"github.com/vechain/parastaking/state"
	"github.com/vechain/parastaking/thor"
)

// Builder helper to build the genesis block.
type Builder struct {
	timestamp uint64
	cfg       runtime.Config

	stateProcs []func(rt *runtime.Runtime) error
}

// Timestamp set timestamp.
func (b *Builder) Timestamp(t uint64) *Builder {
	b.timestamp = t
	return b
}

// Config sets the module constants.
func (b *Builder) Config(cfg runtime.Config) *Builder {
	b.cfg = cfg
	return b
}

// State adds a state process, run after the modules are installed.
func (b *Builder) State(proc func(rt *runtime.Runtime) error) *Builder {
	b.stateProcs = append(b.stateProcs, proc)
	return b
}

// Balance endows acc.
func (b *Builder) Balance(acc thor.Address, amount *big.Int) *Builder {
	return b.State(func(rt *runtime.Runtime) error {
		return errors.Wrapf(rt.Currency().Deposit(acc, amount), "balance of %v", acc)
	})
}

// Collator joins id as a candidate.
func (b *Builder) Collator(id thor.Address, stake *big.Int) *Builder {
	return b.State(func(rt *runtime.Runtime) error {
		return errors.Wrapf(rt.Staking().JoinCandidates(id, stake), "collator %v", id)
	})
}

// Delegator delegates amount of acc to collator.
func (b *Builder) Delegator(acc, collator thor.Address, amount *big.Int) *Builder {
	return b.State(func(rt *runtime.Runtime) error {
		s := rt.Staking()
		d, err := s.DelegatorState(acc)
		if err != nil {
			return err
		}
		if d == nil {
			err = s.JoinDelegators(acc, collator, amount)
		} else {
			err = s.DelegateAnotherCandidate(acc, collator, amount)
		}
		return errors.Wrapf(err, "delegator %v", acc)
	})
}

// Build installs the genesis state into st and returns the genesis summary.
func (b *Builder) Build(st *state.State) (*chain.Summary, []*events.Event, error) {
	rt := runtime.New(b.cfg, st, 0, thor.Address{})
	if err := rt.Genesis(); err != nil {
		return nil, nil, err
	}
	for _, proc := range b.stateProcs {
		if err := proc(rt); err != nil {
			return nil, nil, err
		}
	}
	if err := rt.GenesisSession(); err != nil {
		return nil, nil, err
	}

	evs := rt.Events().Take()
	summary := (&chain.Summary{
		Timestamp: b.timestamp,
		StateRoot: st.Stage().Hash(thor.Bytes32{}),
		Events:    uint32(len(evs)),
	}).Seal()
	return summary, evs, nil
}

// ComputeID computes the genesis id.
func (b *Builder) ComputeID() (thor.Bytes32, error) {
	db, err := lvldb.NewMem()
	if err != nil {
		return thor.Bytes32{}, err
	}
	defer db.Close()
	summary, _, err := b.Build(state.New(db))
	if err != nil {
		return thor.Bytes32{}, err
	}
	return summary.ID, nil
}
