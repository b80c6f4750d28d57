// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis builds the first block of a network.
package genesis

import (
	"github.com/pkg/errors"

	"github.com/vechain/parastaking/chain"
	"github.com/vechain/parastaking/events"
	"github.com/vechain/parastaking/runtime"
	"github.com/vechain/parastaking/thor"
)

// Genesis is a named network definition.
type Genesis struct {
	builder *Builder
	id      thor.Bytes32
	name    string
}

func newGenesis(name string, builder *Builder) (*Genesis, error) {
	id, err := builder.ComputeID()
	if err != nil {
		return nil, errors.Wrap(err, "compute genesis id")
	}
	return &Genesis{builder, id, name}, nil
}

func (g *Genesis) ID() thor.Bytes32 { return g.id }

func (g *Genesis) Name() string { return g.name }

func (g *Genesis) Config() runtime.Config { return g.builder.cfg }

func (g *Genesis) LaunchTime() uint64 { return g.builder.timestamp }

// Init writes the genesis block into an empty repository, or checks that a
// non empty one was created from this genesis. The genesis events are returned
// when the block is written.
func (g *Genesis) Init(repo *chain.Repository) ([]*events.Event, error) {
	if repo.BestSummary() != nil {
		existing, err := repo.GetSummary(0)
		if err != nil {
			return nil, errors.Wrap(err, "get existing genesis")
		}
		if existing.ID != g.id {
			return nil, errors.Errorf("genesis mismatch: have %v, want %v", existing.ID, g.id)
		}
		return nil, nil
	}

	st := repo.NewState()
	summary, evs, err := g.builder.Build(st)
	if err != nil {
		return nil, err
	}
	if err := repo.AddBlock(summary, st.Stage()); err != nil {
		return nil, err
	}
	return evs, nil
}
