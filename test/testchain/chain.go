// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package testchain runs an in-memory chain from a genesis, for tests.
package testchain

import (
	"github.com/pkg/errors"

	"github.com/vechain/parastaking/chain"
	"github.com/vechain/parastaking/eventdb"
	"github.com/vechain/parastaking/genesis"
	"github.com/vechain/parastaking/lvldb"
	"github.com/vechain/parastaking/packer"
	"github.com/vechain/parastaking/runtime"
	"github.com/vechain/parastaking/thor"
)

// BlockInterval is the timestamp step between minted blocks.
const BlockInterval = 6

// Chain represents the blockchain structure: the block store, the event db
// and the genesis it was built from.
type Chain struct {
	db      *lvldb.LevelDB
	genesis *genesis.Genesis
	repo    *chain.Repository
	eventDB *eventdb.EventDB
	packer  *packer.Packer
}

// NewDefault creates a chain from the dev network genesis.
func NewDefault() (*Chain, error) {
	return NewWithGenesis(genesis.NewDevnet())
}

// NewWithGenesis creates a chain from gene.
func NewWithGenesis(gene *genesis.Genesis) (*Chain, error) {
	db, err := lvldb.NewMem()
	if err != nil {
		return nil, err
	}
	repo, err := chain.NewRepository(db)
	if err != nil {
		return nil, err
	}
	evdb, err := eventdb.NewMem()
	if err != nil {
		return nil, err
	}
	evs, err := gene.Init(repo)
	if err != nil {
		return nil, errors.Wrap(err, "init genesis")
	}
	if err := evdb.Insert(eventdb.NewEvents(0, gene.LaunchTime(), evs)); err != nil {
		return nil, err
	}
	return &Chain{
		db:      db,
		genesis: gene,
		repo:    repo,
		eventDB: evdb,
		packer:  packer.New(repo, gene.Config(), 0),
	}, nil
}

func (c *Chain) Repo() *chain.Repository { return c.repo }

func (c *Chain) EventDB() *eventdb.EventDB { return c.eventDB }

func (c *Chain) Genesis() *genesis.Genesis { return c.genesis }

func (c *Chain) Config() runtime.Config { return c.genesis.Config() }

// Runtime returns a runtime over the latest state, bound to the best block.
func (c *Chain) Runtime() *runtime.Runtime {
	best := c.repo.BestSummary()
	return runtime.New(c.Config(), c.repo.NewState(), best.Number, best.Author)
}

// MintBlock packs the calls into a new block and commits it.
func (c *Chain) MintBlock(calls ...*runtime.Call) (*packer.Block, error) {
	best := c.repo.BestSummary()
	flow, err := c.packer.Prepare(best, best.Timestamp+BlockInterval)
	if err != nil {
		return nil, err
	}
	for _, call := range calls {
		if _, err := flow.Adopt(call); err != nil {
			return nil, err
		}
	}
	b, err := flow.Pack()
	if err != nil {
		return nil, err
	}
	if err := c.eventDB.Insert(eventdb.NewEvents(b.Summary.Number, b.Summary.Timestamp, b.Events)); err != nil {
		return nil, err
	}
	if err := c.repo.AddBlock(b.Summary, b.Stage); err != nil {
		return nil, err
	}
	return b, nil
}

// MintBlocks mints n empty blocks.
func (c *Chain) MintBlocks(n int) error {
	for range n {
		if _, err := c.MintBlock(); err != nil {
			return err
		}
	}
	return nil
}

// Signed builds a call signed by acc.
func Signed(acc thor.Address, method string) *runtime.Call {
	return &runtime.Call{Origin: runtime.Signed(acc), Method: method}
}

func (c *Chain) Close() error {
	if err := c.eventDB.Close(); err != nil {
		return err
	}
	return c.db.Close()
}
