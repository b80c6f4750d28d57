// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package packer

import (
	"time"

	"github.com/pkg/errors"

	"github.com/vechain/parastaking/chain"
	"github.com/vechain/parastaking/events"
	"github.com/vechain/parastaking/runtime"
	"github.com/vechain/parastaking/state"
)

// Block is a packed block, ready to be committed.
type Block struct {
	Summary  *chain.Summary
	Stage    *state.Stage
	Receipts []*runtime.Receipt
	Events   []*events.Event
}

// Flow the flow of packing a new block.
type Flow struct {
	packer    *Packer
	parent    *chain.Summary
	runtime   *runtime.Runtime
	timestamp uint64
	receipts  []*runtime.Receipt
	started   time.Time
	packed    bool
}

func newFlow(packer *Packer, parent *chain.Summary, rt *runtime.Runtime, timestamp uint64) *Flow {
	return &Flow{
		packer:    packer,
		parent:    parent,
		runtime:   rt,
		timestamp: timestamp,
		started:   time.Now(),
	}
}

func (f *Flow) Parent() *chain.Summary { return f.parent }

func (f *Flow) Number() uint32 { return f.runtime.Number() }

// When the target time of the block.
func (f *Flow) When() uint64 { return f.timestamp }

func (f *Flow) Runtime() *runtime.Runtime { return f.runtime }

// Adopt executes the call. A reverted call is adopted too, its receipt says why.
func (f *Flow) Adopt(c *runtime.Call) (*runtime.Receipt, error) {
	if f.packed {
		return nil, errPackedFlow
	}
	if f.packer.maxCalls > 0 && len(f.receipts) >= f.packer.maxCalls {
		return nil, errBlockFull
	}
	r, err := f.runtime.Dispatch(c)
	if err != nil {
		return nil, err
	}
	status := "ok"
	if r.Reverted {
		status = "reverted"
	}
	metricPackedCalls().AddWithLabel(1, map[string]string{"status": status})
	f.receipts = append(f.receipts, r)
	return r, nil
}

// Pack runs the closing hooks and seals the block.
func (f *Flow) Pack() (*Block, error) {
	if f.packed {
		return nil, errPackedFlow
	}
	f.packed = true
	if err := f.runtime.Finalize(); err != nil {
		return nil, errors.Wrapf(err, "finalize block %d", f.Number())
	}

	var reverted uint32
	for _, r := range f.receipts {
		if r.Reverted {
			reverted++
		}
	}
	evs := f.runtime.Events().Take()
	stage := f.runtime.State().Stage()
	summary := (&chain.Summary{
		Number:    f.Number(),
		ParentID:  f.parent.ID,
		Timestamp: f.timestamp,
		Author:    f.runtime.Author(),
		StateRoot: stage.Hash(f.parent.StateRoot),
		Calls:     uint32(len(f.receipts)),
		Reverted:  reverted,
		Events:    uint32(len(evs)),
	}).Seal()

	metricPackTime().Observe(time.Since(f.started).Milliseconds())
	return &Block{
		Summary:  summary,
		Stage:    stage,
		Receipts: f.receipts,
		Events:   evs,
	}, nil
}
