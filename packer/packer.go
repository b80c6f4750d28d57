// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package packer builds new blocks on top of the best block.
package packer

import (
	"github.com/pkg/errors"

	"github.com/vechain/parastaking/chain"
	"github.com/vechain/parastaking/runtime"
	"github.com/vechain/parastaking/session"
	"github.com/vechain/parastaking/thor"
)

// Packer to pack calls and build new blocks.
type Packer struct {
	repo     *chain.Repository
	cfg      runtime.Config
	maxCalls int
}

// New create a new Packer instance. maxCalls bounds the calls of a block, 0 is unbounded.
func New(repo *chain.Repository, cfg runtime.Config, maxCalls int) *Packer {
	return &Packer{repo, cfg, maxCalls}
}

// Schedule returns the author of block number: the enabled validators of the
// session take turns by block number. It is zero when every validator is disabled.
func Schedule(s *session.Session, number uint32) (thor.Address, error) {
	validators, err := s.Validators()
	if err != nil {
		return thor.Address{}, err
	}
	disabled, err := s.Disabled()
	if err != nil {
		return thor.Address{}, err
	}
	off := make(map[uint32]bool, len(disabled))
	for _, i := range disabled {
		off[i] = true
	}
	enabled := make([]thor.Address, 0, len(validators))
	for i, v := range validators {
		if !off[uint32(i)] {
			enabled = append(enabled, v)
		}
	}
	if len(enabled) == 0 {
		return thor.Address{}, nil
	}
	return enabled[int(number%uint32(len(enabled)))], nil
}

// Prepare starts a block on top of parent, which must be the best block. The
// opening hooks run here, so the flow already knows the author.
func (p *Packer) Prepare(parent *chain.Summary, timestamp uint64) (*Flow, error) {
	if best := p.repo.BestSummary(); best == nil || best.ID != parent.ID {
		return nil, errNotBest
	}
	number := parent.Number + 1
	rt := runtime.New(p.cfg, p.repo.NewState(), number, thor.Address{})
	if err := rt.Initialize(); err != nil {
		return nil, errors.Wrapf(err, "initialize block %d", number)
	}
	author, err := Schedule(rt.Session(), number)
	if err != nil {
		return nil, errors.Wrap(err, "schedule")
	}
	rt.SetAuthor(author)
	return newFlow(p, parent, rt, timestamp), nil
}
