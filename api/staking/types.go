// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/parastaking/api/utils"
	"github.com/vechain/parastaking/staking/candidate"
	"github.com/vechain/parastaking/staking/delegator"
	"github.com/vechain/parastaking/staking/orderedset"
	"github.com/vechain/parastaking/staking/unstaking"
	"github.com/vechain/parastaking/thor"
)

type Stake struct {
	Owner  thor.Address          `json:"owner"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

func convertStakes(items []orderedset.Stake) []Stake {
	stakes := make([]Stake, 0, len(items))
	for _, it := range items {
		stakes = append(stakes, Stake{it.Owner, utils.Amount(it.Amount)})
	}
	return stakes
}

type Candidate struct {
	ID         thor.Address          `json:"id"`
	Stake      *math.HexOrDecimal256 `json:"stake"`
	Total      *math.HexOrDecimal256 `json:"total"`
	Status     string                `json:"status"`
	LeavingAt  *uint32               `json:"leavingAt"`
	Commission string                `json:"commission"`
	Delegators []Stake               `json:"delegators"`
}

func convertCandidate(c *candidate.Candidate) *Candidate {
	out := &Candidate{
		ID:         c.ID,
		Stake:      utils.Amount(c.Stake),
		Total:      utils.Amount(c.Total),
		Status:     c.Status.String(),
		Commission: c.Commission.String(),
		Delegators: convertStakes(c.Delegators.Items()),
	}
	if c.IsLeaving() {
		at := c.LeavingAt
		out.LeavingAt = &at
	}
	return out
}

type Delegator struct {
	ID          thor.Address          `json:"id"`
	Total       *math.HexOrDecimal256 `json:"total"`
	Delegations []Stake               `json:"delegations"`
	LastRound   uint32                `json:"lastRound"`
	LastCount   uint32                `json:"lastCount"`
}

func convertDelegator(id thor.Address, d *delegator.Delegator, last delegator.Counter) *Delegator {
	return &Delegator{
		ID:          id,
		Total:       utils.Amount(d.Total),
		Delegations: convertStakes(d.Delegations.Items()),
		LastRound:   last.Round,
		LastCount:   last.Count,
	}
}

type UnstakingEntry struct {
	Block  uint32                `json:"block"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

type Unstaking struct {
	Total   *math.HexOrDecimal256 `json:"total"`
	Entries []UnstakingEntry      `json:"entries"`
}

func convertUnstaking(l unstaking.Ledger) *Unstaking {
	out := &Unstaking{Total: utils.Amount(l.Total()), Entries: make([]UnstakingEntry, 0, len(l))}
	for _, e := range l {
		out.Entries = append(out.Entries, UnstakingEntry{e.Block, utils.Amount(e.Amount)})
	}
	return out
}

type Round struct {
	Current               uint32                `json:"current"`
	First                 uint32                `json:"first"`
	Length                uint32                `json:"length"`
	MaxSelectedCandidates uint32                `json:"maxSelectedCandidates"`
	MaxCandidateStake     *math.HexOrDecimal256 `json:"maxCandidateStake"`
	ForceNewRound         bool                  `json:"forceNewRound"`
	NextRotation          uint32                `json:"nextRotation"`
	Progress              string                `json:"progress"`
}

type TotalStake struct {
	Collators  *math.HexOrDecimal256 `json:"collators"`
	Delegators *math.HexOrDecimal256 `json:"delegators"`
	Total      *math.HexOrDecimal256 `json:"total"`
}

type Session struct {
	Index      uint32         `json:"index"`
	Validators []thor.Address `json:"validators"`
	Queued     []thor.Address `json:"queued"`
	Disabled   []uint32       `json:"disabled"`
}
