// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/parastaking/chain"
	"github.com/vechain/parastaking/genesis"
	"github.com/vechain/parastaking/runtime"
)

type stakeOverview struct {
	Owner  string `yaml:"owner"`
	Amount string `yaml:"amount"`
}

type roundOverview struct {
	Current uint32 `yaml:"current"`
	First   uint32 `yaml:"first"`
	Length  uint32 `yaml:"length"`
}

type inflationOverview struct {
	Year              uint64 `yaml:"year"`
	DoRecalculationAt uint32 `yaml:"doRecalculationAt"`
	InflationRate     string `yaml:"inflationRate"`
	DisinflationRate  string `yaml:"disinflationRate"`
	BlockRewards      string `yaml:"blockRewards"`
}

// overview is the state of the best block, printed by the simulate and inspect commands.
type overview struct {
	Network          string            `yaml:"network"`
	BestBlock        uint32            `yaml:"bestBlock"`
	BestID           string            `yaml:"bestID"`
	Round            roundOverview     `yaml:"round"`
	Session          uint32            `yaml:"session"`
	Validators       []string          `yaml:"validators"`
	TopCandidates    []stakeOverview   `yaml:"topCandidates"`
	CollatorStake    string            `yaml:"collatorStake"`
	DelegatorStake   string            `yaml:"delegatorStake"`
	TotalIssuance    string            `yaml:"totalIssuance"`
	Inflation        inflationOverview `yaml:"inflation"`
	StakingPotAmount string            `yaml:"stakingPot"`
}

func newOverview(gene *genesis.Genesis, repo *chain.Repository) (*overview, error) {
	st, release := repo.NewStateSnapshot()
	defer release()

	best := repo.BestSummary()
	rt := runtime.New(gene.Config(), st, best.Number, best.Author)
	staking := rt.Staking()

	ov := &overview{
		Network:   gene.Name(),
		BestBlock: best.Number,
		BestID:    best.ID.String(),
	}

	r, err := staking.Round()
	if err != nil {
		return nil, errors.Wrap(err, "round")
	}
	ov.Round = roundOverview{Current: r.Current, First: r.First, Length: r.Length}

	if ov.Session, err = rt.Session().Index(); err != nil {
		return nil, errors.Wrap(err, "session")
	}
	validators, err := rt.Session().Validators()
	if err != nil {
		return nil, errors.Wrap(err, "validators")
	}
	for _, v := range validators {
		ov.Validators = append(ov.Validators, v.String())
	}

	top, err := staking.TopCandidates()
	if err != nil {
		return nil, errors.Wrap(err, "top candidates")
	}
	for _, s := range top {
		ov.TopCandidates = append(ov.TopCandidates, stakeOverview{Owner: s.Owner.String(), Amount: s.Amount.String()})
	}

	total, err := staking.TotalCollatorStake()
	if err != nil {
		return nil, errors.Wrap(err, "total stake")
	}
	ov.CollatorStake = total.Collators.String()
	ov.DelegatorStake = total.Delegators.String()

	cur := rt.Currency()
	issuance, err := cur.TotalIssuance()
	if err != nil {
		return nil, errors.Wrap(err, "total issuance")
	}
	ov.TotalIssuance = issuance.String()
	pot, err := cur.FreeBalance(staking.PotAccount())
	if err != nil {
		return nil, errors.Wrap(err, "staking pot")
	}
	ov.StakingPotAmount = pot.String()

	in, err := rt.Inflation().Snapshot()
	if err != nil {
		return nil, errors.Wrap(err, "inflation")
	}
	ov.Inflation = inflationOverview{
		Year:              in.CurrentYear,
		DoRecalculationAt: in.DoRecalculationAt,
		InflationRate:     in.Parameters.InflationRate.String(),
		DisinflationRate:  in.Parameters.DisinflationRate.String(),
		BlockRewards:      in.BlockRewards.String(),
	}
	return ov, nil
}

func (ov *overview) print(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(ov); err != nil {
		return err
	}
	return enc.Close()
}
