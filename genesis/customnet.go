// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"io"
	"math/big"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/parastaking/runtime"
	"github.com/vechain/parastaking/thor"
)

// Amount is a base unit amount written as a decimal string.
type Amount struct {
	*big.Int
}

func (a *Amount) UnmarshalYAML(node *yaml.Node) error {
	v, err := thor.ParseAmount(node.Value)
	if err != nil {
		return errors.Wrapf(err, "line %d", node.Line)
	}
	a.Int = v
	return nil
}

func (a Amount) MarshalYAML() (any, error) {
	if a.Int == nil {
		return "0", nil
	}
	return a.String(), nil
}

type Account struct {
	Address thor.Address `yaml:"address"`
	Balance Amount       `yaml:"balance"`
}

type Collator struct {
	Address thor.Address `yaml:"address"`
	Stake   Amount       `yaml:"stake"`
}

type Delegator struct {
	Address  thor.Address `yaml:"address"`
	Collator thor.Address `yaml:"collator"`
	Amount   Amount       `yaml:"amount"`
}

// StakingParams overrides the constants of the base network.
type StakingParams struct {
	BlocksPerRound            *uint32 `yaml:"blocksPerRound"`
	StakeDuration             *uint32 `yaml:"stakeDuration"`
	ExitQueueDelay            *uint32 `yaml:"exitQueueDelay"`
	MinCollators              *uint32 `yaml:"minCollators"`
	MaxTopCandidates          *uint32 `yaml:"maxTopCandidates"`
	MaxDelegatorsPerCollator  *uint32 `yaml:"maxDelegatorsPerCollator"`
	MaxCollatorsPerDelegator  *uint32 `yaml:"maxCollatorsPerDelegator"`
	MinCollatorCandidateStake *Amount `yaml:"minCollatorCandidateStake"`
	MinDelegatorStake         *Amount `yaml:"minDelegatorStake"`
	MinDelegation             *Amount `yaml:"minDelegation"`
}

type InflationParams struct {
	BlocksPerYear               *uint32 `yaml:"blocksPerYear"`
	DoInitializeAt              *uint32 `yaml:"doInitializeAt"`
	BlockRewardBeforeInitialize *Amount `yaml:"blockRewardBeforeInitialize"`
	DefaultTotalIssuance        *Amount `yaml:"defaultTotalIssuance"`
}

// CustomGenesis is user customized genesis.
type CustomGenesis struct {
	Name       string `yaml:"name"`
	LaunchTime uint64 `yaml:"launchTime"`
	// Base selects the constants overridden below: "dev" or "main".
	Base       string          `yaml:"base"`
	Accounts   []Account       `yaml:"accounts"`
	Collators  []Collator      `yaml:"collators"`
	Delegators []Delegator     `yaml:"delegators"`
	Staking    StakingParams   `yaml:"staking"`
	Inflation  InflationParams `yaml:"inflation"`
}

// LoadCustomGenesis decodes a yaml genesis document.
func LoadCustomGenesis(r io.Reader) (*CustomGenesis, error) {
	var gen CustomGenesis
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&gen); err != nil {
		return nil, errors.Wrap(err, "decode genesis")
	}
	return &gen, nil
}

func setUint32(dst *uint32, v *uint32) {
	if v != nil {
		*dst = *v
	}
}

func setAmount(dst **big.Int, v *Amount) {
	if v != nil && v.Int != nil {
		*dst = v.Int
	}
}

// RuntimeConfig applies the overrides to the base constants.
func (gen *CustomGenesis) RuntimeConfig() (runtime.Config, error) {
	var cfg runtime.Config
	switch gen.Base {
	case "", "dev":
		cfg = runtime.DevConfig()
	case "main":
		cfg = runtime.DefaultConfig()
	default:
		return cfg, errors.Errorf("unknown base network %q", gen.Base)
	}

	sp, sc := gen.Staking, &cfg.Staking
	setUint32(&sc.DefaultBlocksPerRound, sp.BlocksPerRound)
	setUint32(&sc.StakeDuration, sp.StakeDuration)
	setUint32(&sc.ExitQueueDelay, sp.ExitQueueDelay)
	setUint32(&sc.MinCollators, sp.MinCollators)
	setUint32(&sc.MaxTopCandidates, sp.MaxTopCandidates)
	setUint32(&sc.MaxDelegatorsPerCollator, sp.MaxDelegatorsPerCollator)
	setUint32(&sc.MaxCollatorsPerDelegator, sp.MaxCollatorsPerDelegator)
	setAmount(&sc.MinCollatorCandidateStake, sp.MinCollatorCandidateStake)
	setAmount(&sc.MinDelegatorStake, sp.MinDelegatorStake)
	setAmount(&sc.MinDelegation, sp.MinDelegation)

	ip, ic := gen.Inflation, &cfg.Inflation
	setUint32(&ic.BlocksPerYear, ip.BlocksPerYear)
	setUint32(&ic.DoInitializeAt, ip.DoInitializeAt)
	setAmount(&ic.BlockRewardBeforeInitialize, ip.BlockRewardBeforeInitialize)
	setAmount(&ic.DefaultTotalIssuance, ip.DefaultTotalIssuance)

	if sc.DefaultBlocksPerRound < sc.MinBlocksPerRound {
		return cfg, errors.Errorf("blocksPerRound must be at least %d", sc.MinBlocksPerRound)
	}
	if sc.MinCollators == 0 || sc.MinCollators > sc.MaxTopCandidates {
		return cfg, errors.New("minCollators must be in [1, maxTopCandidates]")
	}
	if ic.BlocksPerYear == 0 {
		return cfg, errors.New("blocksPerYear must not be 0")
	}
	return cfg, nil
}

// NewCustomNet creates a custom network genesis.
func NewCustomNet(gen *CustomGenesis) (*Genesis, error) {
	cfg, err := gen.RuntimeConfig()
	if err != nil {
		return nil, err
	}
	if len(gen.Collators) < int(cfg.Staking.MinCollators) {
		return nil, errors.Errorf("at least %d collators required", cfg.Staking.MinCollators)
	}

	builder := new(Builder).
		Timestamp(gen.LaunchTime).
		Config(cfg)
	for _, a := range gen.Accounts {
		if a.Balance.Int == nil {
			return nil, errors.Errorf("account %v: missing balance", a.Address)
		}
		builder.Balance(a.Address, a.Balance.Int)
	}
	for _, c := range gen.Collators {
		if c.Stake.Int == nil {
			return nil, errors.Errorf("collator %v: missing stake", c.Address)
		}
		builder.Collator(c.Address, c.Stake.Int)
	}
	for _, d := range gen.Delegators {
		if d.Amount.Int == nil {
			return nil, errors.Errorf("delegator %v: missing amount", d.Address)
		}
		builder.Delegator(d.Address, d.Collator, d.Amount.Int)
	}

	name := gen.Name
	if name == "" {
		name = "customnet"
	}
	return newGenesis(name, builder)
}
