// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package inflation implements the yearly inflation schedule: the rates of the
// current year and the reward minted for every block.
package inflation

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/parastaking/currency"
	"github.com/vechain/parastaking/events"
	"github.com/vechain/parastaking/log"
	"github.com/vechain/parastaking/state"
	"github.com/vechain/parastaking/storage"
	"github.com/vechain/parastaking/thor"
)

const module = "inflation"

// StorageVersion is the layout version written by Genesis and Migrate.
const StorageVersion uint32 = 1

var (
	logger = log.WithContext("pkg", "inflation")

	// Address is the account the inflation storage lives under.
	Address = thor.AccountFromID("inflation")
	// PotAccount receives the issuance top up when the first year starts.
	PotAccount = thor.AccountFromID("infla-pot")

	slotConfiguration     = storage.Slot("configuration")
	slotParameters        = storage.Slot("parameters")
	slotCurrentYear       = storage.Slot("current-year")
	slotDoRecalculationAt = storage.Slot("do-recalculation-at")
	slotBlockRewards      = storage.Slot("block-rewards")
	slotVersion           = storage.Slot("version")
)

func SetLogger(l log.Logger) {
	logger = l
}

// Inflation is the controller bound to the state of one block.
type Inflation struct {
	cfg      Config
	state    *state.State
	currency *currency.Currency
	events   *events.Recorder
	block    uint32

	configuration     *storage.Raw[Configuration]
	parameters        *storage.Raw[Parameters]
	currentYear       *storage.Raw[uint64]
	doRecalculationAt *storage.Raw[uint32]
	blockRewards      *storage.BigInt
	version           *storage.Raw[uint32]
}

// New creates the controller over st for the given block number. Events go to rec,
// which may be nil.
func New(cfg Config, st *state.State, rec *events.Recorder, block uint32) *Inflation {
	sctx := storage.NewContext(Address, st)
	return &Inflation{
		cfg:      cfg,
		state:    st,
		currency: currency.New(st, rec),
		events:   rec,
		block:    block,

		configuration:     storage.NewRaw[Configuration](sctx, slotConfiguration),
		parameters:        storage.NewRaw[Parameters](sctx, slotParameters),
		currentYear:       storage.NewRaw[uint64](sctx, slotCurrentYear),
		doRecalculationAt: storage.NewRaw[uint32](sctx, slotDoRecalculationAt),
		blockRewards:      storage.NewBigInt(sctx, slotBlockRewards),
		version:           storage.NewRaw[uint32](sctx, slotVersion),
	}
}

func (in *Inflation) emit(ev *events.Event) {
	if in.events != nil {
		in.events.Emit(ev)
	}
}

// Genesis installs the delayed start: year 0 with the bootstrap reward until DoInitializeAt.
func (in *Inflation) Genesis() error {
	if err := in.configuration.Set(in.cfg.Default); err != nil {
		return errors.Wrap(err, "set configuration")
	}
	if err := in.parameters.Set(in.cfg.Default.Parameters); err != nil {
		return errors.Wrap(err, "set parameters")
	}
	if err := in.currentYear.Set(0); err != nil {
		return errors.Wrap(err, "set current year")
	}
	if err := in.doRecalculationAt.Set(in.cfg.DoInitializeAt); err != nil {
		return errors.Wrap(err, "set recalculation block")
	}
	if err := in.blockRewards.Set(in.cfg.BlockRewardBeforeInitialize); err != nil {
		return errors.Wrap(err, "set block rewards")
	}
	if err := in.version.Set(StorageVersion); err != nil {
		return errors.Wrap(err, "set version")
	}
	logger.Debug("genesis installed", "initializeAt", in.cfg.DoInitializeAt)
	return nil
}

// Migrate brings a state without the controller to the current layout: the pot is
// funded, and the first year starts at this block. It is a no-op on an up to date state.
func (in *Inflation) Migrate() error {
	version, err := in.version.Get()
	if err != nil {
		return errors.Wrap(err, "get version")
	}
	if version >= StorageVersion {
		return nil
	}

	if err := in.fundPot(); err != nil {
		return err
	}
	conf := in.cfg.Default
	if err := in.configuration.Set(conf); err != nil {
		return errors.Wrap(err, "set configuration")
	}
	params := yearParameters(conf, 1, conf.Parameters)
	if err := in.startYear(1, params, in.block+in.cfg.BlocksPerYear); err != nil {
		return err
	}
	if err := in.version.Set(StorageVersion); err != nil {
		return errors.Wrap(err, "set version")
	}

	logger.Info("storage migrated", "from", version, "to", StorageVersion)
	return nil
}

// PayBlockReward mints the reward of the block to beneficiary.
func (in *Inflation) PayBlockReward(beneficiary thor.Address) error {
	rewards, err := in.blockRewards.Get()
	if err != nil {
		return err
	}
	if rewards.Sign() == 0 {
		return nil
	}
	if err := in.currency.Deposit(beneficiary, rewards); err != nil {
		return errors.Wrap(err, "mint block rewards")
	}
	metricMinted().Add(units(rewards))
	return nil
}

// OnFinalize starts a new year when the block is the recalculation block.
func (in *Inflation) OnFinalize() error {
	at, err := in.doRecalculationAt.Get()
	if err != nil {
		return err
	}
	if in.block != at {
		return nil
	}
	year, err := in.currentYear.Get()
	if err != nil {
		return err
	}
	if year == 0 {
		if err := in.fundPot(); err != nil {
			return err
		}
	}
	conf, err := in.configuration.Get()
	if err != nil {
		return err
	}
	prev, err := in.parameters.Get()
	if err != nil {
		return err
	}

	year++
	params := yearParameters(conf, year, prev)
	if err := in.startYear(year, params, at+in.cfg.BlocksPerYear); err != nil {
		return err
	}
	logger.Info("new inflation year", "year", year, "params", params, "next", at+in.cfg.BlocksPerYear)
	return nil
}

// TransferAllPot moves the whole usable balance of the pot to dest. Privileged.
func (in *Inflation) TransferAllPot(dest thor.Address) error {
	logger.Debug("transferring inflation pot", "dest", dest)

	checkpoint := in.state.NewCheckpoint()
	mark := 0
	if in.events != nil {
		mark = in.events.Len()
	}
	amount, err := in.transferAllPot(dest)
	if err != nil {
		in.state.RevertTo(checkpoint)
		if in.events != nil {
			in.events.Truncate(mark)
		}
		logger.Info("transfer inflation pot failed", "dest", dest, "error", err)
		return err
	}

	logger.Info("transferred inflation pot", "dest", dest, "amount", amount)
	return nil
}

func (in *Inflation) transferAllPot(dest thor.Address) (*big.Int, error) {
	amount, err := in.currency.UsableBalance(PotAccount)
	if err != nil {
		return nil, err
	}
	if amount.Sign() == 0 {
		return amount, nil
	}
	if err := in.currency.Transfer(PotAccount, dest, amount); err != nil {
		return nil, err
	}
	in.emit(events.New(module, "PotTransferred", dest).With("amount", amount))
	return amount, nil
}

// fundPot tops the issuance up to DefaultTotalIssuance into the pot. It never burns.
func (in *Inflation) fundPot() error {
	issuance, err := in.currency.TotalIssuance()
	if err != nil {
		return err
	}
	if issuance.Cmp(in.cfg.DefaultTotalIssuance) >= 0 {
		return nil
	}
	amount := new(big.Int).Sub(in.cfg.DefaultTotalIssuance, issuance)
	if err := in.currency.Deposit(PotAccount, amount); err != nil {
		return errors.Wrap(err, "fund pot")
	}
	in.emit(events.New(module, "PotFunded", PotAccount).With("amount", amount))
	logger.Info("inflation pot funded", "from", issuance, "to", in.cfg.DefaultTotalIssuance, "amount", amount)
	return nil
}

func (in *Inflation) startYear(year uint64, params Parameters, next uint32) error {
	if err := in.currentYear.Set(year); err != nil {
		return errors.Wrap(err, "set current year")
	}
	if err := in.parameters.Set(params); err != nil {
		return errors.Wrap(err, "set parameters")
	}
	if err := in.doRecalculationAt.Set(next); err != nil {
		return errors.Wrap(err, "set recalculation block")
	}
	issuance, err := in.currency.TotalIssuance()
	if err != nil {
		return err
	}
	rewards := BlockRewardsOf(params, issuance, in.cfg.BlocksPerYear)
	if err := in.blockRewards.Set(rewards); err != nil {
		return errors.Wrap(err, "set block rewards")
	}

	in.emit(events.New(module, "InflationParametersUpdated").
		With("year", year).
		With("inflationRate", params.InflationRate).
		With("disinflationRate", params.DisinflationRate))
	in.emit(events.New(module, "BlockRewardsUpdated").With("amount", rewards))
	metricYear().Set(int64(year))
	metricBlockRewards().Set(units(rewards))
	return nil
}

// yearParameters returns the rates of year. Before the stagnation year the base
// inflation decreases by the disinflation rate every year; from then on the
// inflation is the stagnation rate and the last disinflation is kept.
func yearParameters(conf Configuration, year uint64, prev Parameters) Parameters {
	if year >= uint64(conf.StagnationYear) {
		return Parameters{
			InflationRate:    conf.StagnationRate,
			DisinflationRate: prev.DisinflationRate,
		}
	}
	disinflation := conf.Parameters.DisinflationRate.Complement().Pow(uint32(year - 1))
	return Parameters{
		InflationRate:    conf.Parameters.InflationRate.MulFrac(disinflation),
		DisinflationRate: disinflation,
	}
}

// BlockRewardsOf returns inflation * issuance / blocksPerYear, rounded down.
func BlockRewardsOf(params Parameters, issuance *big.Int, blocksPerYear uint32) *big.Int {
	yearly := params.InflationRate.Mul(issuance)
	if blocksPerYear == 0 {
		return yearly
	}
	return yearly.Quo(yearly, big.NewInt(int64(blocksPerYear)))
}

//
// Getters
//

func (in *Inflation) Config() Config {
	return in.cfg
}

func (in *Inflation) Configuration() (Configuration, error) {
	return in.configuration.Get()
}

func (in *Inflation) Parameters() (Parameters, error) {
	return in.parameters.Get()
}

func (in *Inflation) CurrentYear() (uint64, error) {
	return in.currentYear.Get()
}

func (in *Inflation) DoRecalculationAt() (uint32, error) {
	return in.doRecalculationAt.Get()
}

func (in *Inflation) BlockRewards() (*big.Int, error) {
	return in.blockRewards.Get()
}

func (in *Inflation) Version() (uint32, error) {
	return in.version.Get()
}

func (in *Inflation) PotAccount() thor.Address {
	return PotAccount
}

// Snapshot is the whole controller state, as served by the API.
type Snapshot struct {
	Configuration     Configuration
	Parameters        Parameters
	CurrentYear       uint64
	DoRecalculationAt uint32
	BlockRewards      *big.Int
}

func (in *Inflation) Snapshot() (*Snapshot, error) {
	var (
		s   Snapshot
		err error
	)
	if s.Configuration, err = in.Configuration(); err != nil {
		return nil, err
	}
	if s.Parameters, err = in.Parameters(); err != nil {
		return nil, err
	}
	if s.CurrentYear, err = in.CurrentYear(); err != nil {
		return nil, err
	}
	if s.DoRecalculationAt, err = in.DoRecalculationAt(); err != nil {
		return nil, err
	}
	if s.BlockRewards, err = in.BlockRewards(); err != nil {
		return nil, err
	}
	return &s, nil
}
