// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staking implements the collator staking engine: candidates and their
// delegators, the top candidate list feeding the validator rotation, unstaking locks,
// rounds and the session reward payout.
package staking

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/parastaking/currency"
	"github.com/vechain/parastaking/events"
	"github.com/vechain/parastaking/log"
	"github.com/vechain/parastaking/staking/candidate"
	"github.com/vechain/parastaking/staking/delegator"
	"github.com/vechain/parastaking/staking/globalstats"
	"github.com/vechain/parastaking/staking/orderedset"
	"github.com/vechain/parastaking/staking/round"
	"github.com/vechain/parastaking/staking/unstaking"
	"github.com/vechain/parastaking/state"
	"github.com/vechain/parastaking/storage"
	"github.com/vechain/parastaking/thor"
)

const module = "staking"

// LockID is the currency lock holding staked and unstaking funds.
const LockID currency.LockID = "staking"

var (
	logger = log.WithContext("pkg", "staking")

	// Address is the account the staking storage lives under.
	Address = thor.AccountFromID("staking")
	// PotAccount receives the block rewards and pays them out at the end of each session.
	PotAccount = thor.AccountFromID("staking-pot")
)

func SetLogger(l log.Logger) {
	logger = l
}

// Disabler is the validator rotation, told about validators removed mid session.
type Disabler interface {
	Disable(id thor.Address) (bool, error)
}

// Staking is the engine facade. It is bound to the state of one block.
type Staking struct {
	cfg      Config
	state    *state.State
	currency *currency.Currency
	events   *events.Recorder
	block    uint32
	session  Disabler

	candidateService   *candidate.Service
	delegatorService   *delegator.Service
	unstakingService   *unstaking.Service
	globalStatsService *globalstats.Service
	roundService       *round.Service
}

// New creates the engine over st for the given block number. Events go to rec,
// which may be nil.
func New(cfg Config, st *state.State, rec *events.Recorder, block uint32) *Staking {
	sctx := storage.NewContext(Address, st)
	return &Staking{
		cfg:      cfg,
		state:    st,
		currency: currency.New(st, rec),
		events:   rec,
		block:    block,

		candidateService:   candidate.NewService(sctx),
		delegatorService:   delegator.NewService(sctx),
		unstakingService:   unstaking.New(sctx, int(cfg.MaxUnstakeRequests)),
		globalStatsService: globalstats.New(sctx),
		roundService:       round.New(sctx),
	}
}

// WithSession registers the validator rotation to notify on forced removals.
func (s *Staking) WithSession(d Disabler) *Staking {
	s.session = d
	return s
}

// Initialize installs the initial round and governance values. It is called once, at genesis.
func (s *Staking) Initialize() error {
	logger.Debug("initializing", "blocksPerRound", s.cfg.DefaultBlocksPerRound)
	if err := s.roundService.Set(round.Info{Length: s.cfg.DefaultBlocksPerRound}); err != nil {
		return err
	}
	if err := s.roundService.SetMaxSelected(s.cfg.MinCollators); err != nil {
		return err
	}
	return s.roundService.SetMaxCandidateStake(s.cfg.DefaultMaxCandidateStake)
}

func (s *Staking) emit(ev *events.Event) {
	if s.events != nil {
		s.events.Emit(ev)
	}
}

// atomic runs fn and reverts the state and the events it produced on error.
func (s *Staking) atomic(op string, fn func() error) error {
	checkpoint := s.state.NewCheckpoint()
	mark := 0
	if s.events != nil {
		mark = s.events.Len()
	}
	if err := fn(); err != nil {
		s.state.RevertTo(checkpoint)
		if s.events != nil {
			s.events.Truncate(mark)
		}
		metricCalls().AddWithLabel(1, map[string]string{"op": op, "status": "reverted"})
		return err
	}
	metricCalls().AddWithLabel(1, map[string]string{"op": op, "status": "ok"})
	return nil
}

// activeStake returns the self stake of a candidate or the total of a delegator.
func (s *Staking) activeStake(acc thor.Address) (*big.Int, error) {
	c, err := s.candidateService.Get(acc)
	if err != nil {
		return nil, err
	}
	if c != nil {
		return new(big.Int).Set(c.Stake), nil
	}
	d, err := s.delegatorService.Get(acc)
	if err != nil {
		return nil, err
	}
	if d != nil {
		return new(big.Int).Set(d.Total), nil
	}
	return new(big.Int), nil
}

// syncLock sets the staking lock of acc to its active stake plus everything unstaking.
func (s *Staking) syncLock(acc thor.Address) error {
	active, err := s.activeStake(acc)
	if err != nil {
		return err
	}
	pending, err := s.unstakingService.Total(acc)
	if err != nil {
		return err
	}
	if err := s.currency.SetLock(LockID, acc, active.Add(active, pending)); err != nil {
		return errors.Wrap(err, "failed to set staking lock")
	}
	return nil
}

// restake checks that the free balance of acc covers its new active stake, and
// takes the added amount out of its unstaking funds first.
func (s *Staking) restake(acc thor.Address, total, added *big.Int) error {
	free, err := s.currency.FreeBalance(acc)
	if err != nil {
		return err
	}
	if free.Cmp(total) < 0 {
		return ErrInsufficientBalance
	}
	_, err = s.unstakingService.Consume(acc, added)
	return err
}

func (s *Staking) unstake(acc thor.Address, amount *big.Int, forced bool) error {
	return s.unstakingService.Increase(acc, amount, s.block+s.cfg.StakeDuration, forced)
}

func (s *Staking) getCandidate(id thor.Address) (*candidate.Candidate, error) {
	c, err := s.candidateService.Get(id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCandidateNotFound
	}
	return c, nil
}

//
// Getters - no state change
//

// Config returns the protocol constants.
func (s *Staking) Config() Config {
	return s.cfg
}

// Block returns the block number the engine is bound to.
func (s *Staking) Block() uint32 {
	return s.block
}

// CandidatePool returns the candidate, nil if absent.
func (s *Staking) CandidatePool(id thor.Address) (*candidate.Candidate, error) {
	return s.candidateService.Get(id)
}

// Candidates returns all candidates in join order.
func (s *Staking) Candidates() ([]*candidate.Candidate, error) {
	var out []*candidate.Candidate
	err := s.candidateService.Iterate(func(c *candidate.Candidate) (bool, error) {
		out = append(out, c)
		return true, nil
	})
	return out, err
}

func (s *Staking) CandidateCount() (int, error) {
	return s.candidateService.Count()
}

// DelegatorState returns the delegator, nil if absent.
func (s *Staking) DelegatorState(id thor.Address) (*delegator.Delegator, error) {
	return s.delegatorService.Get(id)
}

// TopCandidates returns the ranked candidates.
func (s *Staking) TopCandidates() ([]orderedset.Stake, error) {
	top, err := s.candidateService.Top()
	if err != nil {
		return nil, err
	}
	return top.Items(), nil
}

// SelectedCandidates returns the first MaxSelectedCandidates of the top candidates.
func (s *Staking) SelectedCandidates() ([]thor.Address, error) {
	top, size, err := s.topAndMax()
	if err != nil {
		return nil, err
	}
	return top.Top(size), nil
}

func (s *Staking) TotalCollatorStake() (globalstats.TotalStake, error) {
	return s.globalStatsService.Get()
}

func (s *Staking) Round() (round.Info, error) {
	return s.roundService.Get()
}

func (s *Staking) Unstaking(id thor.Address) (unstaking.Ledger, error) {
	return s.unstakingService.Get(id)
}

// CollatorBlocks returns the blocks id authored in the current session.
func (s *Staking) CollatorBlocks(id thor.Address) (uint64, error) {
	return s.roundService.Blocks(id)
}

func (s *Staking) LastDelegation(id thor.Address) (delegator.Counter, error) {
	return s.delegatorService.LastDelegation(id)
}

func (s *Staking) MaxSelectedCandidates() (uint32, error) {
	return s.roundService.MaxSelected()
}

func (s *Staking) MaxCandidateStake() (*big.Int, error) {
	return s.roundService.MaxCandidateStake()
}

func (s *Staking) PotAccount() thor.Address {
	return PotAccount
}

// ForceNewRoundPending reports whether the next block starts a new round.
func (s *Staking) ForceNewRoundPending() (bool, error) {
	return s.roundService.Forced()
}
