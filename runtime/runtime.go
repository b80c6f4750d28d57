// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package runtime executes blocks: the block hooks of the staking, session and
// inflation modules around the dispatch of calls.
package runtime

import (
	"github.com/pkg/errors"

	"github.com/vechain/parastaking/currency"
	"github.com/vechain/parastaking/events"
	"github.com/vechain/parastaking/inflation"
	"github.com/vechain/parastaking/log"
	"github.com/vechain/parastaking/metrics"
	"github.com/vechain/parastaking/session"
	"github.com/vechain/parastaking/staking"
	"github.com/vechain/parastaking/staking/reverts"
	"github.com/vechain/parastaking/state"
	"github.com/vechain/parastaking/thor"
)

var (
	logger = log.WithContext("pkg", "runtime")

	metricCalls = metrics.LazyLoadCounterVec("runtime_calls_count", []string{"method", "status"})
)

// Config gathers the constants of the modules.
type Config struct {
	Staking   staking.Config
	Inflation inflation.Config
}

// DevConfig returns the small constants of local networks.
func DevConfig() Config {
	return Config{
		Staking:   staking.DevConfig(),
		Inflation: inflation.DevConfig(),
	}
}

// DefaultConfig returns the mainnet like constants.
func DefaultConfig() Config {
	return Config{
		Staking:   staking.DefaultConfig(),
		Inflation: inflation.DefaultConfig(),
	}
}

// Receipt is the outcome of one call.
type Receipt struct {
	Call     *Call
	Reverted bool
	// Reason is the revert name, e.g. "CandidateNotFound".
	Reason string
	Events []*events.Event
}

// Output is the outcome of a block.
type Output struct {
	Receipts []*Receipt
	// Events holds every event of the block in emission order, hooks included.
	Events []*events.Event
}

// Runtime is bound to the state of one block.
type Runtime struct {
	cfg    Config
	state  *state.State
	events *events.Recorder
	number uint32
	author thor.Address
}

// New creates a runtime executing block number authored by author over st.
func New(cfg Config, st *state.State, number uint32, author thor.Address) *Runtime {
	return &Runtime{
		cfg:    cfg,
		state:  st,
		events: events.NewRecorder(),
		number: number,
		author: author,
	}
}

func (rt *Runtime) State() *state.State  { return rt.state }
func (rt *Runtime) Number() uint32       { return rt.number }
func (rt *Runtime) Author() thor.Address { return rt.author }

// SetAuthor sets the author credited by Finalize, for producers that pick it
// once the session of the block is known.
func (rt *Runtime) SetAuthor(author thor.Address) { rt.author = author }
func (rt *Runtime) Events() *events.Recorder      { return rt.events }
func (rt *Runtime) Currency() *currency.Currency  { return currency.New(rt.state, rt.events) }
func (rt *Runtime) Session() *session.Session     { return session.New(rt.state, rt.events) }

func (rt *Runtime) Staking() *staking.Staking {
	return staking.New(rt.cfg.Staking, rt.state, rt.events, rt.number).WithSession(rt.Session())
}

func (rt *Runtime) Inflation() *inflation.Inflation {
	return inflation.New(rt.cfg.Inflation, rt.state, rt.events, rt.number)
}

// Genesis installs the modules on an empty state. Candidates must have joined
// before the genesis session is built, so it is done separately by GenesisSession.
func (rt *Runtime) Genesis() error {
	if err := rt.Staking().Initialize(); err != nil {
		return errors.Wrap(err, "staking genesis")
	}
	if err := rt.Inflation().Genesis(); err != nil {
		return errors.Wrap(err, "inflation genesis")
	}
	return nil
}

// GenesisSession installs the first validator set from the top candidates.
func (rt *Runtime) GenesisSession() error {
	return rt.Session().Genesis(rt.Staking())
}

// Initialize runs the hooks before the calls of the block.
func (rt *Runtime) Initialize() error {
	if err := rt.Inflation().Migrate(); err != nil {
		return errors.Wrap(err, "migrate inflation")
	}
	if _, err := rt.Session().Rotate(rt.Staking()); err != nil {
		return errors.Wrap(err, "rotate session")
	}
	if err := rt.Staking().OnInitialize(); err != nil {
		return errors.Wrap(err, "staking on initialize")
	}
	return nil
}

// Finalize runs the hooks after the calls of the block: the author is credited,
// the block reward goes to the staking pot and the inflation year may change.
func (rt *Runtime) Finalize() error {
	if !rt.author.IsZero() {
		if err := rt.Staking().NoteAuthor(rt.author); err != nil {
			return errors.Wrap(err, "note author")
		}
	}
	in := rt.Inflation()
	if err := in.PayBlockReward(staking.PotAccount); err != nil {
		return errors.Wrap(err, "pay block reward")
	}
	if err := in.OnFinalize(); err != nil {
		return errors.Wrap(err, "inflation on finalize")
	}
	return nil
}

// Apply dispatches a call. The call is atomic: on error nothing it did is kept.
// Rejections are returned as reverts, anything else is an infrastructure failure.
func (rt *Runtime) Apply(c *Call) error {
	m, ok := methods[c.Method]
	if !ok {
		return ErrUnknownMethod
	}
	if m.privileged != c.Origin.Root || (!c.Origin.Root && c.Origin.Signer.IsZero()) {
		return ErrBadOrigin
	}

	checkpoint := rt.state.NewCheckpoint()
	mark := rt.events.Len()
	if err := m.run(rt, c); err != nil {
		rt.state.RevertTo(checkpoint)
		rt.events.Truncate(mark)
		return err
	}
	return nil
}

// Dispatch applies a call and records its outcome. A revert is kept in the
// receipt; any other error is returned.
func (rt *Runtime) Dispatch(c *Call) (*Receipt, error) {
	mark := rt.events.Len()
	err := rt.Apply(c)
	r := &Receipt{Call: c}
	switch {
	case err == nil:
		r.Events = append([]*events.Event(nil), rt.events.Events()[mark:]...)
		metricCalls().AddWithLabel(1, map[string]string{"method": c.Method, "status": "ok"})
	case reverts.IsRevertErr(err):
		r.Reverted = true
		r.Reason = reverts.NameOf(err)
		metricCalls().AddWithLabel(1, map[string]string{"method": c.Method, "status": "reverted"})
		logger.Debug("call reverted", "block", rt.number, "call", c, "reason", r.Reason)
	default:
		return nil, errors.Wrapf(err, "apply %s", c.Method)
	}
	return r, nil
}

// Execute runs the whole block: hooks, then every call, then the closing hooks.
// A reverted call is recorded in its receipt; other errors abort the block.
func (rt *Runtime) Execute(calls []*Call) (*Output, error) {
	if err := rt.Initialize(); err != nil {
		return nil, err
	}

	receipts := make([]*Receipt, 0, len(calls))
	for _, c := range calls {
		r, err := rt.Dispatch(c)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, r)
	}

	if err := rt.Finalize(); err != nil {
		return nil, err
	}
	return &Output{Receipts: receipts, Events: rt.events.Take()}, nil
}
