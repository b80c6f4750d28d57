// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"fmt"
	"math/big"

	"github.com/vechain/parastaking/per"
	"github.com/vechain/parastaking/staking/reverts"
	"github.com/vechain/parastaking/thor"
)

var (
	ErrBadOrigin     = reverts.New("BadOrigin", "call requires another origin")
	ErrUnknownMethod = reverts.New("UnknownMethod", "unknown method")
)

// Origin is who dispatches a call: an account, or the root for privileged calls.
type Origin struct {
	Signer thor.Address
	Root   bool
}

func Signed(acc thor.Address) Origin { return Origin{Signer: acc} }

func Root() Origin { return Origin{Root: true} }

func (o Origin) String() string {
	if o.Root {
		return "root"
	}
	return o.Signer.String()
}

// Call is a request to run one engine operation. Target is the collator, candidate
// or destination the method acts on; Value carries counts and the commission in permill.
type Call struct {
	Origin Origin
	Method string
	Target thor.Address
	Amount *big.Int
	Value  uint32
}

func (c *Call) String() string {
	return fmt.Sprintf("%s(%v, %v, %d) by %v", c.Method, c.Target, c.Amount, c.Value, c.Origin)
}

// method binds a call to the engine. Privileged methods require the root origin,
// the others a signer.
type method struct {
	privileged bool
	run        func(rt *Runtime, c *Call) error
}

// targetOr returns the call target, or the signer when no target is given.
func (c *Call) targetOr() thor.Address {
	if c.Target.IsZero() {
		return c.Origin.Signer
	}
	return c.Target
}

func (c *Call) amount() *big.Int {
	if c.Amount == nil {
		return new(big.Int)
	}
	return c.Amount
}

var methods = map[string]method{
	"joinCandidates": {run: func(rt *Runtime, c *Call) error {
		return rt.Staking().JoinCandidates(c.Origin.Signer, c.amount())
	}},
	"initLeaveCandidates": {run: func(rt *Runtime, c *Call) error {
		return rt.Staking().InitLeaveCandidates(c.Origin.Signer)
	}},
	"executeLeaveCandidates": {run: func(rt *Runtime, c *Call) error {
		return rt.Staking().ExecuteLeaveCandidates(c.targetOr())
	}},
	"cancelLeaveCandidates": {run: func(rt *Runtime, c *Call) error {
		return rt.Staking().CancelLeaveCandidates(c.Origin.Signer)
	}},
	"candidateStakeMore": {run: func(rt *Runtime, c *Call) error {
		return rt.Staking().CandidateStakeMore(c.Origin.Signer, c.amount())
	}},
	"candidateStakeLess": {run: func(rt *Runtime, c *Call) error {
		return rt.Staking().CandidateStakeLess(c.Origin.Signer, c.amount())
	}},
	"setCommission": {run: func(rt *Runtime, c *Call) error {
		return rt.Staking().SetCommission(c.Origin.Signer, per.Permill(c.Value))
	}},
	"joinDelegators": {run: func(rt *Runtime, c *Call) error {
		return rt.Staking().JoinDelegators(c.Origin.Signer, c.Target, c.amount())
	}},
	"delegateAnotherCandidate": {run: func(rt *Runtime, c *Call) error {
		return rt.Staking().DelegateAnotherCandidate(c.Origin.Signer, c.Target, c.amount())
	}},
	"delegatorStakeMore": {run: func(rt *Runtime, c *Call) error {
		return rt.Staking().DelegatorStakeMore(c.Origin.Signer, c.Target, c.amount())
	}},
	"delegatorStakeLess": {run: func(rt *Runtime, c *Call) error {
		return rt.Staking().DelegatorStakeLess(c.Origin.Signer, c.Target, c.amount())
	}},
	"revokeDelegation": {run: func(rt *Runtime, c *Call) error {
		return rt.Staking().RevokeDelegation(c.Origin.Signer, c.Target)
	}},
	"leaveDelegators": {run: func(rt *Runtime, c *Call) error {
		return rt.Staking().LeaveDelegators(c.Origin.Signer)
	}},
	"unlockUnstaked": {run: func(rt *Runtime, c *Call) error {
		return rt.Staking().UnlockUnstaked(c.targetOr())
	}},
	"transfer": {run: func(rt *Runtime, c *Call) error {
		return rt.Currency().Transfer(c.Origin.Signer, c.Target, c.amount())
	}},

	"forceRemoveCandidate": {privileged: true, run: func(rt *Runtime, c *Call) error {
		return rt.Staking().ForceRemoveCandidate(c.Target)
	}},
	"setMaxSelectedCandidates": {privileged: true, run: func(rt *Runtime, c *Call) error {
		return rt.Staking().SetMaxSelectedCandidates(c.Value)
	}},
	"setBlocksPerRound": {privileged: true, run: func(rt *Runtime, c *Call) error {
		return rt.Staking().SetBlocksPerRound(c.Value)
	}},
	"setMaxCandidateStake": {privileged: true, run: func(rt *Runtime, c *Call) error {
		return rt.Staking().SetMaxCandidateStake(c.amount())
	}},
	"forceNewRound": {privileged: true, run: func(rt *Runtime, _ *Call) error {
		return rt.Staking().ForceNewRound()
	}},
	"transferAllPot": {privileged: true, run: func(rt *Runtime, c *Call) error {
		return rt.Inflation().TransferAllPot(c.Target)
	}},
	"deposit": {privileged: true, run: func(rt *Runtime, c *Call) error {
		return rt.Currency().Deposit(c.Target, c.amount())
	}},
}

// Methods returns the names of the dispatchable methods.
func Methods() []string {
	names := make([]string, 0, len(methods))
	for name := range methods {
		names = append(names, name)
	}
	return names
}

// IsMethod reports whether name is a known method.
func IsMethod(name string) bool {
	_, ok := methods[name]
	return ok
}

// IsPrivileged reports whether method requires the root origin.
func IsPrivileged(name string) bool {
	return methods[name].privileged
}
