// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vechain/parastaking/api/utils"
	"github.com/vechain/parastaking/chain"
	"github.com/vechain/parastaking/runtime"
	"github.com/vechain/parastaking/staking"
)

type Staking struct {
	repo *chain.Repository
	cfg  runtime.Config
}

func New(repo *chain.Repository, cfg runtime.Config) *Staking {
	return &Staking{repo, cfg}
}

// query runs fn against the staking module at the best block.
func (s *Staking) query(w http.ResponseWriter, fn func(*runtime.Runtime, *staking.Staking) (any, error)) error {
	rt, release, err := utils.BestRuntime(s.repo, s.cfg)
	if err != nil {
		return err
	}
	defer release()

	out, err := fn(rt, rt.Staking())
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, out)
}

func (s *Staking) handleGetRound(w http.ResponseWriter, _ *http.Request) error {
	return s.query(w, func(_ *runtime.Runtime, st *staking.Staking) (any, error) {
		r, err := st.Round()
		if err != nil {
			return nil, err
		}
		maxSelected, err := st.MaxSelectedCandidates()
		if err != nil {
			return nil, err
		}
		maxStake, err := st.MaxCandidateStake()
		if err != nil {
			return nil, err
		}
		forced, err := st.ForceNewRoundPending()
		if err != nil {
			return nil, err
		}
		next, err := st.EstimateNextSessionRotation()
		if err != nil {
			return nil, err
		}
		progress, err := st.EstimateCurrentSessionProgress()
		if err != nil {
			return nil, err
		}
		return &Round{
			Current:               r.Current,
			First:                 r.First,
			Length:                r.Length,
			MaxSelectedCandidates: maxSelected,
			MaxCandidateStake:     utils.Amount(maxStake),
			ForceNewRound:         forced,
			NextRotation:          next,
			Progress:              progress.String(),
		}, nil
	})
}

func (s *Staking) handleGetCandidates(w http.ResponseWriter, _ *http.Request) error {
	return s.query(w, func(_ *runtime.Runtime, st *staking.Staking) (any, error) {
		list, err := st.Candidates()
		if err != nil {
			return nil, err
		}
		out := make([]*Candidate, 0, len(list))
		for _, c := range list {
			out = append(out, convertCandidate(c))
		}
		return out, nil
	})
}

func (s *Staking) handleGetCandidate(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.AddressParam(req, "id")
	if err != nil {
		return err
	}
	return s.query(w, func(_ *runtime.Runtime, st *staking.Staking) (any, error) {
		c, err := st.CandidatePool(id)
		if err != nil || c == nil {
			return nil, err
		}
		return convertCandidate(c), nil
	})
}

func (s *Staking) handleGetTop(w http.ResponseWriter, _ *http.Request) error {
	return s.query(w, func(_ *runtime.Runtime, st *staking.Staking) (any, error) {
		top, err := st.TopCandidates()
		if err != nil {
			return nil, err
		}
		return convertStakes(top), nil
	})
}

func (s *Staking) handleGetSelected(w http.ResponseWriter, _ *http.Request) error {
	return s.query(w, func(_ *runtime.Runtime, st *staking.Staking) (any, error) {
		return st.SelectedCandidates()
	})
}

func (s *Staking) handleGetDelegator(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.AddressParam(req, "id")
	if err != nil {
		return err
	}
	return s.query(w, func(_ *runtime.Runtime, st *staking.Staking) (any, error) {
		d, err := st.DelegatorState(id)
		if err != nil || d == nil {
			return nil, err
		}
		last, err := st.LastDelegation(id)
		if err != nil {
			return nil, err
		}
		return convertDelegator(id, d, last), nil
	})
}

func (s *Staking) handleGetUnstaking(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.AddressParam(req, "id")
	if err != nil {
		return err
	}
	return s.query(w, func(_ *runtime.Runtime, st *staking.Staking) (any, error) {
		l, err := st.Unstaking(id)
		if err != nil {
			return nil, err
		}
		return convertUnstaking(l), nil
	})
}

func (s *Staking) handleGetTotal(w http.ResponseWriter, _ *http.Request) error {
	return s.query(w, func(_ *runtime.Runtime, st *staking.Staking) (any, error) {
		t, err := st.TotalCollatorStake()
		if err != nil {
			return nil, err
		}
		return &TotalStake{
			Collators:  utils.Amount(t.Collators),
			Delegators: utils.Amount(t.Delegators),
			Total:      utils.Amount(t.Sum()),
		}, nil
	})
}

func (s *Staking) handleGetSession(w http.ResponseWriter, _ *http.Request) error {
	return s.query(w, func(rt *runtime.Runtime, _ *staking.Staking) (any, error) {
		sess := rt.Session()
		var (
			out Session
			err error
		)
		if out.Index, err = sess.Index(); err != nil {
			return nil, err
		}
		if out.Validators, err = sess.Validators(); err != nil {
			return nil, err
		}
		if out.Queued, err = sess.Queued(); err != nil {
			return nil, err
		}
		if out.Disabled, err = sess.Disabled(); err != nil {
			return nil, err
		}
		return &out, nil
	})
}

func (s *Staking) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/round").
		Methods(http.MethodGet).
		Name("GET /staking/round").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetRound))
	sub.Path("/candidates").
		Methods(http.MethodGet).
		Name("GET /staking/candidates").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetCandidates))
	sub.Path("/candidates/{id}").
		Methods(http.MethodGet).
		Name("GET /staking/candidates/{id}").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetCandidate))
	sub.Path("/top").
		Methods(http.MethodGet).
		Name("GET /staking/top").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetTop))
	sub.Path("/selected").
		Methods(http.MethodGet).
		Name("GET /staking/selected").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetSelected))
	sub.Path("/delegators/{id}").
		Methods(http.MethodGet).
		Name("GET /staking/delegators/{id}").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetDelegator))
	sub.Path("/unstaking/{id}").
		Methods(http.MethodGet).
		Name("GET /staking/unstaking/{id}").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetUnstaking))
	sub.Path("/total").
		Methods(http.MethodGet).
		Name("GET /staking/total").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetTotal))
	sub.Path("/session").
		Methods(http.MethodGet).
		Name("GET /staking/session").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetSession))
}
