// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package inflation

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"

	"github.com/vechain/parastaking/api/utils"
	"github.com/vechain/parastaking/chain"
	"github.com/vechain/parastaking/runtime"
	"github.com/vechain/parastaking/thor"
)

// Rates are in perbill.
type Rates struct {
	Inflation    uint32 `json:"inflation"`
	Disinflation uint32 `json:"disinflation"`
}

type Inflation struct {
	CurrentYear       uint64                `json:"currentYear"`
	DoRecalculationAt uint32                `json:"doRecalculationAt"`
	BlockRewards      *math.HexOrDecimal256 `json:"blockRewards"`
	Parameters        Rates                 `json:"parameters"`
	Base              Rates                 `json:"base"`
	StagnationRate    uint32                `json:"stagnationRate"`
	StagnationYear    uint32                `json:"stagnationYear"`
	PotAccount        thor.Address          `json:"potAccount"`
	PotBalance        *math.HexOrDecimal256 `json:"potBalance"`
}

type API struct {
	repo *chain.Repository
	cfg  runtime.Config
}

func New(repo *chain.Repository, cfg runtime.Config) *API {
	return &API{repo, cfg}
}

func (a *API) handleGetInflation(w http.ResponseWriter, _ *http.Request) error {
	rt, release, err := utils.BestRuntime(a.repo, a.cfg)
	if err != nil {
		return err
	}
	defer release()

	in := rt.Inflation()
	s, err := in.Snapshot()
	if err != nil {
		return err
	}
	pot, err := rt.Currency().UsableBalance(in.PotAccount())
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Inflation{
		CurrentYear:       s.CurrentYear,
		DoRecalculationAt: s.DoRecalculationAt,
		BlockRewards:      utils.Amount(s.BlockRewards),
		Parameters:        Rates{uint32(s.Parameters.InflationRate), uint32(s.Parameters.DisinflationRate)},
		Base: Rates{
			uint32(s.Configuration.Parameters.InflationRate),
			uint32(s.Configuration.Parameters.DisinflationRate),
		},
		StagnationRate: uint32(s.Configuration.StagnationRate),
		StagnationYear: s.Configuration.StagnationYear,
		PotAccount:     in.PotAccount(),
		PotBalance:     utils.Amount(pot),
	})
}

func (a *API) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /inflation").
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetInflation))
}
