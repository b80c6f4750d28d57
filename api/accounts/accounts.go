// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"

	"github.com/vechain/parastaking/api/utils"
	"github.com/vechain/parastaking/chain"
	"github.com/vechain/parastaking/runtime"
)

type Lock struct {
	ID     string                `json:"id"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

type Account struct {
	Balance *math.HexOrDecimal256 `json:"balance"`
	Usable  *math.HexOrDecimal256 `json:"usable"`
	Locked  *math.HexOrDecimal256 `json:"locked"`
	Locks   []Lock                `json:"locks"`
}

type Accounts struct {
	repo *chain.Repository
	cfg  runtime.Config
}

func New(repo *chain.Repository, cfg runtime.Config) *Accounts {
	return &Accounts{repo, cfg}
}

func (a *Accounts) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressParam(req, "address")
	if err != nil {
		return err
	}
	rt, release, err := utils.BestRuntime(a.repo, a.cfg)
	if err != nil {
		return err
	}
	defer release()

	cur := rt.Currency()
	balance, err := cur.FreeBalance(addr)
	if err != nil {
		return err
	}
	usable, err := cur.UsableBalance(addr)
	if err != nil {
		return err
	}
	locked, err := cur.Locked(addr)
	if err != nil {
		return err
	}
	locks, err := cur.Locks(addr)
	if err != nil {
		return err
	}
	acc := &Account{
		Balance: utils.Amount(balance),
		Usable:  utils.Amount(usable),
		Locked:  utils.Amount(locked),
		Locks:   make([]Lock, 0, len(locks)),
	}
	for _, l := range locks {
		acc.Locks = append(acc.Locks, Lock{string(l.ID), utils.Amount(l.Amount)})
	}
	return utils.WriteJSON(w, acc)
}

func (a *Accounts) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("GET /accounts/{address}").
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetAccount))
}
