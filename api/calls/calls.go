// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package calls

import (
	"net/http"
	"sort"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/parastaking/api/utils"
	"github.com/vechain/parastaking/callpool"
	"github.com/vechain/parastaking/runtime"
)

type Calls struct {
	pool callpool.Pool
}

func New(pool callpool.Pool) *Calls {
	return &Calls{pool}
}

func (c *Calls) handleSendCall(w http.ResponseWriter, req *http.Request) error {
	var body Call
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	call, err := body.convert()
	if err != nil {
		return utils.BadRequest(err)
	}
	id, err := c.pool.Add(call)
	if err != nil {
		switch {
		case callpool.IsBadCall(err):
			return utils.BadRequest(err)
		case callpool.IsErrPoolFull(err):
			return utils.HTTPError(err, http.StatusServiceUnavailable)
		}
		return err
	}
	return utils.WriteJSON(w, &SendResult{ID: id})
}

func (c *Calls) handleGetCall(w http.ResponseWriter, req *http.Request) error {
	r, ok := c.pool.Status(mux.Vars(req)["id"])
	if !ok {
		return utils.NotFound(errors.New("call not found"))
	}
	return utils.WriteJSON(w, r)
}

func (c *Calls) handleGetPending(w http.ResponseWriter, _ *http.Request) error {
	return utils.WriteJSON(w, utils.M{"count": c.pool.Len()})
}

func (c *Calls) handleGetMethods(w http.ResponseWriter, _ *http.Request) error {
	type method struct {
		Name       string `json:"name"`
		Privileged bool   `json:"privileged"`
	}
	names := runtime.Methods()
	sort.Strings(names)
	out := make([]method, 0, len(names))
	for _, name := range names {
		out = append(out, method{name, runtime.IsPrivileged(name)})
	}
	return utils.WriteJSON(w, out)
}

func (c *Calls) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /calls").
		HandlerFunc(utils.WrapHandlerFunc(c.handleSendCall))
	sub.Path("/pending").
		Methods(http.MethodGet).
		Name("GET /calls/pending").
		HandlerFunc(utils.WrapHandlerFunc(c.handleGetPending))
	sub.Path("/methods").
		Methods(http.MethodGet).
		Name("GET /calls/methods").
		HandlerFunc(utils.WrapHandlerFunc(c.handleGetMethods))
	sub.Path("/{id}").
		Methods(http.MethodGet).
		Name("GET /calls/{id}").
		HandlerFunc(utils.WrapHandlerFunc(c.handleGetCall))
}
