// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/parastaking/api/utils"
	"github.com/vechain/parastaking/eventdb"
)

type Events struct {
	db    *eventdb.EventDB
	limit uint64
}

func New(db *eventdb.EventDB, limit uint64) *Events {
	return &Events{db, limit}
}

func (e *Events) handleFilter(w http.ResponseWriter, req *http.Request) error {
	var ef EventFilter
	if err := utils.ParseJSON(req.Body, &ef); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if ef.Options != nil && ef.Options.Limit > e.limit {
		return utils.Forbidden(fmt.Errorf("options.limit exceeds the maximum allowed value of %d", e.limit))
	}
	filter, err := convertFilter(&ef)
	if err != nil {
		return utils.BadRequest(err)
	}
	if ef.Options == nil || filter.Limit == 0 {
		// one more than allowed, to detect an oversized result
		filter.Limit = e.limit + 1
	}

	evs, err := e.db.Filter(filter)
	if err != nil {
		return err
	}
	if uint64(len(evs)) > e.limit {
		return utils.Forbidden(fmt.Errorf("the number of filtered events exceeds the maximum allowed value of %d, please use pagination", e.limit))
	}
	if evs == nil {
		evs = []*eventdb.Event{}
	}
	return utils.WriteJSON(w, evs)
}

func (e *Events) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /events").
		HandlerFunc(utils.WrapHandlerFunc(e.handleFilter))
}
