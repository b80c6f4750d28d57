// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package blocks

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/parastaking/api/utils"
	"github.com/vechain/parastaking/chain"
	"github.com/vechain/parastaking/thor"
)

// JSONBlockSummary is the block as served.
type JSONBlockSummary struct {
	Number    uint32       `json:"number"`
	ID        thor.Bytes32 `json:"id"`
	ParentID  thor.Bytes32 `json:"parentID"`
	Timestamp uint64       `json:"timestamp"`
	Author    thor.Address `json:"author"`
	StateRoot thor.Bytes32 `json:"stateRoot"`
	Calls     uint32       `json:"calls"`
	Reverted  uint32       `json:"reverted"`
	Events    uint32       `json:"events"`
}

func NewJSONBlockSummary(s *chain.Summary) *JSONBlockSummary {
	return &JSONBlockSummary{
		Number:    s.Number,
		ID:        s.ID,
		ParentID:  s.ParentID,
		Timestamp: s.Timestamp,
		Author:    s.Author,
		StateRoot: s.StateRoot,
		Calls:     s.Calls,
		Reverted:  s.Reverted,
		Events:    s.Events,
	}
}

type Blocks struct {
	repo *chain.Repository
}

func New(repo *chain.Repository) *Blocks {
	return &Blocks{repo}
}

func (b *Blocks) handleGetBlock(w http.ResponseWriter, req *http.Request) error {
	number, best, err := utils.ParseRevision(mux.Vars(req)["revision"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "revision"))
	}
	var summary *chain.Summary
	if best {
		summary = b.repo.BestSummary()
	} else {
		summary, err = b.repo.GetSummary(number)
		if err != nil && !b.repo.IsNotFound(err) {
			return err
		}
	}
	if summary == nil {
		return utils.WriteJSON(w, nil)
	}
	return utils.WriteJSON(w, NewJSONBlockSummary(summary))
}

func (b *Blocks) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{revision}").
		Methods(http.MethodGet).
		Name("GET /blocks/{revision}").
		HandlerFunc(utils.WrapHandlerFunc(b.handleGetBlock))
}
