// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vechain/parastaking/api/blocks"
	"github.com/vechain/parastaking/api/utils"
	"github.com/vechain/parastaking/callpool"
	"github.com/vechain/parastaking/chain"
	"github.com/vechain/parastaking/thor"
)

// Info describes the running node.
type Info struct {
	Name         string                   `json:"name"`
	GenesisID    thor.Bytes32             `json:"genesisID"`
	Best         *blocks.JSONBlockSummary `json:"best"`
	PendingCalls int                      `json:"pendingCalls"`
}

type Node struct {
	repo      *chain.Repository
	pool      callpool.Pool
	genesisID thor.Bytes32
	name      string
}

func New(repo *chain.Repository, pool callpool.Pool, genesisID thor.Bytes32, name string) *Node {
	return &Node{repo, pool, genesisID, name}
}

func (n *Node) handleGetInfo(w http.ResponseWriter, _ *http.Request) error {
	info := &Info{
		Name:         n.name,
		GenesisID:    n.genesisID,
		PendingCalls: n.pool.Len(),
	}
	if best := n.repo.BestSummary(); best != nil {
		info.Best = blocks.NewJSONBlockSummary(best)
	}
	return utils.WriteJSON(w, info)
}

func (n *Node) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/info").
		Methods(http.MethodGet).
		Name("GET /node/info").
		HandlerFunc(utils.WrapHandlerFunc(n.handleGetInfo))
}
