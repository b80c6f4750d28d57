// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"math/big"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/parastaking/chain"
	"github.com/vechain/parastaking/runtime"
	"github.com/vechain/parastaking/thor"
)

// BestRuntime opens a read only runtime over a snapshot of the latest state, bound to
// the best block. Call release when done.
func BestRuntime(repo *chain.Repository, cfg runtime.Config) (rt *runtime.Runtime, release func(), err error) {
	st, release := repo.NewStateSnapshot()
	best := repo.BestSummary()
	if best == nil {
		release()
		return nil, nil, HTTPError(errors.New("no block yet"), http.StatusServiceUnavailable)
	}
	return runtime.New(cfg, st, best.Number, best.Author), release, nil
}

// ParseRevision parses a block number or "best". The second result is true for best.
func ParseRevision(revision string) (uint32, bool, error) {
	if revision == "" || revision == "best" {
		return 0, true, nil
	}
	n, err := strconv.ParseUint(revision, 0, 32)
	if err != nil {
		return 0, false, err
	}
	return uint32(n), false, nil
}

// AddressParam parses the account in the route variable name.
func AddressParam(req *http.Request, name string) (thor.Address, error) {
	addr, err := thor.ParseAddress(mux.Vars(req)[name])
	if err != nil {
		return thor.Address{}, BadRequest(errors.WithMessage(err, name))
	}
	return addr, nil
}

// Amount renders an amount for JSON.
func Amount(v *big.Int) *math.HexOrDecimal256 {
	if v == nil {
		v = new(big.Int)
	}
	return (*math.HexOrDecimal256)(v)
}
