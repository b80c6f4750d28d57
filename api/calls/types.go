// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package calls

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"

	"github.com/vechain/parastaking/runtime"
	"github.com/vechain/parastaking/thor"
)

// Call is the request body of POST /calls. Origin is "root" or an account.
type Call struct {
	Origin string                `json:"origin"`
	Method string                `json:"method"`
	Target *thor.Address         `json:"target"`
	Amount *math.HexOrDecimal256 `json:"amount"`
	Value  uint32                `json:"value"`
}

func (c *Call) convert() (*runtime.Call, error) {
	rc := &runtime.Call{Method: c.Method, Value: c.Value}
	switch c.Origin {
	case "":
		return nil, errors.New("origin: required")
	case "root":
		rc.Origin = runtime.Root()
	default:
		addr, err := thor.ParseAddress(c.Origin)
		if err != nil {
			return nil, errors.WithMessage(err, "origin")
		}
		rc.Origin = runtime.Signed(addr)
	}
	if c.Target != nil {
		rc.Target = *c.Target
	}
	if c.Amount != nil {
		rc.Amount = new(big.Int).Set((*big.Int)(c.Amount))
	}
	return rc, nil
}

type SendResult struct {
	ID string `json:"id"`
}
