// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"math/big"

	"github.com/pkg/errors"
)

// DecimalsExp is the number of decimals of the native token.
const DecimalsExp = 18

// Decimals is 10^DecimalsExp, one whole token in base units.
var Decimals = new(big.Int).Exp(big.NewInt(10), big.NewInt(DecimalsExp), nil)

// Units returns n whole tokens in base units.
func Units(n uint64) *big.Int {
	return new(big.Int).Mul(new(big.Int).SetUint64(n), Decimals)
}

// ParseAmount parses a base unit decimal string such as "1000000000000000000".
func ParseAmount(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, errors.Errorf("invalid amount %q", s)
	}
	if v.Sign() < 0 {
		return nil, errors.Errorf("negative amount %q", s)
	}
	return v, nil
}
