// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package per implements fixed point fractions in [0, 1]. All arithmetic rounds down,
// residual dust is left to the caller.
package per

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

const (
	billion     = 1_000_000_000
	million     = 1_000_000
	quintillion = 1_000_000_000_000_000_000
)

// mulDiv returns floor(x * num / den). x is expected to be non negative.
func mulDiv(x *big.Int, num, den uint64) *big.Int {
	if x.Sign() > 0 {
		if ux, overflow := uint256.FromBig(x); !overflow {
			if r, overflow := new(uint256.Int).MulDivOverflow(ux, uint256.NewInt(num), uint256.NewInt(den)); !overflow {
				return r.ToBig()
			}
		}
	}
	r := new(big.Int).Mul(x, new(big.Int).SetUint64(num))
	return r.Quo(r, new(big.Int).SetUint64(den))
}

// rational returns floor(n * acc / d) clamped to acc.
func rational(n, d *big.Int, acc uint64) uint64 {
	if n.Sign() <= 0 {
		return 0
	}
	if d.Sign() <= 0 || n.Cmp(d) >= 0 {
		return acc
	}
	un, o1 := uint256.FromBig(n)
	ud, o2 := uint256.FromBig(d)
	if !o1 && !o2 {
		if r, overflow := new(uint256.Int).MulDivOverflow(un, uint256.NewInt(acc), ud); !overflow {
			return r.Uint64()
		}
	}
	r := new(big.Int).Mul(n, new(big.Int).SetUint64(acc))
	return r.Quo(r, d).Uint64()
}

// mulParts multiplies two fractions of the same accuracy.
func mulParts(a, b, acc uint64) uint64 {
	r := new(uint256.Int).Mul(uint256.NewInt(a), uint256.NewInt(b))
	return r.Div(r, uint256.NewInt(acc)).Uint64()
}

// powParts raises a fraction to n by squaring, rounding down at every step.
func powParts(base uint64, n uint32, acc uint64) uint64 {
	result := acc
	for n > 0 {
		if n&1 == 1 {
			result = mulParts(result, base, acc)
		}
		n >>= 1
		if n > 0 {
			base = mulParts(base, base, acc)
		}
	}
	return result
}

func format(parts, acc uint64) string {
	// acc/100 is the number of parts per percent
	perPercent := acc / 100
	digits := len(strconv.FormatUint(perPercent, 10)) - 1
	whole, frac := parts/perPercent, parts%perPercent
	if frac == 0 {
		return fmt.Sprintf("%d%%", whole)
	}
	s := strings.TrimRight(fmt.Sprintf("%0*d", digits, frac), "0")
	return fmt.Sprintf("%d.%s%%", whole, s)
}

// parse reads a percentage such as "3.5%" or a plain parts count such as "35000000".
func parse(s string, acc uint64) (uint64, error) {
	s = strings.TrimSpace(s)
	if !strings.HasSuffix(s, "%") {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return 0, errors.Wrapf(err, "parse fraction %q", s)
		}
		if v > acc {
			return 0, errors.Errorf("fraction %q exceeds one", s)
		}
		return v, nil
	}
	num := strings.TrimSuffix(s, "%")
	r, ok := new(big.Rat).SetString(num)
	if !ok || r.Sign() < 0 {
		return 0, errors.Errorf("invalid percentage %q", s)
	}
	r.Mul(r, new(big.Rat).SetInt64(int64(acc/100)))
	if !r.IsInt() {
		return 0, errors.Errorf("percentage %q exceeds precision", s)
	}
	v := r.Num()
	if !v.IsUint64() || v.Uint64() > acc {
		return 0, errors.Errorf("percentage %q exceeds one", s)
	}
	return v.Uint64(), nil
}
