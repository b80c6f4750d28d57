// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package per

import "math/big"

// Perbill is a fraction in parts per billion.
type Perbill uint32

// Permill is a fraction in parts per million.
type Permill uint32

// Perquintill is a fraction in parts per 10^18.
type Perquintill uint64

const (
	OneBill     Perbill     = billion
	OneMill     Permill     = million
	OneQuintill Perquintill = quintillion
)

func PerbillFromParts(p uint32) Perbill {
	return Perbill(min(uint64(p), billion))
}

func PerbillFromPercent(p uint32) Perbill {
	return PerbillFromParts(uint32(min(uint64(p), 100) * (billion / 100)))
}

func PerbillFromPerthousand(p uint32) Perbill {
	return PerbillFromParts(uint32(min(uint64(p), 1000) * (billion / 1000)))
}

// PerbillFromRational returns floor(n/d), saturating at one.
func PerbillFromRational(n, d *big.Int) Perbill {
	return Perbill(rational(n, d, billion))
}

// ParsePerbill parses "3.5%" or a parts count.
func ParsePerbill(s string) (Perbill, error) {
	v, err := parse(s, billion)
	return Perbill(v), err
}

func (p Perbill) Parts() uint32 { return uint32(p) }

// Mul returns floor(x * p).
func (p Perbill) Mul(x *big.Int) *big.Int { return mulDiv(x, uint64(p), billion) }

// MulFrac returns floor(p * o).
func (p Perbill) MulFrac(o Perbill) Perbill { return Perbill(mulParts(uint64(p), uint64(o), billion)) }

// Complement returns 1 - p.
func (p Perbill) Complement() Perbill { return OneBill - p }

// Pow returns p^n, rounding down at every multiplication. p^0 is one.
func (p Perbill) Pow(n uint32) Perbill { return Perbill(powParts(uint64(p), n, billion)) }

func (p Perbill) String() string { return format(uint64(p), billion) }

func PermillFromParts(p uint32) Permill {
	return Permill(min(uint64(p), million))
}

func PermillFromPercent(p uint32) Permill {
	return PermillFromParts(uint32(min(uint64(p), 100) * (million / 100)))
}

// PermillFromRational returns floor(n/d), saturating at one.
func PermillFromRational(n, d *big.Int) Permill {
	return Permill(rational(n, d, million))
}

// ParsePermill parses "10%" or a parts count.
func ParsePermill(s string) (Permill, error) {
	v, err := parse(s, million)
	return Permill(v), err
}

func (p Permill) Parts() uint32 { return uint32(p) }

// Mul returns floor(x * p).
func (p Permill) Mul(x *big.Int) *big.Int { return mulDiv(x, uint64(p), million) }

// Complement returns 1 - p.
func (p Permill) Complement() Permill { return OneMill - p }

func (p Permill) String() string { return format(uint64(p), million) }

func PerquintillFromParts(p uint64) Perquintill {
	return Perquintill(min(p, quintillion))
}

func PerquintillFromPercent(p uint64) Perquintill {
	return PerquintillFromParts(min(p, 100) * (quintillion / 100))
}

// PerquintillFromRational returns floor(n/d), saturating at one.
func PerquintillFromRational(n, d *big.Int) Perquintill {
	return Perquintill(rational(n, d, quintillion))
}

func (p Perquintill) Parts() uint64 { return uint64(p) }

// Mul returns floor(x * p).
func (p Perquintill) Mul(x *big.Int) *big.Int { return mulDiv(x, uint64(p), quintillion) }

func (p Perquintill) String() string { return format(uint64(p), quintillion) }
