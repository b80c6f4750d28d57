// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/parastaking/thor"
)

// BigInt is a non negative integer cell, zero when empty.
type BigInt struct {
	raw *Raw[*big.Int]
}

func NewBigInt(context *Context, pos thor.Bytes32) *BigInt {
	return &BigInt{raw: NewRaw[*big.Int](context, pos)}
}

func (b *BigInt) Get() (*big.Int, error) {
	v, err := b.raw.Get()
	if err != nil {
		return nil, err
	}
	if v == nil {
		return new(big.Int), nil
	}
	return v, nil
}

// Set stores the value, deleting the cell when it is zero.
func (b *BigInt) Set(value *big.Int) error {
	if value.Sign() < 0 {
		return errors.New("negative value")
	}
	if value.Sign() == 0 {
		b.raw.Delete()
		return nil
	}
	return b.raw.Set(value)
}

func (b *BigInt) Add(value *big.Int) error {
	v, err := b.Get()
	if err != nil {
		return err
	}
	return b.Set(v.Add(v, value))
}

func (b *BigInt) Sub(value *big.Int) error {
	v, err := b.Get()
	if err != nil {
		return err
	}
	if v.Cmp(value) < 0 {
		return errors.New("underflow")
	}
	return b.Set(v.Sub(v, value))
}
