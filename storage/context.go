// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package storage provides typed views over the storage of a module account.
package storage

import (
	"github.com/vechain/parastaking/state"
	"github.com/vechain/parastaking/thor"
)

// Context binds a module account to the state it is stored in.
type Context struct {
	address thor.Address
	state   *state.State
}

func NewContext(address thor.Address, state *state.State) *Context {
	return &Context{
		address: address,
		state:   state,
	}
}

func (c *Context) Address() thor.Address {
	return c.address
}

func (c *Context) State() *state.State {
	return c.state
}

// Slot derives a singleton slot position from its name.
func Slot(name string) thor.Bytes32 {
	return thor.BytesToBytes32([]byte(name))
}
