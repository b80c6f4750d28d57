// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package currency keeps account balances, the total issuance and balance locks.
package currency

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/parastaking/events"
	"github.com/vechain/parastaking/staking/reverts"
	"github.com/vechain/parastaking/state"
	"github.com/vechain/parastaking/storage"
	"github.com/vechain/parastaking/thor"
)

const module = "currency"

// Address is the module account the balances are stored under.
var Address = thor.AccountFromID("balances")

var (
	slotBalances = storage.Slot("balances")
	slotLocks    = storage.Slot("locks")
	slotIssuance = storage.Slot("total-issuance")

	ErrInsufficientBalance = reverts.New("InsufficientBalance", "insufficient usable balance")
	ErrZeroAmount          = reverts.New("ZeroAmount", "amount must be positive")
)

// LockID identifies a lock on an account's balance.
type LockID string

// Lock freezes Amount of the free balance. Locks of different ids overlap, so the
// frozen balance is the largest lock.
type Lock struct {
	ID     LockID
	Amount *big.Int
}

// Currency is the ledger collaborator of the staking and inflation modules.
type Currency struct {
	balances *storage.Mapping[thor.Address, *big.Int]
	locks    *storage.Mapping[thor.Address, []Lock]
	issuance *storage.BigInt
	events   *events.Recorder
}

// New creates a currency view over the state. Events go to rec, which may be nil.
func New(st *state.State, rec *events.Recorder) *Currency {
	ctx := storage.NewContext(Address, st)
	return &Currency{
		balances: storage.NewMapping[thor.Address, *big.Int](ctx, slotBalances),
		locks:    storage.NewMapping[thor.Address, []Lock](ctx, slotLocks),
		issuance: storage.NewBigInt(ctx, slotIssuance),
		events:   rec,
	}
}

func (c *Currency) emit(ev *events.Event) {
	if c.events != nil {
		c.events.Emit(ev)
	}
}

// TotalIssuance returns the sum of all balances.
func (c *Currency) TotalIssuance() (*big.Int, error) {
	return c.issuance.Get()
}

// FreeBalance returns the balance of the account, locked part included.
func (c *Currency) FreeBalance(acc thor.Address) (*big.Int, error) {
	bal, found, err := c.balances.Get(acc)
	if err != nil {
		return nil, err
	}
	if !found {
		return new(big.Int), nil
	}
	return bal, nil
}

func (c *Currency) setBalance(acc thor.Address, bal *big.Int) error {
	if bal.Sign() == 0 {
		c.balances.Delete(acc)
		return nil
	}
	return c.balances.Set(acc, bal)
}

// Locks returns the locks of the account.
func (c *Currency) Locks(acc thor.Address) ([]Lock, error) {
	locks, _, err := c.locks.Get(acc)
	return locks, err
}

// Locked returns the frozen part of the free balance.
func (c *Currency) Locked(acc thor.Address) (*big.Int, error) {
	locks, err := c.Locks(acc)
	if err != nil {
		return nil, err
	}
	locked := new(big.Int)
	for _, l := range locks {
		if l.Amount.Cmp(locked) > 0 {
			locked.Set(l.Amount)
		}
	}
	return locked, nil
}

// LockedBy returns the amount of the given lock, zero if absent.
func (c *Currency) LockedBy(id LockID, acc thor.Address) (*big.Int, error) {
	locks, err := c.Locks(acc)
	if err != nil {
		return nil, err
	}
	for _, l := range locks {
		if l.ID == id {
			return new(big.Int).Set(l.Amount), nil
		}
	}
	return new(big.Int), nil
}

// UsableBalance returns the free balance minus the frozen part.
func (c *Currency) UsableBalance(acc thor.Address) (*big.Int, error) {
	free, err := c.FreeBalance(acc)
	if err != nil {
		return nil, err
	}
	locked, err := c.Locked(acc)
	if err != nil {
		return nil, err
	}
	usable := free.Sub(free, locked)
	if usable.Sign() < 0 {
		usable.SetInt64(0)
	}
	return usable, nil
}

// SetLock installs or replaces the lock of the given id. A zero amount removes it.
func (c *Currency) SetLock(id LockID, acc thor.Address, amount *big.Int) error {
	locks, err := c.Locks(acc)
	if err != nil {
		return err
	}
	out := locks[:0]
	for _, l := range locks {
		if l.ID != id {
			out = append(out, l)
		}
	}
	if amount.Sign() > 0 {
		out = append(out, Lock{ID: id, Amount: new(big.Int).Set(amount)})
	}
	if len(out) == 0 {
		c.locks.Delete(acc)
		return nil
	}
	return c.locks.Set(acc, out)
}

// RemoveLock removes the lock of the given id.
func (c *Currency) RemoveLock(id LockID, acc thor.Address) error {
	return c.SetLock(id, acc, new(big.Int))
}

// Deposit credits the account with newly created funds, increasing the issuance.
func (c *Currency) Deposit(acc thor.Address, amount *big.Int) error {
	if amount.Sign() <= 0 {
		return nil
	}
	bal, err := c.FreeBalance(acc)
	if err != nil {
		return err
	}
	if err := c.setBalance(acc, bal.Add(bal, amount)); err != nil {
		return err
	}
	if err := c.issuance.Add(amount); err != nil {
		return errors.Wrap(err, "increase issuance")
	}
	c.emit(events.New(module, "Deposit", acc).With("amount", amount))
	return nil
}

// Transfer moves amount of the usable balance of from to to.
func (c *Currency) Transfer(from, to thor.Address, amount *big.Int) error {
	if amount.Sign() <= 0 {
		return ErrZeroAmount
	}
	usable, err := c.UsableBalance(from)
	if err != nil {
		return err
	}
	if usable.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	if from == to {
		return nil
	}
	fromBal, err := c.FreeBalance(from)
	if err != nil {
		return err
	}
	toBal, err := c.FreeBalance(to)
	if err != nil {
		return err
	}
	if err := c.setBalance(from, fromBal.Sub(fromBal, amount)); err != nil {
		return err
	}
	if err := c.setBalance(to, toBal.Add(toBal, amount)); err != nil {
		return err
	}
	c.emit(events.New(module, "Transfer", from, to).With("amount", amount))
	return nil
}
