// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package staking

import (
	"fmt"
	"sync"

	"github.com/ava-labs/avalanchego/ids"

	safemath "github.com/ava-labs/avalanchego/utils/math"
)

// Collateral is the asset backend stake is locked against. Lock and Unlock
// move value between an owner's spendable and staked balances; Reward issues
// newly earned value to a recipient.
//
// Collateral calls are made outside the manager's state transaction: Lock
// before an operation commits (and is compensated with Unlock if the commit
// never happens), Unlock and Reward after.
type Collateral interface {
	Lock(owner ids.ShortID, amount uint64) error
	Unlock(owner ids.ShortID, amount uint64) error
	Reward(recipient ids.ShortID, amount uint64) error
}

// Ledger is an in-memory Collateral for a native, manager-custodied asset.
type Ledger struct {
	lock      sync.Mutex
	spendable map[ids.ShortID]uint64
	locked    map[ids.ShortID]uint64
}

func NewLedger() *Ledger {
	return &Ledger{
		spendable: make(map[ids.ShortID]uint64),
		locked:    make(map[ids.ShortID]uint64),
	}
}

// Deposit credits [amount] to [owner]'s spendable balance.
func (l *Ledger) Deposit(owner ids.ShortID, amount uint64) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	balance, err := safemath.Add(l.spendable[owner], amount)
	if err != nil {
		return fmt.Errorf("depositing %d to %s: %w", amount, owner, err)
	}
	l.spendable[owner] = balance
	return nil
}

func (l *Ledger) Lock(owner ids.ShortID, amount uint64) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	if l.spendable[owner] < amount {
		return fmt.Errorf(
			"%w: %s has %d spendable, needs %d",
			ErrInsufficientBalance,
			owner,
			l.spendable[owner],
			amount,
		)
	}
	locked, err := safemath.Add(l.locked[owner], amount)
	if err != nil {
		return fmt.Errorf("locking %d for %s: %w", amount, owner, err)
	}
	l.spendable[owner] -= amount
	l.locked[owner] = locked
	return nil
}

func (l *Ledger) Unlock(owner ids.ShortID, amount uint64) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	if l.locked[owner] < amount {
		return fmt.Errorf(
			"%w: %s has %d locked, needs %d",
			ErrInsufficientLocked,
			owner,
			l.locked[owner],
			amount,
		)
	}
	spendable, err := safemath.Add(l.spendable[owner], amount)
	if err != nil {
		return fmt.Errorf("unlocking %d for %s: %w", amount, owner, err)
	}
	l.locked[owner] -= amount
	l.spendable[owner] = spendable
	return nil
}

func (l *Ledger) Reward(recipient ids.ShortID, amount uint64) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	balance, err := safemath.Add(l.spendable[recipient], amount)
	if err != nil {
		return fmt.Errorf("rewarding %d to %s: %w", amount, recipient, err)
	}
	l.spendable[recipient] = balance
	return nil
}

// Balance returns [owner]'s spendable balance.
func (l *Ledger) Balance(owner ids.ShortID) uint64 {
	l.lock.Lock()
	defer l.lock.Unlock()

	return l.spendable[owner]
}

// Locked returns [owner]'s staked balance.
func (l *Ledger) Locked(owner ids.ShortID) uint64 {
	l.lock.Lock()
	defer l.lock.Unlock()

	return l.locked[owner]
}
