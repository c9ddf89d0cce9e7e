// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package staking

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/avalanchego/ids"
)

func TestLedger(t *testing.T) {
	require := require.New(t)

	ledger := NewLedger()
	owner := ids.GenerateTestShortID()

	err := ledger.Lock(owner, 1)
	require.ErrorIs(err, ErrInsufficientBalance)

	require.NoError(ledger.Deposit(owner, 100))
	require.Equal(uint64(100), ledger.Balance(owner))

	require.NoError(ledger.Lock(owner, 60))
	require.Equal(uint64(40), ledger.Balance(owner))
	require.Equal(uint64(60), ledger.Locked(owner))

	err = ledger.Lock(owner, 50)
	require.ErrorIs(err, ErrInsufficientBalance)

	err = ledger.Unlock(owner, 70)
	require.ErrorIs(err, ErrInsufficientLocked)

	require.NoError(ledger.Unlock(owner, 60))
	require.Equal(uint64(100), ledger.Balance(owner))
	require.Zero(ledger.Locked(owner))

	recipient := ids.GenerateTestShortID()
	require.NoError(ledger.Reward(recipient, 25))
	require.Equal(uint64(25), ledger.Balance(recipient))
}
