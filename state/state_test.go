// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/ids"
)

func TestStateValidator(t *testing.T) {
	require := require.New(t)

	s := New(memdb.New())

	validationID := ids.GenerateTestID()
	_, err := s.GetValidator(validationID)
	require.ErrorIs(err, database.ErrNotFound)

	vdr := &Validator{
		ValidationID:   validationID,
		Status:         PendingAdded,
		NodeID:         ids.GenerateTestNodeID(),
		StartingWeight: 100,
		Weight:         100,
	}
	require.NoError(s.PutValidator(vdr))
	require.NoError(s.Commit())

	got, err := s.GetValidator(validationID)
	require.NoError(err)
	require.Equal(vdr, got)

	require.NoError(s.PutNodeValidation(vdr.NodeID, validationID))
	gotID, err := s.GetNodeValidation(vdr.NodeID)
	require.NoError(err)
	require.Equal(validationID, gotID)

	require.NoError(s.DeleteNodeValidation(vdr.NodeID))
	_, err = s.GetNodeValidation(vdr.NodeID)
	require.ErrorIs(err, database.ErrNotFound)

	validationIDs, err := s.ValidationIDs()
	require.NoError(err)
	require.Equal([]ids.ID{validationID}, validationIDs)
}

func TestStateAbortDiscardsWrites(t *testing.T) {
	require := require.New(t)

	s := New(memdb.New())

	validationID := ids.GenerateTestID()
	vdr := &Validator{
		ValidationID: validationID,
		Status:       Active,
		NodeID:       ids.GenerateTestNodeID(),
		Weight:       1,
	}
	require.NoError(s.PutValidator(vdr))
	require.NoError(s.Commit())

	// Modify and abort. Neither the database nor the cache may retain the
	// aborted write.
	updated := *vdr
	updated.Weight = 2
	require.NoError(s.PutValidator(&updated))
	s.Abort()

	got, err := s.GetValidator(validationID)
	require.NoError(err)
	require.Equal(uint64(1), got.Weight)

	// An aborted insert disappears entirely.
	otherID := ids.GenerateTestID()
	require.NoError(s.PutValidator(&Validator{
		ValidationID: otherID,
		Status:       PendingAdded,
		NodeID:       ids.GenerateTestNodeID(),
	}))
	s.Abort()

	_, err = s.GetValidator(otherID)
	require.ErrorIs(err, database.ErrNotFound)
}

func TestStateGetValidatorReturnsCopy(t *testing.T) {
	require := require.New(t)

	s := New(memdb.New())

	validationID := ids.GenerateTestID()
	require.NoError(s.PutValidator(&Validator{
		ValidationID: validationID,
		Status:       Active,
		NodeID:       ids.GenerateTestNodeID(),
		Weight:       1,
	}))
	require.NoError(s.Commit())

	// A caller mutating a returned record must not leak the change into
	// later reads without going through PutValidator.
	got, err := s.GetValidator(validationID)
	require.NoError(err)
	got.Weight = 2

	got, err = s.GetValidator(validationID)
	require.NoError(err)
	require.Equal(uint64(1), got.Weight)
}

func TestStatePendingMessages(t *testing.T) {
	require := require.New(t)

	s := New(memdb.New())

	id := ids.GenerateTestID()
	msg := []byte{1, 2, 3}
	require.NoError(s.PutPendingMessage(id, msg))
	require.NoError(s.Commit())

	got, err := s.GetPendingMessage(id)
	require.NoError(err)
	require.Equal(msg, got)

	require.NoError(s.DeletePendingMessage(id))
	require.NoError(s.Commit())

	_, err = s.GetPendingMessage(id)
	require.ErrorIs(err, database.ErrNotFound)
}

func TestStateSingletons(t *testing.T) {
	require := require.New(t)

	s := New(memdb.New())

	initialized, err := s.GetInitialized()
	require.NoError(err)
	require.False(initialized)

	require.NoError(s.SetInitialized())
	initialized, err = s.GetInitialized()
	require.NoError(err)
	require.True(initialized)

	admin := ids.GenerateTestShortID()
	require.NoError(s.SetAdmin(admin))
	gotAdmin, err := s.GetAdmin()
	require.NoError(err)
	require.Equal(admin, gotAdmin)

	permissionless, err := s.GetPermissionless()
	require.NoError(err)
	require.False(permissionless)

	require.NoError(s.SetPermissionless())
	permissionless, err = s.GetPermissionless()
	require.NoError(err)
	require.True(permissionless)

	period := &ChurnPeriod{
		StartTime:     10,
		InitialWeight: 500,
		TotalWeight:   600,
		ChurnAmount:   100,
	}
	require.NoError(s.PutChurnPeriod(period))
	gotPeriod, err := s.GetChurnPeriod()
	require.NoError(err)
	require.Equal(period, gotPeriod)
}

func TestStateUptime(t *testing.T) {
	require := require.New(t)

	s := New(memdb.New())

	validationID := ids.GenerateTestID()

	// No proof submitted yet reads as zero uptime.
	seconds, err := s.GetUptime(validationID)
	require.NoError(err)
	require.Zero(seconds)

	require.NoError(s.SetUptime(validationID, 1234))
	seconds, err = s.GetUptime(validationID)
	require.NoError(err)
	require.Equal(uint64(1234), seconds)
}
