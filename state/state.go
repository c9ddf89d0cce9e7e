// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package state persists the validator manager's keyed maps: validator and
// delegator records, the nodeID index, the pending outbound message cache,
// the churn window, uptimes and staking metadata.
//
// All writes go through a versioned view of the underlying database. A
// mutating operation applies its writes, then either Commit()s them as one
// batch or Abort()s them entirely; no partial application is ever visible.
package state

import (
	"github.com/ava-labs/avalanchego/cache"
	"github.com/ava-labs/avalanchego/cache/lru"
	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/prefixdb"
	"github.com/ava-labs/avalanchego/database/versiondb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/set"
)

const (
	validatorCacheSize = 2048
	delegatorCacheSize = 8192
)

var (
	validatorPrefix      = []byte("validator")
	nodeIDPrefix         = []byte("nodeID")
	pendingMessagePrefix = []byte("pendingMessage")
	delegatorPrefix      = []byte("delegator")
	stakerInfoPrefix     = []byte("stakerInfo")
	uptimePrefix         = []byte("uptime")
	singletonPrefix      = []byte("singleton")

	initializedKey    = []byte("initialized")
	adminKey          = []byte("admin")
	permissionlessKey = []byte("permissionless")

	_ State = (*state)(nil)
)

type State interface {
	// GetValidator returns a copy of the record stored for [validationID];
	// mutating it is only visible after PutValidator.
	// Returns database.ErrNotFound if the validation was never registered.
	GetValidator(validationID ids.ID) (*Validator, error)
	PutValidator(vdr *Validator) error

	// GetNodeValidation returns the non-terminal validationID registered for
	// [nodeID], if there is one.
	GetNodeValidation(nodeID ids.NodeID) (ids.ID, error)
	PutNodeValidation(nodeID ids.NodeID, validationID ids.ID) error
	DeleteNodeValidation(nodeID ids.NodeID) error

	// ValidationIDs returns the IDs of every validator record ever stored,
	// terminal records included.
	ValidationIDs() ([]ids.ID, error)

	// Pending outbound message bytes, kept verbatim so resends are
	// byte-identical to the original send.
	GetPendingMessage(id ids.ID) ([]byte, error)
	PutPendingMessage(id ids.ID, msg []byte) error
	DeletePendingMessage(id ids.ID) error

	GetChurnPeriod() (*ChurnPeriod, error)
	PutChurnPeriod(period *ChurnPeriod) error

	// GetDelegator returns a copy, like GetValidator.
	GetDelegator(delegationID ids.ID) (*Delegator, error)
	PutDelegator(del *Delegator) error

	GetStakerInfo(validationID ids.ID) (*StakerInfo, error)
	PutStakerInfo(validationID ids.ID, info *StakerInfo) error

	// GetUptime returns the highest uptime, in seconds, ever attested for
	// [validationID]. Returns 0 if no proof was submitted.
	GetUptime(validationID ids.ID) (uint64, error)
	SetUptime(validationID ids.ID, seconds uint64) error

	GetInitialized() (bool, error)
	SetInitialized() error

	GetAdmin() (ids.ShortID, error)
	SetAdmin(admin ids.ShortID) error

	GetPermissionless() (bool, error)
	SetPermissionless() error

	// Commit atomically writes every change applied since the last Commit
	// or Abort.
	Commit() error

	// Abort discards every change applied since the last Commit or Abort.
	Abort()

	Close() error
}

type state struct {
	baseDB *versiondb.Database

	validatorDB    database.Database
	validatorCache cache.Cacher[ids.ID, *Validator]

	nodeIDDB database.Database

	pendingMessageDB database.Database

	delegatorDB    database.Database
	delegatorCache cache.Cacher[ids.ID, *Delegator]

	stakerInfoDB database.Database
	uptimeDB     database.Database
	singletonDB  database.Database

	// IDs written since the last Commit or Abort. Their cache entries are
	// evicted on Abort so the caches never serve discarded writes.
	touchedValidators set.Set[ids.ID]
	touchedDelegators set.Set[ids.ID]
}

func New(db database.Database) State {
	baseDB := versiondb.New(db)
	return &state{
		baseDB: baseDB,

		validatorDB:    prefixdb.New(validatorPrefix, baseDB),
		validatorCache: lru.NewCache[ids.ID, *Validator](validatorCacheSize),

		nodeIDDB: prefixdb.New(nodeIDPrefix, baseDB),

		pendingMessageDB: prefixdb.New(pendingMessagePrefix, baseDB),

		delegatorDB:    prefixdb.New(delegatorPrefix, baseDB),
		delegatorCache: lru.NewCache[ids.ID, *Delegator](delegatorCacheSize),

		stakerInfoDB: prefixdb.New(stakerInfoPrefix, baseDB),
		uptimeDB:     prefixdb.New(uptimePrefix, baseDB),
		singletonDB:  prefixdb.New(singletonPrefix, baseDB),
	}
}

func (s *state) GetValidator(validationID ids.ID) (*Validator, error) {
	if vdr, ok := s.validatorCache.Get(validationID); ok {
		cp := *vdr
		return &cp, nil
	}

	vdr, err := getValidator(s.validatorDB, validationID)
	if err != nil {
		return nil, err
	}
	s.validatorCache.Put(validationID, vdr)
	cp := *vdr
	return &cp, nil
}

func (s *state) PutValidator(vdr *Validator) error {
	if err := putValidator(s.validatorDB, vdr); err != nil {
		return err
	}
	s.validatorCache.Put(vdr.ValidationID, vdr)
	s.touchedValidators.Add(vdr.ValidationID)
	return nil
}

func (s *state) GetNodeValidation(nodeID ids.NodeID) (ids.ID, error) {
	return database.GetID(s.nodeIDDB, nodeID.Bytes())
}

func (s *state) PutNodeValidation(nodeID ids.NodeID, validationID ids.ID) error {
	return database.PutID(s.nodeIDDB, nodeID.Bytes(), validationID)
}

func (s *state) DeleteNodeValidation(nodeID ids.NodeID) error {
	return s.nodeIDDB.Delete(nodeID.Bytes())
}

func (s *state) ValidationIDs() ([]ids.ID, error) {
	it := s.validatorDB.NewIterator()
	defer it.Release()

	var validationIDs []ids.ID
	for it.Next() {
		validationID, err := ids.ToID(it.Key())
		if err != nil {
			return nil, err
		}
		validationIDs = append(validationIDs, validationID)
	}
	return validationIDs, it.Error()
}

func (s *state) GetPendingMessage(id ids.ID) ([]byte, error) {
	return s.pendingMessageDB.Get(id[:])
}

func (s *state) PutPendingMessage(id ids.ID, msg []byte) error {
	return s.pendingMessageDB.Put(id[:], msg)
}

func (s *state) DeletePendingMessage(id ids.ID) error {
	return s.pendingMessageDB.Delete(id[:])
}

func (s *state) GetChurnPeriod() (*ChurnPeriod, error) {
	return getChurnPeriod(s.singletonDB)
}

func (s *state) PutChurnPeriod(period *ChurnPeriod) error {
	return putChurnPeriod(s.singletonDB, period)
}

func (s *state) GetDelegator(delegationID ids.ID) (*Delegator, error) {
	if del, ok := s.delegatorCache.Get(delegationID); ok {
		cp := *del
		return &cp, nil
	}

	del, err := getDelegator(s.delegatorDB, delegationID)
	if err != nil {
		return nil, err
	}
	s.delegatorCache.Put(delegationID, del)
	cp := *del
	return &cp, nil
}

func (s *state) PutDelegator(del *Delegator) error {
	if err := putDelegator(s.delegatorDB, del); err != nil {
		return err
	}
	s.delegatorCache.Put(del.DelegationID, del)
	s.touchedDelegators.Add(del.DelegationID)
	return nil
}

func (s *state) GetStakerInfo(validationID ids.ID) (*StakerInfo, error) {
	return getStakerInfo(s.stakerInfoDB, validationID)
}

func (s *state) PutStakerInfo(validationID ids.ID, info *StakerInfo) error {
	return putStakerInfo(s.stakerInfoDB, validationID, info)
}

func (s *state) GetUptime(validationID ids.ID) (uint64, error) {
	seconds, err := database.GetUInt64(s.uptimeDB, validationID[:])
	if err == database.ErrNotFound {
		return 0, nil
	}
	return seconds, err
}

func (s *state) SetUptime(validationID ids.ID, seconds uint64) error {
	return database.PutUInt64(s.uptimeDB, validationID[:], seconds)
}

func (s *state) GetInitialized() (bool, error) {
	has, err := s.singletonDB.Has(initializedKey)
	return has, err
}

func (s *state) SetInitialized() error {
	return database.PutBool(s.singletonDB, initializedKey, true)
}

func (s *state) GetAdmin() (ids.ShortID, error) {
	bytes, err := s.singletonDB.Get(adminKey)
	if err != nil {
		return ids.ShortEmpty, err
	}
	return ids.ToShortID(bytes)
}

func (s *state) SetAdmin(admin ids.ShortID) error {
	return s.singletonDB.Put(adminKey, admin.Bytes())
}

func (s *state) GetPermissionless() (bool, error) {
	has, err := s.singletonDB.Has(permissionlessKey)
	return has, err
}

func (s *state) SetPermissionless() error {
	return database.PutBool(s.singletonDB, permissionlessKey, true)
}

func (s *state) Commit() error {
	s.touchedValidators.Clear()
	s.touchedDelegators.Clear()
	return s.baseDB.Commit()
}

func (s *state) Abort() {
	for validationID := range s.touchedValidators {
		s.validatorCache.Evict(validationID)
	}
	for delegationID := range s.touchedDelegators {
		s.delegatorCache.Evict(delegationID)
	}
	s.touchedValidators.Clear()
	s.touchedDelegators.Clear()
	s.baseDB.Abort()
}

func (s *state) Close() error {
	return s.baseDB.Close()
}
