// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package message

import (
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils"
	"github.com/ava-labs/avalanchego/utils/constants"
	"github.com/ava-labs/avalanchego/utils/crypto/bls"
	"github.com/ava-labs/avalanchego/utils/hashing"
	"github.com/ava-labs/avalanchego/vms/types"
)

var (
	ErrInvalidSubnetID  = errors.New("invalid subnetID")
	ErrInvalidWeight    = errors.New("invalid weight")
	ErrInvalidNodeID    = errors.New("invalid nodeID")
	ErrInvalidThreshold = errors.New("invalid threshold")
	ErrInvalidAddresses = errors.New("addresses must be sorted and unique")
)

// PChainOwner identifies who can authorize P-Chain operations on behalf of a
// validator.
type PChainOwner struct {
	// The threshold number of [Addresses] that must provide a signature in
	// order for the [PChainOwner] to be considered valid.
	Threshold uint32 `serialize:"true" json:"threshold"`
	// The addresses that are allowed to sign to authenticate a [PChainOwner].
	Addresses []ids.ShortID `serialize:"true" json:"addresses"`
}

// Verify enforces the structure the P-Chain requires of an owner: the
// threshold can not exceed the number of addresses, the address list must be
// sorted ascending without duplicates, and the list is empty iff the
// threshold is 0. Violations are rejected here rather than after the
// registration has been relayed.
func (o PChainOwner) Verify() error {
	if (o.Threshold == 0) != (len(o.Addresses) == 0) {
		return fmt.Errorf("%w: threshold %d with %d addresses", ErrInvalidThreshold, o.Threshold, len(o.Addresses))
	}
	if uint64(o.Threshold) > uint64(len(o.Addresses)) {
		return fmt.Errorf("%w: threshold %d exceeds %d addresses", ErrInvalidThreshold, o.Threshold, len(o.Addresses))
	}
	if !utils.IsSortedAndUnique(o.Addresses) {
		return ErrInvalidAddresses
	}
	return nil
}

// RegisterL1Validator requests the P-Chain to add a validator to the L1.
type RegisterL1Validator struct {
	payload

	SubnetID              ids.ID                 `serialize:"true" json:"subnetID"`
	NodeID                types.JSONByteSlice    `serialize:"true" json:"nodeID"`
	BLSPublicKey          [bls.PublicKeyLen]byte `serialize:"true" json:"blsPublicKey"`
	Expiry                uint64                 `serialize:"true" json:"expiry"`
	RemainingBalanceOwner PChainOwner            `serialize:"true" json:"remainingBalanceOwner"`
	DisableOwner          PChainOwner            `serialize:"true" json:"disableOwner"`
	Weight                uint64                 `serialize:"true" json:"weight"`
}

func (msg *RegisterL1Validator) Verify() error {
	if msg.SubnetID == constants.PrimaryNetworkID {
		return ErrInvalidSubnetID
	}
	if msg.Weight == 0 {
		return ErrInvalidWeight
	}

	nodeID, err := ids.ToNodeID(msg.NodeID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidNodeID, err)
	}
	if nodeID == ids.EmptyNodeID {
		return fmt.Errorf("%w: empty nodeID is disallowed", ErrInvalidNodeID)
	}

	if err := msg.RemainingBalanceOwner.Verify(); err != nil {
		return fmt.Errorf("invalid remaining balance owner: %w", err)
	}
	if err := msg.DisableOwner.Verify(); err != nil {
		return fmt.Errorf("invalid disable owner: %w", err)
	}
	return nil
}

// ValidationID of the validator registration this message requests. The ID is
// the hash of the message itself, which makes it deterministic across
// resubmissions of the same registration.
func (msg *RegisterL1Validator) ValidationID() ids.ID {
	return hashing.ComputeHash256Array(msg.Bytes())
}

// NewRegisterL1Validator creates a new initialized RegisterL1Validator.
func NewRegisterL1Validator(
	subnetID ids.ID,
	nodeID ids.NodeID,
	blsPublicKey [bls.PublicKeyLen]byte,
	expiry uint64,
	remainingBalanceOwner PChainOwner,
	disableOwner PChainOwner,
	weight uint64,
) (*RegisterL1Validator, error) {
	msg := &RegisterL1Validator{
		SubnetID:              subnetID,
		NodeID:                nodeID[:],
		BLSPublicKey:          blsPublicKey,
		Expiry:                expiry,
		RemainingBalanceOwner: remainingBalanceOwner,
		DisableOwner:          disableOwner,
		Weight:                weight,
	}
	return msg, Initialize(msg)
}

// ParseRegisterL1Validator parses bytes into an initialized
// RegisterL1Validator.
func ParseRegisterL1Validator(b []byte) (*RegisterL1Validator, error) {
	payloadIntf, err := Parse(b)
	if err != nil {
		return nil, err
	}
	payload, ok := payloadIntf.(*RegisterL1Validator)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrWrongType, payloadIntf)
	}
	return payload, nil
}
