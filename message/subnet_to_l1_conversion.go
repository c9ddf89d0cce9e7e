// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package message

import (
	"encoding/binary"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/crypto/bls"
	"github.com/ava-labs/avalanchego/utils/hashing"
	"github.com/ava-labs/avalanchego/vms/types"
)

// ConversionValidator describes one validator in the initial validator set of
// a converted subnet.
type ConversionValidator struct {
	// NodeID must be a 20 byte node identifier.
	NodeID types.JSONByteSlice `serialize:"true" json:"nodeID"`
	// BLSPublicKey is the compressed BLS public key of the validator.
	BLSPublicKey [bls.PublicKeyLen]byte `serialize:"true" json:"blsPublicKey"`
	Weight       uint64                 `serialize:"true" json:"weight"`
}

// ConversionData is the preimage the P-Chain committed to when converting the
// subnet into an L1. The manager must be provided the exact data to bootstrap
// its validator set.
type ConversionData struct {
	SubnetID       ids.ID                `serialize:"true" json:"subnetID"`
	ManagerChainID ids.ID                `serialize:"true" json:"managerChainID"`
	ManagerAddress types.JSONByteSlice   `serialize:"true" json:"managerAddress"`
	Validators     []ConversionValidator `serialize:"true" json:"validators"`
}

// ConversionID hashes the canonical serialization of the conversion data. The
// P-Chain acknowledges the conversion by signing this hash.
func (c *ConversionData) ConversionID() (ids.ID, error) {
	bytes, err := Codec.Marshal(CodecVersion, c)
	if err != nil {
		return ids.Empty, fmt.Errorf("couldn't marshal conversion data: %w", err)
	}
	return hashing.ComputeHash256Array(bytes), nil
}

// ConversionValidationID returns the validationID of the initial validator at
// [index] of the conversion of [subnetID].
func ConversionValidationID(subnetID ids.ID, index uint32) ids.ID {
	preimage := make([]byte, ids.IDLen+4)
	copy(preimage, subnetID[:])
	binary.BigEndian.PutUint32(preimage[ids.IDLen:], index)
	return hashing.ComputeHash256Array(preimage)
}

// SubnetToL1Conversion acknowledges the conversion of the subnet with the
// provided ID into an L1.
type SubnetToL1Conversion struct {
	payload

	// ID of the conversion, as returned by ConversionData.ConversionID.
	ID ids.ID `serialize:"true" json:"id"`
}

// NewSubnetToL1Conversion creates a new initialized SubnetToL1Conversion.
func NewSubnetToL1Conversion(id ids.ID) (*SubnetToL1Conversion, error) {
	msg := &SubnetToL1Conversion{
		ID: id,
	}
	return msg, Initialize(msg)
}

// ParseSubnetToL1Conversion parses bytes into an initialized
// SubnetToL1Conversion.
func ParseSubnetToL1Conversion(b []byte) (*SubnetToL1Conversion, error) {
	payloadIntf, err := Parse(b)
	if err != nil {
		return nil, err
	}
	payload, ok := payloadIntf.(*SubnetToL1Conversion)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrWrongType, payloadIntf)
	}
	return payload, nil
}
