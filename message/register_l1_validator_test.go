// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package message

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/constants"
	"github.com/ava-labs/avalanchego/utils/crypto/bls"
	"github.com/ava-labs/avalanchego/utils/hashing"
)

func testBLSPublicKey() [bls.PublicKeyLen]byte {
	var pk [bls.PublicKeyLen]byte
	for i := range pk {
		pk[i] = byte(i + 1)
	}
	return pk
}

func TestRegisterL1Validator(t *testing.T) {
	require := require.New(t)

	msg, err := NewRegisterL1Validator(
		ids.GenerateTestID(),
		ids.GenerateTestNodeID(),
		testBLSPublicKey(),
		rand.Uint64(), //#nosec G404
		PChainOwner{
			Threshold: 1,
			Addresses: []ids.ShortID{
				ids.GenerateTestShortID(),
			},
		},
		PChainOwner{
			Threshold: 1,
			Addresses: []ids.ShortID{
				ids.GenerateTestShortID(),
			},
		},
		rand.Uint64(), //#nosec G404
	)
	require.NoError(err)

	bytes := msg.Bytes()
	var expectedValidationID ids.ID = hashing.ComputeHash256Array(bytes)
	require.Equal(expectedValidationID, msg.ValidationID())

	parsed, err := ParseRegisterL1Validator(bytes)
	require.NoError(err)
	require.Equal(msg, parsed)
}

func TestRegisterL1ValidatorVerify(t *testing.T) {
	mustCreate := func(msg *RegisterL1Validator, err error) *RegisterL1Validator {
		require.NoError(t, err)
		return msg
	}

	validOwner := PChainOwner{
		Threshold: 1,
		Addresses: []ids.ShortID{
			ids.GenerateTestShortID(),
		},
	}

	tests := []struct {
		name     string
		msg      *RegisterL1Validator
		expected error
	}{
		{
			name: "PrimaryNetworkID",
			msg: mustCreate(NewRegisterL1Validator(
				constants.PrimaryNetworkID,
				ids.GenerateTestNodeID(),
				testBLSPublicKey(),
				rand.Uint64(), //#nosec G404
				validOwner,
				validOwner,
				rand.Uint64(), //#nosec G404
			)),
			expected: ErrInvalidSubnetID,
		},
		{
			name: "ZeroWeight",
			msg: mustCreate(NewRegisterL1Validator(
				ids.GenerateTestID(),
				ids.GenerateTestNodeID(),
				testBLSPublicKey(),
				rand.Uint64(), //#nosec G404
				validOwner,
				validOwner,
				0,
			)),
			expected: ErrInvalidWeight,
		},
		{
			name: "EmptyNodeID",
			msg: mustCreate(NewRegisterL1Validator(
				ids.GenerateTestID(),
				ids.EmptyNodeID,
				testBLSPublicKey(),
				rand.Uint64(), //#nosec G404
				validOwner,
				validOwner,
				rand.Uint64(), //#nosec G404
			)),
			expected: ErrInvalidNodeID,
		},
		{
			name: "WrongNodeIDLength",
			msg: func() *RegisterL1Validator {
				msg := mustCreate(NewRegisterL1Validator(
					ids.GenerateTestID(),
					ids.GenerateTestNodeID(),
					testBLSPublicKey(),
					rand.Uint64(), //#nosec G404
					validOwner,
					validOwner,
					rand.Uint64(), //#nosec G404
				))
				msg.NodeID = msg.NodeID[:ids.NodeIDLen-1]
				return msg
			}(),
			expected: ErrInvalidNodeID,
		},
		{
			name: "ThresholdExceedsAddresses",
			msg: mustCreate(NewRegisterL1Validator(
				ids.GenerateTestID(),
				ids.GenerateTestNodeID(),
				testBLSPublicKey(),
				rand.Uint64(), //#nosec G404
				PChainOwner{
					Threshold: 2,
					Addresses: []ids.ShortID{
						ids.GenerateTestShortID(),
					},
				},
				validOwner,
				rand.Uint64(), //#nosec G404
			)),
			expected: ErrInvalidThreshold,
		},
		{
			name: "ZeroThresholdWithAddresses",
			msg: mustCreate(NewRegisterL1Validator(
				ids.GenerateTestID(),
				ids.GenerateTestNodeID(),
				testBLSPublicKey(),
				rand.Uint64(), //#nosec G404
				PChainOwner{
					Threshold: 0,
					Addresses: []ids.ShortID{
						ids.GenerateTestShortID(),
					},
				},
				validOwner,
				rand.Uint64(), //#nosec G404
			)),
			expected: ErrInvalidThreshold,
		},
		{
			name: "UnsortedAddresses",
			msg: mustCreate(NewRegisterL1Validator(
				ids.GenerateTestID(),
				ids.GenerateTestNodeID(),
				testBLSPublicKey(),
				rand.Uint64(), //#nosec G404
				validOwner,
				PChainOwner{
					Threshold: 2,
					Addresses: []ids.ShortID{
						{2},
						{1},
					},
				},
				rand.Uint64(), //#nosec G404
			)),
			expected: ErrInvalidAddresses,
		},
		{
			name: "DuplicateAddresses",
			msg: mustCreate(NewRegisterL1Validator(
				ids.GenerateTestID(),
				ids.GenerateTestNodeID(),
				testBLSPublicKey(),
				rand.Uint64(), //#nosec G404
				validOwner,
				PChainOwner{
					Threshold: 2,
					Addresses: []ids.ShortID{
						{1},
						{1},
					},
				},
				rand.Uint64(), //#nosec G404
			)),
			expected: ErrInvalidAddresses,
		},
		{
			name: "Valid",
			msg: mustCreate(NewRegisterL1Validator(
				ids.GenerateTestID(),
				ids.GenerateTestNodeID(),
				testBLSPublicKey(),
				rand.Uint64(), //#nosec G404
				validOwner,
				PChainOwner{},
				rand.Uint64(), //#nosec G404
			)),
			expected: nil,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.msg.Verify()
			require.ErrorIs(t, err, test.expected)
		})
	}
}
