// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package message

import (
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
)

// L1ValidatorRegistration attests the P-Chain's view of a registration.
//
// If [Registered] is true, the validator identified by [ValidationID] is
// registered on the P-Chain.
//
// If [Registered] is false, the validator is not and never will be registered
// under [ValidationID]; either the registration expired or the validator has
// since been removed.
type L1ValidatorRegistration struct {
	payload

	ValidationID ids.ID `serialize:"true" json:"validationID"`
	Registered   bool   `serialize:"true" json:"registered"`
}

// NewL1ValidatorRegistration creates a new initialized
// L1ValidatorRegistration.
func NewL1ValidatorRegistration(
	validationID ids.ID,
	registered bool,
) (*L1ValidatorRegistration, error) {
	msg := &L1ValidatorRegistration{
		ValidationID: validationID,
		Registered:   registered,
	}
	return msg, Initialize(msg)
}

// ParseL1ValidatorRegistration parses bytes into an initialized
// L1ValidatorRegistration.
func ParseL1ValidatorRegistration(b []byte) (*L1ValidatorRegistration, error) {
	payloadIntf, err := Parse(b)
	if err != nil {
		return nil, err
	}
	payload, ok := payloadIntf.(*L1ValidatorRegistration)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrWrongType, payloadIntf)
	}
	return payload, nil
}
