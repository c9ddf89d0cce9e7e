// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package message

import (
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
)

// ValidatorUptime attests that the validator identified by [ValidationID] has
// been online for [TotalUptime] seconds of its validation period. Uptime
// proofs are signed by the L1's own validator set rather than the P-Chain.
type ValidatorUptime struct {
	payload

	ValidationID ids.ID `serialize:"true" json:"validationID"`
	TotalUptime  uint64 `serialize:"true" json:"totalUptime"`
}

// NewValidatorUptime creates a new initialized ValidatorUptime.
func NewValidatorUptime(validationID ids.ID, totalUptime uint64) (*ValidatorUptime, error) {
	msg := &ValidatorUptime{
		ValidationID: validationID,
		TotalUptime:  totalUptime,
	}
	return msg, Initialize(msg)
}

// ParseValidatorUptime parses bytes into an initialized ValidatorUptime.
func ParseValidatorUptime(b []byte) (*ValidatorUptime, error) {
	payloadIntf, err := Parse(b)
	if err != nil {
		return nil, err
	}
	payload, ok := payloadIntf.(*ValidatorUptime)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrWrongType, payloadIntf)
	}
	return payload, nil
}
