// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package message defines the L1 validator set management wire formats
// exchanged with the P-Chain inside warp message payloads.
//
// Signature aggregation and verification of the enclosing warp message is
// explicitly out of scope here; this package only packs and parses the
// authenticated payloads.
package message

import (
	"errors"
	"fmt"
)

var (
	ErrWrongType = errors.New("wrong payload type")

	_ Payload = (*SubnetToL1Conversion)(nil)
	_ Payload = (*RegisterL1Validator)(nil)
	_ Payload = (*L1ValidatorRegistration)(nil)
	_ Payload = (*L1ValidatorWeight)(nil)
	_ Payload = (*ValidatorUptime)(nil)
)

type Payload interface {
	// Bytes returns the binary representation of this payload.
	Bytes() []byte

	initialize(b []byte)
}

type payload struct {
	bytes []byte
}

func (p *payload) Bytes() []byte {
	return p.bytes
}

func (p *payload) initialize(bytes []byte) {
	p.bytes = bytes
}

// Initialize recalculates the result of Bytes().
func Initialize(p Payload) error {
	bytes, err := Codec.Marshal(CodecVersion, &p)
	if err != nil {
		return fmt.Errorf("couldn't marshal %T payload: %w", p, err)
	}

	p.initialize(bytes)
	return nil
}

// Parse a payload and verify that the result of Bytes() is correctly set.
func Parse(bytes []byte) (Payload, error) {
	var p Payload
	if _, err := Codec.Unmarshal(bytes, &p); err != nil {
		return nil, err
	}

	p.initialize(bytes)
	return p, nil
}
