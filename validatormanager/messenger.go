// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package validatormanager

import "github.com/ava-labs/avalanchego/ids"

// Messenger hands outbound payloads to the cross-chain messaging layer for
// signature aggregation and relay to the P-Chain. Implementations must accept
// duplicate payloads: resend paths re-submit byte-identical messages.
type Messenger interface {
	Send(payload []byte) error
}

// VerifiedMessage is an inbound warp payload whose signature has already been
// verified by the messaging layer. Only the source chain and raw payload
// survive to this layer; BLS verification never happens here.
type VerifiedMessage struct {
	SourceChainID ids.ID
	Payload       []byte
}
