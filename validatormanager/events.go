// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package validatormanager

import "github.com/ava-labs/avalanchego/ids"

// Listener is notified after each validator state transition commits.
// Off-chain relayers subscribe to drive the next step of the protocol, e.g.
// aggregating signatures over an emitted registration message.
type Listener interface {
	OnRegisteredInitialValidator(validationID ids.ID, nodeID ids.NodeID, weight uint64)
	OnInitiatedValidatorRegistration(validationID ids.ID, nodeID ids.NodeID, registrationExpiry uint64, weight uint64)
	OnCompletedValidatorRegistration(validationID ids.ID, weight uint64)
	OnInitiatedValidatorRemoval(validationID ids.ID, weight uint64)
	OnCompletedValidatorRemoval(validationID ids.ID, invalidated bool)
	OnInitiatedValidatorWeightUpdate(validationID ids.ID, nonce uint64, weight uint64)
	OnCompletedValidatorWeightUpdate(validationID ids.ID, nonce uint64, weight uint64)
}

// RegisterListener attaches [listener] to all future state transitions.
// Listeners are invoked synchronously, after the transition has committed, in
// registration order.
func (m *Manager) RegisterListener(listener Listener) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.listeners = append(m.listeners, listener)
}
