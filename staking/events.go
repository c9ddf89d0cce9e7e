// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package staking

import "github.com/ava-labs/avalanchego/ids"

// Listener is notified after each staking state transition commits. Core
// validator lifecycle events are observed through the hosted
// validatormanager.Manager's own listeners.
type Listener interface {
	OnInitiatedDelegatorRegistration(delegationID ids.ID, validationID ids.ID, weight uint64)
	OnCompletedDelegatorRegistration(delegationID ids.ID)
	OnInitiatedDelegatorRemoval(delegationID ids.ID, rewardEligible bool)
	OnCompletedDelegatorRemoval(delegationID ids.ID, reward uint64, fee uint64)
	OnValidatorRewardPaid(validationID ids.ID, recipient ids.ShortID, reward uint64)
	OnUptimeRecorded(validationID ids.ID, uptimeSeconds uint64)
}

// RegisterListener attaches [listener] to all future staking transitions.
// Listeners are invoked synchronously, after the transition has committed, in
// registration order.
func (m *Manager) RegisterListener(listener Listener) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.listeners = append(m.listeners, listener)
}
