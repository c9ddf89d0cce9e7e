// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package staking

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	numDelegationsInitiated        prometheus.Counter
	numDelegationsCompleted        prometheus.Counter
	numDelegationRemovalsInitiated prometheus.Counter
	numDelegationRemovalsCompleted prometheus.Counter
	numForcedRemovals              prometheus.Counter
	numUptimeProofs                prometheus.Counter

	rewardsPaid prometheus.Counter
	feesAccrued prometheus.Counter
	feesClaimed prometheus.Counter
}

func newMetrics(namespace string, registerer prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		numDelegationsInitiated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delegations_initiated",
			Help:      "Number of delegator registrations initiated",
		}),
		numDelegationsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delegations_completed",
			Help:      "Number of delegator registrations completed",
		}),
		numDelegationRemovalsInitiated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delegation_removals_initiated",
			Help:      "Number of delegator removals initiated",
		}),
		numDelegationRemovalsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delegation_removals_completed",
			Help:      "Number of delegator removals completed",
		}),
		numForcedRemovals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forced_removals",
			Help:      "Number of removals initiated through a force path",
		}),
		numUptimeProofs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uptime_proofs",
			Help:      "Number of uptime proofs accepted",
		}),
		rewardsPaid: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rewards_paid",
			Help:      "Total reward value paid out",
		}),
		feesAccrued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delegation_fees_accrued",
			Help:      "Total delegation fee value withheld from delegator rewards",
		}),
		feesClaimed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delegation_fees_claimed",
			Help:      "Total delegation fee value claimed by validators",
		}),
	}
	err := errors.Join(
		registerer.Register(m.numDelegationsInitiated),
		registerer.Register(m.numDelegationsCompleted),
		registerer.Register(m.numDelegationRemovalsInitiated),
		registerer.Register(m.numDelegationRemovalsCompleted),
		registerer.Register(m.numForcedRemovals),
		registerer.Register(m.numUptimeProofs),
		registerer.Register(m.rewardsPaid),
		registerer.Register(m.feesAccrued),
		registerer.Register(m.feesClaimed),
	)
	return m, err
}
