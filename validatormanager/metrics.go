// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package validatormanager

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	numRegistrationsInitiated prometheus.Counter
	numRegistrationsCompleted prometheus.Counter
	numRemovalsInitiated      prometheus.Counter
	numRemovalsCompleted      prometheus.Counter
	numWeightUpdatesInitiated prometheus.Counter
	numWeightUpdatesCompleted prometheus.Counter
	numResends                prometheus.Counter

	totalWeight prometheus.Gauge
	churnAmount prometheus.Gauge
}

func newMetrics(namespace string, registerer prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		numRegistrationsInitiated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_initiated",
			Help:      "Number of validator registrations initiated",
		}),
		numRegistrationsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_completed",
			Help:      "Number of validator registrations completed",
		}),
		numRemovalsInitiated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "removals_initiated",
			Help:      "Number of validator removals initiated",
		}),
		numRemovalsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "removals_completed",
			Help:      "Number of validator removals completed or invalidated",
		}),
		numWeightUpdatesInitiated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weight_updates_initiated",
			Help:      "Number of validator weight updates initiated",
		}),
		numWeightUpdatesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weight_updates_completed",
			Help:      "Number of validator weight update acknowledgements processed",
		}),
		numResends: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "message_resends",
			Help:      "Number of pending messages resent",
		}),
		totalWeight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "total_weight",
			Help:      "Total weight of the validator set",
		}),
		churnAmount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "churn_amount",
			Help:      "Weight churned within the current churn window",
		}),
	}
	err := errors.Join(
		registerer.Register(m.numRegistrationsInitiated),
		registerer.Register(m.numRegistrationsCompleted),
		registerer.Register(m.numRemovalsInitiated),
		registerer.Register(m.numRemovalsCompleted),
		registerer.Register(m.numWeightUpdatesInitiated),
		registerer.Register(m.numWeightUpdatesCompleted),
		registerer.Register(m.numResends),
		registerer.Register(m.totalWeight),
		registerer.Register(m.churnAmount),
	)
	return m, err
}
