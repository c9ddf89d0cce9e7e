// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package validatormanager

import (
	"fmt"
	"time"

	"github.com/ava-labs/avalanchego/utils/timer/mockable"

	"github.com/ava-labs/l1-validator-manager/state"

	safemath "github.com/ava-labs/avalanchego/utils/math"
)

// churnTracker rate-limits validator weight changes. All weight-changing
// operations funnel through checkAndUpdate under the manager's lock, which
// makes it the single serialization point for the validator set.
type churnTracker struct {
	clock *mockable.Clock

	// length of one churn window. Zero means every change opens a fresh
	// window.
	period time.Duration

	// maximum percentage of the window's initial weight that may churn
	// within one window.
	maximumPercentage uint64
}

// checkAndUpdate charges |newWeight - oldWeight| against the current churn
// window and applies the net weight change to the tracked total. The delta is
// charged unsigned in both directions so alternating add/remove sequences
// can't be used to dodge the limit.
//
// [p] is mutated in place; the caller persists it only if the whole operation
// commits.
func (c *churnTracker) checkAndUpdate(p *state.ChurnPeriod, newWeight, oldWeight uint64) error {
	delta := newWeight - oldWeight
	if oldWeight > newWeight {
		delta = oldWeight - newWeight
	}

	now := uint64(c.clock.Time().Unix())
	if now >= p.StartTime+uint64(c.period.Seconds()) {
		// The previous window has elapsed; open a fresh one measured against
		// the current total weight.
		p.StartTime = now
		p.InitialWeight = p.TotalWeight
		p.ChurnAmount = delta
	} else {
		churnAmount, err := safemath.Add(p.ChurnAmount, delta)
		if err != nil {
			return fmt.Errorf("%w: churn amount overflow", ErrChurnRateExceeded)
		}
		p.ChurnAmount = churnAmount
	}

	churnScaled, err := safemath.Mul(p.ChurnAmount, 100)
	if err != nil {
		return fmt.Errorf("%w: churn amount overflow", ErrChurnRateExceeded)
	}
	limit, err := safemath.Mul(c.maximumPercentage, p.InitialWeight)
	if err != nil {
		return fmt.Errorf("%w: churn limit overflow", ErrChurnRateExceeded)
	}
	if churnScaled > limit {
		return fmt.Errorf(
			"%w: churned %d of initial weight %d exceeds %d%%",
			ErrChurnRateExceeded,
			p.ChurnAmount,
			p.InitialWeight,
			c.maximumPercentage,
		)
	}

	totalWeight, err := safemath.Add(p.TotalWeight, newWeight)
	if err != nil {
		return fmt.Errorf("%w: total weight overflow", ErrChurnRateExceeded)
	}
	totalWeight, err = safemath.Sub(totalWeight, oldWeight)
	if err != nil {
		return fmt.Errorf("%w: total weight underflow", ErrChurnRateExceeded)
	}
	p.TotalWeight = totalWeight

	// Refuse to shrink the set to a total weight from which even a 1 unit
	// change would always exceed the percentage bound; the set would be
	// unrecoverable.
	if err := verifyChurnRecoverable(totalWeight, c.maximumPercentage); err != nil {
		return err
	}
	return nil
}

// deductWeight removes weight from the tracked total without charging churn.
// Used when a registration that was already charged is invalidated by the
// P-Chain before ever activating.
func deductWeight(p *state.ChurnPeriod, weight uint64) error {
	totalWeight, err := safemath.Sub(p.TotalWeight, weight)
	if err != nil {
		return fmt.Errorf("%w: total weight underflow", ErrChurnRateExceeded)
	}
	p.TotalWeight = totalWeight
	return nil
}

// verifyChurnRecoverable errors if [totalWeight] is so low that a unit weight
// change would always violate the [maximumPercentage] bound.
func verifyChurnRecoverable(totalWeight, maximumPercentage uint64) error {
	scaled, err := safemath.Mul(totalWeight, maximumPercentage)
	if err != nil {
		return nil //nolint:nilerr // an overflowing total weight is trivially recoverable
	}
	if scaled < 100 {
		return fmt.Errorf(
			"%w: total weight %d with maximum churn percentage %d",
			ErrTotalWeightTooLow,
			totalWeight,
			maximumPercentage,
		)
	}
	return nil
}
