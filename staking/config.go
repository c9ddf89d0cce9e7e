// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package staking

import (
	"fmt"
	"time"

	"github.com/ava-labs/avalanchego/ids"

	safemath "github.com/ava-labs/avalanchego/utils/math"
)

const (
	// BIPSConversionFactor converts basis points to a fraction.
	BIPSConversionFactor = 10_000

	// MaximumStakeMultiplierLimit bounds how far delegations may inflate a
	// validator past its own stake.
	MaximumStakeMultiplierLimit = 10

	// DefaultUptimeThresholdPercentage of a validator's tenure that must be
	// attested as up for its stake to earn rewards.
	DefaultUptimeThresholdPercentage = 80
)

type Config struct {
	// MinimumStakeAmount and MaximumStakeAmount bound the value locked behind
	// a single validator or delegation.
	MinimumStakeAmount uint64 `json:"minimumStakeAmount"`
	MaximumStakeAmount uint64 `json:"maximumStakeAmount"`

	// MinimumStakeDuration is the least time any stake must remain before a
	// non-forced removal is allowed. Validators may register with a longer
	// personal minimum, never a shorter one.
	MinimumStakeDuration time.Duration `json:"minimumStakeDuration"`

	// MinimumDelegationFeeBips is the lowest delegation fee, in basis points,
	// a validator may charge.
	MinimumDelegationFeeBips uint16 `json:"minimumDelegationFeeBips"`

	// MaximumStakeMultiplier caps a validator's total weight, delegations
	// included, at MaximumStakeMultiplier times its starting weight.
	MaximumStakeMultiplier uint8 `json:"maximumStakeMultiplier"`

	// WeightToValueFactor is the locked value behind one unit of validator
	// weight. Stake below the factor truncates to zero weight and is
	// rejected.
	WeightToValueFactor uint64 `json:"weightToValueFactor"`

	// UptimeThresholdPercentage of a stake's tenure that must be attested as
	// up for it to earn rewards.
	UptimeThresholdPercentage uint64 `json:"uptimeThresholdPercentage"`

	// Admin is the sole identity allowed to manage validators until
	// TransferToPermissionless. An empty admin starts the manager
	// permissionless.
	Admin ids.ShortID `json:"admin"`
}

func (c *Config) Verify() error {
	switch {
	case c.MinimumStakeAmount == 0:
		return fmt.Errorf("%w: minimum stake amount must be non-zero", ErrInvalidConfig)
	case c.MaximumStakeAmount < c.MinimumStakeAmount:
		return fmt.Errorf(
			"%w: maximum stake amount %d below minimum %d",
			ErrInvalidConfig,
			c.MaximumStakeAmount,
			c.MinimumStakeAmount,
		)
	case c.MinimumDelegationFeeBips > BIPSConversionFactor:
		return fmt.Errorf(
			"%w: minimum delegation fee %d bips exceeds %d",
			ErrInvalidConfig,
			c.MinimumDelegationFeeBips,
			BIPSConversionFactor,
		)
	case c.MaximumStakeMultiplier == 0 || c.MaximumStakeMultiplier > MaximumStakeMultiplierLimit:
		return fmt.Errorf(
			"%w: maximum stake multiplier %d outside (0, %d]",
			ErrInvalidConfig,
			c.MaximumStakeMultiplier,
			MaximumStakeMultiplierLimit,
		)
	case c.WeightToValueFactor == 0:
		return fmt.Errorf("%w: weight to value factor must be non-zero", ErrInvalidConfig)
	case c.UptimeThresholdPercentage > 100:
		return fmt.Errorf(
			"%w: uptime threshold %d%% exceeds 100%%",
			ErrInvalidConfig,
			c.UptimeThresholdPercentage,
		)
	default:
		return nil
	}
}

// ValueToWeight converts locked value to validator weight. The division
// truncates; StakedAmount records the exact value so nothing is lost on
// refund.
func (c *Config) ValueToWeight(value uint64) (uint64, error) {
	weight := value / c.WeightToValueFactor
	if weight == 0 {
		return 0, fmt.Errorf(
			"%w: %d is below the weight factor %d",
			ErrInvalidStakeAmount,
			value,
			c.WeightToValueFactor,
		)
	}
	return weight, nil
}

// WeightToValue converts validator weight back to locked value.
func (c *Config) WeightToValue(weight uint64) (uint64, error) {
	return safemath.Mul(weight, c.WeightToValueFactor)
}
