// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package staking

import (
	"math"
	"math/big"
)

// SecondsPerYear is the denominator year used by rate-based calculators.
const SecondsPerYear = 365 * 24 * 60 * 60

// RewardCalculator determines the reward earned by a stake over its tenure.
// [uptimeSeconds] is the highest attested uptime of the backing validator;
// eligibility gating happens before the calculator is consulted.
type RewardCalculator interface {
	CalculateReward(stakedAmount, startTime, endTime, uptimeSeconds uint64) uint64
}

// LinearCalculator pays a flat annual rate on the staked amount, prorated to
// the stake's tenure.
type LinearCalculator struct {
	// AnnualRateBips is the yearly reward rate in basis points of the staked
	// amount.
	AnnualRateBips uint64
}

func (c LinearCalculator) CalculateReward(stakedAmount, startTime, endTime, _ uint64) uint64 {
	if endTime <= startTime {
		return 0
	}
	duration := endTime - startTime

	reward := new(big.Int).SetUint64(stakedAmount)
	reward.Mul(reward, new(big.Int).SetUint64(c.AnnualRateBips))
	reward.Mul(reward, new(big.Int).SetUint64(duration))
	reward.Div(reward, big.NewInt(BIPSConversionFactor*SecondsPerYear))
	if !reward.IsUint64() {
		return math.MaxUint64
	}
	return reward.Uint64()
}

// ZeroCalculator pays nothing. Used while the manager operates in
// admin-gated mode.
type ZeroCalculator struct{}

func (ZeroCalculator) CalculateReward(uint64, uint64, uint64, uint64) uint64 {
	return 0
}
