// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package staking

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLinearCalculator(t *testing.T) {
	require := require.New(t)

	calc := LinearCalculator{AnnualRateBips: 1000}

	// 10% APR over exactly one year.
	require.Equal(uint64(100), calc.CalculateReward(1000, 0, SecondsPerYear, 0))

	// Prorated to half a year.
	require.Equal(uint64(50), calc.CalculateReward(1000, 0, SecondsPerYear/2, 0))

	// Zero or inverted tenure earns nothing.
	require.Zero(calc.CalculateReward(1000, 100, 100, 0))
	require.Zero(calc.CalculateReward(1000, 100, 50, 0))
}

func TestZeroCalculator(t *testing.T) {
	require.Zero(t, ZeroCalculator{}.CalculateReward(1000, 0, SecondsPerYear, SecondsPerYear))
}
