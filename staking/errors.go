// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package staking

import "errors"

var (
	ErrInvalidConfig = errors.New("invalid staking configuration")

	// Input validation errors.
	ErrInvalidStakeAmount      = errors.New("stake amount outside configured bounds")
	ErrInvalidDelegationFee    = errors.New("delegation fee below configured minimum")
	ErrInvalidMinStakeDuration = errors.New("minimum stake duration below configured minimum")
	ErrStakeMultiplierExceeded = errors.New("validator weight would exceed the stake multiplier cap")
	ErrInvalidRewardRecipient  = errors.New("reward recipient must be non-empty")

	// Authorization errors.
	ErrUnauthorized          = errors.New("caller is not authorized")
	ErrNotPermissionless     = errors.New("manager has not been transferred to permissionless operation")
	ErrAlreadyPermissionless = errors.New("manager is already permissionless")

	// State-conflict errors.
	ErrUnknownDelegation      = errors.New("unknown delegationID")
	ErrInvalidDelegatorStatus = errors.New("invalid delegator status")
	ErrMinStakeDurationNotMet = errors.New("minimum stake duration not met")
	ErrUptimeBelowThreshold   = errors.New("uptime below reward threshold")
	ErrNotStakingValidator    = errors.New("validator has no staking record")

	// Ledger errors.
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInsufficientLocked  = errors.New("insufficient locked balance")
)
