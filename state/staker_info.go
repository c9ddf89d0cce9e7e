// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
)

// StakerInfo is the staking-layer metadata of a validator, tracked alongside
// the lifecycle record.
type StakerInfo struct {
	Owner           ids.ShortID `serialize:"true"`
	RewardRecipient ids.ShortID `serialize:"true"`

	// DelegationFeeBips is the fee, in basis points, this validator charges
	// on delegator rewards.
	DelegationFeeBips uint16 `serialize:"true"`

	// MinStakeDuration is the minimum number of seconds this stake must
	// remain before a non-forced removal is allowed.
	MinStakeDuration uint64 `serialize:"true"`

	// StakedAmount is the locked value backing the validator's own weight.
	StakedAmount uint64 `serialize:"true"`

	// AccruedDelegationFees is the total delegation fee amount withheld from
	// delegator payouts and not yet claimed by the validator owner.
	AccruedDelegationFees uint64 `serialize:"true"`

	// RewardEligible records, at removal initiation, whether the validator's
	// uptime cleared the reward threshold. Ineligible removals forfeit the
	// validator's rewards.
	RewardEligible bool `serialize:"true"`
}

func getStakerInfo(db database.KeyValueReader, validationID ids.ID) (*StakerInfo, error) {
	bytes, err := db.Get(validationID[:])
	if err != nil {
		return nil, err
	}

	info := &StakerInfo{}
	if _, err := Codec.Unmarshal(bytes, info); err != nil {
		return nil, fmt.Errorf("failed to unmarshal staker info: %w", err)
	}
	return info, nil
}

func putStakerInfo(db database.KeyValueWriter, validationID ids.ID, info *StakerInfo) error {
	bytes, err := Codec.Marshal(CodecVersion, info)
	if err != nil {
		return fmt.Errorf("failed to marshal staker info: %w", err)
	}
	return db.Put(validationID[:], bytes)
}
