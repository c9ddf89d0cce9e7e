// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
)

// Delegator is the record of one delegation to a validator.
type Delegator struct {
	// DelegationID is not serialized because it is used as the key in the
	// database.
	DelegationID ids.ID

	Status Status `serialize:"true"`

	// ValidationID of the validator this stake is delegated to.
	ValidationID ids.ID `serialize:"true"`

	Owner           ids.ShortID `serialize:"true"`
	RewardRecipient ids.ShortID `serialize:"true"`

	Weight uint64 `serialize:"true"`

	// StakedAmount is the locked value backing [Weight]. It is remembered
	// here because the weight conversion is lossy.
	StakedAmount uint64 `serialize:"true"`

	// StartTime is the unix timestamp, in seconds, when the delegation
	// became active. 0 while pending.
	StartTime uint64 `serialize:"true"`

	// EndTime is the unix timestamp, in seconds, when removal was initiated.
	EndTime uint64 `serialize:"true"`

	// StartingNonce is the validator weight-update nonce issued when this
	// delegation was initiated. The delegation may activate once the
	// validator's ReceivedNonce reaches it.
	StartingNonce uint64 `serialize:"true"`

	// EndingNonce is the validator weight-update nonce issued when removal
	// of this delegation was initiated.
	EndingNonce uint64 `serialize:"true"`

	// RewardEligible records, at removal initiation, whether the host
	// validator's uptime cleared the reward threshold. Ineligible removals
	// forfeit the delegation's rewards.
	RewardEligible bool `serialize:"true"`
}

func getDelegator(db database.KeyValueReader, delegationID ids.ID) (*Delegator, error) {
	bytes, err := db.Get(delegationID[:])
	if err != nil {
		return nil, err
	}

	del := &Delegator{
		DelegationID: delegationID,
	}
	if _, err := Codec.Unmarshal(bytes, del); err != nil {
		return nil, fmt.Errorf("failed to unmarshal delegator: %w", err)
	}
	return del, nil
}

func putDelegator(db database.KeyValueWriter, del *Delegator) error {
	bytes, err := Codec.Marshal(CodecVersion, del)
	if err != nil {
		return fmt.Errorf("failed to marshal delegator: %w", err)
	}
	return db.Put(del.DelegationID[:], bytes)
}
