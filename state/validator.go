// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
)

// Validator is the record of one validator's tenure on the L1.
type Validator struct {
	// ValidationID is not serialized because it is used as the key in the
	// database, so it doesn't need to be stored in the value.
	ValidationID ids.ID

	Status Status     `serialize:"true"`
	NodeID ids.NodeID `serialize:"true"`

	// StartingWeight is the weight the validator was registered with. It is
	// the weight the churn tracker charged at registration time.
	StartingWeight uint64 `serialize:"true"`

	// SentNonce is the nonce of the last weight update sent to the P-Chain.
	// It only ever increases.
	SentNonce uint64 `serialize:"true"`

	// ReceivedNonce is the highest nonce the P-Chain has acknowledged. It
	// never exceeds SentNonce.
	ReceivedNonce uint64 `serialize:"true"`

	// Weight currently attributed to this validation, including the weight
	// of any active delegators.
	Weight uint64 `serialize:"true"`

	// StartTime is the unix timestamp, in seconds, when the validator became
	// active. 0 while the registration is pending.
	StartTime uint64 `serialize:"true"`

	// EndTime is the unix timestamp, in seconds, when removal was initiated.
	// 0 before then.
	EndTime uint64 `serialize:"true"`
}

func getValidator(db database.KeyValueReader, validationID ids.ID) (*Validator, error) {
	bytes, err := db.Get(validationID[:])
	if err != nil {
		return nil, err
	}

	vdr := &Validator{
		ValidationID: validationID,
	}
	if _, err := Codec.Unmarshal(bytes, vdr); err != nil {
		return nil, fmt.Errorf("failed to unmarshal validator: %w", err)
	}
	return vdr, nil
}

func putValidator(db database.KeyValueWriter, vdr *Validator) error {
	bytes, err := Codec.Marshal(CodecVersion, vdr)
	if err != nil {
		return fmt.Errorf("failed to marshal validator: %w", err)
	}
	return db.Put(vdr.ValidationID[:], bytes)
}
