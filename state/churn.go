// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"fmt"

	"github.com/ava-labs/avalanchego/database"
)

// ChurnPeriod is the current sliding window of the churn limiter.
type ChurnPeriod struct {
	// StartTime is the unix timestamp, in seconds, when this window opened.
	StartTime uint64 `serialize:"true"`

	// InitialWeight is the total validator weight when the window opened.
	// The churn percentage is measured against it.
	InitialWeight uint64 `serialize:"true"`

	// TotalWeight is the current total validator weight.
	TotalWeight uint64 `serialize:"true"`

	// ChurnAmount is the cumulative unsigned weight delta applied inside
	// this window.
	ChurnAmount uint64 `serialize:"true"`
}

var churnPeriodKey = []byte("churnPeriod")

func getChurnPeriod(db database.KeyValueReader) (*ChurnPeriod, error) {
	bytes, err := db.Get(churnPeriodKey)
	if err != nil {
		return nil, err
	}

	period := &ChurnPeriod{}
	if _, err := Codec.Unmarshal(bytes, period); err != nil {
		return nil, fmt.Errorf("failed to unmarshal churn period: %w", err)
	}
	return period, nil
}

func putChurnPeriod(db database.KeyValueWriter, period *ChurnPeriod) error {
	bytes, err := Codec.Marshal(CodecVersion, period)
	if err != nil {
		return fmt.Errorf("failed to marshal churn period: %w", err)
	}
	return db.Put(churnPeriodKey, bytes)
}
