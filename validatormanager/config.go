// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package validatormanager

import (
	"errors"
	"fmt"
	"time"

	"github.com/ava-labs/avalanchego/ids"
)

const (
	// MaximumChurnPercentageLimit bounds how permissive the churn limiter
	// may be configured.
	MaximumChurnPercentageLimit = 20

	// MaximumRegistrationExpiryWindow is how far into the future a
	// registration expiry may be set. It mirrors the maximum message
	// validity window the P-Chain accepts.
	MaximumRegistrationExpiryWindow = 2 * 24 * time.Hour
)

var (
	errZeroSubnetID           = errors.New("subnetID must be set")
	errInvalidChurnPercentage = fmt.Errorf("maximum churn percentage must be in (0, %d]", MaximumChurnPercentageLimit)
	errMissingManagerAddress  = errors.New("manager address must be set")
)

type Config struct {
	// SubnetID of the L1 this manager controls.
	SubnetID ids.ID `json:"subnetID"`

	// ManagerChainID is the chain this manager is deployed on. The P-Chain
	// conversion data must reference it.
	ManagerChainID ids.ID `json:"managerChainID"`

	// ManagerAddress is this manager's address on [ManagerChainID].
	ManagerAddress []byte `json:"managerAddress"`

	// PChainID is the source chain acknowledgements must originate from.
	PChainID ids.ID `json:"pChainID"`

	// ChurnPeriod is the length of one churn window. A zero period makes
	// every weight change open a fresh window, turning the limiter into a
	// per-change percentage cap.
	ChurnPeriod time.Duration `json:"churnPeriod"`

	// MaximumChurnPercentage of the window's initial total weight that may
	// change within one churn window.
	MaximumChurnPercentage uint64 `json:"maximumChurnPercentage"`
}

func (c *Config) Verify() error {
	switch {
	case c.SubnetID == ids.Empty:
		return errZeroSubnetID
	case c.MaximumChurnPercentage == 0 || c.MaximumChurnPercentage > MaximumChurnPercentageLimit:
		return errInvalidChurnPercentage
	case len(c.ManagerAddress) == 0:
		return errMissingManagerAddress
	}
	return nil
}
