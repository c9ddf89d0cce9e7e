// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
)

func TestConfigDefaults(t *testing.T) {
	require := require.New(t)

	subnetID := ids.GenerateTestID()
	chainID := ids.GenerateTestID()

	v, err := BuildViper(BuildFlagSet(), []string{
		"--subnet-id", subnetID.String(),
		"--manager-chain-id", chainID.String(),
		"--manager-address", "0xdeadbeef",
	})
	require.NoError(err)

	cfg, err := New(v)
	require.NoError(err)
	require.Equal("db", cfg.DBPath)
	require.Equal(uint16(9850), cfg.HTTPPort)
	require.Equal(logging.Info, cfg.LogLevel)

	require.Equal(subnetID, cfg.Manager.SubnetID)
	require.Equal(chainID, cfg.Manager.ManagerChainID)
	require.Equal([]byte{0xde, 0xad, 0xbe, 0xef}, cfg.Manager.ManagerAddress)
	require.Equal(time.Hour, cfg.Manager.ChurnPeriod)
	require.Equal(uint64(20), cfg.Manager.MaximumChurnPercentage)

	require.Equal(24*time.Hour, cfg.Staking.MinimumStakeDuration)
	require.Equal(ids.ShortEmpty, cfg.Staking.Admin)
}

func TestConfigFlagOverrides(t *testing.T) {
	require := require.New(t)

	admin := ids.GenerateTestShortID()
	v, err := BuildViper(BuildFlagSet(), []string{
		"--subnet-id", ids.GenerateTestID().String(),
		"--manager-chain-id", ids.GenerateTestID().String(),
		"--manager-address", "0102",
		"--http-port", "8080",
		"--log-level", "debug",
		"--churn-period", "30m",
		"--maximum-churn-percentage", "10",
		"--minimum-stake-amount", "500",
		"--admin", admin.String(),
	})
	require.NoError(err)

	cfg, err := New(v)
	require.NoError(err)
	require.Equal(uint16(8080), cfg.HTTPPort)
	require.Equal(logging.Debug, cfg.LogLevel)
	require.Equal(30*time.Minute, cfg.Manager.ChurnPeriod)
	require.Equal(uint64(10), cfg.Manager.MaximumChurnPercentage)
	require.Equal(uint64(500), cfg.Staking.MinimumStakeAmount)
	require.Equal(admin, cfg.Staking.Admin)
}

func TestConfigRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{
			name: "missing subnetID",
			args: []string{
				"--manager-chain-id", ids.GenerateTestID().String(),
				"--manager-address", "0102",
			},
		},
		{
			name: "missing manager address",
			args: []string{
				"--subnet-id", ids.GenerateTestID().String(),
				"--manager-chain-id", ids.GenerateTestID().String(),
			},
		},
		{
			name: "churn percentage over the limit",
			args: []string{
				"--subnet-id", ids.GenerateTestID().String(),
				"--manager-chain-id", ids.GenerateTestID().String(),
				"--manager-address", "0102",
				"--maximum-churn-percentage", "21",
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)

			v, err := BuildViper(BuildFlagSet(), test.args)
			require.NoError(err)

			_, err = New(v)
			require.Error(err)
		})
	}
}
