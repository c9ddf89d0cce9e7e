// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config builds the daemon configuration from flags, environment
// variables and an optional config file, in that order of precedence.
package config

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/constants"
	"github.com/ava-labs/avalanchego/utils/logging"

	"github.com/ava-labs/l1-validator-manager/staking"
	"github.com/ava-labs/l1-validator-manager/validatormanager"
)

const (
	ConfigFileKey = "config-file"

	DBPathKey   = "db-dir"
	HTTPHostKey = "http-host"
	HTTPPortKey = "http-port"
	LogLevelKey = "log-level"

	SubnetIDKey               = "subnet-id"
	ManagerChainIDKey         = "manager-chain-id"
	ManagerAddressKey         = "manager-address"
	ChurnPeriodKey            = "churn-period"
	MaximumChurnPercentageKey = "maximum-churn-percentage"

	MinimumStakeAmountKey        = "minimum-stake-amount"
	MaximumStakeAmountKey        = "maximum-stake-amount"
	MinimumStakeDurationKey      = "minimum-stake-duration"
	MinimumDelegationFeeBipsKey  = "minimum-delegation-fee-bips"
	MaximumStakeMultiplierKey    = "maximum-stake-multiplier"
	WeightToValueFactorKey       = "weight-to-value-factor"
	UptimeThresholdPercentageKey = "uptime-threshold-percentage"
	RewardRateBipsKey            = "reward-rate-bips"
	AdminKey                     = "admin"

	envPrefix = "L1VM"
)

type Config struct {
	DBPath   string
	HTTPHost string
	HTTPPort uint16
	LogLevel logging.Level

	// RewardRateBips is the annual staking reward rate in basis points.
	RewardRateBips uint64

	Manager validatormanager.Config
	Staking staking.Config
}

// BuildFlagSet declares every daemon flag with its default.
func BuildFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("l1-validator-manager", pflag.ContinueOnError)
	fs.String(ConfigFileKey, "", "Optional JSON config file; flags and environment take precedence")

	fs.String(DBPathKey, "db", "Directory the validator database is persisted in")
	fs.String(HTTPHostKey, "127.0.0.1", "Host the API server listens on")
	fs.Uint16(HTTPPortKey, 9850, "Port the API server listens on")
	fs.String(LogLevelKey, "info", "Log level")

	fs.String(SubnetIDKey, "", "ID of the L1 this manager runs the validator set of")
	fs.String(ManagerChainIDKey, "", "ID of the chain this manager is authoritative on")
	fs.String(ManagerAddressKey, "", "Hex address of this manager on its chain")
	fs.Duration(ChurnPeriodKey, time.Hour, "Length of one churn window")
	fs.Uint64(MaximumChurnPercentageKey, 20, "Maximum percentage of weight churned per window")

	fs.Uint64(MinimumStakeAmountKey, 1, "Minimum value locked behind one validator or delegation")
	fs.Uint64(MaximumStakeAmountKey, 1_000_000, "Maximum value locked behind one validator or delegation")
	fs.Duration(MinimumStakeDurationKey, 24*time.Hour, "Minimum time a stake must remain")
	fs.Uint16(MinimumDelegationFeeBipsKey, 100, "Lowest delegation fee a validator may charge, in basis points")
	fs.Uint8(MaximumStakeMultiplierKey, 5, "Cap on total validator weight as a multiple of its starting weight")
	fs.Uint64(WeightToValueFactorKey, 1, "Locked value behind one unit of validator weight")
	fs.Uint64(UptimeThresholdPercentageKey, staking.DefaultUptimeThresholdPercentage, "Percentage of a tenure that must be attested as up to earn rewards")
	fs.Uint64(RewardRateBipsKey, 0, "Annual staking reward rate in basis points")
	fs.String(AdminKey, "", "Admin address; empty starts the manager permissionless")
	return fs
}

// BuildViper parses [args] against [fs] and layers environment variables and
// the optional config file underneath.
func BuildViper(fs *pflag.FlagSet, args []string) (*viper.Viper, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}

	if path := v.GetString(ConfigFileKey); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %q: %w", path, err)
		}
	}
	return v, nil
}

// New builds and verifies the daemon configuration from [v].
func New(v *viper.Viper) (Config, error) {
	cfg := Config{
		DBPath:         v.GetString(DBPathKey),
		HTTPHost:       v.GetString(HTTPHostKey),
		HTTPPort:       uint16(v.GetUint32(HTTPPortKey)),
		RewardRateBips: v.GetUint64(RewardRateBipsKey),
	}

	logLevel, err := logging.ToLevel(v.GetString(LogLevelKey))
	if err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", LogLevelKey, err)
	}
	cfg.LogLevel = logLevel

	subnetID, err := ids.FromString(v.GetString(SubnetIDKey))
	if err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", SubnetIDKey, err)
	}
	managerChainID, err := ids.FromString(v.GetString(ManagerChainIDKey))
	if err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", ManagerChainIDKey, err)
	}
	managerAddress, err := hex.DecodeString(strings.TrimPrefix(v.GetString(ManagerAddressKey), "0x"))
	if err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", ManagerAddressKey, err)
	}
	cfg.Manager = validatormanager.Config{
		SubnetID:               subnetID,
		ManagerChainID:         managerChainID,
		ManagerAddress:         managerAddress,
		PChainID:               constants.PlatformChainID,
		ChurnPeriod:            v.GetDuration(ChurnPeriodKey),
		MaximumChurnPercentage: v.GetUint64(MaximumChurnPercentageKey),
	}
	if err := cfg.Manager.Verify(); err != nil {
		return Config{}, err
	}

	admin := ids.ShortEmpty
	if adminStr := v.GetString(AdminKey); adminStr != "" {
		admin, err = ids.ShortFromString(adminStr)
		if err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", AdminKey, err)
		}
	}
	cfg.Staking = staking.Config{
		MinimumStakeAmount:        v.GetUint64(MinimumStakeAmountKey),
		MaximumStakeAmount:        v.GetUint64(MaximumStakeAmountKey),
		MinimumStakeDuration:      v.GetDuration(MinimumStakeDurationKey),
		MinimumDelegationFeeBips:  uint16(v.GetUint32(MinimumDelegationFeeBipsKey)),
		MaximumStakeMultiplier:    uint8(v.GetUint32(MaximumStakeMultiplierKey)),
		WeightToValueFactor:       v.GetUint64(WeightToValueFactorKey),
		UptimeThresholdPercentage: v.GetUint64(UptimeThresholdPercentageKey),
		Admin:                     admin,
	}
	if err := cfg.Staking.Verify(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
