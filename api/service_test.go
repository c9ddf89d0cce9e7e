// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/crypto/bls"
	"github.com/ava-labs/avalanchego/utils/logging"

	"github.com/ava-labs/l1-validator-manager/message"
	"github.com/ava-labs/l1-validator-manager/staking"
	"github.com/ava-labs/l1-validator-manager/state"
	"github.com/ava-labs/l1-validator-manager/validatormanager"

	avajson "github.com/ava-labs/avalanchego/utils/json"
)

type testMessenger struct{}

func (*testMessenger) Send([]byte) error {
	return nil
}

// newTestService bootstraps a service over 3 initial validators of weight 100
// and returns it with their validationIDs.
func newTestService(t *testing.T) (*Service, []ids.ID) {
	t.Helper()
	require := require.New(t)

	coreCfg := validatormanager.Config{
		SubnetID:               ids.GenerateTestID(),
		ManagerChainID:         ids.GenerateTestID(),
		ManagerAddress:         []byte{0x01, 0x02},
		PChainID:               ids.GenerateTestID(),
		ChurnPeriod:            time.Hour,
		MaximumChurnPercentage: 20,
	}
	s := state.New(memdb.New())
	core, err := validatormanager.New(
		coreCfg,
		logging.NoLog{},
		prometheus.NewRegistry(),
		s,
		&testMessenger{},
	)
	require.NoError(err)
	core.Clock().Set(time.Unix(1_000_000, 0))

	stakingManager, err := staking.New(
		staking.Config{
			MinimumStakeAmount:        100,
			MaximumStakeAmount:        10_000,
			MinimumStakeDuration:      time.Hour,
			MinimumDelegationFeeBips:  100,
			MaximumStakeMultiplier:    5,
			WeightToValueFactor:       10,
			UptimeThresholdPercentage: 80,
		},
		logging.NoLog{},
		prometheus.NewRegistry(),
		core,
		s,
		staking.NewLedger(),
		staking.ZeroCalculator{},
	)
	require.NoError(err)

	data := &message.ConversionData{
		SubnetID:       coreCfg.SubnetID,
		ManagerChainID: coreCfg.ManagerChainID,
		ManagerAddress: coreCfg.ManagerAddress,
	}
	for i := 0; i < 3; i++ {
		var pk [bls.PublicKeyLen]byte
		data.Validators = append(data.Validators, message.ConversionValidator{
			NodeID:       ids.GenerateTestNodeID().Bytes(),
			BLSPublicKey: pk,
			Weight:       100,
		})
	}
	conversionID, err := data.ConversionID()
	require.NoError(err)
	convAck, err := message.NewSubnetToL1Conversion(conversionID)
	require.NoError(err)
	require.NoError(core.InitializeValidatorSet(data, validatormanager.VerifiedMessage{
		SourceChainID: coreCfg.PChainID,
		Payload:       convAck.Bytes(),
	}))

	validationIDs := make([]ids.ID, 3)
	for i := range validationIDs {
		validationIDs[i] = message.ConversionValidationID(coreCfg.SubnetID, uint32(i))
	}
	return &Service{
		log:     logging.NoLog{},
		core:    core,
		staking: stakingManager,
	}, validationIDs
}

func TestGetValidator(t *testing.T) {
	require := require.New(t)

	service, validationIDs := newTestService(t)

	reply := GetValidatorReply{}
	require.NoError(service.GetValidator(nil, &GetValidatorArgs{
		ValidationID: validationIDs[0],
	}, &reply))
	require.Equal(validationIDs[0], reply.Validator.ValidationID)
	require.Equal(state.Active.String(), reply.Validator.Status)
	require.Equal(avajson.Uint64(100), reply.Validator.Weight)

	err := service.GetValidator(nil, &GetValidatorArgs{
		ValidationID: ids.GenerateTestID(),
	}, &reply)
	require.ErrorIs(err, validatormanager.ErrUnknownValidation)
}

func TestGetNodeValidation(t *testing.T) {
	require := require.New(t)

	service, validationIDs := newTestService(t)

	vdr, err := service.core.GetValidator(validationIDs[1])
	require.NoError(err)

	reply := GetNodeValidationReply{}
	require.NoError(service.GetNodeValidation(nil, &GetNodeValidationArgs{
		NodeID: vdr.NodeID,
	}, &reply))
	require.True(reply.Registered)
	require.Equal(validationIDs[1], reply.ValidationID)

	require.NoError(service.GetNodeValidation(nil, &GetNodeValidationArgs{
		NodeID: ids.GenerateTestNodeID(),
	}, &reply))
	require.False(reply.Registered)
}

func TestGetTotalWeightAndChurnUsage(t *testing.T) {
	require := require.New(t)

	service, _ := newTestService(t)

	weightReply := GetTotalWeightReply{}
	require.NoError(service.GetTotalWeight(nil, nil, &weightReply))
	require.Equal(avajson.Uint64(300), weightReply.TotalWeight)

	churnReply := GetChurnUsageReply{}
	require.NoError(service.GetChurnUsage(nil, nil, &churnReply))
	require.Equal(avajson.Uint64(300), churnReply.InitialWeight)
	require.Equal(avajson.Uint64(0), churnReply.ChurnAmount)
}

func TestGetUptime(t *testing.T) {
	require := require.New(t)

	service, validationIDs := newTestService(t)

	reply := GetUptimeReply{}
	require.NoError(service.GetUptime(nil, &GetUptimeArgs{
		ValidationID: validationIDs[0],
	}, &reply))
	require.Equal(avajson.Uint64(0), reply.Uptime)
}

func TestGetDelegatorUnknown(t *testing.T) {
	service, _ := newTestService(t)

	reply := GetDelegatorReply{}
	err := service.GetDelegator(nil, &GetDelegatorArgs{
		DelegationID: ids.GenerateTestID(),
	}, &reply)
	require.ErrorIs(t, err, staking.ErrUnknownDelegation)
}

func TestListValidators(t *testing.T) {
	require := require.New(t)

	service, validationIDs := newTestService(t)

	reply := ListValidatorsReply{}
	require.NoError(service.ListValidators(nil, nil, &reply))
	require.Len(reply.Validators, len(validationIDs))

	seen := make(map[ids.ID]bool)
	for _, vdr := range reply.Validators {
		seen[vdr.ValidationID] = true
	}
	for _, validationID := range validationIDs {
		require.True(seen[validationID])
	}
}