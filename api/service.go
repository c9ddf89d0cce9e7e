// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package api exposes the validator manager's state over JSON-RPC. The
// service is read-only; mutations happen through the managers' Go API, driven
// by the message relay.
package api

import (
	"net/http"

	"github.com/gorilla/rpc/v2"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"

	"github.com/ava-labs/l1-validator-manager/staking"
	"github.com/ava-labs/l1-validator-manager/state"
	"github.com/ava-labs/l1-validator-manager/validatormanager"

	avajson "github.com/ava-labs/avalanchego/utils/json"
)

// Service is the read-only validator manager API.
type Service struct {
	log     logging.Logger
	core    *validatormanager.Manager
	staking *staking.Manager
}

// NewService returns an HTTP handler serving the validator manager API under
// the "validatormanager" namespace.
func NewService(
	log logging.Logger,
	core *validatormanager.Manager,
	stakingManager *staking.Manager,
) (http.Handler, error) {
	server := rpc.NewServer()
	codec := avajson.NewCodec()
	server.RegisterCodec(codec, "application/json")
	server.RegisterCodec(codec, "application/json;charset=UTF-8")
	return server, server.RegisterService(&Service{
		log:     log,
		core:    core,
		staking: stakingManager,
	}, "validatormanager")
}

// APIValidator is the JSON shape of a validator record.
type APIValidator struct {
	ValidationID   ids.ID         `json:"validationID"`
	NodeID         ids.NodeID     `json:"nodeID"`
	Status         string         `json:"status"`
	StartingWeight avajson.Uint64 `json:"startingWeight"`
	Weight         avajson.Uint64 `json:"weight"`
	StartTime      avajson.Uint64 `json:"startTime"`
	EndTime        avajson.Uint64 `json:"endTime"`
	SentNonce      avajson.Uint64 `json:"sentNonce"`
	ReceivedNonce  avajson.Uint64 `json:"receivedNonce"`
}

func newAPIValidator(vdr state.Validator) APIValidator {
	return APIValidator{
		ValidationID:   vdr.ValidationID,
		NodeID:         vdr.NodeID,
		Status:         vdr.Status.String(),
		StartingWeight: avajson.Uint64(vdr.StartingWeight),
		Weight:         avajson.Uint64(vdr.Weight),
		StartTime:      avajson.Uint64(vdr.StartTime),
		EndTime:        avajson.Uint64(vdr.EndTime),
		SentNonce:      avajson.Uint64(vdr.SentNonce),
		ReceivedNonce:  avajson.Uint64(vdr.ReceivedNonce),
	}
}

type GetValidatorArgs struct {
	ValidationID ids.ID `json:"validationID"`
}

type GetValidatorReply struct {
	Validator APIValidator `json:"validator"`
}

func (s *Service) GetValidator(_ *http.Request, args *GetValidatorArgs, reply *GetValidatorReply) error {
	s.log.Debug("API called: GetValidator")

	vdr, err := s.core.GetValidator(args.ValidationID)
	if err != nil {
		return err
	}
	reply.Validator = newAPIValidator(vdr)
	return nil
}

type GetNodeValidationArgs struct {
	NodeID ids.NodeID `json:"nodeID"`
}

type GetNodeValidationReply struct {
	ValidationID ids.ID `json:"validationID"`
	Registered   bool   `json:"registered"`
}

// GetNodeValidation returns the non-terminal validationID registered for a
// nodeID, if there is one.
func (s *Service) GetNodeValidation(_ *http.Request, args *GetNodeValidationArgs, reply *GetNodeValidationReply) error {
	s.log.Debug("API called: GetNodeValidation")

	reply.ValidationID, reply.Registered = s.core.RegisteredValidator(args.NodeID)
	return nil
}

type GetTotalWeightReply struct {
	TotalWeight avajson.Uint64 `json:"totalWeight"`
}

func (s *Service) GetTotalWeight(_ *http.Request, _ *struct{}, reply *GetTotalWeightReply) error {
	s.log.Debug("API called: GetTotalWeight")

	totalWeight, err := s.core.TotalWeight()
	if err != nil {
		return err
	}
	reply.TotalWeight = avajson.Uint64(totalWeight)
	return nil
}

type GetChurnUsageReply struct {
	StartTime     avajson.Uint64 `json:"startTime"`
	InitialWeight avajson.Uint64 `json:"initialWeight"`
	TotalWeight   avajson.Uint64 `json:"totalWeight"`
	ChurnAmount   avajson.Uint64 `json:"churnAmount"`
}

// GetChurnUsage returns the current churn window.
func (s *Service) GetChurnUsage(_ *http.Request, _ *struct{}, reply *GetChurnUsageReply) error {
	s.log.Debug("API called: GetChurnUsage")

	period, err := s.core.ChurnPeriod()
	if err != nil {
		return err
	}
	reply.StartTime = avajson.Uint64(period.StartTime)
	reply.InitialWeight = avajson.Uint64(period.InitialWeight)
	reply.TotalWeight = avajson.Uint64(period.TotalWeight)
	reply.ChurnAmount = avajson.Uint64(period.ChurnAmount)
	return nil
}

type GetDelegatorArgs struct {
	DelegationID ids.ID `json:"delegationID"`
}

type GetDelegatorReply struct {
	DelegationID    ids.ID         `json:"delegationID"`
	ValidationID    ids.ID         `json:"validationID"`
	Status          string         `json:"status"`
	Owner           ids.ShortID    `json:"owner"`
	RewardRecipient ids.ShortID    `json:"rewardRecipient"`
	Weight          avajson.Uint64 `json:"weight"`
	StakedAmount    avajson.Uint64 `json:"stakedAmount"`
	StartTime       avajson.Uint64 `json:"startTime"`
	EndTime         avajson.Uint64 `json:"endTime"`
}

func (s *Service) GetDelegator(_ *http.Request, args *GetDelegatorArgs, reply *GetDelegatorReply) error {
	s.log.Debug("API called: GetDelegator")

	del, err := s.staking.GetDelegator(args.DelegationID)
	if err != nil {
		return err
	}
	reply.DelegationID = del.DelegationID
	reply.ValidationID = del.ValidationID
	reply.Status = del.Status.String()
	reply.Owner = del.Owner
	reply.RewardRecipient = del.RewardRecipient
	reply.Weight = avajson.Uint64(del.Weight)
	reply.StakedAmount = avajson.Uint64(del.StakedAmount)
	reply.StartTime = avajson.Uint64(del.StartTime)
	reply.EndTime = avajson.Uint64(del.EndTime)
	return nil
}

type GetUptimeArgs struct {
	ValidationID ids.ID `json:"validationID"`
}

type GetUptimeReply struct {
	Uptime avajson.Uint64 `json:"uptime"`
}

// GetUptime returns the highest attested uptime, in seconds, for a
// validation.
func (s *Service) GetUptime(_ *http.Request, args *GetUptimeArgs, reply *GetUptimeReply) error {
	s.log.Debug("API called: GetUptime")

	uptime, err := s.staking.Uptime(args.ValidationID)
	if err != nil {
		return err
	}
	reply.Uptime = avajson.Uint64(uptime)
	return nil
}

type ListValidatorsReply struct {
	Validators []APIValidator `json:"validators"`
}

// ListValidators returns every validator record, terminal records included.
func (s *Service) ListValidators(_ *http.Request, _ *struct{}, reply *ListValidatorsReply) error {
	s.log.Debug("API called: ListValidators")

	validators, err := s.core.Validators()
	if err != nil {
		return err
	}
	reply.Validators = make([]APIValidator, 0, len(validators))
	for _, vdr := range validators {
		reply.Validators = append(reply.Validators, newAPIValidator(vdr))
	}
	return nil
}
