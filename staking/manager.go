// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package staking layers stake-weighted validator management on top of the
// validator lifecycle engine: collateral locking, delegation, uptime-gated
// rewards and delegation fees.
//
// The staking manager shares its state.State with the hosted
// validatormanager.Manager. Staking writes are staged into the shared
// versioned view before the core operation runs, so the core's single commit
// covers both layers. All mutations of a hosted core must therefore be driven
// through this manager.
//
// The manager starts admin-gated: only the configured admin may manage
// validators, and stakes earn nothing. TransferToPermissionless irreversibly
// opens registration to anyone holding sufficient collateral.
package staking

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/crypto/bls"
	"github.com/ava-labs/avalanchego/utils/hashing"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/timer/mockable"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ava-labs/l1-validator-manager/message"
	"github.com/ava-labs/l1-validator-manager/state"
	"github.com/ava-labs/l1-validator-manager/validatormanager"

	safemath "github.com/ava-labs/avalanchego/utils/math"
)

type Manager struct {
	cfg        Config
	log        logging.Logger
	metrics    *metrics
	core       *validatormanager.Manager
	state      state.State
	collateral Collateral
	calculator RewardCalculator
	clock      *mockable.Clock

	lock      sync.Mutex
	listeners []Listener
}

func New(
	cfg Config,
	log logging.Logger,
	registerer prometheus.Registerer,
	core *validatormanager.Manager,
	s state.State,
	collateral Collateral,
	calculator RewardCalculator,
) (*Manager, error) {
	if err := cfg.Verify(); err != nil {
		return nil, err
	}
	metrics, err := newMetrics("staking_manager", registerer)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		cfg:        cfg,
		log:        log,
		metrics:    metrics,
		core:       core,
		state:      s,
		collateral: collateral,
		calculator: calculator,
		clock:      core.Clock(),
	}
	if err := m.setupMode(); err != nil {
		return nil, err
	}
	return m, nil
}

// setupMode durably records the manager's initial authorization mode on first
// construction. The stored mode wins over configuration on later boots:
// permissionless operation is one-way.
func (m *Manager) setupMode() error {
	defer m.state.Abort()

	permissionless, err := m.state.GetPermissionless()
	if err != nil {
		return err
	}
	if permissionless {
		return nil
	}

	switch _, err := m.state.GetAdmin(); {
	case err == nil:
		return nil
	case err != database.ErrNotFound:
		return err
	}

	if m.cfg.Admin == ids.ShortEmpty {
		if err := m.state.SetPermissionless(); err != nil {
			return err
		}
	} else if err := m.state.SetAdmin(m.cfg.Admin); err != nil {
		return err
	}
	return m.state.Commit()
}

// DelegationID derives the identifier of the delegation initiated against
// [validationID] with weight-update nonce [nonce].
func DelegationID(validationID ids.ID, nonce uint64) ids.ID {
	preimage := make([]byte, ids.IDLen+8)
	copy(preimage, validationID[:])
	binary.BigEndian.PutUint64(preimage[ids.IDLen:], nonce)
	return hashing.ComputeHash256Array(preimage)
}

// InitiateValidatorRegistration locks [stakeAmount] of [caller]'s collateral
// and registers a validator weighted by it. While admin-gated, only the admin
// may call this; the stake bounds are not enforced and no collateral is
// locked, [stakeAmount] only determines the weight.
func (m *Manager) InitiateValidatorRegistration(
	caller ids.ShortID,
	nodeID []byte,
	blsPublicKey []byte,
	expiry uint64,
	remainingBalanceOwner message.PChainOwner,
	disableOwner message.PChainOwner,
	delegationFeeBips uint16,
	minStakeDuration time.Duration,
	stakeAmount uint64,
	rewardRecipient ids.ShortID,
) (ids.ID, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	defer m.state.Abort()

	permissionless, err := m.permissionless()
	if err != nil {
		return ids.Empty, err
	}
	if !permissionless {
		if err := m.requireAdmin(caller); err != nil {
			return ids.Empty, err
		}
	}
	if rewardRecipient == ids.ShortEmpty {
		return ids.Empty, ErrInvalidRewardRecipient
	}
	if permissionless {
		if stakeAmount < m.cfg.MinimumStakeAmount || stakeAmount > m.cfg.MaximumStakeAmount {
			return ids.Empty, fmt.Errorf(
				"%w: %d outside [%d, %d]",
				ErrInvalidStakeAmount,
				stakeAmount,
				m.cfg.MinimumStakeAmount,
				m.cfg.MaximumStakeAmount,
			)
		}
		if delegationFeeBips < m.cfg.MinimumDelegationFeeBips || delegationFeeBips > BIPSConversionFactor {
			return ids.Empty, fmt.Errorf(
				"%w: %d bips outside [%d, %d]",
				ErrInvalidDelegationFee,
				delegationFeeBips,
				m.cfg.MinimumDelegationFeeBips,
				BIPSConversionFactor,
			)
		}
		if minStakeDuration < m.cfg.MinimumStakeDuration {
			return ids.Empty, fmt.Errorf(
				"%w: %s below %s",
				ErrInvalidMinStakeDuration,
				minStakeDuration,
				m.cfg.MinimumStakeDuration,
			)
		}
	}

	weight, err := m.cfg.ValueToWeight(stakeAmount)
	if err != nil {
		return ids.Empty, err
	}

	// Build the registration message the core will build to learn the
	// validationID up front, so the staking record can be staged into the
	// same transaction.
	shortNodeID, err := ids.ToNodeID(nodeID)
	if err != nil {
		return ids.Empty, fmt.Errorf("%w: %w", message.ErrInvalidNodeID, err)
	}
	if len(blsPublicKey) != bls.PublicKeyLen {
		return ids.Empty, fmt.Errorf(
			"%w: expected %d bytes, got %d",
			validatormanager.ErrInvalidBLSPublicKey,
			bls.PublicKeyLen,
			len(blsPublicKey),
		)
	}
	var pk [bls.PublicKeyLen]byte
	copy(pk[:], blsPublicKey)
	msg, err := message.NewRegisterL1Validator(
		m.core.Config().SubnetID,
		shortNodeID,
		pk,
		expiry,
		remainingBalanceOwner,
		disableOwner,
		weight,
	)
	if err != nil {
		return ids.Empty, err
	}
	validationID := msg.ValidationID()

	var locked uint64
	if permissionless {
		if err := m.collateral.Lock(caller, stakeAmount); err != nil {
			return ids.Empty, err
		}
		locked = stakeAmount
	}
	if err := m.state.PutStakerInfo(validationID, &state.StakerInfo{
		Owner:             caller,
		RewardRecipient:   rewardRecipient,
		DelegationFeeBips: delegationFeeBips,
		MinStakeDuration:  uint64(minStakeDuration.Seconds()),
		StakedAmount:      locked,
	}); err != nil {
		m.unlockCompensating(caller, locked)
		return ids.Empty, err
	}

	if _, err := m.core.InitiateValidatorRegistration(
		nodeID,
		blsPublicKey,
		expiry,
		remainingBalanceOwner,
		disableOwner,
		weight,
	); err != nil {
		m.unlockCompensating(caller, locked)
		return ids.Empty, err
	}

	m.log.Info("initiated staking validator registration",
		zap.Stringer("validationID", validationID),
		zap.Stringer("owner", caller),
		zap.Uint64("stakeAmount", locked),
		zap.Uint64("weight", weight),
	)
	return validationID, nil
}

// InitiateValidatorRemoval starts retiring a validator. The caller must own
// the stake, the stake must have aged past the validator's minimum duration,
// and the validator's attested uptime must clear the reward threshold; a
// removal that would forfeit rewards must go through
// ForceInitiateValidatorRemoval instead.
func (m *Manager) InitiateValidatorRemoval(caller ids.ShortID, validationID ids.ID) error {
	return m.initiateValidatorRemoval(caller, validationID, false)
}

// ForceInitiateValidatorRemoval retires a validator regardless of stake age
// and uptime, forfeiting rewards if the uptime threshold was not met. Open to
// anyone once permissionless.
func (m *Manager) ForceInitiateValidatorRemoval(caller ids.ShortID, validationID ids.ID) error {
	return m.initiateValidatorRemoval(caller, validationID, true)
}

func (m *Manager) initiateValidatorRemoval(caller ids.ShortID, validationID ids.ID, force bool) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	defer m.state.Abort()

	vdr, err := m.core.GetValidator(validationID)
	if err != nil {
		return err
	}
	if vdr.Status != state.Active {
		return fmt.Errorf(
			"%w: expected %s, got %s",
			validatormanager.ErrInvalidValidatorStatus,
			state.Active,
			vdr.Status,
		)
	}

	permissionless, err := m.permissionless()
	if err != nil {
		return err
	}
	info, infoErr := m.state.GetStakerInfo(validationID)
	if infoErr != nil && infoErr != database.ErrNotFound {
		return infoErr
	}

	switch {
	case !permissionless:
		if err := m.requireAdmin(caller); err != nil {
			return err
		}
	case infoErr == nil:
		if !force && caller != info.Owner {
			return fmt.Errorf("%w: %s does not own %s", ErrUnauthorized, caller, validationID)
		}
	default:
		// An initial validator carries no staking record; only the force
		// path may retire it.
		if !force {
			return fmt.Errorf("%w: %s", ErrNotStakingValidator, validationID)
		}
	}

	// While admin-gated, stakes are not locked and earn nothing, so removal
	// answers to no stake-age or uptime requirement.
	now := uint64(m.clock.Time().Unix())
	if infoErr == nil && permissionless {
		if !force && now < vdr.StartTime+info.MinStakeDuration {
			return fmt.Errorf(
				"%w: %d seconds staked of %d required",
				ErrMinStakeDurationNotMet,
				now-vdr.StartTime,
				info.MinStakeDuration,
			)
		}

		eligible, uptime, err := m.rewardEligible(&vdr, now)
		if err != nil {
			return err
		}
		if !force && !eligible {
			return fmt.Errorf(
				"%w: %d seconds attested over a %d second tenure",
				ErrUptimeBelowThreshold,
				uptime,
				now-vdr.StartTime,
			)
		}
		info.RewardEligible = eligible
		if err := m.state.PutStakerInfo(validationID, info); err != nil {
			return err
		}
	}

	if err := m.core.InitiateValidatorRemoval(validationID); err != nil {
		return err
	}
	if force {
		m.metrics.numForcedRemovals.Inc()
	}
	return nil
}

// CompleteValidatorRemoval finalizes a removal through the core, then refunds
// the stake and, if the stake was reward-eligible, pays the reward to the
// recorded recipient.
func (m *Manager) CompleteValidatorRemoval(ack validatormanager.VerifiedMessage) (ids.ID, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	defer m.state.Abort()

	// Capture the pre-completion record; the core call rewrites the status.
	registration, err := message.ParseL1ValidatorRegistration(ack.Payload)
	if err != nil {
		return ids.Empty, fmt.Errorf("parsing registration acknowledgement: %w", err)
	}
	vdr, err := m.core.GetValidator(registration.ValidationID)
	if err != nil {
		return ids.Empty, err
	}
	info, infoErr := m.state.GetStakerInfo(registration.ValidationID)
	if infoErr != nil && infoErr != database.ErrNotFound {
		return ids.Empty, infoErr
	}
	uptime, err := m.state.GetUptime(registration.ValidationID)
	if err != nil {
		return ids.Empty, err
	}

	validationID, err := m.core.CompleteValidatorRemoval(ack)
	if err != nil {
		return ids.Empty, err
	}

	if infoErr != nil {
		return validationID, nil
	}
	if info.StakedAmount > 0 {
		if err := m.collateral.Unlock(info.Owner, info.StakedAmount); err != nil {
			m.log.Error("failed to refund stake",
				zap.Stringer("validationID", validationID),
				zap.Stringer("owner", info.Owner),
				zap.Uint64("stakeAmount", info.StakedAmount),
				zap.Error(err),
			)
		}
	}

	// An invalidated registration never validated and earns nothing.
	if vdr.Status != state.PendingRemoved || !info.RewardEligible {
		return validationID, nil
	}
	reward := m.calculator.CalculateReward(info.StakedAmount, vdr.StartTime, vdr.EndTime, uptime)
	if reward == 0 {
		return validationID, nil
	}
	if err := m.collateral.Reward(info.RewardRecipient, reward); err != nil {
		m.log.Error("failed to pay validator reward",
			zap.Stringer("validationID", validationID),
			zap.Stringer("recipient", info.RewardRecipient),
			zap.Uint64("reward", reward),
			zap.Error(err),
		)
		return validationID, nil
	}
	m.metrics.rewardsPaid.Add(float64(reward))
	m.log.Info("paid validator reward",
		zap.Stringer("validationID", validationID),
		zap.Stringer("recipient", info.RewardRecipient),
		zap.Uint64("reward", reward),
	)
	for _, listener := range m.listeners {
		listener.OnValidatorRewardPaid(validationID, info.RewardRecipient, reward)
	}
	return validationID, nil
}

// InitiateDelegatorRegistration locks [stakeAmount] of [caller]'s collateral
// and delegates its weight to an active validator. The returned delegationID
// is derived from the validator's next weight-update nonce.
func (m *Manager) InitiateDelegatorRegistration(
	caller ids.ShortID,
	validationID ids.ID,
	stakeAmount uint64,
	rewardRecipient ids.ShortID,
) (ids.ID, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	defer m.state.Abort()

	permissionless, err := m.permissionless()
	if err != nil {
		return ids.Empty, err
	}
	if !permissionless {
		return ids.Empty, ErrNotPermissionless
	}
	if rewardRecipient == ids.ShortEmpty {
		return ids.Empty, ErrInvalidRewardRecipient
	}
	if stakeAmount < m.cfg.MinimumStakeAmount || stakeAmount > m.cfg.MaximumStakeAmount {
		return ids.Empty, fmt.Errorf(
			"%w: %d outside [%d, %d]",
			ErrInvalidStakeAmount,
			stakeAmount,
			m.cfg.MinimumStakeAmount,
			m.cfg.MaximumStakeAmount,
		)
	}
	weight, err := m.cfg.ValueToWeight(stakeAmount)
	if err != nil {
		return ids.Empty, err
	}

	vdr, err := m.core.GetValidator(validationID)
	if err != nil {
		return ids.Empty, err
	}
	if vdr.Status != state.Active {
		return ids.Empty, fmt.Errorf(
			"%w: expected %s, got %s",
			validatormanager.ErrInvalidValidatorStatus,
			state.Active,
			vdr.Status,
		)
	}
	if _, err := m.state.GetStakerInfo(validationID); err == database.ErrNotFound {
		return ids.Empty, fmt.Errorf("%w: %s", ErrNotStakingValidator, validationID)
	} else if err != nil {
		return ids.Empty, err
	}

	newWeight, err := safemath.Add(vdr.Weight, weight)
	if err != nil {
		return ids.Empty, err
	}
	maxWeight, err := safemath.Mul(vdr.StartingWeight, uint64(m.cfg.MaximumStakeMultiplier))
	if err != nil {
		return ids.Empty, err
	}
	if newWeight > maxWeight {
		return ids.Empty, fmt.Errorf(
			"%w: %d exceeds %d (%dx starting weight %d)",
			ErrStakeMultiplierExceeded,
			newWeight,
			maxWeight,
			m.cfg.MaximumStakeMultiplier,
			vdr.StartingWeight,
		)
	}

	// The core issues nonces densely, so the delegation's identity can be
	// derived before the weight update is initiated.
	nonce := vdr.SentNonce + 1
	delegationID := DelegationID(validationID, nonce)

	if err := m.collateral.Lock(caller, stakeAmount); err != nil {
		return ids.Empty, err
	}
	if err := m.state.PutDelegator(&state.Delegator{
		DelegationID:    delegationID,
		Status:          state.PendingAdded,
		ValidationID:    validationID,
		Owner:           caller,
		RewardRecipient: rewardRecipient,
		Weight:          weight,
		StakedAmount:    stakeAmount,
		StartingNonce:   nonce,
	}); err != nil {
		m.unlockCompensating(caller, stakeAmount)
		return ids.Empty, err
	}

	if _, _, err := m.core.InitiateValidatorWeightUpdate(validationID, newWeight); err != nil {
		m.unlockCompensating(caller, stakeAmount)
		return ids.Empty, err
	}

	m.log.Info("initiated delegator registration",
		zap.Stringer("delegationID", delegationID),
		zap.Stringer("validationID", validationID),
		zap.Stringer("owner", caller),
		zap.Uint64("stakeAmount", stakeAmount),
		zap.Uint64("weight", weight),
	)
	m.metrics.numDelegationsInitiated.Inc()
	for _, listener := range m.listeners {
		listener.OnInitiatedDelegatorRegistration(delegationID, validationID, weight)
	}
	return delegationID, nil
}

// CompleteDelegatorRegistration activates a pending delegation. [ack] is the
// P-Chain's acknowledgement of a weight-update nonce at or past the
// delegation's starting nonce; it may be nil if the validator's received
// nonce already covers the delegation.
func (m *Manager) CompleteDelegatorRegistration(
	delegationID ids.ID,
	ack *validatormanager.VerifiedMessage,
) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	defer m.state.Abort()

	del, err := m.getKnownDelegator(delegationID)
	if err != nil {
		return err
	}
	if del.Status != state.PendingAdded {
		return fmt.Errorf(
			"%w: expected %s, got %s",
			ErrInvalidDelegatorStatus,
			state.PendingAdded,
			del.Status,
		)
	}

	del.Status = state.Active
	del.StartTime = uint64(m.clock.Time().Unix())
	if ack == nil {
		vdr, err := m.core.GetValidator(del.ValidationID)
		if err != nil {
			return err
		}
		if vdr.ReceivedNonce < del.StartingNonce {
			return fmt.Errorf(
				"%w: received nonce %d has not reached starting nonce %d",
				validatormanager.ErrInvalidNonce,
				vdr.ReceivedNonce,
				del.StartingNonce,
			)
		}
		if err := m.state.PutDelegator(del); err != nil {
			return err
		}
		if err := m.state.Commit(); err != nil {
			return err
		}
	} else {
		weightMsg, err := message.ParseL1ValidatorWeight(ack.Payload)
		if err != nil {
			return fmt.Errorf("parsing weight acknowledgement: %w", err)
		}
		if weightMsg.ValidationID != del.ValidationID {
			return fmt.Errorf(
				"%w: acknowledgement for %s, delegation is to %s",
				validatormanager.ErrInvalidAcknowledgement,
				weightMsg.ValidationID,
				del.ValidationID,
			)
		}
		if weightMsg.Nonce < del.StartingNonce {
			return fmt.Errorf(
				"%w: acknowledged nonce %d below starting nonce %d",
				validatormanager.ErrInvalidNonce,
				weightMsg.Nonce,
				del.StartingNonce,
			)
		}
		if err := m.state.PutDelegator(del); err != nil {
			return err
		}
		if _, _, err := m.core.CompleteValidatorWeightUpdate(*ack); err != nil {
			return err
		}
	}

	m.log.Info("completed delegator registration",
		zap.Stringer("delegationID", delegationID),
		zap.Stringer("validationID", del.ValidationID),
	)
	m.metrics.numDelegationsCompleted.Inc()
	for _, listener := range m.listeners {
		listener.OnCompletedDelegatorRegistration(delegationID)
	}
	return nil
}

// InitiateDelegatorRemoval starts ending a delegation. The caller must own
// it, the configured minimum stake duration must have passed, and the host
// validator's uptime must clear the reward threshold.
func (m *Manager) InitiateDelegatorRemoval(caller ids.ShortID, delegationID ids.ID) error {
	return m.initiateDelegatorRemoval(caller, delegationID, false)
}

// ForceInitiateDelegatorRemoval ends a delegation regardless of stake age and
// host uptime, forfeiting rewards if the uptime threshold was not met.
func (m *Manager) ForceInitiateDelegatorRemoval(caller ids.ShortID, delegationID ids.ID) error {
	return m.initiateDelegatorRemoval(caller, delegationID, true)
}

func (m *Manager) initiateDelegatorRemoval(caller ids.ShortID, delegationID ids.ID, force bool) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	defer m.state.Abort()

	del, err := m.getKnownDelegator(delegationID)
	if err != nil {
		return err
	}
	if del.Status != state.Active {
		return fmt.Errorf(
			"%w: expected %s, got %s",
			ErrInvalidDelegatorStatus,
			state.Active,
			del.Status,
		)
	}
	if !force && caller != del.Owner {
		return fmt.Errorf("%w: %s does not own %s", ErrUnauthorized, caller, delegationID)
	}

	vdr, err := m.core.GetValidator(del.ValidationID)
	if err != nil {
		return err
	}
	now := uint64(m.clock.Time().Unix())

	switch vdr.Status {
	case state.Active:
		if !force && now < del.StartTime+uint64(m.cfg.MinimumStakeDuration.Seconds()) {
			return fmt.Errorf(
				"%w: %d seconds delegated of %d required",
				ErrMinStakeDurationNotMet,
				now-del.StartTime,
				uint64(m.cfg.MinimumStakeDuration.Seconds()),
			)
		}
		eligible, uptime, err := m.rewardEligible(&vdr, now)
		if err != nil {
			return err
		}
		if !force && !eligible {
			return fmt.Errorf(
				"%w: %d seconds attested over a %d second tenure",
				ErrUptimeBelowThreshold,
				uptime,
				now-vdr.StartTime,
			)
		}

		newWeight, err := safemath.Sub(vdr.Weight, del.Weight)
		if err != nil {
			return err
		}
		del.Status = state.PendingRemoved
		del.EndTime = now
		del.EndingNonce = vdr.SentNonce + 1
		del.RewardEligible = eligible
		if err := m.state.PutDelegator(del); err != nil {
			return err
		}
		if _, _, err := m.core.InitiateValidatorWeightUpdate(del.ValidationID, newWeight); err != nil {
			return err
		}
	case state.Completed, state.Invalidated:
		// The host already exited and its weight is settled; the delegation
		// ended when the validator did and no weight update is owed.
		eligible, _, err := m.rewardEligible(&vdr, vdr.EndTime)
		if err != nil {
			return err
		}
		del.Status = state.PendingRemoved
		del.EndTime = vdr.EndTime
		del.EndingNonce = vdr.SentNonce
		del.RewardEligible = eligible
		if err := m.state.PutDelegator(del); err != nil {
			return err
		}
		if err := m.state.Commit(); err != nil {
			return err
		}
	default:
		return fmt.Errorf(
			"%w: host validator is %s",
			validatormanager.ErrInvalidValidatorStatus,
			vdr.Status,
		)
	}

	m.log.Info("initiated delegator removal",
		zap.Stringer("delegationID", delegationID),
		zap.Stringer("validationID", del.ValidationID),
		zap.Bool("rewardEligible", del.RewardEligible),
		zap.Bool("force", force),
	)
	m.metrics.numDelegationRemovalsInitiated.Inc()
	if force {
		m.metrics.numForcedRemovals.Inc()
	}
	for _, listener := range m.listeners {
		listener.OnInitiatedDelegatorRemoval(delegationID, del.RewardEligible)
	}
	return nil
}

// CompleteDelegatorRemoval settles an ended delegation: the stake is
// refunded, and an eligible delegation is paid its reward minus the
// validator's delegation fee, which is accrued for the validator to claim.
// [ack] may be nil if the validator's received nonce already covers the
// removal or the validator has exited. Returns the net reward paid.
func (m *Manager) CompleteDelegatorRemoval(
	delegationID ids.ID,
	ack *validatormanager.VerifiedMessage,
) (uint64, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	defer m.state.Abort()

	del, err := m.getKnownDelegator(delegationID)
	if err != nil {
		return 0, err
	}
	if del.Status != state.PendingRemoved {
		return 0, fmt.Errorf(
			"%w: expected %s, got %s",
			ErrInvalidDelegatorStatus,
			state.PendingRemoved,
			del.Status,
		)
	}

	var (
		reward uint64
		fee    uint64
	)
	if del.RewardEligible {
		uptime, err := m.state.GetUptime(del.ValidationID)
		if err != nil {
			return 0, err
		}
		gross := m.calculator.CalculateReward(del.StakedAmount, del.StartTime, del.EndTime, uptime)
		if gross > 0 {
			info, err := m.state.GetStakerInfo(del.ValidationID)
			if err != nil {
				return 0, err
			}
			fee = delegationFee(gross, info.DelegationFeeBips)
			reward = gross - fee

			info.AccruedDelegationFees, err = safemath.Add(info.AccruedDelegationFees, fee)
			if err != nil {
				return 0, err
			}
			if err := m.state.PutStakerInfo(del.ValidationID, info); err != nil {
				return 0, err
			}
		}
	}

	del.Status = state.Completed
	if err := m.state.PutDelegator(del); err != nil {
		return 0, err
	}

	if ack == nil {
		vdr, err := m.core.GetValidator(del.ValidationID)
		if err != nil {
			return 0, err
		}
		if !vdr.Status.Terminal() && vdr.ReceivedNonce < del.EndingNonce {
			return 0, fmt.Errorf(
				"%w: received nonce %d has not reached ending nonce %d",
				validatormanager.ErrInvalidNonce,
				vdr.ReceivedNonce,
				del.EndingNonce,
			)
		}
		if err := m.state.Commit(); err != nil {
			return 0, err
		}
	} else {
		weightMsg, err := message.ParseL1ValidatorWeight(ack.Payload)
		if err != nil {
			return 0, fmt.Errorf("parsing weight acknowledgement: %w", err)
		}
		if weightMsg.ValidationID != del.ValidationID {
			return 0, fmt.Errorf(
				"%w: acknowledgement for %s, delegation is to %s",
				validatormanager.ErrInvalidAcknowledgement,
				weightMsg.ValidationID,
				del.ValidationID,
			)
		}
		if weightMsg.Nonce < del.EndingNonce {
			return 0, fmt.Errorf(
				"%w: acknowledged nonce %d below ending nonce %d",
				validatormanager.ErrInvalidNonce,
				weightMsg.Nonce,
				del.EndingNonce,
			)
		}
		if _, _, err := m.core.CompleteValidatorWeightUpdate(*ack); err != nil {
			return 0, err
		}
	}

	if err := m.collateral.Unlock(del.Owner, del.StakedAmount); err != nil {
		m.log.Error("failed to refund delegated stake",
			zap.Stringer("delegationID", delegationID),
			zap.Stringer("owner", del.Owner),
			zap.Uint64("stakeAmount", del.StakedAmount),
			zap.Error(err),
		)
	}
	if reward > 0 {
		if err := m.collateral.Reward(del.RewardRecipient, reward); err != nil {
			m.log.Error("failed to pay delegator reward",
				zap.Stringer("delegationID", delegationID),
				zap.Stringer("recipient", del.RewardRecipient),
				zap.Uint64("reward", reward),
				zap.Error(err),
			)
			reward = 0
		} else {
			m.metrics.rewardsPaid.Add(float64(reward))
		}
	}
	if fee > 0 {
		m.metrics.feesAccrued.Add(float64(fee))
	}

	m.log.Info("completed delegator removal",
		zap.Stringer("delegationID", delegationID),
		zap.Stringer("validationID", del.ValidationID),
		zap.Uint64("reward", reward),
		zap.Uint64("fee", fee),
	)
	m.metrics.numDelegationRemovalsCompleted.Inc()
	for _, listener := range m.listeners {
		listener.OnCompletedDelegatorRemoval(delegationID, reward, fee)
	}
	return reward, nil
}

// SubmitUptimeProof records an attested uptime for a validator. The proof
// must originate from the manager's own chain, where the uptime was
// aggregated. The stored uptime only ever increases; a proof at or below the
// recorded uptime is accepted and ignored.
func (m *Manager) SubmitUptimeProof(proof validatormanager.VerifiedMessage) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	defer m.state.Abort()

	uptimeMsg, err := message.ParseValidatorUptime(proof.Payload)
	if err != nil {
		return fmt.Errorf("parsing uptime proof: %w", err)
	}
	if proof.SourceChainID != m.core.Config().ManagerChainID {
		return fmt.Errorf("%w: %s", validatormanager.ErrInvalidSourceChain, proof.SourceChainID)
	}
	if _, err := m.core.GetValidator(uptimeMsg.ValidationID); err != nil {
		return err
	}

	stored, err := m.state.GetUptime(uptimeMsg.ValidationID)
	if err != nil {
		return err
	}
	if uptimeMsg.TotalUptime <= stored {
		return nil
	}
	if err := m.state.SetUptime(uptimeMsg.ValidationID, uptimeMsg.TotalUptime); err != nil {
		return err
	}
	if err := m.state.Commit(); err != nil {
		return err
	}

	m.log.Debug("recorded uptime proof",
		zap.Stringer("validationID", uptimeMsg.ValidationID),
		zap.Uint64("uptime", uptimeMsg.TotalUptime),
	)
	m.metrics.numUptimeProofs.Inc()
	for _, listener := range m.listeners {
		listener.OnUptimeRecorded(uptimeMsg.ValidationID, uptimeMsg.TotalUptime)
	}
	return nil
}

// ClaimDelegationFees pays the validator's accrued delegation fees to its
// reward recipient. Owner-only. Returns the amount paid.
func (m *Manager) ClaimDelegationFees(caller ids.ShortID, validationID ids.ID) (uint64, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	defer m.state.Abort()

	info, err := m.getKnownStakerInfo(validationID)
	if err != nil {
		return 0, err
	}
	if caller != info.Owner {
		return 0, fmt.Errorf("%w: %s does not own %s", ErrUnauthorized, caller, validationID)
	}

	amount := info.AccruedDelegationFees
	if amount == 0 {
		return 0, nil
	}
	info.AccruedDelegationFees = 0
	if err := m.state.PutStakerInfo(validationID, info); err != nil {
		return 0, err
	}
	// Pay before committing the zeroed accrual; a failed payout aborts and
	// leaves the fees claimable on retry.
	if err := m.collateral.Reward(info.RewardRecipient, amount); err != nil {
		m.log.Error("failed to pay delegation fees",
			zap.Stringer("validationID", validationID),
			zap.Stringer("recipient", info.RewardRecipient),
			zap.Uint64("amount", amount),
			zap.Error(err),
		)
		return 0, err
	}
	if err := m.state.Commit(); err != nil {
		return 0, err
	}
	m.metrics.feesClaimed.Add(float64(amount))
	m.log.Info("claimed delegation fees",
		zap.Stringer("validationID", validationID),
		zap.Stringer("recipient", info.RewardRecipient),
		zap.Uint64("amount", amount),
	)
	return amount, nil
}

// ChangeValidatorRewardRecipient redirects future validator reward payouts.
// Owner-only; already-settled payouts are unaffected.
func (m *Manager) ChangeValidatorRewardRecipient(
	caller ids.ShortID,
	validationID ids.ID,
	recipient ids.ShortID,
) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	defer m.state.Abort()

	if recipient == ids.ShortEmpty {
		return ErrInvalidRewardRecipient
	}
	info, err := m.getKnownStakerInfo(validationID)
	if err != nil {
		return err
	}
	if caller != info.Owner {
		return fmt.Errorf("%w: %s does not own %s", ErrUnauthorized, caller, validationID)
	}

	info.RewardRecipient = recipient
	if err := m.state.PutStakerInfo(validationID, info); err != nil {
		return err
	}
	return m.state.Commit()
}

// ChangeDelegatorRewardRecipient redirects a delegation's future reward
// payout. Owner-only.
func (m *Manager) ChangeDelegatorRewardRecipient(
	caller ids.ShortID,
	delegationID ids.ID,
	recipient ids.ShortID,
) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	defer m.state.Abort()

	if recipient == ids.ShortEmpty {
		return ErrInvalidRewardRecipient
	}
	del, err := m.getKnownDelegator(delegationID)
	if err != nil {
		return err
	}
	if caller != del.Owner {
		return fmt.Errorf("%w: %s does not own %s", ErrUnauthorized, caller, delegationID)
	}

	del.RewardRecipient = recipient
	if err := m.state.PutDelegator(del); err != nil {
		return err
	}
	return m.state.Commit()
}

// TransferToPermissionless irreversibly opens the manager to permissionless
// staking. Admin-only.
func (m *Manager) TransferToPermissionless(caller ids.ShortID) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	defer m.state.Abort()

	permissionless, err := m.permissionless()
	if err != nil {
		return err
	}
	if permissionless {
		return ErrAlreadyPermissionless
	}
	if err := m.requireAdmin(caller); err != nil {
		return err
	}

	if err := m.state.SetPermissionless(); err != nil {
		return err
	}
	if err := m.state.Commit(); err != nil {
		return err
	}

	m.log.Info("transferred to permissionless operation", zap.Stringer("admin", caller))
	return nil
}

// ResendUpdateDelegatorMessage re-emits the cached weight-update bytes of the
// validator backing a pending delegation.
func (m *Manager) ResendUpdateDelegatorMessage(delegationID ids.ID) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	del, err := m.getKnownDelegator(delegationID)
	if err != nil {
		return err
	}
	if del.Status != state.PendingAdded && del.Status != state.PendingRemoved {
		return fmt.Errorf(
			"%w: expected %s or %s, got %s",
			ErrInvalidDelegatorStatus,
			state.PendingAdded,
			state.PendingRemoved,
			del.Status,
		)
	}
	return m.core.SendCachedMessage(del.ValidationID)
}

// GetDelegator returns a copy of the record for [delegationID].
func (m *Manager) GetDelegator(delegationID ids.ID) (state.Delegator, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	del, err := m.getKnownDelegator(delegationID)
	if err != nil {
		return state.Delegator{}, err
	}
	return *del, nil
}

// GetStakerInfo returns a copy of the staking record for [validationID].
func (m *Manager) GetStakerInfo(validationID ids.ID) (state.StakerInfo, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	info, err := m.getKnownStakerInfo(validationID)
	if err != nil {
		return state.StakerInfo{}, err
	}
	return *info, nil
}

// Uptime returns the highest attested uptime, in seconds, for
// [validationID].
func (m *Manager) Uptime(validationID ids.ID) (uint64, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	return m.state.GetUptime(validationID)
}

// Permissionless reports whether the manager accepts permissionless staking.
func (m *Manager) Permissionless() (bool, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	return m.permissionless()
}

func (m *Manager) permissionless() (bool, error) {
	return m.state.GetPermissionless()
}

func (m *Manager) requireAdmin(caller ids.ShortID) error {
	admin, err := m.state.GetAdmin()
	if err != nil {
		return err
	}
	if caller != admin {
		return fmt.Errorf("%w: %s is not the admin", ErrUnauthorized, caller)
	}
	return nil
}

func (m *Manager) getKnownDelegator(delegationID ids.ID) (*state.Delegator, error) {
	del, err := m.state.GetDelegator(delegationID)
	if err == database.ErrNotFound {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDelegation, delegationID)
	}
	return del, err
}

func (m *Manager) getKnownStakerInfo(validationID ids.ID) (*state.StakerInfo, error) {
	info, err := m.state.GetStakerInfo(validationID)
	if err == database.ErrNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotStakingValidator, validationID)
	}
	return info, err
}

// rewardEligible reports whether [vdr]'s attested uptime covers the required
// share of its tenure ending at [end]. Returns the attested uptime alongside.
func (m *Manager) rewardEligible(vdr *state.Validator, end uint64) (bool, uint64, error) {
	uptime, err := m.state.GetUptime(vdr.ValidationID)
	if err != nil {
		return false, 0, err
	}
	if end < vdr.StartTime {
		return true, uptime, nil
	}
	elapsed := end - vdr.StartTime

	attested, err := safemath.Mul(uptime, 100)
	if err != nil {
		return false, 0, err
	}
	required, err := safemath.Mul(elapsed, m.cfg.UptimeThresholdPercentage)
	if err != nil {
		return false, 0, err
	}
	return attested >= required, uptime, nil
}

// unlockCompensating reverses a collateral lock after the operation it was
// taken for failed to commit.
func (m *Manager) unlockCompensating(owner ids.ShortID, amount uint64) {
	if amount == 0 {
		return
	}
	if err := m.collateral.Unlock(owner, amount); err != nil {
		m.log.Error("failed to release collateral after aborted operation",
			zap.Stringer("owner", owner),
			zap.Uint64("amount", amount),
			zap.Error(err),
		)
	}
}

// delegationFee is the validator's cut of a gross delegator reward.
func delegationFee(gross uint64, feeBips uint16) uint64 {
	fee := new(big.Int).SetUint64(gross)
	fee.Mul(fee, big.NewInt(int64(feeBips)))
	fee.Div(fee, big.NewInt(BIPSConversionFactor))
	// feeBips <= 10000, so the fee never exceeds the gross reward.
	return fee.Uint64()
}
