// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package validatormanager implements the L1 validator lifecycle state
// machine: registration, removal and weight changes are initiated locally,
// relayed to the P-Chain as warp payloads, and finalized when the P-Chain's
// acknowledgement is delivered back.
//
// Every mutating operation either fully commits or leaves no trace: all
// writes go through a versioned view of the state and are aborted on any
// error. When a staking manager hosts this manager, all mutations must be
// driven through the staking manager so its pre-staged writes share the
// manager's transaction.
package validatormanager

import (
	"bytes"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/crypto/bls"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/set"
	"github.com/ava-labs/avalanchego/utils/timer/mockable"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ava-labs/l1-validator-manager/message"
	"github.com/ava-labs/l1-validator-manager/state"

	safemath "github.com/ava-labs/avalanchego/utils/math"
)

type Manager struct {
	cfg       Config
	log       logging.Logger
	metrics   *metrics
	messenger Messenger
	state     state.State
	clock     mockable.Clock
	churn     churnTracker

	lock      sync.RWMutex
	listeners []Listener
}

func New(
	cfg Config,
	log logging.Logger,
	registerer prometheus.Registerer,
	s state.State,
	messenger Messenger,
) (*Manager, error) {
	if err := cfg.Verify(); err != nil {
		return nil, err
	}
	metrics, err := newMetrics("validator_manager", registerer)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		cfg:       cfg,
		log:       log,
		metrics:   metrics,
		messenger: messenger,
		state:     s,
	}
	m.churn = churnTracker{
		clock:             &m.clock,
		period:            cfg.ChurnPeriod,
		maximumPercentage: cfg.MaximumChurnPercentage,
	}
	m.updateChurnGauges()
	return m, nil
}

// InitializeValidatorSet bootstraps the validator set from the subnet's
// conversion. [data] must be the exact conversion data the P-Chain committed
// to: [ack] carries the P-Chain's attestation of its hash. The whole call
// fails without touching state on any mismatch.
func (m *Manager) InitializeValidatorSet(data *message.ConversionData, ack VerifiedMessage) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	defer m.state.Abort()

	initialized, err := m.state.GetInitialized()
	if err != nil {
		return err
	}
	if initialized {
		return ErrAlreadyInitialized
	}

	conversion, err := message.ParseSubnetToL1Conversion(ack.Payload)
	if err != nil {
		return fmt.Errorf("parsing conversion acknowledgement: %w", err)
	}
	if ack.SourceChainID != m.cfg.PChainID {
		return fmt.Errorf("%w: %s", ErrInvalidSourceChain, ack.SourceChainID)
	}

	conversionID, err := data.ConversionID()
	if err != nil {
		return err
	}
	if conversionID != conversion.ID {
		return fmt.Errorf(
			"%w: computed %s, P-Chain attested %s",
			ErrConversionMismatch,
			conversionID,
			conversion.ID,
		)
	}
	if data.SubnetID != m.cfg.SubnetID ||
		data.ManagerChainID != m.cfg.ManagerChainID ||
		!bytes.Equal(data.ManagerAddress, m.cfg.ManagerAddress) {
		return ErrWrongManagerIdentity
	}

	var (
		now         = uint64(m.clock.Time().Unix())
		seen        set.Set[ids.NodeID]
		totalWeight uint64
		validators  = make([]*state.Validator, 0, len(data.Validators))
	)
	for i, v := range data.Validators {
		nodeID, err := ids.ToNodeID(v.NodeID)
		if err != nil {
			return fmt.Errorf("initial validator %d: %w: %w", i, message.ErrInvalidNodeID, err)
		}
		if v.Weight == 0 {
			return fmt.Errorf("initial validator %d: %w", i, ErrZeroWeight)
		}
		if seen.Contains(nodeID) {
			return fmt.Errorf("initial validator %d: %w: %s", i, ErrNodeAlreadyRegistered, nodeID)
		}
		seen.Add(nodeID)

		vdr := &state.Validator{
			ValidationID:   message.ConversionValidationID(data.SubnetID, uint32(i)),
			Status:         state.Active,
			NodeID:         nodeID,
			StartingWeight: v.Weight,
			Weight:         v.Weight,
			StartTime:      now,
		}
		if err := m.state.PutValidator(vdr); err != nil {
			return err
		}
		if err := m.state.PutNodeValidation(nodeID, vdr.ValidationID); err != nil {
			return err
		}
		validators = append(validators, vdr)

		totalWeight, err = safemath.Add(totalWeight, v.Weight)
		if err != nil {
			return fmt.Errorf("total weight overflow: %w", err)
		}
	}

	// A set whose total weight can't absorb a 1 unit change would deadlock
	// the churn limiter forever, so refuse to initialize it at all.
	if err := verifyChurnRecoverable(totalWeight, m.cfg.MaximumChurnPercentage); err != nil {
		return err
	}

	if err := m.state.PutChurnPeriod(&state.ChurnPeriod{
		StartTime:     now,
		InitialWeight: totalWeight,
		TotalWeight:   totalWeight,
	}); err != nil {
		return err
	}
	if err := m.state.SetInitialized(); err != nil {
		return err
	}
	if err := m.state.Commit(); err != nil {
		return err
	}

	m.log.Info("initialized validator set",
		zap.Stringer("subnetID", data.SubnetID),
		zap.Int("validators", len(validators)),
		zap.Uint64("totalWeight", totalWeight),
	)
	m.metrics.totalWeight.Set(float64(totalWeight))
	for _, vdr := range validators {
		for _, listener := range m.listeners {
			listener.OnRegisteredInitialValidator(vdr.ValidationID, vdr.NodeID, vdr.Weight)
		}
	}
	return nil
}

// InitiateValidatorRegistration builds, records and emits a registration for
// a new validator. [nodeID] and [blsPublicKey] are raw bytes so malformed
// lengths are rejected here rather than by the P-Chain. The returned
// validationID identifies this validator's tenure from now on.
func (m *Manager) InitiateValidatorRegistration(
	nodeID []byte,
	blsPublicKey []byte,
	expiry uint64,
	remainingBalanceOwner message.PChainOwner,
	disableOwner message.PChainOwner,
	weight uint64,
) (ids.ID, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	defer m.state.Abort()

	if err := m.requireInitialized(); err != nil {
		return ids.Empty, err
	}

	shortNodeID, err := ids.ToNodeID(nodeID)
	if err != nil {
		return ids.Empty, fmt.Errorf("%w: %w", message.ErrInvalidNodeID, err)
	}
	if shortNodeID == ids.EmptyNodeID {
		return ids.Empty, fmt.Errorf("%w: empty nodeID is disallowed", message.ErrInvalidNodeID)
	}
	if len(blsPublicKey) != bls.PublicKeyLen {
		return ids.Empty, fmt.Errorf(
			"%w: expected %d bytes, got %d",
			ErrInvalidBLSPublicKey,
			bls.PublicKeyLen,
			len(blsPublicKey),
		)
	}
	if weight == 0 {
		return ids.Empty, ErrZeroWeight
	}
	if err := remainingBalanceOwner.Verify(); err != nil {
		return ids.Empty, fmt.Errorf("invalid remaining balance owner: %w", err)
	}
	if err := disableOwner.Verify(); err != nil {
		return ids.Empty, fmt.Errorf("invalid disable owner: %w", err)
	}

	now := uint64(m.clock.Time().Unix())
	if expiry <= now || expiry > now+uint64(MaximumRegistrationExpiryWindow.Seconds()) {
		return ids.Empty, fmt.Errorf(
			"%w: expiry %d outside (%d, %d]",
			ErrInvalidExpiry,
			expiry,
			now,
			now+uint64(MaximumRegistrationExpiryWindow.Seconds()),
		)
	}

	switch existing, err := m.state.GetNodeValidation(shortNodeID); {
	case err == nil:
		return ids.Empty, fmt.Errorf("%w: %s has validation %s", ErrNodeAlreadyRegistered, shortNodeID, existing)
	case err != database.ErrNotFound:
		return ids.Empty, err
	}

	period, err := m.state.GetChurnPeriod()
	if err != nil {
		return ids.Empty, err
	}
	if err := m.churn.checkAndUpdate(period, weight, 0); err != nil {
		return ids.Empty, err
	}
	if err := m.state.PutChurnPeriod(period); err != nil {
		return ids.Empty, err
	}

	var pk [bls.PublicKeyLen]byte
	copy(pk[:], blsPublicKey)
	msg, err := message.NewRegisterL1Validator(
		m.cfg.SubnetID,
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
	if err := m.state.PutPendingMessage(validationID, msg.Bytes()); err != nil {
		return ids.Empty, err
	}
	if err := m.state.PutValidator(&state.Validator{
		ValidationID:   validationID,
		Status:         state.PendingAdded,
		NodeID:         shortNodeID,
		StartingWeight: weight,
		Weight:         weight,
	}); err != nil {
		return ids.Empty, err
	}
	if err := m.state.PutNodeValidation(shortNodeID, validationID); err != nil {
		return ids.Empty, err
	}
	if err := m.messenger.Send(msg.Bytes()); err != nil {
		return ids.Empty, err
	}
	if err := m.state.Commit(); err != nil {
		return ids.Empty, err
	}

	m.log.Info("initiated validator registration",
		zap.Stringer("validationID", validationID),
		zap.Stringer("nodeID", shortNodeID),
		zap.Uint64("weight", weight),
		zap.Uint64("expiry", expiry),
	)
	m.metrics.numRegistrationsInitiated.Inc()
	m.updateChurnGauges()
	for _, listener := range m.listeners {
		listener.OnInitiatedValidatorRegistration(validationID, shortNodeID, expiry, weight)
	}
	return validationID, nil
}

// CompleteValidatorRegistration activates a pending validator from the
// P-Chain's positive acknowledgement. A negative acknowledgement is rejected
// here; it must be delivered to CompleteValidatorRemoval, which invalidates
// the registration.
func (m *Manager) CompleteValidatorRegistration(ack VerifiedMessage) (ids.ID, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	defer m.state.Abort()

	registration, err := message.ParseL1ValidatorRegistration(ack.Payload)
	if err != nil {
		return ids.Empty, fmt.Errorf("parsing registration acknowledgement: %w", err)
	}
	if ack.SourceChainID != m.cfg.PChainID {
		return ids.Empty, fmt.Errorf("%w: %s", ErrInvalidSourceChain, ack.SourceChainID)
	}
	if !registration.Registered {
		return ids.Empty, fmt.Errorf(
			"%w: registration of %s was rejected, complete its removal instead",
			ErrInvalidAcknowledgement,
			registration.ValidationID,
		)
	}

	validationID := registration.ValidationID
	vdr, err := m.getKnownValidator(validationID)
	if err != nil {
		return ids.Empty, err
	}
	if vdr.Status != state.PendingAdded {
		return ids.Empty, fmt.Errorf(
			"%w: expected %s, got %s",
			ErrInvalidValidatorStatus,
			state.PendingAdded,
			vdr.Status,
		)
	}
	if _, err := m.state.GetPendingMessage(validationID); err != nil {
		return ids.Empty, fmt.Errorf("%w: %s", ErrNoPendingMessage, validationID)
	}
	if err := m.state.DeletePendingMessage(validationID); err != nil {
		return ids.Empty, err
	}

	vdr.Status = state.Active
	vdr.StartTime = uint64(m.clock.Time().Unix())
	if err := m.state.PutValidator(vdr); err != nil {
		return ids.Empty, err
	}
	if err := m.state.Commit(); err != nil {
		return ids.Empty, err
	}

	m.log.Info("completed validator registration",
		zap.Stringer("validationID", validationID),
		zap.Stringer("nodeID", vdr.NodeID),
	)
	m.metrics.numRegistrationsCompleted.Inc()
	for _, listener := range m.listeners {
		listener.OnCompletedValidatorRegistration(validationID, vdr.Weight)
	}
	return validationID, nil
}

// InitiateValidatorRemoval starts removing an active validator by requesting
// a weight of 0 from the P-Chain. The validator stops accruing obligations
// immediately, but stays PendingRemoved until the P-Chain acknowledges.
func (m *Manager) InitiateValidatorRemoval(validationID ids.ID) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	defer m.state.Abort()

	vdr, err := m.getKnownValidator(validationID)
	if err != nil {
		return err
	}
	if vdr.Status != state.Active {
		return fmt.Errorf(
			"%w: expected %s, got %s",
			ErrInvalidValidatorStatus,
			state.Active,
			vdr.Status,
		)
	}

	weight := vdr.Weight
	vdr.Status = state.PendingRemoved
	vdr.EndTime = uint64(m.clock.Time().Unix())
	if _, _, err := m.initiateWeightUpdate(vdr, 0); err != nil {
		return err
	}
	if err := m.state.PutValidator(vdr); err != nil {
		return err
	}
	if err := m.state.Commit(); err != nil {
		return err
	}

	m.log.Info("initiated validator removal",
		zap.Stringer("validationID", validationID),
		zap.Stringer("nodeID", vdr.NodeID),
		zap.Uint64("weight", weight),
	)
	m.metrics.numRemovalsInitiated.Inc()
	m.updateChurnGauges()
	for _, listener := range m.listeners {
		listener.OnInitiatedValidatorRemoval(validationID, weight)
	}
	return nil
}

// CompleteValidatorRemoval finalizes a removal from the P-Chain's negative
// registration attestation. A PendingRemoved validator becomes Completed; a
// PendingAdded validator whose registration the P-Chain rejected or expired
// becomes Invalidated. Either way the nodeID is freed for reuse.
func (m *Manager) CompleteValidatorRemoval(ack VerifiedMessage) (ids.ID, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	defer m.state.Abort()

	registration, err := message.ParseL1ValidatorRegistration(ack.Payload)
	if err != nil {
		return ids.Empty, fmt.Errorf("parsing registration acknowledgement: %w", err)
	}
	if ack.SourceChainID != m.cfg.PChainID {
		return ids.Empty, fmt.Errorf("%w: %s", ErrInvalidSourceChain, ack.SourceChainID)
	}
	if registration.Registered {
		return ids.Empty, fmt.Errorf(
			"%w: %s is still registered on the P-Chain",
			ErrInvalidAcknowledgement,
			registration.ValidationID,
		)
	}

	validationID := registration.ValidationID
	vdr, err := m.getKnownValidator(validationID)
	if err != nil {
		return ids.Empty, err
	}

	invalidated := false
	switch vdr.Status {
	case state.PendingRemoved:
		vdr.Status = state.Completed
	case state.PendingAdded:
		// The registration never activated. Its weight was charged to the
		// churn tracker's total at initiation and is refunded here.
		invalidated = true
		vdr.Status = state.Invalidated

		period, err := m.state.GetChurnPeriod()
		if err != nil {
			return ids.Empty, err
		}
		if err := deductWeight(period, vdr.Weight); err != nil {
			return ids.Empty, err
		}
		if err := m.state.PutChurnPeriod(period); err != nil {
			return ids.Empty, err
		}
		vdr.Weight = 0
	default:
		return ids.Empty, fmt.Errorf(
			"%w: expected %s or %s, got %s",
			ErrInvalidValidatorStatus,
			state.PendingRemoved,
			state.PendingAdded,
			vdr.Status,
		)
	}

	if err := m.state.DeletePendingMessage(validationID); err != nil {
		return ids.Empty, err
	}
	if err := m.state.DeleteNodeValidation(vdr.NodeID); err != nil {
		return ids.Empty, err
	}
	if err := m.state.PutValidator(vdr); err != nil {
		return ids.Empty, err
	}
	if err := m.state.Commit(); err != nil {
		return ids.Empty, err
	}

	m.log.Info("completed validator removal",
		zap.Stringer("validationID", validationID),
		zap.Stringer("nodeID", vdr.NodeID),
		zap.Bool("invalidated", invalidated),
	)
	m.metrics.numRemovalsCompleted.Inc()
	m.updateChurnGauges()
	for _, listener := range m.listeners {
		listener.OnCompletedValidatorRemoval(validationID, invalidated)
	}
	return validationID, nil
}

// InitiateValidatorWeightUpdate requests the P-Chain set the validator's
// weight to [newWeight] and applies the new weight locally right away. The
// local set therefore runs ahead of the P-Chain until the acknowledgement
// lands; whether actions initiated in that window are honored by the P-Chain
// is caller-dependent, as it is for the on-chain manager.
//
// Weight 0 is reserved for the removal flow. Returns the nonce correlating
// the eventual acknowledgement and the emitted message bytes.
func (m *Manager) InitiateValidatorWeightUpdate(validationID ids.ID, newWeight uint64) (uint64, []byte, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	defer m.state.Abort()

	if newWeight == 0 {
		return 0, nil, fmt.Errorf("%w: use InitiateValidatorRemoval", ErrZeroWeight)
	}

	vdr, err := m.getKnownValidator(validationID)
	if err != nil {
		return 0, nil, err
	}
	if vdr.Status != state.Active {
		return 0, nil, fmt.Errorf(
			"%w: expected %s, got %s",
			ErrInvalidValidatorStatus,
			state.Active,
			vdr.Status,
		)
	}

	nonce, msgBytes, err := m.initiateWeightUpdate(vdr, newWeight)
	if err != nil {
		return 0, nil, err
	}
	if err := m.state.PutValidator(vdr); err != nil {
		return 0, nil, err
	}
	if err := m.state.Commit(); err != nil {
		return 0, nil, err
	}

	m.log.Info("initiated validator weight update",
		zap.Stringer("validationID", validationID),
		zap.Uint64("nonce", nonce),
		zap.Uint64("weight", newWeight),
	)
	m.metrics.numWeightUpdatesInitiated.Inc()
	m.updateChurnGauges()
	for _, listener := range m.listeners {
		listener.OnInitiatedValidatorWeightUpdate(validationID, nonce, newWeight)
	}
	return nonce, msgBytes, nil
}

// initiateWeightUpdate charges churn for moving [vdr] to [newWeight], issues
// the next nonce, caches and emits the weight message. The caller persists
// [vdr] and commits. Assumes m.lock is held.
func (m *Manager) initiateWeightUpdate(vdr *state.Validator, newWeight uint64) (uint64, []byte, error) {
	period, err := m.state.GetChurnPeriod()
	if err != nil {
		return 0, nil, err
	}
	if err := m.churn.checkAndUpdate(period, newWeight, vdr.Weight); err != nil {
		return 0, nil, err
	}
	if err := m.state.PutChurnPeriod(period); err != nil {
		return 0, nil, err
	}

	vdr.SentNonce++
	vdr.Weight = newWeight

	msg, err := message.NewL1ValidatorWeight(vdr.ValidationID, vdr.SentNonce, newWeight)
	if err != nil {
		return 0, nil, err
	}
	if err := m.state.PutPendingMessage(vdr.ValidationID, msg.Bytes()); err != nil {
		return 0, nil, err
	}
	if err := m.messenger.Send(msg.Bytes()); err != nil {
		return 0, nil, err
	}
	return vdr.SentNonce, msg.Bytes(), nil
}

// CompleteValidatorWeightUpdate records the P-Chain's acknowledgement of a
// weight change. Acknowledgements may arrive out of order or be redelivered;
// any nonce between the last acknowledged and the last sent is accepted as
// catch-up, a nonce ahead of what was sent is impossible and rejected.
func (m *Manager) CompleteValidatorWeightUpdate(ack VerifiedMessage) (ids.ID, uint64, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	defer m.state.Abort()

	weightMsg, err := message.ParseL1ValidatorWeight(ack.Payload)
	if err != nil {
		return ids.Empty, 0, fmt.Errorf("parsing weight acknowledgement: %w", err)
	}
	if ack.SourceChainID != m.cfg.PChainID {
		return ids.Empty, 0, fmt.Errorf("%w: %s", ErrInvalidSourceChain, ack.SourceChainID)
	}

	validationID := weightMsg.ValidationID
	vdr, err := m.getKnownValidator(validationID)
	if err != nil {
		return ids.Empty, 0, err
	}
	if weightMsg.Nonce > vdr.SentNonce {
		return ids.Empty, 0, fmt.Errorf(
			"%w: acknowledged nonce %d ahead of sent nonce %d",
			ErrInvalidNonce,
			weightMsg.Nonce,
			vdr.SentNonce,
		)
	}
	if weightMsg.Nonce < vdr.ReceivedNonce {
		return ids.Empty, 0, fmt.Errorf(
			"%w: acknowledged nonce %d behind received nonce %d",
			ErrInvalidNonce,
			weightMsg.Nonce,
			vdr.ReceivedNonce,
		)
	}

	vdr.ReceivedNonce = weightMsg.Nonce
	if weightMsg.Nonce == vdr.SentNonce && vdr.Status == state.Active {
		// The last requested change is acknowledged; nothing left to resend.
		if err := m.state.DeletePendingMessage(validationID); err != nil {
			return ids.Empty, 0, err
		}
	}
	if err := m.state.PutValidator(vdr); err != nil {
		return ids.Empty, 0, err
	}
	if err := m.state.Commit(); err != nil {
		return ids.Empty, 0, err
	}

	m.log.Info("completed validator weight update",
		zap.Stringer("validationID", validationID),
		zap.Uint64("nonce", weightMsg.Nonce),
		zap.Uint64("weight", weightMsg.Weight),
	)
	m.metrics.numWeightUpdatesCompleted.Inc()
	for _, listener := range m.listeners {
		listener.OnCompletedValidatorWeightUpdate(validationID, weightMsg.Nonce, weightMsg.Weight)
	}
	return validationID, weightMsg.Nonce, nil
}

// ResendRegisterValidatorMessage re-emits the cached registration bytes for a
// validator stuck in PendingAdded. The bytes are identical to the original
// send, so this is safe to call any number of times.
func (m *Manager) ResendRegisterValidatorMessage(validationID ids.ID) error {
	return m.resend(validationID, state.PendingAdded)
}

// ResendValidatorRemovalMessage re-emits the cached weight-0 message for a
// validator stuck in PendingRemoved.
func (m *Manager) ResendValidatorRemovalMessage(validationID ids.ID) error {
	return m.resend(validationID, state.PendingRemoved)
}

func (m *Manager) resend(validationID ids.ID, expected state.Status) error {
	m.lock.RLock()
	defer m.lock.RUnlock()

	vdr, err := m.getKnownValidator(validationID)
	if err != nil {
		return err
	}
	if vdr.Status != expected {
		return fmt.Errorf("%w: expected %s, got %s", ErrInvalidValidatorStatus, expected, vdr.Status)
	}
	return m.SendCachedMessage(validationID)
}

// SendCachedMessage re-emits the exact pending message bytes cached under
// [id] without any state change.
func (m *Manager) SendCachedMessage(id ids.ID) error {
	msgBytes, err := m.state.GetPendingMessage(id)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNoPendingMessage, id)
	}
	if err := m.messenger.Send(msgBytes); err != nil {
		return err
	}
	m.metrics.numResends.Inc()
	return nil
}

// GetValidator returns a copy of the record for [validationID].
func (m *Manager) GetValidator(validationID ids.ID) (state.Validator, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	vdr, err := m.getKnownValidator(validationID)
	if err != nil {
		return state.Validator{}, err
	}
	return *vdr, nil
}

// RegisteredValidator returns the non-terminal validationID registered for
// [nodeID], if there is one.
func (m *Manager) RegisteredValidator(nodeID ids.NodeID) (ids.ID, bool) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	validationID, err := m.state.GetNodeValidation(nodeID)
	return validationID, err == nil
}

// TotalWeight returns the current total weight of the validator set,
// including weight that is still awaiting P-Chain acknowledgement.
func (m *Manager) TotalWeight() (uint64, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	period, err := m.state.GetChurnPeriod()
	if err == database.ErrNotFound {
		return 0, ErrNotInitialized
	}
	if err != nil {
		return 0, err
	}
	return period.TotalWeight, nil
}

// ChurnPeriod returns a copy of the current churn window.
func (m *Manager) ChurnPeriod() (state.ChurnPeriod, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	period, err := m.state.GetChurnPeriod()
	if err == database.ErrNotFound {
		return state.ChurnPeriod{}, ErrNotInitialized
	}
	if err != nil {
		return state.ChurnPeriod{}, err
	}
	return *period, nil
}

// Validators returns a copy of every validator record ever stored, terminal
// records included.
func (m *Manager) Validators() ([]state.Validator, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	validationIDs, err := m.state.ValidationIDs()
	if err != nil {
		return nil, err
	}
	validators := make([]state.Validator, 0, len(validationIDs))
	for _, validationID := range validationIDs {
		vdr, err := m.state.GetValidator(validationID)
		if err != nil {
			return nil, err
		}
		validators = append(validators, *vdr)
	}
	return validators, nil
}

// Clock returns the clock all lifecycle timestamps are read from. Exposed so
// hosting layers share one time source and tests can fake it.
func (m *Manager) Clock() *mockable.Clock {
	return &m.clock
}

// Config returns a copy of the manager's configuration.
func (m *Manager) Config() Config {
	return m.cfg
}

func (m *Manager) requireInitialized() error {
	initialized, err := m.state.GetInitialized()
	if err != nil {
		return err
	}
	if !initialized {
		return ErrNotInitialized
	}
	return nil
}

func (m *Manager) getKnownValidator(validationID ids.ID) (*state.Validator, error) {
	vdr, err := m.state.GetValidator(validationID)
	if err == database.ErrNotFound {
		return nil, fmt.Errorf("%w: %s", ErrUnknownValidation, validationID)
	}
	return vdr, err
}

func (m *Manager) updateChurnGauges() {
	period, err := m.state.GetChurnPeriod()
	if err != nil {
		return
	}
	m.metrics.totalWeight.Set(float64(period.TotalWeight))
	m.metrics.churnAmount.Set(float64(period.ChurnAmount))
}
