// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package validatormanager

import "errors"

var (
	// Input validation errors. The caller must fix the request; retrying the
	// same call can never succeed.
	ErrInvalidBLSPublicKey = errors.New("invalid BLS public key length")
	ErrInvalidExpiry       = errors.New("invalid registration expiry")
	ErrZeroWeight          = errors.New("weight must be non-zero")

	// State-conflict errors. The caller's view of the validator set is
	// stale; it must re-query before deciding whether to retry.
	ErrAlreadyInitialized     = errors.New("validator set already initialized")
	ErrNotInitialized         = errors.New("validator set not initialized")
	ErrNodeAlreadyRegistered  = errors.New("nodeID already registered")
	ErrUnknownValidation      = errors.New("unknown validationID")
	ErrInvalidValidatorStatus = errors.New("invalid validator status")
	ErrInvalidNonce           = errors.New("invalid nonce")
	ErrNoPendingMessage       = errors.New("no pending message")

	// Churn-limit errors. The caller should back off and retry once the
	// churn window has space.
	ErrChurnRateExceeded = errors.New("maximum churn rate exceeded")
	ErrTotalWeightTooLow = errors.New("total weight too low for churn limit")

	// External-message errors. The proof is unusable; the caller must obtain
	// a fresh one.
	ErrInvalidSourceChain     = errors.New("message from unexpected source chain")
	ErrConversionMismatch     = errors.New("conversion data does not match acknowledgement")
	ErrWrongManagerIdentity   = errors.New("conversion data references a different manager")
	ErrInvalidAcknowledgement = errors.New("unexpected acknowledgement flag")
)
