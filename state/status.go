// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

// Status describes where a validator or delegator is in its lifecycle.
type Status uint8

const (
	// Unknown means the validation was never registered.
	Unknown Status = iota
	// PendingAdded means the registration was initiated locally but the
	// P-Chain has not acknowledged it yet.
	PendingAdded
	// Active means the P-Chain acknowledged the registration.
	Active
	// PendingRemoved means the removal was initiated locally but the P-Chain
	// has not acknowledged it yet.
	PendingRemoved
	// Completed means the validation was active and has since been removed
	// from the P-Chain.
	Completed
	// Invalidated means the registration was never acknowledged by the
	// P-Chain and can never become active.
	Invalidated
)

// Terminal reports whether no further transitions are possible. Once a
// validation is terminal its nodeID may be reused by a new registration.
func (s Status) Terminal() bool {
	return s == Completed || s == Invalidated
}

func (s Status) String() string {
	switch s {
	case PendingAdded:
		return "pendingAdded"
	case Active:
		return "active"
	case PendingRemoved:
		return "pendingRemoved"
	case Completed:
		return "completed"
	case Invalidated:
		return "invalidated"
	default:
		return "unknown"
	}
}
