// Package ttcerr collects the sentinel errors shared across the solver,
// store, chain watcher, prover client, events manager and RPC surface, so
// that every layer can errors.Is against the same taxonomy described in
// the design (input validation, resource lookup, and operational errors).
package ttcerr

import "errors"

var (
	// ErrEmptyInput is returned by the solver when the preference mapping
	// has no participants.
	ErrEmptyInput = errors.New("ttc: empty preference mapping")

	// ErrInvalidReference is returned by the solver when a preference list
	// names a token that is not itself a participant.
	ErrInvalidReference = errors.New("ttc: preference references a non-participant")

	// ErrNotFound is returned by the store when no row exists for the
	// requested address.
	ErrNotFound = errors.New("ttc: not found")

	// ErrAlreadyExists is returned by the store when a row already exists
	// for an address that a create operation targets.
	ErrAlreadyExists = errors.New("ttc: already exists")

	// ErrIllegalTransition is returned by the store when a requested status
	// transition would violate the monotonic Created -> InProgress ->
	// {Completed, Errored} ordering.
	ErrIllegalTransition = errors.New("ttc: illegal status transition")

	// ErrPhaseMismatch is returned by the prover client when the escrow
	// contract is not currently in the Trade phase.
	ErrPhaseMismatch = errors.New("ttc: contract is not in the trade phase")

	// ErrPhaseTooLate is returned by watchContract when the escrow has
	// already reached or passed the Trade phase.
	ErrPhaseTooLate = errors.New("ttc: contract phase is at or past trade")

	// ErrAlreadyMonitored is returned by the events manager when a monitor
	// request targets an address that already has an in-flight watcher.
	ErrAlreadyMonitored = errors.New("ttc: contract is already being monitored")
)
