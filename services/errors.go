package services

import "errors"

// Workflow error kinds. Callers classify with errors.Is; the HTTP layer maps
// each kind to a status code.
var (
	// ErrNotFound - the record or user does not resolve, or the caller is
	// not allowed to know that it does.
	ErrNotFound = errors.New("record not found")

	// ErrConflict - a duplicate active submission, or a lost race on a
	// status transition.
	ErrConflict = errors.New("conflicting operation in progress")

	// ErrInvalidTransition - the record's current status does not permit
	// the requested transition.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrValidation - bad input: missing mandatory comment, missing
	// required document slot, unknown slot name.
	ErrValidation = errors.New("validation failed")

	// ErrPromotionFailed - the role write after approval did not succeed;
	// the status change has been rolled back and the decide call may be
	// retried safely.
	ErrPromotionFailed = errors.New("role promotion failed")

	// ErrRoleConflict - the user's current role is neither the expected
	// source role nor the target role.
	ErrRoleConflict = errors.New("unexpected user role")

	// ErrForbidden - the actor does not hold the capability the operation
	// requires.
	ErrForbidden = errors.New("operation not permitted")

	// ErrStorageFailure - an upload or delete against the object store
	// failed; the whole operation was aborted.
	ErrStorageFailure = errors.New("object storage failure")
)
