// Package apperrors defines the error kinds surfaced by the lifecycle engine.
// Every precondition failure is a hard stop; nothing is recovered silently.
package apperrors

import "errors"

var (
	// ErrNotFound indicates a referenced project, proposal, or contract does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNotAuthorized indicates the acting user lacks the role or ownership
	// required for the operation.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrInvalidState indicates the entity is not in the state required as a
	// precondition. Callers wrap it with the current state so the UI can refresh.
	ErrInvalidState = errors.New("invalid state")

	// ErrProjectNotOpen indicates the project is not accepting proposals.
	ErrProjectNotOpen = errors.New("project not open")

	// ErrDuplicateProposal indicates the business already has a non-withdrawn
	// proposal on the project.
	ErrDuplicateProposal = errors.New("duplicate proposal")

	// ErrInvalidAmount indicates a proposal amount of zero or less.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrConcurrentModification indicates the operation lost a race with a
	// concurrent transition on the same project. The engine never auto-retries;
	// the caller should re-fetch and show the new state.
	ErrConcurrentModification = errors.New("concurrent modification")

	// ErrUnsafeContent indicates user-supplied text failed content screening.
	ErrUnsafeContent = errors.New("unsafe content")
)
