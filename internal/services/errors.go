package services

import "errors"

// Sentinel errors for rule violations. Handlers translate these into
// HTTP responses; services never write responses themselves.
var (
	// ErrDenied means the caller lacks the role, capability, or ownership
	// the operation requires.
	ErrDenied = errors.New("access denied")

	// ErrPendingApproval means an employer account awaiting approval tried
	// a restricted action. The UI shows a pending gate view for this.
	ErrPendingApproval = errors.New("account pending approval")

	// ErrJobNotOpen means an application targeted a job that is not in the
	// approved state.
	ErrJobNotOpen = errors.New("job is not open for applications")

	// ErrInvalidState means the operation is not valid for the entity's
	// current state, e.g. withdrawing a reviewed application.
	ErrInvalidState = errors.New("invalid state for this operation")

	// ErrValidation means the input was malformed or missing.
	ErrValidation = errors.New("invalid input")
)
