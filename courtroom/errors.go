package courtroom

import "errors"

// Error taxonomy for orchestration actions. Callers branch with
// errors.Is; every error returned by this package wraps exactly one of
// these sentinels.
var (
	// ErrValidation covers bad local input, rejected before any network
	// call is made
	ErrValidation = errors.New("validation error")

	// ErrAuthorization covers wrong-role and wrong-turn rejections; no
	// local state is mutated
	ErrAuthorization = errors.New("authorization error")

	// ErrRateLimited covers both the local mirror's prediction and a
	// server rejection the mirror failed to predict
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrService covers generation or persistence failures on the
	// server; the local transcript is left unmodified
	ErrService = errors.New("service error")

	// ErrStateConflict covers actions that are illegal in the current
	// state, such as calling a second witness or a duplicate in-flight
	// submission
	ErrStateConflict = errors.New("state conflict")
)
