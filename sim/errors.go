package sim

import "errors"

// Input errors returned by NewScheduler and AddProcess. Callers match them with errors.Is;
// the returned error wraps one of these with the offending process or field.
var (
	ErrMissingID      = errors.New("process id must not be empty")
	ErrEmptyBursts    = errors.New("process has no bursts")
	ErrInvalidBurst   = errors.New("invalid burst")
	ErrInvalidField   = errors.New("invalid process field")
	ErrDuplicateID    = errors.New("duplicate process id")
	ErrAlreadyStarted = errors.New("simulation already started")
	ErrNoIODevice     = errors.New("process has io bursts but no io devices are configured")
	ErrInvalidConfig  = errors.New("invalid scheduler config")
	ErrTickLimit      = errors.New("tick limit reached with unfinished processes")
)

// ErrInvariantViolation is returned by Scheduler.CheckInvariants. It signals an
// engine defect, never bad input.
var ErrInvariantViolation = errors.New("scheduler invariant violated")
