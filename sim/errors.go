package sim

import (
	"errors"
	"fmt"

	"github.com/scdt-sim/scdt/sim/geo"
	"github.com/scdt-sim/scdt/sim/network"
)

// InvalidTimeError reports a request for a point in time the timeline cannot
// hold: an event scheduled before the current tick, or a date before the
// start date. It always indicates a programming or data error.
type InvalidTimeError struct {
	Now       int64  // current tick when the request was made
	Requested int64  // requested tick (negative for pre-epoch dates)
	Reason    string // optional detail
}

func (e *InvalidTimeError) Error() string {
	if e.Reason != "" {
		return "invalid time: " + e.Reason
	}
	return fmt.Sprintf("invalid time: tick %d is before current tick %d", e.Requested, e.Now)
}

// DomainError is re-exported from geo for callers that only import sim.
type DomainError = geo.DomainError

// ReferentialError is re-exported from network for callers that only import sim.
type ReferentialError = network.ReferentialError

// ProcessError wraps an unrecovered error raised while a process resumed,
// together with where and when it happened. A session that returns a
// ProcessError is Failed.
type ProcessError struct {
	Tick      int64
	Date      string
	ProcessID string
	Err       error
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("process %s failed at tick %d (%s): %v", e.ProcessID, e.Tick, e.Date, e.Err)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

var (
	// ErrNotInitialized is returned by Run and Step before Init.
	ErrNotInitialized = errors.New("session not initialized")
	// ErrSessionClosed is returned by Run and Step after Stop or a failure.
	ErrSessionClosed = errors.New("session is stopped or failed")
	// ErrAlreadyInitialized is returned by a second call to Init.
	ErrAlreadyInitialized = errors.New("session already initialized")
)
