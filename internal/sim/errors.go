package sim

import "errors"

var (
	// ErrInvalidLatency is returned when a latency write is non-positive,
	// not finite, or outside the configured bounds. The prior value stays in effect.
	ErrInvalidLatency = errors.New("invalid latency")
	// ErrUnknownService is returned when an operation names a service the
	// simulator does not track. Nothing is mutated.
	ErrUnknownService = errors.New("unknown service")
	// ErrStopped is returned when a stopped simulator is asked to tick or start again.
	ErrStopped = errors.New("simulator stopped")
	// ErrAlreadyRunning is returned by Start on a running simulator.
	ErrAlreadyRunning = errors.New("simulator already running")
)
