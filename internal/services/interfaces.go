package services

import (
	"context"
	"fmt"
)

// ServiceState represents the current lifecycle phase of a service
type ServiceState int

const (
	StateStopped  ServiceState = 0
	StateStarting ServiceState = 1
	StateError    ServiceState = 2
	StateRunning  ServiceState = 3
	StateStopping ServiceState = 4
)

// String returns the phase name
func (s ServiceState) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateStarting:
		return "Starting"
	case StateError:
		return "Error"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	default:
		return fmt.Sprintf("ServiceState(%d)", int(s))
	}
}

// IsActive reports whether the service has left Stopped and not yet returned to it.
func (s ServiceState) IsActive() bool {
	return s == StateStarting || s == StateRunning || s == StateError || s == StateStopping
}

// Service is the capability contract every managed service implements.
// The container only ever talks to a service through this interface.
type Service interface {
	// State returns the current phase. It never blocks.
	State() ServiceState

	// Shutdown requests the transition Stopping -> Stopped.
	// Calling it while Stopping or Stopped is a no-op.
	Shutdown()

	// Terminated returns a channel that is closed exactly once, when the
	// service reaches Stopped after an active run.
	Terminated() <-chan struct{}

	// Changed returns a channel that is closed on the next state transition.
	Changed() <-chan struct{}
}

// Starter is implemented by services that are kicked off by their owner
// rather than by their constructor. Start must not wait for Running; it
// returns once the service has entered Starting.
type Starter interface {
	Start(ctx context.Context) error
}

// Named is an optional interface for services that carry a display name
type Named interface {
	Name() string
}

// ErrorReporter is an optional interface for services that expose the
// error that moved them into StateError
type ErrorReporter interface {
	LastError() error
}

// StateChangeCallback is called when a service's state changes
type StateChangeCallback func(name string, oldState, newState ServiceState, err error)
