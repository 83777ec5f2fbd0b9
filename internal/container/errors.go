package container

import (
	"errors"
	"fmt"

	"svcctl/internal/services"
)

var (
	// ErrNoFactory is wrapped by ConstructionError when no factory was provided for a type.
	ErrNoFactory = errors.New("no factory provided")
	// ErrNilService is wrapped by ConstructionError when a factory returned a nil service.
	ErrNilService = errors.New("factory returned nil service")
	// ErrDuplicateEntry reports an insert for a type that already has an entry.
	// It means the registry invariant was broken and the operation was aborted.
	ErrDuplicateEntry = errors.New("duplicate registry entry")
	// ErrServiceFailed is wrapped by ReadinessError when the service entered StateError.
	ErrServiceFailed = errors.New("service failed")
	// ErrServiceTerminated is wrapped by ReadinessError when the service
	// stopped or started stopping while a caller waited for it.
	ErrServiceTerminated = errors.New("service terminated")
	// ErrWaitCancelled is wrapped when a wait ended because its context was done.
	ErrWaitCancelled = errors.New("wait cancelled")
)

// ConstructionError represents a failure to build or start a service.
type ConstructionError struct {
	Type string
	Err  error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("construction failed for type %s: %v", e.Type, e.Err)
}

func (e *ConstructionError) Unwrap() error {
	return e.Err
}

// ReadinessError reports that a service never reached StateRunning for a waiting caller.
type ReadinessError struct {
	Type  string
	State services.ServiceState
	Err   error
}

func (e *ReadinessError) Error() string {
	return fmt.Sprintf("service %s not ready (state %s): %v", e.Type, e.State, e.Err)
}

func (e *ReadinessError) Unwrap() error {
	return e.Err
}

// ShutdownError reports that a service did not finish stopping in time.
type ShutdownError struct {
	Type  string
	State services.ServiceState
	Err   error
}

func (e *ShutdownError) Error() string {
	return fmt.Sprintf("shutdown of %s did not complete (state %s): %v", e.Type, e.State, e.Err)
}

func (e *ShutdownError) Unwrap() error {
	return e.Err
}
