package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"svcctl/pkg/logging"
)

var (
	// ErrAlreadyLaunched is returned by Launch when the service has left Stopped.
	ErrAlreadyLaunched = errors.New("service already launched")
	// ErrTerminated is returned by Launch once the service has completed a run.
	ErrTerminated = errors.New("service terminated")
)

const defaultStopTimeout = 30 * time.Second

// StopFunc releases the resources of a service during shutdown
type StopFunc func(ctx context.Context) error

// Option configures a BaseService
type Option func(*BaseService)

// WithStopFunc sets the hook run between Stopping and Stopped
func WithStopFunc(fn StopFunc) Option {
	return func(b *BaseService) {
		b.stopFunc = fn
	}
}

// WithStopTimeout bounds the stop hook. Zero or negative disables the bound.
func WithStopTimeout(d time.Duration) Option {
	return func(b *BaseService) {
		b.stopTimeout = d
	}
}

// BaseService implements the Service state machine. Concrete services embed
// it, call Launch to start and Fail to report runtime failures.
type BaseService struct {
	name  string
	state atomic.Int32

	mu          sync.Mutex
	changed     chan struct{}
	terminated  chan struct{}
	termOnce    sync.Once
	lastError   error
	callback    StateChangeCallback
	cancelStart context.CancelFunc
	startDone   chan struct{}

	pending     []transition
	dispatching bool

	stopFunc    StopFunc
	stopTimeout time.Duration
}

// transition is a state change waiting to be delivered to the callback
type transition struct {
	old, next ServiceState
	err       error
	after     func()
}

// NewBaseService creates a base service in StateStopped
func NewBaseService(name string, opts ...Option) *BaseService {
	b := &BaseService{
		name:        name,
		changed:     make(chan struct{}),
		terminated:  make(chan struct{}),
		stopTimeout: defaultStopTimeout,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name returns the service name
func (b *BaseService) Name() string {
	return b.name
}

// State returns the current state
func (b *BaseService) State() ServiceState {
	return ServiceState(b.state.Load())
}

// LastError returns the error recorded by the last failure
func (b *BaseService) LastError() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastError
}

// Terminated implements Service
func (b *BaseService) Terminated() <-chan struct{} {
	return b.terminated
}

// Changed implements Service
func (b *BaseService) Changed() <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.changed
}

// SetStateChangeCallback sets the callback invoked after every transition
func (b *BaseService) SetStateChangeCallback(callback StateChangeCallback) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.callback = callback
}

// Launch moves the service from Stopped to Starting and runs start in a
// goroutine. The service becomes Running when start returns nil and Error
// otherwise. Launch does not wait for start.
func (b *BaseService) Launch(ctx context.Context, start func(ctx context.Context) error) error {
	b.mu.Lock()
	select {
	case <-b.terminated:
		b.mu.Unlock()
		return fmt.Errorf("%s: %w", b.name, ErrTerminated)
	default:
	}
	if b.State() != StateStopped {
		b.mu.Unlock()
		return fmt.Errorf("%s: %w", b.name, ErrAlreadyLaunched)
	}
	startCtx, cancel := context.WithCancel(ctx)
	b.cancelStart = cancel
	done := make(chan struct{})
	b.startDone = done
	b.transitionLocked(StateStarting, nil, nil)
	b.mu.Unlock()
	b.dispatch()

	logging.Info("Service-"+b.name, "Service starting")

	go func() {
		defer close(done)
		defer cancel()

		var err error
		if start != nil {
			err = start(startCtx)
		}

		b.mu.Lock()
		// A concurrent Shutdown owns the state from here on.
		if b.State() != StateStarting {
			b.mu.Unlock()
			return
		}
		next := StateRunning
		if err != nil {
			next = StateError
		}
		b.transitionLocked(next, err, nil)
		b.mu.Unlock()
		b.dispatch()

		if err != nil {
			logging.Error("Service-"+b.name, err, "Service failed to start")
			return
		}
		logging.Info("Service-"+b.name, "Service running")
	}()

	return nil
}

// Fail moves a Starting or Running service into StateError
func (b *BaseService) Fail(err error) {
	b.mu.Lock()
	st := b.State()
	if st != StateStarting && st != StateRunning {
		b.mu.Unlock()
		return
	}
	b.transitionLocked(StateError, err, nil)
	b.mu.Unlock()
	b.dispatch()

	logging.Error("Service-"+b.name, err, "Service failed")
}

// Shutdown implements Service. The stop hook runs in the background once any
// in-flight start has returned; Terminated closes after the final transition.
func (b *BaseService) Shutdown() {
	b.mu.Lock()
	st := b.State()
	if st == StateStopping || st == StateStopped {
		b.mu.Unlock()
		return
	}
	b.transitionLocked(StateStopping, nil, nil)
	if b.cancelStart != nil {
		b.cancelStart()
	}
	startDone := b.startDone
	b.mu.Unlock()
	b.dispatch()

	logging.Info("Service-"+b.name, "Service stopping")

	go b.finishShutdown(startDone)
}

func (b *BaseService) finishShutdown(startDone <-chan struct{}) {
	if startDone != nil {
		<-startDone
	}

	var err error
	if b.stopFunc != nil {
		ctx := context.Background()
		var cancel context.CancelFunc
		if b.stopTimeout > 0 {
			ctx, cancel = context.WithTimeout(ctx, b.stopTimeout)
		}
		err = b.stopFunc(ctx)
		if cancel != nil {
			cancel()
		}
		if err != nil {
			logging.Error("Service-"+b.name, err, "Stop hook returned an error")
		}
	}

	logging.Info("Service-"+b.name, "Service stopped")

	// Terminated closes only after the Stopped callback has been delivered.
	b.mu.Lock()
	b.transitionLocked(StateStopped, err, func() {
		b.termOnce.Do(func() {
			close(b.terminated)
		})
	})
	b.mu.Unlock()
	b.dispatch()
}

// transitionLocked stores the new state, wakes waiters and queues the
// callback delivery. Callers hold b.mu and call dispatch after unlocking.
func (b *BaseService) transitionLocked(next ServiceState, err error, after func()) {
	old := ServiceState(b.state.Swap(int32(next)))
	if err != nil {
		b.lastError = err
	}
	close(b.changed)
	b.changed = make(chan struct{})
	b.pending = append(b.pending, transition{old: old, next: next, err: err, after: after})
}

// dispatch delivers queued transitions in order. Only one goroutine drains
// the queue at a time and no lock is held while the callback runs, so a
// callback may call back into the service.
func (b *BaseService) dispatch() {
	b.mu.Lock()
	if b.dispatching {
		b.mu.Unlock()
		return
	}
	b.dispatching = true
	for len(b.pending) > 0 {
		t := b.pending[0]
		b.pending = b.pending[1:]
		cb := b.callback
		b.mu.Unlock()

		if cb != nil && t.old != t.next {
			cb(b.name, t.old, t.next, t.err)
		}
		if t.after != nil {
			t.after()
		}

		b.mu.Lock()
	}
	b.dispatching = false
	b.mu.Unlock()
}
