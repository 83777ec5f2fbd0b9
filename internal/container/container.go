package container

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"svcctl/internal/events"
	"svcctl/internal/services"
	"svcctl/pkg/logging"
)

const subsystem = "Container"

// Config controls the waits performed by the container.
type Config struct {
	// ReadyTimeout bounds GetService while it waits for StateRunning.
	// Zero waits until the caller's context is done.
	ReadyTimeout time.Duration

	// StopTimeout bounds StopService and WaitForTermination.
	// Zero waits until the caller's context is done.
	StopTimeout time.Duration

	// Events receives lifecycle events. Nil disables publishing.
	Events events.Bus
}

// ServiceInfo describes a registered service for display.
type ServiceInfo struct {
	Type    string
	Name    string
	State   services.ServiceState
	Service services.Service
}

type provider struct {
	id    string
	build func() (services.Service, error)
}

// entry is one registered instance. removed is closed once the termination
// handler has deleted the entry.
type entry struct {
	key     reflect.Type
	name    string
	service services.Service
	removed chan struct{}
	once    sync.Once
	running atomic.Bool
}

// Container owns the type-to-instance mapping. It constructs services on
// first request, hands them out once running and drops them when they
// terminate. The zero value is not usable; call New.
type Container struct {
	cfg Config

	mu        sync.RWMutex
	entries   map[reflect.Type]*entry
	providers map[reflect.Type]provider

	group     singleflight.Group
	providerN atomic.Uint64
}

// New creates an empty container
func New(cfg Config) *Container {
	return &Container{
		cfg:       cfg,
		entries:   make(map[reflect.Type]*entry),
		providers: make(map[reflect.Type]provider),
	}
}

func typeKey[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Provide registers the zero-argument factory used to construct T.
// A later call for the same T replaces the factory; running instances are kept.
func Provide[T services.Service](c *Container, factory func() (T, error)) {
	key := typeKey[T]()
	p := provider{
		build: func() (services.Service, error) {
			svc, err := factory()
			if err != nil {
				return nil, err
			}
			if isNil(svc) {
				return nil, ErrNilService
			}
			return svc, nil
		},
	}

	c.mu.Lock()
	prev, replaced := c.providers[key]
	if replaced {
		// Keep the id so constructions for this type stay deduplicated.
		p.id = prev.id
	} else {
		p.id = strconv.FormatUint(c.providerN.Add(1), 10)
	}
	c.providers[key] = p
	c.mu.Unlock()

	if replaced {
		logging.Debug(subsystem, "Replaced factory for %s", key)
	}
}

// GetService returns the instance of T, constructing it if needed, once it
// reports StateRunning. Concurrent callers for an absent T share a single
// construction and receive the same instance.
func GetService[T services.Service](ctx context.Context, c *Container) (T, error) {
	var zero T
	key := typeKey[T]()

	e, err := c.getOrCreate(ctx, key)
	if err != nil {
		return zero, err
	}
	if err := c.waitRunning(ctx, e); err != nil {
		return zero, err
	}
	return e.service.(T), nil
}

// HasService reports whether T has a live entry, in any state.
func HasService[T services.Service](c *Container) bool {
	_, ok := c.lookup(typeKey[T]())
	return ok
}

// TryGetService returns the registered instance of T without waiting for it to run.
func TryGetService[T services.Service](c *Container) (T, bool) {
	var zero T
	e, ok := c.lookup(typeKey[T]())
	if !ok {
		return zero, false
	}
	return e.service.(T), true
}

// StopService shuts down the instance of T and waits until it has stopped
// and left the registry. An unregistered T is logged and ignored.
func StopService[T services.Service](ctx context.Context, c *Container) error {
	key := typeKey[T]()
	e, ok := c.lookup(key)
	if !ok {
		logging.Warn(subsystem, "Trying to shut down a service that isn't registered: %s", key)
		return nil
	}

	switch st := e.service.State(); {
	case st == services.StateStopped && !isClosed(e.service.Terminated()):
		// Never launched, so there is nothing to wait for.
		c.remove(e)
		return nil
	case st != services.StateStopping && st != services.StateStopped:
		logging.Info(subsystem, "Stopping service: %s", e.name)
		e.service.Shutdown()
	}

	if c.cfg.StopTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.StopTimeout)
		defer cancel()
	}

	select {
	case <-e.removed:
		return nil
	case <-ctx.Done():
		err := &ShutdownError{Type: e.name, State: e.service.State(), Err: fmt.Errorf("%w: %w", ErrWaitCancelled, ctx.Err())}
		logging.Error(subsystem, err, "Gave up waiting for %s to stop", e.name)
		return err
	}
}

// StopAllServices calls Shutdown on every registered service and returns
// without waiting for any of them.
func (c *Container) StopAllServices() {
	for _, e := range c.snapshot() {
		if st := e.service.State(); st == services.StateStopping || st == services.StateStopped {
			continue
		}
		logging.Info(subsystem, "Stopping service: %s", e.name)
		e.service.Shutdown()
	}
}

// WaitForTermination blocks until every service registered at call time has
// left the registry.
func (c *Container) WaitForTermination(ctx context.Context) error {
	if c.cfg.StopTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.StopTimeout)
		defer cancel()
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, e := range c.snapshot() {
		e := e
		g.Go(func() error {
			select {
			case <-e.removed:
				return nil
			case <-gctx.Done():
				return &ShutdownError{Type: e.name, State: e.service.State(), Err: fmt.Errorf("%w: %w", ErrWaitCancelled, gctx.Err())}
			}
		})
	}
	return g.Wait()
}

// Services lists the registered services sorted by type name.
func (c *Container) Services() []ServiceInfo {
	snap := c.snapshot()
	infos := make([]ServiceInfo, 0, len(snap))
	for _, e := range snap {
		info := ServiceInfo{
			Type:    e.name,
			Name:    e.name,
			State:   e.service.State(),
			Service: e.service,
		}
		if named, ok := e.service.(services.Named); ok {
			info.Name = named.Name()
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Type < infos[j].Type
	})
	return infos
}

// Len returns the number of registered services
func (c *Container) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Container) lookup(key reflect.Type) (*entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok
}

func (c *Container) snapshot() []*entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*entry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e)
	}
	return out
}

func (c *Container) getOrCreate(ctx context.Context, key reflect.Type) (*entry, error) {
	if e, ok, err := c.live(ctx, key); err != nil || ok {
		return e, err
	}

	c.mu.RLock()
	p, ok := c.providers[key]
	c.mu.RUnlock()
	if !ok {
		err := &ConstructionError{Type: key.String(), Err: ErrNoFactory}
		logging.Error(subsystem, err, "Failed to start service %s", key)
		return nil, err
	}

	v, err, _ := c.group.Do(p.id, func() (interface{}, error) {
		// Another caller may have finished constructing before we got here.
		if e, ok, err := c.live(ctx, key); err != nil || ok {
			return e, err
		}
		return c.construct(ctx, key, p)
	})
	if err != nil {
		return nil, err
	}
	return v.(*entry), nil
}

// live returns the entry for key unless its service has terminated. A
// terminated entry is waited out until its termination handler removed it.
func (c *Container) live(ctx context.Context, key reflect.Type) (*entry, bool, error) {
	for {
		e, ok := c.lookup(key)
		if !ok {
			return nil, false, nil
		}
		if !isClosed(e.service.Terminated()) {
			return e, true, nil
		}

		select {
		case <-e.removed:
		case <-ctx.Done():
			return nil, false, &ReadinessError{Type: e.name, State: e.service.State(), Err: fmt.Errorf("%w: %w", ErrWaitCancelled, ctx.Err())}
		}
	}
}

func (c *Container) construct(ctx context.Context, key reflect.Type, p provider) (e *entry, err error) {
	name := key.String()
	defer func() {
		if r := recover(); r != nil {
			e = nil
			err = &ConstructionError{Type: name, Err: fmt.Errorf("factory panicked: %v", r)}
		}
		if err != nil {
			logging.Error(subsystem, err, "Failed to start service %s", name)
		}
	}()

	svc, err := p.build()
	if err != nil {
		return nil, &ConstructionError{Type: name, Err: err}
	}

	if starter, ok := svc.(services.Starter); ok {
		// The service outlives the request that triggered its construction.
		if err := starter.Start(context.WithoutCancel(ctx)); err != nil {
			return nil, &ConstructionError{Type: name, Err: err}
		}
	}

	e = &entry{
		key:     key,
		name:    name,
		service: svc,
		removed: make(chan struct{}),
	}

	c.mu.Lock()
	if _, exists := c.entries[key]; exists {
		c.mu.Unlock()
		svc.Shutdown()
		return nil, fmt.Errorf("%w for %s", ErrDuplicateEntry, name)
	}
	c.entries[key] = e
	c.mu.Unlock()

	st := svc.State()
	logging.Info(subsystem, "Service starting: %s", name)
	c.publish(events.NewEvent(events.EventTypeServiceRegistered, name).WithState(st))

	go c.watch(e, st)

	return e, nil
}

// waitRunning blocks until the service is running, failed, terminated or
// the context is done.
func (c *Container) waitRunning(ctx context.Context, e *entry) error {
	if c.cfg.ReadyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.ReadyTimeout)
		defer cancel()
	}

	for {
		changed := e.service.Changed()
		st := e.service.State()
		switch st {
		case services.StateRunning:
			c.logRunning(e)
			return nil
		case services.StateError:
			err := ErrServiceFailed
			if reporter, ok := e.service.(services.ErrorReporter); ok && reporter.LastError() != nil {
				err = fmt.Errorf("%w: %w", ErrServiceFailed, reporter.LastError())
			}
			return &ReadinessError{Type: e.name, State: st, Err: err}
		case services.StateStopping:
			return &ReadinessError{Type: e.name, State: st, Err: ErrServiceTerminated}
		case services.StateStopped:
			select {
			case <-e.service.Terminated():
				return &ReadinessError{Type: e.name, State: st, Err: ErrServiceTerminated}
			default:
			}
		}

		select {
		case <-changed:
		case <-e.service.Terminated():
		case <-e.removed:
			return &ReadinessError{Type: e.name, State: e.service.State(), Err: ErrServiceTerminated}
		case <-ctx.Done():
			return &ReadinessError{Type: e.name, State: e.service.State(), Err: fmt.Errorf("%w: %w", ErrWaitCancelled, ctx.Err())}
		}
	}
}

// watch follows the state of a registered service, publishing the states it
// observes, and removes the entry once the service terminates. Transitions
// that happen between two wakeups are coalesced.
func (c *Container) watch(e *entry, last services.ServiceState) {
	// The service may have moved past Starting before it was inserted.
	if last != services.StateStarting && last != services.StateStopped {
		c.observe(e, last)
	}
	for {
		changed := e.service.Changed()
		st := e.service.State()
		if st != last {
			c.observe(e, st)
			last = st
		}

		select {
		case <-changed:
		case <-e.service.Terminated():
			if last != services.StateStopped {
				c.observe(e, services.StateStopped)
			}
			c.remove(e)
			return
		case <-e.removed:
			return
		}
	}
}

func (c *Container) observe(e *entry, st services.ServiceState) {
	var evt events.Event
	switch st {
	case services.StateStarting:
		evt = events.NewEvent(events.EventTypeServiceStarting, e.name)
	case services.StateRunning:
		c.logRunning(e)
		evt = events.NewEvent(events.EventTypeServiceRunning, e.name)
	case services.StateError:
		var err error
		if reporter, ok := e.service.(services.ErrorReporter); ok {
			err = reporter.LastError()
		}
		logging.Error(subsystem, err, "Service failed: %s", e.name)
		evt = events.NewEvent(events.EventTypeServiceFailed, e.name).WithError(err)
	case services.StateStopping:
		evt = events.NewEvent(events.EventTypeServiceStopping, e.name)
	case services.StateStopped:
		logging.Info(subsystem, "Service stopped: %s", e.name)
		evt = events.NewEvent(events.EventTypeServiceStopped, e.name)
	default:
		return
	}
	c.publish(evt.WithState(st))
}

// logRunning logs the first time an entry is seen running, whether by a
// waiting caller or by the watcher.
func (c *Container) logRunning(e *entry) {
	if e.running.CompareAndSwap(false, true) {
		logging.Info(subsystem, "Service running: %s", e.name)
	}
}

// remove is the termination handler. It deletes the entry only if the
// mapping still holds this instance.
func (c *Container) remove(e *entry) {
	e.once.Do(func() {
		c.mu.Lock()
		if cur, ok := c.entries[e.key]; ok && cur == e {
			delete(c.entries, e.key)
		}
		c.mu.Unlock()

		logging.Debug(subsystem, "Removed %s from registry", e.name)
		c.publish(events.NewEvent(events.EventTypeServiceRemoved, e.name).WithState(services.StateStopped))
		close(e.removed)
	})
}

func (c *Container) publish(evt events.Event) {
	if c.cfg.Events != nil {
		c.cfg.Events.Publish(evt)
	}
}

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
