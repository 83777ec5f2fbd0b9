package registry

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"svcctl/internal/events"
	"svcctl/pkg/logging"
)

const subsystem = "Registry"

// Component is a service held by the Registry. Initialize runs when it is
// registered and Cleanup when it is removed.
type Component interface {
	Initialize()
	Cleanup()
}

// AlreadyRegisteredError is returned by Register when the type has an entry.
// The existing entry is kept.
type AlreadyRegisteredError struct {
	Type string
}

func (e *AlreadyRegisteredError) Error() string {
	return fmt.Sprintf("service already registered: %s", e.Type)
}

// NotRegisteredError is returned when the type has no entry.
type NotRegisteredError struct {
	Type string
}

func (e *NotRegisteredError) Error() string {
	return fmt.Sprintf("service not registered: %s", e.Type)
}

// Registry is a synchronous, type-keyed set of components. Unlike the
// container it never constructs anything and never waits for readiness.
type Registry struct {
	mu         sync.RWMutex
	components map[reflect.Type]Component
	bus        events.Bus
}

// New creates an empty registry. bus may be nil.
func New(bus events.Bus) *Registry {
	return &Registry{
		components: make(map[reflect.Type]Component),
		bus:        bus,
	}
}

func typeKey[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Register initializes svc and adds it under T. The entry only becomes
// visible once Initialize has returned. When another instance of T won the
// race, svc is cleaned up again and AlreadyRegisteredError is returned.
func Register[T Component](r *Registry, svc T) error {
	key := typeKey[T]()

	if Has[T](r) {
		return r.duplicate(key)
	}

	svc.Initialize()

	r.mu.Lock()
	if _, exists := r.components[key]; exists {
		r.mu.Unlock()
		svc.Cleanup()
		return r.duplicate(key)
	}
	r.components[key] = svc
	r.mu.Unlock()

	logging.Debug(subsystem, "Registered %s", key)
	r.publish(events.NewEvent(events.EventTypeServiceRegistered, key.String()))
	return nil
}

func (r *Registry) duplicate(key reflect.Type) error {
	err := &AlreadyRegisteredError{Type: key.String()}
	logging.Warn(subsystem, "%v", err)
	return err
}

// Get returns the component registered under T
func Get[T Component](r *Registry) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	svc, ok := r.components[typeKey[T]()]
	if !ok {
		var zero T
		return zero, false
	}
	return svc.(T), true
}

// MustGet returns the component registered under T and panics if it is missing
func MustGet[T Component](r *Registry) T {
	svc, ok := Get[T](r)
	if !ok {
		panic(fmt.Sprintf("service not found: %s", typeKey[T]()))
	}
	return svc
}

// Has reports whether T is registered
func Has[T Component](r *Registry) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.components[typeKey[T]()]
	return ok
}

// Remove deletes the entry for T and runs its Cleanup
func Remove[T Component](r *Registry) error {
	key := typeKey[T]()

	r.mu.Lock()
	svc, ok := r.components[key]
	if ok {
		delete(r.components, key)
	}
	r.mu.Unlock()

	if !ok {
		err := &NotRegisteredError{Type: key.String()}
		logging.Warn(subsystem, "Trying to remove a service that isn't registered: %s", key)
		return err
	}

	svc.Cleanup()

	logging.Debug(subsystem, "Removed %s", key)
	r.publish(events.NewEvent(events.EventTypeServiceRemoved, key.String()))
	return nil
}

// Clear removes every component, running Cleanup on each in name order
func (r *Registry) Clear() {
	r.mu.Lock()
	removed := r.components
	r.components = make(map[reflect.Type]Component)
	r.mu.Unlock()

	keys := make([]reflect.Type, 0, len(removed))
	for k := range removed {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})

	for _, k := range keys {
		removed[k].Cleanup()
		r.publish(events.NewEvent(events.EventTypeServiceRemoved, k.String()))
	}
	if len(keys) > 0 {
		logging.Info(subsystem, "Cleared %d service(s)", len(keys))
	}
}

// Names returns the registered type names, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.components))
	for k := range r.components {
		names = append(names, k.String())
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered components
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.components)
}

func (r *Registry) publish(evt events.Event) {
	if r.bus != nil {
		r.bus.Publish(evt)
	}
}
