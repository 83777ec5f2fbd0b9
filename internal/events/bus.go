package events

import (
	"sync"
	"time"

	"svcctl/pkg/logging"
)

// EventHandler is a function that processes events
type EventHandler func(Event)

// EventFilter is a function that determines if an event should be processed
type EventFilter func(Event) bool

// Subscription represents a subscription to events
type Subscription struct {
	ID      string
	Filter  EventFilter
	Handler EventHandler
	Channel chan Event
	closed  bool
	mu      sync.RWMutex
}

// Close closes the subscription
func (s *Subscription) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		if s.Channel != nil {
			close(s.Channel)
		}
		s.closed = true
	}
}

// IsClosed returns whether the subscription is closed
func (s *Subscription) IsClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// deliver sends an event on the subscription channel without blocking.
// It reports false when the buffer is full.
func (s *Subscription) deliver(event Event) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return true
	}
	select {
	case s.Channel <- event:
		return true
	default:
		return false
	}
}

// Bus provides publish/subscribe functionality for lifecycle events
type Bus interface {
	// Publish publishes an event to all subscribers
	Publish(event Event)

	// Subscribe creates a subscription with a handler function
	Subscribe(filter EventFilter, handler EventHandler) *Subscription

	// SubscribeChannel creates a subscription with a buffered channel
	SubscribeChannel(filter EventFilter, bufferSize int) *Subscription

	// Unsubscribe removes a subscription
	Unsubscribe(subscription *Subscription)

	// GetMetrics returns event bus metrics
	GetMetrics() Metrics

	// Close closes the event bus and all subscriptions
	Close()
}

// Metrics tracks event bus activity
type Metrics struct {
	TotalSubscriptions  int
	ActiveSubscriptions int
	EventsPublished     int64
	EventsDelivered     int64
	EventsDropped       int64
	LastEventTime       time.Time
	EventsByType        map[EventType]int64
}

// DefaultBus is the default implementation of Bus
type DefaultBus struct {
	subscriptions map[string]*Subscription
	metrics       Metrics
	mu            sync.RWMutex
	closed        bool
}

// NewBus creates a new event bus
func NewBus() *DefaultBus {
	return &DefaultBus{
		subscriptions: make(map[string]*Subscription),
		metrics: Metrics{
			EventsByType: make(map[EventType]int64),
		},
	}
}

// Publish publishes an event to all subscribers
func (b *DefaultBus) Publish(event Event) {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}

	// Copy so delivery happens without holding the lock
	subs := make([]*Subscription, 0, len(b.subscriptions))
	for _, s := range b.subscriptions {
		subs = append(subs, s)
	}
	b.mu.RUnlock()

	delivered := 0
	dropped := 0

	for _, sub := range subs {
		if sub.IsClosed() {
			continue
		}
		if sub.Filter != nil && !sub.Filter(event) {
			continue
		}

		if sub.Handler != nil {
			go func(handler EventHandler, evt Event) {
				defer func() {
					if r := recover(); r != nil {
						logging.Warn("EventBus", "Event handler panicked on %s: %v", evt.Type, r)
					}
				}()
				handler(evt)
			}(sub.Handler, event)
			delivered++
		}

		if sub.Channel != nil {
			if sub.deliver(event) {
				delivered++
			} else {
				dropped++
			}
		}
	}

	b.mu.Lock()
	b.metrics.EventsPublished++
	b.metrics.EventsByType[event.Type]++
	b.metrics.LastEventTime = event.Timestamp
	b.metrics.EventsDelivered += int64(delivered)
	b.metrics.EventsDropped += int64(dropped)
	b.mu.Unlock()

	if dropped > 0 {
		logging.Debug("EventBus", "Dropped %s for %d slow subscriber(s)", event.Type, dropped)
	}
}

// Subscribe creates a subscription with a handler function
func (b *DefaultBus) Subscribe(filter EventFilter, handler EventHandler) *Subscription {
	return b.add(&Subscription{
		ID:      GenerateID() + "_sub",
		Filter:  filter,
		Handler: handler,
	})
}

// SubscribeChannel creates a subscription with a channel
func (b *DefaultBus) SubscribeChannel(filter EventFilter, bufferSize int) *Subscription {
	if bufferSize < 0 {
		bufferSize = 0
	}
	return b.add(&Subscription{
		ID:      GenerateID() + "_sub",
		Filter:  filter,
		Channel: make(chan Event, bufferSize),
	})
}

func (b *DefaultBus) add(sub *Subscription) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}

	b.subscriptions[sub.ID] = sub
	b.metrics.TotalSubscriptions++
	b.metrics.ActiveSubscriptions++
	return sub
}

// Unsubscribe removes a subscription
func (b *DefaultBus) Unsubscribe(subscription *Subscription) {
	if subscription == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.subscriptions[subscription.ID]; exists {
		subscription.Close()
		delete(b.subscriptions, subscription.ID)
		b.metrics.ActiveSubscriptions--
	}
}

// GetMetrics returns a copy of the bus metrics
func (b *DefaultBus) GetMetrics() Metrics {
	b.mu.RLock()
	defer b.mu.RUnlock()

	metrics := b.metrics
	metrics.EventsByType = make(map[EventType]int64, len(b.metrics.EventsByType))
	for k, v := range b.metrics.EventsByType {
		metrics.EventsByType[k] = v
	}
	return metrics
}

// Close closes the event bus and all subscriptions
func (b *DefaultBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for _, sub := range b.subscriptions {
		sub.Close()
	}
	b.subscriptions = make(map[string]*Subscription)
	b.metrics.ActiveSubscriptions = 0
}

// Common event filters

// FilterByType creates a filter that matches events of specific types
func FilterByType(eventTypes ...EventType) EventFilter {
	typeMap := make(map[EventType]bool)
	for _, t := range eventTypes {
		typeMap[t] = true
	}

	return func(event Event) bool {
		return typeMap[event.Type]
	}
}

// FilterBySource creates a filter that matches events from specific services
func FilterBySource(sources ...string) EventFilter {
	sourceMap := make(map[string]bool)
	for _, s := range sources {
		sourceMap[s] = true
	}

	return func(event Event) bool {
		return sourceMap[event.Source]
	}
}

// CombineFilters combines multiple filters with AND logic
func CombineFilters(filters ...EventFilter) EventFilter {
	return func(event Event) bool {
		for _, filter := range filters {
			if !filter(event) {
				return false
			}
		}
		return true
	}
}
