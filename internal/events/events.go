package events

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType defines the type of event
type EventType string

const (
	// Container and registry events
	EventTypeServiceRegistered EventType = "service.registered"
	EventTypeServiceRemoved    EventType = "service.removed"

	// Service lifecycle events
	EventTypeServiceStarting EventType = "service.starting"
	EventTypeServiceRunning  EventType = "service.running"
	EventTypeServiceFailed   EventType = "service.failed"
	EventTypeServiceStopping EventType = "service.stopping"
	EventTypeServiceStopped  EventType = "service.stopped"
)

// EventSeverity indicates the importance of an event
type EventSeverity string

const (
	SeverityDebug EventSeverity = "debug"
	SeverityInfo  EventSeverity = "info"
	SeverityWarn  EventSeverity = "warn"
	SeverityError EventSeverity = "error"
)

// Event describes something that happened to a service. Source is the
// service type name as shown by the container.
type Event struct {
	ID        string
	Type      EventType
	Source    string
	State     string
	Severity  EventSeverity
	Timestamp time.Time
	Err       error
	Metadata  map[string]interface{}
}

// NewEvent creates an event with a fresh ID and the default severity for its type
func NewEvent(eventType EventType, source string) Event {
	return Event{
		ID:        GenerateID(),
		Type:      eventType,
		Source:    source,
		Severity:  defaultSeverity(eventType),
		Timestamp: time.Now(),
	}
}

// WithState records the service state at the time of the event
func (e Event) WithState(state fmt.Stringer) Event {
	e.State = state.String()
	return e
}

// WithError attaches an error and raises severity to error
func (e Event) WithError(err error) Event {
	if err != nil {
		e.Err = err
		e.Severity = SeverityError
	}
	return e
}

// WithMetadata adds a key/value pair to the event metadata
func (e Event) WithMetadata(key string, value interface{}) Event {
	md := make(map[string]interface{}, len(e.Metadata)+1)
	for k, v := range e.Metadata {
		md[k] = v
	}
	md[key] = value
	e.Metadata = md
	return e
}

// String returns a human-readable description of the event
func (e Event) String() string {
	s := fmt.Sprintf("%s %s", e.Type, e.Source)
	if e.State != "" {
		s += fmt.Sprintf(" (%s)", e.State)
	}
	if e.Err != nil {
		s += fmt.Sprintf(": %v", e.Err)
	}
	return s
}

// GenerateID returns a unique identifier for events and subscriptions
func GenerateID() string {
	return uuid.NewString()
}

func defaultSeverity(t EventType) EventSeverity {
	switch t {
	case EventTypeServiceFailed:
		return SeverityError
	case EventTypeServiceStarting, EventTypeServiceStopping:
		return SeverityDebug
	default:
		return SeverityInfo
	}
}
