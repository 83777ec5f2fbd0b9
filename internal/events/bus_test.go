package events

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stateName string

func (s stateName) String() string { return string(s) }

func TestNewBus(t *testing.T) {
	bus := NewBus()
	assert.NotNil(t, bus)

	metrics := bus.GetMetrics()
	assert.Equal(t, 0, metrics.TotalSubscriptions)
	assert.Equal(t, 0, metrics.ActiveSubscriptions)
	assert.Equal(t, int64(0), metrics.EventsPublished)
	assert.Equal(t, int64(0), metrics.EventsDelivered)
	assert.Equal(t, int64(0), metrics.EventsDropped)
}

func TestNewEvent(t *testing.T) {
	evt := NewEvent(EventTypeServiceRunning, "*kvstore.Store").WithState(stateName("Running"))

	assert.NotEmpty(t, evt.ID)
	assert.Equal(t, SeverityInfo, evt.Severity)
	assert.Equal(t, "service.running *kvstore.Store (Running)", evt.String())

	failed := NewEvent(EventTypeServiceStopped, "svc").WithError(errors.New("flush failed"))
	assert.Equal(t, SeverityError, failed.Severity)
	assert.Contains(t, failed.String(), "flush failed")
}

func TestEvent_WithMetadataDoesNotShareMap(t *testing.T) {
	base := NewEvent(EventTypeServiceRegistered, "svc").WithMetadata("a", 1)
	derived := base.WithMetadata("b", 2)

	assert.Len(t, base.Metadata, 1)
	assert.Len(t, derived.Metadata, 2)
}

func TestBus_SubscribeHandler(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	var received []Event
	done := make(chan struct{})

	sub := bus.Subscribe(FilterByType(EventTypeServiceRunning), func(e Event) {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, e)
		close(done)
	})
	require.NotNil(t, sub)
	assert.NotEmpty(t, sub.ID)

	bus.Publish(NewEvent(EventTypeServiceStopped, "svc"))
	bus.Publish(NewEvent(EventTypeServiceRunning, "svc"))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler was not called")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	assert.Equal(t, EventTypeServiceRunning, received[0].Type)
}

func TestBus_SubscribeChannel(t *testing.T) {
	bus := NewBus()
	sub := bus.SubscribeChannel(FilterBySource("a"), 4)
	require.NotNil(t, sub)

	bus.Publish(NewEvent(EventTypeServiceRegistered, "a"))
	bus.Publish(NewEvent(EventTypeServiceRegistered, "b"))

	require.Len(t, sub.Channel, 1)
	evt := <-sub.Channel
	assert.Equal(t, "a", evt.Source)

	metrics := bus.GetMetrics()
	assert.Equal(t, int64(2), metrics.EventsPublished)
	assert.Equal(t, int64(1), metrics.EventsDelivered)
	assert.Equal(t, int64(2), metrics.EventsByType[EventTypeServiceRegistered])
}

func TestBus_DropsWhenChannelFull(t *testing.T) {
	bus := NewBus()
	sub := bus.SubscribeChannel(nil, 1)

	bus.Publish(NewEvent(EventTypeServiceRunning, "svc"))
	bus.Publish(NewEvent(EventTypeServiceStopped, "svc"))

	metrics := bus.GetMetrics()
	assert.Equal(t, int64(1), metrics.EventsDelivered)
	assert.Equal(t, int64(1), metrics.EventsDropped)
	assert.Len(t, sub.Channel, 1)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()
	sub := bus.SubscribeChannel(nil, 1)

	bus.Unsubscribe(sub)
	assert.True(t, sub.IsClosed())
	assert.Equal(t, 0, bus.GetMetrics().ActiveSubscriptions)

	// Publishing after unsubscribe must not panic on the closed channel
	bus.Publish(NewEvent(EventTypeServiceRunning, "svc"))
	bus.Unsubscribe(nil)
}

func TestBus_Close(t *testing.T) {
	bus := NewBus()
	sub := bus.SubscribeChannel(nil, 1)

	bus.Close()
	assert.True(t, sub.IsClosed())
	assert.Nil(t, bus.SubscribeChannel(nil, 1))

	bus.Publish(NewEvent(EventTypeServiceRunning, "svc"))
	assert.Equal(t, int64(0), bus.GetMetrics().EventsPublished)

	bus.Close()
}

func TestCombineFilters(t *testing.T) {
	filter := CombineFilters(FilterByType(EventTypeServiceStopped), FilterBySource("a"))

	assert.True(t, filter(NewEvent(EventTypeServiceStopped, "a")))
	assert.False(t, filter(NewEvent(EventTypeServiceStopped, "b")))
	assert.False(t, filter(NewEvent(EventTypeServiceRunning, "a")))
}

func TestBus_HandlerPanicDoesNotCrash(t *testing.T) {
	bus := NewBus()
	done := make(chan struct{})

	bus.Subscribe(nil, func(e Event) {
		panic("boom")
	})
	bus.Subscribe(nil, func(e Event) {
		close(done)
	})

	bus.Publish(NewEvent(EventTypeServiceRunning, "svc"))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second handler was not called")
	}
}
