package app

import (
	"fmt"
	"io"
	"sync"

	"svcctl/internal/events"
	"svcctl/internal/registry"
	"svcctl/internal/view"
)

// eventLog prints the lifecycle event stream while it is registered.
type eventLog struct {
	registry.Base

	bus    events.Bus
	out    io.Writer
	buffer int

	mu   sync.Mutex
	sub  *events.Subscription
	done chan struct{}
}

func newEventLog(bus events.Bus, out io.Writer, buffer int) *eventLog {
	l := &eventLog{bus: bus, out: out, buffer: buffer}
	l.OnInitialize(l.subscribe)
	l.OnCleanup(l.unsubscribe)
	return l
}

func (l *eventLog) subscribe() {
	sub := l.bus.SubscribeChannel(nil, l.buffer)
	if sub == nil {
		return
	}
	done := make(chan struct{})

	l.mu.Lock()
	l.sub, l.done = sub, done
	l.mu.Unlock()

	go func() {
		defer close(done)
		for evt := range sub.Channel {
			fmt.Fprintln(l.out, view.EventLine(evt))
		}
	}()
}

// unsubscribe closes the subscription and waits until the pending events are printed
func (l *eventLog) unsubscribe() {
	l.mu.Lock()
	sub, done := l.sub, l.done
	l.sub, l.done = nil, nil
	l.mu.Unlock()

	if sub == nil {
		return
	}
	l.bus.Unsubscribe(sub)
	<-done
}
