package heartbeat

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"svcctl/internal/config"
	"svcctl/internal/services"
	"svcctl/pkg/logging"
)

// Service ticks at a fixed interval and counts the beats. With a lifetime
// set it shuts itself down once the lifetime has elapsed.
type Service struct {
	*services.BaseService

	interval time.Duration
	lifetime time.Duration

	beats atomic.Uint64

	mu       sync.RWMutex
	lastBeat time.Time
	cancel   context.CancelFunc
	done     chan struct{}
}

// New creates a heartbeat service from its definition
func New(def config.ServiceDefinition) *Service {
	interval := def.Interval
	if interval <= 0 {
		interval = config.DefaultInterval
	}

	s := &Service{
		interval: interval,
		lifetime: def.Lifetime,
	}
	s.BaseService = services.NewBaseService(def.Name, services.WithStopFunc(s.stop))
	return s
}

// Factory returns a container factory for the definition
func Factory(def config.ServiceDefinition) func() (*Service, error) {
	return func() (*Service, error) {
		return New(def), nil
	}
}

// Start launches the ticker loop. The loop is bound to ctx, not to the
// start phase, so it keeps running after the service reports Running.
func (s *Service) Start(ctx context.Context) error {
	return s.Launch(ctx, func(context.Context) error {
		loopCtx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})

		s.mu.Lock()
		s.cancel = cancel
		s.done = done
		s.mu.Unlock()

		go s.loop(loopCtx, done)
		return nil
	})
}

func (s *Service) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	var expired <-chan time.Time
	if s.lifetime > 0 {
		timer := time.NewTimer(s.lifetime)
		defer timer.Stop()
		expired = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n := s.beats.Add(1)
			s.mu.Lock()
			s.lastBeat = now
			s.mu.Unlock()
			logging.Debug("Service-"+s.Name(), "Beat %d", n)
		case <-expired:
			logging.Info("Service-"+s.Name(), "Lifetime of %s reached after %d beats", s.lifetime, s.beats.Load())
			s.Shutdown()
			return
		}
	}
}

// stop cancels the loop and waits for it to exit
func (s *Service) stop(ctx context.Context) error {
	s.mu.RLock()
	cancel, done := s.cancel, s.done
	s.mu.RUnlock()

	if cancel == nil {
		return nil
	}
	cancel()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Beats returns the number of beats so far
func (s *Service) Beats() uint64 {
	return s.beats.Load()
}

// LastBeat returns the time of the most recent beat, zero before the first
func (s *Service) LastBeat() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastBeat
}

// Interval returns the configured tick interval
func (s *Service) Interval() time.Duration {
	return s.interval
}
