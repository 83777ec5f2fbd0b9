package kvstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"svcctl/internal/config"
	"svcctl/internal/services"
)

// ErrNotRunning is returned by data operations while the store is not running.
var ErrNotRunning = errors.New("store is not running")

// Store is an in-memory key-value service. It simulates a warm-up of
// startDelay before it reports Running and drops its data on shutdown.
type Store struct {
	*services.BaseService

	startDelay time.Duration

	mu   sync.RWMutex
	data map[string]string
}

// New creates a store from its definition
func New(def config.ServiceDefinition) *Store {
	s := &Store{
		startDelay: def.StartDelay,
	}
	s.BaseService = services.NewBaseService(def.Name, services.WithStopFunc(s.stop))
	return s
}

// Factory returns a container factory for the definition
func Factory(def config.ServiceDefinition) func() (*Store, error) {
	return func() (*Store, error) {
		return New(def), nil
	}
}

// Start begins the warm-up and returns immediately
func (s *Store) Start(ctx context.Context) error {
	return s.Launch(ctx, s.warmUp)
}

func (s *Store) warmUp(ctx context.Context) error {
	if s.startDelay > 0 {
		timer := time.NewTimer(s.startDelay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s.mu.Lock()
	s.data = make(map[string]string)
	s.mu.Unlock()
	return nil
}

func (s *Store) stop(context.Context) error {
	s.mu.Lock()
	s.data = nil
	s.mu.Unlock()
	return nil
}

// Get returns the value stored under key
func (s *Store) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.checkRunning(); err != nil {
		return "", false, err
	}
	v, ok := s.data[key]
	return v, ok, nil
}

// Set stores value under key
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkRunning(); err != nil {
		return err
	}
	s.data[key] = value
	return nil
}

// Delete removes key and reports whether it was present
func (s *Store) Delete(key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkRunning(); err != nil {
		return false, err
	}
	_, ok := s.data[key]
	delete(s.data, key)
	return ok, nil
}

// Len returns the number of keys, zero when not running
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Keys returns the stored keys, sorted
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// checkRunning is called with s.mu held
func (s *Store) checkRunning() error {
	if st := s.State(); st != services.StateRunning || s.data == nil {
		return fmt.Errorf("%s (%s): %w", s.Name(), st, ErrNotRunning)
	}
	return nil
}
