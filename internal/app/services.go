package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"svcctl/internal/config"
	"svcctl/internal/container"
	"svcctl/internal/events"
	"svcctl/internal/registry"
	"svcctl/internal/services"
	"svcctl/internal/services/heartbeat"
	"svcctl/internal/services/kvstore"
	"svcctl/pkg/logging"
)

// binding ties a service kind to its concrete type in the container
type binding struct {
	provide func(c *container.Container, def config.ServiceDefinition)
	get     func(ctx context.Context, c *container.Container) (services.Service, error)
	stop    func(ctx context.Context, c *container.Container) error
}

var bindings = map[config.ServiceKind]binding{
	config.ServiceKindHeartbeat: {
		provide: func(c *container.Container, def config.ServiceDefinition) {
			container.Provide(c, heartbeat.Factory(def))
		},
		get: func(ctx context.Context, c *container.Container) (services.Service, error) {
			svc, err := container.GetService[*heartbeat.Service](ctx, c)
			if err != nil {
				return nil, err
			}
			return svc, nil
		},
		stop: container.StopService[*heartbeat.Service],
	},
	config.ServiceKindKVStore: {
		provide: func(c *container.Container, def config.ServiceDefinition) {
			container.Provide(c, kvstore.Factory(def))
		},
		get: func(ctx context.Context, c *container.Container) (services.Service, error) {
			svc, err := container.GetService[*kvstore.Store](ctx, c)
			if err != nil {
				return nil, err
			}
			return svc, nil
		},
		stop: container.StopService[*kvstore.Store],
	},
}

// Services holds the container and its supporting infrastructure
type Services struct {
	Container *container.Container
	Events    *events.DefaultBus
	Registry  *registry.Registry

	definitions []config.ServiceDefinition
	eventLog    *eventLog
}

// InitializeServices creates the event bus and the container and provides a
// factory for every configured service.
func InitializeServices(cfg *Config) (*Services, error) {
	if cfg.SvcctlConfig == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	svcctlCfg := cfg.SvcctlConfig

	bus := events.NewBus()
	c := container.New(container.Config{
		ReadyTimeout: svcctlCfg.Container.ReadyTimeout,
		StopTimeout:  svcctlCfg.Container.StopTimeout,
		Events:       bus,
	})

	for _, def := range svcctlCfg.Services {
		b, ok := bindings[def.Kind]
		if !ok {
			return nil, fmt.Errorf("service %s: unknown kind %q", def.Name, def.Kind)
		}
		b.provide(c, def)
		logging.Debug("Bootstrap", "Provided %s service %s", def.Kind, def.Name)
	}

	return &Services{
		Container:   c,
		Events:      bus,
		Registry:    registry.New(bus),
		definitions: svcctlCfg.Services,
		eventLog:    newEventLog(bus, cfg.Output, svcctlCfg.Container.EventBuffer),
	}, nil
}

// SelectDefinitions returns the definitions named in only, or every enabled
// definition when only is empty.
func SelectDefinitions(cfg *config.SvcctlConfig, only []string) ([]config.ServiceDefinition, error) {
	if len(only) == 0 {
		var selected []config.ServiceDefinition
		for _, def := range cfg.Services {
			if def.Enabled {
				selected = append(selected, def)
			}
		}
		return selected, nil
	}

	selected := make([]config.ServiceDefinition, 0, len(only))
	for _, name := range only {
		def, ok := cfg.Service(name)
		if !ok {
			return nil, fmt.Errorf("service %q is not configured", name)
		}
		if !slices.ContainsFunc(selected, func(d config.ServiceDefinition) bool { return d.Name == name }) {
			selected = append(selected, def)
		}
	}
	return selected, nil
}

// StartAll requests every definition from the container in parallel and
// waits until all of them are running. The first failure cancels the
// remaining waits; services already constructed keep starting and are
// stopped by Shutdown.
func (s *Services) StartAll(ctx context.Context, defs []config.ServiceDefinition) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, def := range defs {
		def := def
		b, ok := bindings[def.Kind]
		if !ok {
			return fmt.Errorf("service %s: unknown kind %q", def.Name, def.Kind)
		}
		g.Go(func() error {
			svc, err := b.get(gctx, s.Container)
			if err != nil {
				return fmt.Errorf("service %s: %w", def.Name, err)
			}
			logging.Info("CLI", "Service %s is %s", def.Name, svc.State())
			return nil
		})
	}
	return g.Wait()
}

// Stop stops the service with the given name and waits for its removal
func (s *Services) Stop(ctx context.Context, name string) error {
	def, ok := (&config.SvcctlConfig{Services: s.definitions}).Service(name)
	if !ok {
		return fmt.Errorf("service %q is not configured", name)
	}
	return bindings[def.Kind].stop(ctx, s.Container)
}

// StopActive stops every active service one at a time, walking the status
// list backwards, and joins the errors.
func (s *Services) StopActive(ctx context.Context) error {
	infos := s.Status()
	var errs []error
	for i := len(infos) - 1; i >= 0; i-- {
		info := infos[i]
		if !info.State.IsActive() {
			continue
		}
		if err := s.Stop(ctx, info.Name); err != nil {
			errs = append(errs, err)
			continue
		}
		logging.Info("CLI", "Stopped %s", info.Name)
	}
	return errors.Join(errs...)
}

// Shutdown is the process-exit hook: it asks every service to stop, waits
// for all of them to terminate and then releases the registry helpers.
func (s *Services) Shutdown(ctx context.Context) error {
	logging.Info("CLI", "--- Shutting down services ---")
	s.Container.StopAllServices()
	err := s.Container.WaitForTermination(ctx)
	if err != nil {
		logging.Error("CLI", err, "Not every service terminated in time")
	}
	s.Registry.Clear()
	return err
}

// Status lists the registered services
func (s *Services) Status() []container.ServiceInfo {
	return s.Container.Services()
}

// Close shuts the event bus down. Call it once the services are no longer used.
func (s *Services) Close() {
	s.Events.Close()
}

// idle returns a channel closed when the container has no services left
// after a removal. The returned func releases the subscription.
func (s *Services) idle() (<-chan struct{}, func()) {
	done := make(chan struct{})
	var once sync.Once
	sub := s.Events.Subscribe(events.FilterByType(events.EventTypeServiceRemoved), func(events.Event) {
		if s.Container.Len() == 0 {
			once.Do(func() { close(done) })
		}
	})
	return done, func() { s.Events.Unsubscribe(sub) }
}
