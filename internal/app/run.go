package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"svcctl/internal/registry"
	"svcctl/pkg/logging"
)

// run executes the foreground mode used by `svcctl run`
func run(ctx context.Context, cfg *Config, s *Services) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	defs, err := SelectDefinitions(cfg.SvcctlConfig, cfg.Only)
	if err != nil {
		return err
	}
	if len(defs) == 0 {
		logging.Warn("CLI", "No services selected, nothing to run")
		return nil
	}

	if err := registry.Register(s.Registry, s.eventLog); err != nil {
		return err
	}

	idle, release := s.idle()
	defer release()

	logging.Info("CLI", "--- Starting %d service(s) ---", len(defs))
	if err := s.StartAll(ctx, defs); err != nil {
		logging.Error("CLI", err, "Failed to start services")
		_ = s.Shutdown(context.WithoutCancel(ctx))
		return err
	}

	logging.Info("CLI", "Services started. Press Ctrl+C to stop all services and exit.")

	select {
	case <-ctx.Done():
	case <-idle:
		logging.Info("CLI", "All services have terminated")
	}

	return s.Shutdown(context.WithoutCancel(ctx))
}
