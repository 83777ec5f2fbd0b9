package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"svcctl/internal/app"
	"svcctl/internal/view"
)

func newCheckCmd() *cobra.Command {
	var only []string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Start the configured services once, report their state and stop them",
		Long: `Starts the selected services, waits until each one is running (bounded
by container.readyTimeout), prints a status table, stops each service in turn and shuts down.
Exits non-zero when a service fails to start.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.NewConfig(configPath, logLevel)
			cfg.Output = cmd.ErrOrStderr()

			application, err := app.NewApplication(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			services := application.Services()
			defer services.Close()

			defs, err := app.SelectDefinitions(cfg.SvcctlConfig, only)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			startErr := services.StartAll(ctx, defs)

			fmt.Fprint(cmd.OutOrStdout(), view.ServicesTable(services.Status()))

			stopCtx := context.WithoutCancel(ctx)
			stopErr := services.StopActive(stopCtx)
			shutdownErr := services.Shutdown(stopCtx)

			switch {
			case startErr != nil:
				return startErr
			case stopErr != nil:
				return stopErr
			default:
				return shutdownErr
			}
		},
	}

	cmd.Flags().StringSliceVar(&only, "only", nil, "Check only these services (comma separated names)")
	return cmd
}
