package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"svcctl/internal/app"
)

func newRunCmd() *cobra.Command {
	var only []string

	cmd := &cobra.Command{
		Use:   "run [flags]",
		Short: "Start the configured services and keep them running",
		Long: `Starts every enabled service (or only those named with --only) and
prints the lifecycle event stream. The process runs until it receives
SIGINT/SIGTERM or until every started service has stopped by itself; all
remaining services are then shut down.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.NewConfig(configPath, logLevel)
			cfg.Only = only
			cfg.Output = cmd.ErrOrStderr()

			application, err := app.NewApplication(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			defer application.Services().Close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return application.Run(ctx)
		},
	}

	cmd.Flags().StringSliceVar(&only, "only", nil, "Start only these services (comma separated names)")
	return cmd
}
