package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"svcctl/internal/app"
	"svcctl/internal/view"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the configured services",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := app.LoadConfiguration(app.NewConfig(configPath, logLevel))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), view.DefinitionsTable(loaded.Services))
			return nil
		},
	}
}
