package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tgienger/agency/internal/config"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "config",
		Short:       "Manage the configuration file",
		Annotations: map[string]string{skipOpen: "true"},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:         "init",
			Short:       "Write a default configuration file",
			Args:        cobra.NoArgs,
			Annotations: map[string]string{skipOpen: "true"},
			RunE: func(cmd *cobra.Command, args []string) error {
				path := app.ConfigPath
				if path == "" {
					path = config.DefaultPath()
				}
				if err := config.WriteDefault(path); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
				return nil
			},
		},
		&cobra.Command{
			Use:         "path",
			Short:       "Print the configuration file path",
			Args:        cobra.NoArgs,
			Annotations: map[string]string{skipOpen: "true"},
			RunE: func(cmd *cobra.Command, args []string) error {
				path := app.ConfigPath
				if path == "" {
					path = config.DefaultPath()
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			},
		},
	)
	return cmd
}
