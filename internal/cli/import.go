package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tgienger/agency/internal/payload"
)

func newImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Load a JSON snapshot of the remote API into the local cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := payload.DecodeFile(args[0])
			if err != nil {
				return err
			}
			for _, skip := range doc.Skipped {
				app.log.Warn("skipping payload entry", "kind", skip.Kind, "index", skip.Index, "id", skip.ID, "reason", skip.Reason)
				fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s\n", skip)
			}
			stats, err := app.db.Import(cmd.Context(), doc)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d workers, %d tasks, %d materials, %d reviews\n",
				stats.Workers, stats.Tasks, stats.Materials, stats.Reviews)
			return nil
		},
	}
}
