package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tgienger/agency/internal/filter"
	"github.com/tgienger/agency/internal/models"
)

func newTreeCmd(app *App) *cobra.Command {
	var (
		query string
		mode  string
	)

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the worker's project tree narrowed by a query",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			worker, err := app.worker()
			if err != nil {
				return err
			}
			q := filter.Query{Text: query, Mode: app.cfg.Mode()}
			if cmd.Flags().Changed("mode") {
				q.Mode = filter.ParseMode(mode)
			}

			projects, err := app.console.FilteredTree(cmd.Context(), worker, q)
			if err != nil {
				return err
			}
			writeTree(cmd.OutOrStdout(), projects, app.console.Terminal)
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "case-insensitive text matched against names")
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "active or all (default from config)")
	return cmd
}

func writeTree(w io.Writer, projects []models.Project, terminal func(string) bool) {
	if len(projects) == 0 {
		fmt.Fprintln(w, "no matching projects")
		return
	}
	for _, p := range projects {
		line := p.Name
		if p.Client.Name != "" {
			line += " (" + p.Client.Name + ")"
		}
		fmt.Fprintln(w, line)
		for _, s := range p.Services {
			fmt.Fprintf(w, "  %s\n", s.ServiceName)
			for _, t := range s.Tasks {
				mark := "-"
				if terminal(t.TaskStatus.Name) {
					mark = "x"
				}
				line := fmt.Sprintf("    %s %s [%s]", mark, t.Name, t.TaskStatus.Name)
				if t.Deadline != "" {
					line += " due " + t.Deadline
				}
				fmt.Fprintln(w, line)
			}
		}
	}
}
