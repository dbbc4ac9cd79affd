// Package cli wires configuration, storage and the console service into the
// agency command tree. With no subcommand the interactive TUI starts.
package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tgienger/agency/internal/config"
	"github.com/tgienger/agency/internal/console"
	"github.com/tgienger/agency/internal/db"
	"github.com/tgienger/agency/internal/logging"
	"github.com/tgienger/agency/internal/metrics"
	"github.com/tgienger/agency/internal/models"
)

// BuildInfo is set from ldflags in main
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// App holds flag values and the collaborators opened for one invocation
type App struct {
	ConfigPath string
	WorkerID   string
	ReviewerID string
	DBPath     string

	cfg     *config.Config
	log     *logging.Logger
	metrics *metrics.Metrics
	db      *db.DB
	console *console.Service
}

func NewRootCmd(info BuildInfo) *cobra.Command {
	return newRootCmd(&App{}, info)
}

func newRootCmd(app *App, info BuildInfo) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "agency",
		Short:        "Business console for projects, tasks and material reviews",
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.Date),
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive console
  agency --worker 7 --reviewer 7

  # Load a snapshot of the remote API into the local cache
  agency import snapshot.json

  # Print the filtered tree
  agency tree --query copy --mode all
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(app)
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// the TUI owns the terminal, so logs go to the file only
		return app.open(cmd, cmd == cmd.Root())
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return app.Close()
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", "", "config file (default $XDG_CONFIG_HOME/agency/config.yaml)")
	cmd.PersistentFlags().StringVar(&app.WorkerID, "worker", "", "worker id whose tasks are shown (env AGENCY_WORKER)")
	cmd.PersistentFlags().StringVar(&app.ReviewerID, "reviewer", "", "reviewer id used for reviews (env AGENCY_REVIEWER)")
	cmd.PersistentFlags().StringVar(&app.DBPath, "db", "", "SQLite cache path (env AGENCY_DB)")

	cmd.AddCommand(
		newImportCmd(app),
		newTreeCmd(app),
		newReviewsCmd(app),
		newReviewCmd(app),
		newConfigCmd(app),
	)
	return cmd
}

// Execute runs the command tree and closes whatever was opened, also when
// the command failed
func Execute(info BuildInfo, args []string) error {
	app := &App{}
	defer app.Close()

	root := newRootCmd(app, info)
	root.SetArgs(args)
	return root.Execute()
}

func (a *App) open(cmd *cobra.Command, quiet bool) error {
	if cmd.Annotations[skipOpen] == "true" {
		return nil
	}

	cfg, err := config.Load(a.ConfigPath)
	if err != nil {
		return err
	}
	if a.WorkerID != "" {
		cfg.WorkerID = a.WorkerID
	}
	if a.ReviewerID != "" {
		cfg.ReviewerID = a.ReviewerID
	}
	if a.DBPath != "" {
		cfg.DBPath = a.DBPath
	}
	a.cfg = cfg

	log, err := logging.New(logging.Config{
		Level:   cfg.Log.Level,
		Dir:     cfg.Log.Dir,
		Service: "agency",
		JSON:    cfg.Log.JSON,
		Quiet:   quiet,
	})
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	}
	a.log = log

	path := cfg.DBPath
	if path == "" {
		if path, err = db.DefaultPath(); err != nil {
			return err
		}
	}
	database, err := db.New(log.Logger, path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	a.db = database

	a.metrics = metrics.New()
	a.console = console.NewService(database, console.Options{
		Log:              log.Logger,
		Metrics:          a.metrics,
		TerminalStatuses: cfg.Filter.TerminalStatuses,
	})
	return nil
}

// Close writes the metrics textfile and releases the database and log
// file. Calling it again is a no-op.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	var errs []error
	if err := a.metrics.WriteTextfile(a.cfg.Metrics.Textfile); err != nil {
		errs = append(errs, fmt.Errorf("write metrics: %w", err))
	}
	errs = append(errs, a.db.Close(), a.log.Close())
	a.db = nil
	return errors.Join(errs...)
}

// skipOpen marks commands that run without config, database or logger
const skipOpen = "agency/skip-open"

func (a *App) worker() (models.ID, error) {
	id := models.NewID(a.cfg.WorkerID)
	if id.IsZero() {
		return "", fmt.Errorf("no worker id: pass --worker or set worker_id in %s", config.FileName)
	}
	return id, nil
}

func (a *App) reviewer() (models.Reviewer, error) {
	id := models.NewID(a.cfg.ReviewerID)
	if id.IsZero() {
		return models.Reviewer{}, fmt.Errorf("no reviewer id: pass --reviewer or set reviewer_id in %s", config.FileName)
	}
	return models.Reviewer{ID: id, Name: a.cfg.ReviewerName, Surname: a.cfg.ReviewerSurname}, nil
}
