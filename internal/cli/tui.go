package cli

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tgienger/agency/internal/ui"
)

func runTUI(app *App) error {
	worker, err := app.worker()
	if err != nil {
		return err
	}
	// browsing works without a reviewer id; reviews then stay read-only
	reviewer, _ := app.reviewer()

	model := ui.NewApp(app.console, app.db, ui.Options{
		WorkerID: worker,
		Reviewer: reviewer,
		Mode:     app.cfg.Mode(),
	})
	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}
