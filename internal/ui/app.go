package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tgienger/agency/internal/console"
	"github.com/tgienger/agency/internal/filter"
	"github.com/tgienger/agency/internal/models"
	"github.com/tgienger/agency/internal/ui/views"
)

// Currently active view
type View int

const (
	ViewTree View = iota
	ViewMaterials
)

// Options are the session values the App needs
type Options struct {
	WorkerID models.ID
	Reviewer models.Reviewer
	Mode     filter.Mode
}

type App struct {
	console     *console.Service
	opts        Options
	currentView View
	tree        *views.TreeView
	materials   *views.MaterialsView
	width       int
	height      int
}

// NewApp creates the application. settings may be nil.
func NewApp(svc *console.Service, settings views.Settings, opts Options) *App {
	return &App{
		console:     svc,
		opts:        opts,
		currentView: ViewTree,
		tree:        views.NewTreeView(svc, settings, opts.WorkerID, opts.Mode),
	}
}

func (a *App) Init() tea.Cmd {
	return a.tree.Init()
}

func (a *App) openTask(sel views.SelectedTask) tea.Cmd {
	a.currentView = ViewMaterials
	a.materials = views.NewMaterialsView(a.console, a.opts.Reviewer, sel)

	return tea.Batch(
		a.materials.Init(),
		func() tea.Msg {
			return tea.WindowSizeMsg{Width: a.width, Height: a.height}
		},
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// the tree persists behind the materials view
		a.tree.Update(msg)

	case views.SelectedTask:
		return a, a.openTask(msg)

	case views.BackToTree:
		a.currentView = ViewTree
		a.materials = nil
		return a, func() tea.Msg {
			return tea.WindowSizeMsg{Width: a.width, Height: a.height}
		}
	}

	var cmd tea.Cmd
	switch a.currentView {
	case ViewTree:
		_, cmd = a.tree.Update(msg)
	case ViewMaterials:
		_, cmd = a.materials.Update(msg)
	}

	return a, cmd
}

func (a *App) View() string {
	if a.currentView == ViewMaterials && a.materials != nil {
		return a.materials.View()
	}
	return a.tree.View()
}
