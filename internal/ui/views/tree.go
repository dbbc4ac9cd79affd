package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/agency/internal/console"
	"github.com/tgienger/agency/internal/filter"
	"github.com/tgienger/agency/internal/models"
	"github.com/tgienger/agency/internal/ui/keys"
	"github.com/tgienger/agency/internal/ui/styles"
)

// Setting keys persisted between sessions
const (
	SettingFilterMode  = "filter_mode"
	SettingFilterQuery = "filter_query"
)

// Settings stores small key/value preferences
type Settings interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

type rowKind int

const (
	rowProject rowKind = iota
	rowService
	rowTask
)

// row is one line of the flattened tree; indices point into the filtered projects
type row struct {
	kind    rowKind
	project int
	service int
	task    int
}

func flatten(projects []models.Project) []row {
	var rows []row
	for pi, p := range projects {
		rows = append(rows, row{kind: rowProject, project: pi})
		for si, s := range p.Services {
			rows = append(rows, row{kind: rowService, project: pi, service: si})
			for ti := range s.Tasks {
				rows = append(rows, row{kind: rowTask, project: pi, service: si, task: ti})
			}
		}
	}
	return rows
}

// TreeView shows the worker's Project -> Service -> Task tree with a search
// box and an active/all mode toggle
type TreeView struct {
	console  *console.Service
	settings Settings
	workerID models.ID
	styles   *styles.Styles
	keys     keys.KeyMap

	width  int
	height int

	projects []models.Project // grouped, unfiltered
	visible  []models.Project
	rows     []row
	cursor   int
	scrollY  int

	search    textinput.Model
	searching bool
	mode      filter.Mode

	loaded bool
	err    error

	showHelpPopup bool
}

func NewTreeView(svc *console.Service, settings Settings, workerID models.ID, mode filter.Mode) *TreeView {
	search := textinput.New()
	search.Placeholder = "Search projects, services, tasks..."
	search.CharLimit = 100

	return &TreeView{
		console:  svc,
		settings: settings,
		workerID: workerID,
		styles:   styles.NewStyles(),
		keys:     keys.DefaultKeyMap(),
		search:   search,
		mode:     mode,
	}
}

type treeLoadedMsg struct {
	projects []models.Project
}

type errMsg struct {
	err error
}

// SelectedTask signals that a task was opened
type SelectedTask struct {
	Project models.Project
	Service models.Service
	Task    models.Task
}

func (v *TreeView) Init() tea.Cmd {
	v.restoreSettings()
	return v.loadTree
}

func (v *TreeView) restoreSettings() {
	if v.settings == nil {
		return
	}
	ctx := context.Background()
	if mode, err := v.settings.GetSetting(ctx, SettingFilterMode); err == nil && mode != "" {
		v.mode = filter.ParseMode(mode)
	}
	if q, err := v.settings.GetSetting(ctx, SettingFilterQuery); err == nil {
		v.search.SetValue(q)
	}
}

func (v *TreeView) saveSettings() tea.Msg {
	if v.settings == nil {
		return nil
	}
	ctx := context.Background()
	v.settings.SetSetting(ctx, SettingFilterMode, string(v.mode))
	v.settings.SetSetting(ctx, SettingFilterQuery, v.search.Value())
	return nil
}

func (v *TreeView) loadTree() tea.Msg {
	projects, err := v.console.Tree(context.Background(), v.workerID)
	if err != nil {
		return errMsg{err: err}
	}
	return treeLoadedMsg{projects: projects}
}

// Query is the filter query built from the current UI state
func (v *TreeView) Query() filter.Query {
	return filter.Query{Text: v.search.Value(), Mode: v.mode}
}

// applyFilter recomputes the visible tree from the grouped one
func (v *TreeView) applyFilter() {
	v.visible = v.console.Filter(v.projects, v.Query())
	v.rows = flatten(v.visible)
	if v.cursor >= len(v.rows) {
		v.cursor = max(0, len(v.rows)-1)
	}
	v.ensureVisible()
}

func (v *TreeView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.ensureVisible()
		return v, nil

	case treeLoadedMsg:
		v.projects = msg.projects
		v.loaded = true
		v.err = nil
		v.applyFilter()
		return v, nil

	case errMsg:
		v.err = msg.err
		v.loaded = true
		return v, nil

	case tea.KeyMsg:
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}
		if v.searching {
			return v.updateSearching(msg)
		}
		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *TreeView) updateSearching(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back), key.Matches(msg, v.keys.Enter):
		v.searching = false
		v.search.Blur()
		return v, v.saveSettings
	case key.Matches(msg, v.keys.Tab):
		v.mode = v.mode.Toggle()
		v.applyFilter()
		return v, nil
	}

	var cmd tea.Cmd
	v.search, cmd = v.search.Update(msg)
	v.cursor = 0
	v.scrollY = 0
	v.applyFilter()
	return v, cmd
}

func (v *TreeView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Back):
		if v.search.Value() != "" {
			v.search.Reset()
			v.applyFilter()
			return v, v.saveSettings
		}
		return v, nil

	case key.Matches(msg, v.keys.Search):
		v.searching = true
		v.search.Focus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Mode), key.Matches(msg, v.keys.Tab):
		v.mode = v.mode.Toggle()
		v.applyFilter()
		return v, v.saveSettings

	case key.Matches(msg, v.keys.Reload):
		return v, v.loadTree

	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.rows)-1 {
			v.cursor++
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if sel, ok := v.selected(); ok {
			return v, func() tea.Msg { return sel }
		}
		return v, nil

	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
		return v, nil
	}

	return v, nil
}

// selected returns the task under the cursor
func (v *TreeView) selected() (SelectedTask, bool) {
	if v.cursor >= len(v.rows) {
		return SelectedTask{}, false
	}
	r := v.rows[v.cursor]
	if r.kind != rowTask {
		return SelectedTask{}, false
	}
	p := v.visible[r.project]
	s := p.Services[r.service]
	return SelectedTask{Project: p, Service: s, Task: s.Tasks[r.task]}, true
}

func (v *TreeView) visibleRows() int {
	return max(v.height-9, 1)
}

func (v *TreeView) ensureVisible() {
	n := v.visibleRows()
	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	} else if v.cursor >= v.scrollY+n {
		v.scrollY = v.cursor - n + 1
	}
}

func (v *TreeView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}
	if !v.loaded {
		return v.styles.TitleMuted.Render("Loading...")
	}

	var b strings.Builder
	b.WriteString(v.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(v.renderRows())
	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *TreeView) renderHeader() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	searchStyle := s.Input
	if v.searching {
		searchStyle = s.InputFocused
	}
	searchBox := searchStyle.Width(styles.Clamp(contentWidth-20, 10, 50)).Render(v.search.View())
	badge := s.ModeBadge.Render(strings.ToUpper(string(v.mode)))

	tasks := 0
	for _, p := range v.visible {
		for _, svc := range p.Services {
			tasks += len(svc.Tasks)
		}
	}
	summary := s.TitleMuted.Render(fmt.Sprintf("%d projects • %d tasks", len(v.visible), tasks))

	return lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Projects"),
		lipgloss.JoinHorizontal(lipgloss.Center, searchBox, "  ", badge),
		summary,
	)
}

func (v *TreeView) renderRows() string {
	s := v.styles
	if v.err != nil {
		return s.ErrorMessage.Render("Could not load tasks: " + v.err.Error())
	}
	if len(v.rows) == 0 {
		if len(v.projects) == 0 {
			return s.TitleMuted.Render("No tasks assigned. Import a snapshot with 'agency import'.")
		}
		if v.mode == filter.ModeActive {
			return s.TitleMuted.Render("Nothing matches. Press 'm' to include finished tasks.")
		}
		return s.TitleMuted.Render("Nothing matches.")
	}

	width := max(styles.ContentWidth(v.width)-4, 20)
	end := min(v.scrollY+v.visibleRows(), len(v.rows))
	lines := make([]string, 0, end-v.scrollY)
	for i := v.scrollY; i < end; i++ {
		lines = append(lines, v.renderRow(v.rows[i], i == v.cursor, width))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (v *TreeView) renderRow(r row, selected bool, width int) string {
	s := v.styles
	p := v.visible[r.project]

	var line string
	switch r.kind {
	case rowProject:
		text := p.Name
		if p.Client.Name != "" {
			text += s.Meta.Render("  " + p.Client.Name)
		}
		line = s.ProjectRow.Render(text)
	case rowService:
		line = s.ServiceRow.Render(p.Services[r.service].ServiceName)
	case rowTask:
		t := p.Services[r.service].Tasks[r.task]
		meta := t.TaskStatus.Name
		if t.Deadline != "" {
			meta += " • due " + t.Deadline
		}
		style := s.TaskRow
		if v.console.Terminal(t.TaskStatus.Name) {
			style = s.TaskDone
		}
		line = style.Render(t.Name + s.Meta.Render("  "+meta))
	}

	if selected {
		return s.RowSelected.Width(width).Render(line)
	}
	return lipgloss.NewStyle().Width(width).Render(line)
}

func (v *TreeView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	if contentWidth > 0 && contentWidth < 50 {
		return v.styles.Help.Render(v.styles.HelpKey.Render("?") + " help")
	}
	return v.styles.Help.Render(
		fmt.Sprintf("%s materials • %s search • %s active/all • %s reload • %s quit",
			v.styles.HelpKey.Render("↵"),
			v.styles.HelpKey.Render("/"),
			v.styles.HelpKey.Render("m"),
			v.styles.HelpKey.Render("r"),
			v.styles.HelpKey.Render("q"),
		),
	)
}

func (v *TreeView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	helpItems := []string{
		s.HelpKey.Render("↵") + "      open task materials",
		s.HelpKey.Render("/") + "      search",
		s.HelpKey.Render("m") + "      toggle active/all",
		s.HelpKey.Render("esc") + "    clear search",
		s.HelpKey.Render("r") + "      reload",
		s.HelpKey.Render("q") + "      quit",
		"",
		s.TitleMuted.Render("Press any key to close"),
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{s.Title.Render("Keyboard Shortcuts"), ""}, helpItems...)...,
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		s.Popup.Render(content),
	)
	return styles.CenterView(centered, v.width, v.height)
}
