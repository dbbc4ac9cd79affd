package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/agency/internal/console"
	"github.com/tgienger/agency/internal/models"
	"github.com/tgienger/agency/internal/review"
	"github.com/tgienger/agency/internal/ui/keys"
	"github.com/tgienger/agency/internal/ui/styles"
)

const (
	focusComments = iota
	focusSuggested
	focusSummary
	focusSave
	focusCount
)

// MaterialsView lists the materials of one task and lets the reviewer
// write, edit or delete their own review on each
type MaterialsView struct {
	console  *console.Service
	reviewer models.Reviewer
	selected SelectedTask
	styles   *styles.Styles
	keys     keys.KeyMap

	width  int
	height int

	materials []console.MaterialStatus
	cursor    int
	loaded    bool
	err       error

	// lifecycle of the reviewer's review on the material under the cursor
	state review.State

	comments  textarea.Model
	suggested textarea.Model
	summary   textinput.Model
	focusIdx  int

	confirmingDelete bool
	showHelpPopup    bool
}

// BackToTree signals to go back to the project tree
type BackToTree struct{}

type materialsLoadedMsg struct {
	materials []console.MaterialStatus
}

type reviewSavedMsg struct {
	review models.Review
}

type reviewDeletedMsg struct{}

func NewMaterialsView(svc *console.Service, reviewer models.Reviewer, selected SelectedTask) *MaterialsView {
	comments := textarea.New()
	comments.Placeholder = "Comments"
	comments.CharLimit = 4000
	comments.SetWidth(50)
	comments.SetHeight(4)
	comments.ShowLineNumbers = false

	suggested := textarea.New()
	suggested.Placeholder = "Suggested change (optional)"
	suggested.CharLimit = 4000
	suggested.SetWidth(50)
	suggested.SetHeight(3)
	suggested.ShowLineNumbers = false

	summary := textinput.New()
	summary.Placeholder = "One-line summary (optional)"
	summary.CharLimit = 1000

	return &MaterialsView{
		console:   svc,
		reviewer:  reviewer,
		selected:  selected,
		styles:    styles.NewStyles(),
		keys:      keys.DefaultKeyMap(),
		comments:  comments,
		suggested: suggested,
		summary:   summary,
	}
}

func (v *MaterialsView) Init() tea.Cmd {
	return v.loadMaterials
}

func (v *MaterialsView) loadMaterials() tea.Msg {
	materials, err := v.console.Materials(context.Background(), v.selected.Task.ID, v.reviewer.ID)
	if err != nil {
		return errMsg{err: err}
	}
	return materialsLoadedMsg{materials: materials}
}

func (v *MaterialsView) current() (console.MaterialStatus, bool) {
	if v.cursor >= len(v.materials) {
		return console.MaterialStatus{}, false
	}
	return v.materials[v.cursor], true
}

// settle resets the lifecycle to what the material under the cursor shows
func (v *MaterialsView) settle() {
	v.state = review.StateNoReview
	if m, ok := v.current(); ok {
		v.state = m.State
	}
}

// transition applies a lifecycle action and reports failures in the view
func (v *MaterialsView) transition(a review.Action, isAuthor bool) bool {
	next, err := review.Transition(v.state, a, isAuthor)
	if err != nil {
		v.err = err
		return false
	}
	v.state = next
	v.err = nil
	return true
}

func (v *MaterialsView) editing() bool {
	return v.state == review.StateDrafting || v.state == review.StateEditing
}

func (v *MaterialsView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		inputWidth := styles.Clamp(styles.ContentWidth(v.width)-10, 20, 70)
		v.comments.SetWidth(inputWidth)
		v.suggested.SetWidth(inputWidth)
		return v, nil

	case materialsLoadedMsg:
		v.materials = msg.materials
		v.loaded = true
		if v.cursor >= len(v.materials) {
			v.cursor = max(0, len(v.materials)-1)
		}
		if v.state == review.StateDeleted {
			v.transition(review.ActionSettle, true)
		}
		if !v.editing() {
			v.settle()
		}
		return v, nil

	case reviewSavedMsg:
		return v, v.loadMaterials

	case reviewDeletedMsg:
		return v, v.loadMaterials

	case errMsg:
		v.err = msg.err
		v.loaded = true
		return v, nil

	case tea.KeyMsg:
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}
		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}
		if v.editing() {
			return v.updateForm(msg)
		}
		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *MaterialsView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Back):
		return v, func() tea.Msg { return BackToTree{} }

	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
			v.settle()
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.materials)-1 {
			v.cursor++
			v.settle()
		}
		return v, nil

	case key.Matches(msg, v.keys.New):
		if _, ok := v.current(); !ok {
			return v, nil
		}
		if v.state != review.StateNoReview {
			v.err = console.ErrAlreadyReviewed
			return v, nil
		}
		if v.transition(review.ActionDraft, true) {
			v.openForm(models.Review{})
			return v, textarea.Blink
		}
		return v, nil

	case key.Matches(msg, v.keys.Edit):
		m, ok := v.current()
		if !ok || !m.Reviewed {
			return v, nil
		}
		if v.transition(review.ActionEdit, canEditOwn(m)) {
			v.openForm(m.Own)
			return v, textarea.Blink
		}
		return v, nil

	case key.Matches(msg, v.keys.Delete):
		if m, ok := v.current(); ok && m.Reviewed {
			v.confirmingDelete = true
		}
		return v, nil

	case key.Matches(msg, v.keys.Reload):
		return v, v.loadMaterials

	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
		return v, nil
	}

	return v, nil
}

func canEditOwn(m console.MaterialStatus) bool {
	for _, r := range m.Reviews {
		if r.Mine {
			return r.CanEdit
		}
	}
	return false
}

func canDeleteOwn(m console.MaterialStatus) bool {
	for _, r := range m.Reviews {
		if r.Mine {
			return r.CanDelete
		}
	}
	return false
}

func (v *MaterialsView) openForm(r models.Review) {
	v.comments.SetValue(r.Comments)
	v.suggested.SetValue(r.SuggestedChange)
	v.summary.SetValue(r.MaterialSummary)
	v.focusIdx = focusComments
	v.updateFocus()
}

func (v *MaterialsView) updateFocus() {
	v.comments.Blur()
	v.suggested.Blur()
	v.summary.Blur()
	switch v.focusIdx {
	case focusComments:
		v.comments.Focus()
	case focusSuggested:
		v.suggested.Focus()
	case focusSummary:
		v.summary.Focus()
	}
}

func (v *MaterialsView) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.transition(review.ActionCancel, true)
		return v, nil

	case key.Matches(msg, v.keys.Save):
		return v, v.saveReview()

	case key.Matches(msg, v.keys.Tab):
		v.focusIdx = (v.focusIdx + 1) % focusCount
		v.updateFocus()
		return v, nil

	case msg.String() == "shift+tab":
		v.focusIdx = (v.focusIdx + focusCount - 1) % focusCount
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter) && v.focusIdx == focusSave:
		return v, v.saveReview()
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case focusComments:
		v.comments, cmd = v.comments.Update(msg)
	case focusSuggested:
		v.suggested, cmd = v.suggested.Update(msg)
	case focusSummary:
		v.summary, cmd = v.summary.Update(msg)
	}
	return v, cmd
}

func (v *MaterialsView) saveReview() tea.Cmd {
	m, ok := v.current()
	if !ok {
		return nil
	}
	in := models.ReviewInput{
		MaterialID:      m.Material.ID,
		Comments:        strings.TrimSpace(v.comments.Value()),
		SuggestedChange: strings.TrimSpace(v.suggested.Value()),
		MaterialSummary: strings.TrimSpace(v.summary.Value()),
	}

	ctx := context.Background()
	var (
		saved models.Review
		err   error
	)
	switch v.state {
	case review.StateDrafting:
		saved, err = v.console.SubmitReview(ctx, v.reviewer, in)
		if err == nil {
			v.transition(review.ActionSubmit, true)
		}
	case review.StateEditing:
		saved, err = v.console.EditReview(ctx, v.reviewer.ID, m.Own.ID, in)
		if err == nil {
			v.transition(review.ActionSave, true)
		}
	default:
		return nil
	}
	if err != nil {
		v.err = err
		return nil
	}
	return func() tea.Msg { return reviewSavedMsg{review: saved} }
}

func (v *MaterialsView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		m, ok := v.current()
		if !ok || !v.transition(review.ActionDelete, canDeleteOwn(m)) {
			return v, nil
		}
		if err := v.console.RemoveReview(context.Background(), v.reviewer.ID, m.Own.ID); err != nil {
			v.err = err
			v.settle()
			return v, nil
		}
		return v, func() tea.Msg { return reviewDeletedMsg{} }
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

func (v *MaterialsView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}
	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}
	if v.editing() {
		return v.renderForm()
	}
	if !v.loaded {
		return v.styles.TitleMuted.Render("Loading...")
	}

	s := v.styles
	task := v.selected.Task
	textWidth := styles.Clamp(styles.ContentWidth(v.width)-10, 20, 80)

	header := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(task.Name),
		s.TitleMuted.Render(fmt.Sprintf("%s › %s • %s", v.selected.Project.Name, v.selected.Service.ServiceName, task.TaskStatus.Name)),
	)
	if task.Description != "" {
		header = lipgloss.JoinVertical(lipgloss.Left, header, "", lipgloss.NewStyle().Width(textWidth).Render(task.Description))
	}

	parts := []string{header, ""}
	if len(v.materials) == 0 {
		parts = append(parts, s.TitleMuted.Render("No materials for this task"))
	}
	for i, m := range v.materials {
		parts = append(parts, v.renderMaterial(m, i == v.cursor, textWidth))
	}
	if v.err != nil {
		parts = append(parts, "", s.ErrorMessage.Render(v.err.Error()))
	}
	parts = append(parts, v.renderHelp())

	padded := lipgloss.NewStyle().Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
	return styles.CenterView(padded, v.width, v.height)
}

func (v *MaterialsView) renderMaterial(m console.MaterialStatus, selected bool, width int) string {
	s := v.styles

	mark := s.NotReviewed.Render("○ not reviewed")
	if m.Reviewed {
		mark = s.Reviewed.Render("● reviewed")
	}
	title := m.Material.Name + "  " + mark
	if selected {
		title = s.RowSelected.Width(width).Render(title)
	}

	var kw []string
	for _, k := range m.Material.Keywords {
		kw = append(kw, k.Name)
	}
	meta := []string{m.Material.Status.Name, m.Material.Language.Name}
	if len(kw) > 0 {
		meta = append(meta, strings.Join(kw, ", "))
	}
	lines := []string{title, s.Meta.Render(strings.Join(nonEmpty(meta), " • "))}

	if selected {
		for _, r := range m.Reviews {
			style := s.ReviewOther
			author := strings.TrimSpace(r.Reviewer.Name + " " + r.Reviewer.Surname)
			if r.Mine {
				style = s.ReviewMine
				author += " (you)"
			}
			body := []string{s.Meta.Render(author + " • " + r.ReviewDate), r.Comments}
			if r.SuggestedChange != "" {
				body = append(body, s.TitleMuted.Render("Suggested: ")+r.SuggestedChange)
			}
			if r.MaterialSummary != "" {
				body = append(body, s.TitleMuted.Render("Summary: ")+r.MaterialSummary)
			}
			lines = append(lines, style.Width(width-2).Render(lipgloss.JoinVertical(lipgloss.Left, body...)))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...) + "\n"
}

func nonEmpty(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (v *MaterialsView) renderForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	commentsStyle, suggestedStyle, summaryStyle := s.Input, s.Input, s.Input
	btnStyle := s.Button
	switch v.focusIdx {
	case focusComments:
		commentsStyle = s.InputFocused
	case focusSuggested:
		suggestedStyle = s.InputFocused
	case focusSummary:
		summaryStyle = s.InputFocused
	case focusSave:
		btnStyle = s.ButtonFocused
	}

	title := "New Review"
	if v.state == review.StateEditing {
		title = "Edit Review"
	}
	name := ""
	if m, ok := v.current(); ok {
		name = m.Material.Name
	}
	inputWidth := styles.Clamp(contentWidth-6, 20, 72)

	parts := []string{
		s.Title.Render(title),
		s.TitleMuted.Render(name),
		"",
		"Comments:",
		commentsStyle.Render(v.comments.View()),
		"",
		"Suggested change:",
		suggestedStyle.Render(v.suggested.View()),
		"",
		"Summary:",
		summaryStyle.Width(inputWidth).Render(v.summary.View()),
		"",
		btnStyle.Render(" Save "),
	}
	if v.err != nil {
		parts = append(parts, "", s.ErrorMessage.Render(v.err.Error()))
	}
	parts = append(parts, "", s.TitleMuted.Render("Tab: next • Ctrl+S: save • Esc: cancel"))

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Left, parts...),
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *MaterialsView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	if contentWidth > 0 && contentWidth < 50 {
		return v.styles.Help.Render(v.styles.HelpKey.Render("?") + " help")
	}
	return v.styles.Help.Render(
		fmt.Sprintf("%s review • %s edit • %s delete • %s reload • %s back • %s quit",
			v.styles.HelpKey.Render("n"),
			v.styles.HelpKey.Render("e"),
			v.styles.HelpKey.Render("d"),
			v.styles.HelpKey.Render("r"),
			v.styles.HelpKey.Render("esc"),
			v.styles.HelpKey.Render("q"),
		),
	)
}

func (v *MaterialsView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	helpItems := []string{
		s.HelpKey.Render("n") + "      write your review",
		s.HelpKey.Render("e") + "      edit your review",
		s.HelpKey.Render("d") + "      delete your review",
		s.HelpKey.Render("r") + "      reload",
		s.HelpKey.Render("esc") + "    back to projects",
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

func (v *MaterialsView) renderDeleteConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete your review?"),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}
