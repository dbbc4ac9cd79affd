// Package filter narrows a project tree to the part matching a search query.
//
// A filter is a chain of stages. Each stage asks the rest of the chain to
// filter the project first, then decides what survives at its own level, so
// leaf rules (task and service matches) resolve before the project rule.
// Stages never mutate their input: every surviving Project and Service is a
// new value with new slices, and tasks are copied, never changed.
package filter

import (
	"strings"

	"github.com/tgienger/agency/internal/models"
)

// Mode selects the chain configuration
type Mode string

const (
	// ModeActive shows only active tasks and hides projects without one.
	ModeActive Mode = "active"
	// ModeAll matches on project and service names regardless of task status.
	ModeAll Mode = "all"
)

// ParseMode maps user input to a Mode; anything unknown is active
func ParseMode(s string) Mode {
	if Mode(strings.ToLower(strings.TrimSpace(s))) == ModeAll {
		return ModeAll
	}
	return ModeActive
}

// Toggle switches between the two modes
func (m Mode) Toggle() Mode {
	if m == ModeAll {
		return ModeActive
	}
	return ModeAll
}

// Query is recomputed from UI state on every keystroke or mode toggle
type Query struct {
	Text string
	Mode Mode
}

// withoutText keeps the mode and drops the search text
func (q Query) withoutText() Query {
	return Query{Mode: q.Mode}
}

// Handler filters one project. ok=false means nothing in the project
// satisfies the chain.
type Handler func(q Query, p models.Project) (out models.Project, ok bool)

// Stage is one link of the chain; next is the rest of the chain
type Stage func(q Query, p models.Project, next Handler) (models.Project, bool)

// Compose folds stages right to left into a single Handler. The innermost
// handler passes the project through unchanged.
func Compose(stages ...Stage) Handler {
	h := Handler(func(_ Query, p models.Project) (models.Project, bool) {
		return p, true
	})
	for i := len(stages) - 1; i >= 0; i-- {
		stage, next := stages[i], h
		h = func(q Query, p models.Project) (models.Project, bool) {
			return stage(q, p, next)
		}
	}
	return h
}

// Engine builds chains against one terminal status set. It holds no other
// state, so one Engine may filter the same tree for several queries
// concurrently.
type Engine struct {
	statuses StatusSet
	active   Handler
	all      Handler
}

// New returns an Engine. With no names the default terminal set is used.
func New(terminal ...string) *Engine {
	if len(terminal) == 0 {
		terminal = DefaultTerminalStatuses
	}
	e := &Engine{statuses: NewStatusSet(terminal...)}
	e.active = Compose(e.Chain(ModeActive)...)
	e.all = Compose(e.Chain(ModeAll)...)
	return e
}

// Statuses returns the terminal status set
func (e *Engine) Statuses() StatusSet {
	return e.statuses
}

// Chain returns the ordered stages for a mode, outermost first
func (e *Engine) Chain(mode Mode) []Stage {
	if mode == ModeAll {
		return []Stage{ProjectNameMatch, ServiceNameMatch}
	}
	return []Stage{
		ProjectNameMatch,
		ActiveTaskExistence(e.statuses),
		ActiveServiceExistence(e.statuses),
	}
}

// Handle filters one project with the chain for q.Mode. Surrounding
// whitespace in q.Text is ignored.
func (e *Engine) Handle(q Query, p models.Project) (models.Project, bool) {
	q.Text = strings.TrimSpace(q.Text)
	if q.Mode == ModeAll {
		return e.all(q, p)
	}
	return e.active(q, p)
}

// Apply filters every project and keeps the survivors in input order
func (e *Engine) Apply(q Query, projects []models.Project) []models.Project {
	out := make([]models.Project, 0, len(projects))
	for _, p := range projects {
		if fp, ok := e.Handle(q, p); ok {
			out = append(out, fp)
		}
	}
	return out
}
