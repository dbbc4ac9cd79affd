package filter

import (
	"strings"

	"github.com/tgienger/agency/internal/models"
)

// Terminal status names observed in the reference data. Tasks in any of
// these states are not active.
const (
	StatusCompleted = "Completed"
	StatusCancelled = "Cancelled"
	StatusAccepted  = "Accepted"
)

// DefaultTerminalStatuses is the terminal set used when none is configured
var DefaultTerminalStatuses = []string{StatusCompleted, StatusCancelled, StatusAccepted}

// StatusSet is a set of terminal status names. Lookups ignore case and
// surrounding whitespace.
type StatusSet map[string]struct{}

// NewStatusSet builds a set from status names; blank names are ignored
func NewStatusSet(names ...string) StatusSet {
	set := make(StatusSet, len(names))
	for _, n := range names {
		if key := statusKey(n); key != "" {
			set[key] = struct{}{}
		}
	}
	return set
}

// Terminal reports whether name is in the set
func (s StatusSet) Terminal(name string) bool {
	_, ok := s[statusKey(name)]
	return ok
}

// Active reports whether a task is still in progress. A task without a
// status name is unknown and never counts as active.
func (s StatusSet) Active(t models.Task) bool {
	if statusKey(t.TaskStatus.Name) == "" {
		return false
	}
	return !s.Terminal(t.TaskStatus.Name)
}

func statusKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
