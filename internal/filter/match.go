package filter

import (
	"strings"

	"github.com/tgienger/agency/internal/models"
)

// MatchPredicate tests one field of an entity against the query text
type MatchPredicate[T any] func(entity T, text string) bool

// Contains is the matching rule for every text predicate: case-insensitive
// substring containment. Empty text matches everything; a blank field never
// matches a non-empty text.
func Contains(field, text string) bool {
	if text == "" {
		return true
	}
	if field == "" {
		return false
	}
	return strings.Contains(strings.ToLower(field), strings.ToLower(text))
}

var (
	projectName MatchPredicate[models.Project] = func(p models.Project, text string) bool {
		return Contains(p.Name, text)
	}
	serviceName MatchPredicate[models.Service] = func(s models.Service, text string) bool {
		return Contains(s.ServiceName, text)
	}
	taskName MatchPredicate[models.Task] = func(t models.Task, text string) bool {
		return Contains(t.Name, text)
	}
)
