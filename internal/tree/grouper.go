// Package tree groups the flat task list of a worker into Project -> Service
// -> Task trees.
package tree

import (
	"log/slog"

	"github.com/tgienger/agency/internal/logging"
	"github.com/tgienger/agency/internal/metrics"
	"github.com/tgienger/agency/internal/models"
)

// Skip reasons, used as log attributes and metric labels
const (
	ReasonMissingServiceInProgress = "missing_service_in_progress"
	ReasonMissingProject           = "missing_project"
	ReasonMissingService           = "missing_service"
)

// Grouper builds project trees. It keeps no state between calls.
type Grouper struct {
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewGrouper returns a Grouper. Both collaborators may be nil.
func NewGrouper(log *slog.Logger, m *metrics.Metrics) *Grouper {
	if log == nil {
		log = logging.Discard()
	}
	return &Grouper{log: log, metrics: m}
}

// Group makes a single pass over records. Projects and services appear in
// the order they are first seen and tasks in input order. Records without a
// project or service reference are skipped.
func (g *Grouper) Group(records []models.TaskRecord) []models.Project {
	var projects []models.Project
	projectIdx := make(map[models.ID]int)
	serviceIdx := make(map[models.ID]map[models.ID]int)

	for _, r := range records {
		pref, sref, reason := refs(r)
		if reason != "" {
			g.log.Warn("skipping task record", "task_id", r.ID, "reason", reason)
			g.metrics.RecordSkipped(reason)
			continue
		}

		pi, ok := projectIdx[pref.ID]
		if !ok {
			pi = len(projects)
			projectIdx[pref.ID] = pi
			serviceIdx[pref.ID] = make(map[models.ID]int)
			projects = append(projects, newProject(pref))
		}
		p := &projects[pi]

		si, ok := serviceIdx[pref.ID][sref.ID]
		if !ok {
			si = len(p.Services)
			serviceIdx[pref.ID][sref.ID] = si
			p.Services = append(p.Services, newService(sref))
		}
		s := &p.Services[si]
		s.Tasks = append(s.Tasks, r.Task())
	}

	g.log.Debug("grouped task records", "records", len(records), "projects", len(projects))
	return projects
}

func refs(r models.TaskRecord) (*models.ProjectRef, *models.ServiceRef, string) {
	if r.ServiceInProgress == nil || r.ServiceInProgress.ProjectService == nil {
		return nil, nil, ReasonMissingServiceInProgress
	}
	pref, sref := r.Refs()
	if pref == nil || pref.ID.IsZero() {
		return nil, nil, ReasonMissingProject
	}
	if sref == nil || sref.ID.IsZero() {
		return nil, nil, ReasonMissingService
	}
	return pref, sref, ""
}

func newProject(ref *models.ProjectRef) models.Project {
	return models.Project{
		ID:          ref.ID,
		Name:        ref.Name,
		StartDate:   ref.StartDate,
		EndDate:     ref.EndDate,
		Status:      ref.Status,
		ProjectType: ref.ProjectType,
		Client:      ref.Client,
		Manager:     ref.Manager,
	}
}

func newService(ref *models.ServiceRef) models.Service {
	return models.Service{
		ID:           ref.ID,
		ServiceName:  ref.ServiceName,
		EstimateCost: ref.EstimateCost,
		ServiceType:  ref.ServiceType,
	}
}
