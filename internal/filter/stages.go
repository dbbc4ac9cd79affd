package filter

import (
	"github.com/tgienger/agency/internal/models"
)

// ProjectNameMatch keeps whatever the rest of the chain keeps. When the rest
// of the chain keeps nothing but the project name matches a non-empty text,
// the rest of the chain runs again without the text, so the project shows
// with its whole subtree under the mode's structural rules.
func ProjectNameMatch(q Query, p models.Project, next Handler) (models.Project, bool) {
	if out, ok := next(q, p); ok {
		return out, true
	}
	if q.Text == "" || !projectName(p, q.Text) {
		return models.Project{}, false
	}
	return next(q.withoutText(), p)
}

// ServiceNameMatch keeps the services whose name matches, each with all of
// its tasks. Empty text keeps every service.
func ServiceNameMatch(q Query, p models.Project, next Handler) (models.Project, bool) {
	p, ok := next(q, p)
	if !ok {
		return models.Project{}, false
	}

	var services []models.Service
	for _, s := range p.Services {
		if q.Text == "" || serviceName(s, q.Text) {
			services = append(services, cloneService(s, s.Tasks))
		}
	}
	if q.Text != "" && len(services) == 0 {
		return models.Project{}, false
	}
	return withServices(p, services), true
}

// ActiveTaskExistence narrows every service to its active tasks that match
// the text, either by task name or through the service name. Services left
// without tasks are dropped.
func ActiveTaskExistence(statuses StatusSet) Stage {
	return func(q Query, p models.Project, next Handler) (models.Project, bool) {
		p, ok := next(q, p)
		if !ok {
			return models.Project{}, false
		}

		var services []models.Service
		for _, s := range p.Services {
			serviceHit := serviceName(s, q.Text)
			var tasks []models.Task
			for _, t := range s.Tasks {
				if statuses.Active(t) && (serviceHit || taskName(t, q.Text)) {
					tasks = append(tasks, t)
				}
			}
			if len(tasks) > 0 {
				services = append(services, cloneService(s, tasks))
			}
		}
		if len(services) == 0 {
			return models.Project{}, false
		}
		return withServices(p, services), true
	}
}

// ActiveServiceExistence keeps the services holding at least one active
// task. A project with no such service is dropped.
func ActiveServiceExistence(statuses StatusSet) Stage {
	return func(q Query, p models.Project, next Handler) (models.Project, bool) {
		p, ok := next(q, p)
		if !ok {
			return models.Project{}, false
		}

		var services []models.Service
		for _, s := range p.Services {
			for _, t := range s.Tasks {
				if statuses.Active(t) {
					services = append(services, cloneService(s, s.Tasks))
					break
				}
			}
		}
		if len(services) == 0 {
			return models.Project{}, false
		}
		return withServices(p, services), true
	}
}

// withServices returns a copy of p holding services
func withServices(p models.Project, services []models.Service) models.Project {
	p.Services = services
	return p
}

// cloneService returns a copy of s holding a fresh copy of tasks
func cloneService(s models.Service, tasks []models.Task) models.Service {
	s.Tasks = append([]models.Task(nil), tasks...)
	return s
}
