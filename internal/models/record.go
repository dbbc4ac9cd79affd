package models

// TaskRecord is one element of the denormalized task list returned for a
// worker. Nested references are pointers so a missing reference can be told
// apart from an empty one.
type TaskRecord struct {
	ID                ID                 `json:"id" validate:"required"`
	Name              string             `json:"name"`
	Description       string             `json:"description"`
	TaskStatus        Status             `json:"taskStatus"`
	Priority          int                `json:"priority"`
	Value             float64            `json:"value"`
	StartDate         string             `json:"startDate"`
	Deadline          string             `json:"deadline"`
	EndDate           string             `json:"endDate"`
	ServiceInProgress *ServiceInProgress `json:"serviceInProgress"`
}

// ServiceInProgress is the instance of a service running under a project
type ServiceInProgress struct {
	ID             ID              `json:"id"`
	StartDate      string          `json:"startDate"`
	EndDate        string          `json:"endDate"`
	Cost           float64         `json:"cost"`
	Status         Status          `json:"status"`
	ProjectService *ProjectService `json:"projectService"`
}

// ProjectService links a service to the project it runs under
type ProjectService struct {
	Service *ServiceRef `json:"service"`
	Project *ProjectRef `json:"project"`
}

// ServiceRef carries the scalar fields of a service
type ServiceRef struct {
	ID           ID      `json:"id"`
	ServiceName  string  `json:"serviceName"`
	EstimateCost float64 `json:"estimateCost"`
	ServiceType  Named   `json:"serviceType"`
}

// ProjectRef carries the scalar fields of a project
type ProjectRef struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Status      Status `json:"status"`
	ProjectType Named  `json:"projectType"`
	Client      Named  `json:"client"`
	Manager     Person `json:"manager"`
}

// Task returns the task scalar fields of the record
func (r TaskRecord) Task() Task {
	return Task{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		TaskStatus:  r.TaskStatus,
		Priority:    r.Priority,
		Value:       r.Value,
		StartDate:   r.StartDate,
		Deadline:    r.Deadline,
		EndDate:     r.EndDate,
	}
}

// Refs returns the project and service the record belongs to, or nils when
// the record is missing either reference.
func (r TaskRecord) Refs() (*ProjectRef, *ServiceRef) {
	if r.ServiceInProgress == nil || r.ServiceInProgress.ProjectService == nil {
		return nil, nil
	}
	ps := r.ServiceInProgress.ProjectService
	return ps.Project, ps.Service
}
