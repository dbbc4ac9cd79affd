package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tgienger/agency/internal/models"
)

// taskRow is one row of the denormalized worker task query. Everything past
// the task columns comes from LEFT JOINs and may be NULL.
type taskRow struct {
	ID          models.ID `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	Status      string    `db:"status"`
	Priority    int       `db:"priority"`
	Value       float64   `db:"value"`
	StartDate   string    `db:"start_date"`
	Deadline    string    `db:"deadline"`
	EndDate     string    `db:"end_date"`

	SIPID        sql.NullString  `db:"sip_id"`
	SIPStartDate sql.NullString  `db:"sip_start_date"`
	SIPEndDate   sql.NullString  `db:"sip_end_date"`
	SIPCost      sql.NullFloat64 `db:"sip_cost"`
	SIPStatus    sql.NullString  `db:"sip_status"`

	ServiceID           sql.NullString  `db:"service_id"`
	ServiceName         sql.NullString  `db:"service_name"`
	ServiceEstimateCost sql.NullFloat64 `db:"service_estimate_cost"`
	ServiceType         sql.NullString  `db:"service_type"`

	ProjectID             sql.NullString `db:"project_id"`
	ProjectName           sql.NullString `db:"project_name"`
	ProjectStartDate      sql.NullString `db:"project_start_date"`
	ProjectEndDate        sql.NullString `db:"project_end_date"`
	ProjectStatus         sql.NullString `db:"project_status"`
	ProjectType           sql.NullString `db:"project_type"`
	ProjectClient         sql.NullString `db:"project_client"`
	ProjectManagerName    sql.NullString `db:"project_manager_name"`
	ProjectManagerSurname sql.NullString `db:"project_manager_surname"`
}

const workerTasksQuery = `
	SELECT t.id, t.name, t.description, t.status, t.priority, t.value,
	       t.start_date, t.deadline, t.end_date,
	       sip.id AS sip_id, sip.start_date AS sip_start_date, sip.end_date AS sip_end_date,
	       sip.cost AS sip_cost, sip.status AS sip_status,
	       s.id AS service_id, s.service_name, s.estimate_cost AS service_estimate_cost,
	       s.service_type,
	       p.id AS project_id, p.name AS project_name, p.start_date AS project_start_date,
	       p.end_date AS project_end_date, p.status AS project_status, p.project_type,
	       p.client AS project_client, p.manager_name AS project_manager_name,
	       p.manager_surname AS project_manager_surname
	FROM tasks t
	JOIN task_workers tw ON tw.task_id = t.id
	LEFT JOIN services_in_progress sip ON sip.id = t.service_in_progress_id
	LEFT JOIN services s ON s.id = sip.service_id
	LEFT JOIN projects p ON p.id = sip.project_id
	WHERE tw.worker_id = ?
	ORDER BY tw.position, t.rowid
`

// WorkerTasks returns the flat task list assigned to a worker, in the order
// the upstream API delivered it
func (db *DB) WorkerTasks(ctx context.Context, workerID models.ID) ([]models.TaskRecord, error) {
	var rows []taskRow
	if err := db.conn.SelectContext(ctx, &rows, workerTasksQuery, workerID); err != nil {
		return nil, fmt.Errorf("list worker tasks: %w", err)
	}

	records := make([]models.TaskRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.record())
	}
	return records, nil
}

func (r taskRow) task() models.Task {
	return models.Task{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		TaskStatus:  models.Status{Name: r.Status},
		Priority:    r.Priority,
		Value:       r.Value,
		StartDate:   r.StartDate,
		Deadline:    r.Deadline,
		EndDate:     r.EndDate,
	}
}

func (r taskRow) record() models.TaskRecord {
	t := r.task()
	rec := models.TaskRecord{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		TaskStatus:  t.TaskStatus,
		Priority:    t.Priority,
		Value:       t.Value,
		StartDate:   t.StartDate,
		Deadline:    t.Deadline,
		EndDate:     t.EndDate,
	}
	if !r.SIPID.Valid {
		return rec
	}

	ps := &models.ProjectService{}
	if r.ServiceID.Valid {
		ps.Service = &models.ServiceRef{
			ID:           models.ID(r.ServiceID.String),
			ServiceName:  r.ServiceName.String,
			EstimateCost: r.ServiceEstimateCost.Float64,
			ServiceType:  models.Named{Name: r.ServiceType.String},
		}
	}
	if r.ProjectID.Valid {
		ps.Project = &models.ProjectRef{
			ID:          models.ID(r.ProjectID.String),
			Name:        r.ProjectName.String,
			StartDate:   r.ProjectStartDate.String,
			EndDate:     r.ProjectEndDate.String,
			Status:      models.Status{Name: r.ProjectStatus.String},
			ProjectType: models.Named{Name: r.ProjectType.String},
			Client:      models.Named{Name: r.ProjectClient.String},
			Manager: models.Person{
				Name:    r.ProjectManagerName.String,
				Surname: r.ProjectManagerSurname.String,
			},
		}
	}
	rec.ServiceInProgress = &models.ServiceInProgress{
		ID:             models.ID(r.SIPID.String),
		StartDate:      r.SIPStartDate.String,
		EndDate:        r.SIPEndDate.String,
		Cost:           r.SIPCost.Float64,
		Status:         models.Status{Name: r.SIPStatus.String},
		ProjectService: ps,
	}
	return rec
}
