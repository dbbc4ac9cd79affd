package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/tgienger/agency/internal/models"
	"github.com/tgienger/agency/internal/payload"
)

// ImportStats counts the rows written by Import
type ImportStats struct {
	Workers   int
	Tasks     int
	Materials int
	Reviews   int
}

// Import writes a snapshot into the cache in one transaction. Rows are
// upserted by id, so importing the same snapshot twice changes nothing.
// Task assignments of every worker in the snapshot are replaced.
func (db *DB) Import(ctx context.Context, doc payload.Document) (ImportStats, error) {
	var stats ImportStats

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return stats, err
	}
	defer tx.Rollback()

	for _, w := range doc.Workers {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO workers (id, name, surname) VALUES (?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name, surname = excluded.surname
		`, w.ID, w.Name, w.Surname); err != nil {
			return stats, fmt.Errorf("upsert worker %s: %w", w.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM task_workers WHERE worker_id = ?`, w.ID); err != nil {
			return stats, fmt.Errorf("reset assignments of worker %s: %w", w.ID, err)
		}
		stats.Workers++
	}

	// a task listed twice for one worker keeps its first position
	positions := make(map[models.ID]int)
	for _, t := range doc.Tasks {
		if err := upsertTask(ctx, tx, t.TaskRecord); err != nil {
			return stats, err
		}
		pos := positions[t.WorkerID]
		positions[t.WorkerID] = pos + 1
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO task_workers (task_id, worker_id, position) VALUES (?, ?, ?)
			ON CONFLICT(task_id, worker_id) DO NOTHING
		`, t.ID, t.WorkerID, pos); err != nil {
			return stats, fmt.Errorf("assign task %s: %w", t.ID, err)
		}
		stats.Tasks++
	}

	for _, m := range doc.Materials {
		n, err := upsertMaterial(ctx, tx, m)
		if err != nil {
			return stats, err
		}
		stats.Materials++
		stats.Reviews += n
	}

	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("commit import: %w", err)
	}
	db.log.Info("snapshot imported",
		"workers", stats.Workers,
		"tasks", stats.Tasks,
		"materials", stats.Materials,
		"reviews", stats.Reviews,
	)
	return stats, nil
}

func upsertTask(ctx context.Context, tx *sqlx.Tx, r models.TaskRecord) error {
	var sipID *models.ID
	if sip := r.ServiceInProgress; sip != nil && !sip.ID.IsZero() {
		var projectID, serviceID *models.ID
		pref, sref := r.Refs()
		if pref != nil && !pref.ID.IsZero() {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO projects (id, name, start_date, end_date, status, project_type, client, manager_name, manager_surname)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(id) DO UPDATE SET
					name = excluded.name, start_date = excluded.start_date, end_date = excluded.end_date,
					status = excluded.status, project_type = excluded.project_type, client = excluded.client,
					manager_name = excluded.manager_name, manager_surname = excluded.manager_surname
			`, pref.ID, pref.Name, pref.StartDate, pref.EndDate, pref.Status.Name, pref.ProjectType.Name,
				pref.Client.Name, pref.Manager.Name, pref.Manager.Surname); err != nil {
				return fmt.Errorf("upsert project %s: %w", pref.ID, err)
			}
			projectID = &pref.ID
		}
		if sref != nil && !sref.ID.IsZero() {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO services (id, service_name, estimate_cost, service_type) VALUES (?, ?, ?, ?)
				ON CONFLICT(id) DO UPDATE SET
					service_name = excluded.service_name, estimate_cost = excluded.estimate_cost,
					service_type = excluded.service_type
			`, sref.ID, sref.ServiceName, sref.EstimateCost, sref.ServiceType.Name); err != nil {
				return fmt.Errorf("upsert service %s: %w", sref.ID, err)
			}
			serviceID = &sref.ID
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO services_in_progress (id, project_id, service_id, start_date, end_date, cost, status)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				project_id = excluded.project_id, service_id = excluded.service_id,
				start_date = excluded.start_date, end_date = excluded.end_date,
				cost = excluded.cost, status = excluded.status
		`, sip.ID, projectID, serviceID, sip.StartDate, sip.EndDate, sip.Cost, sip.Status.Name); err != nil {
			return fmt.Errorf("upsert service in progress %s: %w", sip.ID, err)
		}
		sipID = &sip.ID
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO tasks (id, service_in_progress_id, name, description, status, priority, value, start_date, deadline, end_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			service_in_progress_id = excluded.service_in_progress_id, name = excluded.name,
			description = excluded.description, status = excluded.status, priority = excluded.priority,
			value = excluded.value, start_date = excluded.start_date, deadline = excluded.deadline,
			end_date = excluded.end_date
	`, r.ID, sipID, r.Name, r.Description, r.TaskStatus.Name, r.Priority, r.Value,
		r.StartDate, r.Deadline, r.EndDate); err != nil {
		return fmt.Errorf("upsert task %s: %w", r.ID, err)
	}
	return nil
}

func upsertMaterial(ctx context.Context, tx *sqlx.Tx, m models.Material) (int, error) {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO materials (id, task_id, name, description, status, language)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			task_id = excluded.task_id, name = excluded.name, description = excluded.description,
			status = excluded.status, language = excluded.language
	`, m.ID, m.TaskID, m.Name, m.Description, m.Status.Name, m.Language.Name); err != nil {
		return 0, fmt.Errorf("upsert material %s: %w", m.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM material_keywords WHERE material_id = ?`, m.ID); err != nil {
		return 0, fmt.Errorf("reset keywords of material %s: %w", m.ID, err)
	}
	for _, k := range m.Keywords {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO keywords (id, name) VALUES (?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name
		`, k.ID, k.Name); err != nil {
			return 0, fmt.Errorf("upsert keyword %s: %w", k.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO material_keywords (material_id, keyword_id) VALUES (?, ?)
		`, m.ID, k.ID); err != nil {
			return 0, fmt.Errorf("tag material %s: %w", m.ID, err)
		}
	}

	for _, r := range m.Reviews {
		row := reviewRow{
			ID:              r.ID,
			MaterialID:      m.ID,
			ReviewerID:      r.Reviewer.ID,
			ReviewerName:    r.Reviewer.Name,
			ReviewerSurname: r.Reviewer.Surname,
			Comments:        r.Comments,
			SuggestedChange: r.SuggestedChange,
			MaterialSummary: r.MaterialSummary,
			ReviewDate:      r.ReviewDate,
		}
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO reviews (`+reviewColumns+`)
			VALUES (:id, :material_id, :reviewer_id, :reviewer_name, :reviewer_surname,
				:comments, :suggested_change, :material_summary, :review_date)
			ON CONFLICT(id) DO UPDATE SET
				material_id = excluded.material_id, reviewer_id = excluded.reviewer_id,
				reviewer_name = excluded.reviewer_name, reviewer_surname = excluded.reviewer_surname,
				comments = excluded.comments, suggested_change = excluded.suggested_change,
				material_summary = excluded.material_summary, review_date = excluded.review_date
		`, row); err != nil {
			return 0, fmt.Errorf("upsert review %s: %w", r.ID, err)
		}
	}
	return len(m.Reviews), nil
}
