package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/tgienger/agency/internal/console"
	"github.com/tgienger/agency/internal/models"
)

type materialRow struct {
	ID          models.ID `db:"id"`
	TaskID      models.ID `db:"task_id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	Status      string    `db:"status"`
	Language    string    `db:"language"`
}

type keywordRow struct {
	MaterialID models.ID `db:"material_id"`
	ID         models.ID `db:"id"`
	Name       string    `db:"name"`
}

func (r materialRow) material() models.Material {
	return models.Material{
		ID:          r.ID,
		TaskID:      r.TaskID,
		Name:        r.Name,
		Description: r.Description,
		Status:      models.Status{Name: r.Status},
		Language:    models.Named{Name: r.Language},
	}
}

// TaskMaterials returns the materials of a task with their keywords and reviews
func (db *DB) TaskMaterials(ctx context.Context, taskID models.ID) ([]models.Material, error) {
	var rows []materialRow
	err := db.conn.SelectContext(ctx, &rows, `
		SELECT id, task_id, name, description, status, language
		FROM materials WHERE task_id = ?
		ORDER BY rowid
	`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]models.ID, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	keywords, err := db.keywordsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	reviews, err := db.reviewsFor(ctx, ids)
	if err != nil {
		return nil, err
	}

	materials := make([]models.Material, len(rows))
	for i, r := range rows {
		m := r.material()
		m.Keywords = keywords[r.ID]
		m.Reviews = reviews[r.ID]
		materials[i] = m
	}
	return materials, nil
}

// Material retrieves one material by ID
func (db *DB) Material(ctx context.Context, id models.ID) (models.Material, error) {
	var r materialRow
	err := db.conn.GetContext(ctx, &r, `
		SELECT id, task_id, name, description, status, language
		FROM materials WHERE id = ?
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Material{}, fmt.Errorf("material %s: %w", id, console.ErrMaterialNotFound)
	}
	if err != nil {
		return models.Material{}, fmt.Errorf("get material: %w", err)
	}

	ids := []models.ID{id}
	keywords, err := db.keywordsFor(ctx, ids)
	if err != nil {
		return models.Material{}, err
	}
	reviews, err := db.reviewsFor(ctx, ids)
	if err != nil {
		return models.Material{}, err
	}

	m := r.material()
	m.Keywords = keywords[id]
	m.Reviews = reviews[id]
	return m, nil
}

func (db *DB) keywordsFor(ctx context.Context, materialIDs []models.ID) (map[models.ID][]models.Keyword, error) {
	query, args, err := sqlx.In(`
		SELECT mk.material_id, k.id, k.name
		FROM material_keywords mk
		JOIN keywords k ON k.id = mk.keyword_id
		WHERE mk.material_id IN (?)
		ORDER BY k.name
	`, materialIDs)
	if err != nil {
		return nil, err
	}

	var rows []keywordRow
	if err := db.conn.SelectContext(ctx, &rows, db.conn.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list keywords: %w", err)
	}

	out := make(map[models.ID][]models.Keyword)
	for _, r := range rows {
		out[r.MaterialID] = append(out[r.MaterialID], models.Keyword{ID: r.ID, Name: r.Name})
	}
	return out, nil
}
