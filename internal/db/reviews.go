package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tgienger/agency/internal/console"
	"github.com/tgienger/agency/internal/models"
)

type reviewRow struct {
	ID              models.ID `db:"id"`
	MaterialID      models.ID `db:"material_id"`
	ReviewerID      models.ID `db:"reviewer_id"`
	ReviewerName    string    `db:"reviewer_name"`
	ReviewerSurname string    `db:"reviewer_surname"`
	Comments        string    `db:"comments"`
	SuggestedChange string    `db:"suggested_change"`
	MaterialSummary string    `db:"material_summary"`
	ReviewDate      string    `db:"review_date"`
}

func (r reviewRow) review() models.Review {
	return models.Review{
		ID:              r.ID,
		MaterialID:      r.MaterialID,
		Comments:        r.Comments,
		SuggestedChange: r.SuggestedChange,
		ReviewDate:      r.ReviewDate,
		MaterialSummary: r.MaterialSummary,
		Reviewer: models.Reviewer{
			ID:      r.ReviewerID,
			Name:    r.ReviewerName,
			Surname: r.ReviewerSurname,
		},
	}
}

const reviewColumns = `id, material_id, reviewer_id, reviewer_name, reviewer_surname,
	comments, suggested_change, material_summary, review_date`

// now is swapped in tests
var now = func() time.Time { return time.Now().UTC() }

// Review retrieves a review by ID
func (db *DB) Review(ctx context.Context, id models.ID) (models.Review, error) {
	var r reviewRow
	err := db.conn.GetContext(ctx, &r, `SELECT `+reviewColumns+` FROM reviews WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Review{}, fmt.Errorf("review %s: %w", id, console.ErrReviewNotFound)
	}
	if err != nil {
		return models.Review{}, fmt.Errorf("get review: %w", err)
	}
	return r.review(), nil
}

// CreateReview stores a new review and returns it with its assigned id and date
func (db *DB) CreateReview(ctx context.Context, in models.ReviewInput) (models.Review, error) {
	var exists bool
	err := db.conn.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM materials WHERE id = ?)`, in.MaterialID)
	if err != nil {
		return models.Review{}, fmt.Errorf("check material: %w", err)
	}
	if !exists {
		return models.Review{}, fmt.Errorf("material %s: %w", in.MaterialID, console.ErrMaterialNotFound)
	}

	r := reviewRow{
		ID:              models.ID(uuid.NewString()),
		MaterialID:      in.MaterialID,
		ReviewerID:      in.Reviewer.ID,
		ReviewerName:    in.Reviewer.Name,
		ReviewerSurname: in.Reviewer.Surname,
		Comments:        in.Comments,
		SuggestedChange: in.SuggestedChange,
		MaterialSummary: in.MaterialSummary,
		ReviewDate:      now().Format(time.RFC3339),
	}
	_, err = db.conn.NamedExecContext(ctx, `
		INSERT INTO reviews (`+reviewColumns+`)
		VALUES (:id, :material_id, :reviewer_id, :reviewer_name, :reviewer_surname,
			:comments, :suggested_change, :material_summary, :review_date)
	`, r)
	if err != nil {
		return models.Review{}, fmt.Errorf("insert review: %w", err)
	}

	db.log.Debug("review created", "review_id", r.ID, "material_id", r.MaterialID, "reviewer_id", r.ReviewerID)
	return r.review(), nil
}

// UpdateReview overwrites the editable fields of a review. The last write wins.
func (db *DB) UpdateReview(ctx context.Context, id models.ID, in models.ReviewInput) (models.Review, error) {
	res, err := db.conn.ExecContext(ctx, `
		UPDATE reviews
		SET comments = ?, suggested_change = ?, material_summary = ?, review_date = ?
		WHERE id = ?
	`, in.Comments, in.SuggestedChange, in.MaterialSummary, now().Format(time.RFC3339), id)
	if err != nil {
		return models.Review{}, fmt.Errorf("update review: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.Review{}, fmt.Errorf("review %s: %w", id, console.ErrReviewNotFound)
	}

	db.log.Debug("review updated", "review_id", id)
	return db.Review(ctx, id)
}

// DeleteReview removes a review
func (db *DB) DeleteReview(ctx context.Context, id models.ID) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("review %s: %w", id, console.ErrReviewNotFound)
	}

	db.log.Debug("review deleted", "review_id", id)
	return nil
}

// reviewsFor loads reviews grouped by material, each list in insertion order
func (db *DB) reviewsFor(ctx context.Context, materialIDs []models.ID) (map[models.ID][]models.Review, error) {
	query, args, err := sqlx.In(`
		SELECT `+reviewColumns+` FROM reviews
		WHERE material_id IN (?)
		ORDER BY rowid
	`, materialIDs)
	if err != nil {
		return nil, err
	}

	var rows []reviewRow
	if err := db.conn.SelectContext(ctx, &rows, db.conn.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	out := make(map[models.ID][]models.Review)
	for _, r := range rows {
		out[r.MaterialID] = append(out[r.MaterialID], r.review())
	}
	return out, nil
}
