package console

import (
	"context"

	"github.com/tgienger/agency/internal/models"
)

// Store is the data source behind the console. Lookups of missing rows
// return ErrMaterialNotFound or ErrReviewNotFound.
type Store interface {
	WorkerTasks(ctx context.Context, workerID models.ID) ([]models.TaskRecord, error)
	TaskMaterials(ctx context.Context, taskID models.ID) ([]models.Material, error)
	Material(ctx context.Context, id models.ID) (models.Material, error)

	Review(ctx context.Context, id models.ID) (models.Review, error)
	CreateReview(ctx context.Context, in models.ReviewInput) (models.Review, error)
	UpdateReview(ctx context.Context, id models.ID, in models.ReviewInput) (models.Review, error)
	DeleteReview(ctx context.Context, id models.ID) error
}
