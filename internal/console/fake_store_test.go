package console

import (
	"context"
	"fmt"
	"sync"

	"github.com/tgienger/agency/internal/models"
)

type fakeStore struct {
	mu sync.RWMutex

	nextReviewID int
	records      map[models.ID][]models.TaskRecord
	materials    []models.Material
	reviews      []models.Review
	failTasks    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nextReviewID: 1000,
		records:      make(map[models.ID][]models.TaskRecord),
	}
}

func (s *fakeStore) WorkerTasks(_ context.Context, workerID models.ID) ([]models.TaskRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failTasks != nil {
		return nil, s.failTasks
	}
	return append([]models.TaskRecord(nil), s.records[workerID]...), nil
}

func (s *fakeStore) withReviews(m models.Material) models.Material {
	m.Reviews = nil
	for _, r := range s.reviews {
		if r.MaterialID == m.ID {
			m.Reviews = append(m.Reviews, r)
		}
	}
	return m
}

func (s *fakeStore) TaskMaterials(_ context.Context, taskID models.ID) ([]models.Material, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Material
	for _, m := range s.materials {
		if m.TaskID == taskID {
			out = append(out, s.withReviews(m))
		}
	}
	return out, nil
}

func (s *fakeStore) Material(_ context.Context, id models.ID) (models.Material, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.materials {
		if m.ID == id {
			return s.withReviews(m), nil
		}
	}
	return models.Material{}, ErrMaterialNotFound
}

func (s *fakeStore) Review(_ context.Context, id models.ID) (models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.reviews {
		if r.ID == id {
			return r, nil
		}
	}
	return models.Review{}, ErrReviewNotFound
}

func (s *fakeStore) CreateReview(_ context.Context, in models.ReviewInput) (models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextReviewID++
	r := models.Review{
		ID:              models.ID(fmt.Sprint(s.nextReviewID)),
		MaterialID:      in.MaterialID,
		Comments:        in.Comments,
		SuggestedChange: in.SuggestedChange,
		MaterialSummary: in.MaterialSummary,
		ReviewDate:      "2024-03-06T09:30:00Z",
		Reviewer:        in.Reviewer,
	}
	s.reviews = append(s.reviews, r)
	return r, nil
}

func (s *fakeStore) UpdateReview(_ context.Context, id models.ID, in models.ReviewInput) (models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.reviews {
		if r.ID == id {
			r.Comments = in.Comments
			r.SuggestedChange = in.SuggestedChange
			r.MaterialSummary = in.MaterialSummary
			s.reviews[i] = r
			return r, nil
		}
	}
	return models.Review{}, ErrReviewNotFound
}

func (s *fakeStore) DeleteReview(_ context.Context, id models.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.reviews {
		if r.ID == id {
			s.reviews = append(s.reviews[:i], s.reviews[i+1:]...)
			return nil
		}
	}
	return ErrReviewNotFound
}
