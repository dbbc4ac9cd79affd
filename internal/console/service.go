// Package console is the application layer of the business console. It
// loads a worker's tasks, groups and filters them, and routes review
// changes through ownership checks before they reach the store.
package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tgienger/agency/internal/filter"
	"github.com/tgienger/agency/internal/logging"
	"github.com/tgienger/agency/internal/metrics"
	"github.com/tgienger/agency/internal/models"
	"github.com/tgienger/agency/internal/review"
	"github.com/tgienger/agency/internal/tree"
)

var validate = validator.New()

// Options configures a Service. All fields are optional.
type Options struct {
	Log              *slog.Logger
	Metrics          *metrics.Metrics
	TerminalStatuses []string
}

type Service struct {
	store   Store
	log     *slog.Logger
	metrics *metrics.Metrics
	grouper *tree.Grouper
	engine  *filter.Engine
	guard   *review.Guard
}

func NewService(store Store, opts Options) *Service {
	log := opts.Log
	if log == nil {
		log = logging.Discard()
	}
	return &Service{
		store:   store,
		log:     log,
		metrics: opts.Metrics,
		grouper: tree.NewGrouper(log, opts.Metrics),
		engine:  filter.New(opts.TerminalStatuses...),
		guard:   review.NewGuard(log, opts.Metrics),
	}
}

// Tree loads the worker's tasks and groups them into project trees
func (s *Service) Tree(ctx context.Context, workerID models.ID) ([]models.Project, error) {
	records, err := s.store.WorkerTasks(ctx, models.NewID(workerID))
	if err != nil {
		return nil, fmt.Errorf("load tasks of worker %s: %w", workerID, err)
	}
	return s.grouper.Group(records), nil
}

// Filter narrows a grouped tree to the projects matching q
func (s *Service) Filter(projects []models.Project, q filter.Query) []models.Project {
	start := time.Now()
	out := s.engine.Apply(q, projects)
	s.metrics.FilterRun(string(filter.ParseMode(string(q.Mode))), time.Since(start).Seconds())
	return out
}

// FilteredTree is Tree followed by Filter
func (s *Service) FilteredTree(ctx context.Context, workerID models.ID, q filter.Query) ([]models.Project, error) {
	projects, err := s.Tree(ctx, workerID)
	if err != nil {
		return nil, err
	}
	return s.Filter(projects, q), nil
}

// Terminal reports whether a task status name ends the task's life
func (s *Service) Terminal(status string) bool {
	return s.engine.Statuses().Terminal(status)
}

// ReviewView is one review as seen by the current reviewer
type ReviewView struct {
	models.Review
	Mine      bool
	CanEdit   bool
	CanDelete bool
}

// MaterialStatus is a material together with the current reviewer's
// relation to it
type MaterialStatus struct {
	Material models.Material
	Own      models.Review
	Reviewed bool
	State    review.State
	Reviews  []ReviewView
}

// Materials returns the task's materials with review flags for reviewerID
func (s *Service) Materials(ctx context.Context, taskID, reviewerID models.ID) ([]MaterialStatus, error) {
	materials, err := s.store.TaskMaterials(ctx, models.NewID(taskID))
	if err != nil {
		return nil, fmt.Errorf("load materials of task %s: %w", taskID, err)
	}
	out := make([]MaterialStatus, len(materials))
	for i, m := range materials {
		out[i] = s.status(m, reviewerID)
	}
	return out, nil
}

// ReviewStatus loads one material with review flags for reviewerID
func (s *Service) ReviewStatus(ctx context.Context, materialID, reviewerID models.ID) (MaterialStatus, error) {
	m, err := s.store.Material(ctx, models.NewID(materialID))
	if err != nil {
		return MaterialStatus{}, err
	}
	return s.status(m, reviewerID), nil
}

func (s *Service) status(m models.Material, reviewerID models.ID) MaterialStatus {
	own, ok := s.guard.FindOwn(m.Reviews, reviewerID)
	st := MaterialStatus{
		Material: m,
		Own:      own,
		Reviewed: ok,
		State:    review.StateNoReview,
		Reviews:  make([]ReviewView, len(m.Reviews)),
	}
	if ok {
		st.State = review.StateSubmitted
	}
	for i, r := range m.Reviews {
		st.Reviews[i] = ReviewView{
			Review:    r,
			Mine:      ok && r.ID == own.ID,
			CanEdit:   s.guard.CanEdit(r, reviewerID),
			CanDelete: s.guard.CanDelete(r, reviewerID),
		}
	}
	return st
}

// SubmitReview creates the reviewer's review on a material. A reviewer holds
// at most one review per material.
func (s *Service) SubmitReview(ctx context.Context, reviewer models.Reviewer, in models.ReviewInput) (models.Review, error) {
	reviewer.ID = models.NewID(reviewer.ID)
	if reviewer.ID.IsZero() {
		return models.Review{}, fmt.Errorf("%w: reviewer id is required", ErrInvalidReview)
	}
	in.MaterialID = models.NewID(in.MaterialID)
	in.Reviewer = reviewer
	if err := validateInput(in); err != nil {
		return models.Review{}, err
	}

	m, err := s.store.Material(ctx, in.MaterialID)
	if err != nil {
		return models.Review{}, err
	}

	state, err := review.Transition(s.guard.StateOf(m, reviewer.ID), review.ActionDraft, true)
	if err != nil {
		return models.Review{}, fmt.Errorf("material %s: %w", m.ID, ErrAlreadyReviewed)
	}
	if _, err := review.Transition(state, review.ActionSubmit, true); err != nil {
		return models.Review{}, err
	}

	r, err := s.store.CreateReview(ctx, in)
	if err != nil {
		return models.Review{}, fmt.Errorf("create review: %w", err)
	}
	s.log.Info("review submitted", "review_id", r.ID, "material_id", m.ID, "reviewer_id", reviewer.ID)
	return r, nil
}

// EditReview replaces the editable fields of a review owned by reviewerID
func (s *Service) EditReview(ctx context.Context, reviewerID, reviewID models.ID, in models.ReviewInput) (models.Review, error) {
	r, err := s.store.Review(ctx, models.NewID(reviewID))
	if err != nil {
		return models.Review{}, err
	}
	if _, err := review.Transition(review.StateSubmitted, review.ActionEdit, s.guard.CanEdit(r, reviewerID)); err != nil {
		return models.Review{}, fmt.Errorf("edit review %s: %w", r.ID, err)
	}

	in.MaterialID = r.MaterialID
	in.Reviewer = r.Reviewer
	if err := validateInput(in); err != nil {
		return models.Review{}, err
	}

	updated, err := s.store.UpdateReview(ctx, r.ID, in)
	if err != nil {
		return models.Review{}, fmt.Errorf("update review: %w", err)
	}
	s.log.Info("review edited", "review_id", r.ID, "reviewer_id", reviewerID)
	return updated, nil
}

// RemoveReview deletes a review owned by reviewerID
func (s *Service) RemoveReview(ctx context.Context, reviewerID, reviewID models.ID) error {
	r, err := s.store.Review(ctx, models.NewID(reviewID))
	if err != nil {
		return err
	}
	if _, err := review.Transition(review.StateSubmitted, review.ActionDelete, s.guard.CanDelete(r, reviewerID)); err != nil {
		return fmt.Errorf("delete review %s: %w", r.ID, err)
	}
	if err := s.store.DeleteReview(ctx, r.ID); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	s.log.Info("review deleted", "review_id", r.ID, "reviewer_id", reviewerID)
	return nil
}

func validateInput(in models.ReviewInput) error {
	in.Comments = strings.TrimSpace(in.Comments)
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, len(verrs))
		for i, fe := range verrs {
			fields[i] = fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag())
		}
		return fmt.Errorf("%w: %s", ErrInvalidReview, strings.Join(fields, ", "))
	}
	return fmt.Errorf("%w: %v", ErrInvalidReview, err)
}
