// Package review decides which review belongs to the current reviewer and
// whether that reviewer may change it. Authorship is the only authorization
// axis: the author may edit and delete, nobody else may.
//
// The reviewer id is always passed in explicitly. The data source is the
// authority on review uniqueness; Guard only checks what it is given.
package review

import (
	"log/slog"

	"github.com/tgienger/agency/internal/logging"
	"github.com/tgienger/agency/internal/metrics"
	"github.com/tgienger/agency/internal/models"
)

// Guard evaluates review ownership. Logger and metrics only report
// duplicate reviews; decisions do not depend on them.
type Guard struct {
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewGuard returns a Guard. Both collaborators may be nil.
func NewGuard(log *slog.Logger, m *metrics.Metrics) *Guard {
	if log == nil {
		log = logging.Discard()
	}
	return &Guard{log: log, metrics: m}
}

// FindOwn returns the reviewer's review. If the list holds several, the
// first in list order wins and the duplicate is reported as a data anomaly.
func (g *Guard) FindOwn(reviews []models.Review, reviewerID models.ID) (models.Review, bool) {
	reviewerID = models.NewID(reviewerID)
	if reviewerID.IsZero() {
		return models.Review{}, false
	}

	var own models.Review
	found := false
	for _, r := range reviews {
		if r.Reviewer.ID != reviewerID {
			continue
		}
		if !found {
			own, found = r, true
			continue
		}
		g.log.Warn("duplicate review by reviewer",
			"reviewer_id", reviewerID,
			"material_id", r.MaterialID,
			"kept_review_id", own.ID,
			"duplicate_review_id", r.ID,
		)
		g.metrics.ReviewAnomaly()
	}
	return own, found
}

// CanEdit reports whether reviewerID authored the review
func (g *Guard) CanEdit(r models.Review, reviewerID models.ID) bool {
	return isAuthor(r, reviewerID)
}

// CanDelete follows the same rule as CanEdit
func (g *Guard) CanDelete(r models.Review, reviewerID models.ID) bool {
	return isAuthor(r, reviewerID)
}

// IsReviewed reports whether the reviewer already holds a review on the
// material. Recompute it whenever the material's review list changes.
func (g *Guard) IsReviewed(m models.Material, reviewerID models.ID) bool {
	_, ok := g.FindOwn(m.Reviews, reviewerID)
	return ok
}

// StateOf is the settled lifecycle state of the reviewer's review
func (g *Guard) StateOf(m models.Material, reviewerID models.ID) State {
	if g.IsReviewed(m, reviewerID) {
		return StateSubmitted
	}
	return StateNoReview
}

func isAuthor(r models.Review, reviewerID models.ID) bool {
	reviewerID = models.NewID(reviewerID)
	return !reviewerID.IsZero() && r.Reviewer.ID == reviewerID
}
