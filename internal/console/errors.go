package console

import (
	"errors"

	"github.com/tgienger/agency/internal/review"
)

var (
	ErrAlreadyReviewed  = errors.New("material already reviewed by this reviewer")
	ErrNotAuthor        = review.ErrNotAuthor
	ErrInvalidReview    = errors.New("invalid review")
	ErrReviewNotFound   = errors.New("review not found")
	ErrMaterialNotFound = errors.New("material not found")
)
