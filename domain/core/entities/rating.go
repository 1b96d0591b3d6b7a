package entities

import (
	"time"

	"tablemate-backend/domain/core/valueobjects"
	pkgerrors "tablemate-backend/pkg/errors"
)

// Rating is an immutable peer rating of one user by another.
// It is written once and consumed exactly once by the trust aggregator.
type Rating struct {
	id          valueobjects.RatingID
	raterID     string
	ratedUserID string
	value       float64
	createdAt   time.Time
}

// NewRating creates a rating after a shared plan
func NewRating(raterID, ratedUserID string, value float64, now time.Time) (*Rating, error) {
	if raterID == "" {
		return nil, pkgerrors.NewValidationError("raterID cannot be empty")
	}
	if ratedUserID == "" {
		return nil, pkgerrors.NewValidationError("ratedUserID cannot be empty")
	}
	if raterID == ratedUserID {
		return nil, pkgerrors.NewValidationError("users cannot rate themselves")
	}
	if value < 1 || value > 5 {
		return nil, pkgerrors.NewValidationError("rating value must be between 1 and 5")
	}

	return &Rating{
		id:          valueobjects.NewRatingID(),
		raterID:     raterID,
		ratedUserID: ratedUserID,
		value:       value,
		createdAt:   now,
	}, nil
}

// ReconstructRating restores a rating from repository data
func ReconstructRating(id valueobjects.RatingID, raterID, ratedUserID string, value float64, createdAt time.Time) *Rating {
	return &Rating{
		id:          id,
		raterID:     raterID,
		ratedUserID: ratedUserID,
		value:       value,
		createdAt:   createdAt,
	}
}

func (r *Rating) ID() valueobjects.RatingID { return r.id }
func (r *Rating) RaterID() string           { return r.raterID }
func (r *Rating) RatedUserID() string       { return r.ratedUserID }
func (r *Rating) Value() float64            { return r.value }
func (r *Rating) CreatedAt() time.Time      { return r.createdAt }
