package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"tablemate-backend/application/commands"
	"tablemate-backend/application/commands/bus"
	"tablemate-backend/application/ports"
	"tablemate-backend/domain/core/entities"
)

// SubmitRatingHandler persists one immutable peer rating. Aggregating the
// rating into the rated user's trust score is deliberately not done here;
// the change feed delivers the new record to the trust aggregator.
type SubmitRatingHandler struct {
	ratings ports.RatingRepository
	clock   ports.Clock
	logger  *zap.Logger
}

// NewSubmitRatingHandler creates a rating submission handler
func NewSubmitRatingHandler(
	ratings ports.RatingRepository,
	clock ports.Clock,
	logger *zap.Logger,
) *SubmitRatingHandler {
	return &SubmitRatingHandler{
		ratings: ratings,
		clock:   clock,
		logger:  logger,
	}
}

// Handle implements bus.CommandHandler
func (h *SubmitRatingHandler) Handle(ctx context.Context, cmd bus.Command) error {
	ratingCmd, ok := cmd.(commands.SubmitRatingCommand)
	if !ok {
		return fmt.Errorf("unexpected command type %T", cmd)
	}

	rating, err := entities.NewRating(
		ratingCmd.RaterID,
		ratingCmd.RatedUserID,
		ratingCmd.Value,
		h.clock.Now(),
	)
	if err != nil {
		return err
	}

	if err := h.ratings.Save(ctx, rating); err != nil {
		return err
	}

	h.logger.Info("Rating submitted",
		zap.String("ratingID", rating.ID().String()),
		zap.String("raterID", ratingCmd.RaterID),
		zap.String("ratedUserID", ratingCmd.RatedUserID),
		zap.Float64("value", ratingCmd.Value),
	)

	return nil
}
