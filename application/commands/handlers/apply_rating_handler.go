package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"tablemate-backend/application/commands"
	"tablemate-backend/application/commands/bus"
	"tablemate-backend/application/ports"
	"tablemate-backend/domain/core/valueobjects"
	domainevents "tablemate-backend/domain/events"
	"tablemate-backend/pkg/errors"
	"tablemate-backend/pkg/observability"
)

// ApplyRatingHandler folds one newly created rating into the rated user's
// running trust mean. The read-modify-write happens behind the repository's
// conditional update, so concurrent ratings for the same user serialize.
type ApplyRatingHandler struct {
	users    ports.UserRepository
	eventBus ports.EventBus
	clock    ports.Clock
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewApplyRatingHandler creates a trust score aggregator
func NewApplyRatingHandler(
	users ports.UserRepository,
	eventBus ports.EventBus,
	clock ports.Clock,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *ApplyRatingHandler {
	return &ApplyRatingHandler{
		users:    users,
		eventBus: eventBus,
		clock:    clock,
		metrics:  metrics,
		logger:   logger,
	}
}

// Handle implements bus.CommandHandler
func (h *ApplyRatingHandler) Handle(ctx context.Context, cmd bus.Command) error {
	ratingCmd, ok := cmd.(commands.ApplyRatingCommand)
	if !ok {
		return fmt.Errorf("unexpected command type %T", cmd)
	}

	// Malformed rating records are skipped, never surfaced as failures.
	if ratingCmd.RatedUserID == "" || ratingCmd.Value == 0 {
		h.logger.Warn("Skipping rating with missing fields",
			zap.String("ratingID", ratingCmd.RatingID),
		)
		return nil
	}

	userID, err := valueobjects.ParseUserID(ratingCmd.RatedUserID)
	if err != nil {
		h.logger.Warn("Skipping rating for invalid user ID",
			zap.String("ratingID", ratingCmd.RatingID),
			zap.Error(err),
		)
		return nil
	}

	now := h.clock.Now()
	user, err := h.users.ApplyRating(ctx, userID, ratingCmd.Value, now)
	if err != nil {
		if errors.IsNotFound(err) {
			h.logger.Warn("Skipping rating for unknown user",
				zap.String("ratingID", ratingCmd.RatingID),
				zap.String("ratedUserID", ratingCmd.RatedUserID),
			)
			return nil
		}
		h.logger.Error("Trust score update failed",
			zap.String("ratingID", ratingCmd.RatingID),
			zap.String("ratedUserID", ratingCmd.RatedUserID),
			zap.Error(err),
		)
		return nil
	}

	if h.eventBus != nil {
		event := domainevents.NewTrustScoreUpdated(user.ID(), user.TrustScore(), user.RatingCount(), now)
		if err := h.eventBus.Publish(ctx, event); err != nil {
			h.logger.Warn("Failed to publish trust update event",
				zap.String("userID", user.ID().String()),
				zap.Error(err),
			)
		}
	}

	h.metrics.Count(ctx, observability.MetricTrustUpdates, 1)
	h.logger.Info("Trust score updated",
		zap.String("userID", user.ID().String()),
		zap.Float64("trustScore", user.TrustScore()),
		zap.Int("ratingCount", user.RatingCount()),
	)

	return nil
}
