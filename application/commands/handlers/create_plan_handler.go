package handlers

import (
	"context"

	"go.uber.org/zap"

	"tablemate-backend/application/commands"
	"tablemate-backend/application/ports"
	"tablemate-backend/domain/core/entities"
)

// CreatePlanHandler opens a new dining plan. It is invoked directly by the
// HTTP layer rather than through the command bus because callers need the
// generated plan back.
type CreatePlanHandler struct {
	plans    ports.PlanRepository
	eventBus ports.EventBus
	clock    ports.Clock
	logger   *zap.Logger
}

// NewCreatePlanHandler creates a plan creation handler
func NewCreatePlanHandler(
	plans ports.PlanRepository,
	eventBus ports.EventBus,
	clock ports.Clock,
	logger *zap.Logger,
) *CreatePlanHandler {
	return &CreatePlanHandler{
		plans:    plans,
		eventBus: eventBus,
		clock:    clock,
		logger:   logger,
	}
}

// Handle validates and persists a new plan, returning the created entity
func (h *CreatePlanHandler) Handle(ctx context.Context, cmd commands.CreatePlanCommand) (*entities.DiningPlan, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	now := h.clock.Now()
	plan, err := entities.NewDiningPlan(
		cmd.CreatorID,
		cmd.CreatorCompany,
		cmd.CuisineTypes,
		cmd.MaxMembers,
		cmd.RestaurantName,
		cmd.PlannedTime,
		now,
	)
	if err != nil {
		return nil, err
	}

	if err := h.plans.Save(ctx, plan); err != nil {
		return nil, err
	}

	if h.eventBus != nil {
		if err := h.eventBus.PublishBatch(ctx, plan.GetUncommittedEvents()); err != nil {
			h.logger.Warn("Failed to publish plan creation events",
				zap.String("planID", plan.ID().String()),
				zap.Error(err),
			)
		}
		plan.MarkEventsCommitted()
	}

	h.logger.Info("Plan created",
		zap.String("planID", plan.ID().String()),
		zap.String("creatorID", cmd.CreatorID),
		zap.Int("maxMembers", cmd.MaxMembers),
	)

	return plan, nil
}
