package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"tablemate-backend/application/commands"
	"tablemate-backend/application/commands/bus"
	"tablemate-backend/application/ports"
	"tablemate-backend/domain/core/valueobjects"
)

// JoinPlanHandler seats a user in an open plan. The repository write that
// fills the last seat also flips the plan to matched, which the change feed
// turns into arrival code issuance.
type JoinPlanHandler struct {
	plans    ports.PlanRepository
	eventBus ports.EventBus
	clock    ports.Clock
	logger   *zap.Logger
}

// NewJoinPlanHandler creates a join handler
func NewJoinPlanHandler(
	plans ports.PlanRepository,
	eventBus ports.EventBus,
	clock ports.Clock,
	logger *zap.Logger,
) *JoinPlanHandler {
	return &JoinPlanHandler{
		plans:    plans,
		eventBus: eventBus,
		clock:    clock,
		logger:   logger,
	}
}

// Handle implements bus.CommandHandler
func (h *JoinPlanHandler) Handle(ctx context.Context, cmd bus.Command) error {
	joinCmd, ok := cmd.(commands.JoinPlanCommand)
	if !ok {
		return fmt.Errorf("unexpected command type %T", cmd)
	}

	planID, err := valueobjects.ParsePlanID(joinCmd.PlanID)
	if err != nil {
		return err
	}

	plan, err := h.plans.AddMember(ctx, planID, joinCmd.UserID, h.clock.Now())
	if err != nil {
		return err
	}

	if h.eventBus != nil {
		if err := h.eventBus.PublishBatch(ctx, plan.GetUncommittedEvents()); err != nil {
			h.logger.Warn("Failed to publish join events",
				zap.String("planID", joinCmd.PlanID),
				zap.Error(err),
			)
		}
		plan.MarkEventsCommitted()
	}

	h.logger.Info("Member joined plan",
		zap.String("planID", joinCmd.PlanID),
		zap.String("userID", joinCmd.UserID),
		zap.String("status", plan.Status().String()),
		zap.Int("members", len(plan.MemberIDs())),
	)

	return nil
}
