package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"tablemate-backend/application/commands"
	"tablemate-backend/application/commands/bus"
	"tablemate-backend/application/ports"
	appservices "tablemate-backend/application/services"
	domainservices "tablemate-backend/domain/services"
	"tablemate-backend/pkg/errors"
	"tablemate-backend/pkg/observability"
)

// IssueArrivalCodesHandler reacts to the write that fills a plan's last seat
// and marks it matched. It allocates one distinct code per member, persists
// the assignment together with the confirmed status in a single conditional
// write, and only then notifies the members. The conditional write makes
// issuance idempotent under trigger redelivery.
type IssueArrivalCodesHandler struct {
	plans         ports.PlanRepository
	allocator     *domainservices.CodeAllocator
	notifications *appservices.NotificationService
	eventBus      ports.EventBus
	clock         ports.Clock
	metrics       *observability.Metrics
	logger        *zap.Logger
}

// NewIssueArrivalCodesHandler creates an arrival code issuer
func NewIssueArrivalCodesHandler(
	plans ports.PlanRepository,
	allocator *domainservices.CodeAllocator,
	notifications *appservices.NotificationService,
	eventBus ports.EventBus,
	clock ports.Clock,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *IssueArrivalCodesHandler {
	return &IssueArrivalCodesHandler{
		plans:         plans,
		allocator:     allocator,
		notifications: notifications,
		eventBus:      eventBus,
		clock:         clock,
		metrics:       metrics,
		logger:        logger,
	}
}

// Handle implements bus.CommandHandler
func (h *IssueArrivalCodesHandler) Handle(ctx context.Context, cmd bus.Command) error {
	issueCmd, ok := cmd.(commands.IssueArrivalCodesCommand)
	if !ok {
		return fmt.Errorf("unexpected command type %T", cmd)
	}

	before, after := issueCmd.Before, issueCmd.After

	// Fire only on the exact just-became-full transition: the write must both
	// take the last seat and carry the matched status.
	justFilled := len(before.MemberIDs) < after.MaxMembers &&
		len(after.MemberIDs) == after.MaxMembers &&
		after.Status == "matched"
	if !justFilled {
		return nil
	}

	plan, err := after.ToEntity()
	if err != nil {
		h.logger.Warn("Skipping code issuance for malformed plan snapshot",
			zap.String("planID", after.PlanID),
			zap.Error(err),
		)
		return nil
	}

	codes, err := h.allocator.Allocate(len(plan.MemberIDs()))
	if err != nil {
		h.logger.Error("Code allocation failed",
			zap.String("planID", plan.ID().String()),
			zap.Int("members", len(plan.MemberIDs())),
			zap.Error(err),
		)
		return nil
	}

	now := h.clock.Now()
	if err := plan.ConfirmWithCodes(codes, now); err != nil {
		h.logger.Warn("Plan refused confirmation",
			zap.String("planID", plan.ID().String()),
			zap.Error(err),
		)
		return nil
	}

	if err := h.plans.ConfirmWithCodes(ctx, plan); err != nil {
		if errors.IsConflict(err) {
			// A concurrent or redelivered trigger won the conditional write.
			h.logger.Info("Arrival codes already issued, skipping",
				zap.String("planID", plan.ID().String()),
			)
			return nil
		}
		h.logger.Error("Failed to persist arrival codes",
			zap.String("planID", plan.ID().String()),
			zap.Error(err),
		)
		return nil
	}

	if h.eventBus != nil {
		if err := h.eventBus.PublishBatch(ctx, plan.GetUncommittedEvents()); err != nil {
			h.logger.Warn("Failed to publish confirmation events",
				zap.String("planID", plan.ID().String()),
				zap.Error(err),
			)
		}
		plan.MarkEventsCommitted()
	}

	delivered := h.notifications.FanOut(ctx, plan.MemberIDs(), func(ctx context.Context, userID string) error {
		code, ok := plan.ArrivalCodeFor(userID)
		if !ok {
			return fmt.Errorf("no arrival code assigned to member %s", userID)
		}
		return h.notifications.SendArrivalCode(ctx, userID, code, plan)
	})

	h.metrics.Count(ctx, observability.MetricArrivalCodesIssued, float64(len(codes)))
	h.logger.Info("Arrival codes issued",
		zap.String("planID", plan.ID().String()),
		zap.Int("members", len(plan.MemberIDs())),
		zap.Int("delivered", delivered),
	)

	return nil
}
