package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"tablemate-backend/application/commands"
	"tablemate-backend/application/commands/bus"
	"tablemate-backend/application/ports"
	appservices "tablemate-backend/application/services"
	domaincfg "tablemate-backend/domain/config"
	"tablemate-backend/domain/core/entities"
	"tablemate-backend/pkg/observability"
)

// SweepRemindersHandler runs the periodic reminder pass over confirmed plans
// starting within the reminder window. The sweep is a stateless windowed
// poll: a plan that stays inside the rolling window across two consecutive
// sweeps gets reminded twice, which the best-effort channel tolerates.
type SweepRemindersHandler struct {
	plans         ports.PlanRepository
	notifications *appservices.NotificationService
	clock         ports.Clock
	cfg           *domaincfg.DomainConfig
	metrics       *observability.Metrics
	logger        *zap.Logger
}

// NewSweepRemindersHandler creates a reminder sweeper
func NewSweepRemindersHandler(
	plans ports.PlanRepository,
	notifications *appservices.NotificationService,
	clock ports.Clock,
	cfg *domaincfg.DomainConfig,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *SweepRemindersHandler {
	return &SweepRemindersHandler{
		plans:         plans,
		notifications: notifications,
		clock:         clock,
		cfg:           cfg,
		metrics:       metrics,
		logger:        logger,
	}
}

// Handle implements bus.CommandHandler
func (h *SweepRemindersHandler) Handle(ctx context.Context, cmd bus.Command) error {
	if _, ok := cmd.(commands.SweepRemindersCommand); !ok {
		return fmt.Errorf("unexpected command type %T", cmd)
	}

	now := h.clock.Now()
	upcoming, err := h.plans.FindConfirmedStartingBetween(ctx, now, now.Add(h.cfg.ReminderWindow))
	if err != nil {
		h.logger.Error("Reminder sweep aborted, plan query failed", zap.Error(err))
		return nil
	}

	// One dispatch per member per plan, all launched together.
	type reminder struct {
		userID string
		plan   *entities.DiningPlan
	}
	var reminders []reminder
	for _, plan := range upcoming {
		for _, memberID := range plan.MemberIDs() {
			reminders = append(reminders, reminder{userID: memberID, plan: plan})
		}
	}

	delivered := h.notifications.FanOutN(ctx, len(reminders), func(ctx context.Context, i int) error {
		return h.notifications.SendArrivalReminder(ctx, reminders[i].userID, reminders[i].plan)
	})

	h.metrics.Count(ctx, observability.MetricRemindersSent, float64(delivered))
	h.logger.Info("Reminder sweep complete",
		zap.Int("plans", len(upcoming)),
		zap.Int("reminders", len(reminders)),
		zap.Int("delivered", delivered),
	)

	return nil
}
