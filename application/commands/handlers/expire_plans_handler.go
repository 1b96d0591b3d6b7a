package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"tablemate-backend/application/commands"
	"tablemate-backend/application/commands/bus"
	"tablemate-backend/application/ports"
	domaincfg "tablemate-backend/domain/config"
	domainevents "tablemate-backend/domain/events"
	"tablemate-backend/pkg/observability"
)

// ExpirePlansHandler runs the periodic expiry pass. Open and matched plans
// whose planned time is older than the threshold move to expired in an
// atomic batch; confirmed plans are never candidates.
type ExpirePlansHandler struct {
	plans    ports.PlanRepository
	eventBus ports.EventBus
	clock    ports.Clock
	cfg      *domaincfg.DomainConfig
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewExpirePlansHandler creates an expiry sweeper
func NewExpirePlansHandler(
	plans ports.PlanRepository,
	eventBus ports.EventBus,
	clock ports.Clock,
	cfg *domaincfg.DomainConfig,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *ExpirePlansHandler {
	return &ExpirePlansHandler{
		plans:    plans,
		eventBus: eventBus,
		clock:    clock,
		cfg:      cfg,
		metrics:  metrics,
		logger:   logger,
	}
}

// Handle implements bus.CommandHandler
func (h *ExpirePlansHandler) Handle(ctx context.Context, cmd bus.Command) error {
	if _, ok := cmd.(commands.ExpirePlansCommand); !ok {
		return fmt.Errorf("unexpected command type %T", cmd)
	}

	now := h.clock.Now()
	cutoff := now.Add(-h.cfg.ExpiryThreshold)

	stale, err := h.plans.FindExpirable(ctx, cutoff)
	if err != nil {
		h.logger.Error("Expiry sweep aborted, plan query failed", zap.Error(err))
		return nil
	}
	if len(stale) == 0 {
		h.logger.Debug("Expiry sweep found nothing to retire")
		return nil
	}

	if err := h.plans.ExpireBatch(ctx, stale, now); err != nil {
		h.logger.Error("Expiry batch failed, no plans were transitioned",
			zap.Int("candidates", len(stale)),
			zap.Error(err),
		)
		return nil
	}

	if h.eventBus != nil {
		batch := make([]domainevents.DomainEvent, 0, len(stale))
		for _, plan := range stale {
			batch = append(batch, domainevents.NewPlanExpired(plan.ID(), now))
		}
		if err := h.eventBus.PublishBatch(ctx, batch); err != nil {
			h.logger.Warn("Failed to publish expiry events", zap.Error(err))
		}
	}

	h.metrics.Count(ctx, observability.MetricPlansExpired, float64(len(stale)))
	h.logger.Info("Expiry sweep complete",
		zap.Int("expired", len(stale)),
		zap.Time("cutoff", cutoff),
	)

	return nil
}
