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
	domainservices "tablemate-backend/domain/services"
	"tablemate-backend/pkg/observability"
)

const activeUsersCacheKey = "users:active"
const defaultActiveUsersCacheTTL = 30 // seconds

// MatchPlanHandler reacts to plan writes by recommending the plan to the
// best-matching candidates. The whole candidate pool is rescanned on every
// write, so a user passed over once can surface again when a seat reopens.
type MatchPlanHandler struct {
	users         ports.UserRepository
	scorer        *domainservices.CompatibilityScorer
	notifications *appservices.NotificationService
	cache         ports.Cache
	cacheTTL      int
	clock         ports.Clock
	cfg           *domaincfg.DomainConfig
	metrics       *observability.Metrics
	logger        *zap.Logger
}

// NewMatchPlanHandler creates a match plan handler. cacheTTLSeconds bounds
// how long the active-user pool is served from cache; a non-positive value
// falls back to the default.
func NewMatchPlanHandler(
	users ports.UserRepository,
	scorer *domainservices.CompatibilityScorer,
	notifications *appservices.NotificationService,
	cache ports.Cache,
	cacheTTLSeconds int,
	clock ports.Clock,
	cfg *domaincfg.DomainConfig,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *MatchPlanHandler {
	if cacheTTLSeconds <= 0 {
		cacheTTLSeconds = defaultActiveUsersCacheTTL
	}
	return &MatchPlanHandler{
		users:         users,
		scorer:        scorer,
		notifications: notifications,
		cache:         cache,
		cacheTTL:      cacheTTLSeconds,
		clock:         clock,
		cfg:           cfg,
		metrics:       metrics,
		logger:        logger,
	}
}

// Handle implements bus.CommandHandler
func (h *MatchPlanHandler) Handle(ctx context.Context, cmd bus.Command) error {
	matchCmd, ok := cmd.(commands.MatchPlanCommand)
	if !ok {
		return fmt.Errorf("unexpected command type %T", cmd)
	}

	plan, err := matchCmd.Plan.ToEntity()
	if err != nil {
		h.logger.Warn("Skipping matching pass for malformed plan snapshot",
			zap.String("planID", matchCmd.Plan.PlanID),
			zap.Error(err),
		)
		return nil
	}

	// Only open plans with free seats get a matching pass.
	if !plan.NeedsMatching() {
		return nil
	}

	pool, err := h.activeUsers(ctx)
	if err != nil {
		h.logger.Error("Matching pass aborted, user scan failed",
			zap.String("planID", plan.ID().String()),
			zap.Error(err),
		)
		return nil
	}

	ranked := h.scorer.RankCandidates(pool, plan, h.clock.Now())
	if len(ranked) > h.cfg.MaxRecommendations {
		ranked = ranked[:h.cfg.MaxRecommendations]
	}

	recipients := make([]string, len(ranked))
	for i, result := range ranked {
		recipients[i] = result.User.ID().String()
	}

	delivered := h.notifications.FanOut(ctx, recipients, func(ctx context.Context, userID string) error {
		return h.notifications.SendPlanRecommendation(ctx, userID, plan)
	})

	h.metrics.Count(ctx, observability.MetricRecommendationsSent, float64(delivered))
	h.logger.Info("Matching pass complete",
		zap.String("planID", plan.ID().String()),
		zap.Int("poolSize", len(pool)),
		zap.Int("recommended", len(recipients)),
		zap.Int("delivered", delivered),
	)

	return nil
}

// activeUsers returns the matching pool, served from a short-lived cache so
// bursts of plan writes do not rescan the user table on every trigger.
func (h *MatchPlanHandler) activeUsers(ctx context.Context) ([]*entities.User, error) {
	if h.cache != nil {
		if cached, ok := h.cache.Get(ctx, activeUsersCacheKey); ok {
			if pool, ok := cached.([]*entities.User); ok {
				return pool, nil
			}
		}
	}

	pool, err := h.users.FindActive(ctx)
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		_ = h.cache.Set(ctx, activeUsersCacheKey, pool, h.cacheTTL)
	}

	return pool, nil
}
