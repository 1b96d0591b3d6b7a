package handlers

import (
	"context"

	"go.uber.org/zap"

	"tablemate-backend/application/ports"
	"tablemate-backend/application/queries"
	"tablemate-backend/pkg/utils"
)

// ListOpenPlansHandler handles open plan listings
type ListOpenPlansHandler struct {
	plans  ports.PlanRepository
	logger *zap.Logger
}

// NewListOpenPlansHandler creates a new open plan listing handler
func NewListOpenPlansHandler(plans ports.PlanRepository, logger *zap.Logger) *ListOpenPlansHandler {
	return &ListOpenPlansHandler{plans: plans, logger: logger}
}

// Handle executes the listing query
func (h *ListOpenPlansHandler) Handle(ctx context.Context, query queries.ListOpenPlansQuery) (*queries.ListOpenPlansResult, error) {
	open, err := h.plans.FindOpen(ctx)
	if err != nil {
		h.logger.Error("Failed to list open plans", zap.Error(err))
		return nil, err
	}

	summaries := make([]queries.OpenPlanSummary, 0, len(open))
	for _, plan := range open {
		summaries = append(summaries, queries.OpenPlanSummary{
			ID:             plan.ID().String(),
			CreatorCompany: plan.CreatorCompany(),
			CuisineTypes:   plan.CuisineTypes(),
			Members:        len(plan.MemberIDs()),
			MaxMembers:     plan.MaxMembers(),
			RestaurantName: plan.RestaurantName(),
			PlannedTime:    utils.FormatRFC3339(plan.PlannedTime()),
		})
	}

	return &queries.ListOpenPlansResult{
		Plans: summaries,
		Total: len(summaries),
	}, nil
}
