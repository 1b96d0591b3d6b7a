package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"tablemate-backend/application/ports"
	"tablemate-backend/application/queries"
	"tablemate-backend/domain/core/entities"
	"tablemate-backend/domain/core/valueobjects"
	"tablemate-backend/pkg/utils"
)

// GetPlanHandler handles single plan lookups
type GetPlanHandler struct {
	plans  ports.PlanRepository
	logger *zap.Logger
}

// NewGetPlanHandler creates a new plan query handler
func NewGetPlanHandler(plans ports.PlanRepository, logger *zap.Logger) *GetPlanHandler {
	return &GetPlanHandler{plans: plans, logger: logger}
}

// Handle executes the plan query
func (h *GetPlanHandler) Handle(ctx context.Context, query queries.GetPlanQuery) (*queries.GetPlanResult, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	planID, err := valueobjects.ParsePlanID(query.PlanID)
	if err != nil {
		return nil, err
	}

	plan, err := h.plans.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}

	return planToResult(plan), nil
}

func planToResult(plan *entities.DiningPlan) *queries.GetPlanResult {
	result := &queries.GetPlanResult{
		ID:             plan.ID().String(),
		CreatorID:      plan.CreatorID(),
		CreatorCompany: plan.CreatorCompany(),
		Status:         plan.Status().String(),
		CuisineTypes:   plan.CuisineTypes(),
		MemberIDs:      plan.MemberIDs(),
		MaxMembers:     plan.MaxMembers(),
		RestaurantName: plan.RestaurantName(),
		PlannedTime:    utils.FormatRFC3339(plan.PlannedTime()),
		ArrivalCodes:   plan.ArrivalCodes(),
		CreatedAt:      utils.FormatRFC3339(plan.CreatedAt()),
		UpdatedAt:      utils.FormatRFC3339(plan.UpdatedAt()),
	}
	if confirmedAt := plan.ConfirmedAt(); confirmedAt != nil {
		result.ConfirmedAt = utils.FormatRFC3339(*confirmedAt)
	}
	return result
}
