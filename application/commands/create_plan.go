package commands

import (
	"time"

	"tablemate-backend/pkg/utils"
)

// CreatePlanCommand opens a new dining plan with the creator seated first
type CreatePlanCommand struct {
	CreatorID      string    `validate:"required"`
	CreatorCompany string    `validate:"required"`
	CuisineTypes   []string  `validate:"required,min=1,dive,max=50"`
	MaxMembers     int       `validate:"required,min=1,max=20"`
	RestaurantName string    `validate:"required,max=200"`
	PlannedTime    time.Time `validate:"required"`
}

// Validate implements bus.Command
func (c CreatePlanCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// CreatePlanResult reports the identifier of the new plan
type CreatePlanResult struct {
	PlanID string `json:"plan_id"`
}
