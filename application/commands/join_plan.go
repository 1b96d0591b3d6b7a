package commands

import "tablemate-backend/pkg/utils"

// JoinPlanCommand seats a user in an open plan. The write that fills the
// last seat also flips the plan to matched, producing the transition the
// arrival-code issuer reacts to.
type JoinPlanCommand struct {
	PlanID string `validate:"required"`
	UserID string `validate:"required"`
}

// Validate implements bus.Command
func (c JoinPlanCommand) Validate() error {
	return utils.ValidateStruct(c)
}
