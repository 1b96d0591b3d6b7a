package commands

import pkgerrors "tablemate-backend/pkg/errors"

// MatchPlanCommand asks the matcher to rank candidates for a plan write.
// Fired for every create or update of a plan record; the handler guard
// decides whether a matching pass actually runs.
type MatchPlanCommand struct {
	Plan PlanSnapshot
}

// Validate implements bus.Command
func (c MatchPlanCommand) Validate() error {
	if c.Plan.PlanID == "" {
		return pkgerrors.NewValidationError("plan ID is required")
	}
	return nil
}
