package commands

import pkgerrors "tablemate-backend/pkg/errors"

// IssueArrivalCodesCommand carries the before and after images of a plan
// update. The handler fires only on the exact transition where the plan
// just became full and was marked matched in the same write.
type IssueArrivalCodesCommand struct {
	Before PlanSnapshot
	After  PlanSnapshot
}

// Validate implements bus.Command
func (c IssueArrivalCodesCommand) Validate() error {
	if c.After.PlanID == "" {
		return pkgerrors.NewValidationError("plan ID is required")
	}
	if c.Before.PlanID != "" && c.Before.PlanID != c.After.PlanID {
		return pkgerrors.NewValidationError("before and after images refer to different plans")
	}
	return nil
}
