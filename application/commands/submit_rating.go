package commands

import "tablemate-backend/pkg/utils"

// SubmitRatingCommand records one immutable peer rating. Persisting the
// rating is all this command does; the trust score update happens when the
// store's change feed delivers the new record to the aggregator.
type SubmitRatingCommand struct {
	RaterID     string  `validate:"required"`
	RatedUserID string  `validate:"required"`
	Value       float64 `validate:"required,min=1,max=5"`
}

// Validate implements bus.Command
func (c SubmitRatingCommand) Validate() error {
	return utils.ValidateStruct(c)
}
