package commands

// ApplyRatingCommand folds one newly created rating into the rated user's
// trust score. A snapshot with a missing rated user or zero value is a
// handler-level no-op rather than a validation failure, so malformed store
// records never bounce back to the trigger platform as errors.
type ApplyRatingCommand struct {
	RatingID    string
	RatedUserID string
	Value       float64
}

// Validate implements bus.Command
func (c ApplyRatingCommand) Validate() error {
	return nil
}
