package commands

// ExpirePlansCommand runs one expiry pass: open and matched plans whose
// planned time is older than the expiry threshold are batch-transitioned
// to expired. Confirmed plans are never touched.
type ExpirePlansCommand struct{}

// Validate implements bus.Command
func (c ExpirePlansCommand) Validate() error {
	return nil
}
