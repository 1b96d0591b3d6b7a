package commands

// SweepRemindersCommand runs one reminder pass: every member of every
// confirmed plan starting within the reminder window gets a push.
// Scheduled by the host platform; no payload is needed, the handler
// reads its clock for "now".
type SweepRemindersCommand struct{}

// Validate implements bus.Command
func (c SweepRemindersCommand) Validate() error {
	return nil
}
