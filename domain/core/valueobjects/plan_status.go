package valueobjects

import "fmt"

// PlanStatus represents the lifecycle state of a dining plan
type PlanStatus string

const (
	StatusOpen      PlanStatus = "open"
	StatusMatched   PlanStatus = "matched"
	StatusConfirmed PlanStatus = "confirmed"
	StatusExpired   PlanStatus = "expired"
)

// transitions defines the forward-only state machine:
// open -> matched -> confirmed, with open/matched -> expired.
// Confirmed and expired are terminal.
var transitions = map[PlanStatus][]PlanStatus{
	StatusOpen:      {StatusMatched, StatusConfirmed, StatusExpired},
	StatusMatched:   {StatusConfirmed, StatusExpired},
	StatusConfirmed: {},
	StatusExpired:   {},
}

// ParsePlanStatus validates and returns a plan status
func ParsePlanStatus(s string) (PlanStatus, error) {
	status := PlanStatus(s)
	if _, ok := transitions[status]; !ok {
		return "", fmt.Errorf("unknown plan status: %q", s)
	}
	return status, nil
}

// CanTransitionTo reports whether the status may advance to target
func (s PlanStatus) CanTransitionTo(target PlanStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible
func (s PlanStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// IsExpirable reports whether the expiry sweep may target this status
func (s PlanStatus) IsExpirable() bool {
	return s == StatusOpen || s == StatusMatched
}

func (s PlanStatus) String() string { return string(s) }
