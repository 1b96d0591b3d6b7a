package entities

import (
	"fmt"
	"time"

	"tablemate-backend/domain/core/valueobjects"
	"tablemate-backend/domain/events"
	pkgerrors "tablemate-backend/pkg/errors"
)

// DiningPlan is the aggregate for a proposed group dining event.
// Invariants enforced here:
//   - len(memberIDs) <= maxMembers at all times
//   - arrivalCodes is empty or holds exactly one distinct code per member
//   - status only moves forward through the PlanStatus state machine
type DiningPlan struct {
	id             valueobjects.PlanID
	creatorID      string
	creatorCompany string
	status         valueobjects.PlanStatus
	cuisineTypes   []string
	memberIDs      []string
	maxMembers     int
	restaurantName string
	plannedTime    time.Time
	arrivalCodes   map[string]int
	confirmedAt    *time.Time
	expiredAt      *time.Time
	createdAt      time.Time
	updatedAt      time.Time

	events []events.DomainEvent
}

// NewDiningPlan opens a new plan with the creator holding the first seat
func NewDiningPlan(
	creatorID string,
	creatorCompany string,
	cuisineTypes []string,
	maxMembers int,
	restaurantName string,
	plannedTime time.Time,
	now time.Time,
) (*DiningPlan, error) {
	if creatorID == "" {
		return nil, pkgerrors.NewValidationError("creatorID cannot be empty")
	}
	if creatorCompany == "" {
		return nil, pkgerrors.NewValidationError("creatorCompany cannot be empty")
	}
	if maxMembers < 1 {
		return nil, pkgerrors.NewValidationError("maxMembers must be at least 1")
	}
	if restaurantName == "" {
		return nil, pkgerrors.NewValidationError("restaurantName cannot be empty")
	}
	if plannedTime.Before(now) {
		return nil, pkgerrors.NewValidationError("plannedTime must be in the future")
	}

	plan := &DiningPlan{
		id:             valueobjects.NewPlanID(),
		creatorID:      creatorID,
		creatorCompany: creatorCompany,
		status:         valueobjects.StatusOpen,
		cuisineTypes:   cuisineTypes,
		memberIDs:      []string{creatorID},
		maxMembers:     maxMembers,
		restaurantName: restaurantName,
		plannedTime:    plannedTime,
		arrivalCodes:   map[string]int{},
		createdAt:      now,
		updatedAt:      now,
		events:         []events.DomainEvent{},
	}

	plan.addEvent(events.NewPlanCreated(plan.id, creatorID, creatorCompany, restaurantName, maxMembers, now))
	return plan, nil
}

// ReconstructPlan restores a plan from repository data
func ReconstructPlan(
	id valueobjects.PlanID,
	creatorID string,
	creatorCompany string,
	status valueobjects.PlanStatus,
	cuisineTypes []string,
	memberIDs []string,
	maxMembers int,
	restaurantName string,
	plannedTime time.Time,
	arrivalCodes map[string]int,
	confirmedAt *time.Time,
	expiredAt *time.Time,
	createdAt time.Time,
	updatedAt time.Time,
) (*DiningPlan, error) {
	if len(memberIDs) > maxMembers {
		return nil, pkgerrors.NewValidationError(
			fmt.Sprintf("plan %s has %d members over cap %d", id.String(), len(memberIDs), maxMembers))
	}
	if arrivalCodes == nil {
		arrivalCodes = map[string]int{}
	}

	return &DiningPlan{
		id:             id,
		creatorID:      creatorID,
		creatorCompany: creatorCompany,
		status:         status,
		cuisineTypes:   cuisineTypes,
		memberIDs:      memberIDs,
		maxMembers:     maxMembers,
		restaurantName: restaurantName,
		plannedTime:    plannedTime,
		arrivalCodes:   arrivalCodes,
		confirmedAt:    confirmedAt,
		expiredAt:      expiredAt,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
		events:         []events.DomainEvent{},
	}, nil
}

// AddMember seats a user. Filling the last seat advances the plan to matched,
// which is the transition the arrival-code issuer watches for.
func (p *DiningPlan) AddMember(userID string, now time.Time) error {
	if p.status != valueobjects.StatusOpen {
		return pkgerrors.NewConflictError(fmt.Sprintf("plan is %s, not open", p.status))
	}
	if p.HasMember(userID) {
		return pkgerrors.NewConflictError("user is already a member")
	}
	if len(p.memberIDs) >= p.maxMembers {
		return pkgerrors.NewConflictError("plan is full")
	}

	p.memberIDs = append(p.memberIDs, userID)
	full := len(p.memberIDs) == p.maxMembers
	if full {
		p.status = valueobjects.StatusMatched
	}
	p.updatedAt = now

	p.addEvent(events.NewMemberJoined(p.id, userID, len(p.memberIDs), full, now))
	return nil
}

// ConfirmWithCodes assigns one arrival code per member positionally and
// advances the plan to confirmed. Codes are issued at most once.
func (p *DiningPlan) ConfirmWithCodes(codes []int, now time.Time) error {
	if len(p.arrivalCodes) > 0 {
		return pkgerrors.NewConflictError("arrival codes already issued")
	}
	if !p.status.CanTransitionTo(valueobjects.StatusConfirmed) {
		return pkgerrors.NewConflictError(fmt.Sprintf("cannot confirm plan in status %s", p.status))
	}
	if len(p.memberIDs) != p.maxMembers {
		return pkgerrors.NewConflictError("plan is not full")
	}
	if len(codes) != len(p.memberIDs) {
		return pkgerrors.NewValidationError(
			fmt.Sprintf("need %d codes, got %d", len(p.memberIDs), len(codes)))
	}

	seen := make(map[int]bool, len(codes))
	for _, code := range codes {
		if seen[code] {
			return pkgerrors.NewValidationError(fmt.Sprintf("duplicate arrival code %d", code))
		}
		seen[code] = true
	}

	assignments := make(map[string]int, len(codes))
	for i, memberID := range p.memberIDs {
		assignments[memberID] = codes[i]
	}

	p.arrivalCodes = assignments
	p.status = valueobjects.StatusConfirmed
	p.confirmedAt = &now
	p.updatedAt = now

	p.addEvent(events.NewPlanConfirmed(p.id, p.restaurantName, len(p.memberIDs), now))
	return nil
}

// Expire retires a stale open or matched plan. Confirmed plans are untouchable.
func (p *DiningPlan) Expire(now time.Time) error {
	if !p.status.IsExpirable() {
		return pkgerrors.NewConflictError(fmt.Sprintf("cannot expire plan in status %s", p.status))
	}

	p.status = valueobjects.StatusExpired
	p.expiredAt = &now
	p.updatedAt = now

	p.addEvent(events.NewPlanExpired(p.id, now))
	return nil
}

// HasMember reports whether the user already holds a seat
func (p *DiningPlan) HasMember(userID string) bool {
	for _, id := range p.memberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// IsFull reports whether every seat is taken
func (p *DiningPlan) IsFull() bool {
	return len(p.memberIDs) >= p.maxMembers
}

// NeedsMatching reports whether the matcher should recommend candidates
func (p *DiningPlan) NeedsMatching() bool {
	return p.status == valueobjects.StatusOpen && len(p.memberIDs) < p.maxMembers
}

// ArrivalCodeFor returns the code assigned to a member, if issued
func (p *DiningPlan) ArrivalCodeFor(userID string) (int, bool) {
	code, ok := p.arrivalCodes[userID]
	return code, ok
}

func (p *DiningPlan) addEvent(event events.DomainEvent) {
	p.events = append(p.events, event)
}

// GetUncommittedEvents returns events raised since the last commit
func (p *DiningPlan) GetUncommittedEvents() []events.DomainEvent {
	return p.events
}

// MarkEventsCommitted clears the pending event list
func (p *DiningPlan) MarkEventsCommitted() {
	p.events = []events.DomainEvent{}
}

func (p *DiningPlan) ID() valueobjects.PlanID          { return p.id }
func (p *DiningPlan) CreatorID() string                { return p.creatorID }
func (p *DiningPlan) CreatorCompany() string           { return p.creatorCompany }
func (p *DiningPlan) Status() valueobjects.PlanStatus  { return p.status }
func (p *DiningPlan) CuisineTypes() []string           { return p.cuisineTypes }
func (p *DiningPlan) MemberIDs() []string              { return p.memberIDs }
func (p *DiningPlan) MaxMembers() int                  { return p.maxMembers }
func (p *DiningPlan) RestaurantName() string           { return p.restaurantName }
func (p *DiningPlan) PlannedTime() time.Time           { return p.plannedTime }
func (p *DiningPlan) ArrivalCodes() map[string]int     { return p.arrivalCodes }
func (p *DiningPlan) ConfirmedAt() *time.Time          { return p.confirmedAt }
func (p *DiningPlan) ExpiredAt() *time.Time            { return p.expiredAt }
func (p *DiningPlan) CreatedAt() time.Time             { return p.createdAt }
func (p *DiningPlan) UpdatedAt() time.Time             { return p.updatedAt }
