package commands

import (
	"time"

	"tablemate-backend/domain/core/entities"
	"tablemate-backend/domain/core/valueobjects"
)

// PlanSnapshot is the stream image of a dining plan record as delivered by
// the store's change feed. Trigger commands carry before/after snapshots so
// handlers can evaluate transition guards without a read-back race.
type PlanSnapshot struct {
	PlanID         string         `json:"plan_id"`
	CreatorID      string         `json:"creator_id"`
	CreatorCompany string         `json:"creator_company"`
	Status         string         `json:"status"`
	CuisineTypes   []string       `json:"cuisine_types"`
	MemberIDs      []string       `json:"member_ids"`
	MaxMembers     int            `json:"max_members"`
	RestaurantName string         `json:"restaurant_name"`
	PlannedTime    time.Time      `json:"planned_time"`
	ArrivalCodes   map[string]int `json:"arrival_codes,omitempty"`
}

// ToEntity rebuilds a domain plan from the snapshot
func (s PlanSnapshot) ToEntity() (*entities.DiningPlan, error) {
	id, err := valueobjects.ParsePlanID(s.PlanID)
	if err != nil {
		return nil, err
	}
	status, err := valueobjects.ParsePlanStatus(s.Status)
	if err != nil {
		return nil, err
	}

	return entities.ReconstructPlan(
		id,
		s.CreatorID,
		s.CreatorCompany,
		status,
		s.CuisineTypes,
		s.MemberIDs,
		s.MaxMembers,
		s.RestaurantName,
		s.PlannedTime,
		s.ArrivalCodes,
		nil,
		nil,
		time.Time{},
		time.Time{},
	)
}
