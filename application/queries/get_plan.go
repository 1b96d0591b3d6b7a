package queries

import "errors"

// GetPlanQuery represents a query to get a single dining plan
type GetPlanQuery struct {
	PlanID string
}

// Validate validates the GetPlanQuery
func (q GetPlanQuery) Validate() error {
	if q.PlanID == "" {
		return errors.New("plan ID is required")
	}
	return nil
}

// GetPlanResult represents the result of getting a dining plan
type GetPlanResult struct {
	ID             string         `json:"id"`
	CreatorID      string         `json:"creatorId"`
	CreatorCompany string         `json:"creatorCompany"`
	Status         string         `json:"status"`
	CuisineTypes   []string       `json:"cuisineTypes"`
	MemberIDs      []string       `json:"memberIds"`
	MaxMembers     int            `json:"maxMembers"`
	RestaurantName string         `json:"restaurantName"`
	PlannedTime    string         `json:"plannedTime"`
	ArrivalCodes   map[string]int `json:"arrivalCodes,omitempty"`
	ConfirmedAt    string         `json:"confirmedAt,omitempty"`
	CreatedAt      string         `json:"createdAt"`
	UpdatedAt      string         `json:"updatedAt"`
}
