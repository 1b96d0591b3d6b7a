package queries

// ListOpenPlansQuery represents a query for every plan still accepting members
type ListOpenPlansQuery struct{}

// Validate validates the ListOpenPlansQuery
func (q ListOpenPlansQuery) Validate() error {
	return nil
}

// OpenPlanSummary is one open plan in a listing
type OpenPlanSummary struct {
	ID             string   `json:"id"`
	CreatorCompany string   `json:"creatorCompany"`
	CuisineTypes   []string `json:"cuisineTypes"`
	Members        int      `json:"members"`
	MaxMembers     int      `json:"maxMembers"`
	RestaurantName string   `json:"restaurantName"`
	PlannedTime    string   `json:"plannedTime"`
}

// ListOpenPlansResult represents the result of listing open plans
type ListOpenPlansResult struct {
	Plans []OpenPlanSummary `json:"plans"`
	Total int               `json:"total"`
}
