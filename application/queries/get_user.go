package queries

import "errors"

// GetUserQuery represents a query to get a single user profile
type GetUserQuery struct {
	UserID string
}

// Validate validates the GetUserQuery
func (q GetUserQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user ID is required")
	}
	return nil
}

// GetUserResult represents the result of getting a user profile
type GetUserResult struct {
	ID              string   `json:"id"`
	Company         string   `json:"company"`
	FoodPreferences []string `json:"foodPreferences"`
	TrustScore      float64  `json:"trustScore"`
	RatingCount     int      `json:"ratingCount"`
	IsPremium       bool     `json:"isPremium"`
	IsActive        bool     `json:"isActive"`
	LastActiveAt    string   `json:"lastActiveAt"`
	CreatedAt       string   `json:"createdAt"`
	UpdatedAt       string   `json:"updatedAt"`
}
