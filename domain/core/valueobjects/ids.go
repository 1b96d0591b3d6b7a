package valueobjects

import (
	"fmt"

	"github.com/google/uuid"
)

// UserID uniquely identifies a user
type UserID struct {
	value string
}

// NewUserID generates a new unique user ID
func NewUserID() UserID {
	return UserID{value: uuid.New().String()}
}

// ParseUserID creates a UserID from an existing string
func ParseUserID(s string) (UserID, error) {
	if s == "" {
		return UserID{}, fmt.Errorf("user ID cannot be empty")
	}
	return UserID{value: s}, nil
}

func (id UserID) String() string { return id.value }

// IsEmpty checks whether the ID carries a value
func (id UserID) IsEmpty() bool { return id.value == "" }

// Equals compares two user IDs
func (id UserID) Equals(other UserID) bool { return id.value == other.value }

// PlanID uniquely identifies a dining plan
type PlanID struct {
	value string
}

// NewPlanID generates a new unique plan ID
func NewPlanID() PlanID {
	return PlanID{value: uuid.New().String()}
}

// ParsePlanID creates a PlanID from an existing string
func ParsePlanID(s string) (PlanID, error) {
	if s == "" {
		return PlanID{}, fmt.Errorf("plan ID cannot be empty")
	}
	return PlanID{value: s}, nil
}

func (id PlanID) String() string { return id.value }

// IsEmpty checks whether the ID carries a value
func (id PlanID) IsEmpty() bool { return id.value == "" }

// RatingID uniquely identifies a rating
type RatingID struct {
	value string
}

// NewRatingID generates a new unique rating ID
func NewRatingID() RatingID {
	return RatingID{value: uuid.New().String()}
}

// ParseRatingID creates a RatingID from an existing string
func ParseRatingID(s string) (RatingID, error) {
	if s == "" {
		return RatingID{}, fmt.Errorf("rating ID cannot be empty")
	}
	return RatingID{value: s}, nil
}

func (id RatingID) String() string { return id.value }
