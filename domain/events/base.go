package events

import (
	"time"

	"tablemate-backend/domain/core/valueobjects"
)

// Source identifies this service on the event bus
const Source = "tablemate.backend"

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// Plan events

// PlanCreated is raised when a new dining plan is opened
type PlanCreated struct {
	BaseEvent
	PlanID         valueobjects.PlanID `json:"plan_id"`
	CreatorID      string              `json:"creator_id"`
	CreatorCompany string              `json:"creator_company"`
	RestaurantName string              `json:"restaurant_name"`
	MaxMembers     int                 `json:"max_members"`
}

// NewPlanCreated creates a PlanCreated event
func NewPlanCreated(planID valueobjects.PlanID, creatorID, creatorCompany, restaurantName string, maxMembers int, timestamp time.Time) PlanCreated {
	return PlanCreated{
		BaseEvent: BaseEvent{
			AggregateID: planID.String(),
			EventType:   "plan.created",
			Timestamp:   timestamp,
			Version:     1,
		},
		PlanID:         planID,
		CreatorID:      creatorID,
		CreatorCompany: creatorCompany,
		RestaurantName: restaurantName,
		MaxMembers:     maxMembers,
	}
}

// MemberJoined is raised when a user takes a seat in a plan
type MemberJoined struct {
	BaseEvent
	PlanID  valueobjects.PlanID `json:"plan_id"`
	UserID  string              `json:"user_id"`
	Members int                 `json:"members"`
	Full    bool                `json:"full"`
}

// NewMemberJoined creates a MemberJoined event
func NewMemberJoined(planID valueobjects.PlanID, userID string, members int, full bool, timestamp time.Time) MemberJoined {
	return MemberJoined{
		BaseEvent: BaseEvent{
			AggregateID: planID.String(),
			EventType:   "plan.member_joined",
			Timestamp:   timestamp,
			Version:     1,
		},
		PlanID:  planID,
		UserID:  userID,
		Members: members,
		Full:    full,
	}
}

// PlanConfirmed is raised when arrival codes are issued and the plan is locked in
type PlanConfirmed struct {
	BaseEvent
	PlanID         valueobjects.PlanID `json:"plan_id"`
	RestaurantName string              `json:"restaurant_name"`
	MemberCount    int                 `json:"member_count"`
}

// NewPlanConfirmed creates a PlanConfirmed event
func NewPlanConfirmed(planID valueobjects.PlanID, restaurantName string, memberCount int, timestamp time.Time) PlanConfirmed {
	return PlanConfirmed{
		BaseEvent: BaseEvent{
			AggregateID: planID.String(),
			EventType:   "plan.confirmed",
			Timestamp:   timestamp,
			Version:     1,
		},
		PlanID:         planID,
		RestaurantName: restaurantName,
		MemberCount:    memberCount,
	}
}

// PlanExpired is raised when the expiry sweep retires a stale plan
type PlanExpired struct {
	BaseEvent
	PlanID valueobjects.PlanID `json:"plan_id"`
}

// NewPlanExpired creates a PlanExpired event
func NewPlanExpired(planID valueobjects.PlanID, timestamp time.Time) PlanExpired {
	return PlanExpired{
		BaseEvent: BaseEvent{
			AggregateID: planID.String(),
			EventType:   "plan.expired",
			Timestamp:   timestamp,
			Version:     1,
		},
		PlanID: planID,
	}
}

// TrustScoreUpdated is raised after a rating is folded into a user's trust score
type TrustScoreUpdated struct {
	BaseEvent
	UserID      valueobjects.UserID `json:"user_id"`
	TrustScore  float64             `json:"trust_score"`
	RatingCount int                 `json:"rating_count"`
}

// NewTrustScoreUpdated creates a TrustScoreUpdated event
func NewTrustScoreUpdated(userID valueobjects.UserID, trustScore float64, ratingCount int, timestamp time.Time) TrustScoreUpdated {
	return TrustScoreUpdated{
		BaseEvent: BaseEvent{
			AggregateID: userID.String(),
			EventType:   "trust.updated",
			Timestamp:   timestamp,
			Version:     1,
		},
		UserID:      userID,
		TrustScore:  trustScore,
		RatingCount: ratingCount,
	}
}
