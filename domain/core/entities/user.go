package entities

import (
	"time"

	"tablemate-backend/domain/core/valueobjects"
	pkgerrors "tablemate-backend/pkg/errors"
)

// User represents a registered diner.
// Trust score bookkeeping is encapsulated here so the running mean
// can only be advanced through ApplyRating.
type User struct {
	id              valueobjects.UserID
	company         string
	foodPreferences []string
	trustScore      float64
	ratingCount     int
	isPremium       bool
	isActive        bool
	lastActiveAt    time.Time
	lastRatedAt     time.Time
	deviceToken     string
	version         int
	createdAt       time.Time
	updatedAt       time.Time
}

// NewUser creates a new active user with zero trust history
func NewUser(company string, foodPreferences []string, now time.Time) (*User, error) {
	if company == "" {
		return nil, pkgerrors.NewValidationError("company cannot be empty")
	}

	return &User{
		id:              valueobjects.NewUserID(),
		company:         company,
		foodPreferences: foodPreferences,
		trustScore:      0,
		ratingCount:     0,
		isActive:        true,
		lastActiveAt:    now,
		version:         1,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

// ReconstructUser restores a user from repository data
func ReconstructUser(
	id valueobjects.UserID,
	company string,
	foodPreferences []string,
	trustScore float64,
	ratingCount int,
	isPremium bool,
	isActive bool,
	lastActiveAt time.Time,
	lastRatedAt time.Time,
	deviceToken string,
	version int,
	createdAt time.Time,
	updatedAt time.Time,
) *User {
	return &User{
		id:              id,
		company:         company,
		foodPreferences: foodPreferences,
		trustScore:      trustScore,
		ratingCount:     ratingCount,
		isPremium:       isPremium,
		isActive:        isActive,
		lastActiveAt:    lastActiveAt,
		lastRatedAt:     lastRatedAt,
		deviceToken:     deviceToken,
		version:         version,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// ApplyRating folds a peer rating into the running weighted mean.
// newScore = (oldScore*oldCount + value) / (oldCount + 1)
func (u *User) ApplyRating(value float64, now time.Time) error {
	if value < 1 || value > 5 {
		return pkgerrors.NewValidationError("rating value must be between 1 and 5")
	}

	u.trustScore = (u.trustScore*float64(u.ratingCount) + value) / float64(u.ratingCount+1)
	u.ratingCount++
	u.lastRatedAt = now
	u.updatedAt = now
	return nil
}

// Touch records user activity for recency scoring
func (u *User) Touch(now time.Time) {
	u.lastActiveAt = now
	u.updatedAt = now
}

// SetDeviceToken updates the push delivery target
func (u *User) SetDeviceToken(token string, now time.Time) {
	u.deviceToken = token
	u.updatedAt = now
}

// Deactivate removes the user from the matching pool
func (u *User) Deactivate(now time.Time) {
	u.isActive = false
	u.updatedAt = now
}

// SetPremium toggles premium status
func (u *User) SetPremium(premium bool, now time.Time) {
	u.isPremium = premium
	u.updatedAt = now
}

// IncrementVersion advances the optimistic-concurrency version
func (u *User) IncrementVersion() {
	u.version++
}

func (u *User) ID() valueobjects.UserID    { return u.id }
func (u *User) Company() string            { return u.company }
func (u *User) FoodPreferences() []string  { return u.foodPreferences }
func (u *User) TrustScore() float64        { return u.trustScore }
func (u *User) RatingCount() int           { return u.ratingCount }
func (u *User) IsPremium() bool            { return u.isPremium }
func (u *User) IsActive() bool             { return u.isActive }
func (u *User) LastActiveAt() time.Time    { return u.lastActiveAt }
func (u *User) LastRatedAt() time.Time     { return u.lastRatedAt }
func (u *User) DeviceToken() string        { return u.deviceToken }
func (u *User) Version() int               { return u.version }
func (u *User) CreatedAt() time.Time       { return u.createdAt }
func (u *User) UpdatedAt() time.Time       { return u.updatedAt }
