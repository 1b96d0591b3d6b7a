// Package ports defines the interfaces between the application core and
// infrastructure. Handlers depend on these abstractions only, so tests can
// substitute in-memory fakes.
package ports

import (
	"context"
	"time"

	"tablemate-backend/domain/core/entities"
	"tablemate-backend/domain/core/valueobjects"
	"tablemate-backend/domain/events"
)

// UserRepository provides access to user records
type UserRepository interface {
	GetByID(ctx context.Context, id valueobjects.UserID) (*entities.User, error)
	Save(ctx context.Context, user *entities.User) error

	// FindActive returns every user currently in the matching pool
	FindActive(ctx context.Context) ([]*entities.User, error)

	// ApplyRating folds a rating value into the user's trust score with an
	// atomic conditional update, retrying on concurrent-writer conflicts.
	// Returns the updated user.
	ApplyRating(ctx context.Context, id valueobjects.UserID, value float64, now time.Time) (*entities.User, error)
}

// PlanRepository provides access to dining plan records
type PlanRepository interface {
	GetByID(ctx context.Context, id valueobjects.PlanID) (*entities.DiningPlan, error)
	Save(ctx context.Context, plan *entities.DiningPlan) error

	// AddMember appends a user to the member list with a conditional write that
	// enforces the seat cap and flips status to matched on the filling write.
	AddMember(ctx context.Context, id valueobjects.PlanID, userID string, now time.Time) (*entities.DiningPlan, error)

	// ConfirmWithCodes persists the arrival code assignment, confirmed status
	// and confirmedAt stamp in a single conditional write. A plan whose codes
	// were already issued fails with a conflict error.
	ConfirmWithCodes(ctx context.Context, plan *entities.DiningPlan) error

	// FindOpen returns plans accepting members
	FindOpen(ctx context.Context) ([]*entities.DiningPlan, error)

	// FindConfirmedStartingBetween returns confirmed plans whose planned time
	// falls within [from, to]
	FindConfirmedStartingBetween(ctx context.Context, from, to time.Time) ([]*entities.DiningPlan, error)

	// FindExpirable returns open and matched plans whose planned time is
	// older than the cutoff
	FindExpirable(ctx context.Context, before time.Time) ([]*entities.DiningPlan, error)

	// ExpireBatch transitions the given plans to expired as an atomic
	// all-or-nothing write per transaction chunk
	ExpireBatch(ctx context.Context, plans []*entities.DiningPlan, now time.Time) error
}

// RatingRepository provides access to rating records
type RatingRepository interface {
	Save(ctx context.Context, rating *entities.Rating) error
	GetByID(ctx context.Context, id valueobjects.RatingID) (*entities.Rating, error)
}

// Notifier delivers one push message to one device token.
// Delivery is best-effort and at-most-once; a nil return only means the
// channel accepted the message.
type Notifier interface {
	Send(ctx context.Context, deviceToken, title, body string, data map[string]string) error
}

// EventBus publishes domain events for downstream consumers
type EventBus interface {
	Publish(ctx context.Context, event events.DomainEvent) error
	PublishBatch(ctx context.Context, batch []events.DomainEvent) error
}

// Clock supplies the current time so handlers stay deterministic under test
type Clock interface {
	Now() time.Time
}

// Cache provides short-lived storage for expensive reads
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	Set(ctx context.Context, key string, value interface{}, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
