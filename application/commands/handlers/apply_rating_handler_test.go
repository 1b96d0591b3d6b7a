package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tablemate-backend/application/commands"
	"tablemate-backend/pkg/observability"
)

func newRatingHandler(users *fakeUserRepo, eventBus *fakeEventBus) *ApplyRatingHandler {
	return NewApplyRatingHandler(
		users,
		eventBus,
		fakeClock{now: handlerNow},
		observability.NewMetrics("", nil),
		zap.NewNop(),
	)
}

func TestApplyRatingHandler_Handle_AdvancesRunningMean(t *testing.T) {
	// Arrange: user with one prior rating of 4.
	user := newActiveUser("Acme", "tok-a", []string{"thai"}, 4, false)
	users := newFakeUserRepo(user)
	eventBus := &fakeEventBus{}
	handler := newRatingHandler(users, eventBus)

	cmd := commands.ApplyRatingCommand{
		RatingID:    "rating-1",
		RatedUserID: user.ID().String(),
		Value:       5,
	}

	// Act
	err := handler.Handle(context.Background(), cmd)

	// Assert: (4*1+5)/2
	require.NoError(t, err)
	assert.InDelta(t, 4.5, user.TrustScore(), 0.001)
	assert.Equal(t, 2, user.RatingCount())
	assert.Equal(t, handlerNow, user.LastRatedAt())
	assert.Len(t, eventBus.events, 1)
}

func TestApplyRatingHandler_Handle_SkipsMalformedRecords(t *testing.T) {
	user := newActiveUser("Acme", "tok-a", []string{"thai"}, 4, false)

	cases := []struct {
		name string
		cmd  commands.ApplyRatingCommand
	}{
		{"missing rated user", commands.ApplyRatingCommand{RatingID: "rating-1", Value: 5}},
		{"zero value", commands.ApplyRatingCommand{RatingID: "rating-2", RatedUserID: user.ID().String()}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			users := newFakeUserRepo(user)
			eventBus := &fakeEventBus{}
			handler := newRatingHandler(users, eventBus)

			err := handler.Handle(context.Background(), tc.cmd)

			require.NoError(t, err)
			assert.Equal(t, 1, user.RatingCount())
			assert.Empty(t, eventBus.events)
		})
	}
}

func TestApplyRatingHandler_Handle_UnknownUserIsNeutral(t *testing.T) {
	users := newFakeUserRepo()
	eventBus := &fakeEventBus{}
	handler := newRatingHandler(users, eventBus)

	cmd := commands.ApplyRatingCommand{
		RatingID:    "rating-1",
		RatedUserID: "ghost-user",
		Value:       5,
	}

	assert.NoError(t, handler.Handle(context.Background(), cmd))
	assert.Empty(t, eventBus.events)
}

func TestApplyRatingHandler_Handle_OutOfRangeValueIsNeutral(t *testing.T) {
	user := newActiveUser("Acme", "tok-a", []string{"thai"}, 4, false)
	users := newFakeUserRepo(user)
	eventBus := &fakeEventBus{}
	handler := newRatingHandler(users, eventBus)

	cmd := commands.ApplyRatingCommand{
		RatingID:    "rating-1",
		RatedUserID: user.ID().String(),
		Value:       9,
	}

	// The entity rejects the value; the trigger handler still completes.
	assert.NoError(t, handler.Handle(context.Background(), cmd))
	assert.Equal(t, 1, user.RatingCount())
	assert.Empty(t, eventBus.events)
}
