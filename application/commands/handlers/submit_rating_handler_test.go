package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tablemate-backend/application/commands"
)

func TestSubmitRatingHandler_Handle_PersistsRating(t *testing.T) {
	ratings := newFakeRatingRepo()
	handler := NewSubmitRatingHandler(ratings, fakeClock{now: handlerNow}, zap.NewNop())

	cmd := commands.SubmitRatingCommand{
		RaterID:     "rater-1",
		RatedUserID: "rated-1",
		Value:       4,
	}

	require.NoError(t, handler.Handle(context.Background(), cmd))
	require.Len(t, ratings.ratings, 1)

	for _, rating := range ratings.ratings {
		assert.Equal(t, "rater-1", rating.RaterID())
		assert.Equal(t, "rated-1", rating.RatedUserID())
		assert.Equal(t, 4.0, rating.Value())
		assert.Equal(t, handlerNow, rating.CreatedAt())
	}
}

func TestSubmitRatingHandler_Handle_RejectsSelfRating(t *testing.T) {
	ratings := newFakeRatingRepo()
	handler := NewSubmitRatingHandler(ratings, fakeClock{now: handlerNow}, zap.NewNop())

	cmd := commands.SubmitRatingCommand{
		RaterID:     "user-1",
		RatedUserID: "user-1",
		Value:       5,
	}

	assert.Error(t, handler.Handle(context.Background(), cmd))
	assert.Empty(t, ratings.ratings)
}

func TestSubmitRatingHandler_Handle_SurfacesSaveFailure(t *testing.T) {
	ratings := newFakeRatingRepo()
	ratings.saveErr = errors.New("conditional check failed")
	handler := NewSubmitRatingHandler(ratings, fakeClock{now: handlerNow}, zap.NewNop())

	cmd := commands.SubmitRatingCommand{
		RaterID:     "rater-1",
		RatedUserID: "rated-1",
		Value:       4,
	}

	assert.Error(t, handler.Handle(context.Background(), cmd))
}
