package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablemate-backend/domain/core/valueobjects"
)

var planNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestPlan(t *testing.T, maxMembers int) *DiningPlan {
	t.Helper()
	plan, err := NewDiningPlan(
		"creator-1",
		"Acme",
		[]string{"thai", "sushi"},
		maxMembers,
		"Izakaya Torch",
		planNow.Add(48*time.Hour),
		planNow,
	)
	require.NoError(t, err)
	return plan
}

func TestNewDiningPlan_CreatorHoldsFirstSeat(t *testing.T) {
	plan := newTestPlan(t, 4)

	assert.Equal(t, valueobjects.StatusOpen, plan.Status())
	assert.Equal(t, []string{"creator-1"}, plan.MemberIDs())
	assert.True(t, plan.HasMember("creator-1"))
	assert.True(t, plan.NeedsMatching())
	assert.Len(t, plan.GetUncommittedEvents(), 1)
}

func TestNewDiningPlan_Validation(t *testing.T) {
	cases := []struct {
		name        string
		creatorID   string
		company     string
		maxMembers  int
		restaurant  string
		plannedTime time.Time
	}{
		{"empty creator", "", "Acme", 4, "Izakaya Torch", planNow.Add(time.Hour)},
		{"empty company", "creator-1", "", 4, "Izakaya Torch", planNow.Add(time.Hour)},
		{"zero seats", "creator-1", "Acme", 0, "Izakaya Torch", planNow.Add(time.Hour)},
		{"empty restaurant", "creator-1", "Acme", 4, "", planNow.Add(time.Hour)},
		{"planned time in the past", "creator-1", "Acme", 4, "Izakaya Torch", planNow.Add(-time.Hour)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			plan, err := NewDiningPlan(tc.creatorID, tc.company, nil, tc.maxMembers, tc.restaurant, tc.plannedTime, planNow)
			assert.Error(t, err)
			assert.Nil(t, plan)
		})
	}
}

func TestDiningPlan_AddMember_FillingLastSeatFlipsToMatched(t *testing.T) {
	plan := newTestPlan(t, 3)

	require.NoError(t, plan.AddMember("user-2", planNow))
	assert.Equal(t, valueobjects.StatusOpen, plan.Status())
	assert.True(t, plan.NeedsMatching())

	require.NoError(t, plan.AddMember("user-3", planNow))
	assert.Equal(t, valueobjects.StatusMatched, plan.Status())
	assert.True(t, plan.IsFull())
	assert.False(t, plan.NeedsMatching())
}

func TestDiningPlan_AddMember_Rejections(t *testing.T) {
	plan := newTestPlan(t, 2)

	assert.Error(t, plan.AddMember("creator-1", planNow), "duplicate member")

	require.NoError(t, plan.AddMember("user-2", planNow))
	assert.Error(t, plan.AddMember("user-3", planNow), "plan already full and matched")
	assert.Equal(t, []string{"creator-1", "user-2"}, plan.MemberIDs())
}

func TestDiningPlan_ConfirmWithCodes_AssignsPositionally(t *testing.T) {
	plan := newTestPlan(t, 3)
	require.NoError(t, plan.AddMember("user-2", planNow))
	require.NoError(t, plan.AddMember("user-3", planNow))

	confirmedAt := planNow.Add(time.Minute)
	require.NoError(t, plan.ConfirmWithCodes([]int{10, 55, 99}, confirmedAt))

	assert.Equal(t, valueobjects.StatusConfirmed, plan.Status())
	require.NotNil(t, plan.ConfirmedAt())
	assert.Equal(t, confirmedAt, *plan.ConfirmedAt())

	code, ok := plan.ArrivalCodeFor("creator-1")
	require.True(t, ok)
	assert.Equal(t, 10, code)
	code, ok = plan.ArrivalCodeFor("user-2")
	require.True(t, ok)
	assert.Equal(t, 55, code)
	code, ok = plan.ArrivalCodeFor("user-3")
	require.True(t, ok)
	assert.Equal(t, 99, code)

	_, ok = plan.ArrivalCodeFor("stranger")
	assert.False(t, ok)
}

func TestDiningPlan_ConfirmWithCodes_Rejections(t *testing.T) {
	t.Run("not full", func(t *testing.T) {
		plan := newTestPlan(t, 3)
		require.NoError(t, plan.AddMember("user-2", planNow))
		assert.Error(t, plan.ConfirmWithCodes([]int{10, 55}, planNow))
	})

	t.Run("code count mismatch", func(t *testing.T) {
		plan := newTestPlan(t, 2)
		require.NoError(t, plan.AddMember("user-2", planNow))
		assert.Error(t, plan.ConfirmWithCodes([]int{10}, planNow))
	})

	t.Run("duplicate codes", func(t *testing.T) {
		plan := newTestPlan(t, 2)
		require.NoError(t, plan.AddMember("user-2", planNow))
		assert.Error(t, plan.ConfirmWithCodes([]int{42, 42}, planNow))
	})

	t.Run("already issued", func(t *testing.T) {
		plan := newTestPlan(t, 2)
		require.NoError(t, plan.AddMember("user-2", planNow))
		require.NoError(t, plan.ConfirmWithCodes([]int{10, 11}, planNow))
		assert.Error(t, plan.ConfirmWithCodes([]int{20, 21}, planNow))
	})

	t.Run("expired plan", func(t *testing.T) {
		plan := newTestPlan(t, 2)
		require.NoError(t, plan.Expire(planNow))
		assert.Error(t, plan.ConfirmWithCodes([]int{10, 11}, planNow))
	})
}

func TestDiningPlan_Expire(t *testing.T) {
	t.Run("open plan expires", func(t *testing.T) {
		plan := newTestPlan(t, 3)
		require.NoError(t, plan.Expire(planNow))
		assert.Equal(t, valueobjects.StatusExpired, plan.Status())
		require.NotNil(t, plan.ExpiredAt())
	})

	t.Run("matched plan expires", func(t *testing.T) {
		plan := newTestPlan(t, 2)
		require.NoError(t, plan.AddMember("user-2", planNow))
		require.NoError(t, plan.Expire(planNow))
		assert.Equal(t, valueobjects.StatusExpired, plan.Status())
	})

	t.Run("confirmed plan refuses", func(t *testing.T) {
		plan := newTestPlan(t, 2)
		require.NoError(t, plan.AddMember("user-2", planNow))
		require.NoError(t, plan.ConfirmWithCodes([]int{10, 11}, planNow))
		assert.Error(t, plan.Expire(planNow))
		assert.Equal(t, valueobjects.StatusConfirmed, plan.Status())
	})
}

func TestDiningPlan_EventAccumulation(t *testing.T) {
	plan := newTestPlan(t, 2)
	require.NoError(t, plan.AddMember("user-2", planNow))
	require.NoError(t, plan.ConfirmWithCodes([]int{10, 11}, planNow))

	// created + joined + confirmed
	assert.Len(t, plan.GetUncommittedEvents(), 3)

	plan.MarkEventsCommitted()
	assert.Empty(t, plan.GetUncommittedEvents())
}

func TestReconstructPlan_RejectsOverCapacity(t *testing.T) {
	plan, err := ReconstructPlan(
		valueobjects.NewPlanID(),
		"creator-1",
		"Acme",
		valueobjects.StatusOpen,
		nil,
		[]string{"creator-1", "user-2", "user-3"},
		2,
		"Izakaya Torch",
		planNow.Add(time.Hour),
		nil,
		nil,
		nil,
		planNow,
		planNow,
	)
	assert.Error(t, err)
	assert.Nil(t, plan)
}
