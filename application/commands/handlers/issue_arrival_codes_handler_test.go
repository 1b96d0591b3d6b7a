package handlers

import (
	"context"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tablemate-backend/application/commands"
	appservices "tablemate-backend/application/services"
	domaincfg "tablemate-backend/domain/config"
	"tablemate-backend/domain/core/entities"
	domainservices "tablemate-backend/domain/services"
	pkgerrors "tablemate-backend/pkg/errors"
	"tablemate-backend/pkg/observability"
)

func newIssueHandler(users *fakeUserRepo, plans *fakePlanRepo, notifier *fakeNotifier, eventBus *fakeEventBus) *IssueArrivalCodesHandler {
	cfg := domaincfg.DefaultDomainConfig()
	logger := zap.NewNop()
	notifications := appservices.NewNotificationService(users, notifier, cfg, logger)
	return NewIssueArrivalCodesHandler(
		plans,
		domainservices.NewCodeAllocator(cfg, 42),
		notifications,
		eventBus,
		fakeClock{now: handlerNow},
		observability.NewMetrics("", nil),
		logger,
	)
}

func justFilledCommand(members []*entities.User) commands.IssueArrivalCodesCommand {
	memberIDs := make([]string, len(members))
	for i, member := range members {
		memberIDs[i] = member.ID().String()
	}
	return commands.IssueArrivalCodesCommand{
		Before: planSnapshot("plan-1", memberIDs[0], "open", memberIDs[:len(memberIDs)-1], len(memberIDs)),
		After:  planSnapshot("plan-1", memberIDs[0], "matched", memberIDs, len(memberIDs)),
	}
}

func TestIssueArrivalCodesHandler_Handle_FiresOnJustBecameFull(t *testing.T) {
	// Arrange
	members := []*entities.User{
		newActiveUser("Acme", "tok-a", []string{"thai"}, 4, false),
		newActiveUser("Globex", "tok-b", []string{"thai"}, 4, false),
		newActiveUser("Initech", "tok-c", []string{"thai"}, 4, false),
	}
	users := newFakeUserRepo(members...)
	plans := newFakePlanRepo()
	notifier := newFakeNotifier()
	eventBus := &fakeEventBus{}
	handler := newIssueHandler(users, plans, notifier, eventBus)

	// Act
	err := handler.Handle(context.Background(), justFilledCommand(members))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, plans.confirmCalls)
	require.Equal(t, 3, notifier.count())

	// Every member gets their own distinct two-digit code.
	seen := make(map[int]bool)
	for _, push := range notifier.sends {
		assert.Equal(t, appservices.KindArrivalCode, push.Data["type"])
		assert.Contains(t, push.Body, "Izakaya Torch")

		code, convErr := strconv.Atoi(push.Data["arrivalCode"])
		require.NoError(t, convErr)
		assert.GreaterOrEqual(t, code, 10)
		assert.LessOrEqual(t, code, 99)
		assert.False(t, seen[code], "code %d issued twice", code)
		seen[code] = true
	}

	assert.Len(t, eventBus.events, 1, "expected the plan confirmation event")
}

func TestIssueArrivalCodesHandler_Handle_IgnoresOtherTransitions(t *testing.T) {
	members := []*entities.User{
		newActiveUser("Acme", "tok-a", []string{"thai"}, 4, false),
		newActiveUser("Globex", "tok-b", []string{"thai"}, 4, false),
	}
	memberIDs := []string{members[0].ID().String(), members[1].ID().String()}

	cases := []struct {
		name string
		cmd  commands.IssueArrivalCodesCommand
	}{
		{
			"seat taken but plan still open",
			commands.IssueArrivalCodesCommand{
				Before: planSnapshot("plan-1", memberIDs[0], "open", memberIDs[:1], 3),
				After:  planSnapshot("plan-1", memberIDs[0], "open", memberIDs, 3),
			},
		},
		{
			"redelivered write, plan was already full",
			commands.IssueArrivalCodesCommand{
				Before: planSnapshot("plan-1", memberIDs[0], "matched", memberIDs, 2),
				After:  planSnapshot("plan-1", memberIDs[0], "matched", memberIDs, 2),
			},
		},
		{
			"full write without matched status",
			commands.IssueArrivalCodesCommand{
				Before: planSnapshot("plan-1", memberIDs[0], "open", memberIDs[:1], 2),
				After:  planSnapshot("plan-1", memberIDs[0], "open", memberIDs, 2),
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			users := newFakeUserRepo(members...)
			plans := newFakePlanRepo()
			notifier := newFakeNotifier()
			handler := newIssueHandler(users, plans, notifier, &fakeEventBus{})

			err := handler.Handle(context.Background(), tc.cmd)

			require.NoError(t, err)
			assert.Zero(t, plans.confirmCalls)
			assert.Zero(t, notifier.count())
		})
	}
}

func TestIssueArrivalCodesHandler_Handle_ConflictMeansAlreadyIssued(t *testing.T) {
	members := []*entities.User{
		newActiveUser("Acme", "tok-a", []string{"thai"}, 4, false),
		newActiveUser("Globex", "tok-b", []string{"thai"}, 4, false),
	}
	users := newFakeUserRepo(members...)
	plans := newFakePlanRepo()
	plans.confirmErr = pkgerrors.NewConflictError("arrival codes already issued")
	notifier := newFakeNotifier()
	handler := newIssueHandler(users, plans, notifier, &fakeEventBus{})

	err := handler.Handle(context.Background(), justFilledCommand(members))

	// The losing trigger completes neutrally and must not notify anyone.
	require.NoError(t, err)
	assert.Equal(t, 1, plans.confirmCalls)
	assert.Zero(t, notifier.count())
}

func TestIssueArrivalCodesHandler_Handle_AllocationFailureIsNeutral(t *testing.T) {
	// 91 members exceed the [10,99] code space.
	memberIDs := make([]string, 91)
	for i := range memberIDs {
		memberIDs[i] = fmt.Sprintf("member-%d", i)
	}
	users := newFakeUserRepo()
	plans := newFakePlanRepo()
	notifier := newFakeNotifier()
	handler := newIssueHandler(users, plans, notifier, &fakeEventBus{})

	cmd := commands.IssueArrivalCodesCommand{
		Before: planSnapshot("plan-1", memberIDs[0], "open", memberIDs[:90], 91),
		After:  planSnapshot("plan-1", memberIDs[0], "matched", memberIDs, 91),
	}

	err := handler.Handle(context.Background(), cmd)

	require.NoError(t, err)
	assert.Zero(t, plans.confirmCalls)
	assert.Zero(t, notifier.count())
}
