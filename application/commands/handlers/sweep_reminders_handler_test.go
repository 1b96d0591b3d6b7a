package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tablemate-backend/application/commands"
	appservices "tablemate-backend/application/services"
	domaincfg "tablemate-backend/domain/config"
	"tablemate-backend/domain/core/entities"
	"tablemate-backend/domain/core/valueobjects"
	"tablemate-backend/pkg/observability"
)

func newSweepHandler(users *fakeUserRepo, plans *fakePlanRepo, notifier *fakeNotifier) *SweepRemindersHandler {
	cfg := domaincfg.DefaultDomainConfig()
	logger := zap.NewNop()
	notifications := appservices.NewNotificationService(users, notifier, cfg, logger)
	return NewSweepRemindersHandler(
		plans,
		notifications,
		fakeClock{now: handlerNow},
		cfg,
		observability.NewMetrics("", nil),
		logger,
	)
}

func confirmedPlan(t *testing.T, members []*entities.User, plannedTime time.Time) *entities.DiningPlan {
	t.Helper()
	memberIDs := make([]string, len(members))
	codes := make(map[string]int, len(members))
	for i, member := range members {
		memberIDs[i] = member.ID().String()
		codes[memberIDs[i]] = 10 + i
	}
	confirmedAt := plannedTime.Add(-2 * time.Hour)
	plan, err := entities.ReconstructPlan(
		valueobjects.NewPlanID(),
		memberIDs[0],
		"Acme",
		valueobjects.StatusConfirmed,
		[]string{"thai"},
		memberIDs,
		len(members),
		"Izakaya Torch",
		plannedTime,
		codes,
		&confirmedAt,
		nil,
		confirmedAt,
		confirmedAt,
	)
	require.NoError(t, err)
	return plan
}

func openPlan(t *testing.T, plannedTime time.Time) *entities.DiningPlan {
	t.Helper()
	plan, err := entities.ReconstructPlan(
		valueobjects.NewPlanID(),
		"creator-1",
		"Acme",
		valueobjects.StatusOpen,
		[]string{"thai"},
		[]string{"creator-1"},
		4,
		"Izakaya Torch",
		plannedTime,
		nil,
		nil,
		nil,
		handlerNow.Add(-time.Hour),
		handlerNow.Add(-time.Hour),
	)
	require.NoError(t, err)
	return plan
}

func TestSweepRemindersHandler_Handle_RemindsMembersInsideWindow(t *testing.T) {
	// Arrange: one confirmed plan starting in 45 minutes, one starting in two
	// hours, one open plan starting soon. Only the first qualifies.
	soonMembers := []*entities.User{
		newActiveUser("Acme", "tok-a", []string{"thai"}, 4, false),
		newActiveUser("Globex", "tok-b", []string{"thai"}, 4, false),
		newActiveUser("Initech", "tok-c", []string{"thai"}, 4, false),
	}
	laterMembers := []*entities.User{
		newActiveUser("Acme", "tok-x", []string{"thai"}, 4, false),
		newActiveUser("Globex", "tok-y", []string{"thai"}, 4, false),
	}
	allUsers := append(append([]*entities.User{}, soonMembers...), laterMembers...)
	users := newFakeUserRepo(allUsers...)

	plans := newFakePlanRepo(
		confirmedPlan(t, soonMembers, handlerNow.Add(45*time.Minute)),
		confirmedPlan(t, laterMembers, handlerNow.Add(2*time.Hour)),
		openPlan(t, handlerNow.Add(30*time.Minute)),
	)
	notifier := newFakeNotifier()
	handler := newSweepHandler(users, plans, notifier)

	// Act
	err := handler.Handle(context.Background(), commands.SweepRemindersCommand{})

	// Assert: one reminder per member of the qualifying plan.
	require.NoError(t, err)
	assert.Equal(t, 3, notifier.count())

	sent := notifier.sentTokens()
	assert.True(t, sent["tok-a"])
	assert.True(t, sent["tok-b"])
	assert.True(t, sent["tok-c"])
	for _, push := range notifier.sends {
		assert.Equal(t, appservices.KindArrivalReminder, push.Data["type"])
	}
}

func TestSweepRemindersHandler_Handle_WindowEndIsInclusive(t *testing.T) {
	members := []*entities.User{
		newActiveUser("Acme", "tok-a", []string{"thai"}, 4, false),
	}
	users := newFakeUserRepo(members...)
	plans := newFakePlanRepo(
		confirmedPlan(t, members, handlerNow.Add(time.Hour)), // exactly now+window
	)
	notifier := newFakeNotifier()
	handler := newSweepHandler(users, plans, notifier)

	require.NoError(t, handler.Handle(context.Background(), commands.SweepRemindersCommand{}))
	assert.Equal(t, 1, notifier.count())
	assert.True(t, notifier.sentTokens()["tok-a"])
}

func TestSweepRemindersHandler_Handle_OneFailureDoesNotStopOthers(t *testing.T) {
	members := []*entities.User{
		newActiveUser("Acme", "tok-a", []string{"thai"}, 4, false),
		newActiveUser("Globex", "tok-b", []string{"thai"}, 4, false),
		newActiveUser("Initech", "tok-c", []string{"thai"}, 4, false),
	}
	users := newFakeUserRepo(members...)
	plans := newFakePlanRepo(confirmedPlan(t, members, handlerNow.Add(30*time.Minute)))
	notifier := newFakeNotifier()
	notifier.failTokens["tok-b"] = errors.New("device connection is gone")
	handler := newSweepHandler(users, plans, notifier)

	err := handler.Handle(context.Background(), commands.SweepRemindersCommand{})

	require.NoError(t, err)
	assert.Equal(t, 2, notifier.count())
	sent := notifier.sentTokens()
	assert.True(t, sent["tok-a"])
	assert.True(t, sent["tok-c"])
}

func TestSweepRemindersHandler_Handle_QueryFailureIsNeutral(t *testing.T) {
	users := newFakeUserRepo()
	plans := newFakePlanRepo()
	plans.findErr = errors.New("table unavailable")
	notifier := newFakeNotifier()
	handler := newSweepHandler(users, plans, notifier)

	assert.NoError(t, handler.Handle(context.Background(), commands.SweepRemindersCommand{}))
	assert.Zero(t, notifier.count())
}
