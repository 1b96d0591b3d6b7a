package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablemate-backend/domain/config"
	"tablemate-backend/domain/core/entities"
	"tablemate-backend/domain/core/valueobjects"
)

var scorerNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

type testUserOpts struct {
	company      string
	prefs        []string
	trustScore   float64
	ratingCount  int
	premium      bool
	active       bool
	lastActiveAt time.Time
}

func buildUser(opts testUserOpts) *entities.User {
	return entities.ReconstructUser(
		valueobjects.NewUserID(),
		opts.company,
		opts.prefs,
		opts.trustScore,
		opts.ratingCount,
		opts.premium,
		opts.active,
		opts.lastActiveAt,
		time.Time{},
		"",
		1,
		scorerNow.Add(-30*24*time.Hour),
		scorerNow.Add(-30*24*time.Hour),
	)
}

func buildOpenPlan(t *testing.T, creatorCompany string, cuisines []string, memberIDs []string, maxMembers int) *entities.DiningPlan {
	t.Helper()
	plan, err := entities.ReconstructPlan(
		valueobjects.NewPlanID(),
		memberIDs[0],
		creatorCompany,
		valueobjects.StatusOpen,
		cuisines,
		memberIDs,
		maxMembers,
		"Izakaya Torch",
		scorerNow.Add(48*time.Hour),
		nil,
		nil,
		nil,
		scorerNow.Add(-time.Hour),
		scorerNow.Add(-time.Hour),
	)
	require.NoError(t, err)
	return plan
}

func TestCompatibilityScorer_Eligible(t *testing.T) {
	scorer := NewCompatibilityScorer(config.DefaultDomainConfig())
	plan := buildOpenPlan(t, "Acme", []string{"thai", "sushi"}, []string{"creator-1"}, 4)

	base := testUserOpts{
		company:      "Globex",
		prefs:        []string{"thai"},
		active:       true,
		lastActiveAt: scorerNow,
	}

	t.Run("active cross-company user with shared cuisine passes", func(t *testing.T) {
		assert.True(t, scorer.Eligible(buildUser(base), plan))
	})

	t.Run("inactive user is excluded", func(t *testing.T) {
		opts := base
		opts.active = false
		assert.False(t, scorer.Eligible(buildUser(opts), plan))
	})

	t.Run("same company as creator is excluded", func(t *testing.T) {
		opts := base
		opts.company = "Acme"
		assert.False(t, scorer.Eligible(buildUser(opts), plan))
	})

	t.Run("no shared cuisine is excluded", func(t *testing.T) {
		opts := base
		opts.prefs = []string{"bbq", "vegan"}
		assert.False(t, scorer.Eligible(buildUser(opts), plan))
	})

	t.Run("existing member is excluded", func(t *testing.T) {
		member := buildUser(base)
		memberPlan := buildOpenPlan(t, "Acme", []string{"thai"}, []string{"creator-1", member.ID().String()}, 4)
		assert.False(t, scorer.Eligible(member, memberPlan))
	})
}

func TestCompatibilityScorer_Score_FullMarks(t *testing.T) {
	scorer := NewCompatibilityScorer(config.DefaultDomainConfig())
	plan := buildOpenPlan(t, "Acme", []string{"thai", "sushi"}, []string{"creator-1"}, 4)

	user := buildUser(testUserOpts{
		company:      "Globex",
		prefs:        []string{"thai", "sushi"},
		trustScore:   5,
		ratingCount:  10,
		premium:      true,
		active:       true,
		lastActiveAt: scorerNow,
	})

	// Full cuisine overlap 40 + max trust 30 + premium 20 + fresh activity 10.
	assert.InDelta(t, 100.0, scorer.Score(user, plan, scorerNow), 0.001)
}

func TestCompatibilityScorer_Score_PartialComponents(t *testing.T) {
	scorer := NewCompatibilityScorer(config.DefaultDomainConfig())
	plan := buildOpenPlan(t, "Acme", []string{"thai"}, []string{"creator-1"}, 4)

	user := buildUser(testUserOpts{
		company:      "Globex",
		prefs:        []string{"thai", "bbq"},
		trustScore:   2.5,
		ratingCount:  4,
		premium:      false,
		active:       true,
		lastActiveAt: time.Time{}, // never seen, maximally stale
	})

	// Overlap 1 of 2 prefs -> 20, trust 2.5/5 -> 15, no premium, no recency.
	assert.InDelta(t, 35.0, scorer.Score(user, plan, scorerNow), 0.001)
}

func TestCompatibilityScorer_Score_RecencyDecaysLinearly(t *testing.T) {
	scorer := NewCompatibilityScorer(config.DefaultDomainConfig())
	plan := buildOpenPlan(t, "Acme", []string{"thai"}, []string{"creator-1"}, 4)

	user := buildUser(testUserOpts{
		company:      "Globex",
		prefs:        []string{"thai"},
		active:       true,
		lastActiveAt: scorerNow.Add(-3 * 24 * time.Hour).Add(-12 * time.Hour), // 3.5 days ago
	})

	// Overlap 40 + recency (7-3.5)/7 * 10 = 5.
	assert.InDelta(t, 45.0, scorer.Score(user, plan, scorerNow), 0.001)
}

func TestCompatibilityScorer_Score_NoPreferencesScoresZeroOverlap(t *testing.T) {
	scorer := NewCompatibilityScorer(config.DefaultDomainConfig())
	plan := buildOpenPlan(t, "Acme", []string{"thai"}, []string{"creator-1"}, 4)

	user := buildUser(testUserOpts{
		company:      "Globex",
		prefs:        nil,
		active:       true,
		lastActiveAt: scorerNow,
	})

	// Empty preference set never divides by zero; only recency contributes.
	assert.InDelta(t, 10.0, scorer.Score(user, plan, scorerNow), 0.001)
}

func TestCompatibilityScorer_RankCandidates_OrdersAndFilters(t *testing.T) {
	scorer := NewCompatibilityScorer(config.DefaultDomainConfig())
	plan := buildOpenPlan(t, "Acme", []string{"thai", "sushi"}, []string{"creator-1"}, 4)

	low := buildUser(testUserOpts{company: "Globex", prefs: []string{"thai", "bbq"}, trustScore: 1, active: true, lastActiveAt: scorerNow})
	high := buildUser(testUserOpts{company: "Globex", prefs: []string{"thai", "sushi"}, trustScore: 5, premium: true, active: true, lastActiveAt: scorerNow})
	ineligible := buildUser(testUserOpts{company: "Acme", prefs: []string{"thai"}, trustScore: 5, active: true, lastActiveAt: scorerNow})

	ranked := scorer.RankCandidates([]*entities.User{low, high, ineligible}, plan, scorerNow)

	require.Len(t, ranked, 2)
	assert.Equal(t, high.ID(), ranked[0].User.ID())
	assert.Equal(t, low.ID(), ranked[1].User.ID())
	assert.Greater(t, ranked[0].Score, ranked[1].Score)
}

func TestCompatibilityScorer_RankCandidates_StableOnTies(t *testing.T) {
	scorer := NewCompatibilityScorer(config.DefaultDomainConfig())
	plan := buildOpenPlan(t, "Acme", []string{"thai"}, []string{"creator-1"}, 4)

	opts := testUserOpts{company: "Globex", prefs: []string{"thai"}, trustScore: 3, active: true, lastActiveAt: scorerNow}
	first := buildUser(opts)
	second := buildUser(opts)
	third := buildUser(opts)

	ranked := scorer.RankCandidates([]*entities.User{first, second, third}, plan, scorerNow)

	require.Len(t, ranked, 3)
	assert.Equal(t, first.ID(), ranked[0].User.ID())
	assert.Equal(t, second.ID(), ranked[1].User.ID())
	assert.Equal(t, third.ID(), ranked[2].User.ID())
}
