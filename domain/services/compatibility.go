package services

import (
	"sort"
	"time"

	"tablemate-backend/domain/config"
	"tablemate-backend/domain/core/entities"
)

// CompatibilityResult pairs a candidate with their score for one matching pass.
// It is never persisted.
type CompatibilityResult struct {
	User  *entities.User
	Score float64
}

// CompatibilityScorer ranks users against a dining plan.
// Scoring is deterministic given the inputs and the supplied clock reading.
type CompatibilityScorer struct {
	cfg *config.DomainConfig
}

// NewCompatibilityScorer creates a scorer with the given domain rules
func NewCompatibilityScorer(cfg *config.DomainConfig) *CompatibilityScorer {
	return &CompatibilityScorer{cfg: cfg}
}

// Eligible applies the pre-filter: inactive users, current members, users from
// the creator's own company, and users sharing no cuisine tag are excluded
// before scoring and never ranked.
func (s *CompatibilityScorer) Eligible(user *entities.User, plan *entities.DiningPlan) bool {
	if !user.IsActive() {
		return false
	}
	if plan.HasMember(user.ID().String()) {
		return false
	}
	if user.Company() == plan.CreatorCompany() {
		return false
	}
	return sharesCuisine(user.FoodPreferences(), plan.CuisineTypes())
}

// Score computes the weighted compatibility score in [0,100]:
// cuisine overlap 40, trust 30, premium 20, recency 10.
func (s *CompatibilityScorer) Score(user *entities.User, plan *entities.DiningPlan, now time.Time) float64 {
	score := 0.0

	// Cuisine overlap is measured against the user's own preference-set size,
	// so a user whose few stated preferences all match outranks a user with
	// many preferences and the same overlap.
	prefs := user.FoodPreferences()
	overlap := 0
	for _, cuisine := range prefs {
		if containsString(plan.CuisineTypes(), cuisine) {
			overlap++
		}
	}
	denominator := len(prefs)
	if denominator < 1 {
		denominator = 1
	}
	score += float64(overlap) / float64(denominator) * s.cfg.CuisineWeight

	// Trust contribution assumes ratings in [1,MaxRatingValue]. Scores outside
	// that range are not re-clamped here and produce out-of-nominal contributions.
	score += user.TrustScore() / s.cfg.MaxRatingValue * s.cfg.TrustWeight

	if user.IsPremium() {
		score += s.cfg.PremiumWeight
	}

	// Recency decays linearly to zero over the window. A zero lastActiveAt
	// (never seen) counts as maximally stale.
	daysSinceActive := now.Sub(user.LastActiveAt()).Hours() / 24
	recency := (s.cfg.RecencyWindowDays - daysSinceActive) / s.cfg.RecencyWindowDays
	if recency < 0 {
		recency = 0
	}
	score += recency * s.cfg.RecencyWeight

	return score
}

// RankCandidates filters and scores the pool, returning survivors in
// descending score order. Ties keep the original enumeration order.
func (s *CompatibilityScorer) RankCandidates(users []*entities.User, plan *entities.DiningPlan, now time.Time) []CompatibilityResult {
	results := make([]CompatibilityResult, 0, len(users))
	for _, user := range users {
		if !s.Eligible(user, plan) {
			continue
		}
		results = append(results, CompatibilityResult{
			User:  user,
			Score: s.Score(user, plan, now),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results
}

func sharesCuisine(userCuisines, planCuisines []string) bool {
	for _, cuisine := range userCuisines {
		if containsString(planCuisines, cuisine) {
			return true
		}
	}
	return false
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
