package config

import "time"

// DomainConfig holds all configurable business rules and constraints
type DomainConfig struct {
	// Compatibility score weights, must sum to 100
	CuisineWeight float64
	TrustWeight   float64
	PremiumWeight float64
	RecencyWeight float64

	// Scoring parameters
	MaxRatingValue    float64
	RecencyWindowDays float64

	// Matching limits
	MaxRecommendations int

	// Arrival code space, inclusive
	ArrivalCodeMin int
	ArrivalCodeMax int

	// Sweep windows
	ReminderWindow  time.Duration
	ExpiryThreshold time.Duration

	// Dispatch constraints
	NotificationTimeout time.Duration

	// Bounded retries for optimistic concurrency conflicts on trust updates
	MaxRatingRetries int
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		// Score weights
		CuisineWeight: 40,
		TrustWeight:   30,
		PremiumWeight: 20,
		RecencyWeight: 10,

		// Scoring parameters
		MaxRatingValue:    5,
		RecencyWindowDays: 7,

		// Matching limits
		MaxRecommendations: 5,

		// Arrival codes stay human-read-aloud two-digit values
		ArrivalCodeMin: 10,
		ArrivalCodeMax: 99,

		// Sweep windows
		ReminderWindow:  time.Hour,
		ExpiryThreshold: 24 * time.Hour,

		// Dispatch constraints
		NotificationTimeout: 5 * time.Second,

		// Trust update retries
		MaxRatingRetries: 5,
	}
}

// CodeSpaceSize returns the number of distinct arrival codes available
func (c *DomainConfig) CodeSpaceSize() int {
	return c.ArrivalCodeMax - c.ArrivalCodeMin + 1
}
