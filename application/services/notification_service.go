package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	domaincfg "tablemate-backend/domain/config"
	"tablemate-backend/domain/core/entities"
	"tablemate-backend/domain/core/valueobjects"
	"tablemate-backend/application/ports"
)

// Notification kinds carried in the push payload
const (
	KindPlanRecommendation = "plan_recommendation"
	KindArrivalCode        = "arrival_code"
	KindArrivalReminder    = "arrival_reminder"
)

// NotificationService formats and dispatches push messages for the matching
// engine. Every send is best-effort: a missing device token or a channel
// failure is logged and swallowed so one recipient can never fail a trigger.
type NotificationService struct {
	users    ports.UserRepository
	notifier ports.Notifier
	cfg      *domaincfg.DomainConfig
	logger   *zap.Logger
}

// NewNotificationService creates a notification service
func NewNotificationService(
	users ports.UserRepository,
	notifier ports.Notifier,
	cfg *domaincfg.DomainConfig,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		users:    users,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
	}
}

// SendPlanRecommendation pushes a match suggestion to one candidate
func (s *NotificationService) SendPlanRecommendation(ctx context.Context, userID string, plan *entities.DiningPlan) error {
	title := "🍽️ Perfect Dining Match Found!"
	body := fmt.Sprintf("Join a dining plan at %s - %s",
		plan.RestaurantName(), strings.Join(plan.CuisineTypes(), ", "))
	data := map[string]string{
		"type":           KindPlanRecommendation,
		"planId":         plan.ID().String(),
		"restaurantName": plan.RestaurantName(),
	}
	return s.send(ctx, userID, title, body, data)
}

// SendArrivalCode pushes a member's arrival code for a confirmed plan
func (s *NotificationService) SendArrivalCode(ctx context.Context, userID string, code int, plan *entities.DiningPlan) error {
	title := "🎉 Your Dining Plan is Confirmed!"
	body := fmt.Sprintf("Your arrival code is %d. Show this at %s", code, plan.RestaurantName())
	data := map[string]string{
		"type":           KindArrivalCode,
		"planId":         plan.ID().String(),
		"arrivalCode":    strconv.Itoa(code),
		"restaurantName": plan.RestaurantName(),
	}
	return s.send(ctx, userID, title, body, data)
}

// SendArrivalReminder pushes a start-time reminder to one member
func (s *NotificationService) SendArrivalReminder(ctx context.Context, userID string, plan *entities.DiningPlan) error {
	title := "⏰ Dining Plan Reminder"
	body := fmt.Sprintf("Your dining plan at %s starts in 1 hour!", plan.RestaurantName())
	data := map[string]string{
		"type":           KindArrivalReminder,
		"planId":         plan.ID().String(),
		"restaurantName": plan.RestaurantName(),
	}
	return s.send(ctx, userID, title, body, data)
}

// send resolves the recipient's device token and dispatches one message.
// Each send gets its own timeout so a hung channel cannot stall a fan-out.
func (s *NotificationService) send(ctx context.Context, userID, title, body string, data map[string]string) error {
	id, err := valueobjects.ParseUserID(userID)
	if err != nil {
		s.logger.Warn("Skipping notification for invalid user ID",
			zap.String("userID", userID),
			zap.String("kind", data["type"]),
		)
		return nil
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		s.logger.Warn("Skipping notification, recipient lookup failed",
			zap.String("userID", userID),
			zap.String("kind", data["type"]),
			zap.Error(err),
		)
		return nil
	}

	if user.DeviceToken() == "" {
		s.logger.Debug("Skipping notification, no device token",
			zap.String("userID", userID),
			zap.String("kind", data["type"]),
		)
		return nil
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.cfg.NotificationTimeout)
	defer cancel()

	if err := s.notifier.Send(sendCtx, user.DeviceToken(), title, body, data); err != nil {
		s.logger.Error("Notification dispatch failed",
			zap.String("userID", userID),
			zap.String("kind", data["type"]),
			zap.Error(err),
		)
		return err
	}

	return nil
}

// FanOut dispatches one send per recipient concurrently and waits for all of
// them. Failures are isolated per recipient; the return value is the number
// of sends that did not report an error.
func (s *NotificationService) FanOut(ctx context.Context, recipients []string, send func(ctx context.Context, userID string) error) int {
	return s.FanOutN(ctx, len(recipients), func(ctx context.Context, i int) error {
		return send(ctx, recipients[i])
	})
}

// FanOutN launches n independent sends concurrently and joins them all.
// One send failing never cancels its siblings.
func (s *NotificationService) FanOutN(ctx context.Context, n int, send func(ctx context.Context, i int) error) int {
	if n == 0 {
		return 0
	}

	var wg sync.WaitGroup
	results := make([]error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = send(ctx, i)
		}(i)
	}

	wg.Wait()

	delivered := 0
	for _, err := range results {
		if err == nil {
			delivered++
		}
	}
	return delivered
}
