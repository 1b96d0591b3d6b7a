package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"tablemate-backend/application/ports"
	"tablemate-backend/application/queries"
	"tablemate-backend/domain/core/valueobjects"
	"tablemate-backend/pkg/utils"
)

// GetUserHandler handles user profile lookups
type GetUserHandler struct {
	users  ports.UserRepository
	logger *zap.Logger
}

// NewGetUserHandler creates a new user query handler
func NewGetUserHandler(users ports.UserRepository, logger *zap.Logger) *GetUserHandler {
	return &GetUserHandler{users: users, logger: logger}
}

// Handle executes the user query
func (h *GetUserHandler) Handle(ctx context.Context, query queries.GetUserQuery) (*queries.GetUserResult, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	userID, err := valueobjects.ParseUserID(query.UserID)
	if err != nil {
		return nil, err
	}

	user, err := h.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &queries.GetUserResult{
		ID:              user.ID().String(),
		Company:         user.Company(),
		FoodPreferences: user.FoodPreferences(),
		TrustScore:      user.TrustScore(),
		RatingCount:     user.RatingCount(),
		IsPremium:       user.IsPremium(),
		IsActive:        user.IsActive(),
		LastActiveAt:    utils.FormatRFC3339(user.LastActiveAt()),
		CreatedAt:       utils.FormatRFC3339(user.CreatedAt()),
		UpdatedAt:       utils.FormatRFC3339(user.UpdatedAt()),
	}, nil
}
