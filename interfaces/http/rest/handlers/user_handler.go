package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"tablemate-backend/application/queries"
	querybus "tablemate-backend/application/queries/bus"
	"tablemate-backend/pkg/auth"
	"tablemate-backend/pkg/common"
)

// UserHandler handles user profile HTTP requests
type UserHandler struct {
	queryBus *querybus.QueryBus
	logger   *zap.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(queryBus *querybus.QueryBus, logger *zap.Logger) *UserHandler {
	return &UserHandler{queryBus: queryBus, logger: logger}
}

// GetUser handles GET /users/{userID}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetUserQuery{
		UserID: pathParam(r, "userID"),
	})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// GetMe handles GET /users/me
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, common.StandardErrorCodes.Unauthorized, "Unauthorized")
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetUserQuery{UserID: userCtx.UserID})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}
