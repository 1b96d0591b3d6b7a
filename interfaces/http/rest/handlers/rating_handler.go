package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"tablemate-backend/application/commands"
	"tablemate-backend/application/commands/bus"
	"tablemate-backend/pkg/auth"
	"tablemate-backend/pkg/common"
	"tablemate-backend/pkg/utils"
)

// RatingHandler handles peer rating HTTP requests
type RatingHandler struct {
	commandBus *bus.CommandBus
	logger     *zap.Logger
}

// NewRatingHandler creates a new rating handler
func NewRatingHandler(commandBus *bus.CommandBus, logger *zap.Logger) *RatingHandler {
	return &RatingHandler{commandBus: commandBus, logger: logger}
}

// SubmitRatingRequest represents the request body for rating a peer
type SubmitRatingRequest struct {
	RatedUserID string  `json:"ratedUserId" validate:"required"`
	Value       float64 `json:"value" validate:"required,min=1,max=5"`
}

// SubmitRating handles POST /ratings
func (h *RatingHandler) SubmitRating(w http.ResponseWriter, r *http.Request) {
	var req SubmitRatingRequest
	if err := common.ParseJSONBody(r, &req, maxRequestBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, common.StandardErrorCodes.BadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, common.StandardErrorCodes.ValidationError, err.Error())
		return
	}

	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, common.StandardErrorCodes.Unauthorized, "Unauthorized")
		return
	}

	cmd := commands.SubmitRatingCommand{
		RaterID:     userCtx.UserID,
		RatedUserID: req.RatedUserID,
		Value:       req.Value,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.logger.Warn("Rating rejected",
			zap.String("raterID", cmd.RaterID),
			zap.String("ratedUserID", cmd.RatedUserID),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusAccepted, map[string]interface{}{
		"accepted": true,
	})
}
