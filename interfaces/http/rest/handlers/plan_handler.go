package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"tablemate-backend/application/commands"
	"tablemate-backend/application/commands/bus"
	commandhandlers "tablemate-backend/application/commands/handlers"
	"tablemate-backend/application/queries"
	querybus "tablemate-backend/application/queries/bus"
	"tablemate-backend/pkg/auth"
	"tablemate-backend/pkg/common"
	"tablemate-backend/pkg/utils"
)

// maxRequestBytes caps JSON request bodies
const maxRequestBytes = 64 * 1024

// PlanHandler handles dining plan HTTP requests
type PlanHandler struct {
	createPlan *commandhandlers.CreatePlanHandler
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	logger     *zap.Logger
}

// NewPlanHandler creates a new plan handler
func NewPlanHandler(
	createPlan *commandhandlers.CreatePlanHandler,
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	logger *zap.Logger,
) *PlanHandler {
	return &PlanHandler{
		createPlan: createPlan,
		commandBus: commandBus,
		queryBus:   queryBus,
		logger:     logger,
	}
}

// CreatePlanRequest represents the request body for opening a plan
type CreatePlanRequest struct {
	Company        string   `json:"company" validate:"required,max=100"`
	CuisineTypes   []string `json:"cuisineTypes" validate:"required,min=1,dive,max=50"`
	MaxMembers     int      `json:"maxMembers" validate:"required,min=1,max=20"`
	RestaurantName string   `json:"restaurantName" validate:"required,max=200"`
	PlannedTime    string   `json:"plannedTime" validate:"required"`
}

// CreatePlan handles POST /plans
func (h *PlanHandler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var req CreatePlanRequest
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

	plannedTime, err := utils.ParseRFC3339(req.PlannedTime)
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, common.StandardErrorCodes.ValidationError, "plannedTime must be RFC3339")
		return
	}

	cmd := commands.CreatePlanCommand{
		CreatorID:      userCtx.UserID,
		CreatorCompany: req.Company,
		CuisineTypes:   req.CuisineTypes,
		MaxMembers:     req.MaxMembers,
		RestaurantName: req.RestaurantName,
		PlannedTime:    plannedTime,
	}

	plan, err := h.createPlan.Handle(r.Context(), cmd)
	if err != nil {
		h.logger.Warn("Plan creation rejected", zap.Error(err))
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"planId":    plan.ID().String(),
		"status":    plan.Status().String(),
		"createdAt": plan.CreatedAt().UTC().Format(time.RFC3339),
	})
}

// JoinPlan handles POST /plans/{planID}/join
func (h *PlanHandler) JoinPlan(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, common.StandardErrorCodes.Unauthorized, "Unauthorized")
		return
	}

	cmd := commands.JoinPlanCommand{
		PlanID: pathParam(r, "planID"),
		UserID: userCtx.UserID,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.logger.Warn("Join rejected",
			zap.String("planID", cmd.PlanID),
			zap.String("userID", cmd.UserID),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"planId": cmd.PlanID,
		"joined": true,
	})
}

// GetPlan handles GET /plans/{planID}
func (h *PlanHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetPlanQuery{
		PlanID: pathParam(r, "planID"),
	})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// ListOpenPlans handles GET /plans
func (h *PlanHandler) ListOpenPlans(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.ListOpenPlansQuery{})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}
