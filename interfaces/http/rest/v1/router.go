// Package v1 keeps the original API surface alive for clients that have not
// migrated to /api/v2. It serves the same handlers through gorilla/mux.
package v1

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"tablemate-backend/interfaces/http/rest/handlers"
	"tablemate-backend/interfaces/http/rest/middleware"
	"tablemate-backend/pkg/auth"
)

// NewRouter creates the legacy v1 API router
func NewRouter(
	planHandler *handlers.PlanHandler,
	userHandler *handlers.UserHandler,
	ratingHandler *handlers.RatingHandler,
	validator *auth.JWTValidator,
	logger *zap.Logger,
) *mux.Router {
	router := mux.NewRouter()
	v1 := router.PathPrefix("/api/v1").Subrouter()

	v1.Use(mux.MiddlewareFunc(middleware.Authenticate(validator, logger)))

	// Plan endpoints
	v1.HandleFunc("/plans", planHandler.CreatePlan).Methods("POST")
	v1.HandleFunc("/plans", planHandler.ListOpenPlans).Methods("GET")
	v1.HandleFunc("/plans/{planID}", planHandler.GetPlan).Methods("GET")
	v1.HandleFunc("/plans/{planID}/join", planHandler.JoinPlan).Methods("POST")

	// User endpoints
	v1.HandleFunc("/users/me", userHandler.GetMe).Methods("GET")
	v1.HandleFunc("/users/{userID}", userHandler.GetUser).Methods("GET")

	// Rating endpoints
	v1.HandleFunc("/ratings", ratingHandler.SubmitRating).Methods("POST")

	// Health check
	router.HandleFunc("/api/v1/health", healthCheck).Methods("GET")

	return router
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
