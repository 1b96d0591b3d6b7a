package rest

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"tablemate-backend/infrastructure/di"
	"tablemate-backend/interfaces/http/rest/handlers"
	"tablemate-backend/interfaces/http/rest/middleware"
	v1 "tablemate-backend/interfaces/http/rest/v1"
	"tablemate-backend/pkg/auth"
	"tablemate-backend/pkg/utils"
)

// Router creates and configures the HTTP router
type Router struct {
	container *di.Container
	logger    *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(container *di.Container) *Router {
	return &Router{
		container: container,
		logger:    container.Logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.container.Config.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "https://*.tablemate.app"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health checks
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	validator, err := auth.NewJWTValidator(auth.JWTConfig{
		SigningMethod: "HS256",
		SecretKey:     rt.container.Config.JWTSecret,
		Issuer:        rt.container.Config.JWTIssuer,
		Audience:      []string{"tablemate-api"},
	})
	if err != nil {
		rt.logger.Error("JWT validator unavailable, API routes will reject all requests", zap.Error(err))
		router.Route("/api/v2", func(r chi.Router) {
			r.HandleFunc("/*", func(w http.ResponseWriter, req *http.Request) {
				http.Error(w, "authentication unavailable", http.StatusServiceUnavailable)
			})
		})
		return router
	}

	planHandler := handlers.NewPlanHandler(
		rt.container.CreatePlanHandler,
		rt.container.CommandBus,
		rt.container.QueryBus,
		rt.logger,
	)
	userHandler := handlers.NewUserHandler(rt.container.QueryBus, rt.logger)
	ratingHandler := handlers.NewRatingHandler(rt.container.CommandBus, rt.logger)

	// API v2 routes (current)
	router.Route("/api/v2", func(r chi.Router) {
		r.Use(middleware.Authenticate(validator, rt.logger))

		r.Route("/plans", func(r chi.Router) {
			r.Post("/", planHandler.CreatePlan)
			r.Get("/", planHandler.ListOpenPlans)
			r.Get("/{planID}", planHandler.GetPlan)
			r.Post("/{planID}/join", planHandler.JoinPlan)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/me", userHandler.GetMe)
			r.Get("/{userID}", userHandler.GetUser)
		})

		r.Post("/ratings", ratingHandler.SubmitRating)
	})

	// Legacy v1 surface, still served for unmigrated clients
	router.Mount("/api/v1", v1.NewRouter(planHandler, userHandler, ratingHandler, validator, rt.logger))

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","time":%q}`, utils.NowRFC3339())
}

// readinessCheck handles readiness probe requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ready","time":%q}`, utils.NowRFC3339())
}
