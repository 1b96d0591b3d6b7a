// Package di wires the application together. The wiring is generated by
// google/wire; see wire.go for the injector definition.
package di

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	"tablemate-backend/application/commands/bus"
	commandhandlers "tablemate-backend/application/commands/handlers"
	"tablemate-backend/application/ports"
	querybus "tablemate-backend/application/queries/bus"
	appservices "tablemate-backend/application/services"
	"tablemate-backend/infrastructure/config"
	"tablemate-backend/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config            *config.Config
	Logger            *zap.Logger
	UserRepo          ports.UserRepository
	PlanRepo          ports.PlanRepository
	RatingRepo        ports.RatingRepository
	EventBus          ports.EventBus
	Notifier          ports.Notifier
	Notifications     *appservices.NotificationService
	CreatePlanHandler *commandhandlers.CreatePlanHandler
	CommandBus        *bus.CommandBus
	QueryBus          *querybus.QueryBus
	Cache             ports.Cache
	Clock             ports.Clock
	Tracer            *observability.Tracer
	Metrics           *observability.Metrics
}

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideDomainConfig,
	ProvideClock,
	ProvideUserRepository,
	ProvidePlanRepository,
	ProvideRatingRepository,
	ProvideEventBus,
	ProvideNotifier,
	ProvideTracer,
	ProvideMetrics,
	ProvideInMemoryCache,
	ProvideCompatibilityScorer,
	ProvideCodeAllocator,
	ProvideNotificationService,
	ProvideCreatePlanHandler,
	ProvideCommandBus,
	ProvideQueryBus,
	wire.Struct(new(Container), "*"),
)
