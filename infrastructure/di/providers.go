package di

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"

	"tablemate-backend/application/commands"
	"tablemate-backend/application/commands/bus"
	commandhandlers "tablemate-backend/application/commands/handlers"
	"tablemate-backend/application/ports"
	"tablemate-backend/application/queries"
	querybus "tablemate-backend/application/queries/bus"
	queryhandlers "tablemate-backend/application/queries/handlers"
	appservices "tablemate-backend/application/services"
	domaincfg "tablemate-backend/domain/config"
	domainservices "tablemate-backend/domain/services"
	"tablemate-backend/infrastructure/config"
	"tablemate-backend/infrastructure/messaging/eventbridge"
	"tablemate-backend/infrastructure/notifications"
	"tablemate-backend/infrastructure/persistence/dynamodb"
	"tablemate-backend/pkg/observability"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideDomainConfig supplies the matching engine's tuning parameters
func ProvideDomainConfig() *domaincfg.DomainConfig {
	return domaincfg.DefaultDomainConfig()
}

// systemClock reads the wall clock
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// ProvideClock supplies the wall clock
func ProvideClock() ports.Clock {
	return systemClock{}
}

// ProvideUserRepository creates a user repository
func ProvideUserRepository(client *awsdynamodb.Client, cfg *config.Config, domainCfg *domaincfg.DomainConfig, logger *zap.Logger) ports.UserRepository {
	return dynamodb.NewUserRepository(client, cfg.DynamoDBTable, cfg.IndexName, domainCfg, logger)
}

// ProvidePlanRepository creates a plan repository
func ProvidePlanRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.PlanRepository {
	return dynamodb.NewPlanRepository(client, cfg.DynamoDBTable, cfg.IndexName, logger)
}

// ProvideRatingRepository creates a rating repository
func ProvideRatingRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.RatingRepository {
	return dynamodb.NewRatingRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideEventBus creates an event bus
func ProvideEventBus(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventBus {
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideNotifier creates the device push channel
func ProvideNotifier(awsCfg aws.Config, cfg *config.Config, logger *zap.Logger) ports.Notifier {
	return notifications.NewPushNotifier(awsCfg, cfg.PushEndpoint, logger)
}

// ProvideMetrics creates metrics instance
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config) *observability.Metrics {
	if !cfg.EnableMetrics {
		return observability.NewMetrics("", nil)
	}
	namespace := fmt.Sprintf("TableMate/%s", cfg.Environment)
	return observability.NewMetrics(namespace, client)
}

// ProvideTracer creates the request tracer
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	return observability.NewTracer("tablemate-backend")
}

// ProvideInMemoryCache creates the in-process cache
func ProvideInMemoryCache() ports.Cache {
	return NewInMemoryCache()
}

// ProvideCompatibilityScorer creates the compatibility scorer
func ProvideCompatibilityScorer(domainCfg *domaincfg.DomainConfig) *domainservices.CompatibilityScorer {
	return domainservices.NewCompatibilityScorer(domainCfg)
}

// ProvideCodeAllocator creates the arrival code allocator
func ProvideCodeAllocator(domainCfg *domaincfg.DomainConfig) *domainservices.CodeAllocator {
	return domainservices.NewCodeAllocator(domainCfg, time.Now().UnixNano())
}

// ProvideNotificationService creates the notification fan-out service
func ProvideNotificationService(
	users ports.UserRepository,
	notifier ports.Notifier,
	domainCfg *domaincfg.DomainConfig,
	logger *zap.Logger,
) *appservices.NotificationService {
	return appservices.NewNotificationService(users, notifier, domainCfg, logger)
}

// ProvideCreatePlanHandler creates the plan creation handler. It sits outside
// the command bus because the HTTP layer needs the created plan back.
func ProvideCreatePlanHandler(
	plans ports.PlanRepository,
	eventBus ports.EventBus,
	clock ports.Clock,
	logger *zap.Logger,
) *commandhandlers.CreatePlanHandler {
	return commandhandlers.NewCreatePlanHandler(plans, eventBus, clock, logger)
}

// ProvideCommandBus creates a command bus with every handler registered
func ProvideCommandBus(
	cfg *config.Config,
	users ports.UserRepository,
	plans ports.PlanRepository,
	ratings ports.RatingRepository,
	scorer *domainservices.CompatibilityScorer,
	allocator *domainservices.CodeAllocator,
	notificationService *appservices.NotificationService,
	eventBus ports.EventBus,
	cache ports.Cache,
	clock ports.Clock,
	domainCfg *domaincfg.DomainConfig,
	tracer *observability.Tracer,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *bus.CommandBus {
	commandBus := bus.NewCommandBus()

	middlewares := []bus.Middleware{bus.LoggingMiddleware(logger)}
	if cfg.EnableTracing {
		middlewares = append(middlewares, bus.TracingMiddleware(tracer))
	}
	pipeline := bus.NewPipeline(middlewares...)

	matchHandler := commandhandlers.NewMatchPlanHandler(users, scorer, notificationService, cache, cfg.MatchCacheTTLSeconds, clock, domainCfg, metrics, logger)
	commandBus.Register(commands.MatchPlanCommand{}, pipeline.Execute(matchHandler))

	issueHandler := commandhandlers.NewIssueArrivalCodesHandler(plans, allocator, notificationService, eventBus, clock, metrics, logger)
	commandBus.Register(commands.IssueArrivalCodesCommand{}, pipeline.Execute(issueHandler))

	ratingHandler := commandhandlers.NewApplyRatingHandler(users, eventBus, clock, metrics, logger)
	commandBus.Register(commands.ApplyRatingCommand{}, pipeline.Execute(ratingHandler))

	reminderHandler := commandhandlers.NewSweepRemindersHandler(plans, notificationService, clock, domainCfg, metrics, logger)
	commandBus.Register(commands.SweepRemindersCommand{}, pipeline.Execute(reminderHandler))

	expiryHandler := commandhandlers.NewExpirePlansHandler(plans, eventBus, clock, domainCfg, metrics, logger)
	commandBus.Register(commands.ExpirePlansCommand{}, pipeline.Execute(expiryHandler))

	joinHandler := commandhandlers.NewJoinPlanHandler(plans, eventBus, clock, logger)
	commandBus.Register(commands.JoinPlanCommand{}, pipeline.Execute(joinHandler))

	submitRatingHandler := commandhandlers.NewSubmitRatingHandler(ratings, clock, logger)
	commandBus.Register(commands.SubmitRatingCommand{}, pipeline.Execute(submitRatingHandler))

	return commandBus
}

// QueryHandlerAdapter adapts typed query handlers to the generic interface
type QueryHandlerAdapter struct {
	handler func(context.Context, querybus.Query) (interface{}, error)
}

// Handle implements querybus.QueryHandler
func (a *QueryHandlerAdapter) Handle(ctx context.Context, query querybus.Query) (interface{}, error) {
	return a.handler(ctx, query)
}

// ProvideQueryBus creates a query bus with every handler registered
func ProvideQueryBus(
	users ports.UserRepository,
	plans ports.PlanRepository,
	logger *zap.Logger,
) *querybus.QueryBus {
	queryBus := querybus.NewQueryBus()

	getPlanHandler := queryhandlers.NewGetPlanHandler(plans, logger)
	queryBus.Register(queries.GetPlanQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			planQuery, ok := query.(queries.GetPlanQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return getPlanHandler.Handle(ctx, planQuery)
		},
	})

	getUserHandler := queryhandlers.NewGetUserHandler(users, logger)
	queryBus.Register(queries.GetUserQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			userQuery, ok := query.(queries.GetUserQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return getUserHandler.Handle(ctx, userQuery)
		},
	})

	listOpenHandler := queryhandlers.NewListOpenPlansHandler(plans, logger)
	queryBus.Register(queries.ListOpenPlansQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			listQuery, ok := query.(queries.ListOpenPlansQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return listOpenHandler.Handle(ctx, listQuery)
		},
	})

	return queryBus
}
