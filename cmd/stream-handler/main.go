// The stream handler turns the table's change feed into matching engine
// triggers: plan writes drive the matcher and the arrival code issuer,
// rating inserts drive the trust aggregator. Every failure is logged and
// swallowed so a poison record can never stall the stream shard.
package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"tablemate-backend/application/commands"
	"tablemate-backend/application/commands/bus"
	"tablemate-backend/infrastructure/config"
	"tablemate-backend/infrastructure/di"
	"tablemate-backend/infrastructure/persistence/dynamodb"
)

var container *di.Container

// commandSender dispatches trigger commands. Satisfied by the container's
// command bus.
type commandSender interface {
	Send(ctx context.Context, cmd bus.Command) error
}

func init() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err = di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
}

// Handler processes one batch of stream records
func Handler(ctx context.Context, event events.DynamoDBEvent) error {
	logger := container.Logger

	for _, record := range event.Records {
		switch record.EventName {
		case string(events.DynamoDBOperationTypeInsert):
			handleInsert(ctx, container.CommandBus, record, logger)
		case string(events.DynamoDBOperationTypeModify):
			handleModify(ctx, container.CommandBus, record, logger)
		}
	}

	return nil
}

func handleInsert(ctx context.Context, sender commandSender, record events.DynamoDBEventRecord, logger *zap.Logger) {
	image := record.Change.NewImage

	switch dynamodb.StreamEntityType(image) {
	case "PLAN":
		cmd := commands.MatchPlanCommand{Plan: dynamodb.DecodePlanSnapshot(image)}
		if err := sender.Send(ctx, cmd); err != nil {
			logger.Error("Match pass failed for new plan",
				zap.String("planID", cmd.Plan.PlanID),
				zap.Error(err),
			)
		}
	case "RATING":
		cmd := dynamodb.DecodeRatingRecord(image)
		if err := sender.Send(ctx, cmd); err != nil {
			logger.Error("Trust update failed for new rating",
				zap.String("ratingID", cmd.RatingID),
				zap.Error(err),
			)
		}
	}
}

func handleModify(ctx context.Context, sender commandSender, record events.DynamoDBEventRecord, logger *zap.Logger) {
	if dynamodb.StreamEntityType(record.Change.NewImage) != "PLAN" {
		return
	}

	after := dynamodb.DecodePlanSnapshot(record.Change.NewImage)

	// Every plan update gets a matching pass, not just inserts: a member
	// leaving reopens a seat, and candidates passed over on an earlier write
	// can surface again. The handler guard skips full and non-open plans.
	matchCmd := commands.MatchPlanCommand{Plan: after}
	if err := sender.Send(ctx, matchCmd); err != nil {
		logger.Error("Match pass failed for updated plan",
			zap.String("planID", after.PlanID),
			zap.Error(err),
		)
	}

	issueCmd := commands.IssueArrivalCodesCommand{
		Before: dynamodb.DecodePlanSnapshot(record.Change.OldImage),
		After:  after,
	}
	if err := sender.Send(ctx, issueCmd); err != nil {
		logger.Error("Arrival code issuance failed",
			zap.String("planID", issueCmd.After.PlanID),
			zap.Error(err),
		)
	}
}

func main() {
	lambda.Start(Handler)
}
