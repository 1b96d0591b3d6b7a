// The sweep handler runs the scheduled passes. EventBridge rules invoke it
// with a detail type selecting the reminder sweep or the expiry sweep.
package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"tablemate-backend/application/commands"
	"tablemate-backend/infrastructure/config"
	"tablemate-backend/infrastructure/di"
)

// Detail types wired to the EventBridge scheduled rules
const (
	detailTypeReminderSweep = "reminder.sweep"
	detailTypeExpirySweep   = "expiry.sweep"
)

var container *di.Container

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

// Handler dispatches one scheduled invocation to its sweep
func Handler(ctx context.Context, event events.CloudWatchEvent) error {
	logger := container.Logger

	switch event.DetailType {
	case detailTypeReminderSweep:
		if err := container.CommandBus.Send(ctx, commands.SweepRemindersCommand{}); err != nil {
			logger.Error("Reminder sweep failed", zap.Error(err))
		}
	case detailTypeExpirySweep:
		if err := container.CommandBus.Send(ctx, commands.ExpirePlansCommand{}); err != nil {
			logger.Error("Expiry sweep failed", zap.Error(err))
		}
	default:
		logger.Warn("Unknown sweep detail type", zap.String("detailType", event.DetailType))
	}

	return nil
}

func main() {
	lambda.Start(Handler)
}
