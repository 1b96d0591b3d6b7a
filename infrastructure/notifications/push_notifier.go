// Package notifications delivers push messages to member devices over the
// API Gateway Management API. A device token is the connection ID the client
// registered on its profile.
package notifications

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi"
	apigwtypes "github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi/types"
	"go.uber.org/zap"

	"tablemate-backend/application/ports"
	pkgerrors "tablemate-backend/pkg/errors"
)

// pushMessage is the JSON payload posted to the device connection
type pushMessage struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// PushNotifier implements ports.Notifier using the API Gateway Management API
type PushNotifier struct {
	client *apigatewaymanagementapi.Client
	logger *zap.Logger
}

// NewPushNotifier creates a push notifier posting to the given endpoint
func NewPushNotifier(awsConfig aws.Config, endpoint string, logger *zap.Logger) ports.Notifier {
	client := apigatewaymanagementapi.NewFromConfig(awsConfig, func(o *apigatewaymanagementapi.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return &PushNotifier{client: client, logger: logger}
}

// Send posts one message to one device connection. A gone connection means
// the device dropped off; that is reported as delivery failure, not as a
// channel fault.
func (n *PushNotifier) Send(ctx context.Context, deviceToken, title, body string, data map[string]string) error {
	payload, err := json.Marshal(pushMessage{Title: title, Body: body, Data: data})
	if err != nil {
		return fmt.Errorf("failed to marshal push message: %w", err)
	}

	_, err = n.client.PostToConnection(ctx, &apigatewaymanagementapi.PostToConnectionInput{
		ConnectionId: aws.String(deviceToken),
		Data:         payload,
	})
	if err != nil {
		var gone *apigwtypes.GoneException
		if stderrors.As(err, &gone) {
			n.logger.Debug("Device connection is gone", zap.String("deviceToken", deviceToken))
			return pkgerrors.NewExternalError("device connection is gone").WithCause(err)
		}
		return pkgerrors.NewExternalError("failed to post push message").WithCause(err)
	}

	return nil
}
