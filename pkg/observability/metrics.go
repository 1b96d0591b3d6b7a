package observability

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// Metrics publishes operational counters to CloudWatch.
// Emission is best-effort: metric delivery must never fail a handler.
type Metrics struct {
	namespace string
	client    *cloudwatch.Client
}

// NewMetrics creates a metrics publisher for the given namespace
func NewMetrics(namespace string, client *cloudwatch.Client) *Metrics {
	return &Metrics{
		namespace: namespace,
		client:    client,
	}
}

// Count emits a counter sample. Safe to call on a nil receiver so wiring
// metrics stays optional in tests and local runs.
func (m *Metrics) Count(ctx context.Context, name string, value float64) {
	if m == nil || m.client == nil {
		return
	}

	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(m.namespace),
		MetricData: []types.MetricDatum{
			{
				MetricName: aws.String(name),
				Value:      aws.Float64(value),
				Unit:       types.StandardUnitCount,
			},
		},
	}

	// Fire and forget; a dropped metric is not worth failing a trigger over.
	_, _ = m.client.PutMetricData(ctx, input)
}

// Metric names emitted by the engine
const (
	MetricRecommendationsSent = "RecommendationsSent"
	MetricArrivalCodesIssued  = "ArrivalCodesIssued"
	MetricRemindersSent       = "RemindersSent"
	MetricPlansExpired        = "PlansExpired"
	MetricTrustUpdates        = "TrustUpdates"
)
