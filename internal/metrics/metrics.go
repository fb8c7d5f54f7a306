// Package metrics publishes reconciliation counters to CloudWatch. All
// publishing is best effort: a metrics failure must never affect webhook
// responses.
package metrics

import (
	"context"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"

	"github.com/coachden/coachden/internal/awsx"
)

const metricName = "WebhookEventsProcessed"

// Publisher pushes per-event-type counters.
type Publisher struct {
	cw        awsx.CloudWatchAPI
	namespace string
	log       *zap.Logger
	nowFunc   func() time.Time
}

// NewPublisher returns a Publisher for the given namespace.
func NewPublisher(cw awsx.CloudWatchAPI, namespace string, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{
		cw:        cw,
		namespace: namespace,
		log:       log.Named("metrics"),
		nowFunc:   time.Now,
	}
}

// EventProcessed counts one reconciled event, dimensioned by type and result.
func (p *Publisher) EventProcessed(ctx context.Context, eventType string, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}

	_, err := p.cw.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: sdkaws.String(p.namespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: sdkaws.String(metricName),
				Timestamp:  sdkaws.Time(p.nowFunc()),
				Value:      sdkaws.Float64(1),
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: []cwtypes.Dimension{
					{Name: sdkaws.String("event_type"), Value: sdkaws.String(eventType)},
					{Name: sdkaws.String("result"), Value: sdkaws.String(result)},
				},
			},
		},
	})
	if err != nil {
		p.log.Warn("could not publish metric",
			zap.String("event_type", eventType),
			zap.Error(err))
	}
}
