// Package metrics publishes evaluation cycle metrics to CloudWatch.
package metrics

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"lightwatch/internal/types"
)

// Metric names emitted once per cycle.
const (
	MetricRulesChecked     = "RulesChecked"
	MetricAlertsTriggered  = "AlertsTriggered"
	MetricEvaluationErrors = "EvaluationErrors"
	MetricCycleDuration    = "CycleDurationMs"

	DimEnvironment = "Environment"

	DefaultNamespace = "Lightwatch/Evaluator"
)

// CloudWatchClient abstracts PutMetricData for testability.
type CloudWatchClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CyclePublisher implements alerts.MetricPublisher.
type CyclePublisher struct {
	client      CloudWatchClient
	namespace   string
	environment string
}

// NewCyclePublisher creates a publisher. An empty namespace uses
// DefaultNamespace; an empty environment omits the dimension.
func NewCyclePublisher(client CloudWatchClient, namespace, environment string) *CyclePublisher {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &CyclePublisher{client: client, namespace: namespace, environment: environment}
}

// PublishCycle sends the cycle counters and duration in a single
// PutMetricData call, timestamped at the cycle's finish.
func (p *CyclePublisher) PublishCycle(ctx context.Context, summary *types.CycleSummary) error {
	var dims []cwtypes.Dimension
	if p.environment != "" {
		dims = []cwtypes.Dimension{{Name: aws.String(DimEnvironment), Value: aws.String(p.environment)}}
	}
	datum := func(name string, value float64, unit cwtypes.StandardUnit) cwtypes.MetricDatum {
		return cwtypes.MetricDatum{
			MetricName: aws.String(name),
			Value:      aws.Float64(value),
			Unit:       unit,
			Timestamp:  aws.Time(summary.FinishedAt),
			Dimensions: dims,
		}
	}

	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(p.namespace),
		MetricData: []cwtypes.MetricDatum{
			datum(MetricRulesChecked, float64(summary.Checked), cwtypes.StandardUnitCount),
			datum(MetricAlertsTriggered, float64(summary.Triggered), cwtypes.StandardUnitCount),
			datum(MetricEvaluationErrors, float64(summary.Errors), cwtypes.StandardUnitCount),
			datum(MetricCycleDuration, float64(summary.Duration().Milliseconds()), cwtypes.StandardUnitMilliseconds),
		},
	}
	if _, err := p.client.PutMetricData(ctx, input); err != nil {
		return fmt.Errorf("put cycle metrics: %w", err)
	}
	return nil
}
