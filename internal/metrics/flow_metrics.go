package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/vijayasainandipati/Agri-Ai-2/pkg/flow"
)

var meter = otel.Meter("agriai-flow-metrics")

// FlowMetrics собирает метрики исполнения flow и вызовов инструментов.
// Реализует flow.Observer.
type FlowMetrics struct {
	flowRunsCounter     metric.Int64Counter
	flowFailedCounter   metric.Int64Counter
	flowDurationHist    metric.Float64Histogram
	toolCallsCounter    metric.Int64Counter
	toolFailedCounter   metric.Int64Counter
	applicationsCounter metric.Int64Counter
}

var _ flow.Observer = (*FlowMetrics)(nil)

// NewFlowMetrics регистрирует инструменты на глобальном MeterProvider.
func NewFlowMetrics() (*FlowMetrics, error) {
	flowRunsCounter, err := meter.Int64Counter(
		"agriai.flow.runs",
		metric.WithDescription("Total number of flow executions"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}

	flowFailedCounter, err := meter.Int64Counter(
		"agriai.flow.failed",
		metric.WithDescription("Total number of failed flow executions"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}

	flowDurationHist, err := meter.Float64Histogram(
		"agriai.flow.duration",
		metric.WithDescription("Duration of flow execution in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	toolCallsCounter, err := meter.Int64Counter(
		"agriai.tool.calls",
		metric.WithDescription("Total number of tool invocations"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	toolFailedCounter, err := meter.Int64Counter(
		"agriai.tool.failed",
		metric.WithDescription("Tool invocations that fell back to the default result"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	applicationsCounter, err := meter.Int64Counter(
		"agriai.applications.submitted",
		metric.WithDescription("Scheme applications by outcome"),
		metric.WithUnit("{application}"),
	)
	if err != nil {
		return nil, err
	}

	return &FlowMetrics{
		flowRunsCounter:     flowRunsCounter,
		flowFailedCounter:   flowFailedCounter,
		flowDurationHist:    flowDurationHist,
		toolCallsCounter:    toolCallsCounter,
		toolFailedCounter:   toolFailedCounter,
		applicationsCounter: applicationsCounter,
	}, nil
}

// FlowFinished записывает завершение flow.
func (m *FlowMetrics) FlowFinished(ctx context.Context, flowName string, duration time.Duration, err error) {
	status := "completed"
	if err != nil {
		status = "failed"
	}

	m.flowRunsCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("flow.name", flowName),
			attribute.String("status", status),
		),
	)
	m.flowDurationHist.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("flow.name", flowName),
			attribute.String("status", status),
		),
	)

	if err != nil {
		m.flowFailedCounter.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("flow.name", flowName),
				attribute.String("error.kind", flow.Kind(err)),
			),
		)
	}
}

// ToolInvoked записывает вызов инструмента.
func (m *FlowMetrics) ToolInvoked(ctx context.Context, flowName, tool string, err error) {
	attrs := metric.WithAttributes(
		attribute.String("flow.name", flowName),
		attribute.String("tool.name", tool),
	)
	m.toolCallsCounter.Add(ctx, 1, attrs)
	if err != nil {
		m.toolFailedCounter.Add(ctx, 1, attrs)
	}
}

// ApplicationSubmitted записывает результат подачи заявки.
func (m *FlowMetrics) ApplicationSubmitted(ctx context.Context, schemeID string, err error) {
	status := "submitted"
	if err != nil {
		status = flow.Kind(err)
	}
	m.applicationsCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("scheme.id", schemeID),
			attribute.String("status", status),
		),
	)
}
