// Package metrics — OpenTelemetry-метрики и трассировка сервиса.
package metrics

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/trace"
)

// ShutdownFunc сбрасывает буферы экспортёра.
type ShutdownFunc func(context.Context) error

// InitTracing устанавливает глобальный TracerProvider с экспортом в w.
// При w == nil трассировка остаётся no-op.
func InitTracing(w io.Writer) (ShutdownFunc, error) {
	if w == nil {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(w),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout exporter: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}
