// Package telemetry traces generation runs with OpenTelemetry. Tracing is off
// until Setup installs an exporter; until then every tracer is a no-op.
package telemetry

import (
	"context"
	"os"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	serviceName    = "dungeonforge"
	serviceVersion = "0.1.0"

	// EndpointEnv names the collector; tracing is requested when it is set.
	EndpointEnv = "OTEL_EXPORTER_OTLP_ENDPOINT"
)

var exporting atomic.Bool

// Requested reports whether the environment names a collector.
func Requested() bool {
	return os.Getenv(EndpointEnv) != ""
}

// Enabled reports whether Setup has installed an exporting provider that has
// not been shut down.
func Enabled() bool {
	return exporting.Load()
}

// Setup installs a batching OTLP/HTTP tracer provider configured from the
// standard OTEL_* variables. The returned shutdown flushes pending spans and
// switches Tracer back to no-op.
func Setup(ctx context.Context) (shutdown func(context.Context) error, err error) {
	exporter, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("service.version", serviceVersion),
		),
		resource.WithHost(),
		resource.WithOSType(),
		resource.WithProcessRuntimeVersion(),
		resource.WithTelemetrySDK(),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	exporting.Store(true)

	return func(ctx context.Context) error {
		exporting.Store(false)
		return tp.Shutdown(ctx)
	}, nil
}

// Tracer returns the tracer for a component: the global provider's while
// Setup is in effect, NoopTracer otherwise.
func Tracer(component string) trace.Tracer {
	if !Enabled() {
		return NoopTracer()
	}
	return otel.GetTracerProvider().Tracer(serviceName+"/"+component,
		trace.WithInstrumentationVersion(serviceVersion))
}

// NoopTracer returns a tracer whose spans record nothing.
func NoopTracer() trace.Tracer {
	return noop.NewTracerProvider().Tracer(serviceName)
}
