// Package telemetry exports simulation spans over OTLP/HTTP.
//
// Nothing is exported unless Setup runs; until then Tracer hands out the
// global no-op tracers, so instrumented code never checks whether tracing
// is on.
package telemetry

import (
	"context"
	"os"
	"runtime"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const (
	serviceName    = "terrainwalk"
	serviceVersion = "0.1.0"
	tracerPrefix   = serviceName + "/"
)

// Setup installs a batching tracer provider whose spans carry the run id.
// Endpoint and headers come from the OTEL_EXPORTER_OTLP_* variables.
// The returned function flushes pending spans and must run before exit.
func Setup(ctx context.Context, runID string) (shutdown func(context.Context) error, err error) {
	exporter, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx, resource.WithAttributes(runAttributes(runID)...))
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	return tp.Shutdown, nil
}

// runAttributes describes one terrainwalk process. resource.Default is not
// merged in; its schema URL can disagree with the SDK's.
func runAttributes(runID string) []attribute.KeyValue {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return []attribute.KeyValue{
		attribute.String("service.name", serviceName),
		attribute.String("service.version", serviceVersion),
		attribute.String("service.instance.id", runID),
		attribute.String("terrainwalk.run_id", runID),
		attribute.String("host.name", host),
		attribute.String("os.type", runtime.GOOS),
		attribute.String("process.runtime.name", "go"),
		attribute.String("process.runtime.version", runtime.Version()),
	}
}

// Tracer returns the tracer for one component, e.g. "world" or "path".
func Tracer(component string) trace.Tracer {
	return otel.GetTracerProvider().Tracer(tracerPrefix + component)
}

// Enabled reports whether an OTLP endpoint is configured.
func Enabled() bool {
	return os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != "" ||
		os.Getenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT") != ""
}
