package main

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/AntonStoeckl/lockbench/lockbench"
	"github.com/AntonStoeckl/lockbench/lockbench/oteladapters"
)

const (
	serviceName    = "lockbench"
	serviceVersion = "dev"

	instrumentationName = "github.com/AntonStoeckl/lockbench"
	metricsInterval     = 5 * time.Second
	shutdownTimeout     = 5 * time.Second
)

// observabilityProviders holds the OpenTelemetry providers exporting to an OTLP gRPC endpoint.
type observabilityProviders struct {
	tracerProvider *trace.TracerProvider
	meterProvider  *metric.MeterProvider
	loggerProvider *sdklog.LoggerProvider
}

// newObservabilityProviders sets up trace, metric and log export and registers the providers globally.
func newObservabilityProviders(ctx context.Context, endpoint string) (*observabilityProviders, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(serviceVersion),
		),
	)
	if err != nil {
		return nil, err
	}

	traceExporter, err := otlptracegrpc.New(
		ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	tracerProvider := trace.NewTracerProvider(
		trace.WithBatcher(traceExporter),
		trace.WithResource(res),
	)

	metricExporter, err := otlpmetricgrpc.New(
		ctx,
		otlpmetricgrpc.WithEndpoint(endpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, errors.Join(err, tracerProvider.Shutdown(ctx))
	}

	meterProvider := metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(metricExporter, metric.WithInterval(metricsInterval))),
		metric.WithResource(res),
	)

	logExporter, err := otlploggrpc.New(
		ctx,
		otlploggrpc.WithEndpoint(endpoint),
		otlploggrpc.WithInsecure(),
	)
	if err != nil {
		return nil, errors.Join(err, tracerProvider.Shutdown(ctx), meterProvider.Shutdown(ctx))
	}

	loggerProvider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
		sdklog.WithResource(res),
	)

	otel.SetTracerProvider(tracerProvider)
	otel.SetMeterProvider(meterProvider)
	global.SetLoggerProvider(loggerProvider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return &observabilityProviders{
		tracerProvider: tracerProvider,
		meterProvider:  meterProvider,
		loggerProvider: loggerProvider,
	}, nil
}

// coordinatorOptions wires the providers into a Coordinator.
// Log records are exported through the slog bridge, correlated with the run span.
func (p *observabilityProviders) coordinatorOptions() []lockbench.Option {
	return []lockbench.Option{
		lockbench.WithContextualLogger(oteladapters.NewSlogBridgeLogger(serviceName)),
		lockbench.WithMetrics(oteladapters.NewMetricsCollector(p.meterProvider.Meter(instrumentationName))),
		lockbench.WithTracing(oteladapters.NewTracingCollector(p.tracerProvider.Tracer(instrumentationName))),
	}
}

// shutdown flushes and stops all providers.
func (p *observabilityProviders) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return errors.Join(
		p.tracerProvider.Shutdown(ctx),
		p.meterProvider.Shutdown(ctx),
		p.loggerProvider.Shutdown(ctx),
	)
}
