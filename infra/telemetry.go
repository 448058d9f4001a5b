package infra

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/tnqbao/gau-object-gallery/config"
)

type TelemetryClient struct {
	shutdownFuncs []func(context.Context) error
}

// InitTelemetry installs the global tracer, meter and logger providers.
// With OTLP disabled the otel no-op globals stay in place.
func InitTelemetry(cfg *config.EnvConfig) *TelemetryClient {
	client := &TelemetryClient{}
	if !cfg.Grafana.Enabled {
		log.Println("OTLP export disabled")
		return client
	}

	ctx := context.Background()
	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", cfg.Grafana.ServiceName),
			attribute.String("deployment.environment", cfg.Environment.Mode),
		),
		resource.WithHost(),
		resource.WithProcess(),
	)
	if err != nil {
		panic(fmt.Sprintf("Failed to build telemetry resource: %v", err))
	}

	endpoint := cfg.Grafana.OTLPEndpoint

	traceExporter, err := otlptrace.New(ctx, otlptracehttp.NewClient(
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	))
	if err != nil {
		panic(fmt.Sprintf("Failed to create OTLP trace exporter: %v", err))
	}
	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	client.shutdownFuncs = append(client.shutdownFuncs, tracerProvider.Shutdown)

	metricExporter, err := otlpmetrichttp.New(ctx,
		otlpmetrichttp.WithEndpoint(endpoint),
		otlpmetrichttp.WithInsecure(),
	)
	if err != nil {
		panic(fmt.Sprintf("Failed to create OTLP metric exporter: %v", err))
	}
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(15*time.Second))),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(meterProvider)
	client.shutdownFuncs = append(client.shutdownFuncs, meterProvider.Shutdown)

	logExporter, err := otlploghttp.New(ctx,
		otlploghttp.WithEndpoint(endpoint),
		otlploghttp.WithInsecure(),
	)
	if err != nil {
		panic(fmt.Sprintf("Failed to create OTLP log exporter: %v", err))
	}
	loggerProvider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
		sdklog.WithResource(res),
	)
	global.SetLoggerProvider(loggerProvider)
	client.shutdownFuncs = append(client.shutdownFuncs, loggerProvider.Shutdown)

	if err := runtime.Start(runtime.WithMinimumReadMemStatsInterval(time.Second)); err != nil {
		log.Printf("Warning: failed to start runtime metrics: %v", err)
	}

	log.Println("OTLP exporters configured for", endpoint)
	return client
}

// Shutdown flushes and stops every provider, newest first.
func (t *TelemetryClient) Shutdown(ctx context.Context) error {
	var errs []error
	for i := len(t.shutdownFuncs) - 1; i >= 0; i-- {
		if err := t.shutdownFuncs[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	t.shutdownFuncs = nil
	return errors.Join(errs...)
}
