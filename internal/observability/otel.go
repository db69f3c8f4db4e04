package observability

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.39.0"
)

// TracerConfig describes the process being traced.
type TracerConfig struct {
	Service     string
	Version     string
	Mode        string
	SampleRatio float64
}

// sampler samples root spans at the configured ratio and follows the
// parent otherwise. Ratios outside (0,1) sample everything.
func (c TracerConfig) sampler() sdktrace.Sampler {
	root := sdktrace.AlwaysSample()
	if c.SampleRatio > 0 && c.SampleRatio < 1 {
		root = sdktrace.TraceIDRatioBased(c.SampleRatio)
	}
	return sdktrace.ParentBased(root)
}

func (c TracerConfig) resource() (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(c.Service),
		semconv.ServiceVersion(c.Version),
		semconv.ServiceNamespace("holdingpen"),
	}
	if c.Mode != "" {
		attrs = append(attrs, semconv.DeploymentEnvironmentName(c.Mode))
	}
	return resource.Merge(resource.Default(), resource.NewWithAttributes(semconv.SchemaURL, attrs...))
}

// InitTracer installs a global trace provider exporting over OTLP HTTP.
// The exporter honours the standard OTEL_EXPORTER_OTLP_* variables.
// The returned function flushes and stops the provider.
func InitTracer(ctx context.Context, cfg TracerConfig) (func(context.Context) error, error) {
	exporter, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("otel: create exporter: %w", err)
	}

	res, err := cfg.resource()
	if err != nil {
		return nil, fmt.Errorf("otel: create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(cfg.sampler()),
	)
	otel.SetTracerProvider(tp)

	slog.Info("tracing enabled", "service", cfg.Service, "version", cfg.Version, "sample_ratio", cfg.SampleRatio)
	return tp.Shutdown, nil
}
