package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const (
	exportTimeout  = 3 * time.Second
	metricInterval = 5 * time.Second
)

var ErrNoEndpoint = errors.New("otlp endpoint not configured")

type protocol string

const (
	protocolGrpc protocol = "grpc"
	protocolHttp protocol = "http"
)

// endpoint picks grpc when both endpoints are set.
func (c OtlpConnConfig) endpoint() (protocol, string, error) {
	switch {
	case c.GrpcEndpoint != "":
		return protocolGrpc, c.GrpcEndpoint, nil
	case c.HttpEndpoint != "":
		return protocolHttp, c.HttpEndpoint, nil
	default:
		return "", "", ErrNoEndpoint
	}
}

func newResource(serviceName string) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
}

func newTraceProvider(ctx context.Context, r *resource.Resource, config Config) (*trace.TracerProvider, error) {
	proto, url, err := config.Otlp.Traces.endpoint()
	if err != nil {
		return nil, fmt.Errorf("traces: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, exportTimeout)
	defer cancel()

	var exporter trace.SpanExporter
	headers := config.Otlp.Traces.Headers
	if proto == protocolGrpc {
		exporter, err = otlptracegrpc.New(ctx, otlptracegrpc.WithEndpointURL(url), otlptracegrpc.WithHeaders(headers))
	} else {
		exporter, err = otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(url), otlptracehttp.WithHeaders(headers))
	}
	if err != nil {
		return nil, fmt.Errorf("trace exporter: %w", err)
	}
	slog.Info("trace exporter initialized", "protocol", proto, "endpoint", url, "headers", len(headers) > 0)

	return trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(r),
	), nil
}

func newMetricProvider(ctx context.Context, r *resource.Resource, config Config) (*metric.MeterProvider, error) {
	proto, url, err := config.Otlp.Metrics.endpoint()
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, exportTimeout)
	defer cancel()

	var exporter metric.Exporter
	headers := config.Otlp.Metrics.Headers
	if proto == protocolGrpc {
		exporter, err = otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithEndpointURL(url), otlpmetricgrpc.WithHeaders(headers))
	} else {
		exporter, err = otlpmetrichttp.New(ctx, otlpmetrichttp.WithEndpointURL(url), otlpmetrichttp.WithHeaders(headers))
	}
	if err != nil {
		return nil, fmt.Errorf("metric exporter: %w", err)
	}
	slog.Info("metric exporter initialized", "protocol", proto, "endpoint", url, "headers", len(headers) > 0)

	return metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(exporter, metric.WithInterval(metricInterval))),
		metric.WithResource(r),
	), nil
}
