// Tencent is pleased to support the open source community by making trpc-mcp-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-mcp-go is licensed under the Apache License Version 2.0.

// Package observability builds the OpenTelemetry tracer and meter the
// runtime instruments its request dispatch and task lifecycle with.
package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// ExporterKind selects where spans and metrics are sent.
type ExporterKind string

const (
	// ExporterStdout writes spans and metrics to stdout; suitable for local
	// development and tests.
	ExporterStdout ExporterKind = "stdout"
	// ExporterOTLP exports via OTLP/gRPC to a collector.
	ExporterOTLP ExporterKind = "otlp"
)

// Config controls how Setup builds the tracer and meter providers.
type Config struct {
	ServiceName  string
	Exporter     ExporterKind
	OTLPEndpoint string
}

// DefaultConfig returns a stdout-exporting Config for serviceName.
func DefaultConfig(serviceName string) Config {
	return Config{
		ServiceName:  serviceName,
		Exporter:     ExporterStdout,
		OTLPEndpoint: "localhost:4317",
	}
}

// Provider bundles the tracer and meter instrumented code reaches for, plus
// the request/task instruments built on top of the meter.
type Provider struct {
	Tracer trace.Tracer
	Meter  metric.Meter

	requestCounter metric.Int64Counter
	errorCounter   metric.Int64Counter
	latencyHist    metric.Float64Histogram
	inFlightGauge  metric.Int64UpDownCounter
	taskStatusCnt  metric.Int64Counter

	shutdown func(context.Context) error
}

// Setup builds a Provider for cfg, installing it as the process-global otel
// tracer/meter provider as a side effect.
func Setup(ctx context.Context, cfg Config) (*Provider, error) {
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceNameKey.String(cfg.ServiceName)))
	if err != nil {
		return nil, fmt.Errorf("observability: build resource: %w", err)
	}

	traceShutdown, err := setupTraceProvider(ctx, res, cfg)
	if err != nil {
		return nil, err
	}
	metricShutdown, err := setupMeterProvider(ctx, res, cfg)
	if err != nil {
		return nil, err
	}

	const instrumentationName = "github.com/mcprt/mcpcore"
	meter := otel.Meter(instrumentationName)

	requestCounter, _ := meter.Int64Counter("mcp_requests_total", metric.WithDescription("total MCP requests dispatched"))
	errorCounter, _ := meter.Int64Counter("mcp_errors_total", metric.WithDescription("total MCP requests that ended in an error"))
	latencyHist, _ := meter.Float64Histogram("mcp_request_duration_ms", metric.WithDescription("MCP request latency"), metric.WithUnit("ms"))
	inFlightGauge, _ := meter.Int64UpDownCounter("mcp_requests_in_flight", metric.WithDescription("MCP requests currently in flight"))
	taskStatusCnt, _ := meter.Int64Counter("mcp_tasks_status_total", metric.WithDescription("task status transitions by status"))

	return &Provider{
		Tracer:         otel.Tracer(instrumentationName),
		Meter:          meter,
		requestCounter: requestCounter,
		errorCounter:   errorCounter,
		latencyHist:    latencyHist,
		inFlightGauge:  inFlightGauge,
		taskStatusCnt:  taskStatusCnt,
		shutdown: func(ctx context.Context) error {
			if err := traceShutdown(ctx); err != nil {
				return err
			}
			return metricShutdown(ctx)
		},
	}, nil
}

// Shutdown flushes and stops the underlying exporters.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.shutdown == nil {
		return nil
	}
	return p.shutdown(ctx)
}

// RecordRequest increments the total request counter for method.
func (p *Provider) RecordRequest(ctx context.Context, method string) {
	p.requestCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("method", method)))
}

// RecordError increments the error counter for method and JSON-RPC code.
func (p *Provider) RecordError(ctx context.Context, method string, code int) {
	p.errorCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.Int("code", code),
	))
}

// RecordLatency records a request's observed latency in milliseconds.
func (p *Provider) RecordLatency(ctx context.Context, method string, latencyMs float64) {
	p.latencyHist.Record(ctx, latencyMs, metric.WithAttributes(attribute.String("method", method)))
}

// RecordInFlight adjusts the in-flight request gauge for method by count
// (+1 on entry, -1 on exit).
func (p *Provider) RecordInFlight(ctx context.Context, method string, count int64) {
	p.inFlightGauge.Add(ctx, count, metric.WithAttributes(attribute.String("method", method)))
}

// RecordTaskStatus increments the task status transition counter for status.
func (p *Provider) RecordTaskStatus(ctx context.Context, status string) {
	p.taskStatusCnt.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

func dialOTLP(endpoint string) (*grpc.ClientConn, error) {
	return grpc.NewClient(endpoint, grpc.WithTransportCredentials(insecure.NewCredentials()))
}

func setupTraceProvider(ctx context.Context, res *resource.Resource, cfg Config) (func(context.Context) error, error) {
	var exporter sdktrace.SpanExporter
	var err error

	switch cfg.Exporter {
	case ExporterOTLP:
		var conn *grpc.ClientConn
		conn, err = dialOTLP(cfg.OTLPEndpoint)
		if err != nil {
			return nil, fmt.Errorf("observability: dial otlp: %w", err)
		}
		exporter, err = otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	default:
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	}
	if err != nil {
		return nil, fmt.Errorf("observability: build trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

func setupMeterProvider(ctx context.Context, res *resource.Resource, cfg Config) (func(context.Context) error, error) {
	var exporter sdkmetric.Exporter
	var err error

	switch cfg.Exporter {
	case ExporterOTLP:
		var conn *grpc.ClientConn
		conn, err = dialOTLP(cfg.OTLPEndpoint)
		if err != nil {
			return nil, fmt.Errorf("observability: dial otlp: %w", err)
		}
		exporter, err = otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithGRPCConn(conn))
	default:
		exporter, err = stdoutmetric.New(stdoutmetric.WithPrettyPrint())
	}
	if err != nil {
		return nil, fmt.Errorf("observability: build metric exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)
	return mp.Shutdown, nil
}
