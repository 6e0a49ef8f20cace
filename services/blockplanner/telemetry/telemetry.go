// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.


// Package telemetry installs the OpenTelemetry trace and meter providers
// behind the planner's spans and the /metrics endpoint.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
)

var (
	// ErrNilContext is returned when Init is called with a nil context.
	ErrNilContext = errors.New("context must not be nil")

	// ErrUnknownExporter is returned for an unsupported trace exporter.
	ErrUnknownExporter = errors.New("unknown exporter")
)

// Exporter selects where finished spans go.
type Exporter string

const (
	// ExporterNone keeps the global noop tracer.
	ExporterNone Exporter = "none"

	// ExporterStdout writes spans as indented JSON to Config.Writer.
	ExporterStdout Exporter = "stdout"

	// ExporterOTLP ships spans to an OTLP/gRPC collector.
	ExporterOTLP Exporter = "otlp"
)

// Config selects the exporters for one process.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string

	Traces       Exporter
	OTLPEndpoint string
	OTLPInsecure bool

	// Writer receives stdout spans. Nil means standard output.
	Writer io.Writer

	// Prometheus bridges OTel metrics into the default Prometheus registry,
	// next to the promauto search and planner metrics, and serves both.
	Prometheus bool
}

// Providers holds what Init installed.
type Providers struct {
	tracer  *trace.TracerProvider
	meter   *metric.MeterProvider
	metrics http.Handler
}

// Init installs the global trace and meter providers.
//
// Description:
//
//	After Init returns, otel.Tracer() and otel.Meter() report through the
//	configured exporters. With Traces set to none (or empty) and Prometheus
//	off, the global noop providers stay in place.
//
// Inputs:
//
//	ctx - Context for exporter connections. Must not be nil.
//	cfg - Exporter selection.
//
// Outputs:
//
//	*Providers - Call Shutdown on exit to flush pending spans.
//	error - ErrNilContext, ErrUnknownExporter, or an exporter failure.
//
// Thread Safety: Call once at application startup.
func Init(ctx context.Context, cfg Config) (*Providers, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}

	res := resource.NewWithAttributes(
		"",
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.ServiceVersion),
		attribute.String("deployment.environment", cfg.Environment),
	)

	p := &Providers{}
	if cfg.Traces != "" && cfg.Traces != ExporterNone {
		tp, err := newTracerProvider(ctx, cfg, res)
		if err != nil {
			return nil, fmt.Errorf("init tracer: %w", err)
		}
		otel.SetTracerProvider(tp)
		p.tracer = tp
	}

	if cfg.Prometheus {
		exporter, err := promexporter.New()
		if err != nil {
			_ = p.Shutdown(ctx)
			return nil, fmt.Errorf("init meter: %w", err)
		}
		p.meter = metric.NewMeterProvider(metric.WithResource(res), metric.WithReader(exporter))
		otel.SetMeterProvider(p.meter)
		p.metrics = promhttp.Handler()
	}

	return p, nil
}

func newTracerProvider(ctx context.Context, cfg Config, res *resource.Resource) (*trace.TracerProvider, error) {
	var exporter trace.SpanExporter
	var err error

	switch cfg.Traces {
	case ExporterOTLP:
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint)}
		if cfg.OTLPInsecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		exporter, err = otlptracegrpc.New(ctx, opts...)
	case ExporterStdout:
		opts := []stdouttrace.Option{stdouttrace.WithPrettyPrint()}
		if cfg.Writer != nil {
			opts = append(opts, stdouttrace.WithWriter(cfg.Writer))
		}
		exporter, err = stdouttrace.New(opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownExporter, cfg.Traces)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s exporter: %w", cfg.Traces, err)
	}

	return trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
		trace.WithSampler(trace.AlwaysSample()),
	), nil
}

// MetricsHandler returns the /metrics handler, or nil when Prometheus is
// off.
func (p *Providers) MetricsHandler() http.Handler {
	return p.metrics
}

// Shutdown flushes and stops whatever Init installed.
func (p *Providers) Shutdown(ctx context.Context) error {
	var errs []error
	if p.tracer != nil {
		errs = append(errs, p.tracer.Shutdown(ctx))
	}
	if p.meter != nil {
		errs = append(errs, p.meter.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
