// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package planner

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/AleutianAI/blockplanner/services/blockplanner/logic"
	"github.com/AleutianAI/blockplanner/services/blockplanner/world"
)

const tracerName = "blockplanner.planner"

// Tracer provides OpenTelemetry tracing for planning calls.
//
// Thread Safety: Safe for concurrent use.
type Tracer struct {
	tracer  trace.Tracer
	logger  *slog.Logger
	enabled bool
}

// NewTracer creates a new tracer.
//
// Inputs:
//   - logger: Logger for structured logging (can be nil for slog.Default).
//   - enabled: Whether spans are recorded. When false every span is a noop.
//
// Outputs:
//   - *Tracer: Tracer instance.
func NewTracer(logger *slog.Logger, enabled bool) *Tracer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracer{
		tracer:  otel.Tracer(tracerName),
		logger:  logger,
		enabled: enabled,
	}
}

// StartPlan starts a span covering all interpretations of one request.
func (t *Tracer) StartPlan(ctx context.Context, requestID string, interpretations int, s *world.State) (context.Context, trace.Span) {
	if !t.enabled {
		return ctx, noop.Span{}
	}

	ctx, span := t.tracer.Start(ctx, "planner.plan",
		trace.WithAttributes(
			attribute.String("planner.request_id", requestID),
			attribute.Int("planner.interpretations", interpretations),
			attribute.Int("planner.world.columns", s.Columns()),
			attribute.Int("planner.world.objects", len(s.Objects)),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)

	t.logger.DebugContext(ctx, "planning started",
		slog.String("request_id", requestID),
		slog.Int("interpretations", interpretations),
	)
	return ctx, span
}

// EndPlan completes the request span.
func (t *Tracer) EndPlan(span trace.Span, plans []Plan, err error) {
	if span == nil {
		return
	}

	succeeded := 0
	for i := range plans {
		if plans[i].OK() {
			succeeded++
		}
	}
	span.SetAttributes(attribute.Int("planner.result.succeeded", succeeded))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// StartSearch starts a span for one formula.
func (t *Tracer) StartSearch(ctx context.Context, f logic.Formula) (context.Context, trace.Span) {
	if !t.enabled {
		return ctx, noop.Span{}
	}

	return t.tracer.Start(ctx, "planner.search",
		trace.WithAttributes(
			attribute.String("planner.formula", truncateForObs(f.String(), 200)),
			attribute.Int("planner.disjuncts", len(f)),
		),
	)
}

// EndSearch completes a formula span with the plan's outcome.
func (t *Tracer) EndSearch(span trace.Span, plan *Plan) {
	if span == nil {
		return
	}

	span.SetAttributes(
		attribute.String("planner.result.outcome", outcome(plan.Err)),
		attribute.Bool("planner.result.already_satisfied", plan.AlreadySatisfied),
		attribute.Bool("planner.result.cached", plan.Cached),
		attribute.Int("planner.result.actions", len(plan.Actions)),
		attribute.Float64("planner.result.estimate", plan.Estimate),
		attribute.Int("planner.result.expanded", plan.Stats.Expanded),
		attribute.String("planner.result.elapsed", plan.Stats.Duration.String()),
	)

	if plan.Err != nil {
		span.RecordError(plan.Err)
		span.SetStatus(codes.Error, plan.Err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// truncateForObs truncates a string for use in observability attributes.
func truncateForObs(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// LoggerWithTrace returns a logger with trace context.
//
// Inputs:
//   - ctx: Context that may contain trace information.
//   - logger: Base logger.
//
// Outputs:
//   - *slog.Logger: Logger with trace_id and span_id if available.
func LoggerWithTrace(ctx context.Context, logger *slog.Logger) *slog.Logger {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return logger
	}
	return logger.With(
		slog.String("trace_id", spanCtx.TraceID().String()),
		slog.String("span_id", spanCtx.SpanID().String()),
	)
}
