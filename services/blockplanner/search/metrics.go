// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package search

import (
	"context"
	"errors"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("blockplanner.search")

var (
	searchLatency   metric.Float64Histogram
	searchTotal     metric.Int64Counter
	searchExpanded  metric.Int64Histogram
	searchGenerated metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		searchLatency, err = meter.Float64Histogram(
			"astar_search_duration_seconds",
			metric.WithDescription("Duration of A* searches"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		searchTotal, err = meter.Int64Counter(
			"astar_search_total",
			metric.WithDescription("Total A* searches by outcome"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		searchExpanded, err = meter.Int64Histogram(
			"astar_expanded_nodes",
			metric.WithDescription("Nodes expanded per A* search"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		searchGenerated, err = meter.Int64Counter(
			"astar_generated_edges_total",
			metric.WithDescription("Total edges generated by A* searches"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// Outcome classifies a search error for metric labels.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "found"
	case errors.Is(err, ErrNoPath):
		return "no_path"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrExpansionLimit):
		return "expansion_limit"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	default:
		return "error"
	}
}

func recordSearch(ctx context.Context, stats Stats, err error) {
	if initMetrics() != nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("outcome", Outcome(err)))
	searchLatency.Record(ctx, stats.Duration.Seconds(), attrs)
	searchTotal.Add(ctx, 1, attrs)
	searchExpanded.Record(ctx, int64(stats.Expanded), attrs)
	searchGenerated.Add(ctx, int64(stats.Generated))
}
