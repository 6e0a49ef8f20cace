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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/AleutianAI/blockplanner/services/blockplanner/eval"
)

const (
	metricsNamespace = "blockplanner"
	metricsSubsystem = "planner"
)

var (
	// plansTotal counts planned formulas by outcome.
	//
	// Labels:
	//   - outcome: "found", "already_satisfied", "no_plan", "timeout",
	//     "invalid", "cancelled" or "error"
	plansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "plans_total",
			Help:      "Formulas planned, by outcome",
		},
		[]string{"outcome"},
	)

	planningDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "duration_seconds",
			Help:      "Wall time of a planning request across all interpretations",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 2.5, 5, 10, 30},
		},
	)

	planLength = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "plan_length_actions",
			Help:      "Number of primitive actions in found plans",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 9),
		},
	)

	expandedNodes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "expanded_nodes",
			Help:      "Search nodes expanded per formula",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		},
	)

	// cacheLookups counts plan cache lookups.
	//
	// Labels:
	//   - result: "hit", "miss" or "error"
	cacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "cache_lookups_total",
			Help:      "Plan cache lookups, by result",
		},
		[]string{"result"},
	)
)

var metricDefinitions = []eval.MetricDefinition{
	{
		Name:        "blockplanner_planner_plans_total",
		Type:        eval.MetricCounter,
		Description: "Formulas planned, by outcome",
		Labels:      []string{"outcome"},
	},
	{
		Name:        "blockplanner_planner_duration_seconds",
		Type:        eval.MetricHistogram,
		Description: "Wall time of a planning request across all interpretations",
	},
	{
		Name:        "blockplanner_planner_plan_length_actions",
		Type:        eval.MetricHistogram,
		Description: "Number of primitive actions in found plans",
	},
	{
		Name:        "blockplanner_planner_expanded_nodes",
		Type:        eval.MetricHistogram,
		Description: "Search nodes expanded per formula",
	},
	{
		Name:        "blockplanner_planner_cache_lookups_total",
		Type:        eval.MetricCounter,
		Description: "Plan cache lookups, by result",
		Labels:      []string{"result"},
	},
}
