// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package eval defines the contract planning components implement so their
// correctness properties, metrics and health can be checked uniformly.
package eval

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a component is not found in the registry.
	ErrNotFound = errors.New("component not found")

	// ErrAlreadyRegistered is returned when attempting to register a duplicate.
	ErrAlreadyRegistered = errors.New("component already registered")

	// ErrNilComponent is returned when attempting to register nil.
	ErrNilComponent = errors.New("component must not be nil")

	// ErrInvalidProperty is returned when a property is malformed.
	ErrInvalidProperty = errors.New("invalid property definition")

	// ErrPropertyFailed is returned when a property check fails.
	ErrPropertyFailed = errors.New("property check failed")
)

// Evaluable is implemented by components whose behaviour can be verified.
type Evaluable interface {
	// Name returns a stable identifier suitable for metric labels.
	Name() string

	// Properties returns the correctness properties this component guarantees.
	Properties() []Property

	// Metrics returns the metrics this component exposes.
	Metrics() []MetricDefinition

	// HealthCheck verifies the component is functioning correctly.
	//
	// Inputs:
	//   - ctx: Context for cancellation. Must not be nil.
	//
	// Outputs:
	//   - error: nil if healthy, descriptive error otherwise.
	HealthCheck(ctx context.Context) error
}

// Property is a correctness property checked against an input/output pair.
type Property struct {
	// Name is a unique identifier, lowercase with underscores.
	Name string

	// Description explains what this property verifies.
	Description string

	// Check returns nil if the property holds for input and output.
	Check func(input any, output any) error

	// Tags categorize this property for selective testing, e.g. "critical".
	Tags []string
}

// Validate checks that the property is well formed.
func (p *Property) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProperty)
	}
	if p.Description == "" {
		return fmt.Errorf("%w: description is required for %s", ErrInvalidProperty, p.Name)
	}
	if p.Check == nil {
		return fmt.Errorf("%w: check function is required for %s", ErrInvalidProperty, p.Name)
	}
	return nil
}

// HasTag reports whether the property carries tag.
func (p *Property) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// MetricType is the kind of a metric.
type MetricType int

const (
	// MetricCounter is a monotonically increasing value.
	MetricCounter MetricType = iota
	// MetricGauge is a value that can go up or down.
	MetricGauge
	// MetricHistogram records observations in buckets.
	MetricHistogram
)

// String returns the string representation of a MetricType.
func (m MetricType) String() string {
	switch m {
	case MetricCounter:
		return "counter"
	case MetricGauge:
		return "gauge"
	case MetricHistogram:
		return "histogram"
	default:
		return fmt.Sprintf("metric_type(%d)", m)
	}
}

// MetricDefinition describes one exported metric.
type MetricDefinition struct {
	// Name follows Prometheus conventions, e.g. "blockplanner_plans_total".
	Name string

	// Type is the metric type.
	Type MetricType

	// Description explains what this metric measures.
	Description string

	// Labels are the label names for this metric.
	Labels []string

	// Buckets are the histogram bucket boundaries (histograms only).
	Buckets []float64
}

// HealthStatus represents the health state of a component.
type HealthStatus int

const (
	// HealthUnknown is the zero value.
	HealthUnknown HealthStatus = iota
	// HealthHealthy indicates the component is functioning correctly.
	HealthHealthy
	// HealthUnhealthy indicates the component is not functioning.
	HealthUnhealthy
)

// String returns the string representation of a HealthStatus.
func (h HealthStatus) String() string {
	switch h {
	case HealthUnknown:
		return "unknown"
	case HealthHealthy:
		return "healthy"
	case HealthUnhealthy:
		return "unhealthy"
	default:
		return fmt.Sprintf("health_status(%d)", h)
	}
}

// HealthResult contains the result of a health check.
type HealthResult struct {
	Component string        `json:"component"`
	Status    HealthStatus  `json:"-"`
	State     string        `json:"status"`
	Message   string        `json:"message"`
	Duration  time.Duration `json:"duration_ns"`
	Timestamp time.Time     `json:"timestamp"`
}

// CheckAll runs every property of c against one input/output pair.
//
// Description:
//
//	Properties are checked in declaration order. Every failure is collected;
//	a malformed property counts as a failure. The returned error wraps
//	ErrPropertyFailed once per failing property.
//
// Inputs:
//   - c: The component whose properties are checked.
//   - input: The input that was given to the component.
//   - output: The output it produced.
//
// Outputs:
//   - error: nil if every property holds.
func CheckAll(c Evaluable, input, output any) error {
	var errs []error
	for _, p := range c.Properties() {
		if err := p.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if err := p.Check(input, output); err != nil {
			errs = append(errs, fmt.Errorf("%w: %s.%s: %w", ErrPropertyFailed, c.Name(), p.Name, err))
		}
	}
	return errors.Join(errs...)
}
