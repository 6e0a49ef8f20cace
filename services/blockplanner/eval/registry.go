// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package eval

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Registry manages the evaluable components of a process.
//
// Thread Safety: Safe for concurrent use via read-write mutex.
type Registry struct {
	mu         sync.RWMutex
	components map[string]Evaluable
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{components: make(map[string]Evaluable)}
}

// Register adds a component under its Name().
//
// Outputs:
//   - error: ErrNilComponent if component is nil, ErrAlreadyRegistered if the
//     name is taken.
func (r *Registry) Register(component Evaluable) error {
	if component == nil {
		return ErrNilComponent
	}
	name := component.Name()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.components[name]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, name)
	}
	r.components[name] = component
	return nil
}

// Get returns the component registered under name.
func (r *Registry) Get(name string) (Evaluable, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.components[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return c, nil
}

// List returns the registered names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.components))
	for name := range r.components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HealthCheckAll runs every component's health check with at most
// concurrency checks in flight, and returns the results sorted by name.
func (r *Registry) HealthCheckAll(ctx context.Context, concurrency int) []HealthResult {
	if concurrency <= 0 {
		concurrency = 10
	}

	names := r.List()
	results := make([]HealthResult, len(names))

	g := new(errgroup.Group)
	g.SetLimit(concurrency)
	for i, name := range names {
		component, err := r.Get(name)
		if err != nil {
			continue
		}
		g.Go(func() error {
			start := time.Now()
			result := HealthResult{Component: name}
			if err := ctx.Err(); err != nil {
				result.Status = HealthUnknown
				result.Message = "context cancelled"
			} else if err := component.HealthCheck(ctx); err != nil {
				result.Status = HealthUnhealthy
				result.Message = err.Error()
			} else {
				result.Status = HealthHealthy
				result.Message = "OK"
			}
			result.State = result.Status.String()
			result.Duration = time.Since(start)
			result.Timestamp = time.Now()
			results[i] = result
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Healthy reports whether every result is HealthHealthy.
func Healthy(results []HealthResult) bool {
	for _, r := range results {
		if r.Status != HealthHealthy {
			return false
		}
	}
	return true
}
