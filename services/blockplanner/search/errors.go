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

import "errors"

// Package-level error definitions.
var (
	// ErrNoPath means the frontier was exhausted without reaching a goal.
	ErrNoPath = errors.New("no path to goal")

	// ErrTimeout means the wall-clock budget ran out. It says nothing about
	// whether a path exists.
	ErrTimeout = errors.New("search timed out")

	// ErrExpansionLimit means Options.MaxExpansions nodes were expanded
	// without reaching a goal.
	ErrExpansionLimit = errors.New("expansion limit reached")

	// ErrNegativeCost means the graph produced an edge with negative cost.
	ErrNegativeCost = errors.New("negative edge cost")

	ErrNilGraph = errors.New("graph must not be nil")
)

// Error wraps a search failure with the operation that produced it.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return "astar." + e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}
