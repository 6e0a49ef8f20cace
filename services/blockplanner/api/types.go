// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package api

import (
	"math"

	"github.com/AleutianAI/blockplanner/services/blockplanner/eval"
	"github.com/AleutianAI/blockplanner/services/blockplanner/planner"
	"github.com/AleutianAI/blockplanner/services/blockplanner/search"
	"github.com/AleutianAI/blockplanner/services/blockplanner/world"
)

// ServiceVersion is reported by the health endpoint.
const ServiceVersion = "0.1.0"

// =============================================================================
// Requests
// =============================================================================

// WorldInput selects the world a request runs against: either a built-in
// example by name or an inline state. Exactly one must be set.
type WorldInput struct {
	// Example names a built-in world ("small", "medium").
	Example string `json:"example,omitempty"`

	// State is an inline world state.
	State *world.State `json:"state,omitempty"`
}

// InterpretationRequest is one candidate reading of an utterance.
type InterpretationRequest struct {
	ID      string `json:"id,omitempty"`
	Formula string `json:"formula" binding:"required"`
	Source  string `json:"source,omitempty"`
}

// PlanRequest is the body of POST /v1/blockplanner/plan.
//
// Either Formula or Interpretations must be set. Formula is shorthand for a
// single interpretation.
type PlanRequest struct {
	World           WorldInput              `json:"world"`
	Formula         string                  `json:"formula,omitempty"`
	Interpretations []InterpretationRequest `json:"interpretations,omitempty" binding:"omitempty,max=32,dive"`
}

// CheckRequest is the body of POST /v1/blockplanner/check.
type CheckRequest struct {
	World   WorldInput `json:"world"`
	Formula string     `json:"formula" binding:"required"`
}

// LegalRequest is the body of POST /v1/blockplanner/legal.
type LegalRequest struct {
	World    WorldInput `json:"world"`
	Relation string     `json:"relation" binding:"required"`
	Source   string     `json:"source" binding:"required"`
	Dest     string     `json:"dest" binding:"required"`
}

// SimulateRequest is the body of POST /v1/blockplanner/simulate.
type SimulateRequest struct {
	World WorldInput `json:"world"`

	// Actions uses the short or long spelling: "l r p d" or "left pick".
	Actions string `json:"actions"`
}

// =============================================================================
// Responses
// =============================================================================

// PlanResult is one interpretation's outcome.
type PlanResult struct {
	InterpretationID string   `json:"interpretation_id"`
	Formula          string   `json:"formula"`
	OK               bool     `json:"ok"`
	AlreadySatisfied bool     `json:"already_satisfied"`
	Actions          []string `json:"actions"`
	Text             string   `json:"text"`
	Cost             float64  `json:"cost"`

	// Estimate is omitted when the goal can never hold.
	Estimate *float64 `json:"estimate,omitempty"`

	Stats  search.Stats `json:"stats"`
	Cached bool         `json:"cached"`
	Error  string       `json:"error,omitempty"`
}

// PlanResponse is the response of POST /v1/blockplanner/plan.
type PlanResponse struct {
	RequestID string       `json:"request_id"`
	Plans     []PlanResult `json:"plans"`

	// Best indexes the cheapest successful plan in Plans.
	Best int `json:"best"`
}

// CheckResponse reports whether a formula holds and which literals do.
type CheckResponse struct {
	Satisfied bool            `json:"satisfied"`
	Literals  map[string]bool `json:"literals"`
}

// LegalResponse reports the physics verdict.
type LegalResponse struct {
	Legal bool `json:"legal"`
}

// SimulateResponse is the world after the actions ran.
type SimulateResponse struct {
	State   *world.State `json:"state"`
	Applied int          `json:"applied"`
	Error   string       `json:"error,omitempty"`
}

// WorldsResponse lists the built-in worlds.
type WorldsResponse struct {
	Worlds []string `json:"worlds"`
}

// HealthResponse is the response for the health endpoint.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ReadyResponse is the response for the readiness endpoint.
type ReadyResponse struct {
	Ready      bool                `json:"ready"`
	Components []eval.HealthResult `json:"components"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	// Error is the error message.
	Error string `json:"error"`

	// Code is the error code.
	Code string `json:"code,omitempty"`

	// Details provides additional error context (optional).
	Details string `json:"details,omitempty"`
}

func toResult(p planner.Plan) PlanResult {
	r := PlanResult{
		InterpretationID: p.InterpretationID,
		Formula:          p.Formula.String(),
		OK:               p.OK(),
		AlreadySatisfied: p.AlreadySatisfied,
		Actions:          make([]string, 0, len(p.Actions)),
		Text:             p.String(),
		Cost:             p.Cost,
		Stats:            p.Stats,
		Cached:           p.Cached,
	}
	for _, a := range p.Actions {
		r.Actions = append(r.Actions, a.Short())
	}
	if !math.IsInf(p.Estimate, 1) {
		est := p.Estimate
		r.Estimate = &est
	}
	if p.Err != nil {
		r.Error = p.Err.Error()
	}
	return r
}
