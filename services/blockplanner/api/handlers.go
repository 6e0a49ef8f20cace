// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package api exposes the block planner over HTTP.
package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AleutianAI/blockplanner/services/blockplanner/eval"
	"github.com/AleutianAI/blockplanner/services/blockplanner/goal"
	"github.com/AleutianAI/blockplanner/services/blockplanner/logic"
	"github.com/AleutianAI/blockplanner/services/blockplanner/planner"
	"github.com/AleutianAI/blockplanner/services/blockplanner/world"
)

// ErrWorldRequired is returned when a request names neither an example nor
// an inline state, or both.
var ErrWorldRequired = errors.New("exactly one of world.example or world.state is required")

// Handlers serves the block planner endpoints.
//
// Thread Safety: Safe for concurrent use.
type Handlers struct {
	planner  *planner.Planner
	registry *eval.Registry
	logger   *slog.Logger
}

// NewHandlers creates handlers around p. The registry backs /ready and may
// be nil, in which case readiness only reflects that the server is up.
func NewHandlers(p *planner.Planner, registry *eval.Registry, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		planner:  p,
		registry: registry,
		logger:   logger.With(slog.String("component", "api")),
	}
}

// HandlePlan handles POST /v1/blockplanner/plan.
//
// Description:
//
//	Plans every interpretation against the requested world. Failed
//	interpretations are reported alongside successful ones.
//
// Request Body:
//
//	PlanRequest
//
// Response:
//
//	200 OK: PlanResponse with at least one successful plan
//	400 Bad Request: Malformed body, world, or formula
//	422 Unprocessable Entity: PlanResponse where every interpretation failed
func (h *Handlers) HandlePlan(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := h.logger.With("request_id", requestID, "handler", "HandlePlan")

	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		badRequest(c, "INVALID_REQUEST", "Invalid request body", err)
		return
	}

	s, err := resolveWorld(req.World)
	if err != nil {
		badRequest(c, "INVALID_WORLD", err.Error(), nil)
		return
	}

	interps, err := interpretations(req)
	if err != nil {
		badRequest(c, "INVALID_FORMULA", err.Error(), nil)
		return
	}

	plans, err := h.planner.Plan(c.Request.Context(), interps, s)
	var perr *planner.PlanningError
	if err != nil && !errors.As(err, &perr) {
		logger.Error("Planning failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: "PLAN_FAILED"})
		return
	}

	resp := PlanResponse{RequestID: requestID, Plans: make([]PlanResult, len(plans)), Best: -1}
	for i, p := range plans {
		resp.Plans[i] = toResult(p)
	}
	if best, ok := planner.Best(plans); ok {
		for i := range plans {
			if &plans[i] == best {
				resp.Best = i
			}
		}
	}

	if perr != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(perr, logic.ErrInvalidLiteral) && allInvalid(perr) {
			status = http.StatusBadRequest
		}
		logger.Info("No interpretation could be planned", "interpretations", len(plans))
		c.JSON(status, resp)
		return
	}

	logger.Info("Planned", "interpretations", len(plans), "best", resp.Best)
	c.JSON(http.StatusOK, resp)
}

func allInvalid(perr *planner.PlanningError) bool {
	for _, f := range perr.Failures {
		if !errors.Is(f.Err, logic.ErrInvalidLiteral) {
			return false
		}
	}
	return true
}

// HandleCheck handles POST /v1/blockplanner/check.
//
// Response:
//
//	200 OK: CheckResponse
//	400 Bad Request: Malformed body, world, or formula
func (h *Handlers) HandleCheck(c *gin.Context) {
	requestID := getOrCreateRequestID(c)

	var req CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", "request_id", requestID, "error", err)
		badRequest(c, "INVALID_REQUEST", "Invalid request body", err)
		return
	}

	s, err := resolveWorld(req.World)
	if err != nil {
		badRequest(c, "INVALID_WORLD", err.Error(), nil)
		return
	}

	f, err := logic.Parse(req.Formula)
	if err == nil {
		err = goal.Validate(f, s)
	}
	if err != nil {
		badRequest(c, "INVALID_FORMULA", err.Error(), nil)
		return
	}

	resp := CheckResponse{Satisfied: goal.Satisfied(f, s), Literals: make(map[string]bool)}
	for _, conj := range f {
		for _, lit := range conj {
			resp.Literals[lit.String()] = goal.Holds(lit, s)
		}
	}
	c.JSON(http.StatusOK, resp)
}

// HandleLegal handles POST /v1/blockplanner/legal.
//
// Response:
//
//	200 OK: LegalResponse
//	400 Bad Request: Unknown relation or object
func (h *Handlers) HandleLegal(c *gin.Context) {
	getOrCreateRequestID(c)

	var req LegalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_REQUEST", "Invalid request body", err)
		return
	}

	s, err := resolveWorld(req.World)
	if err != nil {
		badRequest(c, "INVALID_WORLD", err.Error(), nil)
		return
	}

	rel := logic.Relation(req.Relation)
	if err := goal.ValidateQuery(rel, req.Source, req.Dest, s); err != nil {
		badRequest(c, "INVALID_LITERAL", err.Error(), nil)
		return
	}

	c.JSON(http.StatusOK, LegalResponse{
		Legal: world.IsLegal(rel, req.Source, req.Dest, s),
	})
}

// HandleSimulate handles POST /v1/blockplanner/simulate.
//
// Description:
//
//	Runs the actions from the requested world. An illegal action stops the
//	run; the response then holds the state before it and the error.
//
// Response:
//
//	200 OK: SimulateResponse with every action applied
//	400 Bad Request: Malformed body, world, or action list
//	422 Unprocessable Entity: SimulateResponse stopped at an illegal action
func (h *Handlers) HandleSimulate(c *gin.Context) {
	getOrCreateRequestID(c)

	var req SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_REQUEST", "Invalid request body", err)
		return
	}

	s, err := resolveWorld(req.World)
	if err != nil {
		badRequest(c, "INVALID_WORLD", err.Error(), nil)
		return
	}

	actions, err := world.ParseActions(req.Actions)
	if err != nil {
		badRequest(c, "INVALID_ACTIONS", err.Error(), nil)
		return
	}

	final, applied, err := s.ApplyAll(actions)
	resp := SimulateResponse{State: final, Applied: applied}
	if err != nil {
		resp.Error = err.Error()
		c.JSON(http.StatusUnprocessableEntity, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleListWorlds handles GET /v1/blockplanner/worlds.
func (h *Handlers) HandleListWorlds(c *gin.Context) {
	c.JSON(http.StatusOK, WorldsResponse{Worlds: world.ExampleNames()})
}

// HandleGetWorld handles GET /v1/blockplanner/worlds/:name.
//
// Response:
//
//	200 OK: world.State
//	404 Not Found: No built-in world by that name
func (h *Handlers) HandleGetWorld(c *gin.Context) {
	s, err := world.Example(c.Param("name"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "WORLD_NOT_FOUND"})
		return
	}
	c.JSON(http.StatusOK, s)
}

// HandleHealth handles GET /v1/blockplanner/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "healthy", Version: ServiceVersion})
}

// HandleReady handles GET /v1/blockplanner/ready.
//
// Description:
//
//	Runs every registered component's health check. Returns 503 when any
//	component is not healthy.
func (h *Handlers) HandleReady(c *gin.Context) {
	resp := ReadyResponse{Ready: true, Components: []eval.HealthResult{}}
	if h.registry != nil {
		resp.Components = h.registry.HealthCheckAll(c.Request.Context(), 0)
		resp.Ready = eval.Healthy(resp.Components)
	}

	if !resp.Ready {
		c.Header("Retry-After", "10")
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// resolveWorld returns a fresh state for in.
func resolveWorld(in WorldInput) (*world.State, error) {
	switch {
	case in.State != nil && in.Example != "":
		return nil, ErrWorldRequired
	case in.State != nil:
		if err := in.State.Validate(); err != nil {
			return nil, err
		}
		return in.State, nil
	case in.Example != "":
		return world.Example(in.Example)
	default:
		return nil, ErrWorldRequired
	}
}

func interpretations(req PlanRequest) ([]planner.Interpretation, error) {
	if req.Formula != "" && len(req.Interpretations) > 0 {
		return nil, errors.New("set formula or interpretations, not both")
	}
	if req.Formula != "" {
		f, err := logic.Parse(req.Formula)
		if err != nil {
			return nil, err
		}
		return []planner.Interpretation{{ID: "0", Formula: f, Source: req.Formula}}, nil
	}
	if len(req.Interpretations) == 0 {
		return nil, planner.ErrNoInterpretations
	}

	out := make([]planner.Interpretation, len(req.Interpretations))
	for i, in := range req.Interpretations {
		f, err := logic.Parse(in.Formula)
		if err != nil {
			return nil, fmt.Errorf("interpretation %d: %w", i, err)
		}
		out[i] = planner.Interpretation{ID: in.ID, Formula: f, Source: in.Source}
	}
	return out, nil
}

// getOrCreateRequestID extracts or generates a request ID.
func getOrCreateRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	return requestID
}

func badRequest(c *gin.Context, code, msg string, err error) {
	resp := ErrorResponse{Error: msg, Code: code}
	if err != nil {
		resp.Details = err.Error()
	}
	c.JSON(http.StatusBadRequest, resp)
}
