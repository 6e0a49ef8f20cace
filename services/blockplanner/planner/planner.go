// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package planner turns goal formulas into arm action sequences.
//
// Each interpretation of a request is a DNF formula over the current world.
// The planner searches the block world for the cheapest sequence of left,
// right, pick and drop actions after which the formula holds. Interpretations
// are planned independently: one failing does not stop the others, and the
// call as a whole only fails when every interpretation fails.
package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/blockplanner/services/blockplanner/goal"
	"github.com/AleutianAI/blockplanner/services/blockplanner/heuristic"
	"github.com/AleutianAI/blockplanner/services/blockplanner/logic"
	"github.com/AleutianAI/blockplanner/services/blockplanner/search"
	"github.com/AleutianAI/blockplanner/services/blockplanner/space"
	"github.com/AleutianAI/blockplanner/services/blockplanner/world"
)

// -----------------------------------------------------------------------------
// Errors
// -----------------------------------------------------------------------------

var (
	// ErrNoPlan is returned when the goal cannot be reached from the state.
	ErrNoPlan = errors.New("no plan reaches the goal")

	// ErrTimeout is returned when the search budget ran out first. It says
	// nothing about whether a plan exists.
	ErrTimeout = errors.New("planning timed out")

	// ErrNoInterpretations is returned by Plan when given nothing to plan.
	ErrNoInterpretations = errors.New("no interpretations to plan")

	// ErrNilState is returned when the world state is nil.
	ErrNilState = errors.New("world state must not be nil")

	// ErrInvalidConfig is returned by New for an unusable Config.
	ErrInvalidConfig = errors.New("invalid planner config")
)

// Failure records why one interpretation could not be planned.
type Failure struct {
	InterpretationID string
	Err              error
}

// PlanningError is returned when every interpretation failed.
//
// errors.Is sees through it to each interpretation's error, so
// errors.Is(err, ErrTimeout) reports whether any of them timed out.
type PlanningError struct {
	Failures []Failure
}

func (e *PlanningError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = f.InterpretationID + ": " + f.Err.Error()
	}
	return fmt.Sprintf("planning failed for all %d interpretations: %s", len(e.Failures), strings.Join(parts, "; "))
}

// Unwrap returns the per-interpretation errors.
func (e *PlanningError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f.Err
	}
	return errs
}

// -----------------------------------------------------------------------------
// Configuration
// -----------------------------------------------------------------------------

// Config controls the search run for each interpretation.
type Config struct {
	// Timeout bounds each interpretation's search. Zero disables it.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// MaxExpansions bounds the nodes expanded per search. Zero is unlimited.
	MaxExpansions int `json:"max_expansions" yaml:"max_expansions"`

	// ArmInKey makes the arm position part of node identity. Plans are then
	// exactly optimal at the price of a larger search.
	ArmInKey bool `json:"arm_in_key" yaml:"arm_in_key"`

	// MaxConcurrency is how many interpretations are searched at once.
	MaxConcurrency int `json:"max_concurrency" yaml:"max_concurrency"`
}

// DefaultConfig returns the default planner configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:        10 * time.Second,
		MaxExpansions:  0,
		ArmInKey:       false,
		MaxConcurrency: 1,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must be non-negative", ErrInvalidConfig)
	}
	if c.MaxExpansions < 0 {
		return fmt.Errorf("%w: max_expansions must be non-negative", ErrInvalidConfig)
	}
	if c.MaxConcurrency < 1 {
		return fmt.Errorf("%w: max_concurrency must be at least 1", ErrInvalidConfig)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Types
// -----------------------------------------------------------------------------

// Interpretation is one candidate reading of a request.
type Interpretation struct {
	// ID identifies the interpretation in results and logs. Plan assigns a
	// UUID when empty.
	ID string `json:"id,omitempty"`

	// Formula is the goal.
	Formula logic.Formula `json:"formula"`

	// Source is free text describing where the interpretation came from.
	Source string `json:"source,omitempty"`
}

// Plan is the outcome of planning one interpretation.
type Plan struct {
	InterpretationID string `json:"interpretation_id"`

	Formula logic.Formula `json:"formula"`

	// Actions is the plan. Empty only when AlreadySatisfied is set or Err
	// is non-nil.
	Actions []world.Action `json:"actions"`

	// AlreadySatisfied marks a goal that holds without doing anything.
	AlreadySatisfied bool `json:"already_satisfied"`

	// Cost is the number of actions.
	Cost float64 `json:"cost"`

	// Estimate is the heuristic value at the start state.
	Estimate float64 `json:"estimate"`

	Stats search.Stats `json:"stats"`

	// Cached is set when the plan came from the plan cache.
	Cached bool `json:"cached"`

	Err error `json:"-"`
}

// OK reports whether the plan succeeded.
func (p *Plan) OK() bool {
	return p.Err == nil
}

// String renders the plan for people.
func (p *Plan) String() string {
	switch {
	case p.Err != nil:
		return "No plan: " + p.Err.Error()
	case p.AlreadySatisfied:
		return "That is already true!"
	default:
		return world.FormatActions(p.Actions)
	}
}

// Best returns the cheapest successful plan, preferring earlier ones on
// ties. ok is false if no plan succeeded.
func Best(plans []Plan) (best *Plan, ok bool) {
	for i := range plans {
		p := &plans[i]
		if !p.OK() {
			continue
		}
		if best == nil || p.Cost < best.Cost {
			best = p
		}
	}
	return best, best != nil
}

// -----------------------------------------------------------------------------
// Planner
// -----------------------------------------------------------------------------

// Planner plans goal formulas over block worlds.
//
// Thread Safety: Safe for concurrent use. A Planner holds no per-call state
// and never modifies the states it is given.
type Planner struct {
	config Config
	graph  *space.Graph
	cache  Cache
	logger *slog.Logger
	tracer *Tracer
}

// Option configures a Planner.
type Option func(*Planner)

// WithCache stores and reuses successful plans.
func WithCache(c Cache) Option {
	return func(p *Planner) {
		p.cache = c
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Planner) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithTracer sets the tracer. The default traces nothing.
func WithTracer(t *Tracer) Option {
	return func(p *Planner) {
		if t != nil {
			p.tracer = t
		}
	}
}

// New creates a Planner.
//
// Inputs:
//   - config: Search budget and concurrency. Must pass Validate.
//   - opts: Optional cache, logger and tracer.
//
// Outputs:
//   - *Planner: The planner.
//   - error: ErrInvalidConfig if config is unusable.
func New(config Config, opts ...Option) (*Planner, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	p := &Planner{
		config: config,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(slog.String("component", "planner"))
	if p.tracer == nil {
		p.tracer = NewTracer(p.logger, false)
	}

	var graphOpts []space.Option
	if config.ArmInKey {
		graphOpts = append(graphOpts, space.WithArmInKey())
	}
	p.graph = space.New(graphOpts...)
	return p, nil
}

// Config returns the planner's configuration.
func (p *Planner) Config() Config {
	return p.config
}

// Plan plans every interpretation against s.
//
// Description:
//
//	Interpretations are searched independently, up to MaxConcurrency at a
//	time. The returned slice has one Plan per interpretation, in order;
//	failed ones carry their error in Plan.Err. The error is non-nil only
//	when no interpretation could be planned, in which case it is a
//	*PlanningError, or when the input itself is unusable.
//
// Inputs:
//   - ctx: Cancellation. Cancelling stops all searches.
//   - interps: The candidate interpretations. Must not be empty.
//   - s: The current world. Must not be nil; it is not modified.
//
// Outputs:
//   - []Plan: One result per interpretation.
//   - error: ErrNoInterpretations, ErrNilState or *PlanningError.
func (p *Planner) Plan(ctx context.Context, interps []Interpretation, s *world.State) ([]Plan, error) {
	if len(interps) == 0 {
		return nil, ErrNoInterpretations
	}
	if s == nil {
		return nil, ErrNilState
	}

	began := time.Now()
	requestID := uuid.NewString()
	ctx, span := p.tracer.StartPlan(ctx, requestID, len(interps), s)
	logger := LoggerWithTrace(ctx, p.logger).With(slog.String("request_id", requestID))

	plans := make([]Plan, len(interps))
	g := new(errgroup.Group)
	g.SetLimit(p.config.MaxConcurrency)
	for i, in := range interps {
		id := in.ID
		if id == "" {
			id = uuid.NewString()
		}
		g.Go(func() error {
			plan, err := p.PlanFormula(ctx, in.Formula, s)
			plan.InterpretationID = id
			plan.Err = err
			plans[i] = *plan
			return nil
		})
	}
	_ = g.Wait()

	var failures []Failure
	for _, plan := range plans {
		if plan.Err != nil {
			failures = append(failures, Failure{InterpretationID: plan.InterpretationID, Err: plan.Err})
		}
	}

	var err error
	if len(failures) == len(plans) {
		err = &PlanningError{Failures: failures}
	}
	p.tracer.EndPlan(span, plans, err)
	planningDuration.Observe(time.Since(began).Seconds())

	logger.Info("planning finished",
		slog.Int("interpretations", len(interps)),
		slog.Int("failed", len(failures)),
		slog.Duration("elapsed", time.Since(began)),
	)
	return plans, err
}

// PlanFormula plans a single formula against s.
//
// Description:
//
//	A goal already true in s yields a Plan with AlreadySatisfied set and no
//	actions. A goal whose estimate is infinite fails with ErrNoPlan without
//	searching. Otherwise the block world is searched with the configured
//	budget and the edge labels along the found path are flattened into the
//	action sequence.
//
// Inputs:
//   - ctx: Cancellation.
//   - f: The goal. Literals are validated against s first.
//   - s: The current world. Must not be nil; it is not modified.
//
// Outputs:
//   - *Plan: Always non-nil. On failure Err is also set.
//   - error: logic.ErrInvalidLiteral, ErrNoPlan, ErrTimeout, a ctx error or
//     ErrNilState.
func (p *Planner) PlanFormula(ctx context.Context, f logic.Formula, s *world.State) (*Plan, error) {
	plan := &Plan{Formula: f}
	fail := func(err error) (*Plan, error) {
		plan.Err = err
		plansTotal.WithLabelValues(outcome(err)).Inc()
		return plan, err
	}

	if s == nil {
		return fail(ErrNilState)
	}
	if err := goal.Validate(f, s); err != nil {
		return fail(err)
	}

	ctx, span := p.tracer.StartSearch(ctx, f)
	defer func() { p.tracer.EndSearch(span, plan) }()
	logger := LoggerWithTrace(ctx, p.logger).With(slog.String("formula", truncateForObs(f.String(), 200)))

	if goal.Satisfied(f, s) {
		plan.AlreadySatisfied = true
		plan.Actions = []world.Action{}
		plansTotal.WithLabelValues("already_satisfied").Inc()
		logger.Debug("goal already satisfied")
		return plan, nil
	}

	plan.Estimate = heuristic.Formula(f, s)
	if math.IsInf(plan.Estimate, 1) {
		logger.Debug("goal unreachable by estimate")
		return fail(fmt.Errorf("%w: %s", ErrNoPlan, "goal can never hold"))
	}

	key := cacheKey(f, s, p.config.ArmInKey)
	if cached, ok := p.lookup(ctx, key); ok && replays(cached.Actions, f, s) {
		plan.Actions = cached.Actions
		plan.Cost = cached.Cost
		plan.Cached = true
		plansTotal.WithLabelValues("found").Inc()
		logger.Debug("plan served from cache", slog.Int("actions", len(plan.Actions)))
		return plan, nil
	}

	res, err := search.AStar[*world.State, string, []world.Action](
		ctx,
		p.graph,
		s,
		func(n *world.State) bool { return goal.Satisfied(f, n) },
		func(n *world.State) float64 { return heuristic.Formula(f, n) },
		search.Options[*world.State]{
			Timeout:       p.config.Timeout,
			MaxExpansions: p.config.MaxExpansions,
		},
	)
	plan.Stats = res.Stats
	expandedNodes.Observe(float64(res.Stats.Expanded))
	if err != nil {
		logger.Info("search failed",
			slog.String("error", err.Error()),
			slog.Int("expanded", res.Stats.Expanded),
			slog.Duration("elapsed", res.Stats.Duration),
		)
		return fail(mapSearchError(err))
	}

	plan.Actions = flatten(search.Labels(res.Path))
	plan.Cost = res.Cost
	planLength.Observe(float64(len(plan.Actions)))
	plansTotal.WithLabelValues("found").Inc()

	p.store(ctx, key, cachedPlan{Actions: plan.Actions, Cost: plan.Cost})

	logger.Info("plan found",
		slog.Int("actions", len(plan.Actions)),
		slog.Float64("estimate", plan.Estimate),
		slog.Int("expanded", res.Stats.Expanded),
		slog.Duration("elapsed", res.Stats.Duration),
	)
	return plan, nil
}

func flatten(labels [][]world.Action) []world.Action {
	n := 0
	for _, l := range labels {
		n += len(l)
	}
	actions := make([]world.Action, 0, n)
	for _, l := range labels {
		actions = append(actions, l...)
	}
	return actions
}

func mapSearchError(err error) error {
	switch {
	case errors.Is(err, search.ErrNoPath):
		return fmt.Errorf("%w: %w", ErrNoPlan, err)
	case errors.Is(err, search.ErrTimeout), errors.Is(err, search.ErrExpansionLimit):
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	default:
		return err
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "found"
	case errors.Is(err, ErrNoPlan):
		return "no_plan"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, logic.ErrInvalidLiteral):
		return "invalid"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	default:
		return "error"
	}
}
