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
	"fmt"
	"time"

	"github.com/AleutianAI/blockplanner/services/blockplanner/eval"
	"github.com/AleutianAI/blockplanner/services/blockplanner/goal"
	"github.com/AleutianAI/blockplanner/services/blockplanner/heuristic"
	"github.com/AleutianAI/blockplanner/services/blockplanner/logic"
	"github.com/AleutianAI/blockplanner/services/blockplanner/world"
)

// Input is the input side of a property check: what PlanFormula was given.
type Input struct {
	Formula logic.Formula
	State   *world.State
}

var _ eval.Evaluable = (*Planner)(nil)

// Name implements eval.Evaluable.
func (p *Planner) Name() string {
	return "blockplanner"
}

// Properties implements eval.Evaluable. Checks take an Input and the *Plan
// PlanFormula returned for it.
func (p *Planner) Properties() []eval.Property {
	return []eval.Property{
		{
			Name:        "plan_reaches_goal",
			Description: "Executing a successful plan from the start state satisfies the formula.",
			Check: check(func(in Input, out *Plan) error {
				end, i, err := in.State.ApplyAll(out.Actions)
				if err != nil {
					return fmt.Errorf("action %d: %w", i, err)
				}
				if !goal.Satisfied(in.Formula, end) {
					return fmt.Errorf("final state %s does not satisfy %s", end, in.Formula)
				}
				return nil
			}),
			Tags: []string{"critical"},
		},
		{
			Name:        "cost_is_plan_length",
			Description: "The reported cost equals the number of actions.",
			Check: check(func(_ Input, out *Plan) error {
				if out.Cost != float64(len(out.Actions)) {
					return fmt.Errorf("cost %v for %d actions", out.Cost, len(out.Actions))
				}
				return nil
			}),
		},
		{
			Name:        "cost_at_least_estimate",
			Description: "No plan is shorter than the heuristic estimate at the start state.",
			Check: check(func(in Input, out *Plan) error {
				if h := heuristic.Formula(in.Formula, in.State); out.Cost < h {
					return fmt.Errorf("cost %v below estimate %v", out.Cost, h)
				}
				return nil
			}),
			Tags: []string{"critical"},
		},
		{
			Name:        "already_true_is_empty",
			Description: "A goal true at the start yields the already-satisfied marker and no actions, and only then.",
			Check: check(func(in Input, out *Plan) error {
				if sat := goal.Satisfied(in.Formula, in.State); sat != out.AlreadySatisfied {
					return fmt.Errorf("satisfied at start is %v, marker is %v", sat, out.AlreadySatisfied)
				}
				if out.AlreadySatisfied && len(out.Actions) != 0 {
					return fmt.Errorf("already satisfied with %d actions", len(out.Actions))
				}
				return nil
			}),
		},
	}
}

// check adapts a typed check. Failed plans pass vacuously.
func check(fn func(Input, *Plan) error) func(any, any) error {
	return func(input, output any) error {
		in, ok := input.(Input)
		if !ok || in.State == nil {
			return fmt.Errorf("input is %T, want planner.Input", input)
		}
		out, ok := output.(*Plan)
		if !ok || out == nil {
			return fmt.Errorf("output is %T, want *planner.Plan", output)
		}
		if !out.OK() {
			return nil
		}
		return fn(in, out)
	}
}

// Metrics implements eval.Evaluable.
func (p *Planner) Metrics() []eval.MetricDefinition {
	return metricDefinitions
}

// HealthCheck implements eval.Evaluable by planning a one-action problem.
func (p *Planner) HealthCheck(ctx context.Context) error {
	s, err := world.Example("small")
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	plan, err := p.PlanFormula(ctx, logic.Formula{{logic.Lit(logic.Holding, "e")}}, s)
	if err != nil {
		return fmt.Errorf("planner health check: %w", err)
	}
	if len(plan.Actions) != 1 || plan.Actions[0] != world.Pick {
		return fmt.Errorf("planner health check: unexpected plan %s", plan)
	}
	return nil
}
