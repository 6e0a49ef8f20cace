// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/blockplanner/services/blockplanner/goal"
	"github.com/AleutianAI/blockplanner/services/blockplanner/logic"
	"github.com/AleutianAI/blockplanner/services/blockplanner/planner"
	"github.com/AleutianAI/blockplanner/services/blockplanner/world"
)

// errReported marks a failure that was already printed.
var errReported = errors.New("see output above")

// =============================================================================
// plan
// =============================================================================

func newPlanCmd(a *app) *cobra.Command {
	var (
		wf            worldFlags
		formulas      []string
		timeout       time.Duration
		maxExpansions int
		armInKey      bool
		steps         bool
	)

	cmd := &cobra.Command{
		Use:   "plan [formula]",
		Short: "Find the shortest plan that makes a formula true",
		Long: `Plans every formula as an independent interpretation and reports each result.
The cheapest successful plan is marked as the best one.

Formulas use the text form: "-leftof(e,f) & holding(a) | ontop(e,floor)".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formulas = append(args, formulas...)
			if len(formulas) == 0 {
				return errors.New("a formula is required")
			}

			if cmd.Flags().Changed("timeout") {
				a.cfg.Search.Timeout = timeout
			}
			if cmd.Flags().Changed("max-expansions") {
				a.cfg.Search.MaxExpansions = maxExpansions
			}
			if cmd.Flags().Changed("arm-in-key") {
				a.cfg.Search.ArmInKey = armInKey
			}

			s, err := wf.load()
			if err != nil {
				return err
			}
			interps := make([]planner.Interpretation, len(formulas))
			for i, text := range formulas {
				f, err := logic.Parse(text)
				if err != nil {
					return fmt.Errorf("formula %q: %w", text, err)
				}
				interps[i] = planner.Interpretation{ID: strconv.Itoa(i + 1), Formula: f, Source: text}
			}

			p, cleanup, err := a.newPlanner(false)
			if err != nil {
				return err
			}
			defer cleanup()

			plans, planErr := p.Plan(cmd.Context(), interps, s)
			var perr *planner.PlanningError
			if planErr != nil && !errors.As(planErr, &perr) {
				return planErr
			}

			best, ok := planner.Best(plans)
			for i := range plans {
				a.printPlan(&plans[i], ok && best == &plans[i])
			}
			if !ok {
				return errReported
			}
			if steps && !best.AlreadySatisfied {
				return a.out.Steps(s, best.Actions)
			}
			return nil
		},
	}

	wf.register(cmd)
	cmd.Flags().StringArrayVarP(&formulas, "formula", "f", nil, "Additional interpretation (repeatable)")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Search timeout per interpretation (0 = none)")
	cmd.Flags().IntVar(&maxExpansions, "max-expansions", 0, "Expansion budget per interpretation (0 = unlimited)")
	cmd.Flags().BoolVar(&armInKey, "arm-in-key", false, "Tell states apart by arm position for optimal plans")
	cmd.Flags().BoolVar(&steps, "steps", false, "Show the world after every action of the best plan")
	return cmd
}

func (a *app) printPlan(p *planner.Plan, best bool) {
	label := fmt.Sprintf("[%s] %s", p.InterpretationID, p.Formula)
	if best {
		label += " (best)"
	}
	a.out.Title(label)

	if !p.OK() {
		a.out.Error(p.String())
		return
	}
	a.out.Success(p.String())
	a.out.Field("cost", p.Cost)
	if !math.IsInf(p.Estimate, 1) {
		a.out.Field("estimate", p.Estimate)
	}
	a.out.Field("expanded", p.Stats.Expanded)
	if p.Cached {
		a.out.Field("cached", true)
	}
}

// =============================================================================
// check
// =============================================================================

func newCheckCmd(a *app) *cobra.Command {
	var wf worldFlags

	cmd := &cobra.Command{
		Use:   "check <formula>",
		Short: "Report whether a formula holds in a world",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := wf.load()
			if err != nil {
				return err
			}
			f, err := logic.Parse(args[0])
			if err != nil {
				return err
			}
			if err := goal.Validate(f, s); err != nil {
				return err
			}

			for _, conj := range f {
				for _, lit := range conj {
					a.out.Field(lit.String(), goal.Holds(lit, s))
				}
			}
			if goal.Satisfied(f, s) {
				a.out.Success("satisfied")
				return nil
			}
			a.out.Warning("not satisfied")
			return nil
		},
	}
	wf.register(cmd)
	return cmd
}

// =============================================================================
// legal
// =============================================================================

func newLegalCmd(a *app) *cobra.Command {
	var wf worldFlags

	cmd := &cobra.Command{
		Use:   "legal <relation> <source> <dest>",
		Short: "Ask whether the physics allow a relation between two objects",
		Example: `  blockplanner legal inside f k
  blockplanner legal ontop e floor`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := wf.load()
			if err != nil {
				return err
			}
			lit := logic.Lit(logic.Relation(strings.ToLower(args[0])), args[1], args[2])
			if err := goal.ValidateQuery(lit.Relation, args[1], args[2], s); err != nil {
				return err
			}

			if world.IsLegal(lit.Relation, args[1], args[2], s) {
				a.out.Success(lit.String() + " is physically possible")
			} else {
				a.out.Warning(lit.String() + " is against physics")
			}
			return nil
		},
	}
	wf.register(cmd)
	return cmd
}

// =============================================================================
// simulate
// =============================================================================

func newSimulateCmd(a *app) *cobra.Command {
	var wf worldFlags

	cmd := &cobra.Command{
		Use:   "simulate <actions>",
		Short: "Run a sequence of arm commands and show each resulting world",
		Long: `Runs actions written as "l r p d" or "left right pick drop". The run stops at
the first command the world does not allow.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := wf.load()
			if err != nil {
				return err
			}
			actions, err := world.ParseActions(args[0])
			if err != nil {
				return err
			}

			a.out.World(s)
			if err := a.out.Steps(s, actions); err != nil {
				return errReported
			}
			return nil
		},
	}
	wf.register(cmd)
	return cmd
}

// =============================================================================
// worlds
// =============================================================================

func newWorldsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worlds",
		Short: "List the built-in worlds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range world.ExampleNames() {
				a.out.Info(name)
			}
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:       "show <name>",
		Short:     "Draw a built-in world",
		Args:      cobra.ExactArgs(1),
		ValidArgs: world.ExampleNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := world.Example(args[0])
			if err != nil {
				return err
			}
			a.out.World(s)
			return nil
		},
	})
	return cmd
}
