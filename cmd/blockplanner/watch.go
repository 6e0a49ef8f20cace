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
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/blockplanner/services/blockplanner/logic"
	"github.com/AleutianAI/blockplanner/services/blockplanner/planner"
	"github.com/AleutianAI/blockplanner/services/blockplanner/watch"
	"github.com/AleutianAI/blockplanner/services/blockplanner/world"
)

func newWatchCmd(a *app) *cobra.Command {
	var (
		path     string
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch <formula>",
		Short: "Re-plan a formula every time a world file changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				return errors.New("--world is required")
			}
			f, err := logic.Parse(args[0])
			if err != nil {
				return err
			}

			p, cleanup, err := a.newPlanner(false)
			if err != nil {
				return err
			}
			defer cleanup()

			w, err := watch.New(path, func(ctx context.Context, s *world.State, err error) {
				a.replan(ctx, p, f, s, err)
			}, watch.Options{Debounce: debounce, Logger: a.logger.Slog()})
			if err != nil {
				return err
			}
			defer w.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			a.out.Info("watching " + path + " (Ctrl+C to stop)")
			return w.Run(ctx)
		},
	}
	cmd.Flags().StringVarP(&path, "world", "w", "", "World file to watch")
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultOptions().Debounce, "Quiet period before reloading")
	return cmd
}

func (a *app) replan(ctx context.Context, p *planner.Planner, f logic.Formula, s *world.State, loadErr error) {
	if loadErr != nil {
		a.out.Error("world: " + loadErr.Error())
		return
	}
	a.out.World(s)
	plan, err := p.PlanFormula(ctx, f, s)
	if err != nil && plan == nil {
		a.out.Error(err.Error())
		return
	}
	a.printPlan(plan, false)
}
