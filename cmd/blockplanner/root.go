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
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/blockplanner/pkg/logging"
	"github.com/AleutianAI/blockplanner/pkg/ux"
	"github.com/AleutianAI/blockplanner/services/blockplanner/config"
	"github.com/AleutianAI/blockplanner/services/blockplanner/planner"
	"github.com/AleutianAI/blockplanner/services/blockplanner/storage/badger"
	"github.com/AleutianAI/blockplanner/services/blockplanner/world"
)

// app carries what every command needs once flags are parsed.
type app struct {
	configPath string
	logLevel   string
	output     string

	cfg    config.Config
	logger *logging.Logger
	out    *ux.Printer
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "blockplanner",
		Short:         "Plan arm movements in the blocks world",
		Long:          `blockplanner finds the shortest sequence of left, right, pick and drop commands that makes a goal formula true in a world of stacked objects.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Close()
			}
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "blockplanner.yaml", "Path to a YAML or JSON config file (missing is fine)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Override the log level (debug, info, warn, error)")
	root.PersistentFlags().StringVarP(&a.output, "output", "o", "auto", "Output style: auto, styled, plain or machine")

	root.AddCommand(
		newPlanCmd(a),
		newCheckCmd(a),
		newLegalCmd(a),
		newSimulateCmd(a),
		newWorldsCmd(a),
		newCacheCmd(a),
		newWatchCmd(a),
		newServeCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Observability.LogLevel = a.logLevel
	}
	level, err := logging.ParseLevel(cfg.Observability.LogLevel)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.logger = logging.New(logging.Config{
		Level:   level,
		LogDir:  cfg.Observability.LogDir,
		Service: cfg.Observability.ServiceName,
		JSON:    cfg.Observability.JSONLogs,
		Writer:  cmd.ErrOrStderr(),
	})
	slog.SetDefault(a.logger.Slog())

	f, _ := cmd.OutOrStdout().(*os.File)
	a.out = ux.NewPrinter(cmd.OutOrStdout(), ux.ParseMode(a.output, f))
	return nil
}

// worldFlags selects the world for a command.
type worldFlags struct {
	path    string
	example string
}

func (w *worldFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&w.path, "world", "w", "", "World file (YAML or JSON)")
	cmd.Flags().StringVarP(&w.example, "example", "e", "small", "Built-in world when --world is not set")
}

func (w *worldFlags) load() (*world.State, error) {
	if w.path != "" {
		return world.Load(w.path)
	}
	return world.Example(w.example)
}

// newPlanner builds a planner with the plan cache attached when enabled.
// The returned cleanup closes the cache and must always be called.
func (a *app) newPlanner(tracing bool) (*planner.Planner, func(), error) {
	logger := a.logger.Slog()
	opts := []planner.Option{planner.WithLogger(logger)}
	if tracing {
		opts = append(opts, planner.WithTracer(planner.NewTracer(logger, true)))
	}

	cleanup := func() {}
	if a.cfg.Cache.Enabled {
		store, closeDB, err := a.openPlanStore()
		if err != nil {
			return nil, cleanup, err
		}
		cleanup = closeDB
		opts = append(opts, planner.WithCache(store))
	}

	p, err := planner.New(a.cfg.Planner(), opts...)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	return p, cleanup, nil
}

func (a *app) openPlanStore() (*badger.PlanStore, func(), error) {
	bc := a.cfg.Badger()
	bc.Logger = a.logger.Slog()
	db, err := badger.OpenDB(bc)
	if err != nil {
		return nil, nil, fmt.Errorf("open plan cache: %w", err)
	}
	store, err := badger.NewPlanStore(db, a.cfg.Cache.TTL)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return store, func() { _ = db.Close() }, nil
}
