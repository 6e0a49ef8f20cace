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
	"github.com/spf13/cobra"
)

func newCacheCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the plan cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show how many plans are cached",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeDB, err := a.openPlanStore()
			if err != nil {
				return err
			}
			defer closeDB()

			n, err := store.Count(cmd.Context())
			if err != nil {
				return err
			}
			if a.cfg.Cache.InMemory {
				a.out.Field("path", "(in memory)")
			} else {
				a.out.Field("path", a.cfg.Cache.Path)
			}
			a.out.Field("plans", n)
			a.out.Field("ttl", a.cfg.Cache.TTL)
			a.out.Field("enabled", a.cfg.Cache.Enabled)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Delete every cached plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeDB, err := a.openPlanStore()
			if err != nil {
				return err
			}
			defer closeDB()

			if err := store.Purge(cmd.Context()); err != nil {
				return err
			}
			a.out.Success("plan cache cleared")
			return nil
		},
	})
	return cmd
}
