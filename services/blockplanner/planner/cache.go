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
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"sort"

	"github.com/AleutianAI/blockplanner/services/blockplanner/goal"
	"github.com/AleutianAI/blockplanner/services/blockplanner/logic"
	"github.com/AleutianAI/blockplanner/services/blockplanner/world"
)

// Cache persists successful plans between calls.
//
// Implementations must be safe for concurrent use. A missing key is
// reported as found == false with a nil error.
type Cache interface {
	Load(ctx context.Context, key string) (value []byte, found bool, err error)
	Save(ctx context.Context, key string, value []byte) error
}

type cachedPlan struct {
	Actions []world.Action `json:"actions"`
	Cost    float64        `json:"cost"`
}

// cacheKey identifies a planning problem: the full world including arm and
// object definitions, the formula, and whether the search told states apart
// by arm position.
func cacheKey(f logic.Formula, s *world.State, armInKey bool) string {
	h := sha256.New()
	h.Write([]byte(s.FullKey()))
	h.Write([]byte{0})
	if armInKey {
		h.Write([]byte("arm-in-key"))
	}
	h.Write([]byte{0})

	ids := make([]string, 0, len(s.Objects))
	for id := range s.Objects {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		h.Write([]byte(id + "=" + s.Objects[id].String() + ";"))
	}
	h.Write([]byte{0})
	h.Write([]byte(f.String()))
	return hex.EncodeToString(h.Sum(nil))
}

// lookup returns the cached plan for key. Cache errors and corrupt entries
// are treated as misses.
func (p *Planner) lookup(ctx context.Context, key string) (cachedPlan, bool) {
	if p.cache == nil {
		return cachedPlan{}, false
	}
	raw, found, err := p.cache.Load(ctx, key)
	if err != nil {
		cacheLookups.WithLabelValues("error").Inc()
		p.logger.Warn("plan cache load failed", slog.String("error", err.Error()))
		return cachedPlan{}, false
	}
	if !found {
		cacheLookups.WithLabelValues("miss").Inc()
		return cachedPlan{}, false
	}

	var cp cachedPlan
	if err := json.Unmarshal(raw, &cp); err != nil {
		cacheLookups.WithLabelValues("error").Inc()
		p.logger.Warn("plan cache entry corrupt", slog.String("key", key), slog.String("error", err.Error()))
		return cachedPlan{}, false
	}
	cacheLookups.WithLabelValues("hit").Inc()
	return cp, true
}

func (p *Planner) store(ctx context.Context, key string, cp cachedPlan) {
	if p.cache == nil {
		return
	}
	raw, err := json.Marshal(cp)
	if err != nil {
		return
	}
	if err := p.cache.Save(ctx, key, raw); err != nil {
		p.logger.Warn("plan cache save failed", slog.String("error", err.Error()))
	}
}

// replays reports whether actions take s to a state satisfying f.
func replays(actions []world.Action, f logic.Formula, s *world.State) bool {
	end, _, err := s.ApplyAll(actions)
	return err == nil && goal.Satisfied(f, end)
}
