// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package heuristic estimates how many primitive actions remain before a
// goal formula holds.
//
// Every estimate is a lower bound on the true plan length. The terms are:
//
//   - Access: 4 per object stacked on something that must be picked or
//     uncovered. Each such object is picked, carried at least one column,
//     dropped, and the arm then has to travel at least one column to the
//     next pick that matters.
//   - Travel: the arm's distance to the nearest column it must work in.
//   - Lateral: the net column distance the goal objects must be carried.
//   - Pick and drop: one action each for the goal objects that must move,
//     plus one to put down an unrelated object the arm is holding.
//
// A literal that can never hold under the physical rules estimates +Inf.
package heuristic

import (
	"math"

	"github.com/AleutianAI/blockplanner/services/blockplanner/goal"
	"github.com/AleutianAI/blockplanner/services/blockplanner/logic"
	"github.com/AleutianAI/blockplanner/services/blockplanner/world"
)

// Unreachable is the estimate for goals that can never be satisfied.
var Unreachable = math.Inf(1)

// Access returns the cost of uncovering id: 4 per object above it.
func Access(s *world.State, id string) int {
	return 4 * s.Covering(id)
}

// Formula estimates the cost of satisfying f from s.
//
// The cheapest conjunction wins; within a conjunction the most expensive
// literal is taken, since the literals' work may overlap. An empty formula
// is Unreachable and an empty conjunction costs 0.
func Formula(f logic.Formula, s *world.State) float64 {
	best := Unreachable
	for _, c := range f {
		worst := 0.0
		for _, lit := range c {
			if h := Literal(lit, s); h > worst {
				worst = h
			}
		}
		if worst < best {
			best = worst
		}
	}
	return best
}

// Literal estimates the cost of making lit true in s.
func Literal(lit logic.Literal, s *world.State) float64 {
	if goal.Holds(lit, s) {
		return 0
	}
	if !lit.Polarity {
		// Any change to the world takes at least one pick or drop.
		return 1
	}
	return positive(lit, s)
}

func positive(lit logic.Literal, s *world.State) float64 {
	a, b := lit.First(), lit.Second()

	switch lit.Relation {
	case logic.Holding:
		return holding(a, s)

	case logic.OnTop, logic.Inside:
		if b == logic.Floor {
			return toFloor(a, s)
		}
		if unreachablePlacement(lit.Relation, a, b, s) {
			return Unreachable
		}
		return place(lit.Relation, a, b, s)

	case logic.Above:
		if b == logic.Floor {
			return 0
		}
		return stackAbove(a, b, s)

	case logic.Under:
		if b == logic.Floor {
			return Unreachable
		}
		if a == logic.Floor {
			return 0
		}
		return stackAbove(b, a, s)

	case logic.Beside:
		return lateral(a, b, s, func(c1, c2 int) int { return abs(abs(c1-c2) - 1) })
	case logic.LeftOf:
		return lateral(a, b, s, func(c1, c2 int) int { return abs(c1 - (c2 - 1)) })
	case logic.RightOf:
		return lateral(a, b, s, func(c1, c2 int) int { return abs(c1 - (c2 + 1)) })
	}
	return 1
}

// holding: travel to the column, dig it out, pick it.
func holding(x string, s *world.State) float64 {
	lx, ok := s.Locate(x)
	if !ok {
		return 1
	}
	return float64(abs(s.Arm-lx.Column) + Access(s, x) + 1 + putDown(s, x))
}

// toFloor: x must leave its column, since what is under it stays put.
func toFloor(x string, s *world.State) float64 {
	lx, ok := s.Locate(x)
	if !ok {
		return 1
	}
	if lx.Held {
		return 1
	}
	return float64(abs(s.Arm-lx.Column) + Access(s, x) + 3 + putDown(s, x))
}

// place estimates ontop(x,y) or inside(x,y) for a non-floor y.
func place(rel logic.Relation, x, y string, s *world.State) float64 {
	lx, okx := s.Locate(x)
	ly, oky := s.Locate(y)
	if !okx || !oky {
		return 1
	}

	switch {
	case lx.Held:
		return float64(abs(s.Arm-ly.Column) + 4*len(blockers(s, "", host(rel, x, y, s))) + 1)
	case ly.Held:
		return float64(abs(s.Arm-lx.Column) + Access(s, x) + 3)
	}

	n := len(blockers(s, x, x, host(rel, x, y, s)))
	travel := min(abs(s.Arm-lx.Column), abs(s.Arm-ly.Column))
	return float64(travel + 4*n + abs(lx.Column-ly.Column) + 2 + putDown(s, x, y))
}

// host is the object x must end up directly on: y, or for inside the box
// already resting in y when x fits in it.
func host(rel logic.Relation, x, y string, s *world.State) string {
	if rel != logic.Inside {
		return y
	}
	ly, ok := s.Locate(y)
	if !ok || ly.Held || ly.Row+1 >= len(s.Stacks[ly.Column]) {
		return y
	}
	inner := s.Stacks[ly.Column][ly.Row+1]
	if o, ok := s.Objects[inner]; ok && o.Form == world.Box && inner != x && world.IsLegal(logic.Inside, x, inner, s) {
		return inner
	}
	return y
}

// stackAbove estimates above(x,y): x must be carried onto y's column.
func stackAbove(x, y string, s *world.State) float64 {
	lx, okx := s.Locate(x)
	ly, oky := s.Locate(y)
	if !okx || !oky {
		return 1
	}

	switch {
	case lx.Held:
		return float64(abs(s.Arm-ly.Column) + 1)
	case ly.Held:
		return float64(abs(s.Arm-lx.Column) + Access(s, x) + 3)
	}

	travel := min(abs(s.Arm-lx.Column), abs(s.Arm-ly.Column))
	return float64(travel + Access(s, x) + abs(lx.Column-ly.Column) + 2 + putDown(s, x, y))
}

// lateral estimates a column relation: one of x, y must move, and the pair
// must be carried need(cx, cy) columns in total.
func lateral(x, y string, s *world.State, need func(c1, c2 int) int) float64 {
	lx, okx := s.Locate(x)
	ly, oky := s.Locate(y)
	if !okx || !oky {
		return 1
	}

	if lx.Held || ly.Held {
		return float64(need(lx.Column, ly.Column) + 1)
	}

	travel := min(abs(s.Arm-lx.Column), abs(s.Arm-ly.Column))
	dig := min(Access(s, x), Access(s, y))
	return float64(travel + dig + need(lx.Column, ly.Column) + 2 + putDown(s, x, y))
}

// blockers returns the distinct objects stacked above any of ids, excluding
// skip. Held or unknown ids contribute nothing.
func blockers(s *world.State, skip string, ids ...string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, id := range ids {
		loc, ok := s.Locate(id)
		if !ok || loc.Held {
			continue
		}
		for _, above := range s.Stacks[loc.Column][loc.Row+1:] {
			if above != skip {
				set[above] = struct{}{}
			}
		}
	}
	return set
}

// putDown is 1 when the arm holds something other than ids and must drop
// it before it can pick.
func putDown(s *world.State, ids ...string) int {
	if s.Holding == "" {
		return 0
	}
	for _, id := range ids {
		if s.Holding == id {
			return 0
		}
	}
	return 1
}

// unreachablePlacement reports whether ontop/inside(x,y) can never become
// true by legal moves.
//
// ontop needs a direct legal drop. inside can also be reached through a box
// already resting in y, so it is only ruled out when y is no box, or when
// the direct placement is illegal and no box rests in y: a box put into y
// later is always too small to take x.
func unreachablePlacement(rel logic.Relation, x, y string, s *world.State) bool {
	if rel == logic.OnTop {
		return world.AgainstPhysics(logic.OnTop, x, y, s)
	}

	oy, ok := s.Objects[y]
	if !ok || oy.Form != world.Box {
		return true
	}
	if world.IsLegal(logic.Inside, x, y, s) {
		return false
	}
	ly, ok := s.Locate(y)
	if ok && !ly.Held && ly.Row+1 < len(s.Stacks[ly.Column]) {
		if o, ok := s.Objects[s.Stacks[ly.Column][ly.Row+1]]; ok && o.Form == world.Box {
			return false
		}
	}
	return true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
