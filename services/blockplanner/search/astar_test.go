// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package search

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// weighted is a small directed graph over string nodes.
type weighted map[string]map[string]float64

func (w weighted) OutgoingEdges(n string) []Edge[string, string] {
	var edges []Edge[string, string]
	for _, to := range sortedKeys(w[n]) {
		edges = append(edges, Edge[string, string]{From: n, To: to, Cost: w[n][to], Label: n + ">" + to})
	}
	return edges
}

func (w weighted) Key(n string) string { return n }

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j] < keys[j-1]; j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
	return keys
}

// line is an unbounded graph 0 -> 1 -> 2 -> ...
type line struct{}

func (line) OutgoingEdges(n int) []Edge[int, int] {
	return []Edge[int, int]{{From: n, To: n + 1, Cost: 1, Label: n}}
}

func (line) Key(n int) int { return n }

func equals(target string) func(string) bool {
	return func(n string) bool { return n == target }
}

func run(t *testing.T, g weighted, start, goal string, h func(string) float64, opts Options[string]) (*Result[string, string], error) {
	t.Helper()
	return AStar[string, string, string](context.Background(), g, start, equals(goal), h, opts)
}

func diamond() weighted {
	return weighted{
		"s": {"a": 1, "b": 4},
		"a": {"b": 1, "c": 6},
		"b": {"c": 1},
		"c": {},
	}
}

func TestAStar_ShortestPath(t *testing.T) {
	res, err := run(t, diamond(), "s", "c", Zero[string], Options[string]{})
	require.NoError(t, err)
	assert.Equal(t, 3.0, res.Cost)
	assert.Equal(t, "c", res.Goal)
	assert.Equal(t, []string{"s>a", "a>b", "b>c"}, Labels(res.Path))

	var sum float64
	for _, e := range res.Path {
		sum += e.Cost
	}
	assert.Equal(t, res.Cost, sum)
}

func TestAStar_UpdatesOpenNode(t *testing.T) {
	// b is improved from 4 to 2 via a, then c from 7 to 3 via b.
	res, err := run(t, diamond(), "s", "c", Zero[string], Options[string]{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Stats.Updated)
	assert.Equal(t, 3, res.Stats.Expanded)
	assert.Equal(t, 4, res.Stats.HeuristicCalls)
}

func TestAStar_HeuristicMemoized(t *testing.T) {
	calls := map[string]int{}
	h := func(n string) float64 {
		calls[n]++
		return 0
	}
	res, err := run(t, diamond(), "s", "c", h, Options[string]{})
	require.NoError(t, err)
	for n, c := range calls {
		assert.Equal(t, 1, c, "heuristic evaluated more than once for %s", n)
	}
	assert.Equal(t, len(calls), res.Stats.HeuristicCalls)
}

func TestAStar_StartIsGoal(t *testing.T) {
	res, err := run(t, diamond(), "s", "s", Zero[string], Options[string]{})
	require.NoError(t, err)
	assert.Empty(t, res.Path)
	assert.Equal(t, 0.0, res.Cost)
	assert.Equal(t, 0, res.Stats.Expanded)
}

func TestAStar_NoPath(t *testing.T) {
	g := diamond()
	g["z"] = map[string]float64{}
	res, err := run(t, g, "s", "z", Zero[string], Options[string]{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoPath))
	assert.False(t, errors.Is(err, ErrTimeout))
	assert.Equal(t, 4, res.Stats.Expanded)

	var serr *Error
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "AStar", serr.Op)
}

func TestAStar_Timeout(t *testing.T) {
	never := func(int) bool { return false }

	t.Run("option budget", func(t *testing.T) {
		res, err := AStar[int, int, int](context.Background(), line{}, 0, never, Zero[int], Options[int]{Timeout: 20 * time.Millisecond})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrTimeout))
		assert.False(t, errors.Is(err, ErrNoPath))
		assert.Greater(t, res.Stats.Expanded, 0)
	})

	t.Run("context deadline", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err := AStar[int, int, int](ctx, line{}, 0, never, Zero[int], Options[int]{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrTimeout))
	})

	t.Run("context cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := AStar[int, int, int](ctx, line{}, 0, never, Zero[int], Options[int]{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, context.Canceled))
		assert.False(t, errors.Is(err, ErrTimeout))
	})
}

func TestAStar_ExpansionLimit(t *testing.T) {
	never := func(int) bool { return false }
	res, err := AStar[int, int, int](context.Background(), line{}, 0, never, Zero[int], Options[int]{MaxExpansions: 25})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExpansionLimit))
	assert.Equal(t, 25, res.Stats.Expanded)
}

func TestAStar_NegativeCost(t *testing.T) {
	g := weighted{"s": {"a": -1}, "a": {}}
	_, err := run(t, g, "s", "a", Zero[string], Options[string]{})
	assert.True(t, errors.Is(err, ErrNegativeCost))
}

func TestAStar_NilGraph(t *testing.T) {
	_, err := AStar[string, string, string](context.Background(), nil, "s", equals("s"), Zero[string], Options[string]{})
	assert.True(t, errors.Is(err, ErrNilGraph))
}

func TestAStar_TieBreakDeterministic(t *testing.T) {
	// Two equal-cost routes; the smaller key wins every time.
	g := weighted{
		"s": {"x": 1, "y": 1},
		"x": {"t": 1},
		"y": {"t": 1},
		"t": {},
	}
	var first []string
	for i := 0; i < 20; i++ {
		res, err := run(t, g, "s", "t", Zero[string], Options[string]{})
		require.NoError(t, err)
		labels := Labels(res.Path)
		if first == nil {
			first = labels
		}
		assert.Equal(t, first, labels)
	}
	assert.Equal(t, []string{"s>x", "x>t"}, first)
}

// grid is a 2D 4-connected grid with a wall, for the closed-set invariant.
type grid struct {
	w, h  int
	walls map[[2]int]bool
}

func (g grid) OutgoingEdges(n [2]int) []Edge[[2]int, string] {
	var edges []Edge[[2]int, string]
	for _, d := range [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
		m := [2]int{n[0] + d[0], n[1] + d[1]}
		if m[0] < 0 || m[1] < 0 || m[0] >= g.w || m[1] >= g.h || g.walls[m] {
			continue
		}
		cost := 1.0
		if m[1]%2 == 1 {
			cost = 2
		}
		edges = append(edges, Edge[[2]int, string]{From: n, To: m, Cost: cost})
	}
	return edges
}

func (g grid) Key(n [2]int) int { return n[1]*g.w + n[0] }

func TestAStar_ClosedCostsMatchDijkstra(t *testing.T) {
	g := grid{w: 7, h: 6, walls: map[[2]int]bool{{3, 0}: true, {3, 1}: true, {3, 2}: true, {3, 3}: true}}
	start, goal := [2]int{0, 0}, [2]int{6, 0}
	isGoal := func(n [2]int) bool { return n == goal }

	// Reference distances by exhaustive uniform-cost search.
	dist := map[[2]int]float64{}
	never := func([2]int) bool { return false }
	_, err := AStar[[2]int, int, string](context.Background(), g, start, never, Zero[[2]int],
		Options[[2]int]{OnClose: func(n [2]int, c float64) { dist[n] = c }})
	require.True(t, errors.Is(err, ErrNoPath))
	require.Len(t, dist, g.w*g.h-len(g.walls))

	// Manhattan distance is consistent because every edge costs at least 1.
	manhattan := func(n [2]int) float64 {
		return math.Abs(float64(n[0]-goal[0])) + math.Abs(float64(n[1]-goal[1]))
	}
	closed := map[[2]int]float64{}
	res, err := AStar[[2]int, int, string](context.Background(), g, start, isGoal, manhattan,
		Options[[2]int]{OnClose: func(n [2]int, c float64) { closed[n] = c }})
	require.NoError(t, err)

	for n, c := range closed {
		assert.Equal(t, dist[n], c, "closed cost of %v", n)
	}
	assert.Equal(t, dist[goal], res.Cost)
	assert.Less(t, len(closed), len(dist), "heuristic should prune")

	// Re-derive the cost along the returned path.
	var sum float64
	cur := start
	for _, e := range res.Path {
		assert.Equal(t, cur, e.From)
		sum += e.Cost
		cur = e.To
	}
	assert.Equal(t, goal, cur)
	assert.Equal(t, res.Cost, sum)
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "found", Outcome(nil))
	assert.Equal(t, "no_path", Outcome(&Error{Op: "AStar", Err: ErrNoPath}))
	assert.Equal(t, "timeout", Outcome(&Error{Op: "AStar", Err: ErrTimeout}))
	assert.Equal(t, "expansion_limit", Outcome(ErrExpansionLimit))
	assert.Equal(t, "cancelled", Outcome(context.Canceled))
	assert.Equal(t, "error", Outcome(errors.New("boom")))
}
