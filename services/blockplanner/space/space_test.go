// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package space

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/blockplanner/services/blockplanner/logic"
	"github.com/AleutianAI/blockplanner/services/blockplanner/search"
	"github.com/AleutianAI/blockplanner/services/blockplanner/world"
)

var _ search.Graph[*world.State, string, []world.Action] = (*Graph)(nil)

func small(t *testing.T) *world.State {
	t.Helper()
	s, err := world.Example("small")
	require.NoError(t, err)
	return s
}

func TestMoves(t *testing.T) {
	assert.Empty(t, Moves(2, 2))
	assert.Equal(t, []world.Action{world.Right, world.Right}, Moves(1, 3))
	assert.Equal(t, []world.Action{world.Left, world.Left, world.Left}, Moves(4, 1))
}

func TestOutgoingEdges_Pick(t *testing.T) {
	s := small(t)
	s.Arm = 1
	edges := New().OutgoingEdges(s)

	// Columns 0, 1 and 3 are non-empty.
	require.Len(t, edges, 3)

	assert.Equal(t, []world.Action{world.Left, world.Pick}, edges[0].Label)
	assert.Equal(t, 2.0, edges[0].Cost)
	assert.Equal(t, "e", edges[0].To.Holding)
	assert.Equal(t, 0, edges[0].To.Arm)

	assert.Equal(t, []world.Action{world.Pick}, edges[1].Label)
	assert.Equal(t, "l", edges[1].To.Holding)

	assert.Equal(t, []world.Action{world.Right, world.Right, world.Pick}, edges[2].Label)
	assert.Equal(t, "f", edges[2].To.Holding)
	assert.Equal(t, "e|g,l||k,m|", edges[2].To.Key())

	for _, e := range edges {
		assert.Same(t, s, e.From)
		assert.Equal(t, float64(len(e.Label)), e.Cost)
	}
}

func TestOutgoingEdges_DropRespectsPhysics(t *testing.T) {
	s := small(t)
	held, err := s.Apply(world.Pick) // large white ball e
	require.NoError(t, err)

	edges := New().OutgoingEdges(held)
	var cols []int
	for _, e := range edges {
		cols = append(cols, e.To.Arm)
		assert.Equal(t, world.Drop, e.Label[len(e.Label)-1])
		assert.Equal(t, "", e.To.Holding)
		assert.NoError(t, e.To.Validate())
	}
	// 0 and 2 and 4 are empty, 1 is the large red box l. Column 3 tops out
	// with the small ball f.
	assert.Equal(t, []int{0, 1, 2, 4}, cols)
}

func TestOutgoingEdges_LargeBallNeverInSmallBox(t *testing.T) {
	s := &world.State{
		Stacks:  [][]string{{"m"}, {}},
		Holding: "e",
		Objects: map[string]world.Object{
			"e": {Form: world.Ball, Size: world.Large, Color: "white"},
			"m": {Form: world.Box, Size: world.Small, Color: "blue"},
		},
	}
	for _, e := range New().OutgoingEdges(s) {
		assert.NotEqual(t, 0, e.To.Arm, "dropped large ball into small box")
	}
	assert.True(t, world.AgainstPhysics(logic.Inside, "e", "m", s))
}

func TestOutgoingEdges_IndependentStates(t *testing.T) {
	s := small(t)
	before := s.FullKey()
	edges := New().OutgoingEdges(s)
	require.NotEmpty(t, edges)

	edges[0].To.Stacks[3][0] = "zz"
	for _, e := range edges[1:] {
		assert.Equal(t, "k", e.To.Stacks[3][0])
	}
	assert.Equal(t, before, s.FullKey())
}

func TestOutgoingEdges_ReplayMatches(t *testing.T) {
	s := small(t)
	g := New()
	frontier := []*world.State{s}
	for depth := 0; depth < 3; depth++ {
		var next []*world.State
		for _, cur := range frontier {
			for _, e := range g.OutgoingEdges(cur) {
				got, _, err := cur.ApplyAll(e.Label)
				require.NoError(t, err)
				assert.Equal(t, e.To.FullKey(), got.FullKey())
				next = append(next, e.To)
			}
		}
		frontier = next
	}
}

func TestKey(t *testing.T) {
	s := small(t)
	moved := s.Clone()
	moved.Arm = 4

	assert.Equal(t, New().Key(s), New().Key(moved))
	assert.NotEqual(t, New(WithArmInKey()).Key(s), New(WithArmInKey()).Key(moved))
}
