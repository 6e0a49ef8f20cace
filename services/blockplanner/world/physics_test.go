// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package world

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AleutianAI/blockplanner/services/blockplanner/logic"
)

// catalog holds one object of every interesting form/size pair.
func catalog() *State {
	return &State{
		Stacks: [][]string{{}},
		Objects: map[string]Object{
			"LBall":    {Form: Ball, Size: Large, Color: "white"},
			"SBall":    {Form: Ball, Size: Small, Color: "black"},
			"LBox":     {Form: Box, Size: Large, Color: "red"},
			"SBox":     {Form: Box, Size: Small, Color: "blue"},
			"LBox2":    {Form: Box, Size: Large, Color: "yellow"},
			"LPyramid": {Form: Pyramid, Size: Large, Color: "yellow"},
			"SPyramid": {Form: Pyramid, Size: Small, Color: "red"},
			"LPlank":   {Form: Plank, Size: Large, Color: "red"},
			"SPlank":   {Form: Plank, Size: Small, Color: "green"},
			"LBrick":   {Form: Brick, Size: Large, Color: "green"},
			"SBrick":   {Form: Brick, Size: Small, Color: "white"},
			"LTable":   {Form: Table, Size: Large, Color: "blue"},
			"STable":   {Form: Table, Size: Small, Color: "red"},
		},
	}
}

func TestIsLegal(t *testing.T) {
	s := catalog()

	tests := []struct {
		name   string
		rel    logic.Relation
		source string
		dest   string
		legal  bool
	}{
		{"self", logic.OnTop, "LBrick", "LBrick", false},
		{"self beside", logic.Beside, "LBrick", "LBrick", false},
		{"unknown source", logic.OnTop, "nope", Floor, false},
		{"unknown dest", logic.OnTop, "LBrick", "nope", false},

		{"ball on floor", logic.OnTop, "LBall", Floor, true},
		{"ball on table", logic.OnTop, "SBall", "LTable", false},
		{"brick on ball", logic.OnTop, "SBrick", "LBall", false},
		{"brick on box", logic.OnTop, "SBrick", "LBox", false},
		{"brick on table", logic.OnTop, "SBrick", "LTable", true},
		{"large on small", logic.OnTop, "LBrick", "SBrick", false},
		{"small on large", logic.OnTop, "SBrick", "LBrick", true},
		{"small box on small pyramid", logic.OnTop, "SBox", "SPyramid", false},
		{"small box on small brick", logic.OnTop, "SBox", "SBrick", false},
		{"small box on small table", logic.OnTop, "SBox", "STable", true},
		{"small box on large brick", logic.OnTop, "SBox", "LBrick", true},
		{"large box on large pyramid", logic.OnTop, "LBox", "LPyramid", false},
		{"large box on large brick", logic.OnTop, "LBox", "LBrick", true},
		{"floor on brick", logic.OnTop, Floor, "LBrick", false},

		{"ball in box", logic.Inside, "LBall", "LBox", true},
		{"ball in small box", logic.Inside, "LBall", "SBox", false},
		{"small ball in small box", logic.Inside, "SBall", "SBox", true},
		{"inside non-box", logic.Inside, "SBall", "LTable", false},
		{"inside floor", logic.Inside, "SBall", Floor, false},
		{"same size pyramid", logic.Inside, "LPyramid", "LBox", false},
		{"same size plank", logic.Inside, "SPlank", "SBox", false},
		{"same size box", logic.Inside, "LBox2", "LBox", false},
		{"small box in large box", logic.Inside, "SBox", "LBox", true},
		{"same size brick", logic.Inside, "LBrick", "LBox", true},

		{"large above small", logic.Above, "LBrick", "SBrick", false},
		{"small above large", logic.Above, "SBall", "LBrick", true},
		{"above floor", logic.Above, "LBrick", Floor, true},

		{"small under large", logic.Under, "SBrick", "LBrick", false},
		{"large under small", logic.Under, "LBrick", "SBrick", true},
		{"under floor", logic.Under, "LBrick", Floor, false},
		{"floor under", logic.Under, Floor, "LBrick", true},

		{"beside", logic.Beside, "LBall", "SBall", true},
		{"leftof", logic.LeftOf, "LBall", "SBall", true},
		{"rightof", logic.RightOf, "LBall", "SBall", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.legal, IsLegal(tt.rel, tt.source, tt.dest, s))
			assert.Equal(t, !tt.legal, AgainstPhysics(tt.rel, tt.source, tt.dest, s))
		})
	}
}

func TestIsLegal_Deterministic(t *testing.T) {
	s := catalog()
	ids := make([]string, 0, len(s.Objects)+1)
	for id := range s.Objects {
		ids = append(ids, id)
	}
	ids = append(ids, Floor)
	key := s.FullKey()

	for _, rel := range logic.Relations {
		for _, a := range ids {
			for _, b := range ids {
				first := IsLegal(rel, a, b, s)
				for i := 0; i < 3; i++ {
					assert.Equal(t, first, IsLegal(rel, a, b, s))
				}
			}
		}
	}
	assert.Equal(t, key, s.FullKey(), "legality check must not touch the state")
}

func TestPlacementRelation(t *testing.T) {
	s := catalog()
	assert.Equal(t, logic.Inside, PlacementRelation("LBox", s))
	assert.Equal(t, logic.OnTop, PlacementRelation("LTable", s))
	assert.Equal(t, logic.OnTop, PlacementRelation(Floor, s))
}

func TestCanDrop(t *testing.T) {
	s := &State{
		Stacks:  [][]string{{}, {"LBox"}, {"LTable"}, {"SBox"}},
		Holding: "LBall",
		Objects: catalog().Objects,
	}
	assert.True(t, s.CanDrop(0), "empty column")
	assert.True(t, s.CanDrop(1), "ball inside large box")
	assert.False(t, s.CanDrop(2), "ball on table")
	assert.False(t, s.CanDrop(3), "large ball inside small box")
	assert.False(t, s.CanDrop(9), "out of range")

	s.Holding = ""
	assert.False(t, s.CanDrop(0), "nothing held")
}
