// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/blockplanner/services/blockplanner/world"
)

func smallWorld(t *testing.T) *world.State {
	t.Helper()
	s, err := world.Example("small")
	require.NoError(t, err)
	return s
}

func TestRenderWorld_Plain(t *testing.T) {
	want := strings.Join([]string{
		"▼",
		"         f",
		"   l     m",
		"e  g     k",
		strings.Repeat("─", 15),
		"0  1  2  3  4",
	}, "\n")
	assert.Equal(t, want, RenderWorld(smallWorld(t), false))
}

func TestRenderWorld_Holding(t *testing.T) {
	s, err := smallWorld(t).Apply(world.Pick)
	require.NoError(t, err)

	lines := strings.Split(RenderWorld(s, false), "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Equal(t, "▼", lines[0])
	assert.Equal(t, "e", lines[1])
	assert.Equal(t, "         f", lines[2])
}

func TestRenderWorld_StyledKeepsIDs(t *testing.T) {
	out := RenderWorld(smallWorld(t), true)
	for _, id := range []string{"e", "f", "g", "k", "l", "m"} {
		assert.Contains(t, out, id)
	}
}

func TestLegend(t *testing.T) {
	lines := Legend(smallWorld(t))
	require.Len(t, lines, 6)
	assert.Equal(t, "e   large white ball", lines[0])
	assert.Equal(t, "m   small blue box", lines[5])
}

func TestPrinter_World(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, ModeMachine).World(smallWorld(t))
	assert.True(t, strings.HasPrefix(buf.String(), "world=["))

	buf.Reset()
	NewPrinter(&buf, ModePlain).World(smallWorld(t))
	assert.Contains(t, buf.String(), "0  1  2  3  4")
	assert.Contains(t, buf.String(), "k   large yellow box")
}

func TestPrinter_Steps(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, ModeMachine)
	require.NoError(t, p.Steps(smallWorld(t), []world.Action{world.Pick, world.Right, world.Right, world.Drop}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "step=1 action=p "))
	assert.True(t, strings.HasPrefix(lines[3], "step=4 action=d "))

	buf.Reset()
	err := p.Steps(smallWorld(t), []world.Action{world.Drop})
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(buf.String(), "ERROR: step 1 (Dropping)"))
}
