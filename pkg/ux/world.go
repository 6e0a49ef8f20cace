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
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/AleutianAI/blockplanner/services/blockplanner/world"
)

const cellWidth = 3

var objectColors = map[string]lipgloss.Color{
	"black":  lipgloss.Color("#7F8C8D"),
	"blue":   lipgloss.Color("#3498DB"),
	"green":  lipgloss.Color("#2ECC71"),
	"red":    lipgloss.Color("#E74C3C"),
	"white":  lipgloss.Color("#ECF0F1"),
	"yellow": lipgloss.Color("#F4D03F"),
}

// RenderWorld draws s as columns, bottom row last, with the arm marked
// above its column and the held object beneath the marker.
//
// Example (plain):
//
//	▼
//	         f
//	   l     m
//	e  g     k
//	───────────────
//	0  1  2  3  4
func RenderWorld(s *world.State, styled bool) string {
	height := 0
	for _, stack := range s.Stacks {
		height = max(height, len(stack))
	}

	var lines []string
	lines = append(lines, row(s, styled, func(col int) string {
		if col == s.Arm {
			return string(IconArm)
		}
		return ""
	}))
	if s.Holding != "" {
		lines = append(lines, row(s, styled, func(col int) string {
			if col == s.Arm {
				return s.Holding
			}
			return ""
		}))
	}
	for r := height - 1; r >= 0; r-- {
		lines = append(lines, row(s, styled, func(col int) string {
			if r < len(s.Stacks[col]) {
				return s.Stacks[col][r]
			}
			return ""
		}))
	}

	floor := strings.Repeat("─", cellWidth*s.Columns())
	if styled {
		floor = Styles.Muted.Render(floor)
	}
	lines = append(lines, floor)

	var idx strings.Builder
	for col := range s.Stacks {
		fmt.Fprintf(&idx, "%-*d", cellWidth, col)
	}
	lines = append(lines, strings.TrimRight(idx.String(), " "))

	return strings.Join(lines, "\n")
}

func row(s *world.State, styled bool, cell func(col int) string) string {
	var b strings.Builder
	for col := range s.Stacks {
		text := cell(col)
		pad := strings.Repeat(" ", cellWidth-lipgloss.Width(text))
		if styled && text != "" {
			text = styleObject(s, text)
		}
		b.WriteString(text)
		b.WriteString(pad)
	}
	return strings.TrimRight(b.String(), " ")
}

func styleObject(s *world.State, id string) string {
	o, ok := s.Object(id)
	if !ok {
		return Styles.Bold.Render(id)
	}
	st := lipgloss.NewStyle().Bold(o.Size == world.Large)
	if c, ok := objectColors[o.Color]; ok {
		st = st.Foreground(c)
	}
	return st.Render(id)
}

// Legend lists every object as "id  size color form", sorted by id.
func Legend(s *world.State) []string {
	ids := make([]string, 0, len(s.Objects))
	for id := range s.Objects {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	lines := make([]string, len(ids))
	for i, id := range ids {
		lines[i] = fmt.Sprintf("%-3s %s", id, s.Objects[id])
	}
	return lines
}

// World prints s. Machine mode prints the compact state line instead of
// the drawing.
func (p *Printer) World(s *world.State) {
	if p.mode == ModeMachine {
		fmt.Fprintf(p.w, "world=%s\n", s)
		return
	}
	fmt.Fprintln(p.w, RenderWorld(s, p.mode == ModeStyled))
	for _, line := range Legend(s) {
		fmt.Fprintln(p.w, p.style(Styles.Muted, line))
	}
}

// Steps prints each action followed by the world it produces, stopping at
// the first illegal action.
func (p *Printer) Steps(s *world.State, actions []world.Action) error {
	cur := s
	for i, a := range actions {
		next, err := cur.Apply(a)
		if err != nil {
			p.Error(fmt.Sprintf("step %d (%s): %v", i+1, a.Describe(), err))
			return err
		}
		if p.mode == ModeMachine {
			fmt.Fprintf(p.w, "step=%d action=%s world=%s\n", i+1, a.Short(), next)
		} else {
			fmt.Fprintf(p.w, "%s %d. %s\n", IconArrow, i+1, p.style(Styles.Subtitle, a.Describe()))
			fmt.Fprintln(p.w, RenderWorld(next, p.mode == ModeStyled))
		}
		cur = next
	}
	return nil
}
