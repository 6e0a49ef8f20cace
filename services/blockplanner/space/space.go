// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package space exposes the block world as a search graph.
//
// One edge moves the arm to a column and performs a single pick or drop
// there. Its cost is the number of primitive actions it contains, so the
// cost of a path equals the length of the flattened plan.
package space

import (
	"github.com/AleutianAI/blockplanner/services/blockplanner/search"
	"github.com/AleutianAI/blockplanner/services/blockplanner/world"
)

// Edge is a block-world transition labelled with its primitive actions.
type Edge = search.Edge[*world.State, []world.Action]

// Graph implements search.Graph over world states.
//
// Thread Safety: Safe for concurrent use; a Graph holds no mutable state.
type Graph struct {
	armInKey bool
}

// Option configures a Graph.
type Option func(*Graph)

// WithArmInKey makes the arm column and the held object part of node
// identity. Searches then distinguish states that differ only in where the
// arm is, which makes uniform-cost search return exact optimal plan lengths
// at the price of a larger graph.
func WithArmInKey() Option {
	return func(g *Graph) {
		g.armInKey = true
	}
}

// New creates a Graph.
func New(opts ...Option) *Graph {
	g := &Graph{}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Key returns the node identity of s. By default only the stacks count.
func (g *Graph) Key(s *world.State) string {
	if g.armInKey {
		return s.FullKey()
	}
	return s.Key()
}

// OutgoingEdges returns the legal single pick or drop transitions from s.
//
// Description:
//
//	With an empty arm there is one edge per non-empty column, picking its
//	top object. With a full arm there is one edge per column that accepts
//	the held object (see world.State.CanDrop). Edges are produced in
//	column order and every target state is an independent copy.
func (g *Graph) OutgoingEdges(s *world.State) []Edge {
	edges := make([]Edge, 0, len(s.Stacks))

	if s.Holding == "" {
		for col, stack := range s.Stacks {
			if len(stack) == 0 {
				continue
			}
			next := s.Clone()
			next.Stacks[col] = next.Stacks[col][:len(stack)-1]
			next.Holding = stack[len(stack)-1]
			next.Arm = col
			edges = append(edges, edge(s, next, col, world.Pick))
		}
		return edges
	}

	for col := range s.Stacks {
		if !s.CanDrop(col) {
			continue
		}
		next := s.Clone()
		next.Stacks[col] = append(next.Stacks[col], s.Holding)
		next.Holding = ""
		next.Arm = col
		edges = append(edges, edge(s, next, col, world.Drop))
	}
	return edges
}

func edge(from, to *world.State, col int, final world.Action) Edge {
	commands := append(Moves(from.Arm, col), final)
	return Edge{
		From:  from,
		To:    to,
		Cost:  float64(len(commands)),
		Label: commands,
	}
}

// Moves returns the left or right steps taking the arm from one column to
// another.
func Moves(from, to int) []world.Action {
	n := to - from
	step := world.Right
	if n < 0 {
		n = -n
		step = world.Left
	}
	moves := make([]world.Action, n, n+1)
	for i := range moves {
		moves[i] = step
	}
	return moves
}
