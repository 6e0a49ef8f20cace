// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package search provides a graph-agnostic A* search.
//
// The engine knows nothing about the domain. A Graph supplies outgoing edges
// and a totally ordered key per node; the key identifies duplicate nodes and
// breaks ties between frontier entries of equal rank, which makes results
// reproducible.
//
// Closed nodes are never reopened. With a consistent heuristic the returned
// path is optimal; with a merely admissible one it may not be.
package search

import (
	"cmp"
	"container/heap"
	"context"
	"errors"
	"fmt"
	"time"
)

// Edge is a weighted transition between two nodes carrying a payload.
type Edge[N any, L any] struct {
	From  N
	To    N
	Cost  float64
	Label L
}

// Graph is the domain adapter searched by AStar.
//
// Key must return equal keys for nodes the search should treat as the same
// node. Edge costs must be non-negative.
type Graph[N any, K cmp.Ordered, L any] interface {
	OutgoingEdges(n N) []Edge[N, L]
	Key(n N) K
}

// Options bounds a search.
type Options[N any] struct {
	// Timeout is the wall-clock budget. Zero means no budget beyond ctx.
	Timeout time.Duration

	// MaxExpansions caps the number of expanded nodes. Zero means unlimited.
	MaxExpansions int

	// OnClose, if set, is called with every node as it leaves the frontier,
	// together with its cost from the start.
	OnClose func(n N, g float64)
}

// Stats describes the work done by one search.
type Stats struct {
	Expanded       int           `json:"expanded"`
	Generated      int           `json:"generated"`
	Updated        int           `json:"updated"`
	HeuristicCalls int           `json:"heuristic_calls"`
	Duration       time.Duration `json:"duration"`
}

// Result is a successful search outcome.
type Result[N any, L any] struct {
	// Path is the edge sequence from start to Goal. Empty when start is a goal.
	Path []Edge[N, L]

	// Cost is the sum of edge costs along Path.
	Cost float64

	// Goal is the goal node reached.
	Goal N

	Stats Stats
}

// Labels returns the payloads of path in order.
func Labels[N any, L any](path []Edge[N, L]) []L {
	labels := make([]L, len(path))
	for i, e := range path {
		labels[i] = e.Label
	}
	return labels
}

// Zero is a heuristic that always returns 0, turning AStar into
// uniform-cost search.
func Zero[N any](N) float64 {
	return 0
}

// AStar searches g from start for a node satisfying isGoal.
//
// Description:
//
//	The frontier is ordered by g+h and ties are broken by key. The
//	heuristic is evaluated once per discovered node. When an open node is
//	reached by a cheaper edge its cost and parent are updated and it is
//	re-sorted in place; a closed node is left alone. The deadline and ctx
//	are checked each time a node is taken from the frontier.
//
// Inputs:
//
//	ctx - Cancellation. A ctx deadline is reported as ErrTimeout.
//	g - The graph. Must not be nil.
//	start - Start node.
//	isGoal - Goal predicate.
//	h - Heuristic estimate of remaining cost.
//	opts - Budget and hooks.
//
// Outputs:
//
//	*Result - Always non-nil; Stats are filled in even on failure.
//	error - *Error wrapping ErrNoPath, ErrTimeout, ErrExpansionLimit,
//	        ErrNegativeCost or the ctx error.
//
// Thread Safety: Each call owns its bookkeeping. Safe for concurrent use if
// g, isGoal and h are.
func AStar[N any, K cmp.Ordered, L any](
	ctx context.Context,
	g Graph[N, K, L],
	start N,
	isGoal func(N) bool,
	h func(N) float64,
	opts Options[N],
) (*Result[N, L], error) {
	began := time.Now()
	res := &Result[N, L]{}
	finish := func(err error) (*Result[N, L], error) {
		res.Stats.Duration = time.Since(began)
		recordSearch(ctx, res.Stats, err)
		if err != nil {
			return res, &Error{Op: "AStar", Err: err}
		}
		return res, nil
	}

	if g == nil {
		return finish(ErrNilGraph)
	}

	var deadline time.Time
	if opts.Timeout > 0 {
		deadline = began.Add(opts.Timeout)
	}

	records := make(map[K]*record[N, K, L])
	open := &frontier[N, K, L]{}

	root := &record[N, K, L]{node: start, key: g.Key(start), h: h(start)}
	res.Stats.HeuristicCalls++
	records[root.key] = root
	heap.Push(open, root)

	for open.Len() > 0 {
		if !deadline.IsZero() && time.Now().After(deadline) {
			return finish(ErrTimeout)
		}
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return finish(ErrTimeout)
			}
			return finish(ctx.Err())
		default:
		}

		cur := heap.Pop(open).(*record[N, K, L])
		if opts.OnClose != nil {
			opts.OnClose(cur.node, cur.g)
		}

		if isGoal(cur.node) {
			res.Path = reconstruct(records, g, cur)
			res.Cost = cur.g
			res.Goal = cur.node
			return finish(nil)
		}

		if opts.MaxExpansions > 0 && res.Stats.Expanded >= opts.MaxExpansions {
			return finish(ErrExpansionLimit)
		}
		res.Stats.Expanded++

		for _, e := range g.OutgoingEdges(cur.node) {
			if e.Cost < 0 {
				return finish(fmt.Errorf("%w: %v", ErrNegativeCost, e.Cost))
			}
			res.Stats.Generated++
			edge := e
			tentative := cur.g + edge.Cost
			key := g.Key(edge.To)

			next, seen := records[key]
			if !seen {
				next = &record[N, K, L]{
					node:   edge.To,
					key:    key,
					parent: &edge,
					g:      tentative,
					h:      h(edge.To),
				}
				res.Stats.HeuristicCalls++
				records[key] = next
				heap.Push(open, next)
				continue
			}

			if next.open() && tentative < next.g {
				next.node = edge.To
				next.parent = &edge
				next.g = tentative
				heap.Fix(open, next.index)
				res.Stats.Updated++
			}
		}
	}

	return finish(ErrNoPath)
}

func reconstruct[N any, K cmp.Ordered, L any](records map[K]*record[N, K, L], g Graph[N, K, L], goal *record[N, K, L]) []Edge[N, L] {
	var path []Edge[N, L]
	for r := goal; r.parent != nil; r = records[g.Key(r.parent.From)] {
		path = append(path, *r.parent)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
