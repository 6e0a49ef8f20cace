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

import "cmp"

// record is the bookkeeping for one discovered node.
//
// index is the record's position in the frontier heap while the node is
// open, and -1 once it has been closed. A closed node is never reopened.
type record[N any, K cmp.Ordered, L any] struct {
	node   N
	key    K
	parent *Edge[N, L]
	g      float64
	h      float64
	index  int
}

func (r *record[N, K, L]) rank() float64 {
	return r.g + r.h
}

func (r *record[N, K, L]) open() bool {
	return r.index >= 0
}

// frontier is a binary min-heap of open records ordered by rank, then key.
// It implements heap.Interface and keeps every record's index current so
// heap.Fix can reorder a record after its cost improves.
type frontier[N any, K cmp.Ordered, L any] []*record[N, K, L]

func (f frontier[N, K, L]) Len() int { return len(f) }

func (f frontier[N, K, L]) Less(i, j int) bool {
	ri, rj := f[i].rank(), f[j].rank()
	if ri != rj {
		return ri < rj
	}
	return cmp.Less(f[i].key, f[j].key)
}

func (f frontier[N, K, L]) Swap(i, j int) {
	f[i], f[j] = f[j], f[i]
	f[i].index = i
	f[j].index = j
}

func (f *frontier[N, K, L]) Push(x any) {
	r := x.(*record[N, K, L])
	r.index = len(*f)
	*f = append(*f, r)
}

func (f *frontier[N, K, L]) Pop() any {
	old := *f
	n := len(old)
	r := old[n-1]
	old[n-1] = nil
	r.index = -1
	*f = old[:n-1]
	return r
}
