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

import "github.com/AleutianAI/blockplanner/services/blockplanner/logic"

// AgainstPhysics reports whether relating source to dest by rel would break
// a physical law of the world.
//
// Description:
//
//	The rules are OR-ed together:
//	  - nothing relates to itself
//	  - a ball can only lie on the floor, and nothing lies on a ball or a box
//	  - only boxes contain things; a pyramid, plank or box does not fit in a
//	    box of the same size
//	  - nothing large rests on, in or above something small
//	  - a small object is not under a large one, and nothing is under the floor
//	  - a small box does not sit on a small pyramid or brick
//	  - a large box does not sit on any pyramid
//
//	Unknown identifiers are against physics. The function reads only the
//	object definitions and has no side effects.
//
// Inputs:
//
//	rel - The relation to test.
//	source - The object being placed (first argument).
//	dest - The reference object or Floor (second argument).
//	s - State whose Objects define the forms and sizes.
//
// Outputs:
//
//	bool - True if the placement is impossible.
func AgainstPhysics(rel logic.Relation, source, dest string, s *State) bool {
	if source == dest {
		return true
	}

	src, srcOK := s.Objects[source]
	dst, dstOK := s.Objects[dest]
	srcFloor := source == Floor
	dstFloor := dest == Floor
	if (!srcOK && !srcFloor) || (!dstOK && !dstFloor) {
		return true
	}

	switch rel {
	case logic.OnTop:
		if srcFloor {
			return true
		}
		if dstFloor {
			return false
		}
		switch {
		case src.Form == Ball:
			return true
		case dst.Form == Ball || dst.Form == Box:
			return true
		case dst.Size == Small && src.Size == Large:
			return true
		case src.Form == Box && src.Size == Small && dst.Size == Small && (dst.Form == Pyramid || dst.Form == Brick):
			return true
		case src.Form == Box && src.Size == Large && dst.Form == Pyramid:
			return true
		}
		return false

	case logic.Inside:
		if srcFloor || dstFloor || dst.Form != Box {
			return true
		}
		if dst.Size == src.Size && (src.Form == Pyramid || src.Form == Plank || src.Form == Box) {
			return true
		}
		return dst.Size == Small && src.Size == Large

	case logic.Above:
		if srcFloor {
			return true
		}
		return !dstFloor && dst.Size == Small && src.Size == Large

	case logic.Under:
		if dstFloor {
			return true
		}
		return !srcFloor && dst.Size == Large && src.Size == Small
	}

	return false
}

// IsLegal is the negation of AgainstPhysics.
func IsLegal(rel logic.Relation, source, dest string, s *State) bool {
	return !AgainstPhysics(rel, source, dest, s)
}

// PlacementRelation returns how an object dropped onto dest would rest:
// inside if dest is a box, on top otherwise (including the floor).
func PlacementRelation(dest string, s *State) logic.Relation {
	if o, ok := s.Objects[dest]; ok && o.Form == Box {
		return logic.Inside
	}
	return logic.OnTop
}

// CanDrop reports whether the held object may be dropped on column col.
//
// An empty column always accepts the object. Otherwise the placement
// relation for the column's top object decides: a box receives the object
// inside, anything else on top.
func (s *State) CanDrop(col int) bool {
	if s.Holding == "" || col < 0 || col >= len(s.Stacks) {
		return false
	}
	top, ok := s.Top(col)
	if !ok {
		return true
	}
	return IsLegal(PlacementRelation(top, s), s.Holding, top, s)
}
