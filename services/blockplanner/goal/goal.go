// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package goal decides whether a world state satisfies a goal formula.
package goal

import (
	"errors"
	"fmt"

	"github.com/AleutianAI/blockplanner/services/blockplanner/logic"
	"github.com/AleutianAI/blockplanner/services/blockplanner/world"
)

// ErrUnknownObject means a literal names an object the world does not define.
var ErrUnknownObject = errors.New("unknown object")

// Locate returns where id is in s. The floor has no coordinates and is
// reported at column and row -1.
func Locate(s *world.State, id string) (world.Location, error) {
	if id == logic.Floor {
		return world.Location{Column: -1, Row: -1}, nil
	}
	loc, ok := s.Locate(id)
	if !ok {
		return world.Location{}, fmt.Errorf("%w: %q", ErrUnknownObject, id)
	}
	return loc, nil
}

// Validate checks that f is well formed and only names objects of s.
//
// Outputs:
//
//	error - Wraps logic.ErrInvalidLiteral, with ErrUnknownObject for
//	        identifiers missing from the world.
func Validate(f logic.Formula, s *world.State) error {
	if err := f.Validate(); err != nil {
		return err
	}
	for _, id := range f.Objects() {
		if _, ok := s.Objects[id]; !ok {
			return fmt.Errorf("%w: %w: %q", logic.ErrInvalidLiteral, ErrUnknownObject, id)
		}
	}
	return nil
}

// ValidateQuery checks a physical legality query: rel must be a known
// two-place relation and both ids must be objects of s or the floor.
// Unlike Validate it accepts the floor in any position and an object
// related to itself; the physics answer those with "not legal".
func ValidateQuery(rel logic.Relation, source, dest string, s *world.State) error {
	if rel.Arity() != 2 {
		return fmt.Errorf("%w: %q is not a two-place relation", logic.ErrInvalidLiteral, rel)
	}
	for _, id := range []string{source, dest} {
		if id == logic.Floor {
			continue
		}
		if _, ok := s.Objects[id]; !ok {
			return fmt.Errorf("%w: %w: %q", logic.ErrInvalidLiteral, ErrUnknownObject, id)
		}
	}
	return nil
}

// Check is Holds preceded by validation of the literal against s.
func Check(lit logic.Literal, s *world.State) (bool, error) {
	if err := Validate(logic.Formula{{lit}}, s); err != nil {
		return false, err
	}
	return Holds(lit, s), nil
}

// Holds reports whether lit is true in s.
//
// Description:
//
//	Objects are "inside" a box and "ontop" of anything else. An object
//	resting in a box that itself rests directly in another box is inside
//	both. The floor is under everything and everything is above the floor,
//	held objects included. An object is on top of the floor when it is at
//	the bottom of its column.
//
//	A held object counts as being in the arm's column, so beside, leftof
//	and rightof compare against the arm. It has no row, so ontop, inside,
//	above and under between it and another object are false.
//
//	The literal is assumed to be valid for s; unknown identifiers make
//	the positive relation false.
func Holds(lit logic.Literal, s *world.State) bool {
	return holdsPositive(lit, s) == lit.Polarity
}

func holdsPositive(lit logic.Literal, s *world.State) bool {
	a := lit.First()
	if lit.Relation == logic.Holding {
		return a != "" && a == s.Holding
	}

	b := lit.Second()
	if a == logic.Floor {
		if lit.Relation != logic.Under {
			return false
		}
		_, ok := s.Locate(b)
		return ok
	}

	l1, ok := s.Locate(a)
	if !ok {
		return false
	}

	if b == logic.Floor {
		switch lit.Relation {
		case logic.OnTop:
			return !l1.Held && l1.Row == 0
		case logic.Above:
			return true
		}
		return false
	}

	l2, ok := s.Locate(b)
	if !ok {
		return false
	}

	switch lit.Relation {
	case logic.Beside:
		return l1.Column-l2.Column == 1 || l2.Column-l1.Column == 1
	case logic.LeftOf:
		return l1.Column == l2.Column-1
	case logic.RightOf:
		return l1.Column == l2.Column+1
	}

	if l1.Held || l2.Held {
		return false
	}
	switch lit.Relation {
	case logic.OnTop:
		return l1.Column == l2.Column && l1.Row == l2.Row+1 && !isBox(s, b)
	case logic.Inside:
		if l1.Column != l2.Column || !isBox(s, b) {
			return false
		}
		if l1.Row == l2.Row+1 {
			return true
		}
		return l1.Row == l2.Row+2 && isBox(s, s.Stacks[l2.Column][l2.Row+1])
	case logic.Above:
		return l1.Column == l2.Column && l1.Row > l2.Row
	case logic.Under:
		return l1.Column == l2.Column && l1.Row < l2.Row
	}
	return false
}

func isBox(s *world.State, id string) bool {
	o, ok := s.Objects[id]
	return ok && o.Form == world.Box
}

// Satisfied reports whether some conjunction of f has every literal true.
// An empty formula is never satisfied; an empty conjunction always is.
func Satisfied(f logic.Formula, s *world.State) bool {
	for _, c := range f {
		if conjunctionHolds(c, s) {
			return true
		}
	}
	return false
}

// Satisfying returns the index of the first satisfied conjunction, or -1.
func Satisfying(f logic.Formula, s *world.State) int {
	for i, c := range f {
		if conjunctionHolds(c, s) {
			return i
		}
	}
	return -1
}

func conjunctionHolds(c logic.Conjunction, s *world.State) bool {
	for _, lit := range c {
		if !Holds(lit, s) {
			return false
		}
	}
	return true
}
