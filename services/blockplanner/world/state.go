// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package world models the block world: columns of stacked objects, a single
// arm that moves between columns and holds at most one object, and the
// physical rules deciding what may rest on what.
//
// States are values. Every transition (State.Apply) returns a fresh State
// whose Stacks share no backing arrays with its predecessor, so a state
// stored in a search frontier can never be changed by a later expansion.
// The Objects mapping is shared between states and must be treated as
// read-only.
package world

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/AleutianAI/blockplanner/services/blockplanner/logic"
)

// Floor is the sentinel identifier for the table surface.
const Floor = logic.Floor

// Package-level error definitions.
var (
	ErrInvalidState = errors.New("invalid world state")
	ErrIllegalMove  = errors.New("illegal move")
	ErrUnknownWorld = errors.New("unknown world")
)

var (
	validate  = validator.New()
	idPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
)

// Form is the shape of an object.
type Form string

const (
	Brick   Form = "brick"
	Plank   Form = "plank"
	Ball    Form = "ball"
	Pyramid Form = "pyramid"
	Box     Form = "box"
	Table   Form = "table"
)

// Size is the size class of an object.
type Size string

const (
	Small Size = "small"
	Large Size = "large"
)

// Object is the immutable definition of a block.
type Object struct {
	Form  Form   `json:"form" yaml:"form" validate:"required,oneof=brick plank ball pyramid box table"`
	Size  Size   `json:"size" yaml:"size" validate:"required,oneof=small large"`
	Color string `json:"color" yaml:"color" validate:"required"`
}

// String renders the object as "large white ball".
func (o Object) String() string {
	return string(o.Size) + " " + o.Color + " " + string(o.Form)
}

// Location is where an object currently is.
//
// A held object is reported at the arm's column with Held set and Row -1.
type Location struct {
	Column int  `json:"column"`
	Row    int  `json:"row"`
	Held   bool `json:"held,omitempty"`
}

// State is one configuration of the world.
type State struct {
	// Stacks holds the columns, each ordered bottom to top.
	Stacks [][]string `json:"stacks" yaml:"stacks"`

	// Holding is the identifier of the held object, or "" for an empty arm.
	Holding string `json:"holding,omitempty" yaml:"holding,omitempty"`

	// Arm is the column index of the arm.
	Arm int `json:"arm" yaml:"arm"`

	// Objects maps identifiers to definitions. Shared and read-only.
	Objects map[string]Object `json:"objects" yaml:"objects" validate:"required,dive"`
}

// Columns returns the number of columns.
func (s *State) Columns() int {
	return len(s.Stacks)
}

// Object returns the definition of id.
func (s *State) Object(id string) (Object, bool) {
	o, ok := s.Objects[id]
	return o, ok
}

// Top returns the topmost object of column col.
func (s *State) Top(col int) (string, bool) {
	if col < 0 || col >= len(s.Stacks) {
		return "", false
	}
	stack := s.Stacks[col]
	if len(stack) == 0 {
		return "", false
	}
	return stack[len(stack)-1], true
}

// Locate finds id in the stacks or the arm.
func (s *State) Locate(id string) (Location, bool) {
	if id == "" {
		return Location{}, false
	}
	if id == s.Holding {
		return Location{Column: s.Arm, Row: -1, Held: true}, true
	}
	for c, stack := range s.Stacks {
		for r, obj := range stack {
			if obj == id {
				return Location{Column: c, Row: r}, true
			}
		}
	}
	return Location{}, false
}

// Covering returns how many objects are stacked above id. A held or
// unknown object has nothing above it.
func (s *State) Covering(id string) int {
	loc, ok := s.Locate(id)
	if !ok || loc.Held {
		return 0
	}
	return len(s.Stacks[loc.Column]) - loc.Row - 1
}

// Clone returns a copy of s whose Stacks share no memory with s.
func (s *State) Clone() *State {
	stacks := make([][]string, len(s.Stacks))
	for i, stack := range s.Stacks {
		stacks[i] = make([]string, len(stack), len(stack)+1)
		copy(stacks[i], stack)
	}
	return &State{
		Stacks:  stacks,
		Holding: s.Holding,
		Arm:     s.Arm,
		Objects: s.Objects,
	}
}

// Key returns the canonical encoding of the stacks.
//
// The arm position and the held object are not part of the key. The held
// object is whichever object is missing from the stacks, so two states with
// the same stacks differ at most in arm position.
func (s *State) Key() string {
	var b strings.Builder
	for i, stack := range s.Stacks {
		if i > 0 {
			b.WriteByte('|')
		}
		for j, id := range stack {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteString(id)
		}
	}
	return b.String()
}

// FullKey returns Key extended with the arm column and the held object.
func (s *State) FullKey() string {
	return s.Key() + ";" + strconv.Itoa(s.Arm) + ";" + s.Holding
}

// String renders the state for logs.
func (s *State) String() string {
	hold := s.Holding
	if hold == "" {
		hold = "-"
	}
	return fmt.Sprintf("[%s] arm=%d holding=%s", s.Key(), s.Arm, hold)
}

// Validate checks the structural invariants of the state.
//
// Description:
//
//	Every object definition must be well formed, every identifier must be
//	a plain word, and every defined object must appear exactly once in the
//	stacks or the arm. The arm must be on a column and there must be at
//	least one column.
//
// Outputs:
//
//	error - Wraps ErrInvalidState describing the first violation.
func (s *State) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: nil state", ErrInvalidState)
	}
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if len(s.Stacks) == 0 {
		return fmt.Errorf("%w: no columns", ErrInvalidState)
	}
	if s.Arm < 0 || s.Arm >= len(s.Stacks) {
		return fmt.Errorf("%w: arm %d outside columns [0,%d)", ErrInvalidState, s.Arm, len(s.Stacks))
	}

	seen := make(map[string]struct{}, len(s.Objects))
	place := func(id string) error {
		if id == Floor {
			return fmt.Errorf("%w: %q is reserved", ErrInvalidState, Floor)
		}
		if !idPattern.MatchString(id) {
			return fmt.Errorf("%w: bad object id %q", ErrInvalidState, id)
		}
		if _, ok := s.Objects[id]; !ok {
			return fmt.Errorf("%w: object %q has no definition", ErrInvalidState, id)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: object %q appears more than once", ErrInvalidState, id)
		}
		seen[id] = struct{}{}
		return nil
	}

	for _, stack := range s.Stacks {
		for _, id := range stack {
			if err := place(id); err != nil {
				return err
			}
		}
	}
	if s.Holding != "" {
		if err := place(s.Holding); err != nil {
			return err
		}
	}
	for id := range s.Objects {
		if _, ok := seen[id]; !ok {
			return fmt.Errorf("%w: object %q is not placed", ErrInvalidState, id)
		}
	}
	return nil
}
