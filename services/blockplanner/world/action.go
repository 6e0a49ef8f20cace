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
	"fmt"
	"strings"
)

// Action is a primitive arm command.
type Action string

const (
	Left  Action = "left"
	Right Action = "right"
	Pick  Action = "pick"
	Drop  Action = "drop"
)

// Short returns the one-letter spelling used in compact plans.
func (a Action) Short() string {
	switch a {
	case Left:
		return "l"
	case Right:
		return "r"
	case Pick:
		return "p"
	case Drop:
		return "d"
	default:
		return "?"
	}
}

// Describe returns a human readable progress message for the action.
func (a Action) Describe() string {
	switch a {
	case Left:
		return "Going left"
	case Right:
		return "Going right"
	case Pick:
		return "Picking"
	case Drop:
		return "Dropping"
	default:
		return "Unknown action " + string(a)
	}
}

// Valid reports whether a is one of the four primitive commands.
func (a Action) Valid() bool {
	switch a {
	case Left, Right, Pick, Drop:
		return true
	}
	return false
}

// ParseAction accepts "l", "left", "r", "right", "p", "pick", "d" or "drop",
// in any case.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "l", "left":
		return Left, nil
	case "r", "right":
		return Right, nil
	case "p", "pick":
		return Pick, nil
	case "d", "drop":
		return Drop, nil
	}
	return "", fmt.Errorf("%w: unknown action %q", ErrIllegalMove, s)
}

// ParseActions splits a whitespace or comma separated plan such as
// "p r r d" into actions.
func ParseActions(s string) ([]Action, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	actions := make([]Action, 0, len(fields))
	for _, f := range fields {
		a, err := ParseAction(f)
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, nil
}

// FormatActions renders actions in their one-letter spelling.
func FormatActions(actions []Action) string {
	parts := make([]string, len(actions))
	for i, a := range actions {
		parts[i] = a.Short()
	}
	return strings.Join(parts, " ")
}

// Apply performs one action and returns the resulting state.
//
// Description:
//
//	The receiver is not modified. Moving off either edge, picking from an
//	empty column or with a full arm, dropping with an empty arm and any
//	physically illegal drop fail with ErrIllegalMove.
//
// Inputs:
//
//	a - The action to perform.
//
// Outputs:
//
//	*State - The new state.
//	error - Non-nil if the action cannot be performed.
func (s *State) Apply(a Action) (*State, error) {
	switch a {
	case Left:
		if s.Arm == 0 {
			return nil, fmt.Errorf("%w: cannot move left from column 0", ErrIllegalMove)
		}
		next := s.Clone()
		next.Arm--
		return next, nil

	case Right:
		if s.Arm >= len(s.Stacks)-1 {
			return nil, fmt.Errorf("%w: cannot move right from column %d", ErrIllegalMove, s.Arm)
		}
		next := s.Clone()
		next.Arm++
		return next, nil

	case Pick:
		if s.Holding != "" {
			return nil, fmt.Errorf("%w: already holding %s", ErrIllegalMove, s.Holding)
		}
		top, ok := s.Top(s.Arm)
		if !ok {
			return nil, fmt.Errorf("%w: column %d is empty", ErrIllegalMove, s.Arm)
		}
		next := s.Clone()
		col := next.Stacks[s.Arm]
		next.Stacks[s.Arm] = col[:len(col)-1]
		next.Holding = top
		return next, nil

	case Drop:
		if s.Holding == "" {
			return nil, fmt.Errorf("%w: not holding anything", ErrIllegalMove)
		}
		if !s.CanDrop(s.Arm) {
			top, _ := s.Top(s.Arm)
			return nil, fmt.Errorf("%w: %s cannot be placed %s %s", ErrIllegalMove, s.Holding, PlacementRelation(top, s), top)
		}
		next := s.Clone()
		next.Stacks[s.Arm] = append(next.Stacks[s.Arm], s.Holding)
		next.Holding = ""
		return next, nil
	}

	return nil, fmt.Errorf("%w: unknown action %q", ErrIllegalMove, a)
}

// ApplyAll performs actions in order and returns the final state. On error
// the returned index is the position of the failing action.
func (s *State) ApplyAll(actions []Action) (*State, int, error) {
	cur := s
	for i, a := range actions {
		next, err := cur.Apply(a)
		if err != nil {
			return cur, i, fmt.Errorf("action %d (%s): %w", i, a, err)
		}
		cur = next
	}
	return cur, len(actions), nil
}
