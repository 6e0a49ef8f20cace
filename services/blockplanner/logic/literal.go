// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package logic defines goal formulas for the block planner.
//
// A goal is a disjunction of conjunctions of literals (DNF). Formulas are
// plain data: they are produced by an interpreter, validated once, and then
// read by the goal evaluator and the heuristic without modification.
//
// Text form:
//
//	-leftof(e,f) & holding(a) | ontop(e,floor)
//
// '|' separates conjunctions, '&' separates literals and a leading '-'
// negates a literal.
package logic

import (
	"errors"
	"fmt"
	"strings"
)

// Floor is the sentinel identifier for the table surface. It is never a key
// in a world's object mapping.
const Floor = "floor"

// Package-level error definitions.
var (
	ErrInvalidLiteral = errors.New("invalid literal")
	ErrSyntax         = errors.New("formula syntax error")
)

// Relation names a spatial or arm relation between objects.
type Relation string

const (
	Holding Relation = "holding"
	OnTop   Relation = "ontop"
	Inside  Relation = "inside"
	Above   Relation = "above"
	Under   Relation = "under"
	Beside  Relation = "beside"
	LeftOf  Relation = "leftof"
	RightOf Relation = "rightof"
)

// Relations lists every known relation in a stable order.
var Relations = []Relation{Holding, OnTop, Inside, Above, Under, Beside, LeftOf, RightOf}

// Arity returns the number of arguments the relation takes, or 0 for an
// unknown relation.
func (r Relation) Arity() int {
	switch r {
	case Holding:
		return 1
	case OnTop, Inside, Above, Under, Beside, LeftOf, RightOf:
		return 2
	default:
		return 0
	}
}

// Known reports whether r is one of the defined relations.
func (r Relation) Known() bool {
	return r.Arity() > 0
}

// Literal is a signed relation applied to object identifiers.
type Literal struct {
	// Polarity is false for a negated literal.
	Polarity bool `json:"polarity" yaml:"polarity"`

	// Relation is the relation name.
	Relation Relation `json:"relation" yaml:"relation"`

	// Args are object identifiers, or Floor where the relation allows it.
	Args []string `json:"args" yaml:"args"`
}

// Lit returns a positive literal.
func Lit(rel Relation, args ...string) Literal {
	return Literal{Polarity: true, Relation: rel, Args: args}
}

// Not returns a negative literal.
func Not(rel Relation, args ...string) Literal {
	return Literal{Polarity: false, Relation: rel, Args: args}
}

// Negate returns the literal with its polarity flipped.
func (l Literal) Negate() Literal {
	args := make([]string, len(l.Args))
	copy(args, l.Args)
	return Literal{Polarity: !l.Polarity, Relation: l.Relation, Args: args}
}

// First returns the first argument, or "" if there is none.
func (l Literal) First() string {
	if len(l.Args) == 0 {
		return ""
	}
	return l.Args[0]
}

// Second returns the second argument, or "" if there is none.
func (l Literal) Second() string {
	if len(l.Args) < 2 {
		return ""
	}
	return l.Args[1]
}

// Validate checks the relation name, the argument count and where the floor
// sentinel appears.
//
// Description:
//
//	The floor may only be the second argument of ontop or above, or either
//	argument of under ("the floor is under everything"). It is never
//	held, never inside anything and never beside anything. The same object
//	may not appear twice in one literal.
//
// Outputs:
//
//	error - Wraps ErrInvalidLiteral when the literal is malformed.
func (l Literal) Validate() error {
	arity := l.Relation.Arity()
	if arity == 0 {
		return fmt.Errorf("%w: unknown relation %q", ErrInvalidLiteral, l.Relation)
	}
	if len(l.Args) != arity {
		return fmt.Errorf("%w: %s takes %d argument(s), got %d", ErrInvalidLiteral, l.Relation, arity, len(l.Args))
	}
	for i, arg := range l.Args {
		if arg == "" {
			return fmt.Errorf("%w: %s argument %d is empty", ErrInvalidLiteral, l.Relation, i)
		}
		if strings.ContainsAny(arg, "(),&|- \t") {
			return fmt.Errorf("%w: %s argument %q contains reserved characters", ErrInvalidLiteral, l.Relation, arg)
		}
		if arg == Floor && !floorAllowed(l.Relation, i) {
			return fmt.Errorf("%w: floor is not allowed as argument %d of %s", ErrInvalidLiteral, i, l.Relation)
		}
	}
	if arity == 2 && l.Args[0] == l.Args[1] {
		return fmt.Errorf("%w: %s relates %q to itself", ErrInvalidLiteral, l.Relation, l.Args[0])
	}
	return nil
}

func floorAllowed(rel Relation, pos int) bool {
	switch rel {
	case OnTop, Above:
		return pos == 1
	case Under:
		return true
	default:
		return false
	}
}

// String renders the literal in text form, e.g. "-ontop(a,floor)".
func (l Literal) String() string {
	var b strings.Builder
	if !l.Polarity {
		b.WriteByte('-')
	}
	b.WriteString(string(l.Relation))
	b.WriteByte('(')
	b.WriteString(strings.Join(l.Args, ","))
	b.WriteByte(')')
	return b.String()
}

// Conjunction is a set of literals that must all hold.
type Conjunction []Literal

// String renders the conjunction with " & " separators.
func (c Conjunction) String() string {
	parts := make([]string, len(c))
	for i, l := range c {
		parts[i] = l.String()
	}
	return strings.Join(parts, " & ")
}

// Objects returns the distinct non-floor identifiers the conjunction
// mentions, in first-seen order.
func (c Conjunction) Objects() []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, l := range c {
		for _, arg := range l.Args {
			if arg == Floor {
				continue
			}
			if _, ok := seen[arg]; ok {
				continue
			}
			seen[arg] = struct{}{}
			ids = append(ids, arg)
		}
	}
	return ids
}

// Formula is a disjunction of conjunctions.
type Formula []Conjunction

// String renders the formula with " | " separators.
func (f Formula) String() string {
	parts := make([]string, len(f))
	for i, c := range f {
		parts[i] = c.String()
	}
	return strings.Join(parts, " | ")
}

// Validate validates every literal of every conjunction.
//
// An empty formula is valid but unsatisfiable. An empty conjunction is valid
// and always satisfied.
func (f Formula) Validate() error {
	for i, c := range f {
		for j, l := range c {
			if err := l.Validate(); err != nil {
				return fmt.Errorf("conjunction %d literal %d: %w", i, j, err)
			}
		}
	}
	return nil
}

// Objects returns the distinct non-floor identifiers mentioned anywhere in
// the formula.
func (f Formula) Objects() []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, c := range f {
		for _, id := range c.Objects() {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}
