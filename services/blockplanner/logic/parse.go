// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package logic

import (
	"fmt"
	"strings"
)

// Parse reads a formula in the text form produced by Formula.String.
//
// Description:
//
//	Grammar:
//
//	  formula     = conjunction { "|" conjunction }
//	  conjunction = literal { "&" literal }
//	  literal     = [ "-" ] relation "(" arg { "," arg } ")"
//
//	Whitespace between tokens is ignored. The parsed formula is validated
//	before it is returned.
//
// Inputs:
//
//	text - Formula text. Must not be empty.
//
// Outputs:
//
//	Formula - The parsed formula.
//	error - Wraps ErrSyntax for malformed text, ErrInvalidLiteral for
//	        well-formed text naming an unknown relation or bad arguments.
func Parse(text string) (Formula, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty formula", ErrSyntax)
	}

	var f Formula
	for i, disjunct := range strings.Split(text, "|") {
		var c Conjunction
		for j, part := range strings.Split(disjunct, "&") {
			lit, err := parseLiteral(part)
			if err != nil {
				return nil, fmt.Errorf("conjunction %d literal %d: %w", i, j, err)
			}
			c = append(c, lit)
		}
		f = append(f, c)
	}

	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// built-in fixtures.
func MustParse(text string) Formula {
	f, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return f
}

func parseLiteral(text string) (Literal, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return Literal{}, fmt.Errorf("%w: empty literal", ErrSyntax)
	}

	lit := Literal{Polarity: true}
	if strings.HasPrefix(s, "-") {
		lit.Polarity = false
		s = strings.TrimSpace(s[1:])
	}

	open := strings.IndexByte(s, '(')
	if open <= 0 || !strings.HasSuffix(s, ")") {
		return Literal{}, fmt.Errorf("%w: %q is not of the form rel(args)", ErrSyntax, text)
	}
	lit.Relation = Relation(strings.ToLower(strings.TrimSpace(s[:open])))

	body := s[open+1 : len(s)-1]
	if strings.ContainsAny(body, "()") {
		return Literal{}, fmt.Errorf("%w: nested parentheses in %q", ErrSyntax, text)
	}
	for _, arg := range strings.Split(body, ",") {
		lit.Args = append(lit.Args, strings.TrimSpace(arg))
	}
	return lit, nil
}
