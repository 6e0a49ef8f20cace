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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelation_Arity(t *testing.T) {
	assert.Equal(t, 1, Holding.Arity())
	for _, r := range []Relation{OnTop, Inside, Above, Under, Beside, LeftOf, RightOf} {
		assert.Equal(t, 2, r.Arity(), r)
	}
	assert.Equal(t, 0, Relation("near").Arity())
	assert.False(t, Relation("near").Known())
	assert.Len(t, Relations, 8)
}

func TestLiteral_String(t *testing.T) {
	assert.Equal(t, "ontop(a,floor)", Lit(OnTop, "a", Floor).String())
	assert.Equal(t, "-holding(e)", Not(Holding, "e").String())

	f := Formula{
		{Not(LeftOf, "e", "f"), Lit(Holding, "a")},
		{Lit(OnTop, "e", Floor)},
	}
	assert.Equal(t, "-leftof(e,f) & holding(a) | ontop(e,floor)", f.String())
}

func TestLiteral_Negate(t *testing.T) {
	l := Lit(Beside, "a", "b")
	n := l.Negate()
	assert.False(t, n.Polarity)
	assert.True(t, l.Polarity, "original must not change")
	n.Args[0] = "z"
	assert.Equal(t, "a", l.Args[0], "negation must not alias args")
}

func TestLiteral_Validate(t *testing.T) {
	tests := []struct {
		name string
		lit  Literal
		ok   bool
	}{
		{"holding", Lit(Holding, "a"), true},
		{"ontop floor", Lit(OnTop, "a", Floor), true},
		{"above floor", Lit(Above, "a", Floor), true},
		{"under floor first", Lit(Under, Floor, "a"), true},
		{"under floor second", Lit(Under, "a", Floor), true},
		{"unknown relation", Lit("near", "a", "b"), false},
		{"holding two args", Lit(Holding, "a", "b"), false},
		{"ontop one arg", Lit(OnTop, "a"), false},
		{"empty arg", Lit(Beside, "a", ""), false},
		{"holding floor", Lit(Holding, Floor), false},
		{"inside floor", Lit(Inside, "a", Floor), false},
		{"floor ontop", Lit(OnTop, Floor, "a"), false},
		{"beside floor", Lit(Beside, "a", Floor), false},
		{"self relation", Lit(LeftOf, "a", "a"), false},
		{"reserved char", Lit(Holding, "a|b"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.lit.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidLiteral))
		})
	}
}

func TestFormula_ValidateEmpty(t *testing.T) {
	assert.NoError(t, Formula{}.Validate())
	assert.NoError(t, Formula{{}}.Validate())
}

func TestFormula_Objects(t *testing.T) {
	f := MustParse("ontop(e,floor) & beside(e,f) | holding(g) & leftof(f,e)")
	assert.Equal(t, []string{"e", "f", "g"}, f.Objects())
}

func TestParse(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		texts := []string{
			"holding(a)",
			"-leftof(e,f) & holding(a) | ontop(e,floor)",
			"inside(f,m) | inside(f,k) | inside(f,l)",
		}
		for _, text := range texts {
			f, err := Parse(text)
			require.NoError(t, err, text)
			assert.Equal(t, text, f.String())
		}
	})

	t.Run("whitespace and case", func(t *testing.T) {
		f, err := Parse("  - LeftOf ( e , f )&holding(a)  ")
		require.NoError(t, err)
		require.Len(t, f, 1)
		require.Len(t, f[0], 2)
		assert.Equal(t, Not(LeftOf, "e", "f"), f[0][0])
		assert.Equal(t, Lit(Holding, "a"), f[0][1])
	})

	t.Run("syntax errors", func(t *testing.T) {
		for _, text := range []string{"", "   ", "holding", "holding(a", "(a)", "ontop(a,(b))", "holding(a) &", "| holding(a)"} {
			_, err := Parse(text)
			require.Error(t, err, text)
			assert.True(t, errors.Is(err, ErrSyntax), "%q: %v", text, err)
		}
	})

	t.Run("invalid literal", func(t *testing.T) {
		_, err := Parse("near(a,b)")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidLiteral))
	})
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParse("near(") })
}
