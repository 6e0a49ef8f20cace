// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package eval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fake struct {
	name  string
	props []Property
	err   error
}

func (f *fake) Name() string { return f.name }
func (f *fake) Properties() []Property { return f.props }
func (f *fake) Metrics() []MetricDefinition { return nil }
func (f *fake) HealthCheck(ctx context.Context) error { return f.err }

func TestCheckAll(t *testing.T) {
	even := Property{
		Name:        "even",
		Description: "Output is even.",
		Check: func(_, out any) error {
			if out.(int)%2 != 0 {
				return errors.New("odd")
			}
			return nil
		},
	}
	c := &fake{name: "adder", props: []Property{even, {Name: "broken"}}}

	err := CheckAll(c, nil, 3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPropertyFailed))
	assert.True(t, errors.Is(err, ErrInvalidProperty))
	assert.Contains(t, err.Error(), "adder.even: odd")

	c.props = c.props[:1]
	assert.NoError(t, CheckAll(c, nil, 4))
}

func TestProperty(t *testing.T) {
	p := Property{Name: "x", Description: "d", Check: func(any, any) error { return nil }, Tags: []string{"critical"}}
	assert.NoError(t, p.Validate())
	assert.True(t, p.HasTag("critical"))
	assert.False(t, p.HasTag("slow"))

	p.Description = ""
	assert.True(t, errors.Is(p.Validate(), ErrInvalidProperty))
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&fake{name: "b"}))
	require.NoError(t, r.Register(&fake{name: "a", err: errors.New("down")}))

	assert.True(t, errors.Is(r.Register(&fake{name: "a"}), ErrAlreadyRegistered))
	assert.True(t, errors.Is(r.Register(nil), ErrNilComponent))
	assert.Equal(t, []string{"a", "b"}, r.List())

	_, err := r.Get("zz")
	assert.True(t, errors.Is(err, ErrNotFound))

	results := r.HealthCheckAll(context.Background(), 2)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].Component)
	assert.Equal(t, HealthUnhealthy, results[0].Status)
	assert.Equal(t, "down", results[0].Message)
	assert.Equal(t, "healthy", results[1].State)
	assert.False(t, Healthy(results))
	assert.True(t, Healthy(results[1:]))
}

func TestHealthCheckAll_Cancelled(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&fake{name: "a"}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := r.HealthCheckAll(ctx, 0)
	require.Len(t, results, 1)
	assert.Equal(t, HealthUnknown, results[0].Status)
}
