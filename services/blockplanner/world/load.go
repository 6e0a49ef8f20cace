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
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Load reads a world state from a YAML or JSON file and validates it.
//
// Inputs:
//
//	path - File to read.
//
// Outputs:
//
//	*State - The decoded state.
//	error - Non-nil if the file cannot be read, parsed or validated.
func Load(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read world file: %w", err)
	}
	return Decode(data)
}

// Decode parses a world state from YAML or JSON and validates it.
func Decode(data []byte) (*State, error) {
	var s State

	// Try YAML first, then JSON
	if err := yaml.Unmarshal(data, &s); err != nil {
		if jsonErr := json.Unmarshal(data, &s); jsonErr != nil {
			return nil, fmt.Errorf("parse world (tried YAML and JSON): YAML error: %v, JSON error: %w", err, jsonErr)
		}
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Example returns a fresh copy of a built-in world.
func Example(name string) (*State, error) {
	build, ok := examples[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownWorld, name)
	}
	return build(), nil
}

// ExampleNames lists the built-in worlds in sorted order.
func ExampleNames() []string {
	names := make([]string, 0, len(examples))
	for name := range examples {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var examples = map[string]func() *State{
	"small":  smallWorld,
	"medium": mediumWorld,
}

func smallWorld() *State {
	return &State{
		Stacks: [][]string{{"e"}, {"g", "l"}, {}, {"k", "m", "f"}, {}},
		Arm:    0,
		Objects: map[string]Object{
			"e": {Form: Ball, Size: Large, Color: "white"},
			"f": {Form: Ball, Size: Small, Color: "black"},
			"g": {Form: Table, Size: Large, Color: "blue"},
			"k": {Form: Box, Size: Large, Color: "yellow"},
			"l": {Form: Box, Size: Large, Color: "red"},
			"m": {Form: Box, Size: Small, Color: "blue"},
		},
	}
}

func mediumWorld() *State {
	return &State{
		Stacks: [][]string{{"e"}, {"a", "l"}, {"i", "h", "j"}, {"c", "k", "g", "b"}, {"d", "m", "f"}},
		Arm:    0,
		Objects: map[string]Object{
			"a": {Form: Brick, Size: Large, Color: "green"},
			"b": {Form: Brick, Size: Small, Color: "white"},
			"c": {Form: Plank, Size: Large, Color: "red"},
			"d": {Form: Plank, Size: Small, Color: "green"},
			"e": {Form: Ball, Size: Large, Color: "white"},
			"f": {Form: Ball, Size: Small, Color: "black"},
			"g": {Form: Table, Size: Large, Color: "blue"},
			"h": {Form: Table, Size: Small, Color: "red"},
			"i": {Form: Pyramid, Size: Large, Color: "yellow"},
			"j": {Form: Pyramid, Size: Small, Color: "red"},
			"k": {Form: Box, Size: Large, Color: "yellow"},
			"l": {Form: Box, Size: Large, Color: "red"},
			"m": {Form: Box, Size: Small, Color: "blue"},
		},
	}
}
