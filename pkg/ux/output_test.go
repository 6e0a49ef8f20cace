// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestPrinter_Machine(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, ModeMachine)

	p.Title("ignored")
	p.Success("planned")
	p.Warning("slow")
	p.Error("no plan")
	p.Info("info")
	p.Field("cost", 6)
	p.Box("Plan", "r r p l l d")

	want := "OK: planned\nWARN: slow\nERROR: no plan\ninfo\ncost=6\nPlan: r r p l l d\n"
	if got := buf.String(); got != want {
		t.Errorf("machine output = %q, want %q", got, want)
	}
}

func TestPrinter_Plain(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, ModePlain)

	p.Title("Block planner")
	p.Success("planned")
	p.Field("cost", 6)

	out := buf.String()
	for _, want := range []string{"Block planner\n", "✓ planned\n", "cost: 6\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("plain output %q missing %q", out, want)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("plain output contains escape codes: %q", out)
	}
}

func TestPrinter_StyledKeepsText(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, ModeStyled)

	p.Error("no plan")
	p.Box("Plan", "p")

	out := buf.String()
	if !strings.Contains(out, "no plan") || !strings.Contains(out, "Plan") {
		t.Errorf("styled output lost text: %q", out)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		name string
		want Mode
	}{
		{"styled", ModeStyled},
		{"plain", ModePlain},
		{"machine", ModeMachine},
	}
	for _, tt := range tests {
		if got := ParseMode(tt.name, nil); got != tt.want {
			t.Errorf("ParseMode(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}

	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if got := ParseMode("auto", f); got != ModePlain {
		t.Errorf("ParseMode(auto, file) = %v, want ModePlain", got)
	}
	if got := DetectMode(nil); got != ModePlain {
		t.Errorf("DetectMode(nil) = %v, want ModePlain", got)
	}
}

func TestIcon_Render(t *testing.T) {
	for _, icon := range []Icon{IconSuccess, IconWarning, IconError, IconArrow} {
		if !strings.Contains(icon.Render(), string(icon)) {
			t.Errorf("Render() of %q lost the glyph", icon)
		}
	}
}
