// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package elements

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gogpu/naga"
)

var shaderSources = []struct {
	name      string
	source    string
	locations int
}{
	{"rectangle", rectangleShader, 6},
	{"panel", panelShader, 7},
	{"circle", circleShader, 7},
	{"shape", shapeShader, 6},
	{"icon", iconShader, 8},
	{"image", imageShader, 8},
	{"text", textShader, 7},
}

// TestShadersCompile compiles every embedded shader to SPIR-V.
func TestShadersCompile(t *testing.T) {
	for _, tt := range shaderSources {
		t.Run(tt.name, func(t *testing.T) {
			spirv, err := naga.Compile(tt.source)
			if err != nil {
				msg := err.Error()
				if strings.Contains(msg, "not yet implemented") || strings.Contains(msg, "not supported") {
					t.Skipf("Skipping: naga feature not yet implemented: %v", err)
				}
				t.Fatalf("failed to compile %s shader: %v", tt.name, err)
			}
			if len(spirv) < 4 {
				t.Fatal("SPIR-V too short")
			}
			magic := uint32(spirv[0]) | uint32(spirv[1])<<8 | uint32(spirv[2])<<16 | uint32(spirv[3])<<24
			if magic != 0x07230203 {
				t.Errorf("SPIR-V magic = %#x", magic)
			}
		})
	}
}

// TestShaderInterface checks the entry points, the viewport binding and
// that every instance location up to the last column is declared.
func TestShaderInterface(t *testing.T) {
	for _, tt := range shaderSources {
		t.Run(tt.name, func(t *testing.T) {
			for _, want := range []string{
				"fn vs_main", "fn fs_main", "struct VertexOutput",
				"@group(0) @binding(0) var<uniform> viewport",
			} {
				if !strings.Contains(tt.source, want) {
					t.Errorf("missing %q", want)
				}
			}
			for loc := 0; loc < tt.locations; loc++ {
				if !strings.Contains(tt.source, fmt.Sprintf("@location(%d)", loc)) {
					t.Errorf("missing @location(%d)", loc)
				}
			}
		})
	}
}

func TestCreateShaderRejectsEmptySource(t *testing.T) {
	if _, err := createShader(nil, "empty", ""); err == nil {
		t.Error("createShader accepted an empty source")
	}
}
