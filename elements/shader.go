// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package elements

import (
	_ "embed"
	"fmt"
	"sync/atomic"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

var (
	//go:embed shaders/rectangle.wgsl
	rectangleShader string
	//go:embed shaders/panel.wgsl
	panelShader string
	//go:embed shaders/circle.wgsl
	circleShader string
	//go:embed shaders/shape.wgsl
	shapeShader string
	//go:embed shaders/icon.wgsl
	iconShader string
	//go:embed shaders/image.wgsl
	imageShader string
	//go:embed shaders/text.wgsl
	textShader string
)

var validateShaders atomic.Bool

// SetShaderValidation makes every kind compile its WGSL with naga before
// handing it to the device. Invalid shaders then fail Create with a parse
// or validation error instead of a driver error.
func SetShaderValidation(on bool) { validateShaders.Store(on) }

func createShader(device hal.Device, label, source string) (hal.ShaderModule, error) {
	if source == "" {
		return nil, fmt.Errorf("%s shader source is empty", label)
	}
	if validateShaders.Load() {
		if _, err := naga.Compile(source); err != nil {
			return nil, fmt.Errorf("validate %s shader: %w", label, err)
		}
	}
	module, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label + "_shader",
		Source: hal.ShaderSource{WGSL: source},
	})
	if err != nil {
		return nil, fmt.Errorf("compile %s shader: %w", label, err)
	}
	return module, nil
}
