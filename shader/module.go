// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// CompileWGSL compiles WGSL source to SPIR-V with naga.
func CompileWGSL(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("failed to compile shader: %w", err)
	}
	return Words(spirvBytes)
}

// Words converts a SPIR-V byte stream to little-endian 32-bit words.
func Words(b []byte) ([]uint32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("shader: SPIR-V length %d is not a multiple of 4", len(b))
	}
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = uint32(b[i*4]) |
			uint32(b[i*4+1])<<8 |
			uint32(b[i*4+2])<<16 |
			uint32(b[i*4+3])<<24
	}
	return words, nil
}

// CreateModule creates a HAL shader module from a compiled program.
func CreateModule(device hal.Device, p *Program) (hal.ShaderModule, error) {
	if len(p.SPIRV) == 0 {
		return nil, fmt.Errorf("shader: %s has no SPIR-V", p.Ref)
	}
	return device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label: p.Ref,
		Source: hal.ShaderSource{
			SPIRV: p.SPIRV,
		},
	})
}
