package native

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/kanbang/cesium/render"
)

// program holds the GPU objects compiled from one descriptor.
type program struct {
	desc        render.ProgramDescriptor
	vertex      hal.ShaderModule
	fragment    hal.ShaderModule
	bindLayout  hal.BindGroupLayout
	pipeLayout  hal.PipelineLayout
	uniformSize int
}

// validateWGSL compiles the source with naga and discards the output.
func validateWGSL(label, src string) error {
	if _, err := naga.Compile(src); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidShader, label, err)
	}
	return nil
}

// compileProgram creates shader modules and layouts for desc. On failure
// everything created so far is destroyed.
func compileProgram(device hal.Device, desc render.ProgramDescriptor, validate bool) (*program, error) {
	if validate {
		if err := validateWGSL(desc.Label+" vertex", desc.VertexSource); err != nil {
			return nil, err
		}
		if err := validateWGSL(desc.Label+" fragment", desc.FragmentSource); err != nil {
			return nil, err
		}
	}

	p := &program{desc: desc, uniformSize: desc.UniformSize()}
	var err error

	p.vertex, err = device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  desc.Label + "_vs",
		Source: hal.ShaderSource{WGSL: desc.VertexSource},
	})
	if err != nil {
		return nil, fmt.Errorf("create vertex shader: %w", err)
	}

	p.fragment, err = device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  desc.Label + "_fs",
		Source: hal.ShaderSource{WGSL: desc.FragmentSource},
	})
	if err != nil {
		p.destroy(device)
		return nil, fmt.Errorf("create fragment shader: %w", err)
	}

	var entries []gputypes.BindGroupLayoutEntry
	if p.uniformSize > 0 {
		entries = append(entries, gputypes.BindGroupLayoutEntry{
			Binding:    0,
			Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
			Buffer: &gputypes.BufferBindingLayout{
				Type: gputypes.BufferBindingTypeUniform,
			},
		})
	}
	p.bindLayout, err = device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   desc.Label + "_bind_layout",
		Entries: entries,
	})
	if err != nil {
		p.destroy(device)
		return nil, fmt.Errorf("create bind group layout: %w", err)
	}

	p.pipeLayout, err = device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            desc.Label + "_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		p.destroy(device)
		return nil, fmt.Errorf("create pipeline layout: %w", err)
	}
	return p, nil
}

// destroy releases the program's objects in reverse creation order.
func (p *program) destroy(device hal.Device) {
	if p.pipeLayout != nil {
		device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.bindLayout != nil {
		device.DestroyBindGroupLayout(p.bindLayout)
		p.bindLayout = nil
	}
	if p.fragment != nil {
		device.DestroyShaderModule(p.fragment)
		p.fragment = nil
	}
	if p.vertex != nil {
		device.DestroyShaderModule(p.vertex)
		p.vertex = nil
	}
}

// packUniforms evaluates the uniform map in declaration order and packs
// the values into a std140-style block, each uniform 16-byte aligned.
func (p *program) packUniforms(uniforms render.UniformMap) ([]byte, error) {
	buf := make([]byte, p.uniformSize)
	offset := 0
	for _, u := range p.desc.Uniforms {
		fn, ok := uniforms[u.Name]
		if !ok || fn == nil {
			return nil, fmt.Errorf("%w: %q", ErrMissingUniform, u.Name)
		}
		values := fn()
		n := min(len(values), u.Components)
		for i := 0; i < n; i++ {
			binary.LittleEndian.PutUint32(buf[offset+4*i:], math.Float32bits(values[i]))
		}
		offset += (u.Components*4 + 15) &^ 15
	}
	return buf, nil
}
