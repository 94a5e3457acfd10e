// Copyright 2026 The cesium Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"

	"golang.org/x/image/math/f32"
)

// MaxSegmentVertices is the number of vertices a single vertex segment can
// address with 16-bit indices.
const MaxSegmentVertices = 1 << 16

// BufferID is an opaque handle to a GPU buffer owned by a Context.
// The zero value is never a valid buffer.
type BufferID uint64

// ProgramID is an opaque handle to a compiled shader program.
// The zero value is never a valid program.
type ProgramID uint64

// FramebufferID identifies an offscreen render target.
// The zero value selects the context's default target.
type FramebufferID uint64

// BufferUsage is a hint describing how often the contents of a buffer
// are expected to change.
type BufferUsage uint8

const (
	// StaticDraw marks data written rarely and drawn many times.
	StaticDraw BufferUsage = iota

	// StreamDraw marks data rewritten about as often as it is drawn.
	StreamDraw
)

// String returns the string representation of the usage.
func (u BufferUsage) String() string {
	switch u {
	case StaticDraw:
		return "StaticDraw"
	case StreamDraw:
		return "StreamDraw"
	default:
		return fmt.Sprintf("BufferUsage(%d)", int(u))
	}
}

// ComponentType is the element type of a vertex attribute component.
type ComponentType uint8

const (
	// Float32 is a 32-bit IEEE float component.
	Float32 ComponentType = iota

	// Uint8 is an unsigned byte component.
	Uint8
)

// Size returns the size of one component in bytes.
func (t ComponentType) Size() int {
	switch t {
	case Float32:
		return 4
	case Uint8:
		return 1
	default:
		return 0
	}
}

// String returns the string representation of the component type.
func (t ComponentType) String() string {
	switch t {
	case Float32:
		return "Float32"
	case Uint8:
		return "Uint8"
	default:
		return fmt.Sprintf("ComponentType(%d)", int(t))
	}
}

// SceneMode is the display mode a frame is rendered in.
type SceneMode uint8

const (
	// SceneMode3D renders the scene as a full 3D view.
	SceneMode3D SceneMode = iota

	// SceneModeColumbusView renders a flattened 2.5D view.
	SceneModeColumbusView

	// SceneMode2D renders a flat 2D view.
	SceneMode2D

	// SceneModeMorphing is active while transitioning between modes.
	SceneModeMorphing
)

// String returns the string representation of the scene mode.
func (m SceneMode) String() string {
	switch m {
	case SceneMode3D:
		return "3D"
	case SceneModeColumbusView:
		return "ColumbusView"
	case SceneMode2D:
		return "2D"
	case SceneModeMorphing:
		return "Morphing"
	default:
		return fmt.Sprintf("SceneMode(%d)", int(m))
	}
}

// FrameState carries the per-frame inputs of Update and Render.
type FrameState struct {
	// Context is the rendering context to draw with.
	Context Context

	// Mode is the active scene mode.
	Mode SceneMode

	// MorphTime blends flattened (0) and full 3D (1) positions.
	MorphTime float32

	// ViewProjection is the camera view-projection matrix in row-major order.
	ViewProjection f32.Mat4

	// Target is the framebuffer draws go to. Zero means the default target.
	Target FramebufferID
}

// IndexRange selects Count indices starting at First from the bound
// index buffer.
type IndexRange struct {
	First int
	Count int
}

// VertexBinding binds one vertex attribute to a buffer.
type VertexBinding struct {
	Location   uint32
	Buffer     BufferID
	Components int
	Type       ComponentType
	Normalize  bool
}

// Stride returns the number of bytes per vertex for this binding.
func (b VertexBinding) Stride() int {
	return b.Components * b.Type.Size()
}

// VertexArray is the set of attribute buffers plus the index buffer a draw
// reads from.
type VertexArray struct {
	Attributes  []VertexBinding
	IndexBuffer BufferID
}

// UniformMap maps uniform names to functions producing their current
// values. Functions are evaluated at draw submission time.
type UniformMap map[string]func() []float32

// Uniform describes one entry of a program's uniform block.
// Uniforms are laid out in declaration order, each padded to 16 bytes.
type Uniform struct {
	Name       string
	Components int
}

// AttributeLocation binds a named shader input to a vertex location.
type AttributeLocation struct {
	Name     string
	Location uint32
}

// ProgramDescriptor describes a shader program by its source pair.
type ProgramDescriptor struct {
	Label          string
	VertexSource   string
	FragmentSource string
	Attributes     []AttributeLocation
	Uniforms       []Uniform
}

// UniformSize returns the size of the uniform block in bytes.
func (d *ProgramDescriptor) UniformSize() int {
	size := 0
	for _, u := range d.Uniforms {
		size += alignUniform(u.Components * 4)
	}
	return size
}

// alignUniform rounds n up to the 16-byte uniform alignment.
func alignUniform(n int) int {
	return (n + 15) &^ 15
}
