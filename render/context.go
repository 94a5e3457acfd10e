// Copyright 2026 The cesium Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"

	"github.com/gogpu/gputypes"
)

// Package errors.
var (
	// ErrUnknownBuffer is returned when a BufferID is not owned by the context.
	ErrUnknownBuffer = errors.New("render: unknown buffer")

	// ErrUnknownProgram is returned when a ProgramID is not owned by the context.
	ErrUnknownProgram = errors.New("render: unknown program")

	// ErrOutOfBounds is returned when a write exceeds the buffer size.
	ErrOutOfBounds = errors.New("render: write out of bounds")

	// ErrInvalidCapacity is returned for index buffer capacities outside
	// [2, MaxSegmentVertices].
	ErrInvalidCapacity = errors.New("render: invalid index buffer capacity")

	// ErrNilVertexArray is returned when a draw has no vertex array.
	ErrNilVertexArray = errors.New("render: draw command has no vertex array")
)

// Context is the GPU abstraction collections render through.
//
// Implementations are not required to be safe for concurrent use; a
// context and everything drawing into it belong to one goroutine.
type Context interface {
	// CreateVertexBuffer allocates a zero-filled vertex buffer of size bytes.
	CreateVertexBuffer(size int, usage BufferUsage) (BufferID, error)

	// CreateIndexBuffer allocates an immutable 16-bit index buffer.
	CreateIndexBuffer(indices []uint16, usage BufferUsage) (BufferID, error)

	// WriteBuffer copies data into the buffer at the byte offset.
	WriteBuffer(id BufferID, offset int, data []byte) error

	// DestroyBuffer releases a buffer. Unknown IDs are ignored.
	DestroyBuffer(id BufferID)

	// AcquireProgram returns a program for the descriptor, compiling it on
	// first use. Each successful call must be paired with ReleaseProgram.
	AcquireProgram(desc ProgramDescriptor) (ProgramID, error)

	// ReleaseProgram drops one reference to a program.
	ReleaseProgram(id ProgramID)

	// AliasedLineWidthRange reports the line widths the device rasterizes.
	AliasedLineWidthRange() (lo, hi float32)

	// Draw submits a draw command.
	Draw(cmd *DrawCommand) error

	// Destroy releases every resource owned by the context.
	Destroy()
}

// DrawCommand is one draw submission.
type DrawCommand struct {
	Topology    gputypes.PrimitiveTopology
	Program     ProgramID
	Uniforms    UniformMap
	VertexArray *VertexArray
	RenderState *RenderState

	// Ranges are drawn in order from the vertex array's index buffer.
	Ranges []IndexRange

	// Target is the framebuffer to draw into. Zero selects the default.
	Target FramebufferID
}

// IndexCount returns the total number of indices drawn by the command.
func (c *DrawCommand) IndexCount() int {
	n := 0
	for _, r := range c.Ranges {
		n += r.Count
	}
	return n
}
