// Copyright 2026 The cesium Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"encoding/binary"
	"fmt"
	"hash"
	"hash/fnv"

	"github.com/gogpu/gputypes"
)

// BlendMode selects how fragment colors combine with the target.
type BlendMode uint8

const (
	// BlendNone replaces the target color.
	BlendNone BlendMode = iota

	// BlendAlpha composites with source-over alpha blending.
	BlendAlpha
)

// StencilOp is the action applied to a stencil value.
type StencilOp uint8

const (
	StencilKeep StencilOp = iota
	StencilZero
	StencilReplace
	StencilInvert
	StencilIncrementWrap
	StencilDecrementWrap
)

// String returns the string representation of the stencil operation.
func (op StencilOp) String() string {
	switch op {
	case StencilKeep:
		return "Keep"
	case StencilZero:
		return "Zero"
	case StencilReplace:
		return "Replace"
	case StencilInvert:
		return "Invert"
	case StencilIncrementWrap:
		return "IncrementWrap"
	case StencilDecrementWrap:
		return "DecrementWrap"
	default:
		return fmt.Sprintf("StencilOp(%d)", int(op))
	}
}

// StencilState configures the stencil test. The same state applies to
// front and back faces.
type StencilState struct {
	Enabled     bool
	Compare     gputypes.CompareFunction
	Reference   uint32
	ReadMask    uint32
	WriteMask   uint32
	FailOp      StencilOp
	DepthFailOp StencilOp
	PassOp      StencilOp
}

// RenderState is the fixed-function configuration of a draw.
type RenderState struct {
	ColorWrite bool
	Blending   BlendMode
	DepthTest  bool
	DepthWrite bool
	Stencil    StencilState

	// LineWidth is the rasterized width of line primitives in pixels.
	LineWidth float32
}

// PipelineKey hashes the parts of the state that require a distinct GPU
// pipeline. Stencil reference and line width are dynamic and excluded.
func (s *RenderState) PipelineKey() uint64 {
	h := fnv.New64a()
	hashWriteBool(h, s.ColorWrite)
	hashWriteUint32(h, uint32(s.Blending))
	hashWriteBool(h, s.DepthTest)
	hashWriteBool(h, s.DepthWrite)
	hashWriteBool(h, s.Stencil.Enabled)
	hashWriteUint32(h, uint32(s.Stencil.Compare))
	hashWriteUint32(h, s.Stencil.ReadMask)
	hashWriteUint32(h, s.Stencil.WriteMask)
	hashWriteUint32(h, uint32(s.Stencil.FailOp))
	hashWriteUint32(h, uint32(s.Stencil.DepthFailOp))
	hashWriteUint32(h, uint32(s.Stencil.PassOp))
	return h.Sum64()
}

func hashWriteUint32(h hash.Hash64, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, _ = h.Write(buf[:])
}

func hashWriteBool(h hash.Hash64, v bool) {
	if v {
		hashWriteUint32(h, 1)
		return
	}
	hashWriteUint32(h, 0)
}
