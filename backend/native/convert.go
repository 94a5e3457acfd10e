package native

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/kanbang/cesium/render"
)

// stencilOperation maps a render stencil op to its HAL equivalent.
func stencilOperation(op render.StencilOp) hal.StencilOperation {
	switch op {
	case render.StencilZero:
		return hal.StencilOperationZero
	case render.StencilReplace:
		return hal.StencilOperationReplace
	case render.StencilInvert:
		return hal.StencilOperationInvert
	case render.StencilIncrementWrap:
		return hal.StencilOperationIncrementWrap
	case render.StencilDecrementWrap:
		return hal.StencilOperationDecrementWrap
	default:
		return hal.StencilOperationKeep
	}
}

// stencilFace builds the face state shared by front and back faces. A
// disabled stencil test always passes and never writes.
func stencilFace(s *render.StencilState) hal.StencilFaceState {
	if !s.Enabled {
		return hal.StencilFaceState{
			Compare:     gputypes.CompareFunctionAlways,
			FailOp:      hal.StencilOperationKeep,
			DepthFailOp: hal.StencilOperationKeep,
			PassOp:      hal.StencilOperationKeep,
		}
	}
	return hal.StencilFaceState{
		Compare:     s.Compare,
		FailOp:      stencilOperation(s.FailOp),
		DepthFailOp: stencilOperation(s.DepthFailOp),
		PassOp:      stencilOperation(s.PassOp),
	}
}

// depthStencilState converts the depth and stencil parts of a render state.
func depthStencilState(rs *render.RenderState) *hal.DepthStencilState {
	compare := gputypes.CompareFunctionAlways
	if rs.DepthTest {
		compare = gputypes.CompareFunctionLess
	}
	face := stencilFace(&rs.Stencil)
	var readMask, writeMask uint32
	if rs.Stencil.Enabled {
		readMask, writeMask = rs.Stencil.ReadMask, rs.Stencil.WriteMask
	}
	return &hal.DepthStencilState{
		Format:            gputypes.TextureFormatDepth24PlusStencil8,
		DepthWriteEnabled: rs.DepthWrite,
		DepthCompare:      compare,
		StencilFront:      face,
		StencilBack:       face,
		StencilReadMask:   readMask,
		StencilWriteMask:  writeMask,
	}
}

// colorTarget converts the color part of a render state. Shaders output
// premultiplied color, so alpha blending uses the premultiplied equation.
func colorTarget(rs *render.RenderState, format gputypes.TextureFormat) gputypes.ColorTargetState {
	target := gputypes.ColorTargetState{
		Format:    format,
		WriteMask: gputypes.ColorWriteMaskNone,
	}
	if rs.ColorWrite {
		target.WriteMask = gputypes.ColorWriteMaskAll
	}
	if rs.Blending == render.BlendAlpha {
		blend := gputypes.BlendStatePremultiplied()
		target.Blend = &blend
	}
	return target
}

// vertexFormat returns the WebGPU format of an attribute binding.
func vertexFormat(b render.VertexBinding) (gputypes.VertexFormat, error) {
	switch b.Type {
	case render.Float32:
		switch b.Components {
		case 1:
			return gputypes.VertexFormatFloat32, nil
		case 2:
			return gputypes.VertexFormatFloat32x2, nil
		case 3:
			return gputypes.VertexFormatFloat32x3, nil
		case 4:
			return gputypes.VertexFormatFloat32x4, nil
		}
	case render.Uint8:
		switch {
		case b.Components == 2 && b.Normalize:
			return gputypes.VertexFormatUnorm8x2, nil
		case b.Components == 4 && b.Normalize:
			return gputypes.VertexFormatUnorm8x4, nil
		case b.Components == 2:
			return gputypes.VertexFormatUint8x2, nil
		case b.Components == 4:
			return gputypes.VertexFormatUint8x4, nil
		}
	}
	return 0, fmt.Errorf("%w: %d x %s (normalize=%v)", ErrUnsupportedFormat, b.Components, b.Type, b.Normalize)
}

// vertexLayouts builds one buffer layout per binding. Each binding reads
// from its own tightly packed buffer.
func vertexLayouts(va *render.VertexArray) ([]gputypes.VertexBufferLayout, error) {
	layouts := make([]gputypes.VertexBufferLayout, len(va.Attributes))
	for i, b := range va.Attributes {
		format, err := vertexFormat(b)
		if err != nil {
			return nil, err
		}
		layouts[i] = gputypes.VertexBufferLayout{
			ArrayStride: uint64(b.Stride()),
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: format, Offset: 0, ShaderLocation: b.Location},
			},
		}
	}
	return layouts, nil
}
