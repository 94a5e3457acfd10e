package polyline

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/math/f32"

	"github.com/kanbang/cesium/render"
)

// Compositing passes, in draw order.
const (
	passSeed = iota
	passFill
	passOutline

	numPasses
)

// Uniform names shared by the shaders and the per-pass uniform maps.
const (
	uniformViewProjection = "view_projection"
	uniformModel          = "model"
	uniformMorph          = "morph"
)

const stencilMask = 0xFF

// passStates returns the render state of each pass. Line widths are set
// per batch.
func passStates(depthTest bool) [numPasses]render.RenderState {
	return [numPasses]render.RenderState{
		passSeed: {
			ColorWrite: false,
			Blending:   render.BlendNone,
			DepthTest:  depthTest,
			DepthWrite: !depthTest,
			Stencil: render.StencilState{
				Enabled:     true,
				Compare:     gputypes.CompareFunctionAlways,
				Reference:   0,
				ReadMask:    stencilMask,
				WriteMask:   stencilMask,
				FailOp:      render.StencilReplace,
				DepthFailOp: render.StencilReplace,
				PassOp:      render.StencilReplace,
			},
		},
		passFill: {
			ColorWrite: true,
			Blending:   render.BlendAlpha,
			DepthTest:  depthTest,
			DepthWrite: depthTest,
			Stencil: render.StencilState{
				Enabled:     true,
				Compare:     gputypes.CompareFunctionAlways,
				Reference:   1,
				ReadMask:    stencilMask,
				WriteMask:   stencilMask,
				FailOp:      render.StencilKeep,
				DepthFailOp: render.StencilKeep,
				PassOp:      render.StencilReplace,
			},
		},
		passOutline: {
			ColorWrite: true,
			Blending:   render.BlendAlpha,
			DepthTest:  depthTest,
			DepthWrite: depthTest,
			Stencil: render.StencilState{
				Enabled:     true,
				Compare:     gputypes.CompareFunctionNotEqual,
				Reference:   1,
				ReadMask:    stencilMask,
				WriteMask:   stencilMask,
				FailOp:      render.StencilKeep,
				DepthFailOp: render.StencilKeep,
				PassOp:      render.StencilKeep,
			},
		},
	}
}

// passUniforms builds the uniform map of a pass. The seed and outline
// passes select the outline color in the vertex shader.
func (c *Collection) passUniforms(pass int) render.UniformMap {
	var selectOutline float32
	if pass != passFill {
		selectOutline = 1
	}
	return render.UniformMap{
		uniformViewProjection: func() []float32 { return render.ColumnMajor(c.viewProjection) },
		uniformModel:          func() []float32 { return render.ColumnMajor(c.modelUniform()) },
		uniformMorph:          func() []float32 { return []float32{c.morphTime, selectOutline, 0, 0} },
	}
}

// modelUniform returns the model matrix the shader applies. Outside 3D the
// matrix is baked into the vertex positions instead.
func (c *Collection) modelUniform() f32.Mat4 {
	if c.mode == render.SceneMode3D {
		return c.modelMatrix
	}
	return render.Identity()
}

// batch is a set of index ranges in one segment drawn with the same
// widths.
type batch struct {
	segment int
	ranges  []render.IndexRange
	states  [numPasses]render.RenderState
}

type batchKey struct {
	segment      int
	width        float32
	outlineWidth float32
}

func clampWidth(w, lo, hi float32) float32 {
	return max(lo, min(w, hi))
}

// regroup rebuilds the draw batches from the current layout, visibility
// and clamped widths. Batches are ordered by segment, then by the first
// polyline that uses them.
func (c *Collection) regroup() {
	c.batches = c.batches[:0]
	c.batchesDirty = false
	if c.layout == nil {
		return
	}

	index := make(map[batchKey]int)
	for _, pl := range c.layout.placements {
		p := pl.polyline
		if !p.show {
			continue
		}
		width := clampWidth(p.width, c.lineWidthMin, c.lineWidthMax)
		outlineWidth := clampWidth(p.outlineWidth, c.lineWidthMin, c.lineWidthMax)

		for _, r := range pl.runs {
			if r.count < 2 {
				continue
			}
			seg, local := c.layout.segment(r)
			key := batchKey{segment: seg, width: width, outlineWidth: outlineWidth}
			i, ok := index[key]
			if !ok {
				i = len(c.batches)
				index[key] = i
				b := batch{segment: seg, states: c.states}
				b.states[passSeed].LineWidth = outlineWidth
				b.states[passFill].LineWidth = width
				b.states[passOutline].LineWidth = outlineWidth
				c.batches = append(c.batches, b)
			}
			c.batches[i].ranges = append(c.batches[i].ranges, render.IndexRange{
				First: 2 * local,
				Count: 2 * (r.count - 1),
			})
		}
	}
}

// draw issues the three passes of every batch.
func (c *Collection) draw(target render.FramebufferID) error {
	segments := c.store.Segments()
	for i := range c.batches {
		b := &c.batches[i]
		va := segments[b.segment].VertexArray
		for pass := 0; pass < numPasses; pass++ {
			cmd := &render.DrawCommand{
				Topology:    gputypes.PrimitiveTopologyLineList,
				Program:     c.program,
				Uniforms:    c.uniforms[pass],
				VertexArray: va,
				RenderState: &b.states[pass],
				Ranges:      b.ranges,
				Target:      target,
			}
			if err := c.ctx.Draw(cmd); err != nil {
				return fmt.Errorf("polyline: draw pass %d of segment %d: %w", pass+1, b.segment, err)
			}
		}
	}
	return nil
}
