// Package native implements render.Context on top of the gogpu/wgpu
// hardware abstraction layer.
//
// A Context owns vertex and index buffers, compiled programs, and the
// pipelines derived from them. Draws are recorded between BeginFrame and
// EndFrame and encoded into a single multisampled render pass with a
// depth24-stencil8 attachment, which the three-pass polyline outline
// technique relies on.
//
// Usage:
//
//	ctx, err := native.New(device, queue)
//	if err != nil {
//	    return err
//	}
//	defer ctx.Destroy()
//
//	if err := ctx.BeginFrame(800, 600); err != nil {
//	    return err
//	}
//	lines.Update(&render.FrameState{Context: ctx, ...})
//	lines.Render(&render.FrameState{Context: ctx, ...})
//	if err := ctx.EndFrame(); err != nil {
//	    return err
//	}
//
// WebGPU rasterizes lines one pixel wide. AliasedLineWidthRange reports
// [1, 1] so collections clamp every width to 1.
package native
