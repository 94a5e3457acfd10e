package native

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/kanbang/cesium"
	"github.com/kanbang/cesium/render"
)

// frameTextures are the attachments of the frame render pass: a
// multisampled color target, its single-sample resolve target and a
// multisampled depth24-stencil8 buffer.
type frameTextures struct {
	width, height uint32
	sampleCount   uint32

	colorTex    hal.Texture
	colorView   hal.TextureView
	resolveTex  hal.Texture
	resolveView hal.TextureView
	depthTex    hal.Texture
	depthView   hal.TextureView
}

// ensure recreates the attachments when the size changes.
func (t *frameTextures) ensure(device hal.Device, w, h, samples uint32, format gputypes.TextureFormat) error {
	if t.width == w && t.height == h && t.sampleCount == samples && t.depthTex != nil {
		return nil
	}
	t.destroy(device)

	var err error
	if samples > 1 {
		t.colorTex, t.colorView, err = createAttachment(device, "frame_msaa_color", w, h, samples, format,
			gputypes.TextureUsageRenderAttachment)
		if err != nil {
			return err
		}
	}
	t.resolveTex, t.resolveView, err = createAttachment(device, "frame_color", w, h, 1, format,
		gputypes.TextureUsageRenderAttachment|gputypes.TextureUsageCopySrc)
	if err != nil {
		t.destroy(device)
		return err
	}
	t.depthTex, t.depthView, err = createAttachment(device, "frame_depth_stencil", w, h, samples,
		gputypes.TextureFormatDepth24PlusStencil8, gputypes.TextureUsageRenderAttachment)
	if err != nil {
		t.destroy(device)
		return err
	}

	t.width, t.height, t.sampleCount = w, h, samples
	return nil
}

func createAttachment(device hal.Device, label string, w, h, samples uint32, format gputypes.TextureFormat, usage gputypes.TextureUsage) (hal.Texture, hal.TextureView, error) {
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   samples,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create %s texture: %w", label, err)
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{Label: label + "_view"})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, nil, fmt.Errorf("create %s view: %w", label, err)
	}
	return tex, view, nil
}

func (t *frameTextures) destroy(device hal.Device) {
	for _, pair := range []struct {
		view *hal.TextureView
		tex  *hal.Texture
	}{
		{&t.depthView, &t.depthTex},
		{&t.resolveView, &t.resolveTex},
		{&t.colorView, &t.colorTex},
	} {
		if *pair.view != nil {
			device.DestroyTextureView(*pair.view)
			*pair.view = nil
		}
		if *pair.tex != nil {
			device.DestroyTexture(*pair.tex)
			*pair.tex = nil
		}
	}
	t.width, t.height, t.sampleCount = 0, 0, 0
}

// recordedDraw is a draw resolved to GPU objects, waiting for EndFrame.
type recordedDraw struct {
	pipeline   hal.RenderPipeline
	program    *program
	uniforms   []byte
	vertex     []hal.Buffer
	index      hal.Buffer
	ranges     []render.IndexRange
	stencilRef uint32
}

// frame collects the draws of one BeginFrame/EndFrame pair together with
// the per-draw uniform resources created when it is encoded.
type frame struct {
	draws      []recordedDraw
	uniformBuf []hal.Buffer
	bindGroups []hal.BindGroup
}

func (f *frame) discard(device hal.Device) {
	for i := len(f.bindGroups) - 1; i >= 0; i-- {
		if f.bindGroups[i] != nil {
			device.DestroyBindGroup(f.bindGroups[i])
		}
	}
	for i := len(f.uniformBuf) - 1; i >= 0; i-- {
		device.DestroyBuffer(f.uniformBuf[i])
	}
	f.bindGroups, f.uniformBuf, f.draws = nil, nil, nil
}

// BeginFrame starts recording draws for a width x height frame.
func (c *Context) BeginFrame(width, height int) error {
	if c.destroyed {
		return ErrDestroyed
	}
	if c.frame != nil {
		return ErrFrameInProgress
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if err := c.textures.ensure(c.device, uint32(width), uint32(height), c.cfg.sampleCount, c.cfg.colorFormat); err != nil {
		return err
	}
	c.frame = &frame{}
	return nil
}

// Draw records a draw into the current frame. Uniforms are evaluated now.
func (c *Context) Draw(cmd *render.DrawCommand) error {
	if c.destroyed {
		return ErrDestroyed
	}
	if c.frame == nil {
		return ErrNoFrame
	}
	if cmd.Target != 0 {
		return fmt.Errorf("native: unknown framebuffer %d", cmd.Target)
	}
	if cmd.VertexArray == nil {
		return render.ErrNilVertexArray
	}
	prog, ok := c.programs.Get(cmd.Program)
	if !ok {
		return fmt.Errorf("%w: %d", render.ErrUnknownProgram, cmd.Program)
	}
	rs := cmd.RenderState
	if rs == nil {
		rs = &render.RenderState{ColorWrite: true, LineWidth: 1}
	}
	if rs.LineWidth != 1 && rs.LineWidth != 0 {
		c.warnWidth.Do(func() {
			cesium.Logger().Warn("native: line width ignored", "width", rs.LineWidth)
		})
	}

	va := cmd.VertexArray
	vertex := make([]hal.Buffer, len(va.Attributes))
	for i, b := range va.Attributes {
		buf, ok := c.buffers[b.Buffer]
		if !ok || buf.index {
			return fmt.Errorf("%w: vertex buffer %d", render.ErrUnknownBuffer, b.Buffer)
		}
		vertex[i] = buf.raw
	}
	idx, ok := c.buffers[va.IndexBuffer]
	if !ok || !idx.index {
		return fmt.Errorf("%w: index buffer %d", render.ErrUnknownBuffer, va.IndexBuffer)
	}
	for _, r := range cmd.Ranges {
		if r.First < 0 || r.Count < 0 || 2*(r.First+r.Count) > idx.size {
			return fmt.Errorf("%w: index range [%d, %d)", render.ErrOutOfBounds, r.First, r.First+r.Count)
		}
	}

	uniforms, err := prog.packUniforms(cmd.Uniforms)
	if err != nil {
		return err
	}

	key := makePipelineKey(cmd.Program, cmd.Topology, rs, va)
	pipeline, err := c.pipes.getOrCreate(key, cmd.Program, func() (hal.RenderPipeline, error) {
		return c.createPipeline(prog, cmd.Topology, rs, va)
	})
	if err != nil {
		return err
	}

	var ref uint32
	if rs.Stencil.Enabled {
		ref = rs.Stencil.Reference
	}
	c.frame.draws = append(c.frame.draws, recordedDraw{
		pipeline:   pipeline,
		program:    prog,
		uniforms:   uniforms,
		vertex:     vertex,
		index:      idx.raw,
		ranges:     append([]render.IndexRange(nil), cmd.Ranges...),
		stencilRef: ref,
	})
	return nil
}

// createPipeline builds a render pipeline for the program and state.
func (c *Context) createPipeline(p *program, topology gputypes.PrimitiveTopology, rs *render.RenderState, va *render.VertexArray) (hal.RenderPipeline, error) {
	layouts, err := vertexLayouts(va)
	if err != nil {
		return nil, err
	}
	pipeline, err := c.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  p.desc.Label + "_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.vertex,
			EntryPoint: "vs_main",
			Buffers:    layouts,
		},
		Fragment: &hal.FragmentState{
			Module:     p.fragment,
			EntryPoint: "fs_main",
			Targets:    []gputypes.ColorTargetState{colorTarget(rs, c.cfg.colorFormat)},
		},
		DepthStencil: depthStencilState(rs),
		Multisample: gputypes.MultisampleState{
			Count: c.cfg.sampleCount,
			Mask:  0xFFFFFFFF,
		},
		Primitive: gputypes.PrimitiveState{
			Topology: topology,
			CullMode: gputypes.CullModeNone,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create render pipeline: %w", err)
	}
	cesium.Logger().Debug("native: pipeline created", "program", p.desc.Label,
		"color_write", rs.ColorWrite, "stencil", rs.Stencil.Enabled, "depth_test", rs.DepthTest)
	return pipeline, nil
}

// EndFrame encodes every recorded draw into one render pass, submits it
// and waits for the GPU.
func (c *Context) EndFrame() error {
	if c.destroyed {
		return ErrDestroyed
	}
	f := c.frame
	if f == nil {
		return ErrNoFrame
	}
	c.frame = nil
	defer f.discard(c.device)

	for i := range f.draws {
		if err := c.prepareUniforms(f, &f.draws[i]); err != nil {
			return err
		}
	}

	encoder, err := c.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "polyline_frame"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("polyline_frame"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(c.renderPassDescriptor())
	for i, d := range f.draws {
		rp.SetPipeline(d.pipeline)
		if d.program.uniformSize > 0 {
			rp.SetBindGroup(0, f.bindGroups[i], nil)
		}
		rp.SetStencilReference(d.stencilRef)
		for slot, buf := range d.vertex {
			rp.SetVertexBuffer(uint32(slot), buf, 0)
		}
		rp.SetIndexBuffer(d.index, gputypes.IndexFormatUint16, 0)
		for _, r := range d.ranges {
			if r.Count == 0 {
				continue
			}
			rp.DrawIndexed(uint32(r.Count), 1, uint32(r.First), 0, 0)
		}
	}
	rp.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer c.device.FreeCommandBuffer(cmdBuf)

	fence, err := c.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer c.device.DestroyFence(fence)

	if err := c.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := c.device.Wait(fence, 1, c.cfg.timeout)
	if err != nil || !fenceOK {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", fenceOK, err)
	}

	c.frames++
	return nil
}

// prepareUniforms uploads the draw's uniform block and binds it. Draws
// without uniforms get a nil bind group so indices stay aligned.
func (c *Context) prepareUniforms(f *frame, d *recordedDraw) error {
	if d.program.uniformSize == 0 {
		f.bindGroups = append(f.bindGroups, nil)
		return nil
	}
	buf, err := c.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "draw_uniforms",
		Size:  uint64(len(d.uniforms)),
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create uniform buffer: %w", err)
	}
	f.uniformBuf = append(f.uniformBuf, buf)
	c.queue.WriteBuffer(buf, 0, d.uniforms)

	bg, err := c.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "draw_uniforms_bind_group",
		Layout: d.program.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: buf.NativeHandle(),
				Offset: 0,
				Size:   uint64(len(d.uniforms)),
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("create uniform bind group: %w", err)
	}
	f.bindGroups = append(f.bindGroups, bg)
	return nil
}

// renderPassDescriptor describes the frame pass. Stencil is cleared to
// zero and discarded at the end of the pass.
func (c *Context) renderPassDescriptor() *hal.RenderPassDescriptor {
	color := hal.RenderPassColorAttachment{
		View:       c.textures.resolveView,
		LoadOp:     gputypes.LoadOpClear,
		StoreOp:    gputypes.StoreOpStore,
		ClearValue: gputypes.Color{},
	}
	if c.textures.colorView != nil {
		color.View = c.textures.colorView
		color.ResolveTarget = c.textures.resolveView
	}
	return &hal.RenderPassDescriptor{
		Label:            "polyline_frame",
		ColorAttachments: []hal.RenderPassColorAttachment{color},
		DepthStencilAttachment: &hal.RenderPassDepthStencilAttachment{
			View:              c.textures.depthView,
			DepthLoadOp:       gputypes.LoadOpClear,
			DepthStoreOp:      gputypes.StoreOpDiscard,
			DepthClearValue:   1.0,
			StencilLoadOp:     gputypes.LoadOpClear,
			StencilStoreOp:    gputypes.StoreOpDiscard,
			StencilClearValue: 0,
		},
	}
}

// ResolveTexture returns the single-sample color texture of the last
// frame, or nil before the first BeginFrame.
func (c *Context) ResolveTexture() hal.Texture {
	return c.textures.resolveTex
}
