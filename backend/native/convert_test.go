package native

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/kanbang/cesium/render"
)

func TestStencilOperation(t *testing.T) {
	tests := []struct {
		op   render.StencilOp
		want hal.StencilOperation
	}{
		{render.StencilKeep, hal.StencilOperationKeep},
		{render.StencilZero, hal.StencilOperationZero},
		{render.StencilReplace, hal.StencilOperationReplace},
		{render.StencilInvert, hal.StencilOperationInvert},
		{render.StencilIncrementWrap, hal.StencilOperationIncrementWrap},
		{render.StencilDecrementWrap, hal.StencilOperationDecrementWrap},
	}
	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			if got := stencilOperation(tt.op); got != tt.want {
				t.Errorf("stencilOperation(%v) = %v, want %v", tt.op, got, tt.want)
			}
		})
	}
}

func TestDepthStencilState(t *testing.T) {
	rs := &render.RenderState{
		DepthTest:  true,
		DepthWrite: true,
		Stencil: render.StencilState{
			Enabled:   true,
			Compare:   gputypes.CompareFunctionNotEqual,
			Reference: 1,
			ReadMask:  0xFF,
			WriteMask: 0xFF,
			FailOp:    render.StencilKeep,
			PassOp:    render.StencilReplace,
		},
	}
	ds := depthStencilState(rs)
	if ds.DepthCompare != gputypes.CompareFunctionLess {
		t.Errorf("DepthCompare = %v, want Less", ds.DepthCompare)
	}
	if !ds.DepthWriteEnabled {
		t.Error("DepthWriteEnabled = false, want true")
	}
	if ds.StencilFront != ds.StencilBack {
		t.Error("front and back stencil faces differ")
	}
	if ds.StencilFront.Compare != gputypes.CompareFunctionNotEqual {
		t.Errorf("stencil compare = %v, want NotEqual", ds.StencilFront.Compare)
	}
	if ds.StencilFront.PassOp != hal.StencilOperationReplace {
		t.Errorf("stencil pass op = %v, want Replace", ds.StencilFront.PassOp)
	}
	if ds.StencilWriteMask != 0xFF {
		t.Errorf("StencilWriteMask = %#x, want 0xff", ds.StencilWriteMask)
	}

	disabled := depthStencilState(&render.RenderState{})
	if disabled.DepthCompare != gputypes.CompareFunctionAlways {
		t.Errorf("disabled DepthCompare = %v, want Always", disabled.DepthCompare)
	}
	if disabled.StencilWriteMask != 0 || disabled.StencilFront.Compare != gputypes.CompareFunctionAlways {
		t.Error("disabled stencil test writes or rejects fragments")
	}
}

func TestColorTarget(t *testing.T) {
	off := colorTarget(&render.RenderState{}, gputypes.TextureFormatBGRA8Unorm)
	if off.WriteMask != gputypes.ColorWriteMaskNone || off.Blend != nil {
		t.Errorf("color-off target = %+v, want no writes and no blend", off)
	}
	on := colorTarget(&render.RenderState{ColorWrite: true, Blending: render.BlendAlpha}, gputypes.TextureFormatBGRA8Unorm)
	if on.WriteMask != gputypes.ColorWriteMaskAll {
		t.Errorf("WriteMask = %v, want all", on.WriteMask)
	}
	if on.Blend == nil || *on.Blend != gputypes.BlendStatePremultiplied() {
		t.Error("alpha blending is not premultiplied source-over")
	}
}

func TestVertexFormat(t *testing.T) {
	tests := []struct {
		name    string
		binding render.VertexBinding
		want    gputypes.VertexFormat
		wantErr bool
	}{
		{"vec3", render.VertexBinding{Components: 3, Type: render.Float32}, gputypes.VertexFormatFloat32x3, false},
		{"vec4", render.VertexBinding{Components: 4, Type: render.Float32}, gputypes.VertexFormatFloat32x4, false},
		{"unorm color", render.VertexBinding{Components: 4, Type: render.Uint8, Normalize: true}, gputypes.VertexFormatUnorm8x4, false},
		{"uint8x2", render.VertexBinding{Components: 2, Type: render.Uint8}, gputypes.VertexFormatUint8x2, false},
		{"uint8x3", render.VertexBinding{Components: 3, Type: render.Uint8}, 0, true},
		{"float32x5", render.VertexBinding{Components: 5, Type: render.Float32}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := vertexFormat(tt.binding)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedFormat) {
					t.Errorf("vertexFormat error = %v, want ErrUnsupportedFormat", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("vertexFormat = %v, %v; want %v", got, err, tt.want)
			}
		})
	}
}

func TestVertexLayouts(t *testing.T) {
	va := &render.VertexArray{Attributes: []render.VertexBinding{
		{Location: 0, Components: 3, Type: render.Float32},
		{Location: 2, Components: 4, Type: render.Uint8, Normalize: true},
	}}
	layouts, err := vertexLayouts(va)
	if err != nil {
		t.Fatalf("vertexLayouts failed: %v", err)
	}
	if len(layouts) != 2 {
		t.Fatalf("len(layouts) = %d, want 2", len(layouts))
	}
	if layouts[0].ArrayStride != 12 || layouts[1].ArrayStride != 4 {
		t.Errorf("strides = %d, %d; want 12, 4", layouts[0].ArrayStride, layouts[1].ArrayStride)
	}
	if loc := layouts[1].Attributes[0].ShaderLocation; loc != 2 {
		t.Errorf("ShaderLocation = %d, want 2", loc)
	}
}

func TestPackUniforms(t *testing.T) {
	p := &program{desc: render.ProgramDescriptor{Uniforms: []render.Uniform{
		{Name: "scale", Components: 1},
		{Name: "color", Components: 4},
	}}}
	p.uniformSize = p.desc.UniformSize()

	data, err := p.packUniforms(render.UniformMap{
		"scale": func() []float32 { return []float32{2} },
		"color": func() []float32 { return []float32{1, 0, 0, 1, 99} },
	})
	if err != nil {
		t.Fatalf("packUniforms failed: %v", err)
	}
	if len(data) != 32 {
		t.Fatalf("len(data) = %d, want 32", len(data))
	}
	// 2.0 little-endian, then color at the next 16-byte slot.
	if data[3] != 0x40 || data[16+3] != 0x3f || data[28+3] != 0x3f {
		t.Errorf("unexpected packing: % x", data)
	}

	if _, err := p.packUniforms(render.UniformMap{}); !errors.Is(err, ErrMissingUniform) {
		t.Errorf("packUniforms(empty) error = %v, want ErrMissingUniform", err)
	}
}

func TestPipelineKey(t *testing.T) {
	va := &render.VertexArray{Attributes: []render.VertexBinding{{Location: 0, Components: 3, Type: render.Float32}}}
	rs := &render.RenderState{ColorWrite: true, LineWidth: 1}
	base := makePipelineKey(1, gputypes.PrimitiveTopologyLineList, rs, va)

	wider := *rs
	wider.LineWidth = 4
	if makePipelineKey(1, gputypes.PrimitiveTopologyLineList, &wider, va) != base {
		t.Error("line width changed the pipeline key")
	}
	if makePipelineKey(2, gputypes.PrimitiveTopologyLineList, rs, va) == base {
		t.Error("program did not change the pipeline key")
	}
	normalized := &render.VertexArray{Attributes: []render.VertexBinding{{Location: 0, Components: 3, Type: render.Float32, Normalize: true}}}
	if makePipelineKey(1, gputypes.PrimitiveTopologyLineList, rs, normalized) == base {
		t.Error("vertex layout did not change the pipeline key")
	}
}

func TestPipelineCache(t *testing.T) {
	c := newPipelineCache()
	created := 0
	create := func() (hal.RenderPipeline, error) {
		created++
		return nil, nil
	}

	for i := 0; i < 3; i++ {
		if _, err := c.getOrCreate(1, 10, create); err != nil {
			t.Fatalf("getOrCreate failed: %v", err)
		}
	}
	if _, err := c.getOrCreate(2, 11, create); err != nil {
		t.Fatalf("getOrCreate failed: %v", err)
	}
	if created != 2 {
		t.Errorf("created %d pipelines, want 2", created)
	}
	if hits, misses := c.stats(); hits != 2 || misses != 2 {
		t.Errorf("stats = %d/%d, want 2/2", hits, misses)
	}

	failing := errors.New("boom")
	if _, err := c.getOrCreate(3, 10, func() (hal.RenderPipeline, error) { return nil, failing }); !errors.Is(err, failing) {
		t.Errorf("getOrCreate error = %v, want %v", err, failing)
	}

	destroyed := 0
	c.evictProgram(10, func(hal.RenderPipeline) { destroyed++ })
	if destroyed != 1 || c.len() != 1 {
		t.Errorf("evictProgram destroyed %d, left %d; want 1, 1", destroyed, c.len())
	}
	c.clear(func(hal.RenderPipeline) { destroyed++ })
	if destroyed != 2 || c.len() != 0 {
		t.Errorf("clear destroyed %d, left %d; want 2, 0", destroyed, c.len())
	}
}
