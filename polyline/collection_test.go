package polyline

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/math/f32"

	"github.com/kanbang/cesium"
	"github.com/kanbang/cesium/render"
	"github.com/kanbang/cesium/render/rendertest"
)

func newTestContext(t *testing.T, opts ...rendertest.Option) *rendertest.Context {
	t.Helper()
	ctx := rendertest.New(opts...)
	t.Cleanup(ctx.Destroy)
	return ctx
}

func frame(ctx render.Context, mode render.SceneMode) *render.FrameState {
	return &render.FrameState{
		Context:        ctx,
		Mode:           mode,
		MorphTime:      1,
		ViewProjection: render.Identity(),
	}
}

func line(points ...float32) Option {
	var ps []f32.Vec3
	for i := 0; i+2 < len(points); i += 3 {
		ps = append(ps, f32.Vec3{points[i], points[i+1], points[i+2]})
	}
	return WithPositions(ps...)
}

func updateAndRender(t *testing.T, c *Collection, fs *render.FrameState) {
	t.Helper()
	if err := c.Update(fs); err != nil {
		t.Fatalf("Update() = %v", err)
	}
	if err := c.Render(fs); err != nil {
		t.Fatalf("Render() = %v", err)
	}
}

// positionAt reads vertex v of the position attribute back from the
// recorded buffers.
func positionAt(t *testing.T, ctx *rendertest.Context, c *Collection, v int) f32.Vec3 {
	t.Helper()
	seg := c.store.Segments()[v/c.store.Capacity()]
	buf, ok := ctx.Buffer(seg.VertexArray.Attributes[attrPosition].Buffer)
	if !ok {
		t.Fatal("position buffer not found")
	}
	off := (v % c.store.Capacity()) * 12
	var out f32.Vec3
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf.Data[off+4*i:]))
	}
	return out
}

func TestLenAfterAddRemove(t *testing.T) {
	c := New()
	var live []*Polyline
	for i := 0; i < 10; i++ {
		live = append(live, c.Add())
	}
	for _, i := range []int{7, 0, 3} {
		if !c.Remove(live[i]) {
			t.Fatalf("Remove(%d) = false", i)
		}
	}
	if c.Len() != 7 {
		t.Errorf("Len() = %d, want 7", c.Len())
	}
	c.Add()
	if c.Len() != 8 {
		t.Errorf("Len() = %d, want 8", c.Len())
	}
}

func TestRemoveOnce(t *testing.T) {
	c := New()
	p := c.Add()
	other := New().Add()

	if c.Remove(nil) {
		t.Error("Remove(nil) = true")
	}
	if c.Remove(other) {
		t.Error("Remove(non-member) = true")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d after failed removals, want 1", c.Len())
	}
	if !c.Remove(p) {
		t.Error("first Remove() = false")
	}
	if c.Remove(p) {
		t.Error("second Remove() = true")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

func TestRemovePreservesOrder(t *testing.T) {
	for _, removeFirst := range []bool{true, false} {
		c := New()
		a := c.Add()
		b := c.Add()

		removed, survivor := a, b
		if !removeFirst {
			removed, survivor = b, a
		}
		c.Remove(removed)

		got, err := c.Get(0)
		if err != nil {
			t.Fatal(err)
		}
		if got != survivor {
			t.Errorf("removeFirst=%v: Get(0) returned the wrong polyline", removeFirst)
		}
		if survivor.index != 0 {
			t.Errorf("survivor index = %d, want 0", survivor.index)
		}
	}
}

func TestCompactionKeepsRelativeOrder(t *testing.T) {
	c := New()
	var ps []*Polyline
	for i := 0; i < 6; i++ {
		ps = append(ps, c.Add(WithWidth(float32(i))))
	}
	c.Remove(ps[1])
	c.Remove(ps[4])

	want := []float32{0, 2, 3, 5}
	for i, w := range want {
		p, err := c.Get(i)
		if err != nil {
			t.Fatal(err)
		}
		if p.Width() != w || p.index != i {
			t.Errorf("Get(%d) width=%v index=%d, want width=%v index=%d", i, p.Width(), p.index, w, i)
		}
	}
}

func TestContains(t *testing.T) {
	c := New()
	p := c.Add()
	other := New().Add()

	if !c.Contains(p) {
		t.Error("Contains(member) = false")
	}
	if c.Contains(nil) {
		t.Error("Contains(nil) = true")
	}
	if c.Contains(other) {
		t.Error("Contains(other collection's polyline) = true")
	}
	c.Remove(p)
	if c.Contains(p) {
		t.Error("Contains(removed) = true")
	}
}

func TestGetInvalidIndex(t *testing.T) {
	c := New()
	c.Add()
	for _, i := range []int{-1, 1, 100} {
		p, err := c.Get(i)
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("Get(%d) error = %v, want ErrInvalidArgument", i, err)
		}
		if p != nil {
			t.Errorf("Get(%d) returned a polyline", i)
		}
	}
	if c.Len() != 1 {
		t.Error("failed Get must not change the collection")
	}
}

func TestRemoveAll(t *testing.T) {
	c := New()
	a := c.Add()
	b := c.Add()
	a.SetWidth(4)

	c.RemoveAll()
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
	if c.Contains(a) || c.Contains(b) {
		t.Error("RemoveAll must detach every polyline")
	}
	if c.dirty.len() != 0 {
		t.Error("RemoveAll must clear pending updates")
	}

	c.Add()
	if c.Len() != 1 {
		t.Errorf("Len() = %d after Add, want 1", c.Len())
	}
}

func TestUpdateStoreSize(t *testing.T) {
	ctx := newTestContext(t)
	c := New()
	t.Cleanup(c.Destroy)

	a := c.Add(line(0, 0, 0, 1, 1, 1))
	c.Add(line(2, 2, 2, 3, 3, 3))
	updateAndRender(t, c, frame(ctx, render.SceneMode3D))
	if got := c.Stats().Vertices; got != 4 {
		t.Fatalf("vertices = %d, want 4", got)
	}

	c.Remove(a)
	updateAndRender(t, c, frame(ctx, render.SceneMode3D))
	if got := c.Stats().Vertices; got != 2 {
		t.Fatalf("vertices = %d after remove, want 2", got)
	}
	if got := positionAt(t, ctx, c, 0); got != (f32.Vec3{2, 2, 2}) {
		t.Errorf("vertex 0 = %v, want the surviving polyline", got)
	}
}

func TestEmptyCollection(t *testing.T) {
	ctx := newTestContext(t)
	c := New()
	t.Cleanup(c.Destroy)

	updateAndRender(t, c, frame(ctx, render.SceneMode3D))
	if c.store == nil {
		t.Fatal("empty collection should still allocate a store")
	}
	if c.Stats().Vertices != 0 {
		t.Errorf("vertices = %d, want 0", c.Stats().Vertices)
	}
	if len(ctx.Draws) != 0 {
		t.Errorf("draws = %d, want 0", len(ctx.Draws))
	}
	if ctx.LiveBuffers() != 0 {
		t.Errorf("empty collection allocated %d buffers", ctx.LiveBuffers())
	}
}

func TestDegeneratePolylinesNotDrawn(t *testing.T) {
	ctx := newTestContext(t)
	c := New()
	t.Cleanup(c.Destroy)

	c.Add()
	c.Add(line(1, 1, 1))
	updateAndRender(t, c, frame(ctx, render.SceneMode3D))

	if got := c.Stats().Vertices; got != 1 {
		t.Errorf("vertices = %d, want 1", got)
	}
	if len(ctx.Draws) != 0 {
		t.Errorf("draws = %d, want 0", len(ctx.Draws))
	}
}

func TestThreePassDraws(t *testing.T) {
	ctx := newTestContext(t)
	c := New()
	t.Cleanup(c.Destroy)

	c.Add(line(0, 0, 0, 1, 0, 0), WithWidth(2), WithOutlineWidth(5))
	c.Add(line(0, 1, 0, 1, 1, 0, 2, 1, 0), WithWidth(2), WithOutlineWidth(5))
	updateAndRender(t, c, frame(ctx, render.SceneMode3D))

	if len(ctx.Draws) != 3 {
		t.Fatalf("draws = %d, want 3", len(ctx.Draws))
	}
	wantRanges := []render.IndexRange{{First: 0, Count: 2}, {First: 4, Count: 4}}

	for i, d := range ctx.Draws {
		if d.Command.Topology != gputypes.PrimitiveTopologyLineList {
			t.Errorf("pass %d topology = %v, want line list", i+1, d.Command.Topology)
		}
		if len(d.Command.Ranges) != 2 || d.Command.Ranges[0] != wantRanges[0] || d.Command.Ranges[1] != wantRanges[1] {
			t.Errorf("pass %d ranges = %v, want %v", i+1, d.Command.Ranges, wantRanges)
		}
		if !d.State.Stencil.Enabled {
			t.Errorf("pass %d stencil disabled", i+1)
		}
	}

	seed, fill, outline := ctx.Draws[0].State, ctx.Draws[1].State, ctx.Draws[2].State

	if seed.ColorWrite {
		t.Error("seed pass must not write color")
	}
	if seed.Stencil.Compare != gputypes.CompareFunctionAlways || seed.Stencil.Reference != 0 ||
		seed.Stencil.PassOp != render.StencilReplace {
		t.Errorf("seed stencil = %+v", seed.Stencil)
	}
	if seed.LineWidth != 5 {
		t.Errorf("seed line width = %v, want outline width 5", seed.LineWidth)
	}

	if !fill.ColorWrite || fill.Blending != render.BlendAlpha {
		t.Error("fill pass must write alpha-blended color")
	}
	if fill.Stencil.Compare != gputypes.CompareFunctionAlways || fill.Stencil.Reference != 1 ||
		fill.Stencil.PassOp != render.StencilReplace {
		t.Errorf("fill stencil = %+v", fill.Stencil)
	}
	if fill.LineWidth != 2 {
		t.Errorf("fill line width = %v, want 2", fill.LineWidth)
	}

	if !outline.ColorWrite || outline.Blending != render.BlendAlpha {
		t.Error("outline pass must write alpha-blended color")
	}
	if outline.Stencil.Compare != gputypes.CompareFunctionNotEqual || outline.Stencil.Reference != 1 ||
		outline.Stencil.PassOp != render.StencilKeep {
		t.Errorf("outline stencil = %+v", outline.Stencil)
	}
	if outline.LineWidth != 5 {
		t.Errorf("outline line width = %v, want 5", outline.LineWidth)
	}

	for i, want := range []float32{1, 0, 1} {
		if got := ctx.Draws[i].Uniforms[uniformMorph][1]; got != want {
			t.Errorf("pass %d outline select = %v, want %v", i+1, got, want)
		}
	}
}

func TestBatchesByWidth(t *testing.T) {
	ctx := newTestContext(t)
	c := New()
	t.Cleanup(c.Destroy)

	c.Add(line(0, 0, 0, 1, 0, 0), WithWidth(1))
	c.Add(line(0, 0, 0, 1, 0, 0), WithWidth(3))
	c.Add(line(0, 0, 0, 1, 0, 0), WithWidth(1))
	c.Add(line(0, 0, 0, 1, 0, 0), WithShow(false))
	updateAndRender(t, c, frame(ctx, render.SceneMode3D))

	if got := c.Stats().Batches; got != 2 {
		t.Fatalf("batches = %d, want 2", got)
	}
	if len(ctx.Draws) != 6 {
		t.Fatalf("draws = %d, want 6", len(ctx.Draws))
	}
	first := ctx.Draws[0].Command.Ranges
	if len(first) != 2 || first[0].First != 0 || first[1].First != 8 {
		t.Errorf("width-1 batch ranges = %v, want polylines 0 and 2", first)
	}
}

func TestWidthClamping(t *testing.T) {
	ctx := newTestContext(t, rendertest.WithLineWidthRange(1, 4))
	c := New()
	t.Cleanup(c.Destroy)

	c.Add(line(0, 0, 0, 1, 0, 0), WithWidth(10), WithOutlineWidth(0.5))
	updateAndRender(t, c, frame(ctx, render.SceneMode3D))

	if got := ctx.Draws[passFill].State.LineWidth; got != 4 {
		t.Errorf("fill width = %v, want 4", got)
	}
	if got := ctx.Draws[passOutline].State.LineWidth; got != 1 {
		t.Errorf("outline width = %v, want 1", got)
	}
}

func TestDepthTestWhileMorphing(t *testing.T) {
	ctx := newTestContext(t)
	c := New()
	t.Cleanup(c.Destroy)
	c.Add(line(0, 0, 0, 1, 0, 0))

	tests := []struct {
		mode      render.SceneMode
		depthTest bool
	}{
		{render.SceneMode3D, false},
		{render.SceneModeMorphing, true},
		{render.SceneMode2D, false},
	}
	for _, tt := range tests {
		ctx.Reset()
		updateAndRender(t, c, frame(ctx, tt.mode))

		seed := ctx.Draws[passSeed].State
		if seed.DepthTest != tt.depthTest || seed.DepthWrite != !tt.depthTest {
			t.Errorf("%v seed depth test/write = %v/%v", tt.mode, seed.DepthTest, seed.DepthWrite)
		}
		for _, pass := range []int{passFill, passOutline} {
			s := ctx.Draws[pass].State
			if s.DepthTest != tt.depthTest || s.DepthWrite != tt.depthTest {
				t.Errorf("%v pass %d depth test/write = %v/%v, want %v", tt.mode, pass+1, s.DepthTest, s.DepthWrite, tt.depthTest)
			}
		}
	}
}

func TestSegmentSplitting(t *testing.T) {
	ctx := newTestContext(t)
	c := New(WithSegmentCapacity(4))
	t.Cleanup(c.Destroy)

	c.Add(line(0, 0, 0, 1, 0, 0, 2, 0, 0))
	long := c.Add(line(
		0, 1, 0, 1, 1, 0, 2, 1, 0,
		3, 1, 0, 4, 1, 0, 5, 1, 0,
	))
	updateAndRender(t, c, frame(ctx, render.SceneMode3D))

	stats := c.Stats()
	// 3 + pad 1 + 4 + 3 (split repeats one vertex).
	if stats.Vertices != 11 || stats.Segments != 3 {
		t.Fatalf("vertices=%d segments=%d, want 11 and 3", stats.Vertices, stats.Segments)
	}
	if len(ctx.Draws) != 9 {
		t.Fatalf("draws = %d, want 9", len(ctx.Draws))
	}
	if got := positionAt(t, ctx, c, 8); got != long.Positions()[3] {
		t.Errorf("first vertex of segment 2 = %v, want the repeated boundary %v", got, long.Positions()[3])
	}
	segs := c.store.Segments()
	if ctx.Draws[6].Command.VertexArray != segs[2].VertexArray {
		t.Error("last batch should draw from the last segment")
	}
}

func TestUsageClassification(t *testing.T) {
	ctx := newTestContext(t)
	c := New()
	t.Cleanup(c.Destroy)
	p := c.Add(line(0, 0, 0, 1, 0, 0))
	updateAndRender(t, c, frame(ctx, render.SceneMode3D))

	p.SetPositions([]f32.Vec3{{1, 1, 1}, {2, 2, 2}})
	updateAndRender(t, c, frame(ctx, render.SceneMode3D))

	if got := c.Usage(PropertyPositions); got != render.StreamDraw {
		t.Errorf("positions usage = %v, want StreamDraw", got)
	}
	for _, prop := range []Property{PropertyShow, PropertyColor, PropertyWidth, PropertyOutlineWidth, PropertyOutlineColor} {
		if got := c.Usage(prop); got != render.StaticDraw {
			t.Errorf("%v usage = %v, want StaticDraw", prop, got)
		}
	}

	va := c.store.Segments()[0].VertexArray
	pos, _ := ctx.Buffer(va.Attributes[attrPosition].Buffer)
	col, _ := ctx.Buffer(va.Attributes[attrColor].Buffer)
	if pos.Usage != render.StreamDraw || col.Usage != render.StaticDraw {
		t.Errorf("buffer usages = %v, %v; want StreamDraw, StaticDraw", pos.Usage, col.Usage)
	}
}

func TestIncrementalAttributeWrites(t *testing.T) {
	ctx := newTestContext(t)
	c := New()
	t.Cleanup(c.Destroy)
	c.Add(line(0, 0, 0, 1, 0, 0))
	p := c.Add(line(5, 0, 0, 6, 0, 0))
	updateAndRender(t, c, frame(ctx, render.SceneMode3D))

	// The first color change flips the usage and rebuilds.
	p.SetColor(cesium.Red)
	updateAndRender(t, c, frame(ctx, render.SceneMode3D))
	rebuilds := c.Stats().Rebuilds

	ctx.Reset()
	p.SetColor(cesium.Blue)
	updateAndRender(t, c, frame(ctx, render.SceneMode3D))

	if got := c.Stats().Rebuilds; got != rebuilds {
		t.Fatalf("rebuilds = %d, want %d", got, rebuilds)
	}
	if len(ctx.Writes) != 1 {
		t.Fatalf("writes = %d, want 1", len(ctx.Writes))
	}
	colorBuffer := c.store.Segments()[0].VertexArray.Attributes[attrColor].Buffer
	w := ctx.Writes[0]
	if w.Buffer != colorBuffer || w.Offset != 8 || w.Size != 8 {
		t.Errorf("write = %+v, want 8 bytes at 8 in the color buffer", w)
	}
	buf, _ := ctx.Buffer(colorBuffer)
	if got := buf.Data[8:12]; got[0] != 0 || got[2] != 255 || got[3] != 255 {
		t.Errorf("color bytes = %v, want blue", got)
	}
	if p.IsDirty() {
		t.Error("written polyline should be clean")
	}
}

func TestShowChangeRegroupsOnly(t *testing.T) {
	ctx := newTestContext(t)
	c := New()
	t.Cleanup(c.Destroy)
	p := c.Add(line(0, 0, 0, 1, 0, 0))
	updateAndRender(t, c, frame(ctx, render.SceneMode3D))

	p.SetShow(false)
	updateAndRender(t, c, frame(ctx, render.SceneMode3D))
	p.SetShow(true)
	updateAndRender(t, c, frame(ctx, render.SceneMode3D))
	rebuilds := c.Stats().Rebuilds

	ctx.Reset()
	p.SetShow(false)
	updateAndRender(t, c, frame(ctx, render.SceneMode3D))
	if c.Stats().Rebuilds != rebuilds {
		t.Error("show change should not rebuild")
	}
	if len(ctx.Writes) != 0 {
		t.Errorf("show change wrote %d ranges", len(ctx.Writes))
	}
	if len(ctx.Draws) != 0 {
		t.Errorf("hidden polyline drew %d times", len(ctx.Draws))
	}
}

func TestModelMatrixRebuildPerMode(t *testing.T) {
	ctx := newTestContext(t)
	c := New(WithModelMatrix(render.Translate(10, 0, 0)))
	t.Cleanup(c.Destroy)
	c.Add(line(1, 2, 3, 4, 5, 6))

	step := func(mode render.SceneMode) (rebuilt bool) {
		t.Helper()
		before := c.Stats().Rebuilds
		ctx.Reset()
		updateAndRender(t, c, frame(ctx, mode))
		return c.Stats().Rebuilds != before
	}

	step(render.SceneMode3D)
	if got := positionAt(t, ctx, c, 0); got != (f32.Vec3{1, 2, 3}) {
		t.Errorf("3D vertex = %v, want untransformed", got)
	}
	if got := ctx.Draws[0].Uniforms[uniformModel][12]; got != 10 {
		t.Errorf("3D model uniform translation = %v, want 10", got)
	}

	c.SetModelMatrix(render.Translate(20, 0, 0))
	if step(render.SceneMode3D) {
		t.Error("model change in 3D should not rebuild")
	}
	if got := ctx.Draws[0].Uniforms[uniformModel][12]; got != 20 {
		t.Errorf("model uniform = %v, want 20", got)
	}

	if !step(render.SceneMode2D) {
		t.Error("mode change should rebuild")
	}
	if got := positionAt(t, ctx, c, 0); got != (f32.Vec3{21, 2, 3}) {
		t.Errorf("2D vertex = %v, want baked translation", got)
	}
	if got := ctx.Draws[0].Uniforms[uniformModel][12]; got != 0 {
		t.Errorf("2D model uniform translation = %v, want identity", got)
	}

	if step(render.SceneMode2D) {
		t.Error("unchanged model in 2D should not rebuild")
	}

	c.SetModelMatrix(render.Translate(30, 0, 0))
	if !step(render.SceneMode2D) {
		t.Error("model change outside 3D should rebuild")
	}
	if got := positionAt(t, ctx, c, 0); got != (f32.Vec3{31, 2, 3}) {
		t.Errorf("rebaked vertex = %v", got)
	}

	c.SetModelMatrix(render.Translate(40, 0, 0))
	if !step(render.SceneModeMorphing) {
		t.Error("switching to morphing should rebuild")
	}
	c.SetModelMatrix(render.Translate(50, 0, 0))
	if !step(render.SceneModeMorphing) {
		t.Error("model change while morphing should rebuild")
	}

	if !step(render.SceneModeColumbusView) {
		t.Error("switching to Columbus view should rebuild")
	}
	if !step(render.SceneMode3D) {
		t.Error("switching back to 3D should rebuild")
	}
	if got := positionAt(t, ctx, c, 0); got != (f32.Vec3{1, 2, 3}) {
		t.Errorf("3D vertex after round trip = %v, want untransformed", got)
	}
}

func TestHiddenCollectionIsNoop(t *testing.T) {
	ctx := newTestContext(t)
	c := New(WithCollectionShow(false))
	t.Cleanup(c.Destroy)
	c.Add(line(0, 0, 0, 1, 0, 0))

	updateAndRender(t, c, frame(ctx, render.SceneMode3D))
	if ctx.Programs() != 0 || ctx.BuffersCreated != 0 || len(ctx.Draws) != 0 {
		t.Error("hidden collection touched the context")
	}

	c.SetShow(true)
	updateAndRender(t, c, frame(ctx, render.SceneMode3D))
	if len(ctx.Draws) != 3 {
		t.Errorf("draws = %d, want 3", len(ctx.Draws))
	}
}

func TestUpdateRequiresContext(t *testing.T) {
	c := New()
	if err := c.Update(&render.FrameState{}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Update() = %v, want ErrInvalidArgument", err)
	}
}

func TestUpdateReportsBackendErrors(t *testing.T) {
	ctx := newTestContext(t)
	c := New()
	t.Cleanup(c.Destroy)
	c.Add(line(0, 0, 0, 1, 0, 0))

	boom := errors.New("device lost")
	ctx.FailCreate = boom
	if err := c.Update(frame(ctx, render.SceneMode3D)); !errors.Is(err, boom) {
		t.Fatalf("Update() = %v, want %v", err, boom)
	}
	if err := c.Render(frame(ctx, render.SceneMode3D)); err != nil {
		t.Fatalf("Render() after failed update = %v", err)
	}
	if len(ctx.Draws) != 0 {
		t.Error("failed update should leave nothing to draw")
	}

	updateAndRender(t, c, frame(ctx, render.SceneMode3D))
	if len(ctx.Draws) != 3 {
		t.Errorf("draws = %d after recovery, want 3", len(ctx.Draws))
	}
}

func TestSharedProgramAndIndexBuffer(t *testing.T) {
	ctx := newTestContext(t)
	a := New()
	b := New()
	a.Add(line(0, 0, 0, 1, 0, 0))
	b.Add(line(0, 0, 0, 1, 0, 0))
	updateAndRender(t, a, frame(ctx, render.SceneMode3D))
	updateAndRender(t, b, frame(ctx, render.SceneMode3D))

	if a.program != b.program {
		t.Error("collections on one context should share the program")
	}
	if got := ctx.ProgramRefs(a.program); got != 2 {
		t.Errorf("program refs = %d, want 2", got)
	}
	if a.store.Segments()[0].VertexArray.IndexBuffer != b.store.Segments()[0].VertexArray.IndexBuffer {
		t.Error("collections on one context should share the index buffer")
	}

	a.Destroy()
	if got := ctx.ProgramRefs(b.program); got != 1 {
		t.Errorf("program refs after Destroy = %d, want 1", got)
	}
	b.Destroy()
	if ctx.Programs() != 0 {
		t.Errorf("programs = %d after destroying both, want 0", ctx.Programs())
	}
	if got := ctx.LiveBuffers(); got != 1 {
		t.Errorf("live buffers = %d, want only the shared index buffer", got)
	}
}

func TestDestroyDetaches(t *testing.T) {
	ctx := newTestContext(t)
	c := New()
	p := c.Add(line(0, 0, 0, 1, 0, 0))
	updateAndRender(t, c, frame(ctx, render.SceneMode3D))

	c.Destroy()
	if c.Contains(p) {
		t.Error("Destroy should detach polylines")
	}
	p.SetWidth(9)
	if p.Width() != 9 {
		t.Error("detached polyline should remain usable")
	}
}

func TestContextSwitchReleasesOld(t *testing.T) {
	ctx1 := newTestContext(t)
	ctx2 := newTestContext(t)
	c := New()
	t.Cleanup(c.Destroy)
	c.Add(line(0, 0, 0, 1, 0, 0))

	updateAndRender(t, c, frame(ctx1, render.SceneMode3D))
	updateAndRender(t, c, frame(ctx2, render.SceneMode3D))

	if ctx1.Programs() != 0 {
		t.Error("old context still holds the program")
	}
	if got := ctx1.LiveBuffers(); got != 1 {
		t.Errorf("old context live buffers = %d, want only its index buffer", got)
	}
	if len(ctx2.Draws) != 3 {
		t.Errorf("new context draws = %d, want 3", len(ctx2.Draws))
	}
}

func TestProgramDescriptor(t *testing.T) {
	d := ProgramDescriptor()
	if d.VertexSource == "" || d.FragmentSource == "" {
		t.Fatal("embedded shader sources are empty")
	}
	if len(d.Attributes) != 3 {
		t.Errorf("attributes = %d, want 3", len(d.Attributes))
	}
	if got := d.UniformSize(); got != 64+64+16 {
		t.Errorf("uniform size = %d, want 144", got)
	}
}
