package polyline

import (
	"errors"
	"fmt"

	"golang.org/x/image/math/f32"

	"github.com/kanbang/cesium"
	"github.com/kanbang/cesium/render"
	"github.com/kanbang/cesium/vertexstore"
)

// ErrInvalidArgument is returned for arguments outside their valid range.
var ErrInvalidArgument = errors.New("polyline: invalid argument")

// Stats describes the state of a collection after its last update.
type Stats struct {
	// Polylines is the number of live polylines.
	Polylines int

	// Vertices is the number of vertices in the store, padding included.
	Vertices int

	// Segments is the number of vertex store segments.
	Segments int

	// Batches is the number of (segment, width, outline width) groups.
	// Each batch costs three draw calls.
	Batches int

	// Rebuilds counts full vertex store rebuilds.
	Rebuilds int
}

// Collection renders a set of polylines with a handful of draw calls.
type Collection struct {
	polylines      []*Polyline // nil entries are removed slots
	removalPending bool
	rebuildPending bool
	dirty          dirtyQueue
	usage          usageTracker

	show            bool
	modelMatrix     f32.Mat4
	segmentCapacity int

	ctx      render.Context
	program  render.ProgramID
	states   [numPasses]render.RenderState
	uniforms [numPasses]render.UniformMap
	store    *vertexstore.Store
	layout   *layout

	lineWidthMin float32
	lineWidthMax float32
	depthTest    bool

	// Snapshots taken at the last rebuild.
	mode       render.SceneMode
	modeValid  bool
	bakedModel f32.Mat4

	viewProjection f32.Mat4
	morphTime      float32

	batches      []batch
	batchesDirty bool
	rebuilds     int
}

// CollectionOption configures a Collection.
type CollectionOption func(*Collection)

// WithModelMatrix sets the transform applied to every polyline.
// Defaults to identity.
func WithModelMatrix(m f32.Mat4) CollectionOption {
	return func(c *Collection) { c.modelMatrix = m }
}

// WithSegmentCapacity sets the maximum number of vertices per vertex
// store segment, clamped to [2, render.MaxSegmentVertices].
func WithSegmentCapacity(n int) CollectionOption {
	return func(c *Collection) {
		c.segmentCapacity = max(2, min(n, render.MaxSegmentVertices))
	}
}

// WithUsageDecay sets how many consecutive updates without a change a
// property needs before it is treated as static again. Minimum 1.
func WithUsageDecay(n int) CollectionOption {
	return func(c *Collection) { c.usage = newUsageTracker(n) }
}

// WithCollectionShow sets whether the collection is drawn.
func WithCollectionShow(show bool) CollectionOption {
	return func(c *Collection) { c.show = show }
}

// New creates an empty collection.
func New(opts ...CollectionOption) *Collection {
	c := &Collection{
		show:            true,
		modelMatrix:     render.Identity(),
		segmentCapacity: render.MaxSegmentVertices,
		usage:           newUsageTracker(DefaultUsageDecay),
		viewProjection:  render.Identity(),
		morphTime:       1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Add creates a polyline, appends it to the collection and returns it.
func (c *Collection) Add(opts ...Option) *Polyline {
	p := newPolyline()
	for _, opt := range opts {
		opt(p)
	}
	p.collection = c
	p.index = len(c.polylines)
	c.polylines = append(c.polylines, p)
	c.rebuildPending = true
	return p
}

// Remove detaches p from the collection. It returns false if p is nil or
// not a member.
func (c *Collection) Remove(p *Polyline) bool {
	if !c.Contains(p) {
		return false
	}
	c.polylines[p.index] = nil
	p.collection = nil
	c.removalPending = true
	c.rebuildPending = true
	return true
}

// RemoveAll detaches every polyline.
func (c *Collection) RemoveAll() {
	for _, p := range c.polylines {
		if p != nil {
			p.collection = nil
		}
	}
	c.polylines = nil
	c.dirty.reset()
	c.removalPending = false
	c.rebuildPending = true
}

// Contains reports whether p belongs to the collection.
func (c *Collection) Contains(p *Polyline) bool {
	return p != nil && p.collection == c
}

// Get returns the polyline at index in insertion order.
func (c *Collection) Get(index int) (*Polyline, error) {
	c.compact()
	if index < 0 || index >= len(c.polylines) {
		return nil, fmt.Errorf("%w: index %d out of range [0, %d)", ErrInvalidArgument, index, len(c.polylines))
	}
	return c.polylines[index], nil
}

// Len returns the number of polylines.
func (c *Collection) Len() int {
	c.compact()
	return len(c.polylines)
}

// compact closes the gaps left by Remove, keeping the relative order.
func (c *Collection) compact() {
	if !c.removalPending {
		return
	}
	n := 0
	for _, p := range c.polylines {
		if p != nil {
			p.index = n
			c.polylines[n] = p
			n++
		}
	}
	clear(c.polylines[n:])
	c.polylines = c.polylines[:n]
	c.removalPending = false
}

// Show reports whether the collection is drawn.
func (c *Collection) Show() bool { return c.show }

// SetShow sets whether the collection is drawn. A hidden collection skips
// Update and Render entirely.
func (c *Collection) SetShow(show bool) { c.show = show }

// ModelMatrix returns the transform applied to every polyline.
func (c *Collection) ModelMatrix() f32.Mat4 { return c.modelMatrix }

// SetModelMatrix sets the transform applied to every polyline.
func (c *Collection) SetModelMatrix(m f32.Mat4) { c.modelMatrix = m }

// Usage returns the current buffer usage classification of a property.
func (c *Collection) Usage(p Property) render.BufferUsage {
	if p >= numProperties {
		return render.StaticDraw
	}
	return c.usage.usage[p]
}

// Stats returns statistics about the collection.
func (c *Collection) Stats() Stats {
	s := Stats{
		Polylines: c.Len(),
		Batches:   len(c.batches),
		Rebuilds:  c.rebuilds,
	}
	if c.store != nil {
		s.Vertices = c.store.Len()
		s.Segments = len(c.store.Segments())
	}
	return s
}

func (c *Collection) propertyChanged(p *Polyline, prop Property, enqueue bool) {
	c.usage.record(prop)
	if enqueue {
		c.dirty.push(p)
	}
}

// Update synchronizes GPU resources with the polylines. Call it once per
// frame before Render.
func (c *Collection) Update(fs *render.FrameState) error {
	if !c.show {
		return nil
	}
	if fs == nil || fs.Context == nil {
		return fmt.Errorf("%w: frame state has no context", ErrInvalidArgument)
	}

	if c.ctx != nil && c.ctx != fs.Context {
		c.releaseGPU()
	}
	if c.program == 0 {
		if err := c.initGPU(fs.Context); err != nil {
			return err
		}
	}

	lo, hi := c.ctx.AliasedLineWidthRange()
	if lo != c.lineWidthMin || hi != c.lineWidthMax {
		c.lineWidthMin, c.lineWidthMax = lo, hi
		c.batchesDirty = true
	}

	if depthTest := fs.Mode == render.SceneModeMorphing; depthTest != c.depthTest {
		c.depthTest = depthTest
		c.states = passStates(depthTest)
		c.batchesDirty = true
	}

	c.viewProjection = fs.ViewProjection
	c.morphTime = fs.MorphTime

	usageChanged := c.usage.compute()
	modeChanged := !c.modeValid || fs.Mode != c.mode
	modelChanged := fs.Mode != render.SceneMode3D && c.modelMatrix != c.bakedModel

	if c.rebuildPending || usageChanged || modeChanged || modelChanged || c.store == nil {
		cesium.Logger().Debug("polyline: rebuild",
			"pending", c.rebuildPending, "usage", usageChanged, "mode", modeChanged, "model", modelChanged)
		c.rebuildPending = false
		c.mode = fs.Mode
		c.modeValid = true
		c.bakedModel = c.modelMatrix
		return c.rebuild()
	}

	if c.dirty.len() > 0 {
		if err := c.writeDirty(); err != nil {
			return err
		}
	}
	if c.batchesDirty {
		c.regroup()
	}
	return nil
}

// Render draws the collection with the state prepared by the last Update.
func (c *Collection) Render(fs *render.FrameState) error {
	if !c.show || c.store == nil || c.program == 0 || fs == nil {
		return nil
	}
	c.viewProjection = fs.ViewProjection
	c.morphTime = fs.MorphTime
	return c.draw(fs.Target)
}

// Destroy releases the collection's GPU resources and detaches every
// polyline. The collection must not be used afterwards.
func (c *Collection) Destroy() {
	c.releaseGPU()
	for _, p := range c.polylines {
		if p != nil {
			p.collection = nil
		}
	}
	c.polylines = nil
	c.dirty.reset()
}

func (c *Collection) initGPU(ctx render.Context) error {
	program, err := ctx.AcquireProgram(ProgramDescriptor())
	if err != nil {
		return fmt.Errorf("polyline: acquire program: %w", err)
	}
	c.ctx = ctx
	c.program = program
	c.depthTest = false
	c.states = passStates(false)
	for pass := range c.uniforms {
		c.uniforms[pass] = c.passUniforms(pass)
	}
	c.lineWidthMin, c.lineWidthMax = ctx.AliasedLineWidthRange()
	return nil
}

func (c *Collection) releaseGPU() {
	if c.store != nil {
		c.store.Destroy()
		c.store = nil
	}
	if c.ctx != nil && c.program != 0 {
		c.ctx.ReleaseProgram(c.program)
	}
	c.ctx = nil
	c.program = 0
	c.layout = nil
	c.batches = nil
	c.modeValid = false
}

// live returns the polylines in slot order, skipping removed slots.
func (c *Collection) live() []*Polyline {
	out := make([]*Polyline, 0, len(c.polylines))
	for _, p := range c.polylines {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

func (c *Collection) attributes() []vertexstore.Attribute {
	return []vertexstore.Attribute{
		attrPosition: {
			Location:   attrPosition,
			Components: 3,
			Type:       render.Float32,
			Usage:      c.usage.usage[PropertyPositions],
		},
		attrColor: {
			Location:   attrColor,
			Components: 4,
			Type:       render.Uint8,
			Normalize:  true,
			Usage:      c.usage.usage[PropertyColor],
		},
		attrOutlineColor: {
			Location:   attrOutlineColor,
			Components: 4,
			Type:       render.Uint8,
			Normalize:  true,
			Usage:      c.usage.usage[PropertyOutlineColor],
		},
	}
}

// rebuild recreates the vertex store and writes every live polyline.
func (c *Collection) rebuild() error {
	if c.store != nil {
		c.store.Destroy()
		c.store = nil
	}

	l := planLayout(c.live(), c.segmentCapacity)
	store, err := vertexstore.New(c.ctx, c.attributes(), l.vertices,
		vertexstore.WithSegmentCapacity(c.segmentCapacity),
		vertexstore.WithLabel("polyline"),
	)
	if err != nil {
		c.layout = nil
		c.batches = c.batches[:0]
		c.rebuildPending = true
		return fmt.Errorf("polyline: rebuild vertex store: %w", err)
	}
	c.store = store
	c.layout = l

	for _, pl := range l.placements {
		pl.polyline.clean()
		c.writePositions(pl.polyline, pl.runs)
		c.writeColor(attrColor, pl.polyline.color, pl.runs)
		c.writeColor(attrOutlineColor, pl.polyline.outlineColor, pl.runs)
	}
	c.dirty.reset()

	if err := store.Commit(); err != nil {
		c.rebuildPending = true
		return fmt.Errorf("polyline: commit vertex store: %w", err)
	}

	c.regroup()
	c.rebuilds++
	cesium.Logger().Debug("polyline: rebuilt",
		"polylines", len(l.placements), "vertices", l.vertices,
		"segments", len(store.Segments()), "batches", len(c.batches))
	return nil
}

// writeDirty writes only the changed attributes of queued polylines.
func (c *Collection) writeDirty() error {
	for _, p := range c.dirty.drain() {
		if p.collection != c {
			continue
		}
		mask := p.dirty
		p.clean()
		runs := c.layout.runs(p)

		if mask&PropertyPositions.bit() != 0 {
			c.writePositions(p, runs)
		}
		if mask&PropertyColor.bit() != 0 {
			c.writeColor(attrColor, p.color, runs)
		}
		if mask&PropertyOutlineColor.bit() != 0 {
			c.writeColor(attrOutlineColor, p.outlineColor, runs)
		}
		if mask&batchMask != 0 {
			c.batchesDirty = true
		}
	}
	if err := c.store.Commit(); err != nil {
		return fmt.Errorf("polyline: commit vertex store: %w", err)
	}
	return nil
}

func (c *Collection) writePositions(p *Polyline, runs []run) {
	bake := c.mode != render.SceneMode3D
	for _, r := range runs {
		for k := 0; k < r.count; k++ {
			pos := p.positions[r.src+k]
			if bake {
				pos = render.TransformPoint(c.bakedModel, pos)
			}
			c.store.WriteFloat32(attrPosition, r.vertex+k, pos[0], pos[1], pos[2])
		}
	}
}

func (c *Collection) writeColor(attr int, color cesium.Color, runs []run) {
	b := color.Bytes()
	for _, r := range runs {
		for k := 0; k < r.count; k++ {
			c.store.WriteUint8(attr, r.vertex+k, b[:]...)
		}
	}
}
