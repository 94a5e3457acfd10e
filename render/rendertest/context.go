// Package rendertest provides an in-memory render.Context that records
// every buffer, program and draw for inspection in tests.
package rendertest

import (
	"encoding/binary"
	"fmt"
	"maps"

	"github.com/kanbang/cesium/render"
)

// Buffer is the recorded state of a buffer.
type Buffer struct {
	Data  []byte
	Usage render.BufferUsage
	Index bool
}

// Write records one WriteBuffer call.
type Write struct {
	Buffer render.BufferID
	Offset int
	Size   int
}

// Draw records one submitted draw. Uniforms holds the values the uniform
// functions returned at submission time.
type Draw struct {
	Command  render.DrawCommand
	State    render.RenderState
	Uniforms map[string][]float32
}

// Option configures a Context.
type Option func(*Context)

// WithLineWidthRange sets the range reported by AliasedLineWidthRange.
func WithLineWidthRange(lo, hi float32) Option {
	return func(c *Context) {
		c.lineMin, c.lineMax = lo, hi
	}
}

// Context is a recording render.Context. It is not safe for concurrent use.
type Context struct {
	buffers    map[render.BufferID]*Buffer
	nextBuffer render.BufferID
	programs   *render.ProgramCache[render.ProgramDescriptor]
	lineMin    float32
	lineMax    float32
	destroyed  bool

	// Draws lists every submitted draw in order.
	Draws []Draw

	// Writes lists every buffer write in order.
	Writes []Write

	// BuffersCreated counts every buffer ever created.
	BuffersCreated int

	// FailCreate, when set, is returned by the next buffer creation.
	FailCreate error
}

var _ render.Context = (*Context)(nil)

// New creates a recording context with a line width range of [1, 64].
func New(opts ...Option) *Context {
	c := &Context{
		buffers:  make(map[render.BufferID]*Buffer),
		programs: render.NewProgramCache[render.ProgramDescriptor](),
		lineMin:  1,
		lineMax:  64,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Context) createBuffer(data []byte, usage render.BufferUsage, index bool) (render.BufferID, error) {
	if err := c.FailCreate; err != nil {
		c.FailCreate = nil
		return 0, err
	}
	c.nextBuffer++
	c.buffers[c.nextBuffer] = &Buffer{Data: data, Usage: usage, Index: index}
	c.BuffersCreated++
	return c.nextBuffer, nil
}

// CreateVertexBuffer implements render.Context.
func (c *Context) CreateVertexBuffer(size int, usage render.BufferUsage) (render.BufferID, error) {
	return c.createBuffer(make([]byte, size), usage, false)
}

// CreateIndexBuffer implements render.Context.
func (c *Context) CreateIndexBuffer(indices []uint16, usage render.BufferUsage) (render.BufferID, error) {
	data := make([]byte, 2*len(indices))
	for i, v := range indices {
		binary.LittleEndian.PutUint16(data[2*i:], v)
	}
	return c.createBuffer(data, usage, true)
}

// WriteBuffer implements render.Context.
func (c *Context) WriteBuffer(id render.BufferID, offset int, data []byte) error {
	b, ok := c.buffers[id]
	if !ok {
		return fmt.Errorf("%w: %d", render.ErrUnknownBuffer, id)
	}
	if offset < 0 || offset+len(data) > len(b.Data) {
		return fmt.Errorf("%w: [%d, %d) of %d", render.ErrOutOfBounds, offset, offset+len(data), len(b.Data))
	}
	copy(b.Data[offset:], data)
	c.Writes = append(c.Writes, Write{Buffer: id, Offset: offset, Size: len(data)})
	return nil
}

// DestroyBuffer implements render.Context.
func (c *Context) DestroyBuffer(id render.BufferID) {
	delete(c.buffers, id)
}

// AcquireProgram implements render.Context.
func (c *Context) AcquireProgram(desc render.ProgramDescriptor) (render.ProgramID, error) {
	return c.programs.Acquire(desc, func(d render.ProgramDescriptor) (render.ProgramDescriptor, error) {
		return d, nil
	})
}

// ReleaseProgram implements render.Context.
func (c *Context) ReleaseProgram(id render.ProgramID) {
	c.programs.Release(id, nil)
}

// AliasedLineWidthRange implements render.Context.
func (c *Context) AliasedLineWidthRange() (lo, hi float32) {
	return c.lineMin, c.lineMax
}

// Draw implements render.Context.
func (c *Context) Draw(cmd *render.DrawCommand) error {
	if _, ok := c.programs.Get(cmd.Program); !ok {
		return fmt.Errorf("%w: %d", render.ErrUnknownProgram, cmd.Program)
	}
	if cmd.VertexArray == nil {
		return render.ErrNilVertexArray
	}
	for _, a := range cmd.VertexArray.Attributes {
		if _, ok := c.buffers[a.Buffer]; !ok {
			return fmt.Errorf("%w: attribute %d buffer %d", render.ErrUnknownBuffer, a.Location, a.Buffer)
		}
	}
	if _, ok := c.buffers[cmd.VertexArray.IndexBuffer]; !ok {
		return fmt.Errorf("%w: index buffer %d", render.ErrUnknownBuffer, cmd.VertexArray.IndexBuffer)
	}

	d := Draw{Command: *cmd, Uniforms: make(map[string][]float32, len(cmd.Uniforms))}
	d.Command.Ranges = append([]render.IndexRange(nil), cmd.Ranges...)
	d.Command.Uniforms = maps.Clone(cmd.Uniforms)
	if cmd.RenderState != nil {
		d.State = *cmd.RenderState
	}
	for name, fn := range cmd.Uniforms {
		d.Uniforms[name] = fn()
	}
	c.Draws = append(c.Draws, d)
	return nil
}

// Destroy implements render.Context.
func (c *Context) Destroy() {
	if c.destroyed {
		return
	}
	render.ReleaseContext(c)
	c.programs.Clear(nil)
	c.destroyed = true
}

// Destroyed reports whether Destroy has been called.
func (c *Context) Destroyed() bool { return c.destroyed }

// Buffer returns the recorded buffer for id.
func (c *Context) Buffer(id render.BufferID) (*Buffer, bool) {
	b, ok := c.buffers[id]
	return b, ok
}

// LiveBuffers returns the number of buffers not yet destroyed.
func (c *Context) LiveBuffers() int { return len(c.buffers) }

// Indices decodes an index buffer.
func (c *Context) Indices(id render.BufferID) []uint16 {
	b, ok := c.buffers[id]
	if !ok || !b.Index {
		return nil
	}
	out := make([]uint16, len(b.Data)/2)
	for i := range out {
		out[i] = binary.LittleEndian.Uint16(b.Data[2*i:])
	}
	return out
}

// Program returns the descriptor a program was acquired with.
func (c *Context) Program(id render.ProgramID) (render.ProgramDescriptor, bool) {
	return c.programs.Get(id)
}

// ProgramRefs returns the reference count of a program.
func (c *Context) ProgramRefs(id render.ProgramID) int { return c.programs.Refs(id) }

// Programs returns the number of live programs.
func (c *Context) Programs() int { return c.programs.Len() }

// Reset forgets recorded draws and writes.
func (c *Context) Reset() {
	c.Draws = c.Draws[:0]
	c.Writes = c.Writes[:0]
}
