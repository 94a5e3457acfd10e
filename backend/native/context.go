package native

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/kanbang/cesium"
	"github.com/kanbang/cesium/render"
)

// Context is a render.Context backed by a HAL device.
//
// Context is not safe for concurrent use. The pipeline cache is the only
// internally synchronized part.
type Context struct {
	device hal.Device
	queue  hal.Queue
	cfg    config

	buffers  map[render.BufferID]*buffer
	nextID   render.BufferID
	programs *render.ProgramCache[*program]
	pipes    *pipelineCache

	textures frameTextures
	frame    *frame
	frames   uint64

	warnWidth sync.Once
	destroyed bool
}

// buffer is a device buffer and its size in bytes.
type buffer struct {
	raw   hal.Buffer
	size  int
	index bool
	usage render.BufferUsage
}

// Stats reports resource counts of a Context.
type Stats struct {
	Buffers        int
	Programs       int
	Pipelines      int
	PipelineHits   uint64
	PipelineMisses uint64
	Frames         uint64
}

var _ render.Context = (*Context)(nil)

// New creates a context on an existing device and queue. The caller keeps
// ownership of the device.
func New(device hal.Device, queue hal.Queue, opts ...Option) (*Context, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	cesium.Logger().Info("native: context created", "samples", cfg.sampleCount, "format", cfg.colorFormat)
	return &Context{
		device:   device,
		queue:    queue,
		cfg:      cfg,
		buffers:  make(map[render.BufferID]*buffer),
		programs: render.NewProgramCache[*program](),
		pipes:    newPipelineCache(),
	}, nil
}

// NewFromProvider creates a context on the HAL device shared by a
// provider such as a gogpu window. The provider must implement
// HalDevice() any and HalQueue() any returning hal.Device and hal.Queue.
func NewFromProvider(provider render.DeviceHandle, opts ...Option) (*Context, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHALProvider
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHALProvider)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHALProvider)
	}
	return New(device, queue, opts...)
}

// CreateVertexBuffer allocates a zero-filled vertex buffer. WebGPU has no
// usage hints, so usage is only recorded.
func (c *Context) CreateVertexBuffer(size int, usage render.BufferUsage) (render.BufferID, error) {
	if c.destroyed {
		return 0, ErrDestroyed
	}
	if size <= 0 {
		return 0, fmt.Errorf("native: invalid vertex buffer size %d", size)
	}
	raw, err := c.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "vertex_buffer",
		Size:  uint64(align4(size)),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return 0, fmt.Errorf("create vertex buffer: %w", err)
	}
	return c.track(&buffer{raw: raw, size: size, usage: usage}), nil
}

// CreateIndexBuffer allocates a 16-bit index buffer and uploads indices.
func (c *Context) CreateIndexBuffer(indices []uint16, usage render.BufferUsage) (render.BufferID, error) {
	if c.destroyed {
		return 0, ErrDestroyed
	}
	if len(indices) == 0 {
		return 0, fmt.Errorf("native: empty index buffer")
	}
	data := make([]byte, align4(2*len(indices)))
	for i, v := range indices {
		binary.LittleEndian.PutUint16(data[2*i:], v)
	}
	raw, err := c.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "index_buffer",
		Size:  uint64(len(data)),
		Usage: gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return 0, fmt.Errorf("create index buffer: %w", err)
	}
	c.queue.WriteBuffer(raw, 0, data)
	return c.track(&buffer{raw: raw, size: len(data), index: true, usage: usage}), nil
}

func (c *Context) track(b *buffer) render.BufferID {
	c.nextID++
	c.buffers[c.nextID] = b
	return c.nextID
}

// WriteBuffer uploads data at offset. Offset and length must be multiples
// of four bytes.
func (c *Context) WriteBuffer(id render.BufferID, offset int, data []byte) error {
	b, ok := c.buffers[id]
	if !ok {
		return fmt.Errorf("%w: %d", render.ErrUnknownBuffer, id)
	}
	if offset < 0 || offset+len(data) > b.size {
		return fmt.Errorf("%w: [%d, %d) of %d bytes", render.ErrOutOfBounds, offset, offset+len(data), b.size)
	}
	if offset%4 != 0 || len(data)%4 != 0 {
		return fmt.Errorf("%w: offset %d size %d", ErrUnalignedWrite, offset, len(data))
	}
	if len(data) == 0 {
		return nil
	}
	c.queue.WriteBuffer(b.raw, uint64(offset), data)
	return nil
}

// DestroyBuffer releases a buffer. Unknown IDs are ignored.
func (c *Context) DestroyBuffer(id render.BufferID) {
	b, ok := c.buffers[id]
	if !ok {
		return
	}
	delete(c.buffers, id)
	c.device.DestroyBuffer(b.raw)
}

// AcquireProgram compiles the descriptor on first use and returns a
// reference-counted program.
func (c *Context) AcquireProgram(desc render.ProgramDescriptor) (render.ProgramID, error) {
	if c.destroyed {
		return 0, ErrDestroyed
	}
	return c.programs.Acquire(desc, func(d render.ProgramDescriptor) (*program, error) {
		p, err := compileProgram(c.device, d, c.cfg.validateShader)
		if err != nil {
			return nil, err
		}
		cesium.Logger().Debug("native: compiled program", "label", d.Label, "uniform_bytes", p.uniformSize)
		return p, nil
	})
}

// ReleaseProgram drops one reference. The last release destroys the
// program and every pipeline built from it.
func (c *Context) ReleaseProgram(id render.ProgramID) {
	if c.programs.Refs(id) == 1 {
		c.pipes.evictProgram(id, c.destroyPipeline)
	}
	c.programs.Release(id, func(p *program) { p.destroy(c.device) })
}

// AliasedLineWidthRange reports [1, 1]; WebGPU has no wide lines.
func (c *Context) AliasedLineWidthRange() (lo, hi float32) {
	return 1, 1
}

// Stats returns resource counts.
func (c *Context) Stats() Stats {
	hits, misses := c.pipes.stats()
	return Stats{
		Buffers:        len(c.buffers),
		Programs:       c.programs.Len(),
		Pipelines:      c.pipes.len(),
		PipelineHits:   hits,
		PipelineMisses: misses,
		Frames:         c.frames,
	}
}

// Destroy releases every buffer, program, pipeline and frame texture. The
// device and queue are left to their owner.
func (c *Context) Destroy() {
	if c.destroyed {
		return
	}
	if c.frame != nil {
		cesium.Logger().Warn("native: destroyed with frame in progress", "draws", len(c.frame.draws))
		c.frame.discard(c.device)
		c.frame = nil
	}
	render.ReleaseContext(c)
	c.pipes.clear(c.destroyPipeline)
	c.programs.Clear(func(p *program) { p.destroy(c.device) })
	for id, b := range c.buffers {
		c.device.DestroyBuffer(b.raw)
		delete(c.buffers, id)
	}
	c.textures.destroy(c.device)
	c.destroyed = true
}

func (c *Context) destroyPipeline(p hal.RenderPipeline) {
	if p != nil {
		c.device.DestroyRenderPipeline(p)
	}
}

func align4(n int) int {
	return (n + 3) &^ 3
}
