package vertexstore

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/kanbang/cesium"
	"github.com/kanbang/cesium/render"
)

// Store errors.
var (
	// ErrNoAttributes is returned when a store is created without attributes.
	ErrNoAttributes = errors.New("vertexstore: no attributes")

	// ErrInvalidAttribute is returned for attributes with no components or
	// an unknown component type.
	ErrInvalidAttribute = errors.New("vertexstore: invalid attribute")

	// ErrInvalidCount is returned for a negative vertex count.
	ErrInvalidCount = errors.New("vertexstore: negative vertex count")

	// ErrDestroyed is returned when committing a destroyed store.
	ErrDestroyed = errors.New("vertexstore: store has been destroyed")
)

// Attribute describes one vertex attribute stream.
type Attribute struct {
	Location   uint32
	Components int
	Type       render.ComponentType
	Normalize  bool
	Usage      render.BufferUsage
}

// Stride returns the number of bytes per vertex.
func (a Attribute) Stride() int {
	return a.Components * a.Type.Size()
}

// Segment is a realized range of the store.
type Segment struct {
	// First is the logical index of the segment's first vertex.
	First int

	// Count is the number of vertices in the segment.
	Count int

	// VertexArray binds the segment's buffers and the shared index buffer.
	VertexArray *render.VertexArray
}

// span is a half-open dirty byte range. It is empty when lo >= hi.
type span struct {
	lo, hi int
}

func (s *span) mark(lo, hi int) {
	if s.lo >= s.hi {
		s.lo, s.hi = lo, hi
		return
	}
	s.lo = min(s.lo, lo)
	s.hi = max(s.hi, hi)
}

func (s *span) empty() bool { return s.lo >= s.hi }

type segment struct {
	first   int
	count   int
	buffers []render.BufferID
	shadow  [][]byte
	dirty   []span
	va      *render.VertexArray
}

// Store is a partitioned vertex store. It is not safe for concurrent use.
type Store struct {
	ctx       render.Context
	attrs     []Attribute
	count     int
	capacity  int
	label     string
	segments  []*segment
	destroyed bool
}

// New creates a store holding count vertices of the given attributes.
// A zero count creates an empty store with no GPU buffers.
func New(ctx render.Context, attrs []Attribute, count int, opts ...Option) (*Store, error) {
	if len(attrs) == 0 {
		return nil, ErrNoAttributes
	}
	for i, a := range attrs {
		if a.Components <= 0 || a.Type.Size() == 0 {
			return nil, fmt.Errorf("%w: index %d", ErrInvalidAttribute, i)
		}
	}
	if count < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, count)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	s := &Store{
		ctx:      ctx,
		attrs:    append([]Attribute(nil), attrs...),
		count:    count,
		capacity: o.capacity,
		label:    o.label,
	}

	for first := 0; first < count; first += s.capacity {
		n := min(s.capacity, count-first)
		seg, err := s.createSegment(first, n)
		if err != nil {
			s.Destroy()
			return nil, err
		}
		s.segments = append(s.segments, seg)
	}

	cesium.Logger().Debug("vertexstore: created",
		"label", s.label, "vertices", count, "segments", len(s.segments), "capacity", s.capacity)
	return s, nil
}

func (s *Store) createSegment(first, count int) (*segment, error) {
	indexBuffer, err := render.SharedIndexBuffer(s.ctx, s.capacity)
	if err != nil {
		return nil, fmt.Errorf("vertexstore: %s: %w", s.label, err)
	}

	seg := &segment{
		first:   first,
		count:   count,
		buffers: make([]render.BufferID, 0, len(s.attrs)),
		shadow:  make([][]byte, len(s.attrs)),
		dirty:   make([]span, len(s.attrs)),
		va:      &render.VertexArray{IndexBuffer: indexBuffer},
	}
	for i, a := range s.attrs {
		size := count * a.Stride()
		id, err := s.ctx.CreateVertexBuffer(size, a.Usage)
		if err != nil {
			for _, b := range seg.buffers {
				s.ctx.DestroyBuffer(b)
			}
			return nil, fmt.Errorf("vertexstore: %s: create buffer for attribute %d: %w", s.label, a.Location, err)
		}
		seg.buffers = append(seg.buffers, id)
		seg.shadow[i] = make([]byte, size)
		seg.va.Attributes = append(seg.va.Attributes, render.VertexBinding{
			Location:   a.Location,
			Buffer:     id,
			Components: a.Components,
			Type:       a.Type,
			Normalize:  a.Normalize,
		})
	}
	return seg, nil
}

// Len returns the number of vertices in the store.
func (s *Store) Len() int { return s.count }

// Capacity returns the maximum number of vertices per segment.
func (s *Store) Capacity() int { return s.capacity }

// Attributes returns a copy of the attribute descriptors.
func (s *Store) Attributes() []Attribute {
	return append([]Attribute(nil), s.attrs...)
}

// locate returns the segment and the byte offset of a vertex
// attribute. It panics on out-of-range input like a slice index would.
func (s *Store) locate(attr, vertex, n int, want render.ComponentType) (*segment, int) {
	if attr < 0 || attr >= len(s.attrs) {
		panic(fmt.Sprintf("vertexstore: attribute %d out of range [0, %d)", attr, len(s.attrs)))
	}
	if vertex < 0 || vertex >= s.count {
		panic(fmt.Sprintf("vertexstore: vertex %d out of range [0, %d)", vertex, s.count))
	}
	a := s.attrs[attr]
	if a.Type != want {
		panic(fmt.Sprintf("vertexstore: attribute %d is %v, not %v", attr, a.Type, want))
	}
	if n != a.Components {
		panic(fmt.Sprintf("vertexstore: attribute %d takes %d components, got %d", attr, a.Components, n))
	}
	seg := s.segments[vertex/s.capacity]
	return seg, (vertex % s.capacity) * a.Stride()
}

// WriteFloat32 sets the components of a float attribute for one vertex.
func (s *Store) WriteFloat32(attr, vertex int, values ...float32) {
	seg, off := s.locate(attr, vertex, len(values), render.Float32)
	buf := seg.shadow[attr]
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[off+4*i:], math.Float32bits(v))
	}
	seg.dirty[attr].mark(off, off+4*len(values))
}

// WriteUint8 sets the components of a byte attribute for one vertex.
func (s *Store) WriteUint8(attr, vertex int, values ...uint8) {
	seg, off := s.locate(attr, vertex, len(values), render.Uint8)
	copy(seg.shadow[attr][off:], values)
	seg.dirty[attr].mark(off, off+len(values))
}

// Commit uploads every dirty byte range to the GPU.
func (s *Store) Commit() error {
	if s.destroyed {
		return ErrDestroyed
	}
	for _, seg := range s.segments {
		for i := range s.attrs {
			d := seg.dirty[i]
			if d.empty() {
				continue
			}
			if err := s.ctx.WriteBuffer(seg.buffers[i], d.lo, seg.shadow[i][d.lo:d.hi]); err != nil {
				return fmt.Errorf("vertexstore: %s: upload segment at %d: %w", s.label, seg.first, err)
			}
			seg.dirty[i] = span{}
		}
	}
	return nil
}

// Segments returns the realized segments in vertex order.
func (s *Store) Segments() []Segment {
	out := make([]Segment, len(s.segments))
	for i, seg := range s.segments {
		out[i] = Segment{First: seg.first, Count: seg.count, VertexArray: seg.va}
	}
	return out
}

// Destroy releases the store's vertex buffers. The shared index buffer
// belongs to the context and is left alone. Destroy is idempotent.
func (s *Store) Destroy() {
	if s.destroyed {
		return
	}
	for _, seg := range s.segments {
		for _, b := range seg.buffers {
			s.ctx.DestroyBuffer(b)
		}
	}
	s.segments = nil
	s.destroyed = true
}
