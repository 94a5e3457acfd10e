package polyline

import (
	"slices"

	"golang.org/x/image/math/f32"

	"github.com/kanbang/cesium"
)

// Polyline is a line through an ordered list of 3D positions, drawn with a
// fill color and width inside an outline of its own color and width.
//
// Polylines are created by [Collection.Add]. After [Collection.Remove] a
// polyline is detached: its setters still work but no longer affect any
// collection.
type Polyline struct {
	collection *Collection
	index      int
	dirty      uint8

	show         bool
	positions    []f32.Vec3
	color        cesium.Color
	outlineColor cesium.Color
	width        float32
	outlineWidth float32
}

func newPolyline() *Polyline {
	return &Polyline{
		show:         true,
		color:        cesium.White,
		outlineColor: cesium.White,
		width:        1,
		outlineWidth: 1,
	}
}

// Show reports whether the polyline is drawn.
func (p *Polyline) Show() bool { return p.show }

// SetShow sets whether the polyline is drawn.
func (p *Polyline) SetShow(show bool) {
	if p.show == show {
		return
	}
	p.show = show
	p.makeDirty(PropertyShow)
}

// Positions returns a copy of the polyline's positions.
func (p *Polyline) Positions() []f32.Vec3 {
	return slices.Clone(p.positions)
}

// SetPositions replaces the positions with a copy of positions. A change
// in the number of positions makes the owning collection rebuild its
// vertex store on the next update.
func (p *Polyline) SetPositions(positions []f32.Vec3) {
	reshaped := len(positions) != len(p.positions)
	p.positions = slices.Clone(positions)
	p.makeDirty(PropertyPositions)
	if reshaped && p.collection != nil {
		p.collection.rebuildPending = true
	}
}

// Color returns the fill color.
func (p *Polyline) Color() cesium.Color { return p.color }

// SetColor sets the fill color.
func (p *Polyline) SetColor(c cesium.Color) {
	if p.color == c {
		return
	}
	p.color = c
	p.makeDirty(PropertyColor)
}

// OutlineColor returns the outline color.
func (p *Polyline) OutlineColor() cesium.Color { return p.outlineColor }

// SetOutlineColor sets the outline color.
func (p *Polyline) SetOutlineColor(c cesium.Color) {
	if p.outlineColor == c {
		return
	}
	p.outlineColor = c
	p.makeDirty(PropertyOutlineColor)
}

// Width returns the fill width in pixels.
func (p *Polyline) Width() float32 { return p.width }

// SetWidth sets the fill width in pixels. Widths outside the device's
// supported range are clamped when drawn.
func (p *Polyline) SetWidth(w float32) {
	if p.width == w {
		return
	}
	p.width = w
	p.makeDirty(PropertyWidth)
}

// OutlineWidth returns the outline width in pixels.
func (p *Polyline) OutlineWidth() float32 { return p.outlineWidth }

// SetOutlineWidth sets the outline width in pixels.
func (p *Polyline) SetOutlineWidth(w float32) {
	if p.outlineWidth == w {
		return
	}
	p.outlineWidth = w
	p.makeDirty(PropertyOutlineWidth)
}

// IsDirty reports whether any property changed since the polyline's
// attributes were last written.
func (p *Polyline) IsDirty() bool { return p.dirty != 0 }

// clean clears the dirty mask. Only the owning collection calls it, right
// before writing the polyline's attributes.
func (p *Polyline) clean() { p.dirty = 0 }

func (p *Polyline) makeDirty(prop Property) {
	wasClean := p.dirty == 0
	p.dirty |= prop.bit()
	if c := p.collection; c != nil {
		c.propertyChanged(p, prop, wasClean)
	}
}

// Option sets a property of a polyline created by Collection.Add.
type Option func(*Polyline)

// WithShow sets whether the polyline is drawn. Defaults to true.
func WithShow(show bool) Option {
	return func(p *Polyline) { p.show = show }
}

// WithPositions sets the positions. Defaults to none.
func WithPositions(positions ...f32.Vec3) Option {
	return func(p *Polyline) { p.positions = slices.Clone(positions) }
}

// WithWidth sets the fill width. Defaults to 1.
func WithWidth(w float32) Option {
	return func(p *Polyline) { p.width = w }
}

// WithOutlineWidth sets the outline width. Defaults to 1.
func WithOutlineWidth(w float32) Option {
	return func(p *Polyline) { p.outlineWidth = w }
}

// WithColor sets the fill color. Defaults to opaque white.
func WithColor(c cesium.Color) Option {
	return func(p *Polyline) { p.color = c }
}

// WithOutlineColor sets the outline color. Defaults to opaque white.
func WithOutlineColor(c cesium.Color) Option {
	return func(p *Polyline) { p.outlineColor = c }
}
