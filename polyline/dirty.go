package polyline

import "fmt"

// Property identifies a tracked polyline property.
type Property uint8

const (
	PropertyShow Property = iota
	PropertyPositions
	PropertyColor
	PropertyWidth
	PropertyOutlineWidth
	PropertyOutlineColor

	numProperties
)

// String returns the string representation of the property.
func (p Property) String() string {
	switch p {
	case PropertyShow:
		return "Show"
	case PropertyPositions:
		return "Positions"
	case PropertyColor:
		return "Color"
	case PropertyWidth:
		return "Width"
	case PropertyOutlineWidth:
		return "OutlineWidth"
	case PropertyOutlineColor:
		return "OutlineColor"
	default:
		return fmt.Sprintf("Property(%d)", int(p))
	}
}

func (p Property) bit() uint8 { return 1 << p }

// batchMask covers the properties that only affect how draws are grouped.
const batchMask = 1<<PropertyShow | 1<<PropertyWidth | 1<<PropertyOutlineWidth

// dirtyQueue lists polylines with pending property writes. A polyline is
// pushed when its dirty mask goes from empty to non-empty, so it appears
// at most once between flushes.
type dirtyQueue struct {
	items []*Polyline
}

func (q *dirtyQueue) push(p *Polyline) { q.items = append(q.items, p) }

func (q *dirtyQueue) len() int { return len(q.items) }

// drain returns the queued polylines and empties the queue.
func (q *dirtyQueue) drain() []*Polyline {
	items := q.items
	q.items = nil
	return items
}

func (q *dirtyQueue) reset() {
	clear(q.items)
	q.items = q.items[:0]
}
