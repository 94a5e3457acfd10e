package polyline

// run is a contiguous stretch of one polyline's vertices inside a single
// segment.
type run struct {
	// vertex is the logical store index of the run's first vertex.
	vertex int
	// src is the index of the run's first position in the polyline.
	src   int
	count int
}

type placement struct {
	polyline *Polyline
	runs     []run
}

// layout maps polylines onto store vertices.
type layout struct {
	placements []placement
	byPolyline map[*Polyline]int
	vertices   int
	capacity   int
}

// planLayout assigns vertices to polylines in order.
//
// A polyline that fits in a segment but not in the space left in the
// current one starts at the next segment. A polyline longer than a
// segment is split into runs; consecutive runs share their boundary
// position so no line segment is dropped. Unused vertices at the end of a
// segment are padding and are never drawn.
func planLayout(polylines []*Polyline, capacity int) *layout {
	l := &layout{
		placements: make([]placement, 0, len(polylines)),
		byPolyline: make(map[*Polyline]int, len(polylines)),
		capacity:   capacity,
	}

	cursor := 0
	for _, p := range polylines {
		n := len(p.positions)
		pl := placement{polyline: p}

		switch {
		case n == 0:
		case n <= capacity:
			if room := capacity - cursor%capacity; n > room {
				cursor += room
			}
			pl.runs = []run{{vertex: cursor, src: 0, count: n}}
			cursor += n
		default:
			src := 0
			for src < n-1 {
				room := capacity - cursor%capacity
				if room < 2 {
					cursor += room
					continue
				}
				k := min(room, n-src)
				pl.runs = append(pl.runs, run{vertex: cursor, src: src, count: k})
				cursor += k
				src += k - 1
			}
		}

		l.byPolyline[p] = len(l.placements)
		l.placements = append(l.placements, pl)
	}
	l.vertices = cursor
	return l
}

// runs returns the runs of p, or nil if p was not laid out.
func (l *layout) runs(p *Polyline) []run {
	if l == nil {
		return nil
	}
	i, ok := l.byPolyline[p]
	if !ok {
		return nil
	}
	return l.placements[i].runs
}

// segment returns the segment index and local vertex of a run.
func (l *layout) segment(r run) (seg, local int) {
	return r.vertex / l.capacity, r.vertex % l.capacity
}
